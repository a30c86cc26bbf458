package handlers

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"mandi-backend/internal/models"
	"mandi-backend/pkg/utils"
)

type SequenceAPI interface {
	NextNumber(ctx context.Context, scope models.Scope, kind string) (string, error)
}

type SequenceHandler struct {
	Service SequenceAPI
	log     *zap.Logger
}

func NewSequenceHandler(s SequenceAPI, log *zap.Logger) *SequenceHandler {
	return &SequenceHandler{Service: s, log: log}
}

// NextNumber previews the number the next document of {kind} will get
func (h *SequenceHandler) NextNumber(w http.ResponseWriter, r *http.Request) {
	scope, err := requestScope(r)
	if err != nil {
		writeError(w, h.log, r, err)
		return
	}
	next, err := h.Service.NextNumber(r.Context(), scope, mux.Vars(r)["kind"])
	if err != nil {
		writeError(w, h.log, r, err)
		return
	}
	utils.JSON(w, http.StatusOK, map[string]string{"nextNumber": next})
}
