package handlers

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"mandi-backend/internal/models"
	"mandi-backend/pkg/utils"
)

type SoudaAPI interface {
	Create(ctx context.Context, scope models.Scope, req *models.SoudaRequest) (*models.Souda, error)
	Update(ctx context.Context, scope models.Scope, id int, req *models.SoudaRequest) (*models.Souda, error)
	Delete(ctx context.Context, scope models.Scope, id int) error
	Get(ctx context.Context, scope models.Scope, id int) (*models.Souda, error)
	List(ctx context.Context, scope models.Scope, from, to models.Date) ([]models.Souda, error)
}

type SoudaHandler struct {
	Service SoudaAPI
	log     *zap.Logger
}

func NewSoudaHandler(s SoudaAPI, log *zap.Logger) *SoudaHandler {
	return &SoudaHandler{Service: s, log: log}
}

func (h *SoudaHandler) CreateSouda(w http.ResponseWriter, r *http.Request) {
	scope, err := requestScope(r)
	if err != nil {
		writeError(w, h.log, r, err)
		return
	}
	var req models.SoudaRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.log, r, err)
		return
	}

	souda, err := h.Service.Create(r.Context(), scope, &req)
	if err != nil {
		writeError(w, h.log, r, err)
		return
	}
	utils.JSON(w, http.StatusCreated, souda)
}

func (h *SoudaHandler) UpdateSouda(w http.ResponseWriter, r *http.Request) {
	scope, err := requestScope(r)
	if err != nil {
		writeError(w, h.log, r, err)
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, h.log, r, err)
		return
	}
	var req models.SoudaRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.log, r, err)
		return
	}

	souda, err := h.Service.Update(r.Context(), scope, id, &req)
	if err != nil {
		writeError(w, h.log, r, err)
		return
	}
	utils.JSON(w, http.StatusOK, souda)
}

func (h *SoudaHandler) DeleteSouda(w http.ResponseWriter, r *http.Request) {
	scope, err := requestScope(r)
	if err != nil {
		writeError(w, h.log, r, err)
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, h.log, r, err)
		return
	}
	if err := h.Service.Delete(r.Context(), scope, id); err != nil {
		writeError(w, h.log, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *SoudaHandler) GetSouda(w http.ResponseWriter, r *http.Request) {
	scope, err := requestScope(r)
	if err != nil {
		writeError(w, h.log, r, err)
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, h.log, r, err)
		return
	}
	souda, err := h.Service.Get(r.Context(), scope, id)
	if err != nil {
		writeError(w, h.log, r, err)
		return
	}
	utils.JSON(w, http.StatusOK, souda)
}

func (h *SoudaHandler) ListSoudas(w http.ResponseWriter, r *http.Request) {
	scope, err := requestScope(r)
	if err != nil {
		writeError(w, h.log, r, err)
		return
	}
	from, err := queryDate(r, "from")
	if err != nil {
		writeError(w, h.log, r, err)
		return
	}
	to, err := queryDate(r, "to")
	if err != nil {
		writeError(w, h.log, r, err)
		return
	}

	soudas, err := h.Service.List(r.Context(), scope, from, to)
	if err != nil {
		writeError(w, h.log, r, err)
		return
	}
	if soudas == nil {
		soudas = []models.Souda{}
	}
	utils.JSON(w, http.StatusOK, soudas)
}
