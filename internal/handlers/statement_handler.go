package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"mandi-backend/internal/models"
	"mandi-backend/pkg/utils"
)

type StatementService interface {
	Statement(ctx context.Context, scope models.Scope, ledgerID int, from, to time.Time) (*models.Statement, error)
	OpeningBalance(ctx context.Context, scope models.Scope, ledgerID int, asOf time.Time) (decimal.Decimal, error)
}

type StatementHandler struct {
	Service StatementService
	log     *zap.Logger
}

func NewStatementHandler(s StatementService, log *zap.Logger) *StatementHandler {
	return &StatementHandler{Service: s, log: log}
}

// GetStatement returns the ordered statement lines of a ledger
func (h *StatementHandler) GetStatement(w http.ResponseWriter, r *http.Request) {
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
	from, err := requiredDate(r, "from")
	if err != nil {
		writeError(w, h.log, r, err)
		return
	}
	to, err := requiredDate(r, "to")
	if err != nil {
		writeError(w, h.log, r, err)
		return
	}

	st, err := h.Service.Statement(r.Context(), scope, id, from.Time, to.Time)
	if err != nil {
		writeError(w, h.log, r, err)
		return
	}
	utils.JSON(w, http.StatusOK, st.Lines)
}

func (h *StatementHandler) GetOpeningBalance(w http.ResponseWriter, r *http.Request) {
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
	asOf, err := requiredDate(r, "as_of")
	if err != nil {
		writeError(w, h.log, r, err)
		return
	}

	balance, err := h.Service.OpeningBalance(r.Context(), scope, id, asOf.Time)
	if err != nil {
		writeError(w, h.log, r, err)
		return
	}
	utils.JSON(w, http.StatusOK, models.OpeningBalanceResponse{
		LedgerID:       id,
		AsOf:           asOf,
		OpeningBalance: balance,
	})
}
