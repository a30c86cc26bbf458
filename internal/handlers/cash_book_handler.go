package handlers

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"mandi-backend/internal/models"
	"mandi-backend/pkg/utils"
)

type CashBookAPI interface {
	Create(ctx context.Context, scope models.Scope, req *models.CashBookRequest) (*models.CashBookEntry, error)
	Get(ctx context.Context, scope models.Scope, id int) (*models.CashBookEntry, error)
	List(ctx context.Context, scope models.Scope, filter models.CashBookFilter) ([]models.CashBookEntry, error)
	Delete(ctx context.Context, scope models.Scope, id int) error
}

type CashBookHandler struct {
	Service CashBookAPI
	log     *zap.Logger
}

func NewCashBookHandler(s CashBookAPI, log *zap.Logger) *CashBookHandler {
	return &CashBookHandler{Service: s, log: log}
}

func (h *CashBookHandler) CreateEntry(w http.ResponseWriter, r *http.Request) {
	scope, err := requestScope(r)
	if err != nil {
		writeError(w, h.log, r, err)
		return
	}
	var req models.CashBookRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.log, r, err)
		return
	}

	entry, err := h.Service.Create(r.Context(), scope, &req)
	if err != nil {
		writeError(w, h.log, r, err)
		return
	}
	utils.JSON(w, http.StatusCreated, entry)
}

func (h *CashBookHandler) GetEntry(w http.ResponseWriter, r *http.Request) {
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
	entry, err := h.Service.Get(r.Context(), scope, id)
	if err != nil {
		writeError(w, h.log, r, err)
		return
	}
	utils.JSON(w, http.StatusOK, entry)
}

// ListEntries accepts optional type, ledger_id, from and to filters
func (h *CashBookHandler) ListEntries(w http.ResponseWriter, r *http.Request) {
	scope, err := requestScope(r)
	if err != nil {
		writeError(w, h.log, r, err)
		return
	}
	filter := models.CashBookFilter{TransactionType: models.CashTransactionType(r.URL.Query().Get("type"))}
	if filter.LedgerID, err = queryInt(r, "ledger_id"); err != nil {
		writeError(w, h.log, r, err)
		return
	}
	if filter.From, err = queryDate(r, "from"); err != nil {
		writeError(w, h.log, r, err)
		return
	}
	if filter.To, err = queryDate(r, "to"); err != nil {
		writeError(w, h.log, r, err)
		return
	}

	entries, err := h.Service.List(r.Context(), scope, filter)
	if err != nil {
		writeError(w, h.log, r, err)
		return
	}
	if entries == nil {
		entries = []models.CashBookEntry{}
	}
	utils.JSON(w, http.StatusOK, entries)
}

func (h *CashBookHandler) DeleteEntry(w http.ResponseWriter, r *http.Request) {
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
