package handlers

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"mandi-backend/internal/models"
	"mandi-backend/pkg/utils"
)

type BillingAPI interface {
	Create(ctx context.Context, scope models.Scope, kind models.BillKind, req *models.BillRequest) (*models.Bill, error)
	Update(ctx context.Context, scope models.Scope, kind models.BillKind, id int, req *models.BillRequest) (*models.Bill, error)
	Delete(ctx context.Context, scope models.Scope, kind models.BillKind, id int) error
	Get(ctx context.Context, scope models.Scope, kind models.BillKind, id int) (*models.Bill, error)
	List(ctx context.Context, scope models.Scope, kind models.BillKind, filter models.BillFilter) ([]models.Bill, error)
	Candidates(ctx context.Context, scope models.Scope, kind models.BillKind, partyNo string, date models.Date) ([]models.CandidateItem, error)
}

// BillHandler serves both bill books; {kind} selects customer or farmer
type BillHandler struct {
	Service BillingAPI
	log     *zap.Logger
}

func NewBillHandler(s BillingAPI, log *zap.Logger) *BillHandler {
	return &BillHandler{Service: s, log: log}
}

// billTarget resolves the scope and bill kind shared by every route
func (h *BillHandler) billTarget(r *http.Request) (models.Scope, models.BillKind, error) {
	scope, err := requestScope(r)
	if err != nil {
		return scope, "", err
	}
	kind, err := pathBillKind(r)
	return scope, kind, err
}

func (h *BillHandler) CreateBill(w http.ResponseWriter, r *http.Request) {
	scope, kind, err := h.billTarget(r)
	if err != nil {
		writeError(w, h.log, r, err)
		return
	}
	var req models.BillRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.log, r, err)
		return
	}

	bill, err := h.Service.Create(r.Context(), scope, kind, &req)
	if err != nil {
		writeError(w, h.log, r, err)
		return
	}
	utils.JSON(w, http.StatusCreated, models.CreateBillResponse{
		Success:    true,
		BillID:     bill.ID,
		BillNumber: bill.BillNo,
	})
}

func (h *BillHandler) UpdateBill(w http.ResponseWriter, r *http.Request) {
	scope, kind, err := h.billTarget(r)
	if err != nil {
		writeError(w, h.log, r, err)
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, h.log, r, err)
		return
	}
	var req models.BillRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.log, r, err)
		return
	}

	bill, err := h.Service.Update(r.Context(), scope, kind, id, &req)
	if err != nil {
		writeError(w, h.log, r, err)
		return
	}
	utils.JSON(w, http.StatusOK, bill)
}

func (h *BillHandler) DeleteBill(w http.ResponseWriter, r *http.Request) {
	scope, kind, err := h.billTarget(r)
	if err != nil {
		writeError(w, h.log, r, err)
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, h.log, r, err)
		return
	}
	if err := h.Service.Delete(r.Context(), scope, kind, id); err != nil {
		writeError(w, h.log, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *BillHandler) GetBill(w http.ResponseWriter, r *http.Request) {
	scope, kind, err := h.billTarget(r)
	if err != nil {
		writeError(w, h.log, r, err)
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, h.log, r, err)
		return
	}
	bill, err := h.Service.Get(r.Context(), scope, kind, id)
	if err != nil {
		writeError(w, h.log, r, err)
		return
	}
	utils.JSON(w, http.StatusOK, bill)
}

// ListBills accepts optional party_no, from and to filters
func (h *BillHandler) ListBills(w http.ResponseWriter, r *http.Request) {
	scope, kind, err := h.billTarget(r)
	if err != nil {
		writeError(w, h.log, r, err)
		return
	}
	filter := models.BillFilter{PartyNo: r.URL.Query().Get("party_no")}
	if filter.From, err = queryDate(r, "from"); err != nil {
		writeError(w, h.log, r, err)
		return
	}
	if filter.To, err = queryDate(r, "to"); err != nil {
		writeError(w, h.log, r, err)
		return
	}

	bills, err := h.Service.List(r.Context(), scope, kind, filter)
	if err != nil {
		writeError(w, h.log, r, err)
		return
	}
	if bills == nil {
		bills = []models.Bill{}
	}
	utils.JSON(w, http.StatusOK, bills)
}

// ListCandidates returns souda items of party_no on date still unbilled on
// this side
func (h *BillHandler) ListCandidates(w http.ResponseWriter, r *http.Request) {
	scope, kind, err := h.billTarget(r)
	if err != nil {
		writeError(w, h.log, r, err)
		return
	}
	date, err := queryDate(r, "date")
	if err != nil {
		writeError(w, h.log, r, err)
		return
	}

	items, err := h.Service.Candidates(r.Context(), scope, kind, r.URL.Query().Get("party_no"), date)
	if err != nil {
		writeError(w, h.log, r, err)
		return
	}
	if items == nil {
		items = []models.CandidateItem{}
	}
	utils.JSON(w, http.StatusOK, items)
}
