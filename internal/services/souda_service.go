package services

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"mandi-backend/internal/apperr"
	"mandi-backend/internal/events"
	"mandi-backend/internal/metrics"
	"mandi-backend/internal/models"
	"mandi-backend/internal/sequence"
)

// SoudaService records trade events. A souda becomes read-only once any of
// its items has been billed on either side.
type SoudaService struct {
	tx        TxRunner
	ledgers   LedgerLookup
	soudas    SoudaStore
	sequences SequenceAllocator
	prefixes  sequence.Prefixes
	events    events.Publisher
	log       *zap.Logger
}

// NewSoudaService wires the souda workflow
func NewSoudaService(
	tx TxRunner,
	ledgers LedgerLookup,
	soudas SoudaStore,
	sequences SequenceAllocator,
	prefixes sequence.Prefixes,
	publisher events.Publisher,
	log *zap.Logger,
) *SoudaService {
	return &SoudaService{
		tx:        tx,
		ledgers:   ledgers,
		soudas:    soudas,
		sequences: sequences,
		prefixes:  prefixes,
		events:    publisher,
		log:       log.Named("souda"),
	}
}

func (s *SoudaService) Create(ctx context.Context, scope models.Scope, req *models.SoudaRequest) (*models.Souda, error) {
	souda, err := buildSouda(scope, req)
	if err != nil {
		return nil, err
	}
	if err := s.checkParties(ctx, scope, souda.Items); err != nil {
		return nil, err
	}

	err = s.tx.WithTx(ctx, func(tx pgx.Tx) error {
		no, err := s.sequences.NextTx(ctx, tx, scope, sequence.KindSouda, s.prefixes.For(sequence.KindSouda))
		if err != nil {
			return apperr.EnsureInternal("allocate souda number", err)
		}
		souda.SoudaNo = no
		return apperr.EnsureInternal("persist souda", s.soudas.CreateTx(ctx, tx, souda))
	})
	if err != nil {
		logFailure(s.log, "create souda", err)
		return nil, err
	}

	metrics.DocumentNumbersIssued.WithLabelValues(string(sequence.KindSouda)).Inc()
	publish(ctx, s.events, s.log, events.New(events.TypeSoudaCreated, scope, souda.SoudaNo, map[string]any{
		"souda_id": souda.ID,
		"items":    len(souda.Items),
	}))
	s.log.Info("souda created", zap.String("souda_no", souda.SoudaNo), zap.Int("items", len(souda.Items)))
	return souda, nil
}

// Update replaces the header and all items. The number is kept.
func (s *SoudaService) Update(ctx context.Context, scope models.Scope, id int, req *models.SoudaRequest) (*models.Souda, error) {
	souda, err := buildSouda(scope, req)
	if err != nil {
		return nil, err
	}
	if err := s.checkParties(ctx, scope, souda.Items); err != nil {
		return nil, err
	}

	err = s.tx.WithTx(ctx, func(tx pgx.Tx) error {
		existing, err := s.soudas.GetForUpdateTx(ctx, tx, scope, id)
		if err != nil {
			return err
		}
		if err := ensureUnbilled(existing); err != nil {
			return err
		}
		souda.ID = existing.ID
		souda.SoudaNo = existing.SoudaNo
		souda.CreatedBy = existing.CreatedBy
		return apperr.EnsureInternal("update souda", s.soudas.UpdateTx(ctx, tx, souda))
	})
	if err != nil {
		logFailure(s.log, "update souda", err)
		return nil, err
	}
	return souda, nil
}

func (s *SoudaService) Delete(ctx context.Context, scope models.Scope, id int) error {
	err := s.tx.WithTx(ctx, func(tx pgx.Tx) error {
		existing, err := s.soudas.GetForUpdateTx(ctx, tx, scope, id)
		if err != nil {
			return err
		}
		if err := ensureUnbilled(existing); err != nil {
			return err
		}
		return apperr.EnsureInternal("delete souda", s.soudas.DeleteTx(ctx, tx, scope, id))
	})
	if err != nil {
		logFailure(s.log, "delete souda", err)
	}
	return err
}

func (s *SoudaService) Get(ctx context.Context, scope models.Scope, id int) (*models.Souda, error) {
	return s.soudas.GetByID(ctx, scope, id)
}

func (s *SoudaService) List(ctx context.Context, scope models.Scope, from, to models.Date) ([]models.Souda, error) {
	if !from.IsZero() && !to.IsZero() && to.Before(from) {
		return nil, apperr.Validation("to", "must not be before from")
	}
	return s.soudas.List(ctx, scope, from, to)
}

// checkParties verifies every farmer and customer number is a registered ledger
func (s *SoudaService) checkParties(ctx context.Context, scope models.Scope, items []models.SoudaItem) error {
	checked := map[string]bool{}
	for _, item := range items {
		for _, party := range []struct {
			kind models.LedgerKind
			no   string
		}{
			{models.LedgerKindFarmer, item.FarmerNo},
			{models.LedgerKindCustomer, item.CustomerNo},
		} {
			key := string(party.kind) + ":" + party.no
			if checked[key] {
				continue
			}
			if _, err := s.ledgers.GetByPartyNo(ctx, scope, party.kind, party.no); err != nil {
				return err
			}
			checked[key] = true
		}
	}
	return nil
}

func ensureUnbilled(souda *models.Souda) error {
	for _, item := range souda.Items {
		if item.Billed() {
			return apperr.Conflict("souda %s has billed items and can no longer change", souda.SoudaNo)
		}
	}
	return nil
}

func buildSouda(scope models.Scope, req *models.SoudaRequest) (*models.Souda, error) {
	if req == nil {
		return nil, apperr.Validation("body", "is required")
	}
	if req.SoudaDate.IsZero() {
		return nil, apperr.Validation("souda_date", "is required")
	}
	if len(req.Items) == 0 {
		return nil, apperr.Validation("items", "at least one item is required")
	}

	souda := &models.Souda{
		CompanyID: scope.CompanyID,
		YearID:    scope.YearID,
		SoudaDate: req.SoudaDate,
		Remarks:   strings.TrimSpace(req.Remarks),
		CreatedBy: scope.UserID,
		Items:     make([]models.SoudaItem, 0, len(req.Items)),
	}
	for i, in := range req.Items {
		field := itemField("items", i)
		farmerNo := strings.TrimSpace(in.FarmerNo)
		customerNo := strings.TrimSpace(in.CustomerNo)
		if farmerNo == "" {
			return nil, apperr.Validation(field+".farmer_no", "is required")
		}
		if customerNo == "" {
			return nil, apperr.Validation(field+".customer_no", "is required")
		}
		if strings.TrimSpace(in.ProductName) == "" {
			return nil, apperr.Validation(field+".product_name", "is required")
		}
		if err := checkLine(field, in.Quantity, in.Weight, in.Rate, in.Amount); err != nil {
			return nil, err
		}
		souda.Items = append(souda.Items, models.SoudaItem{
			FarmerNo:    farmerNo,
			CustomerNo:  customerNo,
			ProductName: strings.TrimSpace(in.ProductName),
			Quantity:    in.Quantity,
			Weight:      in.Weight,
			Rate:        in.Rate,
			Amount:      lineAmount(in.Quantity, in.Weight, in.Rate, in.Amount),
		})
	}
	return souda, nil
}
