// Package events publishes domain events after documents are committed.
// Delivery is best effort: a broker outage never fails the write that
// produced the event.
package events

import (
	"context"
	"time"

	"github.com/google/uuid"

	"mandi-backend/internal/models"
	"mandi-backend/internal/timeutil"
)

const (
	TypeBillCreated  = "bill.created"
	TypeBillUpdated  = "bill.updated"
	TypeBillDeleted  = "bill.deleted"
	TypeSoudaCreated = "souda.created"
	TypeCashCreated  = "cash.created"
)

// Event is the envelope written to the broker
type Event struct {
	ID         string    `json:"id"`
	Type       string    `json:"type"`
	CompanyID  int       `json:"company_id"`
	YearID     int       `json:"year_id"`
	UserID     int       `json:"user_id"`
	DocumentNo string    `json:"document_no,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
	Payload    any       `json:"payload,omitempty"`
}

// New stamps an event with a fresh id and the current IST time
func New(eventType string, scope models.Scope, documentNo string, payload any) Event {
	return Event{
		ID:         uuid.NewString(),
		Type:       eventType,
		CompanyID:  scope.CompanyID,
		YearID:     scope.YearID,
		UserID:     scope.UserID,
		DocumentNo: documentNo,
		OccurredAt: timeutil.Now(),
		Payload:    payload,
	}
}

type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// NopPublisher drops every event. Used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) error { return nil }
