package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  *Error
		want int
	}{
		{"validation", Validation("bill_date", "is required"), http.StatusBadRequest},
		{"not found", NotFound("ledger %d not found", 4), http.StatusNotFound},
		{"conflict", Conflict("sequence collision"), http.StatusConflict},
		{"duplicate bill reports 400", DuplicateBill("C-7", "2024-01-05"), http.StatusBadRequest},
		{"internal", Internal("load ledger", errors.New("boom")), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.HTTPStatus())
		})
	}
}

func TestPublicMessageHidesInternalCause(t *testing.T) {
	err := Internal("sum bills", errors.New("pq: relation does not exist"))
	assert.Equal(t, "Internal server error", err.PublicMessage())
	assert.Contains(t, err.Error(), "relation does not exist")
}

func TestValidationMessageCarriesField(t *testing.T) {
	err := Validation("items[0].rate", "must be positive")
	assert.Equal(t, "items[0].rate: must be positive", err.PublicMessage())
}

func TestAsThroughWrapping(t *testing.T) {
	wrapped := fmt.Errorf("create bill: %w", NotFound("ledger for customer %s not found", "C-1"))

	e, ok := As(wrapped)
	require.True(t, ok)
	assert.Equal(t, KindNotFound, e.Kind)
	assert.True(t, Is(wrapped, KindNotFound))
	assert.False(t, Is(wrapped, KindConflict))
}

func TestEnsureInternal(t *testing.T) {
	assert.NoError(t, EnsureInternal("op", nil))

	plain := EnsureInternal("list receipts", errors.New("timeout"))
	assert.Equal(t, KindInternal, KindOf(plain))

	classified := NotFound("missing")
	assert.Same(t, classified, EnsureInternal("op", classified))
}

func TestKindOfUnclassified(t *testing.T) {
	assert.Equal(t, KindInternal, KindOf(errors.New("anything")))
}
