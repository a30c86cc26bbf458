package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"mandi-backend/internal/auth"
	"mandi-backend/internal/cache"
	"mandi-backend/internal/handlers"
	"mandi-backend/internal/health"
	"mandi-backend/internal/middleware"
	"mandi-backend/internal/models"
)

type upPinger struct{}

func (upPinger) Ping(ctx context.Context) error { return nil }

type candidateRecorder struct {
	handlers.BillingAPI
	candidates int
}

func (c *candidateRecorder) Candidates(ctx context.Context, scope models.Scope, kind models.BillKind, partyNo string, date models.Date) ([]models.CandidateItem, error) {
	c.candidates++
	return nil, nil
}

type soudaDeleteRecorder struct {
	handlers.SoudaAPI
	deleted []int
}

func (s *soudaDeleteRecorder) Delete(ctx context.Context, scope models.Scope, id int) error {
	s.deleted = append(s.deleted, id)
	return nil
}

const testSecret = "secret"

func tokenFor(t *testing.T, role string) string {
	t.Helper()
	jwt := auth.NewJWTManager(testSecret, "mandi-backend", time.Hour)
	token, err := jwt.GenerateToken(models.Scope{CompanyID: 1, YearID: 1, UserID: 1}, role)
	require.NoError(t, err)
	return token
}

func newTestRouter(t *testing.T, billing handlers.BillingAPI) (http.Handler, string) {
	return newTestRouterWithSoudas(t, billing, nil)
}

func newTestRouterWithSoudas(t *testing.T, billing handlers.BillingAPI, soudas handlers.SoudaAPI) (http.Handler, string) {
	t.Helper()
	log := zap.NewNop()
	jwt := auth.NewJWTManager(testSecret, "mandi-backend", time.Hour)

	r := NewRouter(
		handlers.NewStatementHandler(nil, log),
		handlers.NewBillHandler(billing, log),
		handlers.NewSoudaHandler(soudas, log),
		handlers.NewCashBookHandler(nil, log),
		handlers.NewSequenceHandler(nil, log),
		handlers.NewHealthHandler(health.NewHealthChecker(upPinger{}, nil)),
		middleware.NewAuthMiddleware(jwt),
		cache.NewIdempotencyStore(nil, time.Minute),
		log,
	)
	return r, tokenFor(t, middleware.RoleAccountant)
}

func TestPublicRoutes(t *testing.T) {
	r, _ := newTestRouter(t, nil)

	for _, path := range []string{"/health", "/health/ready", "/metrics"} {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusOK, rec.Code, path)
	}
}

func TestAPIRequiresToken(t *testing.T) {
	r, _ := newTestRouter(t, nil)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/bills/customer", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCandidatesRouteIsNotAnID(t *testing.T) {
	billing := &candidateRecorder{}
	r, token := newTestRouter(t, billing)

	req := httptest.NewRequest(http.MethodGet, "/api/bills/customer/candidates?party_no=C001&date=2024-01-20", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, billing.candidates)
}

func TestUnknownRoute(t *testing.T) {
	r, _ := newTestRouter(t, nil)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/nope", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error":"Not found"}`, rec.Body.String())
}

func TestDeleteRequiresAdmin(t *testing.T) {
	soudas := &soudaDeleteRecorder{}
	r, accountant := newTestRouterWithSoudas(t, nil, soudas)

	tests := []struct {
		name   string
		method string
		path   string
	}{
		{"bill", http.MethodDelete, "/api/bills/customer/3"},
		{"souda", http.MethodDelete, "/api/soudas/5"},
		{"cash book", http.MethodDelete, "/api/cash-book/7"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, nil)
			req.Header.Set("Authorization", "Bearer "+accountant)
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)
			assert.Equal(t, http.StatusForbidden, rec.Code)
		})
	}
	assert.Empty(t, soudas.deleted)

	req := httptest.NewRequest(http.MethodDelete, "/api/soudas/5", nil)
	req.Header.Set("Authorization", "Bearer "+tokenFor(t, middleware.RoleAdmin))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, []int{5}, soudas.deleted)
}
