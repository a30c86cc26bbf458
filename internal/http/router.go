package http

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"mandi-backend/internal/handlers"
	"mandi-backend/internal/middleware"
	"mandi-backend/pkg/utils"
)

func NewRouter(
	statementHandler *handlers.StatementHandler,
	billHandler *handlers.BillHandler,
	soudaHandler *handlers.SoudaHandler,
	cashBookHandler *handlers.CashBookHandler,
	sequenceHandler *handlers.SequenceHandler,
	healthHandler *handlers.HealthHandler,
	authMiddleware *middleware.AuthMiddleware,
	idempotency middleware.IdempotencyStore,
	log *zap.Logger,
) *mux.Router {
	r := mux.NewRouter()
	r.Use(middleware.PanicRecovery(log))
	r.Use(middleware.RequestLogger(log))
	r.Use(middleware.MetricsMiddleware)

	// Health and metrics (NO AUTHENTICATION REQUIRED)
	r.HandleFunc("/health", healthHandler.BasicHealth).Methods("GET")
	r.HandleFunc("/health/ready", healthHandler.ReadinessHealth).Methods("GET")
	r.Handle("/metrics", promhttp.Handler()).Methods("GET")

	api := r.PathPrefix("/api").Subrouter()
	api.Use(authMiddleware.Authenticate)
	api.Use(middleware.Idempotency(idempotency, log))

	// Deleting posted documents is reserved for admins
	adminOnly := func(h http.HandlerFunc) http.HandlerFunc {
		return middleware.RequireRole(middleware.RoleAdmin)(h).ServeHTTP
	}

	// Ledger statements
	api.HandleFunc("/ledgers/{id:[0-9]+}/statement", statementHandler.GetStatement).Methods("GET")
	api.HandleFunc("/ledgers/{id:[0-9]+}/opening-balance", statementHandler.GetOpeningBalance).Methods("GET")

	// Bills, {kind} is customer or farmer
	api.HandleFunc("/bills/{kind}", billHandler.CreateBill).Methods("POST")
	api.HandleFunc("/bills/{kind}", billHandler.ListBills).Methods("GET")
	api.HandleFunc("/bills/{kind}/candidates", billHandler.ListCandidates).Methods("GET")
	api.HandleFunc("/bills/{kind}/{id:[0-9]+}", billHandler.GetBill).Methods("GET")
	api.HandleFunc("/bills/{kind}/{id:[0-9]+}", billHandler.UpdateBill).Methods("PUT")
	api.HandleFunc("/bills/{kind}/{id:[0-9]+}", adminOnly(billHandler.DeleteBill)).Methods("DELETE")

	// Soudas
	api.HandleFunc("/soudas", soudaHandler.CreateSouda).Methods("POST")
	api.HandleFunc("/soudas", soudaHandler.ListSoudas).Methods("GET")
	api.HandleFunc("/soudas/{id:[0-9]+}", soudaHandler.GetSouda).Methods("GET")
	api.HandleFunc("/soudas/{id:[0-9]+}", soudaHandler.UpdateSouda).Methods("PUT")
	api.HandleFunc("/soudas/{id:[0-9]+}", adminOnly(soudaHandler.DeleteSouda)).Methods("DELETE")

	// Cash book
	api.HandleFunc("/cash-book", cashBookHandler.CreateEntry).Methods("POST")
	api.HandleFunc("/cash-book", cashBookHandler.ListEntries).Methods("GET")
	api.HandleFunc("/cash-book/{id:[0-9]+}", cashBookHandler.GetEntry).Methods("GET")
	api.HandleFunc("/cash-book/{id:[0-9]+}", adminOnly(cashBookHandler.DeleteEntry)).Methods("DELETE")

	// Document numbering
	api.HandleFunc("/sequences/{kind}/next", sequenceHandler.NextNumber).Methods("GET")

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		utils.Error(w, http.StatusNotFound, "Not found", "")
	})

	return r
}
