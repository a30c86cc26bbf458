package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"mandi-backend/internal/apperr"
	"mandi-backend/internal/middleware"
	"mandi-backend/internal/models"
	"mandi-backend/pkg/utils"
)

var errMissingScope = errors.New("no scope on request context")

// writeError maps err to its status. Internal details go to the log only.
func writeError(w http.ResponseWriter, log *zap.Logger, r *http.Request, err error) {
	e, ok := apperr.As(err)
	if !ok {
		e = apperr.Internal("unclassified", err)
	}
	if e.Kind == apperr.KindInternal {
		log.Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
	}
	utils.Error(w, e.HTTPStatus(), e.PublicMessage(), e.Field)
}

func decodeJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return apperr.Validation("body", "Invalid request body: %v", err)
	}
	return nil
}

// requestScope returns the scope Authenticate put on the context
func requestScope(r *http.Request) (models.Scope, error) {
	scope, ok := middleware.ScopeFromContext(r.Context())
	if !ok {
		return models.Scope{}, apperr.Internal("request scope", errMissingScope)
	}
	return scope, nil
}

func pathID(r *http.Request, name string) (int, error) {
	id, err := strconv.Atoi(mux.Vars(r)[name])
	if err != nil || id <= 0 {
		return 0, apperr.Validation(name, "must be a positive integer")
	}
	return id, nil
}

func pathBillKind(r *http.Request) (models.BillKind, error) {
	kind, err := models.ParseBillKind(mux.Vars(r)["kind"])
	if err != nil {
		return "", apperr.NotFound("%v", err)
	}
	return kind, nil
}

// queryDate parses an optional YYYY-MM-DD parameter
func queryDate(r *http.Request, name string) (models.Date, error) {
	value := r.URL.Query().Get(name)
	if value == "" {
		return models.Date{}, nil
	}
	d, err := models.ParseDate(value)
	if err != nil {
		return models.Date{}, apperr.Validation(name, "must be a YYYY-MM-DD date")
	}
	return d, nil
}

// requiredDate is queryDate for mandatory parameters
func requiredDate(r *http.Request, name string) (models.Date, error) {
	d, err := queryDate(r, name)
	if err != nil {
		return d, err
	}
	if d.IsZero() {
		return d, apperr.Validation(name, "is required")
	}
	return d, nil
}

func queryInt(r *http.Request, name string) (int, error) {
	value := r.URL.Query().Get(name)
	if value == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, apperr.Validation(name, "must be an integer")
	}
	return n, nil
}
