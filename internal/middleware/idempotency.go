package middleware

import (
	"bytes"
	"context"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"mandi-backend/internal/cache"
	"mandi-backend/pkg/utils"
)

const (
	IdempotencyHeader = "Idempotency-Key"
	ReplayedHeader    = "Idempotent-Replayed"
)

// IdempotencyStore remembers replies by key
type IdempotencyStore interface {
	Lookup(ctx context.Context, key string) (*cache.Response, bool, error)
	Reserve(ctx context.Context, key string) (bool, error)
	Save(ctx context.Context, key string, resp *cache.Response) error
	Release(ctx context.Context, key string) error
}

// Idempotency replays the stored reply when a POST is retried with the same
// Idempotency-Key. Keys are scoped to the caller. Server errors are not
// stored so the client can retry them. Cache failures let the request
// through. Must run after Authenticate.
func Idempotency(store IdempotencyStore, log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get(IdempotencyHeader)
			if r.Method != http.MethodPost || header == "" {
				next.ServeHTTP(w, r)
				return
			}

			scope, _ := ScopeFromContext(r.Context())
			key := fmt.Sprintf("%d:%d:%d:%s:%s", scope.CompanyID, scope.YearID, scope.UserID, r.URL.Path, header)
			ctx := r.Context()

			stored, pending, err := store.Lookup(ctx, key)
			if err != nil {
				log.Warn("idempotency lookup failed", zap.Error(err))
				next.ServeHTTP(w, r)
				return
			}
			if stored != nil {
				w.Header().Set("Content-Type", stored.ContentType)
				w.Header().Set(ReplayedHeader, "true")
				w.WriteHeader(stored.Status)
				w.Write(stored.Body)
				return
			}
			if pending {
				utils.Error(w, http.StatusConflict, "a request with this Idempotency-Key is in progress", "")
				return
			}

			reserved, err := store.Reserve(ctx, key)
			if err != nil {
				log.Warn("idempotency reserve failed", zap.Error(err))
				next.ServeHTTP(w, r)
				return
			}
			if !reserved {
				utils.Error(w, http.StatusConflict, "a request with this Idempotency-Key is in progress", "")
				return
			}

			// A panicking handler must not leave the key pending until lockTTL.
			// The panic is re-raised for PanicRecovery.
			defer func() {
				if p := recover(); p != nil {
					if err := store.Release(context.WithoutCancel(ctx), key); err != nil {
						log.Warn("idempotency release failed", zap.Error(err))
					}
					panic(p)
				}
			}()

			rec := &captureWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)

			if rec.status >= http.StatusInternalServerError {
				if err := store.Release(ctx, key); err != nil {
					log.Warn("idempotency release failed", zap.Error(err))
				}
				return
			}
			resp := &cache.Response{
				Status:      rec.status,
				ContentType: rec.Header().Get("Content-Type"),
				Body:        rec.body.Bytes(),
			}
			if err := store.Save(ctx, key, resp); err != nil {
				log.Warn("idempotency save failed", zap.Error(err))
			}
		})
	}
}

// captureWriter writes through and keeps a copy of the reply
type captureWriter struct {
	http.ResponseWriter
	status int
	body   bytes.Buffer
}

func (c *captureWriter) WriteHeader(status int) {
	c.status = status
	c.ResponseWriter.WriteHeader(status)
}

func (c *captureWriter) Write(b []byte) (int, error) {
	c.body.Write(b)
	return c.ResponseWriter.Write(b)
}
