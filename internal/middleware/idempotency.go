package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"
	"time"

	"github.com/tychicus04/web-ban-den-sub006/pkg/response"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const idempotencyTTL = 24 * time.Hour

type recordingWriter struct {
	http.ResponseWriter
	status int
	body   bytes.Buffer
}

func (w *recordingWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

func (w *recordingWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

// cachedResponse is what a key stores: the status code and the body, so a
// replay answers exactly what the first attempt answered. A cached 400 must
// replay as a 400, not dress up as a success.
type cachedResponse struct {
	Status int             `json:"status"`
	Body   json.RawMessage `json:"body"`
}

// replayCached writes a stored response verbatim, status code included.
// Returns false when the stored payload is unreadable, in which case the
// request falls through to the handler.
func replayCached(w http.ResponseWriter, raw []byte) bool {
	var cached cachedResponse
	if err := json.Unmarshal(raw, &cached); err != nil || cached.Status == 0 {
		return false
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Idempotency-Hit", "true")
	w.WriteHeader(cached.Status)
	_, _ = w.Write(cached.Body)
	return true
}

// Idempotency replays the cached response for a repeated Idempotency-Key,
// so a client retrying a wallet mutation after a network fault cannot
// duplicate it. Keys must be UUIDs; requests without a key pass through.
func Idempotency(rdb *redis.Client, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := r.Header.Get("Idempotency-Key")
			if key == "" {
				next.ServeHTTP(w, r)
				return
			}
			if _, err := uuid.Parse(key); err != nil {
				response.Error(w, http.StatusBadRequest, "invalid Idempotency-Key")
				return
			}
			if rdb == nil {
				next.ServeHTTP(w, r)
				return
			}

			cacheKey := "idem:" + key
			if raw, err := rdb.Get(r.Context(), cacheKey).Bytes(); err == nil {
				if replayCached(w, raw) {
					logger.Info("idempotency hit, replaying cached response",
						zap.String("key", key))
					return
				}
			}

			rec := &recordingWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)

			// Cache only definitive outcomes; 5xx means the client should
			// genuinely retry.
			if rec.status >= 500 || rec.body.Len() == 0 {
				return
			}
			payload, err := json.Marshal(cachedResponse{
				Status: rec.status,
				Body:   json.RawMessage(rec.body.Bytes()),
			})
			if err != nil {
				logger.Warn("failed to encode idempotency payload",
					zap.String("key", key),
					zap.Error(err))
				return
			}
			if err := rdb.Set(r.Context(), cacheKey, payload, idempotencyTTL).Err(); err != nil {
				logger.Warn("failed to save idempotency key",
					zap.String("key", key),
					zap.Error(err))
			}
		})
	}
}
