package middleware

import (
	"context"
	"net/http"
	"time"

	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/atinyakov/itemgate/internal/models"
)

// RequestIDHeader carries the id assigned to each request.
const RequestIDHeader = "X-Request-ID"

const requestInfoKey ctxKey = "request-info"

// requestInfo is filled in by inner middlewares so the logger can report
// who made the call once the handler returns.
type requestInfo struct {
	id       string
	identity models.Identity
}

// WithRequestLogging returns a middleware that logs one line per request:
// method, path, status, response size, duration, remote address, request id
// and the authenticated user, if any. Credentials are never logged.
func WithRequestLogging(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			info := &requestInfo{id: r.Header.Get(RequestIDHeader)}
			if info.id == "" {
				info.id = uuid.NewString()
			}
			w.Header().Set(RequestIDHeader, info.id)

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			ctx := context.WithValue(r.Context(), requestInfoKey, info)
			next.ServeHTTP(ww, r.WithContext(ctx))

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			logger.Info("request",
				zap.String("request_id", info.id),
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", status),
				zap.Int("size", ww.BytesWritten()),
				zap.Duration("duration", time.Since(start)),
				zap.String("remote", r.RemoteAddr),
				zap.String("user", string(info.identity)),
			)
		})
	}
}

// RequestIDFromContext returns the id assigned by WithRequestLogging, or an
// empty string outside of it.
func RequestIDFromContext(ctx context.Context) string {
	if info, ok := ctx.Value(requestInfoKey).(*requestInfo); ok {
		return info.id
	}
	return ""
}

func recordIdentity(ctx context.Context, id models.Identity) {
	if info, ok := ctx.Value(requestInfoKey).(*requestInfo); ok {
		info.identity = id
	}
}
