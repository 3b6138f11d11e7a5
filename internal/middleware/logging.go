package middleware

import (
	"context"
	"net/http"
	"time"

	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

const loginSlotKey ctxKey = "login-slot"

// loginSlot lets an inner CertAuth hand the login back out to the
// logging middleware, which only sees its own request context.
type loginSlot struct {
	login string
}

func setLoggedLogin(ctx context.Context, login string) {
	if slot, ok := ctx.Value(loginSlotKey).(*loginSlot); ok {
		slot.login = login
	}
}

// WithRequestLogging logs method, path, status, size and duration of
// every request. The login is included once CertAuth has run.
func WithRequestLogging(log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			slot := &loginSlot{}
			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(context.WithValue(r.Context(), loginSlotKey, slot)))

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			fields := []zap.Field{
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", status),
				zap.Int("size", ww.BytesWritten()),
				zap.Duration("duration", time.Since(start)),
			}
			if id := chiMiddleware.GetReqID(r.Context()); id != "" {
				fields = append(fields, zap.String("request_id", id))
			}
			if slot.login != "" {
				fields = append(fields, zap.String("login", slot.login))
			}
			if status >= http.StatusInternalServerError {
				log.Warn("request failed", fields...)
				return
			}
			log.Info("request", fields...)
		})
	}
}
