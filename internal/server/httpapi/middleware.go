package httpapi

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/secrets/internal/logging"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
)

type ctxKey string

const accountIDKey ctxKey = "accountID"

// AccountIDFromContext returns the account attached by RequireSession.
func AccountIDFromContext(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(accountIDKey).(int64)
	return id, ok
}

// accessLog logs one line per request.
func accessLog(log logging.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			log.Info(r.Context(), "request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"duration", time.Since(start),
				"request_id", chimiddleware.GetReqID(r.Context()),
				"remote_addr", r.RemoteAddr,
			)
		})
	}
}

// requireSession rejects requests without a live session and stores the
// account id in the request context.
func (h *Handler) requireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := h.accounts.CurrentSession(r.Context(), h.token(r))
		if !ok {
			fail(w, ErrUnauthorized)
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), accountIDKey, id)))
	})
}

// token returns the session token from the Authorization header or, failing
// that, from the session cookie.
func (h *Handler) token(r *http.Request) string {
	if auth := r.Header.Get("Authorization"); strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimPrefix(auth, "Bearer ")
	}

	session, err := h.cookies.Get(r, h.sessionCookie)
	if err != nil {
		return ""
	}
	token, _ := session.Values[tokenKey].(string)
	return token
}
