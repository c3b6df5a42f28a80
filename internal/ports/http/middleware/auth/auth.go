package auth

import (
	"context"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"dao-governance/internal/model"
)

type contextKey struct{}

var callerKey contextKey

// Verifier turns a bearer token back into the session context it was
// issued for.
type Verifier interface {
	VerifySession(token string) (model.SessionContext, error)
}

type Middleware struct {
	logger   *zap.Logger
	verifier Verifier
}

func NewMiddleware(logger *zap.Logger, verifier Verifier) Middleware {
	return Middleware{logger: logger, verifier: verifier}
}

// Require rejects requests without a valid session token and attaches the
// caller context for the handler.
func (m Middleware) Require(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
		if token == "" {
			m.authError(w, "missing session token")
			return
		}

		caller, err := m.verifier.VerifySession(token)
		if err != nil {
			m.authError(w, "session token rejected: "+err.Error())
			return
		}

		ctx := context.WithValue(r.Context(), callerKey, caller)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (m Middleware) authError(w http.ResponseWriter, message string) {
	m.logger.Warn(message)
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(message))
}

// CallerFrom extracts the authenticated caller set by Require.
func CallerFrom(ctx context.Context) (model.SessionContext, bool) {
	caller, ok := ctx.Value(callerKey).(model.SessionContext)
	return caller, ok
}
