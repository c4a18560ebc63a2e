package http

import (
	"event-ticket/common/auth"
	"log/slog"
	"net/http"
	"slices"
	"time"
)

func TimeoutMiddleware(timeout time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.TimeoutHandler(next, timeout, "request timeout")
	}
}

func CorsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// Authenticator guards routes with the bearer token issued by the sign-in service.
type Authenticator struct {
	Verifier auth.Verifier
}

// Require rejects requests without a valid token with 401 and, when roles are given,
// callers holding none of them with 403.
func (a Authenticator) Require(roles ...string) func(http.HandlerFunc) http.Handler {
	return func(next http.HandlerFunc) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, err := a.Verifier.Verify(auth.BearerFromHeader(r.Header.Get("Authorization")))
			if err != nil {
				slog.DebugContext(r.Context(), "rejected bearer token", slog.String("reason", err.Error()))
				writeErrorResponse(w, errUnauthorized)
				return
			}

			if len(roles) > 0 && !slices.Contains(roles, id.Role) {
				writeErrorResponse(w, errForbidden)
				return
			}

			next.ServeHTTP(w, r.WithContext(auth.WithIdentity(r.Context(), id)))
		})
	}
}
