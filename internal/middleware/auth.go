package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/reazulislam1487/event-hub-server/internal/auth"
	"github.com/reazulislam1487/event-hub-server/internal/respond"
)

// Verifier resolves a bearer token to the caller.
type Verifier interface {
	Verify(ctx context.Context, raw string) (auth.Identity, error)
}

// RequireAuth validates the bearer token and injects the caller's identity
// into the request context.
func RequireAuth(v Verifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, err := auth.TokenFromHeader(r.Header.Get("Authorization"))
			if err != nil {
				respond.Error(w, r, http.StatusUnauthorized, "not authenticated", nil)
				return
			}

			id, err := v.Verify(r.Context(), raw)
			switch {
			case errors.Is(err, auth.ErrUnauthenticated):
				respond.Error(w, r, http.StatusUnauthorized, "session expired", nil)
				return
			case err != nil:
				respond.Error(w, r, http.StatusInternalServerError, "failed to verify session", err)
				return
			}

			ctx := auth.WithIdentity(r.Context(), id)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
