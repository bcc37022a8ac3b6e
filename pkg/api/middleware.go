package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/orbitsandbox/orbit-agent/pkg/auth"
)

type authContextKey struct{}

// authMiddleware resolves every request's Authorization header to an
// auth.AuthContext exactly once (spec.md §4.8.2) and stores it in the
// request context; handlers then assert the scope they need via
// authContextFrom.
func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authCtx, err := s.auth.Authorize(r.Context(), r.Header.Get("Authorization"))
		if err != nil {
			if errors.Is(err, auth.ErrUnauthenticated) {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			writeErrorMessage(w, http.StatusInternalServerError, err.Error())
			return
		}
		ctx := context.WithValue(r.Context(), authContextKey{}, authCtx)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func authContextFrom(r *http.Request) auth.AuthContext {
	authCtx, _ := r.Context().Value(authContextKey{}).(auth.AuthContext)
	return authCtx
}

// requireAdmin returns true and writes nothing if the request's
// AuthContext is admin; otherwise it writes 403 and returns false.
func requireAdmin(w http.ResponseWriter, r *http.Request) bool {
	if authContextFrom(r).IsAdmin() {
		return true
	}
	w.WriteHeader(http.StatusForbidden)
	return false
}

// requireScope returns true and writes nothing if the request's
// AuthContext carries scope; otherwise it writes 403 and returns false.
func requireScope(w http.ResponseWriter, r *http.Request, scope string) bool {
	if authContextFrom(r).HasScope(scope) {
		return true
	}
	w.WriteHeader(http.StatusForbidden)
	return false
}
