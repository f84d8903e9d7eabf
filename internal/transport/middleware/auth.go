package middleware

import (
	"net/http"

	"github.com/frahmantamala/wbs-tracker/internal"
	"github.com/frahmantamala/wbs-tracker/pkg/logger"
)

// UserContext tags the request logger with the authenticated caller. It must
// run after the auth middleware has placed the identity in the context.
func UserContext(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := internal.IdentityFromContext(r.Context())
		if !ok {
			next.ServeHTTP(w, r)
			return
		}

		ctx := logger.With(r.Context(), "user_id", id.UserID, "role", id.Role)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
