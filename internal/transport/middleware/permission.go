package middleware

import (
	"log/slog"
	"net/http"

	"github.com/frahmantamala/wbs-tracker/internal"
)

// CapabilityChecker answers whether a role grants a capability.
type CapabilityChecker interface {
	Can(role, capability string) bool
}

// RequireCapability rejects requests whose caller lacks capability: 401 when
// no identity is present, 403 when the role does not grant it.
func RequireCapability(checker CapabilityChecker, logger *slog.Logger, capability string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, ok := internal.IdentityFromContext(r.Context())
			if !ok {
				writeAppError(w, internal.ErrInvalidToken)
				return
			}

			if !checker.Can(id.Role, capability) {
				logger.WarnContext(r.Context(), "access denied: missing capability",
					"user_id", id.UserID,
					"role", id.Role,
					"required_capability", capability)
				writeAppError(w, internal.ErrMissingCapability)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
