package auth

import (
	"log/slog"
	"net/http"

	"github.com/frahmantamala/wbs-tracker/internal/transport/middleware"
)

type RBACAuthorization struct {
	checker middleware.CapabilityChecker
	logger  *slog.Logger
}

func NewRBACAuthorization(checker middleware.CapabilityChecker, logger *slog.Logger) *RBACAuthorization {
	return &RBACAuthorization{
		checker: checker,
		logger:  logger,
	}
}

// RequireCapability guards a route group with one capability.
func (ra *RBACAuthorization) RequireCapability(capability string) func(http.Handler) http.Handler {
	return middleware.RequireCapability(ra.checker, ra.logger, capability)
}
