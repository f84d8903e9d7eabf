package auth

import (
	"context"

	"github.com/frahmantamala/wbs-tracker/internal"
	"github.com/jmoiron/sqlx"
)

// ABACPolicy decides per-resource access from the caller's capabilities plus
// the assignment attributes of the resource.
type ABACPolicy struct {
	checker RoleCapabilities
}

func NewABACPolicy(checker RoleCapabilities) *ABACPolicy {
	return &ABACPolicy{checker: checker}
}

// CanUpdateTaskProgress allows update_any_progress holders on any task and
// update_progress holders only on tasks assigned to them.
func (p *ABACPolicy) CanUpdateTaskProgress(id *internal.Identity, assigned bool) error {
	if id == nil || id.UserID == "" {
		return internal.ErrInvalidToken
	}
	if p.checker.Can(id.Role, CapUpdateAnyProgress) {
		return nil
	}
	if !p.checker.Can(id.Role, CapUpdateProgress) {
		return internal.ErrMissingCapability
	}
	if !assigned {
		return internal.ErrNotAssigned
	}
	return nil
}

// AssignmentLookup answers whether a task is in a user's tasks_assign list.
type AssignmentLookup interface {
	IsTaskAssigned(ctx context.Context, userID, taskID string) (bool, error)
}

// SQLAssignmentLookup reads the tasks_assign join table directly.
type SQLAssignmentLookup struct {
	db *sqlx.DB
}

func NewSQLAssignmentLookup(db *sqlx.DB) *SQLAssignmentLookup {
	return &SQLAssignmentLookup{db: db}
}

func (l *SQLAssignmentLookup) IsTaskAssigned(ctx context.Context, userID, taskID string) (bool, error) {
	var n int
	query := l.db.Rebind(`SELECT COUNT(1) FROM wbs_user_tasks WHERE user_id = ? AND task_id = ?`)
	if err := l.db.GetContext(ctx, &n, query, userID, taskID); err != nil {
		return false, err
	}
	return n > 0, nil
}

// ProgressGuard decides whether the caller in ctx may book progress on a task.
type ProgressGuard struct {
	lookup AssignmentLookup
	abac   *ABACPolicy
}

func NewProgressGuard(lookup AssignmentLookup, abac *ABACPolicy) *ProgressGuard {
	return &ProgressGuard{lookup: lookup, abac: abac}
}

func (g *ProgressGuard) AuthorizeProgress(ctx context.Context, taskID string) error {
	id, ok := internal.IdentityFromContext(ctx)
	if !ok {
		return internal.ErrInvalidToken
	}
	if g.abac.checker.Can(id.Role, CapUpdateAnyProgress) || !g.abac.checker.Can(id.Role, CapUpdateProgress) {
		return g.abac.CanUpdateTaskProgress(id, false)
	}

	assigned, err := g.lookup.IsTaskAssigned(ctx, id.UserID, taskID)
	if err != nil {
		return internal.NewInternalError("Authorization check failed", err)
	}
	return g.abac.CanUpdateTaskProgress(id, assigned)
}
