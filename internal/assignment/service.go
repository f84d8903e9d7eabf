package assignment

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/frahmantamala/wbs-tracker/internal"
	"github.com/frahmantamala/wbs-tracker/internal/auditlog"
	"github.com/frahmantamala/wbs-tracker/internal/metrics"
)

type RepositoryAPI interface {
	UserExists(ctx context.Context, userID string) (bool, error)
	ItemExists(ctx context.Context, list, itemID string) (bool, error)
	Add(ctx context.Context, userID, list, itemID string) (bool, error)
	Remove(ctx context.Context, userID, list, itemID string) (bool, error)
	Items(ctx context.Context, userID, list string) ([]string, error)
}

type AuditRecorder interface {
	Record(ctx context.Context, actorID, action, itemID, itemType, status, details string)
}

type ServiceAPI interface {
	Assign(ctx context.Context, dto ChangeDTO) (*Result, error)
	Unassign(ctx context.Context, dto ChangeDTO) (*Result, error)
}

type Service struct {
	repo    RepositoryAPI
	audit   AuditRecorder
	logger  *slog.Logger
	metrics *metrics.Metrics
}

func NewService(repo RepositoryAPI, audit AuditRecorder, logger *slog.Logger, m *metrics.Metrics) *Service {
	return &Service{
		repo:    repo,
		audit:   audit,
		logger:  logger,
		metrics: m,
	}
}

// Assign adds itemID to the user's list. Assigning an id already present
// leaves the list unchanged.
func (s *Service) Assign(ctx context.Context, dto ChangeDTO) (*Result, error) {
	actor := internal.ActorID(ctx)
	action := fmt.Sprintf("Assigned %s %s to user %s", itemType(dto.List), dto.ItemID, dto.UserID)
	fail := func(err error) (*Result, error) {
		s.audit.Record(ctx, actor, action, dto.ItemID, itemType(dto.List), auditlog.StatusFailure, err.Error())
		return nil, err
	}

	if verr := dto.Validate(); verr != nil {
		return fail(verr)
	}

	ok, err := s.repo.UserExists(ctx, dto.UserID)
	if err != nil {
		return fail(s.internalError("failed to look up user", dto, err))
	}
	if !ok {
		return fail(internal.ErrUserNotFound)
	}

	ok, err = s.repo.ItemExists(ctx, dto.List, dto.ItemID)
	if err != nil {
		return fail(s.internalError("failed to look up item", dto, err))
	}
	if !ok {
		if dto.List == ListProjects {
			return fail(internal.ErrProjectNotFound)
		}
		return fail(internal.ErrTaskNotFound)
	}

	added, err := s.repo.Add(ctx, dto.UserID, dto.List, dto.ItemID)
	if err != nil {
		return fail(s.internalError("failed to assign", dto, err))
	}

	if added {
		s.metrics.AssignmentChange(dto.List, "assign")
	}
	s.audit.Record(ctx, actor, action, dto.ItemID, itemType(dto.List), auditlog.StatusSuccess, "")
	return s.result(ctx, dto)
}

// Unassign removes itemID from the user's list; removing an absent id is a
// successful no-op.
func (s *Service) Unassign(ctx context.Context, dto ChangeDTO) (*Result, error) {
	actor := internal.ActorID(ctx)
	action := fmt.Sprintf("Unassigned %s %s from user %s", itemType(dto.List), dto.ItemID, dto.UserID)
	fail := func(err error) (*Result, error) {
		s.audit.Record(ctx, actor, action, dto.ItemID, itemType(dto.List), auditlog.StatusFailure, err.Error())
		return nil, err
	}

	if verr := dto.Validate(); verr != nil {
		return fail(verr)
	}

	ok, err := s.repo.UserExists(ctx, dto.UserID)
	if err != nil {
		return fail(s.internalError("failed to look up user", dto, err))
	}
	if !ok {
		return fail(internal.ErrUserNotFound)
	}

	removed, err := s.repo.Remove(ctx, dto.UserID, dto.List, dto.ItemID)
	if err != nil {
		return fail(s.internalError("failed to unassign", dto, err))
	}

	if removed {
		s.metrics.AssignmentChange(dto.List, "unassign")
	}
	s.audit.Record(ctx, actor, action, dto.ItemID, itemType(dto.List), auditlog.StatusSuccess, "")
	return s.result(ctx, dto)
}

func (s *Service) result(ctx context.Context, dto ChangeDTO) (*Result, error) {
	items, err := s.repo.Items(ctx, dto.UserID, dto.List)
	if err != nil {
		return nil, s.internalError("failed to read assignments", dto, err)
	}
	if items == nil {
		items = []string{}
	}
	return &Result{UserID: dto.UserID, List: dto.List, Items: items}, nil
}

func (s *Service) internalError(msg string, dto ChangeDTO, err error) error {
	s.logger.Error(msg, "user_id", dto.UserID, "list", dto.List, "item_id", dto.ItemID, "error", err)
	return internal.NewInternalError("Failed to update assignments", err)
}
