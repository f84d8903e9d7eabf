package user

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/frahmantamala/wbs-tracker/internal"
	"github.com/frahmantamala/wbs-tracker/internal/auditlog"
	userDatamodel "github.com/frahmantamala/wbs-tracker/internal/core/datamodel/user"
	"github.com/google/uuid"
)

type RepositoryAPI interface {
	List(ctx context.Context) ([]*userDatamodel.User, error)
	GetByID(ctx context.Context, id string) (*userDatamodel.User, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	Create(ctx context.Context, u *userDatamodel.User) error
	UpdateRole(ctx context.Context, id, role string) error
	Memberships(ctx context.Context, userIDs []string) (map[string]Memberships, error)
}

type PasswordHasher interface {
	HashPassword(password string) (string, error)
}

type AuditRecorder interface {
	Record(ctx context.Context, actorID, action, itemID, itemType, status, details string)
}

type CapabilityLister interface {
	Capabilities(role string) []string
}

type ServiceAPI interface {
	List(ctx context.Context) ([]*User, error)
	GetByID(ctx context.Context, id string) (*User, error)
	Create(ctx context.Context, dto CreateUserDTO) (*User, error)
	UpdateRole(ctx context.Context, id string, dto UpdateRoleDTO) (*User, error)
	Me(ctx context.Context) (*MeResponse, error)
}

type Service struct {
	repo   RepositoryAPI
	hasher PasswordHasher
	audit  AuditRecorder
	caps   CapabilityLister
	logger *slog.Logger
}

func NewService(repo RepositoryAPI, hasher PasswordHasher, audit AuditRecorder, caps CapabilityLister, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		hasher: hasher,
		audit:  audit,
		caps:   caps,
		logger: logger,
	}
}

// List returns every user with its assignment lists.
func (s *Service) List(ctx context.Context) ([]*User, error) {
	rows, err := s.repo.List(ctx)
	if err != nil {
		s.logger.Error("failed to list users", "error", err)
		return nil, internal.NewInternalError("Failed to load users", err)
	}

	ids := make([]string, len(rows))
	for i, r := range rows {
		ids[i] = r.ID
	}
	memberships, err := s.repo.Memberships(ctx, ids)
	if err != nil {
		s.logger.Error("failed to load user assignments", "error", err)
		return nil, internal.NewInternalError("Failed to load users", err)
	}

	users := make([]*User, 0, len(rows))
	for _, r := range rows {
		users = append(users, FromDataModelWithMemberships(r, memberships[r.ID]))
	}
	return users, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (*User, error) {
	row, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, internal.ErrUserNotFound) {
			return nil, err
		}
		s.logger.Error("failed to get user", "user_id", id, "error", err)
		return nil, internal.NewInternalError("Failed to load user", err)
	}

	memberships, err := s.repo.Memberships(ctx, []string{id})
	if err != nil {
		return nil, internal.NewInternalError("Failed to load user", err)
	}
	return FromDataModelWithMemberships(row, memberships[id]), nil
}

func (s *Service) Create(ctx context.Context, dto CreateUserDTO) (*User, error) {
	actor := internal.ActorID(ctx)
	dto.Normalize()
	if verr := dto.Validate(); verr != nil {
		s.audit.Record(ctx, actor, "Added user", "", auditlog.ItemUser, auditlog.StatusFailure, verr.GetDetailedMessage())
		return nil, verr
	}

	taken, err := s.repo.ExistsByUsername(ctx, dto.Username)
	if err != nil {
		return nil, internal.NewInternalError("Failed to create user", err)
	}
	if taken {
		s.audit.Record(ctx, actor, fmt.Sprintf("Added user: %s", dto.Username), "", auditlog.ItemUser, auditlog.StatusFailure, internal.ErrUsernameTaken.Message)
		return nil, internal.ErrUsernameTaken
	}

	hash, err := s.hasher.HashPassword(dto.Password)
	if err != nil {
		s.logger.Error("failed to hash password", "username", dto.Username, "error", err)
		return nil, internal.NewInternalError("Failed to create user", err)
	}

	u := &User{
		ID:           uuid.NewString(),
		Name:         dto.Name,
		Username:     dto.Username,
		Email:        dto.Email,
		Role:         dto.Role,
		PasswordHash: hash,
	}
	row := ToDataModel(u)
	if err := s.repo.Create(ctx, row); err != nil {
		s.audit.Record(ctx, actor, fmt.Sprintf("Added user: %s", dto.Username), "", auditlog.ItemUser, auditlog.StatusFailure, err.Error())
		if errors.Is(err, internal.ErrUsernameTaken) {
			return nil, err
		}
		s.logger.Error("failed to create user", "username", dto.Username, "error", err)
		return nil, internal.NewInternalError("Failed to create user", err)
	}

	s.logger.Info("user created", "user_id", u.ID, "role", u.Role)
	s.audit.Record(ctx, actor, fmt.Sprintf("Added user: %s", u.Username), u.ID, auditlog.ItemUser, auditlog.StatusSuccess, "")
	return FromDataModel(row), nil
}

func (s *Service) UpdateRole(ctx context.Context, id string, dto UpdateRoleDTO) (*User, error) {
	actor := internal.ActorID(ctx)
	action := fmt.Sprintf("Changed role to %s", dto.Role)

	if verr := dto.Validate(); verr != nil {
		s.audit.Record(ctx, actor, action, id, auditlog.ItemUser, auditlog.StatusFailure, verr.GetDetailedMessage())
		return nil, verr
	}

	if err := s.repo.UpdateRole(ctx, id, dto.Role); err != nil {
		s.audit.Record(ctx, actor, action, id, auditlog.ItemUser, auditlog.StatusFailure, err.Error())
		if errors.Is(err, internal.ErrUserNotFound) {
			return nil, err
		}
		s.logger.Error("failed to update role", "user_id", id, "error", err)
		return nil, internal.NewInternalError("Failed to update role", err)
	}

	s.logger.Info("user role changed", "user_id", id, "role", dto.Role)
	s.audit.Record(ctx, actor, action, id, auditlog.ItemUser, auditlog.StatusSuccess, "")
	return s.GetByID(ctx, id)
}

// Me returns the caller with the capabilities of its role, which clients
// use to pick the view to render.
func (s *Service) Me(ctx context.Context) (*MeResponse, error) {
	id, ok := internal.IdentityFromContext(ctx)
	if !ok {
		return nil, internal.ErrInvalidToken
	}

	u, err := s.GetByID(ctx, id.UserID)
	if err != nil {
		return nil, err
	}
	return &MeResponse{User: u, Capabilities: s.caps.Capabilities(u.Role)}, nil
}
