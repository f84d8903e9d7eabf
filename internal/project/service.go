package project

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/frahmantamala/wbs-tracker/internal"
	"github.com/frahmantamala/wbs-tracker/internal/auditlog"
	"github.com/frahmantamala/wbs-tracker/internal/auth"
	"github.com/frahmantamala/wbs-tracker/internal/core/common/validation"
	projectDatamodel "github.com/frahmantamala/wbs-tracker/internal/core/datamodel/project"
	"github.com/google/uuid"
)

type RepositoryAPI interface {
	List(ctx context.Context) ([]*projectDatamodel.Project, error)
	ListAssignedTo(ctx context.Context, userID string) ([]*projectDatamodel.Project, error)
	GetByID(ctx context.Context, id string) (*projectDatamodel.Project, error)
	Create(ctx context.Context, p *projectDatamodel.Project) error
	Update(ctx context.Context, p *projectDatamodel.Project) error
}

type AuditRecorder interface {
	Record(ctx context.Context, actorID, action, itemID, itemType, status, details string)
}

type CapabilityChecker interface {
	Can(role, capability string) bool
}

type ServiceAPI interface {
	List(ctx context.Context) ([]*Project, error)
	ListVisible(ctx context.Context) ([]*Project, error)
	GetByID(ctx context.Context, id string) (*Project, error)
	Create(ctx context.Context, dto CreateProjectDTO) (*Project, error)
	Update(ctx context.Context, id string, dto UpdateProjectDTO) (*Project, error)
}

type Service struct {
	repo   RepositoryAPI
	audit  AuditRecorder
	caps   CapabilityChecker
	logger *slog.Logger
}

func NewService(repo RepositoryAPI, audit AuditRecorder, caps CapabilityChecker, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		audit:  audit,
		caps:   caps,
		logger: logger,
	}
}

func fromRows(rows []*projectDatamodel.Project) []*Project {
	out := make([]*Project, 0, len(rows))
	for _, r := range rows {
		out = append(out, FromDataModel(r))
	}
	return out
}

func (s *Service) List(ctx context.Context) ([]*Project, error) {
	rows, err := s.repo.List(ctx)
	if err != nil {
		s.logger.Error("failed to list projects", "error", err)
		return nil, internal.NewInternalError("Failed to load projects", err)
	}
	return fromRows(rows), nil
}

// ListVisible returns the projects the caller may see: all of them with
// view_all_projects, otherwise only those in its project_assign list.
func (s *Service) ListVisible(ctx context.Context) ([]*Project, error) {
	id, ok := internal.IdentityFromContext(ctx)
	if !ok {
		return nil, internal.ErrInvalidToken
	}
	if s.caps.Can(id.Role, auth.CapViewAllProjects) {
		return s.List(ctx)
	}

	rows, err := s.repo.ListAssignedTo(ctx, id.UserID)
	if err != nil {
		s.logger.Error("failed to list assigned projects", "user_id", id.UserID, "error", err)
		return nil, internal.NewInternalError("Failed to load projects", err)
	}
	return fromRows(rows), nil
}

func (s *Service) GetByID(ctx context.Context, id string) (*Project, error) {
	row, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, internal.ErrProjectNotFound) {
			return nil, err
		}
		s.logger.Error("failed to get project", "project_id", id, "error", err)
		return nil, internal.NewInternalError("Failed to load project", err)
	}
	return FromDataModel(row), nil
}

func (s *Service) Create(ctx context.Context, dto CreateProjectDTO) (*Project, error) {
	actor := internal.ActorID(ctx)
	action := fmt.Sprintf("Added project: %s", strings.TrimSpace(dto.Name))

	if verr := dto.Validate(); verr != nil {
		s.audit.Record(ctx, actor, action, "", auditlog.ItemProject, auditlog.StatusFailure, verr.GetDetailedMessage())
		return nil, verr
	}

	start, _ := validation.ParseDate(dto.StartDate)
	end, _ := validation.ParseDate(dto.EndDate)
	p := &Project{
		ID:        uuid.NewString(),
		Name:      strings.TrimSpace(dto.Name),
		Desc:      dto.Desc,
		StartDate: start,
		EndDate:   end,
		Status:    StatusNotStarted,
	}

	row := ToDataModel(p)
	if err := s.repo.Create(ctx, row); err != nil {
		s.logger.Error("failed to create project", "name", p.Name, "error", err)
		s.audit.Record(ctx, actor, action, "", auditlog.ItemProject, auditlog.StatusFailure, err.Error())
		return nil, internal.NewInternalError("Failed to create project", err)
	}

	s.logger.Info("project created", "project_id", p.ID)
	s.audit.Record(ctx, actor, action, p.ID, auditlog.ItemProject, auditlog.StatusSuccess, "")
	return FromDataModel(row), nil
}

func (s *Service) Update(ctx context.Context, id string, dto UpdateProjectDTO) (*Project, error) {
	actor := internal.ActorID(ctx)

	p, err := s.GetByID(ctx, id)
	if err != nil {
		s.audit.Record(ctx, actor, "Updated project", id, auditlog.ItemProject, auditlog.StatusFailure, err.Error())
		return nil, err
	}
	action := fmt.Sprintf("Updated project: %s", p.Name)

	if dto.Empty() {
		return p, nil
	}
	if verr := dto.Validate(); verr != nil {
		s.audit.Record(ctx, actor, action, id, auditlog.ItemProject, auditlog.StatusFailure, verr.GetDetailedMessage())
		return nil, verr
	}
	if verr := dto.Apply(p); verr != nil {
		s.audit.Record(ctx, actor, action, id, auditlog.ItemProject, auditlog.StatusFailure, verr.GetDetailedMessage())
		return nil, verr
	}

	row := ToDataModel(p)
	if err := s.repo.Update(ctx, row); err != nil {
		s.logger.Error("failed to update project", "project_id", id, "error", err)
		s.audit.Record(ctx, actor, action, id, auditlog.ItemProject, auditlog.StatusFailure, err.Error())
		if errors.Is(err, internal.ErrProjectNotFound) {
			return nil, err
		}
		return nil, internal.NewInternalError("Failed to update project", err)
	}

	s.audit.Record(ctx, actor, action, id, auditlog.ItemProject, auditlog.StatusSuccess, "")
	return s.GetByID(ctx, id)
}
