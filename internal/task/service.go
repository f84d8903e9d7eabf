package task

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/frahmantamala/wbs-tracker/internal"
	"github.com/frahmantamala/wbs-tracker/internal/auditlog"
	taskDatamodel "github.com/frahmantamala/wbs-tracker/internal/core/datamodel/task"
	"github.com/frahmantamala/wbs-tracker/internal/metrics"
	"github.com/google/uuid"
)

type RepositoryAPI interface {
	List(ctx context.Context, projectID string) ([]*taskDatamodel.Task, error)
	GetByID(ctx context.Context, id string) (*taskDatamodel.Task, error)
	ProjectExists(ctx context.Context, projectID string) (bool, error)
	Create(ctx context.Context, t *taskDatamodel.Task) error
	Update(ctx context.Context, t *taskDatamodel.Task) error
	ApplyProgress(ctx context.Context, taskID string, delta, hoursPerManday float64, mode string) (*taskDatamodel.Task, float64, error)
}

type AuditRecorder interface {
	Record(ctx context.Context, actorID, action, itemID, itemType, status, details string)
}

// ProgressAuthorizer decides whether the caller in ctx may book progress on
// taskID.
type ProgressAuthorizer interface {
	AuthorizeProgress(ctx context.Context, taskID string) error
}

type ServiceAPI interface {
	List(ctx context.Context, projectID string) ([]*Task, error)
	GetByID(ctx context.Context, id string) (*Task, error)
	Create(ctx context.Context, dto CreateTaskDTO) (*Task, error)
	Update(ctx context.Context, id string, dto UpdateTaskDTO) (*Task, error)
	ApplyProgress(ctx context.Context, taskID string, dto ProgressDTO) (*ProgressResult, error)
}

type Service struct {
	repo    RepositoryAPI
	audit   AuditRecorder
	access  ProgressAuthorizer
	cfg     internal.WBSConfig
	logger  *slog.Logger
	metrics *metrics.Metrics
}

// NewService builds the task service. A nil access lets every caller book
// progress.
func NewService(repo RepositoryAPI, audit AuditRecorder, access ProgressAuthorizer, cfg internal.WBSConfig, logger *slog.Logger, m *metrics.Metrics) *Service {
	if cfg.HoursPerManday <= 0 {
		cfg.HoursPerManday = internal.DefaultHoursPerManday
	}
	if cfg.MandaysPropagation == "" {
		cfg.MandaysPropagation = internal.PropagationOverwrite
	}
	return &Service{
		repo:    repo,
		audit:   audit,
		access:  access,
		cfg:     cfg,
		logger:  logger,
		metrics: m,
	}
}

// List returns the tasks of a project, or every task when projectID is
// empty. An empty result is reported as not found.
func (s *Service) List(ctx context.Context, projectID string) ([]*Task, error) {
	rows, err := s.repo.List(ctx, projectID)
	if err != nil {
		s.logger.Error("failed to list tasks", "project_id", projectID, "error", err)
		return nil, internal.NewInternalError("Failed to load tasks", err)
	}
	if len(rows) == 0 {
		if projectID != "" {
			return nil, internal.NewNotFoundError("No tasks found for this project ID.", internal.ErrCodeTasksNotFound)
		}
		return nil, internal.NewNotFoundError("No tasks found.", internal.ErrCodeTasksNotFound)
	}

	tasks := make([]*Task, 0, len(rows))
	for _, r := range rows {
		tasks = append(tasks, FromDataModel(r))
	}
	return tasks, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (*Task, error) {
	row, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, internal.ErrTaskNotFound) {
			return nil, err
		}
		s.logger.Error("failed to get task", "task_id", id, "error", err)
		return nil, internal.NewInternalError("Failed to load task", err)
	}
	return FromDataModel(row), nil
}

func (s *Service) Create(ctx context.Context, dto CreateTaskDTO) (*Task, error) {
	actor := internal.ActorID(ctx)
	dto.Normalize()
	action := fmt.Sprintf("Added task: %s", dto.Name)

	if verr := dto.Validate(); verr != nil {
		s.audit.Record(ctx, actor, action, "", auditlog.ItemTask, auditlog.StatusFailure, verr.GetDetailedMessage())
		return nil, verr
	}

	exists, err := s.repo.ProjectExists(ctx, dto.ProjectID)
	if err != nil {
		s.logger.Error("failed to check project", "project_id", dto.ProjectID, "error", err)
		s.audit.Record(ctx, actor, action, "", auditlog.ItemTask, auditlog.StatusFailure, err.Error())
		return nil, internal.NewInternalError("Failed to create task", err)
	}
	if !exists {
		s.audit.Record(ctx, actor, action, "", auditlog.ItemTask, auditlog.StatusFailure, internal.ErrProjectNotFound.Message)
		return nil, internal.ErrProjectNotFound
	}

	t := &Task{
		ID:        uuid.NewString(),
		Name:      dto.Name,
		Desc:      dto.Desc,
		ProjectID: dto.ProjectID,
		Status:    dto.Status,
		Priority:  dto.Priority,
		Duration:  dto.Duration,
		Mandays:   Mandays(dto.Duration, s.cfg.HoursPerManday),
	}

	row := ToDataModel(t)
	if err := s.repo.Create(ctx, row); err != nil {
		s.logger.Error("failed to create task", "name", t.Name, "error", err)
		s.audit.Record(ctx, actor, action, "", auditlog.ItemTask, auditlog.StatusFailure, err.Error())
		return nil, internal.NewInternalError("Failed to create task", err)
	}

	s.logger.Info("task created", "task_id", t.ID, "project_id", t.ProjectID)
	s.audit.Record(ctx, actor, action, t.ID, auditlog.ItemTask, auditlog.StatusSuccess, "")
	return FromDataModel(row), nil
}

func (s *Service) Update(ctx context.Context, id string, dto UpdateTaskDTO) (*Task, error) {
	actor := internal.ActorID(ctx)

	t, err := s.GetByID(ctx, id)
	if err != nil {
		s.audit.Record(ctx, actor, "Updated task", id, auditlog.ItemTask, auditlog.StatusFailure, err.Error())
		return nil, err
	}
	action := fmt.Sprintf("Updated task: %s", t.Name)

	if dto.Empty() {
		return t, nil
	}
	if verr := dto.Validate(); verr != nil {
		s.audit.Record(ctx, actor, action, id, auditlog.ItemTask, auditlog.StatusFailure, verr.GetDetailedMessage())
		return nil, verr
	}
	dto.Apply(t)

	if err := s.repo.Update(ctx, ToDataModel(t)); err != nil {
		s.audit.Record(ctx, actor, action, id, auditlog.ItemTask, auditlog.StatusFailure, err.Error())
		if errors.Is(err, internal.ErrTaskNotFound) {
			return nil, err
		}
		s.logger.Error("failed to update task", "task_id", id, "error", err)
		return nil, internal.NewInternalError("Failed to update task", err)
	}

	s.audit.Record(ctx, actor, action, id, auditlog.ItemTask, auditlog.StatusSuccess, "")
	return s.GetByID(ctx, id)
}

// ApplyProgress adds dto.Hours to the task's duration, recomputes its mandays
// and propagates them to the parent project. Every attempt is audited,
// including ones the access check rejects.
func (s *Service) ApplyProgress(ctx context.Context, taskID string, dto ProgressDTO) (*ProgressResult, error) {
	actor := internal.ActorID(ctx)
	action := fmt.Sprintf("Updated progress: %+g hours", dto.Hours)

	fail := func(err error) (*ProgressResult, error) {
		s.metrics.ProgressUpdate(auditlog.StatusFailure)
		s.audit.Record(ctx, actor, action, taskID, auditlog.ItemTask, auditlog.StatusFailure, failureDetail(err))
		return nil, err
	}

	current, err := s.GetByID(ctx, taskID)
	if err != nil {
		return fail(err)
	}
	if s.access != nil {
		if err := s.access.AuthorizeProgress(ctx, taskID); err != nil {
			return fail(err)
		}
	}

	if verr := dto.Validate(); verr != nil {
		return fail(verr)
	}
	if dto.ProjectID != "" && current.ProjectID != dto.ProjectID {
		return fail(internal.ErrProjectMismatch)
	}

	row, total, err := s.repo.ApplyProgress(ctx, taskID, dto.Hours, s.cfg.HoursPerManday, s.cfg.MandaysPropagation)
	if err != nil {
		if _, ok := internal.IsAppError(err); !ok {
			s.logger.Error("failed to apply progress", "task_id", taskID, "error", err)
			err = internal.NewInternalError("Failed to update task progress", err)
		}
		return fail(err)
	}

	s.logger.Info("task progress applied",
		"task_id", taskID,
		"project_id", row.ProjectID,
		"delta_hours", dto.Hours,
		"duration", row.Duration,
		"project_total_mandays", total,
	)
	s.metrics.ProgressUpdate(auditlog.StatusSuccess)
	s.audit.Record(ctx, actor, action, taskID, auditlog.ItemTask, auditlog.StatusSuccess,
		fmt.Sprintf("duration=%g mandays=%g project_total_mandays=%g", row.Duration, row.Mandays, total))

	return &ProgressResult{Task: FromDataModel(row), ProjectTotalMandays: total}, nil
}

func failureDetail(err error) string {
	if appErr, ok := internal.IsAppError(err); ok {
		return appErr.GetDetailedMessage()
	}
	return err.Error()
}
