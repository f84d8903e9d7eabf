package task

import (
	"strings"

	errors "github.com/frahmantamala/wbs-tracker/internal"
	"github.com/frahmantamala/wbs-tracker/internal/core/common/validation"
)

type CreateTaskDTO struct {
	Name      string  `json:"name"`
	Desc      string  `json:"desc"`
	ProjectID string  `json:"project_id"`
	Status    string  `json:"status"`
	Priority  string  `json:"priority"`
	Duration  float64 `json:"duration"`
}

type UpdateTaskDTO struct {
	Name     *string `json:"name,omitempty"`
	Desc     *string `json:"desc,omitempty"`
	Status   *string `json:"status,omitempty"`
	Priority *string `json:"priority,omitempty"`
}

// ProgressDTO carries a duration delta in hours. ProjectID is optional; when
// set it must name the task's own project.
type ProgressDTO struct {
	Hours     float64 `json:"hours"`
	ProjectID string  `json:"project_id"`
}

// Normalize applies the creation defaults.
func (d *CreateTaskDTO) Normalize() {
	d.Name = strings.TrimSpace(d.Name)
	d.ProjectID = strings.TrimSpace(d.ProjectID)
	if d.Status == "" {
		d.Status = StatusTodo
	}
	if d.Priority == "" {
		d.Priority = PriorityMedium
	}
}

func (d CreateTaskDTO) Validate() *errors.AppError {
	v := validation.NewValidator()
	v.Field("name", d.Name).Required().MaxLength(255)
	v.Field("project_id", d.ProjectID).Required()
	v.Field("status", d.Status).OneOf(errors.ErrCodeInvalidStatus, Statuses...)
	v.Field("priority", d.Priority).OneOf(errors.ErrCodeInvalidPriority, Priorities...)
	v.Field("duration", d.Duration).NonNegative(errors.ErrCodeInvalidDuration)
	return v.Validate()
}

func (d UpdateTaskDTO) Validate() *errors.AppError {
	v := validation.NewValidator()
	if d.Name != nil {
		v.Field("name", *d.Name).Required().MaxLength(255)
	}
	if d.Status != nil {
		v.Field("status", *d.Status).Required().OneOf(errors.ErrCodeInvalidStatus, Statuses...)
	}
	if d.Priority != nil {
		v.Field("priority", *d.Priority).Required().OneOf(errors.ErrCodeInvalidPriority, Priorities...)
	}
	return v.Validate()
}

func (d UpdateTaskDTO) Apply(t *Task) {
	if d.Name != nil {
		t.Name = strings.TrimSpace(*d.Name)
	}
	if d.Desc != nil {
		t.Desc = *d.Desc
	}
	if d.Status != nil {
		t.Status = *d.Status
	}
	if d.Priority != nil {
		t.Priority = *d.Priority
	}
}

func (d UpdateTaskDTO) Empty() bool {
	return d.Name == nil && d.Desc == nil && d.Status == nil && d.Priority == nil
}

func (d ProgressDTO) Validate() *errors.AppError {
	v := validation.NewValidator()
	v.Field("hours", d.Hours).NonZero(errors.ErrCodeInvalidDuration)
	return v.Validate()
}
