package project

import (
	"strings"
	"time"

	errors "github.com/frahmantamala/wbs-tracker/internal"
	"github.com/frahmantamala/wbs-tracker/internal/core/common/validation"
)

type CreateProjectDTO struct {
	Name      string `json:"name"`
	Desc      string `json:"desc"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

// UpdateProjectDTO is a partial update; nil fields are left as stored.
type UpdateProjectDTO struct {
	Name       *string  `json:"name,omitempty"`
	Desc       *string  `json:"desc,omitempty"`
	StartDate  *string  `json:"start_date,omitempty"`
	EndDate    *string  `json:"end_date,omitempty"`
	Status     *string  `json:"status,omitempty"`
	Completion *float64 `json:"completion,omitempty"`
}

func endBeforeStart(start, end *time.Time) *errors.AppError {
	if start != nil && end != nil && end.Before(*start) {
		return errors.NewValidationFieldError("end_date", "end_date must not be before start_date", errors.ErrCodeInvalidDate)
	}
	return nil
}

func (d CreateProjectDTO) Validate() *errors.AppError {
	v := validation.NewValidator()
	v.Field("name", d.Name).Required().MaxLength(255)
	v.Field("desc", d.Desc).Required()
	v.Field("start_date", d.StartDate).Required().Date()
	v.Field("end_date", d.EndDate).Required().Date()
	if verr := v.Validate(); verr != nil {
		return verr
	}

	start, _ := validation.ParseDate(d.StartDate)
	end, _ := validation.ParseDate(d.EndDate)
	return endBeforeStart(start, end)
}

func (d UpdateProjectDTO) Validate() *errors.AppError {
	v := validation.NewValidator()
	if d.Name != nil {
		v.Field("name", *d.Name).Required().MaxLength(255)
	}
	if d.StartDate != nil {
		v.Field("start_date", *d.StartDate).Required().Date()
	}
	if d.EndDate != nil {
		v.Field("end_date", *d.EndDate).Required().Date()
	}
	if d.Status != nil {
		v.Field("status", *d.Status).Required().OneOf(errors.ErrCodeInvalidStatus, Statuses...)
	}
	if d.Completion != nil {
		v.Field("completion", *d.Completion).Range(0, 100, errors.ErrCodeValidationFailed)
	}
	return v.Validate()
}

// Apply copies the set fields onto p and re-checks the date order.
func (d UpdateProjectDTO) Apply(p *Project) *errors.AppError {
	if d.Name != nil {
		p.Name = strings.TrimSpace(*d.Name)
	}
	if d.Desc != nil {
		p.Desc = *d.Desc
	}
	if d.StartDate != nil {
		p.StartDate, _ = validation.ParseDate(*d.StartDate)
	}
	if d.EndDate != nil {
		p.EndDate, _ = validation.ParseDate(*d.EndDate)
	}
	if d.Status != nil {
		p.Status = *d.Status
	}
	if d.Completion != nil {
		p.Completion = *d.Completion
	}
	return endBeforeStart(p.StartDate, p.EndDate)
}

func (d UpdateProjectDTO) Empty() bool {
	return d.Name == nil && d.Desc == nil && d.StartDate == nil && d.EndDate == nil && d.Status == nil && d.Completion == nil
}
