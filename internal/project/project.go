package project

import (
	"encoding/json"
	"time"

	"github.com/frahmantamala/wbs-tracker/internal/core/common/validation"
	projectDatamodel "github.com/frahmantamala/wbs-tracker/internal/core/datamodel/project"
)

const (
	StatusNotStarted = "not_started"
	StatusInProgress = "in_progress"
	StatusOnHold     = "on_hold"
	StatusCompleted  = "completed"
)

var Statuses = []string{StatusNotStarted, StatusInProgress, StatusOnHold, StatusCompleted}

type Project struct {
	ID           string
	Name         string
	Desc         string
	StartDate    *time.Time
	EndDate      *time.Time
	Status       string
	Completion   float64
	TotalMandays float64
	CreatedAt    time.Time
}

type projectJSON struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Desc         string    `json:"desc"`
	StartDate    *string   `json:"start_date"`
	EndDate      *string   `json:"end_date"`
	Status       string    `json:"status"`
	Completion   float64   `json:"completion"`
	TotalMandays float64   `json:"total_mandays"`
	CreatedAt    time.Time `json:"created_at"`
}

func formatDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(validation.DateLayout)
	return &s
}

// MarshalJSON renders project dates as YYYY-MM-DD.
func (p Project) MarshalJSON() ([]byte, error) {
	return json.Marshal(projectJSON{
		ID:           p.ID,
		Name:         p.Name,
		Desc:         p.Desc,
		StartDate:    formatDate(p.StartDate),
		EndDate:      formatDate(p.EndDate),
		Status:       p.Status,
		Completion:   p.Completion,
		TotalMandays: p.TotalMandays,
		CreatedAt:    p.CreatedAt,
	})
}

func (p *Project) UnmarshalJSON(b []byte) error {
	var v projectJSON
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	*p = Project{
		ID:           v.ID,
		Name:         v.Name,
		Desc:         v.Desc,
		Status:       v.Status,
		Completion:   v.Completion,
		TotalMandays: v.TotalMandays,
		CreatedAt:    v.CreatedAt,
	}
	var err error
	if v.StartDate != nil {
		if p.StartDate, err = validation.ParseDate(*v.StartDate); err != nil {
			return err
		}
	}
	if v.EndDate != nil {
		if p.EndDate, err = validation.ParseDate(*v.EndDate); err != nil {
			return err
		}
	}
	return nil
}

func ToDataModel(p *Project) *projectDatamodel.Project {
	return &projectDatamodel.Project{
		ID:           p.ID,
		Name:         p.Name,
		Description:  p.Desc,
		StartDate:    p.StartDate,
		EndDate:      p.EndDate,
		Status:       p.Status,
		Completion:   p.Completion,
		TotalMandays: p.TotalMandays,
		CreatedAt:    p.CreatedAt,
	}
}

func FromDataModel(m *projectDatamodel.Project) *Project {
	return &Project{
		ID:           m.ID,
		Name:         m.Name,
		Desc:         m.Description,
		StartDate:    m.StartDate,
		EndDate:      m.EndDate,
		Status:       m.Status,
		Completion:   m.Completion,
		TotalMandays: m.TotalMandays,
		CreatedAt:    m.CreatedAt,
	}
}
