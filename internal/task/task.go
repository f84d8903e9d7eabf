package task

import (
	"time"

	taskDatamodel "github.com/frahmantamala/wbs-tracker/internal/core/datamodel/task"
)

const (
	StatusTodo       = "todo"
	StatusInProgress = "in_progress"
	StatusDone       = "done"

	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
)

var (
	Statuses   = []string{StatusTodo, StatusInProgress, StatusDone}
	Priorities = []string{PriorityLow, PriorityMedium, PriorityHigh}
)

type Task struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Desc      string    `json:"desc"`
	ProjectID string    `json:"project_id"`
	Status    string    `json:"status"`
	Duration  float64   `json:"duration"`
	Mandays   float64   `json:"mandays"`
	Priority  string    `json:"priority"`
	CreatedAt time.Time `json:"created_at"`
}

type TasksResponse struct {
	Tasks []*Task `json:"tasks"`
}

// ProgressResult is the outcome of a progress update: the task after the
// increment and the parent project's total after propagation.
type ProgressResult struct {
	Task                *Task   `json:"task"`
	ProjectTotalMandays float64 `json:"project_total_mandays"`
}

// Mandays converts hours of effort into mandays.
func Mandays(hours, hoursPerManday float64) float64 {
	if hoursPerManday <= 0 {
		return 0
	}
	return hours / hoursPerManday
}

func ToDataModel(t *Task) *taskDatamodel.Task {
	return &taskDatamodel.Task{
		ID:          t.ID,
		Name:        t.Name,
		Description: t.Desc,
		ProjectID:   t.ProjectID,
		Status:      t.Status,
		Duration:    t.Duration,
		Mandays:     t.Mandays,
		Priority:    t.Priority,
		CreatedAt:   t.CreatedAt,
	}
}

func FromDataModel(m *taskDatamodel.Task) *Task {
	return &Task{
		ID:        m.ID,
		Name:      m.Name,
		Desc:      m.Description,
		ProjectID: m.ProjectID,
		Status:    m.Status,
		Duration:  m.Duration,
		Mandays:   m.Mandays,
		Priority:  m.Priority,
		CreatedAt: m.CreatedAt,
	}
}
