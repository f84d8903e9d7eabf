package auditlog

import (
	"time"

	auditDatamodel "github.com/frahmantamala/wbs-tracker/internal/core/datamodel/auditlog"
)

const (
	StatusSuccess = "success"
	StatusFailure = "failure"
)

// Item types recorded in the log.
const (
	ItemUser    = "user"
	ItemProject = "project"
	ItemTask    = "task"
)

// LogEntry is one immutable audit record.
type LogEntry struct {
	ID        int64     `json:"id"`
	UserID    *string   `json:"user_id"`
	Action    string    `json:"action"`
	ItemID    string    `json:"item_id"`
	ItemType  string    `json:"item_type"`
	Status    string    `json:"status"`
	Details   string    `json:"details"`
	CreatedAt time.Time `json:"created_at"`
}

type LogsResponse struct {
	Logs []*LogEntry `json:"logs"`
}

func ToDataModel(e *LogEntry) *auditDatamodel.LogEntry {
	return &auditDatamodel.LogEntry{
		ID:        e.ID,
		UserID:    e.UserID,
		Action:    e.Action,
		ItemID:    e.ItemID,
		ItemType:  e.ItemType,
		Status:    e.Status,
		Details:   e.Details,
		CreatedAt: e.CreatedAt,
	}
}

func FromDataModel(m *auditDatamodel.LogEntry) *LogEntry {
	return &LogEntry{
		ID:        m.ID,
		UserID:    m.UserID,
		Action:    m.Action,
		ItemID:    m.ItemID,
		ItemType:  m.ItemType,
		Status:    m.Status,
		Details:   m.Details,
		CreatedAt: m.CreatedAt,
	}
}
