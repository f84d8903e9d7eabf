package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	EventTypeAuditRecorded = "audit.recorded"
)

// AuditRecordedEvent carries one audit entry from the acting service to the
// log writer.
type AuditRecordedEvent struct {
	BaseEvent
	ActorID  string `json:"actor_id"`
	Action   string `json:"action"`
	ItemID   string `json:"item_id"`
	ItemType string `json:"item_type"`
	Status   string `json:"status"`
	Details  string `json:"details"`
}

func NewAuditRecordedEvent(actorID, action, itemID, itemType, status, details string) *AuditRecordedEvent {
	return &AuditRecordedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeAuditRecorded,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"actor_id":  actorID,
				"action":    action,
				"item_id":   itemID,
				"item_type": itemType,
				"status":    status,
				"details":   details,
			},
		},
		ActorID:  actorID,
		Action:   action,
		ItemID:   itemID,
		ItemType: itemType,
		Status:   status,
		Details:  details,
	}
}
