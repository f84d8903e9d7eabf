package auditlog

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/frahmantamala/wbs-tracker/internal"
	auditDatamodel "github.com/frahmantamala/wbs-tracker/internal/core/datamodel/auditlog"
	"github.com/frahmantamala/wbs-tracker/internal/core/events"
	"github.com/frahmantamala/wbs-tracker/internal/metrics"
)

type RepositoryAPI interface {
	Create(ctx context.Context, entry *auditDatamodel.LogEntry) error
	ListRecent(ctx context.Context) ([]*auditDatamodel.LogEntry, error)
}

type Publisher interface {
	Publish(ctx context.Context, event events.Event) error
	Subscribe(eventType string, handler events.Handler)
}

type ServiceAPI interface {
	Record(ctx context.Context, actorID, action, itemID, itemType, status, details string)
	List(ctx context.Context) ([]*LogEntry, error)
}

// Service is the audit sink. Record hands the entry to the event bus and
// returns; the bus subscriber writes it. Write failures are logged and
// counted, never surfaced to the action being audited.
type Service struct {
	repo    RepositoryAPI
	bus     Publisher
	logger  *slog.Logger
	metrics *metrics.Metrics
}

// NewService wires the sink and subscribes its writer to bus. With a nil bus
// entries are written inline.
func NewService(repo RepositoryAPI, bus Publisher, logger *slog.Logger, m *metrics.Metrics) *Service {
	s := &Service{
		repo:    repo,
		bus:     bus,
		logger:  logger,
		metrics: m,
	}
	if bus != nil {
		bus.Subscribe(events.EventTypeAuditRecorded, s.handleAuditRecorded)
	}
	return s
}

func (s *Service) Record(ctx context.Context, actorID, action, itemID, itemType, status, details string) {
	event := events.NewAuditRecordedEvent(actorID, action, itemID, itemType, status, details)

	if s.bus == nil {
		s.persist(context.WithoutCancel(ctx), event)
		return
	}

	if err := s.bus.Publish(ctx, event); err != nil {
		s.metrics.AuditWriteFailed()
		s.logger.Error("failed to publish audit entry", "action", action, "item_id", itemID, "error", err)
	}
}

func (s *Service) handleAuditRecorded(ctx context.Context, e events.Event) error {
	event, ok := e.(*events.AuditRecordedEvent)
	if !ok {
		return fmt.Errorf("unexpected event payload %T", e)
	}
	s.persist(ctx, event)
	return nil
}

func (s *Service) persist(ctx context.Context, event *events.AuditRecordedEvent) {
	entry := &auditDatamodel.LogEntry{
		Action:    event.Action,
		ItemID:    event.ItemID,
		ItemType:  event.ItemType,
		Status:    event.Status,
		Details:   event.Details,
		CreatedAt: event.OccurredAt(),
	}
	if event.ActorID != "" {
		actor := event.ActorID
		entry.UserID = &actor
	}

	if err := s.repo.Create(ctx, entry); err != nil {
		s.metrics.AuditWriteFailed()
		s.logger.Error("failed to write audit entry",
			"action", event.Action,
			"item_id", event.ItemID,
			"item_type", event.ItemType,
			"error", err)
	}
}

// List returns every entry, newest first.
func (s *Service) List(ctx context.Context) ([]*LogEntry, error) {
	rows, err := s.repo.ListRecent(ctx)
	if err != nil {
		s.logger.Error("failed to list audit entries", "error", err)
		return nil, internal.NewInternalError("Failed to load logs", err)
	}

	out := make([]*LogEntry, 0, len(rows))
	for _, r := range rows {
		out = append(out, FromDataModel(r))
	}
	return out, nil
}
