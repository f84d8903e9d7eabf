package postgres

import (
	"context"

	auditDatamodel "github.com/frahmantamala/wbs-tracker/internal/core/datamodel/auditlog"
	"gorm.io/gorm"
)

type AuditLogRepository struct {
	db *gorm.DB
}

func NewAuditLogRepository(db *gorm.DB) *AuditLogRepository {
	return &AuditLogRepository{db: db}
}

func (r *AuditLogRepository) Create(ctx context.Context, entry *auditDatamodel.LogEntry) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *AuditLogRepository) ListRecent(ctx context.Context) ([]*auditDatamodel.LogEntry, error) {
	var entries []*auditDatamodel.LogEntry
	err := r.db.WithContext(ctx).Order("created_at DESC").Order("id DESC").Find(&entries).Error
	return entries, err
}
