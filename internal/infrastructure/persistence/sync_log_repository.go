package persistence

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/storesync/backend/internal/domain/storefront"
	"github.com/storesync/backend/internal/infrastructure/persistence/models"
)

// GormSyncLogRepository implements the append-only LogRepository using GORM
type GormSyncLogRepository struct {
	db *gorm.DB
}

// NewGormSyncLogRepository creates a new GormSyncLogRepository
func NewGormSyncLogRepository(db *gorm.DB) *GormSyncLogRepository {
	return &GormSyncLogRepository{db: db}
}

var _ storefront.LogRepository = (*GormSyncLogRepository)(nil)

// Append stores a log entry. Entries ride on the plain connection, not the
// caller's transaction, so a rolled-back template sync keeps its error trail.
func (r *GormSyncLogRepository) Append(ctx context.Context, entry *storefront.LogEntry) error {
	model := &models.SyncLogModel{}
	model.FromDomain(entry)
	return r.db.WithContext(ctx).Create(model).Error
}

// FindByInstance returns recent entries of an instance, newest first
func (r *GormSyncLogRepository) FindByInstance(ctx context.Context, instanceID uuid.UUID, limit int) ([]storefront.LogEntry, error) {
	if limit <= 0 {
		limit = 100
	}
	var logModels []models.SyncLogModel
	if err := dbFromContext(ctx, r.db).
		Where("instance_id = ?", instanceID).
		Order("created_at DESC").
		Limit(limit).
		Find(&logModels).Error; err != nil {
		return nil, err
	}

	entries := make([]storefront.LogEntry, len(logModels))
	for i, model := range logModels {
		entries[i] = *model.ToDomain()
	}
	return entries, nil
}
