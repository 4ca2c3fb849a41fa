package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/mesaview-usd/extrapay-api/internal/models"
)

// EventRepository is the append-only audit log. No update or delete is
// exposed: history is immutable once written.
type EventRepository interface {
	Append(ctx context.Context, event *models.Event) error
	ListByEntity(ctx context.Context, districtID uint, entityType string, entityID uint) ([]models.Event, error)
	Count(ctx context.Context, districtID uint) (int64, error)
}

type eventRepository struct {
	db *gorm.DB
}

// NewEventRepository constructs the event repository.
func NewEventRepository(db *gorm.DB) EventRepository {
	return &eventRepository{db: db}
}

func (r *eventRepository) Append(ctx context.Context, event *models.Event) error {
	return appendEventTx(r.db.WithContext(ctx), event)
}

// appendEventTx is the single write path into the event log. The entity
// repositories call it on their own transaction so the entity write and the
// audit append commit together.
func appendEventTx(tx *gorm.DB, event *models.Event) error {
	return tx.Create(event).Error
}

// ListByEntity returns the entity's history ascending by timestamp, ties
// broken by the monotonic event id.
func (r *eventRepository) ListByEntity(ctx context.Context, districtID uint, entityType string, entityID uint) ([]models.Event, error) {
	var events []models.Event
	err := r.db.WithContext(ctx).
		Where("district_id = ? AND entity_type = ? AND entity_id = ?", districtID, entityType, entityID).
		Order("created_at ASC, id ASC").
		Find(&events).Error
	if err != nil {
		return nil, err
	}

	return events, nil
}

func (r *eventRepository) Count(ctx context.Context, districtID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Event{}).
		Where("district_id = ?", districtID).
		Count(&count).Error
	return count, err
}
