package models

import (
	"time"

	"gorm.io/datatypes"
)

// Entity types an event can refer to.
const (
	EntityTypeContract = "contract"
	EntityTypeRequest  = "request"
)

// Event types recorded in the audit log.
const (
	EventTypeCreated      = "created"
	EventTypeStatusChange = "status_change"
	EventTypeApproved     = "approved"
	EventTypeRejected     = "rejected"
	EventTypePaid         = "paid"
)

// Event is an immutable audit record of a creation or accepted status
// transition. Rows are append-only; the entity row is a projection of its
// event history, with replay as the source of truth.
type Event struct {
	ID         uint              `gorm:"primaryKey" json:"id"`
	DistrictID uint              `gorm:"index;not null" json:"district_id"`
	EntityType string            `gorm:"size:32;index:idx_events_entity;not null" json:"entity_type"`
	EntityID   uint              `gorm:"index:idx_events_entity;not null" json:"entity_id"`
	EventType  string            `gorm:"size:64;not null" json:"event_type"`
	FromStatus string            `gorm:"size:32" json:"from_status"`
	ToStatus   string            `gorm:"size:32" json:"to_status"`
	ActorID    uint              `gorm:"not null" json:"actor_id"`
	ActorRole  string            `gorm:"size:32;not null" json:"actor_role"`
	Metadata   datatypes.JSONMap `gorm:"type:json" json:"metadata"`
	CreatedAt  time.Time         `json:"created_at"`
}

// ReplayStatus folds a time-ordered event history into the status the entity
// should currently hold. An empty result means the history never recorded a
// status.
func ReplayStatus(events []Event) string {
	status := ""
	for _, event := range events {
		if event.ToStatus != "" {
			status = event.ToStatus
		}
	}
	return status
}
