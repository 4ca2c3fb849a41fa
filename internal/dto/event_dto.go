package dto

import (
	"time"

	"github.com/mesaview-usd/extrapay-api/internal/models"
)

type EventResponse struct {
	ID         uint                   `json:"id"`
	EntityType string                 `json:"entity_type"`
	EntityID   uint                   `json:"entity_id"`
	EventType  string                 `json:"event_type"`
	FromStatus string                 `json:"from_status,omitempty"`
	ToStatus   string                 `json:"to_status,omitempty"`
	ActorID    uint                   `json:"actor_id"`
	ActorRole  string                 `json:"actor_role"`
	Metadata   map[string]interface{} `json:"metadata,omitempty"`
	Timestamp  time.Time              `json:"timestamp"`
}

type TimelineResponse struct {
	EntityType   string          `json:"entity_type"`
	EntityID     uint            `json:"entity_id"`
	Events       []EventResponse `json:"events"`
	ReplayStatus string          `json:"replay_status"`
}

func NewEventResponse(event models.Event) EventResponse {
	return EventResponse{
		ID:         event.ID,
		EntityType: event.EntityType,
		EntityID:   event.EntityID,
		EventType:  event.EventType,
		FromStatus: event.FromStatus,
		ToStatus:   event.ToStatus,
		ActorID:    event.ActorID,
		ActorRole:  event.ActorRole,
		Metadata:   event.Metadata,
		Timestamp:  event.CreatedAt,
	}
}

func NewTimelineResponse(entityType string, entityID uint, events []models.Event) TimelineResponse {
	out := TimelineResponse{
		EntityType:   entityType,
		EntityID:     entityID,
		Events:       make([]EventResponse, 0, len(events)),
		ReplayStatus: models.ReplayStatus(events),
	}
	for _, event := range events {
		out.Events = append(out.Events, NewEventResponse(event))
	}
	return out
}
