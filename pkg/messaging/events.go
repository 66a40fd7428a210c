package messaging

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Event types
const (
	// User events (published by the user service, consumed here)
	EventUserCreated = "user.created"
	EventUserUpdated = "user.updated"
	EventUserDeleted = "user.deleted"

	// Warehouse audit events
	EventAuditStarted   = "warehouse.audit.started"
	EventAuditCompleted = "warehouse.audit.completed"
	EventAuditCancelled = "warehouse.audit.cancelled"
	EventAuditCleared   = "warehouse.audit.cleared"

	// Package events
	EventPackagePutAway = "warehouse.package.putaway"
)

// Exchange names
const (
	ExchangeUserEvents      = "user.events"
	ExchangeWarehouseEvents = "warehouse.events"
)

// Event is the base event structure
type Event struct {
	ID            string          `json:"id"`
	Type          string          `json:"type"`
	Source        string          `json:"source"`
	Timestamp     time.Time       `json:"timestamp"`
	CorrelationID string          `json:"correlation_id"`
	Data          json.RawMessage `json:"data"`
}

// NewEvent creates a new event with the given type and data
func NewEvent(eventType, source, correlationID string, data interface{}) (*Event, error) {
	dataBytes, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	return &Event{
		ID:            uuid.New().String(),
		Type:          eventType,
		Source:        source,
		Timestamp:     time.Now().UTC(),
		CorrelationID: correlationID,
		Data:          dataBytes,
	}, nil
}

// UnmarshalData unmarshals the event data into the provided struct
func (e *Event) UnmarshalData(v interface{}) error {
	return json.Unmarshal(e.Data, v)
}

// User Events

// UserCreatedEvent is published when a user is created
type UserCreatedEvent struct {
	UserID   string `json:"user_id"`
	Email    string `json:"email"`
	Name     string `json:"name"`
	RoleName string `json:"role_name"`
}

// UserUpdatedEvent is published when a user is updated
type UserUpdatedEvent struct {
	UserID string         `json:"user_id"`
	Fields map[string]any `json:"fields"` // Changed fields
}

// UserDeletedEvent is published when a user is deleted
type UserDeletedEvent struct {
	UserID string `json:"user_id"`
}

// Warehouse Events

// AuditTransitionEvent is published when a check order changes state
type AuditTransitionEvent struct {
	CheckOrderID    string `json:"check_order_id"`
	Status          string `json:"status"`
	PerformedBy     string `json:"performed_by"`
	InspectionCount int    `json:"inspection_count,omitempty"`
}

// PackagePutAwayEvent is published when a package is assigned a location
type PackagePutAwayEvent struct {
	PackageID   string `json:"package_id"`
	LocationID  string `json:"location_id"`
	Quantity    int    `json:"quantity"`
	PerformedBy string `json:"performed_by"`
}
