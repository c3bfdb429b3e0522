package schema

import (
	"fmt"
	"time"
)

// Inspection statuses.
const (
	StatusPending   = "pending"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// ValidStatus reports whether s is a recognized inspection status.
func ValidStatus(s string) bool {
	switch s {
	case StatusPending, StatusCompleted, StatusFailed:
		return true
	}
	return false
}

// Inspection is one examination of a door. It is the unit of offline write:
// inspections are either downloaded from the remote side (synced=true,
// offline_created=false) or created on the device (synced=false,
// offline_created=true) and marked synced once an upload pass pushes them.
type Inspection struct {
	// ===== Core Identification =====
	ID     string `json:"id"`
	DoorID string `json:"door_id"`

	// ===== Inspection Content =====
	InspectorName string `json:"inspector_name"`
	Status        string `json:"status"` // pending, completed, failed
	Notes         string `json:"notes,omitempty"`

	// ===== Scheduling =====
	Date time.Time `json:"date"` // the day the inspection is carried out

	// ===== Offline Tracking =====
	Synced         bool `json:"synced"`
	OfflineCreated bool `json:"offline_created"`

	// ===== Timestamps =====
	CreatedAt time.Time `json:"created_at"`
}

// Validate checks if the Inspection has valid field values.
func (i *Inspection) Validate() error {
	if i.ID == "" {
		return fmt.Errorf("id is required")
	}
	if i.DoorID == "" {
		return fmt.Errorf("door_id is required")
	}
	if !ValidStatus(i.Status) {
		return fmt.Errorf("status must be one of pending, completed, failed (got %q)", i.Status)
	}
	if i.CreatedAt.IsZero() {
		return fmt.Errorf("created_at is required")
	}
	return nil
}

// SetDefaults applies default values for optional fields.
// This ensures consistent behavior when fields are omitted.
func (i *Inspection) SetDefaults() {
	if i.Status == "" {
		i.Status = StatusPending
	}
	if i.Date.IsZero() {
		i.Date = time.Now()
	}
	if i.CreatedAt.IsZero() {
		i.CreatedAt = time.Now()
	}
}
