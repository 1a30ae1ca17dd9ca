package domain

import (
	"encoding/json"
	"time"
)

// EventType defines the type of domain event.
type EventType string

const (
	// Registration Events
	EventLandRegistered  EventType = "LAND_REGISTERED"
	EventOwnerRegistered EventType = "OWNER_REGISTERED"
	EventDeedRegistered  EventType = "DEED_REGISTERED"

	// Deed Lifecycle Events
	EventDeedUpdated     EventType = "DEED_UPDATED"
	EventDeedDeleted     EventType = "DEED_DELETED"
	EventDeedTransferred EventType = "DEED_TRANSFERRED"

	// Read-side Events
	EventDeedsSearched EventType = "DEEDS_SEARCHED"

	// Integrity Events
	EventIntegrityVerified EventType = "INTEGRITY_VERIFIED"
	EventTamperDetected    EventType = "TAMPER_DETECTED"
)

// AllEventTypes lists every event type, for subscribers that want all of them.
var AllEventTypes = []EventType{
	EventLandRegistered,
	EventOwnerRegistered,
	EventDeedRegistered,
	EventDeedUpdated,
	EventDeedDeleted,
	EventDeedTransferred,
	EventDeedsSearched,
	EventIntegrityVerified,
	EventTamperDetected,
}

// DomainEvent represents an immutable domain event, emitted after commit.
type DomainEvent struct {
	EventID       string    `json:"event_id"`
	EventType     EventType `json:"event_type"`
	AggregateType string    `json:"aggregate_type"`
	AggregateID   string    `json:"aggregate_id"`
	Payload       []byte    `json:"payload"`
	CreatedBy     string    `json:"created_by"`
	CreatedAt     time.Time `json:"created_at"`
}

// AuditPayload carries the audit entry that accompanied a mutation.
type AuditPayload struct {
	Entry AuditEntry `json:"entry"`
}

// ToJSON converts payload to JSON bytes.
func (p AuditPayload) ToJSON() ([]byte, error) {
	return json.Marshal(p)
}

// TransferPayload is the payload for deed transfer events.
type TransferPayload struct {
	OldDeedNumber string     `json:"old_deed_number"`
	NewDeedNumber string     `json:"new_deed_number"`
	LandNumber    string     `json:"land_number"`
	FromOwnerNIC  string     `json:"from_owner_nic"`
	ToOwnerNIC    string     `json:"to_owner_nic"`
	BlockNumber   int64      `json:"block_number"`
	AuditEntry    AuditEntry `json:"audit_entry"`
}

// ToJSON converts payload to JSON bytes.
func (p TransferPayload) ToJSON() ([]byte, error) {
	return json.Marshal(p)
}

// IntegrityPayload is the payload for integrity check events.
type IntegrityPayload struct {
	DeedNumber     string `json:"deed_number"`
	Valid          bool   `json:"valid"`
	CurrentDigest  string `json:"current_digest"`
	RecordedDigest string `json:"recorded_digest"`
}

// ToJSON converts payload to JSON bytes.
func (p IntegrityPayload) ToJSON() ([]byte, error) {
	return json.Marshal(p)
}
