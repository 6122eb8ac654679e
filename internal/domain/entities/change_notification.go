package entities

import (
	"time"
)

// ChangeType classifies a storage mutation on the appointments table.
type ChangeType string

const (
	ChangeTypeInsert ChangeType = "INSERT"
	ChangeTypeUpdate ChangeType = "UPDATE"
	ChangeTypeDelete ChangeType = "DELETE"
)

// IsValid reports whether the change type is one of the known kinds.
func (c ChangeType) IsValid() bool {
	return c == ChangeTypeInsert || c == ChangeTypeUpdate || c == ChangeTypeDelete
}

// ChangeNotification is the payload delivered by the storage layer's
// change-notification mechanism. OldRecord is only populated for updates and
// deletes; for deletes it is the record of interest.
type ChangeNotification struct {
	ID        string       `json:"id"`
	Type      ChangeType   `json:"type"`
	Table     string       `json:"table"`
	Record    *Appointment `json:"record,omitempty"`
	OldRecord *Appointment `json:"old_record,omitempty"`
	EmittedAt time.Time    `json:"emitted_at"`
}

// Snapshot returns the appointment record the sync should act on: the old
// record for deletes, the new record otherwise.
func (n *ChangeNotification) Snapshot() *Appointment {
	if n.Type == ChangeTypeDelete {
		return n.OldRecord
	}
	return n.Record
}

// SyncStatus classifies the outcome of one calendar sync attempt.
type SyncStatus string

const (
	SyncStatusOK      SyncStatus = "ok"
	SyncStatusSkipped SyncStatus = "skipped"
	SyncStatusFailed  SyncStatus = "failed"
)

// SyncResult is the outcome of running the calendar sync adapter for one
// appointment snapshot.
type SyncResult struct {
	Status SyncStatus `json:"status"`
	Reason string     `json:"reason,omitempty"`
}

// WebhookEvent journals a received change notification for idempotent intake.
type WebhookEvent struct {
	ID           string     `json:"id" db:"id"`
	Provider     string     `json:"provider" db:"provider"`
	EventType    string     `json:"event_type" db:"event_type"`
	Payload      []byte     `json:"payload" db:"payload"`
	Processed    bool       `json:"processed" db:"processed"`
	ErrorMessage *string    `json:"error_message,omitempty" db:"error_message"`
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`
	ProcessedAt  *time.Time `json:"processed_at,omitempty" db:"processed_at"`
}
