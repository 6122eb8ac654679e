package entities

import (
	"time"
)

// AppointmentStatus represents the status of an appointment
type AppointmentStatus string

const (
	AppointmentStatusPending    AppointmentStatus = "pending"
	AppointmentStatusConfirmed  AppointmentStatus = "confirmed"
	AppointmentStatusInProgress AppointmentStatus = "in_progress"
	AppointmentStatusCompleted  AppointmentStatus = "completed"
	AppointmentStatusCanceled   AppointmentStatus = "canceled"
	AppointmentStatusNoShow     AppointmentStatus = "no_show"
)

// IsValid reports whether the status is one of the known states.
func (s AppointmentStatus) IsValid() bool {
	switch s {
	case AppointmentStatusPending, AppointmentStatusConfirmed, AppointmentStatusInProgress,
		AppointmentStatusCompleted, AppointmentStatusCanceled, AppointmentStatusNoShow:
		return true
	}
	return false
}

// Blocking reports whether an appointment in this status still occupies its
// time interval. Canceled and no-show appointments release the slot.
func (s AppointmentStatus) Blocking() bool {
	return s != AppointmentStatusCanceled && s != AppointmentStatusNoShow
}

// Label returns the human-readable status text rendered into external
// calendar event descriptions.
func (s AppointmentStatus) Label() string {
	switch s {
	case AppointmentStatusPending:
		return "Pending confirmation"
	case AppointmentStatusConfirmed:
		return "Confirmed"
	case AppointmentStatusInProgress:
		return "In progress"
	case AppointmentStatusCompleted:
		return "Completed"
	case AppointmentStatusCanceled:
		return "Canceled"
	case AppointmentStatusNoShow:
		return "No-show"
	}
	return string(s)
}

// Appointment represents a booked slot for a professional
type Appointment struct {
	ID              string            `json:"id" db:"id"`
	TenantID        string            `json:"tenant_id" db:"tenant_id"`
	ClientID        string            `json:"client_id" db:"client_id"`
	ProfessionalID  string            `json:"professional_id" db:"professional_id"`
	ServiceIDs      []string          `json:"service_ids" db:"service_ids"`
	StartAt         time.Time         `json:"start_at" db:"start_at"`
	EndAt           time.Time         `json:"end_at" db:"end_at"`
	DurationMinutes int               `json:"duration_minutes" db:"duration_minutes"`
	Status          AppointmentStatus `json:"status" db:"status"`
	ExternalEventID *string           `json:"external_event_id,omitempty" db:"external_event_id"`
	Notes           string            `json:"notes" db:"notes"`
	CreatedAt       time.Time         `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time         `json:"updated_at" db:"updated_at"`
}

// Interval returns the half-open interval [StartAt, EndAt) occupied by the
// appointment.
func (a *Appointment) Interval() (time.Time, time.Time) {
	return a.StartAt, a.EndAt
}

// Overlaps reports whether the appointment's interval overlaps [start, end),
// using half-open comparison.
func (a *Appointment) Overlaps(start, end time.Time) bool {
	return a.StartAt.Before(end) && start.Before(a.EndAt)
}
