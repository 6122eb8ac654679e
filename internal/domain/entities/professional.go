package entities

import (
	"time"
)

// Weekday is the schedule key for a professional's weekly availability.
type Weekday string

const (
	WeekdayMonday    Weekday = "mon"
	WeekdayTuesday   Weekday = "tue"
	WeekdayWednesday Weekday = "wed"
	WeekdayThursday  Weekday = "thu"
	WeekdayFriday    Weekday = "fri"
	WeekdaySaturday  Weekday = "sat"
	WeekdaySunday    Weekday = "sun"
)

// WeekdayOf maps a calendar date onto its schedule key.
func WeekdayOf(t time.Time) Weekday {
	switch t.Weekday() {
	case time.Monday:
		return WeekdayMonday
	case time.Tuesday:
		return WeekdayTuesday
	case time.Wednesday:
		return WeekdayWednesday
	case time.Thursday:
		return WeekdayThursday
	case time.Friday:
		return WeekdayFriday
	case time.Saturday:
		return WeekdaySaturday
	default:
		return WeekdaySunday
	}
}

// TimeWindow is a contiguous time-of-day interval during which a professional
// accepts bookings on a given weekday. Start and End use "HH:MM" wall-clock
// notation in the professional's local time.
type TimeWindow struct {
	Start  string `json:"start"`
	End    string `json:"end"`
	Active bool   `json:"active"`
}

// WeeklyAvailability maps weekdays onto the professional's working windows.
// A missing or empty entry means the professional does not work that day.
type WeeklyAvailability map[Weekday][]TimeWindow

// Professional represents a bookable staff member owned by a tenant
type Professional struct {
	ID                   string             `json:"id" db:"id"`
	TenantID             string             `json:"tenant_id" db:"tenant_id"`
	DisplayName          string             `json:"display_name" db:"display_name"`
	Availability         WeeklyAvailability `json:"availability" db:"availability"`
	ServiceIDs           []string           `json:"service_ids" db:"service_ids"`
	ExternalCalendarID   *string            `json:"external_calendar_id,omitempty" db:"external_calendar_id"`
	ExternalRefreshToken *string            `json:"-" db:"external_refresh_token"`
	Active               bool               `json:"active" db:"active"`
	CreatedAt            time.Time          `json:"created_at" db:"created_at"`
	UpdatedAt            time.Time          `json:"updated_at" db:"updated_at"`
}

// CalendarConnected reports whether the professional has linked an external
// calendar account.
func (p *Professional) CalendarConnected() bool {
	return p.ExternalRefreshToken != nil && *p.ExternalRefreshToken != ""
}

// WindowsOn returns the active windows for the given weekday.
func (p *Professional) WindowsOn(day Weekday) []TimeWindow {
	var active []TimeWindow
	for _, w := range p.Availability[day] {
		if w.Active {
			active = append(active, w)
		}
	}
	return active
}
