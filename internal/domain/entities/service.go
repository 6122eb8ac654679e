package entities

import (
	"time"
)

// Service represents a bookable service offered by a tenant. Duration must
// not retroactively change past appointments; the appointment snapshots the
// summed duration at booking time.
type Service struct {
	ID              string    `json:"id" db:"id"`
	TenantID        string    `json:"tenant_id" db:"tenant_id"`
	Name            string    `json:"name" db:"name"`
	DurationMinutes int       `json:"duration_minutes" db:"duration_minutes"`
	Price           float64   `json:"price" db:"price"`
	Active          bool      `json:"active" db:"active"`
	CreatedAt       time.Time `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time `json:"updated_at" db:"updated_at"`
}

// TotalDuration sums the durations of a service composition in minutes.
func TotalDuration(services []*Service) int {
	total := 0
	for _, svc := range services {
		total += svc.DurationMinutes
	}
	return total
}

// TotalPrice sums the prices of a service composition.
func TotalPrice(services []*Service) float64 {
	total := 0.0
	for _, svc := range services {
		total += svc.Price
	}
	return total
}
