// Package scheduling implements the pure availability model: computing which
// start times a professional can be booked into on a given date, from weekly
// windows, service duration and existing appointments. It has no side effects
// and is safe to call concurrently.
package scheduling

import (
	"fmt"
	"iter"
	"sort"
	"time"

	"github.com/olatide/bookingscheduler/backend/internal/domain/entities"
)

// DefaultIntervalMinutes is the slot grid step used when the caller passes a
// non-positive interval.
const DefaultIntervalMinutes = 30

// SlotUnavailableError indicates a requested interval conflicts with an
// existing non-canceled appointment or falls outside working hours.
type SlotUnavailableError struct {
	ProfessionalID string
	StartAt        time.Time
}

func (e *SlotUnavailableError) Error() string {
	return fmt.Sprintf("slot unavailable: professional %s at %s", e.ProfessionalID, e.StartAt.Format(time.RFC3339))
}

// Slots returns the valid booking start times for the professional on the
// given date, as a lazy, finite, restartable ascending sequence of local
// times. existing must be pre-filtered to the same professional and day;
// canceled and no-show appointments are ignored. now supplies the wall clock
// for the past-slot cutoff when date is today.
//
// A candidate start t is valid iff t+duration fits inside a window, t is
// strictly after now when date is today, and [t, t+duration) does not overlap
// any blocking existing appointment (half-open comparison).
func Slots(
	professional *entities.Professional,
	durationMinutes int,
	date time.Time,
	existing []*entities.Appointment,
	intervalMinutes int,
	now time.Time,
) iter.Seq[time.Time] {
	if intervalMinutes <= 0 {
		intervalMinutes = DefaultIntervalMinutes
	}
	interval := time.Duration(intervalMinutes) * time.Minute
	duration := time.Duration(durationMinutes) * time.Minute

	windows := professional.WindowsOn(entities.WeekdayOf(date))
	blocking := blockingIntervals(existing)
	sameDay := sameDate(date, now)

	return func(yield func(time.Time) bool) {
		if durationMinutes <= 0 || len(windows) == 0 {
			return
		}
		for _, t := range candidateStarts(windows, date, interval, duration) {
			if sameDay && !t.After(now) {
				continue
			}
			if overlapsAny(t, t.Add(duration), blocking) {
				continue
			}
			if !yield(t) {
				return
			}
		}
	}
}

// CollectSlots materializes the slot sequence into a slice.
func CollectSlots(
	professional *entities.Professional,
	durationMinutes int,
	date time.Time,
	existing []*entities.Appointment,
	intervalMinutes int,
	now time.Time,
) []time.Time {
	var slots []time.Time
	for t := range Slots(professional, durationMinutes, date, existing, intervalMinutes, now) {
		slots = append(slots, t)
	}
	return slots
}

// ValidateStart checks one specific start time against the availability
// rules, for booking creation and reschedule. excludeID removes the
// appointment's own interval from the conflict check when rescheduling.
func ValidateStart(
	professional *entities.Professional,
	durationMinutes int,
	startAt time.Time,
	existing []*entities.Appointment,
	excludeID string,
	now time.Time,
) error {
	if durationMinutes <= 0 {
		return &SlotUnavailableError{ProfessionalID: professional.ID, StartAt: startAt}
	}
	duration := time.Duration(durationMinutes) * time.Minute
	endAt := startAt.Add(duration)

	if !startAt.After(now) {
		return &SlotUnavailableError{ProfessionalID: professional.ID, StartAt: startAt}
	}

	inWindow := false
	for _, w := range windowStarts(professional.WindowsOn(entities.WeekdayOf(startAt)), startAt) {
		if !startAt.Before(w.windowStart) && !endAt.After(w.windowEnd) {
			inWindow = true
			break
		}
	}
	if !inWindow {
		return &SlotUnavailableError{ProfessionalID: professional.ID, StartAt: startAt}
	}

	for _, appt := range existing {
		if appt.ID == excludeID || !appt.Status.Blocking() {
			continue
		}
		if appt.Overlaps(startAt, endAt) {
			return &SlotUnavailableError{ProfessionalID: professional.ID, StartAt: startAt}
		}
	}
	return nil
}

type window struct {
	windowStart time.Time
	windowEnd   time.Time
}

// candidateStarts walks every window on the interval grid, keeping starts
// whose slot fits inside the window, merged ascending and deduplicated
// across overlapping windows.
func candidateStarts(windows []entities.TimeWindow, date time.Time, interval, duration time.Duration) []time.Time {
	var starts []time.Time
	for _, w := range windowStarts(windows, date) {
		for t := w.windowStart; !t.Add(duration).After(w.windowEnd); t = t.Add(interval) {
			starts = append(starts, t)
		}
	}
	sort.Slice(starts, func(i, j int) bool { return starts[i].Before(starts[j]) })
	deduped := make([]time.Time, 0, len(starts))
	for _, t := range starts {
		if n := len(deduped); n == 0 || !t.Equal(deduped[n-1]) {
			deduped = append(deduped, t)
		}
	}
	return deduped
}

// windowStarts resolves HH:MM windows onto the concrete date, dropping
// malformed or inverted ones, sorted by start.
func windowStarts(windows []entities.TimeWindow, date time.Time) []window {
	resolved := make([]window, 0, len(windows))
	for _, w := range windows {
		start, okStart := atClock(date, w.Start)
		end, okEnd := atClock(date, w.End)
		if !okStart || !okEnd || !end.After(start) {
			continue
		}
		resolved = append(resolved, window{windowStart: start, windowEnd: end})
	}
	sort.Slice(resolved, func(i, j int) bool {
		return resolved[i].windowStart.Before(resolved[j].windowStart)
	})
	return resolved
}

// atClock combines the calendar day of date with an "HH:MM" wall-clock time.
func atClock(date time.Time, clock string) (time.Time, bool) {
	parsed, err := time.Parse("15:04", clock)
	if err != nil {
		return time.Time{}, false
	}
	year, month, day := date.Date()
	return time.Date(year, month, day, parsed.Hour(), parsed.Minute(), 0, 0, date.Location()), true
}

func blockingIntervals(existing []*entities.Appointment) []*entities.Appointment {
	var blocking []*entities.Appointment
	for _, appt := range existing {
		if appt.Status.Blocking() {
			blocking = append(blocking, appt)
		}
	}
	return blocking
}

func overlapsAny(start, end time.Time, existing []*entities.Appointment) bool {
	for _, appt := range existing {
		if appt.Overlaps(start, end) {
			return true
		}
	}
	return false
}

func sameDate(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.In(a.Location()).Date()
	return ay == by && am == bm && ad == bd
}
