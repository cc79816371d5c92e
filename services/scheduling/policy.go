package scheduling

import (
	"time"

	"salonflow/models"
)

// rescheduleLockout is the window before an appointment's start during which
// booking and rescheduling are forbidden.
const rescheduleLockout = 24 * time.Hour

// slotInstant combines a calendar day and a clock time into one instant in the
// clock's location.
func slotInstant(clock Clock, date, startTime string) (time.Time, error) {
	loc := clock.Now().Location()
	return time.ParseInLocation(models.DateFormat+" "+models.TimeFormat, date+" "+startTime, loc)
}

// IsPastSlot reports whether the slot's instant is strictly before now.
// Unparsable input counts as past: an invalid slot is hidden, never offered.
func IsPastSlot(clock Clock, date, startTime string) bool {
	instant, err := slotInstant(clock, date, startTime)
	if err != nil {
		return true
	}
	return instant.Before(clock.Now())
}

// IsWithin24Hours reports whether the slot starts within the next 24 hours.
// Used for availability: such a slot is too close to offer. Unparsable input
// resolves to the conservative branch (too close).
func IsWithin24Hours(clock Clock, date, startTime string) bool {
	instant, err := slotInstant(clock, date, startTime)
	if err != nil {
		return true
	}
	delta := instant.Sub(clock.Now())
	return delta > 0 && delta <= rescheduleLockout
}

// IsRescheduleLocked reports whether an appointment's original time is at most
// 24 hours away, including already elapsed times: any outcome that close is
// immutable. Unparsable input resolves to locked.
func IsRescheduleLocked(clock Clock, date, startTime string) bool {
	instant, err := slotInstant(clock, date, startTime)
	if err != nil {
		return true
	}
	return instant.Sub(clock.Now()) <= rescheduleLockout
}

// slotEndTime computes startTime + duration in wire format. Returns an empty
// string when the start time does not parse.
func slotEndTime(startTime string, durationMinutes int) string {
	start, err := time.Parse(models.TimeFormat, startTime)
	if err != nil {
		return ""
	}
	return start.Add(time.Duration(durationMinutes) * time.Minute).Format(models.TimeFormat)
}

// slotWindowMinutes returns the length of a slot's window in minutes, or 0
// when either bound does not parse.
func slotWindowMinutes(slot models.TimeSlot) int {
	start, err := time.Parse(models.TimeFormat, slot.StartTime)
	if err != nil {
		return 0
	}
	end, err := time.Parse(models.TimeFormat, slot.EndTime)
	if err != nil {
		return 0
	}
	minutes := int(end.Sub(start).Minutes())
	if minutes < 0 {
		return 0
	}
	return minutes
}
