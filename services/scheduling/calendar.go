package scheduling

import (
	"time"

	"salonflow/models"
)

// selectableWindowDays is the rolling window of days a customer may pick from.
const selectableWindowDays = 7

// Clock supplies "now" for the temporal policy and the calendar window.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// NewClock returns the wall clock.
func NewClock() Clock { return systemClock{} }

// SelectableDates returns the rolling 7-day date window starting today.
func SelectableDates(clock Clock) []string {
	now := clock.Now()
	dates := make([]string, 0, selectableWindowDays)
	for dayOffset := 0; dayOffset < selectableWindowDays; dayOffset++ {
		dates = append(dates, now.AddDate(0, 0, dayOffset).Format(models.DateFormat))
	}
	return dates
}
