package models

// Wire formats for calendar days and clock times.
const (
	DateFormat = "2006-01-02" // YYYY-MM-DD
	TimeFormat = "15:04"      // HH:MM
)

// TimeSlot is a candidate appointment window reported by availability data.
// Ephemeral: the session only references it by id/startTime until committed.
type TimeSlot struct {
	ID        string `json:"id"`
	Date      string `json:"date"`
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
	IsBooked  bool   `json:"isBooked"`
}
