package appointments

import "salonflow/models"

// CreateRequest is the payload for individual appointment creation.
type CreateRequest struct {
	Contact models.ContactInfo     `json:"contact"`
	Items   []models.ScheduledItem `json:"items"`
}

// CreateResult carries the ids of the created appointment records.
type CreateResult struct {
	CreatedIDs []string `json:"createdIds"`
}

// GroupCreateRequest is the payload for the batched group booking. The backend
// creates one appointment per item atomically as a unit.
type GroupCreateRequest struct {
	Contact models.ContactInfo     `json:"contact"`
	Items   []models.ScheduledItem `json:"items"`
}

// GroupCreateResult carries the batch id plus the per-item appointment ids.
type GroupCreateResult struct {
	BookingID  string   `json:"bookingId"`
	CreatedIDs []string `json:"createdIds"`
}

// ReschedulePatch carries only the fields a reschedule may change.
type ReschedulePatch struct {
	Date           string `json:"date"`
	StartTime      string `json:"startTime"`
	EndTime        string `json:"endTime"`
	ProfessionalID string `json:"professionalId"`
}
