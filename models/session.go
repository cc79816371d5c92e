package models

import "time"

// SessionMode distinguishes individual carts from group (multi-member) carts.
type SessionMode string

const (
	ModeIndividual SessionMode = "individual"
	ModeGroup      SessionMode = "group"
)

// SessionStage is the current stage of the scheduling session state machine.
type SessionStage string

const (
	StageSelectingServices      SessionStage = "selecting_services"
	StageAssigningProfessionals SessionStage = "assigning_professionals"
	StageSchedulingItem         SessionStage = "scheduling_item"
	StageReviewAndSubmit        SessionStage = "review_and_submit"
	StageSubmitted              SessionStage = "submitted"
	StageFailed                 SessionStage = "failed"
)

// ScheduledItem is a fully resolved (service, professional, time) triple ready
// for persistence. Created only once a TimeSlot has been chosen for a
// ServiceItem + assignment pair. EndTime is computed from StartTime + duration.
type ScheduledItem struct {
	ServiceName      string          `json:"serviceName"`
	Price            float64         `json:"price"`
	DurationMinutes  int             `json:"durationMinutes"`
	Date             string          `json:"date"`
	StartTime        string          `json:"startTime"`
	EndTime          string          `json:"endTime"`
	ProfessionalID   string          `json:"professionalId"`
	ProfessionalName string          `json:"professionalName"`
	Participant      *ParticipantTag `json:"participant,omitempty"`
}

// AppointmentRef targets an existing appointment in reschedule mode. The
// 24-hour policy is always evaluated against the ORIGINAL time, never the
// newly chosen one.
type AppointmentRef struct {
	ID                string `json:"id"`
	OriginalDate      string `json:"originalDate"`
	OriginalStartTime string `json:"originalStartTime"`
	ProfessionalID    string `json:"professionalId"`
}

// LocalBookingPayload is the fully assembled submission saved locally when the
// backend is unreachable. Degraded-but-visible: never treated as success.
type LocalBookingPayload struct {
	IsLocalBooking bool            `json:"isLocalBooking"`
	Contact        ContactInfo     `json:"contact"`
	Items          []ScheduledItem `json:"items"`
	SavedAt        time.Time       `json:"savedAt"`
}

// SchedulingSession holds everything between service selection and final
// submission. Persisted to the durability store on every transition so an
// interruption (e.g. a sign-in redirect) does not lose selections.
type SchedulingSession struct {
	ID               string                   `json:"sessionId"`
	SalonID          string                   `json:"salonId"`
	AccountID        string                   `json:"accountId"`
	Mode             SessionMode              `json:"mode"`
	Stage            SessionStage             `json:"stage"`
	Items            []ServiceItem            `json:"items"`
	Participants     []ParticipantTag         `json:"participants,omitempty"`
	Assignments      []ProfessionalAssignment `json:"assignments"`
	Cursor           int                      `json:"cursor"`
	Scheduled        []ScheduledItem          `json:"scheduled"`
	RescheduleTarget *AppointmentRef          `json:"rescheduleTarget,omitempty"`
	SubmittedIDs     []string                 `json:"submittedIds,omitempty"`
	LocalBooking     *LocalBookingPayload     `json:"localBooking,omitempty"`
	CreatedAt        time.Time                `json:"createdAt"`
	UpdatedAt        time.Time                `json:"updatedAt"`
}

// IsReschedule reports whether the session reschedules an existing appointment.
func (s *SchedulingSession) IsReschedule() bool {
	return s.RescheduleTarget != nil
}

// IsComplete reports whether every item has been scheduled.
func (s *SchedulingSession) IsComplete() bool {
	return s.Cursor == len(s.Items) && len(s.Scheduled) == len(s.Items)
}

// CurrentItem returns the item under the cursor, or nil when the cursor is
// past the last item.
func (s *SchedulingSession) CurrentItem() *ServiceItem {
	if s.Cursor < 0 || s.Cursor >= len(s.Items) {
		return nil
	}
	return &s.Items[s.Cursor]
}

// CurrentParticipant returns the participant tag for the item under the
// cursor, or nil outside group mode.
func (s *SchedulingSession) CurrentParticipant() *ParticipantTag {
	if s.Mode != ModeGroup || s.Cursor < 0 || s.Cursor >= len(s.Participants) {
		return nil
	}
	tag := s.Participants[s.Cursor]
	return &tag
}

// AssignmentFor returns the assignment for the named service, if any.
func (s *SchedulingSession) AssignmentFor(serviceName string) (ProfessionalAssignment, bool) {
	for _, a := range s.Assignments {
		if a.ServiceName == serviceName {
			return a, true
		}
	}
	return ProfessionalAssignment{}, false
}
