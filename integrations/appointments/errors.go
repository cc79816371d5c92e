package appointments

import "errors"

var (
	// ErrSlotTaken is returned when the backend rejects a create/reschedule
	// because the slot was taken between fetch and submit. Distinct from a
	// transport failure so the engine can route back to re-selection.
	ErrSlotTaken = errors.New("appointments client: slot no longer available")

	// ErrUnavailable is returned when the backend is unreachable or failing.
	ErrUnavailable = errors.New("appointments client: backend unavailable")

	// ErrInvalidResponse is returned on an unexpected response from the backend.
	ErrInvalidResponse = errors.New("appointments client: invalid response")

	// ErrAppointmentNotFound is returned when a reschedule targets an unknown id.
	ErrAppointmentNotFound = errors.New("appointments client: appointment not found")
)
