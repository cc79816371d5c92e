package scheduling

import (
	"errors"
	"fmt"

	"salonflow/models"
)

var (
	// ErrSessionNotFound is returned when the durability store has no session
	// under the given id (expired, cleared, or never existed).
	ErrSessionNotFound = errors.New("scheduling: session not found")

	// ErrStageMismatch is returned when an operation is called in a stage that
	// does not allow it.
	ErrStageMismatch = errors.New("scheduling: operation not allowed in current stage")

	// ErrNoSlotSelected is returned by advance when no valid time slot is
	// selected for the current item.
	ErrNoSlotSelected = errors.New("scheduling: no slot selected")

	// ErrAssignmentMissing is returned when an item has no professional
	// assignment before scheduling proceeds.
	ErrAssignmentMissing = errors.New("scheduling: professional assignment missing")

	// ErrProfessionalUnresolved is returned when the resolved professional id
	// for the current item could not be determined.
	ErrProfessionalUnresolved = errors.New("scheduling: professional could not be resolved")

	// ErrPolicyViolation is returned when the temporal policy forbids the
	// action (past slot, 24-hour lockout). Named and non-retryable.
	ErrPolicyViolation = errors.New("scheduling: temporal policy violation")

	// ErrSlotConflict is returned when the backend reports the slot was taken
	// between fetch and submit.
	ErrSlotConflict = errors.New("scheduling: slot no longer available")

	// ErrTransportFailure is returned when the backend is unreachable. Retryable.
	ErrTransportFailure = errors.New("scheduling: backend unreachable")

	// ErrTransitionInFlight is returned when a transition for the same session
	// is still outstanding. The later call is rejected, not queued.
	ErrTransitionInFlight = errors.New("scheduling: another transition is in flight")

	// ErrGroupModeOnly is returned when a group-only operation is called on an
	// individual or reschedule session.
	ErrGroupModeOnly = errors.New("scheduling: operation allowed in group mode only")
)

// PartialBatchError reports a sequential individual-mode submission in which
// some items were created and the rest failed. Already-created appointments
// are never rolled back; the caller retries only the failed remainder.
type PartialBatchError struct {
	CreatedIDs []string
	Failed     []models.ScheduledItem
	Cause      error
}

func (e *PartialBatchError) Error() string {
	return fmt.Sprintf("scheduling: partial batch failure: %d created, %d failed: %v",
		len(e.CreatedIDs), len(e.Failed), e.Cause)
}

func (e *PartialBatchError) Unwrap() error {
	return e.Cause
}
