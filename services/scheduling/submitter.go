package scheduling

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"salonflow/integrations/appointments"
	"salonflow/models"
)

// AppointmentsAPI is the slice of the appointments backend the submitter needs.
type AppointmentsAPI interface {
	CreateAppointments(ctx context.Context, contact models.ContactInfo, items []models.ScheduledItem) (*appointments.CreateResult, error)
	CreateGroupAppointments(ctx context.Context, contact models.ContactInfo, items []models.ScheduledItem) (*appointments.GroupCreateResult, error)
	RescheduleAppointment(ctx context.Context, appointmentID string, patch appointments.ReschedulePatch) error
}

// Submitter turns a completed session into persisted appointment records.
type Submitter struct {
	API    AppointmentsAPI
	Logger *zap.Logger
}

// NewSubmitter builds a submitter over the appointments backend.
func NewSubmitter(api AppointmentsAPI, logger *zap.Logger) *Submitter {
	return &Submitter{API: api, Logger: logger}
}

// mapBackendError translates appointments-client errors into the engine's
// error kinds, keeping slot conflicts distinct from transport failures.
func mapBackendError(err error) error {
	switch {
	case errors.Is(err, appointments.ErrSlotTaken):
		return fmt.Errorf("%w: %v", ErrSlotConflict, err)
	case errors.Is(err, appointments.ErrUnavailable):
		return fmt.Errorf("%w: %v", ErrTransportFailure, err)
	default:
		return err
	}
}

// SubmitIndividual creates one appointment per item, sequentially and in
// scheduling order: each created appointment may consume availability for a
// later item with the same professional on the same day, so order matters.
// On failure at item k, items 1..k-1 stay created (no compensating delete);
// the created ids, the failed remainder and the mapped cause are returned.
func (sub *Submitter) SubmitIndividual(ctx context.Context, contact models.ContactInfo, items []models.ScheduledItem) ([]string, []models.ScheduledItem, error) {
	createdIDs := make([]string, 0, len(items))

	for i, item := range items {
		result, err := sub.API.CreateAppointments(ctx, contact, []models.ScheduledItem{item})
		if err != nil {
			mapped := mapBackendError(err)
			sub.Logger.Warn("Appointment create failed mid-batch",
				zap.Int("index", i),
				zap.String("service", item.ServiceName),
				zap.Error(err))
			return createdIDs, items[i:], mapped
		}
		// One item in, one record out; anything else means the backend and the
		// session would disagree on what exists.
		if len(result.CreatedIDs) != 1 {
			err := fmt.Errorf("%w: expected one appointment id, got %d",
				appointments.ErrInvalidResponse, len(result.CreatedIDs))
			sub.Logger.Warn("Appointment create returned unexpected id count",
				zap.Int("index", i),
				zap.String("service", item.ServiceName),
				zap.Error(err))
			return createdIDs, items[i:], err
		}
		createdIDs = append(createdIDs, result.CreatedIDs[0])
	}
	return createdIDs, nil, nil
}

// SubmitGroup submits the whole cart as one batch; the backend creates one
// appointment per item atomically, so the batch succeeds or fails as a unit.
func (sub *Submitter) SubmitGroup(ctx context.Context, contact models.ContactInfo, items []models.ScheduledItem) (*appointments.GroupCreateResult, error) {
	result, err := sub.API.CreateGroupAppointments(ctx, contact, items)
	if err != nil {
		return nil, mapBackendError(err)
	}
	return result, nil
}

// Reschedule patches the target appointment with the newly chosen time. No
// record is ever created here.
func (sub *Submitter) Reschedule(ctx context.Context, target *models.AppointmentRef, item models.ScheduledItem) error {
	patch := appointments.ReschedulePatch{
		Date:           item.Date,
		StartTime:      item.StartTime,
		EndTime:        item.EndTime,
		ProfessionalID: item.ProfessionalID,
	}
	if err := sub.API.RescheduleAppointment(ctx, target.ID, patch); err != nil {
		return mapBackendError(err)
	}
	return nil
}
