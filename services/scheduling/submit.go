package scheduling

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"salonflow/models"
)

// Submit drives the terminal ReviewAndSubmit transition. Individual carts go
// out as sequential creates, group carts as one batch, reschedules as one
// patch. Failures route the session to the stage the caller can recover from.
func (s *DefaultSchedulingService) Submit(ctx context.Context, sessionID string, contact models.ContactInfo) (*SubmitResult, error) {
	if err := s.beginTransition(sessionID); err != nil {
		return nil, err
	}
	defer s.endTransition(sessionID)

	session, err := s.loadSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.Stage != models.StageReviewAndSubmit {
		return nil, fmt.Errorf("%w: stage is %s", ErrStageMismatch, session.Stage)
	}
	if !session.IsComplete() {
		return nil, fmt.Errorf("%w: %d of %d items scheduled", ErrStageMismatch, len(session.Scheduled), len(session.Items))
	}

	switch {
	case session.IsReschedule():
		return s.submitReschedule(ctx, session)
	case session.Mode == models.ModeGroup:
		return s.submitGroup(ctx, session, contact)
	default:
		return s.submitIndividual(ctx, session, contact)
	}
}

func (s *DefaultSchedulingService) submitReschedule(ctx context.Context, session *models.SchedulingSession) (*SubmitResult, error) {
	target := session.RescheduleTarget

	// The lockout can start between advance and submit. Re-check against the
	// original time; a reschedule never degrades to local persistence.
	if IsRescheduleLocked(s.Clock, target.OriginalDate, target.OriginalStartTime) {
		session.Stage = models.StageFailed
		session.UpdatedAt = s.Clock.Now()
		if err := s.Store.Save(ctx, session); err != nil {
			s.Logger.Warn("Failed to persist lockout failure", zap.String("sessionId", session.ID), zap.Error(err))
		}
		return nil, fmt.Errorf("%w: original appointment starts within 24 hours", ErrPolicyViolation)
	}

	err := s.Submitter.Reschedule(ctx, target, session.Scheduled[0])
	switch {
	case err == nil:
		return s.finishSubmitted(ctx, session, &SubmitResult{CreatedIDs: nil})
	case errors.Is(err, ErrSlotConflict):
		s.routeBackToScheduling(ctx, session, 0)
		return nil, err
	default:
		// Transport and backend errors stay retryable; the session keeps its
		// review state.
		return nil, err
	}
}

func (s *DefaultSchedulingService) submitGroup(ctx context.Context, session *models.SchedulingSession, contact models.ContactInfo) (*SubmitResult, error) {
	result, err := s.Submitter.SubmitGroup(ctx, contact, session.Scheduled)
	switch {
	case err == nil:
		session.SubmittedIDs = result.CreatedIDs
		return s.finishSubmitted(ctx, session, &SubmitResult{
			BookingID:  result.BookingID,
			CreatedIDs: result.CreatedIDs,
		})
	case errors.Is(err, ErrSlotConflict):
		// The batch fails as a unit; re-enter scheduling from the first item.
		session.Scheduled = nil
		s.routeBackToScheduling(ctx, session, 0)
		return nil, err
	case errors.Is(err, ErrTransportFailure):
		return s.degradeToLocal(ctx, session, contact, session.Scheduled)
	default:
		return nil, err
	}
}

func (s *DefaultSchedulingService) submitIndividual(ctx context.Context, session *models.SchedulingSession, contact models.ContactInfo) (*SubmitResult, error) {
	// Items created in an earlier partial round are real appointments already;
	// only the remainder goes to the backend.
	already := len(session.SubmittedIDs)
	if already > len(session.Scheduled) {
		already = len(session.Scheduled)
	}
	pending := session.Scheduled[already:]

	createdIDs, failed, err := s.Submitter.SubmitIndividual(ctx, contact, pending)
	session.SubmittedIDs = append(session.SubmittedIDs, createdIDs...)
	if err == nil {
		return s.finishSubmitted(ctx, session, &SubmitResult{CreatedIDs: session.SubmittedIDs})
	}

	if len(createdIDs) == 0 {
		// Nothing new went through: conflicts route back to re-selection of
		// the remainder, total backend unavailability degrades to local
		// persistence of the remainder.
		if errors.Is(err, ErrSlotConflict) {
			session.Scheduled = session.Scheduled[:already]
			s.routeBackToScheduling(ctx, session, already)
			return nil, err
		}
		if errors.Is(err, ErrTransportFailure) {
			return s.degradeToLocal(ctx, session, contact, pending)
		}
		return nil, err
	}

	// Partial failure: items 1..k-1 are real appointments now and are never
	// rolled back. The session re-enters scheduling at the first failed index
	// so only the remainder is retried.
	created := already + len(createdIDs)
	session.Scheduled = session.Scheduled[:created]
	s.routeBackToScheduling(ctx, session, created)

	return nil, &PartialBatchError{
		CreatedIDs: createdIDs,
		Failed:     failed,
		Cause:      err,
	}
}

// routeBackToScheduling re-enters SchedulingItem at the given index, keeping
// the session durable.
func (s *DefaultSchedulingService) routeBackToScheduling(ctx context.Context, session *models.SchedulingSession, index int) {
	session.Cursor = index
	session.Stage = models.StageSchedulingItem
	session.UpdatedAt = s.Clock.Now()
	if err := s.Store.Save(ctx, session); err != nil {
		s.Logger.Warn("Failed to persist re-selection state",
			zap.String("sessionId", session.ID), zap.Error(err))
	}
}

// degradeToLocal persists the still-unsubmitted items with the local-booking
// tag and enqueues a background retry. Degraded-but-visible: the caller sees
// it, the customer is not blocked, and it is never reported as success.
func (s *DefaultSchedulingService) degradeToLocal(ctx context.Context, session *models.SchedulingSession, contact models.ContactInfo, items []models.ScheduledItem) (*SubmitResult, error) {
	session.LocalBooking = &models.LocalBookingPayload{
		IsLocalBooking: true,
		Contact:        contact,
		Items:          items,
		SavedAt:        s.Clock.Now(),
	}
	session.UpdatedAt = s.Clock.Now()
	if err := s.Store.Save(ctx, session); err != nil {
		return nil, fmt.Errorf("%w: could not persist local booking: %v", ErrTransportFailure, err)
	}

	if s.Retry != nil {
		if err := s.Retry.EnqueueBookingRetry(ctx, session.ID); err != nil {
			s.Logger.Warn("Failed to enqueue booking retry",
				zap.String("sessionId", session.ID), zap.Error(err))
		}
	}

	s.Logger.Warn("Backend unreachable, booking persisted locally",
		zap.String("sessionId", session.ID),
		zap.Int("items", len(items)))
	return &SubmitResult{Degraded: true}, nil
}

// finishSubmitted marks the session terminal and clears every durable key.
func (s *DefaultSchedulingService) finishSubmitted(ctx context.Context, session *models.SchedulingSession, result *SubmitResult) (*SubmitResult, error) {
	session.Stage = models.StageSubmitted
	session.UpdatedAt = s.Clock.Now()
	if err := s.Store.Clear(ctx, session.ID); err != nil {
		s.Logger.Warn("Failed to clear submitted session",
			zap.String("sessionId", session.ID), zap.Error(err))
	}
	s.dropGateway(session.ID)

	s.Logger.Info("Scheduling session submitted",
		zap.String("sessionId", session.ID),
		zap.Int("created", len(result.CreatedIDs)))
	return result, nil
}

// ResubmitLocal re-attempts a previously degraded submission. Called by the
// background retry worker; a still-unreachable backend leaves the local
// payload in place for the next attempt.
func (s *DefaultSchedulingService) ResubmitLocal(ctx context.Context, sessionID string) error {
	if err := s.beginTransition(sessionID); err != nil {
		return err
	}
	defer s.endTransition(sessionID)

	session, err := s.loadSession(ctx, sessionID)
	if err != nil {
		return err
	}
	if session.LocalBooking == nil {
		return nil
	}

	payload := session.LocalBooking
	if session.Mode == models.ModeGroup {
		result, err := s.Submitter.SubmitGroup(ctx, payload.Contact, payload.Items)
		if err != nil {
			return err
		}
		session.SubmittedIDs = result.CreatedIDs
	} else {
		createdIDs, _, err := s.Submitter.SubmitIndividual(ctx, payload.Contact, payload.Items)
		if err != nil {
			session.SubmittedIDs = append(session.SubmittedIDs, createdIDs...)
			session.LocalBooking.Items = session.LocalBooking.Items[len(createdIDs):]
			session.UpdatedAt = s.Clock.Now()
			if saveErr := s.Store.Save(ctx, session); saveErr != nil {
				s.Logger.Warn("Failed to persist retry progress",
					zap.String("sessionId", sessionID), zap.Error(saveErr))
			}
			return err
		}
		session.SubmittedIDs = append(session.SubmittedIDs, createdIDs...)
	}

	session.LocalBooking = nil
	_, finishErr := s.finishSubmitted(ctx, session, &SubmitResult{CreatedIDs: session.SubmittedIDs})
	return finishErr
}
