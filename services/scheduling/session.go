package scheduling

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"salonflow/models"
)

// Begin creates a new scheduling session from the assembled cart. Called when
// the customer leaves the service-selection stage.
func (s *DefaultSchedulingService) Begin(ctx context.Context, input BeginInput) (*models.SchedulingSession, error) {
	if err := validateBeginInput(input); err != nil {
		return nil, err
	}

	session := &models.SchedulingSession{
		ID:               uuid.New().String(),
		SalonID:          input.SalonID,
		AccountID:        input.AccountID,
		Mode:             input.Mode,
		Stage:            models.StageAssigningProfessionals,
		Items:            input.Items,
		Participants:     input.Participants,
		RescheduleTarget: input.RescheduleTarget,
		CreatedAt:        s.Clock.Now(),
		UpdatedAt:        s.Clock.Now(),
	}

	// A reschedule keeps the original appointment's professional: the single
	// assignment is implied, so the session skips straight to scheduling.
	if session.IsReschedule() {
		session.Assignments = []models.ProfessionalAssignment{{
			ServiceName: session.Items[0].Name,
			Choice:      models.Specific(session.RescheduleTarget.ProfessionalID),
		}}
		session.Stage = models.StageSchedulingItem
	}

	if err := s.Store.Save(ctx, session); err != nil {
		return nil, err
	}
	s.gatewayFor(session.ID)

	s.Logger.Info("Scheduling session started",
		zap.String("sessionId", session.ID),
		zap.String("mode", string(session.Mode)),
		zap.Int("items", len(session.Items)))
	return session, nil
}

func validateBeginInput(input BeginInput) error {
	if len(input.Items) == 0 {
		return fmt.Errorf("%w: cart has no service items", ErrStageMismatch)
	}
	seen := make(map[string]struct{}, len(input.Items))
	for _, item := range input.Items {
		if item.Name == "" || item.DurationMinutes <= 0 {
			return fmt.Errorf("%w: service item %q is malformed", ErrStageMismatch, item.Name)
		}
		if _, dup := seen[item.Name]; dup {
			return fmt.Errorf("%w: duplicate service name %q", ErrStageMismatch, item.Name)
		}
		seen[item.Name] = struct{}{}
	}
	if input.RescheduleTarget != nil && len(input.Items) != 1 {
		return fmt.Errorf("%w: a reschedule session holds exactly one item", ErrStageMismatch)
	}
	if input.Mode == models.ModeGroup && len(input.Participants) != len(input.Items) {
		return fmt.Errorf("%w: group mode requires one participant tag per item", ErrStageMismatch)
	}
	return nil
}

// AssignProfessionals records the professional choice for every item. In a
// multi-service session every item must be covered before scheduling proceeds.
func (s *DefaultSchedulingService) AssignProfessionals(ctx context.Context, sessionID string, assignments []models.ProfessionalAssignment) (*models.SchedulingSession, error) {
	if err := s.beginTransition(sessionID); err != nil {
		return nil, err
	}
	defer s.endTransition(sessionID)

	session, err := s.loadSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.Stage != models.StageAssigningProfessionals {
		return nil, fmt.Errorf("%w: stage is %s", ErrStageMismatch, session.Stage)
	}

	merged := session.Assignments
	for _, a := range assignments {
		known := false
		for _, item := range session.Items {
			if item.Name == a.ServiceName {
				known = true
				break
			}
		}
		if !known {
			return nil, fmt.Errorf("%w: assignment references unknown service %q", ErrAssignmentMissing, a.ServiceName)
		}
		replaced := false
		for i := range merged {
			if merged[i].ServiceName == a.ServiceName {
				merged[i] = a
				replaced = true
				break
			}
		}
		if !replaced {
			merged = append(merged, a)
		}
	}

	for _, item := range session.Items {
		if _, ok := assignmentFor(merged, item.Name); !ok {
			return nil, fmt.Errorf("%w: service %q has no assignment", ErrAssignmentMissing, item.Name)
		}
	}

	session.Assignments = merged
	session.Stage = models.StageSchedulingItem
	session.UpdatedAt = s.Clock.Now()
	if err := s.Store.Save(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

func assignmentFor(assignments []models.ProfessionalAssignment, serviceName string) (models.ProfessionalAssignment, bool) {
	for _, a := range assignments {
		if a.ServiceName == serviceName {
			return a, true
		}
	}
	return models.ProfessionalAssignment{}, false
}

// Slots exposes the scheduling stage for the current item: selectable dates
// and the policy-filtered slot list for the requested date (default: first
// selectable date).
func (s *DefaultSchedulingService) Slots(ctx context.Context, sessionID, date string) (*SlotsView, error) {
	session, err := s.loadSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.Stage != models.StageSchedulingItem {
		return nil, fmt.Errorf("%w: stage is %s", ErrStageMismatch, session.Stage)
	}
	item := session.CurrentItem()
	if item == nil {
		return nil, fmt.Errorf("%w: cursor past last item", ErrStageMismatch)
	}

	dates := SelectableDates(s.Clock)
	if date == "" {
		date = dates[0]
	}

	professionalID, _, err := s.resolveProfessional(ctx, session, *item)
	if err != nil {
		return nil, err
	}

	raw := s.gatewayFor(sessionID).GetSlots(ctx, professionalID, date)
	return &SlotsView{
		ServiceName: item.Name,
		Dates:       dates,
		Date:        date,
		Slots:       FilterSlots(s.Clock, raw, item.DurationMinutes),
		Total:       Total(session.Scheduled, nil),
	}, nil
}

// resolveProfessional turns the current item's assignment into a concrete
// professional id and display name. For a specific choice the directory only
// enriches the name; for "any available" it picks the first professional
// offering the service.
func (s *DefaultSchedulingService) resolveProfessional(ctx context.Context, session *models.SchedulingSession, item models.ServiceItem) (string, string, error) {
	assignment, ok := session.AssignmentFor(item.Name)
	if !ok {
		return "", "", fmt.Errorf("%w: service %q", ErrAssignmentMissing, item.Name)
	}

	if assignment.Choice.IsSpecific() {
		name := ""
		if pros, err := s.Directory.ListProfessionals(ctx, session.SalonID); err == nil {
			for _, p := range pros {
				if p.ID == assignment.Choice.ProfessionalID {
					name = p.Name
					break
				}
			}
		}
		return assignment.Choice.ProfessionalID, name, nil
	}

	if assignment.Choice.Kind != models.ChoiceAnyAvailable {
		return "", "", fmt.Errorf("%w: malformed choice for %q", ErrProfessionalUnresolved, item.Name)
	}

	pros, err := s.Directory.ListProfessionals(ctx, session.SalonID)
	if err != nil {
		return "", "", fmt.Errorf("%w: directory unavailable: %v", ErrProfessionalUnresolved, err)
	}
	for _, p := range pros {
		for _, svc := range p.Services {
			if svc == item.Name {
				return p.ID, p.Name, nil
			}
		}
	}
	return "", "", fmt.Errorf("%w: no professional offers %q", ErrProfessionalUnresolved, item.Name)
}

// Advance commits the chosen slot for the current item and moves the cursor.
// Each guard failure is a distinct, observable error: no slot selected, policy
// forbids, professional unresolved.
func (s *DefaultSchedulingService) Advance(ctx context.Context, sessionID, date, slotID string) (*AdvanceOutcome, error) {
	if err := s.beginTransition(sessionID); err != nil {
		return nil, err
	}
	defer s.endTransition(sessionID)

	session, err := s.loadSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.IsReschedule() {
		return nil, fmt.Errorf("%w: use reschedule advance for a reschedule session", ErrStageMismatch)
	}
	if session.Stage != models.StageSchedulingItem {
		return nil, fmt.Errorf("%w: stage is %s", ErrStageMismatch, session.Stage)
	}
	item := session.CurrentItem()
	if item == nil {
		return nil, fmt.Errorf("%w: cursor past last item", ErrStageMismatch)
	}

	scheduled, err := s.buildScheduledItem(ctx, session, *item, date, slotID)
	if err != nil {
		return nil, err
	}
	scheduled.Participant = session.CurrentParticipant()

	session.Scheduled = append(session.Scheduled, *scheduled)
	session.Cursor++
	session.UpdatedAt = s.Clock.Now()

	if session.Cursor < len(session.Items) {
		session.Stage = models.StageSchedulingItem
		s.prefetchNextItem(ctx, session)
	} else {
		session.Stage = models.StageReviewAndSubmit
	}

	if err := s.Store.Save(ctx, session); err != nil {
		return nil, err
	}
	return &AdvanceOutcome{Session: session, Total: Total(session.Scheduled, nil)}, nil
}

// buildScheduledItem runs the advance guards and assembles the ScheduledItem.
func (s *DefaultSchedulingService) buildScheduledItem(ctx context.Context, session *models.SchedulingSession, item models.ServiceItem, date, slotID string) (*models.ScheduledItem, error) {
	if slotID == "" || date == "" {
		return nil, ErrNoSlotSelected
	}

	professionalID, professionalName, err := s.resolveProfessional(ctx, session, item)
	if err != nil {
		return nil, err
	}

	raw := s.gatewayFor(session.ID).GetSlots(ctx, professionalID, date)
	var slot *models.TimeSlot
	for i := range raw {
		if raw[i].ID == slotID {
			slot = &raw[i]
			break
		}
	}
	if slot == nil || slot.IsBooked {
		return nil, fmt.Errorf("%w: slot %q is not selectable", ErrNoSlotSelected, slotID)
	}

	if IsPastSlot(s.Clock, slot.Date, slot.StartTime) || IsWithin24Hours(s.Clock, slot.Date, slot.StartTime) {
		return nil, fmt.Errorf("%w: slot %s %s", ErrPolicyViolation, slot.Date, slot.StartTime)
	}
	if slotWindowMinutes(*slot) < item.DurationMinutes {
		return nil, fmt.Errorf("%w: slot window shorter than service duration", ErrNoSlotSelected)
	}

	return &models.ScheduledItem{
		ServiceName:      item.Name,
		Price:            item.UnitPrice,
		DurationMinutes:  item.DurationMinutes,
		Date:             slot.Date,
		StartTime:        slot.StartTime,
		EndTime:          slotEndTime(slot.StartTime, item.DurationMinutes),
		ProfessionalID:   professionalID,
		ProfessionalName: professionalName,
	}, nil
}

// prefetchNextItem warms the gateway cache for the next item's default date.
// Best effort: a failure here only loses the warm cache.
func (s *DefaultSchedulingService) prefetchNextItem(ctx context.Context, session *models.SchedulingSession) {
	next := session.CurrentItem()
	if next == nil {
		return
	}
	professionalID, _, err := s.resolveProfessional(ctx, session, *next)
	if err != nil {
		s.Logger.Debug("Skipping slot prefetch", zap.String("service", next.Name), zap.Error(err))
		return
	}
	s.gatewayFor(session.ID).GetSlots(ctx, professionalID, SelectableDates(s.Clock)[0])
}

// Reopen returns a group session to item selection for additional
// participants, preserving everything already scheduled.
func (s *DefaultSchedulingService) Reopen(ctx context.Context, sessionID string, items []models.ServiceItem, participants []models.ParticipantTag) (*models.SchedulingSession, error) {
	if err := s.beginTransition(sessionID); err != nil {
		return nil, err
	}
	defer s.endTransition(sessionID)

	session, err := s.loadSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.Mode != models.ModeGroup {
		return nil, ErrGroupModeOnly
	}
	if session.Stage == models.StageSubmitted || session.Stage == models.StageFailed {
		return nil, fmt.Errorf("%w: session is terminal", ErrStageMismatch)
	}
	if len(items) == 0 || len(items) != len(participants) {
		return nil, fmt.Errorf("%w: reopen requires one participant tag per new item", ErrStageMismatch)
	}
	for _, item := range items {
		if _, exists := session.AssignmentFor(item.Name); exists {
			return nil, fmt.Errorf("%w: duplicate service name %q", ErrStageMismatch, item.Name)
		}
		for _, existing := range session.Items {
			if existing.Name == item.Name {
				return nil, fmt.Errorf("%w: duplicate service name %q", ErrStageMismatch, item.Name)
			}
		}
	}

	session.Items = append(session.Items, items...)
	session.Participants = append(session.Participants, participants...)
	session.Stage = models.StageAssigningProfessionals
	session.UpdatedAt = s.Clock.Now()
	if err := s.Store.Save(ctx, session); err != nil {
		return nil, err
	}

	s.Logger.Info("Group session reopened for more participants",
		zap.String("sessionId", sessionID),
		zap.Int("newItems", len(items)),
		zap.Int("scheduledKept", len(session.Scheduled)))
	return session, nil
}

// RescheduleAdvance replaces the session's single scheduled item and moves
// straight to review. The 24-hour lockout is evaluated against the ORIGINAL
// appointment time, regardless of how far away the new slot is.
func (s *DefaultSchedulingService) RescheduleAdvance(ctx context.Context, sessionID, date, slotID string) (*AdvanceOutcome, error) {
	if err := s.beginTransition(sessionID); err != nil {
		return nil, err
	}
	defer s.endTransition(sessionID)

	session, err := s.loadSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if !session.IsReschedule() {
		return nil, fmt.Errorf("%w: session is not a reschedule", ErrStageMismatch)
	}
	if session.Stage != models.StageSchedulingItem && session.Stage != models.StageReviewAndSubmit {
		return nil, fmt.Errorf("%w: stage is %s", ErrStageMismatch, session.Stage)
	}

	target := session.RescheduleTarget
	if IsRescheduleLocked(s.Clock, target.OriginalDate, target.OriginalStartTime) {
		// Lockout cancels any pending selection; the appointment is immutable.
		session.Scheduled = nil
		session.Cursor = 0
		session.Stage = models.StageSchedulingItem
		session.UpdatedAt = s.Clock.Now()
		if saveErr := s.Store.Save(ctx, session); saveErr != nil {
			s.Logger.Warn("Failed to persist lockout state", zap.String("sessionId", sessionID), zap.Error(saveErr))
		}
		return nil, fmt.Errorf("%w: original appointment starts within 24 hours", ErrPolicyViolation)
	}

	item := session.Items[0]
	scheduled, err := s.buildScheduledItem(ctx, session, item, date, slotID)
	if err != nil {
		return nil, err
	}

	session.Scheduled = []models.ScheduledItem{*scheduled}
	session.Cursor = 1
	session.Stage = models.StageReviewAndSubmit
	session.UpdatedAt = s.Clock.Now()
	if err := s.Store.Save(ctx, session); err != nil {
		return nil, err
	}
	return &AdvanceOutcome{Session: session, Total: Total(session.Scheduled, nil)}, nil
}

// Abandon clears the session without ever touching a create or submit
// endpoint. Navigating away is never a submission.
func (s *DefaultSchedulingService) Abandon(ctx context.Context, sessionID string) error {
	if err := s.beginTransition(sessionID); err != nil {
		return err
	}
	defer s.endTransition(sessionID)

	if err := s.Store.Clear(ctx, sessionID); err != nil {
		return err
	}
	s.dropGateway(sessionID)
	s.Logger.Info("Scheduling session abandoned", zap.String("sessionId", sessionID))
	return nil
}
