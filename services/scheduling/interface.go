package scheduling

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"salonflow/models"
)

// ProfessionalDirectory lists the professionals of a salon. Feeds resolution
// of the "any available" assignment choice.
type ProfessionalDirectory interface {
	ListProfessionals(ctx context.Context, salonID string) ([]models.Professional, error)
}

// RetryEnqueuer schedules a deferred re-submission of a locally persisted
// booking payload.
type RetryEnqueuer interface {
	EnqueueBookingRetry(ctx context.Context, sessionID string) error
}

// BeginInput is the cart handed over when the customer leaves service
// selection.
type BeginInput struct {
	SalonID          string
	AccountID        string
	Mode             models.SessionMode
	Items            []models.ServiceItem
	Participants     []models.ParticipantTag
	RescheduleTarget *models.AppointmentRef
}

// SlotsView is what the scheduling stage exposes for the current item: the
// selectable date window, the filtered slots for the chosen date and the
// running total so far.
type SlotsView struct {
	ServiceName string            `json:"serviceName"`
	Dates       []string          `json:"dates"`
	Date        string            `json:"date"`
	Slots       []models.TimeSlot `json:"slots"`
	Total       float64           `json:"total"`
}

// AdvanceOutcome reports a successful cursor transition.
type AdvanceOutcome struct {
	Session *models.SchedulingSession `json:"session"`
	Total   float64                   `json:"total"`
}

// SubmitResult reports the terminal transition. Degraded means the payload was
// persisted locally because the backend was unreachable; it is never a success.
type SubmitResult struct {
	CreatedIDs []string `json:"createdIds,omitempty"`
	BookingID  string   `json:"bookingId,omitempty"`
	Degraded   bool     `json:"isLocalBooking,omitempty"`
}

// SchedulingService manages the stateful appointment scheduling session.
type SchedulingService interface {
	Begin(ctx context.Context, input BeginInput) (*models.SchedulingSession, error)
	AssignProfessionals(ctx context.Context, sessionID string, assignments []models.ProfessionalAssignment) (*models.SchedulingSession, error)
	Slots(ctx context.Context, sessionID, date string) (*SlotsView, error)
	Advance(ctx context.Context, sessionID, date, slotID string) (*AdvanceOutcome, error)
	Reopen(ctx context.Context, sessionID string, items []models.ServiceItem, participants []models.ParticipantTag) (*models.SchedulingSession, error)
	RescheduleAdvance(ctx context.Context, sessionID, date, slotID string) (*AdvanceOutcome, error)
	Submit(ctx context.Context, sessionID string, contact models.ContactInfo) (*SubmitResult, error)
	Abandon(ctx context.Context, sessionID string) error
}

// DefaultSchedulingService implements SchedulingService.
type DefaultSchedulingService struct {
	Store     *SessionStore
	Source    SlotSource
	Directory ProfessionalDirectory
	Submitter *Submitter
	Retry     RetryEnqueuer
	Clock     Clock
	Logger    *zap.Logger

	mu       sync.Mutex
	gateways map[string]*SlotGateway
	inFlight map[string]struct{}
}

// NewDefaultSchedulingService wires the engine. Retry may be nil when no
// background retry queue is configured.
func NewDefaultSchedulingService(
	store *SessionStore,
	source SlotSource,
	directory ProfessionalDirectory,
	submitter *Submitter,
	retry RetryEnqueuer,
	clock Clock,
	logger *zap.Logger,
) *DefaultSchedulingService {
	return &DefaultSchedulingService{
		Store:     store,
		Source:    source,
		Directory: directory,
		Submitter: submitter,
		Retry:     retry,
		Clock:     clock,
		Logger:    logger,
		gateways:  make(map[string]*SlotGateway),
		inFlight:  make(map[string]struct{}),
	}
}

// beginTransition enforces the single-flight rule: no two transitions may be
// in flight concurrently for the same session. The later call is rejected.
func (s *DefaultSchedulingService) beginTransition(sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, busy := s.inFlight[sessionID]; busy {
		return ErrTransitionInFlight
	}
	s.inFlight[sessionID] = struct{}{}
	return nil
}

func (s *DefaultSchedulingService) endTransition(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.inFlight, sessionID)
}

// gatewayFor returns the per-session slot gateway, creating it on first use.
func (s *DefaultSchedulingService) gatewayFor(sessionID string) *SlotGateway {
	s.mu.Lock()
	defer s.mu.Unlock()
	gw, ok := s.gateways[sessionID]
	if !ok {
		gw = NewSlotGateway(s.Source, s.Logger)
		s.gateways[sessionID] = gw
	}
	return gw
}

func (s *DefaultSchedulingService) dropGateway(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.gateways, sessionID)
}

// loadSession reads the session from the durability store. A session the
// store no longer knows has expired or was cleared elsewhere, so its slot
// gateway is evicted here; otherwise the map would grow with every session
// that dies by TTL.
func (s *DefaultSchedulingService) loadSession(ctx context.Context, sessionID string) (*models.SchedulingSession, error) {
	session, err := s.Store.Load(ctx, sessionID)
	if errors.Is(err, ErrSessionNotFound) {
		s.dropGateway(sessionID)
	}
	return session, err
}
