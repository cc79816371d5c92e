package scheduling

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"salonflow/models"
)

// SlotSource lists candidate time slots for a professional on a date.
type SlotSource interface {
	ListSlots(ctx context.Context, professionalID, date string) ([]models.TimeSlot, error)
}

// slotKey is the composite cache key. A typed struct rather than string
// concatenation, so two keys can never collide.
type slotKey struct {
	ProfessionalID string
	Date           string
}

// SlotGateway fetches slots and memoises one retrieval per (professional,
// date) pair for the lifetime of a session, so revisiting a date never hits
// the backend twice. One gateway exists per session instance.
type SlotGateway struct {
	source SlotSource
	logger *zap.Logger

	mu    sync.Mutex
	cache map[slotKey][]models.TimeSlot
}

// NewSlotGateway builds a per-session gateway over the given source.
func NewSlotGateway(source SlotSource, logger *zap.Logger) *SlotGateway {
	return &SlotGateway{
		source: source,
		logger: logger,
		cache:  make(map[slotKey][]models.TimeSlot),
	}
}

// GetSlots returns the candidate slots for the pair, from cache when present.
// A backend failure yields an empty list and a logged fault, never a fatal
// error; the failure is not cached so a revisit can retry.
func (g *SlotGateway) GetSlots(ctx context.Context, professionalID, date string) []models.TimeSlot {
	if professionalID == "" || date == "" {
		return nil
	}

	key := slotKey{ProfessionalID: professionalID, Date: date}

	g.mu.Lock()
	cached, ok := g.cache[key]
	g.mu.Unlock()
	if ok {
		return cached
	}

	slots, err := g.source.ListSlots(ctx, professionalID, date)
	if err != nil {
		g.logger.Warn("Slot retrieval failed, returning empty list",
			zap.String("professionalId", professionalID),
			zap.String("date", date),
			zap.Error(err))
		return []models.TimeSlot{}
	}

	g.mu.Lock()
	g.cache[key] = slots
	g.mu.Unlock()
	return slots
}

// FilterSlots applies the centralized policy to raw gateway slots: booked
// slots, past slots, slots too close to book and slots whose free window is
// shorter than the service duration are all removed.
func FilterSlots(clock Clock, slots []models.TimeSlot, durationMinutes int) []models.TimeSlot {
	eligible := make([]models.TimeSlot, 0, len(slots))
	for _, slot := range slots {
		if slot.IsBooked {
			continue
		}
		if IsPastSlot(clock, slot.Date, slot.StartTime) {
			continue
		}
		if IsWithin24Hours(clock, slot.Date, slot.StartTime) {
			continue
		}
		if slotWindowMinutes(slot) < durationMinutes {
			continue
		}
		eligible = append(eligible, slot)
	}
	return eligible
}
