package scheduling

import "salonflow/models"

// Total sums the prices of the scheduled items plus an optional pending item
// (selected but not yet appended), so a displayed running total reflects the
// current selection before advance is called. Always recomputed, never cached.
func Total(scheduled []models.ScheduledItem, pending *models.ScheduledItem) float64 {
	var total float64
	for _, item := range scheduled {
		total += item.Price
	}
	if pending != nil {
		total += pending.Price
	}
	return total
}
