package scheduling

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"salonflow/models"
)

func TestTotal(t *testing.T) {
	scheduled := []models.ScheduledItem{
		{ServiceName: "Haircut", Price: 45},
		{ServiceName: "Manicure", Price: 30},
	}

	assert.Equal(t, 75.0, Total(scheduled, nil))
	assert.Equal(t, 135.0, Total(scheduled, &models.ScheduledItem{ServiceName: "Color", Price: 60}))
	assert.Equal(t, 0.0, Total(nil, nil))
}

func TestTotalIsIdempotent(t *testing.T) {
	scheduled := []models.ScheduledItem{{ServiceName: "Haircut", Price: 45}}

	first := Total(scheduled, nil)
	second := Total(scheduled, nil)
	assert.Equal(t, first, second, "recomputing the same state yields the same total")
}
