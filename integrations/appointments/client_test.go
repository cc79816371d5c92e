package appointments

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"salonflow/models"
)

func testClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClient(server.URL, 2*time.Second, zap.NewNop())
}

func testItems() []models.ScheduledItem {
	return []models.ScheduledItem{{
		ServiceName:     "Haircut",
		Price:           45,
		DurationMinutes: 45,
		Date:            "2026-03-12",
		StartTime:       "10:00",
		EndTime:         "10:45",
		ProfessionalID:  "pro-1",
	}}
}

func TestListSlots(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/internal/professionals/pro-1/slots", r.URL.Path)
		assert.Equal(t, "2026-03-12", r.URL.Query().Get("date"))
		json.NewEncoder(w).Encode(map[string]any{
			"slots": []models.TimeSlot{
				{ID: "s1", Date: "2026-03-12", StartTime: "10:00", EndTime: "11:00"},
				{ID: "s2", Date: "2026-03-12", StartTime: "11:00", EndTime: "12:00", IsBooked: true},
			},
		})
	})

	slots, err := client.ListSlots(context.Background(), "pro-1", "2026-03-12")
	require.NoError(t, err)
	require.Len(t, slots, 2)
	assert.Equal(t, "s1", slots[0].ID)
	assert.True(t, slots[1].IsBooked)
}

func TestListSlotsBackendError(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, err := client.ListSlots(context.Background(), "pro-1", "2026-03-12")
	assert.ErrorIs(t, err, ErrUnavailable, "5xx means the backend is failing, not talking garbage")
}

func TestListSlotsUnexpectedStatus(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	})

	_, err := client.ListSlots(context.Background(), "pro-1", "2026-03-12")
	assert.ErrorIs(t, err, ErrInvalidResponse)
}

func TestListSlotsUnreachable(t *testing.T) {
	client := NewClient("http://127.0.0.1:1", time.Second, zap.NewNop())

	_, err := client.ListSlots(context.Background(), "pro-1", "2026-03-12")
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestCreateAppointments(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/internal/appointments", r.URL.Path)

		var req CreateRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "Ada", req.Contact.Name)
		require.Len(t, req.Items, 1)

		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(CreateResult{CreatedIDs: []string{"apt-1"}})
	})

	result, err := client.CreateAppointments(context.Background(), models.ContactInfo{Name: "Ada"}, testItems())
	require.NoError(t, err)
	assert.Equal(t, []string{"apt-1"}, result.CreatedIDs)
}

func TestCreateAppointmentsConflict(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
	})

	_, err := client.CreateAppointments(context.Background(), models.ContactInfo{Name: "Ada"}, testItems())
	assert.ErrorIs(t, err, ErrSlotTaken)
}

func TestCreateAppointmentsServerError(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := client.CreateAppointments(context.Background(), models.ContactInfo{Name: "Ada"}, testItems())
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestCreateAppointmentsEmptyIDs(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(CreateResult{})
	})

	_, err := client.CreateAppointments(context.Background(), models.ContactInfo{Name: "Ada"}, testItems())
	assert.ErrorIs(t, err, ErrInvalidResponse)
}

func TestCreateGroupAppointments(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/internal/appointments/group", r.URL.Path)
		json.NewEncoder(w).Encode(GroupCreateResult{BookingID: "grp-1", CreatedIDs: []string{"apt-1", "apt-2"}})
	})

	result, err := client.CreateGroupAppointments(context.Background(), models.ContactInfo{Name: "Ada"}, testItems())
	require.NoError(t, err)
	assert.Equal(t, "grp-1", result.BookingID)
	assert.Len(t, result.CreatedIDs, 2)
}

func TestRescheduleAppointment(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		assert.Equal(t, "/internal/appointments/apt-1", r.URL.Path)

		var patch ReschedulePatch
		require.NoError(t, json.NewDecoder(r.Body).Decode(&patch))
		assert.Equal(t, "2026-03-20", patch.Date)
		w.WriteHeader(http.StatusNoContent)
	})

	err := client.RescheduleAppointment(context.Background(), "apt-1", ReschedulePatch{
		Date:           "2026-03-20",
		StartTime:      "10:00",
		EndTime:        "10:45",
		ProfessionalID: "pro-1",
	})
	assert.NoError(t, err)
}

func TestRescheduleAppointmentStatusMapping(t *testing.T) {
	cases := []struct {
		name   string
		status int
		want   error
	}{
		{"conflict", http.StatusConflict, ErrSlotTaken},
		{"not found", http.StatusNotFound, ErrAppointmentNotFound},
		{"server error", http.StatusInternalServerError, ErrUnavailable},
		{"bad request", http.StatusBadRequest, ErrInvalidResponse},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
			})
			err := client.RescheduleAppointment(context.Background(), "apt-1", ReschedulePatch{})
			assert.ErrorIs(t, err, tc.want)
		})
	}
}
