package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"salonflow/models"
	"salonflow/services/scheduling"
)

// stubService returns canned results so handler mapping can be tested in
// isolation.
type stubService struct {
	session *models.SchedulingSession
	view    *scheduling.SlotsView
	outcome *scheduling.AdvanceOutcome
	result  *scheduling.SubmitResult
	err     error
}

func (s *stubService) Begin(ctx context.Context, input scheduling.BeginInput) (*models.SchedulingSession, error) {
	return s.session, s.err
}

func (s *stubService) AssignProfessionals(ctx context.Context, sessionID string, assignments []models.ProfessionalAssignment) (*models.SchedulingSession, error) {
	return s.session, s.err
}

func (s *stubService) Slots(ctx context.Context, sessionID, date string) (*scheduling.SlotsView, error) {
	return s.view, s.err
}

func (s *stubService) Advance(ctx context.Context, sessionID, date, slotID string) (*scheduling.AdvanceOutcome, error) {
	return s.outcome, s.err
}

func (s *stubService) Reopen(ctx context.Context, sessionID string, items []models.ServiceItem, participants []models.ParticipantTag) (*models.SchedulingSession, error) {
	return s.session, s.err
}

func (s *stubService) RescheduleAdvance(ctx context.Context, sessionID, date, slotID string) (*scheduling.AdvanceOutcome, error) {
	return s.outcome, s.err
}

func (s *stubService) Submit(ctx context.Context, sessionID string, contact models.ContactInfo) (*scheduling.SubmitResult, error) {
	return s.result, s.err
}

func (s *stubService) Abandon(ctx context.Context, sessionID string) error {
	return s.err
}

func newTestRouter(svc scheduling.SchedulingService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewSchedulingHandler(svc, zap.NewNop())
	r := gin.New()
	r.POST("/session", h.BeginSession)
	r.POST("/session/:sessionID/advance", h.Advance)
	r.POST("/session/:sessionID/submit", h.Submit)
	r.DELETE("/session/:sessionID", h.AbandonSession)
	return r
}

func doJSON(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestBeginSessionValidatesInput(t *testing.T) {
	r := newTestRouter(&stubService{})

	w := doJSON(r, http.MethodPost, "/session", `{"mode":"individual"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code, "salonId and items are required")
}

func TestBeginSessionSuccess(t *testing.T) {
	svc := &stubService{session: &models.SchedulingSession{ID: "sess-1", Stage: models.StageAssigningProfessionals}}
	r := newTestRouter(svc)

	w := doJSON(r, http.MethodPost, "/session",
		`{"salonId":"salon-1","items":[{"name":"Haircut","unitPrice":45,"durationMinutes":45}]}`)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Session models.SchedulingSession `json:"session"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "sess-1", resp.Session.ID)
}

func TestErrorStatusMapping(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"session not found", scheduling.ErrSessionNotFound, http.StatusNotFound},
		{"transition in flight", scheduling.ErrTransitionInFlight, http.StatusConflict},
		{"slot conflict", scheduling.ErrSlotConflict, http.StatusConflict},
		{"policy violation", scheduling.ErrPolicyViolation, http.StatusUnprocessableEntity},
		{"professional unresolved", scheduling.ErrProfessionalUnresolved, http.StatusUnprocessableEntity},
		{"no slot selected", scheduling.ErrNoSlotSelected, http.StatusBadRequest},
		{"assignment missing", scheduling.ErrAssignmentMissing, http.StatusBadRequest},
		{"stage mismatch", scheduling.ErrStageMismatch, http.StatusBadRequest},
		{"group only", scheduling.ErrGroupModeOnly, http.StatusBadRequest},
		{"transport failure", scheduling.ErrTransportFailure, http.StatusServiceUnavailable},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := newTestRouter(&stubService{err: tc.err})
			w := doJSON(r, http.MethodPost, "/session/sess-1/advance", `{"date":"2026-03-12","slotId":"s1"}`)
			assert.Equal(t, tc.want, w.Code)
		})
	}
}

func TestPartialBatchFailureIsMultiStatus(t *testing.T) {
	svc := &stubService{err: &scheduling.PartialBatchError{
		CreatedIDs: []string{"apt-1"},
		Failed:     []models.ScheduledItem{{ServiceName: "Manicure"}},
		Cause:      scheduling.ErrSlotConflict,
	}}
	r := newTestRouter(svc)

	w := doJSON(r, http.MethodPost, "/session/sess-1/submit", `{"contact":{"name":"Ada","phone":"0800"}}`)
	require.Equal(t, http.StatusMultiStatus, w.Code)

	var resp struct {
		CreatedIDs []string               `json:"createdIds"`
		Failed     []models.ScheduledItem `json:"failed"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, []string{"apt-1"}, resp.CreatedIDs)
	require.Len(t, resp.Failed, 1)
	assert.Equal(t, "Manicure", resp.Failed[0].ServiceName)
}

func TestSubmitDegradedIsAccepted(t *testing.T) {
	svc := &stubService{result: &scheduling.SubmitResult{Degraded: true}}
	r := newTestRouter(svc)

	w := doJSON(r, http.MethodPost, "/session/sess-1/submit", `{"contact":{"name":"Ada","phone":"0800"}}`)
	require.Equal(t, http.StatusAccepted, w.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, true, resp["isLocalBooking"])
}

func TestAbandonSession(t *testing.T) {
	r := newTestRouter(&stubService{})

	w := doJSON(r, http.MethodDelete, "/session/sess-1", "")
	assert.Equal(t, http.StatusOK, w.Code)
}
