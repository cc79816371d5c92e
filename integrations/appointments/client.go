package appointments

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"

	"salonflow/models"
)

// Client talks to the external appointments backend. Concrete paths and verbs
// are an implementation detail of that backend; only the exchanged data
// matters to callers.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient builds an appointments backend client.
func NewClient(baseURL string, timeout time.Duration, logger *zap.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

// ListSlots fetches candidate time slots for a professional on a calendar day.
func (c *Client) ListSlots(ctx context.Context, professionalID, date string) ([]models.TimeSlot, error) {
	endpoint := fmt.Sprintf("%s/internal/professionals/%s/slots?date=%s",
		c.baseURL, url.PathEscape(professionalID), url.QueryEscape(date))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create request: %v", ErrUnavailable, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		if resp.StatusCode >= http.StatusInternalServerError {
			return nil, fmt.Errorf("%w: status %d: %s", ErrUnavailable, resp.StatusCode, string(body))
		}
		return nil, fmt.Errorf("%w: unexpected status code %d: %s", ErrInvalidResponse, resp.StatusCode, string(body))
	}

	var payload struct {
		Slots []models.TimeSlot `json:"slots"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("%w: failed to decode response: %v", ErrInvalidResponse, err)
	}
	return payload.Slots, nil
}

// CreateAppointments creates one appointment record per item. The sequential
// individual-booking path calls this once per ScheduledItem.
func (c *Client) CreateAppointments(ctx context.Context, contact models.ContactInfo, items []models.ScheduledItem) (*CreateResult, error) {
	endpoint := c.baseURL + "/internal/appointments"

	var result CreateResult
	if err := c.postJSON(ctx, endpoint, CreateRequest{Contact: contact, Items: items}, &result); err != nil {
		return nil, err
	}
	if len(result.CreatedIDs) == 0 {
		return nil, fmt.Errorf("%w: create returned no appointment ids", ErrInvalidResponse)
	}
	return &result, nil
}

// CreateGroupAppointments submits the whole group cart as one atomic batch.
func (c *Client) CreateGroupAppointments(ctx context.Context, contact models.ContactInfo, items []models.ScheduledItem) (*GroupCreateResult, error) {
	endpoint := c.baseURL + "/internal/appointments/group"

	var result GroupCreateResult
	if err := c.postJSON(ctx, endpoint, GroupCreateRequest{Contact: contact, Items: items}, &result); err != nil {
		return nil, err
	}
	if result.BookingID == "" {
		return nil, fmt.Errorf("%w: group create returned no booking id", ErrInvalidResponse)
	}
	return &result, nil
}

// RescheduleAppointment patches an existing appointment in place. It never
// creates a new record.
func (c *Client) RescheduleAppointment(ctx context.Context, appointmentID string, patch ReschedulePatch) error {
	endpoint := fmt.Sprintf("%s/internal/appointments/%s", c.baseURL, url.PathEscape(appointmentID))

	body, err := json.Marshal(patch)
	if err != nil {
		return fmt.Errorf("%w: failed to marshal patch: %v", ErrInvalidResponse, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPatch, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("%w: failed to create request: %v", ErrUnavailable, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("Reschedule request failed", zap.String("appointmentId", appointmentID), zap.Error(err))
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK, http.StatusNoContent:
		return nil
	case http.StatusConflict:
		return ErrSlotTaken
	case http.StatusNotFound:
		return ErrAppointmentNotFound
	default:
		respBody, _ := io.ReadAll(resp.Body)
		if resp.StatusCode >= http.StatusInternalServerError {
			return fmt.Errorf("%w: status %d: %s", ErrUnavailable, resp.StatusCode, string(respBody))
		}
		return fmt.Errorf("%w: unexpected status code %d: %s", ErrInvalidResponse, resp.StatusCode, string(respBody))
	}
}

func (c *Client) postJSON(ctx context.Context, endpoint string, payload any, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("%w: failed to marshal request: %v", ErrInvalidResponse, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("%w: failed to create request: %v", ErrUnavailable, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("Appointments backend unreachable", zap.String("endpoint", endpoint), zap.Error(err))
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK || resp.StatusCode == http.StatusCreated:
		// Fall through to decoding.
	case resp.StatusCode == http.StatusConflict:
		return ErrSlotTaken
	case resp.StatusCode >= http.StatusInternalServerError:
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("%w: status %d: %s", ErrUnavailable, resp.StatusCode, string(respBody))
	default:
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("%w: unexpected status code %d: %s", ErrInvalidResponse, resp.StatusCode, string(respBody))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: failed to decode response: %v", ErrInvalidResponse, err)
	}
	return nil
}
