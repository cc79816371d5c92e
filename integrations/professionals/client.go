package professionals

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"

	"salonflow/models"
)

var (
	// ErrUnavailable is returned when the directory is unreachable or failing.
	ErrUnavailable = errors.New("professionals client: directory unavailable")

	// ErrInvalidResponse is returned on an unexpected response from the directory.
	ErrInvalidResponse = errors.New("professionals client: invalid response")
)

// Client reads the external professionals directory. It feeds resolution of
// the "any available" assignment choice; professional CRUD lives elsewhere.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient builds a professionals directory client.
func NewClient(baseURL string, timeout time.Duration, logger *zap.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

// ListProfessionals fetches the professionals working at a salon.
func (c *Client) ListProfessionals(ctx context.Context, salonID string) ([]models.Professional, error) {
	endpoint := fmt.Sprintf("%s/internal/salons/%s/professionals", c.baseURL, url.PathEscape(salonID))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create request: %v", ErrUnavailable, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("Professionals directory unreachable", zap.String("salonId", salonID), zap.Error(err))
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
		Professionals []models.Professional `json:"professionals"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("%w: failed to decode response: %v", ErrInvalidResponse, err)
	}
	return payload.Professionals, nil
}
