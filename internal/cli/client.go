package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/JaxylViernes/wp-seo-autopilot/internal/models"
)

// Client is a thin HTTP client for the autopilot API. All authenticated
// endpoints are scoped to a single owner, carried in the X-User-ID header.
type Client struct {
	baseURL    string
	userID     string
	httpClient *http.Client
}

func NewClient(baseURL, userID string) *Client {
	return &Client{
		baseURL: baseURL,
		userID:  userID,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

func (c *Client) doRequest(method, path string, body interface{}) (*http.Response, error) {
	var bodyReader io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		bodyReader = bytes.NewBuffer(jsonData)
	}

	req, err := http.NewRequest(method, c.baseURL+path, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	if c.userID != "" {
		req.Header.Set("X-User-ID", c.userID)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}

	return resp, nil
}

func decodeError(resp *http.Response) error {
	var apiErr struct {
		Error string `json:"error"`
	}
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if json.Unmarshal(data, &apiErr) == nil && apiErr.Error != "" {
		return fmt.Errorf("API error (%d): %s", resp.StatusCode, apiErr.Error)
	}
	return fmt.Errorf("API error (%d)", resp.StatusCode)
}

// CreateSchedule creates a new auto-schedule
func (c *Client) CreateSchedule(req *models.CreateAutoScheduleRequest) (*models.AutoSchedule, error) {
	resp, err := c.doRequest("POST", "/api/v1/schedules", req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		return nil, decodeError(resp)
	}

	var schedule models.AutoSchedule
	if err := json.NewDecoder(resp.Body).Decode(&schedule); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return &schedule, nil
}

// GetSchedules lists the caller's auto-schedules
func (c *Client) GetSchedules() ([]*models.AutoSchedule, error) {
	resp, err := c.doRequest("GET", "/api/v1/schedules?page_size=100", nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, decodeError(resp)
	}

	var list models.AutoScheduleListResponse
	if err := json.NewDecoder(resp.Body).Decode(&list); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return list.Schedules, nil
}

// GetSchedule fetches a single auto-schedule
func (c *Client) GetSchedule(id string) (*models.AutoSchedule, error) {
	resp, err := c.doRequest("GET", "/api/v1/schedules/"+id, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, decodeError(resp)
	}

	var schedule models.AutoSchedule
	if err := json.NewDecoder(resp.Body).Decode(&schedule); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return &schedule, nil
}

// DeleteSchedule soft-deletes an auto-schedule
func (c *Client) DeleteSchedule(id string) error {
	resp, err := c.doRequest("DELETE", "/api/v1/schedules/"+id, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNoContent {
		return decodeError(resp)
	}
	return nil
}

// PauseSchedule deactivates an auto-schedule
func (c *Client) PauseSchedule(id string) error {
	return c.postAction("/api/v1/schedules/" + id + "/pause")
}

// ResumeSchedule reactivates an auto-schedule
func (c *Client) ResumeSchedule(id string) error {
	return c.postAction("/api/v1/schedules/" + id + "/resume")
}

func (c *Client) postAction(path string) error {
	resp, err := c.doRequest("POST", path, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		return decodeError(resp)
	}
	return nil
}

// RunSchedule triggers an immediate run, bypassing the cadence window
func (c *Client) RunSchedule(id string) (*models.RunResult, error) {
	resp, err := c.doRequest("POST", "/api/v1/schedules/"+id+"/run", nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, decodeError(resp)
	}

	var result models.RunResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return &result, nil
}

// GetQueue lists publication queue entries, optionally filtered by status
func (c *Client) GetQueue(status string) ([]*models.ContentSchedule, error) {
	path := "/api/v1/queue?page_size=100"
	if status != "" {
		path += "&status=" + status
	}
	resp, err := c.doRequest("GET", path, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, decodeError(resp)
	}

	var list models.ContentScheduleListResponse
	if err := json.NewDecoder(resp.Body).Decode(&list); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return list.Schedules, nil
}

// RetryQueueEntry requeues a failed publication
func (c *Client) RetryQueueEntry(id string) error {
	return c.postAction("/api/v1/queue/" + id + "/retry")
}

// CancelQueueEntry cancels a pending publication
func (c *Client) CancelQueueEntry(id string) error {
	return c.postAction("/api/v1/queue/" + id + "/cancel")
}

// GetActivity lists recent activity log entries
func (c *Client) GetActivity(limit int) ([]*models.ActivityLog, error) {
	resp, err := c.doRequest("GET", fmt.Sprintf("/api/v1/activity?limit=%d", limit), nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, decodeError(resp)
	}

	var entries []*models.ActivityLog
	if err := json.NewDecoder(resp.Body).Decode(&entries); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return entries, nil
}

// HealthCheck verifies the API is reachable
func (c *Client) HealthCheck() error {
	resp, err := c.doRequest("GET", "/health", nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check failed with status %d", resp.StatusCode)
	}
	return nil
}
