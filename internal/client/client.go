// Package client talks to a running trailmark server over its REST API.
// It backs the trailmarkctl CLI and the remote MCP mode.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/claude/trailmark/internal/tracker"
	"github.com/claude/trailmark/internal/workout"
)

// APIError is a non-2xx response from the server.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("server returned %d: %s", e.Status, e.Message)
}

// Is maps 400 responses to workout.ErrValidation and 409 to
// tracker.ErrMapUnavailable so callers can treat local and remote errors alike.
func (e *APIError) Is(target error) bool {
	switch target {
	case workout.ErrValidation:
		return e.Status == http.StatusBadRequest
	case tracker.ErrMapUnavailable:
		return e.Status == http.StatusConflict
	}
	return false
}

// Client calls the trailmark REST API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New creates a Client targeting the given base URL.
func New(baseURL string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// do sends a JSON request. It returns the status and body of any 2xx
// response; 404 is returned as a status, everything else as an *APIError.
func (c *Client) do(ctx context.Context, method, path string, body any) (int, []byte, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return 0, nil, fmt.Errorf("client: encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return 0, nil, fmt.Errorf("client: create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("client: %s %s: %w", method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, fmt.Errorf("client: read body: %w", err)
	}

	if resp.StatusCode == http.StatusNotFound || resp.StatusCode/100 == 2 {
		return resp.StatusCode, data, nil
	}
	var e struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(data, &e) != nil || e.Error == "" {
		e.Error = strings.TrimSpace(string(data))
	}
	return resp.StatusCode, nil, &APIError{Status: resp.StatusCode, Message: e.Error}
}

func decode[T any](data []byte, what string) (*T, error) {
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("client: decode %s: %w", what, err)
	}
	return &v, nil
}

// ListWorkouts returns every workout in creation order.
func (c *Client) ListWorkouts(ctx context.Context) ([]workout.Record, error) {
	_, body, err := c.do(ctx, http.MethodGet, "/api/v1/workouts", nil)
	if err != nil {
		return nil, err
	}
	records, err := decode[[]workout.Record](body, "workouts")
	if err != nil {
		return nil, err
	}
	return *records, nil
}

// GetWorkout returns the workout, or nil when the id is unknown.
func (c *Client) GetWorkout(ctx context.Context, id string) (*workout.Record, error) {
	status, body, err := c.do(ctx, http.MethodGet, "/api/v1/workouts/"+url.PathEscape(id), nil)
	if err != nil || status == http.StatusNotFound {
		return nil, err
	}
	return decode[workout.Record](body, "workout")
}

// CreateWorkout submits a workout form.
func (c *Client) CreateWorkout(ctx context.Context, in tracker.FormInput) (*workout.Record, error) {
	_, body, err := c.do(ctx, http.MethodPost, "/api/v1/workouts", in)
	if err != nil {
		return nil, err
	}
	return decode[workout.Record](body, "workout")
}

// EditWorkout saves edited fields. An unknown id returns nil and no error.
func (c *Client) EditWorkout(ctx context.Context, id string, edits tracker.FieldEdits) (*workout.Record, error) {
	status, body, err := c.do(ctx, http.MethodPatch, "/api/v1/workouts/"+url.PathEscape(id), edits)
	if err != nil || status == http.StatusNoContent {
		return nil, err
	}
	return decode[workout.Record](body, "workout")
}

// DeleteWorkout removes a workout. Unknown ids are not an error.
func (c *Client) DeleteWorkout(ctx context.Context, id string) error {
	_, _, err := c.do(ctx, http.MethodDelete, "/api/v1/workouts/"+url.PathEscape(id), nil)
	return err
}

// RequestEdit puts the workout's list entry into edit mode. It reports
// false for an unknown id.
func (c *Client) RequestEdit(ctx context.Context, id string) (bool, error) {
	status, _, err := c.do(ctx, http.MethodPost, "/api/v1/workouts/"+url.PathEscape(id)+"/edit", nil)
	if err != nil {
		return false, err
	}
	return status != http.StatusNotFound, nil
}

// SelectWorkout centers the map on the workout and returns the view, or
// nil for an unknown id.
func (c *Client) SelectWorkout(ctx context.Context, id string) (*tracker.MapSnapshot, error) {
	status, body, err := c.do(ctx, http.MethodPost, "/api/v1/workouts/"+url.PathEscape(id)+"/select", nil)
	if err != nil || status == http.StatusNotFound {
		return nil, err
	}
	return decode[tracker.MapSnapshot](body, "map")
}

// SelectLocation sets the location used by the next form without coordinates.
func (c *Client) SelectLocation(ctx context.Context, coords workout.Coordinates) error {
	_, _, err := c.do(ctx, http.MethodPost, "/api/v1/location", map[string]any{"coordinates": coords})
	return err
}

// Map returns the current map view.
func (c *Client) Map(ctx context.Context) (*tracker.MapSnapshot, error) {
	_, body, err := c.do(ctx, http.MethodGet, "/api/v1/map", nil)
	if err != nil {
		return nil, err
	}
	return decode[tracker.MapSnapshot](body, "map")
}

// Entries returns the rendered list entries, newest first.
func (c *Client) Entries(ctx context.Context) ([]tracker.Entry, error) {
	_, body, err := c.do(ctx, http.MethodGet, "/api/v1/list", nil)
	if err != nil {
		return nil, err
	}
	entries, err := decode[[]tracker.Entry](body, "list")
	if err != nil {
		return nil, err
	}
	return *entries, nil
}

// Reset deletes every workout on the server.
func (c *Client) Reset(ctx context.Context) error {
	_, _, err := c.do(ctx, http.MethodPost, "/api/v1/reset", nil)
	return err
}

// IsValidation reports whether err is a rejected workout input, local or remote.
func IsValidation(err error) bool {
	return errors.Is(err, workout.ErrValidation)
}
