package client

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/claude/trailmark/internal/geo"
	"github.com/claude/trailmark/internal/mcp"
	"github.com/claude/trailmark/internal/server"
	"github.com/claude/trailmark/internal/storage"
	"github.com/claude/trailmark/internal/tracker"
	"github.com/claude/trailmark/internal/workout"
)

// Compile-time check: Client can back the MCP tools remotely.
var _ mcp.DataSource = (*Client)(nil)

func newTestClient(t *testing.T, loc geo.Locator) *Client {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	mapView, list := tracker.NewMapState(), tracker.NewListState()
	p := storage.NewPersister(storage.NewMemorySlot(), "workout", log)
	session := tracker.New(p, loc, mapView, list, tracker.Options{Zoom: 13}, log)
	if err := session.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	ts := httptest.NewServer(server.New(session, mapView, list, log))
	t.Cleanup(func() {
		ts.Close()
		session.Close()
	})
	return New(ts.URL + "/")
}

var home = workout.Coordinates{45, -122}

// TestClientRoundTrip verifies create, get, edit, list and delete against a live server.
func TestClientRoundTrip(t *testing.T) {
	c := newTestClient(t, geo.StaticLocator{Position: home})
	ctx := context.Background()
	coords := home

	created, err := c.CreateWorkout(ctx, tracker.FormInput{Kind: "cycling", Distance: "20", Duration: "60", Metric: "300", Coordinates: &coords})
	if err != nil {
		t.Fatalf("CreateWorkout: %v", err)
	}
	if created.Speed == nil || *created.Speed != 20 {
		t.Errorf("speed = %v, want 20", created.Speed)
	}

	got, err := c.GetWorkout(ctx, created.ID)
	if err != nil || got == nil || got.ID != created.ID {
		t.Fatalf("GetWorkout = %+v, %v", got, err)
	}

	edited, err := c.EditWorkout(ctx, created.ID, tracker.FieldEdits{Duration: "30"})
	if err != nil || edited == nil {
		t.Fatalf("EditWorkout = %+v, %v", edited, err)
	}
	if *edited.Speed != 40 {
		t.Errorf("speed after edit = %v, want 40", *edited.Speed)
	}

	list, err := c.ListWorkouts(ctx)
	if err != nil || len(list) != 1 {
		t.Fatalf("ListWorkouts = %d, %v", len(list), err)
	}

	if err := c.DeleteWorkout(ctx, created.ID); err != nil {
		t.Fatalf("DeleteWorkout: %v", err)
	}
	if got, err := c.GetWorkout(ctx, created.ID); got != nil || err != nil {
		t.Errorf("GetWorkout after delete = %+v, %v", got, err)
	}
}

// TestClientSoftNotFound verifies unknown ids come back as nil, not errors.
func TestClientSoftNotFound(t *testing.T) {
	c := newTestClient(t, geo.StaticLocator{Position: home})
	ctx := context.Background()

	if r, err := c.EditWorkout(ctx, "nope", tracker.FieldEdits{Distance: "1"}); r != nil || err != nil {
		t.Errorf("EditWorkout = %+v, %v", r, err)
	}
	if err := c.DeleteWorkout(ctx, "nope"); err != nil {
		t.Errorf("DeleteWorkout: %v", err)
	}
	if snap, err := c.SelectWorkout(ctx, "nope"); snap != nil || err != nil {
		t.Errorf("SelectWorkout = %+v, %v", snap, err)
	}
	if ok, err := c.RequestEdit(ctx, "nope"); ok || err != nil {
		t.Errorf("RequestEdit = %v, %v", ok, err)
	}
}

// TestClientValidationError verifies a 400 maps to workout.ErrValidation.
func TestClientValidationError(t *testing.T) {
	c := newTestClient(t, geo.StaticLocator{Position: home})
	coords := home
	_, err := c.CreateWorkout(context.Background(), tracker.FormInput{Kind: "running", Distance: "5", Duration: "0", Metric: "180", Coordinates: &coords})

	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.Status != http.StatusBadRequest {
		t.Fatalf("error = %v, want 400 APIError", err)
	}
	if !IsValidation(err) {
		t.Error("IsValidation = false, want true")
	}
}

// TestClientMapUnavailable verifies a 409 maps to tracker.ErrMapUnavailable.
func TestClientMapUnavailable(t *testing.T) {
	c := newTestClient(t, geo.Unavailable{})
	err := c.SelectLocation(context.Background(), home)
	if !errors.Is(err, tracker.ErrMapUnavailable) {
		t.Errorf("error = %v, want ErrMapUnavailable", err)
	}
}

// TestClientViewsAndReset verifies the map, list and reset calls.
func TestClientViewsAndReset(t *testing.T) {
	c := newTestClient(t, geo.StaticLocator{Position: home})
	ctx := context.Background()

	if err := c.SelectLocation(ctx, workout.Coordinates{10, 20}); err != nil {
		t.Fatal(err)
	}
	created, err := c.CreateWorkout(ctx, tracker.FormInput{Kind: "running", Distance: "5", Duration: "30", Metric: "180"})
	if err != nil {
		t.Fatal(err)
	}
	if ok, err := c.RequestEdit(ctx, created.ID); !ok || err != nil {
		t.Errorf("RequestEdit = %v, %v", ok, err)
	}

	snap, err := c.SelectWorkout(ctx, created.ID)
	if err != nil || snap.Center != (workout.Coordinates{10, 20}) {
		t.Errorf("SelectWorkout = %+v, %v", snap, err)
	}
	m, err := c.Map(ctx)
	if err != nil || len(m.Markers) != 1 {
		t.Errorf("Map = %+v, %v", m, err)
	}
	entries, err := c.Entries(ctx)
	if err != nil || len(entries) != 1 || !entries[0].Editing {
		t.Errorf("Entries = %+v, %v", entries, err)
	}

	if err := c.Reset(ctx); err != nil {
		t.Fatal(err)
	}
	if list, _ := c.ListWorkouts(ctx); len(list) != 0 {
		t.Errorf("workouts after reset = %d", len(list))
	}
}
