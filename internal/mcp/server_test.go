package mcp

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/claude/trailmark/internal/geo"
	"github.com/claude/trailmark/internal/storage"
	"github.com/claude/trailmark/internal/tracker"
	"github.com/claude/trailmark/internal/workout"
	"github.com/mark3labs/mcp-go/mcp"
)

func newTestHandlers(t *testing.T) *handlers {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	mapView, list := tracker.NewMapState(), tracker.NewListState()
	p := storage.NewPersister(storage.NewMemorySlot(), "workout", log)
	session := tracker.New(p, geo.StaticLocator{Position: workout.Coordinates{45, -122}}, mapView, list, tracker.Options{Zoom: 13}, log)
	if err := session.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { session.Close() })
	return &handlers{ds: NewLocal(session, mapView), log: log}
}

func call(args map[string]any) mcp.CallToolRequest {
	var req mcp.CallToolRequest
	req.Params.Arguments = args
	return req
}

func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	if len(res.Content) == 0 {
		t.Fatal("empty tool result")
	}
	text, ok := res.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("content = %T, want TextContent", res.Content[0])
	}
	return text.Text
}

func logRun(t *testing.T, h *handlers) workout.Record {
	t.Helper()
	res, err := h.logRunning(context.Background(), call(map[string]any{
		"distance": 5.0, "duration": 30.0, "cadence": 180.0, "latitude": 45.0, "longitude": -122.0,
	}))
	if err != nil {
		t.Fatal(err)
	}
	if res.IsError {
		t.Fatalf("log_running failed: %s", resultText(t, res))
	}
	return decodeRecord(t, res)
}

func decodeRecord(t *testing.T, res *mcp.CallToolResult) workout.Record {
	t.Helper()
	var r workout.Record
	if err := json.Unmarshal([]byte(resultText(t, res)), &r); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return r
}

// TestLogRunning verifies the tool creates a workout with pace computed.
func TestLogRunning(t *testing.T) {
	h := newTestHandlers(t)
	r := logRun(t, h)
	if r.Pace == nil || *r.Pace != 6 {
		t.Errorf("pace = %v, want 6", r.Pace)
	}
	if r.Coordinates != (workout.Coordinates{45, -122}) {
		t.Errorf("coordinates = %v", r.Coordinates)
	}
}

// TestLogCyclingNegativeElevation verifies cycling accepts a negative gain.
func TestLogCyclingNegativeElevation(t *testing.T) {
	h := newTestHandlers(t)
	res, _ := h.logCycling(context.Background(), call(map[string]any{
		"distance": 20.0, "duration": 60.0, "elevation_gain": -50.0, "latitude": 1.0, "longitude": 2.0,
	}))
	if res.IsError {
		t.Fatalf("log_cycling failed: %s", resultText(t, res))
	}
	r := decodeRecord(t, res)
	if r.Speed == nil || *r.Speed != 20 || *r.ElevationGain != -50 {
		t.Errorf("record = %+v", r)
	}
}

// TestLogRunningInvalid verifies validation failures become tool errors.
func TestLogRunningInvalid(t *testing.T) {
	h := newTestHandlers(t)
	tests := []struct {
		name string
		args map[string]any
	}{
		{"zero duration", map[string]any{"distance": 5.0, "duration": 0.0, "cadence": 180.0, "latitude": 1.0, "longitude": 1.0}},
		{"missing cadence", map[string]any{"distance": 5.0, "duration": 30.0, "latitude": 1.0, "longitude": 1.0}},
		{"half coordinates", map[string]any{"distance": 5.0, "duration": 30.0, "cadence": 180.0, "latitude": 1.0}},
		{"no location", map[string]any{"distance": 5.0, "duration": 30.0, "cadence": 180.0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := h.logRunning(context.Background(), call(tt.args))
			if err != nil {
				t.Fatal(err)
			}
			if !res.IsError {
				t.Errorf("expected tool error, got %s", resultText(t, res))
			}
		})
	}
}

// TestEditAndDeleteWorkout verifies the edit, get and delete tools.
func TestEditAndDeleteWorkout(t *testing.T) {
	h := newTestHandlers(t)
	ctx := context.Background()
	r := logRun(t, h)

	res, _ := h.editWorkout(ctx, call(map[string]any{"id": r.ID, "distance": 10.0}))
	if res.IsError {
		t.Fatalf("edit_workout failed: %s", resultText(t, res))
	}
	if edited := decodeRecord(t, res); edited.Pace == nil || *edited.Pace != 3 {
		t.Errorf("edit result = %s", resultText(t, res))
	}

	res, _ = h.editWorkout(ctx, call(map[string]any{"id": "nope", "distance": 10.0}))
	if res.IsError {
		t.Errorf("edit of unknown id is a no-op, got error: %s", resultText(t, res))
	}
	if got := resultText(t, res); got != "no workout nope; nothing changed" {
		t.Errorf("edit of unknown id = %q", got)
	}

	res, _ = h.deleteWorkout(ctx, call(map[string]any{"id": r.ID}))
	if res.IsError {
		t.Fatalf("delete_workout failed: %s", resultText(t, res))
	}
	res, _ = h.getWorkout(ctx, call(map[string]any{"id": r.ID}))
	if !res.IsError {
		t.Error("deleted workout still found")
	}
}

// TestListWorkoutsKindFilter verifies the kind filter.
func TestListWorkoutsKindFilter(t *testing.T) {
	h := newTestHandlers(t)
	ctx := context.Background()
	logRun(t, h)
	h.logCycling(ctx, call(map[string]any{"distance": 20.0, "duration": 60.0, "elevation_gain": 1.0, "latitude": 1.0, "longitude": 2.0}))

	res, _ := h.listWorkouts(ctx, call(map[string]any{"kind": "cycling"}))
	var records []workout.Record
	if err := json.Unmarshal([]byte(resultText(t, res)), &records); err != nil {
		t.Fatal(err)
	}
	if len(records) != 1 || records[0].Kind != workout.Cycling {
		t.Errorf("records = %+v", records)
	}
}

// TestSelectWorkout verifies the map view is returned for a known id.
func TestSelectWorkout(t *testing.T) {
	h := newTestHandlers(t)
	r := logRun(t, h)
	res, _ := h.selectWorkout(context.Background(), call(map[string]any{"id": r.ID}))
	if res.IsError {
		t.Fatalf("select_workout failed: %s", resultText(t, res))
	}
	var snap tracker.MapSnapshot
	json.Unmarshal([]byte(resultText(t, res)), &snap)
	if snap.Zoom != 13 || len(snap.Markers) != 1 {
		t.Errorf("snapshot = %+v", snap)
	}
}

// TestWorkoutsResource verifies the resource lists every workout.
func TestWorkoutsResource(t *testing.T) {
	h := newTestHandlers(t)
	logRun(t, h)

	var req mcp.ReadResourceRequest
	req.Params.URI = "trailmark://workouts"
	contents, err := h.workouts(context.Background(), req)
	if err != nil {
		t.Fatal(err)
	}
	text := contents[0].(mcp.TextResourceContents)
	if text.MIMEType != "application/json" || !strings.Contains(text.Text, `"kind":"running"`) {
		t.Errorf("resource = %+v", text)
	}
}

// TestNewRegistersTools verifies the server builds with the local source.
func TestNewRegistersTools(t *testing.T) {
	h := newTestHandlers(t)
	if s := New(h.ds, "test", h.log); s == nil {
		t.Fatal("New returned nil")
	}
}
