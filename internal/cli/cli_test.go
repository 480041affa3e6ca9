package cli

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/claude/trailmark/internal/geo"
	"github.com/claude/trailmark/internal/server"
	"github.com/claude/trailmark/internal/storage"
	"github.com/claude/trailmark/internal/tracker"
	"github.com/claude/trailmark/internal/workout"
	"github.com/fatih/color"
)

func newTestServer(t *testing.T) (string, *tracker.Session) {
	t.Helper()
	color.NoColor = true
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	mapView, list := tracker.NewMapState(), tracker.NewListState()
	p := storage.NewPersister(storage.NewMemorySlot(), "workout", log)
	session := tracker.New(p, geo.StaticLocator{Position: workout.Coordinates{45, -122}}, mapView, list, tracker.Options{Zoom: 13}, log)
	if err := session.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	ts := httptest.NewServer(server.New(session, mapView, list, log))
	t.Cleanup(func() {
		ts.Close()
		session.Close()
	})
	return ts.URL, session
}

func run(t *testing.T, url string, args ...string) (string, error) {
	t.Helper()
	root := RootCmd("test")
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(append([]string{"--server", url}, args...))
	err := root.Execute()
	return out.String(), err
}

// TestRunAndList verifies logging a run and seeing it in the list.
func TestRunAndList(t *testing.T) {
	url, _ := newTestServer(t)

	out, err := run(t, url, "run", "5", "30", "180", "--at", "45,-122")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if !strings.Contains(out, "Logged") || !strings.Contains(out, "6.0 min/km") {
		t.Errorf("run output = %q", out)
	}

	if _, err := run(t, url, "ride", "--at", "45,-122", "--", "20", "60", "-15"); err != nil {
		t.Fatalf("ride: %v", err)
	}

	out, err = run(t, url, "list", "--kind", "cycling")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "20.0 km/h") || !strings.Contains(out, "-15 m") || strings.Contains(out, "min/km") {
		t.Errorf("list output = %q", out)
	}
}

// TestRunValidationError verifies a rejected workout is an error.
func TestRunValidationError(t *testing.T) {
	url, session := newTestServer(t)
	if _, err := run(t, url, "run", "5", "0", "180", "--at", "1,2"); err == nil {
		t.Fatal("expected error for zero duration")
	}
	if n := len(session.Workouts()); n != 0 {
		t.Errorf("workouts = %d, want 0", n)
	}
}

// TestEditDeleteFocus verifies the per-workout commands.
func TestEditDeleteFocus(t *testing.T) {
	url, session := newTestServer(t)
	if _, err := run(t, url, "locate", "46,-121"); err != nil {
		t.Fatalf("locate: %v", err)
	}
	if _, err := run(t, url, "run", "5", "30", "180"); err != nil {
		t.Fatalf("run: %v", err)
	}
	id := session.Workouts()[0].ID

	out, err := run(t, url, "edit", id, "--distance", "10")
	if err != nil || !strings.Contains(out, "3.0 min/km") {
		t.Errorf("edit = %q, %v", out, err)
	}
	if _, err := run(t, url, "edit", id); err == nil {
		t.Error("edit without flags should fail")
	}

	out, err = run(t, url, "focus", id)
	if err != nil || !strings.Contains(out, "46,-121") {
		t.Errorf("focus = %q, %v", out, err)
	}

	out, err = run(t, url, "show", id)
	if err != nil || !strings.Contains(out, id) {
		t.Errorf("show = %q, %v", out, err)
	}

	if _, err := run(t, url, "delete", id); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := run(t, url, "show", id); err == nil {
		t.Error("show of deleted workout should fail")
	}
}

// TestResetRequiresConfirmation verifies reset needs --yes.
func TestResetRequiresConfirmation(t *testing.T) {
	url, session := newTestServer(t)
	run(t, url, "run", "5", "30", "180", "--at", "1,2")

	if _, err := run(t, url, "reset"); err == nil {
		t.Error("reset without --yes should fail")
	}
	if n := len(session.Workouts()); n != 1 {
		t.Fatalf("workouts = %d, want 1", n)
	}
	if _, err := run(t, url, "reset", "--yes"); err != nil {
		t.Fatal(err)
	}
	if n := len(session.Workouts()); n != 0 {
		t.Errorf("workouts = %d, want 0", n)
	}
}

// TestParseCoordinates verifies the lat,lng flag format.
func TestParseCoordinates(t *testing.T) {
	got, err := parseCoordinates(" 45.5 , -122 ")
	if err != nil || got != (workout.Coordinates{45.5, -122}) {
		t.Errorf("parseCoordinates = %v, %v", got, err)
	}
	for _, bad := range []string{"45", "a,1", "1,b"} {
		if _, err := parseCoordinates(bad); err == nil {
			t.Errorf("parseCoordinates(%q) should fail", bad)
		}
	}
}

// TestRootCmdStructure verifies every subcommand is registered.
func TestRootCmdStructure(t *testing.T) {
	root := RootCmd("test")
	want := map[string]bool{"list": false, "show": false, "run": false, "ride": false, "edit": false, "delete": false, "focus": false, "locate": false, "reset": false, "mcp": false}
	for _, sub := range root.Commands() {
		name := strings.Fields(sub.Use)[0]
		if _, ok := want[name]; ok {
			want[name] = true
			if sub.Short == "" {
				t.Errorf("%s has no Short description", name)
			}
		}
	}
	for name, found := range want {
		if !found {
			t.Errorf("subcommand %s not registered", name)
		}
	}
}
