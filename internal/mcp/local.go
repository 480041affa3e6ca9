package mcp

import (
	"context"

	"github.com/claude/trailmark/internal/tracker"
	"github.com/claude/trailmark/internal/workout"
)

// Local serves MCP tools straight from an in-process session.
type Local struct {
	session *tracker.Session
	mapView *tracker.MapState
}

// Compile-time check: Local satisfies DataSource.
var _ DataSource = (*Local)(nil)

// NewLocal wraps a started session and the map view it draws into.
func NewLocal(session *tracker.Session, mapView *tracker.MapState) *Local {
	return &Local{session: session, mapView: mapView}
}

func (l *Local) ListWorkouts(context.Context) ([]workout.Record, error) {
	return workout.Records(l.session.Workouts()), nil
}

func (l *Local) GetWorkout(_ context.Context, id string) (*workout.Record, error) {
	w, ok := l.session.Find(id)
	if !ok {
		return nil, nil
	}
	r := w.Record()
	return &r, nil
}

func (l *Local) CreateWorkout(ctx context.Context, in tracker.FormInput) (*workout.Record, error) {
	w, err := l.session.OnFormSubmitted(ctx, in)
	if err != nil {
		return nil, err
	}
	r := w.Record()
	return &r, nil
}

func (l *Local) EditWorkout(ctx context.Context, id string, edits tracker.FieldEdits) (*workout.Record, error) {
	w, ok, err := l.session.OnEditSaved(ctx, id, edits)
	if err != nil || !ok {
		return nil, err
	}
	r := w.Record()
	return &r, nil
}

func (l *Local) DeleteWorkout(ctx context.Context, id string) error {
	_, err := l.session.OnDeleteRequested(ctx, id)
	return err
}

func (l *Local) SelectWorkout(_ context.Context, id string) (*tracker.MapSnapshot, error) {
	_, ok, err := l.session.OnEntrySelected(id)
	if err != nil || !ok {
		return nil, err
	}
	snap := l.mapView.Snapshot()
	return &snap, nil
}
