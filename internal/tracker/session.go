// Package tracker drives a workout session: it turns user interactions into
// store operations, saves the list after every change and keeps the map and
// list views in step with the store.
package tracker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/claude/trailmark/internal/geo"
	"github.com/claude/trailmark/internal/observability"
	"github.com/claude/trailmark/internal/render"
	"github.com/claude/trailmark/internal/storage"
	"github.com/claude/trailmark/internal/store"
	"github.com/claude/trailmark/internal/workout"
)

var (
	// ErrMapUnavailable is returned for map interactions when the start-up
	// location request failed.
	ErrMapUnavailable = errors.New("map unavailable")
	// ErrNoLocation is returned when a form is submitted before a location
	// was selected.
	ErrNoLocation = errors.New("no location selected")
	// ErrNotStarted is returned by commands issued before Start or after Close.
	ErrNotStarted = errors.New("session not started")
)

const defaultLocateTimeout = 5 * time.Second

// Options tunes a Session.
type Options struct {
	Zoom          int
	LocateTimeout time.Duration
}

// FormInput is a raw form submission. Numbers are parsed leniently: an empty
// field is zero and anything unparseable is NaN, so both fail validation.
// Coordinates, when nil, default to the last selected location.
type FormInput struct {
	Kind        string               `json:"kind"`
	Distance    string               `json:"distance"`
	Duration    string               `json:"duration"`
	Metric      string               `json:"metric"`
	Coordinates *workout.Coordinates `json:"coordinates,omitempty"`
}

// FieldEdits are the raw values typed into an entry in edit mode. Blank
// fields are left unchanged. Metric is the cadence or the elevation gain,
// depending on the workout's kind.
type FieldEdits struct {
	Distance string `json:"distance"`
	Duration string `json:"duration"`
	Metric   string `json:"metric"`
}

// Session is one tracker page session. All commands are serialized.
type Session struct {
	mu sync.Mutex

	persister *storage.Persister
	locator   geo.Locator
	mapView   MapView
	list      ListView
	opts      Options
	log       *slog.Logger

	store       *store.Store
	unsubscribe func()
	started     bool
	mapReady    bool
	pending     *workout.Coordinates
	editing     string
}

// New creates a session. Nothing is loaded or drawn until Start.
func New(p *storage.Persister, loc geo.Locator, m MapView, l ListView, opts Options, log *slog.Logger) *Session {
	if opts.LocateTimeout <= 0 {
		opts.LocateTimeout = defaultLocateTimeout
	}
	return &Session{
		persister: p,
		locator:   loc,
		mapView:   m,
		list:      l,
		opts:      opts,
		log:       log,
		store:     store.New(),
	}
}

// Start loads the stored workouts, draws their list entries, asks the
// locator for a position once and, if it answers, shows the map with a
// marker per workout. A location failure only disables the map.
func (s *Session) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return errors.New("session already started")
	}

	s.store = store.New(s.persister.Load(ctx)...)
	s.unsubscribe = s.store.Subscribe(s.onStoreEvent)
	s.started = true
	observability.SetWorkoutsStored(s.store.Len())

	for _, w := range s.store.All() {
		s.list.Put(s.entry(w, false))
	}

	locateCtx, cancel := context.WithTimeout(ctx, s.opts.LocateTimeout)
	defer cancel()
	center, err := s.locator.Locate(locateCtx)
	if err != nil {
		s.log.Warn("could not get position, map disabled", "error", err)
		return nil
	}
	s.mapView.Show(center, s.opts.Zoom)
	s.mapReady = true
	for _, w := range s.store.All() {
		s.mapView.AddMarker(marker(w))
	}
	s.log.Info("session started", "workouts", s.store.Len(), "lat", center.Lat(), "lng", center.Lng())
	return nil
}

// Close detaches the session from its store and clears both views. The
// stored list is left as it is.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.started {
		return nil
	}
	s.unsubscribe()
	s.mapView.Clear()
	s.list.Clear()
	s.started, s.mapReady = false, false
	s.pending, s.editing = nil, ""
	return nil
}

// MapAvailable reports whether the map was shown at start-up.
func (s *Session) MapAvailable() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mapReady
}

// OnLocationSelected remembers coords as the location for the next form
// submission.
func (s *Session) OnLocationSelected(coords workout.Coordinates) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.started {
		return ErrNotStarted
	}
	if !s.mapReady {
		return ErrMapUnavailable
	}
	s.pending = &coords
	return nil
}

// PendingLocation returns the selected location awaiting a form submission.
func (s *Session) PendingLocation() (workout.Coordinates, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pending == nil {
		return workout.Coordinates{}, false
	}
	return *s.pending, true
}

// OnFormSubmitted validates the form and records a new workout. On a
// validation error nothing changes, the pending location included.
func (s *Session) OnFormSubmitted(ctx context.Context, in FormInput) (workout.Workout, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.started {
		return workout.Workout{}, ErrNotStarted
	}

	kind, err := workout.ParseKind(in.Kind)
	if err != nil {
		observability.RecordValidationFailure()
		return workout.Workout{}, err
	}
	var coords workout.Coordinates
	switch {
	case in.Coordinates != nil:
		coords = *in.Coordinates
	case s.pending != nil:
		coords = *s.pending
	default:
		return workout.Workout{}, ErrNoLocation
	}

	w, err := workout.New(kind, workout.Input{
		Coordinates: coords,
		Distance:    parseNumber(in.Distance),
		Duration:    parseNumber(in.Duration),
		Metric:      parseNumber(in.Metric),
	})
	if err != nil {
		observability.RecordValidationFailure()
		return workout.Workout{}, err
	}

	s.store.Add(w)
	s.pending = nil
	observability.RecordWorkoutCreated(string(kind))
	s.save(ctx)
	return w, nil
}

// OnDeleteRequested removes the workout. An unknown id changes nothing and
// is not an error; removed reports which case applied.
func (s *Session) OnDeleteRequested(ctx context.Context, id string) (removed bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.started {
		return false, ErrNotStarted
	}
	if _, ok := s.store.Remove(id); !ok {
		return false, nil
	}
	s.save(ctx)
	return true, nil
}

// OnEditRequested puts the workout's entry into edit mode. Only one entry
// is edited at a time.
func (s *Session) OnEditRequested(id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.started {
		return false, ErrNotStarted
	}
	w, ok := s.store.Find(id)
	if !ok {
		return false, nil
	}
	if s.editing != "" && s.editing != id {
		s.leaveEditMode()
	}
	s.editing = id
	s.list.Put(s.entry(w, true))
	s.list.SetEditing(id, true)
	return true, nil
}

// Editing returns the id of the entry in edit mode, if any.
func (s *Session) Editing() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.editing
}

// OnEditSaved applies the edited fields and recomputes the derived metric.
// An unknown id returns ok=false and no error. A validation error leaves
// the workout and the edit mode untouched.
func (s *Session) OnEditSaved(ctx context.Context, id string, edits FieldEdits) (updated workout.Workout, ok bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.started {
		return workout.Workout{}, false, ErrNotStarted
	}
	w, found := s.store.Find(id)
	if !found {
		return workout.Workout{}, false, nil
	}

	var p workout.Patch
	if v, set := parseEdit(edits.Distance); set {
		p.Distance = &v
	}
	if v, set := parseEdit(edits.Duration); set {
		p.Duration = &v
	}
	if v, set := parseEdit(edits.Metric); set {
		p.SetMetric(w.Kind, v)
	}
	return s.update(ctx, id, p)
}

// Update applies a typed patch, as the API does for JSON edits.
func (s *Session) Update(ctx context.Context, id string, p workout.Patch) (workout.Workout, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.started {
		return workout.Workout{}, false, ErrNotStarted
	}
	return s.update(ctx, id, p)
}

func (s *Session) update(ctx context.Context, id string, p workout.Patch) (workout.Workout, bool, error) {
	updated, ok, err := s.store.Update(id, p)
	if !ok {
		return workout.Workout{}, false, nil
	}
	if err != nil {
		observability.RecordValidationFailure()
		return workout.Workout{}, true, err
	}
	if s.editing == id {
		s.editing = ""
		s.list.SetEditing(id, false)
	}
	s.save(ctx)
	return updated, true, nil
}

// OnEntrySelected centers the map on the workout at the configured zoom.
func (s *Session) OnEntrySelected(id string) (workout.Workout, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.started {
		return workout.Workout{}, false, ErrNotStarted
	}
	w, ok := s.store.Find(id)
	if !ok {
		return workout.Workout{}, false, nil
	}
	if !s.mapReady {
		return w, true, ErrMapUnavailable
	}
	s.mapView.Center(w.Coordinates, s.opts.Zoom)
	return w, true, nil
}

// Reset deletes every workout, marker and entry, and clears the slot.
func (s *Session) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.started {
		return ErrNotStarted
	}
	s.store.Reset()
	s.pending, s.editing = nil, ""
	observability.SetWorkoutsStored(0)
	if err := s.persister.Clear(ctx); err != nil {
		return fmt.Errorf("clearing slot: %w", err)
	}
	s.log.Info("session reset")
	return nil
}

// Workouts returns the workouts in creation order.
func (s *Session) Workouts() []workout.Workout {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.All()
}

// Find returns the workout with the given id.
func (s *Session) Find(id string) (workout.Workout, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.Find(id)
}

func (s *Session) onStoreEvent(e store.Event) {
	w := e.Workout
	switch e.Type {
	case store.Added:
		s.list.Put(s.entry(w, false))
		if s.mapReady {
			s.mapView.AddMarker(marker(w))
		}
	case store.Removed:
		s.list.Remove(w.ID)
		if s.mapReady {
			s.mapView.RemoveMarker(w.ID)
		}
		if s.editing == w.ID {
			s.editing = ""
		}
	case store.Updated:
		s.list.Put(s.entry(w, false))
		if s.mapReady {
			s.mapView.UpdateMarker(marker(w))
		}
	}
}

// save writes the whole list. A failed write is logged and counted but
// does not fail the command; the next save rewrites everything.
func (s *Session) save(ctx context.Context) {
	observability.SetWorkoutsStored(s.store.Len())
	if err := s.persister.Save(ctx, s.store.All()); err != nil {
		s.log.Error("saving workouts", "key", s.persister.Key(), "error", err)
	}
}

func (s *Session) leaveEditMode() {
	id := s.editing
	s.editing = ""
	if w, ok := s.store.Find(id); ok {
		s.list.Put(s.entry(w, false))
	}
	s.list.SetEditing(id, false)
}

func (s *Session) entry(w workout.Workout, editing bool) Entry {
	html, err := render.Entry(w, editing)
	if err != nil {
		s.log.Error("rendering entry", "id", w.ID, "error", err)
	}
	return Entry{ID: w.ID, Kind: w.Kind, Label: w.Label, HTML: html, Editing: editing}
}

func marker(w workout.Workout) Marker {
	return Marker{
		ID:          w.ID,
		Kind:        w.Kind,
		Coordinates: w.Coordinates,
		Popup:       render.PopupContent(w),
		PopupClass:  render.PopupClass(w.Kind),
	}
}

// parseNumber reads a form field: blank is 0, junk is NaN.
func parseNumber(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return math.NaN()
	}
	return v
}

// parseEdit reads an edited field; set is false for a blank field.
func parseEdit(s string) (v float64, set bool) {
	if strings.TrimSpace(s) == "" {
		return 0, false
	}
	return parseNumber(s), true
}
