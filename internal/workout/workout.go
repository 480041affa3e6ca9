// Package workout defines the workout record: a tagged union of running and
// cycling entries with one derived metric each.
package workout

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Kind discriminates the workout variants.
type Kind string

const (
	Running Kind = "running"
	Cycling Kind = "cycling"
)

// ParseKind accepts "running" or "cycling" in any casing.
func ParseKind(s string) (Kind, error) {
	switch Kind(strings.ToLower(strings.TrimSpace(s))) {
	case Running:
		return Running, nil
	case Cycling:
		return Cycling, nil
	}
	return "", &ValidationError{Field: "kind", Reason: fmt.Sprintf("unknown workout kind %q", s)}
}

// Title returns the capitalized kind, e.g. "Running".
func (k Kind) Title() string {
	if k == "" {
		return ""
	}
	return strings.ToUpper(string(k[:1])) + string(k[1:])
}

// Coordinates is a [latitude, longitude] pair. It serializes as a JSON array.
type Coordinates [2]float64

// Lat returns the latitude.
func (c Coordinates) Lat() float64 { return c[0] }

// Lng returns the longitude.
func (c Coordinates) Lng() float64 { return c[1] }

// Workout is a single tracked entry. ID, Coordinates, CreatedAt, Kind and
// Label never change after construction; Pace and Speed always match the
// current Distance and Duration.
type Workout struct {
	ID          string
	Kind        Kind
	Coordinates Coordinates
	Distance    float64 // km
	Duration    float64 // minutes
	CreatedAt   time.Time
	Label       string

	// Running only.
	Cadence float64 // steps/min
	Pace    float64 // min/km

	// Cycling only.
	ElevationGain float64 // m
	Speed         float64 // km/h
}

// Input carries the constructor arguments. Metric is the cadence for running
// and the elevation gain for cycling. ID and CreatedAt are generated when left
// empty.
type Input struct {
	ID          string
	Coordinates Coordinates
	Distance    float64
	Duration    float64
	Metric      float64
	CreatedAt   time.Time
}

// NewRunning creates a running workout. Distance, duration and cadence must
// all be finite and positive.
func NewRunning(coords Coordinates, distance, duration, cadence float64) (Workout, error) {
	return New(Running, Input{Coordinates: coords, Distance: distance, Duration: duration, Metric: cadence})
}

// NewCycling creates a cycling workout. Distance and duration must be finite
// and positive; elevation gain only has to be finite.
func NewCycling(coords Coordinates, distance, duration, elevationGain float64) (Workout, error) {
	return New(Cycling, Input{Coordinates: coords, Distance: distance, Duration: duration, Metric: elevationGain})
}

// New validates in and builds a workout of the given kind.
func New(kind Kind, in Input) (Workout, error) {
	if err := validate(kind, in.Distance, in.Duration, in.Metric); err != nil {
		return Workout{}, err
	}

	id := in.ID
	if id == "" {
		id = newID()
	}
	createdAt := in.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	w := Workout{
		ID:          id,
		Kind:        kind,
		Coordinates: in.Coordinates,
		Distance:    in.Distance,
		Duration:    in.Duration,
		CreatedAt:   createdAt,
		Label:       LabelFor(kind, createdAt),
	}
	if kind == Running {
		w.Cadence = in.Metric
	} else {
		w.ElevationGain = in.Metric
	}
	Recompute(&w)
	if err := checkDerived(w); err != nil {
		return Workout{}, err
	}
	return w, nil
}

// Recompute refreshes the derived field of w from its distance and duration.
func Recompute(w *Workout) {
	switch w.Kind {
	case Running:
		w.Pace = w.Duration / w.Distance
	case Cycling:
		w.Speed = w.Distance / (w.Duration / 60)
	}
}

// LabelFor formats the display label, e.g. "Cycling on April 14".
func LabelFor(kind Kind, createdAt time.Time) string {
	return fmt.Sprintf("%s on %s %d", kind.Title(), createdAt.Month(), createdAt.Day())
}

// Metric returns the kind-specific metric: cadence or elevation gain.
func (w Workout) Metric() float64 {
	if w.Kind == Running {
		return w.Cadence
	}
	return w.ElevationGain
}

// Derived returns pace for running and speed for cycling.
func (w Workout) Derived() float64 {
	if w.Kind == Running {
		return w.Pace
	}
	return w.Speed
}

// newID returns a UUIDv7: time-ordered like the timestamp ids of the browser
// app, without their same-millisecond collisions.
func newID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}
