package workout

import (
	"fmt"
	"time"
)

// Record is the serialized form of a workout, as stored in the durable slot
// and returned by the API. Variant fields are omitted for the other kind.
type Record struct {
	ID            string      `json:"id"`
	Coordinates   Coordinates `json:"coordinates"`
	Distance      float64     `json:"distance"`
	Duration      float64     `json:"duration"`
	CreatedAt     time.Time   `json:"createdAt"`
	Kind          Kind        `json:"kind"`
	Label         string      `json:"label"`
	Cadence       *float64    `json:"cadence,omitempty"`
	ElevationGain *float64    `json:"elevationGain,omitempty"`
	Pace          *float64    `json:"pace,omitempty"`
	Speed         *float64    `json:"speed,omitempty"`
}

// Record converts w to its serialized form.
func (w Workout) Record() Record {
	r := Record{
		ID:          w.ID,
		Coordinates: w.Coordinates,
		Distance:    w.Distance,
		Duration:    w.Duration,
		CreatedAt:   w.CreatedAt,
		Kind:        w.Kind,
		Label:       w.Label,
	}
	switch w.Kind {
	case Running:
		cadence, pace := w.Cadence, w.Pace
		r.Cadence, r.Pace = &cadence, &pace
	case Cycling:
		elevation, speed := w.ElevationGain, w.Speed
		r.ElevationGain, r.Speed = &elevation, &speed
	}
	return r
}

// FromRecord rebuilds the workout variant named by r.Kind. The numbers are
// validated again and the derived field is recomputed, so a reloaded workout
// behaves exactly like a freshly created one.
func FromRecord(r Record) (Workout, error) {
	kind, err := ParseKind(string(r.Kind))
	if err != nil {
		return Workout{}, err
	}
	if r.ID == "" {
		return Workout{}, &ValidationError{Field: "id", Reason: "missing"}
	}

	var metric float64
	switch kind {
	case Running:
		if r.Cadence == nil {
			return Workout{}, &ValidationError{Field: "cadence", Reason: "missing"}
		}
		metric = *r.Cadence
	case Cycling:
		if r.ElevationGain == nil {
			return Workout{}, &ValidationError{Field: "elevationGain", Reason: "missing"}
		}
		metric = *r.ElevationGain
	}
	if err := validate(kind, r.Distance, r.Duration, metric); err != nil {
		return Workout{}, fmt.Errorf("workout %s: %w", r.ID, err)
	}

	w := Workout{
		ID:          r.ID,
		Kind:        kind,
		Coordinates: r.Coordinates,
		Distance:    r.Distance,
		Duration:    r.Duration,
		CreatedAt:   r.CreatedAt,
		Label:       r.Label,
	}
	if w.Label == "" {
		w.Label = LabelFor(kind, r.CreatedAt)
	}
	if kind == Running {
		w.Cadence = metric
	} else {
		w.ElevationGain = metric
	}
	Recompute(&w)
	if err := checkDerived(w); err != nil {
		return Workout{}, fmt.Errorf("workout %s: %w", r.ID, err)
	}
	return w, nil
}

// Records converts a slice of workouts.
func Records(ws []Workout) []Record {
	out := make([]Record, len(ws))
	for i, w := range ws {
		out[i] = w.Record()
	}
	return out
}
