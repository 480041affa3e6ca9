package workout

import "fmt"

// Patch is a partial edit. Nil fields are left unchanged.
type Patch struct {
	Distance      *float64 `json:"distance,omitempty"`
	Duration      *float64 `json:"duration,omitempty"`
	Cadence       *float64 `json:"cadence,omitempty"`
	ElevationGain *float64 `json:"elevationGain,omitempty"`
}

// Empty reports whether the patch changes nothing.
func (p Patch) Empty() bool {
	return p.Distance == nil && p.Duration == nil && p.Cadence == nil && p.ElevationGain == nil
}

// Apply validates the whole patch against w and, only if it is valid, applies
// it and recomputes the derived field.
func (w *Workout) Apply(p Patch) error {
	next := *w
	if p.Distance != nil {
		next.Distance = *p.Distance
	}
	if p.Duration != nil {
		next.Duration = *p.Duration
	}
	switch {
	case p.Cadence != nil && w.Kind != Running:
		return &ValidationError{Field: "cadence", Reason: fmt.Sprintf("not a %s metric", w.Kind)}
	case p.ElevationGain != nil && w.Kind != Cycling:
		return &ValidationError{Field: "elevationGain", Reason: fmt.Sprintf("not a %s metric", w.Kind)}
	}
	if p.Cadence != nil {
		next.Cadence = *p.Cadence
	}
	if p.ElevationGain != nil {
		next.ElevationGain = *p.ElevationGain
	}

	if err := validate(next.Kind, next.Distance, next.Duration, next.Metric()); err != nil {
		return err
	}
	Recompute(&next)
	if err := checkDerived(next); err != nil {
		return err
	}
	*w = next
	return nil
}

// SetMetric sets cadence for running and elevation gain for cycling.
func (p *Patch) SetMetric(kind Kind, v float64) {
	if kind == Running {
		p.Cadence = &v
		return
	}
	p.ElevationGain = &v
}
