package workout

import (
	"errors"
	"fmt"
	"math"
)

// ErrValidation is matched by every *ValidationError.
var ErrValidation = errors.New("invalid workout input")

// ValidationError reports a numeric input that failed the finite/positive check.
type ValidationError struct {
	Field  string
	Value  float64
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("%s: must be a positive number, got %v", e.Field, e.Value)
}

// Is makes errors.Is(err, ErrValidation) true.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// Elevation gain may be negative or zero; every other metric must be positive.
func validate(kind Kind, distance, duration, metric float64) error {
	if err := positive("distance", distance); err != nil {
		return err
	}
	if err := positive("duration", duration); err != nil {
		return err
	}
	switch kind {
	case Running:
		return positive("cadence", metric)
	case Cycling:
		return finite("elevationGain", metric)
	}
	return &ValidationError{Field: "kind", Reason: fmt.Sprintf("unknown workout kind %q", kind)}
}

func finite(field string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return &ValidationError{Field: field, Value: v, Reason: fmt.Sprintf("must be a finite number, got %v", v)}
	}
	return nil
}

func positive(field string, v float64) error {
	if err := finite(field, v); err != nil {
		return err
	}
	if v <= 0 {
		return &ValidationError{Field: field, Value: v}
	}
	return nil
}

// checkDerived rejects numbers that validate individually but overflow the
// pace or speed computed from them.
func checkDerived(w Workout) error {
	field := "pace"
	if w.Kind == Cycling {
		field = "speed"
	}
	if v := w.Derived(); math.IsNaN(v) || math.IsInf(v, 0) {
		return &ValidationError{Field: field, Value: v, Reason: fmt.Sprintf("distance %v over %v minutes gives %s %v", w.Distance, w.Duration, field, v)}
	}
	return nil
}
