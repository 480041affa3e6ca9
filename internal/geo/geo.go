// Package geo resolves the user's starting position for the map view.
package geo

import (
	"context"
	"errors"

	"github.com/claude/trailmark/internal/config"
	"github.com/claude/trailmark/internal/workout"
)

// ErrLocationUnavailable is returned when no position can be determined.
var ErrLocationUnavailable = errors.New("location unavailable")

// Locator answers a single position request.
type Locator interface {
	Locate(ctx context.Context) (workout.Coordinates, error)
}

// StaticLocator always reports the same configured position.
type StaticLocator struct {
	Position workout.Coordinates
}

func (l StaticLocator) Locate(ctx context.Context) (workout.Coordinates, error) {
	if err := ctx.Err(); err != nil {
		return workout.Coordinates{}, err
	}
	return l.Position, nil
}

// Unavailable is a Locator that always fails, as when the user denies
// location access.
type Unavailable struct{}

func (Unavailable) Locate(context.Context) (workout.Coordinates, error) {
	return workout.Coordinates{}, ErrLocationUnavailable
}

// FromConfig returns a StaticLocator for the configured home point, or
// Unavailable when none is set.
func FromConfig(cfg config.MapConfig) Locator {
	if cfg.Home == nil {
		return Unavailable{}
	}
	return StaticLocator{Position: workout.Coordinates{cfg.Home.Latitude, cfg.Home.Longitude}}
}
