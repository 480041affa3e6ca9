package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/claude/trailmark/internal/observability"
	"github.com/claude/trailmark/internal/workout"
)

var errMalformed = errors.New("malformed workout list")

// Persister saves and loads the whole workout list under one slot key.
type Persister struct {
	slot Slot
	key  string
	log  *slog.Logger
}

// NewPersister creates a Persister writing to key in slot.
func NewPersister(slot Slot, key string, log *slog.Logger) *Persister {
	return &Persister{slot: slot, key: key, log: log}
}

// Key returns the slot key.
func (p *Persister) Key() string {
	return p.key
}

// Save serializes every workout, derived fields included, and overwrites the slot.
func (p *Persister) Save(ctx context.Context, workouts []workout.Workout) error {
	data, err := Encode(workouts)
	if err != nil {
		observability.RecordSave(err)
		return err
	}
	err = p.slot.Write(ctx, p.key, data)
	observability.RecordSave(err)
	return err
}

// Load reads the slot. It never fails: a missing, unreadable or malformed
// value yields an empty list, and records that cannot be rebuilt are skipped.
func (p *Persister) Load(ctx context.Context) []workout.Workout {
	workouts, skipped, err := p.Read(ctx)
	switch {
	case errors.Is(err, ErrSlotEmpty):
		observability.RecordLoad(observability.LoadEmpty)
		return nil
	case errors.Is(err, errMalformed):
		p.log.Warn("slot value malformed, starting empty", "key", p.key, "error", err)
		observability.RecordLoad(observability.LoadMalformed)
		return nil
	case err != nil:
		p.log.Warn("slot read failed, starting empty", "key", p.key, "error", err)
		observability.RecordLoad(observability.LoadError)
		return nil
	}
	for _, s := range skipped {
		p.log.Warn("skipping stored workout", "key", p.key, "error", s)
	}
	observability.RecordSkipped(len(skipped))
	observability.RecordLoad(observability.LoadOK)
	return workouts
}

// Read is the strict form of Load for tools that rewrite the slot: an
// absent slot is ErrSlotEmpty and a malformed one is an error, so callers
// never overwrite data they could not read.
func (p *Persister) Read(ctx context.Context) (workouts []workout.Workout, skipped []error, err error) {
	data, err := p.slot.Read(ctx, p.key)
	if err != nil {
		return nil, nil, err
	}
	return Decode(data)
}

// Clear deletes the slot.
func (p *Persister) Clear(ctx context.Context) error {
	return p.slot.Delete(ctx, p.key)
}

// Encode renders workouts as the slot's JSON array.
func Encode(workouts []workout.Workout) ([]byte, error) {
	data, err := json.Marshal(workout.Records(workouts))
	if err != nil {
		return nil, fmt.Errorf("encoding workouts: %w", err)
	}
	return data, nil
}

// Decode parses the slot's JSON array. A value that is not an array of
// records is an error; individual records that fail reconstruction are
// returned in skipped. A JSON null decodes to an empty list.
func Decode(data []byte) (workouts []workout.Workout, skipped []error, err error) {
	var records []workout.Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, nil, fmt.Errorf("%w: %w", errMalformed, err)
	}
	for i, r := range records {
		w, err := workout.FromRecord(r)
		if err != nil {
			skipped = append(skipped, fmt.Errorf("record %d: %w", i, err))
			continue
		}
		workouts = append(workouts, w)
	}
	return workouts, skipped, nil
}
