// Package importer moves workout lists in and out of the durable slot. It
// reads the slot's own JSON shape as well as the list a browser build of
// the tracker kept in local storage.
package importer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/claude/trailmark/internal/storage"
	"github.com/claude/trailmark/internal/workout"
)

// Stats tracks import progress.
type Stats struct {
	FilesProcessed int
	RecordsRead    int
	Imported       int
	Duplicated     int
	Skipped        int

	SkipReasons []string
}

// Importer appends workouts from dump files to the slot. It rewrites the
// slot directly, so the server should not be running against the same slot.
type Importer struct {
	persister *storage.Persister
	log       *slog.Logger
	dryRun    bool
	stats     Stats
}

// New creates a new Importer.
func New(p *storage.Persister, log *slog.Logger, dryRun bool) *Importer {
	return &Importer{persister: p, log: log, dryRun: dryRun}
}

// Import reads each file and appends the workouts whose ids are not stored
// yet, keeping file order. The slot is written once, at the end.
func (imp *Importer) Import(ctx context.Context, paths ...string) (*Stats, error) {
	existing, skipped, err := imp.persister.Read(ctx)
	if err != nil && !errors.Is(err, storage.ErrSlotEmpty) {
		return &imp.stats, fmt.Errorf("reading current workouts: %w", err)
	}
	for _, s := range skipped {
		imp.log.Warn("stored workout cannot be rebuilt and will be dropped", "error", s)
	}

	seen := make(map[string]bool, len(existing))
	for _, w := range existing {
		seen[w.ID] = true
	}

	merged := existing
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return &imp.stats, fmt.Errorf("reading %s: %w", path, err)
		}
		elements, err := ParseDump(data)
		if err != nil {
			return &imp.stats, fmt.Errorf("parsing %s: %w", path, err)
		}
		imp.stats.FilesProcessed++

		for i, e := range elements {
			imp.stats.RecordsRead++
			err := e.Err
			var w workout.Workout
			if err == nil {
				w, err = workout.FromRecord(e.Record)
			}
			if err != nil {
				imp.stats.Skipped++
				reason := fmt.Sprintf("%s record %d: %v", path, i, err)
				imp.stats.SkipReasons = append(imp.stats.SkipReasons, reason)
				imp.log.Warn("skipping record", "file", path, "index", i, "error", err)
				continue
			}
			if seen[w.ID] {
				imp.stats.Duplicated++
				continue
			}
			seen[w.ID] = true
			merged = append(merged, w)
			imp.stats.Imported++
		}
	}

	if imp.dryRun || imp.stats.Imported == 0 {
		return &imp.stats, nil
	}
	if err := imp.persister.Save(ctx, merged); err != nil {
		return &imp.stats, fmt.Errorf("saving workouts: %w", err)
	}
	return &imp.stats, nil
}

// Export writes the stored list to w as indented JSON in the slot's shape
// and returns how many workouts were written.
func Export(ctx context.Context, p *storage.Persister, w io.Writer) (int, error) {
	workouts, _, err := p.Read(ctx)
	if err != nil && !errors.Is(err, storage.ErrSlotEmpty) {
		return 0, fmt.Errorf("reading workouts: %w", err)
	}
	records := workout.Records(workouts)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(records); err != nil {
		return 0, fmt.Errorf("writing export: %w", err)
	}
	return len(records), nil
}

// legacyNumber decodes a JSON number or a numeric string. The browser build
// stored edited fields as the text of the entry, so "6" and 6 both occur.
type legacyNumber float64

func (n *legacyNumber) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return fmt.Errorf("%q is not a number", s)
		}
		*n = legacyNumber(v)
		return nil
	}
	var v float64
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	*n = legacyNumber(v)
	return nil
}

func (n *legacyNumber) ptr() *float64 {
	if n == nil {
		return nil
	}
	v := float64(*n)
	return &v
}

// legacyRecord is the shape the browser build stored: "coords" instead of
// "coordinates", "type" instead of "kind", "date" and "description" for
// the creation time and label.
type legacyRecord struct {
	ID            string              `json:"id"`
	Coords        workout.Coordinates `json:"coords"`
	Distance      legacyNumber        `json:"distance"`
	Duration      legacyNumber        `json:"duration"`
	Date          time.Time           `json:"date"`
	Type          string              `json:"type"`
	Description   string              `json:"description"`
	Cadence       *legacyNumber       `json:"cadence"`
	ElevationGain *legacyNumber       `json:"elevationGain"`
}

func (l legacyRecord) record() workout.Record {
	return workout.Record{
		ID:            l.ID,
		Coordinates:   l.Coords,
		Distance:      float64(l.Distance),
		Duration:      float64(l.Duration),
		CreatedAt:     l.Date,
		Kind:          workout.Kind(l.Type),
		Label:         l.Description,
		Cadence:       l.Cadence.ptr(),
		ElevationGain: l.ElevationGain.ptr(),
	}
}

// Element is one decoded entry of a dump. Err is set when the entry could
// not be decoded; the rest of the dump is still usable.
type Element struct {
	Record workout.Record
	Err    error
}

// ParseDump decodes a JSON array of workouts. Each element may be in the
// slot's shape or the legacy browser shape; an element is legacy when it has
// a "type" and no "kind". Derived fields in the input are ignored. Only a
// dump that is not a JSON array is an error.
func ParseDump(data []byte) ([]Element, error) {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("expected a JSON array of workouts: %w", err)
	}

	elements := make([]Element, len(raw))
	for i, elem := range raw {
		r, err := parseElement(elem)
		if err != nil {
			elements[i].Err = err
			continue
		}
		elements[i].Record = r
	}
	return elements, nil
}

func parseElement(elem json.RawMessage) (workout.Record, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(elem, &fields); err != nil {
		return workout.Record{}, err
	}
	_, hasKind := fields["kind"]
	_, hasType := fields["type"]
	if hasType && !hasKind {
		var l legacyRecord
		if err := json.Unmarshal(elem, &l); err != nil {
			return workout.Record{}, err
		}
		return l.record(), nil
	}
	var r workout.Record
	if err := json.Unmarshal(elem, &r); err != nil {
		return workout.Record{}, err
	}
	return r, nil
}
