package workout

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"
)

// TestRecordJSONShape verifies the slot format: coordinates as an array and
// only the variant's own fields present.
func TestRecordJSONShape(t *testing.T) {
	at := time.Date(2024, time.April, 14, 8, 30, 0, 0, time.UTC)
	w, err := New(Running, Input{ID: "r1", Coordinates: testCoords, Distance: 5, Duration: 30, Metric: 180, CreatedAt: at})
	if err != nil {
		t.Fatal(err)
	}

	data, err := json.Marshal(w.Record())
	if err != nil {
		t.Fatal(err)
	}
	got := string(data)
	for _, want := range []string{`"coordinates":[45,-122]`, `"kind":"running"`, `"cadence":180`, `"pace":6`, `"label":"Running on April 14"`} {
		if !strings.Contains(got, want) {
			t.Errorf("record JSON %s missing %s", got, want)
		}
	}
	for _, unwanted := range []string{"elevationGain", "speed"} {
		if strings.Contains(got, unwanted) {
			t.Errorf("record JSON %s should not contain %s", got, unwanted)
		}
	}
}

// TestFromRecordRestoresVariant verifies a decoded record regains its kind
// behaviour and can be edited with the derived field recomputed.
func TestFromRecordRestoresVariant(t *testing.T) {
	orig, _ := NewCycling(testCoords, 20, 60, 300)
	data, _ := json.Marshal(orig.Record())

	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		t.Fatal(err)
	}
	w, err := FromRecord(rec)
	if err != nil {
		t.Fatalf("FromRecord: %v", err)
	}
	if w.Kind != Cycling || w.Speed != 20 || w.ElevationGain != 300 || w.Label != orig.Label {
		t.Errorf("restored = %+v", w)
	}
	if !w.CreatedAt.Equal(orig.CreatedAt) {
		t.Errorf("createdAt = %v, want %v", w.CreatedAt, orig.CreatedAt)
	}

	if err := w.Apply(Patch{Duration: ptr(30)}); err != nil {
		t.Fatal(err)
	}
	if w.Speed != 40 {
		t.Errorf("speed after edit = %v, want 40", w.Speed)
	}
}

// TestFromRecordRejects verifies records that cannot be reconstructed are refused.
func TestFromRecordRejects(t *testing.T) {
	tests := []struct {
		name string
		rec  Record
	}{
		{"unknown kind", Record{ID: "x", Kind: "rowing", Distance: 1, Duration: 1}},
		{"missing id", Record{Kind: Running, Distance: 1, Duration: 1, Cadence: ptr(1)}},
		{"missing cadence", Record{ID: "x", Kind: Running, Distance: 1, Duration: 1}},
		{"missing elevation", Record{ID: "x", Kind: Cycling, Distance: 1, Duration: 1}},
		{"zero distance", Record{ID: "x", Kind: Running, Distance: 0, Duration: 1, Cadence: ptr(1)}},
		{"infinite speed", Record{ID: "x", Kind: Cycling, Distance: 1e308, Duration: 1, ElevationGain: ptr(0)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := FromRecord(tt.rec); !errors.Is(err, ErrValidation) {
				t.Errorf("FromRecord error = %v, want ErrValidation", err)
			}
		})
	}
}

// TestFromRecordFillsLabel verifies a missing label is derived from createdAt.
func TestFromRecordFillsLabel(t *testing.T) {
	at := time.Date(2024, time.June, 3, 0, 0, 0, 0, time.UTC)
	w, err := FromRecord(Record{ID: "x", Kind: Cycling, Distance: 1, Duration: 1, ElevationGain: ptr(0), CreatedAt: at})
	if err != nil {
		t.Fatal(err)
	}
	if w.Label != "Cycling on June 3" {
		t.Errorf("label = %q", w.Label)
	}
}
