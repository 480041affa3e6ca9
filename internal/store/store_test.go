package store

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/claude/trailmark/internal/workout"
)

var at = time.Date(2024, time.April, 14, 9, 0, 0, 0, time.UTC)

func running(t *testing.T, id string, distance, duration float64) workout.Workout {
	t.Helper()
	w, err := workout.New(workout.Running, workout.Input{
		ID: id, Coordinates: workout.Coordinates{45, -122}, Distance: distance, Duration: duration, Metric: 180, CreatedAt: at,
	})
	if err != nil {
		t.Fatal(err)
	}
	return w
}

func cycling(t *testing.T, id string, distance, duration float64) workout.Workout {
	t.Helper()
	w, err := workout.New(workout.Cycling, workout.Input{
		ID: id, Coordinates: workout.Coordinates{45, -122}, Distance: distance, Duration: duration, Metric: 300, CreatedAt: at,
	})
	if err != nil {
		t.Fatal(err)
	}
	return w
}

func ids(ws []workout.Workout) []string {
	out := make([]string, len(ws))
	for i, w := range ws {
		out[i] = w.ID
	}
	return out
}

func ptr(v float64) *float64 { return &v }

// TestAddFind verifies a found workout equals the one added in every field.
func TestAddFind(t *testing.T) {
	s := New()
	w := running(t, "a", 5, 30)
	s.Add(w)

	got, ok := s.Find("a")
	if !ok {
		t.Fatal("Find(a) not found")
	}
	if got != w {
		t.Errorf("Find(a) = %+v, want %+v", got, w)
	}
	if _, ok := s.Find("missing"); ok {
		t.Error("Find(missing) should report not found")
	}
}

// TestRemovePreservesOrder verifies removal shrinks the store by one and keeps
// the order of the survivors.
func TestRemovePreservesOrder(t *testing.T) {
	s := New(running(t, "a", 1, 5), cycling(t, "b", 10, 30), running(t, "c", 2, 12), cycling(t, "d", 5, 20))

	removed, ok := s.Remove("b")
	if !ok || removed.ID != "b" {
		t.Fatalf("Remove(b) = %v, %v", removed.ID, ok)
	}
	if s.Len() != 3 {
		t.Errorf("len = %d, want 3", s.Len())
	}
	if _, ok := s.Find("b"); ok {
		t.Error("b still present after removal")
	}
	if got, want := ids(s.All()), []string{"a", "c", "d"}; !reflect.DeepEqual(got, want) {
		t.Errorf("order = %v, want %v", got, want)
	}
}

// TestRemoveUnknownIsNoop verifies the permissive not-found behaviour.
func TestRemoveUnknownIsNoop(t *testing.T) {
	s := New(running(t, "a", 1, 5), cycling(t, "b", 10, 30))
	before := s.All()
	events := 0
	s.Subscribe(func(Event) { events++ })

	if _, ok := s.Remove("nope"); ok {
		t.Error("Remove(nope) reported success")
	}
	if !reflect.DeepEqual(s.All(), before) {
		t.Errorf("store changed: %v", ids(s.All()))
	}
	if events != 0 {
		t.Errorf("events = %d, want 0", events)
	}
}

// TestUpdateRecomputes verifies distance edits refresh pace and speed.
func TestUpdateRecomputes(t *testing.T) {
	s := New(running(t, "r", 5, 30), cycling(t, "c", 20, 60))

	r, ok, err := s.Update("r", workout.Patch{Distance: ptr(10)})
	if err != nil || !ok {
		t.Fatalf("Update(r) = %v, %v", ok, err)
	}
	if r.Pace != 30.0/10 {
		t.Errorf("pace = %v, want 3", r.Pace)
	}

	c, ok, err := s.Update("c", workout.Patch{Distance: ptr(40)})
	if err != nil || !ok {
		t.Fatalf("Update(c) = %v, %v", ok, err)
	}
	if c.Speed != 40/(60.0/60) {
		t.Errorf("speed = %v, want 40", c.Speed)
	}

	stored, _ := s.Find("c")
	if stored != c {
		t.Errorf("stored = %+v, want %+v", stored, c)
	}
}

// TestUpdateUnknownAndInvalid verifies not-found is silent and invalid patches
// leave the store as it was.
func TestUpdateUnknownAndInvalid(t *testing.T) {
	s := New(running(t, "r", 5, 30))
	before := s.All()

	if _, ok, err := s.Update("nope", workout.Patch{Distance: ptr(1)}); ok || err != nil {
		t.Errorf("Update(nope) = %v, %v; want false, nil", ok, err)
	}
	if _, _, err := s.Update("r", workout.Patch{Duration: ptr(-3)}); !errors.Is(err, workout.ErrValidation) {
		t.Errorf("Update(r, -3) error = %v, want ErrValidation", err)
	}
	if !reflect.DeepEqual(s.All(), before) {
		t.Error("store changed after rejected update")
	}
}

// TestAllIsACopy verifies callers cannot mutate the store through All.
func TestAllIsACopy(t *testing.T) {
	s := New(running(t, "a", 1, 5))
	all := s.All()
	all[0].Distance = 99
	if w, _ := s.Find("a"); w.Distance != 1 {
		t.Errorf("distance = %v, want 1", w.Distance)
	}
}

// TestAddAllowsDuplicateIDs verifies no duplicate-id check is performed.
func TestAddAllowsDuplicateIDs(t *testing.T) {
	s := New()
	s.Add(running(t, "dup", 1, 5))
	s.Add(running(t, "dup", 2, 5))
	if s.Len() != 2 {
		t.Fatalf("len = %d, want 2", s.Len())
	}
	s.Remove("dup")
	w, ok := s.Find("dup")
	if !ok || w.Distance != 2 {
		t.Errorf("after removing first dup: %+v, %v", w, ok)
	}
}

// TestEvents verifies subscribers see added, updated and removed workouts, and
// stop receiving after unsubscribing.
func TestEvents(t *testing.T) {
	s := New()
	var got []string
	unsubscribe := s.Subscribe(func(e Event) {
		got = append(got, e.Type.String()+":"+e.Workout.ID)
	})

	s.Add(running(t, "a", 1, 5))
	s.Update("a", workout.Patch{Duration: ptr(6)})
	s.Add(cycling(t, "b", 10, 30))
	s.Remove("a")
	s.Reset()
	unsubscribe()
	s.Add(running(t, "c", 1, 5))

	want := []string{"added:a", "updated:a", "added:b", "removed:a", "removed:b"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("events = %v, want %v", got, want)
	}
	if s.Len() != 1 {
		t.Errorf("len = %d, want 1", s.Len())
	}
}
