// Package store holds the ordered in-memory collection of workouts for a
// session and notifies subscribers when it changes.
package store

import "github.com/claude/trailmark/internal/workout"

// EventType names a store change.
type EventType int

const (
	Added EventType = iota + 1
	Removed
	Updated
)

func (t EventType) String() string {
	switch t {
	case Added:
		return "added"
	case Removed:
		return "removed"
	case Updated:
		return "updated"
	}
	return "unknown"
}

// Event carries the affected workout. For Removed it is the workout as it was
// when removed.
type Event struct {
	Type    EventType
	Workout workout.Workout
}

// Store is an insertion-ordered list of workouts. It is not safe for
// concurrent use; callers serialize access.
type Store struct {
	workouts    []workout.Workout
	subscribers map[int]func(Event)
	nextSub     int
}

// New creates a store holding initial in order.
func New(initial ...workout.Workout) *Store {
	s := &Store{subscribers: map[int]func(Event){}}
	s.workouts = append(s.workouts, initial...)
	return s
}

// Subscribe registers fn for every subsequent change. The returned function
// removes the subscription.
func (s *Store) Subscribe(fn func(Event)) (unsubscribe func()) {
	id := s.nextSub
	s.nextSub++
	s.subscribers[id] = fn
	return func() { delete(s.subscribers, id) }
}

// Add appends w. Ids are not checked for duplicates.
func (s *Store) Add(w workout.Workout) {
	s.workouts = append(s.workouts, w)
	s.emit(Event{Type: Added, Workout: w})
}

// Find returns the workout with the given id.
func (s *Store) Find(id string) (workout.Workout, bool) {
	if i := s.index(id); i >= 0 {
		return s.workouts[i], true
	}
	return workout.Workout{}, false
}

// Remove deletes the first workout with the given id, keeping the order of
// the rest. An unknown id is a no-op.
func (s *Store) Remove(id string) (workout.Workout, bool) {
	i := s.index(id)
	if i < 0 {
		return workout.Workout{}, false
	}
	removed := s.workouts[i]
	s.workouts = append(s.workouts[:i], s.workouts[i+1:]...)
	s.emit(Event{Type: Removed, Workout: removed})
	return removed, true
}

// Update applies p to the workout with the given id and recomputes its
// derived field. An unknown id returns ok=false and no error; an invalid patch
// returns a validation error and changes nothing.
func (s *Store) Update(id string, p workout.Patch) (updated workout.Workout, ok bool, err error) {
	i := s.index(id)
	if i < 0 {
		return workout.Workout{}, false, nil
	}
	w := s.workouts[i]
	if err := w.Apply(p); err != nil {
		return workout.Workout{}, true, err
	}
	s.workouts[i] = w
	s.emit(Event{Type: Updated, Workout: w})
	return w, true, nil
}

// All returns a copy of the workouts in insertion order.
func (s *Store) All() []workout.Workout {
	out := make([]workout.Workout, len(s.workouts))
	copy(out, s.workouts)
	return out
}

// Len returns the number of workouts.
func (s *Store) Len() int {
	return len(s.workouts)
}

// Reset removes every workout, emitting Removed for each.
func (s *Store) Reset() {
	old := s.workouts
	s.workouts = nil
	for _, w := range old {
		s.emit(Event{Type: Removed, Workout: w})
	}
}

func (s *Store) index(id string) int {
	for i, w := range s.workouts {
		if w.ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) emit(e Event) {
	for _, fn := range s.subscribers {
		fn(e)
	}
}
