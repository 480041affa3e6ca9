package tracker

import (
	"slices"
	"sync"

	"github.com/claude/trailmark/internal/workout"
)

// Marker is a map pin for one workout.
type Marker struct {
	ID          string              `json:"id"`
	Kind        workout.Kind        `json:"kind"`
	Coordinates workout.Coordinates `json:"coordinates"`
	Popup       string              `json:"popup"`
	PopupClass  string              `json:"popupClass"`
}

// Entry is a rendered list item for one workout.
type Entry struct {
	ID      string       `json:"id"`
	Kind    workout.Kind `json:"kind"`
	Label   string       `json:"label"`
	HTML    string       `json:"html"`
	Editing bool         `json:"editing"`
}

// MapView is the map rendering collaborator.
type MapView interface {
	Show(center workout.Coordinates, zoom int)
	AddMarker(m Marker)
	RemoveMarker(id string)
	UpdateMarker(m Marker)
	Center(coords workout.Coordinates, zoom int)
	Clear()
}

// ListView is the workout list collaborator.
type ListView interface {
	Put(e Entry)
	Remove(id string)
	SetEditing(id string, editing bool)
	Clear()
}

// MapSnapshot is what the map currently shows.
type MapSnapshot struct {
	Available bool                `json:"available"`
	Center    workout.Coordinates `json:"center"`
	Zoom      int                 `json:"zoom"`
	Markers   []Marker            `json:"markers"`
}

// MapState is an in-memory MapView. It is safe for concurrent readers.
type MapState struct {
	mu      sync.RWMutex
	shown   bool
	center  workout.Coordinates
	zoom    int
	markers []Marker
}

// NewMapState returns a map that has not been shown yet.
func NewMapState() *MapState {
	return &MapState{}
}

func (m *MapState) Show(center workout.Coordinates, zoom int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.shown, m.center, m.zoom = true, center, zoom
}

func (m *MapState) AddMarker(mk Marker) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if i := m.index(mk.ID); i >= 0 {
		m.markers[i] = mk
		return
	}
	m.markers = append(m.markers, mk)
}

func (m *MapState) RemoveMarker(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if i := m.index(id); i >= 0 {
		m.markers = slices.Delete(m.markers, i, i+1)
	}
}

func (m *MapState) UpdateMarker(mk Marker) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if i := m.index(mk.ID); i >= 0 {
		m.markers[i] = mk
	}
}

func (m *MapState) Center(coords workout.Coordinates, zoom int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.center, m.zoom = coords, zoom
}

// Clear removes every marker and hides the map.
func (m *MapState) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.shown = false
	m.markers = nil
}

// Snapshot returns a copy of the current map.
func (m *MapState) Snapshot() MapSnapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return MapSnapshot{
		Available: m.shown,
		Center:    m.center,
		Zoom:      m.zoom,
		Markers:   append([]Marker{}, m.markers...),
	}
}

func (m *MapState) index(id string) int {
	return slices.IndexFunc(m.markers, func(mk Marker) bool { return mk.ID == id })
}

// ListState is an in-memory ListView holding entries newest first, the way
// the list is drawn under the form. It is safe for concurrent readers.
type ListState struct {
	mu      sync.RWMutex
	entries []Entry
}

// NewListState returns an empty list.
func NewListState() *ListState {
	return &ListState{}
}

// Put replaces the entry with the same id in place, or inserts e at the top.
func (l *ListState) Put(e Entry) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if i := l.index(e.ID); i >= 0 {
		l.entries[i] = e
		return
	}
	l.entries = slices.Insert(l.entries, 0, e)
}

func (l *ListState) Remove(id string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if i := l.index(id); i >= 0 {
		l.entries = slices.Delete(l.entries, i, i+1)
	}
}

func (l *ListState) SetEditing(id string, editing bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if i := l.index(id); i >= 0 {
		l.entries[i].Editing = editing
	}
}

func (l *ListState) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = nil
}

// Entries returns a copy of the list, newest first.
func (l *ListState) Entries() []Entry {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return append([]Entry{}, l.entries...)
}

// Get returns the entry for id.
func (l *ListState) Get(id string) (Entry, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if i := l.index(id); i >= 0 {
		return l.entries[i], true
	}
	return Entry{}, false
}

func (l *ListState) index(id string) int {
	return slices.IndexFunc(l.entries, func(e Entry) bool { return e.ID == id })
}
