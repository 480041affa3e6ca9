package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/claude/trailmark/internal/tracker"
	"github.com/claude/trailmark/internal/workout"
	"github.com/go-chi/chi/v5"
)

// formValue accepts a JSON number or string and keeps its raw text, so API
// clients and browser forms go through the same lenient parsing.
type formValue string

func (v *formValue) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case bytes.Equal(b, []byte("null")):
		*v = ""
	case len(b) > 0 && b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*v = formValue(s)
	default:
		*v = formValue(b)
	}
	return nil
}

type createRequest struct {
	Kind          string               `json:"kind"`
	Distance      formValue            `json:"distance"`
	Duration      formValue            `json:"duration"`
	Metric        formValue            `json:"metric"`
	Cadence       formValue            `json:"cadence"`
	ElevationGain formValue            `json:"elevationGain"`
	Coordinates   *workout.Coordinates `json:"coordinates"`
}

func (c createRequest) formInput() tracker.FormInput {
	metric := c.Metric
	if metric == "" {
		if strings.EqualFold(c.Kind, string(workout.Cycling)) {
			metric = c.ElevationGain
		} else {
			metric = c.Cadence
		}
	}
	return tracker.FormInput{
		Kind:        c.Kind,
		Distance:    string(c.Distance),
		Duration:    string(c.Duration),
		Metric:      string(metric),
		Coordinates: c.Coordinates,
	}
}

type editRequest struct {
	Distance      formValue `json:"distance"`
	Duration      formValue `json:"duration"`
	Metric        formValue `json:"metric"`
	Cadence       formValue `json:"cadence"`
	ElevationGain formValue `json:"elevationGain"`
}

func (e editRequest) fieldEdits() tracker.FieldEdits {
	metric := e.Metric
	if metric == "" {
		metric = e.Cadence
	}
	if metric == "" {
		metric = e.ElevationGain
	}
	return tracker.FieldEdits{Distance: string(e.Distance), Duration: string(e.Duration), Metric: string(metric)}
}

type locationRequest struct {
	Coordinates *workout.Coordinates `json:"coordinates"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]any{
		"status":   "ok",
		"workouts": len(s.session.Workouts()),
		"map":      s.session.MapAvailable(),
	})
}

func (s *Server) handleListWorkouts(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, workout.Records(s.session.Workouts()))
}

func (s *Server) handleCreateWorkout(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}

	created, err := s.session.OnFormSubmitted(r.Context(), req.formInput())
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, created.Record())
}

func (s *Server) handleGetWorkout(w http.ResponseWriter, r *http.Request) {
	found, ok := s.session.Find(chi.URLParam(r, "id"))
	if !ok {
		s.writeJSON(w, http.StatusNotFound, map[string]string{"error": "workout not found"})
		return
	}
	s.writeJSON(w, http.StatusOK, found.Record())
}

// handleEditWorkout saves an edit. An unknown id is not an error: the
// response is 204 with no body, mirroring a silent no-op.
func (s *Server) handleEditWorkout(w http.ResponseWriter, r *http.Request) {
	var req editRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}

	updated, ok, err := s.session.OnEditSaved(r.Context(), chi.URLParam(r, "id"), req.fieldEdits())
	if err != nil {
		s.writeError(w, err)
		return
	}
	if !ok {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	s.writeJSON(w, http.StatusOK, updated.Record())
}

func (s *Server) handleDeleteWorkout(w http.ResponseWriter, r *http.Request) {
	if _, err := s.session.OnDeleteRequested(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleEditRequested(w http.ResponseWriter, r *http.Request) {
	ok, err := s.session.OnEditRequested(chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	if !ok {
		s.writeJSON(w, http.StatusNotFound, map[string]string{"error": "workout not found"})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSelectWorkout(w http.ResponseWriter, r *http.Request) {
	_, ok, err := s.session.OnEntrySelected(chi.URLParam(r, "id"))
	if !ok && err == nil {
		s.writeJSON(w, http.StatusNotFound, map[string]string{"error": "workout not found"})
		return
	}
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, s.mapView.Snapshot())
}

func (s *Server) handleWorkoutEntry(w http.ResponseWriter, r *http.Request) {
	entry, ok := s.list.Get(chi.URLParam(r, "id"))
	if !ok {
		s.writeJSON(w, http.StatusNotFound, map[string]string{"error": "workout not found"})
		return
	}
	writeHTML(w, entry.HTML)
}

func (s *Server) handleSelectLocation(w http.ResponseWriter, r *http.Request) {
	var req locationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}
	if req.Coordinates == nil {
		s.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "coordinates required"})
		return
	}
	if err := s.session.OnLocationSelected(*req.Coordinates); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleMap(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.mapView.Snapshot())
}

// handleList returns the rendered entries, newest first. With
// ?format=html the fragments are concatenated into one HTML response.
func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	entries := s.list.Entries()
	if r.URL.Query().Get("format") == "html" {
		var b strings.Builder
		for _, e := range entries {
			b.WriteString(e.HTML)
		}
		writeHTML(w, b.String())
		return
	}
	s.writeJSON(w, http.StatusOK, entries)
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	if err := s.session.Reset(r.Context()); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, workout.ErrValidation), errors.Is(err, tracker.ErrNoLocation):
		s.writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	case errors.Is(err, tracker.ErrMapUnavailable):
		s.writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
	case errors.Is(err, tracker.ErrNotStarted):
		s.writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": err.Error()})
	default:
		s.log.Error("request failed", "error", err)
		s.writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
}

// writeJSON encodes v before committing the status, so a value that cannot
// be encoded becomes a logged 500 instead of an empty success.
func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		s.log.Error("encoding response", "status", status, "error", err)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error":"encoding response failed"}` + "\n"))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(append(data, '\n'))
}

func writeHTML(w http.ResponseWriter, html string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(html))
}
