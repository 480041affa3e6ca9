// Package render produces the HTML fragments a browser front-end shows for a
// workout: the list entry and the marker popup.
package render

import (
	"bytes"
	"fmt"
	"html/template"
	"strconv"

	"github.com/claude/trailmark/internal/workout"
)

// Icon returns the emoji shown next to a workout of the given kind.
func Icon(k workout.Kind) string {
	if k == workout.Running {
		return "🏃‍♂️"
	}
	return "🚴‍♀️"
}

// PopupClass is the CSS class of a marker popup.
func PopupClass(k workout.Kind) string {
	return string(k) + "-popup"
}

// PopupContent is the marker popup text, e.g. "🏃‍♂️ Running on April 14".
func PopupContent(w workout.Workout) string {
	return Icon(w.Kind) + " " + w.Label
}

type detail struct {
	Icon  string
	Field string
	Value string
	Unit  string
}

type entryView struct {
	ID      string
	Kind    workout.Kind
	Label   string
	Editing bool
	Details []detail
}

var entryTmpl = template.Must(template.New("entry").Parse(
	`<li class="workout workout--{{.Kind}}" data-id="{{.ID}}">
  <h2 class="workout__title">{{.Label}}</h2>
  <div class="workout__container">
{{- range .Details}}
    <div class="workout__details">
      <span class="workout__icon">{{.Icon}}</span>
      <span class="workout__value value--{{.Field}}{{if $.Editing}} workout__edit--value{{end}}"{{if $.Editing}} contenteditable="true"{{end}}>{{.Value}}</span>
      <span class="workout__unit">{{.Unit}}</span>
    </div>
{{- end}}
  </div>
  <div class="workout__options">
    <button class="workout__button btn-edit">Edit</button>
    <button class="workout__button btn-save">Save</button>
    <button class="workout__button btn-delete">Delete</button>
  </div>
</li>
`))

// Entry renders the list entry for w. When editing is set the editable
// values are marked so the front-end can capture changes.
func Entry(w workout.Workout, editing bool) (string, error) {
	v := entryView{
		ID:      w.ID,
		Kind:    w.Kind,
		Label:   w.Label,
		Editing: editing,
		Details: []detail{
			{Icon(w.Kind), "distance", number(w.Distance), "km"},
			{"⏱", "duration", number(w.Duration), "min"},
		},
	}
	switch w.Kind {
	case workout.Running:
		v.Details = append(v.Details,
			detail{"⚡️", "pace", oneDecimal(w.Pace), "min/km"},
			detail{"🦶🏼", "cadence", number(w.Cadence), "spm"},
		)
	case workout.Cycling:
		v.Details = append(v.Details,
			detail{"⚡️", "speed", oneDecimal(w.Speed), "km/h"},
			detail{"⛰", "elevationGain", number(w.ElevationGain), "m"},
		)
	}

	var buf bytes.Buffer
	if err := entryTmpl.Execute(&buf, v); err != nil {
		return "", fmt.Errorf("rendering entry %s: %w", w.ID, err)
	}
	return buf.String(), nil
}

// number prints v the way a browser prints a JS number: no trailing zeros.
func number(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func oneDecimal(v float64) string {
	return strconv.FormatFloat(v, 'f', 1, 64)
}
