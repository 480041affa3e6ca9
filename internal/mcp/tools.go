package mcp

import (
	"context"
	"errors"
	"strconv"

	"github.com/claude/trailmark/internal/tracker"
	"github.com/claude/trailmark/internal/workout"
	"github.com/mark3labs/mcp-go/mcp"
)

// --- Tool definitions ---

var toolListWorkouts = mcp.NewTool("list_workouts",
	mcp.WithDescription("List logged workouts in creation order. Running workouts include cadence and pace (min/km); cycling workouts include elevation gain and speed (km/h)."),
	mcp.WithString("kind", mcp.Description("Only return workouts of this kind"), mcp.Enum("running", "cycling")),
)

var toolGetWorkout = mcp.NewTool("get_workout",
	mcp.WithDescription("Get a single workout by id."),
	mcp.WithString("id", mcp.Required(), mcp.Description("Workout id")),
)

var toolLogRunning = mcp.NewTool("log_running",
	mcp.WithDescription("Log a running workout. Pace is computed as duration / distance. Without coordinates the location last selected on the map is used."),
	mcp.WithNumber("distance", mcp.Required(), mcp.Description("Distance in km")),
	mcp.WithNumber("duration", mcp.Required(), mcp.Description("Duration in minutes")),
	mcp.WithNumber("cadence", mcp.Required(), mcp.Description("Cadence in steps per minute")),
	mcp.WithNumber("latitude", mcp.Description("Latitude of the workout")),
	mcp.WithNumber("longitude", mcp.Description("Longitude of the workout")),
)

var toolLogCycling = mcp.NewTool("log_cycling",
	mcp.WithDescription("Log a cycling workout. Speed is computed as distance / (duration / 60). Elevation gain may be negative. Without coordinates the location last selected on the map is used."),
	mcp.WithNumber("distance", mcp.Required(), mcp.Description("Distance in km")),
	mcp.WithNumber("duration", mcp.Required(), mcp.Description("Duration in minutes")),
	mcp.WithNumber("elevation_gain", mcp.Required(), mcp.Description("Elevation gain in meters")),
	mcp.WithNumber("latitude", mcp.Description("Latitude of the workout")),
	mcp.WithNumber("longitude", mcp.Description("Longitude of the workout")),
)

var toolEditWorkout = mcp.NewTool("edit_workout",
	mcp.WithDescription("Edit a workout's distance, duration or kind-specific metric. Omitted fields are unchanged; pace or speed is recomputed. Editing an unknown id changes nothing."),
	mcp.WithString("id", mcp.Required(), mcp.Description("Workout id")),
	mcp.WithNumber("distance", mcp.Description("New distance in km")),
	mcp.WithNumber("duration", mcp.Description("New duration in minutes")),
	mcp.WithNumber("metric", mcp.Description("New cadence (running) or elevation gain (cycling)")),
)

var toolDeleteWorkout = mcp.NewTool("delete_workout",
	mcp.WithDescription("Delete a workout. Deleting an unknown id does nothing."),
	mcp.WithString("id", mcp.Required(), mcp.Description("Workout id")),
)

var toolSelectWorkout = mcp.NewTool("select_workout",
	mcp.WithDescription("Center the map on a workout and return the resulting map view."),
	mcp.WithString("id", mcp.Required(), mcp.Description("Workout id")),
)

// --- Tool handlers ---

func (h *handlers) listWorkouts(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	records, err := h.ds.ListWorkouts(ctx)
	if err != nil {
		h.log.Error("mcp list_workouts", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	if kind := req.GetString("kind", ""); kind != "" {
		filtered := records[:0]
		for _, r := range records {
			if string(r.Kind) == kind {
				filtered = append(filtered, r)
			}
		}
		records = filtered
	}
	return jsonResult(records)
}

func (h *handlers) getWorkout(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError("id parameter is required"), nil
	}

	record, err := h.ds.GetWorkout(ctx, id)
	if err != nil {
		h.log.Error("mcp get_workout", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	if record == nil {
		return mcp.NewToolResultError("workout not found: " + id), nil
	}
	return jsonResult(record)
}

func (h *handlers) logRunning(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return h.logWorkout(ctx, req, workout.Running, "cadence")
}

func (h *handlers) logCycling(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return h.logWorkout(ctx, req, workout.Cycling, "elevation_gain")
}

func (h *handlers) logWorkout(ctx context.Context, req mcp.CallToolRequest, kind workout.Kind, metricParam string) (*mcp.CallToolResult, error) {
	in := tracker.FormInput{Kind: string(kind)}
	var err error
	if in.Distance, err = requireNumber(req, "distance"); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if in.Duration, err = requireNumber(req, "duration"); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if in.Metric, err = requireNumber(req, metricParam); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	lat, hasLat := optionalNumber(req, "latitude")
	lng, hasLng := optionalNumber(req, "longitude")
	if hasLat != hasLng {
		return mcp.NewToolResultError("latitude and longitude must be given together"), nil
	}
	if hasLat {
		in.Coordinates = &workout.Coordinates{lat, lng}
	}

	record, err := h.ds.CreateWorkout(ctx, in)
	if err != nil {
		return h.commandError("log_"+string(kind), err), nil
	}
	return jsonResult(record)
}

func (h *handlers) editWorkout(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError("id parameter is required"), nil
	}

	var edits tracker.FieldEdits
	if v, ok := optionalNumber(req, "distance"); ok {
		edits.Distance = formatNumber(v)
	}
	if v, ok := optionalNumber(req, "duration"); ok {
		edits.Duration = formatNumber(v)
	}
	if v, ok := optionalNumber(req, "metric"); ok {
		edits.Metric = formatNumber(v)
	}

	record, err := h.ds.EditWorkout(ctx, id, edits)
	if err != nil {
		return h.commandError("edit_workout", err), nil
	}
	if record == nil {
		return mcp.NewToolResultText("no workout " + id + "; nothing changed"), nil
	}
	return jsonResult(record)
}

func (h *handlers) deleteWorkout(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError("id parameter is required"), nil
	}
	if err := h.ds.DeleteWorkout(ctx, id); err != nil {
		return h.commandError("delete_workout", err), nil
	}
	return mcp.NewToolResultText("deleted " + id), nil
}

func (h *handlers) selectWorkout(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError("id parameter is required"), nil
	}
	snap, err := h.ds.SelectWorkout(ctx, id)
	if err != nil {
		return h.commandError("select_workout", err), nil
	}
	if snap == nil {
		return mcp.NewToolResultError("workout not found: " + id), nil
	}
	return jsonResult(snap)
}

// commandError turns a rejected command into a tool error. Validation
// problems are the caller's fault and are not logged.
func (h *handlers) commandError(tool string, err error) *mcp.CallToolResult {
	if !errors.Is(err, workout.ErrValidation) && !errors.Is(err, tracker.ErrNoLocation) {
		h.log.Error("mcp "+tool, "error", err)
	}
	return mcp.NewToolResultError(err.Error())
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	result, err := mcp.NewToolResultJSON(v)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func requireNumber(req mcp.CallToolRequest, key string) (string, error) {
	v, err := req.RequireFloat(key)
	if err != nil {
		return "", errors.New(key + " parameter is required")
	}
	return formatNumber(v), nil
}

func optionalNumber(req mcp.CallToolRequest, key string) (float64, bool) {
	if _, ok := req.GetArguments()[key]; !ok {
		return 0, false
	}
	v, err := req.RequireFloat(key)
	if err != nil {
		return 0, false
	}
	return v, true
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
