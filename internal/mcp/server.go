package mcp

import (
	"context"
	"log/slog"

	"github.com/claude/trailmark/internal/tracker"
	"github.com/claude/trailmark/internal/workout"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// DataSource abstracts the tracker for MCP tools. Both Local (in-process
// session) and client.Client (remote REST API) satisfy it. Lookups of an
// unknown id return nil and no error.
type DataSource interface {
	ListWorkouts(ctx context.Context) ([]workout.Record, error)
	GetWorkout(ctx context.Context, id string) (*workout.Record, error)
	CreateWorkout(ctx context.Context, in tracker.FormInput) (*workout.Record, error)
	EditWorkout(ctx context.Context, id string, edits tracker.FieldEdits) (*workout.Record, error)
	DeleteWorkout(ctx context.Context, id string) error
	SelectWorkout(ctx context.Context, id string) (*tracker.MapSnapshot, error)
}

// New creates an MCP server with all tools and resources registered.
func New(ds DataSource, version string, log *slog.Logger) *server.MCPServer {
	s := server.NewMCPServer("Trailmark", version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
		server.WithInstructions("Trailmark workout tracker. Log running and cycling workouts at map coordinates, edit or delete them, and read pace and speed."),
	)

	h := &handlers{ds: ds, log: log}

	s.AddTools(
		server.ServerTool{Tool: toolListWorkouts, Handler: h.listWorkouts},
		server.ServerTool{Tool: toolGetWorkout, Handler: h.getWorkout},
		server.ServerTool{Tool: toolLogRunning, Handler: h.logRunning},
		server.ServerTool{Tool: toolLogCycling, Handler: h.logCycling},
		server.ServerTool{Tool: toolEditWorkout, Handler: h.editWorkout},
		server.ServerTool{Tool: toolDeleteWorkout, Handler: h.deleteWorkout},
		server.ServerTool{Tool: toolSelectWorkout, Handler: h.selectWorkout},
	)

	s.AddResources(
		server.ServerResource{Resource: resWorkouts, Handler: h.workouts},
	)

	return s
}

// handlers holds dependencies for MCP tool/resource handlers.
type handlers struct {
	ds  DataSource
	log *slog.Logger
}

var resWorkouts = mcp.NewResource(
	"trailmark://workouts",
	"Workouts",
	mcp.WithResourceDescription("Every logged workout in creation order, with pace or speed"),
	mcp.WithMIMEType("application/json"),
)
