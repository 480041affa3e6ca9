// Package cli implements trailmarkctl, a command-line front-end for a
// running trailmark server.
package cli

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/claude/trailmark/internal/client"
	"github.com/claude/trailmark/internal/workout"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

const defaultServer = "http://localhost:8080"

// RootCmd builds the trailmarkctl command tree.
func RootCmd(version string) *cobra.Command {
	root := &cobra.Command{
		Use:           "trailmarkctl",
		Short:         "Log and manage workouts on a trailmark server",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	server := os.Getenv("TRAILMARK_SERVER")
	if server == "" {
		server = defaultServer
	}
	root.PersistentFlags().String("server", server, "trailmark server URL (env TRAILMARK_SERVER)")

	root.AddCommand(ListCmd())
	root.AddCommand(ShowCmd())
	root.AddCommand(RunCmd())
	root.AddCommand(RideCmd())
	root.AddCommand(EditCmd())
	root.AddCommand(DeleteCmd())
	root.AddCommand(FocusCmd())
	root.AddCommand(LocateCmd())
	root.AddCommand(ResetCmd())
	root.AddCommand(MCPCmd(version))
	return root
}

func clientFor(cmd *cobra.Command) *client.Client {
	url, _ := cmd.Flags().GetString("server")
	return client.New(url)
}

var (
	runningColor = color.New(color.FgGreen)
	cyclingColor = color.New(color.FgCyan)
	idColor      = color.New(color.FgHiBlack)
	okMark       = color.New(color.FgGreen).Sprint("✓")
)

func kindColor(k workout.Kind) *color.Color {
	if k == workout.Running {
		return runningColor
	}
	return cyclingColor
}

// printWorkout writes one line per workout, e.g.
//
//	Running on April 14  5 km  30 min  6.0 min/km  180 spm  0191...
func printWorkout(w io.Writer, r workout.Record) {
	var derived, metric string
	switch r.Kind {
	case workout.Running:
		derived = fmt.Sprintf("%.1f min/km", deref(r.Pace))
		metric = fmt.Sprintf("%s spm", number(deref(r.Cadence)))
	case workout.Cycling:
		derived = fmt.Sprintf("%.1f km/h", deref(r.Speed))
		metric = fmt.Sprintf("%s m", number(deref(r.ElevationGain)))
	}
	fmt.Fprintf(w, "%s  %s km  %s min  %s  %s  %s\n",
		kindColor(r.Kind).Sprint(r.Label),
		number(r.Distance), number(r.Duration),
		derived, metric,
		idColor.Sprint(r.ID),
	)
}

func deref(p *float64) float64 {
	if p == nil {
		return 0
	}
	return *p
}

func number(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// parseCoordinates reads "lat,lng".
func parseCoordinates(s string) (workout.Coordinates, error) {
	lat, lng, ok := strings.Cut(s, ",")
	if !ok {
		return workout.Coordinates{}, fmt.Errorf("invalid coordinates %q, want lat,lng", s)
	}
	la, err := strconv.ParseFloat(strings.TrimSpace(lat), 64)
	if err != nil {
		return workout.Coordinates{}, fmt.Errorf("invalid latitude %q", lat)
	}
	ln, err := strconv.ParseFloat(strings.TrimSpace(lng), 64)
	if err != nil {
		return workout.Coordinates{}, fmt.Errorf("invalid longitude %q", lng)
	}
	return workout.Coordinates{la, ln}, nil
}
