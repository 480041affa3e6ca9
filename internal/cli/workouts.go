package cli

import (
	"fmt"

	"github.com/claude/trailmark/internal/tracker"
	"github.com/claude/trailmark/internal/workout"
	"github.com/spf13/cobra"
)

// ListCmd lists workouts.
func ListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List workouts in creation order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, _ := cmd.Flags().GetString("kind")
			records, err := clientFor(cmd).ListWorkouts(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to list workouts: %w", err)
			}

			out := cmd.OutOrStdout()
			n := 0
			for _, r := range records {
				if kind != "" && string(r.Kind) != kind {
					continue
				}
				printWorkout(out, r)
				n++
			}
			if n == 0 {
				fmt.Fprintln(out, "No workouts yet")
			}
			return nil
		},
	}
	cmd.Flags().String("kind", "", "only show running or cycling")
	return cmd
}

// ShowCmd prints one workout.
func ShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show [id]",
		Short: "Show a workout",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := clientFor(cmd).GetWorkout(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("failed to get workout: %w", err)
			}
			if r == nil {
				return fmt.Errorf("workout %s not found", args[0])
			}
			printWorkout(cmd.OutOrStdout(), *r)
			return nil
		},
	}
}

// RunCmd logs a running workout.
func RunCmd() *cobra.Command {
	return logCmd(workout.Running, "run [distance-km] [duration-min] [cadence-spm]", "Log a running workout")
}

// RideCmd logs a cycling workout.
func RideCmd() *cobra.Command {
	return logCmd(workout.Cycling, "ride [distance-km] [duration-min] [elevation-gain-m]", "Log a cycling workout")
}

func logCmd(kind workout.Kind, use, short string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Long:  short + ". Without --at the location last selected on the map is used.",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			in := tracker.FormInput{Kind: string(kind), Distance: args[0], Duration: args[1], Metric: args[2]}
			if at, _ := cmd.Flags().GetString("at"); at != "" {
				coords, err := parseCoordinates(at)
				if err != nil {
					return err
				}
				in.Coordinates = &coords
			}

			r, err := clientFor(cmd).CreateWorkout(cmd.Context(), in)
			if err != nil {
				return fmt.Errorf("failed to log workout: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s Logged ", okMark)
			printWorkout(cmd.OutOrStdout(), *r)
			return nil
		},
	}
	cmd.Flags().String("at", "", "workout location as lat,lng")
	return cmd
}

// EditCmd changes a workout's numbers.
func EditCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "edit [id]",
		Short: "Edit a workout's distance, duration or metric",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var edits tracker.FieldEdits
			edits.Distance, _ = cmd.Flags().GetString("distance")
			edits.Duration, _ = cmd.Flags().GetString("duration")
			edits.Metric, _ = cmd.Flags().GetString("metric")
			if edits == (tracker.FieldEdits{}) {
				return fmt.Errorf("nothing to edit\nHint: use --distance, --duration or --metric")
			}

			r, err := clientFor(cmd).EditWorkout(cmd.Context(), args[0], edits)
			if err != nil {
				return fmt.Errorf("failed to edit workout: %w", err)
			}
			if r == nil {
				fmt.Fprintf(cmd.OutOrStdout(), "No workout %s, nothing changed\n", args[0])
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s Updated ", okMark)
			printWorkout(cmd.OutOrStdout(), *r)
			return nil
		},
	}
	cmd.Flags().String("distance", "", "new distance in km")
	cmd.Flags().String("duration", "", "new duration in minutes")
	cmd.Flags().String("metric", "", "new cadence (running) or elevation gain (cycling)")
	return cmd
}

// DeleteCmd removes a workout.
func DeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete [id]",
		Short: "Delete a workout",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := clientFor(cmd).DeleteWorkout(cmd.Context(), args[0]); err != nil {
				return fmt.Errorf("failed to delete workout: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s Deleted %s\n", okMark, args[0])
			return nil
		},
	}
}

// FocusCmd centers the map on a workout.
func FocusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "focus [id]",
		Short: "Center the map on a workout",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			snap, err := clientFor(cmd).SelectWorkout(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("failed to focus workout: %w", err)
			}
			if snap == nil {
				return fmt.Errorf("workout %s not found", args[0])
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s Map centered on %v,%v (zoom %d)\n",
				okMark, snap.Center.Lat(), snap.Center.Lng(), snap.Zoom)
			return nil
		},
	}
}

// LocateCmd selects the location for the next workout.
func LocateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "locate [lat,lng]",
		Short: "Select the map location for the next workout",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			coords, err := parseCoordinates(args[0])
			if err != nil {
				return err
			}
			if err := clientFor(cmd).SelectLocation(cmd.Context(), coords); err != nil {
				return fmt.Errorf("failed to select location: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s Location set to %v,%v\n", okMark, coords.Lat(), coords.Lng())
			return nil
		},
	}
}

// ResetCmd deletes every workout.
func ResetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Delete every workout",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if yes, _ := cmd.Flags().GetBool("yes"); !yes {
				return fmt.Errorf("reset deletes every workout\nHint: pass --yes to confirm")
			}
			if err := clientFor(cmd).Reset(cmd.Context()); err != nil {
				return fmt.Errorf("failed to reset: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s All workouts deleted\n", okMark)
			return nil
		},
	}
	cmd.Flags().Bool("yes", false, "confirm the reset")
	return cmd
}
