package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/valter-silva-au/focusboard/pkg/models"
)

var statsJSON bool

// statsReport is the --json shape of the stats command.
type statsReport struct {
	Statistics     models.Statistics `json:"statistics"`
	FocusedDisplay string            `json:"focused_display"`
	Tasks          models.TaskCounts `json:"tasks"`
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show focus statistics and task counts",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if Board == nil {
			return fmt.Errorf("dashboard not initialized")
		}

		report := statsReport{
			Statistics: Board.Timer.Statistics(),
			Tasks:      Board.Tasks.Counts(),
		}
		report.FocusedDisplay = report.Statistics.FocusedDisplay()

		out := cmd.OutOrStdout()
		if statsJSON {
			data, err := json.MarshalIndent(report, "", "  ")
			if err != nil {
				return fmt.Errorf("formatting statistics as JSON: %w", err)
			}
			fmt.Fprintln(out, string(data))
			return nil
		}

		fmt.Fprintf(out, "  %-24s %d\n", "Completed sessions:", report.Statistics.CompletedSessions)
		fmt.Fprintf(out, "  %-24s %s\n", "Focused time:", report.FocusedDisplay)
		fmt.Fprintf(out, "  %-24s %d\n", "Tasks:", report.Tasks.Total)
		fmt.Fprintf(out, "  %-24s %d\n", "Pending:", report.Tasks.Pending)
		fmt.Fprintf(out, "  %-24s %d\n", "Completed:", report.Tasks.Completed)
		return nil
	},
}

func init() {
	statsCmd.Flags().BoolVar(&statsJSON, "json", false, "Output statistics as JSON")
	rootCmd.AddCommand(statsCmd)
}
