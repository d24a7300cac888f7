package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"github.com/valter-silva-au/focusboard/internal/core"
	"github.com/valter-silva-au/focusboard/pkg/models"
)

// timerEventBuffer is the subscription buffer for "timer run". Ticks that
// arrive while it is full are dropped; the loop reads the engine state on
// every event.
var timerEventBuffer = 64

var timerCmd = &cobra.Command{
	Use:   "timer",
	Short: "Run the work/break focus timer",
	Long: `Focus timer commands.

A work interval lasts 25 minutes and a break 5 minutes. Completing a work
interval adds one session and 25 focused minutes to the statistics.`,
}

var timerRunMode string

var timerRunCmd = &cobra.Command{
	Use:   "run",
	Short: "Count down one interval in the terminal",
	Long: `Start the timer and count down one interval in the terminal.

The command returns once the interval has expired and the timer has moved to
the other mode. Press Ctrl-C to pause and exit early; timer progress is not
kept between runs.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if Board == nil {
			return fmt.Errorf("dashboard not initialized")
		}
		timer := Board.Timer

		if timerRunMode != "" {
			mode, err := models.ParseTimerMode(timerRunMode)
			if err != nil {
				return err
			}
			if err := timer.SwitchMode(mode); err != nil {
				return err
			}
		}

		parent := cmd.Context()
		if parent == nil {
			parent = context.Background()
		}
		ctx, stop := signal.NotifyContext(parent, os.Interrupt)
		defer stop()

		events := timer.Subscribe(timerEventBuffer)
		defer timer.Unsubscribe(events)
		messages := Board.Messages().Subscribe(4)
		defer Board.Messages().Unsubscribe(messages)

		out := cmd.OutOrStdout()
		startMode := timer.State().Mode
		timer.Start()
		fmt.Fprintf(out, "%s %s", modeLabel(startMode), timer.State().Display())

		for {
			select {
			case <-ctx.Done():
				timer.Pause()
				fmt.Fprintf(out, "\nPaused at %s\n", timer.State().Display())
				return nil
			case msg, ok := <-messages:
				if !ok {
					messages = nil
					continue
				}
				fmt.Fprintf(out, "\n%s\n", msg)
			case ev, ok := <-events:
				if !ok {
					fmt.Fprintln(out)
					return nil
				}
				if ev.Type == core.TimerEventTick {
					fmt.Fprintf(out, "\r%s %s", modeLabel(ev.State.Mode), ev.State.Display())
				}
				state := timer.State()
				if state.Mode != startMode {
					drainMessages(out, messages)
					stats := timer.Statistics()
					fmt.Fprintf(out, "Next: %s %s. Sessions: %d, focused %s\n",
						modeLabel(state.Mode), state.Display(), stats.CompletedSessions, stats.FocusedDisplay())
					return nil
				}
			}
		}
	},
}

// drainMessages prints messages that were published before the transition but
// not yet read.
func drainMessages(w io.Writer, messages <-chan string) {
	for {
		select {
		case msg, ok := <-messages:
			if !ok {
				return
			}
			fmt.Fprintf(w, "\n%s\n", msg)
		default:
			return
		}
	}
}

func modeLabel(m models.TimerMode) string {
	if m == models.ModeBreak {
		return "Break"
	}
	return "Work"
}

func init() {
	timerRunCmd.Flags().StringVarP(&timerRunMode, "mode", "m", "", "Interval to run (work or break); defaults to work")
	_ = timerRunCmd.RegisterFlagCompletionFunc("mode", completeTimerModes)

	timerCmd.AddCommand(timerRunCmd)
	rootCmd.AddCommand(timerCmd)
}
