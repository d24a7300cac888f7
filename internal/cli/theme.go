package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var themeCmd = &cobra.Command{
	Use:   "theme",
	Short: "Show or toggle the dashboard colour theme",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if Board == nil {
			return fmt.Errorf("dashboard not initialized")
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Theme: %s\n", themeName(Board.Preferences.DarkMode()))
		return nil
	},
}

var themeToggleCmd = &cobra.Command{
	Use:   "toggle",
	Short: "Switch between the light and dark theme",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if Board == nil {
			return fmt.Errorf("dashboard not initialized")
		}
		dark, err := Board.Preferences.ToggleDarkMode()
		if err != nil {
			return fmt.Errorf("toggling theme: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Theme: %s\n", themeName(dark))
		return nil
	},
}

func themeName(dark bool) string {
	if dark {
		return "dark"
	}
	return "light"
}

func init() {
	themeCmd.AddCommand(themeToggleCmd)
	rootCmd.AddCommand(themeCmd)
}
