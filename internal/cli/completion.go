package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

var (
	completionInstall bool
	completionDir     string
)

var completionCmd = &cobra.Command{
	Use:   "completion <shell>",
	Short: "Print or install shell completions for focusboard",
	Long: `Generate tab-completions for focusboard commands, flags, task IDs,
priorities, filters and timer modes.

Supported shells: bash, zsh, fish, powershell

  focusboard completion zsh              # print the script
  focusboard completion zsh --install    # write it to the user completion dir`,
	ValidArgs: []string{"bash", "zsh", "fish", "powershell"},
	Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
	RunE:      runCompletion,
}

func init() {
	completionCmd.Flags().BoolVar(&completionInstall, "install", false, "Write the script into the shell's user completion directory")
	completionCmd.Flags().StringVar(&completionDir, "dir", "", "Install into this directory instead of the shell default")

	rootCmd.CompletionOptions.DisableDefaultCmd = true
	rootCmd.AddCommand(completionCmd)
}

// completionScript writes the completion script for shell to w.
func completionScript(shell string, w io.Writer) error {
	switch shell {
	case "bash":
		return rootCmd.GenBashCompletionV2(w, true)
	case "zsh":
		return rootCmd.GenZshCompletion(w)
	case "fish":
		return rootCmd.GenFishCompletion(w, true)
	case "powershell":
		return rootCmd.GenPowerShellCompletionWithDesc(w)
	default:
		return fmt.Errorf("unsupported shell %q (supported: bash, zsh, fish, powershell)", shell)
	}
}

// completionTarget returns the default install path for shell under home.
func completionTarget(shell, home string) (string, error) {
	switch shell {
	case "bash":
		return filepath.Join(home, ".local", "share", "bash-completion", "completions", "focusboard"), nil
	case "zsh":
		return filepath.Join(home, ".local", "share", "zsh", "site-functions", "_focusboard"), nil
	case "fish":
		return filepath.Join(home, ".config", "fish", "completions", "focusboard.fish"), nil
	case "powershell":
		return "", fmt.Errorf("automatic install is not supported for PowerShell; add 'focusboard completion powershell | Out-String | Invoke-Expression' to your profile")
	default:
		return "", fmt.Errorf("unsupported shell %q", shell)
	}
}

func runCompletion(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return cmd.Help()
	}
	shell := args[0]
	if !completionInstall {
		return completionScript(shell, cmd.OutOrStdout())
	}

	home, err := os.UserHomeDir()
	if err != nil && completionDir == "" {
		return fmt.Errorf("detecting home directory: %w", err)
	}
	target, err := completionTarget(shell, home)
	if err != nil {
		return err
	}
	if completionDir != "" {
		target = filepath.Join(completionDir, filepath.Base(target))
	}
	if err := writeCompletionFile(shell, target); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Completions for %s installed to %s\n", shell, target)
	if shell == "zsh" {
		fmt.Fprintf(out, "Make sure %s is in your fpath, then run: autoload -Uz compinit && compinit\n", filepath.Dir(target))
	} else {
		fmt.Fprintln(out, "Restart your shell to pick them up.")
	}
	return nil
}

func writeCompletionFile(shell, target string) error {
	if err := os.MkdirAll(filepath.Dir(target), 0o750); err != nil {
		return fmt.Errorf("creating completion directory: %w", err)
	}
	f, err := os.Create(target)
	if err != nil {
		return fmt.Errorf("creating completion file %s: %w", target, err)
	}
	writeErr := completionScript(shell, f)
	closeErr := f.Close()
	if writeErr != nil {
		return writeErr
	}
	if closeErr != nil {
		return fmt.Errorf("closing completion file %s: %w", target, closeErr)
	}
	return nil
}
