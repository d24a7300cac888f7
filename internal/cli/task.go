package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/valter-silva-au/focusboard/pkg/models"
)

var taskCmd = &cobra.Command{
	Use:   "task",
	Short: "Manage tasks (add, list, complete, delete)",
	Long: `Task list commands.

Tasks are kept in creation order. Each task has a title, an optional
description, a priority (high, medium, low) and an optional YYYY-MM-DD due date.`,
}

var (
	taskAddDescription string
	taskAddPriority    string
	taskAddDue         string
)

var taskAddCmd = &cobra.Command{
	Use:   "add <title...>",
	Short: "Add a new pending task",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if Board == nil {
			return fmt.Errorf("dashboard not initialized")
		}

		priority, err := models.ParsePriority(taskAddPriority)
		if err != nil {
			return err
		}

		task, err := Board.Tasks.Create(models.TaskInput{
			Title:       strings.Join(args, " "),
			Description: taskAddDescription,
			Priority:    priority,
			DueDate:     taskAddDue,
		})
		if err != nil {
			return fmt.Errorf("adding task: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Added task %d: %s [%s]\n", task.ID, task.Title, task.Priority)
		return nil
	},
}

var (
	taskListFilter string
	taskListJSON   bool
)

var taskListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List tasks",
	Long: `List tasks in creation order.

Use --filter to show only pending or completed tasks.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if Board == nil {
			return fmt.Errorf("dashboard not initialized")
		}

		filter, err := models.ParseTaskFilter(taskListFilter)
		if err != nil {
			return err
		}
		tasks := Board.Tasks.List(filter)

		out := cmd.OutOrStdout()
		if taskListJSON {
			data, err := json.MarshalIndent(tasks, "", "  ")
			if err != nil {
				return fmt.Errorf("formatting tasks as JSON: %w", err)
			}
			fmt.Fprintln(out, string(data))
			return nil
		}

		if len(tasks) == 0 {
			fmt.Fprintln(out, "No tasks found.")
			return nil
		}
		printTaskTable(out, tasks)
		return nil
	},
}

// printTaskTable prints tasks as an aligned table.
func printTaskTable(w io.Writer, tasks []models.Task) {
	fmt.Fprintf(w, "  %-14s %-3s %-6s %-10s %s\n", "ID", "", "PRI", "DUE", "TITLE")
	fmt.Fprintf(w, "  %-14s %-3s %-6s %-10s %s\n", "----", "", "---", "---", "-----")
	for _, task := range tasks {
		mark := "[ ]"
		if task.Completed {
			mark = "[x]"
		}
		due := task.DueDate
		if due == "" {
			due = "-"
		}
		fmt.Fprintf(w, "  %-14d %-3s %-6s %-10s %s\n", task.ID, mark, task.Priority, due, task.Title)
	}
}

var taskCompleteCmd = &cobra.Command{
	Use:     "complete <id>",
	Aliases: []string{"done"},
	Short:   "Mark a task as completed",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if Board == nil {
			return fmt.Errorf("dashboard not initialized")
		}

		id, err := parseTaskID(args[0])
		if err != nil {
			return err
		}

		ok, err := Board.Tasks.Complete(id)
		if err != nil {
			return fmt.Errorf("completing task %d: %w", id, err)
		}
		if !ok {
			fmt.Fprintf(cmd.OutOrStdout(), "Task %d not found or already completed.\n", id)
			return nil
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Completed task %d.\n", id)
		return nil
	},
}

var taskDeleteCmd = &cobra.Command{
	Use:     "delete <id>",
	Aliases: []string{"rm"},
	Short:   "Delete a task",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if Board == nil {
			return fmt.Errorf("dashboard not initialized")
		}

		id, err := parseTaskID(args[0])
		if err != nil {
			return err
		}

		if err := Board.Tasks.Delete(id); err != nil {
			return fmt.Errorf("deleting task %d: %w", id, err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted task %d.\n", id)
		return nil
	},
}

func parseTaskID(s string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid task id %q: must be a number", s)
	}
	return id, nil
}

func init() {
	taskAddCmd.Flags().StringVarP(&taskAddDescription, "description", "d", "", "Longer task description")
	taskAddCmd.Flags().StringVarP(&taskAddPriority, "priority", "p", "medium", "Task priority (high, medium, low)")
	taskAddCmd.Flags().StringVar(&taskAddDue, "due", "", "Due date (YYYY-MM-DD)")
	_ = taskAddCmd.RegisterFlagCompletionFunc("priority", completePriorities)

	taskListCmd.Flags().StringVarP(&taskListFilter, "filter", "f", "all", "Filter tasks (all, pending, completed)")
	taskListCmd.Flags().BoolVar(&taskListJSON, "json", false, "Output tasks as JSON")
	_ = taskListCmd.RegisterFlagCompletionFunc("filter", completeFilters)

	taskCompleteCmd.ValidArgsFunction = completeTaskIDs(models.FilterPending)
	taskDeleteCmd.ValidArgsFunction = completeTaskIDs(models.FilterAll)

	taskCmd.AddCommand(taskAddCmd)
	taskCmd.AddCommand(taskListCmd)
	taskCmd.AddCommand(taskCompleteCmd)
	taskCmd.AddCommand(taskDeleteCmd)
	rootCmd.AddCommand(taskCmd)
}
