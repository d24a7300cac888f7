package cli

import (
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/valter-silva-au/focusboard/pkg/models"
)

// completeTaskIDs returns a completion function that lists the IDs of tasks
// in the given view, with the title as description.
func completeTaskIDs(filter models.TaskFilter) func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
	return func(_ *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		if Board == nil || len(args) > 0 {
			return nil, cobra.ShellCompDirectiveNoFileComp
		}

		var ids []string
		for _, task := range Board.Tasks.List(filter) {
			id := strconv.FormatInt(task.ID, 10)
			if toComplete == "" || strings.HasPrefix(id, toComplete) {
				ids = append(ids, id+"\t"+task.Title)
			}
		}

		return ids, cobra.ShellCompDirectiveNoFileComp
	}
}

// completePriorities returns a completion function for priority values.
func completePriorities(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
	return []string{
		string(models.PriorityHigh) + "\tUrgent",
		string(models.PriorityMedium) + "\tDefault",
		string(models.PriorityLow) + "\tWhenever",
	}, cobra.ShellCompDirectiveNoFileComp
}

// completeFilters returns a completion function for task list filters.
func completeFilters(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
	return []string{
		string(models.FilterAll),
		string(models.FilterPending),
		string(models.FilterCompleted),
	}, cobra.ShellCompDirectiveNoFileComp
}

// completeTimerModes returns a completion function for timer modes.
func completeTimerModes(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
	return []string{
		string(models.ModeWork) + "\t25 minutes",
		string(models.ModeBreak) + "\t5 minutes",
	}, cobra.ShellCompDirectiveNoFileComp
}
