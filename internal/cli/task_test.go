package cli

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/valter-silva-au/focusboard/internal/core"
	"github.com/valter-silva-au/focusboard/internal/storage"
	"github.com/valter-silva-au/focusboard/pkg/models"
)

// useTestBoard installs an in-memory dashboard driven by a manual scheduler
// as the package Board for the duration of the test.
func useTestBoard(t *testing.T) (*core.Dashboard, *core.ManualScheduler, *storage.MemoryStore) {
	t.Helper()
	store := storage.NewMemoryStore()
	sched := core.NewManualScheduler()
	board, err := core.NewDashboard(core.DashboardConfig{Store: store, Scheduler: sched})
	if err != nil {
		t.Fatalf("NewDashboard: %v", err)
	}

	orig := Board
	Board = board
	t.Cleanup(func() {
		Board = orig
		board.Close()
	})
	return board, sched, store
}

// runCmd runs cmd.RunE with output captured.
func runCmd(t *testing.T, cmd *cobra.Command, args ...string) (string, error) {
	t.Helper()
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	defer cmd.SetOut(nil)
	err := cmd.RunE(cmd, args)
	return buf.String(), err
}

// --- Registration Tests ---

func TestTaskCmd_Subcommands(t *testing.T) {
	expected := []string{"add", "list", "complete", "delete"}
	subs := make(map[string]bool)
	for _, cmd := range taskCmd.Commands() {
		subs[cmd.Name()] = true
	}
	for _, name := range expected {
		if !subs[name] {
			t.Errorf("expected subcommand %q on 'task', but it was not registered", name)
		}
	}
}

func TestTaskCmds_NilBoard(t *testing.T) {
	orig := Board
	defer func() { Board = orig }()
	Board = nil

	cmds := map[string]struct {
		cmd  *cobra.Command
		args []string
	}{
		"add":      {taskAddCmd, []string{"x"}},
		"list":     {taskListCmd, nil},
		"complete": {taskCompleteCmd, []string{"1"}},
		"delete":   {taskDeleteCmd, []string{"1"}},
	}
	for name, tc := range cmds {
		t.Run(name, func(t *testing.T) {
			err := tc.cmd.RunE(tc.cmd, tc.args)
			if err == nil || !strings.Contains(err.Error(), "dashboard not initialized") {
				t.Errorf("expected not initialized error, got %v", err)
			}
		})
	}
}

// --- task add Tests ---

func TestTaskAdd_JoinsArgsAndAppliesFlags(t *testing.T) {
	board, _, _ := useTestBoard(t)

	origDesc, origPri, origDue := taskAddDescription, taskAddPriority, taskAddDue
	defer func() { taskAddDescription, taskAddPriority, taskAddDue = origDesc, origPri, origDue }()
	taskAddDescription = "quarterly numbers"
	taskAddPriority = "HIGH"
	taskAddDue = "2026-03-10"

	out, err := runCmd(t, taskAddCmd, "Write", "report")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "Write report [high]") {
		t.Errorf("unexpected output: %q", out)
	}

	tasks := board.Tasks.List(models.FilterAll)
	if len(tasks) != 1 {
		t.Fatalf("expected 1 task, got %d", len(tasks))
	}
	got := tasks[0]
	if got.Title != "Write report" || got.Priority != models.PriorityHigh || got.DueDate != "2026-03-10" || got.Description != "quarterly numbers" {
		t.Errorf("unexpected task %+v", got)
	}
}

func TestTaskAdd_Validation(t *testing.T) {
	useTestBoard(t)

	origPri, origDue := taskAddPriority, taskAddDue
	defer func() { taskAddPriority, taskAddDue = origPri, origDue }()

	tests := []struct {
		name     string
		args     []string
		priority string
		due      string
		errMsg   string
	}{
		{"blank title", []string{"   "}, "medium", "", "title"},
		{"bad priority", []string{"x"}, "urgent", "", "invalid priority"},
		{"bad due date", []string{"x"}, "medium", "10/03/2026", "due_date"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			taskAddPriority = tt.priority
			taskAddDue = tt.due
			_, err := runCmd(t, taskAddCmd, tt.args...)
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.errMsg) {
				t.Errorf("error %q should contain %q", err.Error(), tt.errMsg)
			}
		})
	}
}

// --- task list Tests ---

func TestTaskList_Table(t *testing.T) {
	board, _, _ := useTestBoard(t)
	a, _ := board.Tasks.Create(models.TaskInput{Title: "Alpha", DueDate: "2026-03-10"})
	_, _ = board.Tasks.Create(models.TaskInput{Title: "Beta"})
	_, _ = board.Tasks.Complete(a.ID)

	origFilter, origJSON := taskListFilter, taskListJSON
	defer func() { taskListFilter, taskListJSON = origFilter, origJSON }()
	taskListJSON = false

	taskListFilter = "all"
	out, err := runCmd(t, taskListCmd)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "[x]") || !strings.Contains(out, "Alpha") || !strings.Contains(out, "Beta") {
		t.Errorf("unexpected output:\n%s", out)
	}
	if strings.Index(out, "Alpha") > strings.Index(out, "Beta") {
		t.Errorf("tasks should be listed in creation order:\n%s", out)
	}

	taskListFilter = "pending"
	out, _ = runCmd(t, taskListCmd)
	if strings.Contains(out, "Alpha") || !strings.Contains(out, "Beta") {
		t.Errorf("pending filter output:\n%s", out)
	}
}

func TestTaskList_EmptyAndJSON(t *testing.T) {
	board, _, _ := useTestBoard(t)

	origFilter, origJSON := taskListFilter, taskListJSON
	defer func() { taskListFilter, taskListJSON = origFilter, origJSON }()
	taskListFilter = "completed"
	taskListJSON = false

	out, err := runCmd(t, taskListCmd)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "No tasks found.") {
		t.Errorf("unexpected output: %q", out)
	}

	_, _ = board.Tasks.Create(models.TaskInput{Title: "Gamma"})
	taskListFilter = "all"
	taskListJSON = true
	out, err = runCmd(t, taskListCmd)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var tasks []models.Task
	if err := json.Unmarshal([]byte(out), &tasks); err != nil {
		t.Fatalf("unmarshalling JSON output: %v\n%s", err, out)
	}
	if len(tasks) != 1 || tasks[0].Title != "Gamma" {
		t.Errorf("unexpected tasks %+v", tasks)
	}
}

func TestTaskList_InvalidFilter(t *testing.T) {
	useTestBoard(t)

	orig := taskListFilter
	defer func() { taskListFilter = orig }()
	taskListFilter = "done"

	if _, err := runCmd(t, taskListCmd); err == nil || !strings.Contains(err.Error(), "invalid filter") {
		t.Errorf("expected invalid filter error, got %v", err)
	}
}

// --- task complete / delete Tests ---

func TestTaskComplete(t *testing.T) {
	board, _, _ := useTestBoard(t)
	task, _ := board.Tasks.Create(models.TaskInput{Title: "Call bank"})
	id := strconv.FormatInt(task.ID, 10)

	out, err := runCmd(t, taskCompleteCmd, id)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "Completed task") {
		t.Errorf("unexpected output: %q", out)
	}

	out, err = runCmd(t, taskCompleteCmd, id)
	if err != nil {
		t.Fatalf("completing twice should not error: %v", err)
	}
	if !strings.Contains(out, "not found or already completed") {
		t.Errorf("unexpected output: %q", out)
	}
}

func TestTaskComplete_InvalidID(t *testing.T) {
	useTestBoard(t)

	if _, err := runCmd(t, taskCompleteCmd, "abc"); err == nil || !strings.Contains(err.Error(), "invalid task id") {
		t.Errorf("expected invalid task id error, got %v", err)
	}
}

func TestTaskComplete_PersistenceFailure(t *testing.T) {
	board, _, store := useTestBoard(t)
	task, _ := board.Tasks.Create(models.TaskInput{Title: "Call bank"})
	store.FailWrites(true)

	_, err := runCmd(t, taskCompleteCmd, strconv.FormatInt(task.ID, 10))
	if err == nil {
		t.Fatal("expected persistence error")
	}
	if !core.IsPersistence(err) {
		t.Errorf("expected a persistence error, got %v", err)
	}
	if got, _ := board.Tasks.Get(task.ID); got.Completed {
		t.Error("task should stay pending after a failed save")
	}
}

func TestTaskDelete(t *testing.T) {
	board, _, _ := useTestBoard(t)
	task, _ := board.Tasks.Create(models.TaskInput{Title: "Old"})

	if _, err := runCmd(t, taskDeleteCmd, strconv.FormatInt(task.ID, 10)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if board.Tasks.Counts().Total != 0 {
		t.Error("expected task to be deleted")
	}

	// Unknown ids are not an error.
	if _, err := runCmd(t, taskDeleteCmd, "12345"); err != nil {
		t.Errorf("deleting unknown id: %v", err)
	}
}

// --- completion helpers ---

func TestCompleteTaskIDs(t *testing.T) {
	board, _, _ := useTestBoard(t)
	a, _ := board.Tasks.Create(models.TaskInput{Title: "Alpha"})
	b, _ := board.Tasks.Create(models.TaskInput{Title: "Beta"})
	_, _ = board.Tasks.Complete(a.ID)

	ids, _ := completeTaskIDs(models.FilterPending)(&cobra.Command{}, nil, "")
	if len(ids) != 1 || !strings.HasPrefix(ids[0], strconv.FormatInt(b.ID, 10)+"\t") {
		t.Errorf("expected only pending task %d, got %v", b.ID, ids)
	}

	ids, _ = completeTaskIDs(models.FilterAll)(&cobra.Command{}, []string{"already"}, "")
	if len(ids) != 0 {
		t.Errorf("expected no completions after the first argument, got %v", ids)
	}
}
