package core

import (
	"testing"
	"time"

	"github.com/valter-silva-au/focusboard/pkg/models"
)

func newTestDashboard(t *testing.T, kv KeyValueStore, sched Scheduler, sinks ...MessageSink) *Dashboard {
	t.Helper()
	d, err := NewDashboard(DashboardConfig{Store: kv, Scheduler: sched, Sinks: sinks})
	if err != nil {
		t.Fatalf("NewDashboard: %v", err)
	}
	t.Cleanup(d.Close)
	return d
}

func TestNewDashboard_RequiresStore(t *testing.T) {
	if _, err := NewDashboard(DashboardConfig{}); err == nil {
		t.Fatal("expected error for nil store")
	}
}

func TestNewDashboard_PropagatesLoadError(t *testing.T) {
	kv := newInMemoryKV()
	kv.values[KeyTasks] = "[unterminated"
	_, err := NewDashboard(DashboardConfig{Store: kv, Scheduler: NewManualScheduler()})
	if !IsPersistence(err) {
		t.Fatalf("expected PersistenceError, got %v", err)
	}
}

func TestDashboard_SnapshotReflectsServices(t *testing.T) {
	kv := newInMemoryKV()
	kv.values[KeyCompletedSessions] = "2"
	kv.values[KeyFocusedMinutes] = "50"
	kv.values[KeyDarkMode] = "true"
	d := newTestDashboard(t, kv, NewManualScheduler())

	a, _ := d.Tasks.Create(models.TaskInput{Title: "a"})
	if _, err := d.Tasks.Create(models.TaskInput{Title: "b"}); err != nil {
		t.Fatalf("create: %v", err)
	}
	_, _ = d.Tasks.Complete(a.ID)

	snap := d.Snapshot(models.FilterPending)
	if len(snap.Tasks) != 1 || snap.Tasks[0].Title != "b" {
		t.Errorf("Tasks = %+v, want only b", snap.Tasks)
	}
	if snap.Counts != (models.TaskCounts{Total: 2, Pending: 1, Completed: 1}) {
		t.Errorf("Counts = %+v", snap.Counts)
	}
	if snap.Timer != models.DefaultTimerState() {
		t.Errorf("Timer = %+v", snap.Timer)
	}
	if snap.Stats != (models.Statistics{CompletedSessions: 2, FocusedMinutes: 50}) {
		t.Errorf("Stats = %+v", snap.Stats)
	}
	if !snap.DarkMode {
		t.Error("DarkMode should be loaded as true")
	}
}

func TestDashboard_ChangesNotifiedOnTaskMutation(t *testing.T) {
	d := newTestDashboard(t, newInMemoryKV(), NewManualScheduler())
	changes := d.Changes(4)

	task, _ := d.Tasks.Create(models.TaskInput{Title: "watch me"})
	_ = d.Tasks.Delete(task.ID)

	for i := 0; i < 2; i++ {
		select {
		case <-changes:
		default:
			t.Fatalf("missing change notification %d", i)
		}
	}
}

func TestDashboard_TimerMessagesReachAllSinks(t *testing.T) {
	sched := NewManualScheduler()
	var extra []string
	d := newTestDashboard(t, newInMemoryKV(), sched, MessageSinkFunc(func(m string) { extra = append(extra, m) }))
	messages := d.Messages().Subscribe(1)

	d.Timer.Start()
	sched.Advance(1500 * time.Second)

	select {
	case m := <-messages:
		if m != WorkCompleteMessage {
			t.Errorf("broadcast message = %q", m)
		}
	default:
		t.Fatal("no message broadcast")
	}
	if len(extra) != 1 || extra[0] != WorkCompleteMessage {
		t.Errorf("extra sink got %v", extra)
	}
}

func TestDashboard_CloseStopsTimer(t *testing.T) {
	sched := NewManualScheduler()
	d, err := NewDashboard(DashboardConfig{Store: newInMemoryKV(), Scheduler: sched})
	if err != nil {
		t.Fatalf("NewDashboard: %v", err)
	}
	d.Timer.Start()
	d.Close()

	if sched.Pending() != 0 {
		t.Errorf("Pending = %d after Close, want 0", sched.Pending())
	}
	if d.Timer.State().Running {
		t.Error("timer still running after Close")
	}
}
