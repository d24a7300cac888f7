package core

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestManualScheduler_EveryFiresPerInterval(t *testing.T) {
	s := NewManualScheduler()
	count := 0
	stop := s.Every(time.Second, func() { count++ })

	s.Advance(500 * time.Millisecond)
	if count != 0 {
		t.Fatalf("fired early: count = %d", count)
	}
	s.Advance(2500 * time.Millisecond)
	if count != 3 {
		t.Errorf("count = %d, want 3", count)
	}

	stop()
	stop()
	s.Advance(5 * time.Second)
	if count != 3 {
		t.Errorf("fired after stop: count = %d", count)
	}
	if s.Pending() != 0 {
		t.Errorf("Pending = %d, want 0", s.Pending())
	}
}

func TestManualScheduler_AfterFiresOnce(t *testing.T) {
	s := NewManualScheduler()
	count := 0
	s.After(2*time.Second, func() { count++ })

	s.Advance(time.Second)
	if count != 0 {
		t.Fatal("fired before delay")
	}
	s.Advance(10 * time.Second)
	if count != 1 {
		t.Errorf("count = %d, want 1", count)
	}
	if got := s.Now(); got != 11*time.Second {
		t.Errorf("Now = %v, want 11s", got)
	}
}

func TestManualScheduler_CallbackCanScheduleAndCancel(t *testing.T) {
	s := NewManualScheduler()
	var order []string
	var stopTick func()
	stopTick = s.Every(time.Second, func() {
		order = append(order, "tick")
		if len(order) == 2 {
			stopTick()
			s.After(time.Second, func() { order = append(order, "after") })
		}
	})

	s.Advance(10 * time.Second)
	want := []string{"tick", "tick", "after"}
	if len(order) != len(want) {
		t.Fatalf("order = %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Errorf("order[%d] = %q, want %q", i, order[i], want[i])
		}
	}
}

func TestManualScheduler_SameDueTimeRunsInScheduleOrder(t *testing.T) {
	s := NewManualScheduler()
	var order []int
	s.After(time.Second, func() { order = append(order, 1) })
	s.After(time.Second, func() { order = append(order, 2) })

	s.Advance(time.Second)
	if len(order) != 2 || order[0] != 1 || order[1] != 2 {
		t.Errorf("order = %v, want [1 2]", order)
	}
}

func TestRealScheduler_EveryAndStop(t *testing.T) {
	s := NewRealScheduler()
	var count atomic.Int32
	stop := s.Every(5*time.Millisecond, func() { count.Add(1) })

	deadline := time.Now().Add(2 * time.Second)
	for count.Load() < 2 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	stop()
	stop()
	if count.Load() < 2 {
		t.Fatalf("ticker fired %d times, want at least 2", count.Load())
	}
}

func TestRealScheduler_AfterCanBeStopped(t *testing.T) {
	s := NewRealScheduler()
	var fired atomic.Bool
	stop := s.After(time.Hour, func() { fired.Store(true) })
	stop()
	if fired.Load() {
		t.Error("stopped callback fired")
	}
}
