package core

import (
	"sort"
	"sync"
	"time"
)

// Scheduler runs the timer's recurring tick and its delayed mode transition.
// The returned stop function cancels future calls; it is safe to call more
// than once.
type Scheduler interface {
	Every(interval time.Duration, fn func()) (stop func())
	After(delay time.Duration, fn func()) (stop func())
}

// realScheduler binds Scheduler to the wall clock.
type realScheduler struct{}

// NewRealScheduler returns a Scheduler backed by time.Ticker and time.AfterFunc.
func NewRealScheduler() Scheduler {
	return realScheduler{}
}

func (realScheduler) Every(interval time.Duration, fn func()) func() {
	ticker := time.NewTicker(interval)
	stopCh := make(chan struct{})
	var once sync.Once

	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-stopCh:
				return
			case <-ticker.C:
				fn()
			}
		}
	}()

	return func() { once.Do(func() { close(stopCh) }) }
}

func (realScheduler) After(delay time.Duration, fn func()) func() {
	t := time.AfterFunc(delay, fn)
	return func() { t.Stop() }
}

// ManualScheduler is a Scheduler driven by simulated time. Callbacks run
// synchronously inside Advance, in due-time order.
type ManualScheduler struct {
	mu    sync.Mutex
	now   time.Duration
	seq   int
	tasks []*manualTask
}

type manualTask struct {
	next     time.Duration
	interval time.Duration
	seq      int
	fn       func()
	stopped  bool
}

// NewManualScheduler creates a ManualScheduler at simulated time zero.
func NewManualScheduler() *ManualScheduler {
	return &ManualScheduler{}
}

func (s *ManualScheduler) Every(interval time.Duration, fn func()) func() {
	return s.add(interval, interval, fn)
}

func (s *ManualScheduler) After(delay time.Duration, fn func()) func() {
	return s.add(delay, 0, fn)
}

func (s *ManualScheduler) add(first, interval time.Duration, fn func()) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	task := &manualTask{next: s.now + first, interval: interval, seq: s.seq, fn: fn}
	s.tasks = append(s.tasks, task)
	return func() {
		s.mu.Lock()
		task.stopped = true
		s.mu.Unlock()
	}
}

// Advance moves simulated time forward by d, firing every callback that
// becomes due. Callbacks may schedule or cancel other callbacks.
func (s *ManualScheduler) Advance(d time.Duration) {
	s.mu.Lock()
	target := s.now + d
	for {
		task := s.nextDueLocked(target)
		if task == nil {
			break
		}
		s.now = task.next
		if task.interval > 0 {
			task.next += task.interval
		} else {
			task.stopped = true
		}
		s.mu.Unlock()
		task.fn()
		s.mu.Lock()
	}
	s.now = target
	s.compactLocked()
	s.mu.Unlock()
}

// Now returns the simulated time elapsed since creation.
func (s *ManualScheduler) Now() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.now
}

// Pending returns the number of live scheduled callbacks.
func (s *ManualScheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, t := range s.tasks {
		if !t.stopped {
			n++
		}
	}
	return n
}

func (s *ManualScheduler) nextDueLocked(target time.Duration) *manualTask {
	var due []*manualTask
	for _, t := range s.tasks {
		if !t.stopped && t.next <= target {
			due = append(due, t)
		}
	}
	if len(due) == 0 {
		return nil
	}
	sort.Slice(due, func(i, j int) bool {
		if due[i].next != due[j].next {
			return due[i].next < due[j].next
		}
		return due[i].seq < due[j].seq
	})
	return due[0]
}

func (s *ManualScheduler) compactLocked() {
	live := s.tasks[:0]
	for _, t := range s.tasks {
		if !t.stopped {
			live = append(live, t)
		}
	}
	s.tasks = live
}
