// Package schedule runs at most one delayed task per key.
//
// Scheduling a key that already has a pending task cancels the old task and
// restarts the delay, so bursts of calls coalesce into one run of the last
// task. Nothing is queued.
package schedule

import (
	"sort"
	"sync"
	"time"
)

// Executor runs a fired task. The default calls it directly; owners that
// guard state with their own lock install an executor that takes that lock.
type Executor func(run func())

type entry struct {
	timer *time.Timer
	task  func()
	gen   uint64
}

// Scheduler is a keyed debouncer. The zero value is not usable; use New.
type Scheduler struct {
	mu      sync.Mutex
	delay   time.Duration
	exec    Executor
	entries map[string]*entry
	gen     uint64
	stopped bool
}

// New creates a scheduler that delays tasks by delay. A nil exec runs tasks
// on the timer goroutine.
func New(delay time.Duration, exec Executor) *Scheduler {
	if exec == nil {
		exec = func(run func()) { run() }
	}
	return &Scheduler{
		delay:   delay,
		exec:    exec,
		entries: make(map[string]*entry),
	}
}

// Delay returns the debounce quantum.
func (s *Scheduler) Delay() time.Duration {
	return s.delay
}

// Schedule (re)starts the delay for key and replaces its task.
func (s *Scheduler) Schedule(key string, task func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return
	}
	if old, ok := s.entries[key]; ok {
		old.timer.Stop()
	}
	s.gen++
	gen := s.gen
	e := &entry{task: task, gen: gen}
	e.timer = time.AfterFunc(s.delay, func() {
		s.exec(func() {
			if run := s.take(key, gen); run != nil {
				run()
			}
		})
	})
	s.entries[key] = e
}

// Cancel drops the pending task for key and reports whether one existed.
func (s *Scheduler) Cancel(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[key]
	if !ok {
		return false
	}
	e.timer.Stop()
	delete(s.entries, key)
	return true
}

// Pending reports whether key has a task waiting.
func (s *Scheduler) Pending(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.entries[key]
	return ok
}

// Flush runs the pending task for key immediately on the calling goroutine,
// bypassing the executor. It reports whether a task ran.
func (s *Scheduler) Flush(key string) bool {
	s.mu.Lock()
	e, ok := s.entries[key]
	if ok {
		e.timer.Stop()
		delete(s.entries, key)
	}
	s.mu.Unlock()
	if !ok {
		return false
	}
	e.task()
	return true
}

// FlushAll runs every pending task immediately and returns how many ran.
func (s *Scheduler) FlushAll() int {
	s.mu.Lock()
	pending := make([]*entry, 0, len(s.entries))
	for key, e := range s.entries {
		e.timer.Stop()
		pending = append(pending, e)
		delete(s.entries, key)
	}
	s.mu.Unlock()

	// Run in scheduling order so later edits win.
	sort.Slice(pending, func(i, j int) bool { return pending[i].gen < pending[j].gen })
	for _, e := range pending {
		e.task()
	}
	return len(pending)
}

// Stop cancels everything and rejects further scheduling.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for key, e := range s.entries {
		e.timer.Stop()
		delete(s.entries, key)
	}
	s.stopped = true
}

// take claims the task for key if it still belongs to generation gen.
func (s *Scheduler) take(key string, gen uint64) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[key]
	if !ok || e.gen != gen {
		return nil
	}
	delete(s.entries, key)
	return e.task
}
