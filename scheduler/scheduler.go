// Copyright 2022 Sogang University
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package scheduler provides primitives for running the periodic activities
// around a grid: writer tasks that record load at sampled points, a decay task
// that lets load fade, and an adaptive controller that merges cold regions.
//
// Every task runs in its own goroutine and checks its own stop flag once per
// iteration.  Stopping is cooperative: it never interrupts an iteration in
// progress, including the sleep that paces it, so the latency of Stop is
// bounded by one iteration of the task.  Writers additionally poll a pause
// flag shared through the scheduler.
package scheduler

import (
	"sync"
	"sync/atomic"

	"github.com/golang/glog"
)

// Task represents a unit of periodic work.
// All implementations must embed TaskBase for forward compatibility.
type Task interface {
	// Name identifies the task in logs and status reports.
	Name() string

	// Iterate performs a single iteration, including any sleep that paces
	// the task.  It must not block indefinitely.
	Iterate()

	// OnStop is called once after the last iteration.
	OnStop()
}

// TaskBase must be embedded to have forward compatible implementations.
type TaskBase struct {
}

func (TaskBase) Name() (_ string) {
	return
}
func (TaskBase) Iterate() {}
func (TaskBase) OnStop()  {}

// Pauser reports whether producers should currently hold off.
type Pauser interface {
	Paused() bool
}

// Handle controls a single running task.
type Handle struct {
	task       Task
	stop       atomic.Bool
	iterations atomic.Int64
	done       chan struct{}
}

// Name returns the name of the task.
func (h *Handle) Name() string {
	return h.task.Name()
}

// Stop requests the task to stop before its next iteration.  This does not
// wait for the task; see Wait.
func (h *Handle) Stop() {
	h.stop.Store(true)
}

// Stopping reports whether a stop has been requested.
func (h *Handle) Stopping() bool {
	return h.stop.Load()
}

// Wait blocks until the task has finished its current iteration and stopped.
func (h *Handle) Wait() {
	<-h.done
}

// Done returns a channel that is closed once the task has stopped.
func (h *Handle) Done() <-chan struct{} {
	return h.done
}

// Iterations returns the number of iterations completed so far.
func (h *Handle) Iterations() int64 {
	return h.iterations.Load()
}

// TaskStatus is a snapshot of the state of a task.
type TaskStatus struct {
	Name       string
	Iterations int64
	Stopped    bool
}

// Scheduler runs tasks and owns the pause flag shared with writers.
type Scheduler struct {
	mu      sync.Mutex
	handles []*Handle
	paused  atomic.Bool
}

// New creates a new scheduler with no tasks.
func New() *Scheduler {
	return &Scheduler{}
}

// Go starts the given task in a new goroutine.
func (s *Scheduler) Go(task Task) *Handle {
	h := &Handle{
		task: task,
		done: make(chan struct{}),
	}
	s.mu.Lock()
	s.handles = append(s.handles, h)
	s.mu.Unlock()

	glog.Infof("task %s started", task.Name())
	go run(h)
	return h
}

// run iterates the task until a stop is requested.
func run(h *Handle) {
	defer close(h.done)
	for !h.stop.Load() {
		h.task.Iterate()
		h.iterations.Add(1)
	}
	h.task.OnStop()
	glog.Infof("task %s stopped after %d iterations", h.task.Name(), h.iterations.Load())
}

// Pause asks writers to hold off from their next iteration on.
func (s *Scheduler) Pause() {
	if !s.paused.Swap(true) {
		glog.Info("pausing workers")
	}
}

// Resume lets paused writers continue.
func (s *Scheduler) Resume() {
	if s.paused.Swap(false) {
		glog.Info("resuming workers")
	}
}

// Paused reports whether writers are paused.
func (s *Scheduler) Paused() bool {
	return s.paused.Load()
}

// Stop requests every task to stop.  This does not wait for the tasks; see
// Wait.
func (s *Scheduler) Stop() {
	for _, h := range s.snapshot() {
		h.Stop()
	}
}

// Wait blocks until every task has stopped.
func (s *Scheduler) Wait() {
	for _, h := range s.snapshot() {
		h.Wait()
	}
}

// Status returns the state of every task in the order they were started.
func (s *Scheduler) Status() []TaskStatus {
	handles := s.snapshot()
	out := make([]TaskStatus, 0, len(handles))
	for _, h := range handles {
		stopped := false
		select {
		case <-h.done:
			stopped = true
		default:
		}
		out = append(out, TaskStatus{
			Name:       h.Name(),
			Iterations: h.Iterations(),
			Stopped:    stopped,
		})
	}
	return out
}

func (s *Scheduler) snapshot() []*Handle {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*Handle(nil), s.handles...)
}
