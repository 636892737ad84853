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

package scheduler

import (
	"fmt"
	"time"

	"github.com/9rum/fractalgrid/grid"
	"github.com/9rum/fractalgrid/internal/data"
	"github.com/golang/glog"
)

const (
	DefaultControllerInterval = 3 * time.Second
	DefaultWritePeriod        = 5 * time.Millisecond
	DefaultPausePoll          = 100 * time.Millisecond
)

// DecayTask periodically decays the load of every leaf.  Both the interval and
// the factor are read from the grid options at every iteration, so that
// reconfiguration takes effect from the next iteration on.
type DecayTask struct {
	TaskBase
	grid *grid.Grid
}

// NewDecayTask creates a new decay task for the given grid.
func NewDecayTask(g *grid.Grid) *DecayTask {
	return &DecayTask{grid: g}
}

func (t *DecayTask) Name() string {
	return "decay"
}

func (t *DecayTask) Iterate() {
	time.Sleep(t.grid.Options().DecayInterval)

	var factor float64
	err := t.grid.Update(func(tx *grid.Tx) error {
		factor = tx.Options().DecayFactor
		return tx.DecayLoad(factor)
	})
	if err != nil {
		glog.Warningf("%s: %v", t.Name(), err)
		return
	}
	glog.V(1).Infof("decayed load by %v", factor)
}

// Controller periodically runs a merge sweep.
type Controller struct {
	TaskBase
	grid     *grid.Grid
	interval time.Duration
}

// NewController creates a new controller that rebalances the given grid every
// interval.  A non-positive interval selects DefaultControllerInterval.
func NewController(g *grid.Grid, interval time.Duration) *Controller {
	if interval <= 0 {
		interval = DefaultControllerInterval
	}
	return &Controller{
		grid:     g,
		interval: interval,
	}
}

func (c *Controller) Name() string {
	return "controller"
}

func (c *Controller) Iterate() {
	time.Sleep(c.interval)

	var (
		opts   grid.Options
		merges int
	)
	c.grid.Update(func(tx *grid.Tx) error {
		opts = tx.Options()
		merges = tx.PeriodicRebalance()
		return nil
	})
	glog.V(1).Infof("rebalanced with merge threshold %v: %d merges", opts.MergeThreshold, merges)
}

// Writer records load at points drawn from a sampler.  While the pauser
// reports paused, it polls without writing.
type Writer struct {
	TaskBase
	rank    int
	grid    *grid.Grid
	sampler data.Sampler
	pauser  Pauser
	period  time.Duration
	poll    time.Duration
}

// NewWriter creates a new writer.  The sampler is owned by the writer and must
// not be shared.  Non-positive durations select DefaultWritePeriod and
// DefaultPausePoll respectively.
func NewWriter(rank int, g *grid.Grid, sampler data.Sampler, pauser Pauser, period, poll time.Duration) *Writer {
	if period <= 0 {
		period = DefaultWritePeriod
	}
	if poll <= 0 {
		poll = DefaultPausePoll
	}
	return &Writer{
		rank:    rank,
		grid:    g,
		sampler: sampler,
		pauser:  pauser,
		period:  period,
		poll:    poll,
	}
}

func (w *Writer) Name() string {
	return fmt.Sprintf("writer-%d", w.rank)
}

func (w *Writer) Iterate() {
	if w.pauser != nil && w.pauser.Paused() {
		time.Sleep(w.poll)
		return
	}
	x, y := w.sampler.Sample()
	if err := w.grid.Set(x, y); err != nil {
		glog.Warningf("%s: %v", w.Name(), err)
	}
	time.Sleep(w.period)
}
