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

// Package grid provides a self-tuning spatial load index over a rectangle.
// Load recorded at a point accumulates in the leaf of a quadtree containing
// that point; leaves under sustained load subdivide on the write path, and
// quadruplets of leaves whose load has fallen are merged back by periodic
// rebalance sweeps, while decay sweeps let load fade absent new activity.
//
// A Grid is safe for concurrent use.  Every operation holds a single
// grid-wide lock for its whole duration, so no operation ever observes a
// partially subdivided or partially merged tree.  Operations that must be
// composed atomically run inside Update, which hands the callback a Tx bound
// to the already held lock.
package grid

import (
	"errors"
	"fmt"
	"sync"

	"github.com/9rum/fractalgrid/internal/quadtree"
	"github.com/golang/glog"
	"github.com/prometheus/client_golang/prometheus"
)

// DecayFloor is the load below which a decayed leaf is reset to 0.
const DecayFloor = 1e-6

// ErrInvalidCoordinate is returned when recording load at a point outside
// the grid.
var ErrInvalidCoordinate = errors.New("invalid coordinate")

// ErrInvalidDecayFactor is returned when decaying by a factor outside (0, 1].
var ErrInvalidDecayFactor = errors.New("invalid decay factor")

// CoordinateError describes a coordinate outside the half-open range
// [Min, Max) of its axis.
type CoordinateError struct {
	Axis  string
	Value float64
	Min   float64
	Max   float64
}

func (e *CoordinateError) Error() string {
	return fmt.Sprintf("%v: %s = %v is not in [%v, %v)", ErrInvalidCoordinate, e.Axis, e.Value, e.Min, e.Max)
}

// Is makes errors.Is(err, ErrInvalidCoordinate) hold for every CoordinateError.
func (e *CoordinateError) Is(target error) bool {
	return target == ErrInvalidCoordinate
}

// Stats summarizes the shape of the tree.
type Stats struct {
	Nodes  int
	Leaves int
	Depth  int
}

// Grid is an adaptive quadtree of load counters.
type Grid struct {
	mu   sync.Mutex
	tree  *quadtree.Tree
	opts  Options
	depth int
}

// New creates a new grid with the given options.
func New(opts Options) (*Grid, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	g := &Grid{
		tree: quadtree.New(opts.Bounds),
		opts: opts,
	}
	leavesGauge.Set(1)
	depthGauge.Set(0)
	return g, nil
}

// Update runs fn while holding the grid lock.  The Tx is only valid for the
// duration of fn and must not be retained.  fn must not block, and must not
// call any method of the grid itself, which would deadlock.
func (g *Grid) Update(fn func(tx *Tx) error) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	return fn(&Tx{grid: g})
}

// Get records one unit of load at the given point and returns the new load of
// the leaf containing it.  Despite its name, Get is a write; unlike Set, it
// never subdivides.
func (g *Grid) Get(x, y float64) (load float64, err error) {
	err = g.Update(func(tx *Tx) (err error) {
		load, err = tx.Get(x, y)
		return
	})
	return
}

// Set records one unit of load at the given point and subdivides the leaf
// containing it once its load exceeds the split threshold, unless the leaf is
// already at the maximum level.
func (g *Grid) Set(x, y float64) error {
	var r record
	err := g.Update(func(tx *Tx) (err error) {
		r, err = tx.record(x, y, true)
		return
	})
	if r.subdivided {
		glog.V(2).Infof("subdivided leaf at level %d: %v (load = %.2f)", r.level, r.bounds, r.load)
	}
	return err
}

// PeriodicRebalance merges, bottom-up, every quadruplet of sibling leaves
// whose total load is below the merge threshold, and returns the number of
// merges performed.
func (g *Grid) PeriodicRebalance() (merges int) {
	g.Update(func(tx *Tx) error {
		merges = tx.PeriodicRebalance()
		return nil
	})
	if 0 < merges {
		glog.V(1).Infof("merged %d quadruplets", merges)
	}
	return
}

// DecayLoad multiplies the load of every leaf by the given factor, which must
// lie in (0, 1].  Loads that fall below DecayFloor are reset to 0.
func (g *Grid) DecayLoad(factor float64) error {
	return g.Update(func(tx *Tx) error {
		return tx.DecayLoad(factor)
	})
}

// Leaves returns a consistent snapshot of all current leaves.
func (g *Grid) Leaves() (leaves []quadtree.Leaf) {
	g.Update(func(tx *Tx) error {
		leaves = tx.Leaves()
		return nil
	})
	return
}

// Options returns the current options.
func (g *Grid) Options() (opts Options) {
	g.Update(func(tx *Tx) error {
		opts = tx.Options()
		return nil
	})
	return
}

// Configure applies fn to a copy of the current options and installs the
// result if it is valid.  Bounds and MaxLevel cannot be changed.
func (g *Grid) Configure(fn func(opts *Options)) error {
	var opts Options
	err := g.Update(func(tx *Tx) error {
		if err := tx.Configure(fn); err != nil {
			return err
		}
		opts = tx.Options()
		return nil
	})
	if err != nil {
		return err
	}
	glog.Infof("configured split threshold: %v merge threshold: %v decay factor: %v decay interval: %v",
		opts.SplitThreshold, opts.MergeThreshold, opts.DecayFactor, opts.DecayInterval)
	return nil
}

// Stats returns the current shape of the tree.
func (g *Grid) Stats() (stats Stats) {
	g.Update(func(tx *Tx) error {
		stats = tx.Stats()
		return nil
	})
	return
}

// Tx exposes the grid operations to a caller that already holds the grid
// lock.
type Tx struct {
	grid *Grid
}

// record is the outcome of recording load at a point.
type record struct {
	bounds     quadtree.Bounds
	level      int
	load       float64
	subdivided bool
}

// checkCoordinate checks that the given coordinate lies within [min, max).
func checkCoordinate(axis string, value, min, max float64) error {
	if min <= value && value < max {
		return nil
	}
	invalidCoordinatesTotal.Inc()
	return &CoordinateError{Axis: axis, Value: value, Min: min, Max: max}
}

// record adds one unit of load to the leaf containing the given point and, if
// grow is set, applies the split policy to that leaf.
func (tx *Tx) record(x, y float64, grow bool) (r record, err error) {
	g := tx.grid
	b := g.opts.Bounds
	if err = checkCoordinate("x", x, b.MinX, b.MaxX); err != nil {
		return
	}
	if err = checkCoordinate("y", y, b.MinY, b.MaxY); err != nil {
		return
	}

	id := g.tree.FindLeaf(x, y)
	r.bounds, r.level = g.tree.Bounds(id), g.tree.Level(id)
	r.load = g.tree.AddLoad(id, 1.)

	if !grow {
		recordsTotal.WithLabelValues("get").Inc()
		return
	}
	recordsTotal.WithLabelValues("set").Inc()

	if g.opts.SplitThreshold < r.load && r.level < g.opts.MaxLevel {
		g.tree.Subdivide(id)
		r.subdivided = true
		splitsTotal.Inc()
		leavesGauge.Set(float64(g.tree.LeafCount()))
		if g.depth < r.level+1 {
			g.depth = r.level + 1
			depthGauge.Set(float64(g.depth))
		}
	}
	return
}

// Get records one unit of load at the given point and returns the new load of
// the containing leaf.
func (tx *Tx) Get(x, y float64) (float64, error) {
	r, err := tx.record(x, y, false)
	return r.load, err
}

// Set records one unit of load at the given point and applies the split
// policy to the containing leaf.
func (tx *Tx) Set(x, y float64) error {
	_, err := tx.record(x, y, true)
	return err
}

// PeriodicRebalance performs a post-order merge sweep over the whole tree.
func (tx *Tx) PeriodicRebalance() (merges int) {
	g := tx.grid
	timer := prometheus.NewTimer(rebalanceDuration)
	merges = g.tree.MergeAll(g.opts.MergeThreshold)
	timer.ObserveDuration()

	mergesTotal.Add(float64(merges))
	leavesGauge.Set(float64(g.tree.LeafCount()))
	g.depth = g.tree.Depth()
	depthGauge.Set(float64(g.depth))
	return
}

// DecayLoad multiplies the load of every leaf by the given factor.  The tree
// is left untouched unless the factor lies in (0, 1].
func (tx *Tx) DecayLoad(factor float64) error {
	if !(0 < factor && factor <= 1) {
		return fmt.Errorf("%w: %v is not in (0, 1]", ErrInvalidDecayFactor, factor)
	}
	tx.grid.tree.Decay(factor, DecayFloor)
	decaysTotal.Inc()
	return nil
}

// Leaves returns a snapshot of all current leaves.
func (tx *Tx) Leaves() []quadtree.Leaf {
	return tx.grid.tree.Leaves()
}

// Options returns the current options.
func (tx *Tx) Options() Options {
	return tx.grid.opts
}

// Configure applies fn to a copy of the current options and installs the
// result if it is valid.
func (tx *Tx) Configure(fn func(opts *Options)) error {
	opts := tx.grid.opts
	fn(&opts)
	if opts.Bounds != tx.grid.opts.Bounds || opts.MaxLevel != tx.grid.opts.MaxLevel {
		return ErrImmutableOption
	}
	if err := opts.Validate(); err != nil {
		return err
	}
	tx.grid.opts = opts
	return nil
}

// Stats returns the current shape of the tree.
func (tx *Tx) Stats() Stats {
	t := tx.grid.tree
	return Stats{
		Nodes:  t.Len(),
		Leaves: t.LeafCount(),
		Depth:  t.Depth(),
	}
}
