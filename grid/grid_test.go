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

package grid

import (
	"errors"
	"math"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/9rum/fractalgrid/internal/quadtree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newGrid creates a grid over the unit square with the given thresholds.
func newGrid(t *testing.T, maxLevel int, splitThreshold, mergeThreshold float64) *Grid {
	t.Helper()
	opts := DefaultOptions()
	opts.MaxLevel = maxLevel
	opts.SplitThreshold = splitThreshold
	opts.MergeThreshold = mergeThreshold
	g, err := New(opts)
	require.NoError(t, err)
	return g
}

// requirePartition checks that the leaves tile the grid bounds.
func requirePartition(t *testing.T, g *Grid) {
	t.Helper()
	leaves := g.Leaves()
	area := 0.
	for _, leaf := range leaves {
		area += leaf.Bounds.Area()
		require.GreaterOrEqual(t, leaf.Load, 0.)
		require.LessOrEqual(t, leaf.Level, g.Options().MaxLevel)
	}
	require.InDelta(t, g.Options().Bounds.Area(), area, 1e-9)
	for i := 0; i < 200; i++ {
		x, y := rand.Float64(), rand.Float64()
		hits := 0
		for _, leaf := range leaves {
			if leaf.Bounds.Contains(x, y) {
				hits++
			}
		}
		require.Equal(t, 1, hits, "(%v, %v)", x, y)
	}
}

func TestSplitScenario(t *testing.T) {
	g := newGrid(t, 6, 5, 2)

	for i := 1; i <= 5; i++ {
		require.NoError(t, g.Set(.5, .5))
		leaves := g.Leaves()
		require.Len(t, leaves, 1, "call %d", i)
		assert.Equal(t, float64(i), leaves[0].Load)
	}

	require.NoError(t, g.Set(.5, .5))
	leaves := g.Leaves()
	require.Len(t, leaves, 4)
	for _, leaf := range leaves {
		assert.Equal(t, 1, leaf.Level)
		assert.Equal(t, 1.5, leaf.Load)
	}
	assert.Equal(t, Stats{Nodes: 5, Leaves: 4, Depth: 1}, g.Stats())
}

func TestValidationScenario(t *testing.T) {
	g := newGrid(t, 6, 5, 2)

	for _, p := range [][2]float64{{1., .5}, {-.1, .5}, {.5, 1.}, {.5, -.1}, {math.NaN(), .5}, {math.Inf(1), .5}} {
		_, err := g.Get(p[0], p[1])
		require.ErrorIs(t, err, ErrInvalidCoordinate, "%v", p)
		require.ErrorIs(t, g.Set(p[0], p[1]), ErrInvalidCoordinate, "%v", p)

		var coordinate *CoordinateError
		require.True(t, errors.As(err, &coordinate))
	}
	assert.Zero(t, g.Leaves()[0].Load, "rejected records must not add load")

	load, err := g.Get(0., .999999)
	require.NoError(t, err)
	assert.Equal(t, 1., load)
}

func TestGetRecordsWithoutSplitting(t *testing.T) {
	g := newGrid(t, 6, 5, 2)

	for i := 1; i <= 20; i++ {
		load, err := g.Get(.25, .75)
		require.NoError(t, err)
		require.Equal(t, float64(i), load)
	}
	assert.Len(t, g.Leaves(), 1)

	// the next write applies the split policy to the overloaded leaf
	require.NoError(t, g.Set(.25, .75))
	assert.Len(t, g.Leaves(), 4)
}

func TestMergeScenario(t *testing.T) {
	g := newGrid(t, 6, 3, 10)

	for i := 0; i < 4; i++ {
		require.NoError(t, g.Set(.1, .1))
	}
	leaves := g.Leaves()
	require.Len(t, leaves, 4)
	sum := 0.
	for _, leaf := range leaves {
		sum += leaf.Load
	}
	require.Equal(t, 4., sum)

	assert.Equal(t, 1, g.PeriodicRebalance())
	leaves = g.Leaves()
	require.Len(t, leaves, 1)
	assert.Equal(t, 4., leaves[0].Load)
	assert.Equal(t, 0, leaves[0].Level)
}

func TestDecayScenario(t *testing.T) {
	g := newGrid(t, 6, 5, 2)
	_, err := g.Get(.3, .3)
	require.NoError(t, err)

	load := func() float64 { return g.Leaves()[0].Load }
	for step := 1; step <= 100; step++ {
		before := load()
		require.NoError(t, g.DecayLoad(.9))
		require.Less(t, load(), before, "step %d", step)
	}
	for step := 101; 0 < load(); step++ {
		require.Less(t, step, 200, "load never clamped")
		require.GreaterOrEqual(t, load(), DecayFloor)
		require.NoError(t, g.DecayLoad(.9))
	}
	assert.Zero(t, load())
}

func TestDecayRejectsBadFactors(t *testing.T) {
	g := newGrid(t, 6, 5, 2)
	_, err := g.Get(.5, .5)
	require.NoError(t, err)

	for _, factor := range []float64{math.NaN(), 0, -.5, 1.5, 3, math.Inf(1)} {
		err := g.DecayLoad(factor)
		require.ErrorIs(t, err, ErrInvalidDecayFactor, "factor %v", factor)
		assert.Equal(t, 1., g.Leaves()[0].Load, "factor %v", factor)
	}

	require.NoError(t, g.DecayLoad(1))
	assert.Equal(t, 1., g.Leaves()[0].Load)

	for i := 0; i < 5; i++ {
		require.NoError(t, g.Set(.5, .5))
	}
	assert.Len(t, g.Leaves(), 4)
	requirePartition(t, g)
}

func TestSplitGuard(t *testing.T) {
	g := newGrid(t, 3, 1, 0)

	for i := 0; i < 1000; i++ {
		require.NoError(t, g.Set(.7, .2))
	}
	stats := g.Stats()
	assert.Equal(t, 3, stats.Depth)
	assert.Equal(t, 10, stats.Leaves)

	leaves := g.Leaves()
	total := 0.
	for _, leaf := range leaves {
		require.LessOrEqual(t, leaf.Level, 3)
		total += leaf.Load
	}
	assert.InDelta(t, 1000., total, 1e-9)
	requirePartition(t, g)
}

func TestSplitThresholdIsStrict(t *testing.T) {
	g := newGrid(t, 6, 2, 0)
	require.NoError(t, g.Set(.5, .5))
	require.NoError(t, g.Set(.5, .5))
	assert.Len(t, g.Leaves(), 1, "load equal to the threshold must not split")
	require.NoError(t, g.Set(.5, .5))
	assert.Len(t, g.Leaves(), 4)
}

func TestRectangularBounds(t *testing.T) {
	opts := DefaultOptions()
	opts.Bounds = quadtree.Bounds{MinX: -180, MinY: -90, MaxX: 180, MaxY: 90}
	g, err := New(opts)
	require.NoError(t, err)

	for i := 0; i < 100; i++ {
		require.NoError(t, g.Set(-179.5, 89.9))
	}
	_, err = g.Get(180, 0)
	assert.ErrorIs(t, err, ErrInvalidCoordinate)
	_, err = g.Get(.5, -91)
	assert.ErrorIs(t, err, ErrInvalidCoordinate)
	assert.Equal(t, opts.MaxLevel, g.Stats().Depth)
}

func TestUpdateComposes(t *testing.T) {
	g := newGrid(t, 6, 3, 2)

	err := g.Update(func(tx *Tx) error {
		for i := 0; i < 4; i++ {
			if err := tx.Set(.5, .5); err != nil {
				return err
			}
		}
		if err := tx.Configure(func(opts *Options) { opts.MergeThreshold = 5 }); err != nil {
			return err
		}
		if merges := tx.PeriodicRebalance(); merges != 1 {
			t.Errorf("merges: got %d want 1", merges)
		}
		return nil
	})
	require.NoError(t, err)
	assert.Len(t, g.Leaves(), 1)
	assert.Equal(t, 5., g.Options().MergeThreshold)

	sentinel := errors.New("abort")
	assert.ErrorIs(t, g.Update(func(tx *Tx) error { return sentinel }), sentinel)
}

func TestConfigure(t *testing.T) {
	g := newGrid(t, 6, 5, 2)

	require.NoError(t, g.Configure(func(opts *Options) {
		opts.SplitThreshold = 8
		opts.DecayFactor = .5
		opts.DecayInterval = 250 * time.Millisecond
	}))
	opts := g.Options()
	assert.Equal(t, 8., opts.SplitThreshold)
	assert.Equal(t, .5, opts.DecayFactor)
	assert.Equal(t, 250*time.Millisecond, opts.DecayInterval)

	assert.ErrorIs(t, g.Configure(func(opts *Options) { opts.MaxLevel = 8 }), ErrImmutableOption)
	assert.ErrorIs(t, g.Configure(func(opts *Options) { opts.Bounds.MaxX = 2 }), ErrImmutableOption)
	assert.Error(t, g.Configure(func(opts *Options) { opts.DecayFactor = 1.5 }))
	assert.Error(t, g.Configure(func(opts *Options) { opts.MergeThreshold = -1 }))
	assert.Equal(t, opts, g.Options(), "rejected configuration must not be applied")
}

func TestConcurrentWritersAndMaintenance(t *testing.T) {
	const (
		writers = 8
		records = 2000
	)
	g := newGrid(t, 6, 5, 2)

	var (
		wg   sync.WaitGroup
		done = make(chan struct{})
	)
	for rank := 0; rank < writers; rank++ {
		wg.Add(1)
		go func(seed int64) {
			defer wg.Done()
			rng := rand.New(rand.NewSource(seed))
			for i := 0; i < records; i++ {
				if err := g.Set(.45+rng.Float64()*.1, .45+rng.Float64()*.1); err != nil {
					t.Errorf("could not set: %v", err)
					return
				}
			}
		}(int64(rank))
	}

	var maintenance sync.WaitGroup
	maintenance.Add(3)
	go func() {
		defer maintenance.Done()
		for {
			select {
			case <-done:
				return
			default:
				if err := g.DecayLoad(.99); err != nil {
					t.Errorf("could not decay: %v", err)
					return
				}
			}
		}
	}()
	go func() {
		defer maintenance.Done()
		for {
			select {
			case <-done:
				return
			default:
				g.PeriodicRebalance()
			}
		}
	}()
	go func() {
		defer maintenance.Done()
		for {
			select {
			case <-done:
				return
			default:
				for _, leaf := range g.Leaves() {
					if leaf.Load < 0 || g.Options().MaxLevel < leaf.Level {
						t.Errorf("bad leaf %+v", leaf)
					}
				}
			}
		}
	}()

	wg.Wait()
	close(done)
	maintenance.Wait()

	requirePartition(t, g)
}

func BenchmarkSet(b *testing.B) {
	b.StopTimer()
	g, _ := New(DefaultOptions())
	rng := rand.New(rand.NewSource(1))
	b.StartTimer()

	for i := 0; i < b.N; i++ {
		g.Set(.45+rng.Float64()*.1, .45+rng.Float64()*.1)
	}
}
