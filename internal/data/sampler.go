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

// Package data provides primitives for generating the points at which load is
// recorded.  In addition to a uniform sampler over a hot-spot region, it
// supports a normal sampler that concentrates samples around a center and
// clamps them into the grid bounds.
package data

import (
	"math"
	"math/rand"

	"github.com/9rum/fractalgrid/internal/quadtree"
	"golang.org/x/exp/constraints"
)

const (
	UNIFORM = iota
	NORMAL
)

// Sampler represents a source of points.
// All implementations must embed SamplerBase for forward compatibility.
type Sampler interface {
	// Sample draws the next point.  The point must lie within the bounds the
	// sampler was created with.
	Sample() (x, y float64)
}

// SamplerBase must be embedded to have forward compatible implementations.
type SamplerBase struct {
}

func (SamplerBase) Sample() (x, y float64) {
	return
}

// New creates a new sampler of the given kind.  Each sampler owns its random
// source, so samplers must not be shared between goroutines.
func New[T ~int32](region, bounds quadtree.Bounds, seed int64, kind T) Sampler {
	switch kind {
	case UNIFORM:
		return NewUniformSampler(region, seed)
	case NORMAL:
		return NewNormalSampler(region, bounds, seed)
	default:
		panic("invalid kind")
	}
}

// UniformSampler draws points uniformly from a rectangular region.
type UniformSampler struct {
	SamplerBase
	region quadtree.Bounds
	rng    *rand.Rand
}

// NewUniformSampler creates a new uniform sampler over the given region.
func NewUniformSampler(region quadtree.Bounds, seed int64) *UniformSampler {
	if !region.Valid() {
		panic("bad region")
	}
	return &UniformSampler{
		region: region,
		rng:    rand.New(rand.NewSource(seed)),
	}
}

// Sample draws a point from [MinX, MaxX) x [MinY, MaxY).
func (s *UniformSampler) Sample() (x, y float64) {
	x = s.region.MinX + s.rng.Float64()*(s.region.MaxX-s.region.MinX)
	y = s.region.MinY + s.rng.Float64()*(s.region.MaxY-s.region.MinY)
	// guard against rounding onto the open upper edge
	return below(x, s.region.MaxX), below(y, s.region.MaxY)
}

// NormalSampler draws points from a normal distribution centered on the
// midpoint of a region, with one standard deviation spanning half of the
// region on each axis.  Points falling outside the bounds are clamped into
// them.
type NormalSampler struct {
	SamplerBase
	region quadtree.Bounds
	bounds quadtree.Bounds
	rng    *rand.Rand
}

// NewNormalSampler creates a new normal sampler.
func NewNormalSampler(region, bounds quadtree.Bounds, seed int64) *NormalSampler {
	if !region.Valid() || !bounds.Valid() {
		panic("bad region")
	}
	return &NormalSampler{
		region: region,
		bounds: bounds,
		rng:    rand.New(rand.NewSource(seed)),
	}
}

// Sample draws a point within the bounds.
func (s *NormalSampler) Sample() (x, y float64) {
	midX, midY := s.region.Mid()
	x = midX + s.rng.NormFloat64()*(s.region.MaxX-s.region.MinX)/2.
	y = midY + s.rng.NormFloat64()*(s.region.MaxY-s.region.MinY)/2.
	x = clamp(x, s.bounds.MinX, math.Nextafter(s.bounds.MaxX, s.bounds.MinX))
	y = clamp(y, s.bounds.MinY, math.Nextafter(s.bounds.MaxY, s.bounds.MinY))
	return
}

// clamp limits v to the closed interval [lo, hi].
func clamp[T constraints.Float](v, lo, hi T) T {
	if v < lo {
		return lo
	}
	if hi < v {
		return hi
	}
	return v
}

// below returns v if it is less than limit, or the greatest representable
// value less than limit otherwise.
func below[T constraints.Float](v, limit T) T {
	if v < limit {
		return v
	}
	return T(math.Nextafter(float64(limit), math.Inf(-1)))
}
