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

package data

import (
	"math"
	"testing"

	"github.com/9rum/fractalgrid/internal/quadtree"
)

var hotspot = quadtree.Bounds{MinX: .45, MinY: .45, MaxX: .55, MaxY: .55}

func TestUniformSampler(t *testing.T) {
	const samples = 100000
	sampler := New(hotspot, quadtree.UnitSquare(), 42, int32(UNIFORM))

	sumX, sumY := 0., 0.
	for i := 0; i < samples; i++ {
		x, y := sampler.Sample()
		if !hotspot.Contains(x, y) {
			t.Fatalf("(%v, %v) outside %v", x, y, hotspot)
		}
		sumX += x
		sumY += y
	}
	if .001 < math.Abs(sumX/samples-.5) || .001 < math.Abs(sumY/samples-.5) {
		t.Fatalf("mean: got (%v, %v) want (.5, .5)", sumX/samples, sumY/samples)
	}
}

func TestNormalSampler(t *testing.T) {
	const samples = 100000
	bounds := quadtree.UnitSquare()
	sampler := New(quadtree.Bounds{MinX: .8, MinY: .8, MaxX: 1, MaxY: 1}, bounds, 42, int32(NORMAL))

	inside := 0
	for i := 0; i < samples; i++ {
		x, y := sampler.Sample()
		if !bounds.Contains(x, y) {
			t.Fatalf("(%v, %v) outside %v", x, y, bounds)
		}
		if .8 <= x && .8 <= y {
			inside++
		}
	}
	// about 68% of the mass lies within one standard deviation on each axis
	if inside < samples/4 {
		t.Fatalf("only %d of %d samples near the center", inside, samples)
	}
}

func TestBelow(t *testing.T) {
	if got := below(1., 1.); 1. <= got || got < .999999 {
		t.Fatalf("below(1, 1): got %v", got)
	}
	if got := below(.5, 1.); got != .5 {
		t.Fatalf("below(.5, 1): got %v", got)
	}
	if got := clamp(-1., 0., 1.); got != 0 {
		t.Fatalf("clamp(-1, 0, 1): got %v", got)
	}
}
