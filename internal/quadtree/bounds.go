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

package quadtree

import "fmt"

// Quadrant identifies one of the four children of an internal node relative
// to the midpoint of its bounds.
type Quadrant int

const (
	LowerLeft Quadrant = iota
	LowerRight
	UpperLeft
	UpperRight
)

func (q Quadrant) String() string {
	switch q {
	case LowerLeft:
		return "lower-left"
	case LowerRight:
		return "lower-right"
	case UpperLeft:
		return "upper-left"
	case UpperRight:
		return "upper-right"
	default:
		return fmt.Sprintf("Quadrant(%d)", int(q))
	}
}

// Bounds represents an axis-aligned rectangle that is closed on its lower
// edges and open on its upper edges, i.e., [MinX, MaxX) x [MinY, MaxY).
type Bounds struct {
	MinX float64 `yaml:"min_x" validate:"ltfield=MaxX"`
	MinY float64 `yaml:"min_y" validate:"ltfield=MaxY"`
	MaxX float64 `yaml:"max_x"`
	MaxY float64 `yaml:"max_y"`
}

// UnitSquare returns the bounds of [0, 1) x [0, 1).
func UnitSquare() Bounds {
	return Bounds{MaxX: 1, MaxY: 1}
}

// Valid reports whether the bounds span a non-empty area.
func (b Bounds) Valid() bool {
	return b.MinX < b.MaxX && b.MinY < b.MaxY
}

// Contains tests whether the given point lies within the half-open bounds.
// A point is contained by exactly one leaf of a well-formed partition.
func (b Bounds) Contains(x, y float64) bool {
	return b.MinX <= x && x < b.MaxX && b.MinY <= y && y < b.MaxY
}

// Mid returns the midpoint of the bounds.
func (b Bounds) Mid() (x, y float64) {
	return (b.MinX + b.MaxX) / 2., (b.MinY + b.MaxY) / 2.
}

// Area returns the area covered by the bounds.
func (b Bounds) Area() float64 {
	return (b.MaxX - b.MinX) * (b.MaxY - b.MinY)
}

// Quadrant returns the bounds of the given quadrant.  All four quadrants are
// derived from the same midpoint, so they tile b with no gaps or overlaps.
func (b Bounds) Quadrant(q Quadrant) Bounds {
	midX, midY := b.Mid()
	switch q {
	case LowerLeft:
		return Bounds{b.MinX, b.MinY, midX, midY}
	case LowerRight:
		return Bounds{midX, b.MinY, b.MaxX, midY}
	case UpperLeft:
		return Bounds{b.MinX, midY, midX, b.MaxY}
	case UpperRight:
		return Bounds{midX, midY, b.MaxX, b.MaxY}
	default:
		panic("invalid quadrant")
	}
}

// QuadrantOf returns the quadrant into which the given point falls.  The
// decision is made against the same midpoint that Quadrant uses, hence the
// returned quadrant always contains the point whenever b does.
func (b Bounds) QuadrantOf(x, y float64) (q Quadrant) {
	midX, midY := b.Mid()
	if midX <= x {
		q |= LowerRight
	}
	if midY <= y {
		q |= UpperLeft
	}
	return
}

func (b Bounds) String() string {
	return fmt.Sprintf("[%g, %g) x [%g, %g)", b.MinX, b.MaxX, b.MinY, b.MaxY)
}
