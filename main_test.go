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

package main

import (
	"testing"

	"github.com/9rum/fractalgrid/internal/data"
	"github.com/9rum/fractalgrid/internal/quadtree"
)

func TestParseRegion(t *testing.T) {
	bounds := quadtree.UnitSquare()

	region, err := parseRegion("", bounds)
	if err != nil {
		t.Fatal(err)
	}
	if d := region.MinX - .45; 1e-12 < d || d < -1e-12 {
		t.Fatalf("region: %v", region)
	}
	if d := region.MaxY - .55; 1e-12 < d || d < -1e-12 {
		t.Fatalf("region: %v", region)
	}

	region, err = parseRegion("0.1, 0.2, 0.3, 0.4", bounds)
	if err != nil {
		t.Fatal(err)
	}
	if want := (quadtree.Bounds{MinX: .1, MinY: .2, MaxX: .3, MaxY: .4}); region != want {
		t.Fatalf("region: got %v want %v", region, want)
	}

	for _, s := range []string{"0.1,0.2,0.3", "a,b,c,d", "0.3,0.2,0.1,0.4", "2,2,3,3", "-0.1,0,0.5,0.5", "0.5,0.5,1.5,1"} {
		if _, err = parseRegion(s, bounds); err == nil {
			t.Fatalf("%q: expected an error", s)
		}
	}
}

func TestParseRegionWithinBounds(t *testing.T) {
	bounds := quadtree.Bounds{MinX: -2, MinY: 3, MaxX: 6, MaxY: 5}
	region, err := parseRegion("", bounds)
	if err != nil {
		t.Fatal(err)
	}
	if region.MinX < bounds.MinX || region.MinY < bounds.MinY || bounds.MaxX < region.MaxX || bounds.MaxY < region.MaxY {
		t.Fatalf("region %v exceeds %v", region, bounds)
	}
	if _, err = parseRegion("-2,3,6,5", bounds); err != nil {
		t.Fatal(err)
	}
	if _, err = parseRegion("0,0,1,1", bounds); err == nil {
		t.Fatal("expected an error")
	}
}

func TestParseKind(t *testing.T) {
	for s, want := range map[string]int32{"uniform": data.UNIFORM, "Normal": data.NORMAL} {
		if kind, err := parseKind(s); err != nil || kind != want {
			t.Fatalf("%q: got %d, %v", s, kind, err)
		}
	}
	if _, err := parseKind("zipf"); err == nil {
		t.Fatal("expected an error")
	}
}
