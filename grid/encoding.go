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
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/9rum/fractalgrid/internal/quadtree"
	"google.golang.org/protobuf/types/known/structpb"
)

// EncodePoint encodes the given point as a struct with fields x and y.
func EncodePoint(x, y float64) *structpb.Struct {
	return &structpb.Struct{Fields: map[string]*structpb.Value{
		"x": structpb.NewNumberValue(x),
		"y": structpb.NewNumberValue(y),
	}}
}

// DecodePoint decodes a point encoded by EncodePoint.
func DecodePoint(in *structpb.Struct) (x, y float64, err error) {
	if x, err = number(in, "x"); err != nil {
		return
	}
	y, err = number(in, "y")
	return
}

// number retrieves a required numeric field.
func number(in *structpb.Struct, key string) (float64, error) {
	v, ok := in.GetFields()[key]
	if !ok {
		return 0, fmt.Errorf("missing field %q", key)
	}
	n, ok := v.GetKind().(*structpb.Value_NumberValue)
	if !ok {
		return 0, fmt.Errorf("field %q is not a number", key)
	}
	return n.NumberValue, nil
}

func encodeBounds(b quadtree.Bounds) *structpb.Value {
	return structpb.NewStructValue(&structpb.Struct{Fields: map[string]*structpb.Value{
		"min_x": structpb.NewNumberValue(b.MinX),
		"min_y": structpb.NewNumberValue(b.MinY),
		"max_x": structpb.NewNumberValue(b.MaxX),
		"max_y": structpb.NewNumberValue(b.MaxY),
	}})
}

func decodeBounds(in *structpb.Struct) (b quadtree.Bounds, err error) {
	for key, v := range map[string]*float64{
		"min_x": &b.MinX,
		"min_y": &b.MinY,
		"max_x": &b.MaxX,
		"max_y": &b.MaxY,
	} {
		if *v, err = number(in, key); err != nil {
			return
		}
	}
	return
}

// EncodeLeaves encodes a snapshot of leaves as a list of structs with fields
// bounds, level and load.
func EncodeLeaves(leaves []quadtree.Leaf) *structpb.ListValue {
	values := make([]*structpb.Value, 0, len(leaves))
	for _, leaf := range leaves {
		values = append(values, structpb.NewStructValue(&structpb.Struct{Fields: map[string]*structpb.Value{
			"bounds": encodeBounds(leaf.Bounds),
			"level":  structpb.NewNumberValue(float64(leaf.Level)),
			"load":   structpb.NewNumberValue(leaf.Load),
		}}))
	}
	return &structpb.ListValue{Values: values}
}

// DecodeLeaves decodes a snapshot encoded by EncodeLeaves.
func DecodeLeaves(in *structpb.ListValue) ([]quadtree.Leaf, error) {
	leaves := make([]quadtree.Leaf, 0, len(in.GetValues()))
	for index, v := range in.GetValues() {
		fields := v.GetStructValue()
		if fields == nil {
			return nil, fmt.Errorf("leaf %d is not a struct", index)
		}
		bounds, err := decodeBounds(fields.GetFields()["bounds"].GetStructValue())
		if err != nil {
			return nil, fmt.Errorf("leaf %d: %w", index, err)
		}
		level, err := number(fields, "level")
		if err != nil {
			return nil, fmt.Errorf("leaf %d: %w", index, err)
		}
		load, err := number(fields, "load")
		if err != nil {
			return nil, fmt.Errorf("leaf %d: %w", index, err)
		}
		leaves = append(leaves, quadtree.Leaf{Bounds: bounds, Level: int(level), Load: load})
	}
	return leaves, nil
}

// EncodeOptions encodes options as a struct.  The decay interval is given in
// seconds.
func EncodeOptions(opts Options) *structpb.Struct {
	return &structpb.Struct{Fields: map[string]*structpb.Value{
		"bounds":          encodeBounds(opts.Bounds),
		"max_level":       structpb.NewNumberValue(float64(opts.MaxLevel)),
		"split_threshold": structpb.NewNumberValue(opts.SplitThreshold),
		"merge_threshold": structpb.NewNumberValue(opts.MergeThreshold),
		"decay_factor":    structpb.NewNumberValue(opts.DecayFactor),
		"decay_interval":  structpb.NewNumberValue(opts.DecayInterval.Seconds()),
	}}
}

// DecodeOptions decodes options encoded by EncodeOptions.
func DecodeOptions(in *structpb.Struct) (opts Options, err error) {
	if opts.Bounds, err = decodeBounds(in.GetFields()["bounds"].GetStructValue()); err != nil {
		return
	}
	maxLevel, err := number(in, "max_level")
	if err != nil {
		return
	}
	opts.MaxLevel = int(maxLevel)
	patch, err := decodePatch(in, "bounds", "max_level")
	if err != nil {
		return
	}
	patch(&opts)
	return
}

// decodePatch decodes a partial set of the reconfigurable options into a
// function applying them.  Keys other than the reconfigurable ones and the
// given ignored keys are rejected.
func decodePatch(in *structpb.Struct, ignore ...string) (func(opts *Options), error) {
	setters := map[string]func(opts *Options, v float64){
		"split_threshold": func(opts *Options, v float64) { opts.SplitThreshold = v },
		"merge_threshold": func(opts *Options, v float64) { opts.MergeThreshold = v },
		"decay_factor":    func(opts *Options, v float64) { opts.DecayFactor = v },
		"decay_interval": func(opts *Options, v float64) {
			opts.DecayInterval = time.Duration(v * float64(time.Second))
		},
	}

	keys := make([]string, 0, len(in.GetFields()))
	for key := range in.GetFields() {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var apply []func(opts *Options)
	for _, key := range keys {
		if contains(ignore, key) {
			continue
		}
		setter, ok := setters[key]
		if !ok {
			return nil, fmt.Errorf("unknown or immutable option %q (mutable options: %s)", key, strings.Join(mutable(setters), ", "))
		}
		v, err := number(in, key)
		if err != nil {
			return nil, err
		}
		apply = append(apply, func(opts *Options) { setter(opts, v) })
	}

	return func(opts *Options) {
		for _, fn := range apply {
			fn(opts)
		}
	}, nil
}

func contains(keys []string, key string) bool {
	for _, k := range keys {
		if k == key {
			return true
		}
	}
	return false
}

func mutable[T any](setters map[string]T) []string {
	keys := make([]string, 0, len(setters))
	for key := range setters {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
