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
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/9rum/fractalgrid/internal/quadtree"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// ErrImmutableOption is returned when reconfiguring an option that is fixed
// once the grid is created.
var ErrImmutableOption = errors.New("option cannot be changed after creation")

var validate = validator.New()

// Options configures a grid.  Bounds and MaxLevel are fixed for the lifetime
// of the grid; the thresholds and the decay settings may be changed at any
// time through Configure.
type Options struct {
	// Bounds is the rectangle covered by the root.
	Bounds quadtree.Bounds `yaml:"bounds"`

	// MaxLevel caps the depth of the tree; the root is at level 0.
	MaxLevel int `yaml:"max_level" validate:"gte=0,lte=24"`

	// SplitThreshold is the load above which a leaf subdivides on write.
	SplitThreshold float64 `yaml:"split_threshold" validate:"gte=0"`

	// MergeThreshold is the total load of four sibling leaves below which
	// they may be merged back into their parent.
	MergeThreshold float64 `yaml:"merge_threshold" validate:"gte=0"`

	// DecayFactor is the fraction of load retained by every decay sweep.
	DecayFactor float64 `yaml:"decay_factor" validate:"gt=0,lte=1"`

	// DecayInterval is the period between decay sweeps.  The grid itself
	// never schedules anything; this is read by the decay task.  In YAML it
	// is either a duration string such as "500ms" or a number of seconds.
	DecayInterval time.Duration `yaml:"decay_interval" validate:"gt=0"`
}

// DefaultOptions returns the options of a grid over the unit square.
func DefaultOptions() Options {
	return Options{
		Bounds:         quadtree.UnitSquare(),
		MaxLevel:       6,
		SplitThreshold: 5,
		MergeThreshold: 2,
		DecayFactor:    .9,
		DecayInterval:  time.Second,
	}
}

// Validate checks the options against their constraints.
func (o Options) Validate() error {
	if err := validate.Struct(o); err != nil {
		return fmt.Errorf("invalid options: %w", err)
	}
	return nil
}

// UnmarshalYAML decodes options, accepting a plain number of seconds for
// decay_interval in addition to a duration string.
func (o *Options) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.MappingNode {
		for i := 0; i+1 < len(value.Content); i += 2 {
			key, val := value.Content[i], value.Content[i+1]
			if key.Value != "decay_interval" || val.Kind != yaml.ScalarNode {
				continue
			}
			if tag := val.ShortTag(); tag != "!!int" && tag != "!!float" {
				continue
			}
			seconds, err := strconv.ParseFloat(val.Value, 64)
			if err != nil {
				return fmt.Errorf("line %d: decay_interval: %w", val.Line, err)
			}
			val.Value = time.Duration(seconds * float64(time.Second)).String()
			val.Tag = "!!str"
		}
	}
	type plain Options
	return value.Decode((*plain)(o))
}

// LoadOptions reads options from the YAML file at the given path.  Settings
// absent from the file keep their default values.
func LoadOptions(path string) (Options, error) {
	opts := DefaultOptions()
	in, err := os.ReadFile(path)
	if err != nil {
		return opts, err
	}
	if err = yaml.Unmarshal(in, &opts); err != nil {
		return opts, fmt.Errorf("parse %s: %w", path, err)
	}
	return opts, opts.Validate()
}
