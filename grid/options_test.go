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
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/9rum/fractalgrid/internal/quadtree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeOptions(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "grid.yaml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestLoadOptions(t *testing.T) {
	path := writeOptions(t, `
bounds:
  min_x: -1
  min_y: -1
  max_x: 1
  max_y: 1
max_level: 8
split_threshold: 10
decay_interval: 500ms
`)
	opts, err := LoadOptions(path)
	require.NoError(t, err)

	want := DefaultOptions()
	want.Bounds = quadtree.Bounds{MinX: -1, MinY: -1, MaxX: 1, MaxY: 1}
	want.MaxLevel = 8
	want.SplitThreshold = 10
	want.DecayInterval = 500 * time.Millisecond
	assert.Equal(t, want, opts)
}

func TestLoadOptionsSeconds(t *testing.T) {
	for contents, want := range map[string]time.Duration{
		"decay_interval: 1\n":     time.Second,
		"decay_interval: 0.25\n":  250 * time.Millisecond,
		"decay_interval: 2m\n":    2 * time.Minute,
		"decay_interval: \"3\"\n": 0,
	} {
		opts, err := LoadOptions(writeOptions(t, contents))
		if want == 0 {
			require.Error(t, err, contents)
			continue
		}
		require.NoError(t, err, contents)
		assert.Equal(t, want, opts.DecayInterval, contents)
	}

	_, err := LoadOptions(writeOptions(t, "decay_interval: -1\n"))
	require.Error(t, err)
}

func TestLoadOptionsRejectsInvalid(t *testing.T) {
	for name, contents := range map[string]string{
		"decay factor":   "decay_factor: 0\n",
		"decay interval": "decay_interval: 0s\n",
		"bounds":         "bounds: {min_x: 1, min_y: 0, max_x: 0, max_y: 1}\n",
		"max level":      "max_level: -1\n",
		"syntax":         "split_threshold: [\n",
	} {
		_, err := LoadOptions(writeOptions(t, contents))
		assert.Error(t, err, name)
	}

	_, err := LoadOptions(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestDefaultOptions(t *testing.T) {
	opts := DefaultOptions()
	require.NoError(t, opts.Validate())
	assert.Equal(t, quadtree.UnitSquare(), opts.Bounds)
	assert.Equal(t, 6, opts.MaxLevel)
	assert.Equal(t, 5., opts.SplitThreshold)
	assert.Equal(t, 2., opts.MergeThreshold)
	assert.Equal(t, .9, opts.DecayFactor)
	assert.Equal(t, time.Second, opts.DecayInterval)

	_, err := New(Options{})
	assert.Error(t, err)
}
