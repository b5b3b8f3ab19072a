/*
Copyright 2025 The Kubernetes Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package geometry

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	errutil "sigs.k8s.io/seek-scheduler/pkg/reorder/util/error"
)

func newDefault(t *testing.T) *Geometry {
	t.Helper()
	g, err := New(DefaultConfig())
	require.NoError(t, err, "default geometry must be valid")
	return g
}

func TestValidateAndApplyDefaults(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		cfg      Config
		want     *Config
		wantCode string
	}{
		{
			name: "empty config gets defaults and a raised seek limit",
			cfg:  Config{},
			want: &Config{
				BucketsPerRevolution: 360,
				OffsetCount:          5000,
				BlocksPerBucket:      10,
				Profile:              ProfileConfig{SettleSteps: 10, AccelerationDivisor: 100, Breakpoint: 100, Velocity: 6.4},
				SeekTimeLimit:        1230,
			},
		},
		{
			name: "small layout raises three revolutions to the full stroke",
			cfg:  Config{BucketsPerRevolution: 8, OffsetCount: 4, BlocksPerBucket: 1},
			want: &Config{
				BucketsPerRevolution: 8,
				OffsetCount:          4,
				BlocksPerBucket:      1,
				Profile:              ProfileConfig{SettleSteps: 10, AccelerationDivisor: 100, Breakpoint: 100, Velocity: 6.4},
				SeekTimeLimit:        37,
			},
		},
		{
			name:     "explicit limit below full stroke",
			cfg:      Config{SeekTimeLimit: 1080},
			wantCode: errutil.BadConfiguration,
		},
		{
			name:     "breakpoint not after settle",
			cfg:      Config{Profile: ProfileConfig{SettleSteps: 20, Breakpoint: 20}},
			wantCode: errutil.BadConfiguration,
		},
		{
			name:     "negative velocity",
			cfg:      Config{Profile: ProfileConfig{Velocity: -1}},
			wantCode: errutil.BadConfiguration,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got, err := tc.cfg.ValidateAndApplyDefaults()
			if tc.wantCode != "" {
				require.Error(t, err)
				assert.Equal(t, tc.wantCode, errutil.CanonicalCode(err))
				return
			}
			require.NoError(t, err)
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Errorf("ValidateAndApplyDefaults() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestValidateAndApplyDefaults_DoesNotMutate(t *testing.T) {
	t.Parallel()
	cfg := Config{OffsetCount: 10}
	_, err := cfg.ValidateAndApplyDefaults()
	require.NoError(t, err)
	assert.Equal(t, Config{OffsetCount: 10}, cfg, "receiver should be left untouched")
}

func TestSeekTable(t *testing.T) {
	t.Parallel()
	g := newDefault(t)

	tests := map[uint32]uint32{
		0:   0,
		10:  0,
		20:  1,
		60:  25,
		99:  79,
		100: 81,
		180: 593,
		200: 721,
	}
	for steps, want := range tests {
		assert.Equal(t, want, g.Reach(steps), "reach(%d)", steps)
	}
	assert.Equal(t, uint32(593), g.HalfRevolutionReach())

	for i := uint32(1); i < g.SeekTimeLimit(); i++ {
		require.GreaterOrEqual(t, g.Reach(i), g.Reach(i-1), "seek table must be non-decreasing at %d", i)
	}
}

func TestToCoordinate(t *testing.T) {
	t.Parallel()
	g := newDefault(t)

	tests := []struct {
		address uint64
		want    Coordinate
	}{
		{address: 0, want: Coordinate{Bucket: 0, Offset: 0}},
		{address: 9, want: Coordinate{Bucket: 0, Offset: 0}},
		{address: 10, want: Coordinate{Bucket: 1, Offset: 0}},
		{address: 3599, want: Coordinate{Bucket: 359, Offset: 0}},
		{address: 3600, want: Coordinate{Bucket: 50, Offset: 1}},
		{address: 3600 + 3100, want: Coordinate{Bucket: 0, Offset: 1}},
		{address: 7200, want: Coordinate{Bucket: 100, Offset: 2}},
		{address: g.BlockCount() - 1, want: Coordinate{Bucket: (359 + 50*4999) % 360, Offset: 4999}},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, g.ToCoordinate(tc.address), "ToCoordinate(%d)", tc.address)
	}
	assert.Equal(t, uint64(18_000_000), g.BlockCount())
	assert.True(t, g.Contains(17_999_999))
	assert.False(t, g.Contains(18_000_000))
}

func TestCost(t *testing.T) {
	t.Parallel()
	g := newDefault(t)

	tests := []struct {
		name     string
		from, to Coordinate
		want     uint32
	}{
		{name: "same position costs a revolution", from: Coordinate{5, 0}, to: Coordinate{5, 0}, want: 360},
		{name: "next bucket", from: Coordinate{5, 0}, to: Coordinate{6, 0}, want: 1},
		{name: "wraps forward", from: Coordinate{359, 0}, to: Coordinate{0, 0}, want: 1},
		{name: "backwards bucket goes around", from: Coordinate{6, 0}, to: Coordinate{5, 0}, want: 359},
		{name: "one offset needs settling plus a revolution", from: Coordinate{0, 0}, to: Coordinate{5, 1}, want: 365},
		{name: "one offset reachable in one pass", from: Coordinate{0, 0}, to: Coordinate{20, 1}, want: 20},
		{name: "reach is symmetric in direction", from: Coordinate{0, 10}, to: Coordinate{20, 9}, want: 20},
		{name: "far offset needs extra revolution", from: Coordinate{0, 0}, to: Coordinate{100, 100}, want: 460},
		{name: "full stroke", from: Coordinate{0, 0}, to: Coordinate{0, 4999}, want: 1080},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, g.Cost(tc.from, tc.to))
		})
	}
}

func TestCost_CeilingPanics(t *testing.T) {
	t.Parallel()
	g, err := New(Config{BucketsPerRevolution: 8, OffsetCount: 4, BlocksPerBucket: 1})
	require.NoError(t, err)

	defer func() {
		r := recover()
		require.NotNil(t, r, "expected a panic for an offset outside the layout")
		e, ok := r.(errutil.Error)
		require.True(t, ok, "panic value should be an error, got %T", r)
		assert.Equal(t, errutil.InvariantViolation, e.Code)
	}()
	g.Cost(Coordinate{0, 0}, Coordinate{1, 1000})
}

func TestWindow(t *testing.T) {
	t.Parallel()
	g := newDefault(t)

	bottom, top := g.Window(10, 60)
	assert.Equal(t, []uint32{0, 35}, []uint32{bottom, top})
	bottom, top = g.Window(4990, 60)
	assert.Equal(t, []uint32{4965, 4999}, []uint32{bottom, top})
	bottom, top = g.Window(100, 5)
	assert.Equal(t, []uint32{100, 100}, []uint32{bottom, top})
}
