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

package loader

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sigs.k8s.io/seek-scheduler/pkg/common/observability/logging"
	"sigs.k8s.io/seek-scheduler/pkg/reorder/geometry"
	"sigs.k8s.io/seek-scheduler/pkg/reorder/plugins"
	"sigs.k8s.io/seek-scheduler/pkg/reorder/scheduling"
	"sigs.k8s.io/seek-scheduler/pkg/reorder/scheduling/framework/plugins/policy"
	errutil "sigs.k8s.io/seek-scheduler/pkg/reorder/util/error"
)

func mustGeometry(t *testing.T, cfg geometry.Config) geometry.Config {
	t.Helper()
	validated, err := cfg.ValidateAndApplyDefaults()
	require.NoError(t, err)
	return *validated
}

func TestLoadConfig(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		configText   string
		wantCapacity int
		wantGeometry geometry.Config
		wantPolicy   plugins.TypedName
	}{
		{
			name:         "explicit",
			configText:   successConfigText,
			wantCapacity: 256,
			wantGeometry: mustGeometry(t, geometry.Config{
				BucketsPerRevolution: 8,
				OffsetCount:          4,
				BlocksPerBucket:      1,
				Profile:              geometry.ProfileConfig{SettleSteps: 1, AccelerationDivisor: 1, Breakpoint: 3, Velocity: 1},
			}),
			wantPolicy: plugins.TypedName{Type: policy.WindowedNearestPolicyType, Name: "windowed"},
		},
		{
			name:         "defaults",
			configText:   successDefaultsText,
			wantCapacity: scheduling.DefaultCapacity,
			wantGeometry: mustGeometry(t, geometry.DefaultConfig()),
			wantPolicy:   plugins.TypedName{Type: policy.NearestPolicyType, Name: policy.NearestPolicyType},
		},
		{
			name:         "name defaults to type",
			configText:   successPathBuildingText,
			wantCapacity: scheduling.DefaultCapacity,
			wantGeometry: mustGeometry(t, geometry.DefaultConfig()),
			wantPolicy:   plugins.TypedName{Type: policy.PathBuildingPolicyType, Name: policy.PathBuildingPolicyType},
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()
			cfg, err := LoadConfig([]byte(test.configText), logging.NewTestLogger())
			require.NoError(t, err)

			assert.Equal(t, test.wantCapacity, cfg.Capacity)
			if diff := cmp.Diff(test.wantGeometry, cfg.Geometry); diff != "" {
				t.Errorf("Unexpected geometry (-want +got): %s", diff)
			}
			require.NotNil(t, cfg.Policy)
			assert.Equal(t, test.wantPolicy, cfg.Policy.TypedName())
			assert.NotNil(t, cfg.Clock)
		})
	}
}

func TestLoadConfigPolicyParameters(t *testing.T) {
	t.Parallel()

	cfg, err := LoadConfig([]byte(successConfigText), logging.NewTestLogger())
	require.NoError(t, err)
	windowed, ok := cfg.Policy.(*policy.WindowedNearest)
	require.True(t, ok, "policy is %T", cfg.Policy)
	assert.Equal(t, 0.25, windowed.WindowSpanFraction())

	cfg, err = LoadConfig([]byte(successPathBuildingText), logging.NewTestLogger())
	require.NoError(t, err)
	pathBuilding, ok := cfg.Policy.(*policy.PathBuilding)
	require.True(t, ok, "policy is %T", cfg.Policy)
	assert.Equal(t, 16, pathBuilding.MaxSequenceScanLength())
}

func TestLoadConfigErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		configText string
		wantCode   string
	}{
		{name: "bad yaml", configText: errorBadYamlText},
		{name: "unknown field", configText: errorUnknownFieldText},
		{name: "unknown kind", configText: errorUnknownKindText},
		{name: "unknown policy", configText: errorUnknownPolicyText},
		{name: "bad policy parameters", configText: errorBadPolicyParametersText},
		{name: "zero capacity", configText: errorZeroCapacityText},
		{name: "zero offsets", configText: errorZeroOffsetsText},
		{name: "seek time limit too small", configText: errorSeekTimeLimitTooSmallText, wantCode: errutil.BadConfiguration},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()
			cfg, err := LoadConfig([]byte(test.configText), logging.NewTestLogger())
			require.Error(t, err)
			assert.Nil(t, cfg)
			if test.wantCode != "" {
				assert.Equal(t, test.wantCode, errutil.CanonicalCode(err))
			}
		})
	}
}
