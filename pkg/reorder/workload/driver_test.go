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

package workload

import (
	"context"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	testclock "k8s.io/utils/clock/testing"

	"sigs.k8s.io/seek-scheduler/pkg/common/observability/logging"
	"sigs.k8s.io/seek-scheduler/pkg/reorder/plugins"
	"sigs.k8s.io/seek-scheduler/pkg/reorder/scheduling"
	"sigs.k8s.io/seek-scheduler/pkg/reorder/scheduling/framework"
	"sigs.k8s.io/seek-scheduler/pkg/reorder/scheduling/framework/plugins/policy"
	errutil "sigs.k8s.io/seek-scheduler/pkg/reorder/util/error"
)

func newScheduler(t *testing.T, ctx context.Context, capacity int, policyType string) *scheduling.Scheduler {
	t.Helper()
	p, err := plugins.New(policyType, "", nil)
	require.NoError(t, err)
	s, err := scheduling.NewScheduler(ctx, &scheduling.Config{Capacity: capacity, Policy: p.(framework.Policy)})
	require.NoError(t, err)
	return s
}

func TestDriver_Run(t *testing.T) {
	t.Parallel()
	ctx := logging.NewTestLoggerIntoContext(context.Background())

	for _, policyType := range []string{
		policy.SweepPolicyType,
		policy.NearestPolicyType,
		policy.NearestBiasedBySweepPolicyType,
		policy.WindowedNearestPolicyType,
		policy.PathBuildingPolicyType,
	} {
		t.Run(policyType, func(t *testing.T) {
			t.Parallel()
			s := newScheduler(t, ctx, 64, policyType)
			clk := testclock.NewFakePassiveClock(time.Now())

			d, err := NewDriver(s, Config{Rounds: 300, Seed: 42, Drain: true}, clk)
			require.NoError(t, err)
			result, err := d.Run(ctx)
			require.NoError(t, err)

			assert.Equal(t, policyType+"/"+policyType, result.Policy)
			assert.Equal(t, 364, result.Submitted)
			assert.Equal(t, 364, result.Completed)
			assert.Zero(t, result.Elapsed)
			assert.Zero(t, s.Len())
			assert.Zero(t, d.outstanding.Len())
			assert.Greater(t, result.Gain(), 1.0, "reordering should beat arrival order, got %+v", result)
			require.NoError(t, s.Validate())
		})
	}
}

func TestDriver_SameSeedSameArrivals(t *testing.T) {
	t.Parallel()
	ctx := logging.NewTestLoggerIntoContext(context.Background())

	run := func(policyType string) Result {
		d, err := NewDriver(newScheduler(t, ctx, 32, policyType), Config{Rounds: 50, Seed: 7}, nil)
		require.NoError(t, err)
		result, err := d.Run(ctx)
		require.NoError(t, err)
		return result
	}

	nearest := run(policy.NearestPolicyType)
	again := run(policy.NearestPolicyType)
	if diff := cmp.Diff(nearest, again, cmpopts.IgnoreFields(Result{}, "Elapsed")); diff != "" {
		t.Errorf("Unexpected result of a repeated run (-want +got): %s", diff)
	}

	sweep := run(policy.SweepPolicyType)
	assert.Equal(t, nearest.ArrivalDistance, sweep.ArrivalDistance)
	assert.Equal(t, 82, sweep.Submitted)
	assert.Equal(t, 50, sweep.Completed)
}

func TestDriver_InvalidConfig(t *testing.T) {
	t.Parallel()
	ctx := logging.NewTestLoggerIntoContext(context.Background())
	s := newScheduler(t, ctx, 16, policy.NearestPolicyType)

	tests := []struct {
		name string
		cfg  Config
	}{
		{name: "more requests than capacity", cfg: Config{Requests: 17}},
		{name: "negative rounds", cfg: Config{Rounds: -1}},
		{name: "negative requests", cfg: Config{Requests: -1}},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()
			_, err := NewDriver(s, test.cfg, nil)
			require.Error(t, err)
			assert.Equal(t, errutil.BadConfiguration, errutil.CanonicalCode(err))
		})
	}
}

func TestDriver_Cancelled(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithCancel(logging.NewTestLoggerIntoContext(context.Background()))
	cancel()

	d, err := NewDriver(newScheduler(t, ctx, 8, policy.SweepPolicyType), Config{Rounds: 10}, nil)
	require.NoError(t, err)
	result, err := d.Run(ctx)
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 8, result.Submitted)
	assert.Zero(t, result.Completed)
}

func TestResult_Gain(t *testing.T) {
	t.Parallel()
	assert.Zero(t, Result{ArrivalDistance: 10}.Gain())
	assert.InDelta(t, 2.5, Result{ArrivalDistance: 10, ReorderedDistance: 4}.Gain(), 1e-9)
}

func TestDriver_RecordsSpan(t *testing.T) {
	exporter := tracetest.NewInMemoryExporter()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	previous := otel.GetTracerProvider()
	otel.SetTracerProvider(provider)
	t.Cleanup(func() { otel.SetTracerProvider(previous) })

	ctx := logging.NewTestLoggerIntoContext(context.Background())
	d, err := NewDriver(newScheduler(t, ctx, 8, policy.NearestPolicyType), Config{Rounds: 4, Drain: true}, nil)
	require.NoError(t, err)
	_, err = d.Run(ctx)
	require.NoError(t, err)

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, "workload.Run", spans[0].Name)
	assert.Contains(t, spans[0].Attributes, attribute.String("policy", "nearest/nearest"))
	assert.Contains(t, spans[0].Attributes, attribute.Int("completed", 12))
}
