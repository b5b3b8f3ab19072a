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

package metrics

import (
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"sigs.k8s.io/controller-runtime/pkg/metrics"
)

const (
	ErrorTotalMetric       = SeekSchedulerComponent + "_error_total"
	PendingRequestsMetric  = SeekSchedulerComponent + "_pending_requests"
	SelectedDistanceMetric = SeekSchedulerComponent + "_selected_distance_steps"
)

func TestRecordInsertAndComplete(t *testing.T) {
	Register()
	Reset()
	t.Cleanup(Reset)

	RecordInsert("nearest", 1)
	RecordInsert("nearest", 2)
	RecordInsert("sweep", 1)
	RecordComplete("nearest", 1)

	assert.Equal(t, 2.0, testutil.ToFloat64(insertCounter.WithLabelValues("nearest")))
	assert.Equal(t, 1.0, testutil.ToFloat64(insertCounter.WithLabelValues("sweep")))
	assert.Equal(t, 1.0, testutil.ToFloat64(completeCounter.WithLabelValues("nearest")))

	want := `
# HELP seek_scheduler_pending_requests [ALPHA] Number of requests currently indexed by the scheduler.
# TYPE seek_scheduler_pending_requests gauge
seek_scheduler_pending_requests{policy="nearest"} 1
seek_scheduler_pending_requests{policy="sweep"} 1
`
	require.NoError(t, testutil.GatherAndCompare(metrics.Registry, strings.NewReader(want), PendingRequestsMetric))
}

func TestRecordError(t *testing.T) {
	Register()
	Reset()
	t.Cleanup(Reset)

	RecordError("nearest", "NotFound")
	RecordError("nearest", "NotFound")
	RecordError("nearest", "")

	want := `
# HELP seek_scheduler_error_total [ALPHA] Counter of failed scheduler operations broken out by error code.
# TYPE seek_scheduler_error_total counter
seek_scheduler_error_total{error_code="NotFound",policy="nearest"} 2
`
	require.NoError(t, testutil.GatherAndCompare(metrics.Registry, strings.NewReader(want), ErrorTotalMetric))
}

func TestRecordSelection(t *testing.T) {
	Register()
	Reset()
	t.Cleanup(Reset)

	RecordSelection("sweep", 3, time.Microsecond)
	RecordSelection("sweep", 400, 2*time.Millisecond)

	want := `
# HELP seek_scheduler_selected_distance_steps [ALPHA] Distribution of the seek distance, in bucket steps, of selected requests.
# TYPE seek_scheduler_selected_distance_steps histogram
seek_scheduler_selected_distance_steps_bucket{policy="sweep",le="1"} 0
seek_scheduler_selected_distance_steps_bucket{policy="sweep",le="5"} 1
seek_scheduler_selected_distance_steps_bucket{policy="sweep",le="10"} 1
seek_scheduler_selected_distance_steps_bucket{policy="sweep",le="25"} 1
seek_scheduler_selected_distance_steps_bucket{policy="sweep",le="50"} 1
seek_scheduler_selected_distance_steps_bucket{policy="sweep",le="100"} 1
seek_scheduler_selected_distance_steps_bucket{policy="sweep",le="180"} 1
seek_scheduler_selected_distance_steps_bucket{policy="sweep",le="270"} 1
seek_scheduler_selected_distance_steps_bucket{policy="sweep",le="360"} 1
seek_scheduler_selected_distance_steps_bucket{policy="sweep",le="540"} 2
seek_scheduler_selected_distance_steps_bucket{policy="sweep",le="720"} 2
seek_scheduler_selected_distance_steps_bucket{policy="sweep",le="1080"} 2
seek_scheduler_selected_distance_steps_bucket{policy="sweep",le="1440"} 2
seek_scheduler_selected_distance_steps_bucket{policy="sweep",le="+Inf"} 2
seek_scheduler_selected_distance_steps_sum{policy="sweep"} 403
seek_scheduler_selected_distance_steps_count{policy="sweep"} 2
`
	require.NoError(t, testutil.GatherAndCompare(metrics.Registry, strings.NewReader(want), SelectedDistanceMetric))
	assert.Equal(t, 1, testutil.CollectAndCount(selectionLatency), "one latency series per policy")
}

func TestGather(t *testing.T) {
	Register()
	Reset()
	t.Cleanup(Reset)

	RecordInsert("path-building", 1)
	RecordInsert("path-building", 2)
	RecordSelection("path-building", 12, time.Microsecond)

	families, err := Gather()
	require.NoError(t, err)
	byName := map[string]*dto.MetricFamily{}
	for _, mf := range families {
		require.True(t, strings.HasPrefix(mf.GetName(), SeekSchedulerComponent+"_"), "unexpected family %s", mf.GetName())
		byName[mf.GetName()] = mf
	}

	inserts := byName[SeekSchedulerComponent+"_insert_total"]
	require.NotNil(t, inserts)
	require.Len(t, inserts.GetMetric(), 1)
	assert.Equal(t, dto.MetricType_COUNTER, inserts.GetType())
	assert.Equal(t, 2.0, inserts.GetMetric()[0].GetCounter().GetValue())
	assert.Equal(t, "policy", inserts.GetMetric()[0].GetLabel()[0].GetName())
	assert.Equal(t, "path-building", inserts.GetMetric()[0].GetLabel()[0].GetValue())

	distance := byName[SelectedDistanceMetric]
	require.NotNil(t, distance)
	assert.Equal(t, uint64(1), distance.GetMetric()[0].GetHistogram().GetSampleCount())
	assert.Equal(t, 12.0, distance.GetMetric()[0].GetHistogram().GetSampleSum())
}
