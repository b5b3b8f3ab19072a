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

// Package metrics defines the Prometheus metrics exported by the seek scheduler.
package metrics

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	compbasemetrics "k8s.io/component-base/metrics"
	"sigs.k8s.io/controller-runtime/pkg/metrics"
)

const (
	SeekSchedulerComponent = "seek_scheduler"
)

var (
	// PolicyLabels identifies the selection policy instance.
	PolicyLabels = []string{"policy"}

	// DistanceBuckets spans a single bucket step up to four revolutions of the default layout.
	DistanceBuckets = []float64{1, 5, 10, 25, 50, 100, 180, 270, 360, 540, 720, 1080, 1440}

	// SelectionLatencyBuckets covers selections from 1us to 100ms.
	SelectionLatencyBuckets = []float64{
		0.000001, 0.000005, 0.00001, 0.000025, 0.00005, 0.0001, 0.00025, 0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025,
		0.05, 0.1,
	}
)

func helpMsgWithStability(msg string, stability compbasemetrics.StabilityLevel) string {
	return fmt.Sprintf("[%v] %v", stability, msg)
}

var (
	insertCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Subsystem: SeekSchedulerComponent,
			Name:      "insert_total",
			Help:      helpMsgWithStability("Counter of requests accepted by the scheduler.", compbasemetrics.ALPHA),
		},
		PolicyLabels,
	)

	completeCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Subsystem: SeekSchedulerComponent,
			Name:      "complete_total",
			Help:      helpMsgWithStability("Counter of requests completed and released by the scheduler.", compbasemetrics.ALPHA),
		},
		PolicyLabels,
	)

	errorCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Subsystem: SeekSchedulerComponent,
			Name:      "error_total",
			Help:      helpMsgWithStability("Counter of failed scheduler operations broken out by error code.", compbasemetrics.ALPHA),
		},
		append(PolicyLabels, "error_code"),
	)

	pendingGauge = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Subsystem: SeekSchedulerComponent,
			Name:      "pending_requests",
			Help:      helpMsgWithStability("Number of requests currently indexed by the scheduler.", compbasemetrics.ALPHA),
		},
		PolicyLabels,
	)

	selectedDistance = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Subsystem: SeekSchedulerComponent,
			Name:      "selected_distance_steps",
			Help:      helpMsgWithStability("Distribution of the seek distance, in bucket steps, of selected requests.", compbasemetrics.ALPHA),
			Buckets:   DistanceBuckets,
		},
		PolicyLabels,
	)

	selectionLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Subsystem: SeekSchedulerComponent,
			Name:      "selection_duration_seconds",
			Help:      helpMsgWithStability("Distribution of the time spent selecting the next request.", compbasemetrics.ALPHA),
			Buckets:   SelectionLatencyBuckets,
		},
		PolicyLabels,
	)
)

var registerMetrics sync.Once

// Register all metrics with the controller-runtime registry.
func Register(customCollectors ...prometheus.Collector) {
	registerMetrics.Do(func() {
		metrics.Registry.MustRegister(insertCounter)
		metrics.Registry.MustRegister(completeCounter)
		metrics.Registry.MustRegister(errorCounter)
		metrics.Registry.MustRegister(pendingGauge)
		metrics.Registry.MustRegister(selectedDistance)
		metrics.Registry.MustRegister(selectionLatency)

		for _, collector := range customCollectors {
			metrics.Registry.MustRegister(collector)
		}
	})
}

// Reset clears all metrics. Intended for tests.
func Reset() {
	insertCounter.Reset()
	completeCounter.Reset()
	errorCounter.Reset()
	pendingGauge.Reset()
	selectedDistance.Reset()
	selectionLatency.Reset()
}

// RecordInsert records an accepted request and the resulting pending count.
func RecordInsert(policy string, pending int) {
	insertCounter.WithLabelValues(policy).Inc()
	pendingGauge.WithLabelValues(policy).Set(float64(pending))
}

// RecordComplete records a completed request and the resulting pending count.
func RecordComplete(policy string, pending int) {
	completeCounter.WithLabelValues(policy).Inc()
	pendingGauge.WithLabelValues(policy).Set(float64(pending))
}

// RecordError records a failed operation.
func RecordError(policy, code string) {
	if code != "" {
		errorCounter.WithLabelValues(policy, code).Inc()
	}
}

// RecordSelection records the distance of a selected request and how long the selection took.
func RecordSelection(policy string, distance uint32, duration time.Duration) {
	selectedDistance.WithLabelValues(policy).Observe(float64(distance))
	selectionLatency.WithLabelValues(policy).Observe(duration.Seconds())
}

// Gather returns the scheduler's metric families from the controller-runtime registry, leaving out the process and
// Go runtime collectors registered there by default.
func Gather() ([]*dto.MetricFamily, error) {
	families, err := metrics.Registry.Gather()
	if err != nil {
		return nil, err
	}
	own := families[:0]
	for _, mf := range families {
		if strings.HasPrefix(mf.GetName(), SeekSchedulerComponent+"_") {
			own = append(own, mf)
		}
	}
	return own, nil
}
