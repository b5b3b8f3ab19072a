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

package tracing

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"sigs.k8s.io/seek-scheduler/pkg/common/observability/logging"
)

func TestInitTracing(t *testing.T) {
	t.Setenv("OTEL_TRACES_EXPORTER", "console")
	t.Setenv("OTEL_TRACES_SAMPLER", "always_on")

	ctx := context.Background()
	shutdown, err := InitTracing(ctx, logging.NewTestLogger())
	require.NoError(t, err)

	_, span := otel.Tracer("tracing-test").Start(ctx, "test-span")
	assert.True(t, span.SpanContext().IsSampled())
	span.End()

	require.NoError(t, shutdown(ctx))
}

func TestInitTracing_UnknownExporter(t *testing.T) {
	t.Setenv("OTEL_TRACES_EXPORTER", "zipkin")

	_, err := InitTracing(context.Background(), logging.NewTestLogger())
	assert.Error(t, err)
}

func TestInitSampler(t *testing.T) {
	h := &errorHandler{logger: logging.NewTestLogger()}
	tests := []struct {
		name       string
		sampler    string
		samplerArg string
		want       string
	}{
		{name: "always on", sampler: "always_on", want: sdktrace.AlwaysSample().Description()},
		{name: "always off", sampler: "always_off", want: sdktrace.NeverSample().Description()},
		{
			name:       "ratio",
			sampler:    "parentbased_traceidratio",
			samplerArg: "0.25",
			want:       sdktrace.ParentBased(sdktrace.TraceIDRatioBased(0.25)).Description(),
		},
		{
			name:       "bad ratio falls back",
			sampler:    "parentbased_traceidratio",
			samplerArg: "lots",
			want:       sdktrace.ParentBased(sdktrace.TraceIDRatioBased(1)).Description(),
		},
		{
			name:    "unknown sampler falls back",
			sampler: "jaeger_remote",
			want:    sdktrace.ParentBased(sdktrace.TraceIDRatioBased(1)).Description(),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("OTEL_TRACES_SAMPLER", tt.sampler)
			if tt.samplerArg != "" {
				t.Setenv("OTEL_TRACES_SAMPLER_ARG", tt.samplerArg)
			}
			assert.Equal(t, tt.want, initSampler(h).Description())
		})
	}
}
