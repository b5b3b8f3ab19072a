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
	"fmt"
	"os"
	"strconv"

	"github.com/go-logr/logr"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.37.0"

	logutil "sigs.k8s.io/seek-scheduler/pkg/reorder/util/logging"
	"sigs.k8s.io/seek-scheduler/version"
)

const (
	defaultServiceName = "seek-scheduler"
	defaultSamplerArg  = 1.0
)

type errorHandler struct {
	logger logr.Logger
}

func (h *errorHandler) Handle(err error) {
	h.logger.V(logutil.DEFAULT).Error(err, "trace error occurred")
}

// ShutdownFunc flushes and stops the tracer provider installed by InitTracing.
type ShutdownFunc func(context.Context) error

// InitTracing installs a global tracer provider configured from the standard OTEL_* environment variables.
func InitTracing(ctx context.Context, logger logr.Logger) (ShutdownFunc, error) {
	logger = logger.WithName("trace")
	loggerWrap := &errorHandler{logger: logger}

	if _, ok := os.LookupEnv("OTEL_SERVICE_NAME"); !ok {
		os.Setenv("OTEL_SERVICE_NAME", defaultServiceName)
	}

	traceExporter, err := initTraceExporter(ctx, logger)
	if err != nil {
		loggerWrap.Handle(fmt.Errorf("%s: %v", "init trace exporter failed", err))
		return nil, err
	}

	tracerProvider := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(traceExporter),
		sdktrace.WithSampler(initSampler(loggerWrap)),
		sdktrace.WithResource(resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(os.Getenv("OTEL_SERVICE_NAME")),
			semconv.ServiceVersion(version.BundleVersion),
		)),
	)
	otel.SetTracerProvider(tracerProvider)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(propagation.TraceContext{}, propagation.Baggage{}))
	otel.SetErrorHandler(loggerWrap)

	return func(ctx context.Context) error {
		logger.V(logutil.DEFAULT).Info("trace provider shutting down")
		return tracerProvider.Shutdown(ctx)
	}, nil
}

// initSampler handles OTEL_TRACES_SAMPLER manually since the Go SDK has no automatic sampler.
// A simulation is a handful of spans, so the ratio defaults to 1.
func initSampler(h *errorHandler) sdktrace.Sampler {
	samplerType, ok := os.LookupEnv("OTEL_TRACES_SAMPLER")
	if !ok {
		samplerType = "parentbased_traceidratio"
	}
	fraction := defaultSamplerArg
	if samplerArg, ok := os.LookupEnv("OTEL_TRACES_SAMPLER_ARG"); ok {
		parsed, err := strconv.ParseFloat(samplerArg, 64)
		if err != nil {
			h.Handle(fmt.Errorf("invalid sampler argument %q, using %v", samplerArg, defaultSamplerArg))
		} else {
			fraction = parsed
		}
	}

	switch samplerType {
	case "always_on":
		return sdktrace.AlwaysSample()
	case "always_off":
		return sdktrace.NeverSample()
	case "parentbased_traceidratio":
	default:
		h.Handle(fmt.Errorf("unsupported sampler type: %s, fallback to parentbased_traceidratio with %v ratio", samplerType, fraction))
	}
	return sdktrace.ParentBased(sdktrace.TraceIDRatioBased(fraction))
}

// initTraceExporter create a SpanExporter
// support exporter type
// - console: export spans to stderr, so reports on stdout stay parseable
// - otlp: export spans through gRPC to an opentelemetry collector
func initTraceExporter(ctx context.Context, logger logr.Logger) (sdktrace.SpanExporter, error) {
	exporterType, ok := os.LookupEnv("OTEL_TRACES_EXPORTER")
	if !ok {
		exporterType = "console"
	}

	logger.Info("init OTel trace exporter", "type", exporterType)
	switch exporterType {
	case "console":
		traceExporter, err := stdouttrace.New(stdouttrace.WithWriter(os.Stderr), stdouttrace.WithPrettyPrint())
		if err != nil {
			return nil, fmt.Errorf("failed to create stdouttrace exporter: %w", err)
		}
		return traceExporter, nil
	case "otlp":
		if _, ok := os.LookupEnv("OTEL_EXPORTER_OTLP_ENDPOINT"); !ok {
			os.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "http://localhost:4317")
		}
		traceExporter, err := otlptracegrpc.New(ctx, otlptracegrpc.WithInsecure())
		if err != nil {
			return nil, fmt.Errorf("failed to create otlp-grcp exporter: %w", err)
		}
		return traceExporter, nil
	default:
		return nil, fmt.Errorf("unsupported trace exporter type %q", exporterType)
	}
}
