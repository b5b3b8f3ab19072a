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

package runner

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/go-logr/logr"
	"github.com/google/uuid"
	"github.com/prometheus/common/expfmt"
	"github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"
	"k8s.io/utils/clock"
	"sigs.k8s.io/controller-runtime/pkg/log"
	"sigs.k8s.io/yaml"

	"sigs.k8s.io/seek-scheduler/pkg/common/observability/logging"
	"sigs.k8s.io/seek-scheduler/pkg/common/observability/profiling"
	"sigs.k8s.io/seek-scheduler/pkg/common/observability/tracing"
	"sigs.k8s.io/seek-scheduler/pkg/reorder/config/loader"
	"sigs.k8s.io/seek-scheduler/pkg/reorder/metrics"
	"sigs.k8s.io/seek-scheduler/pkg/reorder/plugins"
	"sigs.k8s.io/seek-scheduler/pkg/reorder/scheduling"
	"sigs.k8s.io/seek-scheduler/pkg/reorder/scheduling/framework"
	"sigs.k8s.io/seek-scheduler/pkg/reorder/workload"
	"sigs.k8s.io/seek-scheduler/version"
)

var headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
var cellStyle = lipgloss.NewStyle().Padding(0, 1)

// Runner is the seek simulator. It compares selection policies on one shared, seeded workload.
type Runner struct {
	opts  *Options
	out   io.Writer
	clock clock.PassiveClock
}

// NewRunner returns a Runner that reports to stdout.
func NewRunner() *Runner {
	return &Runner{
		opts:  NewOptions(),
		out:   os.Stdout,
		clock: clock.RealClock{},
	}
}

// WithOutput sets the writer the report goes to.
func (r *Runner) WithOutput(out io.Writer) *Runner {
	r.out = out
	return r
}

// WithClock sets the clock used to time the runs.
func (r *Runner) WithClock(clk clock.PassiveClock) *Runner {
	r.clock = clk
	return r
}

// Report is the outcome of one simulator invocation.
type Report struct {
	RunID    string            `json:"runID"`
	Version  string            `json:"version"`
	Seed     uint64            `json:"seed"`
	Requests int               `json:"requests"`
	Rounds   int               `json:"rounds"`
	Results  []workload.Result `json:"results"`
}

// Run parses args, simulates every requested policy and writes the report.
func (r *Runner) Run(ctx context.Context, args []string) error {
	logging.InitSetupLogging()

	fs := pflag.NewFlagSet("seeksim", pflag.ContinueOnError)
	r.opts.AddFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := r.opts.Complete(); err != nil {
		return err
	}
	if err := r.opts.Validate(); err != nil {
		return fmt.Errorf("invalid options - %w", err)
	}

	runID := uuid.NewString()
	logger := logging.InitLogging(&r.opts.ZapOptions).WithValues("runID", runID)
	ctx = log.IntoContext(ctx, logger)
	logger.Info("Starting seek simulator", "version", version.BundleVersion, "commit", version.CommitSHA,
		"logLevel", logging.Level())

	base, err := r.loadConfig(logger)
	if err != nil {
		logger.Error(err, "Failed to load the scheduler configuration")
		return err
	}

	metrics.Register()

	if r.opts.Tracing {
		shutdown, err := tracing.InitTracing(ctx, logger)
		if err != nil {
			logger.Error(err, "Failed to init tracing")
			return err
		}
		defer func() {
			if err := shutdown(context.Background()); err != nil {
				logger.Error(err, "Failed to flush traces")
			}
		}()
	}
	if r.opts.ProfileDir != "" {
		profiling.EnableContentionProfiling()
	}

	results, err := r.simulate(ctx, base)
	if err != nil {
		logger.Error(err, "Simulation failed")
		return err
	}

	if r.opts.ProfileDir != "" {
		if err := profiling.WriteProfiles(r.opts.ProfileDir); err != nil {
			return fmt.Errorf("failed to write profiles - %w", err)
		}
		logger.Info("Wrote runtime profiles", "dir", r.opts.ProfileDir)
	}

	report := Report{
		RunID:    runID,
		Version:  version.BundleVersion,
		Seed:     r.opts.Seed,
		Requests: r.opts.Requests,
		Rounds:   r.opts.Rounds,
		Results:  results,
	}
	if err := r.writeReport(report); err != nil {
		return fmt.Errorf("failed to write the report - %w", err)
	}
	if r.opts.DumpMetrics {
		if err := dumpMetrics(r.out); err != nil {
			return fmt.Errorf("failed to dump metrics - %w", err)
		}
	}
	return nil
}

func (r *Runner) loadConfig(logger logr.Logger) (*scheduling.Config, error) {
	configBytes := []byte(r.opts.ConfigText)
	if r.opts.ConfigFile != "" {
		var err error
		if configBytes, err = os.ReadFile(r.opts.ConfigFile); err != nil {
			return nil, fmt.Errorf("failed to load config from a file '%s' - %w", r.opts.ConfigFile, err)
		}
	}
	if len(configBytes) == 0 {
		logger.Info("No configuration given, using the reference layout")
		return scheduling.DefaultConfig().ValidateAndApplyDefaults()
	}
	return loader.LoadConfig(configBytes, logger)
}

// simulate runs one scheduler per policy concurrently. Each run gets its own policy instance and the same seed.
func (r *Runner) simulate(ctx context.Context, base *scheduling.Config) ([]workload.Result, error) {
	policyTypes := r.opts.Policies
	runs := len(policyTypes)
	if runs == 0 {
		runs = 1
	}
	results := make([]workload.Result, runs)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.opts.Parallelism)
	for i := range runs {
		g.Go(func() error {
			cfg := *base
			if len(policyTypes) > 0 {
				p, err := plugins.New(policyTypes[i], "", nil)
				if err != nil {
					return err
				}
				policy, ok := p.(framework.Policy)
				if !ok {
					return fmt.Errorf("plugin type '%s' is not a selection policy", policyTypes[i])
				}
				cfg.Policy = policy
			}
			s, err := scheduling.NewScheduler(gctx, &cfg)
			if err != nil {
				return err
			}
			driver, err := workload.NewDriver(s, workload.Config{
				Requests: r.opts.Requests,
				Rounds:   r.opts.Rounds,
				Seed:     r.opts.Seed,
				Drain:    r.opts.Drain,
			}, r.clock)
			if err != nil {
				return err
			}
			result, err := driver.Run(gctx)
			if err != nil {
				return fmt.Errorf("policy %s - %w", s.Policy(), err)
			}
			results[i] = result
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func (r *Runner) writeReport(report Report) error {
	if r.opts.Output == OutputYAML {
		out, err := yaml.Marshal(report)
		if err != nil {
			return err
		}
		_, err = r.out.Write(out)
		return err
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		}).
		Headers("POLICY", "COMPLETED", "REORDERED", "ARRIVAL", "GAIN", "OFFSETS", "ELAPSED")
	for _, res := range report.Results {
		t.Row(
			res.Policy,
			strconv.Itoa(res.Completed),
			strconv.FormatUint(res.ReorderedDistance, 10),
			strconv.FormatUint(res.ArrivalDistance, 10),
			strconv.FormatFloat(res.Gain(), 'f', 3, 64),
			strconv.FormatUint(res.OffsetsTraveled, 10),
			res.Elapsed.String(),
		)
	}
	_, err := fmt.Fprintf(r.out, "run %s, seed %d\n%s\n", report.RunID, report.Seed, t.Render())
	return err
}

func dumpMetrics(out io.Writer) error {
	families, err := metrics.Gather()
	if err != nil {
		return err
	}
	encoder := expfmt.NewEncoder(out, expfmt.NewFormat(expfmt.TypeTextPlain))
	for _, mf := range families {
		if err := encoder.Encode(mf); err != nil {
			return err
		}
	}
	return nil
}
