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
	"flag"
	"fmt"

	"github.com/spf13/pflag"
	uberzap "go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"k8s.io/apimachinery/pkg/util/sets"
	"sigs.k8s.io/controller-runtime/pkg/log/zap"

	"sigs.k8s.io/seek-scheduler/pkg/reorder/plugins"
	"sigs.k8s.io/seek-scheduler/pkg/reorder/workload"
	logutil "sigs.k8s.io/seek-scheduler/pkg/reorder/util/logging"
)

const (
	ZapLogLevelFlagName = "zap-log-level"

	OutputText = "text"
	OutputYAML = "yaml"
)

// Options contains the command-line configuration for the simulator.
type Options struct {
	//
	// Scheduler configuration.
	//
	ConfigFile string   // Path of a SeekSchedulerConfig file.
	ConfigText string   // Inline SeekSchedulerConfig, used instead of ConfigFile.
	Policies   []string // Policy types to compare. Empty means the configured policy only.
	//
	// Workload.
	//
	Requests    int    // Outstanding requests, zero means the scheduler capacity.
	Rounds      int    // Steady-state rounds after the initial fill.
	Seed        uint64 // Address generator seed, shared by every policy.
	Drain       bool   // Serve every outstanding request at the end.
	Parallelism int    // Maximum number of policies simulated at once.
	//
	// Output.
	//
	Output      string // Report format, text or yaml.
	DumpMetrics bool   // Print the metrics registry after the report.
	//
	// Diagnostics.
	//
	LogVerbosity int         // Number for the log level verbosity.
	ZapOptions   zap.Options // Zap logging options.
	Tracing      bool        // Exports a span per policy run, configured through the OTEL_* environment.
	ProfileDir   string      // Directory the runtime profiles are written to after the run.

	// internal
	fs *pflag.FlagSet // FlagSet used in AddFlags() and consulted in Complete()
}

// NewOptions returns a new Options struct initialized with default values.
func NewOptions() *Options {
	return &Options{
		Rounds:       workload.DefaultRounds,
		Seed:         1,
		Drain:        true,
		Parallelism:  4,
		Output:       OutputText,
		LogVerbosity: logutil.DEFAULT,
		ZapOptions:   zap.Options{Development: true},
	}
}

// AddFlags binds the Options fields to command-line flags on the given FlagSet.
func (opts *Options) AddFlags(fs *pflag.FlagSet) {
	if fs == nil {
		fs = pflag.CommandLine
	}
	opts.fs = fs

	fs.StringVar(&opts.ConfigFile, "config-file", opts.ConfigFile,
		"The path of the scheduler configuration file.")
	fs.StringVar(&opts.ConfigText, "config-text", opts.ConfigText,
		"The scheduler configuration in YAML, used instead of --config-file.")
	fs.StringSliceVar(&opts.Policies, "policy", opts.Policies,
		"Repeatable. A policy type to simulate. When omitted the configured policy is simulated.")
	fs.IntVar(&opts.Requests, "requests", opts.Requests,
		"The number of outstanding requests. Zero fills the scheduler to capacity.")
	fs.IntVar(&opts.Rounds, "rounds", opts.Rounds,
		"The number of select, complete and insert rounds after the initial fill.")
	fs.Uint64Var(&opts.Seed, "seed", opts.Seed,
		"The seed of the address generator. Every policy sees the same arrivals.")
	fs.BoolVar(&opts.Drain, "drain", opts.Drain,
		"Serve every outstanding request after the last round.")
	fs.IntVar(&opts.Parallelism, "parallelism", opts.Parallelism,
		"The maximum number of policies simulated concurrently.")
	fs.StringVarP(&opts.Output, "output", "o", opts.Output,
		"The report format, one of text or yaml.")
	fs.BoolVar(&opts.DumpMetrics, "dump-metrics", opts.DumpMetrics,
		"Print the metrics in the Prometheus text format after the report.")
	fs.IntVarP(&opts.LogVerbosity, "v", "v", opts.LogVerbosity,
		"Number for the log level verbosity.")
	fs.BoolVar(&opts.Tracing, "tracing", opts.Tracing,
		"Enables OpenTelemetry tracing. The exporter is configured through the OTEL_* environment variables.")
	fs.StringVar(&opts.ProfileDir, "profile-dir", opts.ProfileDir,
		"When set, the runtime profiles are written to this directory after the simulation.")

	// Bind zap flags (zap expects a standard Go FlagSet; pflag.FlagSet is not compatible).
	gofs := flag.NewFlagSet("zap", flag.ExitOnError)
	opts.ZapOptions.BindFlags(gofs)
	fs.AddGoFlagSet(gofs)
}

// Complete performs post-processing of parsed command-line arguments.
func (opts *Options) Complete() error {
	// Derive the zap log level from the -v flag when --zap-log-level is not set explicitly.
	zapLogLevelFlag := opts.fs.Lookup(ZapLogLevelFlagName)
	if zapLogLevelFlag != nil && !zapLogLevelFlag.Changed {
		lvl := -1 * (opts.LogVerbosity)
		opts.ZapOptions.Level = uberzap.NewAtomicLevelAt(zapcore.Level(int8(lvl)))
		zapLogLevelFlag.Changed = true
	}
	// Drop repeated policies, keeping the order given.
	seen := sets.New[string]()
	unique := make([]string, 0, len(opts.Policies))
	for _, p := range opts.Policies {
		if !seen.Has(p) {
			seen.Insert(p)
			unique = append(unique, p)
		}
	}
	opts.Policies = unique
	return nil
}

// Validate checks the Options for invalid or conflicting values.
func (opts *Options) Validate() error {
	if opts.ConfigFile != "" && opts.ConfigText != "" {
		return fmt.Errorf("flags %q and %q are mutually exclusive", "config-file", "config-text")
	}
	registered := sets.New(plugins.Types()...)
	for _, p := range opts.Policies {
		if !registered.Has(p) {
			return fmt.Errorf("invalid value %q for flag %q: known policies are %v", p, "policy", sets.List(registered))
		}
	}
	for _, nc := range []struct {
		name  string
		value int
	}{
		{"requests", opts.Requests},
		{"rounds", opts.Rounds},
	} {
		if nc.value < 0 {
			return fmt.Errorf("invalid value %d for flag %q: must be >= 0", nc.value, nc.name)
		}
	}
	if opts.Parallelism < 1 {
		return fmt.Errorf("invalid value %d for flag %q: must be >= 1", opts.Parallelism, "parallelism")
	}
	if opts.Output != OutputText && opts.Output != OutputYAML {
		return fmt.Errorf("invalid value %q for flag %q: must be %s or %s", opts.Output, "output", OutputText, OutputYAML)
	}
	if opts.LogVerbosity < 0 {
		return fmt.Errorf("invalid value %d for flag %q: must be >= 0", opts.LogVerbosity, "v")
	}
	return nil
}
