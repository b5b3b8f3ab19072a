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

package scheduling

import (
	"k8s.io/utils/clock"

	"sigs.k8s.io/seek-scheduler/pkg/reorder/geometry"
	"sigs.k8s.io/seek-scheduler/pkg/reorder/scheduling/framework"
	"sigs.k8s.io/seek-scheduler/pkg/reorder/scheduling/framework/plugins/policy"
	errutil "sigs.k8s.io/seek-scheduler/pkg/reorder/util/error"
)

const (
	// DefaultCapacity is the default number of request records.
	DefaultCapacity = 10000
)

// Config is the construction-time configuration of a Scheduler.
type Config struct {
	// Capacity is the number of requests the scheduler can hold at once.
	// Optional: Defaults to 10000.
	Capacity int
	// Geometry describes the layout and seek profile.
	Geometry geometry.Config
	// Policy selects the next request. A policy instance keeps per-scheduler state and must not be shared.
	// Optional: Defaults to Nearest.
	Policy framework.Policy
	// Clock times selections.
	// Optional: Defaults to the real clock.
	Clock clock.PassiveClock
}

// DefaultConfig returns the reference configuration: the default geometry, 10000 records and the Nearest policy.
func DefaultConfig() *Config {
	return &Config{
		Capacity: DefaultCapacity,
		Geometry: geometry.DefaultConfig(),
		Policy:   policy.NewNearest(),
		Clock:    clock.RealClock{},
	}
}

// ValidateAndApplyDefaults checks the configuration for validity and populates any empty fields with system defaults.
// It returns a new, validated `Config` object and does not mutate the receiver.
func (c *Config) ValidateAndApplyDefaults() (*Config, error) {
	cfg := *c
	if cfg.Capacity == 0 {
		cfg.Capacity = DefaultCapacity
	}
	if cfg.Capacity < 0 {
		return nil, errutil.Errorf(errutil.BadConfiguration, "capacity must be positive, got %d", cfg.Capacity)
	}
	g, err := cfg.Geometry.ValidateAndApplyDefaults()
	if err != nil {
		return nil, err
	}
	cfg.Geometry = *g
	if cfg.Policy == nil {
		cfg.Policy = policy.NewNearest()
	}
	if cfg.Clock == nil {
		cfg.Clock = clock.RealClock{}
	}
	return &cfg, nil
}
