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

// Package workload drives a Scheduler with a randomized stream of requests and measures how much seek distance its
// policy saves over serving the same requests in arrival order.
package workload

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"k8s.io/apimachinery/pkg/util/sets"
	"k8s.io/utils/clock"
	"sigs.k8s.io/controller-runtime/pkg/log"

	"sigs.k8s.io/seek-scheduler/pkg/reorder/scheduling"
	errutil "sigs.k8s.io/seek-scheduler/pkg/reorder/util/error"
	logutil "sigs.k8s.io/seek-scheduler/pkg/reorder/util/logging"
)

const (
	// DefaultRounds is the default number of steady-state rounds.
	DefaultRounds = 10000

	tracerName = "sigs.k8s.io/seek-scheduler/pkg/reorder/workload"

	// maxAddressAttempts bounds the retries for an address that is not already outstanding.
	maxAddressAttempts = 30
)

// Config shapes a run.
type Config struct {
	// Requests is the number of requests kept outstanding.
	// Optional: Defaults to the scheduler's capacity.
	Requests int
	// Rounds is the number of select, complete and insert rounds after the initial fill.
	// Optional: Defaults to 10000.
	Rounds int
	// Seed seeds the address generator. Runs with the same seed submit the same arrivals.
	Seed uint64
	// Drain serves every outstanding request after the last round.
	Drain bool
}

// ValidateAndApplyDefaults checks the configuration against the scheduler it will drive and populates any empty
// fields. It returns a new, validated `Config` object and does not mutate the receiver.
func (c *Config) ValidateAndApplyDefaults(stats scheduling.Stats, blockCount uint64) (*Config, error) {
	cfg := *c
	if cfg.Requests == 0 {
		cfg.Requests = stats.Capacity
	}
	if cfg.Rounds == 0 {
		cfg.Rounds = DefaultRounds
	}
	if cfg.Requests < 0 || cfg.Rounds < 0 {
		return nil, errutil.Errorf(errutil.BadConfiguration, "requests (%d) and rounds (%d) must not be negative",
			cfg.Requests, cfg.Rounds)
	}
	if cfg.Requests > stats.Capacity-stats.Pending {
		return nil, errutil.Errorf(errutil.BadConfiguration, "requests (%d) exceed the free capacity (%d)",
			cfg.Requests, stats.Capacity-stats.Pending)
	}
	if uint64(cfg.Requests)*2 > blockCount {
		return nil, errutil.Errorf(errutil.BadConfiguration, "requests (%d) must not exceed half the block count (%d)",
			cfg.Requests, blockCount)
	}
	return &cfg, nil
}

// Result summarizes a run. Distances are in bucket steps.
type Result struct {
	// Policy is the "name/type" of the policy that served the run.
	Policy string `json:"policy"`
	// Submitted is the number of inserted requests.
	Submitted int `json:"submitted"`
	// Completed is the number of served requests.
	Completed int `json:"completed"`
	// ReorderedDistance is the total distance of the served order.
	ReorderedDistance uint64 `json:"reorderedDistance"`
	// ArrivalDistance is the total distance of the arrival order.
	ArrivalDistance uint64 `json:"arrivalDistance"`
	// OffsetsTraveled is the total radial movement of the served order.
	OffsetsTraveled uint64 `json:"offsetsTraveled"`
	// Elapsed is the wall time of the run.
	Elapsed time.Duration `json:"elapsed"`
}

// Gain is the arrival-order distance divided by the reordered distance.
func (r Result) Gain() float64 {
	if r.ReorderedDistance == 0 {
		return 0
	}
	return float64(r.ArrivalDistance) / float64(r.ReorderedDistance)
}

// Driver runs one workload against one Scheduler. It is not safe for concurrent use.
type Driver struct {
	scheduler   *scheduling.Scheduler
	cfg         Config
	clock       clock.PassiveClock
	rng         *rand.Rand
	outstanding sets.Set[uint64]
	lastArrival uint64
	lastServed  uint64
	result      Result
}

// NewDriver validates cfg against s and returns a Driver ready to Run.
func NewDriver(s *scheduling.Scheduler, cfg Config, clk clock.PassiveClock) (*Driver, error) {
	validated, err := cfg.ValidateAndApplyDefaults(s.Stats(), s.BlockCount())
	if err != nil {
		return nil, err
	}
	if clk == nil {
		clk = clock.RealClock{}
	}
	start := s.Stats().CurrentAddress
	return &Driver{
		scheduler:   s,
		cfg:         *validated,
		clock:       clk,
		rng:         rand.New(rand.NewPCG(validated.Seed, validated.Seed^0x9e3779b97f4a7c15)),
		outstanding: sets.New[uint64](),
		lastArrival: start,
		lastServed:  start,
		result:      Result{Policy: s.Policy().String()},
	}, nil
}

// Run fills the scheduler, runs the steady-state rounds and, if configured, drains it.
func (d *Driver) Run(ctx context.Context) (result Result, err error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "workload.Run", trace.WithAttributes(
		attribute.String("policy", d.result.Policy),
		attribute.Int("requests", d.cfg.Requests),
		attribute.Int("rounds", d.cfg.Rounds),
	))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.SetAttributes(
			attribute.Int("completed", result.Completed),
			attribute.Int64("reordered_distance", int64(result.ReorderedDistance)),
			attribute.Int64("arrival_distance", int64(result.ArrivalDistance)),
		)
		span.End()
	}()

	logger := log.FromContext(ctx).WithValues("policy", d.result.Policy)
	start := d.clock.Now()

	for d.outstanding.Len() < d.cfg.Requests {
		if err := d.arrive(ctx); err != nil {
			return d.result, fmt.Errorf("failed to fill the scheduler - %w", err)
		}
	}
	logger.V(logutil.VERBOSE).Info("Scheduler filled", "requests", d.outstanding.Len())

	for round := 0; round < d.cfg.Rounds; round++ {
		if err := ctx.Err(); err != nil {
			return d.result, err
		}
		if err := d.serve(ctx); err != nil {
			return d.result, fmt.Errorf("round %d - %w", round, err)
		}
		if err := d.arrive(ctx); err != nil {
			return d.result, fmt.Errorf("round %d - %w", round, err)
		}
	}

	if d.cfg.Drain {
		for d.outstanding.Len() > 0 {
			if err := d.serve(ctx); err != nil {
				return d.result, fmt.Errorf("failed to drain the scheduler - %w", err)
			}
		}
	}

	d.result.Elapsed = d.clock.Since(start)
	logger.V(logutil.DEFAULT).Info("Workload finished", "completed", d.result.Completed,
		"reorderedDistance", d.result.ReorderedDistance, "arrivalDistance", d.result.ArrivalDistance,
		"gain", d.result.Gain())
	return d.result, nil
}

// arrive inserts one request at a random address that is not outstanding.
func (d *Driver) arrive(ctx context.Context) error {
	blockCount := d.scheduler.BlockCount()
	for attempt := 0; attempt < maxAddressAttempts; attempt++ {
		address := d.rng.Uint64N(blockCount)
		if d.outstanding.Has(address) {
			continue
		}
		if err := d.scheduler.Insert(ctx, address, 1); err != nil {
			return err
		}
		distance, err := d.scheduler.Distance(d.lastArrival, address)
		if err != nil {
			return err
		}
		d.outstanding.Insert(address)
		d.result.ArrivalDistance += uint64(distance)
		d.result.Submitted++
		d.lastArrival = address
		return nil
	}
	return fmt.Errorf("no free address found after %d attempts", maxAddressAttempts)
}

// serve selects and completes one request.
func (d *Driver) serve(ctx context.Context) error {
	pick, err := d.scheduler.SelectNext(ctx)
	if err != nil {
		return err
	}
	if !pick.Found {
		return errutil.Errorf(errutil.InvariantViolation, "no target while %d requests are outstanding",
			d.outstanding.Len())
	}
	from, err := d.scheduler.Coordinate(d.lastServed)
	if err != nil {
		return err
	}
	to, err := d.scheduler.Coordinate(pick.Address)
	if err != nil {
		return err
	}
	if err := d.scheduler.Complete(ctx, pick.Address); err != nil {
		return err
	}
	d.outstanding.Delete(pick.Address)
	d.result.ReorderedDistance += uint64(pick.Distance)
	d.result.OffsetsTraveled += uint64(absDiff(from.Offset, to.Offset))
	d.result.Completed++
	d.lastServed = pick.Address
	return nil
}

func absDiff(a, b uint32) uint32 {
	if a > b {
		return a - b
	}
	return b - a
}
