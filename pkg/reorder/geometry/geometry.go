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

// Package geometry maps block addresses onto a rotating-storage layout and prices the movement between
// two positions on it.
//
// The layout is a single head over OffsetCount concentric offsets (tracks), each split into
// BucketsPerRevolution angular buckets (sector groups) of BlocksPerBucket blocks. Moving one offset
// further out shifts the angular start of the next offset by Skew buckets.
//
// Distances are expressed in bucket steps: the number of buckets that pass under the head before it can
// access the target. A seek may therefore never cost zero steps; revisiting the current bucket costs a full
// revolution.
package geometry

import (
	"fmt"

	errutil "sigs.k8s.io/seek-scheduler/pkg/reorder/util/error"
)

const (
	DefaultBucketsPerRevolution uint32 = 360
	DefaultOffsetCount          uint32 = 5000
	DefaultBlocksPerBucket      uint32 = 10
	DefaultSkew                 uint32 = 50

	// defaultSeekTimeRevolutions sizes the seek table when no explicit limit is configured.
	defaultSeekTimeRevolutions uint32 = 3
	// maxProfileSteps bounds the search for the full-stroke seek time.
	maxProfileSteps uint32 = 1 << 24
)

// Coordinate is the physical position of an address.
type Coordinate struct {
	Bucket uint32
	Offset uint32
}

func (c Coordinate) String() string {
	return fmt.Sprintf("(%d,%d)", c.Bucket, c.Offset)
}

// Config describes the layout and the seek profile.
type Config struct {
	// BucketsPerRevolution is the number of angular buckets in one revolution.
	// Optional: Defaults to 360.
	BucketsPerRevolution uint32
	// OffsetCount is the number of radial offsets.
	// Optional: Defaults to 5000.
	OffsetCount uint32
	// BlocksPerBucket is the number of addresses that share one bucket on one offset.
	// Optional: Defaults to 10.
	BlocksPerBucket uint32
	// Skew is the angular shift, in buckets, applied per radial offset. Zero means no skew.
	Skew uint32
	// Profile shapes the seek table.
	Profile ProfileConfig
	// SeekTimeLimit is the size of the seek table, in bucket steps. It must cover a full-stroke seek plus one
	// revolution.
	// Optional: Defaults to three revolutions, raised to the minimum the profile requires.
	SeekTimeLimit uint32
}

// DefaultConfig returns the reference layout: 360 buckets, 5000 offsets, 10 blocks per bucket, skew 50.
func DefaultConfig() Config {
	return Config{
		BucketsPerRevolution: DefaultBucketsPerRevolution,
		OffsetCount:          DefaultOffsetCount,
		BlocksPerBucket:      DefaultBlocksPerBucket,
		Skew:                 DefaultSkew,
	}
}

// ValidateAndApplyDefaults checks the configuration for validity and populates any empty fields with system defaults.
// It returns a new, validated `Config` object and does not mutate the receiver.
func (c *Config) ValidateAndApplyDefaults() (*Config, error) {
	cfg := *c
	if cfg.BucketsPerRevolution == 0 {
		cfg.BucketsPerRevolution = DefaultBucketsPerRevolution
	}
	if cfg.OffsetCount == 0 {
		cfg.OffsetCount = DefaultOffsetCount
	}
	if cfg.BlocksPerBucket == 0 {
		cfg.BlocksPerBucket = DefaultBlocksPerBucket
	}
	profile, err := cfg.Profile.validateAndApplyDefaults()
	if err != nil {
		return nil, err
	}
	cfg.Profile = profile

	fullStroke, ok := profile.stepsToReach(cfg.OffsetCount - 1)
	if !ok {
		return nil, errutil.Errorf(errutil.BadConfiguration,
			"seek profile never reaches offset delta %d within %d steps", cfg.OffsetCount-1, maxProfileSteps)
	}
	// Worst case: a full-stroke seek that just missed the target bucket and waits one more revolution.
	required := fullStroke + cfg.BucketsPerRevolution + 1
	if cfg.SeekTimeLimit == 0 {
		cfg.SeekTimeLimit = max(defaultSeekTimeRevolutions*cfg.BucketsPerRevolution, required)
	} else if cfg.SeekTimeLimit < required {
		return nil, errutil.Errorf(errutil.BadConfiguration,
			"seek time limit %d does not cover a full-stroke seek (%d steps) plus one revolution (%d steps)",
			cfg.SeekTimeLimit, fullStroke, cfg.BucketsPerRevolution)
	}
	return &cfg, nil
}

// Geometry is an immutable, validated layout with its precomputed seek table.
type Geometry struct {
	cfg Config
	// reach[i] is the largest offset delta the head can cover while i buckets pass under it.
	reach []uint32
}

// New validates cfg and precomputes the seek table.
func New(cfg Config) (*Geometry, error) {
	validated, err := cfg.ValidateAndApplyDefaults()
	if err != nil {
		return nil, err
	}
	reach := make([]uint32, validated.SeekTimeLimit)
	for i := range reach {
		reach[i] = validated.Profile.reach(uint32(i))
	}
	return &Geometry{cfg: *validated, reach: reach}, nil
}

// Config returns the validated configuration.
func (g *Geometry) Config() Config { return g.cfg }

func (g *Geometry) BucketCount() uint32     { return g.cfg.BucketsPerRevolution }
func (g *Geometry) OffsetCount() uint32     { return g.cfg.OffsetCount }
func (g *Geometry) BlocksPerBucket() uint32 { return g.cfg.BlocksPerBucket }
func (g *Geometry) SeekTimeLimit() uint32   { return g.cfg.SeekTimeLimit }

// BlockCount is the number of addressable blocks.
func (g *Geometry) BlockCount() uint64 {
	return uint64(g.cfg.BucketsPerRevolution) * uint64(g.cfg.OffsetCount) * uint64(g.cfg.BlocksPerBucket)
}

// Contains reports whether address lies inside the layout.
func (g *Geometry) Contains(address uint64) bool {
	return address < g.BlockCount()
}

// ToCoordinate maps an address to its bucket and offset.
func (g *Geometry) ToCoordinate(address uint64) Coordinate {
	buckets := uint64(g.cfg.BucketsPerRevolution)
	bucketIndex := address / uint64(g.cfg.BlocksPerBucket)
	offset := bucketIndex / buckets
	bucket := ((bucketIndex % buckets) + uint64(g.cfg.Skew)*offset) % buckets
	return Coordinate{Bucket: uint32(bucket), Offset: uint32(offset)}
}

// Reach returns the largest offset delta coverable in the given number of bucket steps.
// Steps at or beyond SeekTimeLimit panic.
func (g *Geometry) Reach(steps uint32) uint32 {
	return g.reach[steps]
}

// HalfRevolutionReach is the offset delta coverable in half a revolution. Anything farther costs more than a
// revolution to visit and come back from.
func (g *Geometry) HalfRevolutionReach() uint32 {
	return g.reach[g.cfg.BucketsPerRevolution/2]
}

// Window returns the inclusive offset range reachable from offset in the given number of steps, clamped to the
// layout.
func (g *Geometry) Window(offset, steps uint32) (bottom, top uint32) {
	delta := g.reach[steps]
	top = min(offset+delta, g.cfg.OffsetCount-1)
	if offset > delta {
		bottom = offset - delta
	}
	return bottom, top
}

// Cost returns the number of bucket steps needed to move from one coordinate to another.
//
// The target bucket is always reached moving forward, so equal buckets cost at least one revolution. Cost panics
// with an InvariantViolation error when no step count below SeekTimeLimit reaches the target, which a validated
// Config rules out.
func (g *Geometry) Cost(from, to Coordinate) uint32 {
	n := g.cfg.BucketsPerRevolution
	steps := (to.Bucket + n - from.Bucket%n) % n
	if steps == 0 {
		steps = n
	}
	for ; steps < g.cfg.SeekTimeLimit; steps += n {
		if bottom, top := g.Window(from.Offset, steps); to.Offset >= bottom && to.Offset <= top {
			return steps
		}
	}
	panic(errutil.Errorf(errutil.InvariantViolation,
		"seek from %s to %s exceeds the seek time limit %d", from, to, g.cfg.SeekTimeLimit))
}
