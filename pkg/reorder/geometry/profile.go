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

package geometry

import (
	"math"

	errutil "sigs.k8s.io/seek-scheduler/pkg/reorder/util/error"
)

const (
	DefaultSettleSteps         uint32  = 10
	DefaultAccelerationDivisor float64 = 100
	DefaultBreakpoint          uint32  = 100
	DefaultVelocity            float64 = 6.4

	// truncationEpsilon absorbs float rounding so exact table values do not truncate one below.
	truncationEpsilon = 1e-9
)

// ProfileConfig shapes the seek table.
//
// Up to SettleSteps the head cannot leave its offset. Between SettleSteps and Breakpoint the head accelerates and
// decelerates, so the reachable delta grows quadratically: (i-SettleSteps)^2 / AccelerationDivisor. From Breakpoint
// on it moves at Velocity offsets per step, with the linear piece shifted to meet the quadratic one at Breakpoint.
type ProfileConfig struct {
	// Optional: Defaults to 10.
	SettleSteps uint32
	// Optional: Defaults to 100.
	AccelerationDivisor float64
	// Optional: Defaults to 100.
	Breakpoint uint32
	// Optional: Defaults to 6.4.
	Velocity float64
}

func (p ProfileConfig) validateAndApplyDefaults() (ProfileConfig, error) {
	if p.SettleSteps == 0 {
		p.SettleSteps = DefaultSettleSteps
	}
	if p.AccelerationDivisor == 0 {
		p.AccelerationDivisor = DefaultAccelerationDivisor
	}
	if p.Breakpoint == 0 {
		p.Breakpoint = DefaultBreakpoint
	}
	if p.Velocity == 0 {
		p.Velocity = DefaultVelocity
	}
	if p.AccelerationDivisor < 0 || p.Velocity < 0 {
		return p, errutil.Errorf(errutil.BadConfiguration,
			"seek profile acceleration divisor (%v) and velocity (%v) must be positive", p.AccelerationDivisor, p.Velocity)
	}
	if p.Breakpoint <= p.SettleSteps {
		return p, errutil.Errorf(errutil.BadConfiguration,
			"seek profile breakpoint (%d) must be greater than the settle steps (%d)", p.Breakpoint, p.SettleSteps)
	}
	return p, nil
}

func (p ProfileConfig) quadratic(i uint32) float64 {
	if i <= p.SettleSteps {
		return 0
	}
	d := float64(i - p.SettleSteps)
	return d * d / p.AccelerationDivisor
}

// reach is the seek table entry for i bucket steps.
func (p ProfileConfig) reach(i uint32) uint32 {
	v := p.quadratic(i)
	if i >= p.Breakpoint {
		v = p.Velocity*float64(i-p.Breakpoint) + p.quadratic(p.Breakpoint)
	}
	if v >= math.MaxUint32 {
		return math.MaxUint32
	}
	return uint32(v + truncationEpsilon)
}

// stepsToReach returns the smallest step count whose reach covers delta.
func (p ProfileConfig) stepsToReach(delta uint32) (uint32, bool) {
	for i := uint32(0); i < maxProfileSteps; i++ {
		if p.reach(i) >= delta {
			return i, true
		}
	}
	return 0, false
}
