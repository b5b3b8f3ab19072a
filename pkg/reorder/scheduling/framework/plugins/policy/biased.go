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

package policy

import (
	"encoding/json"

	"sigs.k8s.io/seek-scheduler/pkg/reorder/plugins"
	"sigs.k8s.io/seek-scheduler/pkg/reorder/scheduling/framework"
	"sigs.k8s.io/seek-scheduler/pkg/reorder/scheduling/types"
)

const (
	NearestBiasedBySweepPolicyType = "nearest-biased-by-sweep"
)

// compile-time type validation
var _ framework.Policy = &NearestBiasedBySweep{}

func init() {
	plugins.Register(NearestBiasedBySweepPolicyType, NearestBiasedBySweepFactory)
}

// NearestBiasedBySweepFactory defines the factory function for NearestBiasedBySweep.
func NearestBiasedBySweepFactory(name string, _ json.RawMessage) (plugins.Plugin, error) {
	return NewNearestBiasedBySweep().WithName(name), nil
}

// NewNearestBiasedBySweep initializes a new NearestBiasedBySweep and returns its pointer.
func NewNearestBiasedBySweep() *NearestBiasedBySweep {
	return &NearestBiasedBySweep{
		typedName: plugins.TypedName{Type: NearestBiasedBySweepPolicyType, Name: NearestBiasedBySweepPolicyType},
	}
}

// NearestBiasedBySweep prefers the sweep candidate unless the nearest request is clearly closer: its distance
// times 1.5 must be below the sweep candidate's. This bounds how long low addresses can be starved.
type NearestBiasedBySweep struct {
	typedName plugins.TypedName
}

// TypedName returns the type and name tuple of this plugin instance.
func (p *NearestBiasedBySweep) TypedName() plugins.TypedName {
	return p.typedName
}

// WithName sets the name of the policy.
func (p *NearestBiasedBySweep) WithName(name string) *NearestBiasedBySweep {
	p.typedName.Name = name
	return p
}

// SelectNext returns the nearest or the sweep candidate.
func (p *NearestBiasedBySweep) SelectNext(st *types.State) (types.Pick, error) {
	nearest, err := nearestPick(st)
	if err != nil || !nearest.Found {
		return nearest, err
	}
	sweep := sweepPick(st)
	if d := nearest.Distance; d+d/2 < sweep.Distance {
		return nearest, nil
	}
	return sweep, nil
}
