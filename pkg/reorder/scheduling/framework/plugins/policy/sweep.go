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
	SweepPolicyType = "sweep"
)

// compile-time type validation
var _ framework.Policy = &Sweep{}

func init() {
	plugins.Register(SweepPolicyType, SweepFactory)
}

// SweepFactory defines the factory function for Sweep.
func SweepFactory(name string, _ json.RawMessage) (plugins.Plugin, error) {
	return NewSweep().WithName(name), nil
}

// NewSweep initializes a new Sweep and returns its pointer.
func NewSweep() *Sweep {
	return &Sweep{typedName: plugins.TypedName{Type: SweepPolicyType, Name: SweepPolicyType}}
}

// Sweep services requests in ascending address order, wrapping from the highest back to the lowest. Geometry is
// only used to report the distance.
type Sweep struct {
	typedName plugins.TypedName
}

// TypedName returns the type and name tuple of this plugin instance.
func (p *Sweep) TypedName() plugins.TypedName {
	return p.typedName
}

// WithName sets the name of the policy.
func (p *Sweep) WithName(name string) *Sweep {
	p.typedName.Name = name
	return p
}

// SelectNext returns the request following the last completed address.
func (p *Sweep) SelectNext(st *types.State) (types.Pick, error) {
	return sweepPick(st), nil
}
