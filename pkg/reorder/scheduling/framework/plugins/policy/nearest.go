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
	NearestPolicyType = "nearest"
)

// compile-time type validation
var _ framework.Policy = &Nearest{}

func init() {
	plugins.Register(NearestPolicyType, NearestFactory)
}

// NearestFactory defines the factory function for Nearest.
func NearestFactory(name string, _ json.RawMessage) (plugins.Plugin, error) {
	return NewNearest().WithName(name), nil
}

// NewNearest initializes a new Nearest and returns its pointer.
func NewNearest() *Nearest {
	return &Nearest{typedName: plugins.TypedName{Type: NearestPolicyType, Name: NearestPolicyType}}
}

// Nearest services the request reachable in the fewest bucket steps from the head.
type Nearest struct {
	typedName plugins.TypedName
}

// TypedName returns the type and name tuple of this plugin instance.
func (p *Nearest) TypedName() plugins.TypedName {
	return p.typedName
}

// WithName sets the name of the policy.
func (p *Nearest) WithName(name string) *Nearest {
	p.typedName.Name = name
	return p
}

// SelectNext returns the nearest request.
func (p *Nearest) SelectNext(st *types.State) (types.Pick, error) {
	return nearestPick(st)
}
