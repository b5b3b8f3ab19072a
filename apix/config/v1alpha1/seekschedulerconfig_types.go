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

package v1alpha1

import (
	"encoding/json"
	"fmt"
	"strings"

	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
)

// +kubebuilder:object:root=true

// SeekSchedulerConfig is the Schema for the seekschedulerconfigs API
type SeekSchedulerConfig struct {
	metav1.TypeMeta `json:",inline"`

	// +optional
	// Capacity is the number of requests the scheduler can hold at once.
	// If omitted, 10000 is used.
	Capacity *int `json:"capacity,omitempty"`

	// +optional
	// Geometry describes the layout and the seek profile of the device.
	// If not present, the reference layout is used.
	Geometry *Geometry `json:"geometry,omitempty"`

	// +optional
	// Policy is the selection policy that will be instantiated.
	// If omitted the nearest policy is used.
	Policy PluginSpec `json:"policy,omitempty"`
}

func (cfg SeekSchedulerConfig) String() string {
	capacity := "nil"
	if cfg.Capacity != nil {
		capacity = fmt.Sprintf("%d", *cfg.Capacity)
	}
	return fmt.Sprintf("{Capacity: %s, Geometry: %v, Policy: %v}", capacity, cfg.Geometry, cfg.Policy)
}

// PluginSpec names a registered plugin type together with its parameters.
type PluginSpec struct {
	// +optional
	// Name provides a name for plugin entries to reference. If
	// omitted, the value of the Plugin's Type field will be used.
	Name string `json:"name,omitempty"`

	// +required
	// +kubebuilder:validation:Required
	// Type specifies the plugin type to be instantiated.
	Type string `json:"type"`

	// +optional
	// Parameters are the set of parameters to be passed to the plugin's
	// factory function. The factory function is responsible
	// to parse the parameters.
	Parameters json.RawMessage `json:"parameters,omitempty"`
}

func (ps PluginSpec) String() string {
	var parameters string
	if ps.Parameters != nil {
		parameters = fmt.Sprintf(", Parameters: %s", ps.Parameters)
	}
	return fmt.Sprintf("{%s/%s%s}", ps.Name, ps.Type, parameters)
}

// Geometry is the layout of the device.
type Geometry struct {
	// +optional
	// BucketsPerRevolution is the number of angular buckets in one revolution.
	BucketsPerRevolution *uint32 `json:"bucketsPerRevolution,omitempty"`

	// +optional
	// OffsetCount is the number of radial offsets.
	OffsetCount *uint32 `json:"offsetCount,omitempty"`

	// +optional
	// BlocksPerBucket is the number of addresses sharing one bucket on one offset.
	BlocksPerBucket *uint32 `json:"blocksPerBucket,omitempty"`

	// +optional
	// Skew is the angular shift, in buckets, applied per radial offset.
	// An explicit zero disables skewing.
	Skew *uint32 `json:"skew,omitempty"`

	// +optional
	// SeekTimeLimit is the size of the seek table in bucket steps.
	SeekTimeLimit *uint32 `json:"seekTimeLimit,omitempty"`

	// +optional
	// SeekProfile shapes the seek table.
	SeekProfile *SeekProfile `json:"seekProfile,omitempty"`
}

func (g *Geometry) String() string {
	if g == nil {
		return "{}"
	}
	fields := []string{}
	add := func(name string, v *uint32) {
		if v != nil {
			fields = append(fields, fmt.Sprintf("%s: %d", name, *v))
		}
	}
	add("BucketsPerRevolution", g.BucketsPerRevolution)
	add("OffsetCount", g.OffsetCount)
	add("BlocksPerBucket", g.BlocksPerBucket)
	add("Skew", g.Skew)
	add("SeekTimeLimit", g.SeekTimeLimit)
	if g.SeekProfile != nil {
		fields = append(fields, fmt.Sprintf("SeekProfile: %v", g.SeekProfile))
	}
	return "{" + strings.Join(fields, ", ") + "}"
}

// SeekProfile is the piecewise seek-time curve.
type SeekProfile struct {
	// +optional
	// SettleSteps is the number of bucket steps during which the head cannot leave its offset.
	SettleSteps uint32 `json:"settleSteps,omitempty"`

	// +optional
	// AccelerationDivisor scales the quadratic part of the curve.
	AccelerationDivisor float64 `json:"accelerationDivisor,omitempty"`

	// +optional
	// Breakpoint is the step at which the curve turns linear.
	Breakpoint uint32 `json:"breakpoint,omitempty"`

	// +optional
	// Velocity is the number of offsets crossed per step on the linear part.
	Velocity float64 `json:"velocity,omitempty"`
}

func (sp *SeekProfile) String() string {
	if sp == nil {
		return "{}"
	}
	return fmt.Sprintf("{SettleSteps: %d, AccelerationDivisor: %g, Breakpoint: %d, Velocity: %g}",
		sp.SettleSteps, sp.AccelerationDivisor, sp.Breakpoint, sp.Velocity)
}
