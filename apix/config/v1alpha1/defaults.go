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
	"k8s.io/utils/ptr"
)

const (
	defaultCapacity   = 10000
	defaultPolicyType = "nearest"
	defaultSkew       = 50
)

// SetDefaults_SeekSchedulerConfig sets default values in a
// SeekSchedulerConfig struct.
//
// This naming convension is required by the defalter-gen code.
func SetDefaults_SeekSchedulerConfig(cfg *SeekSchedulerConfig) {
	if cfg.Capacity == nil {
		cfg.Capacity = ptr.To(defaultCapacity)
	}

	if cfg.Policy.Type == "" {
		cfg.Policy.Type = defaultPolicyType
	}
	// If no name was given for the policy, use it's type as the name
	if cfg.Policy.Name == "" {
		cfg.Policy.Name = cfg.Policy.Type
	}

	// Skew is the only geometry field whose zero value is meaningful, so
	// it is resolved here rather than by the geometry package.
	if cfg.Geometry == nil {
		cfg.Geometry = &Geometry{}
	}
	if cfg.Geometry.Skew == nil {
		cfg.Geometry.Skew = ptr.To[uint32](defaultSkew)
	}
}
