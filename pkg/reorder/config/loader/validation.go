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

package loader

import (
	"fmt"

	"go.uber.org/multierr"
	"k8s.io/apimachinery/pkg/util/sets"

	configapi "sigs.k8s.io/seek-scheduler/apix/config/v1alpha1"
	"sigs.k8s.io/seek-scheduler/pkg/reorder/plugins"
)

// validateConfig checks the fields that can be judged before any plugin is instantiated.
func validateConfig(cfg *configapi.SeekSchedulerConfig) error {
	if cfg.Capacity != nil && *cfg.Capacity <= 0 {
		return fmt.Errorf("capacity must be positive, got %d", *cfg.Capacity)
	}
	if err := validateGeometry(cfg.Geometry); err != nil {
		return fmt.Errorf("geometry validation failed: %w", err)
	}
	registeredTypes := sets.New(plugins.Types()...)
	if !registeredTypes.Has(cfg.Policy.Type) {
		return fmt.Errorf("policy type '%s' is not found in registry, known types are %v",
			cfg.Policy.Type, sets.List(registeredTypes))
	}
	return nil
}

// validateGeometry reports every invalid field, in declaration order.
func validateGeometry(g *configapi.Geometry) error {
	if g == nil {
		return nil
	}
	var errs error
	for _, field := range []struct {
		name  string
		value *uint32
	}{
		{"bucketsPerRevolution", g.BucketsPerRevolution},
		{"offsetCount", g.OffsetCount},
		{"blocksPerBucket", g.BlocksPerBucket},
	} {
		if field.value != nil && *field.value == 0 {
			errs = multierr.Append(errs, fmt.Errorf("'%s' must be positive when set", field.name))
		}
	}
	if p := g.SeekProfile; p != nil {
		if p.AccelerationDivisor < 0 {
			errs = multierr.Append(errs, fmt.Errorf("'seekProfile.accelerationDivisor' must not be negative, got %v",
				p.AccelerationDivisor))
		}
		if p.Velocity < 0 {
			errs = multierr.Append(errs, fmt.Errorf("'seekProfile.velocity' must not be negative, got %v", p.Velocity))
		}
	}
	return errs
}
