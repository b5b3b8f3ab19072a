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

	"github.com/go-logr/logr"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/apimachinery/pkg/runtime/serializer"
	utilruntime "k8s.io/apimachinery/pkg/util/runtime"

	configapi "sigs.k8s.io/seek-scheduler/apix/config/v1alpha1"
	"sigs.k8s.io/seek-scheduler/pkg/reorder/geometry"
	"sigs.k8s.io/seek-scheduler/pkg/reorder/plugins"
	"sigs.k8s.io/seek-scheduler/pkg/reorder/scheduling"
	"sigs.k8s.io/seek-scheduler/pkg/reorder/scheduling/framework"
)

var scheme = runtime.NewScheme()

func init() {
	utilruntime.Must(configapi.Install(scheme))
}

// LoadConfig decodes a SeekSchedulerConfig document, instantiates its policy and returns the validated scheduler
// configuration. Unknown fields are rejected.
func LoadConfig(configBytes []byte, logger logr.Logger) (*scheduling.Config, error) {
	rawConfig, err := loadRawConfig(configBytes)
	if err != nil {
		return nil, err
	}

	logger.Info("Loaded configuration", "config", rawConfig)

	if err = validateConfig(rawConfig); err != nil {
		return nil, fmt.Errorf("the configuration is invalid - %w", err)
	}

	policy, err := instantiatePolicy(rawConfig.Policy)
	if err != nil {
		return nil, fmt.Errorf("failed to instantiate the policy - %w", err)
	}

	cfg := &scheduling.Config{
		Capacity: *rawConfig.Capacity,
		Geometry: loadGeometry(rawConfig.Geometry),
		Policy:   policy,
	}
	validated, err := cfg.ValidateAndApplyDefaults()
	if err != nil {
		return nil, fmt.Errorf("the configuration is invalid - %w", err)
	}
	return validated, nil
}

func loadRawConfig(configBytes []byte) (*configapi.SeekSchedulerConfig, error) {
	rawConfig := &configapi.SeekSchedulerConfig{}

	codecs := serializer.NewCodecFactory(scheme, serializer.EnableStrict)
	err := runtime.DecodeInto(codecs.UniversalDecoder(), configBytes, rawConfig)
	if err != nil {
		return nil, fmt.Errorf("the configuration is invalid - %w", err)
	}
	return rawConfig, nil
}

func instantiatePolicy(spec configapi.PluginSpec) (framework.Policy, error) {
	plugin, err := plugins.New(spec.Type, spec.Name, spec.Parameters)
	if err != nil {
		return nil, err
	}
	policy, ok := plugin.(framework.Policy)
	if !ok {
		return nil, fmt.Errorf("plugin type '%s' is not a selection policy", spec.Type)
	}
	return policy, nil
}

// loadGeometry maps the API geometry onto geometry.Config. Absent fields stay zero and are defaulted by the
// geometry package, except Skew which the API defaults itself.
func loadGeometry(in *configapi.Geometry) geometry.Config {
	out := geometry.Config{}
	if in == nil {
		out.Skew = geometry.DefaultSkew
		return out
	}
	deref := func(v *uint32) uint32 {
		if v == nil {
			return 0
		}
		return *v
	}
	out.BucketsPerRevolution = deref(in.BucketsPerRevolution)
	out.OffsetCount = deref(in.OffsetCount)
	out.BlocksPerBucket = deref(in.BlocksPerBucket)
	out.Skew = deref(in.Skew)
	out.SeekTimeLimit = deref(in.SeekTimeLimit)
	if in.SeekProfile != nil {
		out.Profile = geometry.ProfileConfig{
			SettleSteps:         in.SeekProfile.SettleSteps,
			AccelerationDivisor: in.SeekProfile.AccelerationDivisor,
			Breakpoint:          in.SeekProfile.Breakpoint,
			Velocity:            in.SeekProfile.Velocity,
		}
	}
	return out
}
