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

// --- Valid Configurations ---

// successConfigText sets every field explicitly.
const successConfigText = `
apiVersion: config.seekscheduler.x-k8s.io/v1alpha1
kind: SeekSchedulerConfig
capacity: 256
geometry:
  bucketsPerRevolution: 8
  offsetCount: 4
  blocksPerBucket: 1
  skew: 0
  seekProfile:
    settleSteps: 1
    accelerationDivisor: 1
    breakpoint: 3
    velocity: 1
policy:
  name: windowed
  type: windowed-nearest
  parameters:
    windowSpanFraction: 0.25
`

// successDefaultsText omits everything that has a default.
const successDefaultsText = `
apiVersion: config.seekscheduler.x-k8s.io/v1alpha1
kind: SeekSchedulerConfig
`

// successPathBuildingText names the policy by type only.
const successPathBuildingText = `
apiVersion: config.seekscheduler.x-k8s.io/v1alpha1
kind: SeekSchedulerConfig
policy:
  type: path-building
  parameters:
    maxSequenceScanLength: 16
`

// --- Invalid Configurations ---

const errorBadYamlText = `
apiVersion: config.seekscheduler.x-k8s.io/v1alpha1
kind: SeekSchedulerConfig
capacity: [
`

const errorUnknownFieldText = `
apiVersion: config.seekscheduler.x-k8s.io/v1alpha1
kind: SeekSchedulerConfig
capacty: 10
`

const errorUnknownKindText = `
apiVersion: config.seekscheduler.x-k8s.io/v1alpha1
kind: EndpointPickerConfig
`

const errorUnknownPolicyText = `
apiVersion: config.seekscheduler.x-k8s.io/v1alpha1
kind: SeekSchedulerConfig
policy:
  type: elevator
`

const errorBadPolicyParametersText = `
apiVersion: config.seekscheduler.x-k8s.io/v1alpha1
kind: SeekSchedulerConfig
policy:
  type: windowed-nearest
  parameters:
    windowSpanFraction: 1.5
`

const errorZeroCapacityText = `
apiVersion: config.seekscheduler.x-k8s.io/v1alpha1
kind: SeekSchedulerConfig
capacity: 0
`

const errorZeroOffsetsText = `
apiVersion: config.seekscheduler.x-k8s.io/v1alpha1
kind: SeekSchedulerConfig
geometry:
  offsetCount: 0
`

const errorSeekTimeLimitTooSmallText = `
apiVersion: config.seekscheduler.x-k8s.io/v1alpha1
kind: SeekSchedulerConfig
geometry:
  seekTimeLimit: 100
`
