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

// Package framework defines the contract between the scheduler and its selection policies.
package framework

import (
	"sigs.k8s.io/seek-scheduler/pkg/reorder/plugins"
	"sigs.k8s.io/seek-scheduler/pkg/reorder/scheduling/types"
	"sigs.k8s.io/seek-scheduler/pkg/reorder/store"
)

// Policy picks the next request to service.
type Policy interface {
	plugins.Plugin
	// SelectNext returns the request to service next from the current head position. It must not change the state or
	// the policy, so repeated calls without an intervening Insert or Complete return the same Pick. With nothing
	// pending it returns types.NoTarget() and no error.
	SelectNext(state *types.State) (types.Pick, error)
}

// InsertHook is implemented by policies that react to a request once it is indexed and pending.
type InsertHook interface {
	Inserted(state *types.State, h store.Handle)
}

// CompleteHook is implemented by policies that react to a request being completed. It runs while the request is still
// indexed and before the head moves to it.
type CompleteHook interface {
	Completing(state *types.State, h store.Handle)
}
