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
	"fmt"

	"sigs.k8s.io/seek-scheduler/pkg/reorder/plugins"
	"sigs.k8s.io/seek-scheduler/pkg/reorder/scheduling/framework"
	"sigs.k8s.io/seek-scheduler/pkg/reorder/scheduling/types"
	"sigs.k8s.io/seek-scheduler/pkg/reorder/store"
)

const (
	PathBuildingPolicyType = "path-building"

	// DefaultMaxSequenceScanLength bounds the sequence, and with it the work done per placement.
	DefaultMaxSequenceScanLength = 64
)

type pathBuildingParameters struct {
	MaxSequenceScanLength int `json:"maxSequenceScanLength"`
}

// compile-time type validation
var (
	_ framework.Policy       = &PathBuilding{}
	_ framework.InsertHook   = &PathBuilding{}
	_ framework.CompleteHook = &PathBuilding{}
)

func init() {
	plugins.Register(PathBuildingPolicyType, PathBuildingFactory)
}

// PathBuildingFactory defines the factory function for PathBuilding.
func PathBuildingFactory(name string, rawParameters json.RawMessage) (plugins.Plugin, error) {
	parameters := pathBuildingParameters{MaxSequenceScanLength: DefaultMaxSequenceScanLength}
	if len(rawParameters) > 0 {
		if err := json.Unmarshal(rawParameters, &parameters); err != nil {
			return nil, fmt.Errorf("failed to parse the parameters of the '%s' policy - %w", PathBuildingPolicyType, err)
		}
	}
	p, err := NewPathBuilding(parameters.MaxSequenceScanLength)
	if err != nil {
		return nil, err
	}
	return p.WithName(name), nil
}

// NewPathBuilding initializes a new PathBuilding and returns its pointer.
func NewPathBuilding(maxSequenceScanLength int) (*PathBuilding, error) {
	if maxSequenceScanLength < 2 {
		return nil, fmt.Errorf("maxSequenceScanLength must be at least 2, got %d", maxSequenceScanLength)
	}
	return &PathBuilding{
		typedName:             plugins.TypedName{Type: PathBuildingPolicyType, Name: PathBuildingPolicyType},
		maxSequenceScanLength: maxSequenceScanLength,
	}, nil
}

// PathBuilding keeps an incrementally optimized visiting order in the store's Sequence list and services its head.
//
// Requests are placed into the sequence as they arrive, while it has room, and otherwise when completions free up
// room, in address order after the last placed address. Placement prefers a free slot, a pair of neighbours the new
// request lies on the way between. Failing that, a pair that the new request would lengthen by exactly one revolution
// may still win if a run of requests ending at the pair's first element is moved to the tail. Otherwise the request is
// appended.
type PathBuilding struct {
	typedName             plugins.TypedName
	maxSequenceScanLength int
	lastPlaced            uint64
}

// TypedName returns the type and name tuple of this plugin instance.
func (p *PathBuilding) TypedName() plugins.TypedName {
	return p.typedName
}

// WithName sets the name of the policy.
func (p *PathBuilding) WithName(name string) *PathBuilding {
	p.typedName.Name = name
	return p
}

// MaxSequenceScanLength returns the sequence bound.
func (p *PathBuilding) MaxSequenceScanLength() int { return p.maxSequenceScanLength }

// SelectNext returns the head of the sequence.
func (p *PathBuilding) SelectNext(st *types.State) (types.Pick, error) {
	if h, ok := st.Store.Front(store.Sequence); ok {
		return st.PickOf(h), nil
	}
	return sweepPick(st), nil
}

// Inserted places the new request while the sequence has room.
func (p *PathBuilding) Inserted(st *types.State, h store.Handle) {
	if st.Store.Len(store.Sequence) == 0 {
		seed, _ := st.Successor(st.CurrentAddress)
		p.pushBack(st, seed)
		p.lastPlaced = st.Request(seed).Address
		if seed == h {
			return
		}
	}
	if st.Store.Len(store.Sequence) < p.maxSequenceScanLength {
		p.place(st, h)
	}
}

// Completing drops the request from the sequence and refills it in address order.
func (p *PathBuilding) Completing(st *types.State, h store.Handle) {
	r := st.Request(h)
	r.Optimized = true
	st.Store.Remove(h)
	p.fill(st, h)
}

// fill places unsequenced requests, walking addresses upward from the last placed one, until the sequence is full or
// every indexed request other than skip is in it.
func (p *PathBuilding) fill(st *types.State, skip store.Handle) {
	s := st.Store
	remaining := st.Len() - 1 - s.Len(store.Sequence)
	if remaining <= 0 {
		return
	}
	next, _ := st.Successor(p.lastPlaced)
	for remaining > 0 && s.Len(store.Sequence) < p.maxSequenceScanLength {
		h := next
		next = st.Following(h)
		if h == skip || st.Request(h).Optimized {
			continue
		}
		if s.Len(store.Sequence) == 0 {
			p.pushBack(st, h)
		} else {
			p.place(st, h)
		}
		p.lastPlaced = st.Request(h).Address
		remaining--
	}
}

func (p *PathBuilding) pushBack(st *types.State, h store.Handle) {
	st.Request(h).Optimized = true
	st.Store.MoveTo(h, store.Sequence)
}

// place inserts h into a sequence holding at least one request.
func (p *PathBuilding) place(st *types.State, h store.Handle) {
	s := st.Store
	front, _ := s.Front(store.Sequence)
	tail, _ := s.Back(store.Sequence)
	if front == tail {
		p.pushBack(st, h)
		return
	}
	revolution := st.Geometry.BucketCount()
	appendCost := st.Cost(tail, h)
	best := appendCost
	var sectionFirst, sectionLast store.Handle

	for cur := front; cur != tail; {
		next, _ := s.Next(cur)
		existing := st.Cost(cur, next)
		toNew, newToNext := st.Cost(cur, h), st.Cost(h, next)
		if existing == toNew+newToNext {
			st.Request(h).Optimized = true
			s.InsertAfter(h, cur)
			return
		}
		if existing+revolution == toNew+newToNext && newToNext < appendCost {
			if first, cost, ok := p.relocatableSection(st, h, cur, next, front, tail, best); ok {
				best, sectionFirst, sectionLast = cost, first, cur
			}
		}
		cur = next
	}

	if sectionFirst.IsZero() {
		p.pushBack(st, h)
		return
	}
	prev, _ := s.Prev(sectionFirst)
	s.MoveSectionToBack(store.Sequence, sectionFirst, sectionLast)
	st.Request(h).Optimized = true
	s.InsertAfter(h, prev)
}

// relocatableSection looks for the shortest run ending at last whose move to the tail, with h taking its place before
// next, adds less than best to the sequence. The run never starts right after the front.
func (p *PathBuilding) relocatableSection(st *types.State, h, last, next, front, tail store.Handle,
	best uint32) (store.Handle, uint32, bool) {
	s := st.Store
	lastToNext := int64(st.Cost(last, next))
	newToNext := int64(st.Cost(h, next))
	for first := last; ; {
		prev, ok := s.Prev(first)
		if !ok || prev == front {
			return store.Handle{}, 0, false
		}
		added := int64(st.Cost(prev, h)) + newToNext + int64(st.Cost(tail, first)) -
			int64(st.Cost(prev, first)) - lastToNext
		if added >= 0 && added < int64(best) {
			return first, uint32(added), true
		}
		first = prev
	}
}
