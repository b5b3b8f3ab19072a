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

package types

import (
	"fmt"

	"sigs.k8s.io/seek-scheduler/pkg/reorder/geometry"
	"sigs.k8s.io/seek-scheduler/pkg/reorder/store"
	"sigs.k8s.io/seek-scheduler/pkg/reorder/tavl"
)

// NoTargetDistance is the distance reported when there is nothing to select.
const NoTargetDistance uint32 = 0xffff

// Pick is the outcome of a selection.
type Pick struct {
	// Found is false when no request is pending.
	Found    bool
	Handle   store.Handle
	Address  uint64
	Distance uint32
}

// NoTarget returns the Pick reported for an empty scheduler.
func NoTarget() Pick {
	return Pick{Distance: NoTargetDistance}
}

func (p Pick) String() string {
	if !p.Found {
		return "<no target>"
	}
	return fmt.Sprintf("{address: %d, distance: %d}", p.Address, p.Distance)
}

// State is everything a policy may read to make a selection: the geometry, the store, both indexes and the head
// position. Policies must not mutate it from SelectNext.
type State struct {
	Geometry *geometry.Geometry
	Store    *store.Store
	Global   *tavl.Tree[store.Handle]
	Buckets  []*tavl.Tree[store.Handle]

	// CurrentAddress is the address of the last completed request, and Current its coordinate.
	CurrentAddress uint64
	Current        geometry.Coordinate
	// Cursor is the request with the next higher address after CurrentAddress, wrapping at the top. It may be zero or
	// stale; use NextHigher to resolve it.
	Cursor store.Handle
}

// NewState builds an empty state over g with a store of the given capacity. The head starts at address 0.
func NewState(g *geometry.Geometry, capacity int) (*State, error) {
	s, err := store.New(capacity)
	if err != nil {
		return nil, err
	}
	st := &State{
		Geometry: g,
		Store:    s,
		Current:  g.ToCoordinate(0),
	}
	st.Global = tavl.New(func(h store.Handle, n *tavl.Node[store.Handle]) {
		s.MustGet(h).GlobalNode = n
	})
	onBucketRelocate := func(h store.Handle, n *tavl.Node[store.Handle]) {
		s.MustGet(h).BucketNode = n
	}
	st.Buckets = make([]*tavl.Tree[store.Handle], g.BucketCount())
	for i := range st.Buckets {
		st.Buckets[i] = tavl.New(onBucketRelocate)
	}
	return st, nil
}

// Len returns the number of indexed requests.
func (s *State) Len() int { return s.Global.Len() }

// Request returns the record behind h. It panics on a stale handle.
func (s *State) Request(h store.Handle) *store.Request { return s.Store.MustGet(h) }

// Successor returns the request with the smallest address greater than address, wrapping to the lowest address. It
// returns false only when nothing is indexed.
func (s *State) Successor(address uint64) (store.Handle, bool) {
	if s.Global.Len() == 0 {
		return store.Handle{}, false
	}
	return s.wrapHigher(s.Global.Floor(address).Higher()), true
}

// Following returns the request after h in address order, wrapping to the lowest address.
func (s *State) Following(h store.Handle) store.Handle {
	return s.wrapHigher(s.Request(h).GlobalNode.Higher())
}

func (s *State) wrapHigher(n *tavl.Node[store.Handle]) store.Handle {
	if n.IsSentinel() {
		n = s.Global.First()
	}
	return n.Value
}

// NextHigher resolves the cursor: the cached handle if it is still live, otherwise the successor of the current
// address.
func (s *State) NextHigher() (store.Handle, bool) {
	if s.Store.Valid(s.Cursor) {
		return s.Cursor, true
	}
	return s.Successor(s.CurrentAddress)
}

// Cost returns the distance between two requests.
func (s *State) Cost(from, to store.Handle) uint32 {
	return s.Geometry.Cost(s.Request(from).Coordinate, s.Request(to).Coordinate)
}

// CostFromCurrent returns the distance from the head to h.
func (s *State) CostFromCurrent(h store.Handle) uint32 {
	return s.Geometry.Cost(s.Current, s.Request(h).Coordinate)
}

// PickOf builds the Pick for h as seen from the head.
func (s *State) PickOf(h store.Handle) Pick {
	return Pick{Found: true, Handle: h, Address: s.Request(h).Address, Distance: s.CostFromCurrent(h)}
}
