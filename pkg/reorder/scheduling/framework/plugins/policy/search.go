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

// Package policy holds the in-tree selection policies.
package policy

import (
	"sigs.k8s.io/seek-scheduler/pkg/reorder/geometry"
	"sigs.k8s.io/seek-scheduler/pkg/reorder/scheduling/types"
	"sigs.k8s.io/seek-scheduler/pkg/reorder/store"
	"sigs.k8s.io/seek-scheduler/pkg/reorder/tavl"
	errutil "sigs.k8s.io/seek-scheduler/pkg/reorder/util/error"
)

// offsetRange is an inclusive range of offsets.
type offsetRange struct {
	bottom, top uint32
}

func fullRange(g *geometry.Geometry) offsetRange {
	return offsetRange{bottom: 0, top: g.OffsetCount() - 1}
}

// nearestSearch finds the request reachable in the fewest bucket steps from the given position, considering only
// requests whose offset lies within limit. exclude, if not zero, is never returned.
//
// Step count i examines bucket (from.Bucket + i) mod N with the offsets reachable in i steps. Step 0 is the starting
// bucket itself, which only admits requests on the same offset. Within a bucket, the floor search by fromAddress
// splits the bucket's requests into a lower side (offsets at or below the floor) and a higher side; both are walked
// outward in turn, lower first, until one lands in the window or both have moved past it.
func nearestSearch(st *types.State, from geometry.Coordinate, fromAddress uint64, limit offsetRange,
	exclude store.Handle) (store.Handle, bool) {
	g := st.Geometry
	n := g.BucketCount()
	for i := uint32(0); i < g.SeekTimeLimit(); i++ {
		tree := st.Buckets[(from.Bucket+i)%n]
		if tree.Len() == 0 {
			continue
		}
		bottom, top := g.Window(from.Offset, i)
		bottom, top = max(bottom, limit.bottom), min(top, limit.top)
		if bottom > top {
			continue
		}
		if h, ok := scanBucket(st, tree, fromAddress, bottom, top, exclude); ok {
			return h, true
		}
	}
	return store.Handle{}, false
}

func scanBucket(st *types.State, tree *tavl.Tree[store.Handle], address uint64, bottom, top uint32,
	exclude store.Handle) (store.Handle, bool) {
	lower := tree.Floor(address)
	higher := lower.Higher()
	for !lower.IsSentinel() || !higher.IsSentinel() {
		if !lower.IsSentinel() {
			r := st.Request(lower.Value)
			switch off := r.Coordinate.Offset; {
			case off < bottom:
				lower = tree.Lowest()
			case off <= top && lower.Value != exclude:
				return lower.Value, true
			default:
				lower = lower.Lower()
			}
		}
		if !higher.IsSentinel() {
			r := st.Request(higher.Value)
			switch off := r.Coordinate.Offset; {
			case off > top:
				higher = tree.Highest()
			case off >= bottom && higher.Value != exclude:
				return higher.Value, true
			default:
				higher = higher.Higher()
			}
		}
	}
	return store.Handle{}, false
}

// nearestPick is the unrestricted nearest search from the head. A non-empty state always yields a pick.
func nearestPick(st *types.State) (types.Pick, error) {
	if st.Len() == 0 {
		return types.NoTarget(), nil
	}
	h, ok := nearestSearch(st, st.Current, st.CurrentAddress, fullRange(st.Geometry), store.Handle{})
	if !ok {
		return types.NoTarget(), errutil.Errorf(errutil.InvariantViolation,
			"no request reachable from %s within %d steps although %d are pending",
			st.Current, st.Geometry.SeekTimeLimit(), st.Len())
	}
	return st.PickOf(h), nil
}

// sweepPick returns the next request in address order after the head, wrapping at the top.
func sweepPick(st *types.State) types.Pick {
	h, ok := st.NextHigher()
	if !ok {
		return types.NoTarget()
	}
	return st.PickOf(h)
}
