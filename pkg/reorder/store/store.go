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

// Package store provides the fixed-capacity arena of request records and the intrusive membership lists that hold
// them.
//
// Every record is in exactly one list at a time. Free holds the unused records; an acquired record starts out in no
// list (None) until it is placed. All list operations are O(1) and allocate nothing.
//
// Records are addressed by Handle. A handle carries the generation of the acquisition that produced it, so a handle
// kept past Release is detected as stale instead of silently aliasing the record's next use.
package store

import (
	"fmt"

	"sigs.k8s.io/seek-scheduler/pkg/reorder/geometry"
	"sigs.k8s.io/seek-scheduler/pkg/reorder/tavl"
	errutil "sigs.k8s.io/seek-scheduler/pkg/reorder/util/error"
)

// ListID names a membership list.
type ListID uint8

const (
	None ListID = iota
	Free
	Pending
	Locked
	Dirty
	Sequence

	numLists
)

func (l ListID) String() string {
	switch l {
	case None:
		return "None"
	case Free:
		return "Free"
	case Pending:
		return "Pending"
	case Locked:
		return "Locked"
	case Dirty:
		return "Dirty"
	case Sequence:
		return "Sequence"
	}
	return fmt.Sprintf("ListID(%d)", uint8(l))
}

const nilIndex int32 = -1

// Handle identifies an acquired record. The zero Handle never refers to a record.
type Handle struct {
	index      int32
	generation uint32
}

// IsZero reports whether h is the zero Handle.
func (h Handle) IsZero() bool { return h.generation == 0 }

func (h Handle) String() string {
	if h.IsZero() {
		return "<none>"
	}
	return fmt.Sprintf("%d@%d", h.index, h.generation)
}

// Request is one record of the arena.
type Request struct {
	Address    uint64
	Blocks     uint32
	Coordinate geometry.Coordinate
	// Optimized is set once the record has been placed into the path sequence.
	Optimized bool

	// GlobalNode and BucketNode are the record's nodes in the global and bucket trees. Each record owns exactly one
	// node of each kind, though which node object that is changes when a tree relocates values on removal.
	GlobalNode *tavl.Node[Handle]
	BucketNode *tavl.Node[Handle]

	generation uint32
	list       ListID
	prev, next int32
}

// List returns the list the record currently belongs to.
func (r *Request) List() ListID { return r.list }

// Store is the arena. It is not safe for concurrent use.
type Store struct {
	records []Request
	heads   [numLists]int32
	tails   [numLists]int32
	lens    [numLists]int
}

// New returns a store with capacity records, all in the Free list.
func New(capacity int) (*Store, error) {
	if capacity <= 0 || capacity > int(^uint32(0)>>1) {
		return nil, errutil.Errorf(errutil.BadConfiguration, "store capacity must be in [1, %d], got %d", ^uint32(0)>>1, capacity)
	}
	s := &Store{records: make([]Request, capacity)}
	for l := range s.heads {
		s.heads[l], s.tails[l] = nilIndex, nilIndex
	}
	nodes := make([]tavl.Node[Handle], 2*capacity)
	for i := range s.records {
		r := &s.records[i]
		r.prev, r.next = nilIndex, nilIndex
		r.GlobalNode = &nodes[2*i]
		r.BucketNode = &nodes[2*i+1]
		s.pushBack(Free, int32(i))
	}
	return s, nil
}

// Cap returns the arena capacity.
func (s *Store) Cap() int { return len(s.records) }

// Len returns the number of records in list.
func (s *Store) Len(list ListID) int { return s.lens[list] }

// InUse returns the number of acquired records.
func (s *Store) InUse() int { return len(s.records) - s.lens[Free] }

// Acquire takes a record out of the Free list. The record is zeroed except for its tree nodes and belongs to no list.
func (s *Store) Acquire() (Handle, *Request, error) {
	idx := s.heads[Free]
	if idx == nilIndex {
		return Handle{}, nil, errutil.Errorf(errutil.OutOfCapacity, "all %d request records are in use", len(s.records))
	}
	s.unlink(idx)
	r := &s.records[idx]
	r.generation++
	if r.generation == 0 {
		r.generation++
	}
	r.Address, r.Blocks, r.Coordinate, r.Optimized = 0, 0, geometry.Coordinate{}, false
	return Handle{index: idx, generation: r.generation}, r, nil
}

// Release returns a record to the Free list, taking it out of its current list first. Its tree nodes must already be
// unlinked. The handle is stale afterwards.
func (s *Store) Release(h Handle) {
	r := s.mustGet(h)
	if r.GlobalNode.Linked() || r.BucketNode.Linked() {
		panic(errutil.Errorf(errutil.InvariantViolation, "request %s at %d released while still indexed", h, r.Address))
	}
	s.unlink(h.index)
	s.pushBack(Free, h.index)
}

// Get returns the record for h, or nil if h is stale or zero.
func (s *Store) Get(h Handle) *Request {
	if h.generation == 0 || h.index < 0 || int(h.index) >= len(s.records) {
		return nil
	}
	r := &s.records[h.index]
	if r.generation != h.generation || r.list == Free {
		return nil
	}
	return r
}

// Valid reports whether h refers to an acquired record.
func (s *Store) Valid(h Handle) bool { return s.Get(h) != nil }

// MustGet is like Get but panics with an InvariantViolation error on a stale handle.
func (s *Store) MustGet(h Handle) *Request { return s.mustGet(h) }

func (s *Store) mustGet(h Handle) *Request {
	r := s.Get(h)
	if r == nil {
		panic(errutil.Errorf(errutil.InvariantViolation, "stale request handle %s", h))
	}
	return r
}

func (s *Store) handle(idx int32) Handle {
	return Handle{index: idx, generation: s.records[idx].generation}
}

// MoveTo takes the record out of its current list and appends it to list.
func (s *Store) MoveTo(h Handle, list ListID) {
	s.checkList(list)
	s.mustGet(h)
	s.unlink(h.index)
	s.pushBack(list, h.index)
}

// Remove takes the record out of its current list. It then belongs to no list.
func (s *Store) Remove(h Handle) {
	s.mustGet(h)
	s.unlink(h.index)
}

// InsertAfter moves the record right after target, in target's list.
func (s *Store) InsertAfter(h, target Handle) {
	s.mustGet(h)
	t := s.mustGet(target)
	if h == target || t.list == None {
		panic(errutil.Errorf(errutil.InvariantViolation, "cannot insert %s after %s in list %s", h, target, t.list))
	}
	s.unlink(h.index)
	r := &s.records[h.index]
	r.list = t.list
	r.prev = target.index
	r.next = t.next
	if t.next == nilIndex {
		s.tails[t.list] = h.index
	} else {
		s.records[t.next].prev = h.index
	}
	t.next = h.index
	s.lens[t.list]++
}

// MoveSectionToBack moves the contiguous run from first through last of list to the end of list. first must not
// come after last.
func (s *Store) MoveSectionToBack(list ListID, first, last Handle) {
	f, l := s.mustGet(first), s.mustGet(last)
	if f.list != list || l.list != list {
		panic(errutil.Errorf(errutil.InvariantViolation, "section %s..%s is not in list %s", first, last, list))
	}
	if l.next == nilIndex {
		return
	}
	if f.prev == nilIndex {
		s.heads[list] = l.next
	} else {
		s.records[f.prev].next = l.next
	}
	s.records[l.next].prev = f.prev

	tail := s.tails[list]
	s.records[tail].next = first.index
	f.prev = tail
	l.next = nilIndex
	s.tails[list] = last.index
}

// Front returns the first record of list.
func (s *Store) Front(list ListID) (Handle, bool) {
	return s.at(s.heads[list])
}

// Back returns the last record of list.
func (s *Store) Back(list ListID) (Handle, bool) {
	return s.at(s.tails[list])
}

// Next returns the record after h in its list.
func (s *Store) Next(h Handle) (Handle, bool) {
	return s.at(s.mustGet(h).next)
}

// Prev returns the record before h in its list.
func (s *Store) Prev(h Handle) (Handle, bool) {
	return s.at(s.mustGet(h).prev)
}

// Handles returns the records of list in order.
func (s *Store) Handles(list ListID) []Handle {
	out := make([]Handle, 0, s.lens[list])
	for idx := s.heads[list]; idx != nilIndex; idx = s.records[idx].next {
		out = append(out, s.handle(idx))
	}
	return out
}

func (s *Store) at(idx int32) (Handle, bool) {
	if idx == nilIndex {
		return Handle{}, false
	}
	return s.handle(idx), true
}

func (s *Store) checkList(list ListID) {
	if list == None || list == Free || list >= numLists {
		panic(errutil.Errorf(errutil.InvariantViolation, "records cannot be moved to list %s", list))
	}
}

func (s *Store) pushBack(list ListID, idx int32) {
	r := &s.records[idx]
	r.list = list
	r.next = nilIndex
	r.prev = s.tails[list]
	if r.prev == nilIndex {
		s.heads[list] = idx
	} else {
		s.records[r.prev].next = idx
	}
	s.tails[list] = idx
	s.lens[list]++
}

func (s *Store) unlink(idx int32) {
	r := &s.records[idx]
	if r.list == None {
		return
	}
	if r.prev == nilIndex {
		s.heads[r.list] = r.next
	} else {
		s.records[r.prev].next = r.next
	}
	if r.next == nilIndex {
		s.tails[r.list] = r.prev
	} else {
		s.records[r.next].prev = r.prev
	}
	s.lens[r.list]--
	r.list = None
	r.prev, r.next = nilIndex, nilIndex
}

// Validate checks that every list is consistently linked and that every record is counted exactly once.
func (s *Store) Validate() error {
	seen := 0
	for l := Free; l < numLists; l++ {
		n := 0
		prev := nilIndex
		for idx := s.heads[l]; idx != nilIndex; idx = s.records[idx].next {
			r := &s.records[idx]
			if r.list != l || r.prev != prev {
				return errutil.Errorf(errutil.InvariantViolation, "record %d is mislinked in list %s", idx, l)
			}
			prev = idx
			n++
			if n > len(s.records) {
				return errutil.Errorf(errutil.InvariantViolation, "list %s is cyclic", l)
			}
		}
		if prev != s.tails[l] || n != s.lens[l] {
			return errutil.Errorf(errutil.InvariantViolation, "list %s has %d linked records, %d counted", l, n, s.lens[l])
		}
		seen += n
	}
	for i := range s.records {
		if s.records[i].list == None {
			seen++
		}
	}
	if seen != len(s.records) {
		return errutil.Errorf(errutil.InvariantViolation, "%d records accounted for, capacity %d", seen, len(s.records))
	}
	return nil
}
