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

package scheduling

import (
	"fmt"

	"sigs.k8s.io/seek-scheduler/pkg/reorder/store"
	"sigs.k8s.io/seek-scheduler/pkg/reorder/tavl"
	errutil "sigs.k8s.io/seek-scheduler/pkg/reorder/util/error"
)

// Validate checks every structural invariant: tree shape and threads, list linkage, and the agreement between
// records, indexes and lists. It returns an InvariantViolation error describing the first defect found.
func (s *Scheduler) Validate() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.validate(); err != nil {
		return errutil.Errorf(errutil.InvariantViolation, "%v", err)
	}
	return nil
}

func (s *Scheduler) validate() error {
	st := s.state
	if err := st.Global.Validate(); err != nil {
		return fmt.Errorf("global index: %w", err)
	}
	bucketed := 0
	for b, tree := range st.Buckets {
		if err := tree.Validate(); err != nil {
			return fmt.Errorf("bucket %d index: %w", b, err)
		}
		bucketed += tree.Len()
	}
	if bucketed != st.Global.Len() {
		return fmt.Errorf("%d requests in bucket indexes, %d in the global index", bucketed, st.Global.Len())
	}
	if err := st.Store.Validate(); err != nil {
		return err
	}
	if used := st.Store.InUse(); used != st.Global.Len() {
		return fmt.Errorf("%d records in use, %d indexed", used, st.Global.Len())
	}

	var err error
	st.Global.Ascend(func(n *tavl.Node[store.Handle]) bool {
		err = s.validateRequest(n)
		return err == nil
	})
	if err != nil {
		return err
	}

	if st.Store.Valid(st.Cursor) {
		want, _ := st.Successor(st.CurrentAddress)
		if want != st.Cursor {
			return fmt.Errorf("cursor %s is not the successor %s of address %d", st.Cursor, want, st.CurrentAddress)
		}
	}
	return nil
}

func (s *Scheduler) validateRequest(n *tavl.Node[store.Handle]) error {
	st := s.state
	r := st.Store.Get(n.Value)
	if r == nil {
		return fmt.Errorf("global node %d holds stale handle %s", n.Key(), n.Value)
	}
	if r.GlobalNode != n || r.Address != n.Key() {
		return fmt.Errorf("request %d does not own its global node", r.Address)
	}
	if r.Coordinate != st.Geometry.ToCoordinate(r.Address) {
		return fmt.Errorf("request %d has coordinate %s", r.Address, r.Coordinate)
	}
	if st.Buckets[r.Coordinate.Bucket].Find(r.Address) != r.BucketNode || r.BucketNode.Value != n.Value {
		return fmt.Errorf("request %d does not own its node in bucket %d", r.Address, r.Coordinate.Bucket)
	}
	switch r.List() {
	case store.Pending, store.Locked, store.Dirty, store.Sequence:
	default:
		return fmt.Errorf("indexed request %d is in list %s", r.Address, r.List())
	}
	return nil
}
