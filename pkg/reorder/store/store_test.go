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

package store

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	errutil "sigs.k8s.io/seek-scheduler/pkg/reorder/util/error"
)

func acquireN(t *testing.T, s *Store, n int) []Handle {
	t.Helper()
	hs := make([]Handle, n)
	for i := range hs {
		h, r, err := s.Acquire()
		require.NoError(t, err)
		r.Address = uint64(i)
		hs[i] = h
	}
	return hs
}

func addresses(s *Store, list ListID) []uint64 {
	var out []uint64
	for _, h := range s.Handles(list) {
		out = append(out, s.Get(h).Address)
	}
	return out
}

func TestNew_InvalidCapacity(t *testing.T) {
	t.Parallel()
	_, err := New(0)
	require.Error(t, err)
	assert.Equal(t, errutil.BadConfiguration, errutil.CanonicalCode(err))
}

func TestAcquireRelease(t *testing.T) {
	t.Parallel()
	s, err := New(2)
	require.NoError(t, err)
	assert.Equal(t, 2, s.Len(Free))

	hs := acquireN(t, s, 2)
	assert.Equal(t, 0, s.Len(Free))
	assert.Equal(t, 2, s.InUse())
	assert.Equal(t, None, s.Get(hs[0]).List())
	assert.NotNil(t, s.Get(hs[0]).GlobalNode)
	assert.NotNil(t, s.Get(hs[0]).BucketNode)

	_, _, err = s.Acquire()
	require.Error(t, err)
	assert.Equal(t, errutil.OutOfCapacity, errutil.CanonicalCode(err))
	require.NoError(t, s.Validate(), "a failed acquire must not change the store")

	s.MoveTo(hs[0], Pending)
	s.Release(hs[0])
	assert.Nil(t, s.Get(hs[0]), "released handle should be stale")
	assert.False(t, s.Valid(hs[0]))
	assert.Equal(t, 0, s.Len(Pending))

	again, _, err := s.Acquire()
	require.NoError(t, err)
	assert.NotEqual(t, hs[0], again, "reacquired record must get a new generation")
	assert.Nil(t, s.Get(hs[0]))
	assert.NotNil(t, s.Get(again))
	assert.Nil(t, s.Get(Handle{}))
	require.NoError(t, s.Validate())
}

func TestStaleHandlePanics(t *testing.T) {
	t.Parallel()
	s, err := New(1)
	require.NoError(t, err)
	h := acquireN(t, s, 1)[0]
	s.Release(h)

	defer func() {
		r := recover()
		require.NotNil(t, r)
		assert.Equal(t, errutil.InvariantViolation, errutil.CanonicalCode(r.(error)))
	}()
	s.MoveTo(h, Pending)
}

func TestListOperations(t *testing.T) {
	t.Parallel()
	s, err := New(6)
	require.NoError(t, err)
	hs := acquireN(t, s, 6)
	for _, h := range hs[:5] {
		s.MoveTo(h, Sequence)
	}

	tests := []struct {
		name string
		op   func()
		want []uint64
	}{
		{name: "initial", op: func() {}, want: []uint64{0, 1, 2, 3, 4}},
		{name: "insert after head", op: func() { s.InsertAfter(hs[5], hs[0]) }, want: []uint64{0, 5, 1, 2, 3, 4}},
		{name: "section to back", op: func() { s.MoveSectionToBack(Sequence, hs[5], hs[2]) }, want: []uint64{0, 3, 4, 5, 1, 2}},
		{name: "prefix to back", op: func() { s.MoveSectionToBack(Sequence, hs[0], hs[3]) }, want: []uint64{4, 5, 1, 2, 0, 3}},
		{name: "tail section is a no-op", op: func() { s.MoveSectionToBack(Sequence, hs[0], hs[3]) }, want: []uint64{4, 5, 1, 2, 0, 3}},
		{name: "remove middle", op: func() { s.Remove(hs[1]) }, want: []uint64{4, 5, 2, 0, 3}},
		{name: "insert after tail", op: func() { s.InsertAfter(hs[1], hs[3]) }, want: []uint64{4, 5, 2, 0, 3, 1}},
		{name: "move to another list", op: func() { s.MoveTo(hs[4], Dirty) }, want: []uint64{5, 2, 0, 3, 1}},
	}
	for _, tc := range tests {
		tc.op()
		if diff := cmp.Diff(tc.want, addresses(s, Sequence)); diff != "" {
			t.Errorf("%s: sequence mismatch (-want +got):\n%s", tc.name, diff)
		}
		require.NoError(t, s.Validate(), tc.name)
	}

	front, ok := s.Front(Sequence)
	require.True(t, ok)
	assert.Equal(t, hs[5], front)
	back, ok := s.Back(Sequence)
	require.True(t, ok)
	assert.Equal(t, hs[1], back)
	next, ok := s.Next(front)
	require.True(t, ok)
	assert.Equal(t, hs[2], next)
	_, ok = s.Prev(front)
	assert.False(t, ok)
	_, ok = s.Next(back)
	assert.False(t, ok)
	assert.Equal(t, 1, s.Len(Dirty))
	assert.Equal(t, Dirty, s.Get(hs[4]).List())
}
