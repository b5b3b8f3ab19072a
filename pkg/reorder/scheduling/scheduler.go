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

// Package scheduling implements the seek scheduler: it indexes pending block requests, selects the next one to
// service with a pluggable policy, and releases requests on completion.
package scheduling

import (
	"context"
	"fmt"
	"sync"

	"k8s.io/utils/clock"
	"sigs.k8s.io/controller-runtime/pkg/log"

	"sigs.k8s.io/seek-scheduler/pkg/reorder/geometry"
	"sigs.k8s.io/seek-scheduler/pkg/reorder/metrics"
	"sigs.k8s.io/seek-scheduler/pkg/reorder/plugins"
	"sigs.k8s.io/seek-scheduler/pkg/reorder/scheduling/framework"
	"sigs.k8s.io/seek-scheduler/pkg/reorder/scheduling/types"
	"sigs.k8s.io/seek-scheduler/pkg/reorder/store"
	errutil "sigs.k8s.io/seek-scheduler/pkg/reorder/util/error"
	logutil "sigs.k8s.io/seek-scheduler/pkg/reorder/util/logging"
)

// Scheduler is one independent scheduling engine. Its operations are serialized by a single mutex.
//
// Once an internal consistency check fails the scheduler is poisoned: the failing call and every later call return
// the same InvariantViolation error.
type Scheduler struct {
	mu      sync.Mutex
	state   *types.State
	policy  framework.Policy
	name    string
	clock   clock.PassiveClock
	failure error
}

// NewScheduler validates cfg and returns an empty scheduler with the head at address 0.
func NewScheduler(ctx context.Context, cfg *Config) (*Scheduler, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	validated, err := cfg.ValidateAndApplyDefaults()
	if err != nil {
		return nil, fmt.Errorf("invalid scheduler config: %w", err)
	}
	g, err := geometry.Shared(validated.Geometry)
	if err != nil {
		return nil, fmt.Errorf("invalid geometry: %w", err)
	}
	state, err := types.NewState(g, validated.Capacity)
	if err != nil {
		return nil, err
	}
	s := &Scheduler{
		state:  state,
		policy: validated.Policy,
		name:   validated.Policy.TypedName().String(),
		clock:  validated.Clock,
	}
	log.FromContext(ctx).V(logutil.DEFAULT).Info("Seek scheduler initialized",
		"policy", s.name, "capacity", validated.Capacity,
		"buckets", g.BucketCount(), "offsets", g.OffsetCount(), "blocksPerBucket", g.BlocksPerBucket(),
		"skew", validated.Geometry.Skew, "seekTimeLimit", g.SeekTimeLimit())
	return s, nil
}

// Insert indexes a new pending request. It fails with BadRequest if the address is outside the layout or blocks is
// zero, DuplicateKey if the address is already indexed, and OutOfCapacity if every record is in use. A failed Insert
// changes nothing.
func (s *Scheduler) Insert(ctx context.Context, address uint64, blocks uint32) (err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	defer s.recoverInvariant(ctx, "insert", &err)
	if s.failure != nil {
		return s.failure
	}
	logger := log.FromContext(ctx).WithValues("policy", s.name, "address", address)

	st := s.state
	switch {
	case blocks == 0:
		return s.reject(ctx, errutil.Errorf(errutil.BadRequest, "request at %d has no blocks", address))
	case !st.Geometry.Contains(address):
		return s.reject(ctx, errutil.Errorf(errutil.BadRequest, "address %d is outside the %d addressable blocks",
			address, st.Geometry.BlockCount()))
	case st.Global.Find(address) != nil:
		return s.reject(ctx, errutil.Errorf(errutil.DuplicateKey, "address %d is already pending", address))
	}
	h, r, err := st.Store.Acquire()
	if err != nil {
		return s.reject(ctx, err)
	}
	r.Address = address
	r.Blocks = blocks
	r.Coordinate = st.Geometry.ToCoordinate(address)
	r.GlobalNode.Reset(address, h)
	r.BucketNode.Reset(address, h)
	mustIndex(st.Global.Insert(r.GlobalNode))
	mustIndex(st.Buckets[r.Coordinate.Bucket].Insert(r.BucketNode))
	st.Store.MoveTo(h, store.Pending)
	s.advanceCursorOnInsert(h, address)

	if hook, ok := s.policy.(framework.InsertHook); ok {
		hook.Inserted(st, h)
	}
	metrics.RecordInsert(s.name, st.Len())
	logger.V(logutil.TRACE).Info("Request inserted", "coordinate", r.Coordinate, "blocks", blocks, "pending", st.Len())
	return nil
}

// SelectNext returns the request the policy would service next. It changes nothing, so it returns the same Pick until
// the next Insert or Complete. With nothing pending it returns a Pick with Found false and no error.
func (s *Scheduler) SelectNext(ctx context.Context) (pick types.Pick, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	defer s.recoverSelect(ctx, &pick, &err)
	if s.failure != nil {
		return types.NoTarget(), s.failure
	}

	start := s.clock.Now()
	pick, err = s.policy.SelectNext(s.state)
	if err != nil {
		if errutil.IsFatal(err) {
			s.poison(ctx, "select", err)
			return types.NoTarget(), s.failure
		}
		return types.NoTarget(), s.reject(ctx, err)
	}
	if !pick.Found && s.state.Len() > 0 {
		s.poison(ctx, "select", errutil.Errorf(errutil.InvariantViolation,
			"policy %s found no target with %d requests pending", s.name, s.state.Len()))
		return types.NoTarget(), s.failure
	}
	if pick.Found {
		metrics.RecordSelection(s.name, pick.Distance, s.clock.Since(start))
	}
	log.FromContext(ctx).V(logutil.TRACE).Info("Selected next request", "policy", s.name, "pick", pick,
		"from", s.state.CurrentAddress)
	return pick, nil
}

// Complete moves the head to the request at address and releases it. It fails with NotFound, changing nothing, if
// the address is not indexed.
func (s *Scheduler) Complete(ctx context.Context, address uint64) (err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	defer s.recoverInvariant(ctx, "complete", &err)
	if s.failure != nil {
		return s.failure
	}

	st := s.state
	node := st.Global.Find(address)
	if node == nil {
		return s.reject(ctx, errutil.Errorf(errutil.NotFound, "address %d is not pending", address))
	}
	h := node.Value
	r := st.Request(h)
	if hook, ok := s.policy.(framework.CompleteHook); ok {
		hook.Completing(st, h)
	}

	next := st.Following(h)
	if next == h {
		next = store.Handle{}
	}
	st.Cursor = next
	st.CurrentAddress = address
	st.Current = r.Coordinate

	_, err = st.Global.Remove(address)
	mustIndex(err)
	_, err = st.Buckets[r.Coordinate.Bucket].Remove(address)
	mustIndex(err)
	st.Store.Release(h)

	metrics.RecordComplete(s.name, st.Len())
	log.FromContext(ctx).V(logutil.TRACE).Info("Request completed", "policy", s.name, "address", address,
		"coordinate", r.Coordinate, "pending", st.Len())
	return nil
}

// advanceCursorOnInsert keeps the cursor on the successor of the current address.
func (s *Scheduler) advanceCursorOnInsert(h store.Handle, address uint64) {
	st := s.state
	cursor := st.Store.Get(st.Cursor)
	if cursor == nil {
		st.Cursor, _ = st.Successor(st.CurrentAddress)
		return
	}
	if cyclicBetween(st.CurrentAddress, address, cursor.Address) {
		st.Cursor = h
	}
}

// cyclicBetween reports whether x lies strictly after from and strictly before to, going upward and wrapping.
func cyclicBetween(from, x, to uint64) bool {
	if from < to {
		return from < x && x < to
	}
	return x > from || x < to
}

func mustIndex(err error) {
	if err != nil {
		panic(errutil.Errorf(errutil.InvariantViolation, "index update failed: %v", err))
	}
}

// reject records an ordinary failure and returns it unchanged.
func (s *Scheduler) reject(ctx context.Context, err error) error {
	code := errutil.CanonicalCode(err)
	metrics.RecordError(s.name, code)
	log.FromContext(ctx).V(logutil.DEBUG).Info("Scheduler operation rejected", "policy", s.name, "code", code,
		"error", err.Error())
	return err
}

func (s *Scheduler) poison(ctx context.Context, op string, err error) {
	s.failure = err
	metrics.RecordError(s.name, errutil.InvariantViolation)
	log.FromContext(ctx).Error(err, "Seek scheduler is inconsistent, refusing further operations",
		"policy", s.name, "operation", op)
}

// recoverInvariant turns a panic raised by an internal consistency check into the poisoning error.
func (s *Scheduler) recoverInvariant(ctx context.Context, op string, err *error) {
	if r := recover(); r != nil {
		*err = s.poisonFromPanic(ctx, op, r)
	}
}

func (s *Scheduler) recoverSelect(ctx context.Context, pick *types.Pick, err *error) {
	if r := recover(); r != nil {
		*pick = types.NoTarget()
		*err = s.poisonFromPanic(ctx, "select", r)
	}
}

func (s *Scheduler) poisonFromPanic(ctx context.Context, op string, r any) error {
	failure, ok := r.(errutil.Error)
	if !ok || failure.Code != errutil.InvariantViolation {
		failure = errutil.Errorf(errutil.InvariantViolation, "%s: %v", op, r)
	}
	s.poison(ctx, op, failure)
	return s.failure
}

// Err returns the poisoning error, or nil while the scheduler is healthy.
func (s *Scheduler) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.failure
}

// Policy returns the type and name of the configured policy.
func (s *Scheduler) Policy() plugins.TypedName { return s.policy.TypedName() }

func (s *Scheduler) BucketCount() uint32     { return s.state.Geometry.BucketCount() }
func (s *Scheduler) OffsetCount() uint32     { return s.state.Geometry.OffsetCount() }
func (s *Scheduler) BlocksPerBucket() uint32 { return s.state.Geometry.BlocksPerBucket() }

// BlockCount returns the number of addressable blocks.
func (s *Scheduler) BlockCount() uint64 { return s.state.Geometry.BlockCount() }

// Coordinate maps an address to its bucket and offset.
func (s *Scheduler) Coordinate(address uint64) (geometry.Coordinate, error) {
	if !s.state.Geometry.Contains(address) {
		return geometry.Coordinate{}, errutil.Errorf(errutil.BadRequest, "address %d is outside the layout", address)
	}
	return s.state.Geometry.ToCoordinate(address), nil
}

// Distance returns the seek distance between two addresses.
func (s *Scheduler) Distance(from, to uint64) (uint32, error) {
	fc, err := s.Coordinate(from)
	if err != nil {
		return 0, err
	}
	tc, err := s.Coordinate(to)
	if err != nil {
		return 0, err
	}
	return s.state.Geometry.Cost(fc, tc), nil
}

// Len returns the number of pending requests.
func (s *Scheduler) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Len()
}

// Stats is a snapshot of the scheduler's occupancy.
type Stats struct {
	Pending        int
	Capacity       int
	Sequenced      int
	CurrentAddress uint64
}

// Stats returns an occupancy snapshot.
func (s *Scheduler) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Stats{
		Pending:        s.state.Len(),
		Capacity:       s.state.Store.Cap(),
		Sequenced:      s.state.Store.Len(store.Sequence),
		CurrentAddress: s.state.CurrentAddress,
	}
}

// Addresses returns every pending address in ascending order.
func (s *Scheduler) Addresses() []uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Global.Keys()
}

// Sequence returns the addresses a sequencing policy has lined up, in service order. It is empty for policies that
// select on demand.
func (s *Scheduler) Sequence() []uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.state
	var addresses []uint64
	for h, ok := st.Store.Front(store.Sequence); ok; h, ok = st.Store.Next(h) {
		addresses = append(addresses, st.Request(h).Address)
	}
	return addresses
}

// BucketAddresses returns the pending addresses of one bucket in ascending order.
func (s *Scheduler) BucketAddresses(bucket uint32) ([]uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if bucket >= s.state.Geometry.BucketCount() {
		return nil, errutil.Errorf(errutil.BadRequest, "bucket %d is outside the layout", bucket)
	}
	return s.state.Buckets[bucket].Keys(), nil
}
