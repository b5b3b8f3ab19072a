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

// Package tavl provides a threaded AVL tree keyed by uint64.
//
// Besides the usual child links, every node carries a lower and a higher thread link to its in-order neighbours.
// The thread is closed at both ends by two sentinel nodes that never hold a value, so walking from any node in
// either direction needs no parent pointers and ends on a sentinel.
//
// Node objects are supplied by the caller and never allocated by the tree. Removing a node with two children moves
// its in-order successor's key and value into it and detaches the successor's node object instead. Callers that
// keep a back-reference from a value to its node register a relocation hook to be told where values moved.
//
// A Tree is not safe for concurrent use.
package tavl

import (
	"errors"
	"fmt"
)

var (
	// ErrDuplicateKey indicates that Insert was given a key already present in the tree.
	ErrDuplicateKey = errors.New("duplicate key")
	// ErrKeyNotFound indicates that Remove was given a key that is not in the tree.
	ErrKeyNotFound = errors.New("key not found")
	// ErrNodeInUse indicates that Insert was given a node that is still linked into a tree.
	ErrNodeInUse = errors.New("node is still linked")
)

// Node is a tree element. The zero value is a detached node with key 0.
type Node[V any] struct {
	left, right   *Node[V]
	lower, higher *Node[V]
	height        int
	key           uint64
	sentinel      bool
	linked        bool

	// Value is the payload carried by the node. It may move to another node object on removal.
	Value V
}

// Reset prepares a detached node for insertion.
func (n *Node[V]) Reset(key uint64, value V) {
	n.key = key
	n.Value = value
}

func (n *Node[V]) Key() uint64 { return n.key }

// Lower returns the in-order predecessor, or the lowest sentinel.
func (n *Node[V]) Lower() *Node[V] { return n.lower }

// Higher returns the in-order successor, or the highest sentinel.
func (n *Node[V]) Higher() *Node[V] { return n.higher }

// IsSentinel reports whether n is one of the two thread terminators.
func (n *Node[V]) IsSentinel() bool { return n.sentinel }

// Linked reports whether n is currently part of a tree.
func (n *Node[V]) Linked() bool { return n.linked }

func (n *Node[V]) String() string {
	if n == nil {
		return "<nil>"
	}
	if n.sentinel {
		return "<sentinel>"
	}
	return fmt.Sprintf("%d", n.key)
}

// RelocateFunc is called when value now lives in node.
type RelocateFunc[V any] func(value V, node *Node[V])

// Tree is a threaded AVL tree.
type Tree[V any] struct {
	root       *Node[V]
	lowest     *Node[V]
	highest    *Node[V]
	count      int
	onRelocate RelocateFunc[V]
}

// New returns an empty tree. onRelocate may be nil.
func New[V any](onRelocate RelocateFunc[V]) *Tree[V] {
	t := &Tree[V]{
		lowest:     &Node[V]{sentinel: true},
		highest:    &Node[V]{sentinel: true},
		onRelocate: onRelocate,
	}
	t.lowest.higher = t.highest
	t.highest.lower = t.lowest
	return t
}

// Len returns the number of nodes in the tree, sentinels excluded.
func (t *Tree[V]) Len() int { return t.count }

// Lowest returns the sentinel below every key.
func (t *Tree[V]) Lowest() *Node[V] { return t.lowest }

// Highest returns the sentinel above every key.
func (t *Tree[V]) Highest() *Node[V] { return t.highest }

// First returns the node with the smallest key, or nil if the tree is empty.
func (t *Tree[V]) First() *Node[V] {
	if t.count == 0 {
		return nil
	}
	return t.lowest.higher
}

// Last returns the node with the largest key, or nil if the tree is empty.
func (t *Tree[V]) Last() *Node[V] {
	if t.count == 0 {
		return nil
	}
	return t.highest.lower
}

// Find returns the node holding key, or nil.
func (t *Tree[V]) Find(key uint64) *Node[V] {
	n := t.root
	for n != nil {
		switch {
		case key < n.key:
			n = n.left
		case key > n.key:
			n = n.right
		default:
			return n
		}
	}
	return nil
}

// Floor returns the node with the greatest key less than or equal to key. When every key is greater, or the tree is
// empty, it returns the lowest sentinel, whose Higher is then the first node at or above key.
func (t *Tree[V]) Floor(key uint64) *Node[V] {
	n := t.root
	if n == nil {
		return t.lowest
	}
	for {
		switch {
		case key == n.key:
			return n
		case key < n.key:
			if n.left == nil {
				return n.lower
			}
			n = n.left
		default:
			if n.right == nil {
				return n
			}
			n = n.right
		}
	}
}

// Ascend calls fn for each node in key order until fn returns false.
func (t *Tree[V]) Ascend(fn func(n *Node[V]) bool) {
	for n := t.lowest.higher; !n.sentinel; n = n.higher {
		if !fn(n) {
			return
		}
	}
}

// Keys returns all keys in ascending order.
func (t *Tree[V]) Keys() []uint64 {
	keys := make([]uint64, 0, t.count)
	t.Ascend(func(n *Node[V]) bool {
		keys = append(keys, n.key)
		return true
	})
	return keys
}

// Insert links node into the tree under its current key. The tree is left untouched on error.
func (t *Tree[V]) Insert(node *Node[V]) error {
	if node.linked || node.sentinel {
		return ErrNodeInUse
	}
	if t.Find(node.key) != nil {
		return fmt.Errorf("%w: %d", ErrDuplicateKey, node.key)
	}
	node.left, node.right = nil, nil
	node.height = 1
	if t.root == nil {
		splice(t.lowest, node, t.highest)
		t.root = node
	} else {
		t.root = t.insert(t.root, node)
	}
	node.linked = true
	t.count++
	return nil
}

func (t *Tree[V]) insert(n, node *Node[V]) *Node[V] {
	if node.key < n.key {
		if n.left == nil {
			splice(n.lower, node, n)
			n.left = node
		} else {
			n.left = t.insert(n.left, node)
		}
	} else {
		if n.right == nil {
			splice(n, node, n.higher)
			n.right = node
		} else {
			n.right = t.insert(n.right, node)
		}
	}
	return rebalance(n)
}

// Remove unlinks key from the tree and returns the detached node object, which holds the removed key and value.
// When the node holding key has two children the returned object is its former successor's; the relocation hook is
// called for both moved values. The tree is left untouched on error.
func (t *Tree[V]) Remove(key uint64) (*Node[V], error) {
	if t.Find(key) == nil {
		return nil, fmt.Errorf("%w: %d", ErrKeyNotFound, key)
	}
	var removed *Node[V]
	t.root, removed = t.remove(t.root, key)
	removed.left, removed.right = nil, nil
	removed.lower, removed.higher = nil, nil
	removed.height = 0
	removed.linked = false
	t.count--
	return removed, nil
}

func (t *Tree[V]) remove(n *Node[V], key uint64) (*Node[V], *Node[V]) {
	var removed *Node[V]
	switch {
	case key < n.key:
		n.left, removed = t.remove(n.left, key)
	case key > n.key:
		n.right, removed = t.remove(n.right, key)
	case n.left == nil || n.right == nil:
		child := n.left
		if child == nil {
			child = n.right
		}
		n.lower.higher = n.higher
		n.higher.lower = n.lower
		return child, n
	default:
		// The successor is the leftmost node of the right subtree, so after the swap it still sits where a search
		// for key leads.
		succ := n.higher
		n.key, succ.key = succ.key, n.key
		n.Value, succ.Value = succ.Value, n.Value
		n.right, removed = t.remove(n.right, key)
		if t.onRelocate != nil {
			t.onRelocate(n.Value, n)
			t.onRelocate(removed.Value, removed)
		}
	}
	return rebalance(n), removed
}

// splice threads node between lower and higher.
func splice[V any](lower, node, higher *Node[V]) {
	node.lower, node.higher = lower, higher
	lower.higher = node
	higher.lower = node
}

func height[V any](n *Node[V]) int {
	if n == nil {
		return 0
	}
	return n.height
}

func update[V any](n *Node[V]) {
	n.height = max(height(n.left), height(n.right)) + 1
}

func rotateRight[V any](n *Node[V]) *Node[V] {
	l := n.left
	n.left = l.right
	l.right = n
	update(n)
	update(l)
	return l
}

func rotateLeft[V any](n *Node[V]) *Node[V] {
	r := n.right
	n.right = r.left
	r.left = n
	update(n)
	update(r)
	return r
}

// rebalance restores the AVL property at n, choosing rotations from the heights of the children's subtrees.
func rebalance[V any](n *Node[V]) *Node[V] {
	update(n)
	switch balance := height(n.left) - height(n.right); {
	case balance > 1:
		if height(n.left.left) < height(n.left.right) {
			n.left = rotateLeft(n.left)
		}
		return rotateRight(n)
	case balance < -1:
		if height(n.right.right) < height(n.right.left) {
			n.right = rotateRight(n.right)
		}
		return rotateLeft(n)
	}
	return n
}
