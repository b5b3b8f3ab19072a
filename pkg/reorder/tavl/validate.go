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

package tavl

import (
	"errors"
	"fmt"
)

// ErrCorrupted wraps every structural defect reported by Validate.
var ErrCorrupted = errors.New("tree corrupted")

// Validate checks the AVL heights and balance, the key order, and that the thread visits exactly the in-order
// sequence of nodes between the two sentinels.
func (t *Tree[V]) Validate() error {
	var inorder []*Node[V]
	if _, err := t.validate(t.root, &inorder); err != nil {
		return err
	}
	if len(inorder) != t.count {
		return fmt.Errorf("%w: %d nodes reachable, %d counted", ErrCorrupted, len(inorder), t.count)
	}
	prev := t.lowest
	for i, n := range inorder {
		if i > 0 && n.key <= inorder[i-1].key {
			return fmt.Errorf("%w: key %d follows %d", ErrCorrupted, n.key, inorder[i-1].key)
		}
		if prev.higher != n || n.lower != prev {
			return fmt.Errorf("%w: thread broken between %s and %s", ErrCorrupted, prev, n)
		}
		if !n.linked {
			return fmt.Errorf("%w: node %s reachable but not marked linked", ErrCorrupted, n)
		}
		prev = n
	}
	if prev.higher != t.highest || t.highest.lower != prev {
		return fmt.Errorf("%w: thread does not end at the highest sentinel after %s", ErrCorrupted, prev)
	}
	return nil
}

func (t *Tree[V]) validate(n *Node[V], inorder *[]*Node[V]) (int, error) {
	if n == nil {
		return 0, nil
	}
	if n.sentinel {
		return 0, fmt.Errorf("%w: sentinel reachable from the root", ErrCorrupted)
	}
	lh, err := t.validate(n.left, inorder)
	if err != nil {
		return 0, err
	}
	*inorder = append(*inorder, n)
	rh, err := t.validate(n.right, inorder)
	if err != nil {
		return 0, err
	}
	if d := lh - rh; d > 1 || d < -1 {
		return 0, fmt.Errorf("%w: node %s unbalanced (left %d, right %d)", ErrCorrupted, n, lh, rh)
	}
	if h := max(lh, rh) + 1; n.height != h {
		return 0, fmt.Errorf("%w: node %s records height %d, actual %d", ErrCorrupted, n, n.height, h)
	}
	return n.height, nil
}
