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
	WindowedNearestPolicyType = "windowed-nearest"

	// DefaultWindowSpanFraction is the backtrack allowance below the anchor, as a fraction of the window span.
	DefaultWindowSpanFraction = 0.5
)

type windowedNearestParameters struct {
	WindowSpanFraction float64 `json:"windowSpanFraction"`
}

// compile-time type validation
var (
	_ framework.Policy       = &WindowedNearest{}
	_ framework.CompleteHook = &WindowedNearest{}
)

func init() {
	plugins.Register(WindowedNearestPolicyType, WindowedNearestFactory)
}

// WindowedNearestFactory defines the factory function for WindowedNearest.
func WindowedNearestFactory(name string, rawParameters json.RawMessage) (plugins.Plugin, error) {
	parameters := windowedNearestParameters{WindowSpanFraction: DefaultWindowSpanFraction}
	if len(rawParameters) > 0 {
		if err := json.Unmarshal(rawParameters, &parameters); err != nil {
			return nil, fmt.Errorf("failed to parse the parameters of the '%s' policy - %w", WindowedNearestPolicyType, err)
		}
	}
	p, err := NewWindowedNearest(parameters.WindowSpanFraction)
	if err != nil {
		return nil, err
	}
	return p.WithName(name), nil
}

// NewWindowedNearest initializes a new WindowedNearest and returns its pointer.
func NewWindowedNearest(windowSpanFraction float64) (*WindowedNearest, error) {
	if windowSpanFraction < 0 || windowSpanFraction > 1 {
		return nil, fmt.Errorf("windowSpanFraction must be within [0, 1], got %v", windowSpanFraction)
	}
	return &WindowedNearest{
		typedName:          plugins.TypedName{Type: WindowedNearestPolicyType, Name: WindowedNearestPolicyType},
		windowSpanFraction: windowSpanFraction,
	}, nil
}

// WindowedNearest is Nearest restricted to a sliding offset window.
//
// The window runs from the anchor's offset minus a backtrack allowance up to the search origin's offset plus the
// span reachable in half a revolution. The anchor is the low end of the address range being worked through: it starts at
// the successor of the last completed address and moves to its own successor whenever it is completed.
//
// When the unrestricted nearest request lies outside the window it is taken only if going there and coming back into
// the window costs at most 125% of the in-window pick.
type WindowedNearest struct {
	typedName          plugins.TypedName
	windowSpanFraction float64
	anchor             store.Handle
}

// TypedName returns the type and name tuple of this plugin instance.
func (p *WindowedNearest) TypedName() plugins.TypedName {
	return p.typedName
}

// WithName sets the name of the policy.
func (p *WindowedNearest) WithName(name string) *WindowedNearest {
	p.typedName.Name = name
	return p
}

// WindowSpanFraction returns the configured backtrack fraction.
func (p *WindowedNearest) WindowSpanFraction() float64 { return p.windowSpanFraction }

func (p *WindowedNearest) resolveAnchor(st *types.State) (store.Handle, bool) {
	if st.Store.Valid(p.anchor) {
		return p.anchor, true
	}
	return st.Successor(st.CurrentAddress)
}

// window is the admissible offset range for a search starting on offset from.
func (p *WindowedNearest) window(st *types.State, anchor store.Handle, from uint32) offsetRange {
	g := st.Geometry
	span := g.HalfRevolutionReach()
	backtrack := uint32(p.windowSpanFraction * float64(span))
	w := offsetRange{top: min(from+span, g.OffsetCount()-1)}
	if a := st.Request(anchor).Coordinate.Offset; a > backtrack {
		w.bottom = a - backtrack
	}
	return w
}

// SelectNext returns the in-window nearest request, or the unrestricted nearest one when that detour is cheap enough.
func (p *WindowedNearest) SelectNext(st *types.State) (types.Pick, error) {
	full, err := nearestPick(st)
	if err != nil || !full.Found {
		return full, err
	}
	anchor, _ := p.resolveAnchor(st)
	w := p.window(st, anchor, st.Current.Offset)
	inWindow, ok := nearestSearch(st, st.Current, st.CurrentAddress, w, store.Handle{})
	if !ok {
		return full, nil
	}
	if inWindow == full.Handle {
		return full, nil
	}
	windowed := st.PickOf(inWindow)

	// The way back is searched as if the head already sat on the unrestricted pick.
	target := st.Request(full.Handle)
	back, ok := nearestSearch(st, target.Coordinate, target.Address, p.window(st, anchor, target.Coordinate.Offset),
		full.Handle)
	if !ok {
		return windowed, nil
	}
	if full.Distance+st.Cost(full.Handle, back) <= windowed.Distance+windowed.Distance/4 {
		return full, nil
	}
	return windowed, nil
}

// Completing pins the anchor the last selection used, moving it to its successor when the anchor itself completes.
func (p *WindowedNearest) Completing(st *types.State, h store.Handle) {
	anchor, ok := p.resolveAnchor(st)
	if !ok || h != anchor {
		p.anchor = anchor
		return
	}
	next := st.Following(h)
	if next == h {
		next = store.Handle{}
	}
	p.anchor = next
}

// Anchor returns the stored anchor. It is zero until the first completion.
func (p *WindowedNearest) Anchor() store.Handle { return p.anchor }
