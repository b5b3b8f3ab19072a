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

package geometry

import (
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultCacheSize is the number of distinct layouts the shared cache keeps.
const DefaultCacheSize = 16

// Cache hands out one Geometry per distinct validated Config. A Geometry is immutable, so schedulers built from the
// same layout can share its seek table. Cache is safe for concurrent use.
type Cache struct {
	geometries *lru.Cache[Config, *Geometry]
}

// NewCache returns a Cache holding at most size layouts, evicting the least recently used one.
func NewCache(size int) (*Cache, error) {
	geometries, err := lru.New[Config, *Geometry](size)
	if err != nil {
		return nil, fmt.Errorf("failed to create the geometry cache - %w", err)
	}
	return &Cache{geometries: geometries}, nil
}

// Get returns the Geometry for cfg, building it on a miss. Configurations that differ only in defaulted fields
// share an entry. Invalid configurations are never cached.
func (c *Cache) Get(cfg Config) (*Geometry, error) {
	validated, err := cfg.ValidateAndApplyDefaults()
	if err != nil {
		return nil, err
	}
	if g, ok := c.geometries.Get(*validated); ok {
		return g, nil
	}
	g, err := New(*validated)
	if err != nil {
		return nil, err
	}
	c.geometries.Add(*validated, g)
	return g, nil
}

// Len returns the number of cached layouts.
func (c *Cache) Len() int {
	return c.geometries.Len()
}

var shared, _ = NewCache(DefaultCacheSize)

// Shared returns the Geometry for cfg from the process-wide cache.
func Shared(cfg Config) (*Geometry, error) {
	return shared.Get(cfg)
}
