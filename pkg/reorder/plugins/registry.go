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

package plugins

import (
	"encoding/json"
	"fmt"
	"sort"
	"sync"
)

// FactoryFunc instantiates a plugin from its configured name and raw parameters.
type FactoryFunc func(name string, parameters json.RawMessage) (Plugin, error)

var (
	registryMu sync.RWMutex
	registry   = map[string]FactoryFunc{}
)

// Register records the factory for pluginType, replacing any earlier one.
func Register(pluginType string, factory FactoryFunc) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[pluginType] = factory
}

// MustRegister is like Register but panics if pluginType is already registered.
func MustRegister(pluginType string, factory FactoryFunc) {
	registryMu.Lock()
	defer registryMu.Unlock()
	if _, ok := registry[pluginType]; ok {
		panic(fmt.Sprintf("plugin type %q is already registered", pluginType))
	}
	registry[pluginType] = factory
}

// New instantiates a registered plugin.
func New(pluginType, name string, parameters json.RawMessage) (Plugin, error) {
	registryMu.RLock()
	factory, ok := registry[pluginType]
	registryMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("plugin type %q is not registered", pluginType)
	}
	if name == "" {
		name = pluginType
	}
	p, err := factory(name, parameters)
	if err != nil {
		return nil, fmt.Errorf("failed to instantiate plugin %s/%s - %w", name, pluginType, err)
	}
	return p, nil
}

// Types returns the registered plugin types in sorted order.
func Types() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	types := make([]string, 0, len(registry))
	for t := range registry {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}
