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

package profiling

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"runtime/pprof"
)

// Profiles are the pre-defined runtime profiles:
// https://cs.opensource.google/go/go/+/refs/tags/go1.24.4:src/runtime/pprof/pprof.go;l=108
var Profiles = []string{
	"heap",
	"goroutine",
	"allocs",
	"threadcreate",
	"block",
	"mutex",
}

// EnableContentionProfiling turns on full block and mutex sampling.
func EnableContentionProfiling() {
	runtime.SetMutexProfileFraction(1)
	runtime.SetBlockProfileRate(1)
}

// WriteProfiles writes every pre-defined profile into dir as <name>.pprof, creating dir if needed.
func WriteProfiles(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	for _, p := range Profiles {
		profile := pprof.Lookup(p)
		if profile == nil {
			return fmt.Errorf("runtime profile %q not found", p)
		}
		if err := writeProfile(profile, filepath.Join(dir, p+".pprof")); err != nil {
			return fmt.Errorf("failed to write the %s profile - %w", p, err)
		}
	}
	return nil
}

func writeProfile(profile *pprof.Profile, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := profile.WriteTo(f, 0); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
