//go:build ignore
// +build ignore

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

// verify-framework-imports validates that the non-test files under
// pkg/reorder/scheduling/framework only import the engine's building blocks
// (or external dependencies), never the scheduler, metrics or tooling built
// on top of the framework.
package main

import (
	"fmt"
	"go/parser"
	"go/token"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/pflag"
)

const (
	frameworkPath = "./pkg/reorder/scheduling/framework"
	repoModule    = "sigs.k8s.io/seek-scheduler"
)

var additionalAllowed []string

// allowedBasePaths are the packages the framework is permitted to import.
var allowedBasePaths = []string{
	"pkg/reorder/scheduling/framework",
	"pkg/reorder/scheduling/types",
	"pkg/reorder/plugins",
	"pkg/reorder/store",
	"pkg/reorder/tavl",
	"pkg/reorder/geometry",
	"pkg/reorder/util",
	"pkg/common/observability/logging",
}

func init() {
	pflag.StringSliceVar(&additionalAllowed, "allow", []string{}, "Additional allowed import paths (can be specified multiple times)")
}

func main() {
	pflag.Parse()

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

type violation struct {
	filePath   string
	importPath string
}

func (v violation) String() string {
	return fmt.Sprintf("%s: imports %s", v.filePath, v.importPath)
}

func isAllowed(relImportPath string, allowed []string) bool {
	for _, basePath := range allowed {
		if relImportPath == basePath || strings.HasPrefix(relImportPath, basePath+"/") {
			return true
		}
	}
	return false
}

func run() error {
	allowed := append(append([]string{}, allowedBasePaths...), additionalAllowed...)
	violations := []violation{}

	fmt.Printf("Validating imports in %s\n", frameworkPath)
	fmt.Printf("Allowed paths: %v\n\n", allowed)

	err := filepath.Walk(frameworkPath, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		// tests may build a full scheduler around the plugins they exercise
		if info.IsDir() || !strings.HasSuffix(path, ".go") || strings.HasSuffix(path, "_test.go") {
			return nil
		}

		relPath, err := filepath.Rel(".", path)
		if err != nil {
			relPath = path
		}

		fset := token.NewFileSet()
		node, err := parser.ParseFile(fset, path, nil, parser.ImportsOnly)
		if err != nil {
			return fmt.Errorf("failed to parse %s: %w", path, err)
		}

		for _, imp := range node.Imports {
			importPath := strings.Trim(imp.Path.Value, `"`)
			if !strings.HasPrefix(importPath, repoModule+"/") {
				continue
			}
			relImportPath := strings.TrimPrefix(importPath, repoModule+"/")
			if !isAllowed(relImportPath, allowed) {
				violations = append(violations, violation{filePath: relPath, importPath: relImportPath})
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to walk directory: %w", err)
	}

	if len(violations) > 0 {
		sort.Slice(violations, func(i, j int) bool { return violations[i].String() < violations[j].String() })
		fmt.Printf("[ERROR] Found %d import violations:\n", len(violations))
		for _, v := range violations {
			fmt.Println("  " + v.String())
		}
		return fmt.Errorf("import validation failed: %d violations found", len(violations))
	}

	fmt.Printf("[PASS] All imports in %s are valid!\n", frameworkPath)
	return nil
}
