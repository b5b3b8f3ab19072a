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

package error

import (
	"errors"
	"fmt"
	"testing"
)

func TestError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  Error
		want string
	}{
		{
			name: "OutOfCapacity error",
			err:  Error{Code: OutOfCapacity, Msg: "request pool exhausted"},
			want: "seek scheduler: OutOfCapacity - request pool exhausted",
		},
		{
			name: "DuplicateKey error",
			err:  Error{Code: DuplicateKey, Msg: "address 100 already pending"},
			want: "seek scheduler: DuplicateKey - address 100 already pending",
		},
		{
			name: "NotFound error",
			err:  Error{Code: NotFound, Msg: "address 7 is not pending"},
			want: "seek scheduler: NotFound - address 7 is not pending",
		},
		{
			name: "Empty message",
			err:  Error{Code: BadRequest},
			want: "seek scheduler: BadRequest - ",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error.Error() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCanonicalCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{
			name: "Error type",
			err:  Error{Code: InvariantViolation, Msg: "thread out of order"},
			want: InvariantViolation,
		},
		{
			name: "Wrapped Error type",
			err:  fmt.Errorf("insert failed: %w", Errorf(DuplicateKey, "address %d", 5)),
			want: DuplicateKey,
		},
		{
			name: "Non-Error type",
			err:  errors.New("standard go error"),
			want: Unknown,
		},
		{
			name: "Nil error",
			err:  nil,
			want: Unknown,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CanonicalCode(tt.err); got != tt.want {
				t.Errorf("CanonicalCode() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIsFatal(t *testing.T) {
	if !IsFatal(fmt.Errorf("select: %w", Error{Code: InvariantViolation})) {
		t.Error("IsFatal() = false for a wrapped InvariantViolation, want true")
	}
	if IsFatal(Error{Code: OutOfCapacity}) {
		t.Error("IsFatal() = true for OutOfCapacity, want false")
	}
	if IsFatal(nil) {
		t.Error("IsFatal(nil) = true, want false")
	}
}
