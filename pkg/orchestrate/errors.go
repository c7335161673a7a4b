// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package orchestrate

import (
	"gitlab.com/tozd/go/errors"
)

// 🚨 Precondition failures. Each aborts the run before any work is
// dispatched and maps to its own process exit code.
var (
	ErrSourceMissing = errors.Base("source path does not exist or is not a directory")
	ErrTargetMissing = errors.Base("target path does not exist or is not a directory")
	ErrNameMismatch  = errors.Base("source and target must share the same final path segment")
	ErrPermission    = errors.Base("permission denied creating working paths")
	ErrCopiesFailed  = errors.Base("one or more copies failed")
)

// Process exit codes for the precondition failures above.
const (
	ExitOK            = 0
	ExitFailure       = 1
	ExitSourceMissing = 2
	ExitTargetMissing = 3
	ExitNameMismatch  = 4
	ExitPermission    = 5
)

// 🔢 ExitCode maps a run error to a process exit code.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, ErrSourceMissing):
		return ExitSourceMissing
	case errors.Is(err, ErrTargetMissing):
		return ExitTargetMissing
	case errors.Is(err, ErrNameMismatch):
		return ExitNameMismatch
	case errors.Is(err, ErrPermission):
		return ExitPermission
	default:
		return ExitFailure
	}
}
