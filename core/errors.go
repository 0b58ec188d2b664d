// Copyright 2025 Poiesic Systems
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


package core

import "errors"

// Error taxonomy for the pipeline. Fatal errors reach the caller; soft
// failures are absorbed by the orchestration and surface only in the
// response note.
var (
	// ErrEmptyQuery indicates the query is empty after trimming.
	ErrEmptyQuery = errors.New("query must not be empty")

	// ErrUnavailable indicates a backend is not configured or not connected.
	ErrUnavailable = errors.New("backend unavailable")

	// ErrValidation indicates a record failed schema validation.
	ErrValidation = errors.New("validation failed")

	// ErrDecode indicates generative output could not be decoded into the required shape.
	ErrDecode = errors.New("decode failed")

	// ErrForbiddenQuery indicates a raw graph query contained a write keyword.
	ErrForbiddenQuery = errors.New("query contains write or destructive operations")

	// ErrInternal indicates an unexpected backend error during an otherwise-ready call.
	ErrInternal = errors.New("internal error")
)
