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

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var hypothesisIDPattern = regexp.MustCompile(`^H[1-9][0-9]*$`)

var validate *validator.Validate

func init() {
	validate = validator.New()
	// "H" followed by a positive integer, e.g. H1, H2, H17.
	_ = validate.RegisterValidation("hypothesis_id", func(fl validator.FieldLevel) bool {
		return hypothesisIDPattern.MatchString(fl.Field().String())
	})
}

// ValidateQueryRequest checks a request before any backend work starts.
//
// Validation rules:
//   - Query must be non-empty after trimming
//   - TopK must be in [1, 20]
//   - Temperature must be in [0, 1]
func ValidateQueryRequest(req *QueryRequest) error {
	if req == nil {
		return fmt.Errorf("%w: request is nil", ErrValidation)
	}
	if strings.TrimSpace(req.Query) == "" {
		return ErrEmptyQuery
	}
	if err := validate.Struct(req); err != nil {
		return fmt.Errorf("%w: %s", ErrValidation, joinFieldErrors(err))
	}
	return nil
}

// ValidateHypothesis validates a single hypothesis record.
//
// Validation rules:
//   - Id must match "H" + positive integer
//   - Type and Plausibility must use their documented values
//   - ConfidenceScore must be in [0, 1]; out-of-range values are an error,
//     never clamped
//   - Statement, MechanisticRationale, Limitations and the experiment's
//     required fields must be present
func ValidateHypothesis(h *Hypothesis) error {
	if h == nil {
		return fmt.Errorf("%w: hypothesis is nil", ErrValidation)
	}
	if err := validate.Struct(h); err != nil {
		return fmt.Errorf("%w: hypothesis %q: %s", ErrValidation, h.Id, joinFieldErrors(err))
	}
	return nil
}

// ValidateEvidenceItem validates a single evidence record. Records with a
// missing or sentinel PMID are dropped by the retriever, so this only
// guards against malformed items reaching a response.
func ValidateEvidenceItem(item *EvidenceItem) error {
	if item == nil {
		return fmt.Errorf("%w: evidence item is nil", ErrValidation)
	}
	if !IsUsablePMID(item.PMID) {
		return fmt.Errorf("%w: missing pmid", ErrValidation)
	}
	return nil
}

// IsUsablePMID reports whether a pmid identifies a record. The sentinel
// strings come from upstream exports where absent identifiers arrive as
// literal "nan" or "none" text.
func IsUsablePMID(pmid string) bool {
	switch strings.ToLower(strings.TrimSpace(pmid)) {
	case "", "nan", "none":
		return false
	}
	return true
}

func joinFieldErrors(err error) string {
	var verrs validator.ValidationErrors
	ok := false
	if verrs, ok = err.(validator.ValidationErrors); !ok {
		return err.Error()
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("field %s failed rule %s", fe.StructNamespace(), fe.Tag()))
	}
	return strings.Join(msgs, "; ")
}
