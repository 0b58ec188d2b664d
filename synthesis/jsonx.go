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


package synthesis

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/poiesic/hypograph/core"
)

// decodeRecoverable runs the ordered recovery pipeline over a raw model
// response and unmarshals the result into v. Each step tolerates a common
// failure mode of chatty or sloppy model output; only when no balanced JSON
// object can be located, or the cleaned text still fails to decode, does it
// return core.ErrDecode.
func decodeRecoverable(raw string, v any) error {
	text := stripFences(raw)
	text = stripTrailingCommas(text)

	object, ok := locateBalancedObject(text)
	if !ok {
		return fmt.Errorf("%w: no JSON object found in response", core.ErrDecode)
	}
	object = repairJSON(object)

	if err := json.Unmarshal([]byte(object), v); err != nil {
		return fmt.Errorf("%w: %w", core.ErrDecode, err)
	}
	return nil
}

// stripFences removes markdown code fences around a response.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if idx := strings.Index(s, "```json"); idx >= 0 {
		s = s[idx+len("```json"):]
		if end := strings.Index(s, "```"); end >= 0 {
			s = s[:end]
		}
		return strings.TrimSpace(s)
	}
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

var (
	trailingCommaObject = regexp.MustCompile(`,\s*}`)
	trailingCommaArray  = regexp.MustCompile(`,\s*]`)
)

// stripTrailingCommas removes commas directly before closing braces and
// brackets, the most common strict-JSON violation in model output.
func stripTrailingCommas(s string) string {
	s = trailingCommaObject.ReplaceAllString(s, "}")
	s = trailingCommaArray.ReplaceAllString(s, "]")
	return s
}

// locateBalancedObject returns the first balanced top-level {...} span,
// tracking string literals so braces inside values don't miscount.
func locateBalancedObject(s string) (string, bool) {
	start := strings.IndexByte(s, '{')
	if start < 0 {
		return "", false
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		ch := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}
		switch ch {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[start : i+1], true
			}
		}
	}
	return "", false
}

// repairJSON fixes keys missing their opening quote, e.g. `, type":` becomes
// `, "type":`. Models in JSON mode still produce this occasionally.
func repairJSON(s string) string {
	result := []rune(s)
	fixed := make([]rune, 0, len(result)+16)

	i := 0
	for i < len(result) {
		ch := result[i]
		if ch != '{' && ch != ',' {
			fixed = append(fixed, ch)
			i++
			continue
		}

		fixed = append(fixed, ch)
		i++
		for i < len(result) && (result[i] == ' ' || result[i] == '\n' || result[i] == '\t') {
			fixed = append(fixed, result[i])
			i++
		}

		if i >= len(result) || result[i] == '"' || !isKeyRune(result[i]) {
			continue
		}

		keyStart := i
		for i < len(result) && isKeyRune(result[i]) {
			i++
		}

		if i+1 < len(result) && result[i] == '"' && result[i+1] == ':' {
			fixed = append(fixed, '"')
			fixed = append(fixed, result[keyStart:i]...)
		} else {
			fixed = append(fixed, result[keyStart:i]...)
		}
	}

	return string(fixed)
}

func isKeyRune(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || r == '_'
}
