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
	"testing"

	"github.com/poiesic/hypograph/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStripFences(t *testing.T) {
	assert.Equal(t, `{"a": 1}`, stripFences("```json\n{\"a\": 1}\n```"))
	assert.Equal(t, `{"a": 1}`, stripFences("```\n{\"a\": 1}\n```"))
	assert.Equal(t, `{"a": 1}`, stripFences(`{"a": 1}`))
	assert.Equal(t, `{"a": 1}`, stripFences("Here you go:\n```json\n{\"a\": 1}\n```\nHope that helps!"))
}

func TestStripTrailingCommas(t *testing.T) {
	assert.Equal(t, `{"a": [1, 2]}`, stripTrailingCommas(`{"a": [1, 2,]}`))
	assert.Equal(t, `{"a": 1}`, stripTrailingCommas(`{"a": 1,}`))
	assert.Equal(t, "{\"a\": 1}", stripTrailingCommas("{\"a\": 1,\n}"))
}

func TestLocateBalancedObject(t *testing.T) {
	t.Run("plain object", func(t *testing.T) {
		got, ok := locateBalancedObject(`{"a": 1}`)
		require.True(t, ok)
		assert.Equal(t, `{"a": 1}`, got)
	})

	t.Run("surrounded by prose", func(t *testing.T) {
		got, ok := locateBalancedObject(`Sure! {"a": {"b": 2}} That is my answer.`)
		require.True(t, ok)
		assert.Equal(t, `{"a": {"b": 2}}`, got)
	})

	t.Run("braces inside strings do not miscount", func(t *testing.T) {
		got, ok := locateBalancedObject(`{"a": "close } brace"}`)
		require.True(t, ok)
		assert.Equal(t, `{"a": "close } brace"}`, got)
	})

	t.Run("no object", func(t *testing.T) {
		_, ok := locateBalancedObject("no json here")
		assert.False(t, ok)
	})

	t.Run("unbalanced object", func(t *testing.T) {
		_, ok := locateBalancedObject(`{"a": 1`)
		assert.False(t, ok)
	})
}

func TestRepairJSON(t *testing.T) {
	assert.Equal(t, `{"type": "x"}`, repairJSON(`{type": "x"}`))
	assert.Equal(t, `{"a": 1, "b": 2}`, repairJSON(`{"a": 1, b": 2}`))
	// Already valid input passes through unchanged.
	assert.Equal(t, `{"a": 1, "b": 2}`, repairJSON(`{"a": 1, "b": 2}`))
}

func TestDecodeRecoverable(t *testing.T) {
	type target struct {
		Name string `json:"name"`
	}

	t.Run("clean input", func(t *testing.T) {
		var v target
		require.NoError(t, decodeRecoverable(`{"name": "x"}`, &v))
		assert.Equal(t, "x", v.Name)
	})

	t.Run("fenced with trailing comma and prose", func(t *testing.T) {
		var v target
		raw := "Here is the JSON:\n```json\n{\"name\": \"x\",}\n```"
		require.NoError(t, decodeRecoverable(raw, &v))
		assert.Equal(t, "x", v.Name)
	})

	t.Run("no object yields ErrDecode", func(t *testing.T) {
		var v target
		err := decodeRecoverable("I could not produce JSON, sorry.", &v)
		assert.ErrorIs(t, err, core.ErrDecode)
	})

	t.Run("irreparable object yields ErrDecode", func(t *testing.T) {
		var v target
		err := decodeRecoverable(`{"name": broken value}`, &v)
		assert.ErrorIs(t, err, core.ErrDecode)
	})
}
