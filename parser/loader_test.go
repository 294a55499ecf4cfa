// Copyright 2020-2021 Dolthub, Inc.
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

package parser

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sembench/obmlc/obml"
)

func validModelYAML() string {
	return `
name: test
objects:
  - name: Orders
    code: ORDERS
    columns:
      - name: ID
        column: ID
`
}

func TestYAMLLoaderAcceptsCleanDocument(t *testing.T) {
	model, err := NewYAMLLoader().Load([]byte(validModelYAML()))
	require.NoError(t, err)
	require.Equal(t, "test", model.Name)
}

func TestYAMLLoaderRejectsOversizedDocument(t *testing.T) {
	data := []byte("name: " + strings.Repeat("x", maxDocumentSize+1))
	_, err := NewYAMLLoader().Load(data)
	require.Error(t, err)
	serr, ok := err.(*obml.SemanticError)
	require.True(t, ok, "expected *obml.SemanticError, got %T", err)
	require.Equal(t, "YAML_SAFETY_ERROR", serr.Code)
}

func TestYAMLLoaderRejectsAnchors(t *testing.T) {
	data := []byte(`
name: test
objects:
  - name: Orders
    code: &anchor ORDERS
`)
	_, err := NewYAMLLoader().Load(data)
	require.Error(t, err)
	serr, ok := err.(*obml.SemanticError)
	require.True(t, ok, "expected *obml.SemanticError, got %T", err)
	require.Equal(t, "YAML_SAFETY_ERROR", serr.Code)
}

func TestYAMLLoaderRejectsAliases(t *testing.T) {
	data := []byte(`
name: test
objects:
  - name: Orders
    code: *anchor
`)
	_, err := NewYAMLLoader().Load(data)
	require.Error(t, err)
	serr, ok := err.(*obml.SemanticError)
	require.True(t, ok, "expected *obml.SemanticError, got %T", err)
	require.Equal(t, "YAML_SAFETY_ERROR", serr.Code)
}

func TestYAMLLoaderRejectsAnchorsBeforeNodeCountCheck(t *testing.T) {
	// A billion-laughs style document: if the anchor/alias scan did not
	// run before unmarshalling, this would already have expanded (and
	// potentially hung or OOM'd) before countNodes ever got a chance to
	// reject it. The pre-parse regex scan must catch it first.
	data := []byte(`
a: &a ["lol","lol","lol","lol","lol","lol","lol","lol","lol"]
b: &b [*a,*a,*a,*a,*a,*a,*a,*a,*a]
c: &c [*b,*b,*b,*b,*b,*b,*b,*b,*b]
`)
	_, err := NewYAMLLoader().Load(data)
	require.Error(t, err)
	serr, ok := err.(*obml.SemanticError)
	require.True(t, ok, "expected *obml.SemanticError, got %T", err)
	require.Equal(t, "YAML_SAFETY_ERROR", serr.Code)
}

func TestCountNodesRejectsExcessiveNodeCount(t *testing.T) {
	var list []interface{}
	for i := 0; i < maxNodeCount+1; i++ {
		list = append(list, i)
	}
	count, _ := countNodes(list, 0)
	require.Greater(t, count, maxNodeCount)
}

func TestCountNodesRejectsExcessiveDepth(t *testing.T) {
	var v interface{} = "leaf"
	for i := 0; i < maxDepth+5; i++ {
		v = []interface{}{v}
	}
	_, depth := countNodes(v, 0)
	require.Greater(t, depth, maxDepth)
}
