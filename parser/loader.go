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

// Package parser loads OBML YAML documents into obml.SemanticModel values
// and resolves every dimension/measure/join reference against the loaded
// objects, attaching "did you mean" suggestions to unresolved names.
package parser

import (
	"fmt"
	"regexp"

	"github.com/pkg/errors"
	yaml "gopkg.in/yaml.v2"

	"github.com/sembench/obmlc/obml"
)

// Safety limits applied before a document is unmarshalled, mirroring the
// original loader's defenses against adversarial or malformed YAML (billion
// laughs, pathological nesting, oversized documents).
const (
	maxDocumentSize = 5_000_000
	maxNodeCount    = 50_000
	maxDepth        = 20
)

// anchorRE detects YAML anchor/alias markers (&name, *name) at line start
// or after whitespace/sequence indicators (a good-enough heuristic, same
// tradeoff the original loader makes). The pattern does not tell quoted
// text apart, so a quoted "&word" after whitespace is rejected too. OBML
// never emits anchors or aliases, and alias expansion happens during
// parsing itself — a billion-laughs document is already fully expanded by
// the time countNodes would see it — so this must run on the raw text
// before yaml.Unmarshal, not after.
var anchorRE = regexp.MustCompile(`(?m)(?:^|[\s\-:])[&*](\w+)`)

func checkYAMLSafety(data []byte) error {
	if len(data) > maxDocumentSize {
		return obml.NewError(
			obml.ErrYAMLSafety.New(fmt.Sprintf("document exceeds %d bytes", maxDocumentSize)),
			"YAML_SAFETY_ERROR", "", nil)
	}
	if anchorRE.Match(data) {
		return obml.NewError(
			obml.ErrYAMLSafety.New("YAML anchors/aliases are not supported in OBML"),
			"YAML_SAFETY_ERROR", "", nil)
	}
	return nil
}

// Loader is the consumed contract for turning raw bytes into a
// SemanticModel. engine.ModelRegistry depends only on this interface so callers
// can supply their own source (a database, an object store, ...) without
// this package knowing about it.
type Loader interface {
	Load(data []byte) (*obml.SemanticModel, error)
}

// YAMLLoader is the default Loader: a size/depth/node-count-guarded
// gopkg.in/yaml.v2 decode.
type YAMLLoader struct{}

// NewYAMLLoader constructs the default loader.
func NewYAMLLoader() *YAMLLoader { return &YAMLLoader{} }

// Load decodes data into a SemanticModel after running safety checks.
func (l *YAMLLoader) Load(data []byte) (*obml.SemanticModel, error) {
	if err := checkYAMLSafety(data); err != nil {
		return nil, err
	}

	var generic interface{}
	if err := yaml.Unmarshal(data, &generic); err != nil {
		return nil, obml.NewError(
			obml.ErrYAMLParse.New(err.Error()),
			"YAML_PARSE_ERROR", "", nil)
	}
	nodes, depth := countNodes(generic, 0)
	if nodes > maxNodeCount {
		return nil, obml.NewError(
			obml.ErrYAMLSafety.New(fmt.Sprintf("document has %d nodes, exceeds limit %d", nodes, maxNodeCount)),
			"YAML_SAFETY_ERROR", "", nil)
	}
	if depth > maxDepth {
		return nil, obml.NewError(
			obml.ErrYAMLSafety.New(fmt.Sprintf("document nesting depth %d exceeds limit %d", depth, maxDepth)),
			"YAML_SAFETY_ERROR", "", nil)
	}

	var model obml.SemanticModel
	if err := yaml.Unmarshal(data, &model); err != nil {
		return nil, errors.Wrap(obml.NewError(
			obml.ErrYAMLParse.New(err.Error()),
			"YAML_PARSE_ERROR", "", nil), "decoding semantic model")
	}
	return &model, nil
}

// countNodes walks a generically-decoded YAML value counting total nodes
// and maximum nesting depth, used to reject pathological documents before
// the real typed decode runs.
func countNodes(v interface{}, depth int) (count int, maxD int) {
	maxD = depth
	switch t := v.(type) {
	case map[interface{}]interface{}:
		count = 1
		for _, child := range t {
			c, d := countNodes(child, depth+1)
			count += c
			if d > maxD {
				maxD = d
			}
		}
	case []interface{}:
		count = 1
		for _, child := range t {
			c, d := countNodes(child, depth+1)
			count += c
			if d > maxD {
				maxD = d
			}
		}
	default:
		count = 1
	}
	return count, maxD
}
