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

// Package fanout detects join paths that would silently multiply a
// measure's rows before aggregation. It is skipped entirely for CFL
// queries (each fact is queried on its own leg, never joined to another
// fact) and for any individual measure marked allow_fan_out.
package fanout

import (
	"fmt"
	"strings"

	"github.com/sembench/obmlc/graph"
	"github.com/sembench/obmlc/obml"
	"github.com/sembench/obmlc/resolve"
)

// stepCausesFanout classifies a single traversed join step: a
// many-to-many relationship always fans out; a many-to-one relationship
// only fans out when walked in reverse (i.e. effectively one-to-many from
// the traversal's point of view); one-to-one never fans out.
func stepCausesFanout(step graph.JoinStep) bool {
	switch step.Cardinality {
	case obml.CardinalityManyToMany:
		return true
	case obml.CardinalityManyToOne:
		return step.Reversed
	case obml.CardinalityOneToMany:
		return !step.Reversed
	default:
		return false
	}
}

// multipliedObject returns the object whose rows are multiplied by a
// fanout-causing step.
func multipliedObject(step graph.JoinStep) string {
	if step.Reversed {
		return step.To
	}
	return step.From
}

// Detect checks every measure in rq against the resolved join path and
// returns a single error naming every unsafe fanout found, or nil if the
// path is safe for every measure. CFL queries (rq.IsCFL) are skipped
// entirely — each leg is queried against its own fact independently, so no
// step ever multiplies rows across facts.
func Detect(rq *resolve.ResolvedQuery) error {
	if rq.IsCFL {
		return nil
	}
	if len(rq.JoinPath) == 0 {
		return nil
	}

	var messages []string
	for _, step := range rq.JoinPath {
		if !stepCausesFanout(step) {
			continue
		}
		multiplied := multipliedObject(step)
		for _, m := range rq.Measures {
			if m.AllowFanOut {
				continue
			}
			for _, src := range m.SourceObjects {
				if src == multiplied {
					messages = append(messages, fmt.Sprintf(
						"measure %q is sourced from %q, which is multiplied by a %s join from %q to %q",
						m.Name, src, directionLabel(step), step.From, step.To))
				}
			}
		}
	}

	if len(messages) == 0 {
		return nil
	}
	return obml.NewError(
		obml.ErrFanout.New(strings.Join(messages, "; ")),
		"FANOUT_ERROR", "", nil)
}

func directionLabel(step graph.JoinStep) string {
	if step.Cardinality == obml.CardinalityManyToMany {
		return "many-to-many"
	}
	if step.Reversed {
		return "one-to-many"
	}
	return string(step.Cardinality)
}
