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

// Package graph resolves join paths between data objects in a semantic
// model: an undirected adjacency for shortest-path lookups, plus the
// directed view used by validate for cycle/multipath checks. Per
// spec.md §3.2/§9, secondary joins never participate in cycle or
// multipath detection — they are reachable only via an explicit path-name
// override — so callers choose whether to include them (see
// JoinGraph.PrimaryEdges).
package graph

import (
	"fmt"

	"github.com/sembench/obmlc/obml"
)

// JoinStep is one traversed edge in a resolved join path. Reversed
// records whether the step was walked opposite to the direction the join
// was declared (i.e. from the JoinTo side back to the owning object) —
// fanout detection needs this to tell a safe many-to-one traversal from
// an unsafe reversed (effectively one-to-many) one.
type JoinStep struct {
	From        string
	To          string
	FromColumns []string
	ToColumns   []string
	JoinType    obml.JoinType
	Cardinality obml.Cardinality
	Reversed    bool
	PathName    string
}

// Edge is one directed adjacency entry derived from a DataObjectJoin.
type Edge struct {
	From        string
	To          string
	FromColumns []string
	ToColumns   []string
	JoinType    obml.JoinType
	Cardinality obml.Cardinality
	Secondary   bool
	PathName    string
}

// JoinGraph is the adjacency-list view of every join edge in a model.
type JoinGraph struct {
	model *obml.SemanticModel
	edges map[string][]Edge // keyed by owning object name
}

// Build constructs a JoinGraph over every join declared in the model
// (both primary and secondary); callers that need a primary-only view for
// cycle/multipath checks should filter with PrimaryEdges instead of
// consulting Edges directly.
func Build(model *obml.SemanticModel) *JoinGraph {
	g := &JoinGraph{model: model, edges: make(map[string][]Edge)}
	for _, obj := range model.Objects {
		for _, j := range obj.Joins {
			g.edges[obj.Name] = append(g.edges[obj.Name], Edge{
				From:        obj.Name,
				To:          j.JoinTo,
				FromColumns: j.ColumnsFrom,
				ToColumns:   j.ColumnsTo,
				JoinType:    j.Type,
				Cardinality: j.Cardinality,
				Secondary:   j.Secondary,
				PathName:    j.PathName,
			})
		}
	}
	return g
}

// AllEdges returns every edge in declaration order.
func (g *JoinGraph) AllEdges() []Edge {
	out := make([]Edge, 0)
	for _, obj := range g.model.Objects {
		out = append(out, g.edges[obj.Name]...)
	}
	return out
}

// PrimaryEdges returns only non-secondary edges, the view used for cycle
// and multipath validation.
func (g *JoinGraph) PrimaryEdges() []Edge {
	var out []Edge
	for _, e := range g.AllEdges() {
		if !e.Secondary {
			out = append(out, e)
		}
	}
	return out
}

// neighbors returns every edge touching obj in either direction, paired
// with whether following it means walking against its declared direction.
func (g *JoinGraph) neighbors(obj string, overridePath map[string]string) []struct {
	edge     Edge
	reversed bool
} {
	var out []struct {
		edge     Edge
		reversed bool
	}
	for _, e := range g.AllEdges() {
		if e.Secondary && overridePath[pairKey(e.From, e.To)] != e.PathName {
			continue
		}
		if e.From == obj {
			out = append(out, struct {
				edge     Edge
				reversed bool
			}{e, false})
		} else if e.To == obj && !e.Secondary {
			// Secondary joins are only traversable in their declared
			// direction via an explicit override (checked above); a
			// primary join may be walked in reverse.
			out = append(out, struct {
				edge     Edge
				reversed bool
			}{e, true})
		} else if e.To == obj && e.Secondary && overridePath[pairKey(e.From, e.To)] == e.PathName {
			out = append(out, struct {
				edge     Edge
				reversed bool
			}{e, true})
		}
	}
	return out
}

func pairKey(a, b string) string { return a + "->" + b }

// FindPath finds a shortest join path from source to target via breadth-
// first search over both primary and (when explicitly requested through
// overridePath) secondary edges. overridePath maps "from->to" pairs to the
// specific path_name that must be used for that pair, per a query's
// use_path_names; pairs absent from the map never select a secondary
// join. Returns nil, false if no path exists.
func (g *JoinGraph) FindPath(source, target string, overridePath map[string]string) ([]JoinStep, bool) {
	if source == target {
		return nil, true
	}
	type frame struct {
		obj  string
		path []JoinStep
	}
	visited := map[string]bool{source: true}
	queue := []frame{{obj: source}}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, n := range g.neighbors(cur.obj, overridePath) {
			var next string
			if n.edge.From == cur.obj {
				next = n.edge.To
			} else {
				next = n.edge.From
			}
			if visited[next] {
				continue
			}
			step := JoinStep{
				From:        n.edge.From,
				To:          n.edge.To,
				FromColumns: n.edge.FromColumns,
				ToColumns:   n.edge.ToColumns,
				JoinType:    n.edge.JoinType,
				Cardinality: n.edge.Cardinality,
				Reversed:    n.reversed,
				PathName:    n.edge.PathName,
			}
			newPath := append(append([]JoinStep{}, cur.path...), step)
			if next == target {
				return newPath, true
			}
			visited[next] = true
			queue = append(queue, frame{obj: next, path: newPath})
		}
	}
	return nil, false
}

// BuildJoinCondition renders the AND-of-equalities join condition for a
// step, qualifying each side by the given table aliases. FromColumns are
// qualified by fromAlias and ToColumns by toAlias; both are relative to the
// join's declared owner, so a Reversed step needs no swap.
func BuildJoinCondition(step JoinStep, fromAlias, toAlias string) string {
	fromCols, toCols := step.FromColumns, step.ToColumns
	cond := ""
	for i := range fromCols {
		if i > 0 {
			cond += " AND "
		}
		cond += fmt.Sprintf("%s.%s = %s.%s", fromAlias, fromCols[i], toAlias, toCols[i])
	}
	return cond
}
