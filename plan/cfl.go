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

package plan

import (
	"fmt"
	"sort"

	"github.com/sembench/obmlc/ast"
	"github.com/sembench/obmlc/dialect"
	"github.com/sembench/obmlc/graph"
	"github.com/sembench/obmlc/obml"
	"github.com/sembench/obmlc/resolve"
)

// CFL builds a composite-fact plan: one Select "leg" per distinct source
// object, stacked with UnionAll into a CTE, read back by an outer
// re-aggregating Select, per spec.md §4.7.
type CFL struct{}

// NewCFL constructs a CFL planner.
func NewCFL() *CFL { return &CFL{} }

const compositeCTEName = "composite_01"

// Plan compiles a multi-fact ResolvedQuery into the outer Select that
// reads the composite_01 CTE; the CTE itself is attached to that Select's
// CTEs list.
func (p *CFL) Plan(rq *resolve.ResolvedQuery, d dialect.Dialect) (*ast.Select, error) {
	model := rq.Model
	g := graph.Build(model)

	legObjects := rq.FactTables()
	if len(legObjects) == 0 {
		return nil, fmt.Errorf("plan: composite-fact query has no measures")
	}

	legs := make([]*ast.Select, 0, len(legObjects))
	for _, legName := range legObjects {
		leg, err := p.buildLeg(model, d, g, rq, legName)
		if err != nil {
			return nil, err
		}
		legs = append(legs, leg)
	}

	union := &ast.UnionAll{Selects: legs, ByName: true}

	outer := &ast.Select{
		CTEs: []ast.CTE{{Name: compositeCTEName, Union: union}},
		From: ast.From{Table: d.QuoteIdentifier(compositeCTEName)},
	}

	for _, dim := range rq.Dimensions {
		outer.Columns = append(outer.Columns, ast.Alias(ast.Col("", dim.Name), dim.Name))
		outer.GroupBy = append(outer.GroupBy, ast.Col("", dim.Name))
	}

	for _, m := range rq.Measures {
		if !m.Direct {
			continue
		}
		outer.Columns = append(outer.Columns, ast.Alias(outerMeasureExpr(m), m.Name))
	}

	lookup := func(name string) ast.Expr {
		if cm, ok := rq.Measure(name); ok {
			return outerMeasureExpr(cm)
		}
		return ast.NullLit()
	}
	for _, met := range rq.Metrics {
		outer.Columns = append(outer.Columns, ast.Alias(substituteMetric(met.Formula, lookup), met.Name))
	}

	orderBy := buildOrderBy(rq.OrderBy)
	for i, o := range orderBy {
		orderBy[i] = ast.OrderByItem{Expr: stripQualifiers(o.Expr), Direction: o.Direction}
	}
	outer.OrderBy = orderBy
	outer.Limit = rq.Limit
	outer.HasLimit = rq.HasLimit
	outer.Offset = rq.Offset

	return outer, nil
}

// buildLeg builds one per-object Select: conformed dimensions, this
// object's own measures' raw (un-aggregated) values, and NULL
// placeholders for every other leg's measures, joined out from legName to
// whatever objects the selected dimensions and inherited WHERE filters
// reference.
func (p *CFL) buildLeg(model *obml.SemanticModel, d dialect.Dialect, g *graph.JoinGraph, rq *resolve.ResolvedQuery, legName string) (*ast.Select, error) {
	legObj, ok := model.Object(legName)
	if !ok {
		return nil, fmt.Errorf("plan: unknown leg object %q", legName)
	}

	leg := &ast.Select{From: ast.From{Table: d.FormatTableRef(legObj), Alias: legName}}

	targets := map[string]bool{}
	var targetOrder []string
	addTarget := func(obj string) {
		if obj == legName || targets[obj] {
			return
		}
		targets[obj] = true
		targetOrder = append(targetOrder, obj)
	}
	for _, dim := range rq.Dimensions {
		addTarget(dim.Object)
	}
	for _, w := range rq.WhereFilters {
		refs := map[string]bool{}
		referencedObjects(w, refs)
		var refOrder []string
		for obj := range refs {
			refOrder = append(refOrder, obj)
		}
		sort.Strings(refOrder)
		for _, obj := range refOrder {
			addTarget(obj)
		}
	}

	var steps []graph.JoinStep
	seen := map[string]bool{}
	for _, target := range targetOrder {
		path, ok := g.FindPath(legName, target, rq.UsePathNames)
		if !ok {
			return nil, obml.NewError(
				obml.ErrFanout.New(fmt.Sprintf("dimension object %q is not reachable from fact object %q", target, legName)),
				"FANOUT_ERROR", "", nil)
		}
		for _, s := range path {
			key := fmt.Sprintf("%s|%s|%v", s.From, s.To, s.Reversed)
			if !seen[key] {
				seen[key] = true
				steps = append(steps, s)
			}
		}
	}

	joins, err := buildJoins(model, d, steps)
	if err != nil {
		return nil, err
	}
	leg.Joins = joins

	for _, dim := range rq.Dimensions {
		leg.Columns = append(leg.Columns, dimensionSelectColumn(d, dim))
	}

	for _, m := range rq.Measures {
		ownsLeg := false
		for _, o := range m.SourceObjects {
			if o == legName {
				ownsLeg = true
				break
			}
		}
		if ownsLeg {
			for _, col := range legValueColumns(m) {
				leg.Columns = append(leg.Columns, ast.Alias(col.Expr, col.Alias))
			}
		} else {
			for _, col := range legValueColumns(m) {
				leg.Columns = append(leg.Columns, ast.Alias(ast.NullLit(), col.Alias))
			}
		}
	}

	// Each leg inherits the query's WHERE filters as a row-level predicate,
	// evaluated before the per-leg emission (spec.md §4.7 supplement 5.2).
	leg.Where = ast.And(rq.WhereFilters...)

	return leg, nil
}
