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

// Package plan turns a resolved query into a fully-formed ast.Select (or
// ast.UnionAll-backed CTE, for composite-fact queries), dialect-aware at
// every table/column reference. Three planners compose in sequence:
// Star (single fact), CFL (multi-fact), and Total (grand-total wrapping),
// per spec.md §4.6-4.8.
package plan

import (
	"fmt"

	"github.com/sembench/obmlc/ast"
	"github.com/sembench/obmlc/dialect"
	"github.com/sembench/obmlc/graph"
	"github.com/sembench/obmlc/obml"
	"github.com/sembench/obmlc/resolve"
)

// dimensionRawSQL renders a dimension's physical column reference,
// quoted and grain-wrapped via the dialect's own hooks (Gap: dimension
// rendering must go through RenderTimeGrain rather than a hardcoded
// date_trunc call, since every dialect spells grain truncation
// differently).
func dimensionRawSQL(d dialect.Dialect, dim resolve.ResolvedDimension) string {
	colSQL := d.QuoteIdentifier(dim.Object) + "." + d.QuoteIdentifier(dim.Column)
	if dim.Grain == "" {
		return colSQL
	}
	return d.RenderTimeGrain(dim.Grain, colSQL)
}

func dimensionSelectColumn(d dialect.Dialect, dim resolve.ResolvedDimension) ast.Expr {
	return ast.Alias(ast.RawSQL{SQL: dimensionRawSQL(d, dim)}, dim.Name)
}

func dimensionGroupByExpr(d dialect.Dialect, dim resolve.ResolvedDimension) ast.Expr {
	return ast.RawSQL{SQL: dimensionRawSQL(d, dim)}
}

// buildJoins appends a LEFT JOIN per recorded join step, in order, each
// aliased by the newly-introduced object's own name (spec.md §4.6: "each
// step becomes LEFT JOIN target ON build_join_condition(step), aliased by
// the target object label"). Every alias equals the object's own name, so
// BuildJoinCondition's from/to aliases are simply the step's From/To
// object names regardless of which side was newly introduced.
func buildJoins(model *obml.SemanticModel, d dialect.Dialect, steps []graph.JoinStep) ([]ast.Join, error) {
	var joins []ast.Join
	for _, step := range steps {
		newObjName := step.To
		if step.Reversed {
			newObjName = step.From
		}
		newObj, ok := model.Object(newObjName)
		if !ok {
			return nil, fmt.Errorf("plan: unknown join target %q", newObjName)
		}
		cond := graph.BuildJoinCondition(step, step.From, step.To)
		joins = append(joins, ast.Join{
			Type:  obml.JoinLeft,
			Table: d.FormatTableRef(newObj),
			Alias: newObjName,
			On:    ast.RawSQL{SQL: cond},
		})
	}
	return joins, nil
}

func buildOrderBy(items []resolve.ResolvedOrderBy) []ast.OrderByItem {
	out := make([]ast.OrderByItem, len(items))
	for i, o := range items {
		out[i] = ast.OrderByItem{Expr: ast.Col("", o.Alias), Direction: o.Direction}
	}
	return out
}

// legValueColumn is one leg-level (un-aggregated) column a CFL leg must
// carry for a measure.
type legValueColumn struct {
	Alias string
	Expr  ast.Expr
}

// legValueColumns returns, in a fixed order, the leg-level columns a CFL
// leg must carry for a measure: a single value column in the common case,
// one column per field for a multi-field COUNT, and an extra ordering
// column when the measure uses within_group (LISTAGG). The order matters:
// every dialect but Snowflake unions legs positionally (plain UNION ALL,
// not UNION ALL BY NAME), so the owning leg's columns and every other
// leg's NULL placeholders for the same measure must land in the same
// position — a map iteration here would let them drift independently.
func legValueColumns(m resolve.ResolvedMeasure) []legValueColumn {
	fc, ok := m.AggExpr.(ast.FunctionCall)
	if !ok {
		return []legValueColumn{{Alias: m.Name, Expr: m.RawExpr}}
	}
	var out []legValueColumn
	if fc.Name == "COUNT" && len(fc.Args) > 1 {
		for i, a := range fc.Args {
			out = append(out, legValueColumn{Alias: fmt.Sprintf("%s__f%d", m.Name, i), Expr: a})
		}
	} else if len(fc.Args) > 0 {
		out = append(out, legValueColumn{Alias: m.Name, Expr: fc.Args[0]})
	}
	if len(fc.WithinGroupOrder) > 0 {
		out = append(out, legValueColumn{Alias: m.Name + "__order", Expr: fc.WithinGroupOrder[0].Expr})
	}
	return out
}

// outerMeasureExpr re-aggregates a measure's leg-level value columns at
// the CFL outer query.
// Literal arguments (a LISTAGG delimiter, say) pass through unchanged;
// only the data-bearing argument and ordering column are re-pointed at
// their CTE aliases.
func outerMeasureExpr(m resolve.ResolvedMeasure) ast.FunctionCall {
	fc, ok := m.AggExpr.(ast.FunctionCall)
	if !ok {
		return ast.FunctionCall{Name: "MIN", Args: []ast.Expr{ast.Col("", m.Name)}}
	}
	if fc.Name == "COUNT" && len(fc.Args) > 1 {
		args := make([]ast.Expr, len(fc.Args))
		for i := range fc.Args {
			args[i] = ast.Col("", fmt.Sprintf("%s__f%d", m.Name, i))
		}
		return ast.FunctionCall{Name: fc.Name, Args: args, Distinct: fc.Distinct}
	}
	out := ast.FunctionCall{Name: fc.Name, Distinct: fc.Distinct}
	if len(fc.Args) > 0 {
		out.Args = append(out.Args, ast.Col("", m.Name))
		out.Args = append(out.Args, fc.Args[1:]...)
	}
	if len(fc.WithinGroupOrder) > 0 {
		orig := fc.WithinGroupOrder[0]
		out.WithinGroupOrder = []ast.OrderByItem{{Expr: ast.Col("", m.Name+"__order"), Direction: orig.Direction}}
	}
	return out
}

// stripQualifiers rewrites every ColumnRef inside e to drop its table
// qualifier, used when an expression built against a leg/base CTE's own
// table aliases must instead reference that CTE's unqualified output
// columns (CFL/total outer ORDER BY, per spec.md §4.7/§4.8).
func stripQualifiers(e ast.Expr) ast.Expr {
	switch t := e.(type) {
	case ast.ColumnRef:
		return ast.ColumnRef{Column: t.Column}
	case ast.AliasedExpr:
		return ast.AliasedExpr{Expr: stripQualifiers(t.Expr), Alias: t.Alias}
	case ast.BinaryOp:
		return ast.BinaryOp{Op: t.Op, Left: stripQualifiers(t.Left), Right: stripQualifiers(t.Right)}
	case ast.UnaryOp:
		return ast.UnaryOp{Op: t.Op, Operand: stripQualifiers(t.Operand)}
	case ast.FunctionCall:
		args := make([]ast.Expr, len(t.Args))
		for i, a := range t.Args {
			args[i] = stripQualifiers(a)
		}
		return ast.FunctionCall{Name: t.Name, Args: args, Distinct: t.Distinct, WithinGroupOrder: t.WithinGroupOrder}
	default:
		return e
	}
}

// referencedObjects collects the distinct table qualifiers an expression
// references, used by the CFL planner to work out which extra objects a
// leg must join to in order to carry the selected dimensions and inherited
// WHERE filters.
func referencedObjects(e ast.Expr, out map[string]bool) {
	switch t := e.(type) {
	case ast.ColumnRef:
		if t.Table != "" {
			out[t.Table] = true
		}
	case ast.AliasedExpr:
		referencedObjects(t.Expr, out)
	case ast.BinaryOp:
		referencedObjects(t.Left, out)
		referencedObjects(t.Right, out)
	case ast.UnaryOp:
		referencedObjects(t.Operand, out)
	case ast.IsNull:
		referencedObjects(t.Expr, out)
	case ast.InList:
		referencedObjects(t.Expr, out)
		for _, v := range t.Values {
			referencedObjects(v, out)
		}
	case ast.Between:
		referencedObjects(t.Expr, out)
		referencedObjects(t.Low, out)
		referencedObjects(t.High, out)
	case ast.CaseExpr:
		for _, w := range t.Whens {
			referencedObjects(w.When, out)
			referencedObjects(w.Then, out)
		}
		if t.Else != nil {
			referencedObjects(t.Else, out)
		}
	case ast.Cast:
		referencedObjects(t.Expr, out)
	case ast.FunctionCall:
		for _, a := range t.Args {
			referencedObjects(a, out)
		}
	case ast.StringContains:
		referencedObjects(t.Expr, out)
		referencedObjects(t.Value, out)
	case ast.RelativeDateRange:
		referencedObjects(t.Column, out)
	}
}
