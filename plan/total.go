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

	"github.com/sembench/obmlc/ast"
	"github.com/sembench/obmlc/dialect"
	"github.com/sembench/obmlc/obml"
	"github.com/sembench/obmlc/resolve"
)

const baseCTEName = "base"

// nonReaggregatable are the aggregations that cannot be folded into a
// window function's grand-total form (spec.md §4.8).
var nonReaggregatable = map[string]bool{
	"MEDIAN": true, "MODE": true, "LISTAGG": true, "ANY_VALUE": true,
}

// Total wraps an already-planned Select (from Star or CFL) in a grand-
// total CTE named "base" plus an outer window-function query, per
// spec.md §4.8. If no measure is marked total, the input is returned
// unchanged.
type Total struct{}

// NewTotal constructs a Total wrapper.
func NewTotal() *Total { return &Total{} }

// Wrap applies the grand-total transformation described in spec.md §4.8.
// inner is the fully-built planner output (Star or CFL); rq supplies the
// measure/metric metadata needed to classify each output column.
func (t *Total) Wrap(inner *ast.Select, rq *resolve.ResolvedQuery, d dialect.Dialect) (*ast.Select, error) {
	if !rq.HasTotals() {
		return inner, nil
	}

	base := &ast.Select{
		Columns: make([]ast.Expr, 0, len(inner.Columns)),
		From:    inner.From,
		Joins:   inner.Joins,
		Where:   inner.Where,
		GroupBy: inner.GroupBy,
		Having:  inner.Having,
	}

	directTotal := map[string]resolve.ResolvedMeasure{}
	for _, m := range rq.Measures {
		if m.Direct && m.Total {
			directTotal[m.Name] = m
		}
	}
	component := map[string]resolve.ResolvedMeasure{}
	var componentOrder []string
	for _, met := range rq.Metrics {
		for _, ref := range met.ComponentMeasures {
			if cm, ok := rq.Measure(ref); ok {
				if _, exists := component[ref]; !exists {
					componentOrder = append(componentOrder, ref)
				}
				component[ref] = *cm
			}
		}
	}

	emitted := map[string]bool{}
	for _, col := range inner.Columns {
		aliased, ok := col.(ast.AliasedExpr)
		if !ok {
			base.Columns = append(base.Columns, col)
			continue
		}
		if m, isTotal := directTotal[aliased.Alias]; isTotal {
			base.Columns = append(base.Columns, splitIfAvg(m, aliased)...)
			emitted[aliased.Alias] = true
			continue
		}
		if _, isMetric := findMetric(rq, aliased.Alias); isMetric {
			// Metric columns are dropped from base and recomputed in the
			// outer query from their (possibly total) components.
			continue
		}
		base.Columns = append(base.Columns, col)
		emitted[aliased.Alias] = true
	}
	for _, name := range componentOrder {
		if emitted[name] {
			continue
		}
		cm := component[name]
		col := ast.Alias(cm.AggExpr, name)
		if cm.Total {
			base.Columns = append(base.Columns, splitIfAvg(cm, col)...)
		} else {
			base.Columns = append(base.Columns, col)
		}
		emitted[name] = true
	}

	// Any CTE the planner produced (CFL's composite_01) is hoisted next to
	// base, since a CTE's own body is rendered without nested CTEs.
	outer := &ast.Select{
		CTEs: append(append([]ast.CTE{}, inner.CTEs...), ast.CTE{Name: baseCTEName, Select: base}),
		From: ast.From{Table: d.QuoteIdentifier(baseCTEName)},
	}

	for _, dim := range rq.Dimensions {
		outer.Columns = append(outer.Columns, ast.Alias(ast.Col("", dim.Name), dim.Name))
	}

	for _, m := range rq.Measures {
		if !m.Direct {
			continue
		}
		if m.Total {
			expr, err := totalWindowExpr(m)
			if err != nil {
				return nil, err
			}
			outer.Columns = append(outer.Columns, ast.Alias(expr, m.Name))
		} else {
			outer.Columns = append(outer.Columns, ast.Alias(ast.Col("", m.Name), m.Name))
		}
	}

	for _, met := range rq.Metrics {
		lookup := func(name string) ast.Expr {
			cm, ok := rq.Measure(name)
			if !ok {
				return ast.NullLit()
			}
			if cm.Total {
				expr, err := totalWindowExpr(*cm)
				if err != nil {
					return ast.RawSQL{SQL: fmt.Sprintf("/* %s */", err.Error())}
				}
				return expr
			}
			return ast.Col("", name)
		}
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

func findMetric(rq *resolve.ResolvedQuery, alias string) (*resolve.ResolvedMetric, bool) {
	for i := range rq.Metrics {
		if rq.Metrics[i].Name == alias {
			return &rq.Metrics[i], true
		}
	}
	return nil, false
}

// splitIfAvg replaces an AVG total measure's single column with the
// SUM/COUNT helper pair base must carry so the outer query can compute an
// exact grand mean; every other aggregation passes through unchanged.
func splitIfAvg(m resolve.ResolvedMeasure, col ast.AliasedExpr) []ast.Expr {
	if m.Aggregation != obml.AggAvg {
		return []ast.Expr{col}
	}
	fc, ok := col.Expr.(ast.FunctionCall)
	if !ok || len(fc.Args) == 0 {
		return []ast.Expr{col}
	}
	arg := fc.Args[0]
	return []ast.Expr{
		ast.Alias(ast.FunctionCall{Name: "SUM", Args: []ast.Expr{arg}}, m.Name+"__sum"),
		ast.Alias(ast.FunctionCall{Name: "COUNT", Args: []ast.Expr{arg}}, m.Name+"__count"),
	}
}

// totalWindowExpr builds the empty-OVER() re-aggregation for a total
// measure, rejecting aggregations that cannot be meaningfully re-summed
// across groups.
func totalWindowExpr(m resolve.ResolvedMeasure) (ast.Expr, error) {
	fc, ok := m.AggExpr.(ast.FunctionCall)
	if !ok {
		return nil, fmt.Errorf("plan: measure %q has no aggregate expression to total", m.Name)
	}
	if nonReaggregatable[fc.Name] {
		return nil, fmt.Errorf("plan: measure %q (%s) cannot be re-aggregated as a total", m.Name, fc.Name)
	}
	switch m.Aggregation {
	case obml.AggAvg:
		sumRef := ast.WindowFunction{Func: ast.FunctionCall{Name: "SUM", Args: []ast.Expr{ast.Col("", m.Name+"__sum")}}}
		countRef := ast.WindowFunction{Func: ast.FunctionCall{Name: "SUM", Args: []ast.Expr{ast.Col("", m.Name+"__count")}}}
		return ast.BinaryOp{Op: "/", Left: sumRef, Right: countRef}, nil
	case obml.AggMin:
		return ast.WindowFunction{Func: ast.FunctionCall{Name: "MIN", Args: []ast.Expr{ast.Col("", m.Name)}}}, nil
	case obml.AggMax:
		return ast.WindowFunction{Func: ast.FunctionCall{Name: "MAX", Args: []ast.Expr{ast.Col("", m.Name)}}}, nil
	default: // sum, count, count_distinct
		return ast.WindowFunction{Func: ast.FunctionCall{Name: "SUM", Args: []ast.Expr{ast.Col("", m.Name)}}}, nil
	}
}
