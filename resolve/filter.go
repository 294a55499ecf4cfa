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

package resolve

import (
	"strconv"

	"github.com/sembench/obmlc/ast"
	"github.com/sembench/obmlc/graph"
	"github.com/sembench/obmlc/internal/suggest"
	"github.com/sembench/obmlc/obml"
)

// resolveFilter looks up a query filter's field, checks that its object is
// reachable from the query's base object through the active join graph
// (given any use_path_names overrides), and compiles its operator/values
// into an ast.Expr per the full operator table in spec.md §7.
func resolveFilter(model *obml.SemanticModel, g *graph.JoinGraph, rq *ResolvedQuery, f obml.QueryFilter) (ResolvedFilter, *obml.SemanticError) {
	ref := obml.ParseDimensionRef(f.Field)

	dim, isDim := model.Dimension(ref.Name)
	measure, isMeasure := model.Measure(ref.Name)

	var fieldObject string
	var col ast.ColumnRef

	switch {
	case isDim:
		obj, _ := model.Object(dim.Object)
		fieldObject = dim.Object
		col = ast.Col(obj.Name, physicalColumn(obj, dim.Column))
	case isMeasure:
		obj, _ := model.Object(measure.Object)
		fieldObject = measure.Object
		if len(measure.Columns) > 0 {
			col = ast.Col(obj.Name, physicalColumn(obj, measure.Columns[0]))
		} else {
			col = ast.Col(obj.Name, obj.Code)
		}
	default:
		names := append(append([]string{}, model.DimensionNames()...), model.MeasureNames()...)
		return ResolvedFilter{}, obml.NewError(
			obml.ErrUnknownFilterField.New(f.Field),
			"UNKNOWN_FILTER_FIELD", "filters", suggest.Suggestions(names, f.Field, 3))
	}

	if rq.BaseObject != "" && fieldObject != rq.BaseObject {
		if _, reachable := g.FindPath(rq.BaseObject, fieldObject, rq.UsePathNames); !reachable {
			return ResolvedFilter{}, obml.NewError(
				obml.ErrUnreachableFilterField.New(f.Field, fieldObject, rq.BaseObject),
				"UNREACHABLE_FILTER_FIELD", "filters", nil)
		}
	}

	if f.Operator == obml.OpRelativeDateRange {
		expr, err := buildRelativeFilterExpr(col, f)
		if err != nil {
			return ResolvedFilter{}, err
		}
		return ResolvedFilter{Field: f.Field, Expr: expr}, nil
	}

	values := make([]ast.Expr, len(f.Values))
	for i, v := range f.Values {
		values[i] = filterValueToLiteral(v)
	}

	expr, err := buildOperatorExprChecked(col, f.Field, f.Operator, values)
	if err != nil {
		return ResolvedFilter{}, err
	}
	return ResolvedFilter{Field: f.Field, Expr: expr}, nil
}

// buildOperatorExprChecked wraps buildOperatorExpr with the
// INVALID_FILTER_OPERATOR diagnostic for unrecognized/ill-formed operators.
func buildOperatorExprChecked(col ast.ColumnRef, field string, op obml.FilterOperator, values []ast.Expr) (ast.Expr, *obml.SemanticError) {
	canon := op.Canonical()
	switch canon {
	case obml.OpEquals, obml.OpNotEquals, obml.OpGreaterThan, obml.OpGreaterThanOrEqual,
		obml.OpLessThan, obml.OpLessThanOrEqual, obml.OpIn, obml.OpNotIn,
		obml.OpContains, obml.OpNotContains, obml.OpIsNull, obml.OpIsNotNull:
		if requiresValues(canon) && len(values) == 0 {
			return nil, obml.NewError(
				obml.ErrInvalidFilterOperator.New(string(op), field),
				"INVALID_FILTER_OPERATOR", "filters", nil)
		}
		return buildOperatorExpr(col, op, values, nil), nil
	case obml.OpBetween:
		if len(values) != 2 {
			return nil, obml.NewError(
				obml.ErrInvalidFilterOperator.New(string(op), field),
				"INVALID_FILTER_OPERATOR", "filters", nil)
		}
		return buildOperatorExpr(col, op, values, nil), nil
	default:
		return nil, obml.NewError(
			obml.ErrInvalidFilterOperator.New(string(op), field),
			"INVALID_FILTER_OPERATOR", "filters", nil)
	}
}

func requiresValues(op obml.FilterOperator) bool {
	switch op {
	case obml.OpIsNull, obml.OpIsNotNull:
		return false
	default:
		return true
	}
}

// buildOperatorExpr implements the filter operator table from spec.md §7.
// CONTAINS/NOT_CONTAINS deliberately build an ast.StringContains marker
// instead of a hardcoded LIKE, so the dialect renderer can choose the
// idiomatic form per target (see SPEC_FULL.md §5, Gap 4).
func buildOperatorExpr(col ast.Expr, op obml.FilterOperator, values []ast.Expr, _ interface{}) ast.Expr {
	var v ast.Expr
	if len(values) > 0 {
		v = values[0]
	}
	switch op.Canonical() {
	case obml.OpEquals:
		return ast.BinaryOp{Op: "=", Left: col, Right: v}
	case obml.OpNotEquals:
		return ast.BinaryOp{Op: "<>", Left: col, Right: v}
	case obml.OpGreaterThan:
		return ast.BinaryOp{Op: ">", Left: col, Right: v}
	case obml.OpGreaterThanOrEqual:
		return ast.BinaryOp{Op: ">=", Left: col, Right: v}
	case obml.OpLessThan:
		return ast.BinaryOp{Op: "<", Left: col, Right: v}
	case obml.OpLessThanOrEqual:
		return ast.BinaryOp{Op: "<=", Left: col, Right: v}
	case obml.OpIn:
		return ast.InList{Expr: col, Values: values}
	case obml.OpNotIn:
		return ast.InList{Expr: col, Values: values, Not: true}
	case obml.OpContains:
		return ast.StringContains{Expr: col, Value: v}
	case obml.OpNotContains:
		return ast.StringContains{Expr: col, Value: v, Not: true}
	case obml.OpIsNull:
		return ast.IsNull{Expr: col}
	case obml.OpIsNotNull:
		return ast.IsNull{Expr: col, Not: true}
	case obml.OpBetween:
		return ast.Between{Expr: col, Low: values[0], High: values[1]}
	default:
		return ast.BinaryOp{Op: "=", Left: col, Right: v}
	}
}

// buildRelativeFilterExpr validates and compiles a relative-date-range
// filter into an ast.RelativeDateRange, which the dialect expands into a
// half-open "col >= start AND col < end" predicate at render time.
func buildRelativeFilterExpr(col ast.ColumnRef, f obml.QueryFilter) (ast.Expr, *obml.SemanticError) {
	if f.Relative == nil {
		return nil, obml.NewError(
			obml.ErrInvalidRelativeFilter.New("missing relative spec"),
			"INVALID_RELATIVE_FILTER", "filters", nil)
	}
	spec := f.Relative
	switch spec.Unit {
	case "day", "week", "month", "year":
	default:
		return nil, obml.NewError(
			obml.ErrInvalidRelativeFilter.New("unit must be one of day, week, month, year, got "+spec.Unit),
			"INVALID_RELATIVE_FILTER", "filters", nil)
	}
	if spec.Count <= 0 {
		return nil, obml.NewError(
			obml.ErrInvalidRelativeFilter.New("count must be positive, got "+strconv.Itoa(spec.Count)),
			"INVALID_RELATIVE_FILTER", "filters", nil)
	}
	switch spec.Direction {
	case "past", "future":
	default:
		return nil, obml.NewError(
			obml.ErrInvalidRelativeFilter.New("direction must be past or future, got "+spec.Direction),
			"INVALID_RELATIVE_FILTER", "filters", nil)
	}
	var base ast.Expr = ast.Func("CURRENT_DATE")
	if spec.Base != "" {
		base = ast.RawSQL{SQL: spec.Base}
	}
	return ast.RelativeDateRange{
		Column:         col,
		Unit:           spec.Unit,
		Count:          spec.Count,
		Direction:      spec.Direction,
		IncludeCurrent: spec.IncludeCurrent,
		Base:           base,
	}, nil
}
