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

package dialect

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sembench/obmlc/ast"
	"github.com/sembench/obmlc/obml"
)

func simpleSelect() *ast.Select {
	return &ast.Select{
		Columns: []ast.Expr{
			ast.AliasedExpr{Expr: ast.ColumnRef{Table: "o", Column: "region"}, Alias: "region"},
			ast.AliasedExpr{Expr: ast.FunctionCall{Name: "SUM", Args: []ast.Expr{ast.ColumnRef{Table: "o", Column: "amount"}}}, Alias: "revenue"},
		},
		From:    ast.From{Table: `"sales"."orders"`, Alias: "o"},
		GroupBy: []ast.Expr{ast.ColumnRef{Table: "o", Column: "region"}},
	}
}

func TestBaseCompileSelectBasic(t *testing.T) {
	b := NewBase(NewPostgres())
	sql := b.CompileSelect(simpleSelect())
	require.Contains(t, sql, "SELECT")
	require.Contains(t, sql, `"o"."region" AS "region"`)
	require.Contains(t, sql, "SUM(")
	require.Contains(t, sql, "GROUP BY")
}

func TestBaseCompileSelectWithCTE(t *testing.T) {
	inner := simpleSelect()
	outer := &ast.Select{
		CTEs:    []ast.CTE{{Name: "base", Select: inner}},
		Columns: []ast.Expr{ast.Star{}},
		From:    ast.From{Table: "base"},
	}
	sql := NewBase(NewPostgres()).CompileSelect(outer)
	require.Contains(t, sql, `WITH "base" AS (`)
	require.Contains(t, sql, "SELECT *")
}

func TestBaseCompileUnionAll(t *testing.T) {
	u := &ast.UnionAll{Selects: []*ast.Select{simpleSelect(), simpleSelect()}}
	plain := NewBase(NewPostgres()).CompileUnionAll(u)
	require.Contains(t, plain, " UNION ALL ")

	snow := NewBase(NewSnowflake())
	u.ByName = true
	byName := snow.CompileUnionAll(u)
	require.Contains(t, byName, "UNION ALL BY NAME")
}

func TestBaseCompileExprLiterals(t *testing.T) {
	b := NewBase(NewPostgres())
	require.Equal(t, "NULL", b.CompileExpr(ast.NullLit()))
	require.Equal(t, "'it''s'", b.CompileExpr(ast.StringLit("it's")))
	require.Equal(t, "TRUE", b.CompileExpr(ast.BoolLit(true)))
	require.Equal(t, "42", b.CompileExpr(ast.NumberLit(42)))
}

func TestBaseCompileExprCase(t *testing.T) {
	b := NewBase(NewPostgres())
	expr := ast.CaseExpr{
		Whens: []ast.CaseWhen{{When: ast.BoolLit(true), Then: ast.NumberLit(1)}},
		Else:  ast.NumberLit(0),
	}
	require.Equal(t, "CASE WHEN TRUE THEN 1 ELSE 0 END", b.CompileExpr(expr))
}

func TestBaseCompileExprStringContainsDispatchesToHook(t *testing.T) {
	sc := ast.StringContains{Expr: ast.ColumnRef{Column: "name"}, Value: ast.StringLit("acme"), Not: false}

	pg := NewBase(NewPostgres()).CompileExpr(sc)
	require.Contains(t, pg, "ILIKE")

	sf := NewBase(NewSnowflake()).CompileExpr(sc)
	require.Contains(t, sf, "CONTAINS(")

	dr := NewBase(NewDremio()).CompileExpr(sc)
	require.Contains(t, dr, "LIKE")
	require.NotContains(t, dr, "CONTAINS(")
}

func TestBaseCompileMultiFieldCount(t *testing.T) {
	call := ast.FunctionCall{Name: "COUNT", Args: []ast.Expr{
		ast.ColumnRef{Column: "a"}, ast.ColumnRef{Column: "b"},
	}}

	pg := NewBase(NewPostgres()).CompileExpr(call)
	require.Contains(t, pg, "CAST(")
	require.Contains(t, pg, "|")

	sf := NewBase(NewSnowflake()).CompileExpr(call)
	require.Equal(t, `COUNT("a", "b")`, sf)
}

func TestBaseCompileOrderedSetAggregates(t *testing.T) {
	median := ast.FunctionCall{Name: "MEDIAN", Args: []ast.Expr{ast.ColumnRef{Column: "amount"}}}
	require.Contains(t, NewBase(NewPostgres()).CompileExpr(median), "PERCENTILE_CONT")
	require.Equal(t, `MEDIAN("amount")`, NewBase(NewSnowflake()).CompileExpr(median))
	require.Equal(t, "median(`amount`)", NewBase(NewClickHouse()).CompileExpr(median))

	listagg := ast.FunctionCall{
		Name: "LISTAGG",
		Args: []ast.Expr{ast.ColumnRef{Column: "name"}, ast.StringLit(",")},
		WithinGroupOrder: []ast.OrderByItem{
			{Expr: ast.ColumnRef{Column: "name"}, Direction: obml.SortAsc},
		},
	}
	pgListAgg := NewBase(NewPostgres()).CompileExpr(listagg)
	require.Contains(t, pgListAgg, "STRING_AGG(")
	require.Contains(t, pgListAgg, "ORDER BY")

	chListAgg := NewBase(NewClickHouse()).CompileExpr(listagg)
	require.Contains(t, chListAgg, "arraySort")
}

func TestCompileRelativeDateRangeFuturePastHalfOpen(t *testing.T) {
	col := ast.ColumnRef{Table: "o", Column: "order_date"}
	base := ast.RawSQL{SQL: "CURRENT_DATE"}

	future := ast.RelativeDateRange{Column: col, Unit: "day", Count: 7, Direction: "future", IncludeCurrent: true, Base: base}
	sql := NewBase(NewPostgres()).CompileExpr(future)
	require.Contains(t, sql, ">= CURRENT_DATE")
	require.Contains(t, sql, "INTERVAL '7 day'")

	futureExcl := ast.RelativeDateRange{Column: col, Unit: "day", Count: 7, Direction: "future", IncludeCurrent: false, Base: base}
	sqlExcl := NewBase(NewPostgres()).CompileExpr(futureExcl)
	require.Contains(t, sqlExcl, "INTERVAL '1 day'")

	past := ast.RelativeDateRange{Column: col, Unit: "month", Count: 3, Direction: "past", IncludeCurrent: false, Base: base}
	pastSQL := NewBase(NewPostgres()).CompileExpr(past)
	require.Contains(t, pastSQL, "< CURRENT_DATE")
	require.Contains(t, pastSQL, "INTERVAL '3 month'")

	pastIncl := ast.RelativeDateRange{Column: col, Unit: "month", Count: 3, Direction: "past", IncludeCurrent: true, Base: base}
	pastInclSQL := NewBase(NewPostgres()).CompileExpr(pastIncl)
	require.Contains(t, pastInclSQL, "INTERVAL '1 day'")
}

func TestFormatTableRefPerDialect(t *testing.T) {
	obj := &obml.DataObject{Database: "db", Schema: "public", Code: "orders"}

	require.Equal(t, `"public"."orders"`, NewPostgres().FormatTableRef(obj))
	require.Equal(t, `"db"."public"."orders"`, NewSnowflake().FormatTableRef(obj))
	require.Equal(t, "`public`.`orders`", NewClickHouse().FormatTableRef(obj))
	require.Equal(t, "`db`.`public`.`orders`", NewDatabricks().FormatTableRef(obj))
	require.Equal(t, `"db"."public"."orders"`, NewDremio().FormatTableRef(obj))
}
