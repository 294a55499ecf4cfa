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
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sembench/obmlc/ast"
	"github.com/sembench/obmlc/dialect"
	"github.com/sembench/obmlc/obml"
	"github.com/sembench/obmlc/resolve"
)

func TestCFLPlanBuildsOneLegPerFact(t *testing.T) {
	require := require.New(t)
	model := fixtureModel()
	query := &obml.Query{
		Select: []obml.QuerySelect{{Field: "Customer Country"}, {Field: "Revenue"}, {Field: "Refunds"}},
	}

	rq, err := resolve.NewQueryResolver().Resolve(model, query)
	require.NoError(err)
	require.True(rq.IsCFL)

	sel, err := NewCFL().Plan(rq, dialect.NewPostgres())
	require.NoError(err)
	require.Len(sel.CTEs, 1)
	require.Equal(compositeCTEName, sel.CTEs[0].Name)
	require.NotNil(sel.CTEs[0].Union)
	require.Len(sel.CTEs[0].Union.Selects, 2) // Orders leg, Returns leg
	require.True(sel.CTEs[0].Union.ByName)

	// Outer query re-aggregates dimension + both measures.
	require.Len(sel.Columns, 3)
	require.Len(sel.GroupBy, 1)
}

func TestCFLLegCarriesOwnMeasureAndNullsOthers(t *testing.T) {
	require := require.New(t)
	model := fixtureModel()
	query := &obml.Query{
		Select: []obml.QuerySelect{{Field: "Customer Country"}, {Field: "Revenue"}, {Field: "Refunds"}},
	}

	rq, err := resolve.NewQueryResolver().Resolve(model, query)
	require.NoError(err)

	sel, err := NewCFL().Plan(rq, dialect.NewPostgres())
	require.NoError(err)

	legs := sel.CTEs[0].Union.Selects
	var ordersLeg, returnsLeg *ast.Select
	for _, leg := range legs {
		if leg.From.Alias == "Orders" {
			ordersLeg = leg
		}
		if leg.From.Alias == "Returns" {
			returnsLeg = leg
		}
	}
	require.NotNil(ordersLeg)
	require.NotNil(returnsLeg)

	// Each leg carries: dimension + Revenue value + Refunds value (null on
	// the Orders leg, real on the Returns leg).
	aliasesOf := func(s *ast.Select) map[string]bool {
		out := make(map[string]bool)
		for _, c := range s.Columns {
			if a, ok := c.(ast.AliasedExpr); ok {
				out[a.Alias] = true
			}
		}
		return out
	}
	ordersAliases := aliasesOf(ordersLeg)
	require.True(ordersAliases["Revenue"])
	require.True(ordersAliases["Refunds"])

	var refundsExprOnOrdersLeg ast.Expr
	for _, c := range ordersLeg.Columns {
		if a, ok := c.(ast.AliasedExpr); ok && a.Alias == "Refunds" {
			refundsExprOnOrdersLeg = a.Expr
		}
	}
	lit, ok := refundsExprOnOrdersLeg.(ast.Literal)
	require.True(ok)
	require.True(lit.Null)

	returnsAliases := aliasesOf(returnsLeg)
	require.True(returnsAliases["Refunds"])
	var refundsExprOnReturnsLeg ast.Expr
	for _, c := range returnsLeg.Columns {
		if a, ok := c.(ast.AliasedExpr); ok && a.Alias == "Refunds" {
			refundsExprOnReturnsLeg = a.Expr
		}
	}
	_, isLit := refundsExprOnReturnsLeg.(ast.Literal)
	require.False(isLit)
}

func TestCFLLegsInheritWhereFilters(t *testing.T) {
	require := require.New(t)
	model := fixtureModel()
	query := &obml.Query{
		Select: []obml.QuerySelect{{Field: "Customer Country"}, {Field: "Revenue"}, {Field: "Refunds"}},
		Filters: []obml.QueryFilter{{
			Field: "Customer Country", Operator: obml.OpEquals,
			Values: []obml.FilterValue{{String: strPtr("US")}},
		}},
	}

	rq, err := resolve.NewQueryResolver().Resolve(model, query)
	require.NoError(err)

	sel, err := NewCFL().Plan(rq, dialect.NewPostgres())
	require.NoError(err)
	for _, leg := range sel.CTEs[0].Union.Selects {
		require.NotNil(leg.Where)
	}
}

func TestCFLOuterOrderByStripsQualifiers(t *testing.T) {
	require := require.New(t)
	model := fixtureModel()
	query := &obml.Query{
		Select:  []obml.QuerySelect{{Field: "Customer Country"}, {Field: "Revenue"}, {Field: "Refunds"}},
		OrderBy: []obml.QueryOrderBy{{Position: 1, Direction: obml.SortAsc}},
	}

	rq, err := resolve.NewQueryResolver().Resolve(model, query)
	require.NoError(err)

	sel, err := NewCFL().Plan(rq, dialect.NewPostgres())
	require.NoError(err)
	require.Len(sel.OrderBy, 1)
	col, ok := sel.OrderBy[0].Expr.(ast.ColumnRef)
	require.True(ok)
	require.Empty(col.Table)
}

func TestCFLMultiFieldCountSplitsLegColumns(t *testing.T) {
	require := require.New(t)
	model := fixtureModel()
	// Add a multi-field COUNT measure on Orders to exercise the leg/outer
	// column-splitting path.
	model.Measures = append(model.Measures, obml.Measure{
		Name: "Distinct Order Pairs", Object: "Orders",
		Columns: []string{"Order ID", "Amount"}, Aggregation: obml.AggCount, Distinct: true,
	})

	query := &obml.Query{
		Select: []obml.QuerySelect{{Field: "Customer Country"}, {Field: "Distinct Order Pairs"}, {Field: "Refunds"}},
	}
	rq, err := resolve.NewQueryResolver().Resolve(model, query)
	require.NoError(err)
	require.True(rq.IsCFL)

	sel, err := NewCFL().Plan(rq, dialect.NewPostgres())
	require.NoError(err)

	var ordersLeg *ast.Select
	for _, leg := range sel.CTEs[0].Union.Selects {
		if leg.From.Alias == "Orders" {
			ordersLeg = leg
		}
	}
	require.NotNil(ordersLeg)
	found0, found1 := false, false
	for _, c := range ordersLeg.Columns {
		if a, ok := c.(ast.AliasedExpr); ok {
			if a.Alias == "Distinct Order Pairs__f0" {
				found0 = true
			}
			if a.Alias == "Distinct Order Pairs__f1" {
				found1 = true
			}
		}
	}
	require.True(found0)
	require.True(found1)
}
