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
	"github.com/sembench/obmlc/resolve"
)

// Star builds a single Select against a single-fact ResolvedQuery, per
// spec.md §4.6.
type Star struct{}

// NewStar constructs a Star planner.
func NewStar() *Star { return &Star{} }

// Plan compiles rq into a single ast.Select. rq must not be a CFL query
// (len(distinct source objects) > 1); callers route those to CFL instead.
func (p *Star) Plan(rq *resolve.ResolvedQuery, d dialect.Dialect) (*ast.Select, error) {
	model := rq.Model
	baseObj, ok := model.Object(rq.BaseObject)
	if !ok {
		return nil, fmt.Errorf("plan: unknown base object %q", rq.BaseObject)
	}

	sel := &ast.Select{From: ast.From{Table: d.FormatTableRef(baseObj), Alias: baseObj.Name}}

	joins, err := buildJoins(model, d, rq.JoinPath)
	if err != nil {
		return nil, err
	}
	sel.Joins = joins

	for _, dim := range rq.Dimensions {
		sel.Columns = append(sel.Columns, dimensionSelectColumn(d, dim))
		sel.GroupBy = append(sel.GroupBy, dimensionGroupByExpr(d, dim))
	}

	for _, m := range rq.Measures {
		if !m.Direct {
			continue
		}
		sel.Columns = append(sel.Columns, ast.Alias(m.AggExpr, m.Name))
	}

	lookup := func(name string) ast.Expr {
		if cm, ok := rq.Measure(name); ok {
			return cm.AggExpr
		}
		return ast.NullLit()
	}
	for _, met := range rq.Metrics {
		sel.Columns = append(sel.Columns, ast.Alias(substituteMetric(met.Formula, lookup), met.Name))
	}

	sel.Where = ast.And(rq.WhereFilters...)
	sel.OrderBy = buildOrderBy(rq.OrderBy)
	sel.Limit = rq.Limit
	sel.HasLimit = rq.HasLimit
	sel.Offset = rq.Offset

	return sel, nil
}
