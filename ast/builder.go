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

package ast

import "github.com/sembench/obmlc/obml"

// Col builds an unqualified or table-qualified column reference.
func Col(table, column string) ColumnRef { return ColumnRef{Table: table, Column: column} }

// Func builds a plain (non-distinct) function call.
func Func(name string, args ...Expr) FunctionCall { return FunctionCall{Name: name, Args: args} }

// Lit builds a numeric literal; callers needing a string/bool/null literal
// use StringLit/BoolLit/NullLit directly.
func Lit(n float64) Literal { return NumberLit(n) }

// Alias wraps an expression with an output alias.
func Alias(e Expr, alias string) AliasedExpr { return AliasedExpr{Expr: e, Alias: alias} }

// Eq builds an "a = b" BinaryOp.
func Eq(a, b Expr) BinaryOp { return BinaryOp{Op: "=", Left: a, Right: b} }

// And folds a list of expressions into a single left-nested AND chain. A
// single expression is returned unchanged; an empty list returns nil.
func And(exprs ...Expr) Expr {
	filtered := make([]Expr, 0, len(exprs))
	for _, e := range exprs {
		if e != nil {
			filtered = append(filtered, e)
		}
	}
	if len(filtered) == 0 {
		return nil
	}
	out := filtered[0]
	for _, e := range filtered[1:] {
		out = BinaryOp{Op: "AND", Left: out, Right: e}
	}
	return out
}

// Or folds a list of expressions into a single OR chain, mirroring And.
func Or(exprs ...Expr) Expr {
	filtered := make([]Expr, 0, len(exprs))
	for _, e := range exprs {
		if e != nil {
			filtered = append(filtered, e)
		}
	}
	if len(filtered) == 0 {
		return nil
	}
	out := filtered[0]
	for _, e := range filtered[1:] {
		out = BinaryOp{Op: "OR", Left: out, Right: e}
	}
	return out
}

// Builder assembles a Select fluently, in the manner of the teacher's
// expression-builder helpers (plan nodes built imperatively, field by
// field, rather than via a parser).
type Builder struct {
	sel *Select
}

// NewBuilder starts a new Select under construction.
func NewBuilder() *Builder {
	return &Builder{sel: &Select{}}
}

func (b *Builder) Select(cols ...Expr) *Builder {
	b.sel.Columns = append(b.sel.Columns, cols...)
	return b
}

func (b *Builder) From(table, alias string) *Builder {
	b.sel.From = From{Table: table, Alias: alias}
	return b
}

func (b *Builder) FromSubquery(sub *Select, alias string) *Builder {
	b.sel.From = From{Subquery: sub, Alias: alias}
	return b
}

func (b *Builder) Join(joinType obml.JoinType, table, alias string, on Expr) *Builder {
	b.sel.Joins = append(b.sel.Joins, Join{Type: joinType, Table: table, Alias: alias, On: on})
	return b
}

func (b *Builder) Where(exprs ...Expr) *Builder {
	b.sel.Where = And(append([]Expr{b.sel.Where}, exprs...)...)
	return b
}

func (b *Builder) GroupBy(exprs ...Expr) *Builder {
	b.sel.GroupBy = append(b.sel.GroupBy, exprs...)
	return b
}

func (b *Builder) Having(exprs ...Expr) *Builder {
	b.sel.Having = And(append([]Expr{b.sel.Having}, exprs...)...)
	return b
}

func (b *Builder) OrderBy(items ...OrderByItem) *Builder {
	b.sel.OrderBy = append(b.sel.OrderBy, items...)
	return b
}

func (b *Builder) Limit(n int) *Builder {
	b.sel.Limit = n
	b.sel.HasLimit = true
	return b
}

func (b *Builder) Offset(n int) *Builder {
	b.sel.Offset = n
	return b
}

func (b *Builder) WithCTE(name string, sel *Select) *Builder {
	b.sel.CTEs = append(b.sel.CTEs, CTE{Name: name, Select: sel})
	return b
}

// Build finalizes and returns the assembled Select.
func (b *Builder) Build() *Select {
	return b.sel
}
