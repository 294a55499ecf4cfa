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

// Package ast defines an immutable relational-algebra intermediate
// representation. Every node is a plain value type; dialect renderers walk
// the tree and emit SQL text (see package dialect). Nodes are never
// mutated after construction — transformations (e.g. plan.Total's
// metric-component substitution) build new nodes rather than editing in
// place.
package ast

import "github.com/sembench/obmlc/obml"

// Expr is any scalar expression node.
type Expr interface{ isExpr() }

// Literal is a typed scalar constant.
type Literal struct {
	String *string
	Number *float64
	Bool   *bool
	Null   bool
}

func (Literal) isExpr() {}

// NumberLit builds a numeric Literal.
func NumberLit(n float64) Literal { return Literal{Number: &n} }

// StringLit builds a string Literal.
func StringLit(s string) Literal { return Literal{String: &s} }

// BoolLit builds a boolean Literal.
func BoolLit(b bool) Literal { return Literal{Bool: &b} }

// NullLit is the SQL NULL literal.
func NullLit() Literal { return Literal{Null: true} }

// Star is the unqualified "*" select item.
type Star struct{}

func (Star) isExpr() {}

// ColumnRef references a column, optionally qualified by a table/object
// alias.
type ColumnRef struct {
	Table  string
	Column string
}

func (ColumnRef) isExpr() {}

// AliasedExpr wraps an expression with an output alias, e.g. "expr AS alias".
type AliasedExpr struct {
	Expr  Expr
	Alias string
}

func (AliasedExpr) isExpr() {}

// FunctionCall is a scalar or aggregate function application.
type FunctionCall struct {
	Name     string
	Args     []Expr
	Distinct bool
	// WithinGroupOrder orders the rows fed to an ordered-set aggregate
	// such as LISTAGG (rendered as WITHIN GROUP (ORDER BY ...) where the
	// dialect supports it).
	WithinGroupOrder []OrderByItem
}

func (FunctionCall) isExpr() {}

// BinaryOp is a binary operator expression, e.g. "a + b" or "a = b".
type BinaryOp struct {
	Op    string
	Left  Expr
	Right Expr
}

func (BinaryOp) isExpr() {}

// UnaryOp is a prefix unary operator expression, e.g. "NOT a".
type UnaryOp struct {
	Op      string
	Operand Expr
}

func (UnaryOp) isExpr() {}

// IsNull renders "expr IS NULL" or, when Not is set, "expr IS NOT NULL".
type IsNull struct {
	Expr Expr
	Not  bool
}

func (IsNull) isExpr() {}

// InList renders "expr IN (v0, v1, ...)" or, when Not is set, "expr NOT IN (...)".
type InList struct {
	Expr   Expr
	Values []Expr
	Not    bool
}

func (InList) isExpr() {}

// Between renders "expr BETWEEN low AND high" or, when Not is set, "expr NOT BETWEEN ...".
type Between struct {
	Expr Expr
	Low  Expr
	High Expr
	Not  bool
}

func (Between) isExpr() {}

// CaseWhen is one WHEN/THEN branch of a CaseExpr.
type CaseWhen struct {
	When Expr
	Then Expr
}

// CaseExpr is a searched CASE expression.
type CaseExpr struct {
	Whens []CaseWhen
	Else  Expr
}

func (CaseExpr) isExpr() {}

// Cast renders "CAST(expr AS type)".
type Cast struct {
	Expr Expr
	Type string
}

func (Cast) isExpr() {}

// SubqueryExpr embeds a nested Select as a scalar/table expression.
type SubqueryExpr struct {
	Select *Select
}

func (SubqueryExpr) isExpr() {}

// RawSQL passes a pre-rendered SQL fragment through verbatim. Used for
// expression-based measures/metrics whose "{[Column]}" templates have
// already been textually expanded into qualified column references.
type RawSQL struct {
	SQL string
}

func (RawSQL) isExpr() {}

// StringContains is a marker node for CONTAINS/NOT_CONTAINS filters. It is
// deliberately NOT rendered by the shared expression compiler — every
// dialect must supply its own RenderStringContains, since the SQL idiom
// varies (LIKE wildcarding, ILIKE, a native CONTAINS() function, ...).
type StringContains struct {
	Expr  Expr
	Value Expr
	Not   bool
}

func (StringContains) isExpr() {}

// RelativeDateRange is a rolling date-window predicate; the dialect
// renderer (dialect.Base) expands it into a half-open "col >= start AND col
// < end" condition using that dialect's date-arithmetic functions.
type RelativeDateRange struct {
	Column         ColumnRef
	Unit           string
	Count          int
	Direction      string
	IncludeCurrent bool
	Base           Expr
}

func (RelativeDateRange) isExpr() {}

// WindowFunction renders "func(args) OVER (PARTITION BY ... ORDER BY ...)".
// An empty PartitionBy/OrderBy list renders a bare "OVER ()", used by the
// total wrapper for grand totals.
type WindowFunction struct {
	Func        FunctionCall
	PartitionBy []Expr
	OrderBy     []OrderByItem
}

func (WindowFunction) isExpr() {}

// OrderByItem is one ORDER BY term.
type OrderByItem struct {
	Expr      Expr
	Direction obml.SortDirection
}

// From is the source of a Select: either a single table reference or a
// nested subquery, both addressable by alias.
type From struct {
	Table    string // pre-qualified table reference, already rendered by the dialect
	Alias    string
	Subquery *Select
}

// Join is one JOIN clause attached to a Select's FROM.
type Join struct {
	Type  obml.JoinType
	Table string
	Alias string
	On    Expr
}

// CTE is a single named common table expression. Exactly one of Select or
// Union is set — a composite-fact plan's composite_01 CTE is a UnionAll,
// every other CTE (e.g. the total wrapper's "base") is a plain Select.
type CTE struct {
	Name   string
	Select *Select
	Union  *UnionAll
}

// Select is a single SELECT statement (not a UNION).
type Select struct {
	CTEs     []CTE
	Columns  []Expr // typically AliasedExpr
	From     From
	Joins    []Join
	Where    Expr
	GroupBy  []Expr
	Having   Expr
	OrderBy  []OrderByItem
	Limit    int
	HasLimit bool
	Offset   int
}

// UnionAll stacks two or more Selects with UNION ALL semantics.
type UnionAll struct {
	Selects []*Select
	// ByName requests Snowflake's "UNION ALL BY NAME" variant, which
	// matches columns by alias instead of position.
	ByName bool
}
