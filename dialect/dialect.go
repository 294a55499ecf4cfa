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

// Package dialect renders the ast intermediate representation to SQL text
// for a specific target database. Every dialect shares the generic
// tree-walk in Base (CompileSelect/CompileExpr/CompileUnionAll); a
// concrete dialect only supplies the pieces that actually vary —
// identifier quoting, table-ref qualification, time-grain truncation,
// string-contains idiom, date arithmetic, multi-field COUNT, and the
// MEDIAN/MODE/LISTAGG ordered-set aggregates. This mirrors the original's
// abstract-base-class design (dialect/base.py) via Go's usual
// embed-plus-hook-interface substitute for virtual methods.
package dialect

import (
	"github.com/sembench/obmlc/ast"
	"github.com/sembench/obmlc/obml"
)

// Capabilities describes what a dialect's SQL surface supports, letting
// shared planning/rendering code branch on capability rather than name.
type Capabilities struct {
	SupportsCTE           bool
	SupportsQualify       bool
	SupportsArrays        bool
	SupportsWindowFilters bool
	SupportsILike         bool
	SupportsTimeTravel    bool
	SupportsSemiStructured bool
}

// Hooks is the set of rendering decisions that vary per dialect. A
// concrete dialect (Postgres, Snowflake, ...) implements Hooks and embeds
// *Base, wiring Base.self back to itself so Base's generic tree-walk
// calls the concrete dialect's overrides.
type Hooks interface {
	Name() string
	Capabilities() Capabilities
	QuoteIdentifier(name string) string
	FormatTableRef(obj *obml.DataObject) string
	RenderTimeGrain(grain obml.TimeGrain, columnSQL string) string
	RenderCast(exprSQL, targetType string) string
	RenderStringContains(colSQL, valueSQL string, not bool) string
	CurrentDateSQL() string
	DateAddSQL(baseSQL, unit string, amount int) string
	RenderMultiFieldCount(argSQLs []string, distinct bool) string
	RenderMedian(argSQL string) string
	RenderMode(argSQL string) string
	RenderListAgg(argSQL, delimiterSQL, withinGroupOrderSQL string) string
	RenderAnyValue(argSQL string) string
	UnionAllKeyword() string // "UNION ALL" everywhere except Snowflake's "UNION ALL BY NAME"
}

// Dialect is the full rendering contract the planner and engine use.
type Dialect interface {
	Hooks
	CompileSelect(*ast.Select) string
	CompileUnionAll(*ast.UnionAll) string
	CompileExpr(ast.Expr) string
}
