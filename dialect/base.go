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
	"fmt"
	"strconv"
	"strings"

	"github.com/sembench/obmlc/ast"
	"github.com/sembench/obmlc/obml"
)

// Base implements the shared tree-walk every dialect needs; it defers to
// the embedding dialect's Hooks for the handful of decisions that vary.
// Concrete dialects construct a Base with self set to their own value, so
// Base's generic code calls back into the concrete dialect's overrides —
// the usual Go substitute for a virtual base class.
type Base struct {
	self Hooks
}

// NewBase wires a Base's self-reference; concrete dialects call this from
// their constructor with themselves as the argument.
func NewBase(self Hooks) *Base { return &Base{self: self} }

// CompileSelect renders a full SELECT statement, including its CTEs.
func (b *Base) CompileSelect(s *ast.Select) string {
	var sb strings.Builder
	if len(s.CTEs) > 0 {
		sb.WriteString("WITH ")
		for i, cte := range s.CTEs {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(b.self.QuoteIdentifier(cte.Name))
			sb.WriteString(" AS (")
			if cte.Union != nil {
				sb.WriteString(b.CompileUnionAll(cte.Union))
			} else {
				sb.WriteString(b.compileSelectBody(cte.Select))
			}
			sb.WriteString(")")
		}
		sb.WriteString(" ")
	}
	sb.WriteString(b.compileSelectBody(s))
	return sb.String()
}

func (b *Base) compileSelectBody(s *ast.Select) string {
	var sb strings.Builder
	sb.WriteString("SELECT ")
	for i, c := range s.Columns {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(b.CompileExpr(c))
	}
	sb.WriteString(" FROM ")
	sb.WriteString(b.compileFrom(s.From))

	for _, j := range s.Joins {
		sb.WriteString(" ")
		sb.WriteString(b.compileJoin(j))
	}

	if s.Where != nil {
		sb.WriteString(" WHERE ")
		sb.WriteString(b.CompileExpr(s.Where))
	}
	if len(s.GroupBy) > 0 {
		sb.WriteString(" GROUP BY ")
		for i, g := range s.GroupBy {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(b.CompileExpr(g))
		}
	}
	if s.Having != nil {
		sb.WriteString(" HAVING ")
		sb.WriteString(b.CompileExpr(s.Having))
	}
	if len(s.OrderBy) > 0 {
		sb.WriteString(" ")
		sb.WriteString(b.compileOrderBy(s.OrderBy))
	}
	if s.HasLimit {
		sb.WriteString(" LIMIT ")
		sb.WriteString(strconv.Itoa(s.Limit))
	}
	if s.Offset > 0 {
		sb.WriteString(" OFFSET ")
		sb.WriteString(strconv.Itoa(s.Offset))
	}
	return sb.String()
}

func (b *Base) compileFrom(f ast.From) string {
	if f.Subquery != nil {
		return "(" + b.CompileSelect(f.Subquery) + ") AS " + b.self.QuoteIdentifier(f.Alias)
	}
	if f.Alias != "" {
		return f.Table + " AS " + b.self.QuoteIdentifier(f.Alias)
	}
	return f.Table
}

func (b *Base) compileJoin(j ast.Join) string {
	kw := joinKeyword(j.Type)
	return fmt.Sprintf("%s %s AS %s ON %s", kw, j.Table, b.self.QuoteIdentifier(j.Alias), b.CompileExpr(j.On))
}

func joinKeyword(t obml.JoinType) string {
	switch t {
	case obml.JoinLeft:
		return "LEFT JOIN"
	case obml.JoinRight:
		return "RIGHT JOIN"
	case obml.JoinFull:
		return "FULL JOIN"
	default:
		return "INNER JOIN"
	}
}

func (b *Base) compileOrderBy(items []ast.OrderByItem) string {
	var sb strings.Builder
	sb.WriteString("ORDER BY ")
	for i, it := range items {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(b.CompileExpr(it.Expr))
		if it.Direction == obml.SortDesc {
			sb.WriteString(" DESC")
		} else {
			sb.WriteString(" ASC")
		}
	}
	return sb.String()
}

// CompileUnionAll renders a stack of Selects joined by UNION ALL (or, on
// Snowflake, UNION ALL BY NAME).
func (b *Base) CompileUnionAll(u *ast.UnionAll) string {
	parts := make([]string, len(u.Selects))
	for i, s := range u.Selects {
		parts[i] = b.compileSelectBody(s)
	}
	keyword := "UNION ALL"
	if u.ByName {
		keyword = b.self.UnionAllKeyword()
	}
	return strings.Join(parts, " "+keyword+" ")
}

// CompileExpr renders any Expr node to SQL text.
func (b *Base) CompileExpr(e ast.Expr) string {
	switch t := e.(type) {
	case ast.Literal:
		return compileLiteral(t)
	case ast.Star:
		return "*"
	case ast.ColumnRef:
		if t.Table == "" {
			return b.self.QuoteIdentifier(t.Column)
		}
		return b.self.QuoteIdentifier(t.Table) + "." + b.self.QuoteIdentifier(t.Column)
	case ast.AliasedExpr:
		return b.CompileExpr(t.Expr) + " AS " + b.self.QuoteIdentifier(t.Alias)
	case ast.FunctionCall:
		return b.compileFunctionCall(t)
	case ast.BinaryOp:
		return "(" + b.CompileExpr(t.Left) + " " + t.Op + " " + b.CompileExpr(t.Right) + ")"
	case ast.UnaryOp:
		return t.Op + " " + b.CompileExpr(t.Operand)
	case ast.IsNull:
		if t.Not {
			return b.CompileExpr(t.Expr) + " IS NOT NULL"
		}
		return b.CompileExpr(t.Expr) + " IS NULL"
	case ast.InList:
		values := make([]string, len(t.Values))
		for i, v := range t.Values {
			values[i] = b.CompileExpr(v)
		}
		kw := "IN"
		if t.Not {
			kw = "NOT IN"
		}
		return b.CompileExpr(t.Expr) + " " + kw + " (" + strings.Join(values, ", ") + ")"
	case ast.Between:
		kw := "BETWEEN"
		if t.Not {
			kw = "NOT BETWEEN"
		}
		return b.CompileExpr(t.Expr) + " " + kw + " " + b.CompileExpr(t.Low) + " AND " + b.CompileExpr(t.High)
	case ast.CaseExpr:
		return b.compileCase(t)
	case ast.Cast:
		return b.self.RenderCast(b.CompileExpr(t.Expr), t.Type)
	case ast.SubqueryExpr:
		return "(" + b.CompileSelect(t.Select) + ")"
	case ast.RawSQL:
		return t.SQL
	case ast.StringContains:
		return b.self.RenderStringContains(b.CompileExpr(t.Expr), b.CompileExpr(t.Value), t.Not)
	case ast.RelativeDateRange:
		return b.compileRelativeDateRange(t)
	case ast.WindowFunction:
		return b.compileWindowFunction(t)
	default:
		return fmt.Sprintf("/* unsupported expr %T */", e)
	}
}

func compileLiteral(l ast.Literal) string {
	switch {
	case l.Null:
		return "NULL"
	case l.String != nil:
		return "'" + strings.ReplaceAll(*l.String, "'", "''") + "'"
	case l.Number != nil:
		return strconv.FormatFloat(*l.Number, 'g', -1, 64)
	case l.Bool != nil:
		if *l.Bool {
			return "TRUE"
		}
		return "FALSE"
	default:
		return "NULL"
	}
}

func (b *Base) compileCase(c ast.CaseExpr) string {
	var sb strings.Builder
	sb.WriteString("CASE")
	for _, w := range c.Whens {
		sb.WriteString(" WHEN ")
		sb.WriteString(b.CompileExpr(w.When))
		sb.WriteString(" THEN ")
		sb.WriteString(b.CompileExpr(w.Then))
	}
	if c.Else != nil {
		sb.WriteString(" ELSE ")
		sb.WriteString(b.CompileExpr(c.Else))
	}
	sb.WriteString(" END")
	return sb.String()
}

// compileFunctionCall handles the aggregation functions with dialect-
// specific rendering (MEDIAN, MODE, LISTAGG, ANY_VALUE, multi-field
// COUNT) and falls through to a generic "NAME(args)" rendering otherwise.
func (b *Base) compileFunctionCall(f ast.FunctionCall) string {
	name := strings.ToUpper(f.Name)

	if name == "COUNT" && len(f.Args) > 1 {
		args := make([]string, len(f.Args))
		for i, a := range f.Args {
			args[i] = b.CompileExpr(a)
		}
		return b.self.RenderMultiFieldCount(args, f.Distinct)
	}

	argSQL := ""
	if len(f.Args) > 0 {
		argSQL = b.CompileExpr(f.Args[0])
	}

	switch name {
	case "MEDIAN":
		return b.self.RenderMedian(argSQL)
	case "MODE":
		return b.self.RenderMode(argSQL)
	case "ANY_VALUE":
		return b.self.RenderAnyValue(argSQL)
	case "LISTAGG":
		delim := "','"
		if len(f.Args) > 1 {
			delim = b.CompileExpr(f.Args[1])
		}
		within := ""
		if len(f.WithinGroupOrder) > 0 {
			within = b.compileOrderBy(f.WithinGroupOrder)
		}
		return b.self.RenderListAgg(argSQL, delim, within)
	}

	var sb strings.Builder
	sb.WriteString(name)
	sb.WriteString("(")
	if f.Distinct {
		sb.WriteString("DISTINCT ")
	}
	args := make([]string, len(f.Args))
	for i, a := range f.Args {
		args[i] = b.CompileExpr(a)
	}
	sb.WriteString(strings.Join(args, ", "))
	sb.WriteString(")")
	return sb.String()
}

func (b *Base) compileWindowFunction(w ast.WindowFunction) string {
	var sb strings.Builder
	sb.WriteString(b.compileFunctionCall(w.Func))
	sb.WriteString(" OVER (")
	parts := make([]string, 0, 2)
	if len(w.PartitionBy) > 0 {
		cols := make([]string, len(w.PartitionBy))
		for i, p := range w.PartitionBy {
			cols[i] = b.CompileExpr(p)
		}
		parts = append(parts, "PARTITION BY "+strings.Join(cols, ", "))
	}
	if len(w.OrderBy) > 0 {
		parts = append(parts, b.compileOrderBy(w.OrderBy))
	}
	sb.WriteString(strings.Join(parts, " "))
	sb.WriteString(")")
	return sb.String()
}

// compileRelativeDateRange expands a rolling date window into a half-open
// "col >= start AND col < end" predicate using the dialect's date
// arithmetic, per spec.md §4.9/§9's exact interval math:
//
//	future: start = base (or base+1day if excluding current), end = start + count*unit
//	past:   end = base+1day (or base if excluding current), start = end - count*unit
func (b *Base) compileRelativeDateRange(r ast.RelativeDateRange) string {
	baseSQL := b.CompileExpr(r.Base)
	col := b.CompileExpr(r.Column)

	var startSQL, endSQL string
	if r.Direction == "future" {
		if r.IncludeCurrent {
			startSQL = baseSQL
		} else {
			startSQL = b.self.DateAddSQL(baseSQL, "day", 1)
		}
		endSQL = b.self.DateAddSQL(startSQL, r.Unit, r.Count)
	} else {
		if r.IncludeCurrent {
			endSQL = b.self.DateAddSQL(baseSQL, "day", 1)
		} else {
			endSQL = baseSQL
		}
		startSQL = b.self.DateAddSQL(endSQL, r.Unit, -r.Count)
	}

	return fmt.Sprintf("(%s >= %s AND %s < %s)", col, startSQL, col, endSQL)
}
