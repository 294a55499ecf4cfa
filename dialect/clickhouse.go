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
	"strings"

	"github.com/sembench/obmlc/obml"
)

var clickhouseGrainFunctions = map[obml.TimeGrain]string{
	obml.TimeGrainYear:    "toStartOfYear",
	obml.TimeGrainQuarter: "toStartOfQuarter",
	obml.TimeGrainMonth:   "toStartOfMonth",
	obml.TimeGrainWeek:    "toStartOfWeek",
	obml.TimeGrainDay:     "toDate",
	obml.TimeGrainHour:    "toStartOfHour",
	obml.TimeGrainMinute:  "toStartOfMinute",
}

var clickhouseDateAddUnit = map[string]string{
	"day": "addDays", "week": "addWeeks", "month": "addMonths", "year": "addYears",
}

// ClickHouse renders ClickHouse SQL: backtick-quoted identifiers, 2-part
// `schema`.`code` table references (ClickHouse has no separate database
// qualifier distinct from schema in this model), ILIKE for CONTAINS,
// toStartOfX()-family grain functions, addX()/today() date arithmetic,
// and groupArray+arraySort+arrayStringConcat for LISTAGG (ClickHouse has
// no native ordered-set LISTAGG), matching dialect/clickhouse.py.
type ClickHouse struct {
	*Base
}

func NewClickHouse() *ClickHouse {
	c := &ClickHouse{}
	c.Base = NewBase(c)
	return c
}

func (c *ClickHouse) Name() string { return "clickhouse" }

func (c *ClickHouse) Capabilities() Capabilities {
	return Capabilities{SupportsCTE: true, SupportsArrays: true, SupportsILike: true}
}

func (c *ClickHouse) QuoteIdentifier(name string) string {
	return "`" + strings.ReplaceAll(name, "`", "``") + "`"
}

func (c *ClickHouse) FormatTableRef(obj *obml.DataObject) string {
	if obj.Schema != "" {
		return c.QuoteIdentifier(obj.Schema) + "." + c.QuoteIdentifier(obj.Code)
	}
	return c.QuoteIdentifier(obj.Code)
}

func (c *ClickHouse) RenderTimeGrain(grain obml.TimeGrain, columnSQL string) string {
	fn, ok := clickhouseGrainFunctions[grain]
	if !ok {
		return columnSQL
	}
	return fmt.Sprintf("%s(%s)", fn, columnSQL)
}

func (c *ClickHouse) RenderCast(exprSQL, targetType string) string {
	return fmt.Sprintf("CAST(%s AS %s)", exprSQL, mapAbstractType(targetType))
}

func (c *ClickHouse) RenderStringContains(colSQL, valueSQL string, not bool) string {
	expr := fmt.Sprintf("%s ILIKE concat('%%', %s, '%%')", colSQL, valueSQL)
	if not {
		return "NOT (" + expr + ")"
	}
	return expr
}

func (c *ClickHouse) CurrentDateSQL() string { return "today()" }

func (c *ClickHouse) DateAddSQL(baseSQL, unit string, amount int) string {
	fn, ok := clickhouseDateAddUnit[unit]
	if !ok {
		fn = "addDays"
	}
	if amount < 0 {
		return fmt.Sprintf("%s(%s, %d)", strings.Replace(fn, "add", "subtract", 1), baseSQL, -amount)
	}
	return fmt.Sprintf("%s(%s, %d)", fn, baseSQL, amount)
}

func (c *ClickHouse) RenderMultiFieldCount(argSQLs []string, distinct bool) string {
	return renderDefaultMultiFieldCount(argSQLs, distinct)
}

func (c *ClickHouse) RenderMedian(argSQL string) string {
	return fmt.Sprintf("median(%s)", argSQL)
}

// RenderMode compiles via ClickHouse's array-based top-value idiom, since
// ClickHouse has no plain MODE() aggregate.
func (c *ClickHouse) RenderMode(argSQL string) string {
	return fmt.Sprintf("arrayElement(topK(1)(%s), 1)", argSQL)
}

// RenderListAgg compiles to groupArray + arraySort + arrayStringConcat
// when an ordering is requested (ClickHouse restricts LISTAGG-style
// aggregates to array transforms, not an ordered-set aggregate syntax).
func (c *ClickHouse) RenderListAgg(argSQL, delimiterSQL, withinGroupOrderSQL string) string {
	if withinGroupOrderSQL == "" {
		return fmt.Sprintf("arrayStringConcat(groupArray(%s), %s)", argSQL, delimiterSQL)
	}
	return fmt.Sprintf("arrayStringConcat(arraySort(groupArray(%s)), %s)", argSQL, delimiterSQL)
}

func (c *ClickHouse) RenderAnyValue(argSQL string) string {
	return fmt.Sprintf("any(%s)", argSQL)
}

func (c *ClickHouse) UnionAllKeyword() string { return "UNION ALL" }

func mapAbstractType(t string) string {
	switch strings.ToUpper(t) {
	case "VARCHAR", "STRING", "TEXT":
		return "String"
	case "INTEGER", "INT":
		return "Int64"
	case "FLOAT", "DOUBLE":
		return "Float64"
	default:
		return t
	}
}
