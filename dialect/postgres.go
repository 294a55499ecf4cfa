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

// Postgres renders ANSI-flavored SQL for PostgreSQL: double-quoted
// identifiers, 2-part "schema"."code" table references (no database
// component — Postgres addresses databases at the connection level, not
// in a query), native ILIKE for CONTAINS, and date_trunc/+interval for
// grains and date arithmetic.
type Postgres struct {
	*Base
}

// NewPostgres constructs the Postgres dialect.
func NewPostgres() *Postgres {
	p := &Postgres{}
	p.Base = NewBase(p)
	return p
}

func (p *Postgres) Name() string { return "postgres" }

func (p *Postgres) Capabilities() Capabilities {
	return Capabilities{SupportsCTE: true, SupportsWindowFilters: true, SupportsILike: true}
}

func (p *Postgres) QuoteIdentifier(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func (p *Postgres) FormatTableRef(obj *obml.DataObject) string {
	if obj.Schema != "" {
		return p.QuoteIdentifier(obj.Schema) + "." + p.QuoteIdentifier(obj.Code)
	}
	return p.QuoteIdentifier(obj.Code)
}

func (p *Postgres) RenderTimeGrain(grain obml.TimeGrain, columnSQL string) string {
	if grain == "" {
		return columnSQL
	}
	return fmt.Sprintf("date_trunc('%s', %s)", grain, columnSQL)
}

func (p *Postgres) RenderCast(exprSQL, targetType string) string {
	return fmt.Sprintf("CAST(%s AS %s)", exprSQL, targetType)
}

func (p *Postgres) RenderStringContains(colSQL, valueSQL string, not bool) string {
	expr := fmt.Sprintf("%s ILIKE '%%' || %s || '%%'", colSQL, valueSQL)
	if not {
		return "NOT (" + expr + ")"
	}
	return expr
}

func (p *Postgres) CurrentDateSQL() string { return "CURRENT_DATE" }

func (p *Postgres) DateAddSQL(baseSQL, unit string, amount int) string {
	if amount < 0 {
		return fmt.Sprintf("(%s - INTERVAL '%d %s')", baseSQL, -amount, unit)
	}
	return fmt.Sprintf("(%s + INTERVAL '%d %s')", baseSQL, amount, unit)
}

func (p *Postgres) RenderMultiFieldCount(argSQLs []string, distinct bool) string {
	return renderDefaultMultiFieldCount(argSQLs, distinct)
}

func (p *Postgres) RenderMedian(argSQL string) string {
	return fmt.Sprintf("PERCENTILE_CONT(0.5) WITHIN GROUP (ORDER BY %s)", argSQL)
}

func (p *Postgres) RenderMode(argSQL string) string {
	return fmt.Sprintf("MODE() WITHIN GROUP (ORDER BY %s)", argSQL)
}

func (p *Postgres) RenderListAgg(argSQL, delimiterSQL, withinGroupOrderSQL string) string {
	if withinGroupOrderSQL != "" {
		return fmt.Sprintf("STRING_AGG(%s, %s ORDER BY %s)", argSQL, delimiterSQL, strings.TrimPrefix(withinGroupOrderSQL, "ORDER BY "))
	}
	return fmt.Sprintf("STRING_AGG(%s, %s)", argSQL, delimiterSQL)
}

func (p *Postgres) RenderAnyValue(argSQL string) string {
	return fmt.Sprintf("MIN(%s)", argSQL)
}

func (p *Postgres) UnionAllKeyword() string { return "UNION ALL" }

// renderDefaultMultiFieldCount is the portable multi-field COUNT idiom
// shared by every dialect except Snowflake (which has a native multi-arg
// form): cast each field to text and concatenate with a separator
// unlikely to appear in real data, then COUNT the concatenation.
func renderDefaultMultiFieldCount(argSQLs []string, distinct bool) string {
	parts := make([]string, len(argSQLs))
	for i, a := range argSQLs {
		parts[i] = fmt.Sprintf("CAST(%s AS VARCHAR)", a)
	}
	concat := strings.Join(parts, " || '|' || ")
	if distinct {
		return fmt.Sprintf("COUNT(DISTINCT %s)", concat)
	}
	return fmt.Sprintf("COUNT(%s)", concat)
}
