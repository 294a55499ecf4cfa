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

// Snowflake renders Snowflake SQL: double-quoted identifiers, 3-part
// "database"."schema"."code" table references, a native CONTAINS()
// function, DATEADD/CURRENT_DATE() date arithmetic, a native multi-arg
// COUNT, and UNION ALL BY NAME for CFL unions (matching columns by alias
// instead of position, which tolerates the per-leg NULL-padding columns
// appearing in a different order across legs).
type Snowflake struct {
	*Base
}

func NewSnowflake() *Snowflake {
	s := &Snowflake{}
	s.Base = NewBase(s)
	return s
}

func (s *Snowflake) Name() string { return "snowflake" }

func (s *Snowflake) Capabilities() Capabilities {
	return Capabilities{SupportsCTE: true, SupportsQualify: true, SupportsWindowFilters: true}
}

func (s *Snowflake) QuoteIdentifier(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func (s *Snowflake) FormatTableRef(obj *obml.DataObject) string {
	parts := []string{}
	if obj.Database != "" {
		parts = append(parts, s.QuoteIdentifier(obj.Database))
	}
	if obj.Schema != "" {
		parts = append(parts, s.QuoteIdentifier(obj.Schema))
	}
	parts = append(parts, s.QuoteIdentifier(obj.Code))
	return strings.Join(parts, ".")
}

func (s *Snowflake) RenderTimeGrain(grain obml.TimeGrain, columnSQL string) string {
	if grain == "" {
		return columnSQL
	}
	return fmt.Sprintf("DATE_TRUNC('%s', %s)", strings.ToUpper(string(grain)), columnSQL)
}

func (s *Snowflake) RenderCast(exprSQL, targetType string) string {
	return fmt.Sprintf("CAST(%s AS %s)", exprSQL, targetType)
}

func (s *Snowflake) RenderStringContains(colSQL, valueSQL string, not bool) string {
	expr := fmt.Sprintf("CONTAINS(%s, %s)", colSQL, valueSQL)
	if not {
		return "NOT " + expr
	}
	return expr
}

func (s *Snowflake) CurrentDateSQL() string { return "CURRENT_DATE()" }

func (s *Snowflake) DateAddSQL(baseSQL, unit string, amount int) string {
	return fmt.Sprintf("DATEADD(%s, %d, %s)", unit, amount, baseSQL)
}

func (s *Snowflake) RenderMultiFieldCount(argSQLs []string, distinct bool) string {
	joined := strings.Join(argSQLs, ", ")
	if distinct {
		return fmt.Sprintf("COUNT(DISTINCT %s)", joined)
	}
	return fmt.Sprintf("COUNT(%s)", joined)
}

func (s *Snowflake) RenderMedian(argSQL string) string {
	return fmt.Sprintf("MEDIAN(%s)", argSQL)
}

func (s *Snowflake) RenderMode(argSQL string) string {
	return fmt.Sprintf("MODE(%s)", argSQL)
}

func (s *Snowflake) RenderListAgg(argSQL, delimiterSQL, withinGroupOrderSQL string) string {
	if withinGroupOrderSQL != "" {
		return fmt.Sprintf("LISTAGG(%s, %s) WITHIN GROUP (%s)", argSQL, delimiterSQL, withinGroupOrderSQL)
	}
	return fmt.Sprintf("LISTAGG(%s, %s)", argSQL, delimiterSQL)
}

func (s *Snowflake) RenderAnyValue(argSQL string) string {
	return fmt.Sprintf("ANY_VALUE(%s)", argSQL)
}

func (s *Snowflake) UnionAllKeyword() string { return "UNION ALL BY NAME" }
