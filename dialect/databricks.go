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

// Databricks renders Spark SQL as used on the Databricks platform:
// backtick-quoted identifiers, 3-part `catalog`.`schema`.`code` table
// references (Databricks' Unity Catalog adds a catalog level above
// schema), native CONTAINS, date_trunc/date_add date arithmetic, and
// Spark's APPROX_PERCENTILE for MEDIAN (Spark has no exact-median
// aggregate).
type Databricks struct {
	*Base
}

func NewDatabricks() *Databricks {
	d := &Databricks{}
	d.Base = NewBase(d)
	return d
}

func (d *Databricks) Name() string { return "databricks" }

func (d *Databricks) Capabilities() Capabilities {
	return Capabilities{SupportsCTE: true, SupportsTimeTravel: true, SupportsSemiStructured: true}
}

func (d *Databricks) QuoteIdentifier(name string) string {
	return "`" + strings.ReplaceAll(name, "`", "``") + "`"
}

func (d *Databricks) FormatTableRef(obj *obml.DataObject) string {
	parts := []string{}
	if obj.Database != "" {
		parts = append(parts, d.QuoteIdentifier(obj.Database))
	}
	if obj.Schema != "" {
		parts = append(parts, d.QuoteIdentifier(obj.Schema))
	}
	parts = append(parts, d.QuoteIdentifier(obj.Code))
	return strings.Join(parts, ".")
}

func (d *Databricks) RenderTimeGrain(grain obml.TimeGrain, columnSQL string) string {
	if grain == "" {
		return columnSQL
	}
	return fmt.Sprintf("date_trunc('%s', %s)", strings.ToUpper(string(grain)), columnSQL)
}

func (d *Databricks) RenderCast(exprSQL, targetType string) string {
	return fmt.Sprintf("CAST(%s AS %s)", exprSQL, targetType)
}

func (d *Databricks) RenderStringContains(colSQL, valueSQL string, not bool) string {
	expr := fmt.Sprintf("CONTAINS(%s, %s)", colSQL, valueSQL)
	if not {
		return "NOT " + expr
	}
	return expr
}

func (d *Databricks) CurrentDateSQL() string { return "current_date()" }

func (d *Databricks) DateAddSQL(baseSQL, unit string, amount int) string {
	if unit == "day" {
		return fmt.Sprintf("date_add(%s, %d)", baseSQL, amount)
	}
	return fmt.Sprintf("date_add(%s, %d * interval 1 %s)", baseSQL, amount, unit)
}

func (d *Databricks) RenderMultiFieldCount(argSQLs []string, distinct bool) string {
	return renderDefaultMultiFieldCount(argSQLs, distinct)
}

func (d *Databricks) RenderMedian(argSQL string) string {
	return fmt.Sprintf("APPROX_PERCENTILE(%s, 0.5)", argSQL)
}

func (d *Databricks) RenderMode(argSQL string) string {
	return fmt.Sprintf("MODE(%s)", argSQL)
}

func (d *Databricks) RenderListAgg(argSQL, delimiterSQL, withinGroupOrderSQL string) string {
	if withinGroupOrderSQL != "" {
		return fmt.Sprintf("LISTAGG(%s, %s) WITHIN GROUP (%s)", argSQL, delimiterSQL, withinGroupOrderSQL)
	}
	return fmt.Sprintf("LISTAGG(%s, %s)", argSQL, delimiterSQL)
}

func (d *Databricks) RenderAnyValue(argSQL string) string {
	return fmt.Sprintf("ANY_VALUE(%s)", argSQL)
}

func (d *Databricks) UnionAllKeyword() string { return "UNION ALL" }
