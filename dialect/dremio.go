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

// Dremio renders Dremio's SQL dialect: double-quoted identifiers, 3-part
// "source"."schema"."code" table references (Dremio's top path segment
// names the data source rather than a traditional catalog/database), a
// LIKE-based CONTAINS (Dremio has no native CONTAINS function), and
// DATE_TRUNC/DATE_ADD date handling.
type Dremio struct {
	*Base
}

func NewDremio() *Dremio {
	d := &Dremio{}
	d.Base = NewBase(d)
	return d
}

func (d *Dremio) Name() string { return "dremio" }

func (d *Dremio) Capabilities() Capabilities {
	return Capabilities{SupportsCTE: true, SupportsSemiStructured: true}
}

func (d *Dremio) QuoteIdentifier(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func (d *Dremio) FormatTableRef(obj *obml.DataObject) string {
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

func (d *Dremio) RenderTimeGrain(grain obml.TimeGrain, columnSQL string) string {
	if grain == "" {
		return columnSQL
	}
	return fmt.Sprintf("DATE_TRUNC('%s', %s)", strings.ToUpper(string(grain)), columnSQL)
}

func (d *Dremio) RenderCast(exprSQL, targetType string) string {
	return fmt.Sprintf("CAST(%s AS %s)", exprSQL, targetType)
}

func (d *Dremio) RenderStringContains(colSQL, valueSQL string, not bool) string {
	expr := fmt.Sprintf("%s LIKE '%%' || %s || '%%'", colSQL, valueSQL)
	if not {
		return "NOT (" + expr + ")"
	}
	return expr
}

func (d *Dremio) CurrentDateSQL() string { return "CURRENT_DATE" }

func (d *Dremio) DateAddSQL(baseSQL, unit string, amount int) string {
	return fmt.Sprintf("DATE_ADD(%s, %d, '%s')", baseSQL, amount, unit)
}

func (d *Dremio) RenderMultiFieldCount(argSQLs []string, distinct bool) string {
	return renderDefaultMultiFieldCount(argSQLs, distinct)
}

func (d *Dremio) RenderMedian(argSQL string) string {
	return fmt.Sprintf("MEDIAN(%s)", argSQL)
}

func (d *Dremio) RenderMode(argSQL string) string {
	return fmt.Sprintf("MODE(%s)", argSQL)
}

func (d *Dremio) RenderListAgg(argSQL, delimiterSQL, withinGroupOrderSQL string) string {
	if withinGroupOrderSQL != "" {
		return fmt.Sprintf("LISTAGG(%s, %s) WITHIN GROUP (%s)", argSQL, delimiterSQL, withinGroupOrderSQL)
	}
	return fmt.Sprintf("LISTAGG(%s, %s)", argSQL, delimiterSQL)
}

func (d *Dremio) RenderAnyValue(argSQL string) string {
	return fmt.Sprintf("ANY_VALUE(%s)", argSQL)
}

func (d *Dremio) UnionAllKeyword() string { return "UNION ALL" }
