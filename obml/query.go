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

package obml

import "strings"

// FilterOperator enumerates the comparison operators a QueryFilter can use.
// Both the canonical spelling and a shorter symbolic/simplified alias are
// accepted; Canonical folds an alias down to its canonical form.
type FilterOperator string

const (
	OpEquals             FilterOperator = "equals"
	OpEq                 FilterOperator = "eq"
	OpNotEquals          FilterOperator = "not_equals"
	OpNeq                FilterOperator = "neq"
	OpGreaterThan        FilterOperator = "greater_than"
	OpGt                 FilterOperator = "gt"
	OpGreaterThanOrEqual FilterOperator = "greater_than_or_equal"
	OpGte                FilterOperator = "gte"
	OpLessThan           FilterOperator = "less_than"
	OpLt                 FilterOperator = "lt"
	OpLessThanOrEqual    FilterOperator = "less_than_or_equal"
	OpLte                FilterOperator = "lte"
	OpIn                 FilterOperator = "in"
	OpNotIn              FilterOperator = "not_in"
	OpContains           FilterOperator = "contains"
	OpNotContains        FilterOperator = "not_contains"
	OpIsNull             FilterOperator = "is_null"
	OpIsNotNull          FilterOperator = "is_not_null"
	OpBetween            FilterOperator = "between"
	OpRelativeDateRange  FilterOperator = "relative_date_range"
)

var operatorAliases = map[FilterOperator]FilterOperator{
	OpEq:  OpEquals,
	OpNeq: OpNotEquals,
	OpGt:  OpGreaterThan,
	OpGte: OpGreaterThanOrEqual,
	OpLt:  OpLessThan,
	OpLte: OpLessThanOrEqual,
}

// Canonical folds a symbolic alias (eq, neq, gt, gte, lt, lte) down to its
// canonical spelling; operators without an alias are returned unchanged.
func (o FilterOperator) Canonical() FilterOperator {
	if canon, ok := operatorAliases[o]; ok {
		return canon
	}
	return o
}

// SortDirection is the ascending/descending direction of an ORDER BY field.
type SortDirection string

const (
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

// DimensionRef is a "dimension" or "object:dimension" reference as it
// appears in a query's select/order-by/filter lists. Parse splits on the
// LAST colon so object codes containing colons (unlikely but not
// forbidden) don't confuse the split.
type DimensionRef struct {
	Object string
	Name   string
}

// ParseDimensionRef splits "object:dimension" into its parts; a ref with no
// colon has an empty Object.
func ParseDimensionRef(raw string) DimensionRef {
	if idx := strings.LastIndex(raw, ":"); idx >= 0 {
		return DimensionRef{Object: raw[:idx], Name: raw[idx+1:]}
	}
	return DimensionRef{Name: raw}
}

// UsePathName overrides the join path used between two objects, selecting
// a specific secondary join by its declared path_name.
type UsePathName struct {
	FromObject string `yaml:"from_object" json:"from_object"`
	ToObject   string `yaml:"to_object" json:"to_object"`
	PathName   string `yaml:"path_name" json:"path_name"`
}

// RelativeDateSpec describes a rolling date window filter, e.g. "last 7 days".
type RelativeDateSpec struct {
	Unit          string `yaml:"unit" json:"unit"`
	Count         int    `yaml:"count" json:"count"`
	Direction     string `yaml:"direction" json:"direction"`
	IncludeCurrent bool  `yaml:"include_current,omitempty" json:"include_current,omitempty"`
	Base          string `yaml:"base,omitempty" json:"base,omitempty"`
}

// QueryFilter is a single predicate against a dimension or measure field.
type QueryFilter struct {
	Field    string           `yaml:"field" json:"field"`
	Operator FilterOperator   `yaml:"operator" json:"operator"`
	Values   []FilterValue    `yaml:"values,omitempty" json:"values,omitempty"`
	Relative *RelativeDateSpec `yaml:"relative,omitempty" json:"relative,omitempty"`
}

// QueryOrderBy sorts the result either by a named field or by a 1-based
// position in the select list.
type QueryOrderBy struct {
	Field     string        `yaml:"field,omitempty" json:"field,omitempty"`
	Position  int           `yaml:"position,omitempty" json:"position,omitempty"`
	Direction SortDirection `yaml:"direction,omitempty" json:"direction,omitempty"`
}

// QuerySelect is a single requested field, which may be a dimension,
// measure or metric name.
type QuerySelect struct {
	Field string `yaml:"field" json:"field"`
}

// QueryObject is the top-level analytical query submitted for compilation.
type QueryObject struct {
	Select        []QuerySelect  `yaml:"select" json:"select"`
	Filters       []QueryFilter  `yaml:"filters,omitempty" json:"filters,omitempty"`
	OrderBy       []QueryOrderBy `yaml:"order_by,omitempty" json:"order_by,omitempty"`
	Limit         int            `yaml:"limit,omitempty" json:"limit,omitempty"`
	Offset        int            `yaml:"offset,omitempty" json:"offset,omitempty"`
	UsePathNames  []UsePathName  `yaml:"use_path_names,omitempty" json:"use_path_names,omitempty"`
	IncludeTotals bool           `yaml:"include_totals,omitempty" json:"include_totals,omitempty"`
}

// Query is the alias used throughout the pipeline for QueryObject.
type Query = QueryObject
