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

// Package obml defines the semantic-model and query data types that every
// other package in this module operates over. Types here are plain value
// types with no behavior beyond small accessors; the compilation pipeline
// lives in parser, validate, graph, resolve, fanout, plan and dialect.
package obml

// DataType enumerates the scalar types a column or dimension can carry.
type DataType string

const (
	DataTypeString   DataType = "string"
	DataTypeInteger  DataType = "integer"
	DataTypeFloat    DataType = "float"
	DataTypeDecimal  DataType = "decimal"
	DataTypeBoolean  DataType = "boolean"
	DataTypeDate     DataType = "date"
	DataTypeDatetime DataType = "datetime"
	DataTypeTime     DataType = "time"
)

// AggregationType enumerates the aggregation functions a measure can use.
type AggregationType string

const (
	AggSum            AggregationType = "sum"
	AggAvg            AggregationType = "avg"
	AggMin            AggregationType = "min"
	AggMax            AggregationType = "max"
	AggCount          AggregationType = "count"
	AggCountDistinct  AggregationType = "count_distinct"
	AggMedian         AggregationType = "median"
	AggMode           AggregationType = "mode"
	AggListAgg        AggregationType = "listagg"
	AggAnyValue       AggregationType = "any_value"
)

// JoinType enumerates the SQL join kinds a DataObjectJoin can compile to.
type JoinType string

const (
	JoinInner JoinType = "inner"
	JoinLeft  JoinType = "left"
	JoinRight JoinType = "right"
	JoinFull  JoinType = "full"
)

// Cardinality describes the relationship multiplicity of a join, as
// declared from the perspective of the object that owns the join.
type Cardinality string

const (
	CardinalityOneToOne   Cardinality = "one_to_one"
	CardinalityOneToMany  Cardinality = "one_to_many"
	CardinalityManyToOne  Cardinality = "many_to_one"
	CardinalityManyToMany Cardinality = "many_to_many"
)

// TimeGrain enumerates the time truncation granularities a dimension column
// reference may request.
type TimeGrain string

const (
	TimeGrainYear    TimeGrain = "year"
	TimeGrainQuarter TimeGrain = "quarter"
	TimeGrainMonth   TimeGrain = "month"
	TimeGrainWeek    TimeGrain = "week"
	TimeGrainDay     TimeGrain = "day"
	TimeGrainHour    TimeGrain = "hour"
	TimeGrainMinute  TimeGrain = "minute"
)

// DataColumnRef points at a single physical column, optionally with a time
// grain applied when the column is used as a dimension.
type DataColumnRef struct {
	Column string    `yaml:"column" json:"column"`
	Grain  TimeGrain `yaml:"grain,omitempty" json:"grain,omitempty"`
}

// DataObjectColumn is a physical column exposed by a DataObject.
type DataObjectColumn struct {
	Name      string   `yaml:"name" json:"name"`
	Column    string   `yaml:"column" json:"column"`
	Type      DataType `yaml:"type" json:"type"`
	SQLType   string   `yaml:"sql_type,omitempty" json:"sql_type,omitempty"`
	Precision int      `yaml:"sql_precision,omitempty" json:"sql_precision,omitempty"`
	Scale     int      `yaml:"sql_scale,omitempty" json:"sql_scale,omitempty"`
	Comment   string   `yaml:"comment,omitempty" json:"comment,omitempty"`
}

// DataObjectJoin declares an edge from its owning DataObject to another.
//
// Secondary joins are excluded from cycle and multipath validation; they
// are reachable only via an explicit UsePathName override on a query, so
// they can never introduce model-level ambiguity.
type DataObjectJoin struct {
	Name          string      `yaml:"name" json:"name"`
	JoinTo        string      `yaml:"join_to" json:"join_to"`
	Type          JoinType    `yaml:"type" json:"type"`
	Cardinality   Cardinality `yaml:"cardinality" json:"cardinality"`
	ColumnsFrom   []string    `yaml:"columns_from" json:"columns_from"`
	ColumnsTo     []string    `yaml:"columns_to" json:"columns_to"`
	Secondary     bool        `yaml:"secondary,omitempty" json:"secondary,omitempty"`
	PathName      string      `yaml:"path_name,omitempty" json:"path_name,omitempty"`
}

// DataObject is a queryable table or view plus its join edges.
type DataObject struct {
	Name     string             `yaml:"name" json:"name"`
	Database string             `yaml:"database,omitempty" json:"database,omitempty"`
	Schema   string             `yaml:"schema,omitempty" json:"schema,omitempty"`
	Code     string             `yaml:"code" json:"code"`
	Columns  []DataObjectColumn `yaml:"columns" json:"columns"`
	Joins    []DataObjectJoin   `yaml:"joins,omitempty" json:"joins,omitempty"`
}

// QualifiedCode is the dot-joined database.schema.code identifier. Dialects
// decide for themselves how many parts to keep (see dialect.FormatTableRef);
// this is only a display/default fallback.
func (o *DataObject) QualifiedCode() string {
	parts := make([]string, 0, 3)
	if o.Database != "" {
		parts = append(parts, o.Database)
	}
	if o.Schema != "" {
		parts = append(parts, o.Schema)
	}
	parts = append(parts, o.Code)
	out := parts[0]
	for _, p := range parts[1:] {
		out += "." + p
	}
	return out
}

// Column looks up a physical column by its logical name.
func (o *DataObject) Column(name string) (DataObjectColumn, bool) {
	for _, c := range o.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return DataObjectColumn{}, false
}

// ColumnNames returns the logical names of every column, used for
// "did you mean" suggestions.
func (o *DataObject) ColumnNames() []string {
	names := make([]string, len(o.Columns))
	for i, c := range o.Columns {
		names[i] = c.Name
	}
	return names
}

// Dimension is a groupable, non-aggregated field sourced from one column.
type Dimension struct {
	Name        string    `yaml:"name" json:"name"`
	Object      string    `yaml:"object" json:"object"`
	Column      string    `yaml:"column" json:"column"`
	Type        DataType  `yaml:"type,omitempty" json:"type,omitempty"`
	DefaultGrain TimeGrain `yaml:"default_grain,omitempty" json:"default_grain,omitempty"`
	Description string    `yaml:"description,omitempty" json:"description,omitempty"`
}

// FilterValue is a typed scalar literal used inside a MeasureFilter.
type FilterValue struct {
	String *string  `yaml:"string,omitempty" json:"string,omitempty"`
	Number *float64 `yaml:"number,omitempty" json:"number,omitempty"`
	Bool   *bool    `yaml:"bool,omitempty" json:"bool,omitempty"`
}

// MeasureFilter restricts a measure's aggregate input to rows matching a
// simple column/operator/values predicate, compiled as a CASE-WHEN guard
// around the aggregate argument (see SPEC_FULL.md §5.3).
type MeasureFilter struct {
	Column   string        `yaml:"column" json:"column"`
	Operator FilterOperator `yaml:"operator" json:"operator"`
	Values   []FilterValue `yaml:"values,omitempty" json:"values,omitempty"`
}

// WithinGroup orders the rows fed to an ordered-set aggregate such as
// LISTAGG.
type WithinGroup struct {
	Column    string        `yaml:"column" json:"column"`
	Direction SortDirection `yaml:"direction,omitempty" json:"direction,omitempty"`
}

// Measure is an aggregated field, sourced either from one or more physical
// columns or from a free-form expression template referencing them.
type Measure struct {
	Name         string          `yaml:"name" json:"name"`
	Object       string          `yaml:"object" json:"object"`
	Columns      []string        `yaml:"columns,omitempty" json:"columns,omitempty"`
	Expression   string          `yaml:"expression,omitempty" json:"expression,omitempty"`
	Aggregation  AggregationType `yaml:"aggregation" json:"aggregation"`
	Distinct     bool            `yaml:"distinct,omitempty" json:"distinct,omitempty"`
	Total        bool            `yaml:"total,omitempty" json:"total,omitempty"`
	AllowFanOut  bool            `yaml:"allow_fan_out,omitempty" json:"allow_fan_out,omitempty"`
	Filter       *MeasureFilter  `yaml:"filter,omitempty" json:"filter,omitempty"`
	WithinGroup  *WithinGroup    `yaml:"within_group,omitempty" json:"within_group,omitempty"`
	Delimiter    string          `yaml:"delimiter,omitempty" json:"delimiter,omitempty"`
	Description  string          `yaml:"description,omitempty" json:"description,omitempty"`
}

// Metric is a named formula combining other measures with + - * / and
// parentheses, e.g. "{[Revenue]} / {[OrderCount]}".
type Metric struct {
	Name        string `yaml:"name" json:"name"`
	Formula     string `yaml:"formula" json:"formula"`
	Description string `yaml:"description,omitempty" json:"description,omitempty"`
}

// SemanticModel is the root OBML document: a named collection of data
// objects, dimensions, measures and metrics.
type SemanticModel struct {
	Name       string       `yaml:"name" json:"name"`
	Version    string       `yaml:"version,omitempty" json:"version,omitempty"`
	Objects    []DataObject `yaml:"objects" json:"objects"`
	Dimensions []Dimension  `yaml:"dimensions" json:"dimensions"`
	Measures   []Measure    `yaml:"measures" json:"measures"`
	Metrics    []Metric     `yaml:"metrics,omitempty" json:"metrics,omitempty"`
}

// Object looks up a data object by name.
func (m *SemanticModel) Object(name string) (*DataObject, bool) {
	for i := range m.Objects {
		if m.Objects[i].Name == name {
			return &m.Objects[i], true
		}
	}
	return nil, false
}

// Dimension looks up a dimension by name.
func (m *SemanticModel) Dimension(name string) (*Dimension, bool) {
	for i := range m.Dimensions {
		if m.Dimensions[i].Name == name {
			return &m.Dimensions[i], true
		}
	}
	return nil, false
}

// Measure looks up a measure by name.
func (m *SemanticModel) Measure(name string) (*Measure, bool) {
	for i := range m.Measures {
		if m.Measures[i].Name == name {
			return &m.Measures[i], true
		}
	}
	return nil, false
}

// Metric looks up a metric by name.
func (m *SemanticModel) Metric(name string) (*Metric, bool) {
	for i := range m.Metrics {
		if m.Metrics[i].Name == name {
			return &m.Metrics[i], true
		}
	}
	return nil, false
}

// DimensionNames, MeasureNames and MetricNames return the logical names of
// every field of that kind, used for "did you mean" suggestions.
func (m *SemanticModel) DimensionNames() []string {
	out := make([]string, len(m.Dimensions))
	for i, d := range m.Dimensions {
		out[i] = d.Name
	}
	return out
}

func (m *SemanticModel) MeasureNames() []string {
	out := make([]string, len(m.Measures))
	for i, x := range m.Measures {
		out[i] = x.Name
	}
	return out
}

func (m *SemanticModel) MetricNames() []string {
	out := make([]string, len(m.Metrics))
	for i, x := range m.Metrics {
		out[i] = x.Name
	}
	return out
}
