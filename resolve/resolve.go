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

// Package resolve turns an obml.Query, checked against a *obml.SemanticModel,
// into a ResolvedQuery: every dimension/measure/metric/filter/order-by
// reference is checked, measure aggregate expressions are built, metric
// formulas are parsed, and the join path connecting every referenced
// object to the query's base object is computed.
package resolve

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/spf13/cast"

	"github.com/sembench/obmlc/ast"
	"github.com/sembench/obmlc/graph"
	"github.com/sembench/obmlc/internal/suggest"
	"github.com/sembench/obmlc/obml"
)

// templateRefRe matches "{[Name]}" references inside measure expressions
// and metric formulas.
var templateRefRe = regexp.MustCompile(`\{\[([^\]]+)\]\}`)

// ResolvedMeasure is a measure whose aggregate expression has been fully
// built against its source object's physical columns.
type ResolvedMeasure struct {
	Name          string
	SourceObjects []string // distinct objects the measure's columns/expression touch
	AggExpr       ast.Expr // e.g. SUM("Orders"."AMOUNT")
	RawExpr       ast.Expr // unaggregated argument, used by the CFL planner's per-leg rows
	Aggregation   obml.AggregationType
	Total         bool
	AllowFanOut   bool
	// Direct reports whether this measure was named directly in the
	// query's select list, as opposed to being pulled in only as a
	// metric formula component. Only direct measures get their own
	// output column; component-only measures exist solely to feed
	// metric substitution and fanout/join-path analysis.
	Direct bool
}

// ResolvedMetric is a metric whose formula has been parsed into a
// MetricNode tree of measure references.
type ResolvedMetric struct {
	Name              string
	Formula           MetricNode
	ComponentMeasures []string
}

// ResolvedDimension is a dimension selected or filtered/ordered on.
type ResolvedDimension struct {
	Name   string
	Object string
	Column string
	Grain  obml.TimeGrain
}

// ResolvedFilter is a single WHERE predicate, already compiled to an
// ast.Expr via the full operator table.
type ResolvedFilter struct {
	Field string
	Expr  ast.Expr
}

// ResolvedOrderBy is a single ORDER BY term, resolved to the alias of a
// selected dimension/measure/metric (a 1-based select-list position is
// converted to the alias at that position).
type ResolvedOrderBy struct {
	Alias     string
	Direction obml.SortDirection
}

// ResolvedQuery is the pipeline's intermediate representation, consumed by
// package fanout and package plan.
type ResolvedQuery struct {
	Model        *obml.SemanticModel
	Dimensions   []ResolvedDimension
	Measures     []ResolvedMeasure
	Metrics      []ResolvedMetric
	BaseObject   string
	JoinPath     []graph.JoinStep
	WhereFilters []ast.Expr
	OrderBy      []ResolvedOrderBy
	Limit        int
	HasLimit     bool
	Offset       int
	IsCFL        bool
	UsePathNames map[string]string
}

// HasTotals reports whether any selected measure (directly, or as a
// metric component) is marked total=true.
func (q *ResolvedQuery) HasTotals() bool {
	for _, m := range q.Measures {
		if m.Total {
			return true
		}
	}
	return false
}

// FactTables returns the distinct set of objects any resolved measure
// draws from, in first-occurrence order.
func (q *ResolvedQuery) FactTables() []string {
	seen := make(map[string]bool)
	var out []string
	for _, m := range q.Measures {
		for _, o := range m.SourceObjects {
			if !seen[o] {
				seen[o] = true
				out = append(out, o)
			}
		}
	}
	return out
}

// Measure looks up a resolved measure by name.
func (q *ResolvedQuery) Measure(name string) (*ResolvedMeasure, bool) {
	for i := range q.Measures {
		if q.Measures[i].Name == name {
			return &q.Measures[i], true
		}
	}
	return nil, false
}

// QueryResolver implements the Query -> ResolvedQuery translation.
type QueryResolver struct{}

// NewQueryResolver constructs a QueryResolver.
func NewQueryResolver() *QueryResolver { return &QueryResolver{} }

// Resolve runs the full resolution algorithm described in spec.md §4.4.
// Every error encountered is accumulated; a non-nil error is always a
// batched *multierror.Error.
func (r *QueryResolver) Resolve(model *obml.SemanticModel, query *obml.Query) (*ResolvedQuery, error) {
	var errs *multierror.Error

	rq := &ResolvedQuery{Model: model, UsePathNames: map[string]string{}}

	selectedMeasureNames := make(map[string]bool)
	directMeasureNames := make(map[string]bool)
	var metricNames []string

	for _, sel := range query.Select {
		ref := obml.ParseDimensionRef(sel.Field)
		if dim, ok := model.Dimension(ref.Name); ok {
			column := dim.Column
			if obj, ok := model.Object(dim.Object); ok {
				column = physicalColumn(obj, dim.Column)
			}
			rq.Dimensions = append(rq.Dimensions, ResolvedDimension{
				Name: dim.Name, Object: dim.Object, Column: column, Grain: dim.DefaultGrain,
			})
			continue
		}
		if _, ok := model.Measure(sel.Field); ok {
			selectedMeasureNames[sel.Field] = true
			directMeasureNames[sel.Field] = true
			continue
		}
		if _, ok := model.Metric(sel.Field); ok {
			metricNames = append(metricNames, sel.Field)
			continue
		}
		errs = multierror.Append(errs, obml.NewError(
			obml.ErrUnknownDimension.New(sel.Field),
			"UNKNOWN_DIMENSION", "select",
			suggest.Suggestions(append(model.DimensionNames(), append(model.MeasureNames(), model.MetricNames()...)...), sel.Field, 3)))
	}

	for _, m := range metricNames {
		metric, _ := model.Metric(m)
		node, err := parseMetricFormula(metric.Formula)
		if err != nil {
			errs = multierror.Append(errs, newInvalidMetricExpression(m, err))
			continue
		}
		refs := MetricRefs(node)
		for _, ref := range refs {
			if _, ok := model.Measure(ref); !ok {
				errs = multierror.Append(errs, obml.NewError(
					obml.ErrUnknownMeasureRef.New(ref, m),
					"UNKNOWN_MEASURE", "metrics."+m+".formula",
					suggest.Suggestions(model.MeasureNames(), ref, 3)))
				continue
			}
			selectedMeasureNames[ref] = true
		}
		rq.Metrics = append(rq.Metrics, ResolvedMetric{Name: m, Formula: node, ComponentMeasures: refs})
	}

	globalCols := buildGlobalColumns(model)

	for name := range selectedMeasureNames {
		measure, _ := model.Measure(name)
		resolved, err := resolveMeasure(model, measure, globalCols)
		if err != nil {
			errs = multierror.Append(errs, err)
			continue
		}
		resolved.Direct = directMeasureNames[name]
		rq.Measures = append(rq.Measures, *resolved)
	}
	// deterministic ordering: sort measures by their position in the model
	rq.Measures = sortMeasuresByModelOrder(model, rq.Measures)

	rq.IsCFL = len(distinctSourceObjects(rq.Measures)) > 1

	baseObject, err := selectBaseObject(model, rq)
	if err != nil {
		errs = multierror.Append(errs, err)
	}
	rq.BaseObject = baseObject

	for _, up := range query.UsePathNames {
		rq.UsePathNames[up.FromObject+"->"+up.ToObject] = up.PathName
	}

	g := graph.Build(model)
	if baseObject != "" && !rq.IsCFL {
		targets := make(map[string]bool)
		var targetOrder []string
		addTarget := func(obj string) {
			if obj == baseObject || targets[obj] {
				return
			}
			targets[obj] = true
			targetOrder = append(targetOrder, obj)
		}
		for _, d := range rq.Dimensions {
			addTarget(d.Object)
		}
		for _, m := range rq.Measures {
			for _, o := range m.SourceObjects {
				addTarget(o)
			}
		}
		for _, obj := range targetOrder {
			path, ok := g.FindPath(baseObject, obj, rq.UsePathNames)
			if !ok {
				errs = multierror.Append(errs, obml.NewError(
					obml.ErrUnknownPathName.New("", baseObject, obj),
					"UNKNOWN_PATH_NAME", "", nil))
				continue
			}
			rq.JoinPath = appendSteps(rq.JoinPath, path)
		}
	}

	for _, f := range query.Filters {
		resolved, err := resolveFilter(model, g, rq, f)
		if err != nil {
			errs = multierror.Append(errs, err)
			continue
		}
		rq.WhereFilters = append(rq.WhereFilters, resolved.Expr)
	}

	orderBy, err := resolveOrderBy(query, rq)
	if err != nil {
		errs = multierror.Append(errs, err)
	} else {
		rq.OrderBy = orderBy
	}

	rq.Limit = query.Limit
	rq.HasLimit = query.Limit > 0
	rq.Offset = query.Offset

	if errs != nil {
		return nil, errs
	}
	return rq, nil
}

func sortMeasuresByModelOrder(model *obml.SemanticModel, measures []ResolvedMeasure) []ResolvedMeasure {
	order := make(map[string]int)
	for i, m := range model.Measures {
		order[m.Name] = i
	}
	out := append([]ResolvedMeasure{}, measures...)
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && order[out[j].Name] < order[out[j-1].Name]; j-- {
			out[j], out[j-1] = out[j-1], out[j]
		}
	}
	return out
}

func distinctSourceObjects(measures []ResolvedMeasure) []string {
	seen := make(map[string]bool)
	var out []string
	for _, m := range measures {
		for _, o := range m.SourceObjects {
			if !seen[o] {
				seen[o] = true
				out = append(out, o)
			}
		}
	}
	return out
}

// selectBaseObject implements the original's 3-tier fallback: prefer the
// measure source object with the most declared joins (ties broken by name
// order, since the sorted scan keeps whichever name it meets first at the
// current maximum); else any required object — a measure source object or
// a selected dimension's object — that itself declares joins; else the
// first required object by name; else the first data object in the model.
func selectBaseObject(model *obml.SemanticModel, rq *ResolvedQuery) (string, *obml.SemanticError) {
	measureSourceObjects := distinctSourceObjects(rq.Measures)

	required := make(map[string]bool)
	for _, o := range measureSourceObjects {
		required[o] = true
	}
	for _, d := range rq.Dimensions {
		required[d.Object] = true
	}

	if len(measureSourceObjects) > 0 {
		sorted := append([]string{}, measureSourceObjects...)
		sort.Strings(sorted)
		best := ""
		bestJoins := -1
		for _, name := range sorted {
			n := 0
			if obj, ok := model.Object(name); ok {
				n = len(obj.Joins)
			}
			if n > bestJoins {
				best = name
				bestJoins = n
			}
		}
		if best != "" {
			return best, nil
		}
	}

	sortedRequired := make([]string, 0, len(required))
	for o := range required {
		sortedRequired = append(sortedRequired, o)
	}
	sort.Strings(sortedRequired)

	for _, name := range sortedRequired {
		if obj, ok := model.Object(name); ok && len(obj.Joins) > 0 {
			return name, nil
		}
	}

	if len(sortedRequired) > 0 {
		return sortedRequired[0], nil
	}
	if len(model.Objects) > 0 {
		return model.Objects[0].Name, nil
	}
	return "", obml.NewError(
		obml.ErrUnknownDimension.New("<empty select list>"),
		"UNKNOWN_DIMENSION", "select", nil)
}

func appendSteps(existing []graph.JoinStep, add []graph.JoinStep) []graph.JoinStep {
	seen := make(map[string]bool)
	for _, s := range existing {
		seen[stepKey(s)] = true
	}
	for _, s := range add {
		k := stepKey(s)
		if !seen[k] {
			seen[k] = true
			existing = append(existing, s)
		}
	}
	return existing
}

func stepKey(s graph.JoinStep) string {
	return fmt.Sprintf("%s|%s|%v", s.From, s.To, s.Reversed)
}

func resolveMeasure(model *obml.SemanticModel, measure *obml.Measure, globalCols map[string]globalColumnRef) (*ResolvedMeasure, *obml.SemanticError) {
	obj, ok := model.Object(measure.Object)
	if !ok {
		return nil, obml.NewError(obml.ErrUnknownDataObject.New(measure.Object), "UNKNOWN_MEASURE", "measures."+measure.Name, nil)
	}

	aggFunc := aggFuncName(measure.Aggregation)
	distinct := measure.Distinct || measure.Aggregation == obml.AggCountDistinct

	var rawExpr ast.Expr
	sourceObjects := []string{obj.Name}

	if measure.Expression != "" {
		expanded, refObjs := expandExpression(globalCols, measure.Expression)
		rawExpr = ast.RawSQL{SQL: expanded}
		sourceObjects = refObjs
	} else if len(measure.Columns) == 0 {
		rawExpr = ast.NumberLit(1)
	} else if len(measure.Columns) == 1 {
		rawExpr = ast.Col(obj.Name, physicalColumn(obj, measure.Columns[0]))
	} else {
		args := make([]ast.Expr, len(measure.Columns))
		for i, c := range measure.Columns {
			args[i] = ast.Col(obj.Name, physicalColumn(obj, c))
		}
		rawExpr = ast.FunctionCall{Name: "__multi_field__", Args: args}
	}

	arg := rawExpr
	if measure.Filter != nil {
		cond := buildMeasureFilterCondition(obj, measure.Filter)
		arg = ast.CaseExpr{Whens: []ast.CaseWhen{{When: cond, Then: arg}}, Else: ast.NullLit()}
	}

	var call ast.FunctionCall
	if multi, ok := arg.(ast.FunctionCall); ok && multi.Name == "__multi_field__" {
		call = ast.FunctionCall{Name: aggFunc, Args: multi.Args, Distinct: distinct}
	} else {
		call = ast.FunctionCall{Name: aggFunc, Args: []ast.Expr{arg}, Distinct: distinct}
	}
	if measure.WithinGroup != nil {
		call.WithinGroupOrder = []ast.OrderByItem{{
			Expr:      ast.Col(obj.Name, physicalColumn(obj, measure.WithinGroup.Column)),
			Direction: measure.WithinGroup.Direction,
		}}
		if measure.Delimiter != "" {
			call.Args = append(call.Args, ast.StringLit(measure.Delimiter))
		}
	}

	return &ResolvedMeasure{
		Name:          measure.Name,
		SourceObjects: dedupStrings(sourceObjects),
		AggExpr:       call,
		RawExpr:       rawExpr,
		Aggregation:   measure.Aggregation,
		Total:         measure.Total,
		AllowFanOut:   measure.AllowFanOut,
	}, nil
}

func dedupStrings(in []string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, s := range in {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}

func physicalColumn(obj *obml.DataObject, logicalName string) string {
	if c, ok := obj.Column(logicalName); ok {
		return c.Column
	}
	return logicalName
}

// globalColumnRef is where a logical column label lives: which object owns
// it and its physical column name there.
type globalColumnRef struct {
	Object string
	Column string
}

// buildGlobalColumns indexes every column label across every data object in
// the model, relying on spec.md §3.2's global column-name uniqueness
// invariant: a column label appears on at most one object, so a bare
// "{[Column]}" template is unambiguous without an object qualifier.
func buildGlobalColumns(model *obml.SemanticModel) map[string]globalColumnRef {
	out := make(map[string]globalColumnRef)
	for _, obj := range model.Objects {
		for _, c := range obj.Columns {
			out[c.Name] = globalColumnRef{Object: obj.Name, Column: c.Column}
		}
	}
	return out
}

// expandExpression textually substitutes every "{[Column]}" template in an
// expression-based measure with its object-qualified physical column
// reference, using globalCols to find which object owns each label (column
// names are globally unique in OBML, so the template never carries an
// explicit qualifier itself). It returns the expanded SQL fragment and the
// distinct set of objects the expression touches; a reference that isn't
// in globalCols is left unexpanded (the reference resolver rejects such
// models before resolution ever runs).
func expandExpression(globalCols map[string]globalColumnRef, expr string) (string, []string) {
	var objects []string
	expanded := templateRefRe.ReplaceAllStringFunc(expr, func(match string) string {
		name := strings.TrimSuffix(strings.TrimPrefix(match, "{["), "]}")
		ref, ok := globalCols[name]
		if !ok {
			return match
		}
		objects = append(objects, ref.Object)
		return ref.Object + "." + ref.Column
	})
	return expanded, dedupStrings(objects)
}

func aggFuncName(agg obml.AggregationType) string {
	switch agg {
	case obml.AggCountDistinct:
		return "COUNT"
	case obml.AggListAgg:
		return "LISTAGG"
	case obml.AggAnyValue:
		return "ANY_VALUE"
	default:
		return strings.ToUpper(string(agg))
	}
}

func buildMeasureFilterCondition(obj *obml.DataObject, filter *obml.MeasureFilter) ast.Expr {
	col := ast.Col(obj.Name, physicalColumn(obj, filter.Column))
	values := make([]ast.Expr, len(filter.Values))
	for i, v := range filter.Values {
		values[i] = filterValueToLiteral(v)
	}
	return buildOperatorExpr(col, filter.Operator, values, nil)
}

func filterValueToLiteral(v obml.FilterValue) ast.Expr {
	switch {
	case v.String != nil:
		return ast.StringLit(*v.String)
	case v.Number != nil:
		return ast.NumberLit(*v.Number)
	case v.Bool != nil:
		return ast.BoolLit(*v.Bool)
	default:
		return ast.NullLit()
	}
}

// castFilterValue coerces a loosely-typed scalar read off a filter's raw
// value (e.g. decoded from YAML as interface{}) into a typed FilterValue,
// used by parser.YAMLLoader consumers constructing filters programmatically.
func castFilterValue(raw interface{}) obml.FilterValue {
	switch raw.(type) {
	case bool:
		b := cast.ToBool(raw)
		return obml.FilterValue{Bool: &b}
	case int, int64, float32, float64:
		n := cast.ToFloat64(raw)
		return obml.FilterValue{Number: &n}
	default:
		s := cast.ToString(raw)
		return obml.FilterValue{String: &s}
	}
}
