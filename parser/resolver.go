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

package parser

import (
	"regexp"

	"github.com/hashicorp/go-multierror"

	"github.com/sembench/obmlc/internal/suggest"
	"github.com/sembench/obmlc/obml"
)

// templateRefRe matches "{[Name]}" references inside measure/metric
// expressions and formulas. A matched name is always a bare column or
// measure label, never object-qualified: column names are globally unique
// across a model's data objects (model-load validation rejects duplicates),
// so an expression never needs to say which object a column belongs to.
var templateRefRe = regexp.MustCompile(`\{\[([^\]]+)\]\}`)

// columnExistsAnywhere reports whether col is a column label on any data
// object in the model.
func columnExistsAnywhere(model *obml.SemanticModel, col string) bool {
	for _, o := range model.Objects {
		if _, ok := o.Column(col); ok {
			return true
		}
	}
	return false
}

// ReferenceResolver validates that every dimension/measure/metric/join in
// a loaded model points at real objects and columns, attaching "did you
// mean" suggestions to any unresolved name.
type ReferenceResolver struct{}

// NewReferenceResolver constructs a ReferenceResolver.
func NewReferenceResolver() *ReferenceResolver { return &ReferenceResolver{} }

// Resolve checks every reference in the model and returns a single
// batched error (via hashicorp/go-multierror) if any fail; a nil error
// means every reference in the model is sound.
func (r *ReferenceResolver) Resolve(model *obml.SemanticModel) error {
	var result *multierror.Error

	objectNames := make([]string, len(model.Objects))
	for i, o := range model.Objects {
		objectNames[i] = o.Name
	}

	allColumns := make([]string, 0)
	for _, o := range model.Objects {
		for _, c := range o.Columns {
			allColumns = append(allColumns, c.Name)
		}
	}

	for i := range model.Objects {
		obj := &model.Objects[i]
		for _, j := range obj.Joins {
			if _, ok := model.Object(j.JoinTo); !ok {
				result = multierror.Append(result, obml.NewError(
					obml.ErrUnknownDataObject.New(j.JoinTo),
					"UNKNOWN_DATA_OBJECT",
					obj.Name+".joins."+j.Name+".join_to",
					suggest.Suggestions(objectNames, j.JoinTo, 3)))
				continue
			}
			target, _ := model.Object(j.JoinTo)
			for _, c := range j.ColumnsTo {
				if _, ok := target.Column(c); !ok {
					result = multierror.Append(result, obml.NewError(
						obml.ErrUnknownColumn.New(c, target.Name),
						"UNKNOWN_COLUMN",
						obj.Name+".joins."+j.Name+".columns_to",
						suggest.Suggestions(target.ColumnNames(), c, 3)))
				}
			}
			for _, c := range j.ColumnsFrom {
				if _, ok := obj.Column(c); !ok {
					result = multierror.Append(result, obml.NewError(
						obml.ErrUnknownColumn.New(c, obj.Name),
						"UNKNOWN_COLUMN",
						obj.Name+".joins."+j.Name+".columns_from",
						suggest.Suggestions(obj.ColumnNames(), c, 3)))
				}
			}
		}
	}

	for _, d := range model.Dimensions {
		obj, ok := model.Object(d.Object)
		if !ok {
			result = multierror.Append(result, obml.NewError(
				obml.ErrUnknownDataObject.New(d.Object),
				"UNKNOWN_DATA_OBJECT", "dimensions."+d.Name+".object",
				suggest.Suggestions(objectNames, d.Object, 3)))
			continue
		}
		if _, ok := obj.Column(d.Column); !ok {
			result = multierror.Append(result, obml.NewError(
				obml.ErrUnknownColumn.New(d.Column, obj.Name),
				"UNKNOWN_COLUMN", "dimensions."+d.Name+".column",
				suggest.Suggestions(obj.ColumnNames(), d.Column, 3)))
		}
	}

	for _, m := range model.Measures {
		obj, ok := model.Object(m.Object)
		if !ok {
			result = multierror.Append(result, obml.NewError(
				obml.ErrUnknownDataObject.New(m.Object),
				"UNKNOWN_DATA_OBJECT", "measures."+m.Name+".object",
				suggest.Suggestions(objectNames, m.Object, 3)))
			continue
		}
		if m.Expression != "" {
			for _, ref := range templateRefRe.FindAllStringSubmatch(m.Expression, -1) {
				col := ref[1]
				if !columnExistsAnywhere(model, col) {
					result = multierror.Append(result, obml.NewError(
						obml.ErrUnknownColumnInExpr.New(col, m.Name),
						"UNKNOWN_COLUMN_IN_EXPRESSION", "measures."+m.Name+".expression",
						suggest.Suggestions(allColumns, col, 3)))
				}
			}
		} else {
			for _, c := range m.Columns {
				if _, ok := obj.Column(c); !ok {
					result = multierror.Append(result, obml.NewError(
						obml.ErrUnknownColumn.New(c, obj.Name),
						"UNKNOWN_COLUMN", "measures."+m.Name+".columns",
						suggest.Suggestions(obj.ColumnNames(), c, 3)))
				}
			}
		}
	}

	measureNames := model.MeasureNames()
	for _, met := range model.Metrics {
		for _, ref := range templateRefRe.FindAllStringSubmatch(met.Formula, -1) {
			name := ref[1]
			if _, ok := model.Measure(name); !ok {
				result = multierror.Append(result, obml.NewError(
					obml.ErrUnknownMeasureRef.New(name, met.Name),
					"UNKNOWN_MEASURE_REF", "metrics."+met.Name+".formula",
					suggest.Suggestions(measureNames, name, 3)))
			}
		}
	}

	if result != nil {
		result.ErrorFormat = func(errs []error) string {
			msg := ""
			for i, e := range errs {
				if i > 0 {
					msg += "; "
				}
				msg += e.Error()
			}
			return msg
		}
		return result
	}
	return nil
}
