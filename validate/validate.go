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

// Package validate enforces the semantic model's global invariants:
// identifier and column uniqueness, join-target and join-column
// soundness, an acyclic and diamond-free primary join graph, and
// secondary-join path-name discipline. It runs after
// parser.ReferenceResolver and checks join targets and join columns again
// on its own, alongside the shape of the graph they form.
package validate

import (
	"fmt"

	"github.com/hashicorp/go-multierror"

	"github.com/sembench/obmlc/graph"
	"github.com/sembench/obmlc/obml"
)

// SemanticValidator runs the fixed-order battery of global checks.
type SemanticValidator struct{}

// NewSemanticValidator constructs a SemanticValidator.
func NewSemanticValidator() *SemanticValidator { return &SemanticValidator{} }

// Validate runs every check against model and returns a ValidationResult
// with every violation batched (never fail-fast).
func (v *SemanticValidator) Validate(model *obml.SemanticModel) *obml.ValidationResult {
	result := &obml.ValidationResult{}

	v.checkDuplicateIdentifiers(model, result)
	v.checkDuplicateColumnNames(model, result)
	v.checkJoinTargetsAndColumns(model, result)

	g := graph.Build(model)

	if cycle := g.FindCycle(); cycle != nil {
		result.Add(obml.NewError(
			obml.ErrCyclicJoin.New(fmt.Sprint(cycle)),
			"CYCLIC_JOIN", "", nil))
	}

	for _, pair := range g.FindMultipaths() {
		result.Add(obml.NewError(
			obml.ErrMultipathJoin.New(pair.A, pair.B),
			"MULTIPATH_JOIN", "", nil))
	}

	v.checkSecondaryJoinPathNames(model, result)

	return result
}

func (v *SemanticValidator) checkDuplicateIdentifiers(model *obml.SemanticModel, result *obml.ValidationResult) {
	seen := make(map[string]string) // name -> kind, first occurrence wins
	check := func(kind, name string) {
		if prevKind, ok := seen[name]; ok {
			result.Add(obml.NewError(
				obml.ErrDuplicateIdentifier.New(name),
				"DUPLICATE_IDENTIFIER", kind+"."+name, nil))
			_ = prevKind
			return
		}
		seen[name] = kind
	}
	for _, o := range model.Objects {
		check("objects", o.Name)
	}
	for _, d := range model.Dimensions {
		check("dimensions", d.Name)
	}
	for _, m := range model.Measures {
		check("measures", m.Name)
	}
	for _, m := range model.Metrics {
		check("metrics", m.Name)
	}
}

func (v *SemanticValidator) checkDuplicateColumnNames(model *obml.SemanticModel, result *obml.ValidationResult) {
	seen := make(map[string]bool) // column labels are unique model-wide
	for _, o := range model.Objects {
		for _, c := range o.Columns {
			if seen[c.Name] {
				result.Add(obml.NewError(
					obml.ErrDuplicateColumnName.New(c.Name, o.Name),
					"DUPLICATE_COLUMN_NAME", o.Name+".columns."+c.Name, nil))
				continue
			}
			seen[c.Name] = true
		}
	}
}

func (v *SemanticValidator) checkJoinTargetsAndColumns(model *obml.SemanticModel, result *obml.ValidationResult) {
	for _, o := range model.Objects {
		for _, j := range o.Joins {
			target, ok := model.Object(j.JoinTo)
			if !ok {
				result.Add(obml.NewError(
					obml.ErrUnknownJoinTarget.New(j.Name, o.Name, j.JoinTo),
					"UNKNOWN_JOIN_TARGET", o.Name+".joins."+j.Name, nil))
				continue
			}
			if len(j.ColumnsFrom) != len(j.ColumnsTo) || len(j.ColumnsFrom) == 0 {
				result.Add(obml.NewError(
					obml.ErrJoinColumnCountMismatch.New(j.Name),
					"JOIN_COLUMN_COUNT_MISMATCH", o.Name+".joins."+j.Name, nil))
				continue
			}
			for _, c := range j.ColumnsFrom {
				if _, ok := o.Column(c); !ok {
					result.Add(obml.NewError(
						obml.ErrUnknownJoinColumn.New(c),
						"UNKNOWN_JOIN_COLUMN", o.Name+".joins."+j.Name+".columns_from", nil))
				}
			}
			for _, c := range j.ColumnsTo {
				if _, ok := target.Column(c); !ok {
					result.Add(obml.NewError(
						obml.ErrUnknownJoinColumn.New(c),
						"UNKNOWN_JOIN_COLUMN", o.Name+".joins."+j.Name+".columns_to", nil))
				}
			}
		}
	}
}

// checkSecondaryJoinPathNames enforces that every secondary join declares
// a non-empty path_name, and that no two joins between the same ordered
// pair of objects reuse the same path_name. Neither check exists in the
// original Python validator (see DESIGN.md); both are required by
// spec.md §3.2/§4.2.
func (v *SemanticValidator) checkSecondaryJoinPathNames(model *obml.SemanticModel, result *obml.ValidationResult) {
	seenPathNames := make(map[string]string) // "from->to->pathName" -> owning join name
	for _, o := range model.Objects {
		for _, j := range o.Joins {
			if j.Secondary && j.PathName == "" {
				result.Add(obml.NewError(
					obml.ErrSecondaryJoinMissingPath.New(j.Name, o.Name),
					"SECONDARY_JOIN_MISSING_PATH_NAME", o.Name+".joins."+j.Name, nil))
				continue
			}
			if j.PathName == "" {
				continue
			}
			key := o.Name + "->" + j.JoinTo + "->" + j.PathName
			if _, ok := seenPathNames[key]; ok {
				result.Add(obml.NewError(
					obml.ErrDuplicateJoinPathName.New(j.PathName, o.Name, j.JoinTo),
					"DUPLICATE_JOIN_PATH_NAME", o.Name+".joins."+j.Name, nil))
				continue
			}
			seenPathNames[key] = j.Name
		}
	}
}

// multierrorFromValidation flattens a ValidationResult into a single
// batched error for callers that want a plain `error`.
func multierrorFromValidation(result *obml.ValidationResult) error {
	if result.OK() {
		return nil
	}
	var merr *multierror.Error
	for _, e := range result.Errors {
		merr = multierror.Append(merr, e)
	}
	return merr
}
