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

import errors "gopkg.in/src-d/go-errors.v1"

// Stable error codes, one errors.Kind per code in spec.md §7. Stages raise
// these via .New(...) and attach path/suggestions by wrapping the result
// in a *SemanticError (see NewError).
var (
	// Parse / reference resolution
	ErrYAMLSafety               = errors.NewKind("yaml document failed safety checks: %s")
	ErrYAMLParse                = errors.NewKind("yaml parse error: %s")
	ErrDataObjectParse          = errors.NewKind("invalid data object %q: %s")
	ErrDimensionParse           = errors.NewKind("invalid dimension %q: %s")
	ErrMeasureParse             = errors.NewKind("invalid measure %q: %s")
	ErrMetricParse              = errors.NewKind("invalid metric %q: %s")
	ErrUnknownDataObject        = errors.NewKind("unknown data object %q")
	ErrUnknownColumn            = errors.NewKind("unknown column %q on object %q")
	ErrUnknownColumnInExpr      = errors.NewKind("unknown column %q referenced in expression of %q")
	ErrUnknownMeasureRef        = errors.NewKind("unknown measure %q referenced in metric %q")

	// Semantic validation
	ErrDuplicateIdentifier      = errors.NewKind("duplicate identifier %q")
	ErrDuplicateColumnName      = errors.NewKind("duplicate column name %q on object %q")
	ErrCyclicJoin               = errors.NewKind("cyclic join detected: %s")
	ErrMultipathJoin            = errors.NewKind("multiple join paths between %q and %q")
	ErrUnknownJoinTarget        = errors.NewKind("join %q on object %q targets unknown object %q")
	ErrUnknownJoinColumn        = errors.NewKind("join %q references unknown column %q")
	ErrJoinColumnCountMismatch  = errors.NewKind("join %q has mismatched column counts")
	ErrSecondaryJoinMissingPath = errors.NewKind("secondary join %q on object %q is missing a path_name")
	ErrDuplicateJoinPathName    = errors.NewKind("duplicate join path_name %q between %q and %q")

	// Resolution / planning
	ErrUnknownDimension         = errors.NewKind("unknown dimension %q")
	ErrUnknownMeasure           = errors.NewKind("unknown measure or metric %q")
	ErrUnknownPathName          = errors.NewKind("unknown path_name %q from %q to %q")
	ErrUnknownOrderByField      = errors.NewKind("unknown order_by field %q")
	ErrInvalidOrderByPosition   = errors.NewKind("order_by position %d is out of range for %d selected fields")
	ErrUnknownFilterField       = errors.NewKind("unknown filter field %q")
	ErrUnreachableFilterField   = errors.NewKind("filter field %q on object %q is not reachable from %q")
	ErrInvalidFilterOperator    = errors.NewKind("invalid filter operator %q for field %q")
	ErrInvalidRelativeFilter    = errors.NewKind("invalid relative date filter: %s")
	ErrInvalidMetricExpression  = errors.NewKind("invalid metric expression in %q: %s")
	ErrAmbiguousJoin            = errors.NewKind("ambiguous join between %q and %q: %s")

	// Planner
	ErrFanout = errors.NewKind("fanout detected: %s")
)

// NewError builds a *SemanticError from a go-errors.v1 Kind instance,
// attaching a path and suggestions.
func NewError(kindErr error, code string, path string, suggestions []string) *SemanticError {
	return &SemanticError{
		Code:        code,
		Message:     kindErr.Error(),
		Path:        path,
		Suggestions: suggestions,
	}
}
