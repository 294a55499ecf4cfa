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

package plan

import (
	"github.com/sembench/obmlc/ast"
	"github.com/sembench/obmlc/resolve"
)

// substituteMetric walks a parsed metric formula, replacing each measure
// reference with whatever expression lookup returns for that measure's
// name and each bare number with an ast.NumberLit. The star planner's
// lookup inlines a component's full aggregate expression; the CFL and
// total planners' lookups instead reference that component's own output
// column alias, since by the time the metric is evaluated the component
// has already been aggregated in an inner query or CTE.
func substituteMetric(node resolve.MetricNode, lookup func(name string) ast.Expr) ast.Expr {
	switch t := node.(type) {
	case resolve.MetricRef:
		return lookup(t.Name)
	case resolve.MetricNum:
		return ast.NumberLit(t.Value)
	case resolve.MetricBinOp:
		return ast.BinaryOp{Op: t.Op, Left: substituteMetric(t.Left, lookup), Right: substituteMetric(t.Right, lookup)}
	default:
		return ast.NullLit()
	}
}
