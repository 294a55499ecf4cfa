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

package resolve

import (
	"github.com/sembench/obmlc/internal/suggest"
	"github.com/sembench/obmlc/obml"
)

// resolveOrderBy resolves every ORDER BY term to either a named selected
// field or a 1-based position in the select list, per spec.md §4.4 step 8.
// The original Python resolver only implements the named-field and bare-
// fallback cases (see SPEC_FULL.md §5, Gap 2); numeric positions and the
// UNKNOWN_ORDER_BY_FIELD / INVALID_ORDER_BY_POSITION diagnostics are added
// here.
func resolveOrderBy(query *obml.Query, rq *ResolvedQuery) ([]ResolvedOrderBy, *obml.SemanticError) {
	selected := selectedAliases(query)

	var out []ResolvedOrderBy
	for _, ob := range query.OrderBy {
		dir := ob.Direction
		if dir == "" {
			dir = obml.SortAsc
		}
		if ob.Position > 0 {
			if ob.Position > len(selected) {
				return nil, obml.NewError(
					obml.ErrInvalidOrderByPosition.New(ob.Position, len(selected)),
					"INVALID_ORDER_BY_POSITION", "order_by", nil)
			}
			out = append(out, ResolvedOrderBy{Alias: selected[ob.Position-1], Direction: dir})
			continue
		}
		found := false
		for _, alias := range selected {
			if alias == ob.Field {
				found = true
				break
			}
		}
		if !found {
			return nil, obml.NewError(
				obml.ErrUnknownOrderByField.New(ob.Field),
				"UNKNOWN_ORDER_BY_FIELD", "order_by", suggest.Suggestions(selected, ob.Field, 3))
		}
		out = append(out, ResolvedOrderBy{Alias: ob.Field, Direction: dir})
	}
	return out, nil
}

func selectedAliases(query *obml.Query) []string {
	out := make([]string, len(query.Select))
	for i, s := range query.Select {
		out[i] = s.Field
	}
	return out
}
