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

package fanout

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sembench/obmlc/graph"
	"github.com/sembench/obmlc/obml"
	"github.com/sembench/obmlc/resolve"
)

func TestDetectSkipsCFL(t *testing.T) {
	rq := &resolve.ResolvedQuery{IsCFL: true}
	require.NoError(t, Detect(rq))
}

func TestDetectSkipsEmptyPath(t *testing.T) {
	rq := &resolve.ResolvedQuery{}
	require.NoError(t, Detect(rq))
}

func TestDetectCatchesReversedManyToOne(t *testing.T) {
	rq := &resolve.ResolvedQuery{
		JoinPath: []graph.JoinStep{{From: "Orders", To: "Customers", Cardinality: obml.CardinalityManyToOne, Reversed: true}},
		Measures: []resolve.ResolvedMeasure{{Name: "Cust Revenue", SourceObjects: []string{"Customers"}}},
	}
	err := Detect(rq)
	require.Error(t, err)
	require.Contains(t, err.Error(), "one-to-many")
}

func TestDetectAllowsAllowFanOut(t *testing.T) {
	rq := &resolve.ResolvedQuery{
		JoinPath: []graph.JoinStep{{From: "Orders", To: "Customers", Cardinality: obml.CardinalityManyToOne, Reversed: true}},
		Measures: []resolve.ResolvedMeasure{{Name: "Cust Revenue", SourceObjects: []string{"Customers"}, AllowFanOut: true}},
	}
	require.NoError(t, Detect(rq))
}

func TestDetectAllowsSafeManyToOne(t *testing.T) {
	rq := &resolve.ResolvedQuery{
		JoinPath: []graph.JoinStep{{From: "Orders", To: "Customers", Cardinality: obml.CardinalityManyToOne, Reversed: false}},
		Measures: []resolve.ResolvedMeasure{{Name: "Revenue", SourceObjects: []string{"Orders"}}},
	}
	require.NoError(t, Detect(rq))
}
