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

package graph

import (
	"testing"

	"github.com/sembench/obmlc/obml"
	"github.com/stretchr/testify/require"
)

func starModel() *obml.SemanticModel {
	return &obml.SemanticModel{
		Name: "test",
		Objects: []obml.DataObject{
			{Name: "Customers", Code: "CUSTOMERS"},
			{
				Name: "Orders", Code: "ORDERS",
				Joins: []obml.DataObjectJoin{{
					Name: "to_customers", JoinTo: "Customers", Type: obml.JoinLeft,
					Cardinality: obml.CardinalityManyToOne,
					ColumnsFrom: []string{"CUST_ID"}, ColumnsTo: []string{"ID"},
				}},
			},
			{
				Name: "Returns", Code: "RETURNS",
				Joins: []obml.DataObjectJoin{{
					Name: "to_customers", JoinTo: "Customers", Type: obml.JoinLeft,
					Cardinality: obml.CardinalityManyToOne,
					ColumnsFrom: []string{"CUST_ID"}, ColumnsTo: []string{"ID"},
				}},
			},
		},
	}
}

func TestFindPathDirect(t *testing.T) {
	require := require.New(t)
	g := Build(starModel())

	path, ok := g.FindPath("Orders", "Customers", nil)
	require.True(ok)
	require.Len(path, 1)
	require.False(path[0].Reversed)
	require.Equal("Orders", path[0].From)
	require.Equal("Customers", path[0].To)
}

func TestFindPathReversed(t *testing.T) {
	require := require.New(t)
	g := Build(starModel())

	path, ok := g.FindPath("Customers", "Orders", nil)
	require.True(ok)
	require.Len(path, 1)
	require.True(path[0].Reversed)
}

func TestFindPathMultiHop(t *testing.T) {
	require := require.New(t)
	g := Build(starModel())

	path, ok := g.FindPath("Orders", "Returns", nil)
	require.True(ok)
	require.Len(path, 2)
}

func TestNoCycleOnStar(t *testing.T) {
	require := require.New(t)
	g := Build(starModel())
	require.Nil(g.FindCycle())
}

func TestCycleDetected(t *testing.T) {
	require := require.New(t)
	model := &obml.SemanticModel{
		Objects: []obml.DataObject{
			{Name: "A", Joins: []obml.DataObjectJoin{{JoinTo: "B", ColumnsFrom: []string{"x"}, ColumnsTo: []string{"y"}}}},
			{Name: "B", Joins: []obml.DataObjectJoin{{JoinTo: "A", ColumnsFrom: []string{"y"}, ColumnsTo: []string{"x"}}}},
		},
	}
	g := Build(model)
	require.NotNil(g.FindCycle())
}

func TestSecondaryJoinExcludedFromCycleCheck(t *testing.T) {
	require := require.New(t)
	model := &obml.SemanticModel{
		Objects: []obml.DataObject{
			{Name: "A", Joins: []obml.DataObjectJoin{{JoinTo: "B", ColumnsFrom: []string{"x"}, ColumnsTo: []string{"y"}}}},
			{Name: "B", Joins: []obml.DataObjectJoin{{JoinTo: "A", Secondary: true, PathName: "back", ColumnsFrom: []string{"y"}, ColumnsTo: []string{"x"}}}},
		},
	}
	g := Build(model)
	require.Nil(g.FindCycle())
}

// TestMultipathDirectPlusIndirectNotFlagged mirrors the original's own
// doc example: Purchases -> Suppliers direct, plus Purchases -> Products
// -> Suppliers indirect. The direct join is canonical, so this must not
// be reported as a diamond.
func TestMultipathDirectPlusIndirectNotFlagged(t *testing.T) {
	require := require.New(t)
	model := &obml.SemanticModel{
		Objects: []obml.DataObject{
			{Name: "Purchases", Joins: []obml.DataObjectJoin{
				{JoinTo: "Suppliers", ColumnsFrom: []string{"sup_id"}, ColumnsTo: []string{"id"}},
				{JoinTo: "Products", ColumnsFrom: []string{"prod_id"}, ColumnsTo: []string{"id"}},
			}},
			{Name: "Products", Joins: []obml.DataObjectJoin{
				{JoinTo: "Suppliers", ColumnsFrom: []string{"sup_id"}, ColumnsTo: []string{"id"}},
			}},
			{Name: "Suppliers"},
		},
	}
	g := Build(model)
	require.Empty(g.FindMultipaths())
}

// TestMultipathTwoIndirectPathsFlagged covers a genuine diamond: Start
// reaches Target via two disjoint indirect paths and has no direct edge
// to Target at all.
func TestMultipathTwoIndirectPathsFlagged(t *testing.T) {
	require := require.New(t)
	model := &obml.SemanticModel{
		Objects: []obml.DataObject{
			{Name: "Start", Joins: []obml.DataObjectJoin{
				{JoinTo: "Left", ColumnsFrom: []string{"l_id"}, ColumnsTo: []string{"id"}},
				{JoinTo: "Right", ColumnsFrom: []string{"r_id"}, ColumnsTo: []string{"id"}},
			}},
			{Name: "Left", Joins: []obml.DataObjectJoin{
				{JoinTo: "Target", ColumnsFrom: []string{"t_id"}, ColumnsTo: []string{"id"}},
			}},
			{Name: "Right", Joins: []obml.DataObjectJoin{
				{JoinTo: "Target", ColumnsFrom: []string{"t_id"}, ColumnsTo: []string{"id"}},
			}},
			{Name: "Target"},
		},
	}
	g := Build(model)
	pairs := g.FindMultipaths()
	require.Len(pairs, 1)
	require.Equal("Start", pairs[0].A)
	require.Equal("Target", pairs[0].B)
}
