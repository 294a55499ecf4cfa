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
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sembench/obmlc/obml"
)

func validModel() *obml.SemanticModel {
	return &obml.SemanticModel{
		Name: "test",
		Objects: []obml.DataObject{
			{Name: "Customers", Code: "CUSTOMERS", Columns: []obml.DataObjectColumn{
				{Name: "Cust ID", Column: "ID"},
				{Name: "Country", Column: "COUNTRY"},
			}},
			{Name: "Orders", Code: "ORDERS", Columns: []obml.DataObjectColumn{
				{Name: "Order ID", Column: "ID"},
				{Name: "Amount", Column: "AMOUNT"},
				{Name: "Order Customer ID", Column: "CUST_ID"},
			}, Joins: []obml.DataObjectJoin{{
				Name: "to_customers", JoinTo: "Customers", Type: obml.JoinLeft,
				Cardinality: obml.CardinalityManyToOne,
				ColumnsFrom: []string{"Order Customer ID"}, ColumnsTo: []string{"Cust ID"},
			}}},
		},
		Dimensions: []obml.Dimension{{Name: "Customer Country", Object: "Customers", Column: "Country"}},
		Measures: []obml.Measure{{
			Name: "Revenue", Object: "Orders", Columns: []string{"Amount"}, Aggregation: obml.AggSum,
		}},
	}
}

func TestResolverAcceptsValidModel(t *testing.T) {
	require.NoError(t, NewReferenceResolver().Resolve(validModel()))
}

func TestResolverCatchesUnknownColumn(t *testing.T) {
	require := require.New(t)
	m := validModel()
	m.Dimensions[0].Column = "Contry"

	err := NewReferenceResolver().Resolve(m)
	require.Error(err)
	require.Contains(err.Error(), "UNKNOWN_COLUMN")
}

func TestResolverCatchesUnknownJoinTarget(t *testing.T) {
	require := require.New(t)
	m := validModel()
	m.Objects[1].Joins[0].JoinTo = "Custmers"

	err := NewReferenceResolver().Resolve(m)
	require.Error(err)
	require.Contains(err.Error(), "UNKNOWN_DATA_OBJECT")
}

func TestResolverCatchesUnknownExpressionColumn(t *testing.T) {
	require := require.New(t)
	m := validModel()
	m.Measures[0].Columns = nil
	m.Measures[0].Expression = "{[Amnt]} * 1.1"

	err := NewReferenceResolver().Resolve(m)
	require.Error(err)
	require.Contains(err.Error(), "UNKNOWN_COLUMN_IN_EXPRESSION")
}

func TestResolverAcceptsUnqualifiedCrossObjectExpressionRef(t *testing.T) {
	require := require.New(t)
	m := validModel()
	m.Measures[0].Columns = nil
	// "Country" lives on Customers, not on Orders (this measure's own
	// object); column names are globally unique, so the bare reference
	// resolves without an object qualifier.
	m.Measures[0].Expression = "{[Amount]} * ({[Country]} IS NOT NULL)"

	require.NoError(NewReferenceResolver().Resolve(m))
}

func TestResolverCatchesUnknownMetricMeasureRef(t *testing.T) {
	require := require.New(t)
	m := validModel()
	m.Metrics = []obml.Metric{{Name: "Bad Metric", Formula: "{[Revenu]} / 2"}}

	err := NewReferenceResolver().Resolve(m)
	require.Error(err)
	require.Contains(err.Error(), "UNKNOWN_MEASURE_REF")
}
