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
	"github.com/sembench/obmlc/obml"
)

func fixtureModel() *obml.SemanticModel {
	return &obml.SemanticModel{
		Name: "fixture",
		Objects: []obml.DataObject{
			{Name: "Customers", Schema: "public", Code: "CUSTOMERS", Columns: []obml.DataObjectColumn{
				{Name: "Cust ID", Column: "ID"},
				{Name: "Country", Column: "COUNTRY"},
			}},
			{Name: "Orders", Schema: "public", Code: "ORDERS", Columns: []obml.DataObjectColumn{
				{Name: "Order ID", Column: "ID"},
				{Name: "Amount", Column: "AMOUNT"},
				{Name: "Order Customer ID", Column: "CUST_ID"},
			}, Joins: []obml.DataObjectJoin{{
				Name: "to_customers", JoinTo: "Customers", Type: obml.JoinLeft,
				Cardinality: obml.CardinalityManyToOne,
				ColumnsFrom: []string{"CUST_ID"}, ColumnsTo: []string{"ID"},
			}}},
			{Name: "Returns", Schema: "public", Code: "RETURNS", Columns: []obml.DataObjectColumn{
				{Name: "Return ID", Column: "ID"},
				{Name: "Refund", Column: "REFUND"},
				{Name: "Return Customer ID", Column: "CUST_ID"},
			}, Joins: []obml.DataObjectJoin{{
				Name: "to_customers", JoinTo: "Customers", Type: obml.JoinLeft,
				Cardinality: obml.CardinalityManyToOne,
				ColumnsFrom: []string{"CUST_ID"}, ColumnsTo: []string{"ID"},
			}}},
		},
		Dimensions: []obml.Dimension{
			{Name: "Customer Country", Object: "Customers", Column: "COUNTRY"},
		},
		Measures: []obml.Measure{
			{Name: "Revenue", Object: "Orders", Columns: []string{"Amount"}, Aggregation: obml.AggSum},
			{Name: "Refunds", Object: "Returns", Columns: []string{"Refund"}, Aggregation: obml.AggSum},
			{Name: "Order Count", Object: "Orders", Columns: []string{"Order ID"}, Aggregation: obml.AggCount},
			{Name: "Avg Order", Object: "Orders", Columns: []string{"Amount"}, Aggregation: obml.AggAvg, Total: true},
		},
		Metrics: []obml.Metric{
			{Name: "Revenue per Order", Formula: "{[Revenue]} / {[Order Count]}"},
		},
	}
}
