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

package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	yaml "gopkg.in/yaml.v2"

	"github.com/sembench/obmlc/obml"
)

func fixtureModel() *obml.SemanticModel {
	return &obml.SemanticModel{
		Name: "fixture",
		Objects: []obml.DataObject{
			{Name: "Customers", Code: "CUSTOMERS", Columns: []obml.DataObjectColumn{
				{Name: "Cust ID", Column: "ID", Type: obml.DataTypeInteger},
				{Name: "Country", Column: "COUNTRY", Type: obml.DataTypeString},
			}},
			{Name: "Orders", Code: "ORDERS", Columns: []obml.DataObjectColumn{
				{Name: "Order ID", Column: "ID", Type: obml.DataTypeInteger},
				{Name: "Amount", Column: "AMOUNT", Type: obml.DataTypeDecimal},
				{Name: "Order Customer ID", Column: "CUST_ID", Type: obml.DataTypeInteger},
			}, Joins: []obml.DataObjectJoin{{
				Name: "to_customers", JoinTo: "Customers", Type: obml.JoinLeft,
				Cardinality: obml.CardinalityManyToOne,
				ColumnsFrom: []string{"Order Customer ID"}, ColumnsTo: []string{"Cust ID"},
			}}},
			{Name: "Returns", Code: "RETURNS", Columns: []obml.DataObjectColumn{
				{Name: "Return ID", Column: "ID", Type: obml.DataTypeInteger},
				{Name: "Refund", Column: "REFUND", Type: obml.DataTypeDecimal},
				{Name: "Return Customer ID", Column: "CUST_ID", Type: obml.DataTypeInteger},
			}, Joins: []obml.DataObjectJoin{{
				Name: "to_customers", JoinTo: "Customers", Type: obml.JoinLeft,
				Cardinality: obml.CardinalityManyToOne,
				ColumnsFrom: []string{"Return Customer ID"}, ColumnsTo: []string{"Cust ID"},
			}}},
		},
		Dimensions: []obml.Dimension{
			{Name: "Customer Country", Object: "Customers", Column: "Country"},
		},
		Measures: []obml.Measure{
			{Name: "Revenue", Object: "Orders", Columns: []string{"Amount"}, Aggregation: obml.AggSum},
			{Name: "Refunds", Object: "Returns", Columns: []string{"Refund"}, Aggregation: obml.AggSum},
			{Name: "Order Count", Object: "Orders", Columns: []string{"Order ID"}, Aggregation: obml.AggCount},
		},
		Metrics: []obml.Metric{
			{Name: "Revenue per Order", Formula: "{[Revenue]} / {[Order Count]}"},
		},
	}
}

func loadFixture(t *testing.T, e *Engine) string {
	t.Helper()
	data, err := yaml.Marshal(fixtureModel())
	require.NoError(t, err)
	id, err := e.Models.Load(data)
	require.NoError(t, err)
	return id
}

func TestEngineCompileStarQuery(t *testing.T) {
	require := require.New(t)
	e := New(DefaultConfig())
	id := loadFixture(t, e)

	query := &obml.Query{
		Select: []obml.QuerySelect{{Field: "Customer Country"}, {Field: "Revenue"}},
	}

	result, err := e.Compile(context.Background(), id, query, "postgres")
	require.NoError(err)
	require.Equal("postgres", result.Dialect)
	require.Contains(result.SQL, "SELECT")
	require.Contains(result.SQL, "ORDERS")
	require.Equal([]string{"Orders"}, result.FactTables)
	require.Equal([]string{"Customer Country"}, result.Dimensions)
	require.Equal([]string{"Revenue"}, result.Measures)
}

func TestEngineCompileDefaultsDialect(t *testing.T) {
	require := require.New(t)
	cfg := DefaultConfig()
	cfg.DefaultDialect = "snowflake"
	e := New(cfg)
	id := loadFixture(t, e)

	query := &obml.Query{Select: []obml.QuerySelect{{Field: "Customer Country"}, {Field: "Revenue"}}}
	result, err := e.Compile(context.Background(), id, query, "")
	require.NoError(err)
	require.Equal("snowflake", result.Dialect)
}

func TestEngineCompileCFLQuery(t *testing.T) {
	require := require.New(t)
	e := New(DefaultConfig())
	id := loadFixture(t, e)

	query := &obml.Query{
		Select: []obml.QuerySelect{{Field: "Customer Country"}, {Field: "Revenue"}, {Field: "Refunds"}},
	}
	result, err := e.Compile(context.Background(), id, query, "postgres")
	require.NoError(err)
	require.Contains(result.SQL, "composite_01")
	require.ElementsMatch([]string{"Orders", "Returns"}, result.FactTables)
}

func TestEngineCompileMetricQuery(t *testing.T) {
	require := require.New(t)
	e := New(DefaultConfig())
	id := loadFixture(t, e)

	query := &obml.Query{
		Select: []obml.QuerySelect{{Field: "Customer Country"}, {Field: "Revenue per Order"}},
	}
	result, err := e.Compile(context.Background(), id, query, "postgres")
	require.NoError(err)
	require.Equal([]string{"Revenue per Order"}, result.Measures)
}

func TestEngineCompileUnknownModel(t *testing.T) {
	require := require.New(t)
	e := New(DefaultConfig())
	query := &obml.Query{Select: []obml.QuerySelect{{Field: "Customer Country"}}}

	_, err := e.Compile(context.Background(), "does-not-exist", query, "postgres")
	require.Error(err)
	var notFound *ModelNotFoundError
	require.ErrorAs(err, &notFound)
}

func TestEngineCompileUnsupportedDialect(t *testing.T) {
	require := require.New(t)
	e := New(DefaultConfig())
	id := loadFixture(t, e)
	query := &obml.Query{Select: []obml.QuerySelect{{Field: "Customer Country"}, {Field: "Revenue"}}}

	_, err := e.Compile(context.Background(), id, query, "mysql")
	require.Error(err)
	require.Contains(err.Error(), "unsupported dialect")
}

func TestEngineModelRegistryRemoveAndList(t *testing.T) {
	require := require.New(t)
	e := New(DefaultConfig())
	id := loadFixture(t, e)

	list := e.Models.List()
	require.Len(list, 1)
	require.Equal("fixture", list[0].Name)

	e.Models.Remove(id)
	require.Empty(e.Models.List())

	_, err := e.Models.Get(id)
	require.Error(err)
}
