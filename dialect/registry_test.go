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

package dialect

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRegistryResolvesBuiltins(t *testing.T) {
	r := NewRegistry()
	for _, name := range []string{"postgres", "snowflake", "clickhouse", "databricks", "dremio"} {
		d, err := r.Get(name)
		require.NoError(t, err)
		require.Equal(t, name, d.Name())
	}
}

func TestRegistryUnknownDialect(t *testing.T) {
	r := NewRegistry()
	_, err := r.Get("mysql")
	require.Error(t, err)
	require.Contains(t, err.Error(), "mysql")
}

func TestRegistryAvailableListsAll(t *testing.T) {
	r := NewRegistry()
	require.Len(t, r.Available(), 5)
}
