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

package suggest

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSuggestionsEmpty(t *testing.T) {
	require := require.New(t)

	require.Empty(Suggestions(nil, "foo", 3))
	require.Empty(Suggestions([]string{"foo"}, "", 3))
}

func TestSuggestionsSubstringWins(t *testing.T) {
	require := require.New(t)

	names := []string{"Revenue", "RevenuePerOrder", "Country"}
	out := Suggestions(names, "Revenu", 3)
	require.Equal([]string{"Revenue", "RevenuePerOrder", "Country"}, out)
}

func TestSuggestionsTopN(t *testing.T) {
	require := require.New(t)

	names := []string{"Customer Country", "Customer ID", "Order Count", "Order ID"}
	out := Suggestions(names, "Order Id", 2)
	require.Len(out, 2)
	require.Contains(out, "Order ID")
}

func TestSuggestionsExactMatch(t *testing.T) {
	require := require.New(t)

	out := Suggestions([]string{"foo", "bar"}, "foo", 3)
	require.Equal("foo", out[0])
}
