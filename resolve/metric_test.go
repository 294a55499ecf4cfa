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
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseMetricFormulaPrecedence(t *testing.T) {
	require := require.New(t)

	node, err := parseMetricFormula("{[Revenue]} / {[Order Count]}")
	require.NoError(err)
	refs := MetricRefs(node)
	require.Equal([]string{"Revenue", "Order Count"}, refs)

	binop, ok := node.(MetricBinOp)
	require.True(ok)
	require.Equal("/", binop.Op)
}

func TestParseMetricFormulaParens(t *testing.T) {
	require := require.New(t)

	node, err := parseMetricFormula("({[A]} + {[B]}) * {[C]}")
	require.NoError(err)
	binop, ok := node.(MetricBinOp)
	require.True(ok)
	require.Equal("*", binop.Op)
	_, ok = binop.Left.(MetricBinOp)
	require.True(ok)
}

func TestParseMetricFormulaInvalid(t *testing.T) {
	require := require.New(t)

	_, err := parseMetricFormula("{[A]} +")
	require.Error(err)

	_, err = parseMetricFormula("{[A")
	require.Error(err)
}
