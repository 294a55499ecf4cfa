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

// Config controls an Engine's behavior across every model it compiles
// queries against.
type Config struct {
	// StrictMode rejects a model at Load time if validate.SemanticValidator
	// reports any warning, not just errors.
	StrictMode bool
	// MaxJoinSteps bounds how long a single resolved join path may be
	// before Compile refuses to plan it, guarding against pathological
	// models with very long join chains. Zero means unbounded.
	MaxJoinSteps int
	// DefaultDialect is used by Compile when a caller passes an empty
	// dialect name.
	DefaultDialect string
}

// DefaultConfig returns the Config an Engine uses when none is supplied.
func DefaultConfig() Config {
	return Config{
		StrictMode:     false,
		MaxJoinSteps:   64,
		DefaultDialect: "postgres",
	}
}
