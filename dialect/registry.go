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

import "fmt"

// UnsupportedDialectError reports a lookup for a dialect name the registry
// doesn't know.
type UnsupportedDialectError struct {
	Name string
}

func (e *UnsupportedDialectError) Error() string {
	return fmt.Sprintf("unsupported dialect %q", e.Name)
}

// Registry maps dialect names to constructed Dialect instances.
type Registry struct {
	dialects map[string]Dialect
}

// NewRegistry constructs a Registry pre-populated with every built-in
// dialect.
func NewRegistry() *Registry {
	r := &Registry{dialects: make(map[string]Dialect)}
	r.Register(NewPostgres())
	r.Register(NewSnowflake())
	r.Register(NewClickHouse())
	r.Register(NewDatabricks())
	r.Register(NewDremio())
	return r
}

// Register adds or replaces a dialect under its own Name().
func (r *Registry) Register(d Dialect) {
	r.dialects[d.Name()] = d
}

// Get looks up a dialect by name.
func (r *Registry) Get(name string) (Dialect, error) {
	d, ok := r.dialects[name]
	if !ok {
		return nil, &UnsupportedDialectError{Name: name}
	}
	return d, nil
}

// Available returns every registered dialect name.
func (r *Registry) Available() []string {
	out := make([]string, 0, len(r.dialects))
	for name := range r.dialects {
		out = append(out, name)
	}
	return out
}
