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

package obml

import "fmt"

// SourceSpan pinpoints a location within a loaded YAML document, used to
// attach precise positions to SemanticError when the loader tracked them.
type SourceSpan struct {
	Line   int
	Column int
}

// SemanticError is the structured error shape every compilation stage
// returns: a stable code, a human message, an optional dotted path into
// the model or query that triggered it, an optional source span, and up
// to three "did you mean" suggestions.
type SemanticError struct {
	Code        string
	Message     string
	Path        string
	Span        *SourceSpan
	Suggestions []string
}

func (e *SemanticError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s: %s (at %s)", e.Code, e.Message, e.Path)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// ValidationResult collects every error produced by one run of a
// validation stage plus any non-fatal warnings.
type ValidationResult struct {
	Errors   []*SemanticError
	Warnings []*SemanticError
}

// OK reports whether no errors (warnings are permitted) were collected.
func (r *ValidationResult) OK() bool {
	return len(r.Errors) == 0
}

// Add appends an error to the result.
func (r *ValidationResult) Add(err *SemanticError) {
	r.Errors = append(r.Errors, err)
}

// AddWarning appends a warning to the result.
func (r *ValidationResult) AddWarning(warn *SemanticError) {
	r.Warnings = append(r.Warnings, warn)
}
