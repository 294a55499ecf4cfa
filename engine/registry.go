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
	"fmt"
	"sync"

	"github.com/mitchellh/hashstructure"
	uuid "github.com/satori/go.uuid"

	"github.com/sembench/obmlc/obml"
	"github.com/sembench/obmlc/parser"
	"github.com/sembench/obmlc/validate"
)

// ModelNotFoundError reports a lookup against an id the registry never
// issued, or one since removed.
type ModelNotFoundError struct {
	ID string
}

func (e *ModelNotFoundError) Error() string {
	return fmt.Sprintf("engine: no model registered under id %q", e.ID)
}

// ModelInfo is the read-only summary Describe/List return for a loaded
// model, without handing out the model itself.
type ModelInfo struct {
	ID         string
	Name       string
	Checksum   uint64
	ObjectCount int
}

type registeredModel struct {
	model    *obml.SemanticModel
	checksum uint64
	warnings []string
}

// ModelRegistry holds every SemanticModel an Engine has loaded, keyed by a
// generated id, guarded by a mutex so concurrent Compile calls from
// different goroutines can share one Engine safely. Grounded on the
// teacher's PreparedDataCache: a mutex-protected map with Load/Get/Remove
// methods, generalized here from per-session prepared statements to
// per-model semantic definitions.
type ModelRegistry struct {
	mu     sync.Mutex
	models map[string]registeredModel
	loader parser.Loader
	strict bool
}

// NewModelRegistry constructs an empty registry. strict, when true,
// rejects a model at Load time if semantic validation produces any
// warning, not just errors.
func NewModelRegistry(strict bool) *ModelRegistry {
	return &ModelRegistry{
		models: make(map[string]registeredModel),
		loader: parser.NewYAMLLoader(),
		strict: strict,
	}
}

// Load decodes, resolves, and validates a YAML model document, registers
// it under a freshly generated id, and returns that id.
func (r *ModelRegistry) Load(data []byte) (string, error) {
	model, result, err := r.loadAndValidate(data)
	if err != nil {
		return "", err
	}
	if !result.OK() {
		return "", multierrorFromResult(result)
	}
	if r.strict && len(result.Warnings) > 0 {
		return "", multierrorFromWarnings(result)
	}

	checksum, err := hashstructure.Hash(model, nil)
	if err != nil {
		return "", fmt.Errorf("engine: hashing model: %w", err)
	}

	id, err := uuid.NewV4()
	if err != nil {
		return "", fmt.Errorf("engine: generating model id: %w", err)
	}

	warnings := make([]string, len(result.Warnings))
	for i, w := range result.Warnings {
		warnings[i] = w.Error()
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.models[id.String()] = registeredModel{model: model, checksum: checksum, warnings: warnings}
	return id.String(), nil
}

// Validate runs the load+resolve+validate pipeline against data without
// registering the result, for callers that want to check a model (e.g. a
// CLI "lint" command) without compiling any query against it.
func (r *ModelRegistry) Validate(data []byte) (*obml.ValidationResult, error) {
	_, result, err := r.loadAndValidate(data)
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (r *ModelRegistry) loadAndValidate(data []byte) (*obml.SemanticModel, *obml.ValidationResult, error) {
	model, err := r.loader.Load(data)
	if err != nil {
		return nil, nil, err
	}

	resolver := parser.NewReferenceResolver()
	if err := resolver.Resolve(model); err != nil {
		return nil, nil, err
	}

	result := validate.NewSemanticValidator().Validate(model)
	return model, result, nil
}

// Warnings returns the non-fatal validation warnings recorded when the
// model registered under id was loaded.
func (r *ModelRegistry) Warnings(id string) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rm, ok := r.models[id]
	if !ok {
		return nil, &ModelNotFoundError{ID: id}
	}
	return rm.warnings, nil
}

// Get returns the model registered under id.
func (r *ModelRegistry) Get(id string) (*obml.SemanticModel, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rm, ok := r.models[id]
	if !ok {
		return nil, &ModelNotFoundError{ID: id}
	}
	return rm.model, nil
}

// Remove unregisters a model. It is not an error to remove an id that was
// never registered or was already removed.
func (r *ModelRegistry) Remove(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.models, id)
}

// Describe summarizes the model registered under id.
func (r *ModelRegistry) Describe(id string) (ModelInfo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rm, ok := r.models[id]
	if !ok {
		return ModelInfo{}, &ModelNotFoundError{ID: id}
	}
	return ModelInfo{ID: id, Name: rm.model.Name, Checksum: rm.checksum, ObjectCount: len(rm.model.Objects)}, nil
}

// List summarizes every currently registered model, in no particular
// order.
func (r *ModelRegistry) List() []ModelInfo {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]ModelInfo, 0, len(r.models))
	for id, rm := range r.models {
		out = append(out, ModelInfo{ID: id, Name: rm.model.Name, Checksum: rm.checksum, ObjectCount: len(rm.model.Objects)})
	}
	return out
}

func multierrorFromResult(result *obml.ValidationResult) error {
	var msgs []string
	for _, e := range result.Errors {
		msgs = append(msgs, e.Error())
	}
	return fmt.Errorf("engine: model failed validation: %v", msgs)
}

func multierrorFromWarnings(result *obml.ValidationResult) error {
	var msgs []string
	for _, e := range result.Warnings {
		msgs = append(msgs, e.Error())
	}
	return fmt.Errorf("engine: model failed validation in strict mode (warnings present): %v", msgs)
}
