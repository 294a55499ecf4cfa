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

// Package engine wires the compilation pipeline (resolve -> fanout check
// -> plan -> total wrap -> render) into a single Engine.Compile call, and
// tracks every loaded model by id via ModelRegistry.
package engine

import (
	"context"
	"fmt"

	"github.com/opentracing/opentracing-go"
	"github.com/sirupsen/logrus"

	"github.com/sembench/obmlc/ast"
	"github.com/sembench/obmlc/dialect"
	"github.com/sembench/obmlc/fanout"
	"github.com/sembench/obmlc/obml"
	"github.com/sembench/obmlc/plan"
	"github.com/sembench/obmlc/resolve"
)

// CompilationResult is everything a caller needs out of a successful
// Compile call: the rendered SQL text plus enough metadata to explain
// what the query touched without re-parsing the SQL.
type CompilationResult struct {
	SQL        string
	Dialect    string
	FactTables []string
	Dimensions []string
	Measures   []string
	Warnings   []string
}

// Engine compiles OBML queries against registered models. It is safe for
// concurrent use: ModelRegistry is its own mutex-guarded store and every
// other field is read-only after construction.
type Engine struct {
	Config   Config
	Models   *ModelRegistry
	Dialects *dialect.Registry
	Log      *logrus.Logger
	Tracer   opentracing.Tracer
}

// New constructs an Engine from a Config, wiring up a fresh ModelRegistry,
// the built-in dialect registry, a default logrus.Logger, and the global
// opentracing tracer.
func New(cfg Config) *Engine {
	return &Engine{
		Config:   cfg,
		Models:   NewModelRegistry(cfg.StrictMode),
		Dialects: dialect.NewRegistry(),
		Log:      logrus.StandardLogger(),
		Tracer:   opentracing.GlobalTracer(),
	}
}

// Compile runs the full pipeline for one query against one registered
// model and returns the rendered SQL.
func (e *Engine) Compile(ctx context.Context, modelID string, query *obml.Query, dialectName string) (*CompilationResult, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "engine.Compile")
	defer span.Finish()
	span.SetTag("model_id", modelID)

	log := e.Log.WithFields(logrus.Fields{"model_id": modelID})

	if dialectName == "" {
		dialectName = e.Config.DefaultDialect
	}
	span.SetTag("dialect", dialectName)
	log = log.WithField("dialect", dialectName)

	model, err := e.Models.Get(modelID)
	if err != nil {
		log.WithError(err).Error("model lookup failed")
		return nil, err
	}

	d, err := e.Dialects.Get(dialectName)
	if err != nil {
		log.WithError(err).Error("dialect lookup failed")
		return nil, err
	}

	rq, err := e.resolveQuery(ctx, model, query)
	if err != nil {
		log.WithError(err).Warn("query resolution failed")
		return nil, err
	}
	log = log.WithFields(logrus.Fields{"is_cfl": rq.IsCFL, "base_object": rq.BaseObject})

	if e.Config.MaxJoinSteps > 0 && len(rq.JoinPath) > e.Config.MaxJoinSteps {
		err := fmt.Errorf("engine: resolved join path has %d steps, exceeds limit %d", len(rq.JoinPath), e.Config.MaxJoinSteps)
		log.WithError(err).Warn("join path too long")
		return nil, err
	}

	if err := e.detectFanout(ctx, rq); err != nil {
		log.WithError(err).Warn("fanout check failed")
		return nil, err
	}

	sel, err := e.runPlanner(ctx, rq, d)
	if err != nil {
		log.WithError(err).Warn("planning failed")
		return nil, err
	}

	if rq.HasTotals() {
		sel, err = e.wrapTotals(ctx, sel, rq, d)
		if err != nil {
			log.WithError(err).Warn("total wrap failed")
			return nil, err
		}
	}

	sql := e.render(ctx, d, sel)
	log.WithField("sql_len", len(sql)).Info("query compiled")

	warnings, _ := e.Models.Warnings(modelID)

	return &CompilationResult{
		SQL:        sql,
		Dialect:    d.Name(),
		FactTables: rq.FactTables(),
		Dimensions: dimensionNames(rq),
		Measures:   directMeasureNames(rq),
		Warnings:   warnings,
	}, nil
}

func (e *Engine) resolveQuery(ctx context.Context, model *obml.SemanticModel, query *obml.Query) (*resolve.ResolvedQuery, error) {
	span, _ := opentracing.StartSpanFromContext(ctx, "engine.resolve")
	defer span.Finish()
	return resolve.NewQueryResolver().Resolve(model, query)
}

func (e *Engine) detectFanout(ctx context.Context, rq *resolve.ResolvedQuery) error {
	span, _ := opentracing.StartSpanFromContext(ctx, "engine.fanout")
	defer span.Finish()
	return fanout.Detect(rq)
}

func (e *Engine) runPlanner(ctx context.Context, rq *resolve.ResolvedQuery, d dialect.Dialect) (*ast.Select, error) {
	span, _ := opentracing.StartSpanFromContext(ctx, "engine.plan")
	defer span.Finish()
	span.SetTag("cfl", rq.IsCFL)
	if rq.IsCFL {
		return plan.NewCFL().Plan(rq, d)
	}
	return plan.NewStar().Plan(rq, d)
}

func (e *Engine) wrapTotals(ctx context.Context, sel *ast.Select, rq *resolve.ResolvedQuery, d dialect.Dialect) (*ast.Select, error) {
	span, _ := opentracing.StartSpanFromContext(ctx, "engine.total_wrap")
	defer span.Finish()
	return plan.NewTotal().Wrap(sel, rq, d)
}

func (e *Engine) render(ctx context.Context, d dialect.Dialect, sel *ast.Select) string {
	span, _ := opentracing.StartSpanFromContext(ctx, "engine.render")
	defer span.Finish()
	return d.CompileSelect(sel)
}

func dimensionNames(rq *resolve.ResolvedQuery) []string {
	out := make([]string, len(rq.Dimensions))
	for i, d := range rq.Dimensions {
		out[i] = d.Name
	}
	return out
}

func directMeasureNames(rq *resolve.ResolvedQuery) []string {
	var out []string
	for _, m := range rq.Measures {
		if m.Direct {
			out = append(out, m.Name)
		}
	}
	for _, met := range rq.Metrics {
		out = append(out, met.Name)
	}
	return out
}
