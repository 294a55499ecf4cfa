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

// obmlc compiles one OBML model/query YAML pair to SQL text for a chosen
// dialect and prints the result to stdout.
package main

import (
	"context"
	"fmt"
	"os"

	flags "github.com/jessevdk/go-flags"
	yaml "gopkg.in/yaml.v2"

	"github.com/sembench/obmlc/engine"
	"github.com/sembench/obmlc/obml"
)

type options struct {
	Model   string `short:"m" long:"model" description:"path to the OBML semantic model YAML file" required:"true"`
	Query   string `short:"q" long:"query" description:"path to the OBML query YAML file" required:"true"`
	Dialect string `short:"d" long:"dialect" description:"target SQL dialect (postgres, snowflake, clickhouse, databricks, dremio)" default:"postgres"`
	Strict  bool   `long:"strict" description:"reject the model if semantic validation reports any warning"`
}

func main() {
	var opts options
	if _, err := flags.Parse(&opts); err != nil {
		os.Exit(flagsExitCode(err))
	}

	if err := run(opts); err != nil {
		fmt.Fprintln(os.Stderr, "obmlc:", err)
		os.Exit(1)
	}
}

func run(opts options) error {
	modelData, err := os.ReadFile(opts.Model)
	if err != nil {
		return fmt.Errorf("reading model file: %w", err)
	}
	queryData, err := os.ReadFile(opts.Query)
	if err != nil {
		return fmt.Errorf("reading query file: %w", err)
	}

	var query obml.Query
	if err := yaml.Unmarshal(queryData, &query); err != nil {
		return fmt.Errorf("parsing query file: %w", err)
	}

	cfg := engine.DefaultConfig()
	cfg.StrictMode = opts.Strict
	cfg.DefaultDialect = opts.Dialect
	e := engine.New(cfg)

	modelID, err := e.Models.Load(modelData)
	if err != nil {
		return fmt.Errorf("loading model: %w", err)
	}

	result, err := e.Compile(context.Background(), modelID, &query, opts.Dialect)
	if err != nil {
		return fmt.Errorf("compiling query: %w", err)
	}

	fmt.Println(result.SQL)
	for _, w := range result.Warnings {
		fmt.Fprintln(os.Stderr, "warning:", w)
	}
	return nil
}

// flagsExitCode maps a go-flags parse error to a process exit code: 0 for
// an explicit --help request, 1 for any real usage error.
func flagsExitCode(err error) int {
	if ferr, ok := err.(*flags.Error); ok && ferr.Type == flags.ErrHelp {
		return 0
	}
	return 1
}
