// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

package helper // import "github.com/logmerge/multiline/operator/helper"

import (
	"os"
	"sync"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/logmerge/multiline/entry"
)

var envPool = sync.Pool{
	New: func() any {
		return map[string]any{
			"env": os.Getenv,
		}
	},
}

// GetExprEnv returns a map of key/value pairs that can be used to evaluate an expression
func GetExprEnv(e *entry.Entry) map[string]any {
	env := envPool.Get().(map[string]any)
	env["fields"] = e.Fields
	env["tags"] = e.Tags
	env["metadata"] = e.Metadata
	env["observed_timestamp"] = e.ObservedTimestamp

	return env
}

// PutExprEnv adds a key/value pair that will can be used to evaluate an expression
func PutExprEnv(e map[string]any) {
	delete(e, "fields")
	delete(e, "tags")
	delete(e, "metadata")
	delete(e, "observed_timestamp")
	envPool.Put(e)
}

// ExprCompileBool compiles an expression that must evaluate to a boolean.
func ExprCompileBool(input string) (*vm.Program, error) {
	return expr.Compile(input, expr.AllowUndefinedVariables(), expr.AsBool())
}
