/*
 * Copyright 2023 The RuleGo Authors.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package js provides the goja-backed JavaScript execution helper used by
// the event-loop topology adapter, which pools Engine values for reuse: a
// VM wrapper that runs a priming script once at construction, evaluates
// script strings, and invokes a named guest function with exported
// (non-goja) argument/result values.
package js

import (
	"errors"

	"github.com/dop251/goja"
)

// Engine wraps a single pooled goja.Runtime, primed once with script.
type Engine struct {
	vm *goja.Runtime
}

// NewEngine creates an engine, running script once to prime globals and
// user-defined functions before any Invoke call.
func NewEngine(script string) (*Engine, error) {
	vm := goja.New()
	if script != "" {
		if _, err := vm.RunString(script); err != nil {
			return nil, err
		}
	}
	return &Engine{vm: vm}, nil
}

// Invoke calls a previously primed global function by name, converting args
// to goja values and the result back to a plain Go value via Export.
func (e *Engine) Invoke(funcName string, args ...any) (any, error) {
	params := make([]goja.Value, len(args))
	for i, v := range args {
		params[i] = e.vm.ToValue(v)
	}

	fn, ok := goja.AssertFunction(e.vm.Get(funcName))
	if !ok {
		return nil, errors.New(funcName + " is not a function")
	}

	res, err := fn(goja.Undefined(), params...)
	if err != nil {
		return nil, err
	}
	return res.Export(), nil
}

// RunString evaluates script against the engine's runtime, e.g. for a
// transition placeholder that stands in for dispatching into guest code.
func (e *Engine) RunString(script string) (any, error) {
	v, err := e.vm.RunString(script)
	if err != nil {
		return nil, err
	}
	return v.Export(), nil
}
