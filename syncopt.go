/*
 * Copyright 2024 CloudWeGo Authors
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

// Package syncopt removes barriers and memory fences that order no hazard of
// a GPU kernel, and weakens the ones that order more than they have to.
package syncopt

import (
	"github.com/cloudwego/syncopt/internal/hbcheck"
	"github.com/cloudwego/syncopt/internal/opts"
	"github.com/cloudwego/syncopt/internal/syncelim"
	"github.com/cloudwego/syncopt/ir"
	"github.com/cloudwego/syncopt/platform"
)

// Summary counts the decisions taken on one function.
type Summary = syncelim.Summary

// Violation is a pair of memory operations that lost their ordering.
type Violation = hbcheck.Violation

func options(o []Option) *opts.Options {
	ret := opts.GetDefaultOptions()
	for _, fn := range o {
		fn(&ret)
	}
	return &ret
}

// Optimize rewrites fn in place for a platform with the given capabilities.
func Optimize(fn *ir.Function, caps platform.Caps, o ...Option) Summary {
	return syncelim.Optimize(fn, caps, options(o))
}

// Verify optimizes fn like Optimize does, and reports every pair of memory
// operations that was ordered before the rewrite but is not anymore. The
// result is empty unless the optimizer is broken.
func Verify(fn *ir.Function, caps platform.Caps, o ...Option) (Summary, []Violation) {
	before := hbcheck.Build(fn, caps)
	sum := syncelim.Optimize(fn, caps, options(o))
	return sum, hbcheck.Compare(before, hbcheck.Build(fn, caps))
}
