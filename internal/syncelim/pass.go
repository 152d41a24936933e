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

// Package syncelim removes or weakens synchronization instructions that do
// not order any hazard of a kernel.
package syncelim

import (
	"sync/atomic"

	"github.com/cloudwego/syncopt/category"
	"github.com/cloudwego/syncopt/explain"
	"github.com/cloudwego/syncopt/internal/opts"
	"github.com/cloudwego/syncopt/ir"
	"github.com/cloudwego/syncopt/platform"
)

type Pass interface {
	Apply(*Context, *Summary)
}

type PassDescriptor struct {
	Pass Pass
	Name string
}

// Summary counts the decisions of one run.
type Summary struct {
	Kept                int
	Removed             int
	Narrowed            int
	InvalidationDropped int
}

func (self *Summary) add(v explain.Verdict) {
	if v & explain.Required != 0 {
		self.Kept++
	}
	if v & explain.Redundant != 0 {
		self.Removed++
	}
	if v & explain.Narrowed != 0 {
		self.Narrowed++
	}
	if v & explain.InvalidationDropped != 0 {
		self.InvalidationDropped++
	}
}

// KindElim evaluates every live instruction of one synchronization kind, in
// discovery order.
type KindElim struct {
	Kind ir.OpKind
}

func (self KindElim) Apply(ctx *Context, sum *Summary) {
	for _, op := range ctx.SyncOps(self.Kind) {
		if op.Live() {
			sum.add(ctx.Evaluate(op))
		}
	}
}

// Passes is the processing order: barriers first, then every fence kind.
var Passes = [...]PassDescriptor {
	{ Name: "Barrier Elimination"         , Pass: KindElim { ir.OpBarrier } },
	{ Name: "Untyped Fence Elimination"   , Pass: KindElim { ir.OpUntypedFence } },
	{ Name: "Shared Fence Elimination"    , Pass: KindElim { ir.OpSharedFence } },
	{ Name: "Typed Fence Elimination"     , Pass: KindElim { ir.OpTypedFence } },
	{ Name: "Output Fence Elimination"    , Pass: KindElim { ir.OpOutputFence } },
	{ Name: "Unified Fence Elimination"   , Pass: KindElim { ir.OpUnifiedFence } },
}

// Optimize runs every pass over fn, rewriting it in place.
func Optimize(fn *ir.Function, caps platform.Caps, o *opts.Options) (sum Summary) {
	if o.Disable {
		return
	}

	/* build the caches once */
	atomic.AddInt64(&FuncCount, 1)
	ctx := GatherInstructions(fn, category.NewClassifier(caps), o)

	/* run every pass in order */
	for _, p := range Passes {
		p.Pass.Apply(ctx, &sum)
	}
	return
}
