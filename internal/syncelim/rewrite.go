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

package syncelim

import (
	"sync/atomic"

	"github.com/cloudwego/syncopt/explain"
	"github.com/cloudwego/syncopt/ir"
)

var (
	FuncCount         int64
	RemovedCount      int64
	NarrowedCount     int64
	InvalidationCount int64
)

// erase removes op from the function. Sync ops have no category, so the
// block masks and the function write mask stay exact.
func (self *Context) erase(op *ir.Op) {
	self.forget(op)
	self.Func.Erase(op)
	atomic.AddInt64(&RemovedCount, 1)
}

// dropInvalidation clears the invalidation effect of a fence.
func (self *Context) dropInvalidation(op *ir.Op) {
	switch op.Kind {
		case ir.OpUntypedFence, ir.OpTypedFence : op.Fence.Invalidate = false
		case ir.OpUnifiedFence                  : op.Fence.Op = ir.FenceNone
		default                                 : panic(ir.EInvariant(op, "dropping invalidation of a non-invalidating op"))
	}
}

// narrow restricts a global fence to the shared memory.
func (self *Context) narrow(op *ir.Op) {
	if op.Kind != ir.OpUntypedFence || !op.Fence.Global {
		panic(ir.EInvariant(op, "narrowing a non-global fence"))
	}
	op.Fence.Global = false
}

// commit counts the partial rewrites of an op that survived.
func (self *Context) commit(v explain.Verdict) {
	if v & explain.Narrowed != 0 {
		atomic.AddInt64(&NarrowedCount, 1)
	}
	if v & explain.InvalidationDropped != 0 {
		atomic.AddInt64(&InvalidationCount, 1)
	}
}
