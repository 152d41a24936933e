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
	"sort"

	"github.com/cloudwego/syncopt/category"
	"github.com/cloudwego/syncopt/explain"
	"github.com/cloudwego/syncopt/internal/opts"
	"github.com/cloudwego/syncopt/ir"
)

// Context is the analysis state of one function. It is built once when the
// pass starts and kept consistent with every rewrite until the pass ends.
type Context struct {
	Func *ir.Function

	cl       category.Classifier
	ex       explain.Explainer
	disabled category.Case

	cats   []category.Mask   // by op id
	mem    [][]*ir.Op        // by block id, ops with a category in block order
	sync   [][]*ir.Op        // by block id, live sync ops in block order
	blocks []category.Mask   // by block id, union of the categories in the block
	writes category.Mask     // union of the writes in the function
	kinds  map[ir.OpKind][]*ir.Op
}

// GatherInstructions builds the analysis caches of fn.
func GatherInstructions(fn *ir.Function, cl category.Classifier, o *opts.Options) *Context {
	nb := len(fn.Blocks)
	ctx := &Context {
		Func     : fn,
		cl       : cl,
		ex       : o.Explain(),
		disabled : o.Disabled(cl.Caps.DisabledCases),
		cats     : make([]category.Mask, len(fn.Arena)),
		mem      : make([][]*ir.Op, nb),
		sync     : make([][]*ir.Op, nb),
		blocks   : make([]category.Mask, nb),
		kinds    : make(map[ir.OpKind][]*ir.Op),
	}

	/* scan every block in order */
	for _, bb := range fn.Blocks {
		for _, op := range bb.Ops {
			if op.IsSync() {
				ctx.sync[bb.Id] = append(ctx.sync[bb.Id], op)
				ctx.kinds[op.Kind] = append(ctx.kinds[op.Kind], op)
			} else if m := cl.Category(fn, op); m != 0 {
				ctx.cats[op.Id] = m
				ctx.mem[bb.Id] = append(ctx.mem[bb.Id], op)
				ctx.blocks[bb.Id] |= m
				ctx.writes |= m & category.AnyWrite
			}
		}
	}
	return ctx
}

// Category returns the cached category of op.
func (self *Context) Category(op *ir.Op) category.Mask {
	return self.cats[op.Id]
}

// Classifier returns the classifier the context was built with.
func (self *Context) Classifier() category.Classifier {
	return self.cl
}

// Writes returns the union of every write category in the function.
func (self *Context) Writes() category.Mask {
	return self.writes
}

// SyncOps returns the live sync ops of the given kind in discovery order.
func (self *Context) SyncOps(kind ir.OpKind) []*ir.Op {
	return self.kinds[kind]
}

func (self *Context) defaultMask(op *ir.Op) category.Mask {
	return self.cl.DefaultMask(op)
}

// span returns the memory ops of bb whose position is in [lo, hi).
func (self *Context) span(bb *ir.BasicBlock, lo int, hi int) []*ir.Op {
	ops := self.mem[bb.Id]
	i := sort.Search(len(ops), func(i int) bool { return ops[i].Pos() >= lo })
	j := sort.Search(len(ops), func(i int) bool { return ops[i].Pos() >= hi })
	return ops[i:j]
}

func (self *Context) spanMask(bb *ir.BasicBlock, lo int, hi int) category.Mask {
	var ret category.Mask
	for _, op := range self.span(bb, lo, hi) {
		ret |= self.cats[op.Id]
	}
	return ret
}

// syncSpan is span for the sync ops of bb.
func (self *Context) syncSpan(bb *ir.BasicBlock, lo int, hi int) []*ir.Op {
	ops := self.sync[bb.Id]
	i := sort.Search(len(ops), func(i int) bool { return ops[i].Pos() >= lo })
	j := sort.Search(len(ops), func(i int) bool { return ops[i].Pos() >= hi })
	return ops[i:j]
}

// forget drops op from the sync caches, it must be called before the op is
// erased from its block.
func (self *Context) forget(op *ir.Op) {
	ops := self.sync[op.Block.Id]
	for i, v := range ops {
		if v == op {
			self.sync[op.Block.Id] = append(ops[:i], ops[i + 1:]...)
			return
		}
	}
	panic(ir.EInvariant(op, "sync op is not cached"))
}
