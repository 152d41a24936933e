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
	"github.com/cloudwego/syncopt/category"
	"github.com/cloudwego/syncopt/ir"
	"github.com/oleiade/lane"
)

type Direction uint8

const (
	Forward Direction = iota
	Backward
)

func (self Direction) String() string {
	switch self {
		case Forward  : return "forward"
		case Backward : return "backward"
		default       : return "???"
	}
}

// next returns the blocks a search in this direction continues into.
func (self Direction) next(bb *ir.BasicBlock) []*ir.BasicBlock {
	if self == Forward {
		return bb.Succ
	} else {
		return bb.Pred
	}
}

// entry is the position a search enters a block at.
func (self Direction) entry(bb *ir.BasicBlock) int {
	if self == Forward {
		return 0
	} else {
		return len(bb.Ops) - 1
	}
}

// step is the position right after op in this direction.
func (self Direction) step(op *ir.Op) int {
	if self == Forward {
		return op.Pos() + 1
	} else {
		return op.Pos() - 1
	}
}

// Collector receives the spans a search visits. A span is the positions
// [lo, hi) of one block, whole is set when it covers the entire block.
type Collector interface {
	Span(bb *ir.BasicBlock, lo int, hi int, whole bool)
	Boundary(op *ir.Op)
}

type _Seed struct {
	bb      *ir.BasicBlock
	at      int
	natural bool
}

// boundaryOf finds the first sync op of bb satisfying fn, scanning from
// position at in the direction of the search.
func (self *Context) boundaryOf(bb *ir.BasicBlock, at int, dir Direction, fn func(*ir.Op) bool) *ir.Op {
	ops := self.sync[bb.Id]

	/* forward scan */
	if dir == Forward {
		for _, op := range ops {
			if op.Pos() >= at && fn(op) {
				return op
			}
		}
		return nil
	}

	/* backward scan */
	for i := len(ops) - 1; i >= 0; i-- {
		if op := ops[i]; op.Pos() <= at && fn(op) {
			return op
		}
	}
	return nil
}

// Search walks the CFG from the op right after (or before) src until it
// meets an op satisfying boundary on every path, and hands every visited
// span to col. Only sync ops are ever tested against boundary.
func (self *Context) Search(src *ir.Op, dir Direction, boundary func(*ir.Op) bool, col Collector) {
	q := lane.NewQueue()
	seen := make(map[int]bool)

	/* start right next to the source op */
	for q.Enqueue(_Seed { bb: src.Block, at: dir.step(src) }); !q.Empty(); {
		var lo int
		var hi int
		var at int

		/* every block is entered naturally at most once */
		s := q.Dequeue().(_Seed)
		bb := s.bb

		/* check for natural entries */
		if !s.natural {
			at = s.at
		} else if seen[bb.Id] {
			continue
		} else {
			seen[bb.Id] = true
			at = dir.entry(bb)
		}

		/* find the boundary in this block */
		bd := self.boundaryOf(bb, at, dir, boundary)
		lo, hi = at, len(bb.Ops)

		/* compute the visited span */
		if dir == Forward {
			if bd != nil {
				hi = bd.Pos()
			}
		} else {
			if lo, hi = 0, at + 1; bd != nil {
				lo = bd.Pos() + 1
			}
		}

		/* hand it to the collector */
		if lo < hi {
			col.Span(bb, lo, hi, s.natural && bd == nil)
		}

		/* stop here if we have a boundary */
		if bd != nil {
			col.Boundary(bd)
			continue
		}

		/* continue into the neighbours */
		for _, nb := range dir.next(bb) {
			if !seen[nb.Id] {
				q.Enqueue(_Seed { bb: nb, natural: true })
			}
		}
	}
}

type _MaskCollector struct {
	ctx *Context
	ret category.Mask
}

func (self *_MaskCollector) Span(bb *ir.BasicBlock, lo int, hi int, whole bool) {
	if whole {
		self.ret |= self.ctx.blocks[bb.Id]
	} else {
		self.ret |= self.ctx.spanMask(bb, lo, hi)
	}
}

func (self *_MaskCollector) Boundary(_ *ir.Op) {}

// _ListCollector keeps the memory ops and the boundaries it met.
type _ListCollector struct {
	ctx    *Context
	ops    []*ir.Op
	bounds []*ir.Op
}

func (self *_ListCollector) Span(bb *ir.BasicBlock, lo int, hi int, _ bool) {
	self.ops = append(self.ops, self.ctx.span(bb, lo, hi)...)
}

func (self *_ListCollector) Boundary(op *ir.Op) {
	self.bounds = append(self.bounds, op)
}

func (self *_ListCollector) has(op *ir.Op) bool {
	for _, v := range self.bounds {
		if v == op {
			return true
		}
	}
	return false
}

// _SyncCollector keeps the sync ops inside the spans that satisfy match.
type _SyncCollector struct {
	ctx   *Context
	ops   []*ir.Op
	match func(*ir.Op) bool
}

func (self *_SyncCollector) Span(bb *ir.BasicBlock, lo int, hi int, _ bool) {
	for _, op := range self.ctx.syncSpan(bb, lo, hi) {
		if self.match(op) {
			self.ops = append(self.ops, op)
		}
	}
}

func (self *_SyncCollector) Boundary(_ *ir.Op) {}

// substituteOf returns the boundary predicate that stops at any op at least
// as strong as op.
func (self *Context) substituteOf(op *ir.Op) func(*ir.Op) bool {
	return func(x *ir.Op) bool {
		return IsSubstitute(self.cl, x, op)
	}
}

// LocalMask is the union of the categories visible from op in direction
// dir up to its nearest substitutes, restricted to what op interacts with.
func (self *Context) LocalMask(op *ir.Op, dir Direction) category.Mask {
	col := &_MaskCollector { ctx: self }
	self.Search(op, dir, self.substituteOf(op), col)
	return col.ret & self.defaultMask(op)
}

func (self *Context) localMasks(op *ir.Op) (category.Mask, category.Mask) {
	return self.LocalMask(op, Forward), self.LocalMask(op, Backward)
}

// collectOps lists the memory ops visible from op in direction dir, and the
// substitutes that bound them.
func (self *Context) collectOps(op *ir.Op, dir Direction) *_ListCollector {
	col := &_ListCollector { ctx: self }
	self.Search(op, dir, self.substituteOf(op), col)
	return col
}

// NextAreaMask is the union of the categories reachable after each barrier
// that is itself reachable from op without crossing a substitute of op. Every
// area extends up to the next barrier.
func (self *Context) NextAreaMask(op *ir.Op) category.Mask {
	var ret category.Mask
	bar := &_SyncCollector { ctx: self, match: (*ir.Op).IsBarrier }

	/* find all the barriers */
	self.Search(op, Forward, self.substituteOf(op), bar)

	/* collect every area behind them */
	for _, b := range bar.ops {
		col := &_MaskCollector { ctx: self }
		self.Search(b, Forward, (*ir.Op).IsBarrier, col)
		ret |= col.ret
	}

	/* only the categories this op interacts with */
	return ret & self.defaultMask(op)
}
