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
	"github.com/cloudwego/syncopt/explain"
	"github.com/cloudwego/syncopt/ir"
)

const (
	// InvalidationCases are the shapes a cache invalidation is needed for.
	InvalidationCases = category.WriteSyncRead | category.WriteSyncAtomic | category.AtomicSyncRead
)

// Reference returns the cases a synchronization instruction is obligated to
// cover. Fences give no ordering between atomics, but must always complete
// pending writes before the thread exits.
func (self *Context) Reference(op *ir.Op) category.Case {
	if op.IsBarrier() {
		return category.AllCases &^ self.disabled
	} else {
		return category.AllCases &^ category.AtomicSyncAtomic &^ self.disabled | category.WriteSyncRet
	}
}

// narrowable reports whether op is a global fence that also orders shared
// memory only because the platform couples the two.
func (self *Context) narrowable(op *ir.Op) bool {
	return op.Kind == ir.OpUntypedFence &&
		op.Fence.Global &&
		!self.cl.Caps.IndependentSharedFence
}

// needsInvalidation checks whether the invalidation effect of op is still
// observable by some read or atomic after it.
func (self *Context) needsInvalidation(op *ir.Op, fwd category.Mask, bwd category.Mask) bool {
	res := self.cl.InvalidationResources(op)
	if len(res) == 0 {
		return false
	}

	/* reads behind the next barrier see the invalidated caches as well */
	if fwd |= self.NextAreaMask(op); category.CaseMaskFor(fwd, bwd, res...) & InvalidationCases & self.Reference(op) != 0 {
		return true
	} else {
		return false
	}
}

// needsGlobalScope checks whether op must keep ordering the non-shared
// memory it covers.
func (self *Context) needsGlobalScope(op *ir.Op, fwd category.Mask, bwd category.Mask) bool {
	res := []category.Resource { category.ResBuffer, category.ResTyped, category.ResOutput }
	ref := self.Reference(op)
	cm := category.CaseMaskFor(fwd, bwd, res...) & ref

	/* a read followed by a write only matters once a barrier releases them */
	if cm == category.ReadSyncWrite {
		cm = category.CaseMaskFor(self.NextAreaMask(op), bwd, res...) & ref
	}

	/* atomics on global memory still need ordering */
	if cm != 0 {
		return true
	} else {
		return self.IsRequiredForAtomicOrdering(op, category.Buffer | category.Typed | category.Output)
	}
}

// IsRequiredForAtomicOrdering checks whether op is the nearest fence that
// orders some atomic before it, considering only the memory categories in
// filter. The atomic may be followed by anything, including the thread exit.
func (self *Context) IsRequiredForAtomicOrdering(op *ir.Op, filter category.Mask) bool {
	dm := self.defaultMask(op) & filter

	/* check every atomic before it */
	for _, at := range self.collectOps(op, Backward).ops {
		if !at.IsAtomic() {
			continue
		}

		/* the memory this atomic needs ordered */
		need := self.cl.AtomicTargetMask(self.Func, at) & dm
		if need == 0 {
			continue
		}

		/* find the nearest fences that order it */
		col := &_ListCollector { ctx: self }
		self.Search(at, Forward, func(x *ir.Op) bool { return x.IsFence() && self.defaultMask(x).Has(need) }, col)

		/* this op is the nearest one on some path */
		if col.has(op) {
			return true
		}
	}
	return false
}

// Evaluate decides the fate of one synchronization instruction and applies
// it right away.
func (self *Context) Evaluate(op *ir.Op) explain.Verdict {
	var cm category.Case
	var verdict explain.Verdict

	/* nothing this instruction could order is ever written */
	if self.writes & self.cl.DefaultWriteMask(op) == 0 {
		self.explain(op, explain.Redundant, 0, "no write it could order")
		self.erase(op)
		return explain.Redundant
	}

	/* the visible windows */
	fwd, bwd := self.localMasks(op)
	ref := self.Reference(op)

	/* partial reductions until nothing changes */
	for done := !op.IsFence(); !done; {
		done = true

		/* the invalidation effect is never observed */
		if op.HasInvalidation() && !self.needsInvalidation(op, fwd, bwd) {
			self.dropInvalidation(op)
			verdict |= explain.InvalidationDropped
			fwd, bwd, done = self.LocalMask(op, Forward), self.LocalMask(op, Backward), false
		}

		/* the global scope is never needed */
		if self.narrowable(op) && !self.needsGlobalScope(op, fwd, bwd) {
			self.narrow(op)
			verdict |= explain.Narrowed
			fwd, bwd, done = self.LocalMask(op, Forward), self.LocalMask(op, Backward), false
		}
	}

	/* the hazards around it */
	cm = category.CaseMaskFor(fwd, bwd) & ref
	req := cm != 0

	/* fences may still be needed for atomics or for the next area */
	if !req && op.IsFence() {
		if self.IsRequiredForAtomicOrdering(op, category.All) {
			req = true
		} else if area := self.NextAreaMask(op); area != 0 {
			cm = category.CaseMaskFor(fwd | area, bwd) & ref
			req = cm != 0
		}
	}

	/* keep it if anything is at stake */
	if req {
		verdict |= explain.Required
		self.commit(verdict)
		self.explain(op, verdict, cm, "required")
		return verdict
	}

	/* otherwise it is fully redundant, partial rewrites go with it */
	verdict = explain.Redundant
	self.explain(op, verdict, 0, "no hazard across it")
	self.erase(op)
	return verdict
}

func (self *Context) explain(op *ir.Op, verdict explain.Verdict, cm category.Case, reason string) {
	if !self.ex.Enabled() {
		return
	}

	/* collect the ops considered */
	fwd := self.collectOps(op, Forward)
	bwd := self.collectOps(op, Backward)

	/* build the entry */
	self.ex.Explain(explain.Entry {
		Func     : self.Func.Name,
		Op       : op.Id,
		Text     : op.String(),
		Verdict  : verdict,
		Cases    : cm,
		Forward  : opIds(fwd.ops, fwd.bounds),
		Backward : opIds(bwd.ops, bwd.bounds),
		Reason   : reason,
	})
}

func opIds(lists ...[]*ir.Op) []int {
	var ret []int
	for _, ops := range lists {
		for _, v := range ops {
			ret = append(ret, v.Id)
		}
	}
	return ret
}
