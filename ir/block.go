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

package ir

import (
	"fmt"
	"strings"
)

type BasicBlock struct {
	Id   int
	Name string
	Ops  []*Op
	Pred []*BasicBlock
	Succ []*BasicBlock

	fn *Function
}

func (self *BasicBlock) Func() *Function {
	return self.fn
}

// Term returns the terminator of the block, or nil if the block is still
// under construction.
func (self *BasicBlock) Term() *Op {
	if n := len(self.Ops); n != 0 && self.Ops[n - 1].IsTerminator() {
		return self.Ops[n - 1]
	} else {
		return nil
	}
}

func (self *BasicBlock) append(op *Op) {
	if self.Term() != nil {
		panic(EInvariant(op, fmt.Sprintf("appending to terminated block bb_%d", self.Id)))
	}
	op.pos = len(self.Ops)
	op.Block = self
	self.Ops = append(self.Ops, op)
}

func (self *BasicBlock) remove(op *Op) {
	i := op.pos
	self.Ops = append(self.Ops[:i], self.Ops[i + 1:]...)

	/* only the positions of this block are affected */
	for j := i; j < len(self.Ops); j++ {
		self.Ops[j].pos = j
	}
}

func (self *BasicBlock) String() string {
	nb := len(self.Ops)
	ret := make([]string, 0, nb + 1)
	succ := make([]string, 0, len(self.Succ))

	/* successor list */
	for _, p := range self.Succ {
		succ = append(succ, fmt.Sprintf("bb_%d", p.Id))
	}

	/* block header */
	ret = append(ret, fmt.Sprintf(
		"bb_%d (%s) -> {%s}:",
		self.Id,
		self.Name,
		strings.Join(succ, ", "),
	))

	/* dump every operation */
	for _, op := range self.Ops {
		ret = append(ret, fmt.Sprintf("    %%%d = %s", op.Id, op))
	}

	/* join them together */
	return strings.Join(ret, "\n")
}
