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

package kernel

import (
	"fmt"

	"github.com/brianvoe/gofakeit/v6"
)

var _RandomResources = []ResourceDesc {
	{ Name: "gbuf", Kind: "global" },
	{ Name: "sbuf", Kind: "shared" },
	{ Name: "rbuf", Kind: "readonly" },
	{ Name: "ubuf", Kind: "unknown" },
}

var _RandomMemoryOps = []string {
	"load global",
	"store global",
	"load shared",
	"store shared",
	"load constant",
	"load private",
	"store private",
	"load generic",
	"store generic",
	"ldraw res=%s",
	"straw res=%s",
	"typedread res=%s",
	"typedwrite res=%s",
	"sample res=%s",
	"atomic global",
	"atomic shared",
	"atomic generic res=%s",
	"atomiccounterinc res=gbuf",
	"typedatomic res=gbuf",
	"urbread",
	"urbwrite",
	"alu",
}

var _RandomSyncOps = []string {
	"barrier",
	"fence",
	"fence invalidate",
	"fence global",
	"fence global invalidate",
	"fence.slm",
	"fence.typed",
	"fence.typed invalidate",
	"fence.urb",
	"fence.lsc target=%s scope=%s op=%s",
}

// Generator produces random kernels for property tests and fuzzing of the
// passes. The same seed always produces the same kernels.
type Generator struct {
	MaxBlocks int
	MaxOps    int
	Calls     bool

	f *gofakeit.Faker
}

func NewGenerator(seed int64) *Generator {
	return &Generator {
		MaxBlocks : 5,
		MaxOps    : 8,
		f         : gofakeit.New(seed),
	}
}

// Kernel generates one kernel description.
func (self *Generator) Kernel(name string) *Desc {
	nb := self.f.Number(1, self.MaxBlocks)
	ret := &Desc {
		Name      : name,
		Resources : _RandomResources,
		Blocks    : make([]BlockDesc, nb),
	}

	/* generate every block */
	for i := range ret.Blocks {
		bd := &ret.Blocks[i]
		bd.Name = fmt.Sprintf("b%d", i)
		bd.Ops = []string{}

		/* fall through to the next block most of the time */
		if i != nb - 1 && self.f.Number(0, 3) != 0 {
			bd.Succ = append(bd.Succ, fmt.Sprintf("b%d", i + 1))
		}

		/* some random edges, including loops */
		if self.f.Number(0, 2) == 0 {
			bd.Succ = append(bd.Succ, fmt.Sprintf("b%d", self.f.Number(0, nb - 1)))
		}

		/* fill the block */
		for n := self.f.Number(0, self.MaxOps); n > 0; n-- {
			bd.Ops = append(bd.Ops, self.op())
		}
	}
	return ret
}

func (self *Generator) op() string {
	x := self.f.Number(0, 19)
	switch {
		case x < 7      : return self.sync()
		case x < 19     : return self.mem()
		case self.Calls : return "call"
		default         : return "alu"
	}
}

func (self *Generator) resource() string {
	return _RandomResources[self.f.Number(0, len(_RandomResources) - 1)].Name
}

func (self *Generator) mem() string {
	op := _RandomMemoryOps[self.f.Number(0, len(_RandomMemoryOps) - 1)]
	if op == "load generic" || op == "store generic" {
		return op + " res=" + self.resource()
	} else if n := len(op); n > 2 && op[n - 2:] == "%s" {
		return fmt.Sprintf(op, self.resource())
	} else {
		return op
	}
}

func (self *Generator) sync() string {
	op := _RandomSyncOps[self.f.Number(0, len(_RandomSyncOps) - 1)]
	if op != "fence.lsc target=%s scope=%s op=%s" {
		return op
	}
	return fmt.Sprintf(
		op,
		self.f.RandomString([]string { "ugm", "ugml", "tgm", "slm", "urb" }),
		self.f.RandomString([]string { "group", "local", "tile", "gpu", "gpus", "system" }),
		self.f.RandomString([]string { "none", "invalidate", "evict" }),
	)
}
