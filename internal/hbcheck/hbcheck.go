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

// Package hbcheck is a reference ordering checker. It works on a plain
// operation graph, with no caches and no substitution shortcuts, and tells
// which pairs of memory operations may execute without any synchronization
// instruction ordering them.
package hbcheck

import (
	"fmt"
	"sort"

	"github.com/cloudwego/syncopt/category"
	"github.com/cloudwego/syncopt/ir"
	"github.com/cloudwego/syncopt/platform"
	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/traverse"
)

// Class is the kind of ordering a synchronization instruction provides.
type Class uint8

const (
	// Ordering is the completion and visibility ordering of the hazard
	// cases, excluding read followed by write for fences.
	Ordering Class = iota

	// Invalidation is the cache invalidation needed by reads and atomics
	// after a write.
	Invalidation
)

func (self Class) String() string {
	switch self {
		case Ordering     : return "ordering"
		case Invalidation : return "invalidation"
		default           : return fmt.Sprintf("Class(%d)", uint8(self))
	}
}

const (
	_InvalidationCases = category.WriteSyncRead | category.WriteSyncAtomic | category.AtomicSyncRead
)

// Graph is a snapshot of a function as an operation level graph. Sync ops
// are copied by value, so later rewrites of the function do not affect it.
type Graph struct {
	cl    category.Classifier
	g     *simple.DirectedGraph
	cats  map[int64]category.Mask
	syncs map[int64]ir.Op
	mem   []int64
}

// Build takes a snapshot of fn.
func Build(fn *ir.Function, caps platform.Caps) *Graph {
	caps.DisabledCases = 0
	cl := category.NewClassifier(caps)

	/* create the graph */
	ret := &Graph {
		cl    : cl,
		g     : simple.NewDirectedGraph(),
		cats  : make(map[int64]category.Mask),
		syncs : make(map[int64]ir.Op),
	}

	/* add every live op */
	for _, bb := range fn.Blocks {
		for _, op := range bb.Ops {
			id := int64(op.Id)
			ret.g.AddNode(simple.Node(id))

			/* sync ops and memory ops */
			if op.IsSync() {
				ret.syncs[id] = *op
			} else if m := cl.Category(fn, op); m != 0 {
				ret.cats[id] = m
				ret.mem = append(ret.mem, id)
			}
		}
	}

	/* add every edge */
	for _, bb := range fn.Blocks {
		for i := 1; i < len(bb.Ops); i++ {
			ret.link(bb.Ops[i - 1], bb.Ops[i])
		}
		for _, succ := range bb.Succ {
			ret.link(bb.Ops[len(bb.Ops) - 1], succ.Ops[0])
		}
	}
	return ret
}

func (self *Graph) link(from *ir.Op, to *ir.Op) {
	if from != to {
		self.g.SetEdge(self.g.NewEdge(simple.Node(from.Id), simple.Node(to.Id)))
	}
}

// Reference is the set of cases sync op s has to order.
func Reference(s *ir.Op) category.Case {
	if s.IsBarrier() {
		return category.AllCases
	} else {
		return category.AllCases &^ category.AtomicSyncAtomic &^ category.ReadSyncWrite | category.WriteSyncRet
	}
}

func invalidates(s *ir.Op) bool {
	return s.HasInvalidation() || (s.Kind == ir.OpUnifiedFence && s.Fence.Op == ir.FenceEvict)
}

// Covers reports whether sync op s orders memory op a before memory op b.
func (self *Graph) Covers(s *ir.Op, a int64, b int64, class Class) bool {
	dm := self.cl.DefaultMask(s)
	ca := self.cats[a] & dm
	cb := self.cats[b] & dm

	/* check for the ordering class */
	switch class {
		case Ordering: {
			return category.CaseMaskFor(cb, ca) & Reference(s) != 0
		}

		case Invalidation: {
			if res := self.cl.InvalidationResources(s); len(res) == 0 || !invalidates(s) {
				return false
			} else {
				return category.CaseMaskFor(cb, ca, res...) & _InvalidationCases != 0
			}
		}

		default: {
			panic("hbcheck: invalid ordering class")
		}
	}
}

// Unprotected reports whether some path leads from a to b without going
// through a sync op that orders them.
func (self *Graph) Unprotected(a int64, b int64, class Class) bool {
	blocked := func(n graph.Node) bool {
		if s, ok := self.syncs[n.ID()]; ok {
			return self.Covers(&s, a, b, class)
		} else {
			return false
		}
	}

	/* never step onto an ordering sync op */
	bfs := traverse.BreadthFirst {
		Traverse: func(e graph.Edge) bool { return !blocked(e.To()) },
	}

	/* start from every successor, so a can also reach itself */
	for it := self.g.From(a); it.Next(); {
		if n := it.Node(); !blocked(n) {
			if bfs.Walk(self.g, n, func(n graph.Node, _ int) bool { return n.ID() == b }) != nil {
				return true
			}
		}
	}
	return false
}

// Violation is a pair of memory ops that became unordered.
type Violation struct {
	A     int
	B     int
	Class Class
}

func (self Violation) String() string {
	return fmt.Sprintf("%%%d -> %%%d: lost %s", self.A, self.B, self.Class)
}

// Compare lists every pair of memory ops that is ordered in before but not in
// after. Both snapshots must be of the same function.
func Compare(before *Graph, after *Graph) []Violation {
	var ret []Violation
	for _, a := range before.mem {
		for _, b := range before.mem {
			for _, class := range []Class { Ordering, Invalidation } {
				if after.Unprotected(a, b, class) && !before.Unprotected(a, b, class) {
					ret = append(ret, Violation { A: int(a), B: int(b), Class: class })
				}
			}
		}
	}

	/* stable order */
	sort.Slice(ret, func(i int, j int) bool {
		if ret[i].A != ret[j].A {
			return ret[i].A < ret[j].A
		} else if ret[i].B != ret[j].B {
			return ret[i].B < ret[j].B
		} else {
			return ret[i].Class < ret[j].Class
		}
	})
	return ret
}
