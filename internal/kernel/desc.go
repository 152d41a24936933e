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

// Package kernel converts kernels between their interchange forms and the
// in-memory CFG.
package kernel

import (
	"fmt"

	"github.com/cloudwego/syncopt/ir"
)

// Desc is the serializable form of a kernel. Block terminators are implied
// by the successor lists: a block without successors returns.
type Desc struct {
	Name      string         `toml:"name"     msgpack:"name"`
	Resources []ResourceDesc `toml:"resource" msgpack:"resources"`
	Blocks    []BlockDesc    `toml:"block"    msgpack:"blocks"`
}

type ResourceDesc struct {
	Name string `toml:"name" msgpack:"name"`
	Kind string `toml:"kind" msgpack:"kind"`
}

type BlockDesc struct {
	Name string   `toml:"name"           msgpack:"name"`
	Succ []string `toml:"succ,omitempty" msgpack:"succ"`
	Ops  []string `toml:"ops"            msgpack:"ops"`
}

// Lower builds the CFG described by d.
func Lower(d *Desc) (*ir.Function, error) {
	b := ir.NewBuilder(d.Name)
	res := make(map[string]int, len(d.Resources))

	/* must have at least one block */
	if len(d.Blocks) == 0 {
		return nil, fmt.Errorf("kernel %s: no blocks", d.Name)
	}

	/* bind every resource */
	for _, r := range d.Resources {
		if kind, ok := ir.ParseResourceKind(r.Kind); !ok {
			return nil, fmt.Errorf("kernel %s: resource %s: unknown kind %q", d.Name, r.Name, r.Kind)
		} else if _, ok = res[r.Name]; ok {
			return nil, fmt.Errorf("kernel %s: duplicated resource %s", d.Name, r.Name)
		} else {
			res[r.Name] = b.Resource(r.Name, kind)
		}
	}

	/* create the blocks in order, so the first one is the entry */
	names := make(map[string]bool, len(d.Blocks))
	for _, bd := range d.Blocks {
		if names[bd.Name] {
			return nil, fmt.Errorf("kernel %s: duplicated block %s", d.Name, bd.Name)
		}
		names[bd.Name] = true
		b.Block(bd.Name)
	}

	/* emit every block */
	for _, bd := range d.Blocks {
		b.Block(bd.Name)
		for i, src := range bd.Ops {
			if err := emit(b, res, src); err != nil {
				return nil, fmt.Errorf("kernel %s: block %s: op %d: %w", d.Name, bd.Name, i, err)
			}
		}

		/* check all the successors */
		for _, s := range bd.Succ {
			if !names[s] {
				return nil, fmt.Errorf("kernel %s: block %s: unknown successor %s", d.Name, bd.Name, s)
			}
		}

		/* implied terminator */
		if len(bd.Succ) == 0 {
			b.Return()
		} else {
			b.Jump(bd.Succ...)
		}
	}

	/* verify the result */
	return b.Build()
}

func emit(b *ir.Builder, res map[string]int, src string) error {
	var ok bool
	var op ir.Op

	/* parse the operation */
	spec, err := ir.ParseOp(src)
	if err != nil {
		return err
	}

	/* terminators are implied */
	if spec.Kind == ir.OpBranch || spec.Kind == ir.OpReturn {
		return ir.ESyntax(0, src, "explicit terminator")
	}

	/* resolve the resource */
	if spec.Res != "" {
		if op.Res, ok = res[spec.Res]; !ok {
			return ir.ESyntax(0, src, "unknown resource "+spec.Res)
		}
	}

	/* emit the operation */
	op.Kind = spec.Kind
	op.Space = spec.Space
	op.Addr = spec.Addr
	op.Fence = spec.Fence
	b.Emit(op)
	return nil
}

// Describe is the inverse of Lower. Only live ops are described.
func Describe(fn *ir.Function) *Desc {
	ret := &Desc {
		Name      : fn.Name,
		Resources : make([]ResourceDesc, 0, len(fn.Resources)),
		Blocks    : make([]BlockDesc, 0, len(fn.Blocks)),
	}

	/* dump every resource */
	for _, r := range fn.Resources {
		ret.Resources = append(ret.Resources, ResourceDesc {
			Name: r.Name,
			Kind: r.Kind.String(),
		})
	}

	/* dump every block */
	for _, bb := range fn.Blocks {
		bd := BlockDesc { Name: blockName(bb), Ops: []string{} }

		/* successors */
		for _, s := range bb.Succ {
			bd.Succ = append(bd.Succ, blockName(s))
		}

		/* operations, without the terminator */
		for _, op := range bb.Ops {
			if !op.IsTerminator() {
				bd.Ops = append(bd.Ops, op.String())
			}
		}
		ret.Blocks = append(ret.Blocks, bd)
	}
	return ret
}

func blockName(bb *ir.BasicBlock) string {
	if bb.Name != "" {
		return bb.Name
	} else {
		return fmt.Sprintf("bb_%d", bb.Id)
	}
}
