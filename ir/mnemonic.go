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
	"strings"
)

var _Mnemonics = [...]string {
	OpNop           : "nop",
	OpALU           : "alu",
	OpLoad          : "load",
	OpStore         : "store",
	OpBufferLoad    : "ldraw",
	OpBufferStore   : "straw",
	OpTypedRead     : "typedread",
	OpTypedWrite    : "typedwrite",
	OpSample        : "sample",
	OpAtomic        : "atomic",
	OpAtomicCounter : "atomiccounterinc",
	OpTypedAtomic   : "typedatomic",
	OpOutputRead    : "urbread",
	OpOutputWrite   : "urbwrite",
	OpCall          : "call",
	OpBarrier       : "barrier",
	OpUntypedFence  : "fence",
	OpSharedFence   : "fence.slm",
	OpTypedFence    : "fence.typed",
	OpOutputFence   : "fence.urb",
	OpUnifiedFence  : "fence.lsc",
	OpBranch        : "br",
	OpReturn        : "ret",
}

var _SpaceNames = [...]string {
	SpacePrivate  : "private",
	SpaceGlobal   : "global",
	SpaceConstant : "constant",
	SpaceShared   : "shared",
	SpaceGeneric  : "generic",
}

var _ResourceNames = [...]string {
	ResourceUnknown  : "unknown",
	ResourceGlobal   : "global",
	ResourceShared   : "shared",
	ResourceReadOnly : "readonly",
}

var _FenceOpNames = [...]string {
	FenceNone       : "none",
	FenceInvalidate : "invalidate",
	FenceEvict      : "evict",
}

var _TargetNames = [...]string {
	TargetUGM  : "ugm",
	TargetUGML : "ugml",
	TargetTGM  : "tgm",
	TargetSLM  : "slm",
	TargetURB  : "urb",
}

var _ScopeNames = [...]string {
	ScopeGroup  : "group",
	ScopeLocal  : "local",
	ScopeTile   : "tile",
	ScopeGPU    : "gpu",
	ScopeGPUs   : "gpus",
	ScopeSystem : "system",
}

func lookup(names []string, s string) (int, bool) {
	for i, v := range names {
		if v == s {
			return i, true
		}
	}
	return 0, false
}

// ParseResourceKind converts the textual resource kind used by kernel files.
func ParseResourceKind(s string) (ResourceKind, bool) {
	i, ok := lookup(_ResourceNames[:], s)
	return ResourceKind(i), ok
}

// OpSpec is the parsed form of a textual operation, before the resource name
// is bound to a resource index of a function.
type OpSpec struct {
	Kind  OpKind
	Space AddressSpace
	Addr  string
	Res   string
	Fence FenceAttrs
}

// ParseOp parses the textual operation syntax produced by Op.String, e.g.
// "store shared @addr", "fence global invalidate" or
// "fence.lsc target=ugm scope=gpu op=evict".
func ParseOp(src string) (OpSpec, error) {
	var ret OpSpec
	fields := strings.Fields(src)

	/* must have a mnemonic */
	if len(fields) == 0 {
		return ret, ESyntax(0, src, "empty operation")
	}

	/* find the op kind */
	kind, ok := lookup(_Mnemonics[:], fields[0])
	if !ok {
		return ret, ESyntax(0, src, "unknown mnemonic "+fields[0])
	}

	/* unified fences default to the untyped global target */
	ret.Kind = OpKind(kind)
	ret.Fence.Scope = ScopeGPU
	pos := len(fields[0])

	/* parse every operand */
	for _, f := range fields[1:] {
		pos = strings.Index(src[pos:], f) + pos
		key, val, kv := strings.Cut(f, "=")

		/* symbolic address */
		if strings.HasPrefix(f, "@") {
			ret.Addr = f[1:]
			continue
		}

		/* address space keywords */
		if sp, ok := lookup(_SpaceNames[:], f); ok && !kv {
			if f == "global" && (ret.Kind == OpUntypedFence) {
				ret.Fence.Global = true
			} else {
				ret.Space = AddressSpace(sp)
			}
			continue
		}

		/* flags */
		if !kv {
			switch f {
				case "invalidate" : ret.Fence.Invalidate = true
				default           : return ret, ESyntax(pos, src, "unknown flag "+f)
			}
			continue
		}

		/* key-value operands */
		switch key {
			default: {
				return ret, ESyntax(pos, src, "unknown operand "+key)
			}

			case "res": {
				ret.Res = val
			}

			case "target": {
				if v, ok := lookup(_TargetNames[:], val); !ok {
					return ret, ESyntax(pos, src, "unknown memory target "+val)
				} else {
					ret.Fence.Target = MemoryTarget(v)
				}
			}

			case "scope": {
				if v, ok := lookup(_ScopeNames[:], val); !ok {
					return ret, ESyntax(pos, src, "unknown scope "+val)
				} else {
					ret.Fence.Scope = Scope(v)
				}
			}

			case "op": {
				if v, ok := lookup(_FenceOpNames[:], val); !ok {
					return ret, ESyntax(pos, src, "unknown fence operation "+val)
				} else {
					ret.Fence.Op = FenceOp(v)
				}
			}
		}
	}

	/* all done */
	return ret, nil
}
