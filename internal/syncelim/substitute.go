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
)

// IsSubstitute reports whether cand is provably at least as strong as ref.
// Only instructions of the same kind may substitute each other.
func IsSubstitute(cl category.Classifier, cand *ir.Op, ref *ir.Op) bool {
	if cand.Kind != ref.Kind {
		return false
	}

	/* check for the instruction kind */
	switch cand.Kind {
		case ir.OpBarrier, ir.OpSharedFence, ir.OpOutputFence: {
			return true
		}

		case ir.OpUntypedFence, ir.OpTypedFence: {
			return cl.DefaultMask(cand).Has(cl.DefaultMask(ref)) && (cand.Fence.Invalidate || !ref.Fence.Invalidate)
		}

		case ir.OpUnifiedFence: {
			return cl.DefaultMask(cand).Has(cl.DefaultMask(ref)) &&
				cand.Fence.Scope >= ref.Fence.Scope &&
				coversFenceOp(cand.Fence.Op, ref.Fence.Op)
		}

		default: {
			panic(ir.EInvariant(cand, "not a synchronization instruction"))
		}
	}
}

func coversFenceOp(cand ir.FenceOp, ref ir.FenceOp) bool {
	return cand == ref || ref == ir.FenceNone || (cand == ir.FenceEvict && ref == ir.FenceInvalidate)
}
