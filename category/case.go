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

package category

import (
	"fmt"
	"strings"
)

// Case is a set of hazard shapes around a synchronization instruction, each
// one named after what is before the instruction and what is after it.
type Case uint16

const (
	ReadSyncWrite Case = 1 << iota
	WriteSyncWrite
	AtomicSyncRead
	AtomicSyncWrite
	WriteSyncAtomic
	ReadSyncAtomic
	WriteSyncRead
	AtomicSyncAtomic
	WriteSyncRet

	AllCases Case = 1 << iota - 1
)

var _CaseNames = [...]string {
	"read_sync_write",
	"write_sync_write",
	"atomic_sync_read",
	"atomic_sync_write",
	"write_sync_atomic",
	"read_sync_atomic",
	"write_sync_read",
	"atomic_sync_atomic",
	"write_sync_ret",
}

func (self Case) String() string {
	var buf []string
	for i, name := range _CaseNames {
		if self & (1 << i) != 0 {
			buf = append(buf, name)
		}
	}

	/* bits outside of the known cases */
	if rem := self &^ AllCases; rem != 0 {
		buf = append(buf, fmt.Sprintf("%#x", uint16(rem)))
	}

	/* empty set */
	if len(buf) == 0 {
		return "none"
	} else {
		return strings.Join(buf, "|")
	}
}

// ParseCases converts a list of case names into a Case set.
func ParseCases(names []string) (Case, error) {
	var ret Case
	for _, name := range names {
		if i := indexOf(_CaseNames[:], strings.TrimSpace(name)); i < 0 {
			return 0, fmt.Errorf("unknown synchronization case %q", name)
		} else {
			ret |= 1 << i
		}
	}
	return ret, nil
}

func indexOf(names []string, s string) int {
	for i, v := range names {
		if v == s {
			return i
		}
	}
	return -1
}

// CaseMask computes the hazard shapes for one resource, given the categories
// reachable after (fwd) and before (bwd) the synchronization instruction.
func CaseMask(fwd Mask, bwd Mask, res Resource) Case {
	var ret Case
	rd, wr := res.Read(), res.Write()

	/* what was there before the instruction */
	br := bwd & rd != 0
	bw := bwd & wr != 0
	ba := bwd & Atomic != 0

	/* what comes after it */
	fr := fwd & rd != 0
	fw := fwd & wr != 0
	fa := fwd & Atomic != 0
	fe := fwd & EndOfThread != 0

	/* enumerate every shape */
	if br && fw { ret |= ReadSyncWrite }
	if bw && fw { ret |= WriteSyncWrite }
	if ba && fr { ret |= AtomicSyncRead }
	if ba && fw { ret |= AtomicSyncWrite }
	if bw && fa { ret |= WriteSyncAtomic }
	if br && fa { ret |= ReadSyncAtomic }
	if bw && fr { ret |= WriteSyncRead }
	if ba && fa { ret |= AtomicSyncAtomic }

	/* pending writes at thread exit */
	if bw && fe && res.Outlives() {
		ret |= WriteSyncRet
	}
	return ret
}

// CaseMaskFor unions CaseMask over the given resources. With no resources
// at all it covers every resource kind.
func CaseMaskFor(fwd Mask, bwd Mask, res ...Resource) Case {
	var ret Case
	if len(res) == 0 {
		res = Resources
	}
	for _, r := range res {
		ret |= CaseMask(fwd, bwd, r)
	}
	return ret
}
