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

// Package category classifies kernel operations into the memory categories
// that matter for synchronization, and combines category masks into the
// hazard cases a synchronization instruction may have to cover.
package category

import (
	"fmt"
	"strings"
)

// Mask is a set of operation categories.
type Mask uint32

const (
	Atomic Mask = 1 << iota
	TypedRead
	TypedWrite
	OutputRead
	OutputWrite
	BufferRead
	BufferWrite
	SharedRead
	SharedWrite
	EndOfThread
)

const (
	None  Mask = 0
	Typed      = TypedRead | TypedWrite
	Output     = OutputRead | OutputWrite
	Buffer     = BufferRead | BufferWrite
	Shared     = SharedRead | SharedWrite

	AnyRead  = TypedRead | OutputRead | BufferRead | SharedRead
	AnyWrite = TypedWrite | OutputWrite | BufferWrite | SharedWrite | Atomic
	Memory   = Typed | Output | Buffer | Shared | Atomic
	All      = Memory | EndOfThread
)

var _MaskNames = [...]string {
	"atomic",
	"typed_read",
	"typed_write",
	"output_read",
	"output_write",
	"buffer_read",
	"buffer_write",
	"shared_read",
	"shared_write",
	"end_of_thread",
}

func (self Mask) Union(other Mask) Mask {
	return self | other
}

func (self Mask) Intersect(other Mask) Mask {
	return self & other
}

// Has reports whether every category of other is in self.
func (self Mask) Has(other Mask) bool {
	return self & other == other
}

func (self Mask) Overlaps(other Mask) bool {
	return self & other != 0
}

func (self Mask) Empty() bool {
	return self == 0
}

func (self Mask) String() string {
	var buf []string
	for i, name := range _MaskNames {
		if self & (1 << i) != 0 {
			buf = append(buf, name)
		}
	}

	/* bits outside of the known categories */
	if rem := self &^ All; rem != 0 {
		buf = append(buf, fmt.Sprintf("%#x", uint32(rem)))
	}

	/* empty set */
	if len(buf) == 0 {
		return "none"
	} else {
		return strings.Join(buf, "|")
	}
}

// Resource is a kind of memory with its own read/write category pair.
type Resource uint8

const (
	ResBuffer Resource = iota
	ResShared
	ResTyped
	ResOutput
)

// Resources lists every resource kind.
var Resources = []Resource {
	ResBuffer,
	ResShared,
	ResTyped,
	ResOutput,
}

var _ResourceBits = [...][2]Mask {
	ResBuffer : { BufferRead, BufferWrite },
	ResShared : { SharedRead, SharedWrite },
	ResTyped  : { TypedRead, TypedWrite },
	ResOutput : { OutputRead, OutputWrite },
}

func (self Resource) Read() Mask {
	return _ResourceBits[self][0]
}

func (self Resource) Write() Mask {
	return _ResourceBits[self][1]
}

// Outlives reports whether the memory stays observable after the thread
// group exits, which makes a pending write at thread exit a hazard.
func (self Resource) Outlives() bool {
	return self != ResShared
}

func (self Resource) String() string {
	switch self {
		case ResBuffer : return "buffer"
		case ResShared : return "shared"
		case ResTyped  : return "typed"
		case ResOutput : return "output"
		default        : return fmt.Sprintf("Resource(%d)", uint8(self))
	}
}
