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

// Package explain records why the synchronization passes kept, weakened or
// removed each synchronization instruction. It is a developer facility, the
// production pipeline runs with Nop.
package explain

import (
	"fmt"
	"io"
	"strings"

	"github.com/cloudwego/syncopt/category"
	"github.com/davecgh/go-spew/spew"
)

type Verdict uint8

const (
	Required Verdict = 1 << iota
	Redundant
	Narrowed
	InvalidationDropped
)

func (self Verdict) String() string {
	var buf []string
	if self & Required != 0 {
		buf = append(buf, "required")
	}
	if self & Redundant != 0 {
		buf = append(buf, "redundant")
	}
	if self & Narrowed != 0 {
		buf = append(buf, "narrowed")
	}
	if self & InvalidationDropped != 0 {
		buf = append(buf, "invalidation-dropped")
	}
	if len(buf) == 0 {
		return "none"
	} else {
		return strings.Join(buf, "+")
	}
}

// Entry is one redundancy decision. Forward and Backward are the arena ids of
// the memory operations and boundary instructions that were considered.
type Entry struct {
	Func     string
	Op       int
	Text     string
	Verdict  Verdict
	Cases    category.Case
	Forward  []int
	Backward []int
	Reason   string
}

func (self Entry) String() string {
	return fmt.Sprintf(
		"%s: %%%d = %s: %s (cases=%s, fwd=%v, bwd=%v): %s",
		self.Func,
		self.Op,
		self.Text,
		self.Verdict,
		self.Cases,
		self.Forward,
		self.Backward,
		self.Reason,
	)
}

// Explainer receives the decisions. When Enabled returns false the passes
// skip collecting the operation lists entirely.
type Explainer interface {
	Enabled() bool
	Explain(e Entry)
}

type _Nop struct{}

func (_Nop) Enabled() bool  { return false }
func (_Nop) Explain(_ Entry) {}

// Nop discards every decision.
var Nop Explainer = _Nop{}

// Recorder keeps every decision in order. It is not safe for concurrent use,
// use one recorder per function being optimized.
type Recorder struct {
	Entries []Entry
}

func (self *Recorder) Enabled() bool {
	return true
}

func (self *Recorder) Explain(e Entry) {
	self.Entries = append(self.Entries, e)
}

// Find returns the last decision on op, if any.
func (self *Recorder) Find(op int) (Entry, bool) {
	for i := len(self.Entries) - 1; i >= 0; i-- {
		if self.Entries[i].Op == op {
			return self.Entries[i], true
		}
	}
	return Entry{}, false
}

func (self *Recorder) Reset() {
	self.Entries = self.Entries[:0]
}

// Dump writes the raw structure of every decision.
func (self *Recorder) Dump(w io.Writer) {
	spew.Fdump(w, self.Entries)
}
