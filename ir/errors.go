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
)

// SyntaxError occures when failed to parse a textual kernel description.
type SyntaxError struct {
	Pos    int
	Src    string
	Reason string
}

func (self SyntaxError) Error() string {
	return fmt.Sprintf("Syntax error at position %d: %s", self.Pos, self.Reason)
}

// InvariantError is the panic value raised when an analysis or rewrite finds
// the CFG or its own tables in a state that must never happen. It is not
// recoverable, the compilation must stop.
type InvariantError struct {
	Op     string
	Reason string
}

func (self InvariantError) Error() string {
	if self.Op != "" {
		return fmt.Sprintf("InvariantError(%s): %s", self.Op, self.Reason)
	} else {
		return fmt.Sprintf("InvariantError: %s", self.Reason)
	}
}

func ESyntax(pos int, src string, reason string) SyntaxError {
	return SyntaxError {
		Pos    : pos,
		Src    : src,
		Reason : reason,
	}
}

// EInvariant builds the panic value for an invariant violation on op, which
// may be nil.
func EInvariant(op *Op, reason string) InvariantError {
	if op == nil {
		return InvariantError { Reason: reason }
	} else {
		return InvariantError { Op: fmt.Sprintf("#%d %s", op.Id, op), Reason: reason }
	}
}
