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

package syncopt

import (
    `github.com/cloudwego/syncopt/explain`
    `github.com/cloudwego/syncopt/ir`
)

// SyntaxError occures when failed to parse the textual form of an op.
type SyntaxError = ir.SyntaxError

// InvariantError occures when the optimizer meets a malformed function, it
// is raised with panic.
type InvariantError = ir.InvariantError

// Explainer receives the decisions of the optimizer.
type Explainer = explain.Explainer
