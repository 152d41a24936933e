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
	"fmt"

	"github.com/cloudwego/syncopt/category"
	"github.com/cloudwego/syncopt/internal/opts"
)

// Option is the property setter function for opts.Options.
type Option func(*opts.Options)

// WithDisable turns the optimizer into a no-op, leaving every function
// untouched.
//
// The default value of this option is "false".
func WithDisable(v bool) Option {
	return func(o *opts.Options) { o.Disable = v }
}

// WithDisabledCases stops the optimizer from treating the given hazard cases
// as reasons to keep a synchronization instruction. The cases disabled by
// the platform capabilities are always disabled as well.
//
// Disabling cases is unsafe: an instruction that only orders disabled cases
// is removed even if the kernel relies on it.
//
// The default value of this option is "0".
func WithDisabledCases(mask uint16) Option {
	if category.Case(mask) &^ category.AllCases != 0 {
		panic(fmt.Sprintf("syncopt: invalid case mask: %#x", mask))
	} else {
		return func(o *opts.Options) { o.DisabledCases = mask }
	}
}

// WithExplainer receives one entry for every decision the optimizer takes.
func WithExplainer(ex Explainer) Option {
	if ex == nil {
		panic("syncopt: nil explainer")
	} else {
		return func(o *opts.Options) { o.Explainer = ex }
	}
}

// SetDisable sets the default value of the disable switch for all functions
// from now on.
//
// This value can also be configured with the `SYNCOPT_DISABLE` environment
// variable.
//
// Returns the old opts.Disable value.
func SetDisable(v bool) bool {
	v, opts.Disable = opts.Disable, v
	return v
}

// SetDisabledCases sets the default disabled cases for all functions from now
// on.
//
// This value can also be configured with the `SYNCOPT_CASE_MASK` environment
// variable.
//
// Returns the old opts.DisabledCases value.
func SetDisabledCases(mask uint16) uint16 {
	if category.Case(mask) &^ category.AllCases != 0 {
		panic(fmt.Sprintf("syncopt: invalid case mask: %#x", mask))
	}
	mask, opts.DisabledCases = opts.DisabledCases, mask
	return mask
}
