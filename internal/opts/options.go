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

package opts

import (
	"github.com/cloudwego/syncopt/category"
	"github.com/cloudwego/syncopt/explain"
)

type Options struct {
	Disable       bool
	DisabledCases uint16
	Explainer     explain.Explainer
}

// Disabled returns the cases that are disabled either by the options or by
// the platform.
func (self *Options) Disabled(platform uint16) category.Case {
	return category.Case(self.DisabledCases | platform) & category.AllCases
}

func (self *Options) Explain() explain.Explainer {
	if self.Explainer == nil {
		return explain.Nop
	} else {
		return self.Explainer
	}
}

func GetDefaultOptions() Options {
	return Options {
		Disable       : Disable,
		DisabledCases : DisabledCases,
		Explainer     : explain.Nop,
	}
}
