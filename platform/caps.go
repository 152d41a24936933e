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

// Package platform describes the synchronization features of a target GPU
// generation, as consumed by the synchronization passes.
package platform

import (
	"fmt"
	"sort"
)

// Caps is the capability query object. The zero value is the most
// conservative platform: no independent fences of any kind.
type Caps struct {
	// IndependentSharedFence reports that shared local memory has its own
	// fence, so a global fence does not have to order shared accesses.
	IndependentSharedFence bool `toml:"independent_shared_fence" msgpack:"independent_shared_fence"`

	// TypedFence reports hardware support for a typed memory fence.
	TypedFence bool `toml:"typed_fence" msgpack:"typed_fence"`

	// OutputFence reports hardware support for a structured output fence.
	OutputFence bool `toml:"output_fence" msgpack:"output_fence"`

	// UnifiedFence reports support for target-encoded unified fences.
	UnifiedFence bool `toml:"unified_fence" msgpack:"unified_fence"`

	// DisabledCases is a mask of synchronization cases that no
	// synchronization instruction is obligated to cover.
	DisabledCases uint16 `toml:"disabled_cases" msgpack:"disabled_cases"`
}

func (self Caps) String() string {
	return fmt.Sprintf(
		"Caps(independent_shared_fence=%v, typed_fence=%v, output_fence=%v, unified_fence=%v, disabled_cases=%#x)",
		self.IndependentSharedFence,
		self.TypedFence,
		self.OutputFence,
		self.UnifiedFence,
		self.DisabledCases,
	)
}

var _Presets = map[string]Caps {
	"legacy": {},
	"independent-slm": {
		IndependentSharedFence : true,
		TypedFence             : true,
	},
	"lsc": {
		IndependentSharedFence : true,
		TypedFence             : true,
		OutputFence            : true,
		UnifiedFence           : true,
	},
}

// Preset returns the named capability preset.
func Preset(name string) (Caps, error) {
	if caps, ok := _Presets[name]; !ok {
		return Caps{}, fmt.Errorf("platform: unknown preset %q", name)
	} else {
		return caps, nil
	}
}

// Presets lists the preset names in sorted order.
func Presets() []string {
	ret := make([]string, 0, len(_Presets))
	for name := range _Presets {
		ret = append(ret, name)
	}
	sort.Strings(ret)
	return ret
}
