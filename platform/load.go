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

package platform

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
)

type capsFile struct {
	Preset string `toml:"preset"`
	Caps   Caps   `toml:"caps"`
}

// LoadFile reads capabilities from a TOML file. The file either names a
// preset, or lists every flag under [caps], or both, in which case the
// listed flags override the preset:
//
//     preset = "independent-slm"
//
//     [caps]
//     typed_fence = false
//     disabled_cases = 0x1
//
func LoadFile(path string) (Caps, error) {
	var cfg capsFile
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Caps{}, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	return fromMeta(path, cfg, meta)
}

// Decode is LoadFile for an in-memory document.
func Decode(src string) (Caps, error) {
	var cfg capsFile
	meta, err := toml.Decode(src, &cfg)
	if err != nil {
		return Caps{}, fmt.Errorf("failed to parse TOML: %w", err)
	}
	return fromMeta("<memory>", cfg, meta)
}

func fromMeta(path string, cfg capsFile, meta toml.MetaData) (Caps, error) {
	var ret Caps

	/* unknown keys are most likely typos of a flag name */
	if keys := meta.Undecoded(); len(keys) != 0 {
		return Caps{}, fmt.Errorf("%s: unknown key %s", path, keys[0])
	}

	/* start from the preset, if any */
	if meta.IsDefined("preset") {
		caps, err := Preset(strings.TrimSpace(cfg.Preset))
		if err != nil {
			return Caps{}, fmt.Errorf("%s: %w", path, err)
		}
		ret = caps
	} else if !meta.IsDefined("caps") {
		return Caps{}, fmt.Errorf("%s: missing preset or [caps]", path)
	}

	/* explicit flags override the preset */
	if meta.IsDefined("caps", "independent_shared_fence") {
		ret.IndependentSharedFence = cfg.Caps.IndependentSharedFence
	}
	if meta.IsDefined("caps", "typed_fence") {
		ret.TypedFence = cfg.Caps.TypedFence
	}
	if meta.IsDefined("caps", "output_fence") {
		ret.OutputFence = cfg.Caps.OutputFence
	}
	if meta.IsDefined("caps", "unified_fence") {
		ret.UnifiedFence = cfg.Caps.UnifiedFence
	}
	if meta.IsDefined("caps", "disabled_cases") {
		ret.DisabledCases = cfg.Caps.DisabledCases
	}
	return ret, nil
}
