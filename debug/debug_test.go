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

package debug

import (
	"testing"

	"github.com/cloudwego/syncopt/internal/opts"
	"github.com/cloudwego/syncopt/internal/syncelim"
	"github.com/cloudwego/syncopt/ir"
	"github.com/cloudwego/syncopt/platform"
	"github.com/stretchr/testify/require"
)

func TestGetStats(t *testing.T) {
	b := ir.NewBuilder("stats")
	b.Load(ir.SpaceShared, "a")
	b.Barrier()
	b.Store(ir.SpaceGlobal, "x")
	b.Fence(true, true)
	b.Return()
	fn, err := b.Build()
	require.NoError(t, err)

	old := GetStats()
	syncelim.Optimize(fn, platform.Caps{}, &opts.Options{})
	now := GetStats()
	require.Equal(t, old.Functions + 1, now.Functions)
	require.Equal(t, old.Sync.Removed + 1, now.Sync.Removed)
	require.Equal(t, old.Sync.InvalidationsDropped + 1, now.Sync.InvalidationsDropped)
}
