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
	"testing"

	"github.com/cloudwego/syncopt/category"
	"github.com/cloudwego/syncopt/explain"
	"github.com/cloudwego/syncopt/ir"
	"github.com/cloudwego/syncopt/platform"
	"github.com/stretchr/testify/require"
)

func readAfterRead(t *testing.T) (*ir.Function, *ir.Op) {
	b := ir.NewBuilder("read_after_read")
	b.Load(ir.SpaceShared, "a")
	bar := b.Barrier()
	b.Load(ir.SpaceShared, "b")
	b.Return()
	fn, err := b.Build()
	require.NoError(t, err)
	return fn, bar
}

func TestOptimize(t *testing.T) {
	fn, bar := readAfterRead(t)
	rec := new(explain.Recorder)
	sum := Optimize(fn, platform.Caps{}, WithDisable(false), WithExplainer(rec))
	require.Equal(t, Summary { Removed: 1 }, sum)
	require.False(t, bar.Live())
	require.Len(t, rec.Entries, 1)
	require.Equal(t, explain.Redundant, rec.Entries[0].Verdict)
}

func TestOptimize_Disabled(t *testing.T) {
	fn, bar := readAfterRead(t)
	require.Equal(t, Summary{}, Optimize(fn, platform.Caps{}, WithDisable(true)))
	require.True(t, bar.Live())

	/* the global default */
	old := SetDisable(true)
	defer SetDisable(old)
	require.Equal(t, Summary{}, Optimize(fn, platform.Caps{}))
	require.True(t, bar.Live())
}

func TestVerify(t *testing.T) {
	b := ir.NewBuilder("write_after_write")
	b.Store(ir.SpaceShared, "x")
	b.Barrier()
	b.Store(ir.SpaceShared, "x")
	b.Return()
	fn, err := b.Build()
	require.NoError(t, err)

	sum, vv := Verify(fn, platform.Caps{})
	require.Empty(t, vv)
	require.Equal(t, Summary { Kept: 1 }, sum)
}

func TestVerify_DisabledCases(t *testing.T) {
	b := ir.NewBuilder("write_read")
	st := b.Store(ir.SpaceShared, "x")
	b.Barrier()
	ld := b.Load(ir.SpaceShared, "x")
	b.Return()
	fn, err := b.Build()
	require.NoError(t, err)

	/* disabling a case breaks the ordering on purpose */
	sum, vv := Verify(fn, platform.Caps{}, WithDisabledCases(uint16(category.WriteSyncRead)))
	require.Equal(t, Summary { Removed: 1 }, sum)
	require.Equal(t, []Violation { { A: st.Id, B: ld.Id } }, vv)
}

func TestOptions_Panics(t *testing.T) {
	require.Panics(t, func() { WithDisabledCases(0x200) })
	require.Panics(t, func() { SetDisabledCases(0xffff) })
	require.PanicsWithValue(t, "syncopt: nil explainer", func() { WithExplainer(nil) })
	require.NotPanics(t, func() { WithDisabledCases(uint16(category.AllCases)) })
}

func TestSetDisabledCases(t *testing.T) {
	old := SetDisabledCases(uint16(category.WriteSyncRead))
	defer SetDisabledCases(old)

	b := ir.NewBuilder("write_read")
	b.Store(ir.SpaceShared, "x")
	bar := b.Barrier()
	b.Load(ir.SpaceShared, "x")
	b.Return()
	fn, err := b.Build()
	require.NoError(t, err)

	Optimize(fn, platform.Caps{})
	require.False(t, bar.Live())
}
