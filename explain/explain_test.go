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

package explain

import (
	"bytes"
	"testing"

	"github.com/cloudwego/syncopt/category"
	"github.com/stretchr/testify/require"
)

func TestRecorder(t *testing.T) {
	rec := new(Recorder)
	require.True(t, rec.Enabled())
	require.False(t, Nop.Enabled())
	rec.Explain(Entry { Func: "k", Op: 3, Text: "barrier", Verdict: Redundant })
	rec.Explain(Entry { Func: "k", Op: 4, Text: "fence global", Verdict: Required, Cases: category.WriteSyncRet })
	rec.Explain(Entry { Func: "k", Op: 3, Text: "barrier", Verdict: Required })

	e, ok := rec.Find(3)
	require.True(t, ok)
	require.Equal(t, Required, e.Verdict)
	_, ok = rec.Find(7)
	require.False(t, ok)

	e, _ = rec.Find(4)
	require.Equal(t, "k: %4 = fence global: required (cases=write_sync_ret, fwd=[], bwd=[]): ", e.String())

	buf := bytes.NewBuffer(nil)
	rec.Dump(buf)
	require.Contains(t, buf.String(), "fence global")
	rec.Reset()
	require.Empty(t, rec.Entries)
}

func TestVerdict_String(t *testing.T) {
	require.Equal(t, "none", Verdict(0).String())
	require.Equal(t, "required+narrowed+invalidation-dropped", (Required | Narrowed | InvalidationDropped).String())
}
