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
	"sync/atomic"

	"github.com/cloudwego/syncopt/internal/syncelim"
)

// A Stats records statistics about the optimizer, accumulated over every
// function optimized by this process.
type Stats struct {
	Functions int
	Sync      SyncStats
}

// A SyncStats records what happened to the synchronization instructions.
type SyncStats struct {
	Removed              int
	Narrowed             int
	InvalidationsDropped int
}

// GetStats returns statistics of the optimizer.
func GetStats() Stats {
	return Stats{
		Functions: int(atomic.LoadInt64(&syncelim.FuncCount)),
		Sync: SyncStats{
			Removed:              int(atomic.LoadInt64(&syncelim.RemovedCount)),
			Narrowed:             int(atomic.LoadInt64(&syncelim.NarrowedCount)),
			InvalidationsDropped: int(atomic.LoadInt64(&syncelim.InvalidationCount)),
		},
	}
}
