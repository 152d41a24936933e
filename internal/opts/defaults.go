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
	"os"
	"strconv"

	"github.com/cloudwego/syncopt/category"
)

var (
	Disable       = parseOrDefault("SYNCOPT_DISABLE", 0, 1) != 0
	DisabledCases = uint16(parseOrDefault("SYNCOPT_CASE_MASK", 0, uint64(category.AllCases)))
)

func parseOrDefault(key string, def uint64, max uint64) uint64 {
	if env := os.Getenv(key); env == "" {
		return def
	} else if val, err := strconv.ParseUint(env, 0, 64); err != nil {
		panic("syncopt: invalid value for " + key)
	} else if val > max {
		panic("syncopt: value too large for " + key)
	} else {
		return val
	}
}
