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

package main

import (
	"github.com/cloudwego/syncopt/internal/kernel"
	"github.com/spf13/cobra"
)

var convertCmd = &cobra.Command {
	Use   : "convert <input> <output>",
	Short : "Convert a kernel file to another format",
	Long  : `Convert a kernel file between the toml, msgpack and thrift forms, the formats are taken from the file extensions`,
	Args  : cobra.ExactArgs(2),
	RunE  : runConvert,
}

func runConvert(_ *cobra.Command, args []string) error {
	d, err := kernel.LoadFile(args[0])
	if err != nil {
		return err
	}

	/* make sure it is a valid kernel */
	if _, err = kernel.Lower(d); err != nil {
		return err
	}

	/* write it back */
	return kernel.SaveFile(args[1], d)
}
