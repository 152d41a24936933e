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
	"fmt"

	"github.com/cloudwego/syncopt/platform"
	"github.com/spf13/cobra"
)

var capsCmd = &cobra.Command {
	Use   : "caps",
	Short : "Show the platform presets and the selected capabilities",
	Args  : cobra.NoArgs,
	RunE  : runCaps,
}

func runCaps(cmd *cobra.Command, _ []string) error {
	out := cmd.OutOrStdout()
	for _, name := range platform.Presets() {
		caps, err := platform.Preset(name)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "%-16s %s\n", nameColor.Sprint(name), caps)
	}

	/* the capabilities the other commands would use */
	caps, err := loadCaps(cmd)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "\nselected: %s\n", caps)
	return nil
}
