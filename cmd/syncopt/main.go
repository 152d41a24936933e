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

// Command syncopt runs the synchronization optimizer over kernel files.
package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command {
	Use   : "syncopt",
	Short : "Remove redundant barriers and fences from GPU kernels",
	Long  : `syncopt removes the synchronization instructions of a kernel that order no hazard, and weakens the ones that order more than needed`,

	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		return setupColor(cmd)
	},
}

func init() {
	rootCmd.Version = Version

	/* subcommands */
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(verifyCmd)
	rootCmd.AddCommand(convertCmd)
	rootCmd.AddCommand(capsCmd)
	rootCmd.AddCommand(versionCmd)

	/* global flags */
	rootCmd.PersistentFlags().String("color", "auto", "colorize output (auto|on|off)")
	rootCmd.PersistentFlags().String("preset", "legacy", "platform preset to optimize for")
	rootCmd.PersistentFlags().String("caps", "", "platform capabilities file, overrides --preset")
	rootCmd.PersistentFlags().StringSlice("disable-case", nil, "hazard cases to ignore (unsafe)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func setupColor(cmd *cobra.Command) error {
	mode, err := cmd.Root().PersistentFlags().GetString("color")
	if err != nil {
		return err
	}

	/* "auto" keeps the terminal detection of the color package */
	switch mode {
		case "auto" : return nil
		case "on"   : color.NoColor = false
		case "off"  : color.NoColor = true
		default     : return fmt.Errorf("invalid color mode %q", mode)
	}
	return nil
}
