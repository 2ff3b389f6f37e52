// Copyright 2026 by the vaultci authors
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not
// use this file except in compliance with the License. You may obtain a copy
// of the License at
//
//    http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS, WITHOUT
// WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the
// License for the specific language governing permissions and limitations
// under the License.

package command

import (
	"fmt"
	"strings"

	"github.com/samber/lo"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

const debugFlag = "debug"

// New returns the vaultci root command with all its sub commands.
func New() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "vaultci",
		Short:   "vaultci builds, monitors and reports on Iris Wallet Vault CI runs",
		Version: version(),
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			if successfully(cmd.Flags().GetBool(debugFlag)) {
				log.SetLevel(log.DebugLevel)
				log.Debug("🐛  debug logging enabled")
			}
		},
	}
	rootCmd.PersistentFlags().Bool(debugFlag, false, "enable debug logging")

	rootCmd.AddCommand(
		newMonitorCmd(),
		newAppImageCmd(),
		newReportsCmd(),
	)
	return rootCmd
}

// Execute runs the vaultci command, exiting with a non-zero status code on
// failure.
func Execute() {
	_ = unerringly(New().ExecuteC())
}

// expectSubcommand makes a command grouping sub commands fail with a usage
// message when called without a known sub command.
func expectSubcommand(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("missing command, expected one of: %s", strings.Join(subcommandNames(cmd), ", "))
	}
	return fmt.Errorf("unknown command %q, expected one of: %s", args[0], strings.Join(subcommandNames(cmd), ", "))
}

func subcommandNames(cmd *cobra.Command) []string {
	return lo.FilterMap(cmd.Commands(), func(sub *cobra.Command, _ int) (string, bool) {
		return sub.Name(), sub.IsAvailableCommand()
	})
}
