// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Version is the pgcompare version.
var Version = "development"

func init() {
	viper.SetEnvPrefix("PGCOMPARE")
	viper.AutomaticEnv()
}

var rootCmd = &cobra.Command{
	Use:          "pgcompare",
	Short:        "Diff, plan, and apply PostgreSQL catalog changes",
	SilenceUsage: true,
	Version:      Version,
}

// Execute runs the root command.
func Execute() error {
	rootCmd.AddCommand(diffCmd())
	rootCmd.AddCommand(planCmd())
	rootCmd.AddCommand(applyCmd())
	rootCmd.AddCommand(exportCmd())
	rootCmd.AddCommand(validateCmd())

	return rootCmd.Execute()
}
