// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pgcompare/pgcompare/pkg/dsl"
)

func validateCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "validate-rules <file>",
		Short:   "Validate a filter/serialize rule document",
		Example: "validate-rules rules/exclude-auth.yaml",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			if _, err := dsl.ParseDocument(data); err != nil {
				return err
			}
			fmt.Fprintf(os.Stdout, "%s: ok\n", args[0])
			return nil
		},
	}
}
