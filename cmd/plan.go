// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pgcompare/pgcompare/cmd/flags"
	"github.com/pgcompare/pgcompare/pkg/change"
	"github.com/pgcompare/pgcompare/pkg/differ"
	"github.com/pgcompare/pgcompare/pkg/dsl"
	"github.com/pgcompare/pgcompare/pkg/logging"
	"github.com/pgcompare/pgcompare/pkg/planner"
)

func planCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plan <main-catalog.json> <branch-catalog.json>",
		Short: "Print the ordered migration script turning main into branch",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			log := logging.New()

			main, branch, err := loadCatalogPair(args[0], args[1])
			if err != nil {
				return err
			}

			changes, err := differ.Diff(main, branch)
			if err != nil {
				return fmt.Errorf("diffing catalogs: %w", err)
			}

			rules, err := loadRules(flags.RulesFile())
			if err != nil {
				return fmt.Errorf("loading rules: %w", err)
			}
			if rules.Exclude != nil {
				changes = dsl.Apply(changes, rules.Exclude)
			}

			plan, err := planner.BuildPlan(changes, main)
			if err != nil {
				return fmt.Errorf("building plan: %w", err)
			}
			for _, d := range plan.Diagnostics {
				log.LogPlanDiagnostic(string(d.Code), d.Message)
			}
			log.LogPlanComplete(len(plan.Changes))

			return printPlan(plan.Changes, rules.Serialize)
		},
	}
	flags.RulesFlag(cmd)
	return cmd
}

func printPlan(changes []*change.Change, serialize dsl.SerializeFunc) error {
	for _, c := range changes {
		opts := change.SerializeOptions{}
		if serialize != nil {
			if o, ok := serialize(c); ok {
				opts = o
			}
		}
		fmt.Fprintln(os.Stdout, c.Serialize(opts)+";")
	}
	return nil
}
