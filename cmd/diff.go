// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pgcompare/pgcompare/cmd/flags"
	"github.com/pgcompare/pgcompare/pkg/change"
	"github.com/pgcompare/pgcompare/pkg/differ"
	"github.com/pgcompare/pgcompare/pkg/dsl"
	"github.com/pgcompare/pgcompare/pkg/logging"
)

func diffCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "diff <main-catalog.json> <branch-catalog.json>",
		Short: "Print the unordered set of changes turning main into branch",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			log := logging.New()

			main, branch, err := loadCatalogPair(args[0], args[1])
			if err != nil {
				return err
			}

			log.LogDiffStart(args[0], args[1])
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
			log.LogDiffComplete(len(changes))

			return printChanges(changes)
		},
	}
	flags.RulesFlag(cmd)
	return cmd
}

func printChanges(changes []*change.Change) error {
	type changeView struct {
		ObjectType string   `json:"object_type"`
		Operation  string   `json:"operation"`
		Scope      string   `json:"scope"`
		Creates    []string `json:"creates,omitempty"`
		Drops      []string `json:"drops,omitempty"`
		Requires   []string `json:"requires,omitempty"`
	}

	views := make([]changeView, len(changes))
	for i, c := range changes {
		views[i] = changeView{
			ObjectType: c.ObjectType, Operation: string(c.Operation), Scope: string(c.Scope),
			Creates: c.Creates, Drops: c.Drops, Requires: c.Requires,
		}
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(views)
}
