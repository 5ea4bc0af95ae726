// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pgcompare/pgcompare/cmd/flags"
	"github.com/pgcompare/pgcompare/pkg/export"
	"github.com/pgcompare/pgcompare/pkg/logging"
)

func exportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export <main-catalog.json> <branch-catalog.json> <out-dir>",
		Short: "Export the ordered migration script as a tree of SQL files",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			log := logging.New()

			main, branch, err := loadCatalogPair(args[0], args[1])
			if err != nil {
				return err
			}

			groupPatterns, err := parseGroupPatterns(viper.GetStringSlice("GROUP_PATTERNS"))
			if err != nil {
				return fmt.Errorf("parsing --group-pattern: %w", err)
			}

			rules, err := loadRules(flags.RulesFile())
			if err != nil {
				return fmt.Errorf("loading rules: %w", err)
			}

			opts := export.Options{
				GroupPatterns:       groupPatterns,
				FlatSchemas:         viper.GetStringSlice("FLAT_SCHEMAS"),
				GroupingMode:        export.GroupingMode(viper.GetString("GROUPING_MODE")),
				AutoGroupPartitions: viper.GetBool("AUTO_GROUP_PARTITIONS"),
				Exclude:             rules.Exclude,
				Serialize:           rules.Serialize,
			}

			files, diags, err := export.Export(main, branch, opts)
			if err != nil {
				return fmt.Errorf("building export: %w", err)
			}
			for _, d := range diags {
				log.LogPlanDiagnostic(string(d.Code), d.Message)
			}

			if err := writeExportFiles(args[2], files); err != nil {
				return err
			}
			log.Info("export complete", "files", len(files), "out_dir", args[2])
			return nil
		},
	}

	cmd.Flags().StringSlice("group-pattern", nil, "regex=name pairs assigning matching object names to a named group (repeatable)")
	cmd.Flags().StringSlice("flat-schema", nil, "schema flattened into a single file instead of split by kind (repeatable)")
	cmd.Flags().String("grouping-mode", string(export.SingleFile), "single-file or subdirectory layout for matched groups")
	cmd.Flags().Bool("auto-group-partitions", false, "partition children inherit their parent table's group")
	viper.BindPFlag("GROUP_PATTERNS", cmd.Flags().Lookup("group-pattern"))
	viper.BindPFlag("FLAT_SCHEMAS", cmd.Flags().Lookup("flat-schema"))
	viper.BindPFlag("GROUPING_MODE", cmd.Flags().Lookup("grouping-mode"))
	viper.BindPFlag("AUTO_GROUP_PARTITIONS", cmd.Flags().Lookup("auto-group-partitions"))
	flags.RulesFlag(cmd)
	return cmd
}

func parseGroupPatterns(raw []string) ([]export.GroupPattern, error) {
	patterns := make([]export.GroupPattern, 0, len(raw))
	for _, r := range raw {
		parts := strings.SplitN(r, "=", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("expected regex=name, got %q", r)
		}
		re, err := regexp.Compile(parts[0])
		if err != nil {
			return nil, fmt.Errorf("compiling pattern %q: %w", parts[0], err)
		}
		patterns = append(patterns, export.GroupPattern{Pattern: re, Name: parts[1]})
	}
	return patterns, nil
}

func writeExportFiles(outDir string, files []export.File) error {
	for _, f := range files {
		path := filepath.Join(outDir, filepath.FromSlash(f.Path))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return fmt.Errorf("creating directory for %s: %w", f.Path, err)
		}
		if err := os.WriteFile(path, []byte(f.SQL), 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", f.Path, err)
		}
	}
	return nil
}
