// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	_ "github.com/lib/pq"
	"github.com/spf13/cobra"

	"github.com/pgcompare/pgcompare/cmd/flags"
	"github.com/pgcompare/pgcompare/pkg/apply"
	"github.com/pgcompare/pgcompare/pkg/db"
	"github.com/pgcompare/pgcompare/pkg/logging"
)

func applyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "apply <path>",
		Short: "Apply a directory (or single file) of declarative SQL to a database",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			log := logging.New()
			ctx := cmd.Context()

			plan, err := apply.BuildPlan(args[0])
			if err != nil {
				return fmt.Errorf("building apply plan: %w", err)
			}
			for _, d := range plan.Diagnostics {
				log.LogPlanDiagnostic(string(d.Code), d.Message)
			}
			if plan.Diagnostics.HasFatal() {
				return fmt.Errorf("apply: plan has fatal diagnostics, not applying")
			}

			conn, err := sql.Open("postgres", flags.PostgresURL())
			if err != nil {
				return fmt.Errorf("connecting to database: %w", err)
			}
			defer conn.Close()
			if err := conn.PingContext(ctx); err != nil {
				return fmt.Errorf("pinging database: %w", err)
			}

			opts := apply.Options{MaxRounds: flags.MaxRounds(), SkipValidation: flags.SkipValidation()}
			result := apply.Apply(ctx, &db.RDB{DB: conn}, plan.Statements, opts)

			for _, rr := range result.Rounds {
				log.LogApplyRoundComplete(rr.Round, rr.Applied, rr.Deferred, rr.Failed)
			}
			if result.Status == apply.StatusStuck {
				last := result.Rounds[len(result.Rounds)-1]
				log.LogApplyStuck(last.Round, last.Deferred)
			}
			for _, e := range result.Errors {
				if e.Validation {
					log.LogApplyValidationError(e.StatementID, e.Message)
				}
			}

			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			if err := enc.Encode(result); err != nil {
				return err
			}

			return exitError(result.Status.ExitCode())
		},
	}
	flags.PgConnectionFlags(cmd)
	return cmd
}

// exitErrorCode is a sentinel error carrying the process exit code an
// apply run decided on (spec.md §6.3); main.go maps it to os.Exit.
type exitErrorCode struct{ code int }

func (e *exitErrorCode) Error() string { return fmt.Sprintf("exit code %d", e.code) }

func exitError(code int) error {
	if code == 0 {
		return nil
	}
	return &exitErrorCode{code: code}
}

// ExitCode extracts the process exit code a command's error carries, 1 for
// any other non-nil error, 0 for nil.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var ec *exitErrorCode
	if errors.As(err, &ec) {
		return ec.code
	}
	return 1
}
