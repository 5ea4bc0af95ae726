// SPDX-License-Identifier: Apache-2.0

package apply

import (
	"context"
	"errors"
	"strconv"

	pgq "github.com/pganalyze/pg_query_go/v6"

	"github.com/lib/pq"

	"github.com/pgcompare/pgcompare/pkg/db"
	"github.com/pgcompare/pgcompare/pkg/diag"
)

// DefaultMaxRounds is spec.md §4.6 step 7's configurable round cap.
const DefaultMaxRounds = 100

// Options configures one Apply run.
type Options struct {
	MaxRounds int // 0 means DefaultMaxRounds
	// SkipValidation disables the final check_function_bodies=on
	// re-execution pass (spec.md §4.6 step 7, "optional, enabled by
	// default").
	SkipValidation bool
}

func (o Options) maxRounds() int {
	if o.MaxRounds > 0 {
		return o.MaxRounds
	}
	return DefaultMaxRounds
}

// Plan is the output of discovery+parse+classify+graph+sort: an ordered
// list of statements ready to execute, plus whatever diagnostics the build
// stages raised.
type Plan struct {
	Statements  []Statement
	Diagnostics diag.Diagnostics
}

// BuildPlan runs spec.md §4.6 steps 1-6 over a discovery root: discover,
// parse, classify, extract references, build the dependency graph, and
// topologically sort. Parse errors for individual files don't abort the
// whole run (spec.md §7.1); the offending file's statements are simply
// absent from the result.
func BuildPlan(root string) (*Plan, error) {
	files, err := Discover(root)
	if err != nil {
		return nil, err
	}

	var diags diag.Diagnostics
	var all []Statement
	for _, f := range files {
		stmts, d := Split(f)
		diags = append(diags, d...)
		all = append(all, stmts...)
	}

	nodes := BuildNodes(all)
	g, graphDiags := BuildGraph(nodes)
	diags = append(diags, graphDiags...)

	order, sortDiags := TopoSort(g, nodes)
	diags = append(diags, sortDiags...)

	ordered := make([]Statement, len(order))
	for i, idx := range order {
		ordered[i] = nodes[idx].Statement
	}

	return &Plan{Statements: ordered, Diagnostics: diags}, nil
}

// Apply implements spec.md §4.6 step 7: round-based execution of an
// ordered statement list against conn, deferring statements that fail with
// a dependency-shaped SQLSTATE and hard-failing on anything else, with a
// final check_function_bodies=on validation pass over every CREATE
// FUNCTION/PROCEDURE statement.
//
// Grounded on pkg/db/db.go's RDB retry loop, generalized from "retry the
// same statement on lock_timeout" to "defer this statement to the next
// round on a dependency SQLSTATE, else record a hard failure and move on".
// No outer transaction wraps the run (spec.md §5: "no outer transaction —
// each CREATE/ALTER is autocommitted"), so cancellation never rolls back
// work already applied.
func Apply(ctx context.Context, conn db.DB, stmts []Statement, opts Options) *Result {
	res := &Result{Status: StatusSuccess}

	if _, err := conn.ExecContext(ctx, "SET check_function_bodies = off"); err != nil {
		res.Status = StatusError
		res.Errors = append(res.Errors, StatementError{Message: err.Error(), SQLSTATE: SQLSTATE(err)})
		return res
	}

	pending := append([]Statement(nil), stmts...)
	applied := make(map[string]Statement)

	for round := 1; ; round++ {
		if ctx.Err() != nil {
			res.Status = StatusError
			res.Errors = append(res.Errors, StatementError{Message: ctx.Err().Error()})
			return res
		}

		rr := RoundResult{Round: round}
		var deferred []Statement
		var roundFailed bool

		for _, s := range pending {
			if ctx.Err() != nil {
				res.Status = StatusError
				res.Errors = append(res.Errors, StatementError{Message: ctx.Err().Error()})
				return res
			}
			if roundFailed {
				// A hard failure aborts the rest of this round's work, but
				// later rounds still get a chance at the untried statements
				// (spec.md §4.6 step 7).
				deferred = append(deferred, s)
				rr.Deferred++
				continue
			}

			_, err := conn.ExecContext(ctx, s.SQL)
			if err == nil {
				applied[s.ID] = s
				res.Applied = append(res.Applied, s.ID)
				rr.Applied++
				continue
			}

			if IsDependencyError(err) {
				deferred = append(deferred, s)
				rr.Deferred++
				continue
			}

			rr.Failed++
			res.Errors = append(res.Errors, newStatementError(s, err, false))
			roundFailed = true
		}

		res.Rounds = append(res.Rounds, rr)

		if len(deferred) == 0 {
			break
		}
		if rr.Applied == 0 {
			// No progress this round: every remaining statement is either
			// still deferred or blocked behind the round's hard failure.
			res.Status = StatusStuck
			return res
		}
		if round >= opts.maxRounds() {
			res.Status = StatusStuck
			return res
		}
		pending = deferred
	}

	for _, e := range res.Errors {
		if !e.Validation {
			res.Status = StatusError
		}
	}

	if opts.SkipValidation || res.Status != StatusSuccess {
		return res
	}

	runValidationPass(ctx, conn, stmts, applied, res)
	return res
}

// runValidationPass implements spec.md §4.6 step 7's optional final pass:
// flip check_function_bodies on and re-execute every applied CREATE
// FUNCTION/PROCEDURE statement verbatim (spec.md §9 open question 3 — no
// CREATE-vs-CREATE-OR-REPLACE reconciliation). Failures here are recorded
// as validation errors, which mark the run StatusError but are kept
// distinguishable via StatementError.Validation.
func runValidationPass(ctx context.Context, conn db.DB, stmts []Statement, applied map[string]Statement, res *Result) {
	if _, err := conn.ExecContext(ctx, "SET check_function_bodies = on"); err != nil {
		res.Errors = append(res.Errors, StatementError{Message: err.Error(), SQLSTATE: SQLSTATE(err), Validation: true})
		res.Status = StatusError
		return
	}

	for _, s := range stmts {
		if _, ok := applied[s.ID]; !ok {
			continue
		}
		if _, ok := s.Node.(*pgq.Node_CreateFunctionStmt); !ok {
			continue
		}
		if ctx.Err() != nil {
			res.Errors = append(res.Errors, StatementError{Message: ctx.Err().Error(), Validation: true})
			res.Status = StatusError
			return
		}
		if _, err := conn.ExecContext(ctx, s.SQL); err != nil {
			res.Errors = append(res.Errors, newStatementError(s, err, true))
			res.Status = StatusError
		}
	}
}

func newStatementError(s Statement, err error, validation bool) StatementError {
	se := StatementError{
		StatementID: s.ID,
		FilePath:    s.FilePath,
		SQLSTATE:    SQLSTATE(err),
		Message:     err.Error(),
		Validation:  validation,
	}
	if pos := errorPosition(err); pos > 0 {
		line, col := PositionToLineColumn(s.SQL, pos)
		se.Line, se.Column = s.Line+line-1, col
	}
	return se
}

// errorPosition extracts the 1-based character offset lib/pq reports for
// syntax/semantic errors, or 0 if the driver error carries none.
func errorPosition(err error) int {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) || pqErr.Position == "" {
		return 0
	}
	n, convErr := strconv.Atoi(pqErr.Position)
	if convErr != nil {
		return 0
	}
	return n
}
