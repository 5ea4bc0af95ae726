// SPDX-License-Identifier: Apache-2.0

package apply

import "github.com/pgcompare/pgcompare/pkg/diag"

// Status is the apply engine's terminal outcome (spec.md §4.6 step 8,
// §6.3's exit-code mapping).
type Status string

const (
	StatusSuccess Status = "success"
	StatusError   Status = "error"
	StatusStuck   Status = "stuck"
)

// ExitCode maps Status to spec.md §6.3's declarative-apply exit codes.
func (s Status) ExitCode() int {
	switch s {
	case StatusSuccess:
		return 0
	case StatusStuck:
		return 2
	default:
		return 1
	}
}

// StatementError is one statement's execution failure (spec.md §4.6 step
// 8): the SQLSTATE, message, and the statement's own position translated
// to a file line/column via PositionToLineColumn.
type StatementError struct {
	StatementID string
	FilePath    string
	SQLSTATE    string
	Message     string
	Line        int
	Column      int
	Validation  bool // true if this came from the final validation pass
}

// RoundResult is the per-round tally spec.md §4.6 step 8 asks for.
type RoundResult struct {
	Round    int
	Applied  int
	Deferred int
	Failed   int
}

// Result is the full outcome of one Apply run.
type Result struct {
	Status      Status
	Rounds      []RoundResult
	Errors      []StatementError
	Diagnostics diag.Diagnostics

	// Applied is every statement id that was successfully executed, in the
	// order it actually ran (across rounds, not the planned topological
	// order, since deferral can move a statement to a later round than its
	// peers).
	Applied []string
}
