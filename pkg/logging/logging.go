// SPDX-License-Identifier: Apache-2.0

// Package logging is the pipeline's structured logger: one interface,
// a pterm-backed implementation for CLI use and a no-op implementation for
// library/test callers, grounded on pkg/migrations/logger.go's
// migrationLogger/noopLogger pair. The event methods are renamed from
// pgroll's migration lifecycle (LogMigrationStart, LogBackfillStart, ...)
// to this pipeline's own stages: diff, plan, and the round-based apply
// engine (spec.md §2, §4.6).
package logging

import "github.com/pterm/pterm"

// Logger is the event surface every pipeline stage logs through.
type Logger interface {
	LogDiffStart(main, branch string)
	LogDiffComplete(changeCount int)

	LogPlanDiagnostic(code, message string)
	LogPlanComplete(statementCount int)

	LogApplyRoundStart(round int, pending int)
	LogApplyRoundComplete(round, applied, deferred, failed int)
	LogApplyStuck(round int, deferredCount int)
	LogApplyValidationError(statementID, message string)

	Info(msg string, args ...any)
}

type ptermLogger struct {
	logger pterm.Logger
}

type noopLogger struct{}

// New returns the pterm-backed Logger CLI callers use.
func New() Logger {
	return &ptermLogger{logger: pterm.DefaultLogger}
}

// NewNoop returns a Logger that discards everything, for library callers
// and tests that don't want log output.
func NewNoop() Logger {
	return &noopLogger{}
}

func (l *ptermLogger) LogDiffStart(main, branch string) {
	l.logger.Info("starting catalog diff", l.logger.Args("main", main, "branch", branch))
}

func (l *ptermLogger) LogDiffComplete(changeCount int) {
	l.logger.Info("diff complete", l.logger.Args("change_count", changeCount))
}

func (l *ptermLogger) LogPlanDiagnostic(code, message string) {
	l.logger.Warn("plan diagnostic", l.logger.Args("code", code, "message", message))
}

func (l *ptermLogger) LogPlanComplete(statementCount int) {
	l.logger.Info("plan complete", l.logger.Args("statement_count", statementCount))
}

func (l *ptermLogger) LogApplyRoundStart(round int, pending int) {
	l.logger.Info("starting apply round", l.logger.Args("round", round, "pending", pending))
}

func (l *ptermLogger) LogApplyRoundComplete(round, applied, deferred, failed int) {
	l.logger.Info("apply round complete", l.logger.Args(
		"round", round, "applied", applied, "deferred", deferred, "failed", failed))
}

func (l *ptermLogger) LogApplyStuck(round int, deferredCount int) {
	l.logger.Error("apply stuck: no progress made", l.logger.Args("round", round, "deferred", deferredCount))
}

func (l *ptermLogger) LogApplyValidationError(statementID, message string) {
	l.logger.Warn("function validation failed", l.logger.Args("statement", statementID, "message", message))
}

func (l *ptermLogger) Info(msg string, args ...any) {
	l.logger.Info(msg, l.logger.Args(args...))
}

func (l *noopLogger) LogDiffStart(string, string)          {}
func (l *noopLogger) LogDiffComplete(int)                  {}
func (l *noopLogger) LogPlanDiagnostic(string, string)     {}
func (l *noopLogger) LogPlanComplete(int)                  {}
func (l *noopLogger) LogApplyRoundStart(int, int)          {}
func (l *noopLogger) LogApplyRoundComplete(int, int, int, int) {}
func (l *noopLogger) LogApplyStuck(int, int)               {}
func (l *noopLogger) LogApplyValidationError(string, string) {}
func (l *noopLogger) Info(string, ...any)                  {}
