// SPDX-License-Identifier: Apache-2.0

// Package diag is the shared diagnostic type for pkg/planner and
// pkg/apply (spec.md §6.4's closed diagnostic-code set). Both stages emit
// from the same set of codes, so SPEC_FULL.md calls for one aggregate type
// rather than two ad hoc slices (see DESIGN.md).
package diag

// Code is one of the closed set of diagnostic codes spec.md §6.4 defines.
type Code string

const (
	CodeParseError                    Code = "PARSE_ERROR"
	CodeUnknownStatementClass         Code = "UNKNOWN_STATEMENT_CLASS"
	CodeDuplicateProducer             Code = "DUPLICATE_PRODUCER"
	CodeUnresolvedDependency           Code = "UNRESOLVED_DEPENDENCY"
	CodeCycleDetected                  Code = "CYCLE_DETECTED"
	CodeRuntimeExecutionError          Code = "RUNTIME_EXECUTION_ERROR"
	CodeRuntimeAssumedExternalDependency Code = "RUNTIME_ASSUMED_EXTERNAL_DEPENDENCY"
	CodeRuntimeEnvironmentLimitation   Code = "RUNTIME_ENVIRONMENT_LIMITATION"
)

// Diagnostic is one reported issue, per spec.md §6.4's field list.
type Diagnostic struct {
	Code          Code
	Message       string
	StatementID   string
	ObjectRefs    []string
	SuggestedFix  string
	Details       map[string]string
}

// Diagnostics is a collected list of Diagnostic values.
type Diagnostics []Diagnostic

// Add appends a diagnostic and returns the updated slice, for fluent
// accumulation at call sites.
func (d Diagnostics) Add(diag Diagnostic) Diagnostics {
	return append(d, diag)
}

// Filter returns only the diagnostics matching code.
func (d Diagnostics) Filter(code Code) Diagnostics {
	var out Diagnostics
	for _, x := range d {
		if x.Code == code {
			out = append(out, x)
		}
	}
	return out
}

// HasFatal reports whether any diagnostic represents a condition that
// should stop the pipeline from producing a usable result: duplicate
// producers and cycles make the plan itself unsound, unlike parse/
// unresolved-dependency diagnostics which the caller may choose to ignore
// (spec.md §7.1, "the caller decides whether diagnostics are fatal" — this
// is the pipeline's own recommended default for that decision).
func (d Diagnostics) HasFatal() bool {
	for _, x := range d {
		if x.Code == CodeDuplicateProducer || x.Code == CodeCycleDetected {
			return true
		}
	}
	return false
}
