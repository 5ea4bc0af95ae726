// SPDX-License-Identifier: Apache-2.0

package jsonschema

import (
	"encoding/json"
	"testing"
)

// dslRuleSchema is a trimmed variant of pkg/dsl/schema.json's shape, just
// enough to exercise the validator wrapper without reaching across
// packages (pkg/dsl has its own, fuller copy it loads for real). Unlike
// that copy, it marks "type" as required, so a missing-field case fails.
const dslRuleSchema = `{
  "type": "object",
  "required": ["type"],
  "properties": {
    "type": {"type": "string"},
    "schema": {"type": "string"},
    "operation": {"type": "string", "enum": ["create", "alter", "drop"]},
    "scope": {"type": "string"},
    "owner": {"type": "array", "items": {"type": "string"}},
    "name": {"type": "string"}
  }
}`

func TestValidateAcceptsWellFormedPattern(t *testing.T) {
	var doc map[string]any
	if err := json.Unmarshal([]byte(`{"type":"table","schema":"auth","operation":"drop"}`), &doc); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if err := Validate(dslRuleSchema, doc); err != nil {
		t.Fatalf("expected valid document, got %v", err)
	}
}

func TestValidateRejectsUnknownOperation(t *testing.T) {
	var doc map[string]any
	if err := json.Unmarshal([]byte(`{"type":"table","operation":"truncate"}`), &doc); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if err := Validate(dslRuleSchema, doc); err == nil {
		t.Fatalf("expected validation error for unknown operation")
	}
}

func TestValidateRejectsMissingType(t *testing.T) {
	var doc map[string]any
	if err := json.Unmarshal([]byte(`{"schema":"auth"}`), &doc); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if err := Validate(dslRuleSchema, doc); err == nil {
		t.Fatalf("expected validation error for missing required field")
	}
}
