// SPDX-License-Identifier: Apache-2.0

// Package jsonschema is a thin document-validator wrapper around
// santhosh-tekuri/jsonschema/v6, used by pkg/dsl to validate filter/
// serialize rule documents before compiling them (spec.md §6.1). This is a
// document validator, not a code generator — the teacher's own
// internal/jsonschema package played the same narrow role for its
// migration-document schema.
package jsonschema

import (
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// Validate compiles schemaJSON (a JSON Schema document, as text) and
// validates doc (already unmarshaled into a json.Unmarshal-compatible
// value, e.g. map[string]any) against it.
func Validate(schemaJSON string, doc any) error {
	c := jsonschema.NewCompiler()
	if err := c.AddResource("schema.json", strings.NewReader(schemaJSON)); err != nil {
		return err
	}
	sch, err := c.Compile("schema.json")
	if err != nil {
		return err
	}
	return sch.Validate(doc)
}
