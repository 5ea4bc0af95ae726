// SPDX-License-Identifier: Apache-2.0

package dsl

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/pgcompare/pgcompare/internal/jsonschema"
)

//go:embed schema.json
var ruleSchemaJSON string

// Document is the on-disk shape of a filter/serialize rule file (spec.md
// §6.1): an `exclude` pattern list feeding the Filter DSL and a
// `serialize` rule list feeding the Serialize DSL. Rule files are written
// in YAML, the format pkg/migrations/writer.go already uses for migration
// documents.
type Document struct {
	Exclude   []Pattern       `yaml:"exclude"`
	Serialize []SerializeRule `yaml:"serialize"`
}

// ParseDocument parses and schema-validates a rule document. Validation
// happens against the raw decoded form (spec.md §6.1's document shape)
// before the typed Document is built, so a malformed field name or wrong
// value type is reported as a schema error rather than a silently-ignored
// zero value.
func ParseDocument(data []byte) (*Document, error) {
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("dsl: parsing rule document: %w", err)
	}
	if raw != nil {
		if err := jsonschema.Validate(ruleSchemaJSON, raw); err != nil {
			return nil, fmt.Errorf("dsl: rule document failed schema validation: %w", err)
		}
	}

	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("dsl: decoding rule document: %w", err)
	}
	return &doc, nil
}

// CompiledDocument is a Document's ready-to-use form.
type CompiledDocument struct {
	Exclude   Filter
	Serialize SerializeFunc
}

// Compile turns a parsed Document into callable functions.
func (d *Document) Compile() CompiledDocument {
	return CompiledDocument{
		Exclude:   CompileFilters(d.Exclude),
		Serialize: CompileSerializeRules(d.Serialize),
	}
}
