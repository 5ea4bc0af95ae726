// SPDX-License-Identifier: Apache-2.0

package dsl

import (
	"testing"

	"github.com/pgcompare/pgcompare/pkg/catalog"
	"github.com/pgcompare/pgcompare/pkg/change"
)

func tableChange(schema, name string) *change.Change {
	c := change.New(string(catalog.KindTable), change.OpCreate, change.ScopeObject, func(change.SerializeOptions) string { return "" })
	c.SchemaName = schema
	c.WithCreates(catalog.StableID(catalog.KindTable, schema, name))
	return c
}

func TestFilterExcludesBySchema(t *testing.T) {
	authTable := tableChange("auth", "users")
	appTable := tableChange("app", "orders")

	excluded := CompileFilter(Pattern{Schema: "auth"})
	kept := Apply([]*change.Change{authTable, appTable}, excluded)

	if len(kept) != 1 || kept[0] != appTable {
		t.Fatalf("expected only app.orders to survive, got %+v", kept)
	}
}

func TestFilterMatchesOnNameAndType(t *testing.T) {
	p := Pattern{Type: string(catalog.KindTable), Name: "users"}
	if !p.Matches(tableChange("auth", "users")) {
		t.Fatalf("expected pattern to match auth.users")
	}
	if p.Matches(tableChange("auth", "sessions")) {
		t.Fatalf("expected pattern not to match auth.sessions")
	}
}

func TestSerializeRulesFirstMatchWins(t *testing.T) {
	rules := []SerializeRule{
		{When: Pattern{Schema: "auth"}, Options: change.SerializeOptions{SkipAuthorization: true}},
		{When: Pattern{Type: string(catalog.KindTable)}, Options: change.SerializeOptions{SkipAuthorization: false}},
	}
	fn := CompileSerializeRules(rules)

	opts, ok := fn(tableChange("auth", "users"))
	if !ok || !opts.SkipAuthorization {
		t.Fatalf("expected the auth rule to win, got %+v ok=%v", opts, ok)
	}

	opts, ok = fn(tableChange("app", "orders"))
	if !ok || opts.SkipAuthorization {
		t.Fatalf("expected the table rule to win for app.orders, got %+v ok=%v", opts, ok)
	}
}

func TestParseDocumentValidatesSchema(t *testing.T) {
	_, err := ParseDocument([]byte("exclude:\n  - schema: auth\n    operation: notarealop\n"))
	if err == nil {
		t.Fatalf("expected a schema validation error for an unknown operation")
	}
}

func TestParseDocumentCompiles(t *testing.T) {
	doc, err := ParseDocument([]byte("exclude:\n  - schema: auth\nserialize:\n  - when:\n      type: schema\n    options:\n      skipAuthorization: true\n"))
	if err != nil {
		t.Fatalf("ParseDocument: %v", err)
	}
	compiled := doc.Compile()
	if !compiled.Exclude(tableChange("auth", "users")) {
		t.Fatalf("expected auth schema to be excluded")
	}
}
