// SPDX-License-Identifier: Apache-2.0

package catalogio

import (
	"strings"
	"testing"

	"github.com/pgcompare/pgcompare/pkg/catalog"
)

func TestLoadParsesEveryFieldNeededForStableIDs(t *testing.T) {
	doc := `{
		"server_version": 170000,
		"current_role": "postgres",
		"schemas": [{"name": "app", "owner": "postgres"}],
		"tables": [{"schema": "app", "name": "orders", "owner": "postgres"}],
		"functions": [{
			"schema": "app", "name": "total",
			"parameters": [{"data_type": "int4"}],
			"return_type": "int4", "language": "sql", "definition": "select 1"
		}]
	}`

	cat, err := Load(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if !cat.Has(catalog.StableID(catalog.KindSchema, "app")) {
		t.Fatalf("expected schema app to be present")
	}
	if !cat.Has(catalog.StableID(catalog.KindTable, "app", "orders")) {
		t.Fatalf("expected table app.orders to be present")
	}
	if !cat.Has(catalog.StableID(catalog.KindFunction, "app", "total(int4)")) {
		t.Fatalf("expected function app.total(int4) to be present, parameters not wired into signature")
	}
}

func TestLoadDuplicateIDReturnsError(t *testing.T) {
	doc := `{
		"server_version": 170000,
		"schemas": [{"name": "app"}, {"name": "app"}]
	}`

	if _, err := Load(strings.NewReader(doc)); err == nil {
		t.Fatalf("expected an error for a duplicate schema id")
	}
}
