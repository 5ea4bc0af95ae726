// SPDX-License-Identifier: Apache-2.0

package export

import (
	"regexp"
	"testing"

	"github.com/pgcompare/pgcompare/pkg/catalog"
	"github.com/pgcompare/pgcompare/pkg/change"
)

func tableCreate(schema, name string) *change.Change {
	c := change.New(string(catalog.KindTable), change.OpCreate, change.ScopeObject, func(change.SerializeOptions) string {
		return "CREATE TABLE " + schema + "." + name + "()"
	})
	c.SchemaName = schema
	c.WithCreates(catalog.StableID(catalog.KindTable, schema, name))
	return c
}

func indexCreate(schema, table, name string) *change.Change {
	c := change.New(string(catalog.KindIndex), change.OpCreate, change.ScopeObject, func(change.SerializeOptions) string {
		return "CREATE INDEX " + name + " ON " + schema + "." + table
	})
	c.SchemaName = schema
	c.MainStableID = catalog.StableID(catalog.KindTable, schema, table)
	c.WithCreates(catalog.StableID(catalog.KindIndex, schema, name))
	return c
}

func TestResolvePathFlatModeSplitsByKindAndSchema(t *testing.T) {
	opts := Options{}
	got := resolvePath(tableCreate("app", "orders"), nil, nil, opts)
	if want := "schema/app/table.sql"; got != want {
		t.Fatalf("got %q want %q", got, want)
	}
}

func TestResolvePathClusterWideObjectsGoUnderCluster(t *testing.T) {
	c := change.New(string(catalog.KindRole), change.OpCreate, change.ScopeObject, func(change.SerializeOptions) string { return "" })
	c.WithCreates(catalog.StableID(catalog.KindRole, "app_user"))

	got := resolvePath(c, nil, nil, Options{})
	if want := "cluster/role.sql"; got != want {
		t.Fatalf("got %q want %q", got, want)
	}
}

func TestResolvePathGroupPatternSingleFile(t *testing.T) {
	opts := Options{
		GroupPatterns: []GroupPattern{{Pattern: regexp.MustCompile(`^audit_`), Name: "audit"}},
		GroupingMode:  SingleFile,
	}
	c1 := tableCreate("app", "audit_log")
	c2 := indexCreate("app", "audit_log", "audit_log_ts_idx")

	if got, want := resolvePath(c1, nil, nil, opts), "schema/app/audit.sql"; got != want {
		t.Fatalf("table: got %q want %q", got, want)
	}
	if got, want := resolvePath(c2, nil, nil, opts), "schema/app/audit.sql"; got != want {
		t.Fatalf("index: got %q want %q", got, want)
	}
}

func TestResolvePathGroupPatternSubdirectory(t *testing.T) {
	opts := Options{
		GroupPatterns: []GroupPattern{{Pattern: regexp.MustCompile(`^audit_`), Name: "audit"}},
		GroupingMode:  Subdirectory,
	}
	got := resolvePath(tableCreate("app", "audit_log"), nil, nil, opts)
	if want := "schema/app/audit/audit_log.sql"; got != want {
		t.Fatalf("got %q want %q", got, want)
	}
}

func TestResolvePathFlatSchemaCollapsesKindSplit(t *testing.T) {
	opts := Options{FlatSchemas: []string{"app"}}

	got1 := resolvePath(tableCreate("app", "orders"), nil, nil, opts)
	got2 := resolvePath(indexCreate("app", "orders", "orders_pkey"), nil, nil, opts)

	if want := "schema/app.sql"; got1 != want || got2 != want {
		t.Fatalf("expected both in %q, got %q and %q", want, got1, got2)
	}
}

func TestResolvePathAutoGroupPartitionsInheritParent(t *testing.T) {
	branch := catalog.New(170000, "postgres")
	branch.Add(catalog.NewTable(catalog.Table{Schema: "app", Name: "events"}))
	branch.Add(catalog.NewTable(catalog.Table{
		Schema:      "app",
		Name:        "events_2026_01",
		PartitionOf: catalog.StableID(catalog.KindTable, "app", "events"),
	}))

	opts := Options{AutoGroupPartitions: true}

	partitionChange := tableCreate("app", "events_2026_01")
	childIndex := indexCreate("app", "events_2026_01", "events_2026_01_pkey")
	childIndex.MainStableID = catalog.StableID(catalog.KindTable, "app", "events_2026_01")

	want := "schema/app/table.sql"
	if got := resolvePath(partitionChange, nil, branch, opts); got != want {
		t.Fatalf("partition table: got %q want %q", got, want)
	}
	if got := resolvePath(childIndex, nil, branch, opts); got != want {
		t.Fatalf("partition child index: got %q want %q", got, want)
	}
}

func TestResolvePathAutoGroupPartitionsAppliesInsideFlatSchema(t *testing.T) {
	// Open Question decision (spec.md §9, DESIGN.md): auto-grouping still
	// applies inside a flattened schema, so this produces the same path as
	// the plain flat-schema case regardless of AutoGroupPartitions.
	branch := catalog.New(170000, "postgres")
	branch.Add(catalog.NewTable(catalog.Table{Schema: "app", Name: "events"}))
	branch.Add(catalog.NewTable(catalog.Table{
		Schema:      "app",
		Name:        "events_2026_01",
		PartitionOf: catalog.StableID(catalog.KindTable, "app", "events"),
	}))

	opts := Options{AutoGroupPartitions: true, FlatSchemas: []string{"app"}}

	got := resolvePath(tableCreate("app", "events_2026_01"), nil, branch, opts)
	if want := "schema/app.sql"; got != want {
		t.Fatalf("got %q want %q", got, want)
	}
}

func TestRenderFilesPreservesStatementOrderWithinGroup(t *testing.T) {
	groups := []*group{
		{path: "schema/app/table.sql", stmts: []*change.Change{tableCreate("app", "a"), tableCreate("app", "b")}},
	}
	files := renderFiles(groups, Options{})
	if len(files) != 1 {
		t.Fatalf("expected 1 file, got %d", len(files))
	}
	if want := "CREATE TABLE app.a();\nCREATE TABLE app.b();\n"; files[0].SQL != want {
		t.Fatalf("got %q want %q", files[0].SQL, want)
	}
}
