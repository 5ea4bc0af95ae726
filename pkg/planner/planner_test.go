// SPDX-License-Identifier: Apache-2.0

package planner

import (
	"testing"

	"github.com/pgcompare/pgcompare/pkg/catalog"
	"github.com/pgcompare/pgcompare/pkg/change"
	"github.com/pgcompare/pgcompare/pkg/diag"
)

func createTableChange(schema, table string) *change.Change {
	id := catalog.StableID(catalog.KindTable, schema, table)
	c := change.New(string(catalog.KindTable), change.OpCreate, change.ScopeObject, func(change.SerializeOptions) string {
		return "CREATE TABLE " + schema + "." + table + " ()"
	})
	c.SchemaName = schema
	c.MainStableID = id
	c.WithCreates(id)
	return c
}

func createColumnChange(schema, table, col string, requires ...string) *change.Change {
	tableID := catalog.StableID(catalog.KindTable, schema, table)
	colID := catalog.StableID(catalog.KindColumn, schema, table, col)
	c := change.New(string(catalog.KindColumn), change.OpCreate, change.ScopeObject, func(change.SerializeOptions) string {
		return "ALTER TABLE " + schema + "." + table + " ADD COLUMN " + col
	})
	c.SchemaName = schema
	c.MainStableID = tableID
	c.WithCreates(colID)
	c.WithRequires(append([]string{tableID}, requires...)...)
	return c
}

func TestBuildPlanOrdersProducerBeforeConsumer(t *testing.T) {
	col := createColumnChange("public", "orders", "id")
	table := createTableChange("public", "orders")
	changes := []*change.Change{col, table} // deliberately out of order

	main := catalog.New(170000, "postgres")
	plan, err := BuildPlan(changes, main)
	if err != nil {
		t.Fatalf("BuildPlan: %v", err)
	}
	if len(plan.Diagnostics) != 0 {
		t.Fatalf("unexpected diagnostics: %+v", plan.Diagnostics)
	}
	if len(plan.Changes) != 2 {
		t.Fatalf("expected 2 changes, got %d", len(plan.Changes))
	}
	if plan.Changes[0] != table || plan.Changes[1] != col {
		t.Fatalf("expected table before column, got table-first=%v", plan.Changes[0] == table)
	}
}

func TestBuildPlanDetectsDuplicateProducer(t *testing.T) {
	a := createTableChange("public", "dup")
	b := createTableChange("public", "dup")
	main := catalog.New(170000, "postgres")

	plan, err := BuildPlan([]*change.Change{a, b}, main)
	if err != nil {
		t.Fatalf("BuildPlan: %v", err)
	}
	dups := plan.Diagnostics.Filter(diag.CodeDuplicateProducer)
	if len(dups) != 1 {
		t.Fatalf("expected 1 duplicate-producer diagnostic, got %d: %+v", len(dups), plan.Diagnostics)
	}
}

func TestBuildPlanDetectsCycle(t *testing.T) {
	a := change.New(string(catalog.KindTable), change.OpCreate, change.ScopeObject, func(change.SerializeOptions) string { return "" })
	a.MainStableID = "table:public.a"
	a.WithCreates("table:public.a")
	a.WithRequires("table:public.b")

	b := change.New(string(catalog.KindTable), change.OpCreate, change.ScopeObject, func(change.SerializeOptions) string { return "" })
	b.MainStableID = "table:public.b"
	b.WithCreates("table:public.b")
	b.WithRequires("table:public.a")

	main := catalog.New(170000, "postgres")
	plan, err := BuildPlan([]*change.Change{a, b}, main)
	if err != nil {
		t.Fatalf("BuildPlan: %v", err)
	}
	cycles := plan.Diagnostics.Filter(diag.CodeCycleDetected)
	if len(cycles) != 1 {
		t.Fatalf("expected 1 cycle diagnostic, got %d: %+v", len(cycles), plan.Diagnostics)
	}
	if len(plan.Changes) != 0 {
		t.Fatalf("expected both cyclic changes excluded from the ordered result, got %d", len(plan.Changes))
	}
}

func TestDefaultPrivilegeConstraintOrdersBeforeMatchingCreates(t *testing.T) {
	defacl := change.New("", change.OpCreate, change.ScopeDefaultPrivilege, func(change.SerializeOptions) string { return "" })
	defacl.SchemaName = "public"
	defacl.MainStableID = catalog.DefaultPrivilegeID("alice", "public", "tables", "bob")
	defacl.WithCreates(defacl.MainStableID)

	table := createTableChange("public", "future")

	main := catalog.New(170000, "postgres")
	plan, err := BuildPlan([]*change.Change{table, defacl}, main)
	if err != nil {
		t.Fatalf("BuildPlan: %v", err)
	}
	if len(plan.Diagnostics) != 0 {
		t.Fatalf("unexpected diagnostics: %+v", plan.Diagnostics)
	}
	if plan.Changes[0] != defacl {
		t.Fatalf("expected default privilege change to precede the table create it governs")
	}
}
