// SPDX-License-Identifier: Apache-2.0

package apply

import (
	"testing"

	"github.com/pgcompare/pgcompare/pkg/diag"
)

// planStatements runs parse+classify+graph+sort over a set of in-memory
// SourceFiles (spec.md §4.6 steps 2-6), skipping Discover's filesystem walk
// so these tests can shuffle file order deterministically.
func planStatements(t *testing.T, files []SourceFile) ([]Statement, diag.Diagnostics) {
	t.Helper()
	var diags diag.Diagnostics
	var all []Statement
	for _, f := range files {
		stmts, d := Split(f)
		diags = append(diags, d...)
		all = append(all, stmts...)
	}
	nodes := BuildNodes(all)
	g, graphDiags := BuildGraph(nodes)
	diags = append(diags, graphDiags...)
	order, sortDiags := TopoSort(g, nodes)
	diags = append(diags, sortDiags...)
	ordered := make([]Statement, len(order))
	for i, idx := range order {
		ordered[i] = nodes[idx].Statement
	}
	return ordered, diags
}

func classesOf(stmts []Statement) []Class {
	out := make([]Class, len(stmts))
	for i, s := range stmts {
		out[i] = s.Class
	}
	return out
}

// TestTableBeforeDependentView is spec.md §8 scenario 1.
func TestTableBeforeDependentView(t *testing.T) {
	files := []SourceFile{
		{Path: "a.sql", SQL: "create view v as select id from u;"},
		{Path: "b.sql", SQL: "create table u(id int primary key, email text not null);"},
	}
	ordered, diags := planStatements(t, files)
	for _, d := range diags {
		if d.Code == diag.CodeUnresolvedDependency {
			t.Fatalf("unexpected unresolved dependency: %+v", d)
		}
	}
	got := classesOf(ordered)
	if len(got) != 2 || got[0] != ClassCreateTable || got[1] != ClassCreateView {
		t.Fatalf("expected [CREATE_TABLE CREATE_VIEW], got %v", got)
	}
}

// TestRoleSchemaGrantOrdering is spec.md §8 scenario 2.
func TestRoleSchemaGrantOrdering(t *testing.T) {
	files := []SourceFile{
		{Path: "a.sql", SQL: "grant usage on schema app to app_user;"},
		{Path: "b.sql", SQL: "create schema app;"},
		{Path: "c.sql", SQL: "create role app_user;"},
	}
	ordered, diags := planStatements(t, files)
	for _, d := range diags {
		if d.Code == diag.CodeUnresolvedDependency {
			t.Fatalf("unexpected unresolved dependency: %+v", d)
		}
	}
	got := classesOf(ordered)
	if len(got) != 3 || got[0] != ClassCreateRole || got[1] != ClassCreateSchema || got[2] != ClassGrant {
		t.Fatalf("expected [CREATE_ROLE CREATE_SCHEMA GRANT], got %v", got)
	}
}

// TestEnumBeforeTableUsingIt is spec.md §8 scenario 3.
func TestEnumBeforeTableUsingIt(t *testing.T) {
	files := []SourceFile{
		{Path: "a.sql", SQL: "create table app.users(id int, role app.user_role);"},
		{Path: "b.sql", SQL: "create type app.user_role as enum('a','b');"},
		{Path: "c.sql", SQL: "create schema app;"},
	}
	ordered, _ := planStatements(t, files)
	got := classesOf(ordered)
	if len(got) != 3 || got[0] != ClassCreateSchema || got[1] != ClassCreateEnum || got[2] != ClassCreateTable {
		t.Fatalf("expected [CREATE_SCHEMA CREATE_ENUM CREATE_TABLE], got %v", got)
	}
}

// TestFKReferencesUniqueIndexCreatedAfterTable is spec.md §8 scenario 5.
func TestFKReferencesUniqueIndexCreatedAfterTable(t *testing.T) {
	files := []SourceFile{
		{Path: "a.sql", SQL: "create table oauth_apps(id int, user_id uuid references users(gotrue_id));"},
		{Path: "b.sql", SQL: "create table users(id bigint primary key, gotrue_id uuid not null);"},
		{Path: "c.sql", SQL: "create unique index users_gotrue_id_key on users(gotrue_id);"},
	}
	ordered, diags := planStatements(t, files)
	for _, d := range diags {
		if d.Code == diag.CodeUnresolvedDependency {
			t.Fatalf("unexpected unresolved dependency: %+v", d)
		}
	}
	pos := make(map[string]int, len(ordered))
	for i, s := range ordered {
		pos[s.FilePath] = i
	}
	if pos["b.sql"] >= pos["a.sql"] {
		t.Fatalf("expected users table before oauth_apps, order=%v", classesOf(ordered))
	}
}

// TestGrantRequiresItsTargetsCreate proves the GRANT -> CREATE ordering is
// forced by a graph edge (spec.md §4.2's "GRANT p ON X TO g -> requires
// <X>, role:g"), not by GRANT's phase happening to sort last. The grantee
// role is created in a file sorted AFTER the grant statement, so only a
// real requires edge (not file order, not phase alone) can put CREATE_ROLE
// before GRANT here.
func TestGrantRequiresItsTargetsCreate(t *testing.T) {
	files := []SourceFile{
		{Path: "a.sql", SQL: "grant select on table app.widgets to app_user;"},
		{Path: "b.sql", SQL: "create table app.widgets(id int primary key);"},
		{Path: "c.sql", SQL: "create schema app;"},
		{Path: "d.sql", SQL: "create role app_user;"},
	}
	ordered, diags := planStatements(t, files)
	for _, d := range diags {
		if d.Code == diag.CodeUnresolvedDependency {
			t.Fatalf("unexpected unresolved dependency: %+v", d)
		}
	}
	pos := make(map[Class]int, len(ordered))
	for i, s := range ordered {
		pos[s.Class] = i
	}
	if pos[ClassCreateTable] >= pos[ClassGrant] {
		t.Fatalf("expected CREATE_TABLE before GRANT, got %v", classesOf(ordered))
	}
	if pos[ClassCreateRole] >= pos[ClassGrant] {
		t.Fatalf("expected CREATE_ROLE before GRANT, got %v", classesOf(ordered))
	}
}

// TestGrantOnMissingTargetIsUnresolved proves Requires() now emits a
// reference for a GrantStmt's object: a GRANT whose target table was never
// created anywhere produces UNRESOLVED_DEPENDENCY instead of silently
// planning successfully.
func TestGrantOnMissingTargetIsUnresolved(t *testing.T) {
	files := []SourceFile{
		{Path: "a.sql", SQL: "grant select on table app.widgets to app_user;"},
		{Path: "b.sql", SQL: "create schema app;"},
		{Path: "c.sql", SQL: "create role app_user;"},
	}
	_, diags := planStatements(t, files)
	found := false
	for _, d := range diags {
		if d.Code == diag.CodeUnresolvedDependency {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected an UNRESOLVED_DEPENDENCY diagnostic for the missing table, got %+v", diags)
	}
}

// TestGrantRoleRequiresGrantedAndGranteeRoles exercises GrantRoleStmt's
// requires edges: both the granted role and the grantee role must exist
// before the GRANT ROLE statement runs.
func TestGrantRoleRequiresGrantedAndGranteeRoles(t *testing.T) {
	files := []SourceFile{
		{Path: "a.sql", SQL: "grant admin_role to app_user;"},
		{Path: "b.sql", SQL: "create role app_user;"},
		{Path: "c.sql", SQL: "create role admin_role;"},
	}
	ordered, diags := planStatements(t, files)
	for _, d := range diags {
		if d.Code == diag.CodeUnresolvedDependency {
			t.Fatalf("unexpected unresolved dependency: %+v", d)
		}
	}
	pos := make(map[string]int, len(ordered))
	for i, s := range ordered {
		pos[s.FilePath] = i
	}
	if pos["b.sql"] >= pos["a.sql"] || pos["c.sql"] >= pos["a.sql"] {
		t.Fatalf("expected both CREATE ROLE statements before GRANT ROLE, order=%v", classesOf(ordered))
	}
}

// TestCycleDetection is spec.md §8 scenario 7: two mutually dependent
// views produce no usable order and a CYCLE_DETECTED diagnostic.
func TestCycleDetection(t *testing.T) {
	files := []SourceFile{
		{Path: "a.sql", SQL: "create view v1 as select * from v2;"},
		{Path: "b.sql", SQL: "create view v2 as select * from v1;"},
	}
	ordered, diags := planStatements(t, files)
	if len(ordered) != 0 {
		t.Fatalf("expected empty order for a pure 2-cycle, got %v", classesOf(ordered))
	}
	found := false
	for _, d := range diags {
		if d.Code == diag.CodeCycleDetected {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected a CYCLE_DETECTED diagnostic, got %+v", diags)
	}
}
