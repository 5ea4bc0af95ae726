// SPDX-License-Identifier: Apache-2.0

package differ

import (
	"errors"
	"strings"
	"testing"

	"github.com/pgcompare/pgcompare/pkg/catalog"
	"github.com/pgcompare/pgcompare/pkg/change"
)

func newCatalog() *catalog.Catalog { return catalog.New(170000, "postgres") }

func findOne(t *testing.T, changes []*change.Change, pred func(*change.Change) bool) *change.Change {
	t.Helper()
	var found []*change.Change
	for _, c := range changes {
		if pred(c) {
			found = append(found, c)
		}
	}
	if len(found) != 1 {
		t.Fatalf("expected exactly 1 matching change, got %d (of %d total)", len(found), len(changes))
	}
	return found[0]
}

func TestDiffCreatesNewTable(t *testing.T) {
	main := newCatalog()
	branch := newCatalog()
	branch.Add(catalog.NewTable(catalog.Table{Schema: "public", Name: "orders", OwnerRole: "postgres"}))

	changes, err := Diff(main, branch)
	if err != nil {
		t.Fatalf("Diff: %v", err)
	}

	c := findOne(t, changes, func(c *change.Change) bool {
		return c.ObjectType == string(catalog.KindTable) && c.Operation == change.OpCreate
	})
	if !strings.Contains(c.Serialize(change.SerializeOptions{}), "CREATE TABLE") {
		t.Errorf("expected CREATE TABLE statement, got %q", c.Serialize(change.SerializeOptions{}))
	}
	if len(c.Creates) != 1 || c.Creates[0] != catalog.StableID(catalog.KindTable, "public", "orders") {
		t.Errorf("unexpected Creates: %v", c.Creates)
	}
	schemaReq := catalog.StableID(catalog.KindSchema, "public")
	found := false
	for _, r := range c.Requires {
		if r == schemaReq {
			found = true
		}
	}
	if !found {
		t.Errorf("expected table create to require its schema, got %v", c.Requires)
	}
}

func TestDiffDropsRemovedTable(t *testing.T) {
	main := newCatalog()
	main.Add(catalog.NewTable(catalog.Table{Schema: "public", Name: "orders", OwnerRole: "postgres"}))
	branch := newCatalog()

	changes, err := Diff(main, branch)
	if err != nil {
		t.Fatalf("Diff: %v", err)
	}

	c := findOne(t, changes, func(c *change.Change) bool {
		return c.ObjectType == string(catalog.KindTable) && c.Operation == change.OpDrop
	})
	stmt := c.Serialize(change.SerializeOptions{})
	if !strings.Contains(stmt, "DROP TABLE") {
		t.Errorf("expected DROP TABLE statement, got %q", stmt)
	}
}

func TestDiffAltersRoleFlag(t *testing.T) {
	main := newCatalog()
	main.Add(catalog.NewRole(catalog.Role{Name: "app", CanLogin: false}))
	branch := newCatalog()
	branch.Add(catalog.NewRole(catalog.Role{Name: "app", CanLogin: true}))

	changes, err := Diff(main, branch)
	if err != nil {
		t.Fatalf("Diff: %v", err)
	}

	c := findOne(t, changes, func(c *change.Change) bool {
		return c.ObjectType == string(catalog.KindRole) && c.Operation == change.OpAlter && c.Scope == change.ScopeObject
	})
	stmt := c.Serialize(change.SerializeOptions{})
	if !strings.Contains(stmt, "LOGIN") {
		t.Errorf("expected ALTER ROLE ... LOGIN statement, got %q", stmt)
	}
}

func TestDiffColumnGeneratedExprChangeForcesReplace(t *testing.T) {
	tableID := catalog.StableID(catalog.KindTable, "public", "orders")
	expr := "1 + 1"

	main := newCatalog()
	main.Add(catalog.NewColumn(catalog.Column{Table: tableID, Name: "total", DataType: "int"}))
	branch := newCatalog()
	branch.Add(catalog.NewColumn(catalog.Column{Table: tableID, Name: "total", DataType: "int", GeneratedExpr: &expr}))

	changes, err := Diff(main, branch)
	if err != nil {
		t.Fatalf("Diff: %v", err)
	}

	var sawDrop, sawCreate bool
	for _, c := range changes {
		if c.ObjectType != string(catalog.KindColumn) || c.Scope != change.ScopeObject {
			continue
		}
		switch c.Operation {
		case change.OpDrop:
			sawDrop = true
		case change.OpCreate:
			sawCreate = true
		}
	}
	if !sawDrop || !sawCreate {
		t.Fatalf("expected drop+create fallback for non-alterable column change, got sawDrop=%v sawCreate=%v", sawDrop, sawCreate)
	}
}

func TestDiffCommentChange(t *testing.T) {
	main := newCatalog()
	main.Add(catalog.NewSchema(catalog.Schema{Name: "app", OwnerRole: "postgres", Comment: "old"}))
	branch := newCatalog()
	branch.Add(catalog.NewSchema(catalog.Schema{Name: "app", OwnerRole: "postgres", Comment: "new"}))

	changes, err := Diff(main, branch)
	if err != nil {
		t.Fatalf("Diff: %v", err)
	}

	c := findOne(t, changes, func(c *change.Change) bool { return c.Scope == change.ScopeComment })
	stmt := c.Serialize(change.SerializeOptions{})
	if !strings.Contains(stmt, "COMMENT ON SCHEMA") || !strings.Contains(stmt, "'new'") {
		t.Errorf("unexpected comment statement: %q", stmt)
	}
	if c.Operation != change.OpAlter {
		t.Errorf("expected comment change op=alter, got %s", c.Operation)
	}
}

func TestDiffPrivilegeGrantAndRevoke(t *testing.T) {
	schemaID := catalog.StableID(catalog.KindSchema, "app")
	main := newCatalog()
	main.Add(catalog.NewSchema(catalog.Schema{
		Name: "app", OwnerRole: "postgres",
		ACL: []catalog.Privilege{{Grantee: "alice", Privileges: []string{"USAGE"}}},
	}))
	branch := newCatalog()
	branch.Add(catalog.NewSchema(catalog.Schema{
		Name: "app", OwnerRole: "postgres",
		ACL: []catalog.Privilege{{Grantee: "bob", Privileges: []string{"USAGE", "CREATE"}}},
	}))

	changes, err := Diff(main, branch)
	if err != nil {
		t.Fatalf("Diff: %v", err)
	}

	revoke := findOne(t, changes, func(c *change.Change) bool {
		return c.Scope == change.ScopePrivilege && c.Operation == change.OpDrop
	})
	if !strings.Contains(revoke.Serialize(change.SerializeOptions{}), "REVOKE") {
		t.Errorf("expected REVOKE statement, got %q", revoke.Serialize(change.SerializeOptions{}))
	}
	if len(revoke.Drops) != 1 || revoke.Drops[0] != catalog.ACLID(schemaID, "alice") {
		t.Errorf("unexpected revoke Drops: %v", revoke.Drops)
	}

	grant := findOne(t, changes, func(c *change.Change) bool {
		return c.Scope == change.ScopePrivilege && c.Operation == change.OpCreate
	})
	if !strings.Contains(grant.Serialize(change.SerializeOptions{}), "GRANT") {
		t.Errorf("expected GRANT statement, got %q", grant.Serialize(change.SerializeOptions{}))
	}
}

func TestDiffPrivilegeSetChangeForSameGrantee(t *testing.T) {
	main := newCatalog()
	main.Add(catalog.NewSchema(catalog.Schema{
		Name: "app", OwnerRole: "postgres",
		ACL: []catalog.Privilege{{Grantee: "alice", Privileges: []string{"USAGE"}}},
	}))
	branch := newCatalog()
	branch.Add(catalog.NewSchema(catalog.Schema{
		Name: "app", OwnerRole: "postgres",
		ACL: []catalog.Privilege{{Grantee: "alice", Privileges: []string{"USAGE", "CREATE"}}},
	}))

	changes, err := Diff(main, branch)
	if err != nil {
		t.Fatalf("Diff: %v", err)
	}

	var privChanges []*change.Change
	for _, c := range changes {
		if c.Scope == change.ScopePrivilege {
			privChanges = append(privChanges, c)
		}
	}
	if len(privChanges) != 1 {
		t.Fatalf("expected exactly one privilege change (grant of the added privilege), got %d", len(privChanges))
	}
	if privChanges[0].Operation != change.OpAlter {
		t.Errorf("expected alter op for added privilege on existing grantee, got %s", privChanges[0].Operation)
	}
	if !strings.Contains(privChanges[0].Serialize(change.SerializeOptions{}), "CREATE") {
		t.Errorf("expected the new privilege in the grant statement, got %q", privChanges[0].Serialize(change.SerializeOptions{}))
	}
}

func TestDiffMembershipChange(t *testing.T) {
	main := newCatalog()
	main.Add(catalog.NewRole(catalog.Role{Name: "app"}))
	branch := newCatalog()
	branch.Add(catalog.NewRole(catalog.Role{
		Name:     "app",
		MemberOf: []catalog.Membership{{Role: "readonly", Member: "app"}},
	}))

	changes, err := Diff(main, branch)
	if err != nil {
		t.Fatalf("Diff: %v", err)
	}

	c := findOne(t, changes, func(c *change.Change) bool { return c.Scope == change.ScopeMembership })
	if c.Operation != change.OpCreate {
		t.Errorf("expected create-scope membership change, got %s", c.Operation)
	}
	stmt := c.Serialize(change.SerializeOptions{})
	if !strings.Contains(stmt, "GRANT") || !strings.Contains(stmt, "readonly") {
		t.Errorf("unexpected membership statement: %q", stmt)
	}
	wantID := catalog.MembershipID("readonly", "app")
	if len(c.Creates) != 1 || c.Creates[0] != wantID {
		t.Errorf("unexpected membership Creates: %v", c.Creates)
	}
}

func TestDiffDefaultPrivileges(t *testing.T) {
	main := newCatalog()
	branch := newCatalog()
	branch.DefaultPrivileges = []catalog.DefaultPrivilege{
		{GrantingRole: "admin", Schema: "app", ObjectType: "TABLES", Grantee: "readonly", Privileges: []string{"SELECT"}},
	}

	changes, err := Diff(main, branch)
	if err != nil {
		t.Fatalf("Diff: %v", err)
	}

	c := findOne(t, changes, func(c *change.Change) bool { return c.Scope == change.ScopeDefaultPrivilege })
	stmt := c.Serialize(change.SerializeOptions{})
	if !strings.Contains(stmt, "ALTER DEFAULT PRIVILEGES") || !strings.Contains(stmt, "GRANT") {
		t.Errorf("unexpected default privilege statement: %q", stmt)
	}
}

func TestDiffMixedGrantOptionIsFatal(t *testing.T) {
	main := newCatalog()
	branch := newCatalog()
	branch.Add(catalog.NewSchema(catalog.Schema{
		Name: "app", OwnerRole: "postgres",
		ACL: []catalog.Privilege{
			{Grantee: "alice", Privileges: []string{"USAGE"}, GrantOption: false},
			{Grantee: "alice", Privileges: []string{"CREATE"}, GrantOption: true},
		},
	}))

	_, err := Diff(main, branch)
	if err == nil {
		t.Fatal("expected an error for a grantee with mixed grant-option entries")
	}
	var mixed change.MixedGrantOptionError
	if !errors.As(err, &mixed) {
		t.Fatalf("expected change.MixedGrantOptionError, got %T: %v", err, err)
	}
	if mixed.Grantee != "alice" {
		t.Errorf("expected Grantee=alice, got %q", mixed.Grantee)
	}
}

func TestDiffExtensionMembersRideAlongOnCreate(t *testing.T) {
	main := newCatalog()
	branch := newCatalog()
	memberID := catalog.StableID(catalog.KindFunction, "public.gen_random_uuid()")
	branch.Add(catalog.NewExtension(catalog.Extension{
		Name: "pgcrypto", Schema: "public", Members: []string{memberID},
	}))

	changes, err := Diff(main, branch)
	if err != nil {
		t.Fatalf("Diff: %v", err)
	}

	c := findOne(t, changes, func(c *change.Change) bool {
		return c.ObjectType == string(catalog.KindExtension) && c.Operation == change.OpCreate
	})
	found := false
	for _, id := range c.Creates {
		if id == memberID {
			found = true
		}
	}
	if !found {
		t.Errorf("expected extension create to also create its member %q, got Creates=%v", memberID, c.Creates)
	}
}
