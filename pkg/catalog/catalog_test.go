// SPDX-License-Identifier: Apache-2.0

package catalog

import "testing"

func TestStableIDGrammar(t *testing.T) {
	id := StableID(KindTable, "public", "users")
	if id != "table:public.users" {
		t.Fatalf("got %q", id)
	}
	if KindOf(id) != KindTable {
		t.Fatalf("KindOf(%q) = %q", id, KindOf(id))
	}
	if !IsObjectID(id) || IsMetadataID(id) {
		t.Fatalf("expected %q to be an object id", id)
	}
}

func TestMetadataIDs(t *testing.T) {
	obj := StableID(KindTable, "public", "users")
	cases := map[string]string{
		CommentID(obj):                       "comment:" + obj,
		ACLID(obj, "alice"):                  "acl:" + obj + ":alice",
		DefaultPrivilegeID("bob", "public", "r", "alice"): "defacl:bob:public:r:alice",
		MembershipID("admins", "alice"):       "membership:admins:alice",
	}
	for got, want := range cases {
		if got != want {
			t.Errorf("got %q want %q", got, want)
		}
		if !IsMetadataID(got) {
			t.Errorf("%q should be a metadata id", got)
		}
	}
}

func TestBuiltinDetection(t *testing.T) {
	if !IsBuiltinSchema("pg_catalog") || !IsBuiltinSchema("information_schema") {
		t.Fatal("expected builtin schemas to be detected")
	}
	if IsBuiltinSchema("public") {
		t.Fatal("public must not be builtin")
	}
	if !IsBuiltinID(StableID(KindTable, "pg_catalog", "pg_class")) {
		t.Fatal("expected pg_catalog.pg_class to be builtin")
	}
	if IsBuiltinID(StableID(KindTable, "public", "users")) {
		t.Fatal("public.users must not be builtin")
	}
}

func TestObjectEqual(t *testing.T) {
	a := NewSchema(Schema{Name: "app", OwnerRole: "alice"})
	b := NewSchema(Schema{Name: "app", OwnerRole: "alice"})
	c := NewSchema(Schema{Name: "app", OwnerRole: "bob"})

	if !Equal(a, b) {
		t.Fatal("expected equal schemas to compare equal")
	}
	if Equal(a, c) {
		t.Fatal("expected different owners to compare unequal")
	}
}

func TestPrivilegeCanonicalSort(t *testing.T) {
	a := NewSchema(Schema{Name: "app", ACL: []Privilege{
		{Grantee: "bob", Privileges: []string{"USAGE", "CREATE"}},
		{Grantee: "alice", Privileges: []string{"USAGE"}},
	}})
	b := NewSchema(Schema{Name: "app", ACL: []Privilege{
		{Grantee: "alice", Privileges: []string{"USAGE"}},
		{Grantee: "bob", Privileges: []string{"CREATE", "USAGE"}},
	}})
	if !Equal(a, b) {
		t.Fatal("expected ACL order/privilege order to be canonicalized for equality")
	}
}

func TestCatalogDuplicateIDPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on duplicate stable id")
		}
	}()
	cat := New(170000, "postgres")
	cat.Add(NewSchema(Schema{Name: "app"}))
	cat.Add(NewSchema(Schema{Name: "app"}))
}

func TestCatalogOfKind(t *testing.T) {
	cat := New(170000, "postgres")
	cat.Add(NewSchema(Schema{Name: "app"}))
	cat.Add(NewRole(Role{Name: "alice"}))

	schemas := cat.OfKind(KindSchema)
	if len(schemas) != 1 {
		t.Fatalf("expected 1 schema, got %d", len(schemas))
	}
	if cat.Len() != 2 {
		t.Fatalf("expected 2 objects, got %d", cat.Len())
	}
}
