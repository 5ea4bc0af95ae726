// SPDX-License-Identifier: Apache-2.0

package change

import (
	"testing"

	"github.com/pgcompare/pgcompare/pkg/catalog"
)

func TestSerialize(t *testing.T) {
	c := New("table", OpCreate, ScopeObject, func(opts SerializeOptions) string {
		return "CREATE TABLE public.t (id int)"
	})
	if got := c.Serialize(SerializeOptions{}); got != "CREATE TABLE public.t (id int)" {
		t.Fatalf("got %q", got)
	}
}

func TestSerializeWithoutSerializerPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic")
		}
	}()
	c := &Change{ObjectType: "table", Operation: OpCreate, Scope: ScopeObject}
	c.Serialize(SerializeOptions{})
}

func TestValidateDropRequiresItself(t *testing.T) {
	c := New("table", OpDrop, ScopeObject, func(SerializeOptions) string { return "DROP TABLE public.t" })
	c.WithDrops("table:public.t")
	if err := c.Validate(); err == nil {
		t.Fatal("expected validation error: drop without requiring itself")
	}
	c.WithRequires("table:public.t")
	if err := c.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidateEmptyDropFails(t *testing.T) {
	c := New("table", OpDrop, ScopeObject, func(SerializeOptions) string { return "" })
	if err := c.Validate(); err == nil {
		t.Fatal("expected error for drop change with no drops")
	}
}

func TestValidateCreateMustIncludeOwnStableID(t *testing.T) {
	c := New("table", OpCreate, ScopeObject, func(SerializeOptions) string { return "CREATE TABLE public.t (id int)" })
	c.MainStableID = "table:public.t"
	if err := c.Validate(); err == nil {
		t.Fatal("expected error: CREATE change whose creates omits its own stable id")
	}
	c.WithCreates("table:public.t")
	if err := c.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidateCommentScopeRequiresDerivedID(t *testing.T) {
	id := "table:public.t"
	commentID := catalog.CommentID(id)

	create := New("table", OpCreate, ScopeComment, func(SerializeOptions) string { return "" })
	create.MainStableID = id
	if err := create.Validate(); err == nil {
		t.Fatal("expected error: comment CREATE whose creates omits the comment id")
	}
	create.WithCreates(commentID)
	if err := create.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	drop := New("table", OpDrop, ScopeComment, func(SerializeOptions) string { return "" })
	drop.MainStableID = id
	if err := drop.Validate(); err == nil {
		t.Fatal("expected error: comment DROP whose drops omits the comment id")
	}
	drop.WithDrops(commentID)
	if err := drop.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidatePrivilegeScopeRevokeRequiresACLID(t *testing.T) {
	aclID := catalog.ACLID("table:public.t", "app_user")

	revoke := New("table", OpDrop, ScopePrivilege, func(SerializeOptions) string { return "" })
	if err := revoke.Validate(); err == nil {
		t.Fatal("expected error: REVOKE with no drops")
	}
	revoke.WithDrops(aclID)
	if err := revoke.Validate(); err == nil {
		t.Fatal("expected error: REVOKE that drops the ACL id but doesn't require it")
	}
	revoke.WithRequires(aclID)
	if err := revoke.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidatePrivilegeScopeCreateRequiresACLID(t *testing.T) {
	grant := New("table", OpCreate, ScopePrivilege, func(SerializeOptions) string { return "" })
	if err := grant.Validate(); err == nil {
		t.Fatal("expected error: GRANT change with no creates")
	}
	grant.WithCreates(catalog.ACLID("table:public.t", "app_user"))
	if err := grant.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
