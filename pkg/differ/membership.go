// SPDX-License-Identifier: Apache-2.0

package differ

import (
	"fmt"

	"github.com/pgcompare/pgcompare/pkg/catalog"
	"github.com/pgcompare/pgcompare/pkg/change"
)

// membershipKey identifies one GRANT <role> TO <member> edge independent of
// AdminOpt/GrantedBy, since PostgreSQL has no "ALTER GROUP" for those: a
// flag change is a revoke-then-regrant like privilegeChanges' grant-option
// case.
func membershipKey(m catalog.Membership) string { return m.Role + "\x00" + m.Member }

func grantRoleSQL(m catalog.Membership) string {
	stmt := fmt.Sprintf("GRANT %s TO %s", quoteIdent(m.Role), quoteIdent(m.Member))
	if m.AdminOpt {
		stmt += " WITH ADMIN OPTION"
	}
	return stmt
}

func revokeRoleSQL(m catalog.Membership) string {
	return fmt.Sprintf("REVOKE %s FROM %s", quoteIdent(m.Role), quoteIdent(m.Member))
}

// membershipChanges diffs a role's MemberOf set (spec.md §4.1's membership
// follow-on, scope=membership), grounded on the same add/remove/re-grant
// shape as privilegeChanges.
func membershipChanges(memberRoleID string, old, new []catalog.Membership) []*change.Change {
	oldByKey := make(map[string]catalog.Membership, len(old))
	for _, m := range old {
		oldByKey[membershipKey(m)] = m
	}
	newByKey := make(map[string]catalog.Membership, len(new))
	for _, m := range new {
		newByKey[membershipKey(m)] = m
	}

	var out []*change.Change
	for key, om := range oldByKey {
		nm, stillMember := newByKey[key]
		memberID := catalog.MembershipID(om.Role, om.Member)
		groupRoleID := catalog.StableID(catalog.KindRole, om.Role)

		switch {
		case !stillMember:
			c := change.New(string(catalog.KindRole), change.OpDrop, change.ScopeMembership, literalSerializer(revokeRoleSQL(om)))
			c.MainStableID = memberRoleID
			c.WithDrops(memberID)
			c.WithRequires(memberRoleID, memberID)
			out = append(out, c)
		case nm.AdminOpt != om.AdminOpt:
			c := change.New(string(catalog.KindRole), change.OpAlter, change.ScopeMembership, literalSerializer(grantRoleSQL(nm)))
			c.MainStableID = memberRoleID
			c.WithCreates(memberID)
			c.WithRequires(memberRoleID, groupRoleID)
			out = append(out, c)
		}
	}
	for key, nm := range newByKey {
		if _, already := oldByKey[key]; already {
			continue
		}
		memberID := catalog.MembershipID(nm.Role, nm.Member)
		groupRoleID := catalog.StableID(catalog.KindRole, nm.Role)
		c := change.New(string(catalog.KindRole), change.OpCreate, change.ScopeMembership, literalSerializer(grantRoleSQL(nm)))
		c.MainStableID = memberRoleID
		c.WithCreates(memberID)
		c.WithRequires(memberRoleID, groupRoleID)
		out = append(out, c)
	}
	return out
}
