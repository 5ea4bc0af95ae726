// SPDX-License-Identifier: Apache-2.0

package differ

import (
	"fmt"
	"sort"
	"strings"

	"github.com/pgcompare/pgcompare/pkg/catalog"
	"github.com/pgcompare/pgcompare/pkg/change"
)

// privilegeCatalogKind mirrors commentCatalogKind for GRANT/REVOKE's
// "ON <KEYWORD> objref" clause; kinds absent here carry no ACL (aclOf
// returns nil for them, so privilegeChanges never calls this for them).
var privilegeCatalogKind = map[catalog.Kind]string{
	catalog.KindSchema:        "SCHEMA",
	catalog.KindSequence:      "SEQUENCE",
	catalog.KindColumn:        "TABLE", // column ACL is GRANT ... (col) ON TABLE
	catalog.KindTable:         "TABLE",
	catalog.KindView:          "TABLE",
	catalog.KindMaterializedView: "TABLE",
	catalog.KindFunction:      "FUNCTION",
	catalog.KindProcedure:     "PROCEDURE",
	catalog.KindAggregate:     "FUNCTION",
	catalog.KindForeignServer: "FOREIGN SERVER",
	catalog.KindForeignTable:  "TABLE",
}

// objRefForGrant renders the GRANT/REVOKE object reference, grounded on
// other_examples/fb1bf59f_..._privilege.go.go's formatObjectReference +
// .../2e915253_..._column_privilege.go.go's column-qualified variant.
func objRefForGrant(k catalog.Kind, id string) string {
	if k == catalog.KindColumn {
		table, col := splitSubEntityID(id)
		return fmt.Sprintf("(%s) ON TABLE %s", quoteIdent(col), refSQL(table))
	}
	return "ON " + privilegeCatalogKind[k] + " " + refSQL(id)
}

// granteeSQL renders a grantee name, "" meaning PUBLIC.
func granteeSQL(g string) string {
	if g == "" {
		return "PUBLIC"
	}
	return quoteIdent(g)
}

func privList(ps []string) string {
	sorted := append([]string(nil), ps...)
	sort.Strings(sorted)
	return strings.Join(sorted, ", ")
}

func grantSQL(k catalog.Kind, id string, p catalog.Privilege) string {
	stmt := fmt.Sprintf("GRANT %s %s TO %s", privList(p.Privileges), objRefForGrant(k, id), granteeSQL(p.Grantee))
	if p.GrantOption {
		stmt += " WITH GRANT OPTION"
	}
	return stmt
}

func revokeSQL(k catalog.Kind, id string, p catalog.Privilege) string {
	return fmt.Sprintf("REVOKE %s %s FROM %s", privList(p.Privileges), objRefForGrant(k, id), granteeSQL(p.Grantee))
}

// privilegeChanges implements spec.md §4.1's privilege follow-on: for each
// grantee, diff the held privilege set and grant-option flag between old
// and new ACLs, grounded on pgschema's privilegeDiff.generateAlterPrivilege
// Statements (revoke removed privileges, grant added ones, and re-grant
// WITH GRANT OPTION when it toggles on — PostgreSQL has no standalone "SET
// GRANT OPTION", so a grant-option-only change re-grants the full set).
func privilegeChanges(k catalog.Kind, id string, old, new []catalog.Privilege, schema string) ([]*change.Change, error) {
	_, aclKind := privilegeCatalogKind[k]
	if !aclKind {
		return nil, nil
	}

	oldByGrantee, err := indexPrivileges(id, old)
	if err != nil {
		return nil, err
	}
	newByGrantee, err := indexPrivileges(id, new)
	if err != nil {
		return nil, err
	}

	var out []*change.Change
	grantees := make(map[string]bool, len(oldByGrantee)+len(newByGrantee))
	for g := range oldByGrantee {
		grantees[g] = true
	}
	for g := range newByGrantee {
		grantees[g] = true
	}

	sortedGrantees := make([]string, 0, len(grantees))
	for g := range grantees {
		sortedGrantees = append(sortedGrantees, g)
	}
	sort.Strings(sortedGrantees)

	for _, grantee := range sortedGrantees {
		op, hasOld := oldByGrantee[grantee]
		np, hasNew := newByGrantee[grantee]
		aclID := catalog.ACLID(id, grantee)

		switch {
		case hasNew && !hasOld:
			c := change.New(string(k), change.OpCreate, change.ScopePrivilege, literalSerializer(grantSQL(k, id, np)))
			c.MainStableID = id
			c.SchemaName = schema
			c.WithCreates(aclID)
			c.WithRequires(id)
			if np.Grantee != "" {
				c.WithRequires(catalog.StableID(catalog.KindRole, np.Grantee))
			}
			out = append(out, c)
		case hasOld && !hasNew:
			c := change.New(string(k), change.OpDrop, change.ScopePrivilege, literalSerializer(revokeSQL(k, id, op)))
			c.MainStableID = id
			c.SchemaName = schema
			c.WithDrops(aclID)
			c.WithRequires(id, aclID)
			out = append(out, c)
		case hasOld && hasNew:
			out = append(out, alterPrivilege(k, id, schema, aclID, op, np)...)
		}
	}
	return out, nil
}

func alterPrivilege(k catalog.Kind, id, schema, aclID string, old, new catalog.Privilege) []*change.Change {
	removed, added := diffStringSet(old.Privileges, new.Privileges)
	var out []*change.Change

	if len(removed) > 0 {
		revoke := catalog.Privilege{Grantee: old.Grantee, Privileges: removed}
		c := change.New(string(k), change.OpDrop, change.ScopePrivilege, literalSerializer(revokeSQL(k, id, revoke)))
		c.MainStableID = id
		c.SchemaName = schema
		c.WithDrops(aclID)
		c.WithRequires(id, aclID)
		out = append(out, c)
	}
	if len(added) > 0 || old.GrantOption != new.GrantOption {
		grant := new
		if len(added) == 0 {
			// grant-option-only change: PostgreSQL has no ALTER for this,
			// re-grant the full current privilege set WITH GRANT OPTION.
			grant.Privileges = new.Privileges
		}
		c := change.New(string(k), change.OpAlter, change.ScopePrivilege, literalSerializer(grantSQL(k, id, grant)))
		c.MainStableID = id
		c.SchemaName = schema
		c.WithCreates(aclID)
		c.WithRequires(id)
		out = append(out, c)
	}
	return out
}

// indexPrivileges collapses an ACL into one entry per grantee, merging
// privilege lists for a grantee that appears more than once. spec.md §7.2
// names "mixed grantable flag in a single GRANT" as a fatal differ invariant
// violation: a grantee can't hold some privileges WITH GRANT OPTION and
// others without it in a single catalog.Privilege (one GrantOption bool), so
// two entries for the same grantee disagreeing on GrantOption can't be
// merged and must fail immediately instead of silently keeping one of them.
func indexPrivileges(id string, ps []catalog.Privilege) (map[string]catalog.Privilege, error) {
	out := make(map[string]catalog.Privilege, len(ps))
	for _, p := range ps {
		existing, ok := out[p.Grantee]
		if !ok {
			out[p.Grantee] = p
			continue
		}
		if existing.GrantOption != p.GrantOption {
			return nil, change.MixedGrantOptionError{Grantee: p.Grantee, Object: id}
		}
		existing.Privileges = append(existing.Privileges, p.Privileges...)
		out[p.Grantee] = existing
	}
	return out, nil
}

func diffStringSet(old, new []string) (removed, added []string) {
	oldSet := make(map[string]bool, len(old))
	for _, s := range old {
		oldSet[s] = true
	}
	newSet := make(map[string]bool, len(new))
	for _, s := range new {
		newSet[s] = true
	}
	for _, s := range old {
		if !newSet[s] {
			removed = append(removed, s)
		}
	}
	for _, s := range new {
		if !oldSet[s] {
			added = append(added, s)
		}
	}
	return removed, added
}
