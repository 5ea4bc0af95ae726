// SPDX-License-Identifier: Apache-2.0

package differ

import (
	"fmt"

	"github.com/pgcompare/pgcompare/pkg/catalog"
	"github.com/pgcompare/pgcompare/pkg/change"
)

// commentCatalogKind maps an object kind to the COMMENT ON clause keyword
// PostgreSQL expects before the object reference, grounded on
// pkg/migrations/op_set_comment.go's per-kind COMMENT ON dispatch.
var commentCatalogKind = map[catalog.Kind]string{
	catalog.KindSchema:           "SCHEMA",
	catalog.KindRole:             "ROLE",
	catalog.KindExtension:        "EXTENSION",
	catalog.KindLanguage:         "LANGUAGE",
	catalog.KindCollation:        "COLLATION",
	catalog.KindSequence:         "SEQUENCE",
	catalog.KindEnum:             "TYPE",
	catalog.KindComposite:        "TYPE",
	catalog.KindRange:            "TYPE",
	catalog.KindDomain:           "DOMAIN",
	catalog.KindTable:            "TABLE",
	catalog.KindColumn:           "COLUMN",
	catalog.KindConstraint:       "CONSTRAINT",
	catalog.KindIndex:            "INDEX",
	catalog.KindTrigger:          "TRIGGER",
	catalog.KindRule:             "RULE",
	catalog.KindPolicy:           "POLICY",
	catalog.KindView:             "VIEW",
	catalog.KindMaterializedView: "MATERIALIZED VIEW",
	catalog.KindFunction:         "FUNCTION",
	catalog.KindProcedure:        "PROCEDURE",
	catalog.KindAggregate:        "AGGREGATE",
	catalog.KindEventTrigger:     "EVENT TRIGGER",
	catalog.KindPublication:      "PUBLICATION",
	catalog.KindSubscription:     "SUBSCRIPTION",
	catalog.KindFDW:              "FOREIGN DATA WRAPPER",
	catalog.KindForeignServer:    "SERVER",
	catalog.KindForeignTable:     "FOREIGN TABLE",
}

// commentObjRef renders the COMMENT ON target reference. Constraint,
// trigger, rule, and policy comments need an "ON <table>" suffix; a column
// is its table's reference plus the column name, and an index is its name
// qualified by the table's schema; every other kind just needs its own
// (possibly schema-qualified) reference, recovered from the stable id via
// refSQL.
func commentObjRef(k catalog.Kind, id string) string {
	ref := refSQL(id)
	switch k {
	case catalog.KindColumn:
		table, name := splitSubEntityID(id)
		return refSQL(table) + "." + quoteIdent(name)
	case catalog.KindIndex:
		table, name := splitSubEntityID(id)
		schema, _ := splitSubEntityID(table)
		return qualify(schema, name)
	case catalog.KindConstraint, catalog.KindTrigger, catalog.KindRule, catalog.KindPolicy:
		// id is "kind:table:name"; refSQL only recovers the last qualifier
		// pair, so split out the table portion explicitly.
		table, name := splitSubEntityID(id)
		return fmt.Sprintf("%s ON %s", quoteIdent(name), refSQL(table))
	default:
		return ref
	}
}

// splitSubEntityID splits a sub-entity stable id ("constraint:table:public.
// orders.name") into its owning table's own stable id ("table:public.
// orders") and the sub-entity's bare name. The table's stable id is already
// embedded verbatim (it has its own "table:" prefix), so this only needs to
// find where it ends: at the final '.'-delimited segment.
func splitSubEntityID(id string) (table, name string) {
	kind := catalog.KindOf(id)
	rest := id[len(string(kind))+1:]
	for i := len(rest) - 1; i >= 0; i-- {
		if rest[i] == '.' {
			return rest[:i], rest[i+1:]
		}
	}
	return rest, ""
}

// commentChange emits at most one CREATE/ALTER/DROP-scope=comment change
// for an object's comment text moving from old to new (spec.md §4.1's
// comment follow-on, §4.3's comment scope ordering).
func commentChange(k catalog.Kind, id, old, new, schema string) []*change.Change {
	if old == new {
		return nil
	}
	commentKind, ok := commentCatalogKind[k]
	if !ok {
		return nil
	}
	commentID := catalog.CommentID(id)

	if new == "" {
		c := change.New(string(k), change.OpDrop, change.ScopeComment, literalSerializer(
			fmt.Sprintf("COMMENT ON %s %s IS NULL", commentKind, commentObjRef(k, id))))
		c.MainStableID = id
		c.SchemaName = schema
		c.WithDrops(commentID)
		c.WithRequires(id, commentID)
		return []*change.Change{c}
	}

	op := change.OpCreate
	if old != "" {
		op = change.OpAlter
	}
	c := change.New(string(k), op, change.ScopeComment, literalSerializer(
		fmt.Sprintf("COMMENT ON %s %s IS %s", commentKind, commentObjRef(k, id), pqQuoteLiteral(new))))
	c.MainStableID = id
	c.SchemaName = schema
	c.WithCreates(commentID)
	c.WithRequires(id)
	return []*change.Change{c}
}
