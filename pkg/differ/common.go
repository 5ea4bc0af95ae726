// SPDX-License-Identifier: Apache-2.0

package differ

import (
	"strings"

	"github.com/pgcompare/pgcompare/pkg/catalog"
)

// refSQL turns a stable id back into schema-qualified SQL text, e.g.
// "table:public.orders" -> `"public"."orders"`. Stable ids are always
// `kind:schema.name` or `kind:name` (spec.md §3.1), so splitting on the
// first '.' after the kind prefix recovers exactly the parts qualify needs.
func refSQL(id string) string {
	kind := catalog.KindOf(id)
	if kind == "" {
		return quoteIdent(id)
	}
	rest := id[len(string(kind))+1:]
	if idx := strings.IndexByte(rest, '.'); idx >= 0 {
		return qualify(rest[:idx], rest[idx+1:])
	}
	return quoteIdent(rest)
}

// schemaOf extracts an object's owning schema for spec.md §4.3 key 2's
// logical pre-sort, or "" for cluster-wide/sub-entity kinds. A sub-entity
// change's SchemaName is therefore "", not its parent table's schema.
func schemaOf(o catalog.Object) string {
	switch v := o.(type) {
	case *catalog.Schema:
		return v.Name
	case *catalog.Collation:
		return v.Schema
	case *catalog.Sequence:
		return v.Schema
	case *catalog.Enum:
		return v.Schema
	case *catalog.Composite:
		return v.Schema
	case *catalog.Range:
		return v.Schema
	case *catalog.Domain:
		return v.Schema
	case *catalog.Table:
		return v.Schema
	case *catalog.View:
		return v.Schema
	case *catalog.MaterializedView:
		return v.Schema
	case *catalog.Function:
		return v.Schema
	case *catalog.Procedure:
		return v.Schema
	case *catalog.Aggregate:
		return v.Schema
	case *catalog.ForeignTable:
		return v.Schema
	default:
		return ""
	}
}

// commentOf extracts an object's COMMENT ON text, if the kind carries one.
func commentOf(o catalog.Object) string {
	switch v := o.(type) {
	case *catalog.Schema:
		return v.Comment
	case *catalog.Role:
		return v.Comment
	case *catalog.Extension:
		return v.Comment
	case *catalog.Language:
		return v.Comment
	case *catalog.Collation:
		return v.Comment
	case *catalog.Sequence:
		return v.Comment
	case *catalog.Enum:
		return v.Comment
	case *catalog.Composite:
		return v.Comment
	case *catalog.Range:
		return v.Comment
	case *catalog.Domain:
		return v.Comment
	case *catalog.Column:
		return v.Comment
	case *catalog.Table:
		return v.Comment
	case *catalog.Constraint:
		return v.Comment
	case *catalog.Index:
		return v.Comment
	case *catalog.Trigger:
		return v.Comment
	case *catalog.Rule:
		return v.Comment
	case *catalog.RLSPolicy:
		return v.Comment
	case *catalog.View:
		return v.Comment
	case *catalog.MaterializedView:
		return v.Comment
	case *catalog.Function:
		return v.Comment
	case *catalog.Procedure:
		return v.Comment
	case *catalog.Aggregate:
		return v.Comment
	case *catalog.EventTrigger:
		return v.Comment
	case *catalog.Publication:
		return v.Comment
	case *catalog.Subscription:
		return v.Comment
	case *catalog.FDW:
		return v.Comment
	case *catalog.ForeignServer:
		return v.Comment
	case *catalog.ForeignTable:
		return v.Comment
	default:
		return ""
	}
}

// aclOf extracts an object's ACL, if the kind carries one.
func aclOf(o catalog.Object) []catalog.Privilege {
	switch v := o.(type) {
	case *catalog.Schema:
		return v.ACL
	case *catalog.Sequence:
		return v.ACL
	case *catalog.Column:
		return v.ACL
	case *catalog.Table:
		return v.ACL
	case *catalog.View:
		return v.ACL
	case *catalog.MaterializedView:
		return v.ACL
	case *catalog.Function:
		return v.ACL
	case *catalog.Procedure:
		return v.ACL
	case *catalog.Aggregate:
		return v.ACL
	case *catalog.ForeignServer:
		return v.ACL
	case *catalog.ForeignTable:
		return v.ACL
	default:
		return nil
	}
}

// createRequires builds the extra `requires` entries a CREATE needs beyond
// the producer/consumer edges the planner derives from Creates/Requires on
// other changes (spec.md §4.2): the owning schema/role, and for sub-
// entities and foreign-key-bearing kinds, their parent/referenced objects.
func createRequires(k catalog.Kind, o catalog.Object) []string {
	var reqs []string
	if schema := schemaOf(o); schema != "" {
		reqs = append(reqs, catalog.StableID(catalog.KindSchema, schema))
	}
	// A Role's own Owner() is itself (PostgreSQL roles aren't owned by
	// another role), so skip it there to avoid a self-dependency edge.
	if owner := o.Owner(); owner != "" && k != catalog.KindRole {
		reqs = append(reqs, catalog.StableID(catalog.KindRole, owner))
	}

	switch v := o.(type) {
	case *catalog.Column:
		reqs = append(reqs, v.Table)
	case *catalog.Constraint:
		reqs = append(reqs, v.Table)
		if v.RefTable != "" {
			reqs = append(reqs, v.RefTable)
		}
	case *catalog.Index:
		reqs = append(reqs, v.Table)
	case *catalog.Trigger:
		reqs = append(reqs, v.Table, v.FunctionID)
	case *catalog.Rule:
		reqs = append(reqs, v.Table)
	case *catalog.RLSPolicy:
		reqs = append(reqs, v.Table)
	case *catalog.EventTrigger:
		reqs = append(reqs, v.FunctionID)
	case *catalog.ForeignTable:
		reqs = append(reqs, catalog.StableID(catalog.KindForeignServer, v.ServerName))
	case *catalog.ForeignServer:
		reqs = append(reqs, catalog.StableID(catalog.KindFDW, v.FDWName))
	case *catalog.UserMapping:
		reqs = append(reqs, catalog.StableID(catalog.KindForeignServer, v.ServerName))
		if v.RoleName != "" && v.RoleName != "public" {
			reqs = append(reqs, catalog.StableID(catalog.KindRole, v.RoleName))
		}
	case *catalog.Table:
		if v.PartitionOf != "" {
			reqs = append(reqs, v.PartitionOf)
		}
	}
	return reqs
}
