// SPDX-License-Identifier: Apache-2.0

package planner

import (
	"strings"

	"github.com/pgcompare/pgcompare/pkg/change"
)

// defaultPrivilegeObjTypeToKind maps the object-type token embedded in a
// default-privilege stable id (catalog.DefaultPrivilegeID's objType
// argument) to the catalog kind of objects it governs. ALTER DEFAULT
// PRIVILEGES never targets roles or schemas, so those kinds have no entry
// here (spec.md §4.4).
var defaultPrivilegeObjTypeToKind = map[string]string{
	"tables":    "table",
	"sequences": "sequence",
	"functions": "function",
	"types":     "domain",
}

// objIndex groups CREATE change indices by (kind, schema) so
// DefaultPrivilegeConstraints can look up matching producers in O(1).
type objIndex struct {
	bySchema map[string]map[string][]int // schema -> kind -> indices
}

func buildObjIndex(changes []*change.Change) objIndex {
	idx := objIndex{bySchema: make(map[string]map[string][]int)}
	for i, c := range changes {
		if c.Operation != change.OpCreate || c.Scope != change.ScopeObject {
			continue
		}
		byKind, ok := idx.bySchema[c.SchemaName]
		if !ok {
			byKind = make(map[string][]int)
			idx.bySchema[c.SchemaName] = byKind
		}
		byKind[c.ObjectType] = append(byKind[c.ObjectType], i)
	}
	return idx
}

// DefaultPrivilegeConstraints implements spec.md §4.4's custom constraint
// generator for ALTER DEFAULT PRIVILEGES: a default-privilege change must run
// before any CREATE of an object kind/schema it governs, since PostgreSQL
// applies default privileges automatically at creation time rather than
// retroactively. A schema-scoped rule (c.SchemaName != "") only reaches
// creates in that schema; a database-wide rule (c.SchemaName == "") reaches
// creates in every schema.
func DefaultPrivilegeConstraints(changes []*change.Change, _ map[string][]int) [][2]int {
	idx := buildObjIndex(changes)
	var edges [][2]int

	for i, c := range changes {
		if c.Scope != change.ScopeDefaultPrivilege || c.Operation == change.OpDrop {
			continue
		}
		kind, ok := defaultPrivilegeObjTypeToKind[defaultPrivilegeObjType(c)]
		if !ok {
			continue
		}

		if c.SchemaName != "" {
			for _, j := range idx.bySchema[c.SchemaName][kind] {
				edges = append(edges, [2]int{i, j})
			}
			continue
		}
		for _, byKind := range idx.bySchema {
			for _, j := range byKind[kind] {
				edges = append(edges, [2]int{i, j})
			}
		}
	}
	return edges
}

// defaultPrivilegeObjType extracts the objType component of a
// "defacl:grantor:schema:objType:grantee" stable id.
func defaultPrivilegeObjType(c *change.Change) string {
	parts := strings.Split(c.MainStableID, ":")
	if len(parts) != 5 {
		return ""
	}
	return parts[3]
}
