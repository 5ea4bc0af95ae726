// SPDX-License-Identifier: Apache-2.0

package apply

import (
	"fmt"
	"strings"

	pgq "github.com/pganalyze/pg_query_go/v6"
)

// RefKind is an ObjectRef's object kind, coarser than catalog.Kind: spec.md
// §4.6 step 5's kind-compatibility groups (table/view/materialized_view/
// foreign_table all satisfy a "table" requirement) are modeled directly as
// compatibility sets rather than as distinct kinds here.
type RefKind string

const (
	RefTable    RefKind = "table"
	RefType     RefKind = "type"
	RefFunction RefKind = "function"
	RefSchema   RefKind = "schema"
	RefRole     RefKind = "role"
	RefSequence RefKind = "sequence"
	RefOther    RefKind = "other"
)

// ObjectRef is a reference to a database object discovered in a
// statement's AST (spec.md §4.6 step 4).
type ObjectRef struct {
	Kind      RefKind
	Schema    string // "" if unqualified
	Name      string
	Signature string // normalized, only set for Kind == RefFunction
}

func (r ObjectRef) String() string {
	if r.Schema == "" {
		return fmt.Sprintf("%s:%s", r.Kind, r.Name)
	}
	return fmt.Sprintf("%s:%s.%s", r.Kind, r.Schema, r.Name)
}

// tableCompatibleKinds and typeCompatibleKinds implement spec.md §4.6 step
// 5's kind-compatibility groups for resolving a `requires` entry against a
// differently-kinded `provides` entry (e.g. a foreign_table satisfies a
// "table" requirement).
var tableCompatibleKinds = map[RefKind]bool{RefTable: true}
var typeCompatibleKinds = map[RefKind]bool{RefType: true, RefTable: true}

// KindCompatible reports whether a producer of kind `have` can satisfy a
// requirement of kind `want`.
func KindCompatible(want, have RefKind) bool {
	if want == have {
		return true
	}
	switch want {
	case RefTable:
		return tableCompatibleKinds[have]
	case RefType:
		return typeCompatibleKinds[have]
	}
	return false
}

func rangeVarRef(rv *pgq.RangeVar) ObjectRef {
	return ObjectRef{Kind: RefTable, Schema: rv.GetSchemaname(), Name: rv.GetRelname()}
}

func typeNameRef(tn *pgq.TypeName) ObjectRef {
	names := tn.GetNames()
	var parts []string
	for _, n := range names {
		if s := n.GetString_().GetSval(); s != "" && s != "pg_catalog" {
			parts = append(parts, s)
		}
	}
	if len(parts) == 0 {
		return ObjectRef{}
	}
	if len(parts) == 1 {
		return ObjectRef{Kind: RefType, Name: parts[0]}
	}
	return ObjectRef{Kind: RefType, Schema: parts[0], Name: parts[len(parts)-1]}
}

func objectNameRef(kind RefKind, names []*pgq.Node) ObjectRef {
	var parts []string
	for _, n := range names {
		if s := n.GetString_().GetSval(); s != "" {
			parts = append(parts, s)
		}
	}
	switch len(parts) {
	case 0:
		return ObjectRef{}
	case 1:
		return ObjectRef{Kind: kind, Name: parts[0]}
	default:
		return ObjectRef{Kind: kind, Schema: parts[0], Name: parts[len(parts)-1]}
	}
}

// normalizeSignature implements spec.md §4.6 step 4's function/procedure
// signature normalization: lowercased, stripped whitespace, quoted
// identifiers preserved. Grounded on pkg/sql2pgroll/typename.go's TypeName
// rendering, applied per-argument and joined.
func normalizeSignature(params []*pgq.FunctionParameter) string {
	parts := make([]string, 0, len(params))
	for _, p := range params {
		t := p.GetArgType()
		parts = append(parts, strings.ToLower(strings.TrimSpace(pgq.DeparseTypeName(t))))
	}
	return "(" + strings.Join(parts, ",") + ")"
}

// Provides returns the object(s) a statement defines (spec.md §4.6 step
// 4). Classes that define no addressable object (GRANT, COMMENT, DO, SET)
// return nil.
func Provides(s Statement) []ObjectRef {
	switch n := s.Node.(type) {
	case *pgq.Node_CreateSchemaStmt:
		return []ObjectRef{{Kind: RefSchema, Name: n.CreateSchemaStmt.GetSchemaname()}}
	case *pgq.Node_CreateStmt:
		return []ObjectRef{rangeVarRef(n.CreateStmt.GetRelation())}
	case *pgq.Node_IndexStmt:
		return []ObjectRef{{Kind: RefOther, Schema: n.IndexStmt.GetRelation().GetSchemaname(), Name: n.IndexStmt.GetIdxname()}}
	case *pgq.Node_CreateSeqStmt:
		return []ObjectRef{{Kind: RefSequence, Schema: n.CreateSeqStmt.GetSequence().GetSchemaname(), Name: n.CreateSeqStmt.GetSequence().GetRelname()}}
	case *pgq.Node_ViewStmt:
		return []ObjectRef{rangeVarRef(n.ViewStmt.GetView())}
	case *pgq.Node_CreateTableAsStmt:
		return []ObjectRef{rangeVarRef(n.CreateTableAsStmt.GetInto().GetRel())}
	case *pgq.Node_CreateFunctionStmt:
		ref := objectNameRef(RefFunction, n.CreateFunctionStmt.GetFuncname())
		ref.Signature = normalizeSignature(n.CreateFunctionStmt.GetParameters())
		return []ObjectRef{ref}
	case *pgq.Node_CreateDomainStmt:
		return []ObjectRef{objectNameRef(RefType, n.CreateDomainStmt.GetDomainname())}
	case *pgq.Node_CreateEnumStmt:
		return []ObjectRef{objectNameRef(RefType, n.CreateEnumStmt.GetTypeName())}
	case *pgq.Node_CompositeTypeStmt:
		return []ObjectRef{rangeVarRef(n.CompositeTypeStmt.GetTypevar())}
	case *pgq.Node_CreateRangeStmt:
		return []ObjectRef{objectNameRef(RefType, n.CreateRangeStmt.GetTypeName())}
	case *pgq.Node_CreateExtensionStmt:
		return []ObjectRef{{Kind: RefOther, Name: n.CreateExtensionStmt.GetExtname()}}
	case *pgq.Node_CreateRoleStmt:
		return []ObjectRef{{Kind: RefRole, Name: n.CreateRoleStmt.GetRole()}}
	case *pgq.Node_CreateFdwStmt:
		return []ObjectRef{{Kind: RefOther, Name: n.CreateFdwStmt.GetFdwname()}}
	case *pgq.Node_CreateForeignServerStmt:
		return []ObjectRef{{Kind: RefOther, Name: n.CreateForeignServerStmt.GetServername()}}
	case *pgq.Node_CreateForeignTableStmt:
		return []ObjectRef{rangeVarRef(n.CreateForeignTableStmt.GetBase().GetRelation())}
	default:
		return nil
	}
}

// Requires returns the object(s) a statement must find already defined
// (spec.md §4.6 step 4). This is a conservative subset: the primary
// relation/type/function a statement operates on, plus the FROM/JOIN
// relations of a CREATE VIEW's query and the foreign-key target tables of a
// CREATE TABLE. ALTER_TABLE sub-clauses
// that add foreign keys or column defaults referencing other objects are
// not walked individually — those show up as RUNTIME_ASSUMED_EXTERNAL_
// DEPENDENCY only if execution itself fails, which is an acceptable
// simplification in the absence of a full expression-tree walk.
func Requires(s Statement) []ObjectRef {
	switch n := s.Node.(type) {
	case *pgq.Node_AlterTableStmt:
		return []ObjectRef{rangeVarRef(n.AlterTableStmt.GetRelation())}
	case *pgq.Node_RenameStmt:
		if rv := n.RenameStmt.GetRelation(); rv != nil {
			return []ObjectRef{rangeVarRef(rv)}
		}
		return nil
	case *pgq.Node_IndexStmt:
		return []ObjectRef{rangeVarRef(n.IndexStmt.GetRelation())}
	case *pgq.Node_AlterSeqStmt:
		return []ObjectRef{rangeVarRef(n.AlterSeqStmt.GetSequence())}
	case *pgq.Node_RefreshMatViewStmt:
		return []ObjectRef{rangeVarRef(n.RefreshMatViewStmt.GetRelation())}
	case *pgq.Node_CreateTrigStmt:
		refs := []ObjectRef{rangeVarRef(n.CreateTrigStmt.GetRelation())}
		fn := objectNameRef(RefFunction, n.CreateTrigStmt.GetFuncname())
		fn.Signature = "()"
		refs = append(refs, fn)
		return refs
	case *pgq.Node_RuleStmt:
		return []ObjectRef{rangeVarRef(n.RuleStmt.GetRelation())}
	case *pgq.Node_CreatePolicyStmt:
		return []ObjectRef{rangeVarRef(n.CreatePolicyStmt.GetTable())}
	case *pgq.Node_AlterEnumStmt:
		return []ObjectRef{objectNameRef(RefType, n.AlterEnumStmt.GetTypeName())}
	case *pgq.Node_CreateEventTrigStmt:
		fn := objectNameRef(RefFunction, n.CreateEventTrigStmt.GetFuncname())
		fn.Signature = "()"
		return []ObjectRef{fn}
	case *pgq.Node_CreateForeignTableStmt:
		return []ObjectRef{{Kind: RefOther, Name: n.CreateForeignTableStmt.GetServername()}}
	case *pgq.Node_CreateUserMappingStmt:
		return []ObjectRef{{Kind: RefOther, Name: n.CreateUserMappingStmt.GetServername()}}
	case *pgq.Node_AlterOwnerStmt:
		return ownerTargetRef(n.AlterOwnerStmt.GetObjectType(), n.AlterOwnerStmt.GetObject(), n.AlterOwnerStmt.GetRelation())
	case *pgq.Node_CommentStmt:
		return ownerTargetRef(n.CommentStmt.GetObjtype(), n.CommentStmt.GetObject(), nil)
	case *pgq.Node_DropStmt:
		var refs []ObjectRef
		for _, o := range n.DropStmt.GetObjects() {
			refs = append(refs, dropObjectRef(n.DropStmt.GetRemoveType(), o))
		}
		return refs
	case *pgq.Node_GrantStmt:
		return grantStmtRefs(n.GrantStmt)
	case *pgq.Node_GrantRoleStmt:
		return grantRoleStmtRefs(n.GrantRoleStmt)
	case *pgq.Node_AlterDefaultPrivilegesStmt:
		return grantStmtRefs(n.AlterDefaultPrivilegesStmt.GetAction())
	case *pgq.Node_ViewStmt:
		return rangeVarsIn(n.ViewStmt.GetQuery())
	case *pgq.Node_CreateStmt:
		var refs []ObjectRef
		for _, elt := range n.CreateStmt.GetTableElts() {
			if cd := elt.GetColumnDef(); cd != nil {
				for _, c := range cd.GetConstraints() {
					if pk := c.GetConstraint().GetPktable(); pk != nil {
						refs = append(refs, rangeVarRef(pk))
					}
				}
			} else if pk := elt.GetConstraint().GetPktable(); pk != nil {
				refs = append(refs, rangeVarRef(pk))
			}
		}
		return refs
	default:
		return nil
	}
}

// grantStmtRefs implements spec.md §4.2's general GRANT/REVOKE rule ("GRANT
// p ON X TO g → requires <X>, role:g") for the apply engine's dependency
// graph, mirroring pkg/differ/privilege.go's privilegeChanges, which already
// requires the object and grantee role ids for the differ path. A GrantStmt
// for ALTER DEFAULT PRIVILEGES' embedded action carries no Objects (default
// privileges target a future object class, not a concrete one), so only
// grantees are required in that case.
func grantStmtRefs(gs *pgq.GrantStmt) []ObjectRef {
	if gs == nil {
		return nil
	}
	var refs []ObjectRef
	for _, o := range gs.GetObjects() {
		refs = append(refs, grantObjectRef(gs.GetObjtype(), o))
	}
	for _, g := range gs.GetGrantees() {
		if ref, ok := roleSpecRef(g); ok {
			refs = append(refs, ref)
		}
	}
	return refs
}

// grantRoleStmtRefs implements the GRANT role TO member form: both the
// granted role(s) and the grantee(s) must already exist.
func grantRoleStmtRefs(grs *pgq.GrantRoleStmt) []ObjectRef {
	if grs == nil {
		return nil
	}
	var refs []ObjectRef
	for _, r := range grs.GetGrantedRoles() {
		if ref, ok := roleSpecRef(r); ok {
			refs = append(refs, ref)
		}
	}
	for _, g := range grs.GetGranteeRoles() {
		if ref, ok := roleSpecRef(g); ok {
			refs = append(refs, ref)
		}
	}
	return refs
}

// roleSpecRef resolves a RoleSpec node to a role ObjectRef; PUBLIC is not a
// catalog object and is reported with ok=false.
func roleSpecRef(n *pgq.Node) (ObjectRef, bool) {
	rs := n.GetRoleSpec()
	if rs == nil || rs.GetRoletype() != pgq.RoleSpecType_ROLESPEC_CSTRING {
		return ObjectRef{}, false
	}
	return ObjectRef{Kind: RefRole, Name: rs.GetRolename()}, true
}

// grantObjectRef maps one GrantStmt.Objects entry to an ObjectRef, dispatched
// on the same Postgres ObjectType enum dropObjectRef uses; unlike DROP's
// targets (wrapped in a List/String node), GRANT carries RangeVar/String/
// ObjectWithArgs nodes directly.
func grantObjectRef(objType pgq.ObjectType, obj *pgq.Node) ObjectRef {
	if rv := obj.GetRangeVar(); rv != nil {
		if objType == pgq.ObjectType_OBJECT_SEQUENCE {
			return ObjectRef{Kind: RefSequence, Schema: rv.GetSchemaname(), Name: rv.GetRelname()}
		}
		return rangeVarRef(rv)
	}
	if str := obj.GetString_(); str != nil {
		switch objType {
		case pgq.ObjectType_OBJECT_SCHEMA:
			return ObjectRef{Kind: RefSchema, Name: str.GetSval()}
		default:
			return ObjectRef{Kind: RefOther, Name: str.GetSval()}
		}
	}
	if objWithArgs := obj.GetObjectWithArgs(); objWithArgs != nil {
		ref := objectNameRef(RefFunction, objWithArgs.GetObjname())
		ref.Signature = "(" + strings.Join(deparseTypeNames(objWithArgs.GetObjargs()), ",") + ")"
		return ref
	}
	return ObjectRef{}
}

// ownerTargetRef handles the handful of statement kinds (ALTER ... OWNER
// TO, COMMENT ON) whose target is a generic ObjectWithArgs/list-of-names
// payload rather than a RangeVar, keyed by the same ObjectType enum DROP
// uses.
func ownerTargetRef(objType pgq.ObjectType, obj *pgq.Node, rel *pgq.RangeVar) []ObjectRef {
	if rel != nil {
		return []ObjectRef{rangeVarRef(rel)}
	}
	return []ObjectRef{dropObjectRef(objType, obj)}
}

// dropObjectRef maps a DROP/COMMENT/OWNER target node to an ObjectRef,
// dispatched on Postgres's ObjectType enum.
func dropObjectRef(objType pgq.ObjectType, obj *pgq.Node) ObjectRef {
	if list := obj.GetList(); list != nil {
		switch objType {
		case pgq.ObjectType_OBJECT_FUNCTION, pgq.ObjectType_OBJECT_PROCEDURE, pgq.ObjectType_OBJECT_AGGREGATE:
			return objectNameRef(RefFunction, list.GetItems())
		case pgq.ObjectType_OBJECT_TYPE, pgq.ObjectType_OBJECT_DOMAIN:
			return objectNameRef(RefType, list.GetItems())
		default:
			return objectNameRef(RefOther, list.GetItems())
		}
	}
	if str := obj.GetString_(); str != nil {
		switch objType {
		case pgq.ObjectType_OBJECT_SCHEMA:
			return ObjectRef{Kind: RefSchema, Name: str.GetSval()}
		case pgq.ObjectType_OBJECT_ROLE:
			return ObjectRef{Kind: RefRole, Name: str.GetSval()}
		default:
			return ObjectRef{Kind: RefOther, Name: str.GetSval()}
		}
	}
	if objWithArgs := obj.GetObjectWithArgs(); objWithArgs != nil {
		ref := objectNameRef(RefFunction, objWithArgs.GetObjname())
		ref.Signature = "(" + strings.Join(deparseTypeNames(objWithArgs.GetObjargs()), ",") + ")"
		return ref
	}
	switch objType {
	case pgq.ObjectType_OBJECT_TABLE, pgq.ObjectType_OBJECT_VIEW, pgq.ObjectType_OBJECT_MATVIEW,
		pgq.ObjectType_OBJECT_FOREIGN_TABLE, pgq.ObjectType_OBJECT_SEQUENCE:
		return objectNameRef(RefTable, obj.GetList().GetItems())
	}
	return ObjectRef{}
}

func deparseTypeNames(tns []*pgq.TypeName) []string {
	out := make([]string, 0, len(tns))
	for _, t := range tns {
		out = append(out, strings.ToLower(strings.TrimSpace(pgq.DeparseTypeName(t))))
	}
	return out
}
