// SPDX-License-Identifier: Apache-2.0

// Package catalog models a PostgreSQL catalog as a flat map from stable id
// to object record, the "arena + index" representation called for by
// spec.md's design notes: every object references every other object by its
// stable id string, never by pointer, so the catalog itself is never a
// cyclic graph.
package catalog

import "strings"

// Kind identifies the 29 object kinds a Catalog can hold.
type Kind string

const (
	KindSchema          Kind = "schema"
	KindRole            Kind = "role"
	KindTable           Kind = "table"
	KindColumn          Kind = "column"
	KindConstraint      Kind = "constraint"
	KindIndex           Kind = "index"
	KindView            Kind = "view"
	KindMaterializedView Kind = "materialized_view"
	KindFunction        Kind = "function"
	KindProcedure       Kind = "procedure"
	KindAggregate       Kind = "aggregate"
	KindSequence        Kind = "sequence"
	KindEnum            Kind = "enum"
	KindComposite       Kind = "composite_type"
	KindRange           Kind = "range_type"
	KindDomain          Kind = "domain"
	KindCollation       Kind = "collation"
	KindTrigger         Kind = "trigger"
	KindRule            Kind = "rule"
	KindPolicy          Kind = "rls_policy"
	KindExtension       Kind = "extension"
	KindLanguage        Kind = "language"
	KindEventTrigger    Kind = "event_trigger"
	KindPublication     Kind = "publication"
	KindSubscription    Kind = "subscription"
	KindFDW             Kind = "foreign_data_wrapper"
	KindForeignServer   Kind = "foreign_server"
	KindUserMapping     Kind = "user_mapping"
	KindForeignTable    Kind = "foreign_table"
)

// Metadata id prefixes, used for derived identifiers attached to an
// underlying object (spec.md §3.1).
const (
	prefixComment           = "comment"
	prefixACL               = "acl"
	prefixDefaultPrivilege  = "defacl"
	prefixMembership        = "membership"
)

// StableID builds a stable id string `kind:qualifier[.qualifier...]`.
func StableID(kind Kind, qualifiers ...string) string {
	return string(kind) + ":" + strings.Join(qualifiers, ".")
}

// CommentID builds the derived stable id for a comment attached to objectID.
func CommentID(objectID string) string {
	return prefixComment + ":" + objectID
}

// ACLID builds the derived stable id for a single grantee's ACL entry on objectID.
func ACLID(objectID, grantee string) string {
	return prefixACL + ":" + objectID + ":" + grantee
}

// DefaultPrivilegeID builds the derived stable id for a default-privilege rule.
func DefaultPrivilegeID(grantingRole, schema, objType, grantee string) string {
	return prefixDefaultPrivilege + ":" + grantingRole + ":" + schema + ":" + objType + ":" + grantee
}

// MembershipID builds the derived stable id for a role's membership in another role.
func MembershipID(role, member string) string {
	return prefixMembership + ":" + role + ":" + member
}

// IsMetadataID reports whether id refers to a comment, ACL, default
// privilege, or membership entry rather than a catalog object itself.
func IsMetadataID(id string) bool {
	for _, p := range []string{prefixComment, prefixACL, prefixDefaultPrivilege, prefixMembership} {
		if strings.HasPrefix(id, p+":") {
			return true
		}
	}
	return false
}

// IsObjectID is the complement of IsMetadataID.
func IsObjectID(id string) bool {
	return !IsMetadataID(id)
}

// KindOf extracts the Kind prefix of an object stable id. Returns "" for
// metadata ids or malformed input.
func KindOf(id string) Kind {
	if IsMetadataID(id) {
		return ""
	}
	idx := strings.IndexByte(id, ':')
	if idx < 0 {
		return ""
	}
	return Kind(id[:idx])
}

// builtinSchemas are never created or dropped by a plan and are excluded
// from dependency resolution (spec.md §9, glossary "Built-in object").
var builtinSchemas = map[string]bool{
	"pg_catalog":        true,
	"information_schema": true,
	"pg_toast":          true,
}

// IsBuiltinSchema reports whether schema is one PostgreSQL defines itself.
func IsBuiltinSchema(schema string) bool {
	if builtinSchemas[schema] {
		return true
	}
	return strings.HasPrefix(schema, "pg_temp") || strings.HasPrefix(schema, "pg_toast_temp")
}

// IsBuiltinID reports whether an object stable id refers to a built-in
// object: anything qualified by a built-in schema, or a well-known built-in
// role/language that every cluster carries.
func IsBuiltinID(id string) bool {
	kind := KindOf(id)
	if kind == "" {
		return false
	}
	rest := id[len(string(kind))+1:]
	switch kind {
	case KindRole:
		return builtinRoles[rest]
	case KindLanguage:
		return rest == "internal" || rest == "c" || rest == "sql"
	default:
		schema, _, ok := splitSchemaQualified(rest)
		return ok && IsBuiltinSchema(schema)
	}
}

var builtinRoles = map[string]bool{
	"pg_database_owner":     true,
	"pg_read_all_data":      true,
	"pg_write_all_data":     true,
	"pg_monitor":            true,
	"pg_signal_backend":     true,
	"pg_read_server_files":  true,
	"pg_write_server_files": true,
}

// splitSchemaQualified splits "schema.rest..." into its first component and
// the remainder, returning ok=false if there is no '.'.
func splitSchemaQualified(qualifiers string) (schema, rest string, ok bool) {
	idx := strings.IndexByte(qualifiers, '.')
	if idx < 0 {
		return "", "", false
	}
	return qualifiers[:idx], qualifiers[idx+1:], true
}
