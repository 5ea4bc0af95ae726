// SPDX-License-Identifier: Apache-2.0

package catalog

import "encoding/json"

// Object is implemented by every catalog record. IdentityFields are the
// fields that participate in the stable id: changing one means "this is a
// different object" (drop + create). DataFields are everything else,
// alterable in place (spec.md §3.3).
type Object interface {
	Kind() Kind
	ID() string
	Owner() string
	IdentityFields() map[string]any
	DataFields() map[string]any
}

// Equal implements spec.md §3.3's equality rule: same stable id, and
// canonical JSON of data_fields is byte-identical. encoding/json already
// sorts map[string]any keys alphabetically, which is what makes this
// "canonical" without any extra bookkeeping.
func Equal(a, b Object) bool {
	if a.ID() != b.ID() {
		return false
	}
	aj, err := json.Marshal(a.DataFields())
	if err != nil {
		return false
	}
	bj, err := json.Marshal(b.DataFields())
	if err != nil {
		return false
	}
	return string(aj) == string(bj)
}

// Privilege is a single ACL entry: a grantee holds a set of privileges on
// an object, optionally WITH GRANT OPTION.
type Privilege struct {
	Grantee      string   `json:"grantee"` // "" means PUBLIC
	Privileges   []string `json:"privileges"`
	GrantOption  bool     `json:"grant_option"`
	GrantedBy    string   `json:"granted_by,omitempty"`
}

// Membership records that Member has been GRANTed the Role.
type Membership struct {
	Role       string `json:"role"`
	Member     string `json:"member"`
	AdminOpt   bool   `json:"admin_option"`
	GrantedBy  string `json:"granted_by,omitempty"`
}

// DefaultPrivilege records an ALTER DEFAULT PRIVILEGES rule: objects of
// ObjectType created in the future by GrantingRole (optionally scoped to
// Schema) automatically get Privileges granted to Grantee.
type DefaultPrivilege struct {
	GrantingRole string   `json:"granting_role"`
	Schema       string   `json:"schema,omitempty"` // "" means cluster-wide
	ObjectType   string   `json:"object_type"`
	Grantee      string   `json:"grantee"`
	Privileges   []string `json:"privileges"`
	GrantOption  bool     `json:"grant_option"`
}

func (d DefaultPrivilege) StableID() string {
	return DefaultPrivilegeID(d.GrantingRole, d.Schema, d.ObjectType, d.Grantee)
}
