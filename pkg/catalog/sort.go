// SPDX-License-Identifier: Apache-2.0

package catalog

import "sort"

// Collections embedded in object records are canonically sorted at
// construction (spec.md §3.3) so that Equal is order-insensitive. Every
// constructor in this package ends by calling the relevant SortX helper.

func SortPrivileges(ps []Privilege) {
	sort.Slice(ps, func(i, j int) bool { return ps[i].Grantee < ps[j].Grantee })
	for i := range ps {
		sort.Strings(ps[i].Privileges)
	}
}

func SortMemberships(ms []Membership) {
	sort.Slice(ms, func(i, j int) bool {
		if ms[i].Role != ms[j].Role {
			return ms[i].Role < ms[j].Role
		}
		return ms[i].Member < ms[j].Member
	})
}

func SortStrings(ss []string) {
	sort.Strings(ss)
}

func SortDefaultPrivileges(ds []DefaultPrivilege) {
	sort.Slice(ds, func(i, j int) bool {
		a, b := ds[i], ds[j]
		if a.GrantingRole != b.GrantingRole {
			return a.GrantingRole < b.GrantingRole
		}
		if a.Schema != b.Schema {
			return a.Schema < b.Schema
		}
		if a.ObjectType != b.ObjectType {
			return a.ObjectType < b.ObjectType
		}
		return a.Grantee < b.Grantee
	})
	for i := range ds {
		sort.Strings(ds[i].Privileges)
	}
}
