// SPDX-License-Identifier: Apache-2.0

package catalog

// Catalog is a point-in-time snapshot of a PostgreSQL database's objects,
// extracted once by an external oracle (spec.md §1, "catalog extraction SQL
// ... treated as an oracle") and never mutated afterwards (spec.md §3.5).
type Catalog struct {
	ServerVersion int    // e.g. 170000
	CurrentRole   string

	// DefaultPrivileges holds every ALTER DEFAULT PRIVILEGES rule in the
	// database. These aren't attached to any single object's stable id, so
	// they live alongside the arena rather than inside it (spec.md §3.4's
	// default_privilege scope).
	DefaultPrivileges []DefaultPrivilege

	byID map[string]Object
}

// New builds an empty Catalog for the given server and current role.
func New(serverVersion int, currentRole string) *Catalog {
	return &Catalog{
		ServerVersion: serverVersion,
		CurrentRole:   currentRole,
		byID:          make(map[string]Object),
	}
}

// Add inserts an object, keyed by its stable id. Add panics on a duplicate
// id: within one extraction this is a programmer/oracle bug, not user
// input (spec.md §7.2's "invariant violations... fail immediately").
func (c *Catalog) Add(o Object) {
	if _, exists := c.byID[o.ID()]; exists {
		panic("catalog: duplicate stable id " + o.ID())
	}
	c.byID[o.ID()] = o
}

// Get looks up an object by stable id.
func (c *Catalog) Get(id string) (Object, bool) {
	o, ok := c.byID[id]
	return o, ok
}

// Has reports whether id is present in this catalog, used by the planner
// to decide whether an unresolved `requires` edge is "satisfiable by
// already exists in main" (spec.md §4.4).
func (c *Catalog) Has(id string) bool {
	_, ok := c.byID[id]
	return ok
}

// All returns every object in the catalog, in no particular order.
func (c *Catalog) All() []Object {
	out := make([]Object, 0, len(c.byID))
	for _, o := range c.byID {
		out = append(out, o)
	}
	return out
}

// OfKind returns the subset of objects of the given kind, keyed by stable id.
func (c *Catalog) OfKind(k Kind) map[string]Object {
	out := make(map[string]Object)
	for id, o := range c.byID {
		if o.Kind() == k {
			out[id] = o
		}
	}
	return out
}

// Len reports the number of objects in the catalog.
func (c *Catalog) Len() int { return len(c.byID) }
