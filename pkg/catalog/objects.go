// SPDX-License-Identifier: Apache-2.0

package catalog

// Schema is a PostgreSQL namespace.
type Schema struct {
	Name       string      `json:"name"`
	OwnerRole  string      `json:"owner"`
	Comment    string      `json:"comment,omitempty"`
	ACL        []Privilege `json:"acl,omitempty"`
}

func NewSchema(s Schema) *Schema {
	SortPrivileges(s.ACL)
	return &s
}

func (s *Schema) Kind() Kind   { return KindSchema }
func (s *Schema) ID() string   { return StableID(KindSchema, s.Name) }
func (s *Schema) Owner() string { return s.OwnerRole }
func (s *Schema) IdentityFields() map[string]any { return map[string]any{"name": s.Name} }
func (s *Schema) DataFields() map[string]any {
	return map[string]any{"owner": s.OwnerRole, "comment": s.Comment, "acl": s.ACL}
}

// Role is a PostgreSQL role (covers both "users" and "groups").
type Role struct {
	Name            string            `json:"name"`
	Superuser       bool              `json:"superuser"`
	CreateDB        bool              `json:"createdb"`
	CreateRole      bool              `json:"createrole"`
	CanLogin        bool              `json:"can_login"`
	Replication     bool              `json:"replication"`
	BypassRLS       bool              `json:"bypass_rls"`
	ConnectionLimit *int              `json:"connection_limit,omitempty"` // nil = -1/unset
	ValidUntil      *string           `json:"valid_until,omitempty"`      // nil = no expiry
	Config          map[string]string `json:"config,omitempty"`           // SET key=value multiset
	MemberOf        []Membership      `json:"member_of,omitempty"`
	Comment         string            `json:"comment,omitempty"`
}

func NewRole(r Role) *Role {
	SortMemberships(r.MemberOf)
	return &r
}

func (r *Role) Kind() Kind   { return KindRole }
func (r *Role) ID() string   { return StableID(KindRole, r.Name) }
func (r *Role) Owner() string { return r.Name }
func (r *Role) IdentityFields() map[string]any { return map[string]any{"name": r.Name} }
func (r *Role) DataFields() map[string]any {
	return map[string]any{
		"superuser": r.Superuser, "createdb": r.CreateDB, "createrole": r.CreateRole,
		"can_login": r.CanLogin, "replication": r.Replication, "bypass_rls": r.BypassRLS,
		"connection_limit": r.ConnectionLimit, "valid_until": r.ValidUntil,
		"config": r.Config, "member_of": r.MemberOf, "comment": r.Comment,
	}
}

// Extension is an installed PostgreSQL extension. Members records the
// pg_depend-discovered objects the extension owns (spec.md §9 open
// question 1), tracked as additional creates/drops on the extension's Change.
type Extension struct {
	Name      string   `json:"name"`
	Schema    string   `json:"schema"`
	Version   string   `json:"version"`
	Relocatable bool   `json:"relocatable"`
	Comment   string   `json:"comment,omitempty"`
	Members   []string `json:"members,omitempty"` // stable ids of dependent objects
}

func NewExtension(e Extension) *Extension {
	SortStrings(e.Members)
	return &e
}

func (e *Extension) Kind() Kind   { return KindExtension }
func (e *Extension) ID() string   { return StableID(KindExtension, e.Name) }
func (e *Extension) Owner() string { return "" }
func (e *Extension) IdentityFields() map[string]any { return map[string]any{"name": e.Name} }
func (e *Extension) DataFields() map[string]any {
	return map[string]any{"schema": e.Schema, "version": e.Version, "comment": e.Comment, "members": e.Members}
}

// Language is a procedural language (e.g. plpgsql).
type Language struct {
	Name     string `json:"name"`
	OwnerRole string `json:"owner"`
	Trusted  bool   `json:"trusted"`
	Comment  string `json:"comment,omitempty"`
}

func (l *Language) Kind() Kind    { return KindLanguage }
func (l *Language) ID() string    { return StableID(KindLanguage, l.Name) }
func (l *Language) Owner() string { return l.OwnerRole }
func (l *Language) IdentityFields() map[string]any { return map[string]any{"name": l.Name} }
func (l *Language) DataFields() map[string]any {
	return map[string]any{"owner": l.OwnerRole, "trusted": l.Trusted, "comment": l.Comment}
}

// Collation is a named collation rule set.
type Collation struct {
	Schema    string `json:"schema"`
	Name      string `json:"name"`
	OwnerRole string `json:"owner"`
	LcCollate string `json:"lc_collate"`
	LcCtype   string `json:"lc_ctype"`
	Provider  string `json:"provider"`
	Comment   string `json:"comment,omitempty"`
}

func (c *Collation) Kind() Kind    { return KindCollation }
func (c *Collation) ID() string    { return StableID(KindCollation, c.Schema, c.Name) }
func (c *Collation) Owner() string { return c.OwnerRole }
func (c *Collation) IdentityFields() map[string]any {
	return map[string]any{"schema": c.Schema, "name": c.Name}
}
func (c *Collation) DataFields() map[string]any {
	return map[string]any{"owner": c.OwnerRole, "lc_collate": c.LcCollate, "lc_ctype": c.LcCtype,
		"provider": c.Provider, "comment": c.Comment}
}

// Sequence is a standalone or column-owned sequence.
type Sequence struct {
	Schema      string `json:"schema"`
	Name        string `json:"name"`
	OwnerRole   string `json:"owner"`
	DataType    string `json:"data_type"`
	StartValue  int64  `json:"start_value"`
	Increment   int64  `json:"increment"`
	MinValue    *int64 `json:"min_value,omitempty"`
	MaxValue    *int64 `json:"max_value,omitempty"`
	Cycle       bool   `json:"cycle"`
	CacheSize   int64  `json:"cache_size"`
	OwnedByCol  string `json:"owned_by_column,omitempty"` // "schema.table.column" or ""
	Comment     string `json:"comment,omitempty"`
	ACL         []Privilege `json:"acl,omitempty"`
}

func NewSequence(s Sequence) *Sequence {
	SortPrivileges(s.ACL)
	return &s
}

func (s *Sequence) Kind() Kind    { return KindSequence }
func (s *Sequence) ID() string    { return StableID(KindSequence, s.Schema, s.Name) }
func (s *Sequence) Owner() string { return s.OwnerRole }
func (s *Sequence) IdentityFields() map[string]any {
	return map[string]any{"schema": s.Schema, "name": s.Name}
}
func (s *Sequence) DataFields() map[string]any {
	return map[string]any{
		"owner": s.OwnerRole, "data_type": s.DataType, "start_value": s.StartValue,
		"increment": s.Increment, "min_value": s.MinValue, "max_value": s.MaxValue,
		"cycle": s.Cycle, "cache_size": s.CacheSize, "owned_by_column": s.OwnedByCol,
		"comment": s.Comment, "acl": s.ACL,
	}
}

// Enum is a CREATE TYPE ... AS ENUM.
type Enum struct {
	Schema    string   `json:"schema"`
	Name      string   `json:"name"`
	OwnerRole string   `json:"owner"`
	Labels    []string `json:"labels"` // ordered: enum label order is significant, NOT sorted
	Comment   string   `json:"comment,omitempty"`
}

func (e *Enum) Kind() Kind    { return KindEnum }
func (e *Enum) ID() string    { return StableID(KindEnum, e.Schema, e.Name) }
func (e *Enum) Owner() string { return e.OwnerRole }
func (e *Enum) IdentityFields() map[string]any {
	return map[string]any{"schema": e.Schema, "name": e.Name}
}
func (e *Enum) DataFields() map[string]any {
	return map[string]any{"owner": e.OwnerRole, "labels": e.Labels, "comment": e.Comment}
}

// CompositeField is one attribute of a composite type.
type CompositeField struct {
	Name     string `json:"name"`
	DataType string `json:"data_type"`
}

// Composite is a CREATE TYPE ... AS (...) structured type.
type Composite struct {
	Schema    string           `json:"schema"`
	Name      string           `json:"name"`
	OwnerRole string           `json:"owner"`
	Fields    []CompositeField `json:"fields"` // ordered, NOT sorted
	Comment   string           `json:"comment,omitempty"`
}

func (c *Composite) Kind() Kind    { return KindComposite }
func (c *Composite) ID() string    { return StableID(KindComposite, c.Schema, c.Name) }
func (c *Composite) Owner() string { return c.OwnerRole }
func (c *Composite) IdentityFields() map[string]any {
	return map[string]any{"schema": c.Schema, "name": c.Name}
}
func (c *Composite) DataFields() map[string]any {
	return map[string]any{"owner": c.OwnerRole, "fields": c.Fields, "comment": c.Comment}
}

// Range is a CREATE TYPE ... AS RANGE type.
type Range struct {
	Schema     string `json:"schema"`
	Name       string `json:"name"`
	OwnerRole  string `json:"owner"`
	Subtype    string `json:"subtype"`
	SubtypeOpclass string `json:"subtype_opclass,omitempty"`
	Canonical  string `json:"canonical,omitempty"`
	Comment    string `json:"comment,omitempty"`
}

func (r *Range) Kind() Kind    { return KindRange }
func (r *Range) ID() string    { return StableID(KindRange, r.Schema, r.Name) }
func (r *Range) Owner() string { return r.OwnerRole }
func (r *Range) IdentityFields() map[string]any {
	return map[string]any{"schema": r.Schema, "name": r.Name}
}
func (r *Range) DataFields() map[string]any {
	return map[string]any{"owner": r.OwnerRole, "subtype": r.Subtype,
		"subtype_opclass": r.SubtypeOpclass, "canonical": r.Canonical, "comment": r.Comment}
}

// Domain is a CREATE DOMAIN type.
type Domain struct {
	Schema     string   `json:"schema"`
	Name       string   `json:"name"`
	OwnerRole  string   `json:"owner"`
	BaseType   string   `json:"base_type"`
	NotNull    bool     `json:"not_null"`
	Default    *string  `json:"default,omitempty"`
	Checks     []string `json:"checks,omitempty"` // CHECK expressions, sorted
	Comment    string   `json:"comment,omitempty"`
}

func NewDomain(d Domain) *Domain {
	SortStrings(d.Checks)
	return &d
}

func (d *Domain) Kind() Kind    { return KindDomain }
func (d *Domain) ID() string    { return StableID(KindDomain, d.Schema, d.Name) }
func (d *Domain) Owner() string { return d.OwnerRole }
func (d *Domain) IdentityFields() map[string]any {
	return map[string]any{"schema": d.Schema, "name": d.Name}
}
func (d *Domain) DataFields() map[string]any {
	return map[string]any{"owner": d.OwnerRole, "base_type": d.BaseType, "not_null": d.NotNull,
		"default": d.Default, "checks": d.Checks, "comment": d.Comment}
}

// Column is a table or view column. Identity fields: the table it belongs
// to and its name (the differ emits no RENAME: a column under a new name
// has a different stable id, so it is dropped and created; type changes to
// "identity-like" attributes
// such as the owning sequence/generated expr kind are non-alterable, see
// pkg/differ).
type Column struct {
	Table         string    `json:"table"` // owning table's stable id
	Name          string    `json:"name"`
	Position      int       `json:"position"`
	DataType      string    `json:"data_type"`
	Nullable      bool      `json:"nullable"`
	Default       *string   `json:"default,omitempty"`
	Comment       string    `json:"comment,omitempty"`
	Identity      *Identity `json:"identity,omitempty"`
	GeneratedExpr *string   `json:"generated_expr,omitempty"`
	ACL           []Privilege `json:"acl,omitempty"`
}

// Identity mirrors PostgreSQL identity-column configuration.
type Identity struct {
	Generation string `json:"generation"` // ALWAYS | BY DEFAULT
	Start      int64  `json:"start"`
	Increment  int64  `json:"increment"`
	Cycle      bool   `json:"cycle"`
}

func NewColumn(c Column) *Column {
	SortPrivileges(c.ACL)
	return &c
}

func (c *Column) Kind() Kind    { return KindColumn }
func (c *Column) ID() string    { return StableID(KindColumn, c.Table, c.Name) }
func (c *Column) Owner() string { return "" }
func (c *Column) IdentityFields() map[string]any {
	return map[string]any{"table": c.Table, "name": c.Name}
}
func (c *Column) DataFields() map[string]any {
	return map[string]any{
		"position": c.Position, "data_type": c.DataType, "nullable": c.Nullable,
		"default": c.Default, "comment": c.Comment, "identity": c.Identity,
		"generated_expr": c.GeneratedExpr, "acl": c.ACL,
	}
}

// NonAlterableColumnFieldsChanged reports whether a and b differ in a way
// that cannot be expressed by an ALTER TABLE sub-statement and instead
// requires DROP COLUMN + ADD COLUMN (spec.md §4.1 step 4): the generated-
// column-ness of a column is non-alterable in PostgreSQL.
func NonAlterableColumnFieldsChanged(a, b *Column) bool {
	return (a.GeneratedExpr == nil) != (b.GeneratedExpr == nil)
}

// Table is a base table (BASE_TABLE in pg_class terms; partitions and
// partitioned tables are both represented here, distinguished by
// PartitionOf/IsPartitioned).
type Table struct {
	Schema            string      `json:"schema"`
	Name              string      `json:"name"`
	OwnerRole         string      `json:"owner"`
	Columns           []Column    `json:"-"` // diffed independently via KindColumn records
	Comment           string      `json:"comment,omitempty"`
	IsPartitioned     bool        `json:"is_partitioned"`
	PartitionStrategy string      `json:"partition_strategy,omitempty"`
	PartitionKey      string      `json:"partition_key,omitempty"`
	PartitionOf       string      `json:"partition_of,omitempty"` // parent table stable id, "" if not a partition
	PartitionBound    string      `json:"partition_bound,omitempty"`
	RLSEnabled        bool        `json:"rls_enabled"`
	RLSForced         bool        `json:"rls_forced"`
	Unlogged          bool        `json:"unlogged"`
	StorageParams     map[string]string `json:"storage_params,omitempty"`
	TablespaceName    string      `json:"tablespace,omitempty"`
	ACL               []Privilege `json:"acl,omitempty"`
}

func NewTable(t Table) *Table {
	SortPrivileges(t.ACL)
	return &t
}

func (t *Table) Kind() Kind    { return KindTable }
func (t *Table) ID() string    { return StableID(KindTable, t.Schema, t.Name) }
func (t *Table) Owner() string { return t.OwnerRole }
func (t *Table) IdentityFields() map[string]any {
	return map[string]any{"schema": t.Schema, "name": t.Name}
}
func (t *Table) DataFields() map[string]any {
	return map[string]any{
		"owner": t.OwnerRole, "comment": t.Comment, "is_partitioned": t.IsPartitioned,
		"partition_strategy": t.PartitionStrategy, "partition_key": t.PartitionKey,
		"partition_of": t.PartitionOf, "partition_bound": t.PartitionBound,
		"rls_enabled": t.RLSEnabled, "rls_forced": t.RLSForced, "unlogged": t.Unlogged,
		"storage_params": t.StorageParams, "tablespace": t.TablespaceName, "acl": t.ACL,
	}
}

// ConstraintKind enumerates PostgreSQL constraint types.
type ConstraintKind string

const (
	ConstraintPrimaryKey ConstraintKind = "p"
	ConstraintUnique     ConstraintKind = "u"
	ConstraintForeignKey ConstraintKind = "f"
	ConstraintCheck      ConstraintKind = "c"
	ConstraintExclude    ConstraintKind = "x"
)

// Constraint is a table constraint. For foreign keys, RefTable/RefColumns
// identify the backing unique/primary key on the referenced table, which
// the differ turns into a `requires` edge (spec.md §4.2).
type Constraint struct {
	Table           string         `json:"table"`
	Name            string         `json:"name"`
	ConstraintKind  ConstraintKind `json:"kind"`
	Columns         []string       `json:"columns,omitempty"` // ordered, NOT sorted
	Definition      string         `json:"definition,omitempty"` // CHECK/EXCLUDE expression
	RefTable        string         `json:"ref_table,omitempty"`
	RefColumns      []string       `json:"ref_columns,omitempty"`
	OnDelete        string         `json:"on_delete,omitempty"`
	OnUpdate        string         `json:"on_update,omitempty"`
	Deferrable      bool           `json:"deferrable"`
	InitiallyDeferred bool         `json:"initially_deferred"`
	NotValid        bool           `json:"not_valid"`
	Comment         string         `json:"comment,omitempty"`
}

func (c *Constraint) Kind() Kind    { return KindConstraint }
func (c *Constraint) ID() string    { return StableID(KindConstraint, c.Table, c.Name) }
func (c *Constraint) Owner() string { return "" }
func (c *Constraint) IdentityFields() map[string]any {
	return map[string]any{"table": c.Table, "name": c.Name}
}
func (c *Constraint) DataFields() map[string]any {
	return map[string]any{
		"kind": c.ConstraintKind, "columns": c.Columns, "definition": c.Definition,
		"ref_table": c.RefTable, "ref_columns": c.RefColumns, "on_delete": c.OnDelete,
		"on_update": c.OnUpdate, "deferrable": c.Deferrable,
		"initially_deferred": c.InitiallyDeferred, "not_valid": c.NotValid, "comment": c.Comment,
	}
}

// BackingKeyID returns the stable id of the unique/primary-key constraint
// that would satisfy a foreign key on columns, used to build the
// `constraint:s2.t2.(a,b)`-shaped `requires` entry from spec.md §4.2. The
// caller passes the already-resolved name of that backing constraint.
func BackingKeyID(refTable, backingConstraintName string) string {
	return StableID(KindConstraint, refTable, backingConstraintName)
}

// Index is a table or materialized-view index.
type Index struct {
	Table      string   `json:"table"` // owning table/matview stable id
	Name       string   `json:"name"`
	Columns    []string `json:"columns"` // ordered, NOT sorted
	Unique     bool     `json:"unique"`
	Method     string   `json:"method"` // btree, gin, gist, ...
	Predicate  string   `json:"predicate,omitempty"` // partial index WHERE clause
	Expression string   `json:"expression,omitempty"`
	Comment    string   `json:"comment,omitempty"`
}

func (i *Index) Kind() Kind    { return KindIndex }
func (i *Index) ID() string    { return StableID(KindIndex, i.Table, i.Name) }
func (i *Index) Owner() string { return "" }
func (i *Index) IdentityFields() map[string]any {
	return map[string]any{"table": i.Table, "name": i.Name}
}
func (i *Index) DataFields() map[string]any {
	return map[string]any{"columns": i.Columns, "unique": i.Unique, "method": i.Method,
		"predicate": i.Predicate, "expression": i.Expression, "comment": i.Comment}
}

// Trigger is a table-level trigger.
type Trigger struct {
	Table      string `json:"table"`
	Name       string `json:"name"`
	Timing     string `json:"timing"` // BEFORE | AFTER | INSTEAD OF
	Events     []string `json:"events"` // INSERT, UPDATE, DELETE, TRUNCATE, sorted
	Level      string `json:"level"` // ROW | STATEMENT
	FunctionID string `json:"function"` // stable id of the trigger function
	Condition  string `json:"condition,omitempty"`
	Comment    string `json:"comment,omitempty"`
}

func NewTrigger(t Trigger) *Trigger {
	SortStrings(t.Events)
	return &t
}

func (t *Trigger) Kind() Kind    { return KindTrigger }
func (t *Trigger) ID() string    { return StableID(KindTrigger, t.Table, t.Name) }
func (t *Trigger) Owner() string { return "" }
func (t *Trigger) IdentityFields() map[string]any {
	return map[string]any{"table": t.Table, "name": t.Name}
}
func (t *Trigger) DataFields() map[string]any {
	return map[string]any{"timing": t.Timing, "events": t.Events, "level": t.Level,
		"function": t.FunctionID, "condition": t.Condition, "comment": t.Comment}
}

// Rule is a query rewrite rule.
type Rule struct {
	Table      string `json:"table"`
	Name       string `json:"name"`
	Event      string `json:"event"` // SELECT | INSERT | UPDATE | DELETE
	Condition  string `json:"condition,omitempty"`
	Instead    bool   `json:"instead"`
	Actions    string `json:"actions"`
	Comment    string `json:"comment,omitempty"`
}

func (r *Rule) Kind() Kind    { return KindRule }
func (r *Rule) ID() string    { return StableID(KindRule, r.Table, r.Name) }
func (r *Rule) Owner() string { return "" }
func (r *Rule) IdentityFields() map[string]any {
	return map[string]any{"table": r.Table, "name": r.Name}
}
func (r *Rule) DataFields() map[string]any {
	return map[string]any{"event": r.Event, "condition": r.Condition, "instead": r.Instead,
		"actions": r.Actions, "comment": r.Comment}
}

// RLSPolicy is a row-level-security policy.
type RLSPolicy struct {
	Table     string   `json:"table"`
	Name      string   `json:"name"`
	Command   string   `json:"command"` // ALL | SELECT | INSERT | UPDATE | DELETE
	Permissive bool    `json:"permissive"`
	Roles     []string `json:"roles"` // sorted
	Using     string   `json:"using,omitempty"`
	WithCheck string   `json:"with_check,omitempty"`
	Comment   string   `json:"comment,omitempty"`
}

func NewRLSPolicy(p RLSPolicy) *RLSPolicy {
	SortStrings(p.Roles)
	return &p
}

func (p *RLSPolicy) Kind() Kind    { return KindPolicy }
func (p *RLSPolicy) ID() string    { return StableID(KindPolicy, p.Table, p.Name) }
func (p *RLSPolicy) Owner() string { return "" }
func (p *RLSPolicy) IdentityFields() map[string]any {
	return map[string]any{"table": p.Table, "name": p.Name}
}
func (p *RLSPolicy) DataFields() map[string]any {
	return map[string]any{"command": p.Command, "permissive": p.Permissive, "roles": p.Roles,
		"using": p.Using, "with_check": p.WithCheck, "comment": p.Comment}
}

// View is a CREATE VIEW.
type View struct {
	Schema     string      `json:"schema"`
	Name       string      `json:"name"`
	OwnerRole  string      `json:"owner"`
	Definition string      `json:"definition"`
	CheckOption string     `json:"check_option,omitempty"`
	Comment    string      `json:"comment,omitempty"`
	ACL        []Privilege `json:"acl,omitempty"`
}

func NewView(v View) *View {
	SortPrivileges(v.ACL)
	return &v
}

func (v *View) Kind() Kind    { return KindView }
func (v *View) ID() string    { return StableID(KindView, v.Schema, v.Name) }
func (v *View) Owner() string { return v.OwnerRole }
func (v *View) IdentityFields() map[string]any {
	return map[string]any{"schema": v.Schema, "name": v.Name}
}
func (v *View) DataFields() map[string]any {
	return map[string]any{"owner": v.OwnerRole, "definition": v.Definition,
		"check_option": v.CheckOption, "comment": v.Comment, "acl": v.ACL}
}

// MaterializedView is a CREATE MATERIALIZED VIEW.
type MaterializedView struct {
	Schema        string      `json:"schema"`
	Name          string      `json:"name"`
	OwnerRole     string      `json:"owner"`
	Definition    string      `json:"definition"`
	PopulatedWith bool        `json:"with_data"`
	TablespaceName string     `json:"tablespace,omitempty"`
	Comment       string      `json:"comment,omitempty"`
	ACL           []Privilege `json:"acl,omitempty"`
}

func NewMaterializedView(v MaterializedView) *MaterializedView {
	SortPrivileges(v.ACL)
	return &v
}

func (v *MaterializedView) Kind() Kind    { return KindMaterializedView }
func (v *MaterializedView) ID() string    { return StableID(KindMaterializedView, v.Schema, v.Name) }
func (v *MaterializedView) Owner() string { return v.OwnerRole }
func (v *MaterializedView) IdentityFields() map[string]any {
	return map[string]any{"schema": v.Schema, "name": v.Name}
}
func (v *MaterializedView) DataFields() map[string]any {
	return map[string]any{"owner": v.OwnerRole, "definition": v.Definition,
		"tablespace": v.TablespaceName, "comment": v.Comment, "acl": v.ACL}
}

// Parameter is one argument of a function/procedure/aggregate.
type Parameter struct {
	Name     string `json:"name,omitempty"`
	DataType string `json:"data_type"`
	Mode     string `json:"mode,omitempty"` // IN | OUT | INOUT | VARIADIC
	Default  string `json:"default,omitempty"`
}

// Signature renders the normalized `(type,type,...)` signature used in
// stable ids for routines (spec.md §3.1: "the signature is normalized").
func Signature(params []Parameter) string {
	s := "("
	for i, p := range params {
		if i > 0 {
			s += ","
		}
		s += p.DataType
	}
	return s + ")"
}

// Function is a CREATE FUNCTION.
type Function struct {
	Schema            string      `json:"schema"`
	Name              string      `json:"name"`
	OwnerRole         string      `json:"owner"`
	Parameters        []Parameter `json:"-"`
	ReturnType        string      `json:"return_type"`
	Language          string      `json:"language"`
	Definition        string      `json:"definition"`
	Volatility        string      `json:"volatility,omitempty"`
	Strict            bool        `json:"strict"`
	SecurityDefiner   bool        `json:"security_definer"`
	Leakproof         bool        `json:"leakproof"`
	Parallel          string      `json:"parallel,omitempty"`
	SearchPath        string      `json:"search_path,omitempty"`
	Comment           string      `json:"comment,omitempty"`
	ACL               []Privilege `json:"acl,omitempty"`
}

func NewFunction(f Function) *Function {
	SortPrivileges(f.ACL)
	return &f
}

func (f *Function) Kind() Kind    { return KindFunction }
func (f *Function) ID() string    { return StableID(KindFunction, f.Schema, f.Name+Signature(f.Parameters)) }
func (f *Function) Owner() string { return f.OwnerRole }
func (f *Function) IdentityFields() map[string]any {
	return map[string]any{"schema": f.Schema, "name": f.Name, "signature": Signature(f.Parameters)}
}
func (f *Function) DataFields() map[string]any {
	return map[string]any{
		"owner": f.OwnerRole, "return_type": f.ReturnType, "language": f.Language,
		"definition": f.Definition, "volatility": f.Volatility, "strict": f.Strict,
		"security_definer": f.SecurityDefiner, "leakproof": f.Leakproof, "parallel": f.Parallel,
		"search_path": f.SearchPath, "comment": f.Comment, "acl": f.ACL,
	}
}

// Procedure is a CREATE PROCEDURE.
type Procedure struct {
	Schema     string      `json:"schema"`
	Name       string      `json:"name"`
	OwnerRole  string      `json:"owner"`
	Parameters []Parameter `json:"-"`
	Language   string      `json:"language"`
	Definition string      `json:"definition"`
	SecurityDefiner bool   `json:"security_definer"`
	Comment    string      `json:"comment,omitempty"`
	ACL        []Privilege `json:"acl,omitempty"`
}

func NewProcedure(p Procedure) *Procedure {
	SortPrivileges(p.ACL)
	return &p
}

func (p *Procedure) Kind() Kind    { return KindProcedure }
func (p *Procedure) ID() string    { return StableID(KindProcedure, p.Schema, p.Name+Signature(p.Parameters)) }
func (p *Procedure) Owner() string { return p.OwnerRole }
func (p *Procedure) IdentityFields() map[string]any {
	return map[string]any{"schema": p.Schema, "name": p.Name, "signature": Signature(p.Parameters)}
}
func (p *Procedure) DataFields() map[string]any {
	return map[string]any{"owner": p.OwnerRole, "language": p.Language, "definition": p.Definition,
		"security_definer": p.SecurityDefiner, "comment": p.Comment, "acl": p.ACL}
}

// Aggregate is a CREATE AGGREGATE.
type Aggregate struct {
	Schema      string      `json:"schema"`
	Name        string      `json:"name"`
	OwnerRole   string      `json:"owner"`
	Parameters  []Parameter `json:"-"`
	StateFunc   string      `json:"state_function"`
	StateType   string      `json:"state_type"`
	FinalFunc   string      `json:"final_function,omitempty"`
	InitialCond string      `json:"initial_condition,omitempty"`
	Comment     string      `json:"comment,omitempty"`
	ACL         []Privilege `json:"acl,omitempty"`
}

func NewAggregate(a Aggregate) *Aggregate {
	SortPrivileges(a.ACL)
	return &a
}

func (a *Aggregate) Kind() Kind    { return KindAggregate }
func (a *Aggregate) ID() string    { return StableID(KindAggregate, a.Schema, a.Name+Signature(a.Parameters)) }
func (a *Aggregate) Owner() string { return a.OwnerRole }
func (a *Aggregate) IdentityFields() map[string]any {
	return map[string]any{"schema": a.Schema, "name": a.Name, "signature": Signature(a.Parameters)}
}
func (a *Aggregate) DataFields() map[string]any {
	return map[string]any{"owner": a.OwnerRole, "state_function": a.StateFunc, "state_type": a.StateType,
		"final_function": a.FinalFunc, "initial_condition": a.InitialCond, "comment": a.Comment, "acl": a.ACL}
}

// EventTrigger is a CREATE EVENT TRIGGER.
type EventTrigger struct {
	Name       string `json:"name"`
	OwnerRole  string `json:"owner"`
	Event      string `json:"event"`
	Tags       []string `json:"tags,omitempty"` // sorted
	FunctionID string `json:"function"`
	Enabled    string `json:"enabled"` // O (origin) | D (disabled) | R (replica) | A (always)
	Comment    string `json:"comment,omitempty"`
}

func NewEventTrigger(e EventTrigger) *EventTrigger {
	SortStrings(e.Tags)
	return &e
}

func (e *EventTrigger) Kind() Kind    { return KindEventTrigger }
func (e *EventTrigger) ID() string    { return StableID(KindEventTrigger, e.Name) }
func (e *EventTrigger) Owner() string { return e.OwnerRole }
func (e *EventTrigger) IdentityFields() map[string]any { return map[string]any{"name": e.Name} }
func (e *EventTrigger) DataFields() map[string]any {
	return map[string]any{"owner": e.OwnerRole, "event": e.Event, "tags": e.Tags,
		"function": e.FunctionID, "enabled": e.Enabled, "comment": e.Comment}
}

// Publication is a logical-replication CREATE PUBLICATION.
type Publication struct {
	Name        string   `json:"name"`
	OwnerRole   string   `json:"owner"`
	AllTables   bool     `json:"all_tables"`
	Tables      []string `json:"tables,omitempty"` // stable ids, sorted
	PublishOps  []string `json:"publish,omitempty"` // insert/update/delete/truncate, sorted
	Comment     string   `json:"comment,omitempty"`
}

func NewPublication(p Publication) *Publication {
	SortStrings(p.Tables)
	SortStrings(p.PublishOps)
	return &p
}

func (p *Publication) Kind() Kind    { return KindPublication }
func (p *Publication) ID() string    { return StableID(KindPublication, p.Name) }
func (p *Publication) Owner() string { return p.OwnerRole }
func (p *Publication) IdentityFields() map[string]any { return map[string]any{"name": p.Name} }
func (p *Publication) DataFields() map[string]any {
	return map[string]any{"owner": p.OwnerRole, "all_tables": p.AllTables, "tables": p.Tables,
		"publish": p.PublishOps, "comment": p.Comment}
}

// Subscription is a logical-replication CREATE SUBSCRIPTION.
type Subscription struct {
	Name        string `json:"name"`
	OwnerRole   string `json:"owner"`
	Connection  string `json:"connection"`
	Publications []string `json:"publications"` // sorted
	Enabled     bool   `json:"enabled"`
	Comment     string `json:"comment,omitempty"`
}

func NewSubscription(s Subscription) *Subscription {
	SortStrings(s.Publications)
	return &s
}

func (s *Subscription) Kind() Kind    { return KindSubscription }
func (s *Subscription) ID() string    { return StableID(KindSubscription, s.Name) }
func (s *Subscription) Owner() string { return s.OwnerRole }
func (s *Subscription) IdentityFields() map[string]any { return map[string]any{"name": s.Name} }
func (s *Subscription) DataFields() map[string]any {
	return map[string]any{"owner": s.OwnerRole, "connection": s.Connection,
		"publications": s.Publications, "enabled": s.Enabled, "comment": s.Comment}
}

// FDW is a CREATE FOREIGN DATA WRAPPER.
type FDW struct {
	Name      string            `json:"name"`
	OwnerRole string            `json:"owner"`
	Handler   string            `json:"handler,omitempty"`
	Validator string            `json:"validator,omitempty"`
	Options   map[string]string `json:"options,omitempty"`
	Comment   string            `json:"comment,omitempty"`
}

func (f *FDW) Kind() Kind    { return KindFDW }
func (f *FDW) ID() string    { return StableID(KindFDW, f.Name) }
func (f *FDW) Owner() string { return f.OwnerRole }
func (f *FDW) IdentityFields() map[string]any { return map[string]any{"name": f.Name} }
func (f *FDW) DataFields() map[string]any {
	return map[string]any{"owner": f.OwnerRole, "handler": f.Handler, "validator": f.Validator,
		"options": f.Options, "comment": f.Comment}
}

// ForeignServer is a CREATE SERVER.
type ForeignServer struct {
	Name      string            `json:"name"`
	OwnerRole string            `json:"owner"`
	FDWName   string            `json:"fdw"`
	ServerType string           `json:"type,omitempty"`
	ServerVersion string        `json:"version,omitempty"`
	Options   map[string]string `json:"options,omitempty"`
	Comment   string            `json:"comment,omitempty"`
	ACL       []Privilege       `json:"acl,omitempty"`
}

func NewForeignServer(s ForeignServer) *ForeignServer {
	SortPrivileges(s.ACL)
	return &s
}

func (s *ForeignServer) Kind() Kind    { return KindForeignServer }
func (s *ForeignServer) ID() string    { return StableID(KindForeignServer, s.Name) }
func (s *ForeignServer) Owner() string { return s.OwnerRole }
func (s *ForeignServer) IdentityFields() map[string]any { return map[string]any{"name": s.Name} }
func (s *ForeignServer) DataFields() map[string]any {
	return map[string]any{"owner": s.OwnerRole, "fdw": s.FDWName, "type": s.ServerType,
		"version": s.ServerVersion, "options": s.Options, "comment": s.Comment, "acl": s.ACL}
}

// UserMapping is a CREATE USER MAPPING FOR role SERVER server.
type UserMapping struct {
	ServerName string            `json:"server"`
	RoleName   string            `json:"role"` // "public" for PUBLIC
	Options    map[string]string `json:"options,omitempty"`
}

func (u *UserMapping) Kind() Kind    { return KindUserMapping }
func (u *UserMapping) ID() string    { return StableID(KindUserMapping, u.ServerName, u.RoleName) }
func (u *UserMapping) Owner() string { return "" }
func (u *UserMapping) IdentityFields() map[string]any {
	return map[string]any{"server": u.ServerName, "role": u.RoleName}
}
func (u *UserMapping) DataFields() map[string]any {
	return map[string]any{"options": u.Options}
}

// ForeignTable is a CREATE FOREIGN TABLE.
type ForeignTable struct {
	Schema    string            `json:"schema"`
	Name      string            `json:"name"`
	OwnerRole string            `json:"owner"`
	ServerName string           `json:"server"`
	Options   map[string]string `json:"options,omitempty"`
	Comment   string            `json:"comment,omitempty"`
	ACL       []Privilege       `json:"acl,omitempty"`
}

func NewForeignTable(f ForeignTable) *ForeignTable {
	SortPrivileges(f.ACL)
	return &f
}

func (f *ForeignTable) Kind() Kind    { return KindForeignTable }
func (f *ForeignTable) ID() string    { return StableID(KindForeignTable, f.Schema, f.Name) }
func (f *ForeignTable) Owner() string { return f.OwnerRole }
func (f *ForeignTable) IdentityFields() map[string]any {
	return map[string]any{"schema": f.Schema, "name": f.Name}
}
func (f *ForeignTable) DataFields() map[string]any {
	return map[string]any{"owner": f.OwnerRole, "server": f.ServerName, "options": f.Options,
		"comment": f.Comment, "acl": f.ACL}
}
