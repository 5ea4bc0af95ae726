// SPDX-License-Identifier: Apache-2.0

package differ

import (
	"fmt"
	"strings"

	"github.com/pgcompare/pgcompare/pkg/catalog"
)

func createSchemaSQL(s *catalog.Schema) string {
	stmt := fmt.Sprintf("CREATE SCHEMA %s", quoteIdent(s.Name))
	if s.OwnerRole != "" {
		stmt += fmt.Sprintf(" AUTHORIZATION %s", quoteIdent(s.OwnerRole))
	}
	return stmt
}

func dropSchemaSQL(s *catalog.Schema) string {
	return fmt.Sprintf("DROP SCHEMA IF EXISTS %s", quoteIdent(s.Name))
}

func alterSchemaSQL(mo, bo catalog.Object) []string {
	a, b := mo.(*catalog.Schema), bo.(*catalog.Schema)
	if a.OwnerRole == b.OwnerRole {
		return nil
	}
	return []string{fmt.Sprintf("ALTER SCHEMA %s OWNER TO %s", quoteIdent(b.Name), quoteIdent(b.OwnerRole))}
}

func createRoleSQL(r *catalog.Role) string {
	var opts []string
	opts = append(opts, boolOpt(r.Superuser, "SUPERUSER", "NOSUPERUSER"))
	opts = append(opts, boolOpt(r.CreateDB, "CREATEDB", "NOCREATEDB"))
	opts = append(opts, boolOpt(r.CreateRole, "CREATEROLE", "NOCREATEROLE"))
	opts = append(opts, boolOpt(r.CanLogin, "LOGIN", "NOLOGIN"))
	opts = append(opts, boolOpt(r.Replication, "REPLICATION", "NOREPLICATION"))
	opts = append(opts, boolOpt(r.BypassRLS, "BYPASSRLS", "NOBYPASSRLS"))
	if r.ConnectionLimit != nil {
		opts = append(opts, fmt.Sprintf("CONNECTION LIMIT %d", *r.ConnectionLimit))
	}
	if r.ValidUntil != nil {
		opts = append(opts, fmt.Sprintf("VALID UNTIL %s", pqQuoteLiteral(*r.ValidUntil)))
	}
	return fmt.Sprintf("CREATE ROLE %s WITH %s", quoteIdent(r.Name), strings.Join(opts, " "))
}

func boolOpt(v bool, yes, no string) string {
	if v {
		return yes
	}
	return no
}

func pqQuoteLiteral(s string) string { return "'" + strings.ReplaceAll(s, "'", "''") + "'" }

func dropRoleSQL(r *catalog.Role) string {
	return fmt.Sprintf("DROP ROLE IF EXISTS %s", quoteIdent(r.Name))
}

// alterRoleSQL covers the role attribute flags and per-key SET config
// (spec.md's Role.Config multiset), grounded on the same "one ALTER ROLE
// sub-clause per flag" shape as alterTableSQL.
func alterRoleSQL(mo, bo catalog.Object) []string {
	a, b := mo.(*catalog.Role), bo.(*catalog.Role)
	name := quoteIdent(b.Name)
	var stmts []string
	flag := func(av, bv bool, yes, no string) {
		if av != bv {
			stmts = append(stmts, fmt.Sprintf("ALTER ROLE %s WITH %s", name, boolOpt(bv, yes, no)))
		}
	}
	flag(a.Superuser, b.Superuser, "SUPERUSER", "NOSUPERUSER")
	flag(a.CreateDB, b.CreateDB, "CREATEDB", "NOCREATEDB")
	flag(a.CreateRole, b.CreateRole, "CREATEROLE", "NOCREATEROLE")
	flag(a.CanLogin, b.CanLogin, "LOGIN", "NOLOGIN")
	flag(a.Replication, b.Replication, "REPLICATION", "NOREPLICATION")
	flag(a.BypassRLS, b.BypassRLS, "BYPASSRLS", "NOBYPASSRLS")

	for k, v := range b.Config {
		if a.Config[k] != v {
			stmts = append(stmts, fmt.Sprintf("ALTER ROLE %s SET %s = %s", name, k, v))
		}
	}
	for k := range a.Config {
		if _, ok := b.Config[k]; !ok {
			stmts = append(stmts, fmt.Sprintf("ALTER ROLE %s RESET %s", name, k))
		}
	}
	return stmts
}

func createExtensionSQL(e *catalog.Extension) string {
	stmt := fmt.Sprintf("CREATE EXTENSION IF NOT EXISTS %s", quoteIdent(e.Name))
	if e.Schema != "" {
		stmt += fmt.Sprintf(" SCHEMA %s", quoteIdent(e.Schema))
	}
	if e.Version != "" {
		stmt += fmt.Sprintf(" VERSION %s", pqQuoteLiteral(e.Version))
	}
	return stmt
}

func dropExtensionSQL(e *catalog.Extension) string {
	return fmt.Sprintf("DROP EXTENSION IF EXISTS %s", quoteIdent(e.Name))
}

func createLanguageSQL(l *catalog.Language) string {
	trusted := ""
	if l.Trusted {
		trusted = "TRUSTED "
	}
	return fmt.Sprintf("CREATE %sLANGUAGE %s", trusted, quoteIdent(l.Name))
}

func dropLanguageSQL(l *catalog.Language) string {
	return fmt.Sprintf("DROP LANGUAGE IF EXISTS %s", quoteIdent(l.Name))
}

func createCollationSQL(c *catalog.Collation) string {
	return fmt.Sprintf("CREATE COLLATION %s (LC_COLLATE = %s, LC_CTYPE = %s, PROVIDER = %s)",
		qualify(c.Schema, c.Name), pqQuoteLiteral(c.LcCollate), pqQuoteLiteral(c.LcCtype), c.Provider)
}

func dropCollationSQL(c *catalog.Collation) string {
	return fmt.Sprintf("DROP COLLATION IF EXISTS %s", qualify(c.Schema, c.Name))
}

func createSequenceSQL(s *catalog.Sequence) string {
	stmt := fmt.Sprintf("CREATE SEQUENCE %s AS %s INCREMENT BY %d START WITH %d CACHE %d",
		qualify(s.Schema, s.Name), s.DataType, s.Increment, s.StartValue, s.CacheSize)
	if s.Cycle {
		stmt += " CYCLE"
	}
	if s.OwnedByCol != "" {
		stmt += fmt.Sprintf(" OWNED BY %s", s.OwnedByCol)
	}
	return stmt
}

func dropSequenceSQL(s *catalog.Sequence) string {
	return fmt.Sprintf("DROP SEQUENCE IF EXISTS %s", qualify(s.Schema, s.Name))
}

func alterSequenceSQL(mo, bo catalog.Object) []string {
	a, b := mo.(*catalog.Sequence), bo.(*catalog.Sequence)
	ref := qualify(b.Schema, b.Name)
	var stmts []string
	if a.Increment != b.Increment {
		stmts = append(stmts, fmt.Sprintf("ALTER SEQUENCE %s INCREMENT BY %d", ref, b.Increment))
	}
	if a.CacheSize != b.CacheSize {
		stmts = append(stmts, fmt.Sprintf("ALTER SEQUENCE %s CACHE %d", ref, b.CacheSize))
	}
	if a.Cycle != b.Cycle {
		stmts = append(stmts, fmt.Sprintf("ALTER SEQUENCE %s %s", ref, boolOpt(b.Cycle, "CYCLE", "NO CYCLE")))
	}
	if a.OwnerRole != b.OwnerRole {
		stmts = append(stmts, fmt.Sprintf("ALTER SEQUENCE %s OWNER TO %s", ref, quoteIdent(b.OwnerRole)))
	}
	return stmts
}

func createEnumSQL(e *catalog.Enum) string {
	labels := make([]string, len(e.Labels))
	for i, l := range e.Labels {
		labels[i] = pqQuoteLiteral(l)
	}
	return fmt.Sprintf("CREATE TYPE %s AS ENUM (%s)", qualify(e.Schema, e.Name), strings.Join(labels, ", "))
}

func dropEnumSQL(e *catalog.Enum) string {
	return fmt.Sprintf("DROP TYPE IF EXISTS %s", qualify(e.Schema, e.Name))
}

// alterEnumSQL only covers label additions: PostgreSQL has no DROP/RENAME
// for enum labels in a single reversible statement, so removed labels fall
// through needsReplace's drop+create path instead (spec.md §4.1 step 4).
func alterEnumSQL(mo, bo catalog.Object) []string {
	a, b := mo.(*catalog.Enum), bo.(*catalog.Enum)
	existing := make(map[string]bool, len(a.Labels))
	for _, l := range a.Labels {
		existing[l] = true
	}
	var stmts []string
	for i, l := range b.Labels {
		if existing[l] {
			continue
		}
		stmt := fmt.Sprintf("ALTER TYPE %s ADD VALUE %s", qualify(b.Schema, b.Name), pqQuoteLiteral(l))
		if i > 0 {
			stmt += fmt.Sprintf(" AFTER %s", pqQuoteLiteral(b.Labels[i-1]))
		}
		stmts = append(stmts, stmt)
	}
	return stmts
}

func createCompositeSQL(c *catalog.Composite) string {
	fields := make([]string, len(c.Fields))
	for i, f := range c.Fields {
		fields[i] = fmt.Sprintf("%s %s", quoteIdent(f.Name), f.DataType)
	}
	return fmt.Sprintf("CREATE TYPE %s AS (%s)", qualify(c.Schema, c.Name), strings.Join(fields, ", "))
}

func dropCompositeSQL(c *catalog.Composite) string {
	return fmt.Sprintf("DROP TYPE IF EXISTS %s", qualify(c.Schema, c.Name))
}

func createRangeSQL(r *catalog.Range) string {
	stmt := fmt.Sprintf("CREATE TYPE %s AS RANGE (SUBTYPE = %s", qualify(r.Schema, r.Name), r.Subtype)
	if r.SubtypeOpclass != "" {
		stmt += fmt.Sprintf(", SUBTYPE_OPCLASS = %s", r.SubtypeOpclass)
	}
	if r.Canonical != "" {
		stmt += fmt.Sprintf(", CANONICAL = %s", r.Canonical)
	}
	return stmt + ")"
}

func dropRangeSQL(r *catalog.Range) string {
	return fmt.Sprintf("DROP TYPE IF EXISTS %s", qualify(r.Schema, r.Name))
}

func createDomainSQL(d *catalog.Domain) string {
	stmt := fmt.Sprintf("CREATE DOMAIN %s AS %s", qualify(d.Schema, d.Name), d.BaseType)
	if d.NotNull {
		stmt += " NOT NULL"
	}
	if d.Default != nil {
		stmt += fmt.Sprintf(" DEFAULT %s", *d.Default)
	}
	for _, chk := range d.Checks {
		stmt += fmt.Sprintf(" CHECK (%s)", chk)
	}
	return stmt
}

func dropDomainSQL(d *catalog.Domain) string {
	return fmt.Sprintf("DROP DOMAIN IF EXISTS %s", qualify(d.Schema, d.Name))
}

func alterDomainSQL(mo, bo catalog.Object) []string {
	a, b := mo.(*catalog.Domain), bo.(*catalog.Domain)
	ref := qualify(b.Schema, b.Name)
	var stmts []string
	if a.NotNull != b.NotNull {
		stmts = append(stmts, fmt.Sprintf("ALTER DOMAIN %s %s", ref, boolOpt(b.NotNull, "SET NOT NULL", "DROP NOT NULL")))
	}
	if !strPtrEq(a.Default, b.Default) {
		if b.Default == nil {
			stmts = append(stmts, fmt.Sprintf("ALTER DOMAIN %s DROP DEFAULT", ref))
		} else {
			stmts = append(stmts, fmt.Sprintf("ALTER DOMAIN %s SET DEFAULT %s", ref, *b.Default))
		}
	}
	return stmts
}

func createViewSQL(v *catalog.View) string {
	return fmt.Sprintf("CREATE VIEW %s AS %s", qualify(v.Schema, v.Name), v.Definition)
}

func dropViewSQL(v *catalog.View) string {
	return fmt.Sprintf("DROP VIEW IF EXISTS %s", qualify(v.Schema, v.Name))
}

// alterViewSQL prefers CREATE OR REPLACE VIEW for a definition change over
// drop+create: PostgreSQL allows replacing a view's query as long as the
// output column names/types/order are a superset of the original, which is
// the common case for the kind of definition edits this differ expects.
func alterViewSQL(mo, bo catalog.Object) []string {
	a, b := mo.(*catalog.View), bo.(*catalog.View)
	var stmts []string
	if a.Definition != b.Definition {
		stmts = append(stmts, fmt.Sprintf("CREATE OR REPLACE VIEW %s AS %s", qualify(b.Schema, b.Name), b.Definition))
	}
	if a.OwnerRole != b.OwnerRole {
		stmts = append(stmts, fmt.Sprintf("ALTER VIEW %s OWNER TO %s", qualify(b.Schema, b.Name), quoteIdent(b.OwnerRole)))
	}
	return stmts
}

func createMaterializedViewSQL(v *catalog.MaterializedView) string {
	stmt := fmt.Sprintf("CREATE MATERIALIZED VIEW %s AS %s", qualify(v.Schema, v.Name), v.Definition)
	if !v.PopulatedWith {
		stmt += " WITH NO DATA"
	}
	return stmt
}

func dropMaterializedViewSQL(v *catalog.MaterializedView) string {
	return fmt.Sprintf("DROP MATERIALIZED VIEW IF EXISTS %s", qualify(v.Schema, v.Name))
}

func alterMaterializedViewSQL(mo, bo catalog.Object) []string {
	a, b := mo.(*catalog.MaterializedView), bo.(*catalog.MaterializedView)
	if a.OwnerRole == b.OwnerRole {
		return nil
	}
	return []string{fmt.Sprintf("ALTER MATERIALIZED VIEW %s OWNER TO %s", qualify(b.Schema, b.Name), quoteIdent(b.OwnerRole))}
}
