// SPDX-License-Identifier: Apache-2.0

package differ

import (
	"fmt"
	"strings"

	"github.com/lib/pq"

	"github.com/pgcompare/pgcompare/pkg/catalog"
)

// quoteColumnNames quotes every column name, grounded on the teacher's
// pkg/migrations/constraints.go helper of the same purpose.
func quoteColumnNames(cols []string) []string {
	quoted := make([]string, len(cols))
	for i, c := range cols {
		quoted[i] = pq.QuoteIdentifier(c)
	}
	return quoted
}

// constraintClause renders the inline/table-level constraint definition
// text, adapted from pkg/migrations/constraints.go's ConstraintSQLWriter:
// same per-kind dispatch and deferrable/not-valid suffix assembly,
// generalized to read directly from a catalog.Constraint instead of a
// builder populated field-by-field by an Operation.
func constraintClause(c *catalog.Constraint) string {
	var b strings.Builder
	if c.Name != "" {
		fmt.Fprintf(&b, "CONSTRAINT %s ", pq.QuoteIdentifier(c.Name))
	}

	switch c.ConstraintKind {
	case catalog.ConstraintPrimaryKey:
		fmt.Fprintf(&b, "PRIMARY KEY (%s)", strings.Join(quoteColumnNames(c.Columns), ", "))
	case catalog.ConstraintUnique:
		fmt.Fprintf(&b, "UNIQUE (%s)", strings.Join(quoteColumnNames(c.Columns), ", "))
	case catalog.ConstraintCheck:
		if !strings.HasPrefix(c.Definition, "CHECK (") {
			fmt.Fprintf(&b, "CHECK (%s)", c.Definition)
		} else {
			b.WriteString(c.Definition)
		}
	case catalog.ConstraintForeignKey:
		fmt.Fprintf(&b, "FOREIGN KEY (%s) REFERENCES %s (%s)",
			strings.Join(quoteColumnNames(c.Columns), ", "),
			refSQL(c.RefTable),
			strings.Join(quoteColumnNames(c.RefColumns), ", "),
		)
		if c.OnDelete != "" {
			fmt.Fprintf(&b, " ON DELETE %s", strings.ToUpper(c.OnDelete))
		}
		if c.OnUpdate != "" {
			fmt.Fprintf(&b, " ON UPDATE %s", strings.ToUpper(c.OnUpdate))
		}
	case catalog.ConstraintExclude:
		fmt.Fprintf(&b, "EXCLUDE (%s)", c.Definition)
	}

	if c.Deferrable {
		b.WriteString(" DEFERRABLE")
		if c.InitiallyDeferred {
			b.WriteString(" INITIALLY DEFERRED")
		} else {
			b.WriteString(" INITIALLY IMMEDIATE")
		}
	}
	if c.NotValid {
		b.WriteString(" NOT VALID")
	}
	return b.String()
}

func createConstraintSQL(c *catalog.Constraint) string {
	return fmt.Sprintf("ALTER TABLE %s ADD %s", refSQL(c.Table), constraintClause(c))
}

func dropConstraintSQL(c *catalog.Constraint) string {
	return fmt.Sprintf("ALTER TABLE %s DROP CONSTRAINT %s", refSQL(c.Table), pq.QuoteIdentifier(c.Name))
}
