// SPDX-License-Identifier: Apache-2.0

package differ

import (
	"fmt"
	"strings"

	"github.com/pgcompare/pgcompare/pkg/catalog"
)

func paramList(params []catalog.Parameter) string {
	parts := make([]string, len(params))
	for i, p := range params {
		var b strings.Builder
		if p.Mode != "" && p.Mode != "IN" {
			fmt.Fprintf(&b, "%s ", p.Mode)
		}
		if p.Name != "" {
			fmt.Fprintf(&b, "%s ", quoteIdent(p.Name))
		}
		b.WriteString(p.DataType)
		if p.Default != "" {
			fmt.Fprintf(&b, " DEFAULT %s", p.Default)
		}
		parts[i] = b.String()
	}
	return strings.Join(parts, ", ")
}

func createFunctionSQL(f *catalog.Function) string {
	var b strings.Builder
	fmt.Fprintf(&b, "CREATE OR REPLACE FUNCTION %s(%s) RETURNS %s LANGUAGE %s",
		qualify(f.Schema, f.Name), paramList(f.Parameters), f.ReturnType, f.Language)
	if f.Volatility != "" {
		fmt.Fprintf(&b, " %s", f.Volatility)
	}
	if f.Strict {
		b.WriteString(" STRICT")
	}
	if f.SecurityDefiner {
		b.WriteString(" SECURITY DEFINER")
	}
	if f.Leakproof {
		b.WriteString(" LEAKPROOF")
	}
	if f.Parallel != "" {
		fmt.Fprintf(&b, " PARALLEL %s", f.Parallel)
	}
	if f.SearchPath != "" {
		fmt.Fprintf(&b, " SET search_path = %s", f.SearchPath)
	}
	fmt.Fprintf(&b, " AS %s", pqQuoteLiteral(f.Definition))
	return b.String()
}

func dropFunctionSQL(f *catalog.Function) string {
	return fmt.Sprintf("DROP FUNCTION IF EXISTS %s(%s)", qualify(f.Schema, f.Name), paramTypes(f.Parameters))
}

// paramTypes renders just the type list a DROP/ALTER signature needs,
// without catalog.Signature's surrounding parentheses.
func paramTypes(params []catalog.Parameter) string {
	types := make([]string, len(params))
	for i, p := range params {
		types[i] = p.DataType
	}
	return strings.Join(types, ", ")
}

// alterFunctionSQL always re-emits CREATE OR REPLACE FUNCTION: PostgreSQL
// treats that as the in-place update path for a routine body/attribute
// change, so there is no separate ALTER FUNCTION body clause to compute a
// delta for (only ownership is a true ALTER FUNCTION sub-statement).
func alterFunctionSQL(mo, bo catalog.Object) []string {
	a, b := mo.(*catalog.Function), bo.(*catalog.Function)
	var stmts []string
	if a.Definition != b.Definition || a.ReturnType != b.ReturnType || a.Language != b.Language ||
		a.Volatility != b.Volatility || a.Strict != b.Strict || a.SecurityDefiner != b.SecurityDefiner {
		stmts = append(stmts, createFunctionSQL(b))
	}
	if a.OwnerRole != b.OwnerRole {
		stmts = append(stmts, fmt.Sprintf("ALTER FUNCTION %s(%s) OWNER TO %s",
			qualify(b.Schema, b.Name), paramTypes(b.Parameters), quoteIdent(b.OwnerRole)))
	}
	return stmts
}

func createProcedureSQL(p *catalog.Procedure) string {
	var b strings.Builder
	fmt.Fprintf(&b, "CREATE OR REPLACE PROCEDURE %s(%s) LANGUAGE %s",
		qualify(p.Schema, p.Name), paramList(p.Parameters), p.Language)
	if p.SecurityDefiner {
		b.WriteString(" SECURITY DEFINER")
	}
	fmt.Fprintf(&b, " AS %s", pqQuoteLiteral(p.Definition))
	return b.String()
}

func dropProcedureSQL(p *catalog.Procedure) string {
	return fmt.Sprintf("DROP PROCEDURE IF EXISTS %s(%s)", qualify(p.Schema, p.Name), paramTypes(p.Parameters))
}

func alterProcedureSQL(mo, bo catalog.Object) []string {
	a, b := mo.(*catalog.Procedure), bo.(*catalog.Procedure)
	var stmts []string
	if a.Definition != b.Definition || a.Language != b.Language || a.SecurityDefiner != b.SecurityDefiner {
		stmts = append(stmts, createProcedureSQL(b))
	}
	if a.OwnerRole != b.OwnerRole {
		stmts = append(stmts, fmt.Sprintf("ALTER PROCEDURE %s(%s) OWNER TO %s",
			qualify(b.Schema, b.Name), paramTypes(b.Parameters), quoteIdent(b.OwnerRole)))
	}
	return stmts
}

func createAggregateSQL(a *catalog.Aggregate) string {
	var b strings.Builder
	fmt.Fprintf(&b, "CREATE AGGREGATE %s(%s) (SFUNC = %s, STYPE = %s",
		qualify(a.Schema, a.Name), paramList(a.Parameters), a.StateFunc, a.StateType)
	if a.FinalFunc != "" {
		fmt.Fprintf(&b, ", FINALFUNC = %s", a.FinalFunc)
	}
	if a.InitialCond != "" {
		fmt.Fprintf(&b, ", INITCOND = %s", pqQuoteLiteral(a.InitialCond))
	}
	b.WriteString(")")
	return b.String()
}

func dropAggregateSQL(a *catalog.Aggregate) string {
	return fmt.Sprintf("DROP AGGREGATE IF EXISTS %s(%s)", qualify(a.Schema, a.Name), paramTypes(a.Parameters))
}

func createEventTriggerSQL(e *catalog.EventTrigger) string {
	stmt := fmt.Sprintf("CREATE EVENT TRIGGER %s ON %s", quoteIdent(e.Name), e.Event)
	if len(e.Tags) > 0 {
		tags := make([]string, len(e.Tags))
		for i, t := range e.Tags {
			tags[i] = pqQuoteLiteral(t)
		}
		stmt += fmt.Sprintf(" WHEN TAG IN (%s)", strings.Join(tags, ", "))
	}
	stmt += fmt.Sprintf(" EXECUTE FUNCTION %s()", refSQL(e.FunctionID))
	return stmt
}

func dropEventTriggerSQL(e *catalog.EventTrigger) string {
	return fmt.Sprintf("DROP EVENT TRIGGER IF EXISTS %s", quoteIdent(e.Name))
}

func alterEventTriggerSQL(mo, bo catalog.Object) []string {
	a, b := mo.(*catalog.EventTrigger), bo.(*catalog.EventTrigger)
	if a.Enabled == b.Enabled {
		return nil
	}
	return []string{fmt.Sprintf("ALTER EVENT TRIGGER %s %s", quoteIdent(b.Name), enableClause(b.Enabled))}
}

func enableClause(enabled string) string {
	switch enabled {
	case "D":
		return "DISABLE"
	case "R":
		return "ENABLE REPLICA"
	case "A":
		return "ENABLE ALWAYS"
	default:
		return "ENABLE"
	}
}

func createPublicationSQL(p *catalog.Publication) string {
	stmt := fmt.Sprintf("CREATE PUBLICATION %s", quoteIdent(p.Name))
	if p.AllTables {
		stmt += " FOR ALL TABLES"
	} else if len(p.Tables) > 0 {
		refs := make([]string, len(p.Tables))
		for i, t := range p.Tables {
			refs[i] = refSQL(t)
		}
		stmt += fmt.Sprintf(" FOR TABLE %s", strings.Join(refs, ", "))
	}
	if len(p.PublishOps) > 0 {
		stmt += fmt.Sprintf(" WITH (publish = %s)", pqQuoteLiteral(strings.Join(p.PublishOps, ",")))
	}
	return stmt
}

func dropPublicationSQL(p *catalog.Publication) string {
	return fmt.Sprintf("DROP PUBLICATION IF EXISTS %s", quoteIdent(p.Name))
}

func createSubscriptionSQL(s *catalog.Subscription) string {
	stmt := fmt.Sprintf("CREATE SUBSCRIPTION %s CONNECTION %s PUBLICATION %s",
		quoteIdent(s.Name), pqQuoteLiteral(s.Connection), strings.Join(quoteIdentAll(s.Publications), ", "))
	if !s.Enabled {
		stmt += " WITH (enabled = false)"
	}
	return stmt
}

func dropSubscriptionSQL(s *catalog.Subscription) string {
	return fmt.Sprintf("DROP SUBSCRIPTION IF EXISTS %s", quoteIdent(s.Name))
}

func alterSubscriptionSQL(mo, bo catalog.Object) []string {
	a, b := mo.(*catalog.Subscription), bo.(*catalog.Subscription)
	if a.Enabled == b.Enabled {
		return nil
	}
	return []string{fmt.Sprintf("ALTER SUBSCRIPTION %s %s", quoteIdent(b.Name), boolOpt(b.Enabled, "ENABLE", "DISABLE"))}
}

func createFDWSQL(f *catalog.FDW) string {
	stmt := fmt.Sprintf("CREATE FOREIGN DATA WRAPPER %s", quoteIdent(f.Name))
	if f.Handler != "" {
		stmt += fmt.Sprintf(" HANDLER %s", f.Handler)
	}
	if f.Validator != "" {
		stmt += fmt.Sprintf(" VALIDATOR %s", f.Validator)
	}
	if len(f.Options) > 0 {
		stmt += fmt.Sprintf(" OPTIONS (%s)", optionsClause(f.Options))
	}
	return stmt
}

func dropFDWSQL(f *catalog.FDW) string {
	return fmt.Sprintf("DROP FOREIGN DATA WRAPPER IF EXISTS %s", quoteIdent(f.Name))
}

func optionsClause(opts map[string]string) string {
	parts := make([]string, 0, len(opts))
	for k, v := range opts {
		parts = append(parts, fmt.Sprintf("%s %s", k, pqQuoteLiteral(v)))
	}
	return strings.Join(parts, ", ")
}

func createForeignServerSQL(s *catalog.ForeignServer) string {
	stmt := fmt.Sprintf("CREATE SERVER %s", quoteIdent(s.Name))
	if s.ServerType != "" {
		stmt += fmt.Sprintf(" TYPE %s", pqQuoteLiteral(s.ServerType))
	}
	if s.ServerVersion != "" {
		stmt += fmt.Sprintf(" VERSION %s", pqQuoteLiteral(s.ServerVersion))
	}
	stmt += fmt.Sprintf(" FOREIGN DATA WRAPPER %s", quoteIdent(s.FDWName))
	if len(s.Options) > 0 {
		stmt += fmt.Sprintf(" OPTIONS (%s)", optionsClause(s.Options))
	}
	return stmt
}

func dropForeignServerSQL(s *catalog.ForeignServer) string {
	return fmt.Sprintf("DROP SERVER IF EXISTS %s", quoteIdent(s.Name))
}

func alterForeignServerSQL(mo, bo catalog.Object) []string {
	a, b := mo.(*catalog.ForeignServer), bo.(*catalog.ForeignServer)
	if a.OwnerRole == b.OwnerRole {
		return nil
	}
	return []string{fmt.Sprintf("ALTER SERVER %s OWNER TO %s", quoteIdent(b.Name), quoteIdent(b.OwnerRole))}
}

func createUserMappingSQL(u *catalog.UserMapping) string {
	role := u.RoleName
	if role == "" || role == "public" {
		role = "PUBLIC"
	} else {
		role = quoteIdent(role)
	}
	stmt := fmt.Sprintf("CREATE USER MAPPING FOR %s SERVER %s", role, quoteIdent(u.ServerName))
	if len(u.Options) > 0 {
		stmt += fmt.Sprintf(" OPTIONS (%s)", optionsClause(u.Options))
	}
	return stmt
}

func dropUserMappingSQL(u *catalog.UserMapping) string {
	role := u.RoleName
	if role == "" || role == "public" {
		role = "PUBLIC"
	} else {
		role = quoteIdent(role)
	}
	return fmt.Sprintf("DROP USER MAPPING IF EXISTS FOR %s SERVER %s", role, quoteIdent(u.ServerName))
}

func createForeignTableSQL(f *catalog.ForeignTable) string {
	stmt := fmt.Sprintf("CREATE FOREIGN TABLE %s () SERVER %s", qualify(f.Schema, f.Name), quoteIdent(f.ServerName))
	if len(f.Options) > 0 {
		stmt += fmt.Sprintf(" OPTIONS (%s)", optionsClause(f.Options))
	}
	return stmt
}

func dropForeignTableSQL(f *catalog.ForeignTable) string {
	return fmt.Sprintf("DROP FOREIGN TABLE IF EXISTS %s", qualify(f.Schema, f.Name))
}

func alterForeignTableSQL(mo, bo catalog.Object) []string {
	a, b := mo.(*catalog.ForeignTable), bo.(*catalog.ForeignTable)
	if a.OwnerRole == b.OwnerRole {
		return nil
	}
	return []string{fmt.Sprintf("ALTER FOREIGN TABLE %s OWNER TO %s", qualify(b.Schema, b.Name), quoteIdent(b.OwnerRole))}
}
