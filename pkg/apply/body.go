// SPDX-License-Identifier: Apache-2.0

package apply

import (
	"encoding/json"

	pgq "github.com/pganalyze/pg_query_go/v6"
)

// FunctionBodyRefs implements spec.md §4.6 step 4's function-body
// re-parse: a CREATE FUNCTION/PROCEDURE statement's body is re-parsed with
// the main SQL parser (language sql) or the PL/pgSQL sub-parser (language
// plpgsql), and only schema-qualified references found inside are kept —
// unqualified references are conservatively ignored, since the body's own
// search_path at call time isn't known statically.
func FunctionBodyRefs(s Statement) []ObjectRef {
	n, ok := s.Node.(*pgq.Node_CreateFunctionStmt)
	if !ok {
		return nil
	}
	lang, body := functionLangAndBody(n.CreateFunctionStmt)
	if body == "" {
		return nil
	}

	var refs []ObjectRef
	switch lang {
	case "sql":
		refs = qualifiedRefsFromSQL(body)
	case "plpgsql":
		refs = qualifiedRefsFromPlpgsql(body)
	default:
		// Other procedural languages (plpython3u, plperl, ...) have no
		// parser in this pack; their bodies are opaque (spec.md §4.6 step 4
		// names only sql/plpgsql sub-parsing).
	}
	return refs
}

// functionLangAndBody pulls the LANGUAGE option and the AS-clause body text
// out of a CREATE FUNCTION/PROCEDURE statement's option list.
func functionLangAndBody(stmt *pgq.CreateFunctionStmt) (lang, body string) {
	for _, opt := range stmt.GetOptions() {
		d := opt.GetDefElem()
		if d == nil {
			continue
		}
		switch d.GetDefname() {
		case "language":
			lang = d.GetArg().GetString_().GetSval()
		case "as":
			if list := d.GetArg().GetList(); list != nil {
				items := list.GetItems()
				if len(items) > 0 {
					body = items[len(items)-1].GetString_().GetSval()
				}
			} else if s := d.GetArg().GetString_(); s != nil {
				body = s.GetSval()
			}
		}
	}
	return lang, body
}

// qualifiedRefsFromSQL parses an SQL-language function body with the main
// parser and collects the relation references of each statement via
// rangeVarsIn (SELECT FROM/JOIN items, INSERT/UPDATE/DELETE targets),
// keeping only those that carry a schema. Function calls are not collected.
func qualifiedRefsFromSQL(body string) []ObjectRef {
	tree, err := pgq.Parse(body)
	if err != nil {
		return nil
	}
	var refs []ObjectRef
	for _, raw := range tree.GetStmts() {
		refs = append(refs, rangeVarsIn(raw.GetStmt())...)
	}
	return filterQualified(refs)
}

// rangeVarsIn extracts the RangeVar(s) a top-level statement node in a
// function body references; a small subset of the dispatch table in
// refs.go, since function bodies are overwhelmingly SELECT/INSERT/UPDATE/
// DELETE rather than DDL.
func rangeVarsIn(node *pgq.Node) []ObjectRef {
	switch n := node.GetNode().(type) {
	case *pgq.Node_SelectStmt:
		var refs []ObjectRef
		for _, fc := range n.SelectStmt.GetFromClause() {
			refs = append(refs, refsFromFromClauseItem(fc)...)
		}
		return refs
	case *pgq.Node_InsertStmt:
		return []ObjectRef{rangeVarRef(n.InsertStmt.GetRelation())}
	case *pgq.Node_UpdateStmt:
		return []ObjectRef{rangeVarRef(n.UpdateStmt.GetRelation())}
	case *pgq.Node_DeleteStmt:
		return []ObjectRef{rangeVarRef(n.DeleteStmt.GetRelation())}
	default:
		return nil
	}
}

func refsFromFromClauseItem(n *pgq.Node) []ObjectRef {
	switch x := n.GetNode().(type) {
	case *pgq.Node_RangeVar:
		return []ObjectRef{rangeVarRef(x.RangeVar)}
	case *pgq.Node_JoinExpr:
		var refs []ObjectRef
		refs = append(refs, refsFromFromClauseItem(x.JoinExpr.GetLarg())...)
		refs = append(refs, refsFromFromClauseItem(x.JoinExpr.GetRarg())...)
		return refs
	default:
		return nil
	}
}

func filterQualified(refs []ObjectRef) []ObjectRef {
	var out []ObjectRef
	for _, r := range refs {
		if r.Schema != "" {
			out = append(out, r)
		}
	}
	return out
}

// qualifiedRefsFromPlpgsql re-parses a PL/pgSQL body with pg_query_go's
// PL/pgSQL sub-parser, which emits a JSON tree rather than the Go AST the
// main parser produces. Conservatively, every embedded SQL fragment it
// contains (each "query"-keyed string in the JSON, corresponding to a
// PLpgSQL_expr or PLpgSQL_stmt_execsql node) is re-parsed with the main
// parser and walked the same way as an sql-language body.
func qualifiedRefsFromPlpgsql(body string) []ObjectRef {
	wrapped := "CREATE FUNCTION __plpgsql_body_probe__() RETURNS void AS $$\n" + body + "\n$$ LANGUAGE plpgsql;"
	j, err := pgq.ParsePlPgSqlToJSON(wrapped)
	if err != nil {
		return nil
	}
	var tree any
	if err := json.Unmarshal([]byte(j), &tree); err != nil {
		return nil
	}

	var refs []ObjectRef
	seen := make(map[string]bool)
	var walk func(v any)
	walk = func(v any) {
		switch x := v.(type) {
		case map[string]any:
			if q, ok := x["query"].(string); ok && q != "" && !seen[q] {
				seen[q] = true
				refs = append(refs, qualifiedRefsFromSQL(q)...)
			}
			for _, sub := range x {
				walk(sub)
			}
		case []any:
			for _, sub := range x {
				walk(sub)
			}
		}
	}
	walk(tree)
	return refs
}
