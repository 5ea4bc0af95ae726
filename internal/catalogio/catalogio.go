// SPDX-License-Identifier: Apache-2.0

// Package catalogio loads a catalog.Catalog from the JSON document shape
// the pgcompare CLI reads in place of the catalog-extraction oracle
// spec.md §1 places outside the core ("pg_catalog queries... treated as an
// oracle that returns typed object records"): one array per object kind,
// keyed by the same field names catalog.Object's DataFields/IdentityFields
// already use. Extraction itself (querying pg_catalog) is not implemented
// here; this package only parses whatever already produced that JSON,
// whether a `pg_dump`-adjacent tool, a test fixture, or a future `pgcompare
// extract` subcommand.
package catalogio

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/pgcompare/pgcompare/pkg/catalog"
)

// functionDTO mirrors catalog.Function but exposes Parameters, which
// catalog.Function tags json:"-" since DataFields/IdentityFields are its
// only JSON-facing surface internally.
type functionDTO struct {
	Schema          string              `json:"schema"`
	Name            string              `json:"name"`
	Owner           string              `json:"owner"`
	Parameters      []catalog.Parameter `json:"parameters,omitempty"`
	ReturnType      string              `json:"return_type"`
	Language        string              `json:"language"`
	Definition      string              `json:"definition"`
	Volatility      string              `json:"volatility,omitempty"`
	Strict          bool                `json:"strict"`
	SecurityDefiner bool                `json:"security_definer"`
	Leakproof       bool                `json:"leakproof"`
	Parallel        string              `json:"parallel,omitempty"`
	SearchPath      string              `json:"search_path,omitempty"`
	Comment         string              `json:"comment,omitempty"`
	ACL             []catalog.Privilege `json:"acl,omitempty"`
}

func (d functionDTO) toFunction() *catalog.Function {
	return catalog.NewFunction(catalog.Function{
		Schema: d.Schema, Name: d.Name, OwnerRole: d.Owner, Parameters: d.Parameters,
		ReturnType: d.ReturnType, Language: d.Language, Definition: d.Definition,
		Volatility: d.Volatility, Strict: d.Strict, SecurityDefiner: d.SecurityDefiner,
		Leakproof: d.Leakproof, Parallel: d.Parallel, SearchPath: d.SearchPath,
		Comment: d.Comment, ACL: d.ACL,
	})
}

type procedureDTO struct {
	Schema          string              `json:"schema"`
	Name            string              `json:"name"`
	Owner           string              `json:"owner"`
	Parameters      []catalog.Parameter `json:"parameters,omitempty"`
	Language        string              `json:"language"`
	Definition      string              `json:"definition"`
	SecurityDefiner bool                `json:"security_definer"`
	Comment         string              `json:"comment,omitempty"`
	ACL             []catalog.Privilege `json:"acl,omitempty"`
}

func (d procedureDTO) toProcedure() *catalog.Procedure {
	return catalog.NewProcedure(catalog.Procedure{
		Schema: d.Schema, Name: d.Name, OwnerRole: d.Owner, Parameters: d.Parameters,
		Language: d.Language, Definition: d.Definition, SecurityDefiner: d.SecurityDefiner,
		Comment: d.Comment, ACL: d.ACL,
	})
}

type aggregateDTO struct {
	Schema      string              `json:"schema"`
	Name        string              `json:"name"`
	Owner       string              `json:"owner"`
	Parameters  []catalog.Parameter `json:"parameters,omitempty"`
	StateFunc   string              `json:"state_function"`
	StateType   string              `json:"state_type"`
	FinalFunc   string              `json:"final_function,omitempty"`
	InitialCond string              `json:"initial_condition,omitempty"`
	Comment     string              `json:"comment,omitempty"`
	ACL         []catalog.Privilege `json:"acl,omitempty"`
}

func (d aggregateDTO) toAggregate() *catalog.Aggregate {
	return catalog.NewAggregate(catalog.Aggregate{
		Schema: d.Schema, Name: d.Name, OwnerRole: d.Owner, Parameters: d.Parameters,
		StateFunc: d.StateFunc, StateType: d.StateType, FinalFunc: d.FinalFunc,
		InitialCond: d.InitialCond, Comment: d.Comment, ACL: d.ACL,
	})
}

// document is the on-disk shape: one array per object kind, plus the
// cluster-wide default-privilege rules.
type document struct {
	ServerVersion int    `json:"server_version"`
	CurrentRole   string `json:"current_role"`

	Schemas            []catalog.Schema           `json:"schemas,omitempty"`
	Roles              []catalog.Role             `json:"roles,omitempty"`
	Extensions         []catalog.Extension        `json:"extensions,omitempty"`
	Languages          []catalog.Language         `json:"languages,omitempty"`
	Collations         []catalog.Collation        `json:"collations,omitempty"`
	Sequences          []catalog.Sequence         `json:"sequences,omitempty"`
	Enums              []catalog.Enum             `json:"enums,omitempty"`
	Composites         []catalog.Composite        `json:"composite_types,omitempty"`
	Ranges             []catalog.Range            `json:"range_types,omitempty"`
	Domains            []catalog.Domain           `json:"domains,omitempty"`
	Tables             []catalog.Table            `json:"tables,omitempty"`
	Columns            []catalog.Column           `json:"columns,omitempty"`
	Constraints        []catalog.Constraint       `json:"constraints,omitempty"`
	Indexes            []catalog.Index            `json:"indexes,omitempty"`
	Triggers           []catalog.Trigger          `json:"triggers,omitempty"`
	Rules              []catalog.Rule             `json:"rules,omitempty"`
	Policies           []catalog.RLSPolicy        `json:"rls_policies,omitempty"`
	Views              []catalog.View             `json:"views,omitempty"`
	MaterializedViews  []catalog.MaterializedView `json:"materialized_views,omitempty"`
	Functions          []functionDTO              `json:"functions,omitempty"`
	Procedures         []procedureDTO             `json:"procedures,omitempty"`
	Aggregates         []aggregateDTO             `json:"aggregates,omitempty"`
	EventTriggers      []catalog.EventTrigger     `json:"event_triggers,omitempty"`
	Publications       []catalog.Publication      `json:"publications,omitempty"`
	Subscriptions      []catalog.Subscription     `json:"subscriptions,omitempty"`
	FDWs               []catalog.FDW              `json:"foreign_data_wrappers,omitempty"`
	ForeignServers     []catalog.ForeignServer    `json:"foreign_servers,omitempty"`
	UserMappings       []catalog.UserMapping      `json:"user_mappings,omitempty"`
	ForeignTables      []catalog.ForeignTable     `json:"foreign_tables,omitempty"`
	DefaultPrivileges  []catalog.DefaultPrivilege `json:"default_privileges,omitempty"`
}

// Load parses r as a catalog document and builds the resulting Catalog.
func Load(r io.Reader) (cat *catalog.Catalog, err error) {
	var doc document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("catalogio: decoding catalog document: %w", err)
	}

	// catalog.Catalog.Add panics on a duplicate stable id (spec.md §7.2:
	// an oracle producing two objects with the same id is a programmer/
	// input bug, not recoverable input); turn that into a normal error so
	// a malformed document doesn't crash the CLI.
	defer func() {
		if r := recover(); r != nil {
			cat = nil
			err = fmt.Errorf("catalogio: %v", r)
		}
	}()

	cat = catalog.New(doc.ServerVersion, doc.CurrentRole)
	cat.DefaultPrivileges = doc.DefaultPrivileges

	for i := range doc.Schemas {
		cat.Add(catalog.NewSchema(doc.Schemas[i]))
	}
	for i := range doc.Roles {
		cat.Add(catalog.NewRole(doc.Roles[i]))
	}
	for i := range doc.Extensions {
		cat.Add(catalog.NewExtension(doc.Extensions[i]))
	}
	for i := range doc.Languages {
		l := doc.Languages[i]
		cat.Add(&l)
	}
	for i := range doc.Collations {
		c := doc.Collations[i]
		cat.Add(&c)
	}
	for i := range doc.Sequences {
		cat.Add(catalog.NewSequence(doc.Sequences[i]))
	}
	for i := range doc.Enums {
		e := doc.Enums[i]
		cat.Add(&e)
	}
	for i := range doc.Composites {
		c := doc.Composites[i]
		cat.Add(&c)
	}
	for i := range doc.Ranges {
		r := doc.Ranges[i]
		cat.Add(&r)
	}
	for i := range doc.Domains {
		cat.Add(catalog.NewDomain(doc.Domains[i]))
	}
	for i := range doc.Tables {
		cat.Add(catalog.NewTable(doc.Tables[i]))
	}
	for i := range doc.Columns {
		cat.Add(catalog.NewColumn(doc.Columns[i]))
	}
	for i := range doc.Constraints {
		c := doc.Constraints[i]
		cat.Add(&c)
	}
	for i := range doc.Indexes {
		idx := doc.Indexes[i]
		cat.Add(&idx)
	}
	for i := range doc.Triggers {
		cat.Add(catalog.NewTrigger(doc.Triggers[i]))
	}
	for i := range doc.Rules {
		r := doc.Rules[i]
		cat.Add(&r)
	}
	for i := range doc.Policies {
		cat.Add(catalog.NewRLSPolicy(doc.Policies[i]))
	}
	for i := range doc.Views {
		cat.Add(catalog.NewView(doc.Views[i]))
	}
	for i := range doc.MaterializedViews {
		cat.Add(catalog.NewMaterializedView(doc.MaterializedViews[i]))
	}
	for i := range doc.Functions {
		cat.Add(doc.Functions[i].toFunction())
	}
	for i := range doc.Procedures {
		cat.Add(doc.Procedures[i].toProcedure())
	}
	for i := range doc.Aggregates {
		cat.Add(doc.Aggregates[i].toAggregate())
	}
	for i := range doc.EventTriggers {
		cat.Add(catalog.NewEventTrigger(doc.EventTriggers[i]))
	}
	for i := range doc.Publications {
		cat.Add(catalog.NewPublication(doc.Publications[i]))
	}
	for i := range doc.Subscriptions {
		cat.Add(catalog.NewSubscription(doc.Subscriptions[i]))
	}
	for i := range doc.FDWs {
		f := doc.FDWs[i]
		cat.Add(&f)
	}
	for i := range doc.ForeignServers {
		cat.Add(catalog.NewForeignServer(doc.ForeignServers[i]))
	}
	for i := range doc.UserMappings {
		u := doc.UserMappings[i]
		cat.Add(&u)
	}
	for i := range doc.ForeignTables {
		cat.Add(catalog.NewForeignTable(doc.ForeignTables[i]))
	}

	return cat, nil
}
