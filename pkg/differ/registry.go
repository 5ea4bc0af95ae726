// SPDX-License-Identifier: Apache-2.0

package differ

import (
	"github.com/pgcompare/pgcompare/pkg/catalog"
	"github.com/pgcompare/pgcompare/pkg/change"
)

// createFns and dropFns render a brand-new/removed object's defining
// statement. alterBuilders renders the in-place ALTER sub-statements for
// kinds PostgreSQL lets differ alter; a kind with no entry here always
// goes through alterOrReplace's drop+create fallback.
var (
	createFns = map[catalog.Kind]func(catalog.Object) string{
		catalog.KindSchema:           func(o catalog.Object) string { return createSchemaSQL(o.(*catalog.Schema)) },
		catalog.KindRole:             func(o catalog.Object) string { return createRoleSQL(o.(*catalog.Role)) },
		catalog.KindExtension:        func(o catalog.Object) string { return createExtensionSQL(o.(*catalog.Extension)) },
		catalog.KindLanguage:         func(o catalog.Object) string { return createLanguageSQL(o.(*catalog.Language)) },
		catalog.KindCollation:        func(o catalog.Object) string { return createCollationSQL(o.(*catalog.Collation)) },
		catalog.KindSequence:         func(o catalog.Object) string { return createSequenceSQL(o.(*catalog.Sequence)) },
		catalog.KindEnum:             func(o catalog.Object) string { return createEnumSQL(o.(*catalog.Enum)) },
		catalog.KindComposite:        func(o catalog.Object) string { return createCompositeSQL(o.(*catalog.Composite)) },
		catalog.KindRange:            func(o catalog.Object) string { return createRangeSQL(o.(*catalog.Range)) },
		catalog.KindDomain:           func(o catalog.Object) string { return createDomainSQL(o.(*catalog.Domain)) },
		catalog.KindTable:            func(o catalog.Object) string { return createTableSQL(o.(*catalog.Table)) },
		catalog.KindColumn:           func(o catalog.Object) string { return createColumnSQL(o.(*catalog.Column)) },
		catalog.KindConstraint:       func(o catalog.Object) string { return createConstraintSQL(o.(*catalog.Constraint)) },
		catalog.KindIndex:            func(o catalog.Object) string { return createIndexSQL(o.(*catalog.Index)) },
		catalog.KindTrigger:          func(o catalog.Object) string { return createTriggerSQL(o.(*catalog.Trigger)) },
		catalog.KindRule:             func(o catalog.Object) string { return createRuleSQL(o.(*catalog.Rule)) },
		catalog.KindPolicy:           func(o catalog.Object) string { return createPolicySQL(o.(*catalog.RLSPolicy)) },
		catalog.KindView:             func(o catalog.Object) string { return createViewSQL(o.(*catalog.View)) },
		catalog.KindMaterializedView: func(o catalog.Object) string { return createMaterializedViewSQL(o.(*catalog.MaterializedView)) },
		catalog.KindFunction:         func(o catalog.Object) string { return createFunctionSQL(o.(*catalog.Function)) },
		catalog.KindProcedure:        func(o catalog.Object) string { return createProcedureSQL(o.(*catalog.Procedure)) },
		catalog.KindAggregate:        func(o catalog.Object) string { return createAggregateSQL(o.(*catalog.Aggregate)) },
		catalog.KindEventTrigger:     func(o catalog.Object) string { return createEventTriggerSQL(o.(*catalog.EventTrigger)) },
		catalog.KindPublication:      func(o catalog.Object) string { return createPublicationSQL(o.(*catalog.Publication)) },
		catalog.KindSubscription:     func(o catalog.Object) string { return createSubscriptionSQL(o.(*catalog.Subscription)) },
		catalog.KindFDW:              func(o catalog.Object) string { return createFDWSQL(o.(*catalog.FDW)) },
		catalog.KindForeignServer:    func(o catalog.Object) string { return createForeignServerSQL(o.(*catalog.ForeignServer)) },
		catalog.KindUserMapping:      func(o catalog.Object) string { return createUserMappingSQL(o.(*catalog.UserMapping)) },
		catalog.KindForeignTable:     func(o catalog.Object) string { return createForeignTableSQL(o.(*catalog.ForeignTable)) },
	}

	dropFns = map[catalog.Kind]func(catalog.Object) string{
		catalog.KindSchema:           func(o catalog.Object) string { return dropSchemaSQL(o.(*catalog.Schema)) },
		catalog.KindRole:             func(o catalog.Object) string { return dropRoleSQL(o.(*catalog.Role)) },
		catalog.KindExtension:        func(o catalog.Object) string { return dropExtensionSQL(o.(*catalog.Extension)) },
		catalog.KindLanguage:         func(o catalog.Object) string { return dropLanguageSQL(o.(*catalog.Language)) },
		catalog.KindCollation:        func(o catalog.Object) string { return dropCollationSQL(o.(*catalog.Collation)) },
		catalog.KindSequence:         func(o catalog.Object) string { return dropSequenceSQL(o.(*catalog.Sequence)) },
		catalog.KindEnum:             func(o catalog.Object) string { return dropEnumSQL(o.(*catalog.Enum)) },
		catalog.KindComposite:        func(o catalog.Object) string { return dropCompositeSQL(o.(*catalog.Composite)) },
		catalog.KindRange:            func(o catalog.Object) string { return dropRangeSQL(o.(*catalog.Range)) },
		catalog.KindDomain:           func(o catalog.Object) string { return dropDomainSQL(o.(*catalog.Domain)) },
		catalog.KindTable:            func(o catalog.Object) string { return dropTableSQL(o.(*catalog.Table)) },
		catalog.KindColumn:           func(o catalog.Object) string { return dropColumnSQL(o.(*catalog.Column)) },
		catalog.KindConstraint:       func(o catalog.Object) string { return dropConstraintSQL(o.(*catalog.Constraint)) },
		catalog.KindIndex:            func(o catalog.Object) string { return dropIndexSQL(o.(*catalog.Index)) },
		catalog.KindTrigger:          func(o catalog.Object) string { return dropTriggerSQL(o.(*catalog.Trigger)) },
		catalog.KindRule:             func(o catalog.Object) string { return dropRuleSQL(o.(*catalog.Rule)) },
		catalog.KindPolicy:           func(o catalog.Object) string { return dropPolicySQL(o.(*catalog.RLSPolicy)) },
		catalog.KindView:             func(o catalog.Object) string { return dropViewSQL(o.(*catalog.View)) },
		catalog.KindMaterializedView: func(o catalog.Object) string { return dropMaterializedViewSQL(o.(*catalog.MaterializedView)) },
		catalog.KindFunction:         func(o catalog.Object) string { return dropFunctionSQL(o.(*catalog.Function)) },
		catalog.KindProcedure:        func(o catalog.Object) string { return dropProcedureSQL(o.(*catalog.Procedure)) },
		catalog.KindAggregate:        func(o catalog.Object) string { return dropAggregateSQL(o.(*catalog.Aggregate)) },
		catalog.KindEventTrigger:     func(o catalog.Object) string { return dropEventTriggerSQL(o.(*catalog.EventTrigger)) },
		catalog.KindPublication:      func(o catalog.Object) string { return dropPublicationSQL(o.(*catalog.Publication)) },
		catalog.KindSubscription:     func(o catalog.Object) string { return dropSubscriptionSQL(o.(*catalog.Subscription)) },
		catalog.KindFDW:              func(o catalog.Object) string { return dropFDWSQL(o.(*catalog.FDW)) },
		catalog.KindForeignServer:    func(o catalog.Object) string { return dropForeignServerSQL(o.(*catalog.ForeignServer)) },
		catalog.KindUserMapping:      func(o catalog.Object) string { return dropUserMappingSQL(o.(*catalog.UserMapping)) },
		catalog.KindForeignTable:     func(o catalog.Object) string { return dropForeignTableSQL(o.(*catalog.ForeignTable)) },
	}

	alterBuilders = map[catalog.Kind]func(mo, bo catalog.Object) []string{
		catalog.KindSchema:           alterSchemaSQL,
		catalog.KindRole:             alterRoleSQL,
		catalog.KindSequence:         alterSequenceSQL,
		catalog.KindEnum:             alterEnumSQL,
		catalog.KindDomain:           alterDomainSQL,
		catalog.KindTable:            alterTableSQL,
		catalog.KindColumn:           alterColumnSQL,
		catalog.KindView:             alterViewSQL,
		catalog.KindMaterializedView: alterMaterializedViewSQL,
		catalog.KindFunction:         alterFunctionSQL,
		catalog.KindProcedure:        alterProcedureSQL,
		catalog.KindEventTrigger:     alterEventTriggerSQL,
		catalog.KindSubscription:     alterSubscriptionSQL,
		catalog.KindForeignServer:    alterForeignServerSQL,
		catalog.KindForeignTable:     alterForeignTableSQL,
	}
)

func createSerializer(k catalog.Kind, o catalog.Object) change.Serializer {
	fn, ok := createFns[k]
	if !ok {
		return literalSerializer("")
	}
	return literalSerializer(fn(o))
}

func dropSerializer(k catalog.Kind, o catalog.Object) change.Serializer {
	fn, ok := dropFns[k]
	if !ok {
		return literalSerializer("")
	}
	return literalSerializer(fn(o))
}
