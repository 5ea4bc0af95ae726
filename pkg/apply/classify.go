// SPDX-License-Identifier: Apache-2.0

package apply

import pgq "github.com/pganalyze/pg_query_go/v6"

// Class is one of spec.md §4.6 step 3's ~40 statement classes.
type Class string

const (
	ClassCreateSchema           Class = "CREATE_SCHEMA"
	ClassCreateTable             Class = "CREATE_TABLE"
	ClassAlterTable              Class = "ALTER_TABLE"
	ClassRename                  Class = "RENAME"
	ClassCreateIndex             Class = "CREATE_INDEX"
	ClassCreateSequence          Class = "CREATE_SEQUENCE"
	ClassAlterSequence           Class = "ALTER_SEQUENCE"
	ClassCreateView              Class = "CREATE_VIEW"
	ClassCreateMaterializedView  Class = "CREATE_MATERIALIZED_VIEW"
	ClassRefreshMaterializedView Class = "REFRESH_MATERIALIZED_VIEW"
	ClassCreateFunction          Class = "CREATE_FUNCTION"
	ClassCreateTrigger           Class = "CREATE_TRIGGER"
	ClassCreateRule              Class = "CREATE_RULE"
	ClassCreatePolicy            Class = "CREATE_POLICY"
	ClassCreateDomain            Class = "CREATE_DOMAIN"
	ClassCreateEnum              Class = "CREATE_ENUM"
	ClassCreateCompositeType     Class = "CREATE_COMPOSITE_TYPE"
	ClassCreateRangeType         Class = "CREATE_RANGE_TYPE"
	ClassAlterEnum               Class = "ALTER_ENUM"
	ClassCreateExtension         Class = "CREATE_EXTENSION"
	ClassCreateLanguage          Class = "CREATE_LANGUAGE"
	ClassCreateCollation         Class = "CREATE_COLLATION"
	ClassCreateEventTrigger      Class = "CREATE_EVENT_TRIGGER"
	ClassCreatePublication       Class = "CREATE_PUBLICATION"
	ClassCreateSubscription      Class = "CREATE_SUBSCRIPTION"
	ClassCreateFDW               Class = "CREATE_FOREIGN_DATA_WRAPPER"
	ClassCreateForeignServer     Class = "CREATE_FOREIGN_SERVER"
	ClassCreateUserMapping       Class = "CREATE_USER_MAPPING"
	ClassCreateForeignTable      Class = "CREATE_FOREIGN_TABLE"
	ClassCreateRole              Class = "CREATE_ROLE"
	ClassAlterRole               Class = "ALTER_ROLE"
	ClassDropRole                Class = "DROP_ROLE"
	ClassDrop                    Class = "DROP"
	ClassAlterOwner              Class = "ALTER_OWNER"
	ClassComment                 Class = "COMMENT"
	ClassGrant                   Class = "GRANT"
	ClassRevoke                  Class = "REVOKE"
	ClassGrantRole               Class = "GRANT_ROLE"
	ClassRevokeRole              Class = "REVOKE_ROLE"
	ClassAlterDefaultPrivileges  Class = "ALTER_DEFAULT_PRIVILEGES"
	ClassDo                      Class = "DO"
	ClassVariableSet             Class = "VARIABLE_SET"
	ClassTransaction             Class = "TRANSACTION"
	ClassUnknown                 Class = "UNKNOWN"
)

// classify implements spec.md §4.6 step 3: map a pg_query_go statement node
// to a Class, grounded on the switch-on-wrapper-type idiom in
// pkg/sql2pgroll/convert.go's convert() function.
func classify(node any) Class {
	switch n := node.(type) {
	case *pgq.Node_CreateSchemaStmt:
		return ClassCreateSchema
	case *pgq.Node_CreateStmt:
		return ClassCreateTable
	case *pgq.Node_AlterTableStmt:
		return ClassAlterTable
	case *pgq.Node_RenameStmt:
		return ClassRename
	case *pgq.Node_IndexStmt:
		return ClassCreateIndex
	case *pgq.Node_CreateSeqStmt:
		return ClassCreateSequence
	case *pgq.Node_AlterSeqStmt:
		return ClassAlterSequence
	case *pgq.Node_ViewStmt:
		return ClassCreateView
	case *pgq.Node_CreateTableAsStmt:
		if n.CreateTableAsStmt.GetObjtype() == pgq.ObjectType_OBJECT_MATVIEW {
			return ClassCreateMaterializedView
		}
		return ClassCreateTable
	case *pgq.Node_RefreshMatViewStmt:
		return ClassRefreshMaterializedView
	case *pgq.Node_CreateFunctionStmt:
		return ClassCreateFunction
	case *pgq.Node_CreateTrigStmt:
		return ClassCreateTrigger
	case *pgq.Node_RuleStmt:
		return ClassCreateRule
	case *pgq.Node_CreatePolicyStmt:
		return ClassCreatePolicy
	case *pgq.Node_CreateDomainStmt:
		return ClassCreateDomain
	case *pgq.Node_CreateEnumStmt:
		return ClassCreateEnum
	case *pgq.Node_CompositeTypeStmt:
		return ClassCreateCompositeType
	case *pgq.Node_CreateRangeStmt:
		return ClassCreateRangeType
	case *pgq.Node_AlterEnumStmt:
		return ClassAlterEnum
	case *pgq.Node_CreateExtensionStmt:
		return ClassCreateExtension
	case *pgq.Node_CreatePLangStmt:
		return ClassCreateLanguage
	case *pgq.Node_DefineStmt:
		if n.DefineStmt.GetKind() == pgq.ObjectType_OBJECT_COLLATION {
			return ClassCreateCollation
		}
		return ClassUnknown
	case *pgq.Node_CreateEventTrigStmt:
		return ClassCreateEventTrigger
	case *pgq.Node_CreatePublicationStmt:
		return ClassCreatePublication
	case *pgq.Node_CreateSubscriptionStmt:
		return ClassCreateSubscription
	case *pgq.Node_CreateFdwStmt:
		return ClassCreateFDW
	case *pgq.Node_CreateForeignServerStmt:
		return ClassCreateForeignServer
	case *pgq.Node_CreateUserMappingStmt:
		return ClassCreateUserMapping
	case *pgq.Node_CreateForeignTableStmt:
		return ClassCreateForeignTable
	case *pgq.Node_CreateRoleStmt:
		return ClassCreateRole
	case *pgq.Node_AlterRoleStmt:
		return ClassAlterRole
	case *pgq.Node_DropRoleStmt:
		return ClassDropRole
	case *pgq.Node_DropStmt:
		return ClassDrop
	case *pgq.Node_AlterOwnerStmt:
		return ClassAlterOwner
	case *pgq.Node_CommentStmt:
		return ClassComment
	case *pgq.Node_GrantStmt:
		if n.GrantStmt.GetIsGrant() {
			return ClassGrant
		}
		return ClassRevoke
	case *pgq.Node_GrantRoleStmt:
		if n.GrantRoleStmt.GetIsGrant() {
			return ClassGrantRole
		}
		return ClassRevokeRole
	case *pgq.Node_AlterDefaultPrivilegesStmt:
		return ClassAlterDefaultPrivileges
	case *pgq.Node_DoStmt:
		return ClassDo
	case *pgq.Node_VariableSetStmt:
		return ClassVariableSet
	case *pgq.Node_TransactionStmt:
		return ClassTransaction
	default:
		return ClassUnknown
	}
}
