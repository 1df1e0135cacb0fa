package nnsyntax

import "strings"

// file grammar.go contains the NN grammar: every production of the token
// language, each with its semantic action. Nonterminals are written in
// UPPERCASE_WITH_UNDERSCORES; anything on a right-hand side that never
// appears as a left-hand side is a terminal.
//
// The grammar is deliberately written so that every construct is selected
// by its leading keyword; the few shared prefixes (parenthesized tables,
// date constructions, quoted strings) are resolved by the LR(1) lookahead.

// semanticAction combines the semantic values of a production's children
// into the value of its left-hand side. Terminal children arrive as Token;
// nonterminal children arrive as whatever their own action returned.
type semanticAction func(p *parseContext, args []any) (any, error)

type grammarRule struct {
	lhs string
	rhs []string
	act semanticAction
}

const startSymbol = "INPUT"

func r(lhs, rhs string, act semanticAction) grammarRule {
	return grammarRule{lhs: lhs, rhs: strings.Fields(rhs), act: act}
}

// pass propagates the semantic value of the n-th child.
func pass(n int) semanticAction {
	return func(p *parseContext, args []any) (any, error) {
		return args[n], nil
	}
}

// grammarRules is the complete NN grammar. Order matters only for rule
// indices; the parse tables are computed from this list on first use.
var grammarRules = []grammarRule{
	// top level
	r("INPUT", "PROGRAM", pass(0)),
	r("INPUT", "bookkeeping BOOKKEEPING", pass(1)),
	r("INPUT", "policy POLICY_BODY", pass(1)),
	r("INPUT", "DIALOGUE_STATE", pass(0)),

	// programs
	r("PROGRAM", "RULE", actProgram),
	r("PROGRAM", "executor = VALUE : RULE", actProgramExecutor),

	r("RULE", "STREAM => ACTION", actRule),
	r("RULE", "now => TABLE => ACTION", actCommandTable),
	r("RULE", "now => ACTION", actCommand),

	// invocations
	r("CALL", "FUNCTION ATTRIBUTE_LIST CONST_PARAM_LIST", actCall),
	r("CALL_ACTION", "FUNCTION ATTRIBUTE_LIST CONST_PARAM_LIST ON_PARAM_LIST", actCallAction),

	r("ACTION", "notify", actNotify),
	r("ACTION", "CALL_ACTION", actInvocationAction),

	r("ATTRIBUTE_LIST", "", actEmptyAttrs),
	r("ATTRIBUTE_LIST", "ATTRIBUTE_LIST ATTRIBUTE", actAppendAttr),
	r("ATTRIBUTE", "ATTRIBUTE_NAME = VALUE", actAttribute),

	r("CONST_PARAM_LIST", "", actEmptyParams),
	r("CONST_PARAM_LIST", "CONST_PARAM_LIST INPUT_PARAM", actAppendParam),
	r("INPUT_PARAM", "PARAM_NAME = VALUE", actInputParam),

	r("ON_PARAM_LIST", "", actEmptyParams),
	r("ON_PARAM_LIST", "ON_PARAM_LIST on INPUT_PARAM", actAppendOnParam),

	r("OUT_PARAM_LIST", "PARAM_NAME", actFirstOutParam),
	r("OUT_PARAM_LIST", "OUT_PARAM_LIST , PARAM_NAME", actAppendOutParam),

	// tables
	r("TABLE", "CALL", actInvocationTable),
	r("TABLE", "( TABLE ) filter FILTER", actFilteredTable),
	r("TABLE", "( TABLE ) join ( TABLE ) JOIN_PARAMS", actJoinTable),
	r("TABLE", "[ OUT_PARAM_LIST ] of ( TABLE )", actProjectionTable),
	r("TABLE", "aggregate count of ( TABLE )", actCountTable),
	r("TABLE", "aggregate AGG_OP PARAM_NAME of ( TABLE )", actAggregationTable),
	r("TABLE", "sort PARAM_NAME asc of ( TABLE )", actSortTable),
	r("TABLE", "sort PARAM_NAME desc of ( TABLE )", actSortTable),
	r("TABLE", "( TABLE ) [ VALUE_LIST ]", actIndexTable),
	r("TABLE", "( TABLE ) [ VALUE : VALUE ]", actSliceTable),

	r("JOIN_PARAMS", "", actEmptyParams),
	r("JOIN_PARAMS", "JOIN_PARAMS on INPUT_PARAM", actAppendOnParam),

	r("AGG_OP", "sum", actTokenText),
	r("AGG_OP", "avg", actTokenText),
	r("AGG_OP", "min", actTokenText),
	r("AGG_OP", "max", actTokenText),

	// streams
	r("STREAM", "timer base = VALUE , interval = VALUE", actTimer),
	r("STREAM", "timer base = VALUE , interval = VALUE , frequency = VALUE", actTimerFrequency),
	r("STREAM", "attimer time = VALUE", actAtTimer),
	r("STREAM", "attimer time = VALUE , expiration_date = VALUE", actAtTimerExpiration),
	r("STREAM", "monitor ( TABLE )", actMonitor),
	r("STREAM", "monitor ( TABLE ) on new PARAM_NAME", actMonitorArg),
	r("STREAM", "monitor ( TABLE ) on new [ OUT_PARAM_LIST ]", actMonitorArgs),
	r("STREAM", "edge ( STREAM ) on new", actEdgeNew),
	r("STREAM", "edge ( STREAM ) on FILTER", actEdgeFilter),
	r("STREAM", "( STREAM ) => ( TABLE ) JOIN_PARAMS", actStreamJoin),

	// filters, in conjunctive normal form
	r("FILTER", "AND_CLAUSE", actFirstClause),
	r("FILTER", "FILTER and AND_CLAUSE", actAppendClause),
	r("AND_CLAUSE", "OR_LITERAL", actFirstLiteral),
	r("AND_CLAUSE", "AND_CLAUSE or OR_LITERAL", actAppendLiteral),
	r("OR_LITERAL", "LITERAL", pass(0)),
	r("OR_LITERAL", "not LITERAL", actNegateLiteral),
	r("LITERAL", "PARAM_NAME COMP_OP VALUE", actAtomFilter),
	r("LITERAL", "true PARAM_NAME", actDontCareFilter),
	r("LITERAL", "COMP_VALUE COMP_OP VALUE", actComputeFilter),
	r("LITERAL", "FN_EXT { FILTER }", actExternalFilter),
	r("FN_EXT", "FUNCTION CONST_PARAM_LIST", actFnExt),

	r("COMP_VALUE", "COMPUTE_OP ( VALUE_LIST )", actComputation),
	r("COMPUTE_OP", "count", actTokenText),
	r("COMPUTE_OP", "sum", actTokenText),
	r("COMPUTE_OP", "avg", actTokenText),
	r("COMPUTE_OP", "min", actTokenText),
	r("COMPUTE_OP", "max", actTokenText),
	r("COMPUTE_OP", "distance", actTokenText),

	r("COMP_OP", "==", actTokenText),
	r("COMP_OP", ">=", actTokenText),
	r("COMP_OP", "<=", actTokenText),
	r("COMP_OP", "=~", actTokenText),
	r("COMP_OP", "~=", actTokenText),
	r("COMP_OP", "starts_with", actTokenText),
	r("COMP_OP", "ends_with", actTokenText),
	r("COMP_OP", "contains", actTokenText),
	r("COMP_OP", "in_array", actTokenText),

	// values
	r("VALUE", "VALUE_ATOM", pass(0)),
	r("VALUE", "VALUE_ATOM filter { FILTER }", actFilterValue),

	r("VALUE_ATOM", "CONST_STRING", actStringValue),
	r("VALUE_ATOM", "CONST_NUMBER", actNumberValue),
	r("VALUE_ATOM", "CONST_NUMBER UNIT", actMeasureValue),
	r("VALUE_ATOM", "MEASURE", actMeasureEntity),
	r("VALUE_ATOM", "DURATION", actMeasureEntity),
	r("VALUE_ATOM", "CURRENCY", actCurrencyEntity),
	r("VALUE_ATOM", "CONST_NUMBER CURRENCY_CODE", actCurrencyCode),
	r("VALUE_ATOM", "new Currency ( CONST_NUMBER , UNIT )", actCurrencyNew),
	r("VALUE_ATOM", "true", actTrueValue),
	r("VALUE_ATOM", "false", actFalseValue),
	r("VALUE_ATOM", "ENUM", actEnumValue),
	r("VALUE_ATOM", "event", actEventValue),
	r("VALUE_ATOM", "PARAM_NAME", actVarRefValue),
	r("VALUE_ATOM", "CONTEXT_REF", actContextRefValue),
	r("VALUE_ATOM", "undefined", actUndefinedValue),
	r("VALUE_ATOM", "SLOT", actUndefinedValue),
	r("VALUE_ATOM", "DEVICE_NAME", actDeviceNameValue),
	r("VALUE_ATOM", "[ VALUE_LIST ]", actArrayValue),
	r("VALUE_ATOM", "OBJECT", pass(0)),
	r("VALUE_ATOM", "COMP_VALUE", pass(0)),
	r("VALUE_ATOM", "CONST_DATE", pass(0)),
	r("VALUE_ATOM", "CONST_TIME", pass(0)),
	r("VALUE_ATOM", "CONST_LOCATION", pass(0)),
	r("VALUE_ATOM", "CONST_ENTITY", pass(0)),
	r("VALUE_ATOM", "new RecurrentTimeSpecification ( RT_RULE_LIST )", actRecurrentTime),

	r("CONST_NUMBER", "POS_NUMBER", pass(0)),
	r("CONST_NUMBER", "- POS_NUMBER", actNegateNumber),
	r("POS_NUMBER", "NUMBER", actNumberToken),
	r("POS_NUMBER", "LITERAL_INTEGER", actNumberToken),
	r("POS_NUMBER", "0", actZero),
	r("POS_NUMBER", "1", actOne),

	r("CONST_STRING", `QUOTED_STRING`, actQuotedStringToken),
	r("CONST_STRING", `" WORD_LIST "`, actInlineString),
	r("CONST_STRING", `" "`, actEmptyString),
	r("WORD_LIST", "WORD", actFirstWord),
	r("WORD_LIST", "WORD_LIST WORD", actAppendWord),

	r("CONST_ENTITY", "GENERIC_ENTITY", actGenericEntityToken),
	r("CONST_ENTITY", "USERNAME", actSimpleEntityToken),
	r("CONST_ENTITY", "HASHTAG", actSimpleEntityToken),
	r("CONST_ENTITY", "URL", actSimpleEntityToken),
	r("CONST_ENTITY", "PHONE_NUMBER", actSimpleEntityToken),
	r("CONST_ENTITY", "EMAIL_ADDRESS", actSimpleEntityToken),
	r("CONST_ENTITY", "PATH_NAME", actSimpleEntityToken),
	r("CONST_ENTITY", "PICTURE", actSimpleEntityToken),
	r("CONST_ENTITY", `" WORD_LIST " ENTITY_TYPE`, actInlineEntity),

	r("CONST_DATE", "now", actDateNow),
	r("CONST_DATE", "DATE", actDateToken),
	r("CONST_DATE", "start_of UNIT", actDateEdge),
	r("CONST_DATE", "end_of UNIT", actDateEdge),
	r("CONST_DATE", `new Date ( " WORD_LIST " )`, actDateISO),
	r("CONST_DATE", "new Date ( POS_NUMBER )", actDateYear),
	r("CONST_DATE", "new Date ( POS_NUMBER , POS_NUMBER )", actDateYearMonth),
	r("CONST_DATE", "new Date ( , POS_NUMBER , POS_NUMBER )", actDateMonthDay),
	r("CONST_DATE", "new Date ( POS_NUMBER , POS_NUMBER , POS_NUMBER )", actDateAbsolute),
	r("CONST_DATE", "new Date ( POS_NUMBER , POS_NUMBER , POS_NUMBER , CONST_TIME )", actDateAbsoluteTime),
	r("CONST_DATE", "new Date ( ENUM )", actDateWeekDay),
	r("CONST_DATE", "new Date ( ENUM , CONST_TIME )", actDateWeekDayTime),

	r("CONST_TIME", "TIME", actTimeToken),
	r("CONST_TIME", "LITERAL_TIME", actTimeToken),
	r("CONST_TIME", "RELATIVE_TIME", actRelativeTime),

	r("CONST_LOCATION", "LOCATION", actLocationToken),
	r("CONST_LOCATION", "RELATIVE_LOCATION", actRelativeLocation),
	r("CONST_LOCATION", `location: " WORD_LIST "`, actUnresolvedLocation),

	r("VALUE_LIST", "VALUE", actFirstValue),
	r("VALUE_LIST", "VALUE_LIST , VALUE", actAppendValue),

	r("OBJECT", "{ FIELD_LIST }", actObject),
	r("FIELD_LIST", "FIELD", actFirstField),
	r("FIELD_LIST", "FIELD_LIST , FIELD", actAppendField),
	r("FIELD", "PARAM_NAME = VALUE", actField),

	r("RT_RULE_LIST", "RT_RULE", actFirstRTRule),
	r("RT_RULE_LIST", "RT_RULE_LIST , RT_RULE", actAppendRTRule),
	r("RT_RULE", "{ RT_FIELD_LIST }", actRTRule),
	r("RT_FIELD_LIST", "RT_FIELD", actFirstField),
	r("RT_FIELD_LIST", "RT_FIELD_LIST , RT_FIELD", actAppendField),
	r("RT_FIELD", "beginTime = VALUE", actRTField),
	r("RT_FIELD", "endTime = VALUE", actRTField),
	r("RT_FIELD", "interval = VALUE", actRTField),
	r("RT_FIELD", "frequency = VALUE", actRTField),
	r("RT_FIELD", "dayOfWeek = VALUE", actRTField),
	r("RT_FIELD", "beginDate = VALUE", actRTField),
	r("RT_FIELD", "endDate = VALUE", actRTField),
	r("RT_FIELD", "subtract = VALUE", actRTField),

	// permission rules
	r("POLICY_BODY", "POLICY_PRINCIPAL : PERM_FN => PERM_FN", actPolicy),
	r("POLICY_PRINCIPAL", "true", actPrincipalTrue),
	r("POLICY_PRINCIPAL", "PARAM_NAME == VALUE", actPrincipalSource),
	r("PERM_FN", "*", actPermStar),
	r("PERM_FN", "CLASS_STAR", actPermClassStar),
	r("PERM_FN", "FUNCTION", actPermSpecific),
	r("PERM_FN", "FUNCTION filter FILTER", actPermSpecificFilter),

	// dialogue states
	r("DIALOGUE_STATE", "$dialogue FUNCTION DLG_PARAMS ; HISTORY_LIST", actDialogueState),
	r("DLG_PARAMS", "", actEmptyStrings),
	r("DLG_PARAMS", "DLG_PARAMS , PARAM_NAME", actAppendDlgParam),
	r("HISTORY_LIST", "", actEmptyHistory),
	r("HISTORY_LIST", "HISTORY_LIST HISTORY_ITEM", actAppendHistory),
	r("HISTORY_ITEM", "RULE ANNOT_SEQ ;", actHistoryItem),
	r("ANNOT_SEQ", "", actNoAnnots),
	r("ANNOT_SEQ", "#[ confirm = ENUM ]", actConfirmAnnot),
	r("ANNOT_SEQ", "RESULTS_ANNOT ANNOT_LIST", actResultsAnnots),
	r("RESULTS_ANNOT", "#[ results = [ ] ]", actEmptyResults),
	r("RESULTS_ANNOT", "#[ results = [ OBJECT_LIST ] ]", actResults),
	r("OBJECT_LIST", "OBJECT", actFirstObject),
	r("OBJECT_LIST", "OBJECT_LIST , OBJECT", actAppendObject),
	r("ANNOT_LIST", "", actEmptyAnnots),
	r("ANNOT_LIST", "ANNOT_LIST ANNOT", actAppendAnnot),
	r("ANNOT", "#[ count = VALUE ]", actCountAnnot),
	r("ANNOT", "#[ more = true ]", actMoreAnnot),
	r("ANNOT", "#[ error = VALUE ]", actErrorAnnot),

	// bookkeeping
	r("BOOKKEEPING", "special SPECIAL", actSpecial),
	r("BOOKKEEPING", "choice POS_NUMBER", actChoice),
	r("BOOKKEEPING", "answer VALUE", actAnswer),
}
