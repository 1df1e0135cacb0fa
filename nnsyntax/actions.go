package nnsyntax

import (
	"math"
	"strings"
	"time"

	"github.com/dekarrin/thingtalk/syntax"
)

// file actions.go contains the semantic actions attached to the grammar
// rules: each one recombines the semantic values of a production's children
// into the AST node for its left-hand side.

// attrEntry is a parsed device-selector attribute before it is folded into
// the selector.
type attrEntry struct {
	name  string
	typ   syntax.Type
	value syntax.Value
}

// fieldEntry is one parsed name=value binding of an object or a recurrent
// time rule.
type fieldEntry struct {
	name  string
	typ   syntax.Type
	value syntax.Value
}

// annotInfo is the parsed annotation block of a dialogue history item.
type annotInfo struct {
	confirm string
	results *syntax.ResultsInfo
}

func tokOf(a any) Token          { return a.(Token) }
func refOf(a any) paramRef       { return a.(Token).Value.(paramRef) }
func fnOf(a any) funcRef         { return a.(Token).Value.(funcRef) }
func valOf(a any) syntax.Value   { return a.(syntax.Value) }
func paramsOf(a any) []syntax.InputParam {
	return a.([]syntax.InputParam)
}

func refType(p *parseContext, a any) (syntax.Type, error) {
	t, err := syntax.ParseType(refOf(a).Type)
	if err != nil {
		return syntax.AnyType, p.errorf(tokOf(a).Index, "%v", err)
	}
	return t, nil
}

// --- programs ---

func actProgram(p *parseContext, args []any) (any, error) {
	return syntax.Program{Statements: []syntax.Statement{args[0].(syntax.Statement)}}, nil
}

func actProgramExecutor(p *parseContext, args []any) (any, error) {
	return syntax.Program{
		Executor:   valOf(args[2]),
		Statements: []syntax.Statement{args[4].(syntax.Statement)},
	}, nil
}

func actRule(p *parseContext, args []any) (any, error) {
	return syntax.Rule{
		Stream:  args[0].(syntax.Stream),
		Actions: []syntax.Action{args[2].(syntax.Action)},
	}, nil
}

func actCommandTable(p *parseContext, args []any) (any, error) {
	return syntax.Command{
		Table:   args[2].(syntax.Table),
		Actions: []syntax.Action{args[4].(syntax.Action)},
	}, nil
}

func actCommand(p *parseContext, args []any) (any, error) {
	return syntax.Command{Actions: []syntax.Action{args[2].(syntax.Action)}}, nil
}

// --- invocations ---

func buildInvocation(p *parseContext, fnTok, attrsArg, constArg any, onParams []syntax.InputParam) (syntax.Invocation, error) {
	fn := fnOf(fnTok)
	sel := syntax.DeviceSelector{Kind: fn.Kind}

	for _, attr := range attrsArg.([]attrEntry) {
		switch {
		case attr.name == "all":
			b, ok := attr.value.(syntax.BooleanValue)
			if !ok || !b.Value {
				return syntax.Invocation{}, p.errorf(tokOf(fnTok).Index, "attribute:all must be true")
			}
			sel.All = true
		case attr.name == "id":
			ev, ok := attr.value.(syntax.EntityValue)
			if !ok || ev.Type != "tt:device" {
				return syntax.Invocation{}, p.errorf(tokOf(fnTok).Index, "attribute:id must be a device name")
			}
			sel.ID = ev.Value
		default:
			sel.Attributes = append(sel.Attributes, syntax.InputParam{Name: attr.name, Type: attr.typ, Value: attr.value})
		}
	}

	inParams := append([]syntax.InputParam{}, paramsOf(constArg)...)
	inParams = append(inParams, onParams...)

	return syntax.Invocation{Selector: sel, Channel: fn.Channel, InParams: inParams}, nil
}

func actCall(p *parseContext, args []any) (any, error) {
	return buildInvocation(p, args[0], args[1], args[2], nil)
}

func actCallAction(p *parseContext, args []any) (any, error) {
	return buildInvocation(p, args[0], args[1], args[2], paramsOf(args[3]))
}

func actNotify(p *parseContext, args []any) (any, error) {
	return syntax.NotifyAction{}, nil
}

func actInvocationAction(p *parseContext, args []any) (any, error) {
	return syntax.InvocationAction{Invocation: args[0].(syntax.Invocation)}, nil
}

func actEmptyAttrs(p *parseContext, args []any) (any, error) {
	return []attrEntry{}, nil
}

func actAppendAttr(p *parseContext, args []any) (any, error) {
	return append(args[0].([]attrEntry), args[1].(attrEntry)), nil
}

func actAttribute(p *parseContext, args []any) (any, error) {
	t, err := refType(p, args[0])
	if err != nil {
		return nil, err
	}
	return attrEntry{name: refOf(args[0]).Name, typ: t, value: valOf(args[2])}, nil
}

func actEmptyParams(p *parseContext, args []any) (any, error) {
	return []syntax.InputParam{}, nil
}

func actAppendParam(p *parseContext, args []any) (any, error) {
	return append(paramsOf(args[0]), args[1].(syntax.InputParam)), nil
}

func actInputParam(p *parseContext, args []any) (any, error) {
	t, err := refType(p, args[0])
	if err != nil {
		return nil, err
	}
	return syntax.InputParam{Name: refOf(args[0]).Name, Type: t, Value: valOf(args[2])}, nil
}

func actAppendOnParam(p *parseContext, args []any) (any, error) {
	return append(paramsOf(args[0]), args[2].(syntax.InputParam)), nil
}

func actFirstOutParam(p *parseContext, args []any) (any, error) {
	return []string{refOf(args[0]).Name}, nil
}

func actAppendOutParam(p *parseContext, args []any) (any, error) {
	return append(args[0].([]string), refOf(args[2]).Name), nil
}

// --- tables ---

func actInvocationTable(p *parseContext, args []any) (any, error) {
	return syntax.InvocationTable{Invocation: args[0].(syntax.Invocation)}, nil
}

func actFilteredTable(p *parseContext, args []any) (any, error) {
	return syntax.FilteredTable{
		Table:  args[1].(syntax.Table),
		Filter: buildFilterExpr(args[4]),
	}, nil
}

func actJoinTable(p *parseContext, args []any) (any, error) {
	return syntax.JoinTable{
		Lhs:      args[1].(syntax.Table),
		Rhs:      args[5].(syntax.Table),
		InParams: paramsOf(args[7]),
	}, nil
}

func actProjectionTable(p *parseContext, args []any) (any, error) {
	return syntax.ProjectionTable{
		Args:  args[1].([]string),
		Table: args[5].(syntax.Table),
	}, nil
}

func actCountTable(p *parseContext, args []any) (any, error) {
	return syntax.AggregationTable{Table: args[4].(syntax.Table), Op: "count", Field: "*"}, nil
}

func actAggregationTable(p *parseContext, args []any) (any, error) {
	return syntax.AggregationTable{
		Table: args[5].(syntax.Table),
		Op:    args[1].(string),
		Field: refOf(args[2]).Name,
	}, nil
}

func actSortTable(p *parseContext, args []any) (any, error) {
	return syntax.SortedTable{
		Table:     args[5].(syntax.Table),
		Field:     refOf(args[1]).Name,
		Direction: tokOf(args[2]).Terminal,
	}, nil
}

func actIndexTable(p *parseContext, args []any) (any, error) {
	return syntax.IndexTable{
		Table:   args[1].(syntax.Table),
		Indices: args[4].([]syntax.Value),
	}, nil
}

func actSliceTable(p *parseContext, args []any) (any, error) {
	return syntax.SlicedTable{
		Table: args[1].(syntax.Table),
		Base:  valOf(args[4]),
		Limit: valOf(args[6]),
	}, nil
}

func actTokenText(p *parseContext, args []any) (any, error) {
	return tokOf(args[0]).Terminal, nil
}

// --- streams ---

func actTimer(p *parseContext, args []any) (any, error) {
	return syntax.TimerStream{Base: valOf(args[3]), Interval: valOf(args[7])}, nil
}

func actTimerFrequency(p *parseContext, args []any) (any, error) {
	return syntax.TimerStream{
		Base:      valOf(args[3]),
		Interval:  valOf(args[7]),
		Frequency: valOf(args[11]),
	}, nil
}

func atTimerTimes(v syntax.Value) []syntax.Value {
	if arr, ok := v.(syntax.ArrayValue); ok {
		return arr.Values
	}
	return []syntax.Value{v}
}

func actAtTimer(p *parseContext, args []any) (any, error) {
	return syntax.AtTimerStream{Times: atTimerTimes(valOf(args[3]))}, nil
}

func actAtTimerExpiration(p *parseContext, args []any) (any, error) {
	return syntax.AtTimerStream{
		Times:      atTimerTimes(valOf(args[3])),
		Expiration: valOf(args[7]),
	}, nil
}

func actMonitor(p *parseContext, args []any) (any, error) {
	return syntax.MonitorStream{Table: args[2].(syntax.Table)}, nil
}

func actMonitorArg(p *parseContext, args []any) (any, error) {
	return syntax.MonitorStream{
		Table: args[2].(syntax.Table),
		Args:  []string{refOf(args[6]).Name},
	}, nil
}

func actMonitorArgs(p *parseContext, args []any) (any, error) {
	return syntax.MonitorStream{
		Table: args[2].(syntax.Table),
		Args:  args[7].([]string),
	}, nil
}

func actEdgeNew(p *parseContext, args []any) (any, error) {
	return syntax.EdgeNewStream{Stream: args[2].(syntax.Stream)}, nil
}

func actEdgeFilter(p *parseContext, args []any) (any, error) {
	return syntax.EdgeFilterStream{
		Stream: args[2].(syntax.Stream),
		Filter: buildFilterExpr(args[5]),
	}, nil
}

func actStreamJoin(p *parseContext, args []any) (any, error) {
	return syntax.JoinStream{
		Stream:   args[1].(syntax.Stream),
		Table:    args[5].(syntax.Table),
		InParams: paramsOf(args[7]),
	}, nil
}

// --- filters ---

// filter semantic values are [][]syntax.BooleanExpression: the conjunction
// of disjunctions the CNF token form spells out directly.

func buildFilterExpr(a any) syntax.BooleanExpression {
	clauses := a.([][]syntax.BooleanExpression)
	conjuncts := make([]syntax.BooleanExpression, 0, len(clauses))
	for _, clause := range clauses {
		if len(clause) == 1 {
			conjuncts = append(conjuncts, clause[0])
		} else {
			conjuncts = append(conjuncts, syntax.OrExpression{Operands: clause})
		}
	}
	if len(conjuncts) == 1 {
		return conjuncts[0]
	}
	return syntax.AndExpression{Operands: conjuncts}
}

func actFirstClause(p *parseContext, args []any) (any, error) {
	return [][]syntax.BooleanExpression{args[0].([]syntax.BooleanExpression)}, nil
}

func actAppendClause(p *parseContext, args []any) (any, error) {
	return append(args[0].([][]syntax.BooleanExpression), args[2].([]syntax.BooleanExpression)), nil
}

func actFirstLiteral(p *parseContext, args []any) (any, error) {
	return []syntax.BooleanExpression{args[0].(syntax.BooleanExpression)}, nil
}

func actAppendLiteral(p *parseContext, args []any) (any, error) {
	return append(args[0].([]syntax.BooleanExpression), args[2].(syntax.BooleanExpression)), nil
}

func actNegateLiteral(p *parseContext, args []any) (any, error) {
	return syntax.NotExpression{Expr: args[1].(syntax.BooleanExpression)}, nil
}

func actAtomFilter(p *parseContext, args []any) (any, error) {
	t, err := refType(p, args[0])
	if err != nil {
		return nil, err
	}
	return syntax.AtomExpression{
		Name:  refOf(args[0]).Name,
		Type:  t,
		Op:    args[1].(string),
		Value: valOf(args[2]),
	}, nil
}

func actDontCareFilter(p *parseContext, args []any) (any, error) {
	t, err := refType(p, args[1])
	if err != nil {
		return nil, err
	}
	return syntax.DontCareExpression{Name: refOf(args[1]).Name, Type: t}, nil
}

func actComputeFilter(p *parseContext, args []any) (any, error) {
	return syntax.ComputeExpression{
		Lhs: valOf(args[0]),
		Op:  args[1].(string),
		Rhs: valOf(args[2]),
	}, nil
}

func actExternalFilter(p *parseContext, args []any) (any, error) {
	inv := args[0].(syntax.Invocation)
	return syntax.ExternalExpression{
		Selector: inv.Selector,
		Channel:  inv.Channel,
		InParams: inv.InParams,
		Filter:   buildFilterExpr(args[2]),
	}, nil
}

func actFnExt(p *parseContext, args []any) (any, error) {
	fn := fnOf(args[0])
	return syntax.Invocation{
		Selector: syntax.DeviceSelector{Kind: fn.Kind},
		Channel:  fn.Channel,
		InParams: paramsOf(args[1]),
	}, nil
}

func actComputation(p *parseContext, args []any) (any, error) {
	return syntax.ComputationValue{
		Op:       args[0].(string),
		Operands: args[2].([]syntax.Value),
	}, nil
}

// --- values ---

func actFilterValue(p *parseContext, args []any) (any, error) {
	return syntax.FilterValue{
		Value:  valOf(args[0]),
		Filter: buildFilterExpr(args[3]),
	}, nil
}

func actStringValue(p *parseContext, args []any) (any, error) {
	return syntax.StringValue{Value: args[0].(string)}, nil
}

func actNumberValue(p *parseContext, args []any) (any, error) {
	return syntax.NumberValue{Value: args[0].(float64)}, nil
}

func actMeasureValue(p *parseContext, args []any) (any, error) {
	return syntax.MeasureValue{
		Value: args[0].(float64),
		Unit:  tokOf(args[1]).Value.(string),
	}, nil
}

func actMeasureEntity(p *parseContext, args []any) (any, error) {
	me := tokOf(args[0]).Value.(MeasureEntity)
	return syntax.MeasureValue{Value: me.Value, Unit: me.Unit}, nil
}

func actCurrencyEntity(p *parseContext, args []any) (any, error) {
	ce, ok := tokOf(args[0]).Value.(CurrencyEntity)
	if !ok {
		return nil, p.errorf(tokOf(args[0]).Index, "CURRENCY entity does not carry a currency value")
	}
	return syntax.CurrencyValue{Value: ce.Value, Code: ce.Code}, nil
}

func actCurrencyCode(p *parseContext, args []any) (any, error) {
	return syntax.CurrencyValue{
		Value: args[0].(float64),
		Code:  tokOf(args[1]).Value.(string),
	}, nil
}

func actCurrencyNew(p *parseContext, args []any) (any, error) {
	return syntax.CurrencyValue{
		Value: args[3].(float64),
		Code:  tokOf(args[5]).Value.(string),
	}, nil
}

func actTrueValue(p *parseContext, args []any) (any, error) {
	return syntax.BooleanValue{Value: true}, nil
}

func actFalseValue(p *parseContext, args []any) (any, error) {
	return syntax.BooleanValue{Value: false}, nil
}

func actEnumValue(p *parseContext, args []any) (any, error) {
	return syntax.EnumValue{Value: tokOf(args[0]).Value.(string)}, nil
}

func actEventValue(p *parseContext, args []any) (any, error) {
	return syntax.EventValue{}, nil
}

func actVarRefValue(p *parseContext, args []any) (any, error) {
	t, err := refType(p, args[0])
	if err != nil {
		return nil, err
	}
	return syntax.VarRefValue{Name: refOf(args[0]).Name, Type: t}, nil
}

func actContextRefValue(p *parseContext, args []any) (any, error) {
	ref := refOf(args[0])
	t, err := syntax.ParseType(ref.Type)
	if err != nil {
		return nil, p.errorf(tokOf(args[0]).Index, "%v", err)
	}
	return syntax.ContextRefValue{Name: ref.Name, Type: t}, nil
}

func actUndefinedValue(p *parseContext, args []any) (any, error) {
	return syntax.UndefinedValue{}, nil
}

func actDeviceNameValue(p *parseContext, args []any) (any, error) {
	return syntax.EntityValue{Type: "tt:device", Value: tokOf(args[0]).Value.(string)}, nil
}

func actArrayValue(p *parseContext, args []any) (any, error) {
	return syntax.ArrayValue{Values: args[1].([]syntax.Value)}, nil
}

func actRecurrentTime(p *parseContext, args []any) (any, error) {
	return syntax.RecurrentTimeSpecValue{Rules: args[3].([]syntax.RecurrentTimeRule)}, nil
}

func actNegateNumber(p *parseContext, args []any) (any, error) {
	return -args[1].(float64), nil
}

func actNumberToken(p *parseContext, args []any) (any, error) {
	n, ok := tokOf(args[0]).Value.(float64)
	if !ok {
		return nil, p.errorf(tokOf(args[0]).Index, "NUMBER entity does not carry a number")
	}
	return n, nil
}

func actZero(p *parseContext, args []any) (any, error) {
	return float64(0), nil
}

func actOne(p *parseContext, args []any) (any, error) {
	return float64(1), nil
}

func actQuotedStringToken(p *parseContext, args []any) (any, error) {
	s, ok := tokOf(args[0]).Value.(string)
	if !ok {
		return nil, p.errorf(tokOf(args[0]).Index, "QUOTED_STRING entity does not carry a string")
	}
	return s, nil
}

func actInlineString(p *parseContext, args []any) (any, error) {
	return strings.Join(args[1].([]string), " "), nil
}

func actEmptyString(p *parseContext, args []any) (any, error) {
	return "", nil
}

func actFirstWord(p *parseContext, args []any) (any, error) {
	return []string{tokOf(args[0]).Value.(string)}, nil
}

func actAppendWord(p *parseContext, args []any) (any, error) {
	return append(args[0].([]string), tokOf(args[1]).Value.(string)), nil
}

func actGenericEntityToken(p *parseContext, args []any) (any, error) {
	gp := tokOf(args[0]).Value.(genericPayload)
	return syntax.EntityValue{Type: gp.Type, Value: gp.Entity.Value, Display: gp.Entity.Display}, nil
}

func actSimpleEntityToken(p *parseContext, args []any) (any, error) {
	tok := tokOf(args[0])
	s, ok := tok.Value.(string)
	if !ok {
		return nil, p.errorf(tok.Index, "%s entity does not carry a string", tok.Terminal)
	}
	return syntax.EntityValue{Type: entityTypeOfKind(tok.Terminal), Value: s}, nil
}

func actInlineEntity(p *parseContext, args []any) (any, error) {
	text := strings.Join(args[1].([]string), " ")
	entityType := tokOf(args[3]).Value.(string)
	switch entityType {
	case "tt:hashtag", "tt:username", "tt:url", "tt:phone_number", "tt:email_address", "tt:path_name", "tt:picture":
		return syntax.EntityValue{Type: entityType, Value: text}, nil
	default:
		return syntax.EntityValue{Type: entityType, Display: text}, nil
	}
}

// --- dates, times, locations ---

func actDateNow(p *parseContext, args []any) (any, error) {
	return syntax.DateValue{Value: syntax.DateSpec{Kind: syntax.DateNow}}, nil
}

func actDateToken(p *parseContext, args []any) (any, error) {
	t, ok := asTime(tokOf(args[0]).Value)
	if !ok {
		return nil, p.errorf(tokOf(args[0]).Index, "DATE entity does not carry a date")
	}
	return syntax.DateValue{Value: syntax.DateSpec{Kind: syntax.DateAbsolute, Abs: t.UTC()}}, nil
}

func actDateEdge(p *parseContext, args []any) (any, error) {
	return syntax.DateValue{Value: syntax.DateSpec{
		Kind: syntax.DateEdge,
		Edge: tokOf(args[0]).Terminal,
		Unit: tokOf(args[1]).Value.(string),
	}}, nil
}

func actDateISO(p *parseContext, args []any) (any, error) {
	iso := strings.Join(args[4].([]string), " ")
	t, err := time.Parse(time.RFC3339, iso)
	if err != nil {
		return nil, p.errorf(tokOf(args[0]).Index, "malformed date literal %q", iso)
	}
	return syntax.DateValue{Value: syntax.DateSpec{Kind: syntax.DateAbsolute, Abs: t.UTC()}}, nil
}

// resolveYear applies the two-digit year convention used by the date
// construction form.
func resolveYear(n float64) int {
	year := int(n)
	if year < 100 {
		return 1900 + year
	}
	return year
}

func actDateYear(p *parseContext, args []any) (any, error) {
	return syntax.DateValue{Value: syntax.DateSpec{
		Kind: syntax.DatePiece, Year: resolveYear(args[3].(float64)), Month: -1, Day: -1,
	}}, nil
}

func actDateYearMonth(p *parseContext, args []any) (any, error) {
	return syntax.DateValue{Value: syntax.DateSpec{
		Kind: syntax.DatePiece, Year: resolveYear(args[3].(float64)), Month: int(args[5].(float64)), Day: -1,
	}}, nil
}

func actDateMonthDay(p *parseContext, args []any) (any, error) {
	return syntax.DateValue{Value: syntax.DateSpec{
		Kind: syntax.DatePiece, Year: -1, Month: int(args[4].(float64)), Day: int(args[6].(float64)),
	}}, nil
}

func actDateAbsolute(p *parseContext, args []any) (any, error) {
	abs := time.Date(resolveYear(args[3].(float64)), time.Month(int(args[5].(float64))), int(args[7].(float64)), 0, 0, 0, 0, time.UTC)
	return syntax.DateValue{Value: syntax.DateSpec{Kind: syntax.DateAbsolute, Abs: abs}}, nil
}

func actDateAbsoluteTime(p *parseContext, args []any) (any, error) {
	tv := args[9].(syntax.TimeValue)
	if tv.Value.Kind != syntax.TimeAbsolute {
		return nil, p.errorf(tokOf(args[0]).Index, "date construction requires an absolute time")
	}
	abs := time.Date(resolveYear(args[3].(float64)), time.Month(int(args[5].(float64))), int(args[7].(float64)),
		tv.Value.Hour, tv.Value.Minute, tv.Value.Second, 0, time.UTC)
	return syntax.DateValue{Value: syntax.DateSpec{Kind: syntax.DateAbsolute, Abs: abs}}, nil
}

func actDateWeekDay(p *parseContext, args []any) (any, error) {
	return syntax.DateValue{Value: syntax.DateSpec{
		Kind: syntax.DateWeekDay, WeekDay: tokOf(args[3]).Value.(string), Year: -1, Month: -1, Day: -1,
	}}, nil
}

func actDateWeekDayTime(p *parseContext, args []any) (any, error) {
	tv := args[5].(syntax.TimeValue)
	spec := syntax.DateSpec{Kind: syntax.DateWeekDay, WeekDay: tokOf(args[3]).Value.(string), Year: -1, Month: -1, Day: -1}
	spec.Time = &tv.Value
	return syntax.DateValue{Value: spec}, nil
}

func actTimeToken(p *parseContext, args []any) (any, error) {
	te, ok := tokOf(args[0]).Value.(TimeEntity)
	if !ok {
		return nil, p.errorf(tokOf(args[0]).Index, "TIME entity does not carry a time")
	}
	return syntax.TimeValue{Value: syntax.TimeSpec{
		Kind: syntax.TimeAbsolute, Hour: te.Hour, Minute: te.Minute, Second: te.Second,
	}}, nil
}

func actRelativeTime(p *parseContext, args []any) (any, error) {
	return syntax.TimeValue{Value: syntax.TimeSpec{
		Kind: syntax.TimeRelative, RelativeTag: tokOf(args[0]).Value.(string),
	}}, nil
}

func actLocationToken(p *parseContext, args []any) (any, error) {
	le, ok := tokOf(args[0]).Value.(LocationEntity)
	if !ok {
		return nil, p.errorf(tokOf(args[0]).Index, "LOCATION entity does not carry a location")
	}
	if le.Unresolved() {
		return syntax.LocationValue{Value: syntax.LocationSpec{Kind: syntax.LocationUnresolved, Name: le.Display}}, nil
	}
	return syntax.LocationValue{Value: syntax.LocationSpec{
		Kind: syntax.LocationAbsolute, Lat: le.Latitude, Lon: le.Longitude, Display: le.Display,
	}}, nil
}

func actRelativeLocation(p *parseContext, args []any) (any, error) {
	return syntax.LocationValue{Value: syntax.LocationSpec{
		Kind: syntax.LocationRelative, RelativeTag: tokOf(args[0]).Value.(string),
	}}, nil
}

func actUnresolvedLocation(p *parseContext, args []any) (any, error) {
	return syntax.LocationValue{Value: syntax.LocationSpec{
		Kind: syntax.LocationUnresolved, Name: strings.Join(args[2].([]string), " "),
	}}, nil
}

func actFirstValue(p *parseContext, args []any) (any, error) {
	return []syntax.Value{valOf(args[0])}, nil
}

func actAppendValue(p *parseContext, args []any) (any, error) {
	return append(args[0].([]syntax.Value), valOf(args[2])), nil
}

// --- objects and recurrent time rules ---

func actObject(p *parseContext, args []any) (any, error) {
	fields := map[string]syntax.Value{}
	for _, f := range args[1].([]fieldEntry) {
		fields[f.name] = f.value
	}
	return syntax.ObjectValue{Fields: fields}, nil
}

func actFirstField(p *parseContext, args []any) (any, error) {
	return []fieldEntry{args[0].(fieldEntry)}, nil
}

func actAppendField(p *parseContext, args []any) (any, error) {
	return append(args[0].([]fieldEntry), args[2].(fieldEntry)), nil
}

func actField(p *parseContext, args []any) (any, error) {
	t, err := refType(p, args[0])
	if err != nil {
		return nil, err
	}
	return fieldEntry{name: refOf(args[0]).Name, typ: t, value: valOf(args[2])}, nil
}

func actFirstRTRule(p *parseContext, args []any) (any, error) {
	return []syntax.RecurrentTimeRule{args[0].(syntax.RecurrentTimeRule)}, nil
}

func actAppendRTRule(p *parseContext, args []any) (any, error) {
	return append(args[0].([]syntax.RecurrentTimeRule), args[2].(syntax.RecurrentTimeRule)), nil
}

func actRTField(p *parseContext, args []any) (any, error) {
	return fieldEntry{name: tokOf(args[0]).Terminal, value: valOf(args[2])}, nil
}

func actRTRule(p *parseContext, args []any) (any, error) {
	rule := syntax.RecurrentTimeRule{}
	haveBegin, haveEnd := false, false
	idx := tokOf(args[0]).Index

	for _, f := range args[1].([]fieldEntry) {
		switch f.name {
		case "beginTime":
			tv, ok := f.value.(syntax.TimeValue)
			if !ok {
				return nil, p.errorf(idx, "beginTime must be a time")
			}
			rule.BeginTime = tv.Value
			haveBegin = true
		case "endTime":
			tv, ok := f.value.(syntax.TimeValue)
			if !ok {
				return nil, p.errorf(idx, "endTime must be a time")
			}
			rule.EndTime = tv.Value
			haveEnd = true
		case "interval":
			mv, ok := f.value.(syntax.MeasureValue)
			if !ok {
				return nil, p.errorf(idx, "interval must be a measure")
			}
			rule.Interval = &mv
		case "frequency":
			nv, ok := f.value.(syntax.NumberValue)
			if !ok || math.Floor(nv.Value) != nv.Value {
				return nil, p.errorf(idx, "frequency must be an integer")
			}
			rule.Frequency = int(nv.Value)
		case "dayOfWeek":
			ev, ok := f.value.(syntax.EnumValue)
			if !ok {
				return nil, p.errorf(idx, "dayOfWeek must be an enum")
			}
			rule.DayOfWeek = ev.Value
		case "beginDate":
			dv, ok := f.value.(syntax.DateValue)
			if !ok {
				return nil, p.errorf(idx, "beginDate must be a date")
			}
			spec := dv.Value
			rule.BeginDate = &spec
		case "endDate":
			dv, ok := f.value.(syntax.DateValue)
			if !ok {
				return nil, p.errorf(idx, "endDate must be a date")
			}
			spec := dv.Value
			rule.EndDate = &spec
		case "subtract":
			bv, ok := f.value.(syntax.BooleanValue)
			if !ok {
				return nil, p.errorf(idx, "subtract must be a boolean")
			}
			rule.Subtract = bv.Value
		}
	}

	if !haveBegin || !haveEnd {
		return nil, p.errorf(idx, "a recurrence rule requires beginTime and endTime")
	}
	return rule, nil
}

// --- permission rules ---

func actPolicy(p *parseContext, args []any) (any, error) {
	pr := syntax.PermissionRule{
		Query:  args[2].(syntax.PermissionFunction),
		Action: args[4].(syntax.PermissionFunction),
	}
	if args[0] != nil {
		pr.Principal = valOf(args[0])
	}
	return pr, nil
}

func actPrincipalTrue(p *parseContext, args []any) (any, error) {
	return nil, nil
}

func actPrincipalSource(p *parseContext, args []any) (any, error) {
	if refOf(args[0]).Name != "source" {
		return nil, p.errorf(tokOf(args[0]).Index, "the policy principal must constrain param:source")
	}
	return valOf(args[2]), nil
}

func actPermStar(p *parseContext, args []any) (any, error) {
	return syntax.PermissionFunction{Kind: syntax.PermStar}, nil
}

func actPermClassStar(p *parseContext, args []any) (any, error) {
	return syntax.PermissionFunction{Kind: syntax.PermClassStar, Class: fnOf(args[0]).Kind}, nil
}

func actPermSpecific(p *parseContext, args []any) (any, error) {
	fn := fnOf(args[0])
	return syntax.PermissionFunction{Kind: syntax.PermSpecific, Class: fn.Kind, Channel: fn.Channel}, nil
}

func actPermSpecificFilter(p *parseContext, args []any) (any, error) {
	fn := fnOf(args[0])
	return syntax.PermissionFunction{
		Kind:    syntax.PermSpecific,
		Class:   fn.Kind,
		Channel: fn.Channel,
		Filter:  buildFilterExpr(args[2]),
	}, nil
}

// --- dialogue states ---

func actDialogueState(p *parseContext, args []any) (any, error) {
	fn := fnOf(args[1])
	return syntax.DialogueState{
		Policy:    fn.Kind,
		Act:       fn.Channel,
		ActParams: args[2].([]string),
		History:   args[4].([]syntax.HistoryItem),
	}, nil
}

func actEmptyStrings(p *parseContext, args []any) (any, error) {
	return []string{}, nil
}

func actAppendDlgParam(p *parseContext, args []any) (any, error) {
	return append(args[0].([]string), refOf(args[2]).Name), nil
}

func actEmptyHistory(p *parseContext, args []any) (any, error) {
	return []syntax.HistoryItem{}, nil
}

func actAppendHistory(p *parseContext, args []any) (any, error) {
	return append(args[0].([]syntax.HistoryItem), args[1].(syntax.HistoryItem)), nil
}

func actHistoryItem(p *parseContext, args []any) (any, error) {
	item := syntax.HistoryItem{Statement: args[0].(syntax.Statement)}
	info := args[1].(annotInfo)
	item.Confirm = info.confirm
	item.Results = info.results
	return item, nil
}

func actNoAnnots(p *parseContext, args []any) (any, error) {
	return annotInfo{}, nil
}

func actConfirmAnnot(p *parseContext, args []any) (any, error) {
	return annotInfo{confirm: tokOf(args[3]).Value.(string)}, nil
}

func actResultsAnnots(p *parseContext, args []any) (any, error) {
	info := args[0].(*syntax.ResultsInfo)
	for _, annot := range args[1].([]fieldEntry) {
		switch annot.name {
		case "count":
			info.Count = annot.value
		case "more":
			info.More = true
		case "error":
			info.Error = annot.value
		}
	}
	return annotInfo{results: info}, nil
}

func actEmptyResults(p *parseContext, args []any) (any, error) {
	return &syntax.ResultsInfo{Results: []syntax.ObjectValue{}}, nil
}

func actResults(p *parseContext, args []any) (any, error) {
	return &syntax.ResultsInfo{Results: args[4].([]syntax.ObjectValue)}, nil
}

func actFirstObject(p *parseContext, args []any) (any, error) {
	return []syntax.ObjectValue{args[0].(syntax.ObjectValue)}, nil
}

func actAppendObject(p *parseContext, args []any) (any, error) {
	return append(args[0].([]syntax.ObjectValue), args[2].(syntax.ObjectValue)), nil
}

func actEmptyAnnots(p *parseContext, args []any) (any, error) {
	return []fieldEntry{}, nil
}

func actAppendAnnot(p *parseContext, args []any) (any, error) {
	return append(args[0].([]fieldEntry), args[1].(fieldEntry)), nil
}

func actCountAnnot(p *parseContext, args []any) (any, error) {
	return fieldEntry{name: "count", value: valOf(args[3])}, nil
}

func actMoreAnnot(p *parseContext, args []any) (any, error) {
	return fieldEntry{name: "more"}, nil
}

func actErrorAnnot(p *parseContext, args []any) (any, error) {
	return fieldEntry{name: "error", value: valOf(args[3])}, nil
}

// --- bookkeeping ---

func actSpecial(p *parseContext, args []any) (any, error) {
	return syntax.SpecialControlCommand{Type: tokOf(args[1]).Value.(string)}, nil
}

func actChoice(p *parseContext, args []any) (any, error) {
	return syntax.ChoiceControlCommand{Value: int(args[1].(float64))}, nil
}

func actAnswer(p *parseContext, args []any) (any, error) {
	return syntax.AnswerControlCommand{Value: valOf(args[1])}, nil
}
