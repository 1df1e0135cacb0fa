package nnsyntax

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/dekarrin/thingtalk/syntax"
)

// file compile.go contains the AST-to-tokens compiler. Each top-level AST
// shape has one entry point; the visitors below mirror the AST variant
// structure one case at a time. The compiler never retries: it either
// produces tokens or reports why the construct has no NN form.

type compiler struct {
	retriever       entityRetriever
	typeAnnotations bool
}

// compileProgram serializes a whole program. Programs with class
// definitions, declarations, or more than one statement are outside the NN
// sublanguage.
func (c *compiler) compileProgram(p syntax.Program) (tokenList, error) {
	if len(p.Classes) > 0 {
		return nil, UnsynthesizableError{What: "program with class definitions"}
	}
	if len(p.Declarations) > 0 {
		return nil, UnsynthesizableError{What: "program with declarations"}
	}
	if len(p.Statements) != 1 {
		return nil, UnsynthesizableError{What: fmt.Sprintf("program with %d statements", len(p.Statements))}
	}

	sc := newScope(nil)

	var prefix tokenList = emptyList
	if p.Executor != nil {
		executor, err := c.valueToNN(p.Executor, sc)
		if err != nil {
			return nil, err
		}
		prefix = concat(words("executor", "="), executor, words(":"))
	}

	stmt, err := c.statementToNN(p.Statements[0], sc)
	if err != nil {
		return nil, err
	}
	return concat(prefix, stmt), nil
}

func (c *compiler) statementToNN(stmt syntax.Statement, sc *scope) (tokenList, error) {
	switch s := stmt.(type) {
	case syntax.Rule:
		if len(s.Actions) != 1 {
			return nil, UnsynthesizableError{What: "rule with multiple actions"}
		}
		stream, err := c.streamToNN(s.Stream, sc)
		if err != nil {
			return nil, err
		}
		action, err := c.actionToNN(s.Actions[0], sc)
		if err != nil {
			return nil, err
		}
		return concat(stream, words("=>"), action), nil

	case syntax.Command:
		if len(s.Actions) != 1 {
			return nil, UnsynthesizableError{What: "command with multiple actions"}
		}
		out := words("now", "=>")
		if s.Table != nil {
			table, err := c.tableToNN(s.Table, sc)
			if err != nil {
				return nil, err
			}
			out = concat(out, table, words("=>"))
		}
		action, err := c.actionToNN(s.Actions[0], sc)
		if err != nil {
			return nil, err
		}
		return concat(out, action), nil

	default:
		return nil, TypeError{What: fmt.Sprintf("unexpected statement %T", stmt)}
	}
}

// streamToNN serializes a stream, one case per variant.
func (c *compiler) streamToNN(stream syntax.Stream, sc *scope) (tokenList, error) {
	switch s := stream.(type) {
	case syntax.TimerStream:
		base, err := c.valueToNN(s.Base, sc)
		if err != nil {
			return nil, err
		}
		interval, err := c.valueToNN(s.Interval, sc)
		if err != nil {
			return nil, err
		}
		out := concat(words("timer", "base", "="), base, words(",", "interval", "="), interval)
		if s.Frequency != nil {
			freq, err := c.valueToNN(s.Frequency, sc)
			if err != nil {
				return nil, err
			}
			out = concat(out, words(",", "frequency", "="), freq)
		}
		return out, nil

	case syntax.AtTimerStream:
		var timeVal syntax.Value
		if len(s.Times) == 1 {
			timeVal = s.Times[0]
		} else {
			timeVal = syntax.ArrayValue{Values: s.Times}
		}
		t, err := c.valueToNN(timeVal, sc)
		if err != nil {
			return nil, err
		}
		out := concat(words("attimer", "time", "="), t)
		if s.Expiration != nil {
			exp, err := c.valueToNN(s.Expiration, sc)
			if err != nil {
				return nil, err
			}
			out = concat(out, words(",", "expiration_date", "="), exp)
		}
		return out, nil

	case syntax.MonitorStream:
		table, err := c.tableToNN(s.Table, sc)
		if err != nil {
			return nil, err
		}
		out := concat(words("monitor", "("), table, words(")"))
		if len(s.Args) == 1 {
			out = concat(out, words("on", "new"), singleton(c.paramToken(s.Args[0], c.scopeType(s.Args[0], sc))))
		} else if len(s.Args) > 1 {
			args := make([]string, len(s.Args))
			copy(args, s.Args)
			sort.Strings(args)
			params := make([]tokenList, len(args))
			for i := range args {
				params[i] = singleton(c.paramToken(args[i], c.scopeType(args[i], sc)))
			}
			out = concat(out, words("on", "new", "["), joinLists(",", params), words("]"))
		}
		return out, nil

	case syntax.EdgeNewStream:
		inner, err := c.streamToNN(s.Stream, sc)
		if err != nil {
			return nil, err
		}
		return concat(words("edge", "("), inner, words(")", "on", "new")), nil

	case syntax.EdgeFilterStream:
		inner, err := c.streamToNN(s.Stream, sc)
		if err != nil {
			return nil, err
		}
		filter, err := c.cnfFilterToNN(s.Filter, sc)
		if err != nil {
			return nil, err
		}
		if filter == nil {
			return nil, UnsynthesizableError{What: "edge stream with a vacuous filter"}
		}
		return concat(words("edge", "("), inner, words(")", "on"), filter), nil

	case syntax.JoinStream:
		lhs, err := c.streamToNN(s.Stream, sc)
		if err != nil {
			return nil, err
		}
		rhs, err := c.tableToNN(s.Table, sc)
		if err != nil {
			return nil, err
		}
		out := concat(words("("), lhs, words(")", "=>", "("), rhs, words(")"))
		joinParams, err := c.joinParamsToNN(s.InParams, sc)
		if err != nil {
			return nil, err
		}
		return concat(out, joinParams), nil

	case syntax.ProjectionStream:
		return nil, UnsynthesizableError{What: "projection on streams"}

	default:
		return nil, TypeError{What: fmt.Sprintf("unexpected stream %T", stream)}
	}
}

// tableToNN serializes a table, one case per variant.
func (c *compiler) tableToNN(table syntax.Table, sc *scope) (tokenList, error) {
	switch t := table.(type) {
	case syntax.InvocationTable:
		return c.invocationToNN(t.Invocation, sc, false)

	case syntax.FilteredTable:
		inner, err := c.tableToNN(t.Table, sc)
		if err != nil {
			return nil, err
		}
		filter, err := c.cnfFilterToNN(t.Filter, sc)
		if err != nil {
			return nil, err
		}
		if filter == nil {
			// a vacuous filter serializes as the table itself
			return inner, nil
		}
		return concat(words("("), inner, words(")", "filter"), filter), nil

	case syntax.ProjectionTable:
		inner, err := c.tableToNN(t.Table, sc)
		if err != nil {
			return nil, err
		}
		args := make([]string, len(t.Args))
		copy(args, t.Args)
		sort.Strings(args)
		params := make([]tokenList, len(args))
		for i := range args {
			params[i] = singleton(c.paramToken(args[i], c.scopeType(args[i], sc)))
		}
		return concat(words("["), joinLists(",", params), words("]", "of", "("), inner, words(")")), nil

	case syntax.AggregationTable:
		inner, err := c.tableToNN(t.Table, sc)
		if err != nil {
			return nil, err
		}
		if t.Op == "count" && t.Field == "*" {
			return concat(words("aggregate", "count", "of", "("), inner, words(")")), nil
		}
		return concat(words("aggregate", t.Op),
			singleton(c.paramToken(t.Field, c.scopeType(t.Field, sc))),
			words("of", "("), inner, words(")")), nil

	case syntax.SortedTable:
		inner, err := c.tableToNN(t.Table, sc)
		if err != nil {
			return nil, err
		}
		if t.Direction != "asc" && t.Direction != "desc" {
			return nil, TypeError{What: "sort direction " + t.Direction}
		}
		return concat(words("sort"),
			singleton(c.paramToken(t.Field, c.scopeType(t.Field, sc))),
			words(t.Direction, "of", "("), inner, words(")")), nil

	case syntax.IndexTable:
		inner, err := c.tableToNN(t.Table, sc)
		if err != nil {
			return nil, err
		}
		indices := make([]tokenList, len(t.Indices))
		for i := range t.Indices {
			toks, err := c.valueToNN(t.Indices[i], sc)
			if err != nil {
				return nil, err
			}
			indices[i] = toks
		}
		return concat(words("("), inner, words(")", "["), joinLists(",", indices), words("]")), nil

	case syntax.SlicedTable:
		inner, err := c.tableToNN(t.Table, sc)
		if err != nil {
			return nil, err
		}
		base, err := c.valueToNN(t.Base, sc)
		if err != nil {
			return nil, err
		}
		limit, err := c.valueToNN(t.Limit, sc)
		if err != nil {
			return nil, err
		}
		return concat(words("("), inner, words(")", "["), base, words(":"), limit, words("]")), nil

	case syntax.JoinTable:
		lhs, err := c.tableToNN(t.Lhs, sc)
		if err != nil {
			return nil, err
		}
		rhs, err := c.tableToNN(t.Rhs, sc)
		if err != nil {
			return nil, err
		}
		out := concat(words("("), lhs, words(")", "join", "("), rhs, words(")"))
		joinParams, err := c.joinParamsToNN(t.InParams, sc)
		if err != nil {
			return nil, err
		}
		return concat(out, joinParams), nil

	case syntax.AliasTable:
		return nil, UnsynthesizableError{What: "table alias"}

	default:
		return nil, TypeError{What: fmt.Sprintf("unexpected table %T", table)}
	}
}

// joinParamsToNN writes the "on param = value" entries of a join, in
// lexicographic parameter order.
func (c *compiler) joinParamsToNN(params []syntax.InputParam, sc *scope) (tokenList, error) {
	sorted := make([]syntax.InputParam, len(params))
	copy(sorted, params)
	syntax.SortInputParams(sorted)

	var out tokenList = emptyList
	for _, ip := range sorted {
		val, err := c.valueToNN(ip.Value, sc)
		if err != nil {
			return nil, err
		}
		out = concat(out, words("on"), singleton(c.paramToken(ip.Name, c.inputParamType(ip, sc))), words("="), val)
	}
	return out, nil
}

// invocationToNN writes a function invocation: the function name, the
// sorted selector attributes, then the sorted input parameters. When
// asAction is set, parameter-passing inputs follow the constant ones, each
// prefixed with "on".
func (c *compiler) invocationToNN(inv syntax.Invocation, sc *scope, asAction bool) (tokenList, error) {
	sc.addSchema(inv.Schema)

	out := words("@" + inv.Selector.Kind + "." + inv.Channel)

	attrs, err := c.selectorAttrsToNN(inv.Selector, sc)
	if err != nil {
		return nil, err
	}
	out = concat(out, attrs)

	var constant, passing []syntax.InputParam
	for _, ip := range inv.SortedInParams() {
		vt := ip.Value.ValueType()
		if asAction && (vt == syntax.ValVarRef || vt == syntax.ValEvent) {
			passing = append(passing, ip)
		} else {
			constant = append(constant, ip)
		}
	}

	for _, ip := range constant {
		val, err := c.valueToNN(ip.Value, sc)
		if err != nil {
			return nil, err
		}
		out = concat(out, singleton(c.paramToken(ip.Name, c.inputParamType(ip, sc))), words("="), val)
	}
	for _, ip := range passing {
		val, err := c.valueToNN(ip.Value, sc)
		if err != nil {
			return nil, err
		}
		out = concat(out, words("on"), singleton(c.paramToken(ip.Name, c.inputParamType(ip, sc))), words("="), val)
	}
	return out, nil
}

// selectorAttrsToNN writes the attribute tokens of a device selector. The
// special "all" marker and an explicit device id sort in with the ordinary
// attributes; an id equal to the class kind is implicit and omitted.
func (c *compiler) selectorAttrsToNN(sel syntax.DeviceSelector, sc *scope) (tokenList, error) {
	type attr struct {
		name string
		toks tokenList
	}
	var attrs []attr

	if sel.All {
		attrs = append(attrs, attr{name: "all", toks: concat(singleton(c.attributeToken("all", syntax.BooleanType)), words("=", "true"))})
	}
	if sel.ID != "" && sel.ID != sel.Kind {
		attrs = append(attrs, attr{name: "id", toks: concat(singleton(c.attributeToken("id", syntax.AnyType)), words("=", "device:"+sel.ID))})
	}
	for _, ip := range sel.Attributes {
		val, err := c.valueToNN(ip.Value, sc)
		if err != nil {
			return nil, err
		}
		attrs = append(attrs, attr{name: ip.Name, toks: concat(singleton(c.attributeToken(ip.Name, c.inputParamType(ip, sc))), words("="), val)})
	}

	sort.Slice(attrs, func(i, j int) bool { return attrs[i].name < attrs[j].name })

	var out tokenList = emptyList
	for i := range attrs {
		out = concat(out, attrs[i].toks)
	}
	return out, nil
}

func (c *compiler) attributeToken(name string, t syntax.Type) Token {
	if c.typeAnnotations && !t.IsAny() {
		return keyword("attribute:" + name + ":" + t.String())
	}
	return keyword("attribute:" + name)
}

// actionToNN serializes an action: the literal notify, or an invocation.
func (c *compiler) actionToNN(action syntax.Action, sc *scope) (tokenList, error) {
	switch a := action.(type) {
	case syntax.NotifyAction:
		return words("notify"), nil
	case syntax.InvocationAction:
		return c.invocationToNN(a.Invocation, sc, true)
	default:
		return nil, TypeError{What: fmt.Sprintf("unexpected action %T", action)}
	}
}

// cnfFilterToNN normalizes a filter and writes its conjunctive normal
// form, clauses and literals each in lexicographic order of their token
// form. A nil result (with nil error) is the vacuous always-true filter,
// which serializes to nothing.
func (c *compiler) cnfFilterToNN(f syntax.BooleanExpression, sc *scope) (tokenList, error) {
	cnf, err := normalizeFilter(f)
	if err != nil {
		return nil, err
	}
	if cnf.isFalse {
		return nil, UnsynthesizableError{What: "always-false filter"}
	}
	if len(cnf.clauses) == 0 {
		return nil, nil
	}

	type keyed struct {
		key  string
		toks tokenList
	}

	clauses := make([]keyed, 0, len(cnf.clauses))
	for _, clause := range cnf.clauses {
		lits := make([]keyed, 0, len(clause))
		for _, lit := range clause {
			toks, err := c.cnfLiteralToNN(lit, sc)
			if err != nil {
				return nil, err
			}
			lits = append(lits, keyed{key: strings.Join(flattenStrings(toks), " "), toks: toks})
		}
		sort.Slice(lits, func(i, j int) bool { return lits[i].key < lits[j].key })

		var clauseToks tokenList = emptyList
		var keyParts []string
		for i := range lits {
			if i > 0 {
				clauseToks = snoc(clauseToks, keyword("or"))
			}
			clauseToks = concat(clauseToks, lits[i].toks)
			keyParts = append(keyParts, lits[i].key)
		}
		clauses = append(clauses, keyed{key: strings.Join(keyParts, " or "), toks: clauseToks})
	}
	sort.Slice(clauses, func(i, j int) bool { return clauses[i].key < clauses[j].key })

	var out tokenList = emptyList
	for i := range clauses {
		if i > 0 {
			out = snoc(out, keyword("and"))
		}
		out = concat(out, clauses[i].toks)
	}
	return out, nil
}

func (c *compiler) cnfLiteralToNN(lit cnfLiteral, sc *scope) (tokenList, error) {
	var out tokenList

	switch f := lit.expr.(type) {
	case syntax.AtomExpression:
		val, err := c.valueToNN(f.Value, sc)
		if err != nil {
			return nil, err
		}
		out = concat(singleton(c.paramToken(f.Name, c.atomType(f, sc))), words(f.Op), val)

	case syntax.DontCareExpression:
		out = concat(words("true"), singleton(c.paramToken(f.Name, c.dontCareType(f, sc))))

	case syntax.ComputeExpression:
		lhs, err := c.valueToNN(f.Lhs, sc)
		if err != nil {
			return nil, err
		}
		rhs, err := c.valueToNN(f.Rhs, sc)
		if err != nil {
			return nil, err
		}
		out = concat(lhs, words(f.Op), rhs)

	case syntax.ExternalExpression:
		inv := syntax.Invocation{Selector: f.Selector, Channel: f.Channel, InParams: f.InParams, Schema: f.Schema}
		sub := newScope(sc)
		invToks, err := c.invocationToNN(inv, sub, false)
		if err != nil {
			return nil, err
		}
		subFilter, err := c.cnfFilterToNN(f.Filter, sub)
		if err != nil {
			return nil, err
		}
		if subFilter == nil {
			subFilter = words("true")
		}
		out = concat(invToks, words("{"), subFilter, words("}"))

	default:
		return nil, TypeError{What: fmt.Sprintf("unexpected filter literal %T", lit.expr)}
	}

	if lit.negated {
		return cons(keyword("not"), out), nil
	}
	return out, nil
}

// compilePermissionRule serializes a permission rule.
func (c *compiler) compilePermissionRule(pr syntax.PermissionRule) (tokenList, error) {
	sc := newScope(nil)

	out := words("policy")
	if pr.Principal != nil {
		principal, err := c.valueToNN(pr.Principal, sc)
		if err != nil {
			return nil, err
		}
		out = concat(out, singleton(c.paramToken("source", syntax.EntityType("tt:contact"))), words("=="), principal)
	} else {
		out = concat(out, words("true"))
	}

	query, err := c.permissionFunctionToNN(pr.Query, sc)
	if err != nil {
		return nil, err
	}
	action, err := c.permissionFunctionToNN(pr.Action, sc)
	if err != nil {
		return nil, err
	}
	return concat(out, words(":"), query, words("=>"), action), nil
}

func (c *compiler) permissionFunctionToNN(pf syntax.PermissionFunction, sc *scope) (tokenList, error) {
	switch pf.Kind {
	case syntax.PermStar:
		return words("*"), nil
	case syntax.PermClassStar:
		return words("@" + pf.Class + ".*"), nil
	default:
		sub := newScope(sc)
		sub.addSchema(pf.Schema)
		out := words("@" + pf.Class + "." + pf.Channel)
		if pf.Filter != nil {
			filter, err := c.cnfFilterToNN(pf.Filter, sub)
			if err != nil {
				return nil, err
			}
			if filter != nil {
				out = concat(out, words("filter"), filter)
			}
		}
		return out, nil
	}
}

// compileDialogueState serializes a dialogue state: the dialogue act and
// each history item with its annotations.
func (c *compiler) compileDialogueState(ds syntax.DialogueState) (tokenList, error) {
	out := words("$dialogue", "@"+ds.Policy+"."+ds.Act)
	for _, p := range ds.ActParams {
		out = concat(out, words(","), singleton(c.paramToken(p, syntax.AnyType)))
	}
	out = snoc(out, keyword(";"))

	for _, item := range ds.History {
		sc := newScope(nil)
		stmt, err := c.statementToNN(item.Statement, sc)
		if err != nil {
			return nil, err
		}
		out = concat(out, stmt)

		if item.Results != nil {
			results := make([]tokenList, len(item.Results.Results))
			for i := range item.Results.Results {
				toks, err := c.valueToNN(item.Results.Results[i], sc)
				if err != nil {
					return nil, err
				}
				results[i] = toks
			}
			out = concat(out, words("#[", "results", "=", "["), joinLists(",", results), words("]", "]"))
			if item.Results.Count != nil {
				count, err := c.valueToNN(item.Results.Count, sc)
				if err != nil {
					return nil, err
				}
				out = concat(out, words("#[", "count", "="), count, words("]"))
			}
			if item.Results.More {
				out = concat(out, words("#[", "more", "=", "true", "]"))
			}
			if item.Results.Error != nil {
				errVal, err := c.valueToNN(item.Results.Error, sc)
				if err != nil {
					return nil, err
				}
				out = concat(out, words("#[", "error", "="), errVal, words("]"))
			}
		} else if item.Confirm != "" {
			out = concat(out, words("#[", "confirm", "=", "enum:"+item.Confirm, "]"))
		}

		out = snoc(out, keyword(";"))
	}
	return out, nil
}

// compileControlCommand serializes a bookkeeping command.
func (c *compiler) compileControlCommand(cc syntax.ControlCommand) (tokenList, error) {
	switch cmd := cc.(type) {
	case syntax.SpecialControlCommand:
		return words("bookkeeping", "special", "special:"+cmd.Type), nil
	case syntax.ChoiceControlCommand:
		return words("bookkeeping", "choice", strconv.Itoa(cmd.Value)), nil
	case syntax.AnswerControlCommand:
		val, err := c.valueToNN(cmd.Value, newScope(nil))
		if err != nil {
			return nil, err
		}
		return concat(words("bookkeeping", "answer"), val), nil
	default:
		return nil, TypeError{What: fmt.Sprintf("unexpected control command %T", cc)}
	}
}

// scopeType resolves a bare parameter name through the scope chain.
func (c *compiler) scopeType(name string, sc *scope) syntax.Type {
	if sc != nil {
		if t, ok := sc.lookup(name); ok {
			return t
		}
	}
	return syntax.AnyType
}

// inputParamType resolves the annotation type for an input parameter: the
// explicit type on the binding wins, then the scope.
func (c *compiler) inputParamType(ip syntax.InputParam, sc *scope) syntax.Type {
	if !ip.Type.IsAny() {
		return ip.Type
	}
	return c.scopeType(ip.Name, sc)
}

func (c *compiler) atomType(f syntax.AtomExpression, sc *scope) syntax.Type {
	if !f.Type.IsAny() {
		return f.Type
	}
	return c.scopeType(f.Name, sc)
}

func (c *compiler) dontCareType(f syntax.DontCareExpression, sc *scope) syntax.Type {
	if !f.Type.IsAny() {
		return f.Type
	}
	return c.scopeType(f.Name, sc)
}
