package nnsyntax

import (
	"fmt"
	"math"
	"strconv"

	"github.com/dekarrin/thingtalk/syntax"
)

// file compilevalue.go contains the value visitor of the AST-to-tokens
// compiler: one case per Value variant. This is the largest visitor; every
// rule about how a literal becomes tokens lives here.

// baseUnitOf maps a unit to the base unit of its measure family. Unknown
// units are their own base.
func baseUnitOf(unit string) string {
	switch unit {
	case "ms", "s", "min", "h", "day", "week", "mon", "year":
		return "ms"
	case "C", "F", "K", "defaultTemperature":
		return "C"
	case "m", "km", "mm", "cm", "mi", "in", "ft":
		return "m"
	case "kg", "g", "mg", "lb", "oz":
		return "kg"
	case "byte", "KB", "KiB", "MB", "MiB", "GB", "GiB", "TB":
		return "byte"
	case "mps", "kmph", "mph":
		return "mps"
	case "kcal", "kJ":
		return "kcal"
	}
	return unit
}

// isSmallInteger reports whether v is written as an inline literal token
// rather than allocating a NUMBER entity.
func isSmallInteger(v float64) bool {
	return math.Floor(v) == v && v >= 0 && v <= 12
}

func literalTimeToken(t syntax.TimeSpec) Token {
	return keyword(fmt.Sprintf("time:%d:%d:%d", t.Hour, t.Minute, t.Second))
}

// valueToNN serializes one value.
func (c *compiler) valueToNN(v syntax.Value, sc *scope) (tokenList, error) {
	switch val := v.(type) {
	case syntax.BooleanValue:
		if val.Value {
			return words("true"), nil
		}
		return words("false"), nil

	case syntax.StringValue:
		if val.Value == "" {
			// the empty string has no spoken form and never allocates
			return words(`"`, `"`), nil
		}
		return c.retriever.findEntity(TermQuotedString, val, findOpts{})

	case syntax.NumberValue:
		return c.numberToNN(val.Value)

	case syntax.MeasureValue:
		return c.measureToNN(val)

	case syntax.CurrencyValue:
		toks, err := c.retriever.findEntity(TermCurrency, val, findOpts{ignoreNotFound: true})
		if err != nil {
			return nil, err
		}
		if toks != nil {
			return toks, nil
		}
		num, err := c.numberToNN(val.Value)
		if err != nil {
			return nil, err
		}
		return snoc(num, keyword("unit:$"+val.Code)), nil

	case syntax.LocationValue:
		if val.Value.Kind == syntax.LocationRelative {
			return words("location:" + val.Value.RelativeTag), nil
		}
		return c.retriever.findEntity(TermLocation, val, findOpts{})

	case syntax.TimeValue:
		if val.Value.Kind == syntax.TimeRelative {
			return words("time:" + val.Value.RelativeTag), nil
		}
		toks, err := c.retriever.findEntity(TermTime, val, findOpts{ignoreNotFound: true})
		if err != nil {
			return nil, err
		}
		if toks != nil {
			return toks, nil
		}
		return singleton(literalTimeToken(val.Value)), nil

	case syntax.DateValue:
		return c.dateToNN(val, sc)

	case syntax.EnumValue:
		return words("enum:" + val.Value), nil

	case syntax.EntityValue:
		return c.retriever.findEntity(entityKindOfType(val.Type), val, findOpts{})

	case syntax.EventValue:
		switch val.Name {
		case "":
			return words("event"), nil
		case "source":
			return singleton(Token{Terminal: "param:source:Entity(tt:contact)", Index: -1}), nil
		default:
			return nil, UnsynthesizableError{What: "$event." + val.Name}
		}

	case syntax.VarRefValue:
		return singleton(c.paramToken(val.Name, c.varRefType(val, sc))), nil

	case syntax.ContextRefValue:
		return words("context:" + val.Name + ":" + val.Type.String()), nil

	case syntax.ArrayValue:
		elems := make([]tokenList, len(val.Values))
		for i := range val.Values {
			toks, err := c.valueToNN(val.Values[i], sc)
			if err != nil {
				return nil, err
			}
			elems[i] = toks
		}
		return concat(words("["), joinLists(",", elems), words("]")), nil

	case syntax.ObjectValue:
		fields := make([]tokenList, 0, len(val.Fields))
		for _, name := range val.FieldNames() {
			fv, err := c.valueToNN(val.Fields[name], sc)
			if err != nil {
				return nil, err
			}
			fields = append(fields, concat(singleton(c.paramToken(name, syntax.AnyType)), words("="), fv))
		}
		return concat(words("{"), joinLists(",", fields), words("}")), nil

	case syntax.ComputationValue:
		args := make([]tokenList, len(val.Operands))
		for i := range val.Operands {
			toks, err := c.valueToNN(val.Operands[i], sc)
			if err != nil {
				return nil, err
			}
			args[i] = toks
		}
		return concat(words(val.Op, "("), joinLists(",", args), words(")")), nil

	case syntax.FilterValue:
		inner, err := c.valueToNN(val.Value, sc)
		if err != nil {
			return nil, err
		}
		filter, err := c.cnfFilterToNN(val.Filter, sc)
		if err != nil {
			return nil, err
		}
		return concat(inner, words("filter", "{"), filter, words("}")), nil

	case syntax.RecurrentTimeSpecValue:
		return c.recurrentTimeToNN(val, sc)

	case syntax.UndefinedValue:
		return words("undefined"), nil

	default:
		return nil, TypeError{What: fmt.Sprintf("unexpected value %T", v)}
	}
}

// numberToNN serializes a plain number: small integers inline, everything
// else through NUMBER entity allocation. Negative numbers prefer the
// positive form behind a minus token.
func (c *compiler) numberToNN(v float64) (tokenList, error) {
	if isSmallInteger(v) {
		return words(strconv.FormatFloat(v, 'f', -1, 64)), nil
	}
	if v < 0 {
		if isSmallInteger(-v) {
			return words("-", strconv.FormatFloat(-v, 'f', -1, 64)), nil
		}
		pos, err := c.retriever.findEntity(TermNumber, syntax.NumberValue{Value: -v}, findOpts{ignoreNotFound: true})
		if err != nil {
			return nil, err
		}
		if pos != nil {
			return cons(keyword("-"), pos), nil
		}
	}
	return c.retriever.findEntity(TermNumber, syntax.NumberValue{Value: v}, findOpts{})
}

// measureToNN serializes a measure: DURATION placeholders when the family
// is time, MEASURE_<baseunit> otherwise, falling back to a plain number
// with an inline unit token.
func (c *compiler) measureToNN(val syntax.MeasureValue) (tokenList, error) {
	base := baseUnitOf(val.Unit)
	kind := "MEASURE_" + base
	if base == "ms" {
		kind = TermDuration
	}
	toks, err := c.retriever.findEntity(kind, val, findOpts{ignoreNotFound: true})
	if err != nil {
		return nil, err
	}
	if toks != nil {
		return toks, nil
	}
	num, err := c.numberToNN(val.Value)
	if err != nil {
		return nil, err
	}
	return snoc(num, keyword("unit:"+val.Unit)), nil
}

// dateToNN serializes a date value; concrete dates go through the DATE bag
// and the sentence before degrading to an explicit construction.
func (c *compiler) dateToNN(val syntax.DateValue, sc *scope) (tokenList, error) {
	d := val.Value
	switch d.Kind {
	case syntax.DateNow:
		return words("now"), nil

	case syntax.DateEdge:
		return words(d.Edge, "unit:"+d.Unit), nil

	case syntax.DatePiece:
		switch {
		case d.Year >= 0 && d.Month < 0:
			return words("new", "Date", "(", yearToken(d.Year), ")"), nil
		case d.Year >= 0 && d.Month >= 0 && d.Day < 0:
			return words("new", "Date", "(", yearToken(d.Year), ",", strconv.Itoa(d.Month), ")"), nil
		case d.Year < 0 && d.Month >= 0 && d.Day >= 0:
			return words("new", "Date", "(", ",", strconv.Itoa(d.Month), ",", strconv.Itoa(d.Day), ")"), nil
		default:
			return nil, TypeError{What: "date piece with no representable components"}
		}

	case syntax.DateWeekDay:
		if d.Time != nil {
			return concat(words("new", "Date", "(", "enum:"+d.WeekDay, ","),
				singleton(literalTimeToken(*d.Time)), words(")")), nil
		}
		return words("new", "Date", "(", "enum:"+d.WeekDay, ")"), nil

	default:
		toks, err := c.retriever.findEntity(TermDate, val, findOpts{ignoreNotFound: true})
		if err != nil {
			return nil, err
		}
		if toks != nil {
			return toks, nil
		}
		abs := d.Abs.UTC()
		out := words("new", "Date", "(",
			yearToken(abs.Year()), ",", strconv.Itoa(int(abs.Month())), ",", strconv.Itoa(abs.Day()))
		if abs.Hour() != 0 || abs.Minute() != 0 || abs.Second() != 0 {
			out = concat(out, words(","), singleton(literalTimeToken(syntax.TimeSpec{
				Hour: abs.Hour(), Minute: abs.Minute(), Second: abs.Second(),
			})))
		}
		return concat(out, words(")")), nil
	}
}

// yearToken writes a year: literally inside [1950, 2050), as a two-digit
// year when the century makes that unambiguous, literally otherwise.
func yearToken(year int) string {
	if year >= 1950 && year < 2050 {
		return strconv.Itoa(year)
	}
	if year >= 1900 && year < 1950 {
		return strconv.Itoa(year - 1900)
	}
	return strconv.Itoa(year)
}

// entityKindOfType maps a Thingpedia entity type to its placeholder kind.
func entityKindOfType(entityType string) string {
	switch entityType {
	case "tt:hashtag":
		return TermHashtag
	case "tt:username":
		return TermUsername
	case "tt:url":
		return TermURL
	case "tt:phone_number":
		return TermPhoneNumber
	case "tt:email_address":
		return TermEmailAddress
	case "tt:path_name":
		return TermPathName
	case "tt:picture":
		return TermPicture
	}
	return "GENERIC_ENTITY_" + entityType
}

// recurrentTimeToNN expands each rule of a recurrent time specification
// into its brace-delimited field list.
func (c *compiler) recurrentTimeToNN(val syntax.RecurrentTimeSpecValue, sc *scope) (tokenList, error) {
	rules := make([]tokenList, len(val.Rules))
	for i, r := range val.Rules {
		fields := []tokenList{
			concat(words("beginTime", "="), singleton(literalTimeToken(r.BeginTime))),
			concat(words("endTime", "="), singleton(literalTimeToken(r.EndTime))),
		}
		if r.Interval != nil {
			iv, err := c.measureToNN(*r.Interval)
			if err != nil {
				return nil, err
			}
			fields = append(fields, concat(words("interval", "="), iv))
		}
		if r.Frequency != 0 {
			fields = append(fields, words("frequency", "=", strconv.Itoa(r.Frequency)))
		}
		if r.DayOfWeek != "" {
			fields = append(fields, words("dayOfWeek", "=", "enum:"+r.DayOfWeek))
		}
		if r.BeginDate != nil {
			dv, err := c.dateToNN(syntax.DateValue{Value: *r.BeginDate}, sc)
			if err != nil {
				return nil, err
			}
			fields = append(fields, concat(words("beginDate", "="), dv))
		}
		if r.EndDate != nil {
			dv, err := c.dateToNN(syntax.DateValue{Value: *r.EndDate}, sc)
			if err != nil {
				return nil, err
			}
			fields = append(fields, concat(words("endDate", "="), dv))
		}
		if r.Subtract {
			fields = append(fields, words("subtract", "=", "true"))
		}
		rules[i] = concat(words("{"), joinLists(",", fields), words("}"))
	}
	return concat(words("new", "RecurrentTimeSpecification", "("), joinLists(",", rules), words(")")), nil
}

// varRefType resolves the annotation type for a variable reference: the
// explicit type on the node wins, then the lexical scope.
func (c *compiler) varRefType(val syntax.VarRefValue, sc *scope) syntax.Type {
	if !val.Type.IsAny() {
		return val.Type
	}
	if sc != nil {
		if t, ok := sc.lookup(val.Name); ok {
			return t
		}
	}
	return syntax.AnyType
}

// paramToken writes a param: token, with a type annotation when the
// serializer was asked for them and a type is known.
func (c *compiler) paramToken(name string, t syntax.Type) Token {
	if c.typeAnnotations && !t.IsAny() {
		return keyword("param:" + name + ":" + t.String())
	}
	return keyword("param:" + name)
}
