package syntax

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

// ValueType enumerates the variants of Value.
type ValueType int

const (
	ValBoolean ValueType = iota
	ValString
	ValNumber
	ValMeasure
	ValCurrency
	ValLocation
	ValTime
	ValDate
	ValEnum
	ValEntity
	ValEvent
	ValVarRef
	ValContextRef
	ValArray
	ValObject
	ValComputation
	ValFilter
	ValRecurrentTimeSpec
	ValUndefined
)

// Value is a literal or reference value in a ThingTalk program.
type Value interface {
	// ValueType returns which variant this value is. This determines which
	// concrete type the value can be asserted to.
	ValueType() ValueType

	// ThingTalk returns the value written in the ThingTalk surface syntax.
	ThingTalk() string

	// String returns a compact structural representation. Two values are
	// semantically identical if they produce identical String() output.
	String() string

	// Equal returns whether the value is semantically equal to another. It
	// returns false for anything that is not a Value.
	Equal(o any) bool
}

func valueEqual(v Value, o any) bool {
	other, ok := o.(Value)
	if !ok {
		return false
	}
	return v.String() == other.String()
}

// formatNumber prints a float the way the NN syntax expects numbers to look:
// no exponent, no trailing zeros, integral values without a decimal point.
func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func quoteString(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `"`, `\"`)
	return `"` + s + `"`
}

// BooleanValue is a true/false literal.
type BooleanValue struct {
	Value bool
}

func (v BooleanValue) ValueType() ValueType { return ValBoolean }
func (v BooleanValue) ThingTalk() string {
	if v.Value {
		return "true"
	}
	return "false"
}
func (v BooleanValue) String() string   { return "(bool " + v.ThingTalk() + ")" }
func (v BooleanValue) Equal(o any) bool { return valueEqual(v, o) }

// StringValue is a free-text string literal.
type StringValue struct {
	Value string
}

func (v StringValue) ValueType() ValueType { return ValString }
func (v StringValue) ThingTalk() string    { return quoteString(v.Value) }
func (v StringValue) String() string       { return "(string " + v.ThingTalk() + ")" }
func (v StringValue) Equal(o any) bool     { return valueEqual(v, o) }

// NumberValue is a numeric literal.
type NumberValue struct {
	Value float64
}

func (v NumberValue) ValueType() ValueType { return ValNumber }
func (v NumberValue) ThingTalk() string    { return formatNumber(v.Value) }
func (v NumberValue) String() string       { return "(number " + v.ThingTalk() + ")" }
func (v NumberValue) Equal(o any) bool     { return valueEqual(v, o) }

// MeasureValue is a number with a unit, such as 20 celsius or 500 ms.
type MeasureValue struct {
	Value float64
	Unit  string
}

func (v MeasureValue) ValueType() ValueType { return ValMeasure }
func (v MeasureValue) ThingTalk() string    { return formatNumber(v.Value) + v.Unit }
func (v MeasureValue) String() string       { return "(measure " + v.ThingTalk() + ")" }
func (v MeasureValue) Equal(o any) bool     { return valueEqual(v, o) }

// CurrencyValue is an amount of money in a specific currency.
type CurrencyValue struct {
	Value float64
	Code  string
}

func (v CurrencyValue) ValueType() ValueType { return ValCurrency }
func (v CurrencyValue) ThingTalk() string {
	return "new Currency(" + formatNumber(v.Value) + ", " + v.Code + ")"
}
func (v CurrencyValue) String() string   { return "(currency " + v.ThingTalk() + ")" }
func (v CurrencyValue) Equal(o any) bool { return valueEqual(v, o) }

// LocationKind enumerates the shapes a location value can take.
type LocationKind int

const (
	// LocationAbsolute is a resolved latitude/longitude pair with an
	// optional display name.
	LocationAbsolute LocationKind = iota

	// LocationRelative is a tag resolved per-user, such as "home" or
	// "work".
	LocationRelative

	// LocationUnresolved is a place name that has not been geocoded yet.
	LocationUnresolved
)

// LocationSpec describes a location in one of three shapes.
type LocationSpec struct {
	Kind LocationKind

	// Lat and Lon are set for LocationAbsolute.
	Lat float64
	Lon float64

	// Display is the display name for LocationAbsolute, if known.
	Display string

	// RelativeTag is set for LocationRelative.
	RelativeTag string

	// Name is the unresolved place name for LocationUnresolved.
	Name string
}

// LocationValue is a geographic location.
type LocationValue struct {
	Value LocationSpec
}

func (v LocationValue) ValueType() ValueType { return ValLocation }
func (v LocationValue) ThingTalk() string {
	switch v.Value.Kind {
	case LocationRelative:
		return "$location." + v.Value.RelativeTag
	case LocationUnresolved:
		return "new Location(" + quoteString(v.Value.Name) + ")"
	default:
		s := "new Location(" + formatNumber(v.Value.Lat) + ", " + formatNumber(v.Value.Lon)
		if v.Value.Display != "" {
			s += ", " + quoteString(v.Value.Display)
		}
		return s + ")"
	}
}
func (v LocationValue) String() string   { return "(location " + v.ThingTalk() + ")" }
func (v LocationValue) Equal(o any) bool { return valueEqual(v, o) }

// TimeKind enumerates the shapes a time-of-day value can take.
type TimeKind int

const (
	TimeAbsolute TimeKind = iota
	TimeRelative
)

// TimeSpec describes a time of day.
type TimeSpec struct {
	Kind TimeKind

	Hour   int
	Minute int
	Second int

	// RelativeTag is set for TimeRelative, such as "morning" or "evening".
	RelativeTag string
}

// ThingTalk returns the time written in the ThingTalk surface syntax.
func (t TimeSpec) ThingTalk() string {
	if t.Kind == TimeRelative {
		return "$time." + t.RelativeTag
	}
	if t.Second != 0 {
		return fmt.Sprintf("new Time(%d, %d, %d)", t.Hour, t.Minute, t.Second)
	}
	return fmt.Sprintf("new Time(%d, %d)", t.Hour, t.Minute)
}

// TimeValue is a time of day.
type TimeValue struct {
	Value TimeSpec
}

func (v TimeValue) ValueType() ValueType { return ValTime }
func (v TimeValue) ThingTalk() string    { return v.Value.ThingTalk() }
func (v TimeValue) String() string       { return "(time " + v.ThingTalk() + ")" }
func (v TimeValue) Equal(o any) bool     { return valueEqual(v, o) }

// DateKind enumerates the shapes a date value can take.
type DateKind int

const (
	// DateNow refers to the moment the program runs.
	DateNow DateKind = iota

	// DateAbsolute is a fully-resolved point in time.
	DateAbsolute

	// DateEdge is the start or end of a calendar unit, such as the start
	// of this week.
	DateEdge

	// DatePiece names some of year/month/day, leaving the rest implicit.
	DatePiece

	// DateWeekDay is the next occurrence of a day of the week.
	DateWeekDay
)

// DateSpec describes a date in one of five shapes.
type DateSpec struct {
	Kind DateKind

	// Abs is set for DateAbsolute.
	Abs time.Time

	// Edge is "start_of" or "end_of"; Unit is the calendar unit. Both are
	// set for DateEdge.
	Edge string
	Unit string

	// Year, Month and Day are set for DatePiece; unset components are -1.
	Year  int
	Month int
	Day   int

	// WeekDay is set for DateWeekDay.
	WeekDay string

	// Time is an optional time of day for DatePiece and DateWeekDay.
	Time *TimeSpec
}

// DateValue is a point in time, possibly symbolic.
type DateValue struct {
	Value DateSpec
}

func (v DateValue) ValueType() ValueType { return ValDate }
func (v DateValue) ThingTalk() string {
	switch v.Value.Kind {
	case DateNow:
		return "$now"
	case DateEdge:
		return "$" + v.Value.Edge + "(" + v.Value.Unit + ")"
	case DatePiece:
		parts := []string{}
		if v.Value.Year >= 0 {
			parts = append(parts, strconv.Itoa(v.Value.Year))
		} else {
			parts = append(parts, "")
		}
		if v.Value.Month >= 0 {
			parts = append(parts, strconv.Itoa(v.Value.Month))
		} else {
			parts = append(parts, "")
		}
		if v.Value.Day >= 0 {
			parts = append(parts, strconv.Itoa(v.Value.Day))
		} else {
			parts = append(parts, "")
		}
		s := "new Date(" + strings.Join(parts, ", ")
		if v.Value.Time != nil {
			s += ", " + v.Value.Time.ThingTalk()
		}
		return s + ")"
	case DateWeekDay:
		s := "$weekday(" + v.Value.WeekDay
		if v.Value.Time != nil {
			s += ", " + v.Value.Time.ThingTalk()
		}
		return s + ")"
	default:
		return "new Date(" + quoteString(v.Value.Abs.UTC().Format(time.RFC3339)) + ")"
	}
}
func (v DateValue) String() string   { return "(date " + v.ThingTalk() + ")" }
func (v DateValue) Equal(o any) bool { return valueEqual(v, o) }

// EnumValue is a member of an enumerated type.
type EnumValue struct {
	Value string
}

func (v EnumValue) ValueType() ValueType { return ValEnum }
func (v EnumValue) ThingTalk() string    { return "enum(" + v.Value + ")" }
func (v EnumValue) String() string       { return "(enum " + v.Value + ")" }
func (v EnumValue) Equal(o any) bool     { return valueEqual(v, o) }

// EntityValue is a typed entity reference, such as a username or a hashtag.
// Value may be empty when only a display name is known.
type EntityValue struct {
	Value   string
	Type    string
	Display string
}

func (v EntityValue) ValueType() ValueType { return ValEntity }
func (v EntityValue) ThingTalk() string {
	s := quoteString(v.Value) + "^^" + v.Type
	if v.Display != "" {
		s += "(" + quoteString(v.Display) + ")"
	}
	return s
}
func (v EntityValue) String() string   { return "(entity " + v.ThingTalk() + ")" }
func (v EntityValue) Equal(o any) bool { return valueEqual(v, o) }

// EventValue refers to the triggering event of a rule. An empty Name refers
// to the whole event; otherwise Name is the event field referenced, such as
// "source".
type EventValue struct {
	Name string
}

func (v EventValue) ValueType() ValueType { return ValEvent }
func (v EventValue) ThingTalk() string {
	if v.Name == "" {
		return "$event"
	}
	return "$event." + v.Name
}
func (v EventValue) String() string   { return "(event " + v.ThingTalk() + ")" }
func (v EventValue) Equal(o any) bool { return valueEqual(v, o) }

// VarRefValue is a reference to a parameter visible in the enclosing scope.
// Type is the declared type if an annotation or schema provided one.
type VarRefValue struct {
	Name string
	Type Type
}

func (v VarRefValue) ValueType() ValueType { return ValVarRef }
func (v VarRefValue) ThingTalk() string    { return v.Name }
func (v VarRefValue) String() string       { return "(varref " + v.Name + ")" }
func (v VarRefValue) Equal(o any) bool     { return valueEqual(v, o) }

// ContextRefValue is a reference to a value carried by the dialogue context
// rather than written in the program, such as the current selection.
type ContextRefValue struct {
	Name string
	Type Type
}

func (v ContextRefValue) ValueType() ValueType { return ValContextRef }
func (v ContextRefValue) ThingTalk() string {
	return "$context." + v.Name + " : " + v.Type.String()
}
func (v ContextRefValue) String() string   { return "(contextref " + v.ThingTalk() + ")" }
func (v ContextRefValue) Equal(o any) bool { return valueEqual(v, o) }

// ArrayValue is an ordered list of values.
type ArrayValue struct {
	Values []Value
}

func (v ArrayValue) ValueType() ValueType { return ValArray }
func (v ArrayValue) ThingTalk() string {
	elems := make([]string, len(v.Values))
	for i := range v.Values {
		elems[i] = v.Values[i].ThingTalk()
	}
	return "[" + strings.Join(elems, ", ") + "]"
}
func (v ArrayValue) String() string {
	elems := make([]string, len(v.Values))
	for i := range v.Values {
		elems[i] = v.Values[i].String()
	}
	return "(array " + strings.Join(elems, " ") + ")"
}
func (v ArrayValue) Equal(o any) bool { return valueEqual(v, o) }

// ObjectValue is a mapping from field names to values. Fields print in
// sorted name order, so objects that differ only in insertion order are
// identical.
type ObjectValue struct {
	Fields map[string]Value
}

// FieldNames returns the field names in sorted order.
func (v ObjectValue) FieldNames() []string {
	names := make([]string, 0, len(v.Fields))
	for k := range v.Fields {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

func (v ObjectValue) ValueType() ValueType { return ValObject }
func (v ObjectValue) ThingTalk() string {
	parts := make([]string, 0, len(v.Fields))
	for _, k := range v.FieldNames() {
		parts = append(parts, k+"="+v.Fields[k].ThingTalk())
	}
	return "{ " + strings.Join(parts, ", ") + " }"
}
func (v ObjectValue) String() string {
	parts := make([]string, 0, len(v.Fields))
	for _, k := range v.FieldNames() {
		parts = append(parts, k+"="+v.Fields[k].String())
	}
	return "(object " + strings.Join(parts, " ") + ")"
}
func (v ObjectValue) Equal(o any) bool { return valueEqual(v, o) }

// ComputationValue applies a scalar or aggregate operation to operand
// values, such as count(messages) or distance(a, b).
type ComputationValue struct {
	Op       string
	Operands []Value
}

func (v ComputationValue) ValueType() ValueType { return ValComputation }
func (v ComputationValue) ThingTalk() string {
	args := make([]string, len(v.Operands))
	for i := range v.Operands {
		args[i] = v.Operands[i].ThingTalk()
	}
	return v.Op + "(" + strings.Join(args, ", ") + ")"
}
func (v ComputationValue) String() string {
	args := make([]string, len(v.Operands))
	for i := range v.Operands {
		args[i] = v.Operands[i].String()
	}
	return "(compute " + v.Op + " " + strings.Join(args, " ") + ")"
}
func (v ComputationValue) Equal(o any) bool { return valueEqual(v, o) }

// FilterValue restricts an array-typed value with a boolean filter.
type FilterValue struct {
	Value  Value
	Filter BooleanExpression
}

func (v FilterValue) ValueType() ValueType { return ValFilter }
func (v FilterValue) ThingTalk() string {
	return v.Value.ThingTalk() + " filter { " + v.Filter.ThingTalk() + " }"
}
func (v FilterValue) String() string {
	return "(filtered " + v.Value.String() + " " + v.Filter.String() + ")"
}
func (v FilterValue) Equal(o any) bool { return valueEqual(v, o) }

// RecurrentTimeRule is one rule of a recurrent time specification: a daily
// time window, optionally repeating at an interval, restricted to a day of
// the week or a date range, or subtracted from the preceding rules.
type RecurrentTimeRule struct {
	BeginTime TimeSpec
	EndTime   TimeSpec

	// Interval is the repetition period; nil means daily.
	Interval *MeasureValue

	// Frequency is the number of occurrences per interval; 0 means unset.
	Frequency int

	// DayOfWeek restricts the rule to one weekday; empty means any.
	DayOfWeek string

	// BeginDate and EndDate bound the date range of the rule.
	BeginDate *DateSpec
	EndDate   *DateSpec

	// Subtract makes this rule carve time out of the preceding rules
	// instead of adding to them.
	Subtract bool
}

// RecurrentTimeSpecValue is a set of recurrent time rules, such as "9am to
// 5pm on weekdays".
type RecurrentTimeSpecValue struct {
	Rules []RecurrentTimeRule
}

func (v RecurrentTimeSpecValue) ValueType() ValueType { return ValRecurrentTimeSpec }
func (v RecurrentTimeSpecValue) ThingTalk() string {
	parts := make([]string, len(v.Rules))
	for i, r := range v.Rules {
		fields := []string{
			"beginTime=" + r.BeginTime.ThingTalk(),
			"endTime=" + r.EndTime.ThingTalk(),
		}
		if r.Interval != nil {
			fields = append(fields, "interval="+r.Interval.ThingTalk())
		}
		if r.Frequency != 0 {
			fields = append(fields, "frequency="+strconv.Itoa(r.Frequency))
		}
		if r.DayOfWeek != "" {
			fields = append(fields, "dayOfWeek=enum("+r.DayOfWeek+")")
		}
		if r.BeginDate != nil {
			fields = append(fields, "beginDate="+DateValue{Value: *r.BeginDate}.ThingTalk())
		}
		if r.EndDate != nil {
			fields = append(fields, "endDate="+DateValue{Value: *r.EndDate}.ThingTalk())
		}
		if r.Subtract {
			fields = append(fields, "subtract=true")
		}
		parts[i] = "{ " + strings.Join(fields, ", ") + " }"
	}
	return "new RecurrentTimeSpecification(" + strings.Join(parts, ", ") + ")"
}
func (v RecurrentTimeSpecValue) String() string   { return "(recurrenttime " + v.ThingTalk() + ")" }
func (v RecurrentTimeSpecValue) Equal(o any) bool { return valueEqual(v, o) }

// UndefinedValue is a slot that has not been filled yet.
type UndefinedValue struct{}

func (v UndefinedValue) ValueType() ValueType { return ValUndefined }
func (v UndefinedValue) ThingTalk() string    { return "$?" }
func (v UndefinedValue) String() string       { return "(undefined)" }
func (v UndefinedValue) Equal(o any) bool     { return valueEqual(v, o) }
