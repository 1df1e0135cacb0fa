package syntax

import (
	"strings"
)

// FilterType enumerates the variants of BooleanExpression.
type FilterType int

const (
	FilterTrue FilterType = iota
	FilterFalse
	FilterAnd
	FilterOr
	FilterNot
	FilterAtom
	FilterExternal
	FilterCompute
	FilterDontCare
	FilterExistentialSubquery
)

// BooleanExpression is a filter over the results of a query or the events of
// a stream.
type BooleanExpression interface {
	// FilterType returns which variant this expression is.
	FilterType() FilterType

	// ThingTalk returns the filter written in the ThingTalk surface syntax.
	ThingTalk() string

	// String returns a compact structural representation. Two expressions
	// are semantically identical if they produce identical String() output.
	String() string

	// Equal returns whether the expression is semantically equal to
	// another. It returns false for anything that is not a
	// BooleanExpression.
	Equal(o any) bool
}

func filterEqual(f BooleanExpression, o any) bool {
	other, ok := o.(BooleanExpression)
	if !ok {
		return false
	}
	return f.String() == other.String()
}

// TrueExpression is the always-true filter.
type TrueExpression struct{}

func (f TrueExpression) FilterType() FilterType { return FilterTrue }
func (f TrueExpression) ThingTalk() string      { return "true" }
func (f TrueExpression) String() string         { return "(true)" }
func (f TrueExpression) Equal(o any) bool       { return filterEqual(f, o) }

// FalseExpression is the always-false filter.
type FalseExpression struct{}

func (f FalseExpression) FilterType() FilterType { return FilterFalse }
func (f FalseExpression) ThingTalk() string      { return "false" }
func (f FalseExpression) String() string         { return "(false)" }
func (f FalseExpression) Equal(o any) bool       { return filterEqual(f, o) }

// AndExpression is a conjunction of filters.
type AndExpression struct {
	Operands []BooleanExpression
}

func (f AndExpression) FilterType() FilterType { return FilterAnd }
func (f AndExpression) ThingTalk() string {
	parts := make([]string, len(f.Operands))
	for i := range f.Operands {
		parts[i] = f.Operands[i].ThingTalk()
	}
	return "(" + strings.Join(parts, " && ") + ")"
}
func (f AndExpression) String() string {
	parts := make([]string, len(f.Operands))
	for i := range f.Operands {
		parts[i] = f.Operands[i].String()
	}
	return "(and " + strings.Join(parts, " ") + ")"
}
func (f AndExpression) Equal(o any) bool { return filterEqual(f, o) }

// OrExpression is a disjunction of filters.
type OrExpression struct {
	Operands []BooleanExpression
}

func (f OrExpression) FilterType() FilterType { return FilterOr }
func (f OrExpression) ThingTalk() string {
	parts := make([]string, len(f.Operands))
	for i := range f.Operands {
		parts[i] = f.Operands[i].ThingTalk()
	}
	return "(" + strings.Join(parts, " || ") + ")"
}
func (f OrExpression) String() string {
	parts := make([]string, len(f.Operands))
	for i := range f.Operands {
		parts[i] = f.Operands[i].String()
	}
	return "(or " + strings.Join(parts, " ") + ")"
}
func (f OrExpression) Equal(o any) bool { return filterEqual(f, o) }

// NotExpression negates a filter.
type NotExpression struct {
	Expr BooleanExpression
}

func (f NotExpression) FilterType() FilterType { return FilterNot }
func (f NotExpression) ThingTalk() string      { return "!(" + f.Expr.ThingTalk() + ")" }
func (f NotExpression) String() string         { return "(not " + f.Expr.String() + ")" }
func (f NotExpression) Equal(o any) bool       { return filterEqual(f, o) }

// AtomExpression compares a parameter against a value. Type is the declared
// type of the parameter if an annotation or schema provided one.
type AtomExpression struct {
	Name  string
	Type  Type
	Op    string
	Value Value
}

func (f AtomExpression) FilterType() FilterType { return FilterAtom }
func (f AtomExpression) ThingTalk() string {
	return f.Name + " " + f.Op + " " + f.Value.ThingTalk()
}
func (f AtomExpression) String() string {
	return "(atom " + f.Name + " " + f.Op + " " + f.Value.String() + ")"
}
func (f AtomExpression) Equal(o any) bool { return filterEqual(f, o) }

// ExternalExpression is a subquery filter in its legacy "get-predicate"
// form: invoke another query and test a filter over its results.
type ExternalExpression struct {
	Selector DeviceSelector
	Channel  string
	InParams []InputParam
	Filter   BooleanExpression
	Schema   *FunctionSchema
}

func (f ExternalExpression) FilterType() FilterType { return FilterExternal }
func (f ExternalExpression) ThingTalk() string {
	inv := Invocation{Selector: f.Selector, Channel: f.Channel, InParams: f.InParams}
	return inv.ThingTalk() + " { " + f.Filter.ThingTalk() + " }"
}
func (f ExternalExpression) String() string {
	inv := Invocation{Selector: f.Selector, Channel: f.Channel, InParams: f.InParams}
	return "(external " + inv.String() + " " + f.Filter.String() + ")"
}
func (f ExternalExpression) Equal(o any) bool { return filterEqual(f, o) }

// ComputeExpression compares a computed value against another value.
type ComputeExpression struct {
	Lhs Value
	Op  string
	Rhs Value
}

func (f ComputeExpression) FilterType() FilterType { return FilterCompute }
func (f ComputeExpression) ThingTalk() string {
	return f.Lhs.ThingTalk() + " " + f.Op + " " + f.Rhs.ThingTalk()
}
func (f ComputeExpression) String() string {
	return "(computefilter " + f.Lhs.String() + " " + f.Op + " " + f.Rhs.String() + ")"
}
func (f ComputeExpression) Equal(o any) bool { return filterEqual(f, o) }

// DontCareExpression marks a parameter as explicitly irrelevant to the user.
type DontCareExpression struct {
	Name string
	Type Type
}

func (f DontCareExpression) FilterType() FilterType { return FilterDontCare }
func (f DontCareExpression) ThingTalk() string      { return "true(" + f.Name + ")" }
func (f DontCareExpression) String() string         { return "(dontcare " + f.Name + ")" }
func (f DontCareExpression) Equal(o any) bool       { return filterEqual(f, o) }

// ExistentialSubqueryExpression tests whether another query has any
// matching results. Serialization lowers it to the legacy
// ExternalExpression form when the subquery is a plain, possibly filtered,
// invocation.
type ExistentialSubqueryExpression struct {
	Subquery Table
}

func (f ExistentialSubqueryExpression) FilterType() FilterType { return FilterExistentialSubquery }
func (f ExistentialSubqueryExpression) ThingTalk() string {
	return "any(" + f.Subquery.ThingTalk() + ")"
}
func (f ExistentialSubqueryExpression) String() string {
	return "(exists " + f.Subquery.String() + ")"
}
func (f ExistentialSubqueryExpression) Equal(o any) bool { return filterEqual(f, o) }

// OptimizeFilter simplifies a boolean expression without changing its
// meaning: nested conjunctions and disjunctions are flattened, boolean
// constants are folded, and duplicate operands are removed. The result is
// the input for normalization to conjunctive normal form; it is not itself
// guaranteed to be in CNF.
func OptimizeFilter(f BooleanExpression) BooleanExpression {
	switch f.FilterType() {
	case FilterAnd:
		and := f.(AndExpression)
		var ops []BooleanExpression
		seen := map[string]bool{}
		for _, op := range and.Operands {
			op = OptimizeFilter(op)
			switch op.FilterType() {
			case FilterTrue:
				continue
			case FilterFalse:
				return FalseExpression{}
			case FilterAnd:
				for _, inner := range op.(AndExpression).Operands {
					if !seen[inner.String()] {
						seen[inner.String()] = true
						ops = append(ops, inner)
					}
				}
				continue
			}
			if !seen[op.String()] {
				seen[op.String()] = true
				ops = append(ops, op)
			}
		}
		if len(ops) == 0 {
			return TrueExpression{}
		}
		if len(ops) == 1 {
			return ops[0]
		}
		return AndExpression{Operands: ops}
	case FilterOr:
		or := f.(OrExpression)
		var ops []BooleanExpression
		seen := map[string]bool{}
		for _, op := range or.Operands {
			op = OptimizeFilter(op)
			switch op.FilterType() {
			case FilterFalse:
				continue
			case FilterTrue:
				return TrueExpression{}
			case FilterOr:
				for _, inner := range op.(OrExpression).Operands {
					if !seen[inner.String()] {
						seen[inner.String()] = true
						ops = append(ops, inner)
					}
				}
				continue
			}
			if !seen[op.String()] {
				seen[op.String()] = true
				ops = append(ops, op)
			}
		}
		if len(ops) == 0 {
			return FalseExpression{}
		}
		if len(ops) == 1 {
			return ops[0]
		}
		return OrExpression{Operands: ops}
	case FilterNot:
		inner := OptimizeFilter(f.(NotExpression).Expr)
		switch inner.FilterType() {
		case FilterTrue:
			return FalseExpression{}
		case FilterFalse:
			return TrueExpression{}
		case FilterNot:
			return inner.(NotExpression).Expr
		}
		return NotExpression{Expr: inner}
	case FilterExternal:
		ext := f.(ExternalExpression)
		ext.Filter = OptimizeFilter(ext.Filter)
		return ext
	default:
		return f
	}
}
