package nnsyntax

import (
	"github.com/dekarrin/thingtalk/syntax"
)

// file normalize.go contains the filter normalizer: every filter is forced
// into conjunctive normal form before serialization so that semantically
// equal filters produce identical token sequences.

// cnfLiteral is one literal of a normalized filter: an atom, external,
// compute or dont-care expression, possibly negated.
type cnfLiteral struct {
	negated bool
	expr    syntax.BooleanExpression
}

// cnfFilter is a normalized filter: a conjunction of disjunctions of
// literals. A nil clause list is the always-true filter; isFalse marks the
// always-false one.
type cnfFilter struct {
	isFalse bool
	clauses [][]cnfLiteral
}

// normalizeFilter rewrites an arbitrary boolean expression into CNF:
// negations are pushed down to the literals, the expression is optimized,
// subqueries are lowered to their legacy external form, and the result is
// flattened into and-of-or shape. Clause ordering is left to the caller,
// which sorts by serialized form.
func normalizeFilter(f syntax.BooleanExpression) (cnfFilter, error) {
	lowered, err := lowerSubqueries(f)
	if err != nil {
		return cnfFilter{}, err
	}
	pushed := pushNegations(lowered, false)
	opt := syntax.OptimizeFilter(pushed)

	switch opt.FilterType() {
	case syntax.FilterTrue:
		return cnfFilter{}, nil
	case syntax.FilterFalse:
		return cnfFilter{isFalse: true}, nil
	}

	// treat the top level as a conjunction
	var conjuncts []syntax.BooleanExpression
	if opt.FilterType() == syntax.FilterAnd {
		conjuncts = opt.(syntax.AndExpression).Operands
	} else {
		conjuncts = []syntax.BooleanExpression{opt}
	}

	clauses := make([][]cnfLiteral, 0, len(conjuncts))
	for _, conj := range conjuncts {
		var disjuncts []syntax.BooleanExpression
		if conj.FilterType() == syntax.FilterOr {
			disjuncts = conj.(syntax.OrExpression).Operands
		} else {
			disjuncts = []syntax.BooleanExpression{conj}
		}

		clause := make([]cnfLiteral, 0, len(disjuncts))
		for _, d := range disjuncts {
			lit, err := toLiteral(d)
			if err != nil {
				return cnfFilter{}, err
			}
			clause = append(clause, lit)
		}
		clauses = append(clauses, clause)
	}

	return cnfFilter{clauses: clauses}, nil
}

func toLiteral(f syntax.BooleanExpression) (cnfLiteral, error) {
	negated := false
	if f.FilterType() == syntax.FilterNot {
		negated = true
		f = f.(syntax.NotExpression).Expr
	}

	switch f.FilterType() {
	case syntax.FilterAtom, syntax.FilterExternal, syntax.FilterCompute, syntax.FilterDontCare:
		return cnfLiteral{negated: negated, expr: f}, nil
	case syntax.FilterAnd:
		return cnfLiteral{}, UnserializableError{What: "AND boolean expression"}
	default:
		return cnfLiteral{}, UnserializableError{What: "filter " + f.String()}
	}
}

// pushNegations moves every negation down to the literal level: double
// negations cancel, and De Morgan's laws distribute negation over
// conjunction and disjunction.
func pushNegations(f syntax.BooleanExpression, negate bool) syntax.BooleanExpression {
	switch f.FilterType() {
	case syntax.FilterNot:
		return pushNegations(f.(syntax.NotExpression).Expr, !negate)
	case syntax.FilterAnd:
		ops := f.(syntax.AndExpression).Operands
		out := make([]syntax.BooleanExpression, len(ops))
		for i := range ops {
			out[i] = pushNegations(ops[i], negate)
		}
		if negate {
			return syntax.OrExpression{Operands: out}
		}
		return syntax.AndExpression{Operands: out}
	case syntax.FilterOr:
		ops := f.(syntax.OrExpression).Operands
		out := make([]syntax.BooleanExpression, len(ops))
		for i := range ops {
			out[i] = pushNegations(ops[i], negate)
		}
		if negate {
			return syntax.AndExpression{Operands: out}
		}
		return syntax.OrExpression{Operands: out}
	case syntax.FilterTrue:
		if negate {
			return syntax.FalseExpression{}
		}
		return f
	case syntax.FilterFalse:
		if negate {
			return syntax.TrueExpression{}
		}
		return f
	default:
		if negate {
			return syntax.NotExpression{Expr: f}
		}
		return f
	}
}

// lowerSubqueries rewrites existential subqueries into the legacy external
// get-predicate form the NN syntax can express.
func lowerSubqueries(f syntax.BooleanExpression) (syntax.BooleanExpression, error) {
	switch f.FilterType() {
	case syntax.FilterExistentialSubquery:
		sub := f.(syntax.ExistentialSubqueryExpression).Subquery
		switch t := sub.(type) {
		case syntax.InvocationTable:
			return syntax.ExternalExpression{
				Selector: t.Invocation.Selector,
				Channel:  t.Invocation.Channel,
				InParams: t.Invocation.InParams,
				Filter:   syntax.TrueExpression{},
				Schema:   t.Invocation.Schema,
			}, nil
		case syntax.FilteredTable:
			inner, ok := t.Table.(syntax.InvocationTable)
			if !ok {
				return nil, UnserializableError{What: "Subquery"}
			}
			return syntax.ExternalExpression{
				Selector: inner.Invocation.Selector,
				Channel:  inner.Invocation.Channel,
				InParams: inner.Invocation.InParams,
				Filter:   t.Filter,
				Schema:   inner.Invocation.Schema,
			}, nil
		default:
			return nil, UnserializableError{What: "Subquery"}
		}
	case syntax.FilterNot:
		inner, err := lowerSubqueries(f.(syntax.NotExpression).Expr)
		if err != nil {
			return nil, err
		}
		return syntax.NotExpression{Expr: inner}, nil
	case syntax.FilterAnd:
		ops := f.(syntax.AndExpression).Operands
		out := make([]syntax.BooleanExpression, len(ops))
		for i := range ops {
			lowered, err := lowerSubqueries(ops[i])
			if err != nil {
				return nil, err
			}
			out[i] = lowered
		}
		return syntax.AndExpression{Operands: out}, nil
	case syntax.FilterOr:
		ops := f.(syntax.OrExpression).Operands
		out := make([]syntax.BooleanExpression, len(ops))
		for i := range ops {
			lowered, err := lowerSubqueries(ops[i])
			if err != nil {
				return nil, err
			}
			out[i] = lowered
		}
		return syntax.OrExpression{Operands: out}, nil
	default:
		return f, nil
	}
}
