package nnsyntax

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dekarrin/thingtalk/syntax"
)

func atom(name, op string, v float64) syntax.BooleanExpression {
	return syntax.AtomExpression{Name: name, Op: op, Value: syntax.NumberValue{Value: v}}
}

func Test_pushNegations(t *testing.T) {
	testCases := []struct {
		name   string
		input  syntax.BooleanExpression
		expect syntax.BooleanExpression
	}{
		{
			name:   "double negation cancels",
			input:  syntax.NotExpression{Expr: syntax.NotExpression{Expr: atom("x", "==", 1)}},
			expect: atom("x", "==", 1),
		},
		{
			name: "negated conjunction becomes disjunction",
			input: syntax.NotExpression{Expr: syntax.AndExpression{Operands: []syntax.BooleanExpression{
				atom("x", "==", 1), atom("y", "==", 2),
			}}},
			expect: syntax.OrExpression{Operands: []syntax.BooleanExpression{
				syntax.NotExpression{Expr: atom("x", "==", 1)},
				syntax.NotExpression{Expr: atom("y", "==", 2)},
			}},
		},
		{
			name: "negated disjunction becomes conjunction",
			input: syntax.NotExpression{Expr: syntax.OrExpression{Operands: []syntax.BooleanExpression{
				atom("x", "==", 1), atom("y", "==", 2),
			}}},
			expect: syntax.AndExpression{Operands: []syntax.BooleanExpression{
				syntax.NotExpression{Expr: atom("x", "==", 1)},
				syntax.NotExpression{Expr: atom("y", "==", 2)},
			}},
		},
		{
			name:   "negated true is false",
			input:  syntax.NotExpression{Expr: syntax.TrueExpression{}},
			expect: syntax.FalseExpression{},
		},
		{
			name:   "negated false is true",
			input:  syntax.NotExpression{Expr: syntax.FalseExpression{}},
			expect: syntax.TrueExpression{},
		},
		{
			name:   "negated atom is preserved",
			input:  syntax.NotExpression{Expr: atom("x", "==", 1)},
			expect: syntax.NotExpression{Expr: atom("x", "==", 1)},
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			got := pushNegations(tc.input, false)
			assert.True(t, tc.expect.Equal(got), "want %s, got %s", tc.expect.String(), got.String())
		})
	}
}

func Test_normalizeFilter(t *testing.T) {
	t.Run("true filter has no clauses", func(t *testing.T) {
		assert := assert.New(t)
		cnf, err := normalizeFilter(syntax.TrueExpression{})
		assert.NoError(err)
		assert.False(cnf.isFalse)
		assert.Empty(cnf.clauses)
	})

	t.Run("false filter is marked", func(t *testing.T) {
		assert := assert.New(t)
		cnf, err := normalizeFilter(syntax.FalseExpression{})
		assert.NoError(err)
		assert.True(cnf.isFalse)
	})

	t.Run("and of or flattens to clauses", func(t *testing.T) {
		assert := assert.New(t)
		cnf, err := normalizeFilter(syntax.AndExpression{Operands: []syntax.BooleanExpression{
			syntax.OrExpression{Operands: []syntax.BooleanExpression{atom("x", "==", 1), atom("y", "==", 2)}},
			atom("z", "==", 3),
		}})
		if !assert.NoError(err) {
			return
		}
		assert.Len(cnf.clauses, 2)
		assert.Len(cnf.clauses[0], 2)
		assert.Len(cnf.clauses[1], 1)
	})

	t.Run("and under or is unserializable", func(t *testing.T) {
		assert := assert.New(t)
		_, err := normalizeFilter(syntax.OrExpression{Operands: []syntax.BooleanExpression{
			syntax.AndExpression{Operands: []syntax.BooleanExpression{atom("x", "==", 1), atom("y", "==", 2)}},
			atom("z", "==", 3),
		}})
		var unser UnserializableError
		assert.ErrorAs(err, &unser)
	})

	t.Run("duplicate conjuncts are removed", func(t *testing.T) {
		assert := assert.New(t)
		cnf, err := normalizeFilter(syntax.AndExpression{Operands: []syntax.BooleanExpression{
			atom("x", "==", 1), atom("x", "==", 1),
		}})
		if !assert.NoError(err) {
			return
		}
		assert.Len(cnf.clauses, 1)
	})

	t.Run("existential subquery lowers to external", func(t *testing.T) {
		assert := assert.New(t)
		cnf, err := normalizeFilter(syntax.ExistentialSubqueryExpression{
			Subquery: syntax.FilteredTable{
				Table: syntax.InvocationTable{Invocation: syntax.Invocation{
					Selector: syntax.DeviceSelector{Kind: "com.gmail"}, Channel: "inbox",
				}},
				Filter: atom("is_read", "==", 0),
			},
		})
		if !assert.NoError(err) {
			return
		}
		if !assert.Len(cnf.clauses, 1) {
			return
		}
		lit := cnf.clauses[0][0]
		assert.Equal(syntax.FilterExternal, lit.expr.FilterType())
	})

	t.Run("unlowerable subquery is unserializable", func(t *testing.T) {
		assert := assert.New(t)
		_, err := normalizeFilter(syntax.ExistentialSubqueryExpression{
			Subquery: syntax.AggregationTable{
				Table: syntax.InvocationTable{Invocation: syntax.Invocation{
					Selector: syntax.DeviceSelector{Kind: "com.gmail"}, Channel: "inbox",
				}},
				Op: "count", Field: "*",
			},
		})
		var unser UnserializableError
		assert.ErrorAs(err, &unser)
		assert.Contains(err.Error(), "Subquery")
	})
}
