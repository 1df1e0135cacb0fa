package nnsyntax

import (
	"strings"

	"github.com/dekarrin/thingtalk/internal/util"
)

// file parser.go contains the table-driven shift-reduce driver. The driver
// consumes the lexer exactly once, maintains a stack of (state, value)
// frames, and invokes the semantic action of every reduced rule.

// parseContext is the interface handed to semantic actions, letting them
// raise syntax errors positioned in the input sequence.
type parseContext struct {
	seq []string
}

// errorf raises a syntax error from within a semantic action.
func (p *parseContext) errorf(index int, format string, args ...any) error {
	tok := ""
	if index >= 0 && index < len(p.seq) {
		tok = p.seq[index]
	}
	return syntaxErrorf(index, tok, format, args...)
}

type parseFrame struct {
	state int
	value any
}

// parseSequence parses a full NN token sequence into its AST, which is one
// of syntax.Program, syntax.PermissionRule, syntax.DialogueState, or a
// syntax.ControlCommand.
func parseSequence(seq []string, resolver EntityResolver) (any, error) {
	return drive(seq, resolver, true, nil)
}

// parseReductions parses the sequence but skips all semantic actions,
// returning the rule indices of every reduction in order. This is the
// entry point used to produce action sequences for training data.
func parseReductions(seq []string, resolver EntityResolver) ([]int, error) {
	var reductions []int
	_, err := drive(seq, resolver, false, &reductions)
	if err != nil {
		return nil, err
	}
	return reductions, nil
}

func drive(seq []string, resolver EntityResolver, runActions bool, reductions *[]int) (any, error) {
	t := parseTables()
	p := &parseContext{seq: seq}
	lx := newLexer(seq, resolver)

	stack := util.Stack[parseFrame]{Of: []parseFrame{{state: 0}}}

	tok, err := lx.next()
	if err != nil {
		return nil, err
	}

	for {
		state := stack.Peek().state

		termID, known := t.terminalIDs[tok.Terminal]
		var act lrAction
		var ok bool
		if known {
			act, ok = t.action[state][termID]
		}
		if !ok {
			return nil, unexpectedToken(t, state, tok, seq)
		}

		switch act.kind {
		case lrAccept:
			return stack.Peek().value, nil

		case lrShift:
			stack.Push(parseFrame{state: act.target, value: tok})
			tok, err = lx.next()
			if err != nil {
				return nil, err
			}

		case lrReduce:
			rule := t.rules[act.target]
			n := t.arity[act.target]
			args := make([]any, n)
			for i := n - 1; i >= 0; i-- {
				args[i] = stack.Pop().value
			}

			var value any
			if runActions && rule.act != nil {
				value, err = rule.act(p, args)
				if err != nil {
					return nil, err
				}
			}
			if reductions != nil {
				*reductions = append(*reductions, act.target)
			}

			gotoState, ok := t.gotoTbl[stack.Peek().state][t.ruleLHS[act.target]]
			if !ok {
				// the action table never reduces into a hole; reaching
				// this is a table construction bug
				return nil, TypeError{What: "no goto for " + rule.lhs}
			}
			stack.Push(parseFrame{state: gotoState, value: value})
		}
	}
}

// unexpectedToken builds the syntax error for a state with no action on
// the next terminal, listing every terminal that would have been valid.
func unexpectedToken(t *lrTables, state int, tok Token, seq []string) error {
	expectSet := util.NewStringSet()
	for id := range t.action[state] {
		expectSet.Add(t.terms[id])
	}
	expected := expectSet.Elements()

	got := tok.Terminal
	if tok.Index >= 0 && tok.Index < len(seq) {
		got = seq[tok.Index]
	}
	if tok.Terminal == eofTerminal {
		got = "end of input"
	}
	return syntaxErrorf(tok.Index, got, "unexpected %s, expected %s", got, strings.Join(expected, ", "))
}
