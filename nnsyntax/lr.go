package nnsyntax

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/dekarrin/rosed"
	"github.com/dekarrin/thingtalk/internal/util"
)

// file lr.go contains the construction of the canonical LR(1) parse tables
// from the grammar in grammar.go. The tables are computed once, on first
// use, and are read-only afterwards; the driver in parser.go consumes them.

type lrActionKind int

const (
	lrShift lrActionKind = iota
	lrReduce
	lrAccept
)

type lrAction struct {
	kind lrActionKind

	// target is the destination state for a shift, or the rule index for
	// a reduce.
	target int
}

func (a lrAction) String() string {
	switch a.kind {
	case lrShift:
		return "shift " + strconv.Itoa(a.target)
	case lrReduce:
		return "reduce " + strconv.Itoa(a.target)
	default:
		return "accept"
	}
}

// lrTables is the complete parse table set: terminal ids, the per-rule
// left-hand sides and arities, the action table, and the goto table. State
// 0 is the start state.
type lrTables struct {
	rules []grammarRule

	terms       []string
	terminalIDs map[string]int
	nonTerms    []string
	nonTermIDs  map[string]int

	// ruleLHS[r] is the nonterminal id a reduce by rule r produces;
	// arity[r] is how many frames it pops.
	ruleLHS []int
	arity   []int

	// action[state][terminalID] and gotoTbl[state][nonTermID].
	action  []map[int]lrAction
	gotoTbl []map[int]int
}

var (
	tablesOnce sync.Once
	tables     *lrTables
)

// parseTables returns the singleton parse tables, building them on first
// call. Construction panics on a grammar conflict: that is a bug in the
// grammar, not a data error, and the package tests exercise this path.
func parseTables() *lrTables {
	tablesOnce.Do(func() {
		tables = buildTables(grammarRules)
	})
	return tables
}

// lrItem is one LR(1) item: a position in a rule plus a lookahead
// terminal. Rule 0 is the augmented start rule.
type lrItem struct {
	rule int
	dot  int
	la   string
}

func (it lrItem) key() string {
	return strconv.Itoa(it.rule) + "." + strconv.Itoa(it.dot) + "." + it.la
}

type itemSet map[lrItem]struct{}

func (s itemSet) key() string {
	keys := make([]string, 0, len(s))
	for it := range s {
		keys = append(keys, it.key())
	}
	sort.Strings(keys)
	return strings.Join(keys, "|")
}

const acceptSymbol = "$accept"

func buildTables(rules []grammarRule) *lrTables {
	// rule 0 is the augmented start production
	augmented := make([]grammarRule, 0, len(rules)+1)
	augmented = append(augmented, grammarRule{lhs: acceptSymbol, rhs: []string{startSymbol}})
	augmented = append(augmented, rules...)

	t := &lrTables{rules: augmented}

	// split the symbol space: anything that is a left-hand side is a
	// nonterminal, everything else on a right-hand side is a terminal
	nonTermSet := util.NewStringSet()
	for _, r := range augmented {
		nonTermSet.Add(r.lhs)
	}
	termSet := util.NewStringSet()
	for _, r := range augmented {
		for _, sym := range r.rhs {
			if !nonTermSet.Has(sym) {
				termSet.Add(sym)
			}
		}
	}
	termSet.Add(eofTerminal)

	t.terms = termSet.Elements()
	t.terminalIDs = map[string]int{}
	for i, term := range t.terms {
		t.terminalIDs[term] = i
	}
	t.nonTerms = nonTermSet.Elements()
	t.nonTermIDs = map[string]int{}
	for i, nt := range t.nonTerms {
		t.nonTermIDs[nt] = i
	}

	prodsOf := map[string][]int{}
	for i, r := range augmented {
		prodsOf[r.lhs] = append(prodsOf[r.lhs], i)
	}

	t.ruleLHS = make([]int, len(augmented))
	t.arity = make([]int, len(augmented))
	for i, r := range augmented {
		t.ruleLHS[i] = t.nonTermIDs[r.lhs]
		t.arity[i] = len(r.rhs)
	}

	first, nullable := firstSets(augmented, nonTermSet)

	// firstOfSeq computes FIRST(sequence la): the terminals that can
	// begin the given symbol sequence, falling through to the lookahead
	// when the whole sequence can be empty.
	firstOfSeq := func(seq []string, la string) []string {
		out := util.NewStringSet()
		allNullable := true
		for _, sym := range seq {
			out.AddAll(first[sym])
			if !nullable[sym] {
				allNullable = false
				break
			}
		}
		if allNullable {
			out.Add(la)
		}
		return out.Elements()
	}

	closure := func(kernel itemSet) itemSet {
		closed := itemSet{}
		var work []lrItem
		for it := range kernel {
			closed[it] = struct{}{}
			work = append(work, it)
		}
		for len(work) > 0 {
			it := work[len(work)-1]
			work = work[:len(work)-1]

			rhs := augmented[it.rule].rhs
			if it.dot >= len(rhs) {
				continue
			}
			next := rhs[it.dot]
			if !nonTermSet.Has(next) {
				continue
			}
			las := firstOfSeq(rhs[it.dot+1:], it.la)
			for _, prod := range prodsOf[next] {
				for _, la := range las {
					newItem := lrItem{rule: prod, dot: 0, la: la}
					if _, ok := closed[newItem]; !ok {
						closed[newItem] = struct{}{}
						work = append(work, newItem)
					}
				}
			}
		}
		return closed
	}

	// build the canonical collection of LR(1) item sets, identified by
	// their kernels
	startKernel := itemSet{lrItem{rule: 0, dot: 0, la: eofTerminal}: {}}

	stateIDs := map[string]int{startKernel.key(): 0}
	kernels := []itemSet{startKernel}
	type transition struct {
		from int
		sym  string
		to   int
	}
	var transitions []transition

	for i := 0; i < len(kernels); i++ {
		closed := closure(kernels[i])

		// group the items by the symbol after the dot
		bySym := map[string]itemSet{}
		for it := range closed {
			rhs := augmented[it.rule].rhs
			if it.dot >= len(rhs) {
				continue
			}
			sym := rhs[it.dot]
			if bySym[sym] == nil {
				bySym[sym] = itemSet{}
			}
			bySym[sym][lrItem{rule: it.rule, dot: it.dot + 1, la: it.la}] = struct{}{}
		}

		for _, sym := range util.OrderedKeys(bySym) {
			kernel := bySym[sym]
			key := kernel.key()
			to, ok := stateIDs[key]
			if !ok {
				to = len(kernels)
				stateIDs[key] = to
				kernels = append(kernels, kernel)
			}
			transitions = append(transitions, transition{from: i, sym: sym, to: to})
		}
	}

	t.action = make([]map[int]lrAction, len(kernels))
	t.gotoTbl = make([]map[int]int, len(kernels))
	for i := range kernels {
		t.action[i] = map[int]lrAction{}
		t.gotoTbl[i] = map[int]int{}
	}

	shiftTo := make([]map[string]int, len(kernels))
	for i := range shiftTo {
		shiftTo[i] = map[string]int{}
	}
	for _, tr := range transitions {
		if nonTermSet.Has(tr.sym) {
			t.gotoTbl[tr.from][t.nonTermIDs[tr.sym]] = tr.to
		} else {
			shiftTo[tr.from][tr.sym] = tr.to
		}
	}

	setAction := func(state int, term string, act lrAction) {
		id := t.terminalIDs[term]
		if existing, ok := t.action[state][id]; ok && existing != act {
			panic(fmt.Sprintf("grammar is not LR(1): state %d on %q has both %s and %s",
				state, term, existing.String(), act.String()))
		}
		t.action[state][id] = act
	}

	for i := range kernels {
		closed := closure(kernels[i])
		for it := range closed {
			rhs := augmented[it.rule].rhs
			if it.dot < len(rhs) {
				sym := rhs[it.dot]
				if !nonTermSet.Has(sym) {
					setAction(i, sym, lrAction{kind: lrShift, target: shiftTo[i][sym]})
				}
				continue
			}
			if it.rule == 0 {
				setAction(i, eofTerminal, lrAction{kind: lrAccept})
				continue
			}
			setAction(i, it.la, lrAction{kind: lrReduce, target: it.rule})
		}
	}

	return t
}

// firstSets computes the FIRST set and nullability of every symbol.
func firstSets(rules []grammarRule, nonTerms util.StringSet) (map[string]util.StringSet, map[string]bool) {
	first := map[string]util.StringSet{}
	nullable := map[string]bool{}

	ensure := func(sym string) {
		if first[sym] == nil {
			first[sym] = util.NewStringSet()
			if !nonTerms.Has(sym) {
				first[sym].Add(sym)
			}
		}
	}
	for _, r := range rules {
		ensure(r.lhs)
		for _, sym := range r.rhs {
			ensure(sym)
		}
	}

	for changed := true; changed; {
		changed = false
		for _, r := range rules {
			lhsFirst := first[r.lhs]
			before := len(lhsFirst)
			allNullable := true
			for _, sym := range r.rhs {
				lhsFirst.AddAll(first[sym])
				if !nullable[sym] {
					allNullable = false
					break
				}
			}
			if len(lhsFirst) != before {
				changed = true
			}
			if allNullable && !nullable[r.lhs] {
				nullable[r.lhs] = true
				changed = true
			}
		}
	}
	return first, nullable
}

// DescribeParseTable renders the whole action/goto table in a tabular text
// form. It is a debugging aid; the output is large.
func DescribeParseTable() string {
	t := parseTables()

	data := [][]string{}
	headers := []string{"S", "|"}
	for _, term := range t.terms {
		headers = append(headers, "A:"+term)
	}
	headers = append(headers, "|")
	for _, nt := range t.nonTerms {
		headers = append(headers, "G:"+nt)
	}
	data = append(data, headers)

	for state := range t.action {
		row := []string{strconv.Itoa(state), "|"}
		for id := range t.terms {
			cell := ""
			if act, ok := t.action[state][id]; ok {
				switch act.kind {
				case lrShift:
					cell = "s" + strconv.Itoa(act.target)
				case lrReduce:
					cell = "r" + strconv.Itoa(act.target)
				case lrAccept:
					cell = "acc"
				}
			}
			row = append(row, cell)
		}
		row = append(row, "|")
		for id := range t.nonTerms {
			cell := ""
			if to, ok := t.gotoTbl[state][id]; ok {
				cell = strconv.Itoa(to)
			}
			row = append(row, cell)
		}
		data = append(data, row)
	}

	return rosed.
		Edit("").
		InsertTableOpts(0, data, 10, rosed.Options{
			TableHeaders:             true,
			NoTrailingLineSeparators: true,
		}).
		String()
}
