// Package nnsyntax implements the NN (neural) surface syntax of ThingTalk:
// the bidirectional mapping between the abstract syntax tree of a ThingTalk
// program and the flat token sequence consumed and produced by sequence
// prediction models.
//
// Serialization substitutes literal values with symbolic placeholders
// (QUOTED_STRING_0, NUMBER_3, ...) drawn from an entity bag; parsing
// resolves the placeholders back through the same bag. Conversions are
// synchronous, perform no I/O, and share no mutable state, so distinct
// conversions may run concurrently.
package nnsyntax

import (
	"fmt"
	"strings"

	"github.com/dekarrin/thingtalk/syntax"
)

// SerializeOptions controls ToNN.
type SerializeOptions struct {
	// AllocateEntities ignores the sentence and instead allocates fresh
	// placeholder names, writing them into the caller's entity bag.
	AllocateEntities bool

	// ExplicitStrings writes string-like values inline as quoted tokens
	// instead of placeholders. Only meaningful with AllocateEntities.
	ExplicitStrings bool

	// TypeAnnotations writes param:<name>:<type> instead of bare
	// param:<name> wherever a type is known.
	TypeAnnotations bool
}

// ToNN serializes an AST node into its NN token sequence. The node must be
// one of syntax.Program, syntax.PermissionRule, syntax.DialogueState, or a
// syntax.ControlCommand (or a pointer to one of those).
//
// Without AllocateEntities, literal values are located in the tokenized
// sentence or the entity bag, and the bag is left unmodified. With it, the
// sentence is ignored and newly allocated placeholders are written into
// the bag.
func ToNN(node any, sentence []string, entities EntityMap, opts SerializeOptions) ([]string, error) {
	var retriever entityRetriever
	if opts.AllocateEntities {
		retriever = NewSequentialEntityAllocator(entities, opts.ExplicitStrings)
	} else {
		retriever = NewSentenceEntityRetriever(sentence, entities)
	}

	c := &compiler{retriever: retriever, typeAnnotations: opts.TypeAnnotations}

	var list tokenList
	var err error
	switch n := deref(node).(type) {
	case syntax.Program:
		list, err = c.compileProgram(n)
	case syntax.PermissionRule:
		list, err = c.compilePermissionRule(n)
	case syntax.DialogueState:
		list, err = c.compileDialogueState(n)
	case syntax.ControlCommand:
		list, err = c.compileControlCommand(n)
	default:
		return nil, TypeError{What: fmt.Sprintf("cannot serialize %T", node)}
	}
	if err != nil {
		return nil, err
	}
	return flattenStrings(list), nil
}

func deref(node any) any {
	switch n := node.(type) {
	case *syntax.Program:
		return *n
	case *syntax.PermissionRule:
		return *n
	case *syntax.DialogueState:
		return *n
	case *syntax.SpecialControlCommand:
		return *n
	case *syntax.ChoiceControlCommand:
		return *n
	case *syntax.AnswerControlCommand:
		return *n
	}
	return node
}

// FromNN parses an NN token sequence back into its AST. The sequence may
// be a string, which is split on spaces, or a pre-split []string. The
// entities argument may be an EntityMap, a raw JSON-shaped
// map[string]any, or an EntityResolver callback.
//
// The result is one of syntax.Program, syntax.PermissionRule,
// syntax.DialogueState, or a syntax.ControlCommand.
func FromNN(sequence any, entities any) (any, error) {
	seq, err := asSequence(sequence)
	if err != nil {
		return nil, err
	}
	resolver, err := asResolver(entities)
	if err != nil {
		return nil, err
	}
	return parseSequence(seq, resolver)
}

// ParseReductionSequence parses the sequence and returns the grammar rule
// index of every reduction in order, without running semantic actions. It
// is used to produce action sequences for training data generation.
func ParseReductionSequence(sequence any, entities any) ([]int, error) {
	seq, err := asSequence(sequence)
	if err != nil {
		return nil, err
	}
	resolver, err := asResolver(entities)
	if err != nil {
		return nil, err
	}
	return parseReductions(seq, resolver)
}

func asSequence(sequence any) ([]string, error) {
	switch s := sequence.(type) {
	case []string:
		return s, nil
	case string:
		return strings.Split(s, " "), nil
	default:
		return nil, TypeError{What: fmt.Sprintf("sequence must be a string or []string, not %T", sequence)}
	}
}

func asResolver(entities any) (EntityResolver, error) {
	switch e := entities.(type) {
	case EntityResolver:
		return e, nil
	case func(name, lastParam, lastFunction, unit string) (any, error):
		return e, nil
	case EntityMap:
		return ResolverFromMap(e), nil
	case map[string]any:
		parsed, err := ParseEntityMap(e)
		if err != nil {
			return nil, err
		}
		return ResolverFromMap(parsed), nil
	case nil:
		return ResolverFromMap(EntityMap{}), nil
	default:
		return nil, TypeError{What: fmt.Sprintf("entities must be a map or a resolver, not %T", entities)}
	}
}
