package nnsyntax

import (
	"fmt"
	"strings"
)

// file errors.go contains the error taxonomy of the NN syntax subsystem.
// Every fallible operation in this package reports one of the types below so
// callers can match on kind with errors.As.

// SyntaxError is raised by the lexer for malformed tokens and unknown
// entities, and by the parser when no action applies to the next terminal.
type SyntaxError struct {
	// Index is the position in the token sequence the error occurred at,
	// or -1 when no particular token was the cause.
	Index int

	// Token is the offending raw token, if any.
	Token string

	message string
}

func (se SyntaxError) Error() string {
	if se.Index < 0 {
		return fmt.Sprintf("syntax error: %s", se.message)
	}
	return fmt.Sprintf("syntax error: at token %d: %s", se.Index, se.message)
}

// FullMessage shows the complete message of the error along with the
// offending sequence region, when one is known.
func (se SyntaxError) FullMessage(sequence []string) string {
	errMsg := se.Error()
	if se.Index >= 0 && se.Index < len(sequence) {
		cursorLine := strings.Repeat(" ", len(strings.Join(sequence[:se.Index], " ")))
		if se.Index > 0 {
			cursorLine += " "
		}
		cursorLine += "^"
		errMsg = strings.Join(sequence, " ") + "\n" + cursorLine + "\n" + errMsg
	}
	return errMsg
}

func syntaxErrorf(index int, tok string, format string, args ...any) SyntaxError {
	return SyntaxError{Index: index, Token: tok, message: fmt.Sprintf(format, args...)}
}

// UnsynthesizableError is raised by the AST-to-tokens compiler for
// constructs that exist in ThingTalk but have no NN surface form.
type UnsynthesizableError struct {
	What string
}

func (ue UnsynthesizableError) Error() string {
	return fmt.Sprintf("unsynthesizable construct: %s", ue.What)
}

// UnserializableError is raised by the filter normalizer for filter shapes
// that cannot be put in conjunctive normal form.
type UnserializableError struct {
	What string
}

func (ue UnserializableError) Error() string {
	return fmt.Sprintf("unserializable filter: %s", ue.What)
}

// TypeError indicates the compiler reached an AST shape that should be
// impossible. It is a bug in the caller or in this package, never a data
// error.
type TypeError struct {
	What string
}

func (te TypeError) Error() string {
	return fmt.Sprintf("type error: %s", te.What)
}

// AmbiguousEntityError is raised by the entity retriever when more than one
// already-used placeholder matches a value.
type AmbiguousEntityError struct {
	Kind       string
	Display    string
	Candidates []string
}

func (ae AmbiguousEntityError) Error() string {
	return fmt.Sprintf("ambiguous entity %q of kind %s: candidates are %s",
		ae.Display, ae.Kind, strings.Join(ae.Candidates, ", "))
}

// EntityNotFoundError is raised when no retrieval strategy produces a token
// for a literal value.
type EntityNotFoundError struct {
	Kind    string
	Display string
}

func (ne EntityNotFoundError) Error() string {
	return fmt.Sprintf("cannot find entity %q of kind %s in the sentence or the context", ne.Display, ne.Kind)
}

// InvalidEntityError is raised by the lexer's resolver when a placeholder in
// the sequence names an entity that is not in the caller's bag.
type InvalidEntityError struct {
	Name string
}

func (ie InvalidEntityError) Error() string {
	return fmt.Sprintf("invalid entity %s: not present in the entity bag", ie.Name)
}
