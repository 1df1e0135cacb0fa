package nnsyntax

import (
	"regexp"
	"strconv"
	"strings"
)

// file lexer.go contains the lexer: a single-pass iterator that classifies
// each raw token of an NN sequence into a typed terminal, resolving entity
// placeholders through the caller's bag as it goes.

// EntityResolver resolves a placeholder name to its entity value. It
// receives the parameter and function most recently seen in the sequence
// and the unit token following the placeholder, if any, as context. A
// missing SLOT_* placeholder resolves to nil rather than an error.
type EntityResolver func(name, lastParam, lastFunction, unit string) (any, error)

// ResolverFromMap adapts an entity bag to the resolver contract.
func ResolverFromMap(entities EntityMap) EntityResolver {
	return func(name, lastParam, lastFunction, unit string) (any, error) {
		v, ok := entities[name]
		if !ok {
			if strings.HasPrefix(name, "SLOT_") {
				return nil, nil
			}
			return nil, InvalidEntityError{Name: name}
		}
		return v, nil
	}
}

const eofTerminal = "$"

var (
	integerPat     = regexp.MustCompile(`^[0-9]+$`)
	literalTimePat = regexp.MustCompile(`^time:([0-9]{1,2}):([0-9]{1,2})(?::([0-9]{1,2}))?$`)
	entityPat      = regexp.MustCompile(`^[A-Z]+_`)
)

// genericPayload is the payload of a GENERIC_ENTITY terminal: the entity
// plus its Thingpedia type taken from the placeholder kind.
type genericPayload struct {
	Type   string
	Entity GenericEntity
}

// lexer is a single-pass pull iterator over a raw token sequence. It peeks
// at most one token ahead, to hand a following unit: token to the resolver
// as context. It is not restartable.
type lexer struct {
	seq      []string
	resolver EntityResolver

	pos          int
	inString     bool
	lastParam    string
	lastFunction string
}

func newLexer(seq []string, resolver EntityResolver) *lexer {
	return &lexer{seq: seq, resolver: resolver}
}

// next yields the next typed token. At the end of the sequence it yields
// the end-of-input terminal forever.
func (lx *lexer) next() (Token, error) {
	if lx.pos >= len(lx.seq) {
		return Token{Terminal: eofTerminal, Index: len(lx.seq)}, nil
	}

	i := lx.pos
	tok := lx.seq[i]
	lx.pos++

	if tok == `"` {
		lx.inString = !lx.inString
		return Token{Terminal: `"`, Index: i}, nil
	}
	if lx.inString {
		return Token{Terminal: TermWord, Value: tok, Index: i}, nil
	}

	if integerPat.MatchString(tok) {
		if tok == "0" || tok == "1" {
			return Token{Terminal: tok, Index: i}, nil
		}
		n, err := strconv.Atoi(tok)
		if err != nil {
			return Token{}, syntaxErrorf(i, tok, "malformed integer literal %q", tok)
		}
		return Token{Terminal: TermLiteralInteger, Value: float64(n), Index: i}, nil
	}

	if m := literalTimePat.FindStringSubmatch(tok); m != nil {
		h, _ := strconv.Atoi(m[1])
		mi, _ := strconv.Atoi(m[2])
		s := 0
		if m[3] != "" {
			s, _ = strconv.Atoi(m[3])
		}
		return Token{Terminal: TermLiteralTime, Value: TimeEntity{Hour: h, Minute: mi, Second: s}, Index: i}, nil
	}

	if entityPat.MatchString(tok) {
		return lx.resolveEntity(tok, i)
	}

	switch {
	case strings.HasPrefix(tok, "@"):
		fn := strings.TrimPrefix(tok, "@")
		dot := strings.LastIndex(fn, ".")
		if dot <= 0 || dot == len(fn)-1 {
			return Token{}, syntaxErrorf(i, tok, "malformed function name %q", tok)
		}
		kind, channel := fn[:dot], fn[dot+1:]
		lx.lastFunction = fn
		if channel == "*" {
			return Token{Terminal: TermClassStar, Value: funcRef{Kind: kind, Channel: "*"}, Index: i}, nil
		}
		return Token{Terminal: TermFunction, Value: funcRef{Kind: kind, Channel: channel}, Index: i}, nil

	case strings.HasPrefix(tok, "enum:"):
		return Token{Terminal: TermEnum, Value: strings.TrimPrefix(tok, "enum:"), Index: i}, nil

	case strings.HasPrefix(tok, "param:"):
		ref := splitAnnotated(strings.TrimPrefix(tok, "param:"))
		if ref.Name == "" {
			return Token{}, syntaxErrorf(i, tok, "malformed parameter name %q", tok)
		}
		lx.lastParam = ref.Name
		return Token{Terminal: TermParamName, Value: ref, Index: i}, nil

	case strings.HasPrefix(tok, "attribute:"):
		ref := splitAnnotated(strings.TrimPrefix(tok, "attribute:"))
		if ref.Name == "" {
			return Token{}, syntaxErrorf(i, tok, "malformed attribute name %q", tok)
		}
		return Token{Terminal: TermAttributeName, Value: ref, Index: i}, nil

	case strings.HasPrefix(tok, "unit:$"):
		return Token{Terminal: TermCurrencyCode, Value: strings.TrimPrefix(tok, "unit:$"), Index: i}, nil

	case strings.HasPrefix(tok, "unit:"):
		return Token{Terminal: TermUnit, Value: strings.TrimPrefix(tok, "unit:"), Index: i}, nil

	case strings.HasPrefix(tok, "device:"):
		return Token{Terminal: TermDeviceName, Value: strings.TrimPrefix(tok, "device:"), Index: i}, nil

	case strings.HasPrefix(tok, "special:"):
		return Token{Terminal: TermSpecial, Value: strings.TrimPrefix(tok, "special:"), Index: i}, nil

	case strings.HasPrefix(tok, "context:"):
		rest := strings.TrimPrefix(tok, "context:")
		colon := strings.Index(rest, ":")
		if colon <= 0 || colon == len(rest)-1 {
			return Token{}, syntaxErrorf(i, tok, "malformed context reference %q", tok)
		}
		return Token{Terminal: TermContextRef, Value: paramRef{Name: rest[:colon], Type: rest[colon+1:]}, Index: i}, nil

	case tok == "location:":
		return Token{Terminal: "location:", Index: i}, nil

	case strings.HasPrefix(tok, "location:"):
		return Token{Terminal: TermRelativeLocation, Value: strings.TrimPrefix(tok, "location:"), Index: i}, nil

	case strings.HasPrefix(tok, "time:"):
		return Token{Terminal: TermRelativeTime, Value: strings.TrimPrefix(tok, "time:"), Index: i}, nil

	case strings.HasPrefix(tok, "^^"):
		return Token{Terminal: TermEntityType, Value: strings.TrimPrefix(tok, "^^"), Index: i}, nil

	default:
		return Token{Terminal: tok, Index: i}, nil
	}
}

// resolveEntity looks up a placeholder through the resolver and wraps the
// value as the terminal for its kind.
func (lx *lexer) resolveEntity(name string, i int) (Token, error) {
	kind, _, ok := entityKindOf(name)
	if !ok {
		return Token{}, syntaxErrorf(i, name, "malformed entity placeholder %q", name)
	}

	// peek the following token: a unit is context for the resolver
	var unit string
	if lx.pos < len(lx.seq) && strings.HasPrefix(lx.seq[lx.pos], "unit:") {
		unit = strings.TrimPrefix(lx.seq[lx.pos], "unit:")
	}

	value, err := lx.resolver(name, lx.lastParam, lx.lastFunction, unit)
	if err != nil {
		return Token{}, err
	}

	switch {
	case kind == TermSlot:
		return Token{Terminal: TermSlot, Value: nil, Index: i}, nil
	case strings.HasPrefix(kind, "GENERIC_ENTITY_"):
		ge, ok := value.(GenericEntity)
		if !ok {
			return Token{}, syntaxErrorf(i, name, "entity %s is not a generic entity", name)
		}
		return Token{
			Terminal: TermGenericEntity,
			Value:    genericPayload{Type: strings.TrimPrefix(kind, "GENERIC_ENTITY_"), Entity: ge},
			Index:    i,
		}, nil
	case strings.HasPrefix(kind, "MEASURE_"):
		me, ok := value.(MeasureEntity)
		if !ok {
			return Token{}, syntaxErrorf(i, name, "entity %s is not a measure", name)
		}
		return Token{Terminal: TermMeasure, Value: me, Index: i}, nil
	default:
		return Token{Terminal: kind, Value: value, Index: i}, nil
	}
}

// splitAnnotated splits "name" or "name:Type" into its parts.
func splitAnnotated(s string) paramRef {
	colon := strings.Index(s, ":")
	if colon < 0 {
		return paramRef{Name: s}
	}
	return paramRef{Name: s[:colon], Type: s[colon+1:]}
}
