package nnsyntax

import (
	"strconv"
	"strings"
	"time"

	"github.com/dekarrin/thingtalk/internal/util"
	"github.com/dekarrin/thingtalk/syntax"
)

// file retriever.go contains the two entity retrievers: the sentence-backed
// one used when serializing against a real utterance, and the sequential
// allocator used when generating synthetic data.

// findOpts controls a single findEntity call.
type findOpts struct {
	// ignoreNotFound makes a failed retrieval return a nil list instead
	// of an error, so the caller can try a different serialization.
	ignoreNotFound bool
}

// entityRetriever allocates or looks up the token form of a literal value.
// A nil list with a nil error means the entity was not found and the caller
// asked to tolerate that.
type entityRetriever interface {
	findEntity(kind string, v syntax.Value, opts findOpts) (tokenList, error)
}

// SentenceEntityRetriever retrieves placeholder names for literal values
// against a tokenized input sentence and a bag of entities extracted from
// it. Literals that literally occur in the sentence are emitted inline;
// everything else consumes a placeholder from the bag.
//
// The retriever is stateful: placeholders move from the available bag to
// the used bag as they are emitted. Unused placeholders are searched before
// used ones, so a repeated value reuses its earlier placeholder only when
// the bag has no other unused placeholder for it. A retriever must not be shared
// between serializations.
type SentenceEntityRetriever struct {
	sentence  []string
	available EntityMap
	used      EntityMap
}

// NewSentenceEntityRetriever creates a retriever over the given tokenized
// sentence and entity bag. The bag is copied; the caller's map is not
// modified.
func NewSentenceEntityRetriever(sentence []string, entities EntityMap) *SentenceEntityRetriever {
	return &SentenceEntityRetriever{
		sentence:  sentence,
		available: entities.Copy(),
		used:      EntityMap{},
	}
}

func (r *SentenceEntityRetriever) findEntity(kind string, v syntax.Value, opts findOpts) (tokenList, error) {
	entity, ok := valueToEntity(kind, v)
	if !ok {
		return nil, TypeError{What: "value " + v.String() + " cannot be a " + kind + " entity"}
	}
	display := displayString(entity)

	// a literal that the user actually said is preferred over a context
	// entity, even when a context entity carries the same value
	if toks, found := r.findStringLikeEntity(kind, entity, display); found {
		return toks, nil
	}

	var candidates []string
	for _, name := range util.OrderedKeys(r.available) {
		k, _, ok := entityKindOf(name)
		if !ok || k != kind {
			continue
		}
		if entitiesEqual(kind, r.available[name], entity) {
			candidates = append(candidates, name)
		}
	}

	if len(candidates) == 0 {
		// reuse a placeholder this serialization already emitted
		var reused []string
		for _, name := range util.OrderedKeys(r.used) {
			k, _, ok := entityKindOf(name)
			if !ok || k != kind {
				continue
			}
			if entitiesEqual(kind, r.used[name], entity) {
				reused = append(reused, name)
			}
		}
		if len(reused) == 1 {
			return singleton(keyword(reused[0])), nil
		}
		if len(reused) > 1 {
			return nil, AmbiguousEntityError{Kind: kind, Display: display, Candidates: reused}
		}

		if opts.ignoreNotFound {
			return nil, nil
		}
		if toks, found := r.findStringLikeEntity(kind, entity, display); found {
			return toks, nil
		}
		return nil, EntityNotFoundError{Kind: kind, Display: display}
	}

	// the lexicographically smallest candidate; OrderedKeys already sorted
	name := candidates[0]
	r.used[name] = r.available[name]
	delete(r.available, name)
	return singleton(keyword(name)), nil
}

// findStringLikeEntity tries to emit the value inline because its display
// form occurs verbatim in the sentence.
func (r *SentenceEntityRetriever) findStringLikeEntity(kind string, entity any, display string) (tokenList, bool) {
	if kind == TermQuotedString || kind == TermHashtag || kind == TermUsername || kind == TermLocation ||
		(strings.HasPrefix(kind, "GENERIC_ENTITY_") && display != "") {
		span, found := r.findSpan(display)
		if !found {
			return nil, false
		}
		quoted := concat(words(`"`), words(span...), words(`"`))
		switch kind {
		case TermQuotedString:
			return quoted, true
		case TermHashtag:
			return snoc(quoted, keyword("^^tt:hashtag")), true
		case TermUsername:
			return snoc(quoted, keyword("^^tt:username")), true
		case TermLocation:
			return cons(keyword("location:"), quoted), true
		default:
			return snoc(quoted, keyword("^^"+strings.TrimPrefix(kind, "GENERIC_ENTITY_"))), true
		}
	}

	if kind == TermDate {
		date, ok := asTime(entity)
		if !ok {
			return nil, false
		}
		iso := date.UTC().Format(time.RFC3339)
		for _, tok := range r.sentence {
			if tok == iso {
				return concat(words("new", "Date", "(", `"`, iso, `"`, ")")), true
			}
		}
	}

	return nil, false
}

// findSpan searches the sentence for a contiguous, case-insensitive match
// of the display string's tokens and returns the matched sentence span.
func (r *SentenceEntityRetriever) findSpan(display string) ([]string, bool) {
	if display == "" {
		return nil, false
	}
	want := strings.Fields(strings.ToLower(display))
	if len(want) == 0 {
		return nil, false
	}
	for i := 0; i+len(want) <= len(r.sentence); i++ {
		match := true
		for j := range want {
			if strings.ToLower(r.sentence[i+j]) != want[j] {
				match = false
				break
			}
		}
		if match {
			return r.sentence[i : i+len(want)], true
		}
	}
	return nil, false
}

// SequentialEntityAllocator hands out placeholder names in order, writing
// newly allocated entities into the caller's bag. It is used when
// serializing without a reference sentence, such as when generating
// synthetic training data.
type SequentialEntityAllocator struct {
	entities        EntityMap
	offsets         map[string]int
	explicitStrings bool
}

// NewSequentialEntityAllocator creates an allocator over the given bag. The
// bag is retained and mutated: newly allocated placeholders are written
// into it. Pre-populated keys are never overwritten; per-kind counters
// start above the highest existing number. When explicitStrings is set,
// string-like values are emitted inline instead of consuming placeholders.
func NewSequentialEntityAllocator(entities EntityMap, explicitStrings bool) *SequentialEntityAllocator {
	a := &SequentialEntityAllocator{
		entities:        entities,
		offsets:         map[string]int{},
		explicitStrings: explicitStrings,
	}
	a.updateOffsets()
	return a
}

func (a *SequentialEntityAllocator) updateOffsets() {
	for name := range a.entities {
		kind, num, ok := entityKindOf(name)
		if !ok {
			continue
		}
		if num+1 > a.offsets[kind] {
			a.offsets[kind] = num + 1
		}
	}
}

func (a *SequentialEntityAllocator) findEntity(kind string, v syntax.Value, opts findOpts) (tokenList, error) {
	entity, ok := valueToEntity(kind, v)
	if !ok {
		return nil, TypeError{What: "value " + v.String() + " cannot be a " + kind + " entity"}
	}

	if a.explicitStrings && stringLikeKind(kind) {
		return a.explicitForm(kind, entity), nil
	}

	for _, name := range util.OrderedKeys(a.entities) {
		k, _, ok := entityKindOf(name)
		if !ok || k != kind {
			continue
		}
		if entitiesEqual(kind, a.entities[name], entity) {
			return singleton(keyword(name)), nil
		}
	}

	n := a.offsets[kind]
	a.offsets[kind] = n + 1
	name := kind + "_" + strconv.Itoa(n)
	a.entities[name] = entity
	return singleton(keyword(name)), nil
}

// explicitForm writes a string-like entity inline as its quoted wire form.
func (a *SequentialEntityAllocator) explicitForm(kind string, entity any) tokenList {
	display := displayString(entity)
	quoted := concat(words(`"`), words(strings.Fields(display)...), words(`"`))
	switch kind {
	case TermQuotedString:
		return quoted
	case TermLocation:
		return cons(keyword("location:"), quoted)
	default:
		return snoc(quoted, keyword("^^"+entityTypeOfKind(kind)))
	}
}
