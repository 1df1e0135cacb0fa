package nnsyntax

// file list.go contains the lazy token sequence the serializer builds its
// output in. The serializer appends to both ends of partial sequences
// constantly; this representation makes every concatenation O(1) and defers
// all copying to a single flatten pass at the end.

// tokenList is a persistent sequence of tokens with four shapes: empty, an
// element followed by a list, a list followed by an element, and two lists
// side by side.
type tokenList interface {
	// flattenInto appends every token of the list to buf in left-to-right
	// order. This is the only traversal the list supports.
	flattenInto(buf *[]Token)
}

type nilList struct{}

func (l nilList) flattenInto(buf *[]Token) {}

type consList struct {
	head Token
	tail tokenList
}

func (l consList) flattenInto(buf *[]Token) {
	*buf = append(*buf, l.head)
	l.tail.flattenInto(buf)
}

type snocList struct {
	head tokenList
	tail Token
}

func (l snocList) flattenInto(buf *[]Token) {
	l.head.flattenInto(buf)
	*buf = append(*buf, l.tail)
}

type concatList struct {
	first  tokenList
	second tokenList
}

func (l concatList) flattenInto(buf *[]Token) {
	l.first.flattenInto(buf)
	l.second.flattenInto(buf)
}

var emptyList tokenList = nilList{}

// singleton returns the one-element list holding t.
func singleton(t Token) tokenList {
	return consList{head: t, tail: emptyList}
}

// cons returns the list t followed by tail.
func cons(t Token, tail tokenList) tokenList {
	return consList{head: t, tail: tail}
}

// snoc returns the list head followed by t.
func snoc(head tokenList, t Token) tokenList {
	return snocList{head: head, tail: t}
}

// concat joins any number of lists. The result is a left-leaning tree built
// in time proportional to the number of arguments, not the number of
// elements.
func concat(lists ...tokenList) tokenList {
	var out tokenList = emptyList
	for i := range lists {
		if _, isNil := lists[i].(nilList); isNil {
			continue
		}
		if _, isNil := out.(nilList); isNil {
			out = lists[i]
			continue
		}
		out = concatList{first: out, second: lists[i]}
	}
	return out
}

// words builds a list of structural tokens from literal spellings.
func words(lits ...string) tokenList {
	var out tokenList = emptyList
	for i := len(lits) - 1; i >= 0; i-- {
		out = cons(keyword(lits[i]), out)
	}
	return out
}

// joinLists interleaves sep between the given lists.
func joinLists(sep string, lists []tokenList) tokenList {
	var out tokenList = emptyList
	for i := range lists {
		if i > 0 {
			out = snoc(out, keyword(sep))
		}
		out = concat(out, lists[i])
	}
	return out
}

// flatten materializes the list into a token slice.
func flatten(l tokenList) []Token {
	var buf []Token
	l.flattenInto(&buf)
	return buf
}

// flattenStrings materializes the list into the written raw-token forms.
// Serializer-produced tokens always spell themselves as their terminal, so
// this is a straight projection.
func flattenStrings(l tokenList) []string {
	toks := flatten(l)
	out := make([]string, len(toks))
	for i := range toks {
		out[i] = toks[i].Terminal
	}
	return out
}
