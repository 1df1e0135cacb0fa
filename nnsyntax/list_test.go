package nnsyntax

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_tokenList_FlattenOrder(t *testing.T) {
	testCases := []struct {
		name   string
		list   tokenList
		expect []string
	}{
		{
			name:   "empty",
			list:   emptyList,
			expect: []string{},
		},
		{
			name:   "singleton",
			list:   singleton(keyword("now")),
			expect: []string{"now"},
		},
		{
			name:   "cons prepends",
			list:   cons(keyword("a"), words("b", "c")),
			expect: []string{"a", "b", "c"},
		},
		{
			name:   "snoc appends",
			list:   snoc(words("a", "b"), keyword("c")),
			expect: []string{"a", "b", "c"},
		},
		{
			name:   "concat keeps left to right order",
			list:   concat(words("a"), words("b", "c"), words("d")),
			expect: []string{"a", "b", "c", "d"},
		},
		{
			name:   "nested shapes",
			list:   snoc(concat(cons(keyword("a"), emptyList), words("b")), keyword("c")),
			expect: []string{"a", "b", "c"},
		},
		{
			name:   "concat skips empties",
			list:   concat(emptyList, words("a"), emptyList, words("b")),
			expect: []string{"a", "b"},
		},
		{
			name:   "join with separator",
			list:   joinLists(",", []tokenList{words("a"), words("b"), words("c")}),
			expect: []string{"a", ",", "b", ",", "c"},
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expect, flattenStrings(tc.list))
		})
	}
}

func Test_tokenList_DeepNesting(t *testing.T) {
	assert := assert.New(t)

	// the serializer builds left-leaning concat trees; flattening must
	// handle realistic depths
	var l tokenList = emptyList
	want := make([]string, 0, 500)
	for i := 0; i < 500; i++ {
		l = concat(l, words("x"))
		want = append(want, "x")
	}
	assert.Equal(want, flattenStrings(l))
}
