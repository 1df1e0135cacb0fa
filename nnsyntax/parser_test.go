package nnsyntax

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_FromNN_SyntaxErrors(t *testing.T) {
	testCases := []struct {
		name     string
		sequence string
		entities map[string]any
	}{
		{name: "empty input", sequence: "", entities: map[string]any{}},
		{name: "truncated rule", sequence: "now =>", entities: map[string]any{}},
		{name: "action where table expected", sequence: "monitor ( notify )", entities: map[string]any{}},
		{name: "unbalanced paren", sequence: "now => ( @com.gmail.inbox => notify", entities: map[string]any{}},
		{name: "stray token after program", sequence: "now => notify notify", entities: map[string]any{}},
		{name: "unknown keyword", sequence: "frobnicate => notify", entities: map[string]any{}},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			assert := assert.New(t)

			_, err := FromNN(tc.sequence, tc.entities)
			if !assert.Error(err) {
				return
			}
			var syntaxErr SyntaxError
			assert.ErrorAs(err, &syntaxErr)
		})
	}
}

func Test_FromNN_UnknownEntityIsError(t *testing.T) {
	assert := assert.New(t)

	_, err := FromNN("now => @com.twitter.post param:status:String = QUOTED_STRING_0", map[string]any{})
	if !assert.Error(err) {
		return
	}
	var invalid InvalidEntityError
	assert.ErrorAs(err, &invalid)
	assert.Equal("QUOTED_STRING_0", invalid.Name)
}

func Test_SyntaxError_ListsExpected(t *testing.T) {
	assert := assert.New(t)

	_, err := FromNN("now => notify notify", map[string]any{})
	if !assert.Error(err) {
		return
	}
	assert.Contains(err.Error(), "unexpected")
	assert.Contains(err.Error(), "expected")
}

func Test_SyntaxError_FullMessage(t *testing.T) {
	assert := assert.New(t)

	seq := []string{"now", "=>", "notify", "notify"}
	_, err := FromNN(seq, map[string]any{})
	if !assert.Error(err) {
		return
	}
	var syntaxErr SyntaxError
	if !assert.ErrorAs(err, &syntaxErr) {
		return
	}
	full := syntaxErr.FullMessage(seq)
	assert.Contains(full, "now => notify notify")
	assert.Contains(full, "^")
}

func Test_ParseTables_Build(t *testing.T) {
	// table construction must not panic and must produce a start state
	// with at least one action
	t.Run("builds without conflicts", func(t *testing.T) {
		tables := parseTables()
		assert.NotEmpty(t, tables.action)
		assert.NotEmpty(t, tables.action[0])
	})

	t.Run("arity matches rule lengths", func(t *testing.T) {
		assert := assert.New(t)
		tables := parseTables()
		for i, rule := range tables.rules {
			assert.Equal(len(rule.rhs), tables.arity[i])
		}
	})
}
