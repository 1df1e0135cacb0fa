package nnsyntax

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func lexAll(t *testing.T, seq []string, entities EntityMap) ([]Token, error) {
	t.Helper()
	lx := newLexer(seq, ResolverFromMap(entities))
	var out []Token
	for {
		tok, err := lx.next()
		if err != nil {
			return nil, err
		}
		if tok.Terminal == eofTerminal {
			return out, nil
		}
		out = append(out, tok)
	}
}

func terminalsOf(toks []Token) []string {
	out := make([]string, len(toks))
	for i := range toks {
		out[i] = toks[i].Terminal
	}
	return out
}

func Test_Lexer_TerminalSequence(t *testing.T) {
	testCases := []struct {
		name     string
		input    []string
		entities EntityMap
		expect   []string
	}{
		{
			name:   "keywords pass through",
			input:  []string{"now", "=>", "notify"},
			expect: []string{"now", "=>", "notify"},
		},
		{
			name:   "function reference",
			input:  []string{"@com.twitter.post"},
			expect: []string{TermFunction},
		},
		{
			name:   "class star",
			input:  []string{"@com.twitter.*"},
			expect: []string{TermClassStar},
		},
		{
			name:   "parameter with annotation",
			input:  []string{"param:status:String", "="},
			expect: []string{TermParamName, "="},
		},
		{
			name:     "entity placeholder",
			input:    []string{"NUMBER_0"},
			entities: EntityMap{"NUMBER_0": 1234.0},
			expect:   []string{TermNumber},
		},
		{
			name:   "small integers are literal but zero and one are keywords",
			input:  []string{"0", "1", "5", "12"},
			expect: []string{"0", "1", TermLiteralInteger, TermLiteralInteger},
		},
		{
			name:   "literal time",
			input:  []string{"time:9:30:0"},
			expect: []string{TermLiteralTime},
		},
		{
			name:   "relative time",
			input:  []string{"time:morning"},
			expect: []string{TermRelativeTime},
		},
		{
			name:   "relative location",
			input:  []string{"location:home"},
			expect: []string{TermRelativeLocation},
		},
		{
			name:   "bare location prefix",
			input:  []string{"location:", `"`, "palo", "alto", `"`},
			expect: []string{"location:", `"`, TermWord, TermWord, `"`},
		},
		{
			name:   "quotes toggle word mode",
			input:  []string{`"`, "param:status", "now", `"`, "now"},
			expect: []string{`"`, TermWord, TermWord, `"`, "now"},
		},
		{
			name:   "unit and currency code",
			input:  []string{"unit:ms", "unit:$usd"},
			expect: []string{TermUnit, TermCurrencyCode},
		},
		{
			name:   "enum device special context",
			input:  []string{"enum:off", "device:hue-1", "special:yes", "context:selection:String"},
			expect: []string{TermEnum, TermDeviceName, TermSpecial, TermContextRef},
		},
		{
			name:   "entity type suffix",
			input:  []string{"^^tt:hashtag"},
			expect: []string{TermEntityType},
		},
		{
			name:     "slot resolves to undefined without error",
			input:    []string{"SLOT_0"},
			entities: EntityMap{},
			expect:   []string{TermSlot},
		},
		{
			name:     "measure placeholder",
			input:    []string{"MEASURE_ms_0"},
			entities: EntityMap{"MEASURE_ms_0": MeasureEntity{Unit: "h", Value: 1}},
			expect:   []string{TermMeasure},
		},
		{
			name:  "generic entity placeholder",
			input: []string{"GENERIC_ENTITY_tt:device_0"},
			entities: EntityMap{
				"GENERIC_ENTITY_tt:device_0": GenericEntity{Value: "hue-1", Display: "hue"},
			},
			expect: []string{TermGenericEntity},
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			assert := assert.New(t)

			entities := tc.entities
			if entities == nil {
				entities = EntityMap{}
			}
			toks, err := lexAll(t, tc.input, entities)
			if !assert.NoError(err) {
				return
			}
			assert.Equal(tc.expect, terminalsOf(toks))
		})
	}
}

func Test_Lexer_Errors(t *testing.T) {
	testCases := []struct {
		name  string
		input []string
	}{
		{name: "unknown entity", input: []string{"NUMBER_0"}},
		{name: "malformed function", input: []string{"@nodot"}},
		{name: "malformed context", input: []string{"context:nope"}},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			_, err := lexAll(t, tc.input, EntityMap{})
			assert.Error(t, err)
		})
	}
}

func Test_Lexer_UnitLookahead(t *testing.T) {
	assert := assert.New(t)

	// the resolver sees the unit that follows the placeholder
	var gotUnit string
	resolver := func(name, lastParam, lastFunction, unit string) (any, error) {
		gotUnit = unit
		return 5.0, nil
	}

	lx := newLexer([]string{"NUMBER_0", "unit:ms"}, resolver)
	tok, err := lx.next()
	if !assert.NoError(err) {
		return
	}
	assert.Equal(TermNumber, tok.Terminal)
	assert.Equal("ms", gotUnit)
}

func Test_Lexer_ContextTracking(t *testing.T) {
	assert := assert.New(t)

	// the resolver sees the most recent parameter and function
	var gotParam, gotFunction string
	resolver := func(name, lastParam, lastFunction, unit string) (any, error) {
		gotParam = lastParam
		gotFunction = lastFunction
		return "hello", nil
	}

	lx := newLexer([]string{"@com.twitter.post", "param:status:String", "=", "QUOTED_STRING_0"}, resolver)
	for i := 0; i < 4; i++ {
		_, err := lx.next()
		if !assert.NoError(err) {
			return
		}
	}
	assert.Equal("status", gotParam)
	assert.Equal("com.twitter.post", gotFunction)
}
