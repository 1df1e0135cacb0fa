package nnsyntax

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dekarrin/thingtalk/syntax"
)

// reserializeOpts is what the round-trip tests use: allocate fresh
// placeholders and keep the type annotations the input carried.
var reserializeOpts = SerializeOptions{AllocateEntities: true, TypeAnnotations: true}

func Test_FromNN_ToNN_RoundTrip(t *testing.T) {
	testCases := []struct {
		name     string
		sequence string
		entities map[string]any

		// explicitStrings reserializes with inline quoted strings
		// instead of placeholders.
		explicitStrings bool
	}{
		{
			name:     "monitor rule with notify",
			sequence: "monitor ( @com.xkcd.get_comic ) => notify",
			entities: map[string]any{},
		},
		{
			name:     "post action with quoted string entity",
			sequence: "now => @com.twitter.post param:status:String = QUOTED_STRING_0",
			entities: map[string]any{"QUOTED_STRING_0": "hello"},
		},
		{
			name:     "large number is an entity",
			sequence: "now => @com.xkcd.get_comic param:number:Number = NUMBER_0 => notify",
			entities: map[string]any{"NUMBER_0": 1234.0},
		},
		{
			name:     "date entity round trip",
			sequence: "now => @org.thingpedia.weather.sunrise param:date:Date = DATE_0 => notify",
			entities: map[string]any{"DATE_0": "2018-06-23T00:00:00Z"},
		},
		{
			name:     "slice with small integer base",
			sequence: "now => ( @com.gmail.inbox ) [ 1 : NUMBER_0 ] => notify",
			entities: map[string]any{"NUMBER_0": 15.0},
		},
		{
			name:     "filtered table",
			sequence: "now => ( @com.bing.web_search param:query:String = QUOTED_STRING_0 ) filter param:title:String =~ QUOTED_STRING_1 => notify",
			entities: map[string]any{"QUOTED_STRING_0": "cats", "QUOTED_STRING_1": "tabby"},
		},
		{
			name:     "edge filter stream",
			sequence: "edge ( monitor ( @thermostat.get_temperature ) ) on param:value:Number >= NUMBER_0 => notify",
			entities: map[string]any{"NUMBER_0": 70.0},
		},
		{
			name:     "timer with interval",
			sequence: "timer base = now , interval = DURATION_0 => notify",
			entities: map[string]any{"DURATION_0": map[string]any{"unit": "h", "value": 1.0}},
		},
		{
			name:     "attimer with time entity",
			sequence: "attimer time = TIME_0 => notify",
			entities: map[string]any{"TIME_0": map[string]any{"hour": 9.0, "minute": 30.0, "second": 0.0}},
		},
		{
			name:     "projection table",
			sequence: "now => [ param:sender_name , param:subject ] of ( @com.gmail.inbox ) => notify",
			entities: map[string]any{},
		},
		{
			name:     "aggregate count",
			sequence: "now => aggregate count of ( @com.gmail.inbox ) => notify",
			entities: map[string]any{},
		},
		{
			name:     "sort descending",
			sequence: "now => sort param:date desc of ( @com.gmail.inbox ) => notify",
			entities: map[string]any{},
		},
		{
			name:     "table join with param passing",
			sequence: "now => ( @com.bing.web_search param:query:String = QUOTED_STRING_0 ) join ( @com.yandex.translate.translate ) on param:text:String = param:title => notify",
			entities: map[string]any{"QUOTED_STRING_0": "cats"},
		},
		{
			name:     "stream join",
			sequence: "( monitor ( @com.gmail.inbox ) ) => ( @com.yandex.translate.translate ) on param:text:String = param:subject => notify",
			entities: map[string]any{},
		},
		{
			name:     "negative small integer",
			sequence: "now => @thermostat.set_target_temperature param:value:Number = - 5 => notify",
			entities: map[string]any{},
		},
		{
			name:     "boolean and enum parameters",
			sequence: "now => @light-bulb.set_power param:power:Enum(on,off) = enum:off",
			entities: map[string]any{},
		},
		{
			name:            "device selector attributes",
			sequence:        "now => @light-bulb.set_power attribute:name:String = \" kitchen \" param:power:Enum(on,off) = enum:off",
			entities:        map[string]any{},
			explicitStrings: true,
		},
		{
			name:     "measure entity duration",
			sequence: "timer base = now , interval = DURATION_0 => notify",
			entities: map[string]any{"DURATION_0": map[string]any{"unit": "ms", "value": 30000.0}},
		},
		{
			name:     "currency entity",
			sequence: "now => @com.wallet.pay param:amount:Currency = CURRENCY_0",
			entities: map[string]any{"CURRENCY_0": map[string]any{"unit": "usd", "value": 100.5}},
		},
		{
			name:     "filter with or and not",
			sequence: "now => ( @com.gmail.inbox ) filter not param:is_read:Boolean == true or param:sender_name:String =~ QUOTED_STRING_0 => notify",
			entities: map[string]any{"QUOTED_STRING_0": "alice"},
		},
		{
			name:     "dont care filter",
			sequence: "now => ( @com.gmail.inbox ) filter true param:labels => notify",
			entities: map[string]any{},
		},
		{
			name:     "external filter",
			sequence: "now => ( @com.gmail.inbox ) filter @org.thingpedia.weather.current param:location:Location = LOCATION_0 { param:temperature:Number >= NUMBER_0 } => notify",
			entities: map[string]any{
				"LOCATION_0": map[string]any{"latitude": 37.44, "longitude": -122.17, "display": "palo alto"},
				"NUMBER_0":   70.0,
			},
		},
		{
			name:     "policy with class star",
			sequence: "policy true : @com.gmail.* => *",
			entities: map[string]any{},
		},
		{
			name:     "policy with filter",
			sequence: "policy true : @com.gmail.inbox filter param:labels:String == QUOTED_STRING_0 => *",
			entities: map[string]any{"QUOTED_STRING_0": "work"},
		},
		{
			name:     "policy with principal",
			sequence: "policy param:source:Entity(tt:contact) == USERNAME_0 : * => @com.twitter.post",
			entities: map[string]any{"USERNAME_0": "bob"},
		},
		{
			name:     "empty string allocates nothing",
			sequence: `now => @com.twitter.post param:status:String = " "`,
			entities: map[string]any{},
		},
		{
			name:     "bookkeeping special",
			sequence: "bookkeeping special special:yes",
			entities: map[string]any{},
		},
		{
			name:     "bookkeeping choice",
			sequence: "bookkeeping choice 2",
			entities: map[string]any{},
		},
		{
			name:     "bookkeeping answer",
			sequence: "bookkeeping answer NUMBER_0",
			entities: map[string]any{"NUMBER_0": 42.0},
		},
		{
			name:     "executor program",
			sequence: "executor = USERNAME_0 : now => @com.twitter.post param:status:String = QUOTED_STRING_0",
			entities: map[string]any{"USERNAME_0": "bob", "QUOTED_STRING_0": "hi"},
		},
		{
			name:     "dialogue state with history",
			sequence: "$dialogue @org.thingpedia.dialogue.transaction.execute ; now => @com.twitter.post param:status:String = QUOTED_STRING_0 #[ confirm = enum:confirmed ] ;",
			entities: map[string]any{"QUOTED_STRING_0": "hello"},
		},
		{
			name:     "dialogue state with results",
			sequence: "$dialogue @org.thingpedia.dialogue.transaction.sys_display_result ; now => @com.xkcd.get_comic => notify #[ results = [ { param:number = NUMBER_0 } ] ] #[ count = NUMBER_1 ] #[ more = true ] ;",
			entities: map[string]any{"NUMBER_0": 1234.0, "NUMBER_1": 55.0},
		},
		{
			name:     "monitor on new parameter",
			sequence: "monitor ( @com.gmail.inbox ) on new param:sender_name => notify",
			entities: map[string]any{},
		},
		{
			name:     "date edge value",
			sequence: "now => @org.thingpedia.weather.sunrise param:date:Date = start_of unit:week => notify",
			entities: map[string]any{},
		},
		{
			name:     "generic entity",
			sequence: "now => @com.spotify.play_song param:song:Entity(com.spotify:song) = GENERIC_ENTITY_com.spotify:song_0",
			entities: map[string]any{
				"GENERIC_ENTITY_com.spotify:song_0": map[string]any{"value": "spotify:track:123", "display": "bohemian rhapsody"},
			},
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			assert := assert.New(t)

			ast, err := FromNN(tc.sequence, tc.entities)
			if !assert.NoError(err, "parse failed") {
				return
			}

			opts := reserializeOpts
			opts.ExplicitStrings = tc.explicitStrings

			allocated := EntityMap{}
			seq, err := ToNN(ast, nil, allocated, opts)
			if !assert.NoError(err, "reserialize failed") {
				return
			}

			assert.Equal(tc.sequence, strings.Join(seq, " "))

			// parsing the reserialized sequence yields an equal AST
			reparsed, err := FromNN(seq, allocated)
			if assert.NoError(err, "reparse failed") {
				astStr := ast.(interface{ String() string }).String()
				reparsedStr := reparsed.(interface{ String() string }).String()
				assert.Equal(astStr, reparsedStr)
			}

			wantEntities, err := ParseEntityMap(tc.entities)
			if !assert.NoError(err) {
				return
			}
			assert.Equal(len(wantEntities), len(allocated), "entity bag size")
			for name, want := range wantEntities {
				got, ok := allocated[name]
				if !assert.True(ok, "missing entity %s", name) {
					continue
				}
				kind, _, _ := entityKindOf(name)
				assert.True(entitiesEqual(kind, want, got), "entity %s: want %v, got %v", name, want, got)
			}
		})
	}
}

func Test_ToNN_SentenceRetrieval(t *testing.T) {
	assert := assert.New(t)

	// parse with a placeholder, then serialize against a sentence that
	// contains the string: the sentence match must win over the bag
	ast, err := FromNN(
		"now => @com.twitter.post param:status:String = QUOTED_STRING_0",
		map[string]any{"QUOTED_STRING_0": "hello world"},
	)
	if !assert.NoError(err) {
		return
	}

	entities, err := ParseEntityMap(map[string]any{"QUOTED_STRING_0": "hello world"})
	if !assert.NoError(err) {
		return
	}
	seq, err := ToNN(ast, []string{"post", "hello", "world", "on", "twitter"}, entities, SerializeOptions{TypeAnnotations: true})
	if !assert.NoError(err) {
		return
	}
	assert.Equal(`now => @com.twitter.post param:status:String = " hello world "`, strings.Join(seq, " "))
}

func Test_ToNN_StableEntityReference(t *testing.T) {
	assert := assert.New(t)

	// the same value twice uses the same placeholder both times
	ast, err := FromNN(
		"now => @com.xkcd.get_comic param:number:Number = NUMBER_0 => @com.twitter.post_picture param:count:Number = NUMBER_0",
		map[string]any{"NUMBER_0": 1234.0},
	)
	if !assert.NoError(err) {
		return
	}

	entities, err := ParseEntityMap(map[string]any{"NUMBER_0": 1234.0})
	if !assert.NoError(err) {
		return
	}
	seq, err := ToNN(ast, nil, entities, SerializeOptions{TypeAnnotations: true})
	if !assert.NoError(err) {
		return
	}
	assert.Equal(2, strings.Count(strings.Join(seq, " "), "NUMBER_0"))
}

func Test_FromNN_ASTShape(t *testing.T) {
	assert := assert.New(t)

	ast, err := FromNN("monitor ( @com.xkcd.get_comic ) => notify", map[string]any{})
	if !assert.NoError(err) {
		return
	}

	prog, ok := ast.(syntax.Program)
	if !assert.True(ok, "expected a Program, got %T", ast) {
		return
	}
	if !assert.Len(prog.Statements, 1) {
		return
	}
	rule, ok := prog.Statements[0].(syntax.Rule)
	if !assert.True(ok, "expected a Rule, got %T", prog.Statements[0]) {
		return
	}
	monitor, ok := rule.Stream.(syntax.MonitorStream)
	if !assert.True(ok, "expected a MonitorStream, got %T", rule.Stream) {
		return
	}
	inv, ok := monitor.Table.(syntax.InvocationTable)
	if !assert.True(ok) {
		return
	}
	assert.Equal("com.xkcd", inv.Invocation.Selector.Kind)
	assert.Equal("get_comic", inv.Invocation.Channel)
	if assert.Len(rule.Actions, 1) {
		assert.Equal(syntax.ActionNotify, rule.Actions[0].ActionType())
	}
}

func Test_FromNN_SliceShape(t *testing.T) {
	assert := assert.New(t)

	ast, err := FromNN(
		"now => ( @com.gmail.inbox ) [ 1 : NUMBER_0 ] => notify",
		map[string]any{"NUMBER_0": 15.0},
	)
	if !assert.NoError(err) {
		return
	}

	prog := ast.(syntax.Program)
	cmd := prog.Statements[0].(syntax.Command)
	slice, ok := cmd.Table.(syntax.SlicedTable)
	if !assert.True(ok, "expected a SlicedTable, got %T", cmd.Table) {
		return
	}
	assert.Equal(syntax.NumberValue{Value: 1}, slice.Base)
	assert.Equal(syntax.NumberValue{Value: 15}, slice.Limit)
}

func Test_ToNN_CanonicalOrdering(t *testing.T) {
	assert := assert.New(t)

	// two programs that differ only in parameter order serialize
	// identically
	mk := func(params []syntax.InputParam) syntax.Program {
		return syntax.Program{Statements: []syntax.Statement{
			syntax.Command{Actions: []syntax.Action{syntax.InvocationAction{Invocation: syntax.Invocation{
				Selector: syntax.DeviceSelector{Kind: "com.tesla"},
				Channel:  "set_climate",
				InParams: params,
			}}}},
		}}
	}

	p1 := mk([]syntax.InputParam{
		{Name: "zone", Value: syntax.EnumValue{Value: "front"}},
		{Name: "level", Value: syntax.NumberValue{Value: 3}},
	})
	p2 := mk([]syntax.InputParam{
		{Name: "level", Value: syntax.NumberValue{Value: 3}},
		{Name: "zone", Value: syntax.EnumValue{Value: "front"}},
	})

	seq1, err := ToNN(p1, nil, EntityMap{}, SerializeOptions{AllocateEntities: true})
	if !assert.NoError(err) {
		return
	}
	seq2, err := ToNN(p2, nil, EntityMap{}, SerializeOptions{AllocateEntities: true})
	if !assert.NoError(err) {
		return
	}
	assert.Equal(seq1, seq2)
}

func Test_ToNN_Unsynthesizable(t *testing.T) {
	testCases := []struct {
		name string
		prog syntax.Program
	}{
		{
			name: "multiple statements",
			prog: syntax.Program{Statements: []syntax.Statement{
				syntax.Command{Actions: []syntax.Action{syntax.NotifyAction{}}},
				syntax.Command{Actions: []syntax.Action{syntax.NotifyAction{}}},
			}},
		},
		{
			name: "class definition",
			prog: syntax.Program{
				Classes:    []syntax.ClassDef{{Kind: "com.foo"}},
				Statements: []syntax.Statement{syntax.Command{Actions: []syntax.Action{syntax.NotifyAction{}}}},
			},
		},
		{
			name: "multiple actions in a command",
			prog: syntax.Program{Statements: []syntax.Statement{
				syntax.Command{Actions: []syntax.Action{syntax.NotifyAction{}, syntax.NotifyAction{}}},
			}},
		},
		{
			name: "always false filter",
			prog: syntax.Program{Statements: []syntax.Statement{
				syntax.Command{
					Table: syntax.FilteredTable{
						Table: syntax.InvocationTable{Invocation: syntax.Invocation{
							Selector: syntax.DeviceSelector{Kind: "com.gmail"}, Channel: "inbox",
						}},
						Filter: syntax.FalseExpression{},
					},
					Actions: []syntax.Action{syntax.NotifyAction{}},
				},
			}},
		},
		{
			name: "event field reference",
			prog: syntax.Program{Statements: []syntax.Statement{
				syntax.Command{Actions: []syntax.Action{syntax.InvocationAction{Invocation: syntax.Invocation{
					Selector: syntax.DeviceSelector{Kind: "com.twitter"},
					Channel:  "post",
					InParams: []syntax.InputParam{{Name: "status", Value: syntax.EventValue{Name: "title"}}},
				}}}},
			}},
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			assert := assert.New(t)

			_, err := ToNN(tc.prog, nil, EntityMap{}, SerializeOptions{AllocateEntities: true})
			assert.Error(err)
			var unsynth UnsynthesizableError
			assert.ErrorAs(err, &unsynth)
		})
	}
}

func Test_ParseReductionSequence(t *testing.T) {
	assert := assert.New(t)

	reductions, err := ParseReductionSequence("monitor ( @com.xkcd.get_comic ) => notify", map[string]any{})
	if !assert.NoError(err) {
		return
	}
	assert.NotEmpty(reductions)

	// the reduction sequence is deterministic
	again, err := ParseReductionSequence("monitor ( @com.xkcd.get_comic ) => notify", map[string]any{})
	if !assert.NoError(err) {
		return
	}
	assert.Equal(reductions, again)
}
