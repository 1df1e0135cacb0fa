package syntax

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func Test_Value_ThingTalk(t *testing.T) {
	testCases := []struct {
		name   string
		value  Value
		expect string
	}{
		{name: "true", value: BooleanValue{Value: true}, expect: "true"},
		{name: "false", value: BooleanValue{Value: false}, expect: "false"},
		{name: "string", value: StringValue{Value: "hello"}, expect: `"hello"`},
		{name: "string with quote", value: StringValue{Value: `say "hi"`}, expect: `"say \"hi\""`},
		{name: "integral number", value: NumberValue{Value: 42}, expect: "42"},
		{name: "fractional number", value: NumberValue{Value: 1.5}, expect: "1.5"},
		{name: "measure", value: MeasureValue{Value: 10, Unit: "ms"}, expect: "10ms"},
		{name: "currency", value: CurrencyValue{Value: 10.5, Code: "usd"}, expect: "new Currency(10.5, usd)"},
		{name: "enum", value: EnumValue{Value: "off"}, expect: "enum(off)"},
		{name: "event", value: EventValue{}, expect: "$event"},
		{name: "event field", value: EventValue{Name: "source"}, expect: "$event.source"},
		{name: "varref", value: VarRefValue{Name: "text"}, expect: "text"},
		{name: "undefined", value: UndefinedValue{}, expect: "$?"},
		{
			name:   "absolute location",
			value:  LocationValue{Value: LocationSpec{Kind: LocationAbsolute, Lat: 37.44, Lon: -122.17, Display: "palo alto"}},
			expect: `new Location(37.44, -122.17, "palo alto")`,
		},
		{
			name:   "relative location",
			value:  LocationValue{Value: LocationSpec{Kind: LocationRelative, RelativeTag: "home"}},
			expect: "$location.home",
		},
		{
			name:   "time",
			value:  TimeValue{Value: TimeSpec{Kind: TimeAbsolute, Hour: 9, Minute: 30}},
			expect: "new Time(9, 30)",
		},
		{
			name:   "date now",
			value:  DateValue{Value: DateSpec{Kind: DateNow}},
			expect: "$now",
		},
		{
			name:   "date edge",
			value:  DateValue{Value: DateSpec{Kind: DateEdge, Edge: "start_of", Unit: "week"}},
			expect: "$start_of(week)",
		},
		{
			name:   "absolute date",
			value:  DateValue{Value: DateSpec{Kind: DateAbsolute, Abs: time.Date(2018, 6, 23, 0, 0, 0, 0, time.UTC)}},
			expect: `new Date("2018-06-23T00:00:00Z")`,
		},
		{
			name:   "entity with display",
			value:  EntityValue{Value: "hue-1", Type: "tt:device", Display: "hue lights"},
			expect: `"hue-1"^^tt:device("hue lights")`,
		},
		{
			name:   "array",
			value:  ArrayValue{Values: []Value{NumberValue{Value: 1}, NumberValue{Value: 2}}},
			expect: "[1, 2]",
		},
		{
			name:   "computation",
			value:  ComputationValue{Op: "count", Operands: []Value{VarRefValue{Name: "messages"}}},
			expect: "count(messages)",
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expect, tc.value.ThingTalk())
		})
	}
}

func Test_ObjectValue_SortsFields(t *testing.T) {
	assert := assert.New(t)

	v := ObjectValue{Fields: map[string]Value{
		"zeta":  NumberValue{Value: 1},
		"alpha": NumberValue{Value: 2},
	}}
	assert.Equal("{ alpha=2, zeta=1 }", v.ThingTalk())
}

func Test_Value_Equal(t *testing.T) {
	assert := assert.New(t)

	assert.True(NumberValue{Value: 1}.Equal(NumberValue{Value: 1}))
	assert.False(NumberValue{Value: 1}.Equal(NumberValue{Value: 2}))
	assert.False(NumberValue{Value: 1}.Equal(StringValue{Value: "1"}))
	assert.False(NumberValue{Value: 1}.Equal(42))
}

func Test_Program_ThingTalk(t *testing.T) {
	assert := assert.New(t)

	prog := Program{Statements: []Statement{
		Rule{
			Stream: MonitorStream{Table: InvocationTable{Invocation: Invocation{
				Selector: DeviceSelector{Kind: "com.xkcd"},
				Channel:  "get_comic",
			}}},
			Actions: []Action{NotifyAction{}},
		},
	}}

	assert.Equal("monitor (@com.xkcd.get_comic()) => notify;", prog.ThingTalk())
}

func Test_Invocation_SortsParams(t *testing.T) {
	assert := assert.New(t)

	inv := Invocation{
		Selector: DeviceSelector{Kind: "com.tesla"},
		Channel:  "set_climate",
		InParams: []InputParam{
			{Name: "zone", Value: EnumValue{Value: "front"}},
			{Name: "level", Value: NumberValue{Value: 3}},
		},
	}
	assert.Equal("@com.tesla.set_climate(level=3, zone=enum(front))", inv.ThingTalk())

	// sorting does not mutate the original order
	assert.Equal("zone", inv.InParams[0].Name)
}

func Test_Statement_Equal(t *testing.T) {
	assert := assert.New(t)

	mk := func() Statement {
		return Command{
			Table: InvocationTable{Invocation: Invocation{
				Selector: DeviceSelector{Kind: "com.gmail"}, Channel: "inbox",
			}},
			Actions: []Action{NotifyAction{}},
		}
	}
	assert.True(mk().Equal(mk()))
	assert.False(mk().Equal(Command{Actions: []Action{NotifyAction{}}}))
}

func Test_OptimizeFilter(t *testing.T) {
	testCases := []struct {
		name   string
		input  BooleanExpression
		expect BooleanExpression
	}{
		{
			name: "and with true drops it",
			input: AndExpression{Operands: []BooleanExpression{
				TrueExpression{},
				AtomExpression{Name: "x", Op: "==", Value: NumberValue{Value: 1}},
			}},
			expect: AtomExpression{Name: "x", Op: "==", Value: NumberValue{Value: 1}},
		},
		{
			name: "and with false is false",
			input: AndExpression{Operands: []BooleanExpression{
				FalseExpression{},
				AtomExpression{Name: "x", Op: "==", Value: NumberValue{Value: 1}},
			}},
			expect: FalseExpression{},
		},
		{
			name: "or with true is true",
			input: OrExpression{Operands: []BooleanExpression{
				TrueExpression{},
				AtomExpression{Name: "x", Op: "==", Value: NumberValue{Value: 1}},
			}},
			expect: TrueExpression{},
		},
		{
			name: "nested ands flatten",
			input: AndExpression{Operands: []BooleanExpression{
				AndExpression{Operands: []BooleanExpression{
					AtomExpression{Name: "x", Op: "==", Value: NumberValue{Value: 1}},
					AtomExpression{Name: "y", Op: "==", Value: NumberValue{Value: 2}},
				}},
				AtomExpression{Name: "z", Op: "==", Value: NumberValue{Value: 3}},
			}},
			expect: AndExpression{Operands: []BooleanExpression{
				AtomExpression{Name: "x", Op: "==", Value: NumberValue{Value: 1}},
				AtomExpression{Name: "y", Op: "==", Value: NumberValue{Value: 2}},
				AtomExpression{Name: "z", Op: "==", Value: NumberValue{Value: 3}},
			}},
		},
		{
			name:   "empty and is true",
			input:  AndExpression{},
			expect: TrueExpression{},
		},
		{
			name: "duplicate operands collapse",
			input: OrExpression{Operands: []BooleanExpression{
				AtomExpression{Name: "x", Op: "==", Value: NumberValue{Value: 1}},
				AtomExpression{Name: "x", Op: "==", Value: NumberValue{Value: 1}},
			}},
			expect: AtomExpression{Name: "x", Op: "==", Value: NumberValue{Value: 1}},
		},
		{
			name:   "double negation cancels",
			input:  NotExpression{Expr: NotExpression{Expr: AtomExpression{Name: "x", Op: "==", Value: NumberValue{Value: 1}}}},
			expect: AtomExpression{Name: "x", Op: "==", Value: NumberValue{Value: 1}},
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			got := OptimizeFilter(tc.input)
			assert.True(t, tc.expect.Equal(got), "want %s, got %s", tc.expect.String(), got.String())
		})
	}
}
