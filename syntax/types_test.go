package syntax

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_ParseType_RoundTrip(t *testing.T) {
	testCases := []struct {
		name  string
		input string
	}{
		{name: "string", input: "String"},
		{name: "number", input: "Number"},
		{name: "boolean", input: "Boolean"},
		{name: "date", input: "Date"},
		{name: "time", input: "Time"},
		{name: "location", input: "Location"},
		{name: "currency", input: "Currency"},
		{name: "measure", input: "Measure(ms)"},
		{name: "entity", input: "Entity(tt:username)"},
		{name: "enum", input: "Enum(on,off)"},
		{name: "array of string", input: "Array(String)"},
		{name: "array of entity", input: "Array(Entity(tt:hashtag))"},
		{name: "recurrent time", input: "RecurrentTimeSpecification"},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			assert := assert.New(t)

			parsed, err := ParseType(tc.input)
			if !assert.NoError(err) {
				return
			}
			assert.Equal(tc.input, parsed.String())
		})
	}
}

func Test_ParseType_Unknown(t *testing.T) {
	assert := assert.New(t)

	// an unknown bare name is unchecked, not an error
	parsed, err := ParseType("SomethingElse")
	assert.NoError(err)
	assert.True(parsed.IsAny())

	// empty means no annotation
	parsed, err = ParseType("")
	assert.NoError(err)
	assert.True(parsed.IsAny())

	// malformed compounds are errors
	_, err = ParseType("Measure(ms")
	assert.Error(err)
}

func Test_Type_Equal(t *testing.T) {
	assert := assert.New(t)

	assert.True(StringType.Equal(StringType))
	assert.True(MeasureType("ms").Equal(MeasureType("ms")))
	assert.False(MeasureType("ms").Equal(MeasureType("m")))
	assert.True(EntityType("tt:username").Equal(EntityType("tt:username")))
	assert.False(StringType.Equal(NumberType))
	assert.False(StringType.Equal("String"))
}

func Test_FunctionSchema_TypeOf(t *testing.T) {
	assert := assert.New(t)

	schema := &FunctionSchema{
		Kind:    "com.twitter",
		Channel: "post",
		Params: []Param{
			{Name: "status", Type: StringType, Input: true},
		},
	}

	got, ok := schema.TypeOf("status")
	assert.True(ok)
	assert.True(got.Equal(StringType))

	_, ok = schema.TypeOf("nope")
	assert.False(ok)

	var nilSchema *FunctionSchema
	_, ok = nilSchema.TypeOf("status")
	assert.False(ok)
}
