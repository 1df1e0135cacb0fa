package nnsyntax

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func Test_entitiesEqual(t *testing.T) {
	testCases := []struct {
		name   string
		kind   string
		a      any
		b      any
		expect bool
	}{
		{
			name: "currencies equal", kind: TermCurrency,
			a: CurrencyEntity{Code: "usd", Value: 10}, b: CurrencyEntity{Code: "usd", Value: 10},
			expect: true,
		},
		{
			name: "currencies differ by code", kind: TermCurrency,
			a: CurrencyEntity{Code: "usd", Value: 10}, b: CurrencyEntity{Code: "eur", Value: 10},
			expect: false,
		},
		{
			name: "measures equal", kind: "MEASURE_ms",
			a: MeasureEntity{Unit: "h", Value: 1}, b: MeasureEntity{Unit: "h", Value: 1},
			expect: true,
		},
		{
			name: "measures differ by unit", kind: "MEASURE_ms",
			a: MeasureEntity{Unit: "h", Value: 1}, b: MeasureEntity{Unit: "min", Value: 1},
			expect: false,
		},
		{
			name: "times equal ignoring unset second", kind: TermTime,
			a: TimeEntity{Hour: 9, Minute: 30}, b: TimeEntity{Hour: 9, Minute: 30, Second: 0},
			expect: true,
		},
		{
			name: "dates compare by epoch millis", kind: TermDate,
			a:      time.Date(2018, 6, 23, 0, 0, 0, 0, time.UTC),
			b:      "2018-06-23T00:00:00Z",
			expect: true,
		},
		{
			name: "date entity resolves before comparing", kind: TermDate,
			a:      DateEntity{Year: 2018, Month: 6, Day: 23, Hour: -1, Minute: -1, Second: -1},
			b:      time.Date(2018, 6, 23, 0, 0, 0, 0, time.UTC),
			expect: true,
		},
		{
			name: "locations within tolerance", kind: TermLocation,
			a:      LocationEntity{Latitude: 37.442, Longitude: -122.171},
			b:      LocationEntity{Latitude: 37.447, Longitude: -122.168},
			expect: true,
		},
		{
			name: "locations outside tolerance", kind: TermLocation,
			a:      LocationEntity{Latitude: 37.44, Longitude: -122.17},
			b:      LocationEntity{Latitude: 37.48, Longitude: -122.17},
			expect: false,
		},
		{
			name: "unresolved locations match by display", kind: TermLocation,
			a:      LocationEntity{Latitude: math.NaN(), Longitude: math.NaN(), Display: "palo alto"},
			b:      LocationEntity{Latitude: math.NaN(), Longitude: math.NaN(), Display: "palo alto"},
			expect: true,
		},
		{
			name: "unresolved location never matches coordinates", kind: TermLocation,
			a:      LocationEntity{Latitude: math.NaN(), Longitude: math.NaN(), Display: "palo alto"},
			b:      LocationEntity{Latitude: 37.44, Longitude: -122.17, Display: "palo alto"},
			expect: false,
		},
		{
			name: "generic entities match by value", kind: "GENERIC_ENTITY_tt:device",
			a:      GenericEntity{Value: "hue-1", Display: "hue lights"},
			b:      GenericEntity{Value: "hue-1", Display: "philips hue"},
			expect: true,
		},
		{
			name: "generic entities with empty values match by display", kind: "GENERIC_ENTITY_tt:device",
			a:      GenericEntity{Display: "hue lights"},
			b:      GenericEntity{Display: "hue lights"},
			expect: true,
		},
		{
			name: "generic entity value mismatch", kind: "GENERIC_ENTITY_tt:device",
			a:      GenericEntity{Value: "hue-1"},
			b:      GenericEntity{Value: "hue-2"},
			expect: false,
		},
		{
			name: "numbers", kind: TermNumber,
			a: 1234.0, b: 1234.0, expect: true,
		},
		{
			name: "strings", kind: TermQuotedString,
			a: "hello", b: "hello", expect: true,
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expect, entitiesEqual(tc.kind, tc.a, tc.b))
		})
	}
}

func Test_entityKindOf(t *testing.T) {
	testCases := []struct {
		name       string
		input      string
		expectKind string
		expectNum  int
		expectOK   bool
	}{
		{name: "number", input: "NUMBER_0", expectKind: "NUMBER", expectNum: 0, expectOK: true},
		{name: "quoted string", input: "QUOTED_STRING_12", expectKind: "QUOTED_STRING", expectNum: 12, expectOK: true},
		{name: "measure keeps base unit", input: "MEASURE_ms_3", expectKind: "MEASURE_ms", expectNum: 3, expectOK: true},
		{name: "generic entity keeps type", input: "GENERIC_ENTITY_tt:device_0", expectKind: "GENERIC_ENTITY_tt:device", expectNum: 0, expectOK: true},
		{name: "no number suffix", input: "NUMBER", expectOK: false},
		{name: "not a placeholder", input: "monitor", expectOK: false},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			assert := assert.New(t)
			kind, num, ok := entityKindOf(tc.input)
			assert.Equal(tc.expectOK, ok)
			if tc.expectOK {
				assert.Equal(tc.expectKind, kind)
				assert.Equal(tc.expectNum, num)
			}
		})
	}
}

func Test_ParseEntityMap(t *testing.T) {
	assert := assert.New(t)

	parsed, err := ParseEntityMap(map[string]any{
		"QUOTED_STRING_0": "hello",
		"NUMBER_0":        1234.0,
		"CURRENCY_0":      map[string]any{"unit": "usd", "value": 10.5},
		"TIME_0":          map[string]any{"hour": 9.0, "minute": 30.0},
		"DATE_0":          "2018-06-23T00:00:00Z",
		"LOCATION_0":      map[string]any{"latitude": 37.44, "longitude": -122.17, "display": "palo alto"},
		"GENERIC_ENTITY_tt:device_0": map[string]any{
			"value": "hue-1", "display": "hue lights",
		},
	})
	if !assert.NoError(err) {
		return
	}

	assert.Equal("hello", parsed["QUOTED_STRING_0"])
	assert.Equal(1234.0, parsed["NUMBER_0"])
	assert.Equal(CurrencyEntity{Code: "usd", Value: 10.5}, parsed["CURRENCY_0"])
	assert.Equal(TimeEntity{Hour: 9, Minute: 30}, parsed["TIME_0"])
	assert.Equal(time.Date(2018, 6, 23, 0, 0, 0, 0, time.UTC), parsed["DATE_0"])
	assert.Equal(LocationEntity{Latitude: 37.44, Longitude: -122.17, Display: "palo alto"}, parsed["LOCATION_0"])
	assert.Equal(GenericEntity{Value: "hue-1", Display: "hue lights"}, parsed["GENERIC_ENTITY_tt:device_0"])
}

func Test_ParseEntityMap_UnresolvedLocation(t *testing.T) {
	assert := assert.New(t)

	parsed, err := ParseEntityMap(map[string]any{
		"LOCATION_0": map[string]any{"display": "somewhere"},
	})
	if !assert.NoError(err) {
		return
	}
	loc := parsed["LOCATION_0"].(LocationEntity)
	assert.True(loc.Unresolved())
	assert.Equal("somewhere", loc.Display)
}
