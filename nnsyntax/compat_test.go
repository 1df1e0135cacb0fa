package nnsyntax

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_ApplyCompatibility(t *testing.T) {
	testCases := []struct {
		name    string
		input   []string
		version string
		expect  []string
	}{
		{
			name: "device name stripped for pre-1.9 clients",
			input: []string{
				"now", "=>", "@light-bulb.set_power",
				"attribute:name:String", "=", `"`, "kitchen", `"`,
				"param:power:Enum(on,off)", "=", "enum:off",
			},
			version: "1.8.0",
			expect: []string{
				"now", "=>", "@light-bulb.set_power",
				"param:power:Enum(on,off)", "=", "enum:off",
			},
		},
		{
			name: "device name kept for new clients",
			input: []string{
				"now", "=>", "@light-bulb.set_power",
				"attribute:name:String", "=", `"`, "kitchen", `"`,
				"param:power:Enum(on,off)", "=", "enum:off",
			},
			version: "1.9.0",
			expect: []string{
				"now", "=>", "@light-bulb.set_power",
				"attribute:name:String", "=", `"`, "kitchen", `"`,
				"param:power:Enum(on,off)", "=", "enum:off",
			},
		},
		{
			name:    "default temperature unit replaced",
			input:   []string{"now", "=>", "@thermostat.set", "param:value:Measure(C)", "=", "NUMBER_0", "unit:defaultTemperature"},
			version: "1.9.2",
			expect:  []string{"now", "=>", "@thermostat.set", "param:value:Measure(C)", "=", "NUMBER_0", "unit:F"},
		},
		{
			name:    "default temperature unit kept after 1.9.3",
			input:   []string{"NUMBER_0", "unit:defaultTemperature"},
			version: "1.9.3",
			expect:  []string{"NUMBER_0", "unit:defaultTemperature"},
		},
		{
			name:    "currency syntax rewritten for old clients",
			input:   []string{"now", "=>", "@com.wallet.pay", "param:amount:Currency", "=", "NUMBER_0", "unit:$usd"},
			version: "1.10.0",
			expect:  []string{"now", "=>", "@com.wallet.pay", "param:amount:Currency", "=", "new", "Currency", "(", "NUMBER_0", ",", "unit:usd", ")"},
		},
		{
			name:    "currency syntax kept for current clients",
			input:   []string{"NUMBER_0", "unit:$usd"},
			version: "1.11.0",
			expect:  []string{"NUMBER_0", "unit:$usd"},
		},
		{
			name:    "strings are not rewritten",
			input:   []string{`"`, "unit:defaultTemperature", `"`},
			version: "1.8.0",
			expect:  []string{`"`, "unit:defaultTemperature", `"`},
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			assert := assert.New(t)

			got, err := ApplyCompatibility(tc.input, EntityMap{}, tc.version)
			if !assert.NoError(err) {
				return
			}
			assert.Equal(tc.expect, got)
		})
	}
}

func Test_ApplyCompatibility_BadVersion(t *testing.T) {
	_, err := ApplyCompatibility([]string{"now"}, EntityMap{}, "not-a-version")
	assert.Error(t, err)
}
