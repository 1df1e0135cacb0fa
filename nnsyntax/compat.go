package nnsyntax

import (
	"fmt"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// file compat.go contains the forward-compatibility rewriter: ordered,
// version-gated transforms that rewrite token sequences produced by newer
// code so that older clients can still ingest them. The rewrite set is
// closed; there is no plug-in mechanism.

type compatRewrite struct {
	// appliesTo is the range of target versions that need the rewrite.
	appliesTo *semver.Constraints

	transform func(seq []string, entities EntityMap) []string
}

func mustConstraint(c string) *semver.Constraints {
	constraint, err := semver.NewConstraint(c)
	if err != nil {
		panic("malformed version constraint " + c + ": " + err.Error())
	}
	return constraint
}

// compatRewrites is applied in order. Every transform skips the contents
// of string literals by honoring the quote toggle.
var compatRewrites = []compatRewrite{
	{appliesTo: mustConstraint("< 1.9.0-alpha.1"), transform: stripDeviceNames},
	{appliesTo: mustConstraint("< 1.9.3"), transform: replaceDefaultTemperature},
	{appliesTo: mustConstraint("< 1.11.0-alpha.1"), transform: rewriteCurrencySyntax},
}

// ApplyCompatibility rewrites a token sequence for a client that speaks
// the given target version. The returned slice replaces the input; the
// entity bag is passed through to transforms but none of the current
// rewrites touch it.
func ApplyCompatibility(seq []string, entities EntityMap, targetVersion string) ([]string, error) {
	version, err := semver.NewVersion(targetVersion)
	if err != nil {
		return nil, fmt.Errorf("malformed target version %q: %w", targetVersion, err)
	}

	for _, rw := range compatRewrites {
		if rw.appliesTo.Check(version) {
			seq = rw.transform(seq, entities)
		}
	}
	return seq, nil
}

// stripDeviceNames removes "attribute:name = <value>" sequences; clients
// before 1.9.0-alpha.1 do not understand device-selector attributes.
func stripDeviceNames(seq []string, entities EntityMap) []string {
	out := make([]string, 0, len(seq))
	inString := false
	for i := 0; i < len(seq); i++ {
		tok := seq[i]
		if tok == `"` {
			inString = !inString
			out = append(out, tok)
			continue
		}
		if inString {
			out = append(out, tok)
			continue
		}

		if strings.HasPrefix(tok, "attribute:name") && i+1 < len(seq) && seq[i+1] == "=" {
			i++ // skip the "="
			if i+1 < len(seq) && seq[i+1] == `"` {
				// skip the whole quoted value
				i++
				for i+1 < len(seq) && seq[i+1] != `"` {
					i++
				}
				i++
			} else if i+1 < len(seq) {
				i++ // skip a single-token value
			}
			continue
		}
		out = append(out, tok)
	}
	return out
}

// replaceDefaultTemperature rewrites unit:defaultTemperature to unit:F;
// the locale-dependent unit did not exist before 1.9.3.
func replaceDefaultTemperature(seq []string, entities EntityMap) []string {
	out := make([]string, 0, len(seq))
	inString := false
	for _, tok := range seq {
		if tok == `"` {
			inString = !inString
		}
		if !inString && tok == "unit:defaultTemperature" {
			out = append(out, "unit:F")
			continue
		}
		out = append(out, tok)
	}
	return out
}

// rewriteCurrencySyntax rewrites "<number> unit:$<code>" into the older
// "new Currency ( <number> , unit:<code> )" construction.
func rewriteCurrencySyntax(seq []string, entities EntityMap) []string {
	out := make([]string, 0, len(seq))
	inString := false
	for i := 0; i < len(seq); i++ {
		tok := seq[i]
		if tok == `"` {
			inString = !inString
			out = append(out, tok)
			continue
		}
		if inString {
			out = append(out, tok)
			continue
		}

		if strings.HasPrefix(tok, "unit:$") && len(out) > 0 {
			number := out[len(out)-1]
			out = out[:len(out)-1]
			code := strings.TrimPrefix(tok, "unit:$")
			out = append(out, "new", "Currency", "(", number, ",", "unit:"+code, ")")
			continue
		}
		out = append(out, tok)
	}
	return out
}
