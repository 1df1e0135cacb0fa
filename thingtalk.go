// Package thingtalk provides the ThingTalk virtual-assistant programming
// language AST together with its NN (neural) surface syntax: a linearized,
// token-level form of ThingTalk designed for sequence prediction models.
//
// The AST lives in the syntax subpackage; the token mapping lives in the
// nnsyntax subpackage. This package re-exports the high-level conversion
// entry points for callers that do not need the full API surface.
package thingtalk

import (
	"github.com/dekarrin/thingtalk/nnsyntax"
	"github.com/dekarrin/thingtalk/syntax"
)

// Program is a complete ThingTalk program.
type Program = syntax.Program

// EntityMap is a bag of entities: placeholder names mapped to the literal
// values they stand for.
type EntityMap = nnsyntax.EntityMap

// SerializeOptions controls ToNN.
type SerializeOptions = nnsyntax.SerializeOptions

// ToNN serializes an AST node into its NN token sequence. See
// nnsyntax.ToNN.
func ToNN(node any, sentence []string, entities EntityMap, opts SerializeOptions) ([]string, error) {
	return nnsyntax.ToNN(node, sentence, entities, opts)
}

// FromNN parses an NN token sequence back into its AST. See
// nnsyntax.FromNN.
func FromNN(sequence any, entities any) (any, error) {
	return nnsyntax.FromNN(sequence, entities)
}

// ApplyCompatibility rewrites a token sequence for a client that speaks an
// older version of the NN syntax. See nnsyntax.ApplyCompatibility.
func ApplyCompatibility(seq []string, entities EntityMap, targetVersion string) ([]string, error) {
	return nnsyntax.ApplyCompatibility(seq, entities, targetVersion)
}
