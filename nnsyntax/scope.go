package nnsyntax

import "github.com/dekarrin/thingtalk/syntax"

// scope is a chained mapping from parameter names to their declared types.
// Each serialization of a node gets its own chain; an inner scope inherits
// everything visible in the outer one. Lookup walks from innermost to
// outermost, so shadowing works the way lexical scoping does.
type scope struct {
	parent *scope
	params map[string]syntax.Type
}

func newScope(parent *scope) *scope {
	return &scope{parent: parent, params: map[string]syntax.Type{}}
}

// add declares a parameter in this scope level.
func (s *scope) add(name string, t syntax.Type) {
	s.params[name] = t
}

// addSchema declares every parameter of the given function schema.
func (s *scope) addSchema(schema *syntax.FunctionSchema) {
	if schema == nil {
		return
	}
	for i := range schema.Params {
		s.params[schema.Params[i].Name] = schema.Params[i].Type
	}
}

// lookup resolves a parameter name, walking outward through the chain. The
// second return is false when no level declares the name.
func (s *scope) lookup(name string) (syntax.Type, bool) {
	for cur := s; cur != nil; cur = cur.parent {
		if t, ok := cur.params[name]; ok {
			return t, true
		}
	}
	return syntax.AnyType, false
}
