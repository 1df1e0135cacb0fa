package syntax

// PermissionFunctionKind enumerates the shapes of a permission function
// specifier.
type PermissionFunctionKind int

const (
	// PermStar allows any function of any device.
	PermStar PermissionFunctionKind = iota

	// PermClassStar allows any function of one device class.
	PermClassStar

	// PermSpecific allows one function, optionally restricted by a filter.
	PermSpecific
)

// PermissionFunction is the query or action part of a permission rule.
type PermissionFunction struct {
	Kind PermissionFunctionKind

	// Class is the device class, for PermClassStar and PermSpecific.
	Class string

	// Channel is the function name, for PermSpecific.
	Channel string

	// Filter restricts when the permission applies; nil means always.
	Filter BooleanExpression

	Schema *FunctionSchema
}

// ThingTalk returns the permission function written in the ThingTalk
// surface syntax.
func (pf PermissionFunction) ThingTalk() string {
	switch pf.Kind {
	case PermStar:
		return "*"
	case PermClassStar:
		return "@" + pf.Class + ".*"
	default:
		s := "@" + pf.Class + "." + pf.Channel
		if pf.Filter != nil {
			s += " filter " + pf.Filter.ThingTalk()
		}
		return s
	}
}

// String returns a compact structural representation.
func (pf PermissionFunction) String() string {
	switch pf.Kind {
	case PermStar:
		return "(permfn *)"
	case PermClassStar:
		return "(permfn @" + pf.Class + ".*)"
	default:
		s := "(permfn @" + pf.Class + "." + pf.Channel
		if pf.Filter != nil {
			s += " " + pf.Filter.String()
		}
		return s + ")"
	}
}

// PermissionRule grants a principal the right to run matching programs.
type PermissionRule struct {
	// Principal restricts who the rule applies to; nil means anyone.
	Principal Value

	Query  PermissionFunction
	Action PermissionFunction
}

// ThingTalk returns the permission rule written in the ThingTalk surface
// syntax.
func (pr PermissionRule) ThingTalk() string {
	principal := "true"
	if pr.Principal != nil {
		principal = "source == " + pr.Principal.ThingTalk()
	}
	return principal + " : " + pr.Query.ThingTalk() + " => " + pr.Action.ThingTalk() + ";"
}

// String returns a compact structural representation. Two permission rules
// are semantically identical if they produce identical String() output.
func (pr PermissionRule) String() string {
	s := "(policy"
	if pr.Principal != nil {
		s += " src=" + pr.Principal.String()
	}
	return s + " " + pr.Query.String() + " " + pr.Action.String() + ")"
}

// Equal returns whether the rule is semantically equal to another
// PermissionRule or *PermissionRule.
func (pr PermissionRule) Equal(o any) bool {
	other, ok := o.(PermissionRule)
	if !ok {
		otherPtr, ok := o.(*PermissionRule)
		if !ok {
			return false
		} else if otherPtr == nil {
			return false
		}
		other = *otherPtr
	}
	return pr.String() == other.String()
}
