package syntax

import (
	"sort"
	"strings"
)

// InputParam binds an input parameter of an invocation to a value. Type is
// the declared type if an annotation or schema provided one.
type InputParam struct {
	Name  string
	Type  Type
	Value Value
}

// ThingTalk returns the binding written in the ThingTalk surface syntax.
func (ip InputParam) ThingTalk() string {
	return ip.Name + "=" + ip.Value.ThingTalk()
}

// String returns a compact structural representation of the binding.
func (ip InputParam) String() string {
	return "(in " + ip.Name + " " + ip.Value.String() + ")"
}

// SortInputParams sorts bindings in place by parameter name. Invocations
// always print their parameters in this order, so two invocations that
// differ only in binding order are identical.
func SortInputParams(params []InputParam) {
	sort.Slice(params, func(i, j int) bool {
		return params[i].Name < params[j].Name
	})
}

// DeviceSelector identifies the device an invocation runs on: a Thingpedia
// class kind, optionally narrowed to one concrete device by id or widened to
// all devices of the kind, with free-form attributes such as the
// user-visible device name.
type DeviceSelector struct {
	Kind string

	// ID is the concrete device, when the user selected one. An ID equal
	// to Kind means the sole device of the kind and is left implicit.
	ID string

	// All selects every device of the kind rather than one.
	All bool

	// Attributes are additional selector attributes, such as name.
	Attributes []InputParam
}

// SortedAttributes returns the attributes sorted by name.
func (sel DeviceSelector) SortedAttributes() []InputParam {
	attrs := make([]InputParam, len(sel.Attributes))
	copy(attrs, sel.Attributes)
	SortInputParams(attrs)
	return attrs
}

// ThingTalk returns the selector written in the ThingTalk surface syntax.
func (sel DeviceSelector) ThingTalk() string {
	s := "@" + sel.Kind
	var mods []string
	if sel.All {
		mods = append(mods, "all=true")
	}
	if sel.ID != "" && sel.ID != sel.Kind {
		mods = append(mods, "id="+quoteString(sel.ID))
	}
	for _, attr := range sel.SortedAttributes() {
		mods = append(mods, attr.ThingTalk())
	}
	if len(mods) > 0 {
		s += "(" + strings.Join(mods, ", ") + ")"
	}
	return s
}

// Invocation names one channel of a device and binds some of its input
// parameters.
type Invocation struct {
	Selector DeviceSelector
	Channel  string
	InParams []InputParam
	Schema   *FunctionSchema
}

// SortedInParams returns the input parameters sorted by name.
func (inv Invocation) SortedInParams() []InputParam {
	params := make([]InputParam, len(inv.InParams))
	copy(params, inv.InParams)
	SortInputParams(params)
	return params
}

// ThingTalk returns the invocation written in the ThingTalk surface syntax.
func (inv Invocation) ThingTalk() string {
	parts := make([]string, 0, len(inv.InParams))
	for _, ip := range inv.SortedInParams() {
		parts = append(parts, ip.ThingTalk())
	}
	return inv.Selector.ThingTalk() + "." + inv.Channel + "(" + strings.Join(parts, ", ") + ")"
}

// String returns a compact structural representation of the invocation.
func (inv Invocation) String() string {
	parts := make([]string, 0, len(inv.InParams))
	for _, ip := range inv.SortedInParams() {
		parts = append(parts, ip.String())
	}
	s := "(invoke " + inv.Selector.ThingTalk() + "." + inv.Channel
	if len(parts) > 0 {
		s += " " + strings.Join(parts, " ")
	}
	return s + ")"
}

// Equal returns whether the invocation is semantically equal to another
// Invocation or *Invocation.
func (inv Invocation) Equal(o any) bool {
	other, ok := o.(Invocation)
	if !ok {
		otherPtr, ok := o.(*Invocation)
		if !ok {
			return false
		} else if otherPtr == nil {
			return false
		}
		other = *otherPtr
	}
	return inv.String() == other.String()
}
