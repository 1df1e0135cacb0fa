package syntax

import (
	"fmt"
	"strings"
)

// TypeKind enumerates the kinds of ThingTalk types this package models. This
// is the subset of the full ThingTalk type system needed to annotate
// parameters in the NN surface syntax; it does not attempt inference or
// schema loading.
type TypeKind int

const (
	TypeAny TypeKind = iota
	TypeBoolean
	TypeString
	TypeNumber
	TypeCurrency
	TypeDate
	TypeTime
	TypeLocation
	TypeRecurrentTimeSpec
	TypeMeasure
	TypeEnum
	TypeEntity
	TypeArray
)

// Type is a ThingTalk type. The zero value is the unknown type Any, which is
// what parameters parse to when no annotation is present.
type Type struct {
	Kind TypeKind

	// Unit is the base unit of a Measure type.
	Unit string

	// EntityKind is the fully-qualified kind of an Entity type, such as
	// "tt:username".
	EntityKind string

	// Entries are the allowed values of an Enum type, in declaration order.
	Entries []string

	// Elem is the element type of an Array type.
	Elem *Type
}

// Convenience constructors for the simple types.
var (
	AnyType      = Type{Kind: TypeAny}
	BooleanType  = Type{Kind: TypeBoolean}
	StringType   = Type{Kind: TypeString}
	NumberType   = Type{Kind: TypeNumber}
	CurrencyType = Type{Kind: TypeCurrency}
	DateType     = Type{Kind: TypeDate}
	TimeType     = Type{Kind: TypeTime}
	LocationType = Type{Kind: TypeLocation}
)

// MeasureType returns the Measure type with the given base unit.
func MeasureType(unit string) Type {
	return Type{Kind: TypeMeasure, Unit: unit}
}

// EntityType returns the Entity type with the given fully-qualified kind.
func EntityType(kind string) Type {
	return Type{Kind: TypeEntity, EntityKind: kind}
}

// EnumType returns the Enum type with the given entries.
func EnumType(entries ...string) Type {
	return Type{Kind: TypeEnum, Entries: entries}
}

// ArrayType returns the Array type with the given element type.
func ArrayType(elem Type) Type {
	return Type{Kind: TypeArray, Elem: &elem}
}

// IsAny returns whether the type is the unknown type.
func (t Type) IsAny() bool {
	return t.Kind == TypeAny
}

// String returns the canonical spelling of the type as it appears in
// param:<name>:<type> annotations.
func (t Type) String() string {
	switch t.Kind {
	case TypeAny:
		return "Any"
	case TypeBoolean:
		return "Boolean"
	case TypeString:
		return "String"
	case TypeNumber:
		return "Number"
	case TypeCurrency:
		return "Currency"
	case TypeDate:
		return "Date"
	case TypeTime:
		return "Time"
	case TypeLocation:
		return "Location"
	case TypeRecurrentTimeSpec:
		return "RecurrentTimeSpecification"
	case TypeMeasure:
		return "Measure(" + t.Unit + ")"
	case TypeEnum:
		return "Enum(" + strings.Join(t.Entries, ",") + ")"
	case TypeEntity:
		return "Entity(" + t.EntityKind + ")"
	case TypeArray:
		return "Array(" + t.Elem.String() + ")"
	default:
		return "Any"
	}
}

// Equal returns whether the type is the same type as another. Only other Type
// and *Type values can compare equal.
func (t Type) Equal(o any) bool {
	other, ok := o.(Type)
	if !ok {
		otherPtr, ok := o.(*Type)
		if !ok {
			return false
		} else if otherPtr == nil {
			return false
		}
		other = *otherPtr
	}

	return t.String() == other.String()
}

// ParseType parses the canonical spelling of a type, as produced by
// Type.String. An empty string parses to Any. An error is returned for
// malformed compound types; unknown simple names parse as Entity-free opaque
// Any rather than failing, since the NN syntax treats unknown annotations as
// unchecked.
func ParseType(s string) (Type, error) {
	switch s {
	case "", "Any":
		return AnyType, nil
	case "Boolean":
		return BooleanType, nil
	case "String":
		return StringType, nil
	case "Number":
		return NumberType, nil
	case "Currency":
		return CurrencyType, nil
	case "Date":
		return DateType, nil
	case "Time":
		return TimeType, nil
	case "Location":
		return LocationType, nil
	case "RecurrentTimeSpecification":
		return Type{Kind: TypeRecurrentTimeSpec}, nil
	}

	if inner, ok := compoundArg(s, "Measure"); ok {
		return MeasureType(inner), nil
	}
	if inner, ok := compoundArg(s, "Entity"); ok {
		return EntityType(inner), nil
	}
	if inner, ok := compoundArg(s, "Enum"); ok {
		return EnumType(strings.Split(inner, ",")...), nil
	}
	if inner, ok := compoundArg(s, "Array"); ok {
		elem, err := ParseType(inner)
		if err != nil {
			return AnyType, err
		}
		return ArrayType(elem), nil
	}

	if strings.ContainsAny(s, "() ") {
		return AnyType, fmt.Errorf("malformed type: %q", s)
	}

	// an unknown bare name; treat as unchecked
	return AnyType, nil
}

func compoundArg(s, ctor string) (string, bool) {
	if strings.HasPrefix(s, ctor+"(") && strings.HasSuffix(s, ")") {
		return s[len(ctor)+1 : len(s)-1], true
	}
	return "", false
}

// Param is a single parameter declaration in a function schema.
type Param struct {
	Name  string
	Type  Type
	Input bool
}

// FunctionSchema is the portion of a Thingpedia function signature needed by
// the NN serializer: the declared parameters and their types. AST nodes that
// reference functions may carry one; when absent, type information comes only
// from explicit annotations in the token stream.
type FunctionSchema struct {
	Kind    string
	Channel string
	Params  []Param
}

// TypeOf returns the declared type of the named parameter and whether the
// schema declares it at all.
func (fs *FunctionSchema) TypeOf(name string) (Type, bool) {
	if fs == nil {
		return AnyType, false
	}
	for i := range fs.Params {
		if fs.Params[i].Name == name {
			return fs.Params[i].Type, true
		}
	}
	return AnyType, false
}
