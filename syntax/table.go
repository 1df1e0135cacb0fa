package syntax

import "strings"

// TableType enumerates the variants of Table.
type TableType int

const (
	TableInvocation TableType = iota
	TableFiltered
	TableProjection
	TableAggregation
	TableSort
	TableIndex
	TableSlice
	TableJoin
	TableAlias
)

// Table is a query: a source of result tuples that can be filtered,
// projected, aggregated, sorted, indexed, sliced and joined.
type Table interface {
	// TableType returns which variant this table is.
	TableType() TableType

	// ThingTalk returns the table written in the ThingTalk surface syntax.
	ThingTalk() string

	// String returns a compact structural representation. Two tables are
	// semantically identical if they produce identical String() output.
	String() string

	// Equal returns whether the table is semantically equal to another. It
	// returns false for anything that is not a Table.
	Equal(o any) bool
}

func tableEqual(t Table, o any) bool {
	other, ok := o.(Table)
	if !ok {
		return false
	}
	return t.String() == other.String()
}

// InvocationTable is a direct query invocation.
type InvocationTable struct {
	Invocation Invocation
}

func (t InvocationTable) TableType() TableType { return TableInvocation }
func (t InvocationTable) ThingTalk() string    { return t.Invocation.ThingTalk() }
func (t InvocationTable) String() string       { return "(table " + t.Invocation.String() + ")" }
func (t InvocationTable) Equal(o any) bool     { return tableEqual(t, o) }

// FilteredTable restricts the results of a table with a boolean filter.
type FilteredTable struct {
	Table  Table
	Filter BooleanExpression
}

func (t FilteredTable) TableType() TableType { return TableFiltered }
func (t FilteredTable) ThingTalk() string {
	return "(" + t.Table.ThingTalk() + ") filter " + t.Filter.ThingTalk()
}
func (t FilteredTable) String() string {
	return "(filter " + t.Table.String() + " " + t.Filter.String() + ")"
}
func (t FilteredTable) Equal(o any) bool { return tableEqual(t, o) }

// ProjectionTable restricts the output parameters of a table to the named
// arguments.
type ProjectionTable struct {
	Args  []string
	Table Table
}

func (t ProjectionTable) TableType() TableType { return TableProjection }
func (t ProjectionTable) ThingTalk() string {
	return "[" + strings.Join(t.Args, ", ") + "] of (" + t.Table.ThingTalk() + ")"
}
func (t ProjectionTable) String() string {
	return "(project [" + strings.Join(t.Args, " ") + "] " + t.Table.String() + ")"
}
func (t ProjectionTable) Equal(o any) bool { return tableEqual(t, o) }

// AggregationTable reduces a table to a single aggregate value. A Field of
// "*" with Op "count" counts rows.
type AggregationTable struct {
	Table Table
	Op    string
	Field string
}

func (t AggregationTable) TableType() TableType { return TableAggregation }
func (t AggregationTable) ThingTalk() string {
	if t.Op == "count" && t.Field == "*" {
		return "aggregate count of (" + t.Table.ThingTalk() + ")"
	}
	return "aggregate " + t.Op + " " + t.Field + " of (" + t.Table.ThingTalk() + ")"
}
func (t AggregationTable) String() string {
	return "(aggregate " + t.Op + " " + t.Field + " " + t.Table.String() + ")"
}
func (t AggregationTable) Equal(o any) bool { return tableEqual(t, o) }

// SortedTable orders the results of a table by a field. Direction is "asc"
// or "desc".
type SortedTable struct {
	Table     Table
	Field     string
	Direction string
}

func (t SortedTable) TableType() TableType { return TableSort }
func (t SortedTable) ThingTalk() string {
	return "sort " + t.Field + " " + t.Direction + " of (" + t.Table.ThingTalk() + ")"
}
func (t SortedTable) String() string {
	return "(sort " + t.Field + " " + t.Direction + " " + t.Table.String() + ")"
}
func (t SortedTable) Equal(o any) bool { return tableEqual(t, o) }

// IndexTable selects specific result rows by 1-based position.
type IndexTable struct {
	Table   Table
	Indices []Value
}

func (t IndexTable) TableType() TableType { return TableIndex }
func (t IndexTable) ThingTalk() string {
	elems := make([]string, len(t.Indices))
	for i := range t.Indices {
		elems[i] = t.Indices[i].ThingTalk()
	}
	return "(" + t.Table.ThingTalk() + ")[" + strings.Join(elems, ", ") + "]"
}
func (t IndexTable) String() string {
	elems := make([]string, len(t.Indices))
	for i := range t.Indices {
		elems[i] = t.Indices[i].String()
	}
	return "(index " + t.Table.String() + " " + strings.Join(elems, " ") + ")"
}
func (t IndexTable) Equal(o any) bool { return tableEqual(t, o) }

// SlicedTable selects a contiguous range of result rows: Limit rows starting
// at the 1-based Base.
type SlicedTable struct {
	Table Table
	Base  Value
	Limit Value
}

func (t SlicedTable) TableType() TableType { return TableSlice }
func (t SlicedTable) ThingTalk() string {
	return "(" + t.Table.ThingTalk() + ")[" + t.Base.ThingTalk() + " : " + t.Limit.ThingTalk() + "]"
}
func (t SlicedTable) String() string {
	return "(slice " + t.Table.String() + " " + t.Base.String() + " " + t.Limit.String() + ")"
}
func (t SlicedTable) Equal(o any) bool { return tableEqual(t, o) }

// JoinTable combines two tables, optionally passing output parameters of the
// left side into input parameters of the right side.
type JoinTable struct {
	Lhs      Table
	Rhs      Table
	InParams []InputParam
}

func (t JoinTable) TableType() TableType { return TableJoin }
func (t JoinTable) ThingTalk() string {
	s := "(" + t.Lhs.ThingTalk() + ") join (" + t.Rhs.ThingTalk() + ")"
	if len(t.InParams) > 0 {
		params := make([]InputParam, len(t.InParams))
		copy(params, t.InParams)
		SortInputParams(params)
		parts := make([]string, len(params))
		for i := range params {
			parts[i] = params[i].ThingTalk()
		}
		s += " on (" + strings.Join(parts, ", ") + ")"
	}
	return s
}
func (t JoinTable) String() string {
	s := "(join " + t.Lhs.String() + " " + t.Rhs.String()
	params := make([]InputParam, len(t.InParams))
	copy(params, t.InParams)
	SortInputParams(params)
	for i := range params {
		s += " " + params[i].String()
	}
	return s + ")"
}
func (t JoinTable) Equal(o any) bool { return tableEqual(t, o) }

// AliasTable gives a table a name that later parts of the program can refer
// to. Aliases are outside the NN sublanguage and cannot be serialized.
type AliasTable struct {
	Table Table
	Name  string
}

func (t AliasTable) TableType() TableType { return TableAlias }
func (t AliasTable) ThingTalk() string {
	return "(" + t.Table.ThingTalk() + ") as " + t.Name
}
func (t AliasTable) String() string {
	return "(alias " + t.Name + " " + t.Table.String() + ")"
}
func (t AliasTable) Equal(o any) bool { return tableEqual(t, o) }
