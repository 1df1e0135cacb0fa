package syntax

import "strings"

// StreamType enumerates the variants of Stream.
type StreamType int

const (
	StreamTimer StreamType = iota
	StreamAtTimer
	StreamMonitor
	StreamEdgeNew
	StreamEdgeFilter
	StreamJoin
	StreamProjection
)

// Stream is an event source: something that produces a (possibly infinite)
// series of events a rule can react to.
type Stream interface {
	// StreamType returns which variant this stream is.
	StreamType() StreamType

	// ThingTalk returns the stream written in the ThingTalk surface syntax.
	ThingTalk() string

	// String returns a compact structural representation. Two streams are
	// semantically identical if they produce identical String() output.
	String() string

	// Equal returns whether the stream is semantically equal to another.
	// It returns false for anything that is not a Stream.
	Equal(o any) bool
}

func streamEqual(s Stream, o any) bool {
	other, ok := o.(Stream)
	if !ok {
		return false
	}
	return s.String() == other.String()
}

// TimerStream fires at a fixed interval starting from a base date.
// Frequency, when non-nil, is the number of firings per interval.
type TimerStream struct {
	Base      Value
	Interval  Value
	Frequency Value
}

func (s TimerStream) StreamType() StreamType { return StreamTimer }
func (s TimerStream) ThingTalk() string {
	out := "timer(base=" + s.Base.ThingTalk() + ", interval=" + s.Interval.ThingTalk()
	if s.Frequency != nil {
		out += ", frequency=" + s.Frequency.ThingTalk()
	}
	return out + ")"
}
func (s TimerStream) String() string {
	out := "(timer " + s.Base.String() + " " + s.Interval.String()
	if s.Frequency != nil {
		out += " " + s.Frequency.String()
	}
	return out + ")"
}
func (s TimerStream) Equal(o any) bool { return streamEqual(s, o) }

// AtTimerStream fires at fixed times of day. Expiration, when non-nil, stops
// the timer after that date.
type AtTimerStream struct {
	Times      []Value
	Expiration Value
}

func (s AtTimerStream) StreamType() StreamType { return StreamAtTimer }
func (s AtTimerStream) ThingTalk() string {
	elems := make([]string, len(s.Times))
	for i := range s.Times {
		elems[i] = s.Times[i].ThingTalk()
	}
	out := "attimer(time=[" + strings.Join(elems, ", ") + "]"
	if s.Expiration != nil {
		out += ", expiration_date=" + s.Expiration.ThingTalk()
	}
	return out + ")"
}
func (s AtTimerStream) String() string {
	elems := make([]string, len(s.Times))
	for i := range s.Times {
		elems[i] = s.Times[i].String()
	}
	out := "(attimer " + strings.Join(elems, " ")
	if s.Expiration != nil {
		out += " exp=" + s.Expiration.String()
	}
	return out + ")"
}
func (s AtTimerStream) Equal(o any) bool { return streamEqual(s, o) }

// MonitorStream fires whenever the results of a table change. When Args is
// non-empty, only changes to the named output parameters fire the stream.
type MonitorStream struct {
	Table Table
	Args  []string
}

func (s MonitorStream) StreamType() StreamType { return StreamMonitor }
func (s MonitorStream) ThingTalk() string {
	out := "monitor (" + s.Table.ThingTalk() + ")"
	if len(s.Args) == 1 {
		out += " on new " + s.Args[0]
	} else if len(s.Args) > 1 {
		out += " on new [" + strings.Join(s.Args, ", ") + "]"
	}
	return out
}
func (s MonitorStream) String() string {
	out := "(monitor " + s.Table.String()
	if len(s.Args) > 0 {
		out += " [" + strings.Join(s.Args, " ") + "]"
	}
	return out + ")"
}
func (s MonitorStream) Equal(o any) bool { return streamEqual(s, o) }

// EdgeNewStream fires when an inner stream produces a value it has not
// produced before.
type EdgeNewStream struct {
	Stream Stream
}

func (s EdgeNewStream) StreamType() StreamType { return StreamEdgeNew }
func (s EdgeNewStream) ThingTalk() string {
	return "edge (" + s.Stream.ThingTalk() + ") on new"
}
func (s EdgeNewStream) String() string   { return "(edgenew " + s.Stream.String() + ")" }
func (s EdgeNewStream) Equal(o any) bool { return streamEqual(s, o) }

// EdgeFilterStream fires when an inner stream's value transitions from not
// matching the filter to matching it.
type EdgeFilterStream struct {
	Stream Stream
	Filter BooleanExpression
}

func (s EdgeFilterStream) StreamType() StreamType { return StreamEdgeFilter }
func (s EdgeFilterStream) ThingTalk() string {
	return "edge (" + s.Stream.ThingTalk() + ") on " + s.Filter.ThingTalk()
}
func (s EdgeFilterStream) String() string {
	return "(edgefilter " + s.Stream.String() + " " + s.Filter.String() + ")"
}
func (s EdgeFilterStream) Equal(o any) bool { return streamEqual(s, o) }

// JoinStream extends each event of a stream with the results of a table,
// optionally passing event parameters into the table's inputs.
type JoinStream struct {
	Stream   Stream
	Table    Table
	InParams []InputParam
}

func (s JoinStream) StreamType() StreamType { return StreamJoin }
func (s JoinStream) ThingTalk() string {
	out := "(" + s.Stream.ThingTalk() + ") join (" + s.Table.ThingTalk() + ")"
	if len(s.InParams) > 0 {
		params := make([]InputParam, len(s.InParams))
		copy(params, s.InParams)
		SortInputParams(params)
		parts := make([]string, len(params))
		for i := range params {
			parts[i] = params[i].ThingTalk()
		}
		out += " on (" + strings.Join(parts, ", ") + ")"
	}
	return out
}
func (s JoinStream) String() string {
	out := "(streamjoin " + s.Stream.String() + " " + s.Table.String()
	params := make([]InputParam, len(s.InParams))
	copy(params, s.InParams)
	SortInputParams(params)
	for i := range params {
		out += " " + params[i].String()
	}
	return out + ")"
}
func (s JoinStream) Equal(o any) bool { return streamEqual(s, o) }

// ProjectionStream restricts the parameters of a stream's events. It is not
// part of the NN sublanguage and cannot be serialized.
type ProjectionStream struct {
	Args   []string
	Stream Stream
}

func (s ProjectionStream) StreamType() StreamType { return StreamProjection }
func (s ProjectionStream) ThingTalk() string {
	return "[" + strings.Join(s.Args, ", ") + "] of (" + s.Stream.ThingTalk() + ")"
}
func (s ProjectionStream) String() string {
	return "(streamproject [" + strings.Join(s.Args, " ") + "] " + s.Stream.String() + ")"
}
func (s ProjectionStream) Equal(o any) bool { return streamEqual(s, o) }
