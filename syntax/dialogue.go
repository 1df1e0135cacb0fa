package syntax

import (
	"strings"
)

// ResultsInfo is the inline annotation carried by an executed dialogue
// history item: the result tuples and how many more there are.
type ResultsInfo struct {
	// Results are the result tuples, most relevant first.
	Results []ObjectValue

	// Count is the total number of results, when known; nil otherwise.
	Count Value

	// More indicates that results were truncated.
	More bool

	// Error is the error value the statement produced, if it failed.
	Error Value
}

// HistoryItem is one statement of a dialogue, with either its execution
// results or the user's confirmation state.
type HistoryItem struct {
	Statement Statement

	// Results is non-nil once the statement has executed.
	Results *ResultsInfo

	// Confirm is the confirmation state for a statement that has not been
	// accepted yet; empty for accepted statements.
	Confirm string
}

// ThingTalk returns the history item written in the ThingTalk surface
// syntax.
func (hi HistoryItem) ThingTalk() string {
	s := strings.TrimSuffix(hi.Statement.ThingTalk(), ";")
	if hi.Results != nil {
		parts := make([]string, len(hi.Results.Results))
		for i := range hi.Results.Results {
			parts[i] = hi.Results.Results[i].ThingTalk()
		}
		s += " #[results=[" + strings.Join(parts, ", ") + "]]"
		if hi.Results.Count != nil {
			s += " #[count=" + hi.Results.Count.ThingTalk() + "]"
		}
		if hi.Results.More {
			s += " #[more=true]"
		}
		if hi.Results.Error != nil {
			s += " #[error=" + hi.Results.Error.ThingTalk() + "]"
		}
	} else if hi.Confirm != "" {
		s += " #[confirm=enum(" + hi.Confirm + ")]"
	}
	return s + ";"
}

// String returns a compact structural representation.
func (hi HistoryItem) String() string {
	s := "(history " + hi.Statement.String()
	if hi.Results != nil {
		s += " results=["
		for i := range hi.Results.Results {
			if i > 0 {
				s += " "
			}
			s += hi.Results.Results[i].String()
		}
		s += "]"
		if hi.Results.Count != nil {
			s += " count=" + hi.Results.Count.String()
		}
		if hi.Results.More {
			s += " more"
		}
		if hi.Results.Error != nil {
			s += " error=" + hi.Results.Error.String()
		}
	} else if hi.Confirm != "" {
		s += " confirm=" + hi.Confirm
	}
	return s + ")"
}

// DialogueState is the formal representation of a point in a conversation:
// the dialogue act the agent or user last performed and the program
// statements discussed so far.
type DialogueState struct {
	// Policy is the dialogue policy module that defined the act, such as
	// "org.thingpedia.dialogue.transaction".
	Policy string

	// Act is the dialogue act, such as "greet" or "execute".
	Act string

	// ActParams are the parameter names the act refers to.
	ActParams []string

	History []HistoryItem
}

// ThingTalk returns the dialogue state written in the ThingTalk surface
// syntax.
func (ds DialogueState) ThingTalk() string {
	var sb strings.Builder
	sb.WriteString("$dialogue @" + ds.Policy + "." + ds.Act)
	if len(ds.ActParams) > 0 {
		sb.WriteString("(" + strings.Join(ds.ActParams, ", ") + ")")
	}
	sb.WriteString(";")
	for i := range ds.History {
		sb.WriteString(" ")
		sb.WriteString(ds.History[i].ThingTalk())
	}
	return sb.String()
}

// String returns a compact structural representation. Two dialogue states
// are semantically identical if they produce identical String() output.
func (ds DialogueState) String() string {
	var sb strings.Builder
	sb.WriteString("(dialogue @" + ds.Policy + "." + ds.Act)
	if len(ds.ActParams) > 0 {
		sb.WriteString(" [" + strings.Join(ds.ActParams, " ") + "]")
	}
	for i := range ds.History {
		sb.WriteString(" " + ds.History[i].String())
	}
	sb.WriteString(")")
	return sb.String()
}

// Equal returns whether the dialogue state is semantically equal to another
// DialogueState or *DialogueState.
func (ds DialogueState) Equal(o any) bool {
	other, ok := o.(DialogueState)
	if !ok {
		otherPtr, ok := o.(*DialogueState)
		if !ok {
			return false
		} else if otherPtr == nil {
			return false
		}
		other = *otherPtr
	}
	return ds.String() == other.String()
}
