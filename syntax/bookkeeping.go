package syntax

import "strconv"

// ControlCommandType enumerates the variants of ControlCommand.
type ControlCommandType int

const (
	// ControlSpecial is a one-word meta command, such as yes, no, or
	// cancel.
	ControlSpecial ControlCommandType = iota

	// ControlChoice picks one option of a multiple-choice question by
	// position.
	ControlChoice

	// ControlAnswer answers a slot-filling question with a value.
	ControlAnswer
)

// ControlCommand is a bookkeeping command: an utterance that drives the
// dialogue itself rather than describing a program.
type ControlCommand interface {
	// ControlCommandType returns which variant this command is.
	ControlCommandType() ControlCommandType

	// ThingTalk returns the command written in the ThingTalk surface
	// syntax.
	ThingTalk() string

	// String returns a compact structural representation. Two commands are
	// semantically identical if they produce identical String() output.
	String() string

	// Equal returns whether the command is semantically equal to another.
	// It returns false for anything that is not a ControlCommand.
	Equal(o any) bool
}

func controlEqual(c ControlCommand, o any) bool {
	other, ok := o.(ControlCommand)
	if !ok {
		return false
	}
	return c.String() == other.String()
}

// SpecialControlCommand is a one-word meta command.
type SpecialControlCommand struct {
	Type string
}

func (c SpecialControlCommand) ControlCommandType() ControlCommandType { return ControlSpecial }
func (c SpecialControlCommand) ThingTalk() string                      { return "$" + c.Type + ";" }
func (c SpecialControlCommand) String() string                         { return "(special " + c.Type + ")" }
func (c SpecialControlCommand) Equal(o any) bool                       { return controlEqual(c, o) }

// ChoiceControlCommand picks one option by 0-based position.
type ChoiceControlCommand struct {
	Value int
}

func (c ChoiceControlCommand) ControlCommandType() ControlCommandType { return ControlChoice }
func (c ChoiceControlCommand) ThingTalk() string {
	return "$choice(" + strconv.Itoa(c.Value) + ");"
}
func (c ChoiceControlCommand) String() string   { return "(choice " + strconv.Itoa(c.Value) + ")" }
func (c ChoiceControlCommand) Equal(o any) bool { return controlEqual(c, o) }

// AnswerControlCommand answers a question with a bare value.
type AnswerControlCommand struct {
	Value Value
}

func (c AnswerControlCommand) ControlCommandType() ControlCommandType { return ControlAnswer }
func (c AnswerControlCommand) ThingTalk() string {
	return "$answer(" + c.Value.ThingTalk() + ");"
}
func (c AnswerControlCommand) String() string   { return "(answer " + c.Value.String() + ")" }
func (c AnswerControlCommand) Equal(o any) bool { return controlEqual(c, o) }
