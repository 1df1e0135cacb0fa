package syntax

import "strings"

// ActionType enumerates the variants of Action.
type ActionType int

const (
	ActionNotify ActionType = iota
	ActionInvocation
)

// Action is the consequence part of a rule or command.
type Action interface {
	// ActionType returns which variant this action is.
	ActionType() ActionType

	// ThingTalk returns the action written in the ThingTalk surface syntax.
	ThingTalk() string

	// String returns a compact structural representation. Two actions are
	// semantically identical if they produce identical String() output.
	String() string

	// Equal returns whether the action is semantically equal to another.
	// It returns false for anything that is not an Action.
	Equal(o any) bool
}

func actionEqual(a Action, o any) bool {
	other, ok := o.(Action)
	if !ok {
		return false
	}
	return a.String() == other.String()
}

// NotifyAction presents results to the user.
type NotifyAction struct{}

func (a NotifyAction) ActionType() ActionType { return ActionNotify }
func (a NotifyAction) ThingTalk() string      { return "notify" }
func (a NotifyAction) String() string         { return "(notify)" }
func (a NotifyAction) Equal(o any) bool       { return actionEqual(a, o) }

// InvocationAction performs a device action.
type InvocationAction struct {
	Invocation Invocation
}

func (a InvocationAction) ActionType() ActionType { return ActionInvocation }
func (a InvocationAction) ThingTalk() string      { return a.Invocation.ThingTalk() }
func (a InvocationAction) String() string         { return "(action " + a.Invocation.String() + ")" }
func (a InvocationAction) Equal(o any) bool       { return actionEqual(a, o) }

// StatementType enumerates the variants of Statement.
type StatementType int

const (
	StatementRule StatementType = iota
	StatementCommand
)

// Statement is one executable statement of a program: either a rule
// (stream-driven) or a command (immediate).
type Statement interface {
	// StatementType returns which variant this statement is.
	StatementType() StatementType

	// ThingTalk returns the statement written in the ThingTalk surface
	// syntax, including the trailing semicolon.
	ThingTalk() string

	// String returns a compact structural representation. Two statements
	// are semantically identical if they produce identical String() output.
	String() string

	// Equal returns whether the statement is semantically equal to
	// another. It returns false for anything that is not a Statement.
	Equal(o any) bool
}

func statementEqual(s Statement, o any) bool {
	other, ok := o.(Statement)
	if !ok {
		return false
	}
	return s.String() == other.String()
}

// Rule reacts to the events of a stream with one or more actions.
type Rule struct {
	Stream  Stream
	Actions []Action
}

func (r Rule) StatementType() StatementType { return StatementRule }
func (r Rule) ThingTalk() string {
	parts := make([]string, len(r.Actions))
	for i := range r.Actions {
		parts[i] = r.Actions[i].ThingTalk()
	}
	return r.Stream.ThingTalk() + " => " + strings.Join(parts, ", ") + ";"
}
func (r Rule) String() string {
	s := "(rule " + r.Stream.String()
	for i := range r.Actions {
		s += " " + r.Actions[i].String()
	}
	return s + ")"
}
func (r Rule) Equal(o any) bool { return statementEqual(r, o) }

// Command runs one or more actions immediately, optionally over the results
// of a query. A nil Table means a bare "now =>" command.
type Command struct {
	Table   Table
	Actions []Action
}

func (c Command) StatementType() StatementType { return StatementCommand }
func (c Command) ThingTalk() string {
	parts := make([]string, len(c.Actions))
	for i := range c.Actions {
		parts[i] = c.Actions[i].ThingTalk()
	}
	s := "now => "
	if c.Table != nil {
		s += c.Table.ThingTalk() + " => "
	}
	return s + strings.Join(parts, ", ") + ";"
}
func (c Command) String() string {
	s := "(command"
	if c.Table != nil {
		s += " " + c.Table.String()
	}
	for i := range c.Actions {
		s += " " + c.Actions[i].String()
	}
	return s + ")"
}
func (c Command) Equal(o any) bool { return statementEqual(c, o) }

// ClassDef is a locally-defined device class. The NN syntax cannot express
// class definitions; programs carrying one fail to serialize.
type ClassDef struct {
	Kind string
}

// Declaration is a locally-defined procedure. The NN syntax cannot express
// declarations; programs carrying one fail to serialize.
type Declaration struct {
	Name string
}

// Program is a complete ThingTalk program: an optional executor, any local
// class definitions and declarations, and the executable statements.
type Program struct {
	// Executor identifies who runs the program; nil means the current
	// user.
	Executor Value

	Classes      []ClassDef
	Declarations []Declaration
	Statements   []Statement
}

// ThingTalk returns the program written in the ThingTalk surface syntax.
func (p Program) ThingTalk() string {
	var sb strings.Builder
	if p.Executor != nil {
		sb.WriteString("executor = ")
		sb.WriteString(p.Executor.ThingTalk())
		sb.WriteString(" : ")
	}
	for i := range p.Statements {
		sb.WriteString(p.Statements[i].ThingTalk())
		if i+1 < len(p.Statements) {
			sb.WriteRune(' ')
		}
	}
	return sb.String()
}

// String returns a compact structural representation. Two programs are
// semantically identical if they produce identical String() output.
func (p Program) String() string {
	var sb strings.Builder
	sb.WriteString("(program")
	if p.Executor != nil {
		sb.WriteString(" exec=" + p.Executor.String())
	}
	for i := range p.Statements {
		sb.WriteString(" " + p.Statements[i].String())
	}
	sb.WriteString(")")
	return sb.String()
}

// Equal returns whether the program is semantically equal to another Program
// or *Program.
func (p Program) Equal(o any) bool {
	other, ok := o.(Program)
	if !ok {
		otherPtr, ok := o.(*Program)
		if !ok {
			return false
		} else if otherPtr == nil {
			return false
		}
		other = *otherPtr
	}
	return p.String() == other.String()
}
