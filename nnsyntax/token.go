package nnsyntax

import "fmt"

// Token is a single typed terminal of the NN syntax: the terminal kind, the
// payload carried by that kind (if any), and the index of the raw token it
// came from when produced by the lexer.
//
// For structural terminals (keywords and punctuation) the terminal and the
// written form coincide and Value is nil.
type Token struct {
	// Terminal is the terminal kind, one of the Term* constants or a
	// literal keyword/punctuation string.
	Terminal string

	// Value is the payload: a string, a float64, an entity value, a
	// funcRef, or a paramRef, depending on Terminal.
	Value any

	// Index is the position of the raw token this token was lexed from,
	// or -1 for serializer-produced tokens.
	Index int
}

func (t Token) String() string {
	if t.Value == nil {
		return t.Terminal
	}
	return fmt.Sprintf("%s(%v)", t.Terminal, t.Value)
}

// The typed terminal kinds. Structural keywords and punctuation use their
// literal spelling as the terminal kind and are not enumerated here.
const (
	TermQuotedString = "QUOTED_STRING"
	TermNumber       = "NUMBER"
	TermMeasure      = "MEASURE"
	TermDuration     = "DURATION"
	TermLocation     = "LOCATION"
	TermDate         = "DATE"
	TermTime         = "TIME"
	TermCurrency     = "CURRENCY"
	TermPicture      = "PICTURE"
	TermUsername     = "USERNAME"
	TermHashtag      = "HASHTAG"
	TermURL          = "URL"
	TermPhoneNumber  = "PHONE_NUMBER"
	TermEmailAddress = "EMAIL_ADDRESS"
	TermPathName     = "PATH_NAME"
	TermGenericEntity = "GENERIC_ENTITY"
	TermSlot         = "SLOT"

	TermLiteralInteger = "LITERAL_INTEGER"
	TermLiteralTime    = "LITERAL_TIME"
	TermRelativeTime   = "RELATIVE_TIME"
	TermRelativeLocation = "RELATIVE_LOCATION"
	TermWord           = "WORD"

	TermParamName     = "PARAM_NAME"
	TermAttributeName = "ATTRIBUTE_NAME"
	TermFunction      = "FUNCTION"
	TermClassStar     = "CLASS_STAR"
	TermEnum          = "ENUM"
	TermUnit          = "UNIT"
	TermCurrencyCode  = "CURRENCY_CODE"
	TermDeviceName    = "DEVICE_NAME"
	TermSpecial       = "SPECIAL"
	TermContextRef    = "CONTEXT_REF"
	TermEntityType    = "ENTITY_TYPE"
)

// funcRef is the payload of a FUNCTION or CLASS_STAR terminal.
type funcRef struct {
	Kind    string
	Channel string
}

// paramRef is the payload of a PARAM_NAME, ATTRIBUTE_NAME or CONTEXT_REF
// terminal: the bare name plus the type annotation, if one was written.
type paramRef struct {
	Name string
	Type string
}

// keyword returns a structural token for the given literal.
func keyword(lit string) Token {
	return Token{Terminal: lit, Index: -1}
}
