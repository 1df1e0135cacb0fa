// Package input contains the line readers used to get NN sequences and
// commands from the CLI or other sources of input.
package input

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/chzyer/readline"
)

// Reader reads one line of input at a time.
type Reader interface {
	// ReadLine reads the next non-blank line. At end of input it returns
	// an empty string and io.EOF.
	ReadLine() (string, error)

	// Close cleans up any resources associated with the Reader.
	Close() error
}

// DirectReader implements Reader and reads lines from any generic input
// stream directly. It can be used generically with any io.Reader but does
// not sanitize the input of control and escape sequences.
type DirectReader struct {
	r *bufio.Reader
}

// InteractiveReader implements Reader and reads lines from stdin using a go
// implementation of the GNU Readline library. This keeps input clear of all
// typing and editing escape sequences and enables the use of line history.
// This should in general probably only be used when directly connecting to
// a TTY for input.
type InteractiveReader struct {
	rl *readline.Instance
}

// NewDirectReader creates a DirectReader with a buffered reader on the
// provided stream.
func NewDirectReader(r io.Reader) *DirectReader {
	return &DirectReader{r: bufio.NewReader(r)}
}

// NewInteractiveReader creates an InteractiveReader and initializes
// readline. The returned Reader must have Close called on it before
// disposal to properly teardown readline resources.
func NewInteractiveReader(prompt string) (*InteractiveReader, error) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt: prompt,
	})
	if err != nil {
		return nil, fmt.Errorf("create readline config: %w", err)
	}
	return &InteractiveReader{rl: rl}, nil
}

// Close is here so DirectReader implements Reader. It does not currently do
// anything as the DirectReader does not create resources, but callers
// should treat it as though it must be called.
func (dr *DirectReader) Close() error {
	return nil
}

// Close cleans up readline resources.
func (ir *InteractiveReader) Close() error {
	return ir.rl.Close()
}

// ReadLine reads the next line from the stream. It blocks until a line
// containing non-space characters is read, and returns io.EOF at end of
// input.
func (dr *DirectReader) ReadLine() (string, error) {
	var line string
	var err error

	for line == "" {
		line, err = dr.r.ReadString('\n')
		if err != nil && (err != io.EOF || line == "") {
			return "", err
		}
		line = strings.TrimSpace(line)
	}
	return line, nil
}

// ReadLine reads the next line from stdin through readline. It blocks until
// a line containing non-space characters is read, and returns io.EOF at end
// of input.
func (ir *InteractiveReader) ReadLine() (string, error) {
	var line string
	var err error

	for line == "" {
		line, err = ir.rl.Readline()
		if err != nil && (err != io.EOF || line == "") {
			return "", err
		}
		line = strings.TrimSpace(line)
	}
	return line, nil
}
