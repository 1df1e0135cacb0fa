/*
Ttnn converts between the NN token form of ThingTalk and its surface syntax.

With no mode flag it starts an interactive session reading one NN sequence
per line and printing the parsed ThingTalk. With --parse or --serialize it
converts a single input and exits.

Usage:

	ttnn [flags]

The flags are:

	-v, --version
		Give the current version of the library and then exit.

	-p, --parse SEQUENCE
		Parse the given NN token sequence and print the ThingTalk surface
		form.

	-s, --serialize SEQUENCE
		Parse the given NN token sequence, reserialize it with freshly
		allocated placeholders, and print the sequence and the entity bag.

	-e, --entities JSON
		The entity bag to resolve placeholders against, as a JSON object.

	-c, --config FILE
		Use the provided TOML config file. Defaults to "ttnn.toml" in the
		current working directory.

	-d, --direct
		Force reading directly from the console as opposed to using GNU
		readline based routines for reading input even if launched in a tty
		with stdin and stdout.

Once an interactive session has started, each line is parsed as an NN token
sequence. To exit the session, type "quit" or press ctrl-D.
*/
package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/pflag"

	"github.com/dekarrin/thingtalk/internal/config"
	"github.com/dekarrin/thingtalk/internal/input"
	"github.com/dekarrin/thingtalk/internal/version"
	"github.com/dekarrin/thingtalk/nnsyntax"
	"github.com/dekarrin/thingtalk/syntax"
)

const (
	// ExitSuccess indicates a successful program execution.
	ExitSuccess = iota

	// ExitConvertError indicates an unsuccessful program execution due to
	// a problem converting the input.
	ExitConvertError

	// ExitInitError indicates an unsuccessful program execution due to an
	// issue setting up the session.
	ExitInitError
)

var (
	returnCode    int     = ExitSuccess
	flagVersion   *bool   = pflag.BoolP("version", "v", false, "Gives the version info")
	parseSeq      *string = pflag.StringP("parse", "p", "", "Parse the given NN sequence and print the ThingTalk surface form")
	serializeSeq  *string = pflag.StringP("serialize", "s", "", "Reserialize the given NN sequence with fresh placeholders")
	entitiesJSON  *string = pflag.StringP("entities", "e", "{}", "The entity bag as a JSON object")
	configFile    *string = pflag.StringP("config", "c", "ttnn.toml", "The TOML config file to read defaults from")
	forceDirect   *bool   = pflag.BoolP("direct", "d", false, "Force reading directly from stdin instead of going through GNU readline where possible")
)

func main() {
	defer func() {
		if panicErr := recover(); panicErr != nil {
			// we are panicking, make sure we dont lose the panic just
			// because we checked
			panic(fmt.Sprintf("unrecoverable panic occured: %v", panicErr))
		} else {
			os.Exit(returnCode)
		}
	}()

	pflag.Parse()

	if *flagVersion {
		fmt.Printf("%s\n", version.Current)
		return
	}

	cfg, err := config.Load(*configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %s\n", err.Error())
		returnCode = ExitInitError
		return
	}

	var entities map[string]any
	if err := json.Unmarshal([]byte(*entitiesJSON), &entities); err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: --entities is not a JSON object: %s\n", err.Error())
		returnCode = ExitInitError
		return
	}

	switch {
	case *parseSeq != "":
		if err := doParse(*parseSeq, entities); err != nil {
			fmt.Fprintf(os.Stderr, "ERROR: %s\n", err.Error())
			returnCode = ExitConvertError
		}
	case *serializeSeq != "":
		if err := doSerialize(*serializeSeq, entities, cfg); err != nil {
			fmt.Fprintf(os.Stderr, "ERROR: %s\n", err.Error())
			returnCode = ExitConvertError
		}
	default:
		if err := runInteractive(entities); err != nil {
			fmt.Fprintf(os.Stderr, "ERROR: %s\n", err.Error())
			returnCode = ExitInitError
		}
	}
}

func doParse(sequence string, entities map[string]any) error {
	pretty, err := parseToThingTalk(sequence, entities)
	if err != nil {
		return err
	}
	fmt.Println(pretty)
	return nil
}

func doSerialize(sequence string, entities map[string]any, cfg config.Config) error {
	ast, err := nnsyntax.FromNN(sequence, entities)
	if err != nil {
		return err
	}

	allocated := nnsyntax.EntityMap{}
	seq, err := nnsyntax.ToNN(ast, nil, allocated, nnsyntax.SerializeOptions{
		AllocateEntities: true,
		TypeAnnotations:  cfg.TypeAnnotations,
		ExplicitStrings:  cfg.ExplicitStrings,
	})
	if err != nil {
		return err
	}

	if cfg.TargetVersion != "" {
		seq, err = nnsyntax.ApplyCompatibility(seq, allocated, cfg.TargetVersion)
		if err != nil {
			return err
		}
	}

	fmt.Println(strings.Join(seq, " "))

	bag, err := json.Marshal(allocated)
	if err != nil {
		return err
	}
	fmt.Println(string(bag))
	return nil
}

func runInteractive(entities map[string]any) error {
	var reader input.Reader
	var err error

	if *forceDirect {
		reader = input.NewDirectReader(os.Stdin)
	} else {
		reader, err = input.NewInteractiveReader("ttnn> ")
		if err != nil {
			// fall back to direct reading; not all terminals support
			// readline
			reader = input.NewDirectReader(os.Stdin)
		}
	}
	defer reader.Close()

	for {
		line, err := reader.ReadLine()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
		if strings.EqualFold(line, "quit") {
			return nil
		}

		pretty, err := parseToThingTalk(line, entities)
		if err != nil {
			var syntaxErr nnsyntax.SyntaxError
			if errors.As(err, &syntaxErr) {
				fmt.Println(syntaxErr.FullMessage(strings.Split(line, " ")))
			} else {
				fmt.Printf("error: %s\n", err.Error())
			}
			continue
		}
		fmt.Println(pretty)
	}
}

func parseToThingTalk(sequence string, entities map[string]any) (string, error) {
	ast, err := nnsyntax.FromNN(sequence, entities)
	if err != nil {
		return "", err
	}

	switch n := ast.(type) {
	case syntax.Program:
		return n.ThingTalk(), nil
	case syntax.PermissionRule:
		return n.ThingTalk(), nil
	case syntax.DialogueState:
		return n.ThingTalk(), nil
	case syntax.ControlCommand:
		return n.ThingTalk(), nil
	default:
		return "", fmt.Errorf("unexpected parse result %T", ast)
	}
}
