/*
Ttnnd starts the ThingTalk NN conversion server.

The server exposes the NN-to-ThingTalk conversion over HTTP and keeps a
small database of saved conversions. See the server package for the
endpoint list.

Usage:

	ttnnd [flags]

The flags are:

	-v, --version
		Give the current version of the library and then exit.

	-l, --listen ADDRESS
		The address to listen on. Defaults to the config file value, or
		":8412".

	-c, --config FILE
		Use the provided TOML config file. Defaults to "ttnn.toml" in the
		current working directory.
*/
package main

import (
	"fmt"
	"os"

	"github.com/spf13/pflag"

	"github.com/dekarrin/thingtalk/internal/config"
	"github.com/dekarrin/thingtalk/internal/version"
	"github.com/dekarrin/thingtalk/server"
)

const (
	// ExitSuccess indicates a successful program execution.
	ExitSuccess = iota

	// ExitServerError indicates an unsuccessful program execution due to
	// a problem while serving.
	ExitServerError

	// ExitInitError indicates an unsuccessful program execution due to an
	// issue initializing the server.
	ExitInitError
)

var (
	returnCode  int     = ExitSuccess
	flagVersion *bool   = pflag.BoolP("version", "v", false, "Gives the version info")
	listenAddr  *string = pflag.StringP("listen", "l", "", "The address to listen on")
	configFile  *string = pflag.StringP("config", "c", "ttnn.toml", "The TOML config file to read defaults from")
)

func main() {
	defer func() {
		if panicErr := recover(); panicErr != nil {
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

	addr := cfg.ListenAddr
	if *listenAddr != "" {
		addr = *listenAddr
	}

	srv, err := server.New(cfg.StorageDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %s\n", err.Error())
		returnCode = ExitInitError
		return
	}

	fmt.Printf("listening on %s\n", addr)
	if err := srv.ServeForever(addr); err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %s\n", err.Error())
		returnCode = ExitServerError
	}
}
