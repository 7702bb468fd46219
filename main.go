package main

import (
	"fmt"
	"os"

	"github.com/hashicorp/cli"

	"tracebridge/command"
	"tracebridge/command/demo"
	"tracebridge/command/version"
)

func main() {

	commands := map[string]cli.CommandFactory{
		"version": command.NewCommand(version.NewVersionCommand()),
		"demo":    command.NewCommand(demo.NewDemoCommand()),
	}

	cli := &cli.CLI{
		Name:                       "tracebridge",
		Args:                       os.Args[1:],
		Commands:                   commands,
		Autocomplete:               true,
		AutocompleteNoDefaultFlags: false,
	}

	exitCode, err := cli.Run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error executing CLI: %s\n", err.Error())
	}

	os.Exit(exitCode)
}
