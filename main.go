package main

import (
	"fmt"
	"os"

	"github.com/alexflint/go-arg"
	"github.com/yiblet/freewrite/internal/cli"
)

func main() {
	var args cli.Args
	parser := arg.MustParse(&args)

	if err := args.Validate(); err != nil {
		parser.Fail(err.Error())
	}

	cliHandler, err := cli.NewWithArgs(&args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	err = cliHandler.Execute(&args)
	if closeErr := cliHandler.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
