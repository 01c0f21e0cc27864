package main

import (
	"fmt"
	"io"
	"os"

	"go.uber.org/dig"
)

type runParam struct {
	dig.In
	CLI    *commandLine
	Closer io.Closer `name:"storageCloser"`
}

func main() {
	code := 0
	err := newContainer().Invoke(func(p runParam) {
		defer func() { _ = p.Closer.Close() }()
		code = p.CLI.exec(os.Args)
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %s\n", dig.RootCause(err))
		code = 1
	}
	os.Exit(code)
}
