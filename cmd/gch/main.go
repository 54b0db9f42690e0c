// Package main is the entry point for the gch CLI.
package main

import (
	"io"
	"os"
)

// version is set at build time via -ldflags.
var version = "dev"

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

// run executes one invocation and returns the process exit code. Flag-style
// invocations (`gch <words> -g|-l`) bypass the command tree.
func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	if inv, ok := parseFlagInvocation(args); ok {
		return executeFlagInvocation(inv, stdout, stderr)
	}

	root := rootCmd()
	root.SetArgs(args)
	root.SetIn(stdin)
	root.SetOut(stdout)
	root.SetErr(stderr)
	if err := root.Execute(); err != nil {
		return 1
	}
	return 0
}
