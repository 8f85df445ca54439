package main

import (
	"fmt"
	"os"

	"github.com/deanrtaylor1/goclassify/cli"
	"github.com/deanrtaylor1/goclassify/util"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, util.TerminalRed+"Error:", err, util.TerminalReset)
		os.Exit(1)
	}
}
