// Package main is the kinchain command itself.
package main

import (
	"fmt"
	"os"

	"github.com/kinchain/kinchain/cli"
)

func main() {
	app := cli.NewApp(os.Stdout, os.Stderr)
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
