// Command client is the command line client of a pwdvault server.
package main

import (
	"fmt"
	"os"
)

var (
	version   string
	buildDate string
)

func main() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
