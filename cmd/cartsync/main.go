// Package main is the entry point for the cartsync page host.
package main

import (
	"os"

	"github.com/donaldgifford/cartsync/cmd/cartsync/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
