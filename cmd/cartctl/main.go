// Package main is the entry point for the cartctl CLI client.
package main

import (
	"github.com/donaldgifford/cartsync/cmd/cartctl/cmd"
)

func main() {
	cmd.Execute()
}
