// Package main is the entry point for the pixelgate application
package main

import (
	"github.com/pixelgate/pixelgate/cmd"
)

func main() {
	cmd.Execute()
}
