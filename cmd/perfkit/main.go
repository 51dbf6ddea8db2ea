package main

import (
	"os"

	"github.com/wesleyorama2/perfkit/internal/cli"
	"github.com/wesleyorama2/perfkit/internal/demo"
)

// Main is the entry point for the application
// It's exported to make it testable
func Main(args []string) int {
	suite := demo.New()
	app := &cli.App{Name: "perfkit-demo", Classes: suite.Classes, Meters: suite.Meters}
	return cli.Execute(app, args, os.Stdout, os.Stderr)
}

func main() {
	os.Exit(Main(os.Args[1:]))
}
