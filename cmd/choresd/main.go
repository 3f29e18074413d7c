package main

import (
	"fmt"
	"os"

	"github.com/sandeepkv93/choresd/internal/cli"
)

var version = "dev"

func main() {
	if err := cli.NewRootCommand(version).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "choresd failed: %v\n", err)
		os.Exit(1)
	}
}
