// Package main provides the entry point for the threelines CLI.
package main

import (
	"github.com/threelines/threelines-cli/internal/cli"
)

func main() {
	cli.Execute()
}
