// Package main is the entry point for awscosts, a terminal viewer for AWS
// Cost Explorer spend.
package main

import (
	"os"

	"github.com/j-veylop/aws-costs-tui/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
