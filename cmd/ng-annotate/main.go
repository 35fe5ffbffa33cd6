// Package main provides the ng-annotate command.
package main

import (
	"os"
	"time"

	"github.com/sod/ng-annotate-patched/internal/cli"
)

func main() {
	start := time.Now()
	os.Exit(cli.Execute(start))
}
