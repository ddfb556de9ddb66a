package main

import (
	"os"

	"github.com/cfme-qe/coverage-reporter/internal/cli"

	_ "modernc.org/sqlite"
)

func main() {
	os.Exit(cli.Execute())
}
