// logsift - Log Parsing and Analysis Tool
//
// logsift parses log files in multiple formats into structured entries and
// provides filtering and statistics over the result.
package main

import (
	"os"

	"github.com/logsift/logsift/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
