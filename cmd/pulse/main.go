// Command pulse scores contact-center KPI records offline. It loads JSON or YAML
// record files into a scratch observation log (or a persistent one with --db) and
// prints scoreboards, rankings, trends and risk assessments.
package main

import (
	"errors"
	"fmt"
	"os"
)

// Exit codes
const (
	ExitSuccess  = 0
	ExitError    = 1
	ExitNotFound = 2 // unknown period, entity or KPI
)

func main() {
	if err := execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)

		var notFound *notFoundError
		if errors.As(err, &notFound) {
			os.Exit(ExitNotFound)
		}
		os.Exit(ExitError)
	}
}
