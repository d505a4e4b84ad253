// Command scxmlc is the minimal CLI surface for the analysis front-end
// (spec.md §6): parses one SCXML file and prints a one-line summary for
// smoke testing.
//
// Grounded on the teacher's validator/cmd/validate/main.go: flat os.Args
// handling, a small human-readable summary to stdout, exit 0/1.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/scxmlc/frontend/analyzer"
)

func main() {
	if len(os.Args) != 2 {
		fmt.Fprintf(os.Stderr, "usage: %s <scxml-path>\n", os.Args[0])
		os.Exit(1)
	}

	path := os.Args[1]

	a := analyzer.New(analyzer.Config{})
	m, err := a.AnalyzeFile(context.Background(), path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}

	fmt.Printf(
		"model=%s initial=%s states=%d events=%d needs_jsengine=%t variables=%d\n",
		m.Name, m.Initial, len(m.States), len(m.Events), m.NeedsJSEngine, len(m.Variables),
	)
}
