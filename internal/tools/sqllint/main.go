// Command sqllint checks that every SQL constant carries a unique
// "--sql <uuid>" marker on its first line, which SQLRunner requires at runtime.
package main

import (
	"flag"
	"fmt"
	"os"
)

func main() {
	flag.Parse()
	targets := flag.Args()
	if len(targets) == 0 {
		targets = []string{"internal/sqlinline"}
	}

	var l linter
	for _, target := range targets {
		if err := l.lintPath(target); err != nil {
			fmt.Fprintf(os.Stderr, "sqllint: %v\n", err)
			os.Exit(1)
		}
	}

	violations := l.finish()
	if len(violations) == 0 {
		return
	}
	fmt.Fprintln(os.Stderr, "sqllint: SQL audit marker problems")
	for _, v := range violations {
		fmt.Fprintf(os.Stderr, "  %s\n", v)
	}
	os.Exit(1)
}
