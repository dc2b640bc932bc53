// Command strata loads and runs .strata programs: evaluating a single
// definition, or saturating a stratified Datalog-with-lattices program to
// its fixed point.
package main

import (
	"fmt"
	"os"

	"github.com/strata-lang/strata/cmd/strata/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
