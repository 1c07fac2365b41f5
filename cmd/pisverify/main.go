// Command pisverify drives the PIS Controller through its verification
// suites from outside any engine shell: pick a suite, optionally
// override Controller options and backend, and write a report.
package main

import (
	"fmt"
	"os"

	"github.com/BatuhanAcikgoz/lc0-path-integral-method/cmd/pisverify/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
