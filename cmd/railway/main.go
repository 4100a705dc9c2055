// Command railway is the Railway language interpreter's command-line
// entry point.
package main

import (
	"fmt"
	"os"

	"github.com/railwaylang/railway/cmd/railway/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
