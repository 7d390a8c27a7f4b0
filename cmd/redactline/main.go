// Command redactline redacts secrets from a stream of log records using a
// configurable set of name/literal/regex/replacement patterns.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
