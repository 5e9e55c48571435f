// synlint statically analyzes exported Synapse workspace templates.
package main

import (
	"os"

	"github.com/p33ves/synlint/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
