// Command catalogctl edits the app catalog in a local checkout. It is the
// offline workflow for deployments whose server cannot write: edit, then
// commit the data directory.
package main

import (
	"os"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()
	if err := newRootCmd(os.Stdout).Execute(); err != nil {
		os.Exit(1)
	}
}
