package main

import (
	"fmt"
	"os"

	"github.com/insightdelivered/releve-converter/internal/commands"
)

func main() {
	if err := commands.NewRootCommand().Execute(); err != nil {
		fatalf("\n%s\n\n", err)
	}
}

func fatalf(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, format, args...)
	os.Exit(1)
}
