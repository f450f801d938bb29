package main

import (
	"os"

	"github.com/anupam/lessontrack/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
