package main

import (
	"os"

	"github.com/abhisek/coursetrail/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
