package main

import (
	"os"

	"github.com/abhisek/datagen/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
