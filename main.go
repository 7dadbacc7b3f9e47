package main

import (
	"os"

	"github.com/pkubaj/fastfetch/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
