package main

import (
	"os"

	"github.com/soundprediction/notegraph/cmd/notegraph"
)

func main() {
	if err := notegraph.Execute(); err != nil {
		os.Exit(1)
	}
}
