package main

import (
	"os"

	"github.com/soundprediction/memento/cmd/memento"
)

func main() {
	if err := memento.Execute(); err != nil {
		os.Exit(1)
	}
}
