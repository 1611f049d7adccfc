package main

import (
	"os"

	"github.com/shouni/pose-image-kit/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
