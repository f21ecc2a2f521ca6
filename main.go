package main

import (
	"os"

	"github.com/havrydotdev/catclient/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
