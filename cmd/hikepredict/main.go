package main

import (
	"os"

	"hikepredict/internal/cli"
)

func main() { os.Exit(cli.Main()) }
