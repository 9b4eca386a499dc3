package main

import (
	"os"

	"ifacescan/internal/ui/cli"
)

func main() {
	os.Exit(cli.Run(os.Args[1:]))
}
