package main

import (
	"os"

	"github.com/asencis/datacite-go/internal/cmd"
)

func main() {
	os.Exit(cmd.Main(os.Args))
}
