package main

import (
	"os"

	"github.com/slighter12/modelweb-mcp-go/cli"
)

func main() {
	os.Exit(cli.Execute())
}
