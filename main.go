package main

import (
	"github.com/bioarchive/dsclient/cmd"
	"github.com/bioarchive/dsclient/cmd/util"
)

func main() {
	defer util.HandlePanic()
	cmd.Execute()
}
