package main

import (
	"os"

	"github.com/securegate/sgadmin/cli/cmd"
	"github.com/securegate/sgadmin/cli/pkg/output"
)

func main() {
	if err := cmd.Execute(); err != nil {
		output.Error("%v", err)
		os.Exit(1)
	}
}
