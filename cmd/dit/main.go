package main

import (
	"os"

	"github.com/complexairport/dit/internal/cli"
	"github.com/complexairport/dit/internal/dlog"
)

func main() {
	dlog.Init()
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
