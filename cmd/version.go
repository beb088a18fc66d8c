package main

import (
	"os"

	"github.com/0xPolygon/msgrelayer"
	"github.com/urfave/cli/v2"
)

func versionCmd(*cli.Context) error {
	msgrelayer.PrintVersion(os.Stdout)
	return nil
}
