package main

import (
	"os"

	"github.com/0xPolygon/msgrelayer"
	"github.com/0xPolygon/msgrelayer/common"
	"github.com/0xPolygon/msgrelayer/config"
	"github.com/0xPolygon/msgrelayer/log"
	"github.com/urfave/cli/v2"
)

const appName = "msgrelayer"

var (
	configFileFlag = cli.StringSliceFlag{
		Name:     config.FlagCfg,
		Aliases:  []string{"c"},
		Usage:    "Configuration file(s)",
		Required: true,
	}
	componentsFlag = cli.StringSliceFlag{
		Name:     config.FlagComponents,
		Aliases:  []string{"co"},
		Usage:    "List of components to run",
		Required: false,
		Value:    cli.NewStringSlice(common.MESSAGE_SYNC, common.MERKLE_TREE, common.RPC),
	}
	saveConfigFlag = cli.StringFlag{
		Name:     config.FlagSaveConfigPath,
		Aliases:  []string{"s"},
		Usage:    "Save final configuration into to the indicated path (name: msgrelayer_config.toml)",
		Required: false,
	}
	minConfigFlag = cli.BoolFlag{
		Name:     config.FlagMinConfig,
		Usage:    "Print only the vars that must be set for each deployment",
		Required: false,
	}
)

func main() {
	app := cli.NewApp()
	app.Name = appName
	app.Version = msgrelayer.Version
	app.Commands = []*cli.Command{
		{
			Name:    "version",
			Aliases: []string{},
			Usage:   "Application version and build",
			Action:  versionCmd,
		},
		{
			Name:    "run",
			Aliases: []string{},
			Usage:   "Run the msgrelayer node",
			Action:  start,
			Flags:   []cli.Flag{&configFileFlag, &componentsFlag, &saveConfigFlag},
		},
		{
			Name:   "config",
			Usage:  "Print the default configuration",
			Action: configCmd,
			Flags:  []cli.Flag{&minConfigFlag},
		},
		{
			Name:   "schema",
			Usage:  "Print the JSON schema of the configuration",
			Action: schemaCmd,
		},
	}

	err := app.Run(os.Args)
	if err != nil {
		log.Fatal(err)
		os.Exit(1)
	}
}
