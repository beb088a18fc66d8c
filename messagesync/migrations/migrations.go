package migrations

import (
	_ "embed"

	"github.com/0xPolygon/msgrelayer/db"
	"github.com/0xPolygon/msgrelayer/db/types"
)

//go:embed messagesync0001.sql
var mig001 string

var Migrations = []types.Migration{
	{
		ID:  "messagesync0001",
		SQL: mig001,
	},
}

func RunMigrations(dbPath string) error {
	return db.RunMigrations(dbPath, Migrations)
}
