package treeprocessor

import "github.com/0xPolygon/msgrelayer/config/types"

type Config struct {
	// DBPath path of the DB where the root of every index is stored
	DBPath string `mapstructure:"DBPath"`
	// Height of the merkle tree, it must match the tree of the origin chain
	Height uint8 `mapstructure:"Height"`
	// WaitForNewLeavesPeriod is the time waited between polls to the leaf source
	WaitForNewLeavesPeriod types.Duration `mapstructure:"WaitForNewLeavesPeriod"`
	// BatchSize is the max amount of leaves read from the leaf source and ingested at once
	BatchSize uint32 `mapstructure:"BatchSize"`
}
