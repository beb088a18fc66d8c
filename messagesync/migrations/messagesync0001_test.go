package migrations

import (
	"path"
	"testing"

	"github.com/0xPolygon/msgrelayer/db"
	"github.com/stretchr/testify/require"
)

func Test001(t *testing.T) {
	dbPath := path.Join(t.TempDir(), "messagesyncTest001.sqlite")

	err := RunMigrations(dbPath)
	require.NoError(t, err)
	database, err := db.NewSQLiteDB(dbPath)
	require.NoError(t, err)

	_, err = database.Exec(`
		INSERT INTO block (num) VALUES (1);

		INSERT INTO leaf (leaf_index, hash, block_num, block_pos) VALUES (0, '0x01', 1, 0);

		INSERT INTO message (
			id, block_num, block_pos, version, nonce, origin, sender, destination, recipient, body
		) VALUES ('0x01', 1, 1, 3, 0, 1, '0x02', 2, '0x03', NULL);
	`)
	require.NoError(t, err)
}
