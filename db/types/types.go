package types

// Migration is a sql script embedded by a component. The script holds the down
// statements first, followed by "-- +migrate Up" and the up statements.
type Migration struct {
	ID  string
	SQL string
	// Prefix is prepended to the ID, so components sharing a DB don't clash
	Prefix string
}
