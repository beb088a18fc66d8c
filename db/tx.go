package db

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/0xPolygon/msgrelayer/log"
)

// Tx is a sql transaction with hooks that run once it's committed or rolled back,
// so in memory state like metrics only moves with what was persisted.
type Tx struct {
	*sql.Tx
	rollbackCallbacks []func()
	commitCallbacks   []func()
}

func NewTx(ctx context.Context, db TxBeginner) (*Tx, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	return &Tx{Tx: tx}, nil
}

func (s *Tx) AddRollbackCallback(cb func()) {
	s.rollbackCallbacks = append(s.rollbackCallbacks, cb)
}

func (s *Tx) AddCommitCallback(cb func()) {
	s.commitCallbacks = append(s.commitCallbacks, cb)
}

func (s *Tx) Commit() error {
	if err := s.Tx.Commit(); err != nil {
		return err
	}
	for _, cb := range s.commitCallbacks {
		cb()
	}
	return nil
}

func (s *Tx) Rollback() error {
	if err := s.Tx.Rollback(); err != nil {
		return err
	}
	for _, cb := range s.rollbackCallbacks {
		cb()
	}
	return nil
}

// RunInTx runs fn in a new transaction and commits it if fn succeeds. Otherwise the
// transaction is rolled back and fn's error returned; rollback failures are only logged.
func RunInTx(ctx context.Context, db TxBeginner, logger *log.Logger, fn func(tx *Tx) error) error {
	tx, err := NewTx(ctx, db)
	if err != nil {
		return fmt.Errorf("error opening tx: %w", err)
	}
	if err := fn(tx); err != nil {
		if errRllbck := tx.Rollback(); errRllbck != nil {
			logger.Errorf("error while rolling back tx %v", errRllbck)
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("error committing tx: %w", err)
	}
	return nil
}
