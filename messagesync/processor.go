package messagesync

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/0xPolygon/msgrelayer/db"
	"github.com/0xPolygon/msgrelayer/log"
	"github.com/0xPolygon/msgrelayer/messagesync/migrations"
	"github.com/0xPolygon/msgrelayer/sync"
	treetypes "github.com/0xPolygon/msgrelayer/tree/types"
	"github.com/ethereum/go-ethereum/common"
	"github.com/russross/meddler"
)

var (
	// ErrLeafIndexGap is returned when an inserted leaf doesn't follow the last stored one
	ErrLeafIndexGap = errors.New("leaf index is not consecutive")
)

type dispatchedMessageRow struct {
	ID          common.Hash `meddler:"id,hash"`
	BlockNum    uint64      `meddler:"block_num"`
	BlockPos    uint64      `meddler:"block_pos"`
	Version     uint8       `meddler:"version"`
	Nonce       uint32      `meddler:"nonce"`
	Origin      uint32      `meddler:"origin"`
	Sender      common.Hash `meddler:"sender,hash"`
	Destination uint32      `meddler:"destination"`
	Recipient   common.Hash `meddler:"recipient,hash"`
	Body        []byte      `meddler:"body"`
}

func newDispatchedMessageRow(d *DispatchedMessage) *dispatchedMessageRow {
	return &dispatchedMessageRow{
		ID:          d.Message.ID(),
		BlockNum:    d.BlockNum,
		BlockPos:    d.BlockPos,
		Version:     d.Message.Version,
		Nonce:       d.Message.Nonce,
		Origin:      d.Message.Origin,
		Sender:      d.Message.Sender,
		Destination: d.Message.Destination,
		Recipient:   d.Message.Recipient,
		Body:        d.Message.Body,
	}
}

func (r *dispatchedMessageRow) message() *Message {
	return &Message{
		Version:     r.Version,
		Nonce:       r.Nonce,
		Origin:      r.Origin,
		Sender:      r.Sender,
		Destination: r.Destination,
		Recipient:   r.Recipient,
		Body:        r.Body,
	}
}

type processor struct {
	db  *sql.DB
	log *log.Logger
}

func newProcessor(dbPath string, logger *log.Logger) (*processor, error) {
	database, err := db.NewSQLiteDBWithMigrations(dbPath, migrations.Migrations)
	if err != nil {
		return nil, err
	}
	return &processor{
		db:  database,
		log: logger,
	}, nil
}

// GetLastProcessedBlock returns the last processed block by the processor, including blocks
// that don't have events
func (p *processor) GetLastProcessedBlock(ctx context.Context) (uint64, error) {
	return p.getLastProcessedBlockWithTx(p.db)
}

func (p *processor) getLastProcessedBlockWithTx(tx db.Querier) (uint64, error) {
	var lastProcessedBlock uint64
	row := tx.QueryRow("SELECT num FROM block ORDER BY num DESC LIMIT 1;")
	err := row.Scan(&lastProcessedBlock)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	return lastProcessedBlock, err
}

// GetLastLeafIndex returns the index of the last inserted leaf, db.ErrNotFound if there are no leaves
func (p *processor) GetLastLeafIndex(ctx context.Context) (uint32, error) {
	return p.getLastLeafIndexWithTx(p.db)
}

func (p *processor) getLastLeafIndexWithTx(tx db.Querier) (uint32, error) {
	var lastIndex uint32
	row := tx.QueryRow("SELECT leaf_index FROM leaf ORDER BY leaf_index DESC LIMIT 1;")
	if err := row.Scan(&lastIndex); err != nil {
		return 0, db.ReturnErrNotFound(err)
	}
	return lastIndex, nil
}

// GetLeaves returns up to limit leaves, sorted by index, starting at from
func (p *processor) GetLeaves(ctx context.Context, from, limit uint32) ([]treetypes.Leaf, error) {
	leaves := []*treetypes.Leaf{}
	err := meddler.QueryAll(p.db, &leaves, `
		SELECT leaf_index, hash FROM leaf
		WHERE leaf_index >= $1
		ORDER BY leaf_index ASC
		LIMIT $2;
	`, from, limit)
	if err != nil {
		return nil, err
	}
	return db.SlicePtrsToSlice(leaves).([]treetypes.Leaf), nil //nolint:forcetypeassert
}

// GetLeaf returns the leaf stored at index
func (p *processor) GetLeaf(ctx context.Context, index uint32) (*InsertedLeaf, error) {
	leaf := &InsertedLeaf{}
	err := meddler.QueryRow(p.db, leaf, `SELECT * FROM leaf WHERE leaf_index = $1;`, index)
	if err != nil {
		return nil, db.ReturnErrNotFound(err)
	}
	return leaf, nil
}

// GetMessageByIndex returns the message whose id was inserted at index
func (p *processor) GetMessageByIndex(ctx context.Context, index uint32) (*Message, error) {
	row := &dispatchedMessageRow{}
	err := meddler.QueryRow(p.db, row, `
		SELECT message.* FROM message
		INNER JOIN leaf ON leaf.hash = message.id
		WHERE leaf.leaf_index = $1;
	`, index)
	if err != nil {
		return nil, db.ReturnErrNotFound(err)
	}
	return row.message(), nil
}

// ProcessBlock stores the block and its events atomically
func (p *processor) ProcessBlock(ctx context.Context, block sync.Block) error {
	err := db.RunInTx(ctx, p.db, p.log, func(tx *db.Tx) error {
		if _, err := tx.Exec(`INSERT INTO block (num) VALUES ($1)`, block.Num); err != nil {
			return err
		}

		nextIndex, err := p.nextLeafIndex(tx)
		if err != nil {
			return err
		}
		for _, e := range block.Events {
			event, ok := e.(Event)
			if !ok {
				return fmt.Errorf("unexpected event type %T on block %d", e, block.Num)
			}
			if event.InsertedLeaf != nil {
				if event.InsertedLeaf.LeafIndex != nextIndex {
					return fmt.Errorf("%w: expected %d, got %d on block %d",
						ErrLeafIndexGap, nextIndex, event.InsertedLeaf.LeafIndex, block.Num)
				}
				if err := meddler.Insert(tx, "leaf", event.InsertedLeaf); err != nil {
					return fmt.Errorf("error inserting leaf %d: %w", event.InsertedLeaf.LeafIndex, err)
				}
				nextIndex++
			}
			if event.Dispatch != nil {
				if err := meddler.Insert(tx, "message", newDispatchedMessageRow(event.Dispatch)); err != nil {
					return fmt.Errorf("error inserting message %s: %w", event.Dispatch.Message.ID().Hex(), err)
				}
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	p.log.Debugf("processed %d events until block %d", len(block.Events), block.Num)
	return nil
}

func (p *processor) nextLeafIndex(tx db.Querier) (uint32, error) {
	lastIndex, err := p.getLastLeafIndexWithTx(tx)
	if errors.Is(err, db.ErrNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return lastIndex + 1, nil
}
