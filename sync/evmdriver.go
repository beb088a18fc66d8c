package sync

import (
	"context"

	"github.com/0xPolygon/msgrelayer/log"
)

type downloader interface {
	Download(ctx context.Context, fromBlock uint64, downloadedCh chan EVMBlock)
}

// EVMDriver feeds the processor with the blocks produced by the downloader. It
// doesn't track reorgs, so it should be used with a finality that can't be reorged.
type EVMDriver struct {
	processor          ProcessorInterface
	downloader         downloader
	syncerID           string
	downloadBufferSize int
	rh                 *RetryHandler
	log                *log.Logger
}

func NewEVMDriver(
	processor ProcessorInterface,
	downloader downloader,
	syncerID string,
	downloadBufferSize int,
	rh *RetryHandler,
) *EVMDriver {
	return &EVMDriver{
		processor:          processor,
		downloader:         downloader,
		syncerID:           syncerID,
		downloadBufferSize: downloadBufferSize,
		rh:                 rh,
		log:                log.WithFields("syncer", syncerID),
	}
}

// Sync blocks until ctx is done
func (d *EVMDriver) Sync(ctx context.Context) {
	var (
		lastProcessedBlock uint64
		attempts           int
		err                error
	)
	for {
		lastProcessedBlock, err = d.processor.GetLastProcessedBlock(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			attempts++
			d.log.Error("error getting last processed block: ", err)
			d.rh.Handle("Sync", attempts)
			continue
		}
		break
	}
	cancellableCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	d.log.Infof("starting sync, lastProcessedBlock: %d", lastProcessedBlock)
	downloadCh := make(chan EVMBlock, d.downloadBufferSize)
	go d.downloader.Download(cancellableCtx, lastProcessedBlock+1, downloadCh)

	for {
		select {
		case <-ctx.Done():
			d.log.Info("sync stopped")
			return
		case b, ok := <-downloadCh:
			if !ok {
				return
			}
			d.log.Debug("handleNewBlock: ", b.Num, b.Hash)
			d.handleNewBlock(ctx, b)
		}
	}
}

func (d *EVMDriver) handleNewBlock(ctx context.Context, b EVMBlock) {
	attempts := 0
	blockToProcess := Block{
		Num:    b.Num,
		Events: b.Events,
	}
	for {
		err := d.processor.ProcessBlock(ctx, blockToProcess)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			attempts++
			d.log.Errorf("error processing events for block %d, err: %v", b.Num, err)
			d.rh.Handle("handleNewBlock", attempts)
			continue
		}
		break
	}
}
