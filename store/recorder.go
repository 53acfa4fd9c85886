package store

import (
	"context"
	"log/slog"
	"time"

	"github.com/levely/playereconomy/economy/ledger"
	"golang.org/x/sync/errgroup"
)

const (
	recorderQueueDepth   = 4096
	recorderWriteTimeout = 10 * time.Second
)

// Recorder is a write-behind ledger.Sink: cell and cumulative changes are
// queued on the committing path and flushed to Postgres by a single worker,
// so one slow write never stalls a mutation and per-cell write order matches
// commit order.
type Recorder struct {
	repo  BalanceRepository
	queue chan recorded
	g     errgroup.Group
}

type recorded struct {
	cell       *BalanceCell
	cumulative *CumulativeBalance
}

func NewRecorder(repo BalanceRepository) *Recorder {
	r := &Recorder{
		repo:  repo,
		queue: make(chan recorded, recorderQueueDepth),
	}
	r.g.Go(r.drain)
	return r
}

// BalanceChanged implements ledger.Sink.
func (r *Recorder) BalanceChanged(u ledger.Update) {
	cell := &BalanceCell{
		PlayerID:    u.PlayerID,
		PlayerName:  u.PlayerName,
		Economy:     u.Economy.Name(),
		Period:      u.Period.String(),
		Balance:     u.Balance,
		BucketStart: u.Bucket,
	}
	r.enqueue(recorded{cell: cell})
}

// CumulativeChanged implements ledger.Sink.
func (r *Recorder) CumulativeChanged(u ledger.CumulativeUpdate) {
	r.enqueue(recorded{cumulative: &CumulativeBalance{
		PlayerID: u.PlayerID,
		Economy:  u.Economy.Name(),
		Balance:  u.Balance,
	}})
}

func (r *Recorder) enqueue(rec recorded) {
	select {
	case r.queue <- rec:
	default:
		// Backpressure instead of dropping a write; losing a snapshot row
		// would resurrect a stale balance on restart.
		slog.Warn("Balance write queue full, waiting for drain",
			slog.String("type", "db"))
		r.queue <- rec
	}
}

func (r *Recorder) drain() error {
	for rec := range r.queue {
		ctx, cancel := context.WithTimeout(context.Background(), recorderWriteTimeout)
		var err error
		switch {
		case rec.cell != nil:
			err = r.repo.UpsertCell(ctx, rec.cell)
		case rec.cumulative != nil:
			err = r.repo.UpsertCumulative(ctx, rec.cumulative)
		}
		cancel()
		if err != nil {
			slog.Error("Failed to persist balance change",
				slog.String("type", "db"),
				slog.Any("error", err))
		}
	}
	return nil
}

// Close flushes the queue and stops the worker.
func (r *Recorder) Close() error {
	close(r.queue)
	return r.g.Wait()
}
