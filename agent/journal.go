package agent

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/hupe1980/reagent/core"
	"github.com/hupe1980/reagent/logging"
)

// Journal is the non-blocking hand-off between the reasoning loop and the
// memory provider. Records are queued on a bounded channel and drained by a
// single background goroutine; when the queue is full the record is dropped
// and the drop is logged, so persistence can never stall or fail the loop.
type Journal struct {
	provider core.MemoryProvider
	logger   logging.Logger

	queue     chan journalRecord
	done      chan struct{}
	closeOnce sync.Once
	dropped   atomic.Int64
}

type journalRecord struct {
	tp       *core.ThoughtProcess
	userID   string
	metadata map[string]any
}

// JournalOptions configures a Journal.
type JournalOptions struct {
	// BufferSize is the queue capacity. Zero or negative falls back to 64.
	BufferSize int
	Logger     logging.Logger
}

// NewJournal creates a Journal draining into provider and starts its
// background writer. Callers must Close the journal to flush pending records.
func NewJournal(provider core.MemoryProvider, optFns ...func(o *JournalOptions)) *Journal {
	opts := JournalOptions{BufferSize: 64, Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.BufferSize <= 0 {
		opts.BufferSize = 64
	}

	j := &Journal{
		provider: provider,
		logger:   opts.Logger,
		queue:    make(chan journalRecord, opts.BufferSize),
		done:     make(chan struct{}),
	}
	go j.drain()
	return j
}

// Record queues a reasoning record for persistence. It never blocks: when the
// queue is full the record is dropped, logged and false is returned.
func (j *Journal) Record(tp *core.ThoughtProcess, userID string, metadata map[string]any) bool {
	select {
	case j.queue <- journalRecord{tp: tp, userID: userID, metadata: metadata}:
		return true
	default:
		j.dropped.Add(1)
		j.logger.Warn("journal.record.dropped", "user_id", userID, "dropped_total", j.dropped.Load())
		return false
	}
}

// Dropped returns how many records have been dropped due to a full queue.
func (j *Journal) Dropped() int64 { return j.dropped.Load() }

// Close stops accepting records and blocks until queued records are flushed.
// Safe to call more than once.
func (j *Journal) Close() {
	j.closeOnce.Do(func() {
		close(j.queue)
		<-j.done
	})
}

func (j *Journal) drain() {
	defer close(j.done)
	for rec := range j.queue {
		// Writes outlive the invocation that queued them, so the
		// invocation context does not apply here.
		if _, err := j.provider.StoreThoughtProcess(context.Background(), rec.tp, rec.userID, rec.metadata); err != nil {
			j.logger.Warn("journal.write.failed", "user_id", rec.userID, "error", err.Error())
			continue
		}
		j.logger.Debug("journal.write.done", "user_id", rec.userID)
	}
}
