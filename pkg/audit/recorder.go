package audit

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/aniketpal07/devproxy/pkg/telemetry/logging"
)

// insertTimeout bounds one background insert so a wedged database cannot
// stall the drain on shutdown.
const insertTimeout = 5 * time.Second

// Recorder buffers records and writes them to the store from a single
// background goroutine. Record never blocks: when the buffer is full the
// record is dropped and counted.
type Recorder struct {
	store   *Store
	queue   chan Record
	dropped atomic.Int64
	log     *logging.Logger

	stopOnce sync.Once
	stopChan chan struct{}
	wg       sync.WaitGroup
}

// NewRecorder starts a recorder writing to store with the given buffer
// size.
func NewRecorder(store *Store, bufferSize int, log *logging.Logger) *Recorder {
	if bufferSize < 1 {
		bufferSize = 1024
	}
	r := &Recorder{
		store:    store,
		queue:    make(chan Record, bufferSize),
		log:      log,
		stopChan: make(chan struct{}),
	}
	r.wg.Add(1)
	go r.run()
	return r
}

// Record enqueues one record. It never blocks the caller.
func (r *Recorder) Record(rec Record) {
	select {
	case r.queue <- rec:
	default:
		r.dropped.Add(1)
	}
}

// Dropped returns how many records were discarded because the buffer was
// full.
func (r *Recorder) Dropped() int64 {
	return r.dropped.Load()
}

// Close stops the writer after draining queued records, then closes the
// store.
func (r *Recorder) Close() error {
	r.stopOnce.Do(func() {
		close(r.stopChan)
	})
	r.wg.Wait()
	return r.store.Close()
}

func (r *Recorder) run() {
	defer r.wg.Done()

	for {
		select {
		case <-r.stopChan:
			for {
				select {
				case rec := <-r.queue:
					r.insert(rec)
				default:
					return
				}
			}
		case rec := <-r.queue:
			r.insert(rec)
		}
	}
}

func (r *Recorder) insert(rec Record) {
	ctx, cancel := context.WithTimeout(context.Background(), insertTimeout)
	defer cancel()

	if err := r.store.Insert(ctx, rec); err != nil {
		r.log.Warn("failed to persist audit record", "record_id", rec.ID, "error", err)
	}
}
