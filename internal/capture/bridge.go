package capture

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/verte-zerg/cstrafe/internal/logging"
	"github.com/verte-zerg/cstrafe/internal/model"
)

// DefaultQueueSize is the bridge capacity used when none is configured.
const DefaultQueueSize = 256

// Batch is the result of one Drain.
type Batch struct {
	// Events in the order the capture goroutine observed them.
	Events []model.KeyEvent

	// Overflow is set once per overflow burst: the queue was full and the
	// oldest events were discarded since the previous Drain.
	Overflow bool

	// Lost is set exactly once, after the source stopped unexpectedly and
	// every queued event has been drained.
	Lost bool
}

// BridgeStats are counters readable from any goroutine.
type BridgeStats struct {
	Queued   int
	Dropped  uint64
	Filtered uint64
	Repeats  uint64
	Bursts   uint64
	Resyncs  uint64
	Lost     bool
}

// Bridge moves events from the capture goroutine to the control loop over a
// bounded FIFO. Push runs on the capture side and never blocks; Drain runs on
// the control loop and never blocks.
type Bridge struct {
	bindings Bindings
	queue    chan model.KeyEvent
	logger   *slog.Logger

	// capture side
	mu          sync.Mutex
	down        [model.NumKeys]bool
	overflowing bool

	overflowPending atomic.Bool
	lost            atomic.Bool
	dropped         atomic.Uint64
	filtered        atomic.Uint64
	repeats         atomic.Uint64
	bursts          atomic.Uint64
	resyncs         atomic.Uint64

	// control-loop side
	lostReported bool

	started atomic.Bool
	cancel  context.CancelFunc
	done    chan struct{}
}

// NewBridge creates a bridge with the given capacity. A nil logger discards.
func NewBridge(bindings Bindings, capacity int, logger *slog.Logger) *Bridge {
	if capacity <= 0 {
		capacity = DefaultQueueSize
	}
	if logger == nil {
		logger = logging.Discard()
	}
	return &Bridge{
		bindings: bindings,
		queue:    make(chan model.KeyEvent, capacity),
		logger:   logger,
	}
}

// Start opens src and runs it on its own goroutine. An Open failure is
// returned wrapped in ErrCaptureUnavailable.
func (b *Bridge) Start(ctx context.Context, src Source) error {
	if b.started.Swap(true) {
		return ErrAlreadyStarted
	}
	if err := src.Open(); err != nil {
		b.started.Store(false)
		return fmt.Errorf("%w: %w", ErrCaptureUnavailable, err)
	}
	runCtx, cancel := context.WithCancel(ctx)
	b.cancel = cancel
	b.done = make(chan struct{})
	go b.run(runCtx, src)
	return nil
}

func (b *Bridge) run(ctx context.Context, src Source) {
	defer close(b.done)
	err := src.Run(ctx, b.Push)
	if cerr := src.Close(); cerr != nil {
		b.logger.Debug("close capture source", "err", cerr)
	}
	if ctx.Err() != nil {
		return
	}
	if err == nil {
		err = io.EOF
	}
	b.logger.Error("capture source stopped", "err", err)
	b.lost.Store(true)
}

// Stop cancels the source and waits for it to return.
func (b *Bridge) Stop() {
	if !b.started.Load() || b.cancel == nil {
		return
	}
	b.cancel()
	<-b.done
}

// Push filters, de-duplicates and enqueues a raw event. It is safe for
// concurrent callers; events from one caller keep their order.
func (b *Bridge) Push(raw RawEvent) {
	if raw.Resync {
		b.resync(raw)
		return
	}
	key, ok := b.bindings.Lookup(raw.Code)
	if !ok {
		b.filtered.Add(1)
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if raw.Pressed && b.down[key] {
		b.repeats.Add(1)
		return
	}
	if !raw.Pressed && !b.down[key] {
		b.filtered.Add(1)
		return
	}
	b.down[key] = raw.Pressed

	kind := model.Press
	if !raw.Pressed {
		kind = model.Release
	}
	b.enqueue(model.KeyEvent{Key: key, Kind: kind, At: raw.At})
}

// resync reconciles the down flags with the source's key state and enqueues
// the transitions that were lost, so a dropped release cannot turn the next
// press into a repeat.
func (b *Bridge) resync(raw RawEvent) {
	var held [model.NumKeys]bool
	for code, key := range b.bindings {
		if raw.Held.Has(code) {
			held[key] = true
		}
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	b.resyncs.Add(1)
	b.logger.Warn("input events lost by the device, key state resynced")
	for key := model.KeyLeft; int(key) < model.NumKeys; key++ {
		if b.down[key] == held[key] {
			continue
		}
		b.down[key] = held[key]
		kind := model.Release
		if held[key] {
			kind = model.Press
		}
		b.enqueue(model.KeyEvent{Key: key, Kind: kind, At: raw.At})
	}
}

// enqueue must be called with b.mu held.
func (b *Bridge) enqueue(ev model.KeyEvent) {
	select {
	case b.queue <- ev:
		b.overflowing = false
		return
	default:
	}

	select {
	case <-b.queue:
		b.dropped.Add(1)
	default:
	}
	if !b.overflowing {
		b.overflowing = true
		b.bursts.Add(1)
		b.overflowPending.Store(true)
		b.logger.Warn("event queue overflow, dropping oldest events", "capacity", cap(b.queue))
	}
	select {
	case b.queue <- ev:
	default:
		b.dropped.Add(1)
	}
}

// Drain empties the queue without blocking.
func (b *Bridge) Drain() Batch {
	var batch Batch
	for i := 0; i < cap(b.queue); i++ {
		select {
		case ev := <-b.queue:
			batch.Events = append(batch.Events, ev)
			continue
		default:
		}
		break
	}
	batch.Overflow = b.overflowPending.Swap(false)
	if !b.lostReported && b.lost.Load() && len(b.queue) == 0 {
		b.lostReported = true
		batch.Lost = true
	}
	return batch
}

// Stats returns the bridge counters.
func (b *Bridge) Stats() BridgeStats {
	return BridgeStats{
		Queued:   len(b.queue),
		Dropped:  b.dropped.Load(),
		Filtered: b.filtered.Load(),
		Repeats:  b.repeats.Load(),
		Bursts:   b.bursts.Load(),
		Resyncs:  b.resyncs.Load(),
		Lost:     b.lost.Load(),
	}
}
