package capture

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/cstrafe/internal/model"
)

const (
	codeA     = 30
	codeD     = 32
	codeSpace = 57
	codeEsc   = 1
	codeQ     = 16
)

func testBindings(t *testing.T) Bindings {
	t.Helper()
	b, err := ParseBindings(model.Config{Left: "a", Right: "d", Shoot: "space", Quit: "esc"})
	require.NoError(t, err)
	return b
}

func raw(code uint16, pressed bool, ms int) RawEvent {
	return RawEvent{Code: code, Pressed: pressed, At: model.Timestamp(time.Duration(ms) * time.Millisecond)}
}

// fakeSource replays scripted events, then blocks until ctx is done or
// fails with failErr.
type fakeSource struct {
	openErr error
	events  []RawEvent
	failErr error

	mu     sync.Mutex
	closed bool
}

func (f *fakeSource) Open() error { return f.openErr }

func (f *fakeSource) Run(ctx context.Context, emit func(RawEvent)) error {
	for _, ev := range f.events {
		emit(ev)
	}
	if f.failErr != nil {
		return f.failErr
	}
	<-ctx.Done()
	return nil
}

func (f *fakeSource) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func (f *fakeSource) isClosed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

func TestPushFiltersAndOrders(t *testing.T) {
	b := NewBridge(testBindings(t), 16, nil)
	b.Push(raw(codeA, true, 0))
	b.Push(raw(codeQ, true, 1))
	b.Push(raw(codeA, true, 2)) // auto-repeat
	b.Push(raw(codeA, false, 3))
	b.Push(raw(codeD, false, 4)) // release without press
	b.Push(raw(codeD, true, 5))
	b.Push(raw(codeSpace, true, 6))

	batch := b.Drain()
	require.False(t, batch.Overflow)
	require.False(t, batch.Lost)
	require.Equal(t, []model.KeyEvent{
		{Key: model.KeyLeft, Kind: model.Press, At: model.Timestamp(0)},
		{Key: model.KeyLeft, Kind: model.Release, At: model.Timestamp(3 * time.Millisecond)},
		{Key: model.KeyRight, Kind: model.Press, At: model.Timestamp(5 * time.Millisecond)},
		{Key: model.KeyShoot, Kind: model.Press, At: model.Timestamp(6 * time.Millisecond)},
	}, batch.Events)

	st := b.Stats()
	require.Equal(t, uint64(1), st.Repeats)
	require.Equal(t, uint64(2), st.Filtered)
	require.Zero(t, st.Queued)
	require.Empty(t, b.Drain().Events)
}

func TestAliasMapsToLeft(t *testing.T) {
	bindings, err := ParseBindings(model.Config{Left: "a", LeftAlias: "left_alt", Right: "d", Shoot: "space", Quit: "esc"})
	require.NoError(t, err)
	b := NewBridge(bindings, 4, nil)
	b.Push(raw(56, true, 0))
	batch := b.Drain()
	require.Len(t, batch.Events, 1)
	require.Equal(t, model.KeyLeft, batch.Events[0].Key)
}

func TestOverflowDropsOldestOncePerBurst(t *testing.T) {
	b := NewBridge(testBindings(t), 4, nil)
	for i := 0; i < 10; i++ {
		b.Push(raw(codeA, i%2 == 0, i))
	}

	batch := b.Drain()
	require.True(t, batch.Overflow)
	require.Len(t, batch.Events, 4)
	require.Equal(t, model.Timestamp(6*time.Millisecond), batch.Events[0].At)
	require.Equal(t, model.Timestamp(9*time.Millisecond), batch.Events[3].At)

	st := b.Stats()
	require.Equal(t, uint64(6), st.Dropped)
	require.Equal(t, uint64(1), st.Bursts)

	require.False(t, b.Drain().Overflow, "overflow must be reported once")
}

func TestOverflowNewBurstAfterRecovery(t *testing.T) {
	b := NewBridge(testBindings(t), 2, nil)
	for i := 0; i < 4; i++ {
		b.Push(raw(codeA, i%2 == 0, i))
	}
	require.True(t, b.Drain().Overflow)

	b.Push(raw(codeA, true, 10))
	b.Push(raw(codeA, false, 11))
	require.False(t, b.Drain().Overflow)

	for i := 20; i < 23; i++ {
		b.Push(raw(codeA, i%2 == 0, i))
	}
	require.True(t, b.Drain().Overflow)
	require.Equal(t, uint64(2), b.Stats().Bursts)
}

func TestStartOpenFailure(t *testing.T) {
	b := NewBridge(testBindings(t), 4, nil)
	err := b.Start(context.Background(), &fakeSource{openErr: errors.New("permission denied")})
	require.ErrorIs(t, err, ErrCaptureUnavailable)
	require.Contains(t, err.Error(), "permission denied")
}

func TestStartTwice(t *testing.T) {
	b := NewBridge(testBindings(t), 4, nil)
	src := &fakeSource{}
	require.NoError(t, b.Start(context.Background(), src))
	defer b.Stop()
	require.ErrorIs(t, b.Start(context.Background(), src), ErrAlreadyStarted)
}

func TestLostReportedOnceAfterQueueDrains(t *testing.T) {
	b := NewBridge(testBindings(t), 8, nil)
	src := &fakeSource{
		events:  []RawEvent{raw(codeA, true, 0), raw(codeA, false, 50)},
		failErr: errors.New("device unplugged"),
	}
	require.NoError(t, b.Start(context.Background(), src))

	require.Eventually(t, func() bool { return b.Stats().Lost }, time.Second, time.Millisecond)

	batch := b.Drain()
	require.Len(t, batch.Events, 2)
	require.True(t, batch.Lost)
	require.False(t, b.Drain().Lost, "lost must be reported once")
	require.True(t, src.isClosed())
	b.Stop()
}

func TestStopIsNotLost(t *testing.T) {
	b := NewBridge(testBindings(t), 8, nil)
	src := &fakeSource{events: []RawEvent{raw(codeD, true, 0)}}
	require.NoError(t, b.Start(context.Background(), src))
	b.Stop()

	require.True(t, src.isClosed())
	batch := b.Drain()
	require.False(t, batch.Lost)
	require.Len(t, batch.Events, 1)
}

func TestConcurrentPushDrain(t *testing.T) {
	b := NewBridge(testBindings(t), 64, nil)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 1000; i++ {
			b.Push(raw(codeD, i%2 == 0, i))
		}
	}()

	var got []model.KeyEvent
	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	for {
		got = append(got, b.Drain().Events...)
		select {
		case <-done:
			got = append(got, b.Drain().Events...)
			for i := 1; i < len(got); i++ {
				require.Less(t, got[i-1].At, got[i].At, "events must stay ordered")
			}
			st := b.Stats()
			require.Equal(t, uint64(1000), uint64(len(got))+st.Dropped)
			return
		default:
		}
	}
}

func TestResyncReleasesLostKey(t *testing.T) {
	b := NewBridge(testBindings(t), 16, nil)
	b.Push(raw(codeA, true, 0))
	// The kernel dropped the release of A and the press of D.
	var held KeyBits
	held.Set(codeD)
	held.Set(codeQ) // unbound keys are ignored
	b.Push(RawEvent{Resync: true, Held: held, At: model.Timestamp(40 * time.Millisecond)})

	at := model.Timestamp(40 * time.Millisecond)
	require.Equal(t, []model.KeyEvent{
		{Key: model.KeyLeft, Kind: model.Press, At: 0},
		{Key: model.KeyLeft, Kind: model.Release, At: at},
		{Key: model.KeyRight, Kind: model.Press, At: at},
	}, b.Drain().Events)
	require.Equal(t, uint64(1), b.Stats().Resyncs)

	// A is up again, so the next physical press is not a repeat.
	b.Push(raw(codeA, true, 60))
	batch := b.Drain()
	require.Len(t, batch.Events, 1)
	require.Equal(t, model.Press, batch.Events[0].Kind)
	require.Zero(t, b.Stats().Repeats)
}

func TestResyncWithMatchingStateIsSilent(t *testing.T) {
	b := NewBridge(testBindings(t), 16, nil)
	b.Push(raw(codeD, true, 0))
	var held KeyBits
	held.Set(codeD)
	b.Push(RawEvent{Resync: true, Held: held, At: model.Timestamp(5 * time.Millisecond)})
	require.Len(t, b.Drain().Events, 1)
}

func TestKeyBits(t *testing.T) {
	var bits KeyBits
	require.False(t, bits.Has(57))
	bits.Set(57)
	require.True(t, bits.Has(57))
	require.False(t, bits.Has(56))
	bits.Set(0xffff)
	require.False(t, bits.Has(0xffff))
}
