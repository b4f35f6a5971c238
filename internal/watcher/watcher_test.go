package watcher_test

import (
	"context"
	"testing"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/stretchr/testify/require"

	"github.com/olegsm/billgate/internal/entity"
	"github.com/olegsm/billgate/internal/ledger"
	"github.com/olegsm/billgate/internal/watcher"
)

func collect(t *testing.T, events <-chan watcher.Event, within time.Duration) []watcher.Event {
	t.Helper()

	var got []watcher.Event

	timeout := time.After(within)

	for {
		select {
		case e, ok := <-events:
			if !ok {
				return got
			}

			got = append(got, e)

		case <-timeout:
			t.Fatalf("watch did not finish within %s, events so far: %v", within, got)
		}
	}
}

func TestWatcher_Timeout(t *testing.T) {
	t.Parallel()

	l := ledger.NewMemory()
	w := watcher.New(l, 200*time.Millisecond, 100*time.Millisecond)

	start := time.Now()
	events := collect(t, w.Watch(context.Background(), uuid.Must(uuid.NewV4())), 2*time.Second)
	elapsed := time.Since(start)

	require.Len(t, events, 2)
	require.Equal(t, watcher.EventWaiting, events[0].Kind)
	require.Equal(t, watcher.EventTimeout, events[1].Kind)
	require.Equal(t, "Bill was not paid!", events[1].Message)

	require.Less(t, elapsed, time.Second)
}

func TestWatcher_AlreadyResolved(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	billID := uuid.Must(uuid.NewV4())

	l := ledger.NewMemory()

	_, err := l.SetIfUnset(ctx, billID, entity.BillStatusRejected)
	require.NoError(t, err)

	w := watcher.New(l, 10*time.Second, time.Second)

	events := collect(t, w.Watch(ctx, billID), 2*time.Second)

	require.Len(t, events, 2)
	require.Equal(t, watcher.EventWaiting, events[0].Kind)
	require.Equal(t, watcher.EventResolved, events[1].Kind)
	require.Equal(t, entity.BillStatusRejected, events[1].Status)
	require.Equal(t, "Bill was rejected!", events[1].Message)
}

func TestWatcher_ResolutionBeforeNextTick(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	billID := uuid.Must(uuid.NewV4())

	l := ledger.NewMemory()
	w := watcher.New(l, 5*time.Second, 50*time.Millisecond)

	events := w.Watch(ctx, billID)

	// The bill resolves while the watcher sleeps between ticks.
	go func() {
		time.Sleep(20 * time.Millisecond)
		_, _ = l.SetIfUnset(ctx, billID, entity.BillStatusPaid)
	}()

	got := collect(t, events, 2*time.Second)

	require.Len(t, got, 2)
	require.Equal(t, watcher.EventWaiting, got[0].Kind)
	require.Equal(t, watcher.EventResolved, got[1].Kind)
	require.Equal(t, entity.BillStatusPaid, got[1].Status)
	require.Contains(t, got[1].Message, "Bill was paid!")
}

func TestWatcher_ContextCancelStopsWithoutEvent(t *testing.T) {
	t.Parallel()

	l := ledger.NewMemory()
	w := watcher.New(l, time.Minute, 10*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	events := w.Watch(ctx, uuid.Must(uuid.NewV4()))

	first := <-events
	require.Equal(t, watcher.EventWaiting, first.Kind)

	cancel()

	got := collect(t, events, time.Second)
	require.Empty(t, got)
}
