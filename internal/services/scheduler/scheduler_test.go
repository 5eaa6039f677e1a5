package scheduler

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/magabrotheeeer/event-reminder/internal/services/dispatch"
)

type dispatcherStub struct {
	mu      sync.Mutex
	calls   int
	block   chan struct{}
	started chan struct{}
	panics  bool
}

func (d *dispatcherStub) RunCycle(_ context.Context) (dispatch.Stats, error) {
	d.mu.Lock()
	d.calls++
	d.mu.Unlock()
	if d.started != nil {
		close(d.started)
		d.started = nil
	}
	if d.panics {
		panic("boom")
	}
	if d.block != nil {
		<-d.block
	}
	return dispatch.Stats{Sent: 1}, nil
}

func (d *dispatcherStub) callCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.calls
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func TestRunOnce(t *testing.T) {
	d := &dispatcherStub{}
	s := New(d, newNoopLogger(), Options{})

	assert.True(t, s.RunOnce(context.Background()))
	assert.Equal(t, 1, d.callCount())
}

func TestRunOnce_SkipsConcurrentCycle(t *testing.T) {
	d := &dispatcherStub{
		block:   make(chan struct{}),
		started: make(chan struct{}),
	}
	s := New(d, newNoopLogger(), Options{})

	done := make(chan bool)
	go func() {
		done <- s.RunOnce(context.Background())
	}()
	<-d.started

	// Пересекающийся запуск пропускается, а не ждёт.
	assert.False(t, s.RunOnce(context.Background()))

	close(d.block)
	assert.True(t, <-done)
	assert.Equal(t, 1, d.callCount())
}

func TestRunOnce_RecoversFromPanic(t *testing.T) {
	d := &dispatcherStub{panics: true}
	s := New(d, newNoopLogger(), Options{})

	assert.NotPanics(t, func() {
		assert.True(t, s.RunOnce(context.Background()))
	})
	// После паники планировщик остаётся рабочим.
	d.panics = false
	assert.True(t, s.RunOnce(context.Background()))
	assert.Equal(t, 2, d.callCount())
}

func TestUntilNextDailyRun(t *testing.T) {
	tests := []struct {
		name string
		now  time.Time
		hour int
		want time.Duration
	}{
		{
			name: "до сегодняшнего запуска",
			now:  time.Date(2026, time.March, 10, 7, 0, 0, 0, time.UTC),
			hour: 9,
			want: 2 * time.Hour,
		},
		{
			name: "час уже прошёл - запуск завтра",
			now:  time.Date(2026, time.March, 10, 10, 0, 0, 0, time.UTC),
			hour: 9,
			want: 23 * time.Hour,
		},
		{
			name: "ровно в час запуска - следующий через сутки",
			now:  time.Date(2026, time.March, 10, 9, 0, 0, 0, time.UTC),
			hour: 9,
			want: 24 * time.Hour,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, untilNextDailyRun(tt.now, tt.hour))
		})
	}
}

func TestOptionsDefaults(t *testing.T) {
	s := New(&dispatcherStub{}, newNoopLogger(), Options{DailyHour: 9})
	assert.Equal(t, time.UTC, s.opts.Location)
	assert.Equal(t, 6*time.Hour, s.opts.SweepInterval)
}
