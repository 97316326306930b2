package engine

import (
	"context"
	"errors"
	"log/slog"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"
)

// ErrAlreadyStarted is returned by Start on every call after the first.
var ErrAlreadyStarted = errors.New("reminder loop already started")

const (
	DefaultInterval = 60 * time.Second
	DefaultBackoff  = 5 * time.Second
)

// Ticker delivers scan ticks.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

type timeTicker struct {
	t *time.Ticker
}

// NewTimeTicker adapts time.Ticker to Ticker.
func NewTimeTicker(d time.Duration) Ticker {
	return timeTicker{t: time.NewTicker(d)}
}

func (t timeTicker) C() <-chan time.Time { return t.t.C }
func (t timeTicker) Stop()               { t.t.Stop() }

// Scanner is one unit of periodic work. *Engine satisfies it.
type Scanner interface {
	Scan(ctx context.Context) Result
}

type LoopConfig struct {
	// Interval between scans. Zero means DefaultInterval.
	Interval time.Duration
	// Backoff after a tick panics. Zero means DefaultBackoff.
	Backoff time.Duration
	// NewTicker overrides the tick source, mainly for tests.
	NewTicker func(time.Duration) Ticker
	// OnTick, if set, is called after every completed or recovered tick.
	OnTick func(Result)
}

// Loop runs a Scanner on every tick until stopped. It scans once right
// away, then on each tick.
type Loop struct {
	scanner Scanner
	config  LoopConfig
	logger  *slog.Logger

	started  atomic.Bool
	stopOnce sync.Once
	stop     chan struct{}
	wg       sync.WaitGroup
}

func NewLoop(scanner Scanner, config LoopConfig, logger *slog.Logger) *Loop {
	if config.Interval <= 0 {
		config.Interval = DefaultInterval
	}
	if config.Backoff <= 0 {
		config.Backoff = DefaultBackoff
	}
	if config.NewTicker == nil {
		config.NewTicker = NewTimeTicker
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Loop{
		scanner: scanner,
		config:  config,
		logger:  logger.With("component", "loop"),
		stop:    make(chan struct{}),
	}
}

// Start launches the loop goroutine. The loop ends when ctx is cancelled or
// Stop is called. A Loop can only be started once.
func (l *Loop) Start(ctx context.Context) error {
	if !l.started.CompareAndSwap(false, true) {
		return ErrAlreadyStarted
	}
	ticker := l.config.NewTicker(l.config.Interval)
	l.wg.Add(1)
	go func() {
		defer l.wg.Done()
		defer ticker.Stop()
		l.run(ctx, ticker)
	}()
	l.logger.Info("reminder loop started", "interval", l.config.Interval)
	return nil
}

// Stop signals the loop and waits for it to exit. It is safe to call more
// than once, and before Start.
func (l *Loop) Stop() {
	l.stopOnce.Do(func() { close(l.stop) })
	l.wg.Wait()
}

func (l *Loop) run(ctx context.Context, ticker Ticker) {
	for {
		if !l.tick(ctx) {
			l.logger.Info("backing off after failed tick", "backoff", l.config.Backoff)
			select {
			case <-ctx.Done():
				return
			case <-l.stop:
				return
			case <-time.After(l.config.Backoff):
			}
		}

		select {
		case <-ctx.Done():
			l.logger.Info("reminder loop stopped", "reason", ctx.Err())
			return
		case <-l.stop:
			l.logger.Info("reminder loop stopped")
			return
		case <-ticker.C():
		}
	}
}

// tick runs one scan and reports whether it completed without panicking.
func (l *Loop) tick(ctx context.Context) (ok bool) {
	var res Result
	defer func() {
		if r := recover(); r != nil {
			l.logger.Error("panic in reminder tick", "panic", r, "stack", string(debug.Stack()))
			ok = false
		}
		if l.config.OnTick != nil {
			l.config.OnTick(res)
		}
	}()
	res = l.scanner.Scan(ctx)
	return true
}
