package structured

import (
	"context"
	"sync"
	"time"

	"github.com/rickchristie/reactqa"
)

// DefaultDelay is the pause taken before every model call when none is configured.
const DefaultDelay = time.Second

// Pacer enforces a fixed pause before every model call.
//
// Waits are serialized: concurrent callers queue on the pacer and each one sleeps the
// full delay, so N calls through one Pacer take at least N times the delay. Share one
// Pacer between adapters to make the limit process wide.
type Pacer struct {
	mu    sync.Mutex
	delay time.Duration
	clock reactqa.TimeProvider
	waits int
}

// NewPacer creates a Pacer. A negative delay is treated as zero and a nil clock as the
// system clock.
func NewPacer(delay time.Duration, clock reactqa.TimeProvider) *Pacer {
	if delay < 0 {
		delay = 0
	}
	if clock == nil {
		clock = reactqa.NewDefaultTimeProvider()
	}
	return &Pacer{delay: delay, clock: clock}
}

var (
	sharedOnce  sync.Once
	sharedPacer *Pacer
)

// SharedPacer returns the process-wide pacer with [DefaultDelay] on the system clock.
// Adapters built without [WithPacer] use it.
func SharedPacer() *Pacer {
	sharedOnce.Do(func() {
		sharedPacer = NewPacer(DefaultDelay, nil)
	})
	return sharedPacer
}

// Delay returns the configured pause.
func (p *Pacer) Delay() time.Duration {
	return p.delay
}

// Waits returns how many waits have completed.
func (p *Pacer) Waits() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.waits
}

// Wait sleeps for the delay. It returns ctx.Err() if the context ends first.
func (p *Pacer) Wait(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.clock.Sleep(ctx, p.delay); err != nil {
		return err
	}
	p.waits++
	return nil
}
