package draft

import (
	"context"
	"sync"
	"time"

	"github.com/pawdiary/pawdiary/internal/domain/form"
)

// DefaultAutosaveDelay is the debounce window between the last edit and a save.
const DefaultAutosaveDelay = 2500 * time.Millisecond

// Autosaver debounces saves for one editor session. Each Schedule cancels the
// pending save and starts a new delay. Failed saves are logged and dropped;
// the next edit schedules another attempt.
type Autosaver struct {
	svc     *Service
	delay   time.Duration
	onSaved func(Draft)

	mu      sync.Mutex
	ctx     Context
	timer   *time.Timer
	gen     uint64
	pending *form.ActivityFormData
	closed  bool
}

// NewAutosaver creates an Autosaver for c. onSaved may be nil.
func NewAutosaver(svc *Service, c Context, delay time.Duration, onSaved func(Draft)) *Autosaver {
	if delay <= 0 {
		delay = DefaultAutosaveDelay
	}
	return &Autosaver{svc: svc, ctx: c, delay: delay, onSaved: onSaved}
}

// SetContext retargets future saves, for example after a template change.
func (a *Autosaver) SetContext(c Context) {
	a.mu.Lock()
	a.ctx = c
	a.mu.Unlock()
}

// Context returns the current draft context.
func (a *Autosaver) Context() Context {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.ctx
}

// Schedule replaces any pending save with data and restarts the delay.
func (a *Autosaver) Schedule(data form.ActivityFormData) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return
	}

	a.stopLocked()
	snapshot := data.Clone()
	a.pending = &snapshot
	gen := a.gen
	a.timer = time.AfterFunc(a.delay, func() { a.fire(gen) })
}

// Pending reports whether a save is scheduled.
func (a *Autosaver) Pending() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.pending != nil
}

// Cancel drops the pending save, if any.
func (a *Autosaver) Cancel() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.stopLocked()
}

// Flush writes the pending save now.
func (a *Autosaver) Flush(ctx context.Context) error {
	a.mu.Lock()
	data, c := a.pending, a.ctx
	a.stopLocked()
	a.mu.Unlock()

	if data == nil {
		return nil
	}
	d, err := a.svc.Save(ctx, c, *data)
	if err != nil {
		return err
	}
	if a.onSaved != nil {
		a.onSaved(d)
	}
	return nil
}

// Close cancels the pending save and ignores later Schedule calls.
func (a *Autosaver) Close() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.stopLocked()
	a.closed = true
}

// stopLocked invalidates the current timer. A callback already running sees a
// newer generation and does nothing.
func (a *Autosaver) stopLocked() {
	if a.timer != nil {
		a.timer.Stop()
		a.timer = nil
	}
	a.gen++
	a.pending = nil
}

func (a *Autosaver) fire(gen uint64) {
	a.mu.Lock()
	if gen != a.gen || a.pending == nil {
		a.mu.Unlock()
		return
	}
	data, c := *a.pending, a.ctx
	a.pending = nil
	a.timer = nil
	a.mu.Unlock()

	d, err := a.svc.Save(context.Background(), c, data)
	if err != nil {
		a.svc.logger.Warn("autosave failed", "key", c.Key(), "error", err)
		return
	}
	if a.onSaved != nil {
		a.onSaved(d)
	}
}
