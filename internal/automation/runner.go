package automation

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/nerrad567/rundown-core/internal/metrics"
	"github.com/nerrad567/rundown-core/internal/rundown"
)

// Batch is what one tick or operator event produced, handed to a Sink after
// the transition completed.
type Batch struct {
	SessionID string
	ShowID    string
	Commands  []Command
	Events    []Event
	// Snapshot is set when the visible state changed.
	Snapshot *Snapshot
}

// Sink receives batches from the Runner. Deliver must not block.
type Sink interface {
	Deliver(b Batch)
}

// RunnerConfig configures a Runner.
type RunnerConfig struct {
	// Source fetches the rundown at start and on Reload.
	Source rundown.Source
	// TickInterval defaults to DefaultTickInterval.
	TickInterval time.Duration
	// Sink receives commands, events and snapshots. Optional.
	Sink   Sink
	Logger Logger
	// Clock defaults to time.Now.
	Clock func() time.Time
}

type runnerOp struct {
	fn func(now time.Time) error
	// reply is buffered so the loop never waits on a caller that gave up.
	reply chan error
}

// Runner is the single logical queue of a playout session. One goroutine
// owns the Engine and handles ticks and operator requests one at a time; a
// request that arrives during a tick runs after it.
//
// All exported methods are safe for concurrent use.
type Runner struct {
	cfg    RunnerConfig
	logger Logger

	ops  chan runnerOp
	done chan struct{}

	// Owned by the loop goroutine.
	engine       *Engine
	lastRevision uint64

	mu       sync.RWMutex
	snapshot *Snapshot
	loadErr  error
}

// NewRunner creates a runner. Call Run to start it.
func NewRunner(cfg RunnerConfig) *Runner {
	if cfg.TickInterval <= 0 {
		cfg.TickInterval = DefaultTickInterval
	}
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}
	if cfg.Logger == nil {
		cfg.Logger = noopLogger{}
	}
	return &Runner{
		cfg:     cfg,
		logger:  cfg.Logger,
		ops:     make(chan runnerOp),
		done:    make(chan struct{}),
		loadErr: ErrSessionUnavailable,
	}
}

// Run loads the rundown and runs the session until ctx is cancelled. A
// failed load is not fatal: the runner keeps serving ErrSessionUnavailable
// until a Reload or SetRundown succeeds.
func (r *Runner) Run(ctx context.Context) error {
	defer close(r.done)

	if r.cfg.Source != nil {
		if show, err := r.cfg.Source.Load(ctx); err != nil {
			r.setLoadErr(err)
			r.logger.Error("cannot start session", "error", err)
		} else {
			r.install(show, r.cfg.Clock())
		}
	}

	ticker := time.NewTicker(r.cfg.TickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			if r.engine != nil {
				r.engine.Dispose()
			}
			metrics.SetSessionUp(false)
			r.logger.Info("playout runner stopped")
			return nil

		case <-ticker.C:
			if r.engine == nil {
				continue
			}
			start := time.Now()
			now := r.cfg.Clock()
			r.engine.Tick(now)
			r.publish(now)
			metrics.ObserveTick(time.Since(start))

		case op := <-r.ops:
			now := r.cfg.Clock()
			err := op.fn(now)
			if r.engine != nil {
				r.publish(now)
			}
			op.reply <- err
		}
	}
}

// Do runs fn on the loop goroutine with the session's Engine and waits for
// it to finish.
func (r *Runner) Do(ctx context.Context, fn func(e *Engine, now time.Time) error) error {
	return r.submit(ctx, func(now time.Time) error {
		if r.engine == nil {
			return r.currentLoadErr()
		}
		return fn(r.engine, now)
	})
}

// Control applies a control-surface button.
func (r *Runner) Control(ctx context.Context, b Button) error {
	return r.Do(ctx, func(e *Engine, now time.Time) error {
		return e.Apply(b, now)
	})
}

// SetRundown installs show, creating the session if none exists yet.
func (r *Runner) SetRundown(ctx context.Context, show *rundown.Show) error {
	if show == nil {
		return fmt.Errorf("%w: nil show", rundown.ErrInvalidShow)
	}
	return r.submit(ctx, func(now time.Time) error {
		if r.engine == nil {
			return r.install(show, now)
		}
		r.engine.SetRundown(show, now)
		return nil
	})
}

// Reload fetches the rundown from the source and installs it. The fetch
// runs on the caller's goroutine so the session keeps ticking meanwhile.
func (r *Runner) Reload(ctx context.Context) error {
	if r.cfg.Source == nil {
		return fmt.Errorf("%w: no rundown source configured", ErrSessionUnavailable)
	}
	show, err := r.cfg.Source.Load(ctx)
	if err != nil {
		metrics.IncRundownReload(false)
		r.logger.Warn("rundown reload failed", "error", err)
		return fmt.Errorf("reloading rundown: %w", err)
	}
	if err := r.SetRundown(ctx, show); err != nil {
		metrics.IncRundownReload(false)
		return err
	}
	metrics.IncRundownReload(true)
	return nil
}

// Snapshot returns the most recently published session state.
func (r *Runner) Snapshot() (Snapshot, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.snapshot == nil {
		return Snapshot{}, r.loadErr
	}
	return *r.snapshot, nil
}

// Done is closed when Run returns.
func (r *Runner) Done() <-chan struct{} {
	return r.done
}

func (r *Runner) submit(ctx context.Context, fn func(now time.Time) error) error {
	op := runnerOp{fn: fn, reply: make(chan error, 1)}
	select {
	case r.ops <- op:
	case <-r.done:
		return ErrRunnerClosed
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case err := <-op.reply:
		return err
	case <-r.done:
		return ErrRunnerClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// install creates the session. Called on the loop goroutine only.
func (r *Runner) install(show *rundown.Show, now time.Time) error {
	e, err := New(show, Options{Logger: r.logger})
	if err != nil {
		r.setLoadErr(err)
		return err
	}
	r.engine = e
	r.lastRevision = 0
	r.setLoadErr(nil)
	metrics.SetSessionUp(true)
	r.publish(now)
	return nil
}

// publish hands the engine's queued output to the sink and refreshes the
// cached snapshot when the state changed.
func (r *Runner) publish(now time.Time) {
	cmds, evs := r.engine.Flush()

	var snap *Snapshot
	if rev := r.engine.Revision(); rev != r.lastRevision || r.snapshot == nil {
		s := r.engine.Snapshot(now)
		snap = &s
		r.lastRevision = rev
		r.mu.Lock()
		r.snapshot = snap
		r.mu.Unlock()
		metrics.SetActiveTracks(len(s.Audio.Mics), len(s.Audio.Media))
	}

	if r.cfg.Sink == nil || (len(cmds) == 0 && len(evs) == 0 && snap == nil) {
		return
	}
	r.cfg.Sink.Deliver(Batch{
		SessionID: r.engine.SessionID(),
		ShowID:    r.engine.show.ID,
		Commands:  cmds,
		Events:    evs,
		Snapshot:  snap,
	})
}

func (r *Runner) setLoadErr(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	switch {
	case err == nil:
		r.loadErr = nil
	case errors.Is(err, ErrSessionUnavailable):
		r.loadErr = err
	default:
		r.loadErr = fmt.Errorf("%w: %w", ErrSessionUnavailable, err)
	}
}

func (r *Runner) currentLoadErr() error {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.loadErr == nil {
		return ErrSessionUnavailable
	}
	return r.loadErr
}
