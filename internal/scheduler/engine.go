// Package scheduler runs named triggers with per-name deduplication,
// non-interleaving runs and retry with exponential backoff.
package scheduler

import (
	"container/heap"
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

var (
	ErrStopped         = errors.New("scheduler: engine stopped")
	ErrNotStarted      = errors.New("scheduler: engine not started")
	ErrInvalidTrigger  = errors.New("scheduler: trigger name is required")
	ErrInvalidInterval = errors.New("scheduler: interval must be positive")
)

// Policy decides what happens when a trigger is enqueued while another with
// the same name is still pending.
type Policy int

const (
	// KeepExisting leaves the pending trigger in place and drops the new one.
	KeepExisting Policy = iota
	// ReplacePending discards the pending trigger in favour of the new one.
	ReplacePending
)

func (p Policy) String() string {
	if p == ReplacePending {
		return "replace"
	}
	return "keep"
}

type Trigger struct {
	Name   string
	Policy Policy
	// At is when the trigger becomes runnable. Zero means now.
	At time.Time
}

// RunFunc does the work for one trigger. Errors exposing
// Temporary() bool returning true are retried.
type RunFunc func(ctx context.Context, name string) error

type Config struct {
	MaxRetries     int
	BaseRetryDelay time.Duration
	MaxRetryDelay  time.Duration
}

func DefaultConfig() Config {
	return Config{MaxRetries: 3, BaseRetryDelay: 30 * time.Second, MaxRetryDelay: 10 * time.Minute}
}

// Result describes a finished ticket. Value is whatever the last attempt
// passed to SetValue.
type Result struct {
	Trigger    Trigger
	Attempts   int
	Err        error
	Value      any
	Superseded bool
}

type ticketKey struct{}

// SetValue attaches v to the Result of the ticket being run under ctx. It
// does nothing when ctx is not a run context.
func SetValue(ctx context.Context, v any) {
	if t, ok := ctx.Value(ticketKey{}).(*Ticket); ok {
		t.value = v
	}
}

// Ticket tracks one enqueued trigger until it has run, been superseded or
// the engine stopped.
type Ticket struct {
	trigger    Trigger
	seq        uint64
	index      int
	superseded bool
	once       sync.Once
	done       chan struct{}
	result     Result
	value      any // owned by the goroutine running the ticket
}

func (t *Ticket) Trigger() Trigger { return t.trigger }

func (t *Ticket) Done() <-chan struct{} { return t.done }

// Wait blocks until the ticket completes or ctx ends.
func (t *Ticket) Wait(ctx context.Context) (Result, error) {
	select {
	case <-t.done:
		return t.result, nil
	case <-ctx.Done():
		return Result{}, ctx.Err()
	}
}

func (t *Ticket) finish(r Result) {
	t.once.Do(func() {
		r.Trigger = t.trigger
		t.result = r
		close(t.done)
	})
}

type ticketQueue []*Ticket

func (q ticketQueue) Len() int { return len(q) }

func (q ticketQueue) Less(i, j int) bool {
	if !q[i].trigger.At.Equal(q[j].trigger.At) {
		return q[i].trigger.At.Before(q[j].trigger.At)
	}
	return q[i].seq < q[j].seq
}

func (q ticketQueue) Swap(i, j int) {
	q[i], q[j] = q[j], q[i]
	q[i].index = i
	q[j].index = j
}

func (q *ticketQueue) Push(x any) {
	t := x.(*Ticket)
	t.index = len(*q)
	*q = append(*q, t)
}

func (q *ticketQueue) Pop() any {
	old := *q
	n := len(old)
	t := old[n-1]
	old[n-1] = nil
	t.index = -1
	*q = old[:n-1]
	return t
}

type Engine struct {
	run    RunFunc
	cfg    Config
	logger *slog.Logger

	mu      sync.Mutex
	queue   ticketQueue
	pending map[string]*Ticket
	running map[string]chan struct{}
	seq     uint64
	wakeup  chan struct{}
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	started bool
	stopped bool

	superseded atomic.Uint64
}

func NewEngine(run RunFunc, cfg Config, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	return &Engine{
		run:     run,
		cfg:     cfg,
		logger:  logger,
		pending: make(map[string]*Ticket),
		running: make(map[string]chan struct{}),
		wakeup:  make(chan struct{}, 1),
	}
}

// Start launches the dispatch loop. Runs receive a context derived from ctx
// that is cancelled by Stop.
func (e *Engine) Start(ctx context.Context) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.started || e.stopped {
		return
	}
	e.started = true
	e.ctx, e.cancel = context.WithCancel(ctx)
	heap.Init(&e.queue)
	e.wg.Add(1)
	go e.loop()
}

// Stop cancels in-flight runs, waits for them and completes every pending
// ticket with ErrStopped.
func (e *Engine) Stop() {
	e.mu.Lock()
	if e.stopped {
		e.mu.Unlock()
		return
	}
	e.stopped = true
	if e.cancel != nil {
		e.cancel()
	}
	e.mu.Unlock()

	e.wg.Wait()

	e.mu.Lock()
	defer e.mu.Unlock()
	for e.queue.Len() > 0 {
		heap.Pop(&e.queue).(*Ticket).finish(Result{Err: ErrStopped})
	}
	for name, t := range e.pending {
		t.finish(Result{Err: ErrStopped})
		delete(e.pending, name)
	}
}

// Enqueue adds a trigger. It reports false when KeepExisting found a
// pending trigger with the same name; the returned ticket is then that
// pending one.
func (e *Engine) Enqueue(tr Trigger) (*Ticket, bool, error) {
	if tr.Name == "" {
		return nil, false, ErrInvalidTrigger
	}
	if tr.At.IsZero() {
		tr.At = time.Now()
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.stopped {
		return nil, false, ErrStopped
	}
	if old, ok := e.pending[tr.Name]; ok {
		if tr.Policy == KeepExisting {
			e.logger.Debug("trigger already pending", "name", tr.Name)
			return old, false, nil
		}
		e.supersede(old)
	}

	t := &Ticket{trigger: tr, seq: e.seq, index: -1, done: make(chan struct{})}
	e.seq++
	heap.Push(&e.queue, t)
	e.pending[tr.Name] = t
	e.signalWakeup()
	return t, true, nil
}

// Every enqueues name now and then after each interval, always with
// KeepExisting so a slow run never piles up triggers.
func (e *Engine) Every(name string, interval time.Duration) error {
	if interval <= 0 {
		return ErrInvalidInterval
	}
	e.mu.Lock()
	switch {
	case e.stopped:
		e.mu.Unlock()
		return ErrStopped
	case !e.started:
		e.mu.Unlock()
		return ErrNotStarted
	}
	e.wg.Add(1)
	ctx := e.ctx
	e.mu.Unlock()

	go func() {
		defer e.wg.Done()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			if _, _, err := e.Enqueue(Trigger{Name: name, Policy: KeepExisting}); err != nil {
				return
			}
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
		}
	}()
	return nil
}

// Superseded returns how many pending triggers ReplacePending discarded.
func (e *Engine) Superseded() uint64 {
	return e.superseded.Load()
}

func (e *Engine) supersede(t *Ticket) {
	t.superseded = true
	if t.index >= 0 {
		heap.Remove(&e.queue, t.index)
	}
	delete(e.pending, t.trigger.Name)
	e.superseded.Add(1)
	e.logger.Debug("pending trigger superseded", "name", t.trigger.Name)
	t.finish(Result{Superseded: true})
}

func (e *Engine) loop() {
	defer e.wg.Done()

	var timer *time.Timer
	defer func() { stopTimer(timer) }()
	for {
		next, hasNext := e.peek()
		if !hasNext {
			select {
			case <-e.wakeup:
				continue
			case <-e.ctx.Done():
				return
			}
		}

		wait := time.Until(next)
		if wait < 0 {
			wait = 0
		}
		timer = resetTimer(timer, wait)

		select {
		case <-timer.C:
			for _, t := range e.popDue(time.Now()) {
				go e.execute(t)
			}
		case <-e.wakeup:
			continue
		case <-e.ctx.Done():
			return
		}
	}
}

func (e *Engine) signalWakeup() {
	select {
	case e.wakeup <- struct{}{}:
	default:
	}
}

func (e *Engine) peek() (time.Time, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(e.queue) == 0 {
		return time.Time{}, false
	}
	return e.queue[0].trigger.At, true
}

// popDue takes runnable tickets off the heap. They stay pending until their
// run actually starts.
func (e *Engine) popDue(now time.Time) []*Ticket {
	e.mu.Lock()
	defer e.mu.Unlock()

	var out []*Ticket
	for len(e.queue) > 0 && !e.queue[0].trigger.At.After(now) {
		out = append(out, heap.Pop(&e.queue).(*Ticket))
		e.wg.Add(1)
	}
	return out
}

func (e *Engine) execute(t *Ticket) {
	defer e.wg.Done()
	name := t.trigger.Name

	for {
		e.mu.Lock()
		if t.superseded {
			e.mu.Unlock()
			return
		}
		busy, ok := e.running[name]
		if !ok {
			e.running[name] = make(chan struct{})
			if e.pending[name] == t {
				delete(e.pending, name)
			}
			e.mu.Unlock()
			break
		}
		e.mu.Unlock()

		select {
		case <-busy:
		case <-e.ctx.Done():
			return
		}
	}

	res := e.runWithRetry(t)

	e.mu.Lock()
	close(e.running[name])
	delete(e.running, name)
	e.mu.Unlock()
	t.finish(res)
}

func (e *Engine) runWithRetry(t *Ticket) Result {
	var res Result
	ctx := context.WithValue(e.ctx, ticketKey{}, t)
	for {
		res.Attempts++
		t.value = nil
		err := e.run(ctx, t.trigger.Name)
		res.Err, res.Value = err, t.value
		if err == nil {
			e.logger.Debug("trigger run finished", "name", t.trigger.Name, "attempts", res.Attempts)
			return res
		}
		if !Retryable(err) || res.Attempts > e.cfg.MaxRetries {
			e.logger.Warn("trigger run failed", "name", t.trigger.Name, "attempts", res.Attempts, "error", err)
			return res
		}
		delay := e.retryDelay(res.Attempts)
		e.logger.Info("trigger run will retry", "name", t.trigger.Name, "attempt", res.Attempts, "delay", delay, "error", err)
		if !sleepContext(e.ctx, delay) {
			res.Err = errors.Join(err, ErrStopped)
			return res
		}
	}
}

// retryDelay returns BaseRetryDelay * 2^(attempt-1), capped at MaxRetryDelay.
func (e *Engine) retryDelay(attempt int) time.Duration {
	delay := e.cfg.BaseRetryDelay
	for i := 1; i < attempt; i++ {
		delay *= 2
		if e.cfg.MaxRetryDelay > 0 && delay >= e.cfg.MaxRetryDelay {
			return e.cfg.MaxRetryDelay
		}
	}
	if e.cfg.MaxRetryDelay > 0 && delay > e.cfg.MaxRetryDelay {
		return e.cfg.MaxRetryDelay
	}
	return delay
}

// Retryable reports whether err, or anything it wraps, says it is temporary.
func Retryable(err error) bool {
	var temp interface{ Temporary() bool }
	return errors.As(err, &temp) && temp.Temporary()
}

func sleepContext(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	timer := time.NewTimer(d)
	defer stopTimer(timer)
	select {
	case <-timer.C:
		return true
	case <-ctx.Done():
		return false
	}
}

func resetTimer(timer *time.Timer, d time.Duration) *time.Timer {
	if timer == nil {
		return time.NewTimer(d)
	}
	stopTimer(timer)
	timer.Reset(d)
	return timer
}

func stopTimer(timer *time.Timer) {
	if timer == nil {
		return
	}
	if !timer.Stop() {
		select {
		case <-timer.C:
		default:
		}
	}
}
