// Package bus serializes every invocation of the ung tool. The tool
// mutates a shared local store that is not proven safe under
// concurrent access, so at most one invocation executes at a time;
// the queue itself is the single point of serialization.
package bus

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/Andriiklymiuk/ung-sub008/internal/observability/metrics"
	"github.com/Andriiklymiuk/ung-sub008/internal/runner"
	"github.com/Andriiklymiuk/ung-sub008/internal/toolerr"
)

// Operation is one tool invocation request.
type Operation struct {
	// Name labels the operation for logs ("invoice.list").
	Name string
	Args []string
}

// Options tune one enqueue. Zero values fall back to the bus config;
// MaxRetries < 0 disables retries explicitly.
type Options struct {
	Timeout    time.Duration
	MaxRetries int
	// Priority inserts the command at the front of the queue. Used for
	// user-initiated, latency-sensitive actions such as start tracking.
	Priority bool
}

type job struct {
	op       Operation
	opts     Options
	attempts int
	ctx      context.Context
	done     chan outcome
}

type outcome struct {
	out runner.Output
	err error
}

// Bus is the FIFO/priority command queue in front of the runner.
type Bus struct {
	runner  runner.Runner
	log     *zap.Logger
	cfg     Config
	metrics *metrics.BusMetrics

	mu    sync.Mutex
	queue []*job
	wake  chan struct{}

	cancel context.CancelFunc
	idle   chan struct{}
}

type Params struct {
	fx.In

	Runner  runner.Runner
	Log     *zap.Logger
	Config  Config              `optional:"true"`
	Metrics *metrics.BusMetrics `optional:"true"`
}

func New(p Params) *Bus {
	return &Bus{
		runner:  p.Runner,
		log:     p.Log.Named("bus"),
		cfg:     p.Config.withDefaults(),
		metrics: p.Metrics,
		wake:    make(chan struct{}, 1),
		idle:    make(chan struct{}),
	}
}

// Enqueue submits op and blocks until it completes, fails terminally,
// or ctx is cancelled. Retryable failures (timeouts, network-style
// errors) are re-queued at the front up to the retry limit with the
// attempt counter preserved; the final error is the original failure
// annotated with the number of attempts made.
func (b *Bus) Enqueue(ctx context.Context, op Operation, opts Options) (runner.Output, error) {
	if opts.Timeout <= 0 {
		opts.Timeout = b.cfg.Timeout
	}
	switch {
	case opts.MaxRetries < 0:
		opts.MaxRetries = 0
	case opts.MaxRetries == 0:
		opts.MaxRetries = b.cfg.MaxRetries
	}

	j := &job{
		op:   op,
		opts: opts,
		ctx:  ctx,
		done: make(chan outcome, 1),
	}
	b.push(j, opts.Priority)

	select {
	case res := <-j.done:
		return res.out, res.err
	case <-ctx.Done():
		return runner.Output{}, toolerr.Wrap(toolerr.KindTimeout, op.Name, ctx.Err())
	}
}

func (b *Bus) push(j *job, front bool) {
	b.mu.Lock()
	if front {
		b.queue = append([]*job{j}, b.queue...)
	} else {
		b.queue = append(b.queue, j)
	}
	b.metrics.SetQueueDepth(len(b.queue))
	b.mu.Unlock()

	select {
	case b.wake <- struct{}{}:
	default:
	}
}

func (b *Bus) pop() *job {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.queue) == 0 {
		return nil
	}
	j := b.queue[0]
	b.queue = b.queue[1:]
	b.metrics.SetQueueDepth(len(b.queue))
	return j
}

// Run dispatches queued commands one at a time until ctx is cancelled.
func (b *Bus) Run(ctx context.Context) {
	defer close(b.idle)
	for {
		j := b.pop()
		if j == nil {
			select {
			case <-ctx.Done():
				return
			case <-b.wake:
				continue
			}
		}
		b.dispatch(ctx, j)
	}
}

func (b *Bus) dispatch(ctx context.Context, j *job) {
	if err := j.ctx.Err(); err != nil {
		// Caller gave up while the command was queued.
		j.done <- outcome{err: toolerr.Wrap(toolerr.KindTimeout, j.op.Name, err)}
		return
	}

	j.attempts++
	b.metrics.ObserveExecution()
	b.log.Debug("executing command",
		zap.String("op", j.op.Name),
		zap.Int("attempt", j.attempts),
	)

	attemptCtx, cancel := context.WithTimeout(ctx, j.opts.Timeout)
	out, err := b.runner.Run(attemptCtx, j.op.Args)
	cancel()

	if err == nil {
		j.done <- outcome{out: out}
		return
	}

	if toolerr.Retryable(err) && j.attempts <= j.opts.MaxRetries {
		b.metrics.ObserveRetry()
		b.log.Warn("retrying command",
			zap.String("op", j.op.Name),
			zap.Int("attempt", j.attempts),
			zap.Int("max_retries", j.opts.MaxRetries),
			zap.Error(err),
		)
		b.push(j, true)
		return
	}

	var terr *toolerr.Error
	if !errors.As(err, &terr) {
		terr = toolerr.Wrap(toolerr.KindUnknown, j.op.Name, err)
	}
	terr.Attempts = j.attempts
	b.metrics.ObserveFailure(string(terr.Kind))

	b.log.Error("command failed",
		zap.String("op", j.op.Name),
		zap.Int("attempts", j.attempts),
		zap.String("kind", string(terr.Kind)),
		zap.Error(err),
	)
	j.done <- outcome{out: out, err: terr}
}

// Start launches the dispatcher; Stop waits for it to drain out.
func (b *Bus) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	b.cancel = cancel
	go b.Run(ctx)
}

func (b *Bus) Stop() {
	if b.cancel != nil {
		b.cancel()
		<-b.idle
	}
}
