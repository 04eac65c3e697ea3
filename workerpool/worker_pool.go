package workerpool

import (
	"context"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/pitabwire/util"
)

const defaultExpiryDuration = time.Second

// Options defines configurable options for a worker pool.
type Options struct {
	SinglePoolCapacity int
	ExpiryDuration     time.Duration
	PanicHandler       func(any)
	Logger             *util.LogEntry
}

// Option defines a function that configures worker pool options.
type Option func(*Options)

// WithSinglePoolCapacity sets how many tasks a single pool runs at once.
func WithSinglePoolCapacity(capacity int) Option {
	return func(opts *Options) {
		opts.SinglePoolCapacity = capacity
	}
}

// WithPoolPanicHandler sets a panic handler for the pool.
func WithPoolPanicHandler(handler func(any)) Option {
	return func(opts *Options) {
		opts.PanicHandler = handler
	}
}

// WithPoolLogger sets a logger for the pool.
func WithPoolLogger(logger *util.LogEntry) Option {
	return func(opts *Options) {
		opts.Logger = logger
	}
}

// New creates a blocking pool. Without options it runs one task at a time.
func New(ctx context.Context, opts ...Option) (WorkerPool, error) {
	wopts := &Options{
		SinglePoolCapacity: 1,
		ExpiryDuration:     defaultExpiryDuration,
		Logger:             util.Log(ctx),
	}
	for _, opt := range opts {
		opt(wopts)
	}

	return setupWorkerPool(ctx, wopts)
}

func setupWorkerPool(_ context.Context, wopts *Options) (WorkerPool, error) {
	var antsOpts []ants.Option
	if wopts.ExpiryDuration > 0 {
		antsOpts = append(antsOpts, ants.WithExpiryDuration(wopts.ExpiryDuration))
	}
	if wopts.PanicHandler != nil {
		antsOpts = append(antsOpts, ants.WithPanicHandler(wopts.PanicHandler))
	}
	if wopts.Logger != nil {
		antsOpts = append(antsOpts, ants.WithLogger(wopts.Logger))
	}

	p, err := ants.NewPool(wopts.SinglePoolCapacity, antsOpts...)
	if err != nil {
		return nil, err
	}
	return &singlePoolWrapper{pool: p}, nil
}

// singlePoolWrapper adapts *ants.Pool to the WorkerPool interface.
type singlePoolWrapper struct {
	pool *ants.Pool
}

func (w *singlePoolWrapper) Submit(ctx context.Context, task func()) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}

	return w.pool.Submit(task)
}

func (w *singlePoolWrapper) Shutdown() {
	w.pool.Release()
}
