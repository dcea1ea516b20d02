package dispatch

import (
	"context"
	"fmt"
	"runtime/debug"
	"sync"

	tally "github.com/uber-go/tally"
	"go.uber.org/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const (
	_configKey         = "dispatch"
	_defaultBufferSize = 256
)

// Module is the Fx module for this package.
var Module = fx.Provide(New)

// Queue runs tasks one at a time, in the order they were posted, on a goroutine owned by the queue.
// Response handlers and user-facing notifications go through it so they never run on a worker's reader goroutines.
type Queue interface {
	// Post enqueues a task. It returns false if the queue is closed and the task was dropped.
	Post(task func()) bool
	// Close stops accepting tasks, runs the ones already queued and returns once they are done or ctx expires.
	Close(ctx context.Context) error
}

// Config is the "dispatch" config key.
type Config struct {
	BufferSize int `yaml:"bufferSize"`
}

// Params are inbound parameters to initialize a new Queue.
type Params struct {
	fx.In

	Config    config.Provider
	Lifecycle fx.Lifecycle
	Logger    *zap.SugaredLogger
	Stats     tally.Scope
}

type queue struct {
	logger *zap.SugaredLogger
	stats  tally.Scope

	tasks  chan func()
	done   chan struct{}
	mu     sync.RWMutex
	closed bool
}

// New creates a Queue whose consumer is started and stopped with the application lifecycle.
func New(p Params) (Queue, error) {
	cfg := Config{BufferSize: _defaultBufferSize}
	if err := p.Config.Get(_configKey).Populate(&cfg); err != nil {
		return nil, fmt.Errorf("getting config field %q: %w", _configKey, err)
	}

	q := NewQueue(cfg.BufferSize, p.Logger, p.Stats)
	p.Lifecycle.Append(fx.Hook{
		OnStop: q.Close,
	})
	return q, nil
}

// NewQueue creates a Queue and starts its consumer.
func NewQueue(bufferSize int, logger *zap.SugaredLogger, stats tally.Scope) Queue {
	if bufferSize <= 0 {
		bufferSize = _defaultBufferSize
	}
	q := &queue{
		logger: logger.Named("dispatch"),
		stats:  stats.SubScope("dispatch"),
		tasks:  make(chan func(), bufferSize),
		done:   make(chan struct{}),
	}
	go q.run()
	return q
}

func (q *queue) Post(task func()) bool {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		q.stats.Counter("dropped").Inc(1)
		q.logger.Debug("queue closed, dropping task")
		return false
	}

	q.tasks <- task
	return true
}

func (q *queue) Close(ctx context.Context) error {
	q.mu.Lock()
	if !q.closed {
		q.closed = true
		close(q.tasks)
	}
	q.mu.Unlock()

	select {
	case <-q.done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("draining dispatch queue: %w", ctx.Err())
	}
}

func (q *queue) run() {
	defer close(q.done)
	for task := range q.tasks {
		q.runTask(task)
	}
}

func (q *queue) runTask(task func()) {
	defer func() {
		if r := recover(); r != nil {
			q.stats.Counter("panics").Inc(1)
			q.logger.Errorw("task panicked", "panic", r, "stack", string(debug.Stack()))
		}
	}()
	task()
}
