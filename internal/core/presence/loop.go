package presence

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"
)

// ErrLoopStopped indicates the loop no longer accepts events.
var ErrLoopStopped = errors.New("event loop stopped")

// Handler consumes events one at a time.
type Handler interface {
	Handle(ctx context.Context, event Event) (bool, error)
}

// Loop queues events from any goroutine and dispatches them serially to a
// single Handler.
type Loop struct {
	mu      sync.Mutex
	queue   []Event
	wake    chan struct{}
	stopped bool
	logger  *zap.SugaredLogger
}

// NewLoop creates an idle loop.
func NewLoop(logger *zap.SugaredLogger) *Loop {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Loop{
		wake:   make(chan struct{}, 1),
		logger: logger,
	}
}

// Send enqueues an event and wakes the consumer. It never blocks.
func (loop *Loop) Send(event Event) error {
	loop.mu.Lock()
	if loop.stopped {
		loop.mu.Unlock()
		return ErrLoopStopped
	}
	loop.queue = append(loop.queue, event)
	loop.mu.Unlock()

	select {
	case loop.wake <- struct{}{}:
	default:
	}
	return nil
}

// Run dispatches queued events until the handler reports done, the handler
// fails, or ctx is cancelled.
func (loop *Loop) Run(ctx context.Context, handler Handler) error {
	defer loop.stop()

	for {
		event, ok := loop.next()
		if !ok {
			select {
			case <-ctx.Done():
				return nil
			case <-loop.wake:
				continue
			}
		}

		if ctx.Err() != nil {
			return nil
		}
		done, err := handler.Handle(ctx, event)
		if err != nil {
			return err
		}
		if done {
			loop.logger.Debugw("event loop finished", "event", event.Kind)
			return nil
		}
	}
}

func (loop *Loop) next() (Event, bool) {
	loop.mu.Lock()
	defer loop.mu.Unlock()
	if len(loop.queue) == 0 {
		return Event{}, false
	}
	event := loop.queue[0]
	loop.queue[0] = Event{}
	loop.queue = loop.queue[1:]
	return event, true
}

func (loop *Loop) stop() {
	loop.mu.Lock()
	loop.stopped = true
	dropped := len(loop.queue)
	loop.queue = nil
	loop.mu.Unlock()
	if dropped > 0 {
		loop.logger.Debugw("dropped pending events", "count", dropped)
	}
}
