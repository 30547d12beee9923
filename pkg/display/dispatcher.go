// Package display marshals every mutation of the plugin's display surface onto
// a single display loop.
package display

import (
	"context"
	"errors"
	"fmt"
	"sync"

	queuepkg "github.com/Workiva/go-datastructures/queue"

	"github.com/srediag/arena-coder/internal/logging"
)

// ErrClosed is returned when work is submitted after Close.
var ErrClosed = errors.New("display: dispatcher closed")

const defaultQueueHint = 64

type loopKey struct{}

// Task is display work. ctx identifies the display loop, so a task may call
// Run again and execute inline.
type Task func(ctx context.Context)

// Dispatcher owns the display loop. Tasks run one at a time in submission order.
type Dispatcher struct {
	q       *queuepkg.Queue
	loopCtx context.Context
	done    chan struct{}
	once    sync.Once
	log     *logging.Logger
}

// NewDispatcher starts the display loop.
func NewDispatcher() *Dispatcher {
	d := &Dispatcher{
		q:    queuepkg.New(defaultQueueHint),
		done: make(chan struct{}),
		log:  logging.New("display", nil),
	}
	d.loopCtx = context.WithValue(context.Background(), loopKey{}, d)
	go d.loop()
	return d
}

// OnLoop reports whether ctx was handed out by this dispatcher's loop.
func (d *Dispatcher) OnLoop(ctx context.Context) bool {
	owner, _ := ctx.Value(loopKey{}).(*Dispatcher)
	return owner == d
}

// Run executes task inline when ctx belongs to the display loop and
// otherwise schedules it for later execution on the loop.
func (d *Dispatcher) Run(ctx context.Context, task Task) error {
	if d.OnLoop(ctx) {
		d.execute(ctx, task)
		return nil
	}
	if err := d.q.Put(task); err != nil {
		if errors.Is(err, queuepkg.ErrDisposed) {
			return ErrClosed
		}
		return fmt.Errorf("display: schedule task: %w", err)
	}
	return nil
}

// Flush waits until every task scheduled before the call has run.
func (d *Dispatcher) Flush(ctx context.Context) error {
	if d.OnLoop(ctx) {
		return nil
	}
	fence := make(chan struct{})
	if err := d.Run(ctx, func(context.Context) { close(fence) }); err != nil {
		return err
	}
	select {
	case <-fence:
		return nil
	case <-d.done:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Alive reports whether the loop is still running.
func (d *Dispatcher) Alive() bool {
	select {
	case <-d.done:
		return false
	default:
		return true
	}
}

// Pending returns the number of queued tasks.
func (d *Dispatcher) Pending() int64 {
	return d.q.Len()
}

// Close stops the loop. Tasks still queued are dropped. Called with a loop
// ctx it returns at once and the loop stops after the running task.
func (d *Dispatcher) Close(ctx context.Context) {
	d.once.Do(func() {
		dropped := d.q.Dispose()
		if len(dropped) > 0 {
			d.log.Warnf("dropped %d pending display tasks", len(dropped))
		}
	})
	if d.OnLoop(ctx) {
		return
	}
	<-d.done
}

func (d *Dispatcher) loop() {
	defer close(d.done)
	for {
		items, err := d.q.Get(1)
		if err != nil {
			return
		}
		for _, item := range items {
			task, ok := item.(Task)
			if !ok {
				d.log.Errorf("unexpected display item %T", item)
				continue
			}
			d.execute(d.loopCtx, task)
		}
	}
}

func (d *Dispatcher) execute(ctx context.Context, task Task) {
	defer func() {
		if r := recover(); r != nil {
			d.log.Errorf("display task panicked: %v", r)
		}
	}()
	task(ctx)
}
