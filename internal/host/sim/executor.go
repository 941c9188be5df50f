package sim

import (
	"context"
	"fmt"
	"sync"

	lua "github.com/yuin/gopher-lua"
)

const defaultQueueSize = 64

// job is one unit of work for the page goroutine. fail is called instead
// of run when the page closes first, and after run if it panics.
type job struct {
	run  func(L *lua.LState)
	fail func(err error)
}

// executor serializes all access to a Lua state through one goroutine.
// gopher-lua's LState is not goroutine-safe.
type executor struct {
	L     *lua.LState
	queue chan job

	// mu orders submissions against Close so that every queued job is
	// either run or failed.
	mu     sync.RWMutex
	closed bool
	done   chan struct{}
	exited chan struct{}
}

func newExecutor(L *lua.LState, queueSize int) *executor {
	if queueSize <= 0 {
		queueSize = defaultQueueSize
	}
	e := &executor{
		L:      L,
		queue:  make(chan job, queueSize),
		done:   make(chan struct{}),
		exited: make(chan struct{}),
	}
	go e.loop()
	return e
}

func (e *executor) loop() {
	defer close(e.exited)
	defer e.L.Close()
	for {
		select {
		case <-e.done:
			e.drain(ErrClosed)
			return
		case j := <-e.queue:
			e.exec(j)
		}
	}
}

// exec runs a single job with panic recovery.
func (e *executor) exec(j job) {
	defer func() {
		if r := recover(); r != nil {
			j.fail(fmt.Errorf("lua panic: %v", r))
		}
	}()
	j.run(e.L)
}

func (e *executor) drain(err error) {
	for {
		select {
		case j := <-e.queue:
			j.fail(err)
		default:
			return
		}
	}
}

// post queues j without waiting for it.
func (e *executor) post(j job) error {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.closed {
		return ErrClosed
	}
	select {
	case e.queue <- j:
		return nil
	default:
		return ErrQueueFull
	}
}

// do runs fn on the page goroutine and waits for its result.
func (e *executor) do(ctx context.Context, fn func(L *lua.LState) error) error {
	res := make(chan error, 1)
	send := func(err error) {
		select {
		case res <- err:
		default:
		}
	}
	j := job{
		run:  func(L *lua.LState) { send(fn(L)) },
		fail: send,
	}

	e.mu.RLock()
	if e.closed {
		e.mu.RUnlock()
		return ErrClosed
	}
	select {
	case e.queue <- j:
	case <-ctx.Done():
		e.mu.RUnlock()
		return ctx.Err()
	}
	e.mu.RUnlock()

	select {
	case err := <-res:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops the goroutine without waiting for it. Queued jobs fail with
// ErrClosed.
func (e *executor) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return
	}
	e.closed = true
	close(e.done)
}

// wait blocks until the goroutine has exited.
func (e *executor) wait() {
	<-e.exited
}

func (e *executor) isClosed() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.closed
}
