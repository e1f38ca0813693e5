package stockroom

import (
	"iter"
	"sync"
)

// Task is a resumable per-entity computation. Poll runs it until it finishes or has to wait,
// and reports whether it finished. A task that returns false must arrange for w.Wake to be called
// once it can make progress.
type Task interface {
	Poll(w *Waker) bool
}

// TaskFunc adapts a function to Task.
type TaskFunc func(w *Waker) bool

func (f TaskFunc) Poll(w *Waker) bool {
	return f(w)
}

// Waker unparks the goroutine driving an Executor.
type Waker struct {
	signal chan struct{}
}

// Wake is safe to call from any goroutine, any number of times.
func (w *Waker) Wake() {
	select {
	case w.signal <- struct{}{}:
	default:
	}
}

// Executor drives batches of tasks to completion on the calling goroutine. It keeps its pending
// list between runs so steady-state runs do not allocate. The caller owns the executor and is
// expected to keep one per task type (typically one per system).
//
// An Executor is not safe for concurrent use.
type Executor[T Task] struct {
	scratch []T
	waker   *Waker
}

func NewExecutor[T Task](capacity int) *Executor[T] {
	return &Executor[T]{
		scratch: make([]T, 0, capacity),
		waker:   &Waker{signal: make(chan struct{}, 1)},
	}
}

// RunAll polls every task once, then keeps re-polling the unfinished ones, compacting them in
// place, until none is left. When a whole pass finishes nothing it parks until a task wakes it.
func (x *Executor[T]) RunAll(tasks iter.Seq[T]) {
	pending := x.scratch[:0]
	for t := range tasks {
		if !t.Poll(x.waker) {
			pending = append(pending, t)
		}
	}
	for len(pending) > 0 {
		n := 0
		for _, t := range pending {
			if !t.Poll(x.waker) {
				pending[n] = t
				n++
			}
		}
		progressed := n < len(pending)
		clear(pending[n:])
		pending = pending[:n]
		if n > 0 && !progressed {
			<-x.waker.signal
		}
	}
	x.scratch = pending[:0]
}

// Capacity returns the capacity retained for pending tasks.
func (x *Executor[T]) Capacity() int {
	return cap(x.scratch)
}

// RunForEach spawns one task per entity and drives them all with x.
func RunForEach[T Task](x *Executor[T], entities iter.Seq[Entity], spawn func(Entity) T) {
	x.RunAll(func(yield func(T) bool) {
		for e := range entities {
			if !yield(spawn(e)) {
				return
			}
		}
	})
}

// Mutex guards a value shared by tasks.
type Mutex[T any] struct {
	mu    sync.Mutex
	value T
}

func NewMutex[T any](v T) *Mutex[T] {
	return &Mutex[T]{value: v}
}

// With runs fn with exclusive access to the value.
func (m *Mutex[T]) With(fn func(*T)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	fn(&m.value)
}

// RWMutex guards a value shared by tasks, allowing concurrent readers.
type RWMutex[T any] struct {
	mu    sync.RWMutex
	value T
}

func NewRWMutex[T any](v T) *RWMutex[T] {
	return &RWMutex[T]{value: v}
}

func (m *RWMutex[T]) Read(fn func(T)) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	fn(m.value)
}

func (m *RWMutex[T]) Write(fn func(*T)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	fn(&m.value)
}
