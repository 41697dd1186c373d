package workqueue

import (
	"sync"

	"github.com/gammazero/deque"
)

// WorkQueue is an unbounded synchronized FIFO queue which can be drained by any number of consumers
type WorkQueue[T any] struct {
	d       *deque.Deque[T]
	mutex   sync.Mutex
	cond    *sync.Cond
	closing bool
	aborted bool
}

func New[T any]() *WorkQueue[T] {
	ret := &WorkQueue[T]{
		d: new(deque.Deque[T]),
	}
	ret.cond = sync.NewCond(&ret.mutex)
	return ret
}

// Write pushes element
func (q *WorkQueue[T]) Write(elem T) {
	q.mutex.Lock()
	defer q.mutex.Unlock()

	if q.closing {
		panic("attempt to write to the closed WorkQueue")
	}
	q.d.PushBack(elem)
	q.cond.Signal()
}

// CloseNow stops consumers immediately. The elements in the buffer are not consumed
func (q *WorkQueue[T]) CloseNow() {
	q.mutex.Lock()
	defer q.mutex.Unlock()

	q.closing = true
	q.aborted = true
	q.cond.Broadcast()
}

// Close stops consumers after all elements are read
func (q *WorkQueue[T]) Close() {
	q.mutex.Lock()
	defer q.mutex.Unlock()

	q.closing = true
	q.cond.Broadcast()
}

func (q *WorkQueue[T]) read() (T, bool) {
	q.mutex.Lock()
	defer q.mutex.Unlock()

	for q.d.Len() == 0 && !q.closing {
		q.cond.Wait()
	}
	if q.aborted || q.d.Len() == 0 {
		var nul T
		return nul, false
	}
	return q.d.PopFront(), true
}

// Consume reads all elements of the queue until it is closed
func (q *WorkQueue[T]) Consume(fun func(elem T)) {
	for {
		e, ok := q.read()
		if !ok {
			break
		}
		fun(e)
	}
}

// ConsumeParallel runs Consume in n goroutines and waits until all of them stop
func (q *WorkQueue[T]) ConsumeParallel(n int, fun func(elem T)) {
	if n < 1 {
		n = 1
	}
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()
			q.Consume(fun)
		}()
	}
	wg.Wait()
}

// Len returns number of elements in the queue. Non-deterministic
func (q *WorkQueue[T]) Len() int {
	q.mutex.Lock()
	defer q.mutex.Unlock()

	return q.d.Len()
}
