package odmmock

import "sync"

// loop is a FIFO task queue drained by Flush on the caller goroutine.
// It replaces the client executor, so nothing runs until the test drains it.
type loop struct {
	mu    sync.Mutex
	tasks []func()
}

// Go schedules fn for the next drain.
func (l *loop) Go(fn func()) {
	l.mu.Lock()
	l.tasks = append(l.tasks, fn)
	l.mu.Unlock()
}

// flush runs tasks until the queue is empty, including the ones scheduled
// while draining, and returns how many ran.
func (l *loop) flush() int {
	n := 0
	for {
		l.mu.Lock()
		if len(l.tasks) == 0 {
			l.tasks = nil
			l.mu.Unlock()
			return n
		}
		fn := l.tasks[0]
		l.tasks = l.tasks[1:]
		l.mu.Unlock()
		fn()
		n++
	}
}

func (l *loop) pending() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.tasks)
}
