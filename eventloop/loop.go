package eventloop

import (
	"container/heap"
	"fmt"
	"io"
	"os"
	"time"
)

// Task is one unit of deferred work. A non-nil error is reported through
// the loop's error handler and does not stop the loop.
type Task func() error

type timer struct {
	id        int64
	task      Task
	due       time.Time
	interval  time.Duration // 0 for one-shots
	seq       int64
	index     int // position in the heap, -1 when popped
	cancelled bool
}

// timerHeap orders timers by due time, tie-broken by scheduling order.
type timerHeap []*timer

func (h timerHeap) Len() int { return len(h) }

func (h timerHeap) Less(i, j int) bool {
	if h[i].due.Equal(h[j].due) {
		return h[i].seq < h[j].seq
	}
	return h[i].due.Before(h[j].due)
}

func (h timerHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}

func (h *timerHeap) Push(x interface{}) {
	t := x.(*timer)
	t.index = len(*h)
	*h = append(*h, t)
}

func (h *timerHeap) Pop() interface{} {
	old := *h
	n := len(old)
	t := old[n-1]
	old[n-1] = nil
	t.index = -1
	*h = old[:n-1]
	return t
}

// Loop is a single-threaded cooperative scheduler: a FIFO microtask queue
// plus a due-time-ordered timer set. Run, the scheduling methods, and the
// tasks themselves all execute on the goroutine that drives Run; there is
// no preemption and no locking.
type Loop struct {
	micro   []Task
	timers  timerHeap
	active  map[int64]*timer
	nextID  int64
	nextSeq int64
	stopped bool
	onError func(error)
}

type Option func(*Loop)

// WithErrorHandler routes uncaught task errors to fn instead of stderr.
func WithErrorHandler(fn func(error)) Option {
	return func(l *Loop) { l.onError = fn }
}

// WithErrorWriter reports uncaught task errors to w.
func WithErrorWriter(w io.Writer) Option {
	return func(l *Loop) {
		l.onError = func(err error) {
			fmt.Fprintf(w, "uncaught error in task: %v\n", err)
		}
	}
}

func New(opts ...Option) *Loop {
	l := &Loop{active: make(map[int64]*timer)}
	l.onError = func(err error) {
		fmt.Fprintf(os.Stderr, "uncaught error in task: %v\n", err)
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// QueueMicrotask appends a task to the FIFO microtask queue. Microtasks
// queued within a turn always run before any timer, even a zero-delay one.
func (l *Loop) QueueMicrotask(task Task) {
	l.micro = append(l.micro, task)
}

// SetTimeout schedules a one-shot timer and returns its cancellation id.
func (l *Loop) SetTimeout(task Task, delay time.Duration) int64 {
	return l.addTimer(task, delay, 0)
}

// SetInterval schedules a repeating timer. Each firing re-arms it at
// now + interval.
func (l *Loop) SetInterval(task Task, interval time.Duration) int64 {
	return l.addTimer(task, interval, interval)
}

func (l *Loop) addTimer(task Task, delay, interval time.Duration) int64 {
	if delay < 0 {
		delay = 0
	}
	l.nextID++
	t := &timer{
		id:       l.nextID,
		task:     task,
		due:      time.Now().Add(delay),
		interval: interval,
		seq:      l.nextSeq,
	}
	l.nextSeq++
	l.active[t.id] = t
	heap.Push(&l.timers, t)
	return t.id
}

// ClearTimer removes a pending timer by id. Clearing an already-fired
// one-shot (or an unknown id) is a no-op.
func (l *Loop) ClearTimer(id int64) {
	t, ok := l.active[id]
	if !ok {
		return
	}
	delete(l.active, id)
	t.cancelled = true
	if t.index >= 0 {
		heap.Remove(&l.timers, t.index)
	}
}

// Pending reports whether any microtask or timer is still scheduled.
func (l *Loop) Pending() bool {
	return len(l.micro) > 0 || l.timers.Len() > 0
}

// Stop ends the loop after the in-flight task completes. Pending work
// stays queued.
func (l *Loop) Stop() {
	l.stopped = true
}

// Run loops until the microtask queue and the timer set are both empty, or
// Stop is called. Each turn fully drains the microtask queue, including
// tasks enqueued mid-drain, then fires every timer whose due time has
// elapsed, then sleeps until the next due timer.
func (l *Loop) Run() {
	l.stopped = false
	for {
		for len(l.micro) > 0 {
			task := l.micro[0]
			l.micro = l.micro[1:]
			l.runTask(task)
			if l.stopped {
				return
			}
		}

		if l.timers.Len() == 0 {
			if len(l.micro) == 0 {
				return
			}
			continue
		}

		now := time.Now()
		var due []*timer
		for l.timers.Len() > 0 && !l.timers[0].due.After(now) {
			t := heap.Pop(&l.timers).(*timer)
			due = append(due, t)
			if t.interval > 0 {
				// same timer object re-armed, so a mid-batch clear
				// also suppresses the firing collected above
				t.due = now.Add(t.interval)
				t.seq = l.nextSeq
				l.nextSeq++
				heap.Push(&l.timers, t)
			}
		}

		if len(due) == 0 {
			time.Sleep(time.Until(l.timers[0].due))
			continue
		}

		for _, t := range due {
			if t.cancelled {
				continue
			}
			if t.interval == 0 {
				delete(l.active, t.id)
			}
			l.runTask(t.task)
			if l.stopped {
				return
			}
		}
	}
}

func (l *Loop) runTask(task Task) {
	if err := task(); err != nil {
		l.onError(err)
	}
}
