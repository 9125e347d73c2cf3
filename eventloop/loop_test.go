package eventloop

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"
)

func appendTask(order *[]string, label string) Task {
	return func() error {
		*order = append(*order, label)
		return nil
	}
}

func TestMicrotasksRunFIFO(t *testing.T) {
	l := New()
	var order []string
	l.QueueMicrotask(appendTask(&order, "a"))
	l.QueueMicrotask(appendTask(&order, "b"))
	l.QueueMicrotask(appendTask(&order, "c"))
	l.Run()
	if got := strings.Join(order, ""); got != "abc" {
		t.Fatalf("expected abc, got %q", got)
	}
}

func TestMicrotasksDrainBeforeTimers(t *testing.T) {
	l := New()
	var order []string
	l.SetTimeout(appendTask(&order, "t"), 0)
	l.QueueMicrotask(appendTask(&order, "m1"))
	l.QueueMicrotask(func() error {
		order = append(order, "m2")
		// queued mid-drain, still runs before the timer
		l.QueueMicrotask(appendTask(&order, "m3"))
		return nil
	})
	l.Run()
	if got := strings.Join(order, ","); got != "m1,m2,m3,t" {
		t.Fatalf("unexpected order %q", got)
	}
}

func TestTimersFireByDueTime(t *testing.T) {
	l := New()
	var order []string
	l.SetTimeout(appendTask(&order, "late"), 20*time.Millisecond)
	l.SetTimeout(appendTask(&order, "early"), 0)
	l.SetTimeout(appendTask(&order, "mid"), 10*time.Millisecond)
	l.Run()
	if got := strings.Join(order, ","); got != "early,mid,late" {
		t.Fatalf("unexpected order %q", got)
	}
}

func TestEqualDueTimersKeepScheduleOrder(t *testing.T) {
	l := New()
	var order []string
	l.SetTimeout(appendTask(&order, "1"), 5*time.Millisecond)
	l.SetTimeout(appendTask(&order, "2"), 5*time.Millisecond)
	l.SetTimeout(appendTask(&order, "3"), 5*time.Millisecond)
	l.Run()
	if got := strings.Join(order, ""); got != "123" {
		t.Fatalf("unexpected order %q", got)
	}
}

func TestTimerTaskSchedulesMicrotask(t *testing.T) {
	l := New()
	var order []string
	l.SetTimeout(func() error {
		order = append(order, "t")
		l.QueueMicrotask(appendTask(&order, "m"))
		return nil
	}, 0)
	l.SetTimeout(appendTask(&order, "t2"), 15*time.Millisecond)
	l.Run()
	if got := strings.Join(order, ","); got != "t,m,t2" {
		t.Fatalf("unexpected order %q", got)
	}
}

func TestClearTimerBeforeFiring(t *testing.T) {
	l := New()
	fired := false
	id := l.SetTimeout(func() error { fired = true; return nil }, 0)
	l.ClearTimer(id)
	l.Run()
	if fired {
		t.Fatal("cleared timer fired")
	}
	if l.Pending() {
		t.Fatal("loop still pending after clear")
	}
}

func TestClearTimerMidBatch(t *testing.T) {
	// Both timers are due in the same batch; the first cancels the second.
	l := New()
	var id2 int64
	secondRan := false
	l.SetTimeout(func() error {
		l.ClearTimer(id2)
		return nil
	}, 0)
	id2 = l.SetTimeout(func() error { secondRan = true; return nil }, 0)
	l.Run()
	if secondRan {
		t.Fatal("timer cancelled mid-batch still fired")
	}
}

func TestClearUnknownTimerIsNoop(t *testing.T) {
	l := New()
	l.ClearTimer(99)
	done := false
	id := l.SetTimeout(func() error { done = true; return nil }, 0)
	l.Run()
	if !done {
		t.Fatal("timer did not fire")
	}
	l.ClearTimer(id) // already fired
}

func TestIntervalRearmsUntilCleared(t *testing.T) {
	l := New()
	ticks := 0
	var id int64
	id = l.SetInterval(func() error {
		ticks++
		if ticks == 3 {
			l.ClearTimer(id)
		}
		return nil
	}, time.Millisecond)
	l.Run()
	if ticks != 3 {
		t.Fatalf("expected 3 ticks, got %d", ticks)
	}
}

func TestIntervalClearedByOtherTimer(t *testing.T) {
	l := New()
	ticks := 0
	id := l.SetInterval(func() error { ticks++; return nil }, time.Millisecond)
	l.SetTimeout(func() error {
		l.ClearTimer(id)
		return nil
	}, 10*time.Millisecond)
	l.Run()
	if ticks == 0 {
		t.Fatal("interval never ticked")
	}
}

func TestStopEndsLoopEarly(t *testing.T) {
	l := New()
	var order []string
	l.QueueMicrotask(appendTask(&order, "a"))
	l.QueueMicrotask(func() error {
		order = append(order, "b")
		l.Stop()
		return nil
	})
	l.QueueMicrotask(appendTask(&order, "c"))
	l.Run()
	if got := strings.Join(order, ""); got != "ab" {
		t.Fatalf("expected ab, got %q", got)
	}
	if !l.Pending() {
		t.Fatal("stopped loop should keep queued work")
	}
}

func TestRunResumesAfterStop(t *testing.T) {
	l := New()
	ran := false
	l.QueueMicrotask(func() error { l.Stop(); return nil })
	l.QueueMicrotask(func() error { ran = true; return nil })
	l.Run()
	if ran {
		t.Fatal("second task ran before resume")
	}
	l.Run()
	if !ran {
		t.Fatal("second task did not run on resume")
	}
}

func TestTaskErrorDoesNotStopLoop(t *testing.T) {
	var seen []error
	l := New(WithErrorHandler(func(err error) { seen = append(seen, err) }))
	ran := false
	l.QueueMicrotask(func() error { return errors.New("boom") })
	l.QueueMicrotask(func() error { ran = true; return nil })
	l.Run()
	if len(seen) != 1 || seen[0].Error() != "boom" {
		t.Fatalf("expected reported error, got %v", seen)
	}
	if !ran {
		t.Fatal("later task did not run")
	}
}

func TestErrorWriter(t *testing.T) {
	var buf bytes.Buffer
	l := New(WithErrorWriter(&buf))
	l.QueueMicrotask(func() error { return errors.New("written") })
	l.Run()
	if !strings.Contains(buf.String(), "written") {
		t.Fatalf("expected error in writer, got %q", buf.String())
	}
}

func TestPending(t *testing.T) {
	l := New()
	if l.Pending() {
		t.Fatal("fresh loop should be idle")
	}
	l.SetTimeout(func() error { return nil }, 0)
	if !l.Pending() {
		t.Fatal("scheduled timer should be pending")
	}
	l.Run()
	if l.Pending() {
		t.Fatal("drained loop should be idle")
	}
}

func TestRunOnEmptyLoopReturns(t *testing.T) {
	l := New()
	done := make(chan struct{})
	go func() {
		l.Run()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return on an empty loop")
	}
}

func TestNegativeDelay(t *testing.T) {
	l := New()
	ran := false
	l.SetTimeout(func() error { ran = true; return nil }, -time.Second)
	l.Run()
	if !ran {
		t.Fatal("negative-delay timer did not fire")
	}
}
