package schedule

import (
	"context"
	"sync"
	"time"
)

// Task is a handle on a scheduled callback.
type Task interface {
	// Cancel stops the task. It reports true when the callback had not run yet.
	Cancel() bool
	// Done is closed once the task either fired or was cancelled.
	Done() <-chan struct{}
	Fired() bool
}

type Scheduler interface {
	// After runs fn once delay has elapsed unless the task or ctx is cancelled first.
	After(ctx context.Context, name string, delay time.Duration, fn func()) Task
}

type taskState int

const (
	statePending taskState = iota
	stateFired
	stateCancelled
)

// TimerScheduler runs tasks on time.AfterFunc timers.
type TimerScheduler struct{}

func NewTimerScheduler() TimerScheduler { return TimerScheduler{} }

func (TimerScheduler) After(ctx context.Context, name string, delay time.Duration, fn func()) Task {
	t := &timerTask{name: name, done: make(chan struct{})}
	if err := ctx.Err(); err != nil {
		t.settle(stateCancelled)
		return t
	}
	t.mu.Lock()
	t.timer = time.AfterFunc(delay, func() {
		if t.settle(stateFired) {
			fn()
		}
	})
	t.mu.Unlock()
	if ctx.Done() != nil {
		go func() {
			select {
			case <-ctx.Done():
				t.Cancel()
			case <-t.done:
			}
		}()
	}
	return t
}

type timerTask struct {
	name  string
	mu    sync.Mutex
	state taskState
	timer *time.Timer
	done  chan struct{}
}

// settle moves a pending task to its final state; only the first caller wins.
func (t *timerTask) settle(to taskState) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state != statePending {
		return false
	}
	t.state = to
	close(t.done)
	return true
}

func (t *timerTask) Cancel() bool {
	if !t.settle(stateCancelled) {
		return false
	}
	t.mu.Lock()
	if t.timer != nil {
		t.timer.Stop()
	}
	t.mu.Unlock()
	return true
}

func (t *timerTask) Done() <-chan struct{} { return t.done }

func (t *timerTask) Fired() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state == stateFired
}

func (t *timerTask) String() string { return t.name }

var _ Scheduler = TimerScheduler{}
