package rtc

import (
	"sync"

	fcore "github.com/frostbyte73/core"
	"github.com/gammazero/deque"

	"github.com/dkeye/liveroom/internal/core"
)

// eventQueue decouples transport callbacks from the consumer: Push never
// blocks, and events leave Events in the order they were pushed.
type eventQueue struct {
	mu     sync.Mutex
	q      deque.Deque[core.RoomEvent]
	wake   chan struct{}
	out    chan core.RoomEvent
	closed fcore.Fuse
}

func newEventQueue() *eventQueue {
	e := &eventQueue{
		wake:   make(chan struct{}, 1),
		out:    make(chan core.RoomEvent),
		closed: fcore.NewFuse(),
	}
	go e.run()
	return e
}

func (e *eventQueue) Events() <-chan core.RoomEvent { return e.out }

func (e *eventQueue) Push(ev core.RoomEvent) {
	if e.closed.IsBroken() {
		return
	}
	e.mu.Lock()
	e.q.PushBack(ev)
	e.mu.Unlock()
	select {
	case e.wake <- struct{}{}:
	default:
	}
}

// Close stops delivery and closes Events. Undelivered events are dropped.
func (e *eventQueue) Close() {
	e.closed.Break()
}

func (e *eventQueue) Len() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.q.Len()
}

func (e *eventQueue) run() {
	defer close(e.out)
	for {
		e.mu.Lock()
		if e.q.Len() == 0 {
			e.mu.Unlock()
			select {
			case <-e.wake:
				continue
			case <-e.closed.Watch():
				return
			}
		}
		ev := e.q.Front()
		e.mu.Unlock()

		select {
		case e.out <- ev:
			e.mu.Lock()
			e.q.PopFront()
			e.mu.Unlock()
		case <-e.closed.Watch():
			return
		}
	}
}
