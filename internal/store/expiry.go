package store

import (
	"container/heap"
	"sync"
	"time"

	"github.com/ringg-play/ringgrank/internal/logging"
)

type ticketHeap []ExpirationTicket

func (h ticketHeap) Len() int           { return len(h) }
func (h ticketHeap) Less(i, j int) bool { return h[i].DueAtMs < h[j].DueAtMs }
func (h ticketHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }
func (h *ticketHeap) Push(x any)        { *h = append(*h, x.(ExpirationTicket)) }

func (h *ticketHeap) Pop() any {
	old := *h
	n := len(old)
	ticket := old[n-1]
	*h = old[:n-1]
	return ticket
}

// ExpirationQueue is a min-priority queue of expiration tickets keyed by due
// time. Take blocks until the head ticket is due; a push that installs an
// earlier-due head wakes any waiting taker.
type ExpirationQueue struct {
	mu      sync.Mutex
	tickets ticketHeap
	wake    chan struct{}
}

func NewExpirationQueue() *ExpirationQueue {
	return &ExpirationQueue{
		wake: make(chan struct{}, 1),
	}
}

// Push enqueues a ticket and wakes a waiting taker.
func (q *ExpirationQueue) Push(ticket ExpirationTicket) {
	q.mu.Lock()
	heap.Push(&q.tickets, ticket)
	q.mu.Unlock()

	select {
	case q.wake <- struct{}{}:
	default:
	}
}

// Len returns the number of queued tickets.
func (q *ExpirationQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()

	return len(q.tickets)
}

// Take blocks until the earliest ticket is due and pops it. It returns false
// when stop is closed before a ticket becomes due.
func (q *ExpirationQueue) Take(stop <-chan struct{}) (ExpirationTicket, bool) {
	for {
		q.mu.Lock()
		if len(q.tickets) > 0 {
			nowMs := time.Now().UnixMilli()
			head := q.tickets[0]
			if head.DueAtMs <= nowMs {
				ticket := heap.Pop(&q.tickets).(ExpirationTicket)
				q.mu.Unlock()
				return ticket, true
			}
			q.mu.Unlock()

			timer := time.NewTimer(time.Duration(head.DueAtMs-nowMs) * time.Millisecond)
			select {
			case <-timer.C:
			case <-q.wake:
				timer.Stop()
			case <-stop:
				timer.Stop()
				return ExpirationTicket{}, false
			}
			continue
		}
		q.mu.Unlock()

		select {
		case <-q.wake:
		case <-stop:
			return ExpirationTicket{}, false
		}
	}
}

// ExpirationWorker drains due tickets and removes the referenced entries from
// their windowed views. A ticket whose entry has been superseded finds nothing
// to remove and is inert.
type ExpirationWorker struct {
	queue *ExpirationQueue
	view  func(gameID int64, windowKey string) *LeaderBoard
	stop  chan struct{}
	done  chan struct{}
}

func NewExpirationWorker(queue *ExpirationQueue, view func(gameID int64, windowKey string) *LeaderBoard) *ExpirationWorker {
	return &ExpirationWorker{
		queue: queue,
		view:  view,
		stop:  make(chan struct{}),
		done:  make(chan struct{}),
	}
}

// Start launches the worker goroutine.
func (w *ExpirationWorker) Start() {
	go w.run()
}

func (w *ExpirationWorker) run() {
	defer close(w.done)

	for {
		ticket, ok := w.queue.Take(w.stop)
		if !ok {
			return
		}
		lb := w.view(ticket.GameID, ticket.WindowKey)
		if lb == nil {
			continue
		}
		lb.Remove(ticket.Entry)
	}
}

// Stop signals the worker and waits up to timeout for it to exit. Returns
// false if the worker had to be abandoned.
func (w *ExpirationWorker) Stop(timeout time.Duration) bool {
	close(w.stop)

	select {
	case <-w.done:
		return true
	case <-time.After(timeout):
		logging.Error("Expiration worker did not stop within", timeout)
		return false
	}
}
