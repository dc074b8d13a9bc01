package escrow

import (
	"context"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/tdex-network/tdex-escrow/internal/core/domain"
	"github.com/tdex-network/tdex-escrow/internal/core/ports"
)

const publishTimeout = 10 * time.Second

// eventQueue hands committed events over to the publisher in commit order.
// Pushing never blocks, events are published in background so that a slow
// publisher does not hold the registry lock.
type eventQueue struct {
	publisher ports.EventPublisher

	lock    *sync.Mutex
	cond    *sync.Cond
	pending []domain.Event
	closed  bool

	closeOnce *sync.Once
	done      chan struct{}
}

func newEventQueue(publisher ports.EventPublisher) *eventQueue {
	lock := &sync.Mutex{}
	q := &eventQueue{
		publisher: publisher,
		lock:      lock,
		cond:      sync.NewCond(lock),
		closeOnce: &sync.Once{},
		done:      make(chan struct{}),
	}
	go q.listen()
	return q
}

func (q *eventQueue) push(events ...domain.Event) {
	if len(events) == 0 {
		return
	}

	q.lock.Lock()
	defer q.lock.Unlock()

	if q.closed {
		log.Warnf("event queue closed, dropping %d events", len(events))
		return
	}
	q.pending = append(q.pending, events...)
	q.cond.Signal()
}

// close stops accepting events and waits for the pending ones to be
// published.
func (q *eventQueue) close() {
	q.closeOnce.Do(func() {
		q.lock.Lock()
		q.closed = true
		q.cond.Broadcast()
		q.lock.Unlock()
	})
	<-q.done
}

func (q *eventQueue) listen() {
	defer close(q.done)

	for {
		q.lock.Lock()
		for len(q.pending) == 0 && !q.closed {
			q.cond.Wait()
		}
		events := q.pending
		q.pending = nil
		closed := q.closed
		q.lock.Unlock()

		for _, e := range events {
			q.publish(e)
		}
		if closed && len(events) == 0 {
			return
		}
	}
}

func (q *eventQueue) publish(e domain.Event) {
	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()

	if err := q.publisher.Publish(ctx, e); err != nil {
		log.WithError(err).Warnf(
			"failed to publish event %s for trade %d", e.Type, e.TradeID,
		)
	}
}
