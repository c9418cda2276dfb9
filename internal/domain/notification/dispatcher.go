package notification

import (
	"context"
	"sync"

	"github.com/koinonia-lab/backend/internal/common"
	"github.com/koinonia-lab/backend/pkg/xcontext"
)

// Dispatcher delivers messages in background using a bounded queue and a
// fixed number of workers. Notify drops the message when the queue is full.
type Dispatcher struct {
	deliverer *Deliverer
	queue     chan Message
	workers   int

	wait   sync.WaitGroup
	mutex  sync.RWMutex
	closed bool
}

func NewDispatcher(deliverer *Deliverer, workers, queueSize int) *Dispatcher {
	if workers <= 0 {
		workers = 1
	}

	if queueSize <= 0 {
		queueSize = 1
	}

	return &Dispatcher{
		deliverer: deliverer,
		queue:     make(chan Message, queueSize),
		workers:   workers,
	}
}

// Start runs the workers. Workers use ctx for database access and logging,
// not the context of the caller of Notify, which is usually cancelled once
// the request ends.
func (d *Dispatcher) Start(ctx context.Context) {
	for i := 0; i < d.workers; i++ {
		d.wait.Add(1)
		go func() {
			defer d.wait.Done()
			for msg := range d.queue {
				// Errors were logged by the deliverer.
				_ = d.deliverer.Deliver(ctx, msg)
			}
		}()
	}
}

// Stop closes the queue and waits until every queued message is delivered.
// Messages notified after Stop are dropped.
func (d *Dispatcher) Stop() {
	d.mutex.Lock()
	if d.closed {
		d.mutex.Unlock()
		return
	}

	d.closed = true
	close(d.queue)
	d.mutex.Unlock()

	d.wait.Wait()
}

func (d *Dispatcher) Notify(ctx context.Context, msg Message) {
	d.mutex.RLock()
	defer d.mutex.RUnlock()

	if d.closed {
		xcontext.Logger(ctx).Warnf("Notification dispatcher is stopped, drop message to user %s", msg.UserID)
		common.PromCounters[common.NotificationTotal].WithLabelValues("dropped").Inc()
		return
	}

	select {
	case d.queue <- msg:
	default:
		xcontext.Logger(ctx).Warnf("Notification queue is full, drop message to user %s", msg.UserID)
		common.PromCounters[common.NotificationTotal].WithLabelValues("dropped").Inc()
	}
}
