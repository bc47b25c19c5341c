package audit

import (
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/Horridhunk/carmannagement/internal/auth"
)

type Event struct {
	ActorRole string
	ActorID   *uint
	Action    string
	Entity    string
	EntityID  *uint
	Metadata  any
}

// For builds an event performed by p on the given entity.
func For(p auth.Principal, action, entity string, entityID uint, meta any) Event {
	ev := Event{
		ActorRole: string(p.Role),
		Action:    action,
		Entity:    entity,
		Metadata:  meta,
	}
	if p.ID != 0 {
		id := p.ID
		ev.ActorID = &id
	}
	if entityID != 0 {
		ev.EntityID = &entityID
	}
	return ev
}

// Dispatcher persists audit events off the request path. Events are dropped
// when the queue is full. A nil Dispatcher discards everything.
type Dispatcher struct {
	logger *Logger
	log    *logrus.Entry
	queue  chan Event
	wg     sync.WaitGroup

	mu     sync.RWMutex
	closed bool
}

func NewDispatcher(logger *Logger, log *logrus.Entry) *Dispatcher {
	d := &Dispatcher{
		logger: logger,
		log:    log,
		queue:  make(chan Event, 100),
	}

	d.wg.Add(1)
	go d.worker()
	return d
}

func (d *Dispatcher) worker() {
	defer d.wg.Done()
	for ev := range d.queue {
		if err := d.logger.Log(ev); err != nil {
			d.log.WithError(err).WithField("action", ev.Action).Warn("audit write failed")
		}
	}
}

func (d *Dispatcher) Dispatch(ev Event) {
	if d == nil {
		return
	}

	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return
	}

	select {
	case d.queue <- ev:
	default:
		d.log.WithField("action", ev.Action).Warn("audit queue full, dropping event")
	}
}

// Close stops accepting events and waits for the queue to drain.
func (d *Dispatcher) Close() {
	if d == nil {
		return
	}

	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.queue)
	}
	d.mu.Unlock()

	d.wg.Wait()
}
