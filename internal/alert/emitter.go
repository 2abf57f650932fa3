package alert

import (
	"context"
	"log"
	"sync"
	"time"

	"NetSentra/internal/model"
)

// Publisher is the message-bus side of the emitter. Publishing is
// best-effort; failures are logged and never block the pipeline.
type Publisher interface {
	Publish(data []byte) error
	Close()
}

// Emitter decouples alert sinks from the capture goroutine through a
// bounded queue. Enqueue never blocks: when the queue is full the alert is
// dropped and counted.
type Emitter struct {
	store     model.Store
	publisher Publisher
	notifier  model.Notifier

	queue    chan *model.Alert
	stopChan chan struct{}
	wg       sync.WaitGroup

	mu      sync.Mutex
	dropped uint64
}

// NewEmitter creates and starts the emitter worker. publisher and notifier
// may be nil when the corresponding sink is not configured.
func NewEmitter(store model.Store, publisher Publisher, notifier model.Notifier, queueSize int) *Emitter {
	if queueSize <= 0 {
		queueSize = 1024
	}
	e := &Emitter{
		store:     store,
		publisher: publisher,
		notifier:  notifier,
		queue:     make(chan *model.Alert, queueSize),
		stopChan:  make(chan struct{}),
	}
	e.wg.Add(1)
	go e.run()
	return e
}

// Enqueue hands an alert to the worker without blocking.
func (e *Emitter) Enqueue(a *model.Alert) {
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now()
	}
	select {
	case e.queue <- a:
	default:
		e.mu.Lock()
		e.dropped++
		n := e.dropped
		e.mu.Unlock()
		log.Printf("[Alert] Queue full, dropping alert (%d dropped total)", n)
	}
}

// Dropped returns how many alerts were discarded on queue overflow.
func (e *Emitter) Dropped() uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.dropped
}

func (e *Emitter) run() {
	defer e.wg.Done()
	for {
		select {
		case a := <-e.queue:
			e.emit(a)
		case <-e.stopChan:
			// Drain whatever is already queued before exiting.
			for {
				select {
				case a := <-e.queue:
					e.emit(a)
				default:
					return
				}
			}
		}
	}
}

func (e *Emitter) emit(a *model.Alert) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := e.store.InsertAlert(ctx, a); err != nil {
		log.Printf("[Alert] Failed to persist alert: %v", err)
	}

	if e.publisher != nil {
		data, err := BuildEVE(a)
		if err != nil {
			log.Printf("[Alert] Failed to build EVE record: %v", err)
		} else if err := e.publisher.Publish(data); err != nil {
			log.Printf("[Alert] Failed to publish EVE record: %v", err)
		}
	}

	if e.notifier != nil && a.Severity == model.SeverityHigh {
		subject := "NetSentra Alert: " + a.AlertType
		body := "<h1>NetSentra Alert</h1>" +
			"<p><b>" + a.Description + "</b></p>" +
			"<p>Source: " + a.SourceIP + " → Destination: " + a.DestinationIP +
			" (" + a.Protocol + ")</p>"
		if err := e.notifier.Send(subject, body); err != nil {
			log.Printf("[Alert] Failed to send notification: %v", err)
		}
	}
}

// Stop drains the queue and stops the worker.
func (e *Emitter) Stop() {
	close(e.stopChan)
	e.wg.Wait()
}
