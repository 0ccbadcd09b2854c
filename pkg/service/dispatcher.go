// Per-conversation message dispatcher
package service

import (
	"log/slog"
	"sync"
	"time"

	"github.com/konekta/ouvidoria/pkg/utils"
)

// dispatcher defaults
const (
	defaultQueueSize  = 32
	defaultWorkerIdle = 2 * time.Minute
)

type inboundMessage struct {
	from string
	text string
}

// Dispatcher serializes message processing per conversation key while letting
// unrelated conversations run in parallel. Each active key owns one FIFO
// queue drained by one goroutine, so two messages from the same phone can
// never interleave inside the engine; workers retire after sitting idle.
type Dispatcher struct {
	handle     func(from, text string)
	queueSize  int
	workerIdle time.Duration
	logger     *slog.Logger

	mu      sync.Mutex
	workers map[string]chan inboundMessage
	closed  bool
	wg      sync.WaitGroup
}

// NewDispatcher creates a new dispatcher. handle runs one dialogue turn and
// is invoked from exactly one goroutine per key at a time.
func NewDispatcher(handle func(from, text string)) *Dispatcher {
	return &Dispatcher{
		handle:     handle,
		queueSize:  defaultQueueSize,
		workerIdle: defaultWorkerIdle,
		logger:     utils.GetLogger(),
		workers:    make(map[string]chan inboundMessage),
	}
}

// Enqueue hands a message to the key's worker, starting one if needed.
// A full queue drops the message with a warning rather than blocking the
// webhook handler; the sender will simply re-prompt on the next message.
func (d *Dispatcher) Enqueue(key, from, text string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		d.logger.Warn("Dispatcher closed, dropping message", "key", key)
		return
	}

	queue, ok := d.workers[key]
	if !ok {
		queue = make(chan inboundMessage, d.queueSize)
		d.workers[key] = queue
		d.wg.Add(1)
		go d.runWorker(key, queue)
	}

	select {
	case queue <- inboundMessage{from: from, text: text}:
	default:
		d.logger.Warn("Conversation queue full, dropping message", "key", key)
	}
}

// Close stops accepting messages and waits for in-flight turns to finish.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	for _, queue := range d.workers {
		close(queue)
	}
	d.mu.Unlock()

	d.wg.Wait()
}

// runTurn isolates one handler invocation. A panicking turn must not take
// the worker (and with it every queued message for the key) down.
func (d *Dispatcher) runTurn(msg inboundMessage) {
	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("Message handler panicked", "from", msg.from, "panic", r)
		}
	}()
	d.handle(msg.from, msg.text)
}

func (d *Dispatcher) runWorker(key string, queue chan inboundMessage) {
	defer d.wg.Done()

	idle := time.NewTimer(d.workerIdle)
	defer idle.Stop()

	for {
		select {
		case msg, ok := <-queue:
			if !ok {
				return
			}
			d.runTurn(msg)
			if !idle.Stop() {
				select {
				case <-idle.C:
				default:
				}
			}
			idle.Reset(d.workerIdle)

		case <-idle.C:
			// Retire only when nothing is queued; Enqueue holds the same
			// lock, so no message can slip in between the check and removal.
			d.mu.Lock()
			if len(queue) == 0 && !d.closed {
				delete(d.workers, key)
				d.mu.Unlock()
				return
			}
			d.mu.Unlock()
			idle.Reset(d.workerIdle)
		}
	}
}
