package game

import (
	"bufio"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"
)

// Event log budgets.
const (
	EventQueueSize     = 1024
	MaxEventsPerSec    = 2000
	MaxEventsPerType   = 300
	EventFlushInterval = 100 * time.Millisecond
)

// EventLogStats are the event log counters.
type EventLogStats struct {
	Accepted uint64 `json:"accepted"`
	Dropped  uint64 `json:"dropped"`
	Written  uint64 `json:"written"`
	Pending  int    `json:"pending"`
	Running  bool   `json:"running"`
}

// EventLog appends engine events to a JSONL file. Emit never blocks the
// tick: events past the rate budget or a full queue are counted and dropped.
type EventLog struct {
	queue chan Event

	global  *rate.Limiter
	perType map[EventType]*rate.Limiter
	limitMu sync.Mutex

	done    chan struct{}
	wg      sync.WaitGroup
	once    sync.Once
	running atomic.Bool

	file *os.File

	accepted atomic.Uint64
	dropped  atomic.Uint64
	written  atomic.Uint64
}

// NewEventLog creates a stopped event log.
func NewEventLog() *EventLog {
	return &EventLog{
		queue:   make(chan Event, EventQueueSize),
		global:  rate.NewLimiter(MaxEventsPerSec, MaxEventsPerSec/10),
		perType: make(map[EventType]*rate.Limiter),
		done:    make(chan struct{}),
	}
}

// Start opens path for append and starts the writer. An empty path keeps
// counting events without writing them.
func (el *EventLog) Start(path string) error {
	if el.running.Load() {
		return nil
	}
	if path != "" {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return fmt.Errorf("event log: open %s: %w", path, err)
		}
		el.file = f
	}

	el.running.Store(true)
	el.wg.Add(1)
	go el.writeLoop()

	log.Printf("📝 Event log started (%s)", path)
	return nil
}

// Stop drains queued events to disk and closes the file. It is safe to call
// more than once.
func (el *EventLog) Stop() {
	el.once.Do(func() {
		if !el.running.Swap(false) {
			return
		}
		close(el.done)
		el.wg.Wait()
		if el.file != nil {
			if err := el.file.Close(); err != nil {
				log.Printf("⚠️ Event log close: %v", err)
			}
		}
	})
}

func (el *EventLog) limiter(t EventType) *rate.Limiter {
	el.limitMu.Lock()
	defer el.limitMu.Unlock()
	l, ok := el.perType[t]
	if !ok {
		l = rate.NewLimiter(MaxEventsPerType, MaxEventsPerType/10)
		el.perType[t] = l
	}
	return l
}

// Emit queues ev. It reports false when the log is stopped or ev was dropped.
func (el *EventLog) Emit(ev Event) bool {
	if !el.running.Load() {
		return false
	}
	if !el.global.Allow() || !el.limiter(ev.Type).Allow() {
		el.dropped.Add(1)
		return false
	}
	select {
	case el.queue <- ev:
		el.accepted.Add(1)
		return true
	default:
		el.dropped.Add(1)
		return false
	}
}

func (el *EventLog) writeLoop() {
	defer el.wg.Done()

	var w *bufio.Writer
	var enc *json.Encoder
	if el.file != nil {
		w = bufio.NewWriter(el.file)
		enc = json.NewEncoder(w)
	}
	write := func(ev Event) {
		if enc == nil {
			return
		}
		if err := enc.Encode(ev); err != nil {
			log.Printf("⚠️ Event log write: %v", err)
			return
		}
		el.written.Add(1)
	}
	flush := func() {
		if w == nil {
			return
		}
		if err := w.Flush(); err != nil {
			log.Printf("⚠️ Event log flush: %v", err)
		}
	}

	ticker := time.NewTicker(EventFlushInterval)
	defer ticker.Stop()

	for {
		select {
		case ev := <-el.queue:
			write(ev)
		case <-ticker.C:
			flush()
		case <-el.done:
			for {
				select {
				case ev := <-el.queue:
					write(ev)
				default:
					flush()
					return
				}
			}
		}
	}
}

// Stats returns a point-in-time copy of the counters.
func (el *EventLog) Stats() EventLogStats {
	return EventLogStats{
		Accepted: el.accepted.Load(),
		Dropped:  el.dropped.Load(),
		Written:  el.written.Load(),
		Pending:  len(el.queue),
		Running:  el.running.Load(),
	}
}
