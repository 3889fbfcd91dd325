// Package sse streams project, tracking and collection changes to clients
// as Server-Sent Events.
package sse

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"
)

// Event types.
const (
	TypeProjectCreated    = "project.created"
	TypeProjectUpdated    = "project.updated"
	TypeProjectDeleted    = "project.deleted"
	TypeProjectsReset     = "projects.reset"
	TypeTimelineUpdated   = "timeline.updated"
	TypeTimerTick         = "timer.tick"
	TypeSessionSaved      = "session.saved"
	TypeCollectionUpdated = "collection.updated"
)

// Event is one message to broadcast.
type Event struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// TickData is the payload of a timer.tick event.
type TickData struct {
	TrackerID string `json:"trackerId"`
	ProjectID string `json:"projectId"`
	Seconds   int    `json:"seconds"`
}

// SessionData is the payload of a session.saved event.
type SessionData struct {
	ProjectID string `json:"projectId"`
	SessionID string `json:"sessionId"`
	Seconds   int    `json:"seconds"`
}

type projectEventReq struct {
	kind      string
	projectID string
}

// Broker fans events out to connected clients.
//
// A single loop goroutine owns the client set and the per-project timeline
// throttle. Public methods talk to it over channels.
type Broker struct {
	timelineMin time.Duration

	subscribeCh    chan chan []byte
	unsubscribeCh  chan chan []byte
	publishCh      chan Event
	projectEventCh chan projectEventReq
	countReqCh     chan chan int

	stopCh  chan struct{}
	stopped chan struct{}
	closed  atomic.Bool
}

// NewBroker starts a broker that emits at most one timeline.updated per
// project every timelineThrottle.
func NewBroker(timelineThrottle time.Duration) *Broker {
	if timelineThrottle <= 0 {
		timelineThrottle = 2 * time.Second
	}

	b := &Broker{
		timelineMin:    timelineThrottle,
		subscribeCh:    make(chan chan []byte),
		unsubscribeCh:  make(chan chan []byte),
		publishCh:      make(chan Event, 256),
		projectEventCh: make(chan projectEventReq, 256),
		countReqCh:     make(chan chan int),
		stopCh:         make(chan struct{}),
		stopped:        make(chan struct{}),
	}

	go b.run()
	return b
}

func (b *Broker) run() {
	defer close(b.stopped)

	clients := make(map[chan []byte]struct{})
	lastTimeline := make(map[string]time.Time)
	var seq uint64

	broadcast := func(event Event) {
		payload, err := json.Marshal(event.Data)
		if err != nil {
			return
		}
		seq++
		raw := []byte(fmt.Sprintf("id: %d\nevent: %s\ndata: %s\n\n", seq, event.Type, payload))

		for ch := range clients {
			select {
			case ch <- raw:
			default:
				// slow client, drop
			}
		}
	}

	for {
		select {
		case <-b.stopCh:
			for ch := range clients {
				close(ch)
			}
			return

		case ch := <-b.subscribeCh:
			clients[ch] = struct{}{}

		case ch := <-b.unsubscribeCh:
			if _, ok := clients[ch]; ok {
				delete(clients, ch)
				close(ch)
			}

		case event := <-b.publishCh:
			broadcast(event)

		case req := <-b.projectEventCh:
			data := map[string]string{"projectId": req.projectID}
			switch req.kind {
			case "created":
				broadcast(Event{Type: TypeProjectCreated, Data: data})
			case "updated":
				broadcast(Event{Type: TypeProjectUpdated, Data: data})
			case "deleted":
				broadcast(Event{Type: TypeProjectDeleted, Data: data})
				delete(lastTimeline, req.projectID)
				continue
			case "reset":
				broadcast(Event{Type: TypeProjectsReset, Data: map[string]string{}})
				clear(lastTimeline)
				continue
			default:
				continue
			}

			now := time.Now()
			if now.Sub(lastTimeline[req.projectID]) >= b.timelineMin {
				lastTimeline[req.projectID] = now
				broadcast(Event{Type: TypeTimelineUpdated, Data: data})
			}

		case resp := <-b.countReqCh:
			resp <- len(clients)
		}
	}
}

// Close stops the loop and closes every client channel.
func (b *Broker) Close() {
	if b.closed.CompareAndSwap(false, true) {
		close(b.stopCh)
	}
	<-b.stopped
}

// Subscribe adds a client and returns its channel.
func (b *Broker) Subscribe() chan []byte {
	ch := make(chan []byte, 64)
	if b.closed.Load() {
		close(ch)
		return ch
	}

	select {
	case b.subscribeCh <- ch:
	case <-b.stopped:
		close(ch)
	}

	return ch
}

// Unsubscribe removes a client and closes its channel.
func (b *Broker) Unsubscribe(ch chan []byte) {
	if b.closed.Load() {
		return
	}
	select {
	case b.unsubscribeCh <- ch:
	case <-b.stopped:
	}
}

// ClientCount returns the number of connected clients.
func (b *Broker) ClientCount() int {
	if b.closed.Load() {
		return 0
	}

	resp := make(chan int, 1)
	select {
	case b.countReqCh <- resp:
	case <-b.stopped:
		return 0
	}

	select {
	case n := <-resp:
		return n
	case <-b.stopped:
		return 0
	}
}

// Publish sends an event to all clients.
func (b *Broker) Publish(event Event) {
	if b.closed.Load() {
		return
	}
	select {
	case b.publishCh <- event:
	case <-b.stopped:
	}
}

// PublishProjectEvent publishes a project change (kind is created, updated,
// deleted or reset) and, for created or updated, a throttled
// timeline.updated for that project.
func (b *Broker) PublishProjectEvent(kind, projectID string) {
	if b.closed.Load() {
		return
	}
	select {
	case b.projectEventCh <- projectEventReq{kind: kind, projectID: projectID}:
	case <-b.stopped:
	}
}

// PublishTick publishes the elapsed seconds of a live tracker.
func (b *Broker) PublishTick(trackerID, projectID string, seconds int) {
	b.Publish(Event{Type: TypeTimerTick, Data: TickData{TrackerID: trackerID, ProjectID: projectID, Seconds: seconds}})
}

// PublishSessionSaved announces a stored session.
func (b *Broker) PublishSessionSaved(projectID, sessionID string, seconds int) {
	b.Publish(Event{Type: TypeSessionSaved, Data: SessionData{ProjectID: projectID, SessionID: sessionID, Seconds: seconds}})
}

// PublishCollectionUpdated announces an inventory change.
func (b *Broker) PublishCollectionUpdated() {
	b.Publish(Event{Type: TypeCollectionUpdated, Data: map[string]string{}})
}

// ServeHTTP is the SSE endpoint (GET /api/events).
func (b *Broker) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			_, _ = w.Write(msg)
			flusher.Flush()
		}
	}
}
