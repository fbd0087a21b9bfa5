package events

import (
	"sync"
)

const (
	TypeProgress = "download-progress"
	TypeComplete = "download-complete"
	TypeStartup  = "startup-progress"
)

// Event is one outbound notification. Delivery is fire-and-forget with
// best-effort ordering only.
type Event struct {
	Type     string `json:"type"`
	JobID    string `json:"job_id,omitempty"`
	Progress string `json:"progress,omitempty"`
	Percent  int    `json:"percent,omitempty"`
	Message  string `json:"message,omitempty"`
}

// Bus fans events out to subscribers. A subscriber that cannot keep up
// loses events instead of blocking publishers.
type Bus struct {
	mu   sync.RWMutex
	subs map[int]chan Event
	next int
}

func NewBus() *Bus {
	return &Bus{
		subs: make(map[int]chan Event),
	}
}

// Subscribe registers a new listener. The returned cancel func must be
// called to release the subscription.
func (b *Bus) Subscribe() (<-chan Event, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.next
	b.next++

	ch := make(chan Event, 64)
	b.subs[id] = ch

	cancel := func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if sub, ok := b.subs[id]; ok {
			delete(b.subs, id)
			close(sub)
		}
	}

	return ch, cancel
}

func (b *Bus) Publish(e Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, ch := range b.subs {
		select {
		case ch <- e:
		default:
			// Subscriber buffer full; drop rather than block the job.
		}
	}
}

// Notify implements the fetch progress sink.
func (b *Bus) Notify(jobID string, progress string) {
	b.Publish(Event{Type: TypeProgress, JobID: jobID, Progress: progress})
}

// NotifyComplete implements the fetch progress sink.
func (b *Bus) NotifyComplete(jobID string) {
	b.Publish(Event{Type: TypeComplete, JobID: jobID})
}

// StartupProgress reports catalog refresh progress.
func (b *Bus) StartupProgress(percent int, message string) {
	b.Publish(Event{Type: TypeStartup, Percent: percent, Message: message})
}
