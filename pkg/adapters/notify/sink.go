package notify

import (
	"log/slog"
	"sync"

	"github.com/aretw0/stagehand/pkg/ports"
)

// Kind names a notification.
type Kind string

const (
	KindCreated     Kind = "created"
	KindAppeared    Kind = "appeared"
	KindDisappeared Kind = "disappeared"
	KindDestroyed   Kind = "destroyed"
	KindPopRoute    Kind = "pop_route"
)

// Notification is one recorded sink call.
type Notification struct {
	Kind        Kind   `json:"kind"`
	ContainerID string `json:"container_id"`
	URL         string `json:"url,omitempty"`
}

func (n Notification) String() string {
	return string(n.Kind) + ":" + n.ContainerID
}

func notification(kind Kind, c ports.Container) Notification {
	url, _ := c.URL()
	return Notification{Kind: kind, ContainerID: c.UniqueID(), URL: url}
}

// LogSink logs notifications. PopRoute replies with nil when a reply is given.
type LogSink struct {
	Logger *slog.Logger
}

var _ ports.NotificationSink = (*LogSink)(nil)

// NewLogSink creates a sink writing to logger (slog.Default when nil).
func NewLogSink(logger *slog.Logger) *LogSink {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogSink{Logger: logger}
}

func (s *LogSink) log(kind Kind, c ports.Container) {
	url, _ := c.URL()
	s.Logger.Info("container "+string(kind),
		"container", c.UniqueID(),
		"url", url,
		"engine_id", c.CachedEngineID(),
		"stage", c.Stage().String(),
	)
}

func (s *LogSink) OnContainerCreated(c ports.Container)     { s.log(KindCreated, c) }
func (s *LogSink) OnContainerAppeared(c ports.Container)    { s.log(KindAppeared, c) }
func (s *LogSink) OnContainerDisappeared(c ports.Container) { s.log(KindDisappeared, c) }
func (s *LogSink) OnContainerDestroyed(c ports.Container)   { s.log(KindDestroyed, c) }

func (s *LogSink) PopRoute(c ports.Container, reply ports.Reply) {
	s.log(KindPopRoute, c)
	if reply != nil {
		reply(nil)
	}
}

// Recorder keeps every notification in memory.
type Recorder struct {
	mu    sync.Mutex
	items []Notification
	// PopReply, when set, is passed to every PopRoute reply callback.
	PopReply error
}

var _ ports.NotificationSink = (*Recorder)(nil)

// NewRecorder creates an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) add(kind Kind, c ports.Container) {
	r.mu.Lock()
	r.items = append(r.items, notification(kind, c))
	r.mu.Unlock()
}

func (r *Recorder) OnContainerCreated(c ports.Container)     { r.add(KindCreated, c) }
func (r *Recorder) OnContainerAppeared(c ports.Container)    { r.add(KindAppeared, c) }
func (r *Recorder) OnContainerDisappeared(c ports.Container) { r.add(KindDisappeared, c) }
func (r *Recorder) OnContainerDestroyed(c ports.Container)   { r.add(KindDestroyed, c) }

func (r *Recorder) PopRoute(c ports.Container, reply ports.Reply) {
	r.add(KindPopRoute, c)
	if reply != nil {
		reply(r.PopReply)
	}
}

// Notifications returns a copy of what was recorded.
func (r *Recorder) Notifications() []Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Notification(nil), r.items...)
}

// Strings returns the recorded notifications as "kind:container".
func (r *Recorder) Strings() []string {
	items := r.Notifications()
	out := make([]string, len(items))
	for i, n := range items {
		out[i] = n.String()
	}
	return out
}

// Count returns how many notifications of kind were recorded.
func (r *Recorder) Count(kind Kind) int {
	n := 0
	for _, item := range r.Notifications() {
		if item.Kind == kind {
			n++
		}
	}
	return n
}

// Reset clears the recorder.
func (r *Recorder) Reset() {
	r.mu.Lock()
	r.items = nil
	r.mu.Unlock()
}

// Multi forwards every notification to each sink in order.
// PopRoute passes the reply only to the first sink so it is answered once.
type Multi []ports.NotificationSink

var _ ports.NotificationSink = Multi(nil)

func (m Multi) OnContainerCreated(c ports.Container) {
	for _, s := range m {
		s.OnContainerCreated(c)
	}
}

func (m Multi) OnContainerAppeared(c ports.Container) {
	for _, s := range m {
		s.OnContainerAppeared(c)
	}
}

func (m Multi) OnContainerDisappeared(c ports.Container) {
	for _, s := range m {
		s.OnContainerDisappeared(c)
	}
}

func (m Multi) OnContainerDestroyed(c ports.Container) {
	for _, s := range m {
		s.OnContainerDestroyed(c)
	}
}

func (m Multi) PopRoute(c ports.Container, reply ports.Reply) {
	for i, s := range m {
		if i == 0 {
			s.PopRoute(c, reply)
			continue
		}
		s.PopRoute(c, nil)
	}
}
