package virtual

import (
	"fmt"
	"sync"
)

// Operation names recorded in the journal.
const (
	OpBind     = "bind"
	OpRelease  = "release"
	OpAttach   = "attach"
	OpDetach   = "detach"
	OpResumed  = "resumed"
	OpUIHidden = "ui_hidden"
	OpFinish   = "finish"
)

// Entry is one recorded operation.
type Entry struct {
	Op        string `json:"op"`
	Container string `json:"container,omitempty"`
	Engine    string `json:"engine,omitempty"`
}

// String formats the entry as "op:container@engine".
func (e Entry) String() string {
	switch {
	case e.Container == "":
		return fmt.Sprintf("%s@%s", e.Op, e.Engine)
	case e.Engine == "":
		return fmt.Sprintf("%s:%s", e.Op, e.Container)
	}
	return fmt.Sprintf("%s:%s@%s", e.Op, e.Container, e.Engine)
}

// Journal is an append-only, concurrency-safe operation log.
type Journal struct {
	mu      sync.Mutex
	entries []Entry
}

// NewJournal creates an empty journal.
func NewJournal() *Journal {
	return &Journal{}
}

func (j *Journal) record(op, container, engine string) {
	if j == nil {
		return
	}
	j.mu.Lock()
	j.entries = append(j.entries, Entry{Op: op, Container: container, Engine: engine})
	j.mu.Unlock()
}

// Entries returns a copy of the recorded operations.
func (j *Journal) Entries() []Entry {
	j.mu.Lock()
	defer j.mu.Unlock()
	return append([]Entry(nil), j.entries...)
}

// Filter returns the entries whose op is one of ops, formatted with Entry.String.
func (j *Journal) Filter(ops ...string) []string {
	want := make(map[string]bool, len(ops))
	for _, op := range ops {
		want[op] = true
	}
	var out []string
	for _, e := range j.Entries() {
		if want[e.Op] {
			out = append(out, e.String())
		}
	}
	return out
}

// Reset drops all entries.
func (j *Journal) Reset() {
	j.mu.Lock()
	j.entries = nil
	j.mu.Unlock()
}
