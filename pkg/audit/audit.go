// Package audit keeps a bounded trail of plugin events for governance and debugging.
package audit

import (
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/srediag/arena-coder/api"
	"github.com/srediag/arena-coder/internal/logging"
)

// Event names recorded by the plugin.
const (
	EventProblemOpened       = "problem_opened"
	EventLanguageUnsupported = "language_unsupported"
	EventPluginNotFound      = "plugin_not_found"
	EventProjectCreated      = "project_created"
	EventProjectFailed       = "project_failed"
	EventError               = "error"
)

const defaultCapacity = 256

// Event is one recorded entry.
type Event struct {
	Name    string
	Time    time.Time
	Details map[string]interface{}
}

// Recorder is an in-memory api.Audit that also writes every event to the log.
type Recorder struct {
	mu     sync.Mutex
	events []Event
	cap    int
	log    *logging.Logger
	now    func() time.Time
}

var _ api.Audit = (*Recorder)(nil)

// NewRecorder keeps at most capacity events, 256 when capacity <= 0.
func NewRecorder(capacity int) *Recorder {
	if capacity <= 0 {
		capacity = defaultCapacity
	}
	return &Recorder{
		cap: capacity,
		log: logging.New("audit", nil),
		now: time.Now,
	}
}

// LogEvent records event with a copy of details.
func (r *Recorder) LogEvent(event string, details map[string]interface{}) error {
	if event == "" {
		return errors.New("audit: empty event name")
	}
	copied := make(map[string]interface{}, len(details))
	for k, v := range details {
		copied[k] = v
	}

	r.mu.Lock()
	if len(r.events) == r.cap {
		r.events = append(r.events[:0], r.events[1:]...)
	}
	r.events = append(r.events, Event{Name: event, Time: r.now(), Details: copied})
	r.mu.Unlock()

	r.log.Infof("%s %s", event, formatDetails(copied))
	return nil
}

// Events returns the recorded events, oldest first.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

// Last returns the newest event named name.
func (r *Recorder) Last(name string) (Event, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := len(r.events) - 1; i >= 0; i-- {
		if r.events[i].Name == name {
			return r.events[i], true
		}
	}
	return Event{}, false
}

func formatDetails(details map[string]interface{}) string {
	keys := make([]string, 0, len(details))
	for k := range details {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var b strings.Builder
	for i, k := range keys {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(toString(details[k]))
	}
	return b.String()
}
