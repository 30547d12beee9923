package display

import (
	"context"
	"sync"

	"github.com/valyala/bytebufferpool"
)

// LogArea is the read-only text area shown in the host coding frame. Writes go
// through the dispatcher; reads may happen from any goroutine.
type LogArea struct {
	d    *Dispatcher
	mu   sync.RWMutex
	text string
}

// NewLogArea returns an empty log area updated on d's loop.
func NewLogArea(d *Dispatcher) *LogArea {
	return &LogArea{d: d}
}

// Show replaces the area content with message.
func (a *LogArea) Show(ctx context.Context, message string) error {
	return a.d.Run(ctx, func(context.Context) {
		buf := bytebufferpool.Get()
		defer bytebufferpool.Put(buf)
		_, _ = buf.WriteString(message)
		_ = buf.WriteByte('\n')
		a.set(buf.String())
	})
}

// Reset empties the area.
func (a *LogArea) Reset(ctx context.Context) error {
	return a.d.Run(ctx, func(context.Context) { a.set("") })
}

// Text returns the current content.
func (a *LogArea) Text() string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.text
}

func (a *LogArea) set(text string) {
	a.mu.Lock()
	a.text = text
	a.mu.Unlock()
}
