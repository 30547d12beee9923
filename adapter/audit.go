// Package adapter provides adapters for arena-coder integration with external systems.
package adapter

import (
	"errors"

	"github.com/srediag/arena-coder/api"
)

// FanoutAudit sends every event to all of its sinks.
type FanoutAudit []api.Audit

var _ api.Audit = FanoutAudit(nil)

// LogEvent delivers the event to every sink and joins their errors.
func (f FanoutAudit) LogEvent(event string, details map[string]interface{}) error {
	var errs []error
	for _, sink := range f {
		if sink == nil {
			continue
		}
		if err := sink.LogEvent(event, details); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
