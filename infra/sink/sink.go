// Package sink persists the per-step state records emitted by the engine.
// The engine treats sinks as synchronous collaborators; it never consumes
// a return value beyond the error.
package sink

import "github.com/voltlab/battsim/core/model"

// RecordSink consumes state records.
type RecordSink interface {
	Write(model.StateRecord) error
	Flush() error
}

// Closer is implemented by sinks holding external resources.
type Closer interface {
	Close() error
}

// NopSink discards every record.
type NopSink struct{}

func (NopSink) Write(model.StateRecord) error { return nil }
func (NopSink) Flush() error                  { return nil }

// MultiSink fans records out to multiple sinks.
type MultiSink struct {
	Sinks []RecordSink
}

// NewMultiSink creates a MultiSink with the provided sinks.
func NewMultiSink(sinks ...RecordSink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

// Write forwards the record to all sinks, returning the first error.
func (m *MultiSink) Write(rec model.StateRecord) error {
	for _, s := range m.Sinks {
		if err := s.Write(rec); err != nil {
			return err
		}
	}
	return nil
}

// Flush forwards the flush to all sinks, returning the first error.
func (m *MultiSink) Flush() error {
	for _, s := range m.Sinks {
		if err := s.Flush(); err != nil {
			return err
		}
	}
	return nil
}

// Close closes every sink that holds resources.
func (m *MultiSink) Close() error {
	var first error
	for _, s := range m.Sinks {
		if c, ok := s.(Closer); ok {
			if err := c.Close(); err != nil && first == nil {
				first = err
			}
		}
	}
	return first
}
