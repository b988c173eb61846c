package metrics

// MultiSink fans clearing events out to multiple sinks.
type MultiSink struct {
	Sinks []MetricsSink
}

// NewMultiSink creates a MultiSink with the provided sinks.
func NewMultiSink(sinks ...MetricsSink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

// RecordClearing forwards the events to all sinks, returning the first
// error encountered.
func (m *MultiSink) RecordClearing(events []ClearingEvent) error {
	for _, s := range m.Sinks {
		if err := s.RecordClearing(events); err != nil {
			return err
		}
	}
	return nil
}
