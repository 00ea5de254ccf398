package recorder

import "DualHalfTrend/internal/model"

// NoopRecorder is a no-op implementation used when SQLite is not configured.
type NoopRecorder struct{}

func NewNoopRecorder() *NoopRecorder { return &NoopRecorder{} }

func (n *NoopRecorder) RecordRun(_ *Run) error                              { return nil }
func (n *NoopRecorder) RecordSignals(_ string, _ []model.SignalEvent) error { return nil }
func (n *NoopRecorder) RecentSignals(_ string, _ int) ([]model.SignalEvent, error) {
	return nil, nil
}
func (n *NoopRecorder) Close() error { return nil }
