package metrics

import "time"

// NoopRecorder discards every measurement. Used when metrics are disabled
// and in tests.
type NoopRecorder struct{}

var _ Recorder = NoopRecorder{}

func (NoopRecorder) AddVerification(string, uint64)                         {}
func (NoopRecorder) AddLedgerApply(string)                                  {}
func (NoopRecorder) ObserveRPCDuration(string, uint64, bool, time.Duration) {}
