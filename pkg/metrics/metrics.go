// Package metrics records operational counters for payment verification.
// Implementations must be safe for concurrent use.
package metrics

import "time"

// Recorder receives verification and RPC measurements.
type Recorder interface {
	// AddVerification counts one completed verification pass by terminal
	// status and chain.
	AddVerification(status string, chainID uint64)

	// AddLedgerApply counts one ledger apply attempt by result
	// ("applied", "duplicate", "account_not_found", "error").
	AddLedgerApply(result string)

	// ObserveRPCDuration records the latency of one blockchain RPC attempt.
	ObserveRPCDuration(method string, chainID uint64, success bool, d time.Duration)
}
