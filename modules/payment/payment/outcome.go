package payment

import "time"

// VerificationStatus is the terminal classification of one verification pass.
type VerificationStatus string

const (
	// StatusConfirmed means the transaction succeeded on chain and contains a
	// transfer matching the claim exactly. The only status that unlocks a
	// tier upgrade.
	StatusConfirmed VerificationStatus = "confirmed"

	// StatusPending means the transaction is not yet visible on chain. The
	// claim may become confirmable later and resubmission is expected.
	StatusPending VerificationStatus = "pending"

	// StatusFailed means the transaction exists but reverted on chain.
	StatusFailed VerificationStatus = "failed"

	// StatusInvalid means the transaction exists and succeeded but does not
	// match the claim, or the claim itself is malformed.
	StatusInvalid VerificationStatus = "invalid"

	// StatusError means verification could not complete because of an
	// infrastructure problem. Says nothing about the claim itself.
	StatusError VerificationStatus = "error"
)

// VerificationOutcome is the result of verifying one payment claim.
type VerificationOutcome struct {
	Status  VerificationStatus `json:"status"`
	Message string             `json:"message"`

	// TxHash echoes the claimed transaction hash.
	TxHash string `json:"txHash,omitempty"`

	// BlockNumber is the block the transaction was mined in.
	// Set only for confirmed outcomes.
	BlockNumber *uint64 `json:"blockNumber,omitempty"`

	// Timestamp is when this verification pass completed.
	Timestamp time.Time `json:"timestamp"`
}
