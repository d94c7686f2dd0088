package payment

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// PaymentClaim is an untrusted client assertion that a stablecoin transfer
// settled on chain. Every field is taken at face value until verification:
// addresses may carry arbitrary casing and the hash may reference any
// transaction, or none at all.
type PaymentClaim struct {
	// TxHash is the 0x-prefixed 32-byte transaction hash being claimed.
	TxHash string

	// FromAddress is the wallet the client says it paid from.
	FromAddress string

	// TokenAddress is the token contract the client says it paid with.
	TokenAddress string

	// Amount is the transferred value in the token's smallest unit.
	Amount *big.Int

	// Tier is the subscription tier the payment is for.
	Tier Tier

	// ChainID selects the network the transaction is expected on.
	ChainID uint64
}

// NormalizeTxHash canonicalizes a 0x-prefixed transaction hash to lowercase.
// The ledger keys processed payments by this string, so every casing of the
// same hash must collapse to one key. Input must already be a valid
// 32-byte hex hash.
func NormalizeTxHash(raw string) string {
	return common.HexToHash(raw).Hex()
}
