package payment

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"github.com/auditforge/paygate/common/errs"
	"github.com/auditforge/paygate/pkg/evmclient"
	"github.com/auditforge/paygate/pkg/logger"
	"github.com/auditforge/paygate/pkg/logger/slogx"
)

// Verifier checks payment claims against settled chain state. It is pure with
// respect to application state: it reads from chain clients and returns an
// outcome, nothing else. Safe for concurrent use.
type Verifier struct {
	networks *ChainRegistry
	clients  map[uint64]evmclient.Contract
	treasury Address
}

// NewVerifier creates a verifier over the given chain catalog and per-chain
// clients. clients is keyed by chain id.
func NewVerifier(networks *ChainRegistry, clients map[uint64]evmclient.Contract, treasury Address) *Verifier {
	return &Verifier{
		networks: networks,
		clients:  clients,
		treasury: treasury,
	}
}

// Verify classifies a payment claim. The checks run cheapest-first and stop at
// the first terminal answer: local shape checks, then the receipt, then the
// signed sender, then the transfer events. Infrastructure failures surface as
// StatusError and never as a judgement about the claim.
func (v *Verifier) Verify(ctx context.Context, claim PaymentClaim) VerificationOutcome {
	from, err := NormalizeAddress(claim.FromAddress)
	if err != nil {
		return v.invalid(claim, "malformed sender address")
	}
	token, err := NormalizeAddress(claim.TokenAddress)
	if err != nil {
		return v.invalid(claim, "malformed token address")
	}
	chain, err := v.networks.Lookup(claim.ChainID)
	if err != nil {
		return v.invalid(claim, "unsupported chain")
	}

	// Decoding against an arbitrary claimed contract would let anyone deploy
	// a token that emits whatever Transfer events they like. Only the
	// configured stablecoin counts.
	if token != chain.StablecoinAddress {
		return v.invalid(claim, "unsupported token for this chain")
	}
	if claim.Amount == nil || claim.Amount.Sign() <= 0 {
		return v.invalid(claim, "claimed amount must be positive")
	}

	client, ok := v.clients[claim.ChainID]
	if !ok {
		return v.errored(ctx, claim, errors.Errorf("no rpc client for chain %d", claim.ChainID))
	}

	txHash := common.HexToHash(claim.TxHash)
	receipt, err := client.GetTransactionReceipt(ctx, txHash)
	if err != nil {
		if errors.Is(err, errs.NotFound) {
			return VerificationOutcome{
				Status:    StatusPending,
				Message:   "transaction not found, it may still be propagating or pending",
				TxHash:    claim.TxHash,
				Timestamp: time.Now().UTC(),
			}
		}
		return v.errored(ctx, claim, err)
	}

	if receipt.Status != types.ReceiptStatusSuccessful {
		return VerificationOutcome{
			Status:    StatusFailed,
			Message:   "transaction reverted on chain",
			TxHash:    claim.TxHash,
			Timestamp: time.Now().UTC(),
		}
	}

	tx, err := client.GetTransaction(ctx, txHash)
	if err != nil {
		// A receipt exists, so NotFound here means the node answered
		// inconsistently. Infrastructure problem either way.
		return v.errored(ctx, claim, err)
	}
	if AddressFromCommon(tx.From) != from {
		return v.invalid(claim, "transaction sender does not match the claimed address")
	}

	for record := range DecodeTransferLogs(receipt.Logs, token) {
		if record.From == from && record.To == v.treasury && record.Value.Cmp(claim.Amount) == 0 {
			blockNumber := receipt.BlockNumber.Uint64()
			return VerificationOutcome{
				Status:      StatusConfirmed,
				Message:     "payment confirmed",
				TxHash:      claim.TxHash,
				BlockNumber: &blockNumber,
				Timestamp:   time.Now().UTC(),
			}
		}
	}

	return v.invalid(claim, "no transfer in this transaction matches the claimed sender, recipient and amount")
}

func (v *Verifier) invalid(claim PaymentClaim, message string) VerificationOutcome {
	return VerificationOutcome{
		Status:    StatusInvalid,
		Message:   message,
		TxHash:    claim.TxHash,
		Timestamp: time.Now().UTC(),
	}
}

func (v *Verifier) errored(ctx context.Context, claim PaymentClaim, err error) VerificationOutcome {
	logger.WarnContext(ctx, "payment verification hit an infrastructure failure",
		slogx.Error(err),
		slogx.String("tx_hash", claim.TxHash),
		slogx.Uint64("chain_id", claim.ChainID),
	)
	return VerificationOutcome{
		Status:    StatusError,
		Message:   "verification temporarily unavailable, retry later",
		TxHash:    claim.TxHash,
		Timestamp: time.Now().UTC(),
	}
}
