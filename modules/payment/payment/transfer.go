package payment

import (
	"iter"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
)

// transferEventSignature is keccak256("Transfer(address,address,uint256)"),
// the topic[0] of every ERC-20 Transfer event.
var transferEventSignature = crypto.Keccak256Hash([]byte("Transfer(address,address,uint256)"))

// TransferRecord is one decoded ERC-20 Transfer event.
type TransferRecord struct {
	From  Address
	To    Address
	Value *big.Int
}

// DecodeTransferLogs yields the Transfer events emitted by the given token
// contract, in receipt order. Logs from other contracts, other event types,
// and malformed logs are skipped silently; a transaction routinely carries
// events this module has no business interpreting.
//
// The sequence decodes lazily and stops early when the consumer does.
func DecodeTransferLogs(logs []*types.Log, token Address) iter.Seq[TransferRecord] {
	return func(yield func(TransferRecord) bool) {
		for _, log := range logs {
			record, ok := decodeTransferLog(log, token)
			if !ok {
				continue
			}
			if !yield(record) {
				return
			}
		}
	}
}

func decodeTransferLog(log *types.Log, token Address) (TransferRecord, bool) {
	if log == nil || AddressFromCommon(log.Address) != token {
		return TransferRecord{}, false
	}
	// Transfer(address indexed from, address indexed to, uint256 value):
	// exactly three topics, value alone in the 32-byte data segment.
	if len(log.Topics) != 3 || log.Topics[0] != transferEventSignature {
		return TransferRecord{}, false
	}
	if len(log.Data) != common.HashLength {
		return TransferRecord{}, false
	}
	return TransferRecord{
		From:  AddressFromCommon(common.BytesToAddress(log.Topics[1].Bytes())),
		To:    AddressFromCommon(common.BytesToAddress(log.Topics[2].Bytes())),
		Value: new(big.Int).SetBytes(log.Data),
	}, true
}
