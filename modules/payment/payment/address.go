package payment

import (
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/ethereum/go-ethereum/common"
)

var ErrInvalidAddress = errors.New("malformed address")

// Address is an EVM address in canonical form: "0x" followed by 40 lowercase
// hex characters. All address comparisons in this module go through
// normalization, never raw string comparison, because wallets and explorers
// commonly mix checksum casing for the same address.
type Address string

// NormalizeAddress validates raw as a 0x-prefixed 40-hex-character string and
// returns its canonical lowercase form. Returns ErrInvalidAddress otherwise.
func NormalizeAddress(raw string) (Address, error) {
	if len(raw) != 42 || (raw[:2] != "0x" && raw[:2] != "0X") {
		return "", errors.WithStack(ErrInvalidAddress)
	}
	if !common.IsHexAddress(raw) {
		return "", errors.WithStack(ErrInvalidAddress)
	}
	return Address(strings.ToLower(raw)), nil
}

// MustAddress is like NormalizeAddress but panics on invalid input.
// Intended for static configuration values only.
func MustAddress(raw string) Address {
	addr, err := NormalizeAddress(raw)
	if err != nil {
		panic("payment: invalid static address: " + raw)
	}
	return addr
}

// AddressFromCommon converts a go-ethereum address to its canonical form.
func AddressFromCommon(addr common.Address) Address {
	return Address(strings.ToLower(addr.Hex()))
}

// Common converts the address to the go-ethereum representation.
func (a Address) Common() common.Address {
	return common.HexToAddress(string(a))
}

func (a Address) String() string {
	return string(a)
}
