package config

import (
	"github.com/auditforge/paygate/internal/postgres"
	"github.com/auditforge/paygate/pkg/evmclient"
)

type Config struct {
	Postgres postgres.Config `mapstructure:"postgres"`

	// APIHandlers lists the API surfaces to mount, e.g. ["http"].
	APIHandlers []string `mapstructure:"api_handlers"`

	// TreasuryAddress overrides the payment destination address.
	TreasuryAddress string `mapstructure:"treasury_address"`

	// Chains overrides the supported network catalog. Empty means the
	// default catalog.
	Chains []ChainConfig `mapstructure:"chains"`

	// Pricing overrides the tier price table. Empty means the default table.
	Pricing []PricingConfig `mapstructure:"pricing"`

	// RPC tunes timeout and retry behavior of chain clients. The endpoint is
	// taken per chain from the chain catalog.
	RPC evmclient.Config `mapstructure:"rpc"`
}

type ChainConfig struct {
	ChainID           uint64 `mapstructure:"chain_id"`
	Name              string `mapstructure:"name"`
	RPCEndpoint       string `mapstructure:"rpc_endpoint"`
	StablecoinAddress string `mapstructure:"stablecoin_address"`
}

type PricingConfig struct {
	Tier string `mapstructure:"tier"`

	// Amount is the price in the token's smallest unit, as a base-10 string.
	Amount string `mapstructure:"amount"`

	ValidityDays int `mapstructure:"validity_days"`
}
