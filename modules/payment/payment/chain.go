package payment

import (
	"github.com/cockroachdb/errors"
)

var ErrUnsupportedChain = errors.New("unsupported chain")

// Chain describes one supported EVM network. Static configuration, immutable
// after process start.
type Chain struct {
	ChainID     uint64 `json:"chainId"`
	Name        string `json:"name"`
	RPCEndpoint string `json:"rpcUrl"`

	// StablecoinAddress is the stablecoin contract on this chain. Token
	// addresses differ between chains and are never interchangeable.
	StablecoinAddress Address `json:"stablecoinAddress"`
}

// ChainRegistry is a static catalog of supported chains.
// Read-only after construction; performs no network calls.
type ChainRegistry struct {
	chains []Chain
	byID   map[uint64]Chain
}

// NewChainRegistry builds a registry from the given chains, preserving
// configuration order. Chain ids must be unique and stablecoin addresses valid.
func NewChainRegistry(chains []Chain) (*ChainRegistry, error) {
	registry := &ChainRegistry{
		chains: make([]Chain, 0, len(chains)),
		byID:   make(map[uint64]Chain, len(chains)),
	}
	for _, chain := range chains {
		if chain.ChainID == 0 {
			return nil, errors.New("chain id must not be zero")
		}
		if _, ok := registry.byID[chain.ChainID]; ok {
			return nil, errors.Errorf("duplicate chain id %d", chain.ChainID)
		}
		normalized, err := NormalizeAddress(string(chain.StablecoinAddress))
		if err != nil {
			return nil, errors.Wrapf(err, "invalid stablecoin address for chain %d", chain.ChainID)
		}
		chain.StablecoinAddress = normalized
		registry.chains = append(registry.chains, chain)
		registry.byID[chain.ChainID] = chain
	}
	return registry, nil
}

// Lookup returns the chain with the given id.
// Returns ErrUnsupportedChain if the id is not in the catalog.
func (r *ChainRegistry) Lookup(chainID uint64) (Chain, error) {
	chain, ok := r.byID[chainID]
	if !ok {
		return Chain{}, errors.Wrapf(ErrUnsupportedChain, "chain id %d", chainID)
	}
	return chain, nil
}

// All returns every supported chain in configuration order.
func (r *ChainRegistry) All() []Chain {
	chains := make([]Chain, len(r.chains))
	copy(chains, r.chains)
	return chains
}

// DefaultChains is the reference deployment network catalog.
func DefaultChains() []Chain {
	return []Chain{
		{
			ChainID:           1,
			Name:              "Ethereum Mainnet",
			RPCEndpoint:       "https://eth.llamarpc.com",
			StablecoinAddress: MustAddress("0xdAC17F958D2ee523a2206206994597C13D831ec7"),
		},
		{
			ChainID:           137,
			Name:              "Polygon",
			RPCEndpoint:       "https://polygon-rpc.com",
			StablecoinAddress: MustAddress("0xc2132D05D31c914a87C6611C10748AEb04B58e8F"),
		},
		{
			ChainID:           42161,
			Name:              "Arbitrum",
			RPCEndpoint:       "https://arb1.arbitrum.io/rpc",
			StablecoinAddress: MustAddress("0xFd086bC7CD5C481DCC9C85ebE478A1C0b69FCbb9"),
		},
		{
			ChainID:           10,
			Name:              "Optimism",
			RPCEndpoint:       "https://mainnet.optimism.io",
			StablecoinAddress: MustAddress("0x94b008aA00579c1307B0EF2c499aD98a8ce58e58"),
		},
	}
}

// DefaultTreasuryAddress is the reference deployment treasury address.
const DefaultTreasuryAddress = Address("0xdf49e29b6840d7ba57e4b5acddc770047f67ff13")
