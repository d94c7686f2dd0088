// Package evmclient provides a narrow JSON-RPC client for reading settled
// transactions from EVM chains, with per-attempt timeouts and bounded retry
// on transport failures.
package evmclient

import (
	"context"
	"math/big"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"

	"github.com/auditforge/paygate/common/errs"
	"github.com/auditforge/paygate/pkg/metrics"
)

const (
	DefaultRequestTimeout = 10 * time.Second
	DefaultMaxAttempts    = 3
	DefaultRetryBackoff   = 500 * time.Millisecond
)

// TxInfo is the subset of transaction data verification needs.
type TxInfo struct {
	Hash common.Hash

	// From is the sender recovered from the transaction signature. Unforgeable,
	// unlike anything the client claims.
	From common.Address
}

// Contract reads settled transaction state from one chain.
//
// Both methods return an error matching errs.NotFound when the node does not
// know the transaction; any other error is a transport or node failure and
// says nothing about the transaction itself.
type Contract interface {
	GetTransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error)
	GetTransaction(ctx context.Context, txHash common.Hash) (TxInfo, error)
}

type Config struct {
	RPCEndpoint string `mapstructure:"rpc_endpoint"`

	// RequestTimeout bounds each RPC attempt. Default is 10s.
	RequestTimeout time.Duration `mapstructure:"request_timeout"`

	// MaxAttempts bounds retries on transport failures. Default is 3.
	MaxAttempts int `mapstructure:"max_attempts"`

	// RetryBackoff is the initial delay between attempts, doubled per attempt.
	// Default is 500ms.
	RetryBackoff time.Duration `mapstructure:"retry_backoff"`
}

func (c Config) withDefaults() Config {
	if c.RequestTimeout <= 0 {
		c.RequestTimeout = DefaultRequestTimeout
	}
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = DefaultMaxAttempts
	}
	if c.RetryBackoff <= 0 {
		c.RetryBackoff = DefaultRetryBackoff
	}
	return c
}

// Client implements Contract over go-ethereum's JSON-RPC client.
type Client struct {
	eth     *ethclient.Client
	chainID *big.Int
	signer  types.Signer
	config  Config
	metrics metrics.Recorder
}

var _ Contract = (*Client)(nil)

// Dial connects to the RPC endpoint and verifies the node reports the
// expected chain id. The chain id also seeds signature recovery, so a
// misconfigured endpoint fails here instead of producing wrong senders later.
func Dial(ctx context.Context, conf Config, chainID uint64, recorder metrics.Recorder) (*Client, error) {
	conf = conf.withDefaults()
	if recorder == nil {
		recorder = metrics.NoopRecorder{}
	}

	eth, err := ethclient.DialContext(ctx, conf.RPCEndpoint)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to dial rpc endpoint %q", conf.RPCEndpoint)
	}

	client := &Client{
		eth:     eth,
		chainID: new(big.Int).SetUint64(chainID),
		config:  conf,
		metrics: recorder,
	}
	client.signer = types.LatestSignerForChainID(client.chainID)

	reported, err := withRetry(ctx, client, chainID, "eth_chainId", func(ctx context.Context) (*big.Int, error) {
		return eth.ChainID(ctx)
	})
	if err != nil {
		eth.Close()
		return nil, errors.Wrap(err, "failed to query chain id")
	}
	if reported.Cmp(client.chainID) != 0 {
		eth.Close()
		return nil, errors.Errorf("rpc endpoint %q reports chain id %s, expected %d", conf.RPCEndpoint, reported, chainID)
	}
	return client, nil
}

// GetTransactionReceipt fetches the receipt of a mined transaction.
func (c *Client) GetTransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error) {
	return withRetry(ctx, c, c.chainID.Uint64(), "eth_getTransactionReceipt", func(ctx context.Context) (*types.Receipt, error) {
		receipt, err := c.eth.TransactionReceipt(ctx, txHash)
		if err != nil {
			if errors.Is(err, ethereum.NotFound) {
				return nil, errors.Wrapf(errs.NotFound, "no receipt for transaction %s", txHash)
			}
			return nil, errors.WithStack(err)
		}
		return receipt, nil
	})
}

// GetTransaction fetches a transaction and recovers its sender from the
// signature. A transaction still in the mempool reports errs.NotFound, same
// as an unknown one: neither has settled state worth inspecting.
func (c *Client) GetTransaction(ctx context.Context, txHash common.Hash) (TxInfo, error) {
	return withRetry(ctx, c, c.chainID.Uint64(), "eth_getTransactionByHash", func(ctx context.Context) (TxInfo, error) {
		tx, pending, err := c.eth.TransactionByHash(ctx, txHash)
		if err != nil {
			if errors.Is(err, ethereum.NotFound) {
				return TxInfo{}, errors.Wrapf(errs.NotFound, "no transaction %s", txHash)
			}
			return TxInfo{}, errors.WithStack(err)
		}
		if pending {
			return TxInfo{}, errors.Wrapf(errs.NotFound, "transaction %s is not mined yet", txHash)
		}
		from, err := types.Sender(c.signer, tx)
		if err != nil {
			return TxInfo{}, errors.Wrapf(err, "failed to recover sender of transaction %s", txHash)
		}
		return TxInfo{Hash: txHash, From: from}, nil
	})
}

// Close releases the underlying RPC connection.
func (c *Client) Close() {
	c.eth.Close()
}

// withRetry runs fn up to MaxAttempts times with a per-attempt timeout and
// doubling backoff. errs.NotFound is a definitive node answer, not a
// transport failure, and is never retried.
func withRetry[T any](ctx context.Context, c *Client, chainID uint64, method string, fn func(ctx context.Context) (T, error)) (T, error) {
	var zero T
	var lastErr error
	backoff := c.config.RetryBackoff
	for attempt := 0; attempt < c.config.MaxAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return zero, errors.WithStack(ctx.Err())
			case <-time.After(backoff):
			}
			backoff *= 2
		}

		attemptCtx, cancel := context.WithTimeout(ctx, c.config.RequestTimeout)
		start := time.Now()
		result, err := fn(attemptCtx)
		cancel()
		c.metrics.ObserveRPCDuration(method, chainID, err == nil, time.Since(start))

		if err == nil {
			return result, nil
		}
		if errors.Is(err, errs.NotFound) {
			return zero, err
		}
		lastErr = err
	}
	return zero, errors.Wrapf(lastErr, "%s failed after %d attempts", method, c.config.MaxAttempts)
}
