package payment

import (
	"context"
	"math/big"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/gofiber/fiber/v2"
	"github.com/samber/do/v2"
	"github.com/samber/lo"

	"github.com/auditforge/paygate/common/errs"
	"github.com/auditforge/paygate/internal/config"
	"github.com/auditforge/paygate/internal/postgres"
	"github.com/auditforge/paygate/modules/payment/api"
	paymentconfig "github.com/auditforge/paygate/modules/payment/config"
	"github.com/auditforge/paygate/modules/payment/payment"
	paymentpostgres "github.com/auditforge/paygate/modules/payment/repository/postgres"
	"github.com/auditforge/paygate/modules/payment/usecase"
	"github.com/auditforge/paygate/pkg/evmclient"
	"github.com/auditforge/paygate/pkg/logger"
	"github.com/auditforge/paygate/pkg/logger/slogx"
	"github.com/auditforge/paygate/pkg/metrics"
)

const Version = "v0.1.0"

// Module owns the payment verification service: its database pool, its chain
// clients and its mounted API surfaces.
type Module struct {
	cleanupFuncs []func(context.Context) error
}

func New(injector do.Injector) (*Module, error) {
	ctx := do.MustInvoke[context.Context](injector)
	conf := do.MustInvoke[config.Config](injector)
	recorder := do.MustInvoke[metrics.Recorder](injector)
	moduleConf := conf.Modules.Payment

	networks, err := buildChainRegistry(moduleConf.Chains)
	if err != nil {
		return nil, errors.Wrap(err, "invalid chain configuration")
	}
	treasury, err := buildTreasury(moduleConf.TreasuryAddress)
	if err != nil {
		return nil, errors.Wrap(err, "invalid treasury address")
	}
	pricing, err := buildPricingCatalog(moduleConf.Pricing)
	if err != nil {
		return nil, errors.Wrap(err, "invalid pricing configuration")
	}

	var cleanupFuncs []func(context.Context) error

	pg, err := postgres.NewPool(ctx, moduleConf.Postgres)
	if err != nil {
		if errors.Is(err, errs.InvalidArgument) {
			return nil, errors.Wrap(err, "invalid Postgres configuration")
		}
		return nil, errors.Wrap(err, "can't create Postgres connection pool")
	}
	cleanupFuncs = append(cleanupFuncs, func(ctx context.Context) error {
		pg.Close()
		return nil
	})
	repo := paymentpostgres.NewRepository(pg)

	clients := make(map[uint64]evmclient.Contract, len(networks.All()))
	for _, chain := range networks.All() {
		rpcConf := moduleConf.RPC
		rpcConf.RPCEndpoint = chain.RPCEndpoint

		client, err := evmclient.Dial(ctx, rpcConf, chain.ChainID, recorder)
		if err != nil {
			return nil, errors.Wrapf(err, "can't connect to %q rpc endpoint", chain.Name)
		}
		cleanupFuncs = append(cleanupFuncs, func(ctx context.Context) error {
			client.Close()
			return nil
		})
		clients[chain.ChainID] = client
		logger.InfoContext(ctx, "Connected to EVM RPC endpoint",
			slogx.String("chain", chain.Name),
			slogx.Uint64("chain_id", chain.ChainID),
		)
	}

	verifier := payment.NewVerifier(networks, clients, treasury)
	paymentUsecase := usecase.New(verifier, repo, pricing, networks, treasury, recorder)

	// Mount API
	apiHandlers := lo.Uniq(moduleConf.APIHandlers)
	if len(apiHandlers) == 0 {
		apiHandlers = []string{"http"}
	}
	for _, handler := range apiHandlers {
		switch strings.ToLower(handler) {
		case "http":
			httpServer := do.MustInvoke[*fiber.App](injector)
			httpHandler := api.NewHTTPHandler(paymentUsecase)
			if err := httpHandler.Mount(httpServer); err != nil {
				return nil, errors.Wrap(err, "can't mount payment API")
			}
			logger.InfoContext(ctx, "Mounted payment HTTP handler")
		default:
			return nil, errors.Wrapf(errs.Unsupported, "%q API handler is not supported", handler)
		}
	}

	return &Module{cleanupFuncs: cleanupFuncs}, nil
}

// Shutdown releases the module's resources. Called by the injector during
// graceful shutdown.
func (m *Module) Shutdown() error {
	ctx := context.Background()
	var errList []error
	for _, cleanup := range m.cleanupFuncs {
		if err := cleanup(ctx); err != nil {
			errList = append(errList, err)
		}
	}
	return errors.Join(errList...)
}

func buildChainRegistry(chainConfigs []paymentconfig.ChainConfig) (*payment.ChainRegistry, error) {
	if len(chainConfigs) == 0 {
		return payment.NewChainRegistry(payment.DefaultChains())
	}
	chains := make([]payment.Chain, 0, len(chainConfigs))
	for _, conf := range chainConfigs {
		chains = append(chains, payment.Chain{
			ChainID:           conf.ChainID,
			Name:              conf.Name,
			RPCEndpoint:       conf.RPCEndpoint,
			StablecoinAddress: payment.Address(conf.StablecoinAddress),
		})
	}
	return payment.NewChainRegistry(chains)
}

func buildTreasury(raw string) (payment.Address, error) {
	if raw == "" {
		return payment.DefaultTreasuryAddress, nil
	}
	return payment.NormalizeAddress(raw)
}

func buildPricingCatalog(pricingConfigs []paymentconfig.PricingConfig) (*payment.PricingCatalog, error) {
	if len(pricingConfigs) == 0 {
		return payment.NewPricingCatalog(payment.DefaultPricingEntries())
	}
	entries := make([]payment.PricingEntry, 0, len(pricingConfigs))
	for _, conf := range pricingConfigs {
		tier, err := payment.ParseTier(conf.Tier)
		if err != nil {
			return nil, errors.WithStack(err)
		}
		amount, ok := new(big.Int).SetString(conf.Amount, 10)
		if !ok {
			return nil, errors.Errorf("invalid pricing amount %q for tier %q", conf.Amount, conf.Tier)
		}
		entries = append(entries, payment.PricingEntry{
			Tier:         tier,
			AmountDue:    amount,
			ValidityDays: conf.ValidityDays,
		})
	}
	return payment.NewPricingCatalog(entries)
}
