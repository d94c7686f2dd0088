package httphandler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"math/big"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/auditforge/paygate/common/errs"
	"github.com/auditforge/paygate/modules/payment/internal/entity"
	"github.com/auditforge/paygate/modules/payment/payment"
	"github.com/auditforge/paygate/modules/payment/usecase"
	"github.com/auditforge/paygate/pkg/errorhandler"
	"github.com/auditforge/paygate/pkg/evmclient"
)

var (
	testSender   = payment.MustAddress("0x1111111111111111111111111111111111111111")
	testToken    = payment.MustAddress("0xdAC17F958D2ee523a2206206994597C13D831ec7")
	testTreasury = payment.DefaultTreasuryAddress
	testTxHash   = "0x6c5f0a3c64c4c1b0e51b1e9ce55ed44c14bfadb63b6e76e43b3b13bcf23e057d"
)

type fakeChainClient struct {
	receipt    *types.Receipt
	receiptErr error
	tx         evmclient.TxInfo
	txErr      error
}

func (f *fakeChainClient) GetTransactionReceipt(_ context.Context, _ common.Hash) (*types.Receipt, error) {
	return f.receipt, f.receiptErr
}

func (f *fakeChainClient) GetTransaction(_ context.Context, _ common.Hash) (evmclient.TxInfo, error) {
	return f.tx, f.txErr
}

type fakeSubscriptionDg struct {
	sub      *entity.Subscription
	applyErr error
	applied  []entity.ApplyPaymentParams
}

func (f *fakeSubscriptionDg) GetSubscription(_ context.Context, _ uuid.UUID) (*entity.Subscription, error) {
	if f.sub == nil {
		return nil, errors.Wrap(errs.NotFound, "account not found")
	}
	return f.sub, nil
}

func (f *fakeSubscriptionDg) ApplyConfirmedPayment(_ context.Context, params entity.ApplyPaymentParams) (*entity.Subscription, error) {
	if f.applyErr != nil {
		return nil, f.applyErr
	}
	// tx_hash is the primary key of the processed-payments ledger.
	for _, prev := range f.applied {
		if prev.TxHash == params.TxHash {
			return nil, errors.Wrapf(errs.Duplicate, "payment %s was already processed", params.TxHash)
		}
	}
	f.applied = append(f.applied, params)
	return f.sub, nil
}

func confirmedClient() *fakeChainClient {
	return &fakeChainClient{
		receipt: &types.Receipt{
			Status:      types.ReceiptStatusSuccessful,
			BlockNumber: big.NewInt(19_000_000),
			Logs: []*types.Log{
				{
					Address: testToken.Common(),
					Topics: []common.Hash{
						common.HexToHash("0xddf252ad1be2c89b69c2b068fc378daa952ba7f163c4a11628f55a4df523b3ef"),
						common.BytesToHash(testSender.Common().Bytes()),
						common.BytesToHash(testTreasury.Common().Bytes()),
					},
					Data: common.BigToHash(big.NewInt(49_000_000)).Bytes(),
				},
			},
		},
		tx: evmclient.TxInfo{From: testSender.Common()},
	}
}

func newTestApp(t *testing.T, client evmclient.Contract, dg *fakeSubscriptionDg) *fiber.App {
	t.Helper()
	networks, err := payment.NewChainRegistry(payment.DefaultChains())
	require.NoError(t, err)
	pricing, err := payment.NewPricingCatalog(payment.DefaultPricingEntries())
	require.NoError(t, err)
	verifier := payment.NewVerifier(networks, map[uint64]evmclient.Contract{1: client}, testTreasury)
	uc := usecase.New(verifier, dg, pricing, networks, testTreasury, nil)

	app := fiber.New(fiber.Config{
		ErrorHandler: errorhandler.NewHTTPErrorHandler(),
	})
	require.NoError(t, New(uc).Mount(app))
	return app
}

func verifyBody(accountID uuid.UUID) map[string]any {
	return map[string]any{
		"accountId":    accountID.String(),
		"txHash":       testTxHash,
		"fromAddress":  testSender.String(),
		"tokenAddress": testToken.String(),
		"amount":       "49000000",
		"tier":         "recommended",
		"chainId":      1,
	}
}

func doJSON(t *testing.T, app *fiber.App, method, path string, body any) (*http.Response, map[string]any) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))
	return resp, decoded
}

func TestVerifyPaymentConfirmed(t *testing.T) {
	accountID := uuid.New()
	expiresAt := time.Now().Add(30 * 24 * time.Hour).UTC()
	dg := &fakeSubscriptionDg{
		sub: &entity.Subscription{
			AccountID: accountID,
			Tier:      payment.TierRecommended,
			ExpiresAt: &expiresAt,
		},
	}
	app := newTestApp(t, confirmedClient(), dg)

	resp, body := doJSON(t, app, fiber.MethodPost, "/v1/payments/verify", verifyBody(accountID))
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	result := body["result"].(map[string]any)
	assert.Equal(t, "confirmed", result["status"])
	assert.Equal(t, false, result["alreadyProcessed"])
	sub := result["subscription"].(map[string]any)
	assert.Equal(t, accountID.String(), sub["accountId"])
	assert.Equal(t, "recommended", sub["tier"])
}

func TestVerifyPaymentAlreadyProcessed(t *testing.T) {
	dg := &fakeSubscriptionDg{
		applyErr: errors.Wrap(errs.Duplicate, "payment already processed"),
	}
	app := newTestApp(t, confirmedClient(), dg)

	resp, body := doJSON(t, app, fiber.MethodPost, "/v1/payments/verify", verifyBody(uuid.New()))
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)

	result := body["result"].(map[string]any)
	assert.Equal(t, "confirmed", result["status"])
	assert.Equal(t, true, result["alreadyProcessed"])
}

func TestVerifyPaymentReplayWithDifferentHashCasing(t *testing.T) {
	accountID := uuid.New()
	dg := &fakeSubscriptionDg{
		sub: &entity.Subscription{
			AccountID: accountID,
			Tier:      payment.TierRecommended,
		},
	}
	app := newTestApp(t, confirmedClient(), dg)

	resp, _ := doJSON(t, app, fiber.MethodPost, "/v1/payments/verify", verifyBody(accountID))
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	// same transaction, upper-cased hex digits: must hit the same ledger key
	body := verifyBody(accountID)
	body["txHash"] = "0x" + strings.ToUpper(testTxHash[2:])
	resp, decoded := doJSON(t, app, fiber.MethodPost, "/v1/payments/verify", body)
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)

	result := decoded["result"].(map[string]any)
	assert.Equal(t, true, result["alreadyProcessed"])

	require.Len(t, dg.applied, 1)
	assert.Equal(t, testTxHash, dg.applied[0].TxHash)
}

func TestVerifyPaymentAccountNotFound(t *testing.T) {
	dg := &fakeSubscriptionDg{
		applyErr: errors.Wrap(errs.NotFound, "account not found"),
	}
	app := newTestApp(t, confirmedClient(), dg)

	resp, _ := doJSON(t, app, fiber.MethodPost, "/v1/payments/verify", verifyBody(uuid.New()))
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestVerifyPaymentPendingIs402(t *testing.T) {
	client := &fakeChainClient{receiptErr: errors.Wrap(errs.NotFound, "no receipt")}
	app := newTestApp(t, client, &fakeSubscriptionDg{})

	resp, body := doJSON(t, app, fiber.MethodPost, "/v1/payments/verify", verifyBody(uuid.New()))
	assert.Equal(t, fiber.StatusPaymentRequired, resp.StatusCode)

	result := body["result"].(map[string]any)
	assert.Equal(t, "pending", result["status"])
}

func TestVerifyPaymentUpstreamErrorIs502(t *testing.T) {
	client := &fakeChainClient{receiptErr: errors.New("connection refused")}
	app := newTestApp(t, client, &fakeSubscriptionDg{})

	resp, body := doJSON(t, app, fiber.MethodPost, "/v1/payments/verify", verifyBody(uuid.New()))
	assert.Equal(t, fiber.StatusBadGateway, resp.StatusCode)

	result := body["result"].(map[string]any)
	assert.Equal(t, "error", result["status"])
}

func TestVerifyPaymentValidation(t *testing.T) {
	type testcase struct {
		name   string
		mutate func(body map[string]any)
	}
	testcases := []testcase{
		{
			name:   "missing account id",
			mutate: func(body map[string]any) { delete(body, "accountId") },
		},
		{
			name:   "malformed account id",
			mutate: func(body map[string]any) { body["accountId"] = "not-a-uuid" },
		},
		{
			name:   "malformed tx hash",
			mutate: func(body map[string]any) { body["txHash"] = "0x123" },
		},
		{
			name:   "malformed from address",
			mutate: func(body map[string]any) { body["fromAddress"] = "nope" },
		},
		{
			name:   "unknown tier",
			mutate: func(body map[string]any) { body["tier"] = "enterprise" },
		},
		{
			name:   "non-integer amount",
			mutate: func(body map[string]any) { body["amount"] = "49.5" },
		},
		{
			name:   "negative amount",
			mutate: func(body map[string]any) { body["amount"] = "-49000000" },
		},
	}
	for _, tc := range testcases {
		t.Run(tc.name, func(t *testing.T) {
			app := newTestApp(t, confirmedClient(), &fakeSubscriptionDg{})
			body := verifyBody(uuid.New())
			tc.mutate(body)

			resp, decoded := doJSON(t, app, fiber.MethodPost, "/v1/payments/verify", body)
			assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
			assert.NotEmpty(t, decoded["error"])
		})
	}
}

func TestCheckTransaction(t *testing.T) {
	app := newTestApp(t, confirmedClient(), &fakeSubscriptionDg{})

	body := verifyBody(uuid.New())
	delete(body, "accountId")
	resp, decoded := doJSON(t, app, fiber.MethodPost, "/v1/payments/check-transaction", body)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	result := decoded["result"].(map[string]any)
	assert.Equal(t, "confirmed", result["status"])
}

func TestGetPricing(t *testing.T) {
	app := newTestApp(t, confirmedClient(), &fakeSubscriptionDg{})

	resp, body := doJSON(t, app, fiber.MethodGet, "/v1/payments/pricing", nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	result := body["result"].(map[string]any)
	assert.Equal(t, testTreasury.String(), result["treasuryAddress"])
	pricing := result["pricing"].([]any)
	require.Len(t, pricing, 2)

	first := pricing[0].(map[string]any)
	assert.Equal(t, "recommended", first["tier"])
	assert.Equal(t, "49000000", first["amount"])
	assert.Equal(t, "49", first["displayAmount"])
	assert.Equal(t, "USDT", first["currency"])
	assert.Equal(t, float64(30), first["validityDays"])
}

func TestGetPricingUnknownTier(t *testing.T) {
	app := newTestApp(t, confirmedClient(), &fakeSubscriptionDg{})

	resp, _ := doJSON(t, app, fiber.MethodGet, "/v1/payments/pricing?tier=enterprise", nil)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestGetNetworks(t *testing.T) {
	app := newTestApp(t, confirmedClient(), &fakeSubscriptionDg{})

	resp, body := doJSON(t, app, fiber.MethodGet, "/v1/payments/networks", nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	result := body["result"].(map[string]any)
	networks := result["networks"].([]any)
	require.Len(t, networks, 4)
	first := networks[0].(map[string]any)
	assert.Equal(t, float64(1), first["chainId"])
	assert.Equal(t, "Ethereum Mainnet", first["name"])
}

func TestGetTreasury(t *testing.T) {
	app := newTestApp(t, confirmedClient(), &fakeSubscriptionDg{})

	resp, body := doJSON(t, app, fiber.MethodGet, "/v1/payments/treasury", nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	result := body["result"].(map[string]any)
	assert.Equal(t, testTreasury.String(), result["treasuryAddress"])
	token := result["token"].(map[string]any)
	assert.Equal(t, "USDT", token["symbol"])
	assert.Equal(t, float64(6), token["decimals"])
	assert.Len(t, result["networks"].([]any), 4)
}

func TestGetSubscription(t *testing.T) {
	accountID := uuid.New()
	dg := &fakeSubscriptionDg{
		sub: &entity.Subscription{
			AccountID: accountID,
			Tier:      payment.TierFree,
		},
	}
	app := newTestApp(t, confirmedClient(), dg)

	resp, body := doJSON(t, app, fiber.MethodGet, "/v1/payments/subscriptions/"+accountID.String(), nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	result := body["result"].(map[string]any)
	sub := result["subscription"].(map[string]any)
	assert.Equal(t, "free", sub["tier"])
}

func TestGetSubscriptionMalformedAccountID(t *testing.T) {
	app := newTestApp(t, confirmedClient(), &fakeSubscriptionDg{})

	resp, decoded := doJSON(t, app, fiber.MethodGet, "/v1/payments/subscriptions/not-a-uuid", nil)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.NotEmpty(t, decoded["error"])
}

func TestGetSubscriptionNotFound(t *testing.T) {
	app := newTestApp(t, confirmedClient(), &fakeSubscriptionDg{})

	resp, _ := doJSON(t, app, fiber.MethodGet, "/v1/payments/subscriptions/"+uuid.NewString(), nil)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}
