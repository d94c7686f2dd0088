package usecase

import (
	"context"
	"math/big"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/auditforge/paygate/common/errs"
	"github.com/auditforge/paygate/modules/payment/internal/entity"
	"github.com/auditforge/paygate/modules/payment/payment"
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
	f.applied = append(f.applied, params)
	if f.applyErr != nil {
		return nil, f.applyErr
	}
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

func newTestUsecase(t *testing.T, client evmclient.Contract, dg *fakeSubscriptionDg) *Usecase {
	t.Helper()
	networks, err := payment.NewChainRegistry(payment.DefaultChains())
	require.NoError(t, err)
	pricing, err := payment.NewPricingCatalog(payment.DefaultPricingEntries())
	require.NoError(t, err)
	verifier := payment.NewVerifier(networks, map[uint64]evmclient.Contract{1: client}, testTreasury)
	return New(verifier, dg, pricing, networks, testTreasury, nil)
}

func testClaim() payment.PaymentClaim {
	return payment.PaymentClaim{
		TxHash:       testTxHash,
		FromAddress:  testSender.String(),
		TokenAddress: testToken.String(),
		Amount:       big.NewInt(49_000_000),
		Tier:         payment.TierRecommended,
		ChainID:      1,
	}
}

func TestVerifyAndUpgradePriceMismatch(t *testing.T) {
	type testcase struct {
		name   string
		mutate func(claim *payment.PaymentClaim)
	}
	testcases := []testcase{
		{
			name:   "amount below tier price",
			mutate: func(claim *payment.PaymentClaim) { claim.Amount = big.NewInt(1_000_000) },
		},
		{
			name:   "amount pays for a cheaper tier",
			mutate: func(claim *payment.PaymentClaim) { claim.Tier = payment.TierPremium },
		},
		{
			name:   "free tier has no price",
			mutate: func(claim *payment.PaymentClaim) { claim.Tier = payment.TierFree },
		},
	}
	for _, tc := range testcases {
		t.Run(tc.name, func(t *testing.T) {
			dg := &fakeSubscriptionDg{}
			uc := newTestUsecase(t, confirmedClient(), dg)
			claim := testClaim()
			tc.mutate(&claim)

			result, err := uc.VerifyAndUpgrade(context.Background(), uuid.New(), claim)
			assert.NoError(t, err)
			assert.Equal(t, payment.StatusInvalid, result.Outcome.Status)
			assert.Empty(t, dg.applied, "price mismatch must not reach the ledger")
		})
	}
}

func TestVerifyAndUpgradeConfirmed(t *testing.T) {
	accountID := uuid.New()
	expiresAt := time.Now().Add(30 * 24 * time.Hour)
	txHash := testTxHash
	dg := &fakeSubscriptionDg{
		sub: &entity.Subscription{
			AccountID:         accountID,
			Tier:              payment.TierRecommended,
			ExpiresAt:         &expiresAt,
			LastPaymentTxHash: &txHash,
		},
	}
	uc := newTestUsecase(t, confirmedClient(), dg)

	result, err := uc.VerifyAndUpgrade(context.Background(), accountID, testClaim())
	require.NoError(t, err)
	assert.Equal(t, payment.StatusConfirmed, result.Outcome.Status)
	assert.False(t, result.AlreadyProcessed)
	require.NotNil(t, result.Subscription)
	assert.Equal(t, payment.TierRecommended, result.Subscription.Tier)

	require.Len(t, dg.applied, 1)
	applied := dg.applied[0]
	assert.Equal(t, accountID, applied.AccountID)
	assert.Equal(t, testTxHash, applied.TxHash)
	assert.Equal(t, payment.TierRecommended, applied.Tier)
	assert.Equal(t, uint64(1), applied.ChainID)
	assert.Equal(t, 30, applied.ValidityDays)
	assert.Zero(t, applied.Amount.Cmp(big.NewInt(49_000_000)))
}

func TestVerifyAndUpgradeDuplicate(t *testing.T) {
	dg := &fakeSubscriptionDg{
		applyErr: errors.Wrap(errs.Duplicate, "payment already processed"),
	}
	uc := newTestUsecase(t, confirmedClient(), dg)

	result, err := uc.VerifyAndUpgrade(context.Background(), uuid.New(), testClaim())
	require.NoError(t, err)
	assert.True(t, result.AlreadyProcessed)
	assert.Equal(t, payment.StatusConfirmed, result.Outcome.Status)
	assert.Nil(t, result.Subscription)
}

func TestVerifyAndUpgradeAccountNotFound(t *testing.T) {
	dg := &fakeSubscriptionDg{
		applyErr: errors.Wrap(errs.NotFound, "account not found"),
	}
	uc := newTestUsecase(t, confirmedClient(), dg)

	_, err := uc.VerifyAndUpgrade(context.Background(), uuid.New(), testClaim())
	assert.ErrorIs(t, err, errs.NotFound)
}

func TestVerifyAndUpgradeNonConfirmedOutcomesSkipLedger(t *testing.T) {
	type testcase struct {
		name          string
		client        *fakeChainClient
		expectedState payment.VerificationStatus
	}
	testcases := []testcase{
		{
			name:          "pending",
			client:        &fakeChainClient{receiptErr: errors.Wrap(errs.NotFound, "no receipt")},
			expectedState: payment.StatusPending,
		},
		{
			name:          "failed",
			client:        &fakeChainClient{receipt: &types.Receipt{Status: types.ReceiptStatusFailed, BlockNumber: big.NewInt(1)}},
			expectedState: payment.StatusFailed,
		},
		{
			name:          "transport error",
			client:        &fakeChainClient{receiptErr: errors.New("connection refused")},
			expectedState: payment.StatusError,
		},
	}
	for _, tc := range testcases {
		t.Run(tc.name, func(t *testing.T) {
			dg := &fakeSubscriptionDg{}
			uc := newTestUsecase(t, tc.client, dg)

			result, err := uc.VerifyAndUpgrade(context.Background(), uuid.New(), testClaim())
			assert.NoError(t, err)
			assert.Equal(t, tc.expectedState, result.Outcome.Status)
			assert.Empty(t, dg.applied)
		})
	}
}

func TestCheckClaimDoesNotTouchLedger(t *testing.T) {
	dg := &fakeSubscriptionDg{}
	uc := newTestUsecase(t, confirmedClient(), dg)

	outcome := uc.CheckClaim(context.Background(), testClaim())
	assert.Equal(t, payment.StatusConfirmed, outcome.Status)
	assert.Empty(t, dg.applied)
}
