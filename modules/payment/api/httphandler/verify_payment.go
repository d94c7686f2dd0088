package httphandler

import (
	"math/big"

	"github.com/cockroachdb/errors"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/auditforge/paygate/common"
	"github.com/auditforge/paygate/common/errs"
	"github.com/auditforge/paygate/modules/payment/payment"
)

// paymentClaimRequest is the wire form of a payment claim, shared by the
// verify and check endpoints.
type paymentClaimRequest struct {
	TxHash       string `json:"txHash" validate:"required,len=66,startswith=0x,hexadecimal"`
	FromAddress  string `json:"fromAddress" validate:"required,eth_addr"`
	TokenAddress string `json:"tokenAddress" validate:"required,eth_addr"`
	Amount       string `json:"amount" validate:"required"`
	Tier         string `json:"tier" validate:"required"`
	ChainID      uint64 `json:"chainId" validate:"required"`
}

// ToClaim converts the wire form into a domain claim. Amount arrives as a
// base-10 string in the token's smallest unit; JSON numbers cannot carry
// uint256 values safely.
func (r paymentClaimRequest) ToClaim() (payment.PaymentClaim, error) {
	tier, err := payment.ParseTier(r.Tier)
	if err != nil {
		return payment.PaymentClaim{}, errs.WithPublicMessage(err, "validation error")
	}
	amount, ok := new(big.Int).SetString(r.Amount, 10)
	if !ok || amount.Sign() <= 0 {
		return payment.PaymentClaim{}, errs.NewPublicError("'amount' must be a positive base-10 integer in the token's smallest unit")
	}
	return payment.PaymentClaim{
		TxHash:       payment.NormalizeTxHash(r.TxHash),
		FromAddress:  r.FromAddress,
		TokenAddress: r.TokenAddress,
		Amount:       amount,
		Tier:         tier,
		ChainID:      r.ChainID,
	}, nil
}

type verifyPaymentRequest struct {
	paymentClaimRequest
	AccountID string `json:"accountId" validate:"required,uuid"`
}

func (r verifyPaymentRequest) Validate() error {
	if err := validate.Struct(r); err != nil {
		return errs.WithPublicMessage(err, "validation error")
	}
	return nil
}

type verifyPaymentResult struct {
	payment.VerificationOutcome
	AlreadyProcessed bool             `json:"alreadyProcessed"`
	Subscription     *subscriptionDto `json:"subscription,omitempty"`
}

type verifyPaymentResponse = common.HttpResponse[verifyPaymentResult]

// VerifyPayment verifies a claimed payment and upgrades the account's
// subscription when the payment confirms. Safe to retry: a confirmed hash is
// applied once, later attempts report 409.
func (h *HttpHandler) VerifyPayment(ctx *fiber.Ctx) (err error) {
	var req verifyPaymentRequest
	if err := ctx.BodyParser(&req); err != nil {
		return errs.WithPublicMessage(err, "invalid request body")
	}
	if err := req.Validate(); err != nil {
		return errors.WithStack(err)
	}

	accountID, err := uuid.Parse(req.AccountID)
	if err != nil {
		return errs.WithPublicMessage(err, "invalid account id")
	}
	claim, err := req.ToClaim()
	if err != nil {
		return errors.WithStack(err)
	}

	result, err := h.usecase.VerifyAndUpgrade(ctx.UserContext(), accountID, claim)
	if err != nil {
		if errors.Is(err, errs.NotFound) {
			return errors.WithStack(fiber.NewError(fiber.StatusNotFound, "account not found"))
		}
		return errors.Wrap(err, "error during VerifyAndUpgrade")
	}

	status := statusForOutcome(result.Outcome)
	if result.AlreadyProcessed {
		status = fiber.StatusConflict
		result.Outcome.Message = "this payment was already processed"
	}

	resp := verifyPaymentResponse{
		Result: &verifyPaymentResult{
			VerificationOutcome: result.Outcome,
			AlreadyProcessed:    result.AlreadyProcessed,
			Subscription:        newSubscriptionDto(result.Subscription),
		},
	}
	return errors.WithStack(ctx.Status(status).JSON(resp))
}
