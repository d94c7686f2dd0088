package httphandler

import (
	"github.com/cockroachdb/errors"
	"github.com/gofiber/fiber/v2"

	"github.com/auditforge/paygate/common"
	"github.com/auditforge/paygate/common/errs"
	"github.com/auditforge/paygate/modules/payment/payment"
)

type checkTransactionRequest struct {
	paymentClaimRequest
}

func (r checkTransactionRequest) Validate() error {
	if err := validate.Struct(r); err != nil {
		return errs.WithPublicMessage(err, "validation error")
	}
	return nil
}

type checkTransactionResult struct {
	payment.VerificationOutcome
}

type checkTransactionResponse = common.HttpResponse[checkTransactionResult]

// CheckTransaction verifies a claim without touching any account. Clients
// poll this while a transfer propagates, then call VerifyPayment once it
// reports confirmed.
func (h *HttpHandler) CheckTransaction(ctx *fiber.Ctx) (err error) {
	var req checkTransactionRequest
	if err := ctx.BodyParser(&req); err != nil {
		return errs.WithPublicMessage(err, "invalid request body")
	}
	if err := req.Validate(); err != nil {
		return errors.WithStack(err)
	}
	claim, err := req.ToClaim()
	if err != nil {
		return errors.WithStack(err)
	}

	outcome := h.usecase.CheckClaim(ctx.UserContext(), claim)

	resp := checkTransactionResponse{
		Result: &checkTransactionResult{VerificationOutcome: outcome},
	}
	return errors.WithStack(ctx.Status(statusForOutcome(outcome)).JSON(resp))
}
