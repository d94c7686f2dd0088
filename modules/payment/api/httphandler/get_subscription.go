package httphandler

import (
	"github.com/cockroachdb/errors"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/auditforge/paygate/common"
	"github.com/auditforge/paygate/common/errs"
)

type getSubscriptionRequest struct {
	AccountID string `params:"accountId"`
}

type getSubscriptionResult struct {
	Subscription *subscriptionDto `json:"subscription"`
}

type getSubscriptionResponse = common.HttpResponse[getSubscriptionResult]

func (h *HttpHandler) GetSubscription(ctx *fiber.Ctx) (err error) {
	var req getSubscriptionRequest
	if err := ctx.ParamsParser(&req); err != nil {
		return errors.WithStack(err)
	}

	accountID, err := uuid.Parse(req.AccountID)
	if err != nil {
		return errs.WithPublicMessage(err, "invalid account id")
	}

	sub, err := h.usecase.GetSubscription(ctx.UserContext(), accountID)
	if err != nil {
		if errors.Is(err, errs.NotFound) {
			return errors.WithStack(fiber.NewError(fiber.StatusNotFound, "account not found"))
		}
		return errors.Wrap(err, "error during GetSubscription")
	}

	resp := getSubscriptionResponse{
		Result: &getSubscriptionResult{
			Subscription: newSubscriptionDto(sub),
		},
	}
	return errors.WithStack(ctx.Status(fiber.StatusOK).JSON(resp))
}
