package httphandler

import (
	"github.com/cockroachdb/errors"
	"github.com/gofiber/fiber/v2"

	"github.com/auditforge/paygate/common"
	"github.com/auditforge/paygate/common/errs"
	"github.com/auditforge/paygate/modules/payment/payment"
	"github.com/auditforge/paygate/pkg/decimals"
)

type getPricingRequest struct {
	Tier string `query:"tier"`
}

type pricingEntryDto struct {
	Tier          string `json:"tier"`
	Amount        string `json:"amount"`
	DisplayAmount string `json:"displayAmount"`
	Currency      string `json:"currency"`
	ValidityDays  int    `json:"validityDays"`
}

type getPricingResult struct {
	TreasuryAddress string            `json:"treasuryAddress"`
	Pricing         []pricingEntryDto `json:"pricing"`
}

type getPricingResponse = common.HttpResponse[getPricingResult]

func (h *HttpHandler) GetPricing(ctx *fiber.Ctx) (err error) {
	var req getPricingRequest
	if err := ctx.QueryParser(&req); err != nil {
		return errors.WithStack(err)
	}

	var entries []payment.PricingEntry
	if req.Tier != "" {
		tier, err := payment.ParseTier(req.Tier)
		if err != nil {
			return errs.WithPublicMessage(err, "validation error")
		}
		entry, err := h.usecase.PricingFor(tier)
		if err != nil {
			return errs.WithPublicMessage(err, "no pricing for this tier")
		}
		entries = []payment.PricingEntry{entry}
	} else {
		entries = h.usecase.Pricing()
	}

	result := getPricingResult{
		TreasuryAddress: h.usecase.Treasury().String(),
		Pricing:         make([]pricingEntryDto, 0, len(entries)),
	}
	for _, entry := range entries {
		result.Pricing = append(result.Pricing, pricingEntryDto{
			Tier:          entry.Tier.String(),
			Amount:        entry.AmountDue.String(),
			DisplayAmount: decimals.ToDecimal(entry.AmountDue, payment.StablecoinDecimals).String(),
			Currency:      payment.StablecoinSymbol,
			ValidityDays:  entry.ValidityDays,
		})
	}

	resp := getPricingResponse{
		Result: &result,
	}
	return errors.WithStack(ctx.Status(fiber.StatusOK).JSON(resp))
}
