package httphandler

import (
	"github.com/cockroachdb/errors"
	"github.com/gofiber/fiber/v2"

	"github.com/auditforge/paygate/common"
	"github.com/auditforge/paygate/modules/payment/payment"
)

type treasuryTokenDto struct {
	Symbol   string `json:"symbol"`
	Decimals int    `json:"decimals"`
}

type treasuryNetworkDto struct {
	ChainID      uint64 `json:"chainId"`
	Name         string `json:"name"`
	TokenAddress string `json:"tokenAddress"`
}

type getTreasuryResult struct {
	TreasuryAddress string               `json:"treasuryAddress"`
	Token           treasuryTokenDto     `json:"token"`
	Networks        []treasuryNetworkDto `json:"networks"`
}

type getTreasuryResponse = common.HttpResponse[getTreasuryResult]

// GetTreasury returns everything a client wallet needs to construct the
// payment transfer: where to send, which token, on which networks.
func (h *HttpHandler) GetTreasury(ctx *fiber.Ctx) (err error) {
	chains := h.usecase.Networks()
	result := getTreasuryResult{
		TreasuryAddress: h.usecase.Treasury().String(),
		Token: treasuryTokenDto{
			Symbol:   payment.StablecoinSymbol,
			Decimals: payment.StablecoinDecimals,
		},
		Networks: make([]treasuryNetworkDto, 0, len(chains)),
	}
	for _, chain := range chains {
		result.Networks = append(result.Networks, treasuryNetworkDto{
			ChainID:      chain.ChainID,
			Name:         chain.Name,
			TokenAddress: chain.StablecoinAddress.String(),
		})
	}

	resp := getTreasuryResponse{
		Result: &result,
	}
	return errors.WithStack(ctx.Status(fiber.StatusOK).JSON(resp))
}
