package httphandler

import (
	"github.com/cockroachdb/errors"
	"github.com/gofiber/fiber/v2"

	"github.com/auditforge/paygate/common"
)

type networkDto struct {
	ChainID           uint64 `json:"chainId"`
	Name              string `json:"name"`
	RPCEndpoint       string `json:"rpcUrl"`
	StablecoinAddress string `json:"stablecoinAddress"`
}

type getNetworksResult struct {
	Networks []networkDto `json:"networks"`
}

type getNetworksResponse = common.HttpResponse[getNetworksResult]

func (h *HttpHandler) GetNetworks(ctx *fiber.Ctx) (err error) {
	chains := h.usecase.Networks()
	result := getNetworksResult{
		Networks: make([]networkDto, 0, len(chains)),
	}
	for _, chain := range chains {
		result.Networks = append(result.Networks, networkDto{
			ChainID:           chain.ChainID,
			Name:              chain.Name,
			RPCEndpoint:       chain.RPCEndpoint,
			StablecoinAddress: chain.StablecoinAddress.String(),
		})
	}

	resp := getNetworksResponse{
		Result: &result,
	}
	return errors.WithStack(ctx.Status(fiber.StatusOK).JSON(resp))
}
