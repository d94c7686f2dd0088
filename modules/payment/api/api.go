package api

import (
	"github.com/auditforge/paygate/modules/payment/api/httphandler"
	"github.com/auditforge/paygate/modules/payment/usecase"
)

func NewHTTPHandler(usecase *usecase.Usecase) *httphandler.HttpHandler {
	return httphandler.New(usecase)
}
