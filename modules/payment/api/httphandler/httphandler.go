package httphandler

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/auditforge/paygate/modules/payment/internal/entity"
	"github.com/auditforge/paygate/modules/payment/payment"
	"github.com/auditforge/paygate/modules/payment/usecase"
)

type HttpHandler struct {
	usecase *usecase.Usecase
}

func New(usecase *usecase.Usecase) *HttpHandler {
	return &HttpHandler{
		usecase: usecase,
	}
}

// validate holds struct-tag validation rules shared by all request types.
var validate = validator.New(validator.WithRequiredStructEnabled())

// statusForOutcome maps a verification outcome to an HTTP status. Pending and
// failed map to 402: in both cases no acceptable payment exists yet and the
// client is expected to pay, or wait, and retry.
func statusForOutcome(outcome payment.VerificationOutcome) int {
	switch outcome.Status {
	case payment.StatusConfirmed:
		return fiber.StatusOK
	case payment.StatusInvalid:
		return fiber.StatusBadRequest
	case payment.StatusPending, payment.StatusFailed:
		return fiber.StatusPaymentRequired
	default:
		return fiber.StatusBadGateway
	}
}

type subscriptionDto struct {
	AccountID         uuid.UUID  `json:"accountId"`
	Tier              string     `json:"tier"`
	ExpiresAt         *time.Time `json:"expiresAt"`
	LastPaymentTxHash *string    `json:"lastPaymentTxHash"`
}

func newSubscriptionDto(sub *entity.Subscription) *subscriptionDto {
	if sub == nil {
		return nil
	}
	return &subscriptionDto{
		AccountID:         sub.AccountID,
		Tier:              sub.Tier.String(),
		ExpiresAt:         sub.ExpiresAt,
		LastPaymentTxHash: sub.LastPaymentTxHash,
	}
}
