package httpapi

import (
	"errors"

	"github.com/defistate/simpleswap-go/protocols/simpleswap"
	"github.com/gofiber/fiber/v3"
)

var (
	ErrInvalidQueryParameters = fiber.NewError(fiber.StatusBadRequest, "invalid query parameters")
	ErrAmountRequired         = fiber.NewError(fiber.StatusBadRequest, "amount is required")
	ErrInvalidAmountFormat    = fiber.NewError(fiber.StatusBadRequest, "invalid amount format")
	ErrPoolNotFound           = fiber.NewError(fiber.StatusNotFound, "pool not found")
	ErrInternal               = fiber.NewError(fiber.StatusInternalServerError, "internal error")
)

func NewAddressRequired(field string) error {
	return fiber.NewError(fiber.StatusBadRequest, field+" address is required")
}

func NewInvalidAddress(field string) error {
	return fiber.NewError(fiber.StatusBadRequest, "invalid "+field+" address")
}

// engineError responds with the exchange error tag. Unfunded pools are 404,
// every other tag is 400.
func (h *Handler) engineError(err error) error {
	tagged, ok := simpleswap.AsError(err)
	if !ok {
		h.logger.Error("exchange query failed", "err", err)
		return ErrInternal
	}
	switch {
	case errors.Is(tagged, simpleswap.ErrNoLiquidity), errors.Is(tagged, simpleswap.ErrInsufficientLiquidity):
		return fiber.NewError(fiber.StatusNotFound, tagged.Tag)
	default:
		return fiber.NewError(fiber.StatusBadRequest, tagged.Tag)
	}
}
