package handler

import (
	"github.com/gofiber/fiber/v2"

	"artmarket/internal/http/middleware"
	"artmarket/internal/model"
	"artmarket/internal/service"
)

type statusRequest struct {
	Status model.OrderStatus `json:"status"`
}

// Checkout places an order. A referral_code in the body wins over the
// code remembered in the referral cookie.
//
// @Summary  Checkout
// @Tags     orders
// @Accept   json
// @Produce  json
// @Param    body body service.CheckoutInput true "Order"
// @Success  201 {object} model.Order
// @Failure  400 {object} errorPayload
// @Failure  409 {object} errorPayload
// @Security BearerAuth
// @Router   /api/v1/orders [post]
func Checkout(svc service.OrderService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var in service.CheckoutInput
		if err := bindJSON(c, &in); err != nil {
			return fail(c, err)
		}
		in.ReferralCookie = c.Cookies(middleware.ReferralCookieName)
		o, err := svc.Checkout(c.UserContext(), actorFrom(c), in)
		if err != nil {
			return fail(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(o)
	}
}

func ListMyOrders(svc service.OrderService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		limit, offset, err := pageParams(c)
		if err != nil {
			return fail(c, err)
		}
		res, err := svc.ListMine(c.UserContext(), actorFrom(c), limit, offset)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(res)
	}
}

func ListSellerOrders(svc service.OrderService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		limit, offset, err := pageParams(c)
		if err != nil {
			return fail(c, err)
		}
		res, err := svc.ListForSeller(c.UserContext(), actorFrom(c), limit, offset)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(res)
	}
}

func GetOrder(svc service.OrderService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := pathID(c, "id")
		if err != nil {
			return fail(c, err)
		}
		o, err := svc.Get(c.UserContext(), actorFrom(c), id)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(o)
	}
}

func UpdateOrderStatus(svc service.OrderService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := pathID(c, "id")
		if err != nil {
			return fail(c, err)
		}
		var req statusRequest
		if err := bindJSON(c, &req); err != nil {
			return fail(c, err)
		}
		if req.Status == "" {
			return fail(c, badRequest("INVALID_STATUS", "status is required"))
		}
		o, err := svc.UpdateStatus(c.UserContext(), actorFrom(c), id, req.Status)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(o)
	}
}
