package handler

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"artmarket/internal/model"
	"artmarket/internal/service"
)

type bidRequest struct {
	AmountCents int64 `json:"amount_cents"`
}

func ListAuctions(svc service.AuctionService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		limit, offset, err := pageParams(c)
		if err != nil {
			return fail(c, err)
		}
		res, err := svc.List(c.UserContext(), model.AuctionStatus(c.Query("status")), limit, offset)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(res)
	}
}

func GetAuction(svc service.AuctionService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := pathID(c, "id")
		if err != nil {
			return fail(c, err)
		}
		a, err := svc.Get(c.UserContext(), id)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(a)
	}
}

// AuctionState is the poll endpoint. Clients pass the bid_count they last saw as since.
//
// @Summary  Poll auction state
// @Tags     auctions
// @Produce  json
// @Param    id    path  string true  "Auction ID"
// @Param    since query int    false "Last seen bid count"
// @Success  200 {object} model.AuctionState
// @Failure  404 {object} errorPayload
// @Router   /api/v1/auctions/{id}/state [get]
func AuctionState(svc service.AuctionService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := pathID(c, "id")
		if err != nil {
			return fail(c, err)
		}
		since, err := strconv.Atoi(c.Query("since", "0"))
		if err != nil {
			return fail(c, badRequest("INVALID_SINCE", "invalid since"))
		}
		st, err := svc.State(c.UserContext(), id, since)
		if err != nil {
			return fail(c, err)
		}
		c.Set(fiber.HeaderCacheControl, "no-store")
		return c.JSON(st)
	}
}

func ListBids(svc service.AuctionService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := pathID(c, "id")
		if err != nil {
			return fail(c, err)
		}
		limit, offset, err := pageParams(c)
		if err != nil {
			return fail(c, err)
		}
		res, err := svc.ListBids(c.UserContext(), id, limit, offset)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(res)
	}
}

func CreateAuction(svc service.AuctionService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var in service.AuctionInput
		if err := bindJSON(c, &in); err != nil {
			return fail(c, err)
		}
		a, err := svc.Create(c.UserContext(), actorFrom(c), in)
		if err != nil {
			return fail(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(a)
	}
}

// PlaceBid submits a bid in base-currency cents.
//
// @Summary  Place a bid
// @Tags     auctions
// @Accept   json
// @Produce  json
// @Param    id   path string     true "Auction ID"
// @Param    body body bidRequest true "Bid"
// @Success  201 {object} service.BidResult
// @Failure  409 {object} errorPayload
// @Failure  422 {object} errorPayload
// @Security BearerAuth
// @Router   /api/v1/auctions/{id}/bids [post]
func PlaceBid(svc service.AuctionService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := pathID(c, "id")
		if err != nil {
			return fail(c, err)
		}
		var req bidRequest
		if err := bindJSON(c, &req); err != nil {
			return fail(c, err)
		}
		res, err := svc.PlaceBid(c.UserContext(), actorFrom(c), id, req.AmountCents)
		if err != nil {
			return fail(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(res)
	}
}

func CancelAuction(svc service.AuctionService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := pathID(c, "id")
		if err != nil {
			return fail(c, err)
		}
		a, err := svc.Cancel(c.UserContext(), actorFrom(c), id)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(a)
	}
}

// CloseExpiredAuctions runs one closer pass on demand. Per-auction failures
// are logged and the summary of the successful part is still returned.
func CloseExpiredAuctions(svc service.AuctionService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sum, err := svc.CloseExpired(c.UserContext())
		if sum == nil {
			return fail(c, err)
		}
		if err != nil {
			zap.L().Warn("close_expired_partial",
				zap.String("request_id", requestIDFromCtx(c)),
				zap.Error(err),
			)
		}
		return c.JSON(sum)
	}
}
