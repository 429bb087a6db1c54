package handler

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"artmarket/internal/service"
)

// AnnounceProduct posts a listing to the configured networks. When at least
// one post was attempted the recorded posts are returned, failed ones included.
func AnnounceProduct(svc service.SocialService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := pathID(c, "id")
		if err != nil {
			return fail(c, err)
		}
		posts, err := svc.Announce(c.UserContext(), id)
		if err != nil && len(posts) == 0 {
			return fail(c, err)
		}
		if err != nil {
			zap.L().Warn("announce_partial",
				zap.String("request_id", requestIDFromCtx(c)),
				zap.String("product_id", id),
				zap.Error(err),
			)
		}
		return c.JSON(fiber.Map{"data": posts})
	}
}

func SocialHistory(svc service.SocialService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := pathID(c, "id")
		if err != nil {
			return fail(c, err)
		}
		posts, err := svc.History(c.UserContext(), id)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(fiber.Map{"data": posts})
	}
}
