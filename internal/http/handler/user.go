package handler

import (
	"github.com/gofiber/fiber/v2"

	"artmarket/internal/service"
)

type referralCodeRequest struct {
	Code string `json:"code"`
}

func Me(svc service.UserService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		u, err := svc.Get(c.UserContext(), actorFrom(c).UserID)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(u)
	}
}

func UpdateMe(svc service.UserService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var in service.ProfileInput
		if err := bindJSON(c, &in); err != nil {
			return fail(c, err)
		}
		u, err := svc.UpdateProfile(c.UserContext(), actorFrom(c), in)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(u)
	}
}

// UploadAvatar replaces the caller's avatar (multipart/form-data, field name: file).
func UploadAvatar(svc service.UserService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		img, f, err := formImage(c, "file")
		if err != nil {
			return fail(c, err)
		}
		defer f.Close()

		u, err := svc.UploadAvatar(c.UserContext(), actorFrom(c), img)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(u)
	}
}

// CreateReferralCode assigns the requested code, or a generated one when the body is empty.
func CreateReferralCode(svc service.UserService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req referralCodeRequest
		if len(c.Body()) > 0 {
			if err := bindJSON(c, &req); err != nil {
				return fail(c, err)
			}
		}
		u, err := svc.CreateReferralCode(c.UserContext(), actorFrom(c), req.Code)
		if err != nil {
			return fail(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(u)
	}
}

// SellerProfile is the public page of a seller with their published listings.
func SellerProfile(svc service.UserService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := pathID(c, "id")
		if err != nil {
			return fail(c, err)
		}
		p, err := svc.SellerProfile(c.UserContext(), id)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(p)
	}
}
