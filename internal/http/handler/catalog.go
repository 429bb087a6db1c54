package handler

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"artmarket/internal/service"
)

type rateRequest struct {
	Rate float64 `json:"rate"`
}

func ListRates(svc service.CatalogService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		rates, err := svc.ListRates(c.UserContext())
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(fiber.Map{"data": rates})
	}
}

// UpsertRate sets units of :currency per one unit of the base currency.
func UpsertRate(svc service.CatalogService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req rateRequest
		if err := bindJSON(c, &req); err != nil {
			return fail(c, err)
		}
		r, err := svc.UpsertRate(c.UserContext(), actorFrom(c), c.Params("currency"), req.Rate)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(r)
	}
}

func DeleteRate(svc service.CatalogService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := svc.DeleteRate(c.UserContext(), actorFrom(c), c.Params("currency")); err != nil {
			return fail(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

func PublicSettings(svc service.CatalogService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		s, err := svc.PublicSettings(c.UserContext())
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(s)
	}
}

func GetSettings(svc service.CatalogService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		s, err := svc.Settings(c.UserContext())
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(s)
	}
}

func UpdateSettings(svc service.CatalogService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var in service.SettingsInput
		if err := bindJSON(c, &in); err != nil {
			return fail(c, err)
		}
		s, err := svc.UpdateSettings(c.UserContext(), actorFrom(c), in)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(s)
	}
}

// ListShipping serves the enabled destinations publicly and every row to admins.
func ListShipping(svc service.CatalogService, enabledOnly bool) fiber.Handler {
	return func(c *fiber.Ctx) error {
		countries, err := svc.ListShipping(c.UserContext(), enabledOnly)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(fiber.Map{"data": countries})
	}
}

func UpsertShipping(svc service.CatalogService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var in service.ShippingInput
		if err := bindJSON(c, &in); err != nil {
			return fail(c, err)
		}
		in.Code = c.Params("code")
		sc, err := svc.UpsertShipping(c.UserContext(), actorFrom(c), in)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(sc)
	}
}

func DeleteShipping(svc service.CatalogService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := svc.DeleteShipping(c.UserContext(), actorFrom(c), c.Params("code")); err != nil {
			return fail(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// ListBanners serves active banners publicly and every banner to admins.
func ListBanners(svc service.CatalogService, activeOnly bool) fiber.Handler {
	return func(c *fiber.Ctx) error {
		banners, err := svc.ListBanners(c.UserContext(), activeOnly)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(fiber.Map{"data": banners})
	}
}

// bannerForm reads the banner fields sent alongside the image in a multipart form.
func bannerForm(c *fiber.Ctx) (service.BannerInput, error) {
	in := service.BannerInput{
		Title:   strings.TrimSpace(c.FormValue("title")),
		LinkURL: strings.TrimSpace(c.FormValue("link_url")),
	}
	if v := c.FormValue("position"); v != "" {
		pos, err := strconv.Atoi(v)
		if err != nil {
			return in, badRequest("INVALID_POSITION", "invalid position")
		}
		in.Position = pos
	}
	if v := c.FormValue("active"); v != "" {
		active, err := strconv.ParseBool(v)
		if err != nil {
			return in, badRequest("INVALID_ACTIVE", "invalid active flag")
		}
		in.Active = active
	}
	return in, nil
}

// CreateBanner takes multipart/form-data with title, link_url, position,
// active and the image under field name: file.
func CreateBanner(svc service.CatalogService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		in, err := bannerForm(c)
		if err != nil {
			return fail(c, err)
		}
		img, f, err := formImage(c, "file")
		if err != nil {
			return fail(c, err)
		}
		defer f.Close()

		b, err := svc.CreateBanner(c.UserContext(), actorFrom(c), in, img)
		if err != nil {
			return fail(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(b)
	}
}

// UpdateBanner takes the same form as CreateBanner; the file is optional.
func UpdateBanner(svc service.CatalogService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := pathID(c, "id")
		if err != nil {
			return fail(c, err)
		}
		in, err := bannerForm(c)
		if err != nil {
			return fail(c, err)
		}
		var img *service.ImageUpload
		if hasFormFile(c, "file") {
			up, f, err := formImage(c, "file")
			if err != nil {
				return fail(c, err)
			}
			defer f.Close()
			img = &up
		}
		b, err := svc.UpdateBanner(c.UserContext(), actorFrom(c), id, in, img)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(b)
	}
}

func DeleteBanner(svc service.CatalogService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := pathID(c, "id")
		if err != nil {
			return fail(c, err)
		}
		if err := svc.DeleteBanner(c.UserContext(), actorFrom(c), id); err != nil {
			return fail(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}
