package handler

import (
	"context"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"artmarket/internal/model"
	"artmarket/internal/service"
)

// ListProducts lists listings with optional seller_id, status, sale_type and q filters.
//
// @Summary  List products
// @Tags     products
// @Produce  json
// @Param    limit     query int    false "Page size"
// @Param    offset    query int    false "Offset"
// @Param    seller_id query string false "Seller"
// @Param    status    query string false "Listing status"
// @Param    sale_type query string false "fixed or auction"
// @Param    q         query string false "Text search"
// @Success  200 {object} service.ListResult[model.Product]
// @Failure  400 {object} errorPayload
// @Router   /api/v1/products [get]
func ListProducts(svc service.ProductService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		limit, offset, err := pageParams(c)
		if err != nil {
			return fail(c, err)
		}
		f := model.ProductFilter{
			SellerID: c.Query("seller_id"),
			Status:   model.ProductStatus(c.Query("status")),
			SaleType: model.SaleType(c.Query("sale_type")),
			Query:    c.Query("q"),
		}
		res, err := svc.List(c.UserContext(), actorFrom(c), f, limit, offset)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(res)
	}
}

// GetProduct returns one listing.
//
// @Summary  Get a product
// @Tags     products
// @Produce  json
// @Param    id path string true "Product ID"
// @Success  200 {object} model.Product
// @Failure  404 {object} errorPayload
// @Router   /api/v1/products/{id} [get]
func GetProduct(svc service.ProductService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := pathID(c, "id")
		if err != nil {
			return fail(c, err)
		}
		p, err := svc.Get(c.UserContext(), actorFrom(c), id)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(p)
	}
}

func CreateProduct(svc service.ProductService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var in service.ProductInput
		if err := bindJSON(c, &in); err != nil {
			return fail(c, err)
		}
		p, err := svc.Create(c.UserContext(), actorFrom(c), in)
		if err != nil {
			return fail(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(p)
	}
}

func UpdateProduct(svc service.ProductService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := pathID(c, "id")
		if err != nil {
			return fail(c, err)
		}
		var in service.ProductInput
		if err := bindJSON(c, &in); err != nil {
			return fail(c, err)
		}
		p, err := svc.Update(c.UserContext(), actorFrom(c), id, in)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(p)
	}
}

func PublishProduct(svc service.ProductService) fiber.Handler {
	return productAction(svc.Publish)
}

func ArchiveProduct(svc service.ProductService) fiber.Handler {
	return productAction(svc.Archive)
}

type productActionFunc func(ctx context.Context, actor service.Actor, id string) (*model.Product, error)

func productAction(action productActionFunc) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := pathID(c, "id")
		if err != nil {
			return fail(c, err)
		}
		p, err := action(c.UserContext(), actorFrom(c), id)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(p)
	}
}

// UploadProductImage appends an image (multipart/form-data, field name: file).
func UploadProductImage(svc service.ProductService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := pathID(c, "id")
		if err != nil {
			return fail(c, err)
		}
		img, f, err := formImage(c, "file")
		if err != nil {
			return fail(c, err)
		}
		defer f.Close()

		p, err := svc.UploadImage(c.UserContext(), actorFrom(c), id, img)
		if err != nil {
			return fail(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(p)
	}
}

func DeleteProductImage(svc service.ProductService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := pathID(c, "id")
		if err != nil {
			return fail(c, err)
		}
		index, err := strconv.Atoi(c.Params("index"))
		if err != nil || index < 0 {
			return fail(c, badRequest("INVALID_INDEX", "invalid image index"))
		}
		p, err := svc.DeleteImage(c.UserContext(), actorFrom(c), id, index)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(p)
	}
}
