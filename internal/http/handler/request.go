package handler

import (
	"mime/multipart"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"artmarket/internal/http/middleware"
	"artmarket/internal/model"
	"artmarket/internal/service"
)

// actorFrom builds the service actor from the locals set by middleware.Auth.
func actorFrom(c *fiber.Ctx) service.Actor {
	uid, _ := c.Locals(middleware.UserIDLocalKey).(string)
	role, _ := c.Locals(middleware.RoleLocalKey).(string)
	return service.Actor{UserID: uid, Role: model.Role(role)}
}

// pageParams reads limit and offset query parameters.
func pageParams(c *fiber.Ctx) (limit, offset int, err error) {
	limit, err = strconv.Atoi(c.Query("limit", "10"))
	if err != nil {
		return 0, 0, badRequest("INVALID_LIMIT", "invalid limit")
	}
	offset, err = strconv.Atoi(c.Query("offset", "0"))
	if err != nil {
		return 0, 0, badRequest("INVALID_OFFSET", "invalid offset")
	}
	return limit, offset, nil
}

// pathID returns the named route parameter after checking it is a UUID.
func pathID(c *fiber.Ctx, name string) (string, error) {
	id := c.Params(name)
	if _, err := uuid.Parse(id); err != nil {
		return "", badRequest("INVALID_ID", "invalid id format")
	}
	return id, nil
}

func bindJSON(c *fiber.Ctx, v any) error {
	if err := c.BodyParser(v); err != nil {
		return badRequest("INVALID_BODY", "malformed request body")
	}
	return nil
}

// formImage opens the uploaded file under field. The caller closes the returned file.
func formImage(c *fiber.Ctx, field string) (service.ImageUpload, multipart.File, error) {
	fh, err := c.FormFile(field)
	if err != nil {
		return service.ImageUpload{}, nil, badRequest("FILE_REQUIRED", field+" is required")
	}
	f, err := fh.Open()
	if err != nil {
		return service.ImageUpload{}, nil, badRequest("FILE_OPEN_ERROR", "cannot open uploaded file")
	}
	ct := fh.Header.Get("Content-Type")
	if ct == "" {
		ct = "application/octet-stream"
	}
	return service.ImageUpload{
		Reader:      f,
		Filename:    fh.Filename,
		ContentType: ct,
		Size:        fh.Size,
	}, f, nil
}

// hasFormFile reports whether the multipart request carries a file under field.
func hasFormFile(c *fiber.Ctx, field string) bool {
	form, err := c.MultipartForm()
	if err != nil {
		return false
	}
	return len(form.File[field]) > 0
}
