package handler

import (
	"github.com/gofiber/fiber/v2"

	"artmarket/internal/service"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Signup registers a buyer or seller account.
//
// @Summary  Register an account
// @Tags     auth
// @Accept   json
// @Produce  json
// @Param    body body service.SignupInput true "Account"
// @Success  201 {object} model.User
// @Failure  400 {object} errorPayload
// @Failure  409 {object} errorPayload
// @Router   /api/v1/auth/signup [post]
func Signup(svc service.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var in service.SignupInput
		if err := bindJSON(c, &in); err != nil {
			return fail(c, err)
		}
		u, err := svc.Signup(c.UserContext(), in)
		if err != nil {
			return fail(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(u)
	}
}

// Login exchanges credentials for a bearer token.
//
// @Summary  Log in
// @Tags     auth
// @Accept   json
// @Produce  json
// @Param    body body loginRequest true "Credentials"
// @Success  200 {object} service.AuthResult
// @Failure  401 {object} errorPayload
// @Router   /api/v1/auth/login [post]
func Login(svc service.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req loginRequest
		if err := bindJSON(c, &req); err != nil {
			return fail(c, err)
		}
		res, err := svc.Login(c.UserContext(), req.Email, req.Password)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(res)
	}
}
