package adminapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/talkincode/storefront/internal/auth"
	"github.com/talkincode/storefront/internal/domain"
	"github.com/talkincode/storefront/internal/webserver"
)

type loginPayload struct {
	Username string `json:"username" form:"username" validate:"max=64"`
	Password string `json:"password" form:"password" validate:"max=72"`
}

type registerPayload struct {
	Username string `json:"username" form:"username" validate:"max=64"`
	Email    string `json:"email" form:"email" validate:"omitempty,max=255"`
	Password string `json:"password" form:"password" validate:"max=72"`
}

// registerAuthRoutes registers admin login and registration. Registration
// needs an admin token unless open registration is configured.
func (a *AdminAPI) registerAuthRoutes(s *webserver.AdminServer) {
	s.POST("/admin/login", a.login)
	if a.cfg.Admin.OpenRegistration {
		s.POST("/admin/register", a.register)
	} else {
		s.AuthPOST("/admin/register", a.register)
	}
}

func (a *AdminAPI) login(c echo.Context) error {
	var payload loginPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse login parameters", err)
	}
	if err := c.Validate(&payload); err != nil {
		return handleValidationError(c, err)
	}

	token, err := a.auth.Login(c.Request().Context(), payload.Username, payload.Password)
	if err != nil {
		switch domain.KindOf(err) {
		case domain.KindValidation, domain.KindAuth:
			return fail(c, http.StatusBadRequest, "LOGIN_FAILED", domain.MessageOf(err, "Login failed"), err)
		default:
			return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Login failed", err)
		}
	}
	return ok(c, map[string]interface{}{"token": token})
}

func (a *AdminAPI) register(c echo.Context) error {
	var payload registerPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse admin parameters", err)
	}
	if err := c.Validate(&payload); err != nil {
		return handleValidationError(c, err)
	}

	admin, err := a.auth.Register(c.Request().Context(), auth.RegisterInput{
		Username: payload.Username,
		Email:    payload.Email,
		Password: payload.Password,
	})
	if err != nil {
		if domain.KindOf(err) == domain.KindValidation {
			return fail(c, http.StatusBadRequest, "INVALID_REQUEST", domain.MessageOf(err, "Invalid admin parameters"), err)
		}
		return fail(c, http.StatusBadRequest, "REGISTER_FAILED", "Unable to register admin", err)
	}
	return ok(c, map[string]interface{}{"admin": admin})
}
