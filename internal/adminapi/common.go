package adminapi

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// fail writes an error envelope. err is only logged, never returned to the client.
func fail(c echo.Context, status int, code, message string, err error) error {
	if err != nil {
		fields := []zap.Field{
			zap.String("namespace", "adminapi"),
			zap.String("code", code),
			zap.String("path", c.Request().URL.Path),
			zap.String("request_id", c.Response().Header().Get(echo.HeaderXRequestID)),
			zap.Error(err),
		}
		if status >= http.StatusInternalServerError {
			zap.L().Error(message, fields...)
		} else {
			zap.L().Debug(message, fields...)
		}
	}
	return c.JSON(status, map[string]interface{}{
		"code":    code,
		"message": message,
	})
}

func ok(c echo.Context, body interface{}) error {
	return c.JSON(http.StatusOK, body)
}

func parseIDParam(c echo.Context, name string) (int64, error) {
	return strconv.ParseInt(strings.TrimSpace(c.Param(name)), 10, 64)
}

// handleValidationError reports the first failed field of a validator error.
func handleValidationError(c echo.Context, err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		field := strings.ToLower(fe.Field())
		message := field + " is invalid"
		switch fe.Tag() {
		case "required":
			message = field + " is required"
		case "max":
			message = field + " must be at most " + fe.Param() + " characters"
		}
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", message, err)
	}
	return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request parameters", err)
}
