package adminapi

import (
	"errors"
	"fmt"
	"html"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/stylehub/stylehub/internal/webserver"
	"github.com/stylehub/stylehub/pkg/common"
	"gorm.io/gorm"
)

// Response is the JSON envelope of every API reply
type Response struct {
	Code  string      `json:"code"`
	Msg   string      `json:"msg"`
	Data  interface{} `json:"data,omitempty"`
	Error interface{} `json:"error,omitempty"`
}

func ok(c echo.Context, data interface{}) error {
	return c.JSON(http.StatusOK, Response{Code: "SUCCESS", Msg: "ok", Data: data})
}

func fail(c echo.Context, status int, code, msg string, detail interface{}) error {
	return c.JSON(status, Response{Code: code, Msg: msg, Error: detail})
}

// storageDetail exposes raw storage errors only in web debug mode
func storageDetail(c echo.Context, err error) interface{} {
	if err != nil && webserver.GetAppContext(c).Config().Web.Debug {
		return err.Error()
	}
	return nil
}

// GetDB returns the request scoped database handle
func GetDB(c echo.Context) *gorm.DB {
	return webserver.GetAppContext(c).DB().WithContext(c.Request().Context())
}

func parseIDParam(c echo.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(c.Param(name)), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid %s", name)
	}
	return id, nil
}

// handleValidationError maps the first validator failure to a field coded error
func handleValidationError(c echo.Context, err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request parameters", nil)
	}
	fe := verrs[0]
	field := fe.Field()
	label := common.Ucfirst(field)
	code := strings.ToUpper(field)
	switch fe.Tag() {
	case "required":
		return fail(c, http.StatusBadRequest, "MISSING_"+code, label+" is required", nil)
	case "email":
		return fail(c, http.StatusBadRequest, "INVALID_"+code, "Invalid email format", nil)
	case "min":
		return fail(c, http.StatusBadRequest, "INVALID_"+code,
			fmt.Sprintf("%s must be at least %s characters long", label, fe.Param()), nil)
	case "max":
		return fail(c, http.StatusBadRequest, "INVALID_"+code,
			fmt.Sprintf("%s must be at most %s characters long", label, fe.Param()), nil)
	default:
		return fail(c, http.StatusBadRequest, "INVALID_"+code, label+" is invalid", nil)
	}
}

func sanitizeInput(v string) string {
	return html.EscapeString(strings.TrimSpace(v))
}
