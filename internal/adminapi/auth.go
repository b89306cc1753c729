package adminapi

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/cast"
	"github.com/stylehub/stylehub/internal/domain"
	"github.com/stylehub/stylehub/internal/webserver"
	"github.com/stylehub/stylehub/pkg/common"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type registerRequest struct {
	FirstName string `json:"firstName" validate:"required,max=100"`
	LastName  string `json:"lastName" validate:"required,max=100"`
	Email     string `json:"email" validate:"required,email,max=255"`
	Password  string `json:"password" validate:"required,min=8"`
}

// userView is the account shape returned to clients
type userView struct {
	ID        int64  `json:"id,string"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Role      string `json:"role"`
}

func toUserView(u domain.SysUser) userView {
	return userView{ID: u.ID, FirstName: u.FirstName, LastName: u.LastName, Email: u.Email, Role: u.Role}
}

var authActions = map[string]func(c echo.Context, fields map[string]interface{}) error{
	"login": func(c echo.Context, fields map[string]interface{}) error {
		var req loginRequest
		if err := decodeFields(fields, &req); err != nil {
			return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request parameters", nil)
		}
		return doLogin(c, req)
	},
	"register": func(c echo.Context, fields map[string]interface{}) error {
		var req registerRequest
		if err := decodeFields(fields, &req); err != nil {
			return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request parameters", nil)
		}
		return doRegister(c, req)
	},
	"logout": func(c echo.Context, _ map[string]interface{}) error {
		return doLogout(c)
	},
}

func registerAuthRoutes() {
	webserver.ApiPOST("/auth", authDispatch)
	webserver.ApiPOST("/auth/login", login)
	webserver.ApiPOST("/auth/register", register)
	webserver.ApiPOST("/auth/logout", logout)
	webserver.ApiGET("/auth/me", currentUser)
}

func decodeFields(fields map[string]interface{}, out interface{}) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "json",
		WeaklyTypedInput: true,
		Result:           out,
	})
	if err != nil {
		return err
	}
	return dec.Decode(fields)
}

// authDispatch serves the single action-keyed auth endpoint
func authDispatch(c echo.Context) error {
	fields := make(map[string]interface{})
	if err := c.Bind(&fields); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse request", nil)
	}
	action := strings.ToLower(strings.TrimSpace(cast.ToString(fields["action"])))
	if action == "" {
		return fail(c, http.StatusBadRequest, "MISSING_ACTION", "Action is required", nil)
	}
	handler, exists := authActions[action]
	if !exists {
		return fail(c, http.StatusBadRequest, "INVALID_ACTION", "Invalid action", nil)
	}
	delete(fields, "action")
	return handler(c, fields)
}

func login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse request", nil)
	}
	return doLogin(c, req)
}

func doLogin(c echo.Context, req loginRequest) error {
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if err := c.Validate(&req); err != nil {
		return handleValidationError(c, err)
	}

	var user domain.SysUser
	err := GetDB(c).Where("email = ? AND status = ?", req.Email, domain.UserStatusActive).First(&user).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query user", storageDetail(c, err))
	}
	// unknown, disabled and wrong password look the same to the caller
	if err != nil || !common.CheckPassword(req.Password, user.Password) {
		return fail(c, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid email or password", nil)
	}

	now := time.Now()
	if err := GetDB(c).Model(&domain.SysUser{}).Where("id = ?", user.ID).Update("last_login", now).Error; err != nil {
		zap.S().Errorf("stamp last login for %d: %s", user.ID, err)
	}
	if err := webserver.Establish(c, user); err != nil {
		return fail(c, http.StatusInternalServerError, "SESSION_ERROR", "Failed to establish session", storageDetail(c, err))
	}
	zap.S().Infof("user %s signed in as %s", user.Email, user.Role)
	return ok(c, map[string]interface{}{
		"success": true,
		"user":    toUserView(user),
	})
}

func register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse request", nil)
	}
	return doRegister(c, req)
}

func doRegister(c echo.Context, req registerRequest) error {
	req.FirstName = strings.TrimSpace(req.FirstName)
	req.LastName = strings.TrimSpace(req.LastName)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if err := c.Validate(&req); err != nil {
		return handleValidationError(c, err)
	}

	var count int64
	if err := GetDB(c).Model(&domain.SysUser{}).Where("email = ?", req.Email).Count(&count).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query user", storageDetail(c, err))
	}
	if count > 0 {
		return fail(c, http.StatusConflict, "EMAIL_EXISTS", "Email already exists", nil)
	}

	hash, err := common.HashPassword(req.Password)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "HASH_ERROR", "Failed to secure password", nil)
	}
	user := domain.SysUser{
		ID:        common.UUIDint64(),
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Password:  hash,
		Role:      domain.RoleCustomer,
		Status:    domain.UserStatusActive,
	}
	if err := GetDB(c).Create(&user).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to create user", storageDetail(c, err))
	}
	return ok(c, map[string]interface{}{
		"success": true,
		"message": "Registration successful",
		"user":    toUserView(user),
	})
}

func logout(c echo.Context) error {
	return doLogout(c)
}

func doLogout(c echo.Context) error {
	if err := webserver.Destroy(c); err != nil {
		zap.S().Errorf("destroy session: %s", err)
	}
	return ok(c, map[string]interface{}{
		"success": true,
		"message": "Logged out successfully",
	})
}

// currentUser reports the signed in account, or 401 for anonymous sessions
func currentUser(c echo.Context) error {
	p := webserver.CurrentPrincipal(c)
	if !p.Authenticated() {
		return fail(c, http.StatusUnauthorized, "UNAUTHORIZED", "Not signed in", nil)
	}
	var user domain.SysUser
	if err := GetDB(c).Where("id = ? AND status = ?", p.UserID, domain.UserStatusActive).First(&user).Error; err != nil {
		return fail(c, http.StatusUnauthorized, "UNAUTHORIZED", "Not signed in", nil)
	}
	return ok(c, toUserView(user))
}
