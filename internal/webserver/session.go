package webserver

import (
	"net/http"

	"github.com/gorilla/sessions"
	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"
	"github.com/spf13/cast"
	"github.com/stylehub/stylehub/internal/domain"
)

const (
	SessionName = "stylehub_session"

	sessionUserID   = "user_id"
	sessionUserRole = "user_role"

	// SignInPage is where the page gate sends anonymous visitors
	SignInPage = "/sign-in.html"
)

// Principal is the identity held by the current session
type Principal struct {
	UserID int64
	Role   string
}

func (p Principal) Authenticated() bool {
	return p.UserID != 0
}

func (p Principal) IsAdmin() bool {
	return p.Authenticated() && p.Role == domain.RoleAdmin
}

// CurrentPrincipal reads the session claims. Errors yield the anonymous principal.
func CurrentPrincipal(c echo.Context) Principal {
	sess, err := session.Get(SessionName, c)
	if err != nil {
		return Principal{}
	}
	return Principal{
		UserID: cast.ToInt64(sess.Values[sessionUserID]),
		Role:   cast.ToString(sess.Values[sessionUserRole]),
	}
}

// Establish stores the user's claims in a fresh session
func Establish(c echo.Context, user domain.SysUser) error {
	sess, err := session.Get(SessionName, c)
	if err != nil {
		return err
	}
	// rotate the id on privilege change
	if !sess.IsNew && sess.ID != "" {
		old := *sess.Options
		sess.Options.MaxAge = -1
		if err := sess.Save(c.Request(), c.Response()); err != nil {
			return err
		}
		sess.Options = &old
		sess.ID = ""
	}
	sess.Values = map[interface{}]interface{}{
		sessionUserID:   user.ID,
		sessionUserRole: user.Role,
	}
	return sess.Save(c.Request(), c.Response())
}

// Destroy drops every session value and expires the cookie
func Destroy(c echo.Context) error {
	sess, err := session.Get(SessionName, c)
	if err != nil {
		return err
	}
	sess.Values = make(map[interface{}]interface{})
	sess.Options = &sessions.Options{Path: "/", MaxAge: -1, HttpOnly: true}
	return sess.Save(c.Request(), c.Response())
}

// RequireAdmin rejects API calls whose session lacks the admin role claim
func RequireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		p := CurrentPrincipal(c)
		if !p.Authenticated() {
			return c.JSON(http.StatusUnauthorized, map[string]interface{}{
				"code": "UNAUTHORIZED",
				"msg":  "Authentication required",
			})
		}
		if !p.IsAdmin() {
			return c.JSON(http.StatusForbidden, map[string]interface{}{
				"code": "FORBIDDEN",
				"msg":  "Admin role required",
			})
		}
		return next(c)
	}
}

// AdminPageGate redirects page loads without the admin role to sign in
func AdminPageGate(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if !CurrentPrincipal(c).IsAdmin() {
			return c.Redirect(http.StatusFound, SignInPage)
		}
		return next(c)
	}
}
