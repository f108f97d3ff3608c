package httpgin

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kirinyoku/railgo/internal/domain"
	"github.com/kirinyoku/railgo/internal/service"
	"github.com/kirinyoku/railgo/internal/service/prefs"
)

// @Summary  Register and sign in
// @Param    req  body  domain.Registration  true  "payload"
// @Success  201  {object}  auth.Session
// @Failure  409  {object}  ErrorResponse  "email taken"
// @Failure  422  {object}  ValidationErrorResponse
// @Router   /auth/register [post]
func handleRegister(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req domain.Registration
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}

		sess, err := svcs.Auth.Register(c.Request.Context(), req)
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusCreated, sess)
	}
}

// @Summary  Sign in
// @Param    req  body  domain.Credentials  true  "payload"
// @Success  200  {object}  auth.Session
// @Failure  401  {object}  ErrorResponse
// @Failure  429  {object}  ErrorResponse  "rate limited"
// @Router   /auth/login [post]
func handleLogin(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req domain.Credentials
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}

		sess, err := svcs.Auth.Login(c.Request.Context(), req, "ip:"+c.ClientIP())
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, sess)
	}
}

// @Summary  Sign out
// @Success  204
// @Router   /auth/logout [post]
func handleLogout(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			c.Status(http.StatusNoContent)
			return
		}
		if err := svcs.Auth.Logout(c.Request.Context(), token); err != nil {
			respondErr(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

// @Summary  Current user
// @Success  200  {object}  domain.User
// @Failure  401  {object}  ErrorResponse
// @Router   /auth/me [get]
func handleMe(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		u, err := svcs.Auth.Current(c.Request.Context(), bearerToken(c))
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, u)
	}
}

// @Summary  Get preferences
// @Success  200  {object}  domain.Preferences
// @Router   /preferences [get]
func handleGetPreferences(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, err := svcs.Prefs.Get(c.Request.Context(), clientToken(c))
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, p)
	}
}

// @Summary  Update preferences
// @Param    req  body  prefs.Patch  true  "fields to change"
// @Success  200  {object}  domain.Preferences
// @Failure  401  {object}  ErrorResponse  "no client token"
// @Failure  422  {object}  ValidationErrorResponse
// @Router   /preferences [put]
func handleUpdatePreferences(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req prefs.Patch
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}

		p, err := svcs.Prefs.Update(c.Request.Context(), clientToken(c), req)
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, p)
	}
}
