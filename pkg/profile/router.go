package profile

import (
	"github.com/asianpilots/volunteer-manager/internal/middleware"
	"github.com/gin-gonic/gin"
)

func Routes(r gin.IRouter, authenticator gin.HandlerFunc, sso middleware.SSOMiddleware, handler Handler) {
	r.GET("/auth/:provider", sso.BeginAuthHandler)
	r.GET("/auth/:provider/callback", sso.SSOAuthentication)
	r.POST("/auth/signout", sso.LogoutHandler)

	tokenAuthenticationRouter := r.Group("")
	tokenAuthenticationRouter.Use(authenticator)
	tokenAuthenticationRouter.GET("/me", handler.Me)
	tokenAuthenticationRouter.POST("/onboarding", handler.Onboarding)
}
