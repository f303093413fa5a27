package signup

import (
	"github.com/gin-gonic/gin"
)

func Routes(r gin.IRouter, authenticator gin.HandlerFunc, handler Handler) {
	router := r.Group("")
	router.Use(authenticator)
	router.POST("/events/:id/signup", handler.SignUp)
	router.PUT("/events/:id/signup", handler.Update)
	router.DELETE("/events/:id/signup", handler.Leave)
	router.GET("/me/signups", handler.FindMine)
}
