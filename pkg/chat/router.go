package chat

import (
	"github.com/gin-gonic/gin"
)

func Routes(r gin.IRouter, authenticator gin.HandlerFunc, administrator gin.HandlerFunc, handler Handler) {
	r.POST("/chat", authenticator, handler.Ask)

	adminRouter := r.Group("/admin/chat-log")
	adminRouter.Use(authenticator, administrator)
	adminRouter.GET("", handler.Logs)
	adminRouter.GET("/export", handler.Export)
}
