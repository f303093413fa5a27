package event

import (
	"github.com/gin-gonic/gin"
)

func Routes(r gin.IRouter, optionalAuthenticator gin.HandlerFunc, authenticator gin.HandlerFunc, administrator gin.HandlerFunc, handler Handler) {
	r.GET("/events", handler.FindAll)
	r.GET("/events/:id", optionalAuthenticator, handler.FindById)
	r.GET("/events/:id/forecast", handler.Forecast)

	adminRouter := r.Group("/admin/events")
	adminRouter.Use(authenticator, administrator)
	adminRouter.POST("", handler.Create)
	adminRouter.GET("", handler.FindAllAdmin)
	adminRouter.PUT("/:id", handler.Update)
	adminRouter.DELETE("/:id", handler.Delete)
	adminRouter.GET("/:id/signups", handler.Roster)
}
