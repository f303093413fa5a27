package shipment

import (
	"github.com/gin-gonic/gin"
)

func Routes(r gin.IRouter, authenticator gin.HandlerFunc, administrator gin.HandlerFunc, webhookSecret gin.HandlerFunc, handler Handler) {
	r.POST("/webhooks/ship24", webhookSecret, handler.Webhook)

	adminRouter := r.Group("/admin/shipments")
	adminRouter.Use(authenticator, administrator)
	adminRouter.POST("", handler.Create)
	adminRouter.GET("", handler.FindAll)
	adminRouter.GET("/:id", handler.FindById)
	adminRouter.PUT("/:id", handler.Update)
	adminRouter.DELETE("/:id", handler.Delete)
	adminRouter.POST("/:id/refresh", handler.Refresh)
}
