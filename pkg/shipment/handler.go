package shipment

import (
	"context"
	"io"
	"net/http"

	"github.com/asianpilots/volunteer-manager/internal/errdef"
	"github.com/asianpilots/volunteer-manager/internal/handler"
	"github.com/asianpilots/volunteer-manager/pkg/model"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

func NewHandler(shipmentService shipmentService) Handler {
	return Handler{shipmentService: shipmentService}
}

type Handler struct {
	shipmentService shipmentService
}

type shipmentService interface {
	Create(ctx context.Context, input Input, senderID uuid.UUID) (*model.Shipment, error)
	Update(ctx context.Context, id uuid.UUID, input Input) (*model.Shipment, error)
	Delete(ctx context.Context, id uuid.UUID) error
	FindById(ctx context.Context, id uuid.UUID) (*model.Shipment, error)
	FindAll(ctx context.Context) ([]View, error)
	Refresh(ctx context.Context, id uuid.UUID) (*model.Shipment, error)
	HandleWebhook(ctx context.Context, body []byte) error
}

const invalidShipment = "Invalid shipment."

// maxWebhookBody bounds the size of a webhook delivery
const maxWebhookBody = 5 << 20

// Create shipment
func (h Handler) Create(c *gin.Context) {
	// swagger:route POST /admin/shipments createShipment
	//
	// Create shipment
	//
	// Create a shipment sent by the signed-in administrator
	//
	// security:
	//	oauth2:
	//
	// responses:
	//	201: Shipment
	//	400: Error
	//	401: Error
	//	403: Error
	//	409: Error
	//	415: Error
	user, err := handler.GetUserFromContext(c)
	if err != nil {
		_ = c.Error(err)
		return
	}

	var input Input
	if err := handler.DataBinder(c, &input, invalidShipment); err != nil {
		_ = c.Error(err)
		return
	}

	shipment, err := h.shipmentService.Create(c.Request.Context(), input, user.ID)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, shipment)
}

// Update shipment
func (h Handler) Update(c *gin.Context) {
	// swagger:route PUT /admin/shipments/{id} updateShipment
	//
	// Update shipment
	//
	// security:
	//	oauth2:
	//
	// responses:
	//	200: Shipment
	//	400: Error
	//	401: Error
	//	403: Error
	//	404: Error
	//	415: Error
	id, ok := handler.GetPathParameter(c, "id")
	if !ok {
		return
	}

	var input Input
	if err := handler.DataBinder(c, &input, invalidShipment); err != nil {
		_ = c.Error(err)
		return
	}

	shipment, err := h.shipmentService.Update(c.Request.Context(), id, input)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, shipment)
}

// Delete shipment
func (h Handler) Delete(c *gin.Context) {
	// swagger:route DELETE /admin/shipments/{id} deleteShipment
	//
	// Delete shipment
	//
	// security:
	//	oauth2:
	//
	// responses:
	//	202:
	//	401: Error
	//	403: Error
	//	404: Error
	id, ok := handler.GetPathParameter(c, "id")
	if !ok {
		return
	}

	if err := h.shipmentService.Delete(c.Request.Context(), id); err != nil {
		_ = c.Error(err)
		return
	}

	c.Status(http.StatusAccepted)
}

// FindById shipment
func (h Handler) FindById(c *gin.Context) {
	// swagger:route GET /admin/shipments/{id} findShipment
	//
	// Find shipment
	//
	// security:
	//	oauth2:
	//
	// responses:
	//	200: Shipment
	//	401: Error
	//	403: Error
	//	404: Error
	id, ok := handler.GetPathParameter(c, "id")
	if !ok {
		return
	}

	shipment, err := h.shipmentService.FindById(c.Request.Context(), id)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, shipment)
}

// FindAll shipments
func (h Handler) FindAll(c *gin.Context) {
	// swagger:route GET /admin/shipments findShipments
	//
	// Find shipments
	//
	// Find all shipments, newest first, with their tracking events
	//
	// security:
	//	oauth2:
	//
	// responses:
	//	200: []ShipmentView
	//	401: Error
	//	403: Error
	shipments, err := h.shipmentService.FindAll(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, shipments)
}

// Refresh shipment
func (h Handler) Refresh(c *gin.Context) {
	// swagger:route POST /admin/shipments/{id}/refresh refreshShipment
	//
	// Refresh shipment
	//
	// Look up the current tracking status. The stored status is kept if the lookup fails.
	//
	// security:
	//	oauth2:
	//
	// responses:
	//	200: Shipment
	//	401: Error
	//	403: Error
	//	404: Error
	//	502: Error
	id, ok := handler.GetPathParameter(c, "id")
	if !ok {
		return
	}

	shipment, err := h.shipmentService.Refresh(c.Request.Context(), id)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, shipment)
}

// Webhook receives tracking updates pushed by Ship24
func (h Handler) Webhook(c *gin.Context) {
	// swagger:route POST /webhooks/ship24 ship24Webhook
	//
	// Ship24 webhook
	//
	// security:
	//	webhook:
	//
	// responses:
	//	200: WebhookResponse
	//	400: Error
	//	401: Error
	//	503: Error
	body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxWebhookBody))
	if err != nil {
		_ = c.Error(errdef.NewBadRequest("Invalid JSON"))
		return
	}

	if err := h.shipmentService.HandleWebhook(c.Request.Context(), body); err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true})
}
