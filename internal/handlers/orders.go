package handlers

import (
	"database/sql"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"iheadshot-backend/internal/models"
	"iheadshot-backend/internal/orders"
	"iheadshot-backend/internal/services"
)

// AdminOrdersHandler serves the back-office order views. All routes sit
// behind the admin JWT middleware.
type AdminOrdersHandler struct {
	store services.Store
}

func NewAdminOrdersHandler(store services.Store) *AdminOrdersHandler {
	return &AdminOrdersHandler{
		store: store,
	}
}

// ListOrders godoc
// @Summary     List all orders
// @Description Returns every order, most recent first.
// @Tags        admin
// @Accept      json
// @Produce     json
// @Success     200 {object} models.OrderListResponse
// @Failure     401 {object} models.ErrorResponse
// @Security    BearerAuth
// @Router      /admin/orders [get]
func (h *AdminOrdersHandler) ListOrders(c *gin.Context) {
	all, err := h.store.ListOrders()
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "failed to list orders",
			Message: err.Error(),
		})
		return
	}

	summaries := make([]models.OrderSummary, 0, len(all))
	for _, o := range all {
		summaries = append(summaries, models.OrderSummary{
			ID:            o.ID.String(),
			Email:         o.Email,
			Tier:          o.Tier,
			HeadshotCount: o.HeadshotCount,
			Status:        string(o.Status),
			CreatedAt:     o.CreatedAt,
			UpdatedAt:     o.UpdatedAt,
		})
	}

	c.JSON(http.StatusOK, models.OrderListResponse{Orders: summaries})
}

// GetOrder godoc
// @Summary     Get order detail
// @Description Returns a single order with progress, upload and image counts.
// @Tags        admin
// @Accept      json
// @Produce     json
// @Param       order_id path string true "Order ID"
// @Success     200 {object} models.OrderResponse
// @Failure     400 {object} models.ErrorResponse
// @Failure     401 {object} models.ErrorResponse
// @Failure     404 {object} models.ErrorResponse
// @Security    BearerAuth
// @Router      /admin/orders/{order_id} [get]
func (h *AdminOrdersHandler) GetOrder(c *gin.Context) {
	orderID, err := uuid.Parse(c.Param("order_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid order id",
			Message: err.Error(),
		})
		return
	}

	order, err := h.store.GetOrder(orderID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "order not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "failed to load order",
			Message: err.Error(),
		})
		return
	}

	uploads, err := h.store.CountUploads(orderID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "failed to count uploads",
			Message: err.Error(),
		})
		return
	}

	images, err := h.store.CountGeneratedImages(orderID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "failed to count images",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, models.OrderResponse{
		ID:            order.ID.String(),
		Email:         order.Email,
		Tier:          order.Tier,
		HeadshotCount: order.HeadshotCount,
		AmountCents:   order.AmountCents,
		Status:        string(order.Status),
		Progress:      orders.Progress(order.Status, images, order.HeadshotCount),
		ErrorMessage:  order.ErrorMessage.String,
		Uploads:       uploads,
		Images:        images,
		CreatedAt:     order.CreatedAt,
		UpdatedAt:     order.UpdatedAt,
	})
}
