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

type StatusHandler struct {
	store services.Store
}

func NewStatusHandler(store services.Store) *StatusHandler {
	return &StatusHandler{
		store: store,
	}
}

// GetStatus godoc
// @Summary     Poll order status
// @Description Returns the order's lifecycle status with a coarse progress percentage suitable for a progress bar.
// @Tags        orders
// @Accept      json
// @Produce     json
// @Param       order_id path string true "Order ID"
// @Success     200 {object} models.StatusResponse
// @Failure     400 {object} models.ErrorResponse
// @Failure     404 {object} models.ErrorResponse
// @Router      /orders/{order_id}/status [get]
func (h *StatusHandler) GetStatus(c *gin.Context) {
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

	images, err := h.store.CountGeneratedImages(orderID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "failed to count images",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, models.StatusResponse{
		OrderID:   order.ID.String(),
		Status:    string(order.Status),
		Progress:  orders.Progress(order.Status, images, order.HeadshotCount),
		Message:   orders.Message(order.Status),
		Images:    images,
		Target:    order.HeadshotCount,
		UpdatedAt: order.UpdatedAt,
	})
}
