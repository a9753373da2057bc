package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"iheadshot-backend/internal/models"
	"iheadshot-backend/internal/services"
)

type TrainHandler struct {
	pipeline *services.Pipeline
}

func NewTrainHandler(pipeline *services.Pipeline) *TrainHandler {
	return &TrainHandler{
		pipeline: pipeline,
	}
}

// StartTraining godoc
// @Summary     Start face model training
// @Description Submits the order's uploaded selfies for model training. The order must be paid and have at least one upload; anything else is rejected without creating a job.
// @Tags        orders
// @Accept      json
// @Produce     json
// @Param       order_id path string true "Order ID"
// @Success     200 {object} models.TrainResponse
// @Failure     400 {object} models.ErrorResponse
// @Failure     404 {object} models.ErrorResponse
// @Failure     409 {object} models.ErrorResponse
// @Failure     502 {object} models.ErrorResponse
// @Router      /orders/{order_id}/train [post]
func (h *TrainHandler) StartTraining(c *gin.Context) {
	orderID, err := uuid.Parse(c.Param("order_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid order id",
			Message: err.Error(),
		})
		return
	}

	job, err := h.pipeline.StartTraining(orderID)
	switch {
	case errors.Is(err, services.ErrNotFound):
		c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "order not found"})
		return
	case errors.Is(err, services.ErrNoUploads):
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "no uploads",
			Message: "upload at least one selfie before starting training",
		})
		return
	case errors.Is(err, services.ErrInvalidState):
		c.JSON(http.StatusConflict, models.ErrorResponse{
			Error:   "order not ready for training",
			Message: "training can only start once, on a paid order",
		})
		return
	case err != nil:
		c.JSON(http.StatusBadGateway, models.ErrorResponse{
			Error:   "failed to start training",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, models.TrainResponse{
		OrderID:       orderID.String(),
		TrainingJobID: job.ID.String(),
		Status:        "training",
	})
}
