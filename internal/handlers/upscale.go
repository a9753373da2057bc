package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"iheadshot-backend/internal/models"
	"iheadshot-backend/internal/services"
)

type UpscaleHandler struct {
	pipeline *services.Pipeline
}

func NewUpscaleHandler(pipeline *services.Pipeline) *UpscaleHandler {
	return &UpscaleHandler{
		pipeline: pipeline,
	}
}

// UpscaleImages godoc
// @Summary     Upscale selected headshots
// @Description Runs the requested headshots through the upscaler. Images that fail are reported individually; the rest still succeed.
// @Tags        orders
// @Accept      json
// @Produce     json
// @Param       order_id path string true "Order ID"
// @Param       request body models.UpscaleRequest true "Image URLs and scale factor"
// @Success     200 {object} models.UpscaleResponse
// @Failure     400 {object} models.ErrorResponse
// @Failure     404 {object} models.ErrorResponse
// @Failure     502 {object} models.ErrorResponse
// @Router      /orders/{order_id}/upscale [post]
func (h *UpscaleHandler) UpscaleImages(c *gin.Context) {
	orderID, err := uuid.Parse(c.Param("order_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid order id",
			Message: err.Error(),
		})
		return
	}

	var req models.UpscaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid request body",
			Message: err.Error(),
		})
		return
	}

	if len(req.ImageURLs) == 0 {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "no images selected",
			Message: "provide at least one image URL to upscale",
		})
		return
	}

	if req.Scale != 0 && req.Scale != 2 && req.Scale != 4 {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid scale",
			Message: "scale must be 2 or 4",
		})
		return
	}

	upscaled, failures, err := h.pipeline.UpscaleBatch(orderID, req.ImageURLs, req.Scale)
	if errors.Is(err, services.ErrNotFound) {
		c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "order not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "failed to upscale images",
			Message: err.Error(),
		})
		return
	}

	if len(upscaled) == 0 {
		c.JSON(http.StatusBadGateway, models.ErrorResponse{
			Error:   "all upscales failed",
			Message: "no image could be upscaled; try again later",
		})
		return
	}

	upscales := make([]models.UpscaledImageInfo, 0, len(upscaled))
	for _, img := range upscaled {
		upscales = append(upscales, models.UpscaledImageInfo{
			ID:          img.ID.String(),
			OriginalURL: img.OriginalURL,
			UpscaledURL: img.UpscaledURL,
			Scale:       img.Scale,
			Width:       img.Width,
			Height:      img.Height,
			CreatedAt:   img.CreatedAt,
		})
	}

	c.JSON(http.StatusOK, models.UpscaleResponse{
		OrderID:  orderID.String(),
		Upscales: upscales,
		Errors:   failures,
	})
}
