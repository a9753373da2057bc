package handlers

import (
	"database/sql"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"iheadshot-backend/internal/models"
	"iheadshot-backend/internal/services"
)

type GalleryHandler struct {
	store services.Store
}

func NewGalleryHandler(store services.Store) *GalleryHandler {
	return &GalleryHandler{
		store: store,
	}
}

// GetGallery godoc
// @Summary     List an order's headshots
// @Description Returns all generated headshots for the order, plus any upscaled versions.
// @Tags        orders
// @Accept      json
// @Produce     json
// @Param       order_id path string true "Order ID"
// @Success     200 {object} models.GalleryResponse
// @Failure     400 {object} models.ErrorResponse
// @Failure     404 {object} models.ErrorResponse
// @Router      /orders/{order_id}/gallery [get]
func (h *GalleryHandler) GetGallery(c *gin.Context) {
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

	generated, err := h.store.ListGeneratedImages(orderID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "failed to list images",
			Message: err.Error(),
		})
		return
	}

	upscaled, err := h.store.ListUpscaledImages(orderID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "failed to list upscales",
			Message: err.Error(),
		})
		return
	}

	images := make([]models.GalleryImage, 0, len(generated))
	for _, img := range generated {
		images = append(images, models.GalleryImage{
			ID:        img.ID.String(),
			ImageURL:  img.ImageURL,
			Style:     img.Style.String,
			Quality:   img.Quality,
			CreatedAt: img.CreatedAt,
		})
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

	c.JSON(http.StatusOK, models.GalleryResponse{
		OrderID:  order.ID.String(),
		Status:   string(order.Status),
		Images:   images,
		Upscales: upscales,
	})
}
