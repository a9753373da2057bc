package handlers

import (
	"database/sql"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"iheadshot-backend/internal/models"
	"iheadshot-backend/internal/services"
)

type UploadHandler struct {
	store   services.Store
	storage services.Storage
}

func NewUploadHandler(store services.Store, storage services.Storage) *UploadHandler {
	return &UploadHandler{
		store:   store,
		storage: storage,
	}
}

// UploadPhotos godoc
// @Summary     Upload selfies for an order
// @Description Accepts multipart photo uploads, stores them in the order's bucket folder, and records them. Per-file failures are reported without failing the whole batch.
// @Tags        orders
// @Accept      multipart/form-data
// @Produce     json
// @Param       order_id path string true "Order ID"
// @Param       photos formData file true "Selfie photos"
// @Success     200 {object} models.UploadResponse
// @Failure     400 {object} models.ErrorResponse
// @Failure     404 {object} models.ErrorResponse
// @Router      /orders/{order_id}/uploads [post]
func (h *UploadHandler) UploadPhotos(c *gin.Context) {
	orderID, err := uuid.Parse(c.Param("order_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid order id",
			Message: err.Error(),
		})
		return
	}

	if _, err := h.store.GetOrder(orderID); err != nil {
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

	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid multipart form",
			Message: err.Error(),
		})
		return
	}

	files := form.File["photos"]
	if len(files) == 0 {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "no files provided",
			Message: "attach at least one photo under the 'photos' field",
		})
		return
	}

	var uploaded []models.FileInfo
	var uploadErrors []string

	for _, fileHeader := range files {
		file, err := fileHeader.Open()
		if err != nil {
			uploadErrors = append(uploadErrors, fmt.Sprintf("%s: %v", fileHeader.Filename, err))
			continue
		}

		data, err := io.ReadAll(file)
		file.Close()
		if err != nil {
			uploadErrors = append(uploadErrors, fmt.Sprintf("%s: %v", fileHeader.Filename, err))
			continue
		}

		contentType := fileHeader.Header.Get("Content-Type")
		if contentType == "" {
			contentType = http.DetectContentType(data)
		}

		// Prefix with a short random id so same-named files don't clobber
		// each other in the bucket.
		filename := fmt.Sprintf("%s_%s", uuid.New().String()[:8], filepath.Base(fileHeader.Filename))

		storagePath, publicURL, err := h.storage.UploadFile(orderID, filename, contentType, data)
		if err != nil {
			uploadErrors = append(uploadErrors, fmt.Sprintf("%s: %v", fileHeader.Filename, err))
			continue
		}

		upload := &models.Upload{
			ID:          uuid.New(),
			OrderID:     orderID,
			StoragePath: storagePath,
			Filename:    fileHeader.Filename,
		}
		if err := h.store.CreateUpload(upload); err != nil {
			uploadErrors = append(uploadErrors, fmt.Sprintf("%s: %v", fileHeader.Filename, err))
			continue
		}

		uploaded = append(uploaded, models.FileInfo{
			Filename:   fileHeader.Filename,
			StorageURL: publicURL,
			Size:       fileHeader.Size,
		})
	}

	if len(uploaded) == 0 {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "all uploads failed",
			Message: fmt.Sprintf("%v", uploadErrors),
		})
		return
	}

	c.JSON(http.StatusOK, models.UploadResponse{
		OrderID: orderID.String(),
		Files:   uploaded,
		Errors:  uploadErrors,
	})
}
