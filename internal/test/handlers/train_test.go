package handlers_test

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"iheadshot-backend/internal/handlers"
	"iheadshot-backend/internal/models"
	"iheadshot-backend/internal/orders"
)

func TestStartTrainingEndpoint(t *testing.T) {
	gin.SetMode(gin.TestMode)
	store, pipeline := newTestPipelineWithStore()
	order := seedOrder(t, store, orders.StatusPaid)
	require.NoError(t, store.CreateUpload(&models.Upload{
		ID:          uuid.New(),
		OrderID:     order.ID,
		StoragePath: "orders/" + order.ID.String() + "/selfie.jpg",
		Filename:    "selfie.jpg",
	}))

	router := gin.New()
	router.POST("/orders/:order_id/train", handlers.NewTrainHandler(pipeline).StartTraining)

	w := postJSON(router, "/orders/"+order.ID.String()+"/train", "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp models.TrainResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "training", resp.Status)

	stored, err := store.GetOrder(order.ID)
	require.NoError(t, err)
	assert.Equal(t, orders.StatusTraining, stored.Status)
}

func TestStartTrainingEndpointNoUploads(t *testing.T) {
	gin.SetMode(gin.TestMode)
	store, pipeline := newTestPipelineWithStore()
	order := seedOrder(t, store, orders.StatusPaid)

	router := gin.New()
	router.POST("/orders/:order_id/train", handlers.NewTrainHandler(pipeline).StartTraining)

	w := postJSON(router, "/orders/"+order.ID.String()+"/train", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestStartTrainingEndpointWrongState(t *testing.T) {
	gin.SetMode(gin.TestMode)
	store, pipeline := newTestPipelineWithStore()
	order := seedOrder(t, store, orders.StatusGenerating)
	require.NoError(t, store.CreateUpload(&models.Upload{
		ID:          uuid.New(),
		OrderID:     order.ID,
		StoragePath: "orders/" + order.ID.String() + "/selfie.jpg",
		Filename:    "selfie.jpg",
	}))

	router := gin.New()
	router.POST("/orders/:order_id/train", handlers.NewTrainHandler(pipeline).StartTraining)

	w := postJSON(router, "/orders/"+order.ID.String()+"/train", "", nil)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestStartTrainingEndpointUnknownOrder(t *testing.T) {
	gin.SetMode(gin.TestMode)
	_, pipeline := newTestPipelineWithStore()

	router := gin.New()
	router.POST("/orders/:order_id/train", handlers.NewTrainHandler(pipeline).StartTraining)

	w := postJSON(router, "/orders/"+uuid.New().String()+"/train", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUpscaleEndpointValidation(t *testing.T) {
	gin.SetMode(gin.TestMode)
	_, pipeline := newTestPipelineWithStore()

	router := gin.New()
	router.POST("/orders/:order_id/upscale", handlers.NewUpscaleHandler(pipeline).UpscaleImages)

	w := postJSON(router, "/orders/"+uuid.New().String()+"/upscale", `{"image_urls":[]}`, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = postJSON(router, "/orders/"+uuid.New().String()+"/upscale",
		`{"image_urls":["https://x/a.jpg"],"scale":3}`, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUpscaleEndpointPartialSuccess(t *testing.T) {
	gin.SetMode(gin.TestMode)
	store, pipeline := newTestPipelineWithStore()
	order := seedOrder(t, store, orders.StatusCompleted)
	require.NoError(t, store.CreateGeneratedImage(&models.GeneratedImage{
		ID:       uuid.New(),
		OrderID:  order.ID,
		ImageURL: "https://cdn.astria.ai/a.jpg",
		Quality:  "standard",
	}))

	router := gin.New()
	router.POST("/orders/:order_id/upscale", handlers.NewUpscaleHandler(pipeline).UpscaleImages)

	// one owned image, one foreign: the owned one succeeds, the other is
	// reported in errors
	w := postJSON(router, "/orders/"+order.ID.String()+"/upscale",
		`{"image_urls":["https://cdn.astria.ai/a.jpg","https://elsewhere.com/b.jpg"],"scale":4}`, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp models.UpscaleResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.Upscales, 1)
	assert.Len(t, resp.Errors, 1)
}
