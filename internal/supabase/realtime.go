package supabase

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/supabase-community/supabase-go"
)

// RealtimeClient publishes order lifecycle events to per-order channels so
// the front end can react without waiting for the next poll.
type RealtimeClient struct {
	client *supabase.Client
}

func NewRealtimeClient(client *supabase.Client) *RealtimeClient {
	return &RealtimeClient{
		client: client,
	}
}

func (r *RealtimeClient) PublishEvent(channel string, event string, payload map[string]interface{}) error {
	// The Go client has no direct Realtime publish; order-row updates trigger
	// Realtime change events automatically. Explicit publishing would go
	// through the Realtime REST API here.
	return nil
}

func (r *RealtimeClient) PublishOrderEvent(orderID uuid.UUID, event string, payload map[string]interface{}) error {
	channel := fmt.Sprintf("order:%s", orderID.String())
	return r.PublishEvent(channel, event, payload)
}

// Event payloads
func PaymentReceivedPayload(orderID uuid.UUID, tier string) map[string]interface{} {
	return map[string]interface{}{
		"order_id": orderID.String(),
		"status":   "paid",
		"tier":     tier,
	}
}

func TrainingStartedPayload(orderID uuid.UUID, jobID string) map[string]interface{} {
	return map[string]interface{}{
		"order_id": orderID.String(),
		"status":   "training",
		"job_id":   jobID,
	}
}

func GenerationStartedPayload(orderID uuid.UUID, styles int) map[string]interface{} {
	return map[string]interface{}{
		"order_id": orderID.String(),
		"status":   "generating",
		"styles":   styles,
	}
}

func GenerationProgressPayload(orderID uuid.UUID, images, target int) map[string]interface{} {
	return map[string]interface{}{
		"order_id": orderID.String(),
		"status":   "generating",
		"images":   images,
		"target":   target,
	}
}

func HeadshotsReadyPayload(orderID uuid.UUID, images int) map[string]interface{} {
	return map[string]interface{}{
		"order_id": orderID.String(),
		"status":   "completed",
		"images":   images,
	}
}

func GenerationFailedPayload(orderID uuid.UUID, errorMsg string) map[string]interface{} {
	return map[string]interface{}{
		"order_id": orderID.String(),
		"status":   "failed",
		"error":    errorMsg,
	}
}
