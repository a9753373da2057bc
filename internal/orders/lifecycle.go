// Package orders defines the order lifecycle: the status values an order
// moves through, the legal transitions between them, and the progress
// projection served to polling clients.
package orders

// Status is the lifecycle state of an order.
//
// paid -> training -> generating -> completed, with failed reachable from
// training and generating. failed is terminal; recovery is manual.
type Status string

const (
	StatusPending    Status = "pending"
	StatusPaid       Status = "paid"
	StatusTraining   Status = "training"
	StatusGenerating Status = "generating"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// transitions maps each status to the statuses it may advance to. Anything
// not listed here is a no-op, which is what makes duplicate and out-of-order
// webhook deliveries safe.
var transitions = map[Status][]Status{
	StatusPaid:       {StatusTraining},
	StatusTraining:   {StatusGenerating, StatusFailed},
	StatusGenerating: {StatusCompleted, StatusFailed},
}

// CanAdvance reports whether from -> to is a legal transition.
func CanAdvance(from, to Status) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Terminal reports whether no further transitions are possible.
func Terminal(s Status) bool {
	return len(transitions[s]) == 0
}

// Progress maps a status (and, while generating, the ratio of persisted
// images to the order's target) to a percentage. It is a pure function of
// its inputs so repeated polls against the same row state always agree.
func Progress(status Status, images, target int) int {
	switch status {
	case StatusPaid:
		return 10
	case StatusTraining:
		return 30
	case StatusGenerating:
		if target <= 0 {
			return 50
		}
		if images > target {
			images = target
		}
		return 50 + 45*images/target
	case StatusCompleted:
		return 100
	default:
		// pending and failed both report zero
		return 0
	}
}

// Message returns the human-readable line shown next to the progress bar.
func Message(status Status) string {
	switch status {
	case StatusPaid:
		return "Payment received. Upload your selfies to get started."
	case StatusTraining:
		return "Training your AI model. This usually takes 20-30 minutes."
	case StatusGenerating:
		return "Generating your headshots."
	case StatusCompleted:
		return "Your headshots are ready!"
	case StatusFailed:
		return "Something went wrong. Our team has been notified."
	default:
		return "Waiting for payment."
	}
}
