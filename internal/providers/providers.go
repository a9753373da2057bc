// Package providers defines the external-collaborator boundary for the
// generation pipeline: submit reference images plus style parameters,
// receive either inline image URLs or an asynchronous job that reports back
// via webhook. The pipeline never sees a concrete vendor API.
package providers

import "github.com/google/uuid"

// TrainingRequest asks a provider to train an identity model from the
// customer's selfies. CallbackURL receives the asynchronous result.
type TrainingRequest struct {
	OrderID     uuid.UUID
	Subject     string
	ImageURLs   []string
	CallbackURL string
}

type TrainingProvider interface {
	// SubmitTraining returns the provider's job identifier, which is the
	// lookup key when its callback arrives.
	SubmitTraining(req TrainingRequest) (providerJobID string, err error)
}

// GenerationRequest asks for Count images of one style. Reference is the
// correlation identifier (the order id) threaded through the provider's
// payload and echoed back in its callback; it is the only key callbacks are
// resolved by.
type GenerationRequest struct {
	OrderID      uuid.UUID
	Reference    string
	ModelVersion string
	Style        string
	Prompt       string
	Count        int
	FaceImageURL string
	CallbackURL  string
}

// GenerationResult carries inline image URLs for providers that respond
// synchronously. Asynchronous providers return nil and deliver via webhook.
type GenerationResult struct {
	ImageURLs []string
}

type GenerationProvider interface {
	Name() string
	SubmitGeneration(req GenerationRequest) (*GenerationResult, error)
}

// Upscaler enhances one image synchronously and returns the enhanced bytes.
type Upscaler interface {
	Upscale(imageURL string, scale int) (data []byte, width, height int, err error)
}
