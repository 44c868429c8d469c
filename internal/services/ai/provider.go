package ai

import (
	"context"

	"github.com/cepho/cepho-api/internal/models"
)

// ReviewInput is everything the summarizer sees about an unattended review.
type ReviewInput struct {
	Mode         models.ReviewMode
	Tasks        []*models.Task
	Projects     []*models.Project
	Outstanding  int
	EveningStart string // "HH:MM", the effective trigger time that fired
}

// Summarizer is the interface for AI providers that triage unattended reviews
type Summarizer interface {
	// SummarizeReview produces a short triage summary of the user's open work
	// for an unattended evening review
	SummarizeReview(ctx context.Context, input ReviewInput) (string, error)
}

// ProviderFactory creates a summarizer based on provider configuration
type ProviderFactory func(config map[string]string) (Summarizer, error)

// ProviderRegistry stores available AI providers
type ProviderRegistry struct {
	providers map[string]ProviderFactory
}

// NewProviderRegistry creates a new provider registry
func NewProviderRegistry() *ProviderRegistry {
	return &ProviderRegistry{
		providers: make(map[string]ProviderFactory),
	}
}

// Register registers a provider factory
func (r *ProviderRegistry) Register(name string, factory ProviderFactory) {
	r.providers[name] = factory
}

// GetProvider gets a provider by name
func (r *ProviderRegistry) GetProvider(name string, config map[string]string) (Summarizer, error) {
	factory, ok := r.providers[name]
	if !ok {
		return nil, &ErrProviderNotFound{Name: name}
	}

	return factory(config)
}

// ErrProviderNotFound is returned when a provider is not found
type ErrProviderNotFound struct {
	Name string
}

func (e *ErrProviderNotFound) Error() string {
	return "AI provider not found: " + e.Name
}
