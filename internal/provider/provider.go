package provider

import (
	"context"
	"fmt"

	"faretrack/internal/models"
)

// Client is the external search collaborator. Implementations issue one
// search per call and translate provider payloads into internal offers.
type Client interface {
	Name() string
	Search(ctx context.Context, query models.SearchQuery) ([]models.Offer, error)
}

// ProviderError is a structured error response from the provider, carrying
// its machine-readable code so callers can log it alongside route context.
type ProviderError struct {
	Status int
	Code   int
	Title  string
	Detail string
}

func (e *ProviderError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("provider error %d (%s): %s", e.Code, e.Title, e.Detail)
	}
	return fmt.Sprintf("provider error %d (%s)", e.Code, e.Title)
}
