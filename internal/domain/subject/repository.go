package subject

import "context"

// Repository exposes subject read operations.
type Repository interface {
	// ListWithProfileURL returns subjects carrying a non-empty external
	// profile reference, in stable name order.
	ListWithProfileURL(ctx context.Context) ([]Subject, error)
}
