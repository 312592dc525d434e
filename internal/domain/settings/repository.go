// Package settings exposes the key/value configuration collaborator.
package settings

import "context"

// KeyProviderToken stores the access token for the fixture provider
// relay. Its absence is a user-actionable state, not an error.
const KeyProviderToken = "fussball_de_api_token"

type Repository interface {
	// Get returns the stored value and whether the key exists.
	Get(ctx context.Context, key string) (string, bool, error)
	Put(ctx context.Context, key, value string) error
}
