// Package provider defines the contract for external item sources and the
// shared error types their clients return.
package provider

import (
	"context"
	"errors"
	"fmt"

	"github.com/nhle/marksync/internal/model"
)

// AuthError indicates that authentication has failed or expired for a
// provider. It is returned by provider clients when a 401 response is
// received.
type AuthError struct {
	Provider model.ProviderType
	Message  string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("auth error (%s): %s", e.Provider, e.Message)
}

// IsAuthError reports whether err (or any error in its chain) is an AuthError.
func IsAuthError(err error) bool {
	var authErr *AuthError
	return errors.As(err, &authErr)
}

// Provider defines the contract that every external integration must
// implement. Implementations fetch a flat list of remote items for one sync
// cycle; acting on those items is out of scope.
type Provider interface {
	// Type returns the provider kind identifier.
	Type() model.ProviderType

	// ID returns the identifier of this configured provider instance.
	ID() string

	// ValidateConnection verifies credentials and connectivity.
	// Returns a human-readable status message on success.
	ValidateConnection(ctx context.Context) (string, error)

	// FetchItems retrieves the current remote item list. Identifiers in
	// the result are unique within the provider's namespace.
	FetchItems(ctx context.Context) ([]model.RemoteItem, error)
}
