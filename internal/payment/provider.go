// Package payment implements the checkout workflow, the gateway callback
// state transitions, and the adapters for the supported payment providers.
package payment

import (
	"context"
	"errors"
	"fmt"

	"github.com/bazarly/bazarly-backend/internal/domain"
)

// ErrInvalidPaymentMethod is returned when the requested method has no
// registered provider.
var ErrInvalidPaymentMethod = errors.New("invalid payment method selected")

// ProviderError wraps any gateway-side failure: transport errors, non-2xx
// responses, and responses missing a redirect URL. The internal cause is
// logged but never surfaced to API clients.
type ProviderError struct {
	Provider domain.PaymentMethod
	Err      error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("payment provider %s: %v", e.Provider, e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// Provider produces a gateway redirect URL for a transaction descriptor.
// Each implementation maps the descriptor into its own wire payload.
type Provider interface {
	RequestRedirect(ctx context.Context, tranID string, customer domain.Customer, currency string, amount float64) (string, error)
}

// Registry dispatches an enumerated payment method to its provider.
type Registry struct {
	providers map[domain.PaymentMethod]Provider
}

func NewRegistry() *Registry {
	return &Registry{providers: make(map[domain.PaymentMethod]Provider)}
}

func (r *Registry) Register(method domain.PaymentMethod, p Provider) {
	r.providers[method] = p
}

func (r *Registry) Lookup(method domain.PaymentMethod) (Provider, error) {
	p, ok := r.providers[method]
	if !ok {
		return nil, ErrInvalidPaymentMethod
	}
	return p, nil
}
