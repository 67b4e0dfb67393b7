// Package cartstore persists each session's cart between requests. The cart
// serializes as an ordered list of line items; loading an absent key yields
// an empty cart rather than an error.
package cartstore

import (
	"context"

	"github.com/sufrahub/sufra/cart"
)

// Store keys carts by session token.
type Store interface {
	Load(ctx context.Context, token string) (*cart.Cart, error)
	Save(ctx context.Context, token string, c *cart.Cart) error
	Delete(ctx context.Context, token string) error
}
