// Package resource implements the generic REST collection client and the
// per-resource slice that reduces confirmed server responses into a local
// collection.
package resource

import (
	"context"

	"github.com/noman2111ni/Retail-Managment-System/internal/application/auth"
	"github.com/noman2111ni/Retail-Managment-System/internal/domain/retail"
	"github.com/noman2111ni/Retail-Managment-System/internal/infrastructure/apiclient"
)

// Client is a REST collection client for records of type T. Every call goes
// through the Authenticator.
type Client[T retail.Record] struct {
	api  *apiclient.Client
	auth *auth.Authenticator
	path string
}

// NewClient creates a client for the collection at path (e.g. "products/").
func NewClient[T retail.Record](api *apiclient.Client, authenticator *auth.Authenticator, path string) *Client[T] {
	return &Client[T]{api: api, auth: authenticator, path: path}
}

// Path returns the collection path.
func (c *Client[T]) Path() string {
	return c.path
}

// List returns every record of the collection.
func (c *Client[T]) List(ctx context.Context) ([]T, error) {
	var items []T
	err := c.auth.Do(ctx, func(ctx context.Context, access string) error {
		resp, err := c.api.Get(ctx, c.path, access)
		if err != nil {
			return err
		}
		items, err = apiclient.DecodeList[T](resp.Body)
		return err
	})
	return items, err
}

// Get returns one record.
func (c *Client[T]) Get(ctx context.Context, id retail.ID) (T, error) {
	var item T
	err := c.auth.Do(ctx, func(ctx context.Context, access string) error {
		resp, err := c.api.Get(ctx, c.api.ItemPath(c.path, id.String()), access)
		if err != nil {
			return err
		}
		return apiclient.DecodeJSON(resp, &item)
	})
	return item, err
}

// Create posts payload and returns the record the server stored.
func (c *Client[T]) Create(ctx context.Context, payload any) (T, error) {
	var item T
	err := c.auth.Do(ctx, func(ctx context.Context, access string) error {
		resp, err := c.api.Post(ctx, c.path, access, payload)
		if err != nil {
			return err
		}
		return apiclient.DecodeJSON(resp, &item)
	})
	return item, err
}

// Update puts payload to the record and returns the server's version.
func (c *Client[T]) Update(ctx context.Context, id retail.ID, payload any) (T, error) {
	var item T
	err := c.auth.Do(ctx, func(ctx context.Context, access string) error {
		resp, err := c.api.Put(ctx, c.api.ItemPath(c.path, id.String()), access, payload)
		if err != nil {
			return err
		}
		return apiclient.DecodeJSON(resp, &item)
	})
	return item, err
}

// Delete removes the record.
func (c *Client[T]) Delete(ctx context.Context, id retail.ID) error {
	return c.auth.Do(ctx, func(ctx context.Context, access string) error {
		_, err := c.api.Delete(ctx, c.api.ItemPath(c.path, id.String()), access)
		return err
	})
}
