package console

import (
	"context"
	"fmt"

	"github.com/helios-energy/helios-admin/pkg/apiclient"
	"github.com/helios-energy/helios-admin/pkg/optimistic"
)

// Resource binds one REST collection to an optimistic store, translating API
// envelopes into store results. The conventional endpoints are
// GET/POST <path>, PUT <path>/{id}, DELETE <path>/{id} and
// PATCH <path>/{id}/active for the status toggle.
type Resource[T any] struct {
	api   *apiclient.Client
	path  string
	store *optimistic.Store[T]
}

// NewResource constructs a resource for the given collection path, e.g.
// "/clients".
func NewResource[T any](api *apiclient.Client, path string, cfg optimistic.Config[T]) *Resource[T] {
	return &Resource[T]{api: api, path: path, store: optimistic.NewStore(cfg)}
}

// Store exposes the underlying collection store for rendering.
func (r *Resource[T]) Store() *optimistic.Store[T] { return r.store }

// decodeResult turns an envelope into a store result, surfacing the server
// message on business failures.
func decodeResult[T any](env *apiclient.Envelope, err error) (optimistic.Result[T], error) {
	if err != nil {
		return optimistic.Result[T]{}, err
	}
	res := optimistic.Result[T]{Success: env.Success, Message: env.Message}
	if !env.Success {
		return res, nil
	}
	if err := env.DecodeData(&res.Data); err != nil {
		return optimistic.Result[T]{}, err
	}
	return res, nil
}

// Load fetches the collection and replaces the store contents.
func (r *Resource[T]) Load(ctx context.Context) error {
	return r.store.Reload(ctx, func(ctx context.Context) (optimistic.Result[[]T], error) {
		env, err := r.api.Get(ctx, r.path)
		if err != nil {
			return optimistic.Result[[]T]{}, err
		}
		res := optimistic.Result[[]T]{Success: env.Success, Message: env.Message}
		if !env.Success {
			return res, nil
		}
		if err := env.DecodeList(&res.Data); err != nil {
			return optimistic.Result[[]T]{}, err
		}
		return res, nil
	})
}

// Create posts the item and commits the server-assigned record.
func (r *Resource[T]) Create(ctx context.Context, item T) error {
	return r.store.Create(ctx, item, func(ctx context.Context, item T) (optimistic.Result[T], error) {
		return decodeResult[T](r.api.Post(ctx, r.path, item))
	})
}

// Update puts the item and commits the server copy.
func (r *Resource[T]) Update(ctx context.Context, item T) error {
	return r.store.Update(ctx, item, func(ctx context.Context, id int64, item T) (optimistic.Result[T], error) {
		return decodeResult[T](r.api.Put(ctx, fmt.Sprintf("%s/%d", r.path, id), item))
	})
}

// Delete removes the item remotely and locally.
func (r *Resource[T]) Delete(ctx context.Context, item T) error {
	return r.store.Delete(ctx, item, func(ctx context.Context, id int64) (optimistic.Result[struct{}], error) {
		env, err := r.api.Delete(ctx, fmt.Sprintf("%s/%d", r.path, id))
		if err != nil {
			return optimistic.Result[struct{}]{}, err
		}
		return optimistic.Result[struct{}]{Success: env.Success, Message: env.Message}, nil
	})
}

// ToggleActive flips the record's active flag through the toggle endpoint.
func (r *Resource[T]) ToggleActive(ctx context.Context, item T) error {
	return r.store.ToggleStatus(ctx, item, func(ctx context.Context, id int64) (optimistic.Result[T], error) {
		return decodeResult[T](r.api.Patch(ctx, fmt.Sprintf("%s/%d/active", r.path, id), nil))
	})
}
