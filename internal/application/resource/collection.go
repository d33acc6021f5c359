package resource

import (
	"context"

	"github.com/noman2111ni/Retail-Managment-System/internal/domain/retail"
)

// View is the type-erased state of a slice, for the CLI and the gateway.
type View struct {
	Resource string `json:"resource"`
	Data     any    `json:"data"`
	Count    int    `json:"count"`
	Loading  bool   `json:"loading"`
	Error    string `json:"error,omitempty"`
}

// Collection is a slice seen without its record type.
type Collection interface {
	Name() string
	ReadOnly() bool
	View() View
	FetchAll(ctx context.Context) (any, error)
	Get(ctx context.Context, id retail.ID) (any, error)
	Create(ctx context.Context, payload any) (any, error)
	Update(ctx context.Context, id retail.ID, payload any) (any, error)
	Delete(ctx context.Context, id retail.ID) error
	Clear()
}

type erased[T retail.Record] struct {
	s *Slice[T]
}

// Erase wraps s as a Collection.
func Erase[T retail.Record](s *Slice[T]) Collection {
	return erased[T]{s: s}
}

func (e erased[T]) Name() string   { return e.s.Name() }
func (e erased[T]) ReadOnly() bool { return e.s.readOnly }
func (e erased[T]) Clear()         { e.s.Clear() }

func (e erased[T]) View() View {
	st := e.s.Snapshot()
	return View{
		Resource: e.s.Name(),
		Data:     st.Data,
		Count:    len(st.Data),
		Loading:  st.Loading,
		Error:    st.Error,
	}
}

func (e erased[T]) FetchAll(ctx context.Context) (any, error) {
	items, err := e.s.FetchAll(ctx)
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (e erased[T]) Get(ctx context.Context, id retail.ID) (any, error) {
	item, err := e.s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return item, nil
}

func (e erased[T]) Create(ctx context.Context, payload any) (any, error) {
	item, err := e.s.Create(ctx, payload)
	if err != nil {
		return nil, err
	}
	return item, nil
}

func (e erased[T]) Update(ctx context.Context, id retail.ID, payload any) (any, error) {
	item, err := e.s.Update(ctx, id, payload)
	if err != nil {
		return nil, err
	}
	return item, nil
}

func (e erased[T]) Delete(ctx context.Context, id retail.ID) error {
	return e.s.Delete(ctx, id)
}
