package resource

import (
	"context"
	"slices"
	"sync"

	"go.uber.org/zap"

	"github.com/noman2111ni/Retail-Managment-System/internal/domain/retail"
	"github.com/noman2111ni/Retail-Managment-System/internal/domain/shared"
	"github.com/noman2111ni/Retail-Managment-System/internal/infrastructure/metrics"
)

// ErrReadOnly is returned by mutations on a read-only slice.
var ErrReadOnly = shared.NewDomainError("READ_ONLY_RESOURCE", "Resource is read-only")

// Operation names used in logs and metrics.
const (
	OpFetchAll = "fetchAll"
	OpCreate   = "create"
	OpUpdate   = "update"
	OpDelete   = "delete"
)

// State is the observable state of a slice.
type State[T any] struct {
	Data    []T    `json:"data"`
	Loading bool   `json:"loading"`
	Error   string `json:"error,omitempty"`
}

// Slice holds the local collection of one resource. The collection only
// changes when the server confirms an operation.
//
// Ordering: every FetchAll takes a sequence number when it is issued and
// every confirmed mutation takes one when it is applied. A list that
// arrives after a newer change was applied is discarded, so a fetch that
// raced a delete cannot bring the deleted record back.
type Slice[T retail.Record] struct {
	name     string
	client   *Client[T]
	readOnly bool
	log      *zap.Logger
	metrics  *metrics.Recorder

	mu      sync.Mutex
	data    []T
	pending int
	err     string
	seq     uint64
	applied uint64
	subs    map[int]func(State[T])
	nextSub int
}

// SliceOption configures a Slice.
type SliceOption func(*sliceOptions)

type sliceOptions struct {
	readOnly bool
	log      *zap.Logger
	metrics  *metrics.Recorder
}

// WithLogger sets the slice logger.
func WithLogger(log *zap.Logger) SliceOption {
	return func(o *sliceOptions) { o.log = log }
}

// WithMetrics sets the metrics recorder.
func WithMetrics(m *metrics.Recorder) SliceOption {
	return func(o *sliceOptions) { o.metrics = m }
}

// ReadOnly rejects Create, Update and Delete with ErrReadOnly.
func ReadOnly() SliceOption {
	return func(o *sliceOptions) { o.readOnly = true }
}

// NewSlice creates an empty slice named name over client.
func NewSlice[T retail.Record](name string, client *Client[T], opts ...SliceOption) *Slice[T] {
	o := sliceOptions{log: zap.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}
	return &Slice[T]{
		name:     name,
		client:   client,
		readOnly: o.readOnly,
		log:      o.log.Named("slice").With(zap.String("resource", name)),
		metrics:  o.metrics,
		data:     []T{},
		subs:     make(map[int]func(State[T])),
	}
}

// Name returns the resource name.
func (s *Slice[T]) Name() string {
	return s.name
}

// Snapshot returns a copy of the current state.
func (s *Slice[T]) Snapshot() State[T] {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stateLocked()
}

func (s *Slice[T]) stateLocked() State[T] {
	return State[T]{
		Data:    slices.Clone(s.data),
		Loading: s.pending > 0,
		Error:   s.err,
	}
}

// Subscribe registers fn to receive every new state and returns a function
// that removes it. fn runs with the slice locked and must not call back
// into the slice.
func (s *Slice[T]) Subscribe(fn func(State[T])) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subs, id)
			s.mu.Unlock()
		})
	}
}

func (s *Slice[T]) notifyLocked() {
	if len(s.subs) == 0 {
		return
	}
	st := s.stateLocked()
	for _, fn := range s.subs {
		fn(st)
	}
}

// begin marks an operation pending and returns the sequence number it was
// issued at.
func (s *Slice[T]) begin() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending++
	s.err = ""
	s.seq++
	s.notifyLocked()
	return s.seq
}

// finishLocked ends an operation; err is recorded as the slice error.
func (s *Slice[T]) finishLocked(op string, err error) {
	s.pending--
	if err != nil {
		s.err = err.Error()
	}
	s.metrics.ObserveSliceOp(s.name, op, err)
	s.notifyLocked()
}

func (s *Slice[T]) fail(op string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.log.Debug("Operation rejected", zap.String("op", op), zap.Error(err))
	s.finishLocked(op, err)
}

// FetchAll replaces the collection with the server's list.
func (s *Slice[T]) FetchAll(ctx context.Context) ([]T, error) {
	issued := s.begin()

	items, err := s.client.List(ctx)
	if err != nil {
		s.fail(OpFetchAll, err)
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if issued < s.applied {
		s.log.Debug("Discarding stale list",
			zap.Uint64("issued", issued),
			zap.Uint64("applied", s.applied))
		s.metrics.ObserveStaleDiscard(s.name)
	} else {
		s.data = items
		s.applied = issued
	}
	s.finishLocked(OpFetchAll, nil)
	return slices.Clone(items), nil
}

// Get retrieves one record without touching the collection.
func (s *Slice[T]) Get(ctx context.Context, id retail.ID) (T, error) {
	return s.client.Get(ctx, id)
}

// Create stores payload on the server and adds the returned record.
func (s *Slice[T]) Create(ctx context.Context, payload any) (T, error) {
	var zero T
	if s.readOnly {
		return zero, ErrReadOnly
	}
	s.begin()

	item, err := s.client.Create(ctx, payload)
	if err != nil {
		s.fail(OpCreate, err)
		return zero, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	switch i := s.indexLocked(item.RecordID()); {
	case item.RecordID() == 0:
		// Nothing identifiable came back; the next FetchAll picks it up.
		s.log.Warn("Created record has no id in the response")
	case i >= 0:
		s.data[i] = item
	default:
		s.data = append(s.data, item)
	}
	s.stampLocked()
	s.finishLocked(OpCreate, nil)
	return item, nil
}

// Update replaces the record with the server's updated version. A record
// missing from the collection stays missing.
func (s *Slice[T]) Update(ctx context.Context, id retail.ID, payload any) (T, error) {
	var zero T
	if s.readOnly {
		return zero, ErrReadOnly
	}
	s.begin()

	item, err := s.client.Update(ctx, id, payload)
	if err != nil {
		s.fail(OpUpdate, err)
		return zero, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	switch i := s.indexLocked(id); {
	case item.RecordID() != id:
		s.log.Warn("Update response does not carry the record", zap.Stringer("id", id))
	case i >= 0:
		s.data[i] = item
	default:
		s.log.Debug("Updated record is not in the local collection", zap.Stringer("id", id))
	}
	s.stampLocked()
	s.finishLocked(OpUpdate, nil)
	return item, nil
}

// Delete removes the record on the server and from the collection.
func (s *Slice[T]) Delete(ctx context.Context, id retail.ID) error {
	if s.readOnly {
		return ErrReadOnly
	}
	s.begin()

	if err := s.client.Delete(ctx, id); err != nil {
		s.fail(OpDelete, err)
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.indexLocked(id); i >= 0 {
		s.data = slices.Delete(s.data, i, i+1)
	} else {
		s.log.Debug("Deleted record is not in the local collection", zap.Stringer("id", id))
	}
	s.stampLocked()
	s.finishLocked(OpDelete, nil)
	return nil
}

// Clear resets the slice to its initial state. Lists still in flight are
// discarded when they arrive.
func (s *Slice[T]) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = []T{}
	s.err = ""
	s.stampLocked()
	s.notifyLocked()
}

func (s *Slice[T]) stampLocked() {
	s.seq++
	s.applied = s.seq
}

func (s *Slice[T]) indexLocked(id retail.ID) int {
	return slices.IndexFunc(s.data, func(item T) bool { return item.RecordID() == id })
}
