// Package store wires the session, the API client and one slice per
// resource into a single object shared by the CLI and the gateway.
package store

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/noman2111ni/Retail-Managment-System/internal/application/auth"
	"github.com/noman2111ni/Retail-Managment-System/internal/application/resource"
	"github.com/noman2111ni/Retail-Managment-System/internal/domain/retail"
	"github.com/noman2111ni/Retail-Managment-System/internal/domain/shared"
	"github.com/noman2111ni/Retail-Managment-System/internal/infrastructure/apiclient"
	"github.com/noman2111ni/Retail-Managment-System/internal/infrastructure/config"
	"github.com/noman2111ni/Retail-Managment-System/internal/infrastructure/metrics"
	"github.com/noman2111ni/Retail-Managment-System/internal/infrastructure/tokenstore"
)

// Resource names.
const (
	Products       = "products"
	Branches       = "branches"
	Vendors        = "vendors"
	Sales          = "sales"
	Purchases      = "purchases"
	LedgerEntries  = "ledger-entries"
	StockMovements = "stock-movements"
	AuditLogs      = "audit-logs"
)

// Store holds everything a client process needs.
type Store struct {
	API     *apiclient.Client
	Session *auth.Session
	Auth    *auth.Authenticator
	Users   *auth.Service
	Metrics *metrics.Recorder

	Products       *resource.Slice[retail.Product]
	Branches       *resource.Slice[retail.Branch]
	Vendors        *resource.Slice[retail.Vendor]
	Sales          *resource.Slice[retail.Sale]
	Purchases      *resource.Slice[retail.Purchase]
	LedgerEntries  *resource.Slice[retail.LedgerEntry]
	StockMovements *resource.Slice[retail.StockMovement]
	AuditLogs      *resource.Slice[retail.AuditLog]

	tokens      tokenstore.Store
	collections map[string]resource.Collection
	names       []string
	log         *zap.Logger
}

// Open opens the configured token store, restores the saved session and
// builds the store.
func Open(ctx context.Context, cfg *config.Config, log *zap.Logger, m *metrics.Recorder) (*Store, error) {
	if log == nil {
		log = zap.NewNop()
	}
	tokens, err := tokenstore.Open(ctx, cfg.Session, log)
	if err != nil {
		return nil, fmt.Errorf("opening session store: %w", err)
	}

	s, err := New(cfg, tokens, log, m)
	if err != nil {
		_ = tokens.Close()
		return nil, err
	}
	if err := s.Session.Restore(ctx); err != nil {
		_ = tokens.Close()
		return nil, err
	}
	return s, nil
}

// New builds the store over an already opened token store.
func New(cfg *config.Config, tokens tokenstore.Store, log *zap.Logger, m *metrics.Recorder) (*Store, error) {
	if log == nil {
		log = zap.NewNop()
	}

	api, err := apiclient.NewClient(cfg.API, apiclient.WithLogger(log), apiclient.WithMetrics(m))
	if err != nil {
		return nil, fmt.Errorf("creating API client: %w", err)
	}

	session := auth.NewSession(tokens, log)
	authenticator := auth.NewAuthenticator(session, api, cfg.Auth.RefreshPath,
		auth.WithLogger(log), auth.WithMetrics(m))

	s := &Store{
		API:         api,
		Session:     session,
		Auth:        authenticator,
		Users:       auth.NewService(api, authenticator, cfg.Auth, log),
		Metrics:     m,
		tokens:      tokens,
		collections: make(map[string]resource.Collection),
		log:         log,
	}

	paths := cfg.Resources
	s.Products = addSlice[retail.Product](s, Products, paths.Products)
	s.Branches = addSlice[retail.Branch](s, Branches, paths.Branches)
	s.Vendors = addSlice[retail.Vendor](s, Vendors, paths.Vendors)
	s.Sales = addSlice[retail.Sale](s, Sales, paths.Sales)
	s.Purchases = addSlice[retail.Purchase](s, Purchases, paths.Purchases)
	s.LedgerEntries = addSlice[retail.LedgerEntry](s, LedgerEntries, paths.LedgerEntries)
	s.StockMovements = addSlice[retail.StockMovement](s, StockMovements, paths.StockMovements)
	s.AuditLogs = addSlice[retail.AuditLog](s, AuditLogs, paths.AuditLogs, resource.ReadOnly())

	return s, nil
}

func addSlice[T retail.Record](s *Store, name, path string, opts ...resource.SliceOption) *resource.Slice[T] {
	opts = append([]resource.SliceOption{
		resource.WithLogger(s.log),
		resource.WithMetrics(s.Metrics),
	}, opts...)
	sl := resource.NewSlice(name, resource.NewClient[T](s.API, s.Auth, path), opts...)
	s.collections[name] = resource.Erase(sl)
	s.names = append(s.names, name)
	return sl
}

// aliases accepted on the command line.
var aliases = map[string]string{
	"product":  Products,
	"branch":   Branches,
	"vendor":   Vendors,
	"sale":     Sales,
	"purchase": Purchases,
	"ledger":   LedgerEntries,
	"stock":    StockMovements,
	"audit":    AuditLogs,
}

// Collection looks up a resource by name or alias.
func (s *Store) Collection(name string) (resource.Collection, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	key = strings.ReplaceAll(key, "_", "-")
	if alias, ok := aliases[key]; ok {
		key = alias
	}
	c, ok := s.collections[key]
	if !ok {
		return nil, shared.NewDomainError(shared.ErrUnknownResource.Code,
			fmt.Sprintf("Unknown resource %q (known: %s)", name, strings.Join(s.names, ", ")))
	}
	return c, nil
}

// Names returns the resource names in a stable order.
func (s *Store) Names() []string {
	return append([]string(nil), s.names...)
}

// ClearAll resets every slice.
func (s *Store) ClearAll() {
	for _, name := range s.names {
		s.collections[name].Clear()
	}
}

// Close releases the token store.
func (s *Store) Close() error {
	return s.tokens.Close()
}
