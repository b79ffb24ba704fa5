// Package ledger keeps the client-side view of the supplier ledger: the
// provider list mirrored from the Backend API, the session's invoices and
// payments, and the statistics derived from both.
//
// A Store is safe for concurrent use. Backend API calls are made without
// holding the store lock; each mutation applies its result as a single
// targeted update when the call returns.
package ledger

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// ProviderAPI is the Backend API surface the store depends on.
type ProviderAPI interface {
	ListProviders(ctx context.Context) ([]Provider, error)
	GetProvider(ctx context.Context, id uint) (Provider, error)
	CreateProvider(ctx context.Context, in ProviderInput) (Provider, error)
	UpdateProvider(ctx context.Context, id uint, in ProviderInput) (Provider, error)
	DeactivateProvider(ctx context.Context, id uint) (Provider, error)
	ActivateProvider(ctx context.Context, id uint) (Provider, error)
}

type Store struct {
	api               ProviderAPI
	now               func() time.Time
	reconcileOnToggle bool
	log               zerolog.Logger

	mu        sync.RWMutex
	providers []Provider
	invoices  []Invoice
	filters   Filters
	inflight  int
	lastErr   error
}

type Option func(*Store)

// WithClock overrides time.Now for invoice and payment timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithReconcileOnToggle re-reads a provider from the Backend API after a
// successful status toggle so the local record reflects server truth.
func WithReconcileOnToggle(enabled bool) Option {
	return func(s *Store) { s.reconcileOnToggle = enabled }
}

func WithLogger(l zerolog.Logger) Option {
	return func(s *Store) { s.log = l }
}

// NewStore returns an empty store backed by api.
func NewStore(api ProviderAPI, opts ...Option) *Store {
	s := &Store{
		api: api,
		now: time.Now,
		log: log.With().Str("component", "ledger").Logger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// FetchProviders replaces the local provider list with the Backend API's.
// On failure the list is left untouched, LastError is set, and the error is
// returned.
func (s *Store) FetchProviders(ctx context.Context) error {
	s.beginLoad()
	defer s.endLoad()

	list, err := s.api.ListProviders(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.lastErr = err
		s.log.Error().Err(err).Msg("fetch providers failed")
		return fmt.Errorf("fetch providers: %w", err)
	}
	s.providers = append([]Provider(nil), list...)
	s.lastErr = nil
	s.log.Debug().Int("count", len(list)).Msg("providers fetched")
	return nil
}

// Loading reports whether a fetch is in flight.
func (s *Store) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.inflight > 0
}

// LastError returns the error of the most recent failed fetch, or nil once a
// later fetch starts or succeeds.
func (s *Store) LastError() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastErr
}

// Providers returns a copy of the local provider list in server order.
func (s *Store) Providers() []Provider {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Provider{}, s.providers...)
}

// ProviderByID returns the local record with the given id.
func (s *Store) ProviderByID(id uint) (Provider, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.providerIndex(id); i >= 0 {
		return s.providers[i], true
	}
	return Provider{}, false
}

// ProviderByKey looks a provider up by an id given as text, e.g. from a route
// parameter. Keys that are not a valid id match nothing.
func (s *Store) ProviderByKey(key string) (Provider, bool) {
	id, err := strconv.ParseUint(strings.TrimSpace(key), 10, 64)
	if err != nil || id == 0 {
		return Provider{}, false
	}
	return s.ProviderByID(uint(id))
}

func (s *Store) beginLoad() {
	s.mu.Lock()
	s.inflight++
	s.lastErr = nil
	s.mu.Unlock()
}

func (s *Store) endLoad() {
	s.mu.Lock()
	s.inflight--
	s.mu.Unlock()
}

// providerIndex must be called under s.mu.
func (s *Store) providerIndex(id uint) int {
	for i := range s.providers {
		if s.providers[i].ID == id {
			return i
		}
	}
	return -1
}

// upsertProvider must be called under s.mu (write).
func (s *Store) upsertProvider(p Provider) {
	if i := s.providerIndex(p.ID); i >= 0 {
		s.providers[i] = p
		return
	}
	s.providers = append(s.providers, p)
}
