package service_test

import (
	"context"
	"errors"
	"sort"
	"strings"
	"testing"
	"time"

	"supplierledger/internal/dto"
	"supplierledger/internal/model"
	"supplierledger/internal/repository"
	"supplierledger/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// ── In-memory ProviderRepository stub ────────────────────────────────────────

type stubProviderRepo struct {
	providers map[uint]*model.Provider
	nextID    uint
	listErr   error
	lookups   int
}

func newStubProviderRepo() *stubProviderRepo {
	return &stubProviderRepo{providers: make(map[uint]*model.Provider)}
}

func (r *stubProviderRepo) Create(_ context.Context, p *model.Provider) error {
	for _, existing := range r.providers {
		if existing.Document == p.Document {
			return errors.New("unique constraint violation")
		}
	}
	r.nextID++
	p.ID = r.nextID
	p.CreatedAt = time.Now()
	p.UpdatedAt = p.CreatedAt
	cp := *p
	r.providers[p.ID] = &cp
	return nil
}

func (r *stubProviderRepo) FindByID(_ context.Context, id uint) (*model.Provider, error) {
	p, ok := r.providers[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *stubProviderRepo) FindByDocument(_ context.Context, document string) (*model.Provider, error) {
	for _, p := range r.providers {
		if p.Document == document {
			cp := *p
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubProviderRepo) sorted(keep func(model.Provider) bool) []model.Provider {
	out := make([]model.Provider, 0, len(r.providers))
	for _, p := range r.providers {
		if keep(*p) {
			out = append(out, *p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (r *stubProviderRepo) List(_ context.Context) ([]model.Provider, error) {
	if r.listErr != nil {
		return nil, r.listErr
	}
	return r.sorted(func(model.Provider) bool { return true }), nil
}

func (r *stubProviderRepo) ListActive(_ context.Context) ([]model.Provider, error) {
	return r.sorted(func(p model.Provider) bool { return p.IsActive }), nil
}

func (r *stubProviderRepo) Search(_ context.Context, q string) ([]model.Provider, error) {
	q = strings.ToLower(strings.TrimSpace(q))
	return r.sorted(func(p model.Provider) bool {
		return strings.Contains(strings.ToLower(p.Name), q) || strings.Contains(strings.ToLower(p.City), q)
	}), nil
}

func (r *stubProviderRepo) Update(_ context.Context, p *model.Provider) error {
	cp := *p
	r.providers[p.ID] = &cp
	return nil
}

func (r *stubProviderRepo) SetActive(_ context.Context, id uint, active bool) error {
	p, ok := r.providers[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	p.IsActive = active
	return nil
}

func (r *stubProviderRepo) distinct(field func(model.Provider) string) []string {
	r.lookups++
	seen := map[string]bool{}
	var out []string
	for _, p := range r.providers {
		v := field(*p)
		if v != "" && !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	sort.Strings(out)
	return out
}

func (r *stubProviderRepo) DistinctCities(_ context.Context) ([]string, error) {
	return r.distinct(func(p model.Provider) string { return p.City }), nil
}

func (r *stubProviderRepo) DistinctCountries(_ context.Context) ([]string, error) {
	return r.distinct(func(p model.Provider) string { return p.Country }), nil
}

var _ repository.ProviderRepository = (*stubProviderRepo)(nil)

// ── Helpers ───────────────────────────────────────────────────────────────────

func newService(repo *stubProviderRepo) service.ProviderService {
	return service.NewProviderService(repo, nil, time.Minute)
}

func request(document, name, city string) dto.ProviderRequest {
	return dto.ProviderRequest{Document: document, Name: name, City: city, Country: "Argentina"}
}

// ── Create / Update ───────────────────────────────────────────────────────────

func TestProviderService_CreateStartsActive(t *testing.T) {
	svc := newService(newStubProviderRepo())

	resp, err := svc.Create(context.Background(), request("30-1", "Acme", "Rosario"))
	require.NoError(t, err)
	assert.Equal(t, uint(1), resp.ID)
	assert.True(t, resp.IsActive)
	assert.Equal(t, "Rosario", resp.City)
	assert.False(t, resp.CreatedAt.IsZero())
}

func TestProviderService_CreateRejectsDuplicateDocument(t *testing.T) {
	svc := newService(newStubProviderRepo())
	ctx := context.Background()

	_, err := svc.Create(ctx, request("30-1", "Acme", "Rosario"))
	require.NoError(t, err)

	_, err = svc.Create(ctx, request("30-1", "Otra", "Cordoba"))
	assert.ErrorIs(t, err, service.ErrDocumentTaken)
}

func TestProviderService_UpdateKeepsOwnDocument(t *testing.T) {
	svc := newService(newStubProviderRepo())
	ctx := context.Background()
	created, err := svc.Create(ctx, request("30-1", "Acme", "Rosario"))
	require.NoError(t, err)

	updated, err := svc.Update(ctx, created.ID, request("30-1", "Acme SRL", "Rosario"))
	require.NoError(t, err)
	assert.Equal(t, "Acme SRL", updated.Name)
	assert.Equal(t, created.ID, updated.ID)
}

func TestProviderService_UpdateRejectsDocumentOfAnotherProvider(t *testing.T) {
	svc := newService(newStubProviderRepo())
	ctx := context.Background()
	_, err := svc.Create(ctx, request("30-1", "Acme", "Rosario"))
	require.NoError(t, err)
	beta, err := svc.Create(ctx, request("30-2", "Beta", "Cordoba"))
	require.NoError(t, err)

	_, err = svc.Update(ctx, beta.ID, request("30-1", "Beta", "Cordoba"))
	assert.ErrorIs(t, err, service.ErrDocumentTaken)
}

func TestProviderService_UpdateUnknownProvider(t *testing.T) {
	svc := newService(newStubProviderRepo())

	_, err := svc.Update(context.Background(), 42, request("30-1", "Acme", "Rosario"))
	assert.ErrorIs(t, err, service.ErrProviderNotFound)
}

// ── Activation ────────────────────────────────────────────────────────────────

func TestProviderService_DeactivateAndActivate(t *testing.T) {
	repo := newStubProviderRepo()
	svc := newService(repo)
	ctx := context.Background()
	created, err := svc.Create(ctx, request("30-1", "Acme", "Rosario"))
	require.NoError(t, err)

	off, err := svc.Deactivate(ctx, created.ID)
	require.NoError(t, err)
	assert.False(t, off.IsActive)

	active, err := svc.ListActive(ctx)
	require.NoError(t, err)
	assert.Empty(t, active)

	all, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1, "deactivated providers stay in the full list")

	on, err := svc.Activate(ctx, created.ID)
	require.NoError(t, err)
	assert.True(t, on.IsActive)
}

func TestProviderService_ToggleUnknownProvider(t *testing.T) {
	svc := newService(newStubProviderRepo())

	_, err := svc.Deactivate(context.Background(), 7)
	assert.ErrorIs(t, err, service.ErrProviderNotFound)
	_, err = svc.Activate(context.Background(), 7)
	assert.ErrorIs(t, err, service.ErrProviderNotFound)
}

// ── Queries ───────────────────────────────────────────────────────────────────

func TestProviderService_ListPropagatesRepositoryError(t *testing.T) {
	repo := newStubProviderRepo()
	repo.listErr = errors.New("connection reset")
	svc := newService(repo)

	_, err := svc.List(context.Background())
	assert.EqualError(t, err, "connection reset")
}

func TestProviderService_SearchAndLookups(t *testing.T) {
	repo := newStubProviderRepo()
	svc := newService(repo)
	ctx := context.Background()
	for _, r := range []dto.ProviderRequest{
		request("30-1", "Acme", "Rosario"),
		request("30-2", "Beta", "Cordoba"),
		request("30-3", "Gamma", "Rosario"),
	} {
		_, err := svc.Create(ctx, r)
		require.NoError(t, err)
	}

	found, err := svc.Search(ctx, "  ROSA ")
	require.NoError(t, err)
	require.Len(t, found, 2)
	assert.Equal(t, "Acme", found[0].Name)

	cities, err := svc.Cities(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Cordoba", "Rosario"}, cities)

	countries, err := svc.Countries(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Argentina"}, countries)
}

func TestProviderService_LookupsWithoutCacheHitRepositoryEachTime(t *testing.T) {
	repo := newStubProviderRepo()
	svc := newService(repo)
	ctx := context.Background()

	first, err := svc.Cities(ctx)
	require.NoError(t, err)
	assert.NotNil(t, first, "empty lookups serialize as [] not null")
	assert.Empty(t, first)

	_, err = svc.Cities(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, repo.lookups)
}
