package ledger_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"supplierledger/internal/ledger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ── In-memory ProviderAPI stub ────────────────────────────────────────────────

type detailError struct {
	status int
	detail string
}

func (e *detailError) Error() string        { return "backend api: status " + statusText(e.status) }
func (e *detailError) ServerDetail() string { return e.detail }

func statusText(status int) string {
	switch status {
	case 409:
		return "409 Conflict"
	case 500:
		return "500 Internal Server Error"
	default:
		return "error"
	}
}

type stubAPI struct {
	mu        sync.Mutex
	providers map[uint]ledger.Provider
	order     []uint
	nextID    uint

	listErr   error
	createErr error
	updateErr error
	toggleErr error
	getErr    error

	calls []string
}

func newStubAPI(seed ...ledger.Provider) *stubAPI {
	api := &stubAPI{providers: make(map[uint]ledger.Provider), nextID: 1}
	for _, p := range seed {
		api.providers[p.ID] = p
		api.order = append(api.order, p.ID)
		if p.ID >= api.nextID {
			api.nextID = p.ID + 1
		}
	}
	return api
}

func (a *stubAPI) record(call string) {
	a.calls = append(a.calls, call)
}

func (a *stubAPI) ListProviders(_ context.Context) ([]ledger.Provider, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.record("list")
	if a.listErr != nil {
		return nil, a.listErr
	}
	out := make([]ledger.Provider, 0, len(a.order))
	for _, id := range a.order {
		out = append(out, a.providers[id])
	}
	return out, nil
}

func (a *stubAPI) GetProvider(_ context.Context, id uint) (ledger.Provider, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.record("get")
	if a.getErr != nil {
		return ledger.Provider{}, a.getErr
	}
	p, ok := a.providers[id]
	if !ok {
		return ledger.Provider{}, ledger.ErrProviderNotFound
	}
	return p, nil
}

func (a *stubAPI) CreateProvider(_ context.Context, in ledger.ProviderInput) (ledger.Provider, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.record("create")
	if a.createErr != nil {
		return ledger.Provider{}, a.createErr
	}
	p := ledger.Provider{
		ID:          a.nextID,
		Document:    in.Document,
		Name:        in.Name,
		ContactName: in.ContactName,
		Email:       in.Email,
		City:        in.City,
		IsActive:    true,
		CreatedAt:   time.Now(),
	}
	a.nextID++
	a.providers[p.ID] = p
	a.order = append(a.order, p.ID)
	return p, nil
}

func (a *stubAPI) UpdateProvider(_ context.Context, id uint, in ledger.ProviderInput) (ledger.Provider, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.record("update")
	if a.updateErr != nil {
		return ledger.Provider{}, a.updateErr
	}
	p, ok := a.providers[id]
	if !ok {
		return ledger.Provider{}, ledger.ErrProviderNotFound
	}
	p.Document, p.Name, p.Email, p.City, p.ContactName = in.Document, in.Name, in.Email, in.City, in.ContactName
	a.providers[id] = p
	return p, nil
}

func (a *stubAPI) setActive(id uint, active bool, call string) (ledger.Provider, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.record(call)
	if a.toggleErr != nil {
		return ledger.Provider{}, a.toggleErr
	}
	p, ok := a.providers[id]
	if !ok {
		return ledger.Provider{}, ledger.ErrProviderNotFound
	}
	p.IsActive = active
	a.providers[id] = p
	return p, nil
}

func (a *stubAPI) DeactivateProvider(_ context.Context, id uint) (ledger.Provider, error) {
	return a.setActive(id, false, "deactivate")
}

func (a *stubAPI) ActivateProvider(_ context.Context, id uint) (ledger.Provider, error) {
	return a.setActive(id, true, "activate")
}

var _ ledger.ProviderAPI = (*stubAPI)(nil)

// ── Helpers ───────────────────────────────────────────────────────────────────

var (
	t1 = time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	t2 = time.Date(2024, 3, 2, 10, 0, 0, 0, time.UTC)
	t3 = time.Date(2024, 3, 3, 10, 0, 0, 0, time.UTC)
)

func acme() ledger.Provider {
	return ledger.Provider{ID: 1, Document: "30-11111111-1", Name: "Acme", City: "Rosario", Email: "ventas@acme.com", IsActive: true, CreatedAt: t1}
}

func beta() ledger.Provider {
	return ledger.Provider{ID: 2, Document: "30-22222222-2", Name: "Beta", City: "Cordoba", ContactName: "Laura Diaz", IsActive: false, CreatedAt: t2}
}

func fetchedStore(t *testing.T, api *stubAPI, opts ...ledger.Option) *ledger.Store {
	t.Helper()
	s := ledger.NewStore(api, opts...)
	require.NoError(t, s.FetchProviders(context.Background()))
	return s
}

func validInput(doc, name string) ledger.ProviderInput {
	return ledger.ProviderInput{Document: doc, Name: name, Email: "contacto@example.com", City: "Mendoza"}
}

// ── Fetch Tests ───────────────────────────────────────────────────────────────

func TestFetchProviders_ReplacesCollection(t *testing.T) {
	api := newStubAPI(acme(), beta())
	s := fetchedStore(t, api)

	assert.Len(t, s.Providers(), 2)
	assert.False(t, s.Loading())
	assert.NoError(t, s.LastError())

	// A later fetch replaces, it does not merge.
	api.mu.Lock()
	delete(api.providers, 2)
	api.order = []uint{1}
	api.mu.Unlock()

	require.NoError(t, s.FetchProviders(context.Background()))
	list := s.Providers()
	require.Len(t, list, 1)
	assert.Equal(t, "Acme", list[0].Name)
}

func TestFetchProviders_FailureKeepsList(t *testing.T) {
	api := newStubAPI(acme())
	s := fetchedStore(t, api)

	api.listErr = errors.New("connection refused")
	err := s.FetchProviders(context.Background())

	require.Error(t, err)
	assert.ErrorContains(t, err, "connection refused")
	assert.Len(t, s.Providers(), 1)
	assert.EqualError(t, s.LastError(), "connection refused")
	assert.False(t, s.Loading())

	// The next successful fetch clears the error.
	api.listErr = nil
	require.NoError(t, s.FetchProviders(context.Background()))
	assert.NoError(t, s.LastError())
}

func TestFetchProviders_ConcurrentCallsLeaveLoadingFalse(t *testing.T) {
	s := ledger.NewStore(newStubAPI(acme(), beta()))

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = s.FetchProviders(context.Background())
			_ = s.FilteredProviders()
		}()
	}
	wg.Wait()

	assert.False(t, s.Loading())
	assert.Len(t, s.Providers(), 2)
}

// ── Lookup Tests ──────────────────────────────────────────────────────────────

func TestProviderByKey(t *testing.T) {
	s := fetchedStore(t, newStubAPI(acme(), beta()))

	p, ok := s.ProviderByKey("2")
	require.True(t, ok)
	assert.Equal(t, "Beta", p.Name)

	p, ok = s.ProviderByKey(" 1 ")
	require.True(t, ok)
	assert.Equal(t, "Acme", p.Name)

	for _, key := range []string{"", "abc", "-1", "0", "99", "1.5"} {
		_, ok := s.ProviderByKey(key)
		assert.False(t, ok, "key %q", key)
	}
}

// ── Create / Update Tests ─────────────────────────────────────────────────────

func TestAddProvider_AppendsServerRecord(t *testing.T) {
	api := newStubAPI(acme())
	s := fetchedStore(t, api)

	r := s.AddProvider(context.Background(), validInput("30-33333333-3", "Gamma SRL"))

	require.True(t, r.Success, r.Error)
	assert.Equal(t, uint(2), r.Data.ID)
	assert.True(t, r.Data.IsActive)

	list := s.Providers()
	require.Len(t, list, 2)
	assert.Equal(t, "Gamma SRL", list[1].Name)
}

func TestAddProvider_ValidationFailureSkipsBackend(t *testing.T) {
	api := newStubAPI()
	s := ledger.NewStore(api)

	r := s.AddProvider(context.Background(), ledger.ProviderInput{Document: "12", Name: "X", Email: "not-an-email"})

	assert.False(t, r.Success)
	assert.Equal(t, ledger.KindValidation, r.Kind)
	assert.Contains(t, r.Fields, "document")
	assert.Contains(t, r.Fields, "name")
	assert.Contains(t, r.Fields, "email")
	assert.ErrorIs(t, r.Err(), ledger.ErrInvalidInput)
	assert.Empty(t, api.calls)
	assert.Empty(t, s.Providers())
}

func TestAddProvider_PrefersServerDetail(t *testing.T) {
	api := newStubAPI()
	api.createErr = &detailError{status: 409, detail: "Ya existe un proveedor con ese documento"}
	s := ledger.NewStore(api)

	r := s.AddProvider(context.Background(), validInput("30-33333333-3", "Gamma SRL"))

	assert.False(t, r.Success)
	assert.Equal(t, ledger.KindBackend, r.Kind)
	assert.Equal(t, "Ya existe un proveedor con ese documento", r.Error)
	assert.Empty(t, s.Providers())
}

func TestAddProvider_FallsBackToTransportMessage(t *testing.T) {
	api := newStubAPI()
	api.createErr = errors.New("dial tcp: connection refused")
	s := ledger.NewStore(api)

	r := s.AddProvider(context.Background(), validInput("30-33333333-3", "Gamma SRL"))

	assert.False(t, r.Success)
	assert.Equal(t, ledger.KindBackend, r.Kind)
	assert.Equal(t, "dial tcp: connection refused", r.Error)
}

func TestUpdateProvider_ReplacesInPlace(t *testing.T) {
	s := fetchedStore(t, newStubAPI(acme(), beta()))

	in := acme().Input()
	in.Name = "Acme Argentina"
	r := s.UpdateProvider(context.Background(), 1, in)

	require.True(t, r.Success, r.Error)
	list := s.Providers()
	require.Len(t, list, 2)
	assert.Equal(t, "Acme Argentina", list[0].Name)
	assert.Equal(t, "Beta", list[1].Name)
}

func TestUpdateProvider_FailureLeavesStateUntouched(t *testing.T) {
	api := newStubAPI(acme())
	s := fetchedStore(t, api)
	api.updateErr = &detailError{status: 500, detail: ""}

	in := acme().Input()
	in.Name = "Otro nombre"
	r := s.UpdateProvider(context.Background(), 1, in)

	assert.False(t, r.Success)
	assert.Equal(t, "backend api: status 500 Internal Server Error", r.Error)
	p, _ := s.ProviderByID(1)
	assert.Equal(t, "Acme", p.Name)
}

func TestUpdateProvider_NotFoundKind(t *testing.T) {
	s := fetchedStore(t, newStubAPI(acme()))

	r := s.UpdateProvider(context.Background(), 42, validInput("30-44444444-4", "Nadie"))

	assert.False(t, r.Success)
	assert.Equal(t, ledger.KindNotFound, r.Kind)
	assert.ErrorIs(t, r.Err(), ledger.ErrProviderNotFound)
}

// ── Toggle Tests ──────────────────────────────────────────────────────────────

func TestToggleProviderStatus_CallsMatchingEndpoint(t *testing.T) {
	api := newStubAPI(acme(), beta())
	s := fetchedStore(t, api)

	r := s.ToggleProviderStatus(context.Background(), 1)
	require.True(t, r.Success, r.Error)
	assert.False(t, r.Data.IsActive)

	r = s.ToggleProviderStatus(context.Background(), 2)
	require.True(t, r.Success, r.Error)
	assert.True(t, r.Data.IsActive)

	assert.Equal(t, []string{"list", "deactivate", "activate"}, api.calls)
}

func TestToggleProviderStatus_TwiceRestores(t *testing.T) {
	s := fetchedStore(t, newStubAPI(acme()))

	require.True(t, s.ToggleProviderStatus(context.Background(), 1).Success)
	require.True(t, s.ToggleProviderStatus(context.Background(), 1).Success)

	p, ok := s.ProviderByID(1)
	require.True(t, ok)
	assert.True(t, p.IsActive)
}

func TestToggleProviderStatus_UnknownProvider(t *testing.T) {
	api := newStubAPI(acme())
	s := fetchedStore(t, api)

	r := s.ToggleProviderStatus(context.Background(), 99)

	assert.False(t, r.Success)
	assert.Equal(t, ledger.KindNotFound, r.Kind)
	assert.ErrorIs(t, r.Err(), ledger.ErrProviderNotFound)
	assert.Equal(t, []string{"list"}, api.calls)
}

func TestToggleProviderStatus_BackendFailureKeepsFlag(t *testing.T) {
	api := newStubAPI(acme())
	s := fetchedStore(t, api)
	api.toggleErr = errors.New("timeout")

	r := s.ToggleProviderStatus(context.Background(), 1)

	assert.False(t, r.Success)
	assert.Equal(t, ledger.KindBackend, r.Kind)
	p, _ := s.ProviderByID(1)
	assert.True(t, p.IsActive)
}

func TestToggleProviderStatus_ReconcilesWhenEnabled(t *testing.T) {
	api := newStubAPI(acme())
	s := fetchedStore(t, api, ledger.WithReconcileOnToggle(true))

	// Another client renamed the provider since our fetch.
	api.mu.Lock()
	p := api.providers[1]
	p.Name = "Acme Renombrada"
	api.providers[1] = p
	api.mu.Unlock()

	r := s.ToggleProviderStatus(context.Background(), 1)

	require.True(t, r.Success, r.Error)
	assert.False(t, r.Data.IsActive)
	assert.Equal(t, "Acme Renombrada", r.Data.Name)
	assert.Equal(t, []string{"list", "deactivate", "get"}, api.calls)

	local, _ := s.ProviderByID(1)
	assert.Equal(t, "Acme Renombrada", local.Name)
}

func TestToggleProviderStatus_ReconcileFailureKeepsOptimisticState(t *testing.T) {
	api := newStubAPI(acme())
	s := fetchedStore(t, api, ledger.WithReconcileOnToggle(true))
	api.getErr = errors.New("unavailable")

	r := s.ToggleProviderStatus(context.Background(), 1)

	require.True(t, r.Success)
	assert.False(t, r.Data.IsActive)
	local, _ := s.ProviderByID(1)
	assert.False(t, local.IsActive)
}

func TestReconcileProvider_AddsUnknownRecord(t *testing.T) {
	api := newStubAPI(acme())
	s := ledger.NewStore(api)

	r := s.ReconcileProvider(context.Background(), 1)

	require.True(t, r.Success)
	_, ok := s.ProviderByID(1)
	assert.True(t, ok)
}
