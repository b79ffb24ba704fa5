package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"supplierledger/internal/dto"
	"supplierledger/internal/model"
	"supplierledger/internal/repository"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

var (
	ErrProviderNotFound = errors.New("proveedor no encontrado")
	ErrDocumentTaken    = errors.New("ya existe un proveedor con ese documento")
)

const (
	cacheKeyCities    = "providers:cities"
	cacheKeyCountries = "providers:countries"
)

// ProviderService defines business operations for providers.
type ProviderService interface {
	Create(ctx context.Context, req dto.ProviderRequest) (*dto.ProviderResponse, error)
	GetByID(ctx context.Context, id uint) (*dto.ProviderResponse, error)
	List(ctx context.Context) ([]dto.ProviderResponse, error)
	ListActive(ctx context.Context) ([]dto.ProviderResponse, error)
	Search(ctx context.Context, q string) ([]dto.ProviderResponse, error)
	Update(ctx context.Context, id uint, req dto.ProviderRequest) (*dto.ProviderResponse, error)
	Deactivate(ctx context.Context, id uint) (*dto.ProviderResponse, error)
	Activate(ctx context.Context, id uint) (*dto.ProviderResponse, error)
	Cities(ctx context.Context) ([]string, error)
	Countries(ctx context.Context) ([]string, error)
}

type providerService struct {
	repo     repository.ProviderRepository
	rdb      *redis.Client // optional; nil disables the lookup cache
	cacheTTL time.Duration
}

func NewProviderService(repo repository.ProviderRepository, rdb *redis.Client, cacheTTL time.Duration) ProviderService {
	return &providerService{repo: repo, rdb: rdb, cacheTTL: cacheTTL}
}

func mapProvider(p model.Provider) dto.ProviderResponse {
	return dto.ProviderResponse{
		ID:           p.ID,
		Document:     p.Document,
		Name:         p.Name,
		BusinessName: p.BusinessName,
		ContactName:  p.ContactName,
		Email:        p.Email,
		Phone:        p.Phone,
		Mobile:       p.Mobile,
		Address:      p.Address,
		City:         p.City,
		Country:      p.Country,
		PaymentTerms: p.PaymentTerms,
		PaymentDays:  p.PaymentDays,
		IsActive:     p.IsActive,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
}

func mapProviders(list []model.Provider) []dto.ProviderResponse {
	out := make([]dto.ProviderResponse, 0, len(list))
	for _, p := range list {
		out = append(out, mapProvider(p))
	}
	return out
}

func applyRequest(p *model.Provider, req dto.ProviderRequest) {
	p.Document = req.Document
	p.Name = req.Name
	p.BusinessName = req.BusinessName
	p.ContactName = req.ContactName
	p.Email = req.Email
	p.Phone = req.Phone
	p.Mobile = req.Mobile
	p.Address = req.Address
	p.City = req.City
	p.Country = req.Country
	p.PaymentTerms = req.PaymentTerms
	p.PaymentDays = req.PaymentDays
}

func (s *providerService) Create(ctx context.Context, req dto.ProviderRequest) (*dto.ProviderResponse, error) {
	if err := s.ensureDocumentFree(ctx, req.Document, 0); err != nil {
		return nil, err
	}

	p := &model.Provider{IsActive: true}
	applyRequest(p, req)
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	s.invalidateLookups(ctx)

	resp := mapProvider(*p)
	return &resp, nil
}

func (s *providerService) GetByID(ctx context.Context, id uint) (*dto.ProviderResponse, error) {
	p, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := mapProvider(*p)
	return &resp, nil
}

func (s *providerService) List(ctx context.Context) ([]dto.ProviderResponse, error) {
	list, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	return mapProviders(list), nil
}

func (s *providerService) ListActive(ctx context.Context) ([]dto.ProviderResponse, error) {
	list, err := s.repo.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	return mapProviders(list), nil
}

func (s *providerService) Search(ctx context.Context, q string) ([]dto.ProviderResponse, error) {
	list, err := s.repo.Search(ctx, q)
	if err != nil {
		return nil, err
	}
	return mapProviders(list), nil
}

func (s *providerService) Update(ctx context.Context, id uint, req dto.ProviderRequest) (*dto.ProviderResponse, error) {
	p, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Document != p.Document {
		if err := s.ensureDocumentFree(ctx, req.Document, id); err != nil {
			return nil, err
		}
	}

	applyRequest(p, req)
	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	s.invalidateLookups(ctx)

	resp := mapProvider(*p)
	return &resp, nil
}

func (s *providerService) Deactivate(ctx context.Context, id uint) (*dto.ProviderResponse, error) {
	return s.setActive(ctx, id, false)
}

func (s *providerService) Activate(ctx context.Context, id uint) (*dto.ProviderResponse, error) {
	return s.setActive(ctx, id, true)
}

func (s *providerService) setActive(ctx context.Context, id uint, active bool) (*dto.ProviderResponse, error) {
	if _, err := s.find(ctx, id); err != nil {
		return nil, err
	}
	if err := s.repo.SetActive(ctx, id, active); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProviderNotFound
		}
		return nil, err
	}
	return s.GetByID(ctx, id)
}

func (s *providerService) Cities(ctx context.Context) ([]string, error) {
	return s.cachedLookup(ctx, cacheKeyCities, s.repo.DistinctCities)
}

func (s *providerService) Countries(ctx context.Context) ([]string, error) {
	return s.cachedLookup(ctx, cacheKeyCountries, s.repo.DistinctCountries)
}

// ── Helpers ───────────────────────────────────────────────────────────────────

func (s *providerService) find(ctx context.Context, id uint) (*model.Provider, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProviderNotFound
		}
		return nil, err
	}
	return p, nil
}

// ensureDocumentFree fails when another provider (other than selfID) owns document.
func (s *providerService) ensureDocumentFree(ctx context.Context, document string, selfID uint) error {
	existing, err := s.repo.FindByDocument(ctx, document)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return err
	}
	if existing != nil && existing.ID != selfID {
		return ErrDocumentTaken
	}
	return nil
}

// cachedLookup reads a string list from Redis, falling back to load on a miss.
// Cache failures are logged and never fail the request.
func (s *providerService) cachedLookup(ctx context.Context, key string, load func(context.Context) ([]string, error)) ([]string, error) {
	if s.rdb != nil {
		if cached, err := s.rdb.Get(ctx, key).Bytes(); err == nil {
			var out []string
			if jsonErr := json.Unmarshal(cached, &out); jsonErr == nil {
				return out, nil
			}
		}
	}

	out, err := load(ctx)
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []string{}
	}

	if s.rdb != nil {
		if b, jsonErr := json.Marshal(out); jsonErr == nil {
			if err := s.rdb.Set(ctx, key, b, s.cacheTTL).Err(); err != nil {
				log.Warn().Err(err).Str("key", key).Msg("lookup cache write failed")
			}
		}
	}
	return out, nil
}

func (s *providerService) invalidateLookups(ctx context.Context) {
	if s.rdb == nil {
		return
	}
	if err := s.rdb.Del(ctx, cacheKeyCities, cacheKeyCountries).Err(); err != nil {
		log.Warn().Err(err).Msg("lookup cache invalidation failed")
	}
}
