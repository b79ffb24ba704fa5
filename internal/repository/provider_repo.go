package repository

import (
	"context"
	"strings"

	"supplierledger/internal/model"

	"gorm.io/gorm"
)

// ProviderRepository defines the data access contract for providers.
// Services depend on this interface, not on the concrete GORM implementation,
// enabling unit testing with in-memory stubs.
type ProviderRepository interface {
	Create(ctx context.Context, p *model.Provider) error
	FindByID(ctx context.Context, id uint) (*model.Provider, error)
	FindByDocument(ctx context.Context, document string) (*model.Provider, error)
	List(ctx context.Context) ([]model.Provider, error)
	ListActive(ctx context.Context) ([]model.Provider, error)
	Search(ctx context.Context, q string) ([]model.Provider, error)
	Update(ctx context.Context, p *model.Provider) error
	SetActive(ctx context.Context, id uint, active bool) error
	DistinctCities(ctx context.Context) ([]string, error)
	DistinctCountries(ctx context.Context) ([]string, error)
}

type providerRepo struct{ db *gorm.DB }

func NewProviderRepository(db *gorm.DB) ProviderRepository { return &providerRepo{db: db} }

func (r *providerRepo) Create(ctx context.Context, p *model.Provider) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *providerRepo) FindByID(ctx context.Context, id uint) (*model.Provider, error) {
	var p model.Provider
	if err := r.db.WithContext(ctx).First(&p, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *providerRepo) FindByDocument(ctx context.Context, document string) (*model.Provider, error) {
	var p model.Provider
	if err := r.db.WithContext(ctx).Where("document = ?", document).First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

// List returns every provider, active or not, oldest first.
func (r *providerRepo) List(ctx context.Context) ([]model.Provider, error) {
	var list []model.Provider
	err := r.db.WithContext(ctx).Order("id asc").Find(&list).Error
	return list, err
}

func (r *providerRepo) ListActive(ctx context.Context) ([]model.Provider, error) {
	var list []model.Provider
	err := r.db.WithContext(ctx).Where("is_active = true").Order("name asc").Find(&list).Error
	return list, err
}

func (r *providerRepo) Search(ctx context.Context, q string) ([]model.Provider, error) {
	var list []model.Provider
	like := "%" + strings.ToLower(strings.TrimSpace(q)) + "%"
	err := r.db.WithContext(ctx).
		Where("lower(name) LIKE ? OR lower(document) LIKE ? OR lower(email) LIKE ? OR lower(city) LIKE ? OR lower(contact_name) LIKE ?",
			like, like, like, like, like).
		Order("name asc").
		Find(&list).Error
	return list, err
}

func (r *providerRepo) Update(ctx context.Context, p *model.Provider) error {
	return r.db.WithContext(ctx).Save(p).Error
}

func (r *providerRepo) SetActive(ctx context.Context, id uint, active bool) error {
	res := r.db.WithContext(ctx).Model(&model.Provider{}).Where("id = ?", id).Update("is_active", active)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *providerRepo) DistinctCities(ctx context.Context) ([]string, error) {
	return r.distinct(ctx, "city")
}

func (r *providerRepo) DistinctCountries(ctx context.Context) ([]string, error) {
	return r.distinct(ctx, "country")
}

func (r *providerRepo) distinct(ctx context.Context, column string) ([]string, error) {
	var out []string
	err := r.db.WithContext(ctx).
		Model(&model.Provider{}).
		Where(column+" <> ''").
		Distinct(column).
		Order(column+" asc").
		Pluck(column, &out).Error
	return out, err
}
