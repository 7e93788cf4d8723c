package repository

import (
	"context"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/BruksfildServices01/nail-scheduler/internal/models"
)

// CatalogueGormRepository serves the service catalogue and single price
// list rows.
type CatalogueGormRepository struct {
	db *gorm.DB
}

func NewCatalogueGormRepository(db *gorm.DB) *CatalogueGormRepository {
	return &CatalogueGormRepository{db: db}
}

// --------------------------------------------------
// Services
// --------------------------------------------------

// ListServices returns services ordered by name, optionally filtered by a
// case-insensitive substring of the name.
func (r *CatalogueGormRepository) ListServices(
	ctx context.Context,
	name string,
) ([]models.Service, error) {

	q := r.db.WithContext(ctx)
	if name = strings.TrimSpace(name); name != "" {
		q = q.Where(nameContains, containsPattern(name))
	}

	var services []models.Service
	if err := q.Order("name ASC").Find(&services).Error; err != nil {
		return nil, err
	}
	return services, nil
}

// PageServices is ListServices one page at a time. total counts every match.
func (r *CatalogueGormRepository) PageServices(
	ctx context.Context,
	name string,
	limit int,
	offset int,
) ([]models.Service, int64, error) {

	base := func() *gorm.DB {
		q := r.db.WithContext(ctx).Model(&models.Service{})
		if name = strings.TrimSpace(name); name != "" {
			q = q.Where(nameContains, containsPattern(name))
		}
		return q
	}

	var total int64
	if err := base().Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var services []models.Service
	if err := base().
		Order("name ASC").
		Order("id ASC").
		Limit(limit).
		Offset(offset).
		Find(&services).Error; err != nil {
		return nil, 0, err
	}
	return services, total, nil
}

func (r *CatalogueGormRepository) GetService(
	ctx context.Context,
	id uint,
) (*models.Service, error) {

	var svc models.Service
	if err := r.db.WithContext(ctx).First(&svc, id).Error; err != nil {
		return nil, err
	}
	return &svc, nil
}

func (r *CatalogueGormRepository) CreateService(
	ctx context.Context,
	svc *models.Service,
) error {
	return r.db.WithContext(ctx).Create(svc).Error
}

func (r *CatalogueGormRepository) UpdateService(
	ctx context.Context,
	svc *models.Service,
) error {
	return r.db.WithContext(ctx).Save(svc).Error
}

// DeleteService removes the service along with the price list rows and
// customer choices that reference it.
func (r *CatalogueGormRepository) DeleteService(
	ctx context.Context,
	id uint,
) error {

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, dep := range []any{&models.PriceList{}, &models.CustomerService{}} {
			if err := tx.Where("service_id = ?", id).Delete(dep).Error; err != nil {
				return err
			}
		}
		res := tx.Delete(&models.Service{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

// --------------------------------------------------
// Price list rows
// --------------------------------------------------

func (r *CatalogueGormRepository) GetPrice(
	ctx context.Context,
	id uint,
) (*models.PriceList, error) {

	var price models.PriceList
	if err := r.db.WithContext(ctx).
		Preload("Master").
		Preload("Service").
		First(&price, id).Error; err != nil {
		return nil, err
	}
	return &price, nil
}

func (r *CatalogueGormRepository) CreatePrice(
	ctx context.Context,
	price *models.PriceList,
) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(price).Error
}

func (r *CatalogueGormRepository) UpdatePrice(
	ctx context.Context,
	price *models.PriceList,
) error {
	return r.db.WithContext(ctx).
		Model(price).
		Select("price", "duration_min").
		Updates(map[string]any{
			"price":        price.Price,
			"duration_min": price.DurationMin,
		}).Error
}

func (r *CatalogueGormRepository) DeletePrice(
	ctx context.Context,
	id uint,
) error {
	return r.db.WithContext(ctx).Delete(&models.PriceList{}, id).Error
}

// --------------------------------------------------
// Dashboard
// --------------------------------------------------

type Stats struct {
	Users     int64
	Masters   int64
	Customers int64
	Services  int64
	Events    int64
}

// Stats counts rows on demand; nothing is cached.
func (r *CatalogueGormRepository) Stats(ctx context.Context) (Stats, error) {
	var s Stats
	db := r.db.WithContext(ctx)

	counts := []struct {
		model any
		dst   *int64
	}{
		{&models.User{}, &s.Users},
		{&models.Master{}, &s.Masters},
		{&models.Customer{}, &s.Customers},
		{&models.Service{}, &s.Services},
		{&models.Event{}, &s.Events},
	}
	for _, c := range counts {
		if err := db.Model(c.model).Count(c.dst).Error; err != nil {
			return Stats{}, err
		}
	}
	return s, nil
}

// AllMasters lists every master with its user, for pickers.
func (r *CatalogueGormRepository) AllMasters(ctx context.Context) ([]models.Master, error) {
	var masters []models.Master
	if err := withRole(r.db.WithContext(ctx), "masters", models.RoleMaster).
		Preload("User").
		Order("masters.id ASC").
		Find(&masters).Error; err != nil {
		return nil, err
	}
	return masters, nil
}
