package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	domain "github.com/BruksfildServices01/nail-scheduler/internal/domain/profile"
	"github.com/BruksfildServices01/nail-scheduler/internal/models"
)

type ProfileGormRepository struct {
	db *gorm.DB
}

func NewProfileGormRepository(db *gorm.DB) *ProfileGormRepository {
	return &ProfileGormRepository{db: db}
}

// --------------------------------------------------
// Catalogue
// --------------------------------------------------

func (r *ProfileGormRepository) ServicesByID(
	ctx context.Context,
	ids []uint,
) (map[uint]models.Service, error) {

	out := make(map[uint]models.Service, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	var services []models.Service
	if err := r.db.WithContext(ctx).
		Where("id IN ?", ids).
		Find(&services).Error; err != nil {
		return nil, err
	}
	for _, s := range services {
		out[s.ID] = s
	}
	return out, nil
}

// --------------------------------------------------
// Master
// --------------------------------------------------

func (r *ProfileGormRepository) CreateMaster(
	ctx context.Context,
	user *models.User,
	master *models.Master,
	prices []models.PriceList,
) error {

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(user).Error; err != nil {
			return err
		}

		master.UserID = user.ID
		if err := tx.Omit(clause.Associations).Create(master).Error; err != nil {
			return err
		}
		master.User = *user

		if err := insertPrices(tx, master.ID, prices); err != nil {
			return err
		}
		master.PriceList = prices
		return nil
	})
}

func (r *ProfileGormRepository) GetMaster(
	ctx context.Context,
	id uint,
) (*models.Master, error) {

	var master models.Master
	if err := withRole(r.db.WithContext(ctx), "masters", models.RoleMaster).
		Preload("User").
		Preload("PriceList", func(db *gorm.DB) *gorm.DB {
			return db.Order("price_lists.service_id ASC")
		}).
		Preload("PriceList.Service").
		First(&master, id).Error; err != nil {
		return nil, err
	}
	return &master, nil
}

func (r *ProfileGormRepository) GetMasterByUserID(
	ctx context.Context,
	userID uint,
) (*models.Master, error) {

	var master models.Master
	if err := withRole(r.db.WithContext(ctx), "masters", models.RoleMaster).
		Preload("User").
		Where("masters.user_id = ?", userID).
		First(&master).Error; err != nil {
		return nil, err
	}
	return &master, nil
}

func (r *ProfileGormRepository) ListMasters(
	ctx context.Context,
	filter domain.ListFilter,
) ([]models.Master, int64, error) {

	filter = filter.Normalize()

	base := func() *gorm.DB {
		q := r.db.WithContext(ctx).
			Model(&models.Master{}).
			Joins("JOIN users ON users.id = masters.user_id").
			Where("users.role = ?", models.RoleMaster)
		if filter.Username != "" {
			q = q.Where(usernameContains, containsPattern(filter.Username))
		}
		return q
	}

	var total int64
	if err := base().Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var masters []models.Master
	if err := base().
		Preload("User").
		Order("masters.id ASC").
		Limit(filter.PageSize).
		Offset(filter.Offset()).
		Find(&masters).Error; err != nil {
		return nil, 0, err
	}
	return masters, total, nil
}

func (r *ProfileGormRepository) UpdateMaster(
	ctx context.Context,
	master *models.Master,
	prices []models.PriceList,
) error {

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Save(&master.User).Error; err != nil {
			return err
		}
		if err := tx.Omit(clause.Associations).Save(master).Error; err != nil {
			return err
		}

		if prices == nil {
			return nil
		}
		if err := tx.Where("master_id = ?", master.ID).Delete(&models.PriceList{}).Error; err != nil {
			return err
		}
		if err := insertPrices(tx, master.ID, prices); err != nil {
			return err
		}
		master.PriceList = prices
		return nil
	})
}

func (r *ProfileGormRepository) DeleteMaster(
	ctx context.Context,
	id uint,
) error {

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var master models.Master
		if err := tx.First(&master, id).Error; err != nil {
			return err
		}

		// the FK cascades cover this too; deleting explicitly keeps stores
		// without enforced foreign keys free of orphans
		for _, dep := range []any{&models.PriceList{}, &models.Event{}, &models.CustomerMaster{}} {
			if err := tx.Where("master_id = ?", master.ID).Delete(dep).Error; err != nil {
				return err
			}
		}

		if err := tx.Delete(&models.Master{}, master.ID).Error; err != nil {
			return err
		}
		return tx.Delete(&models.User{}, master.UserID).Error
	})
}

func (r *ProfileGormRepository) MastersByID(
	ctx context.Context,
	ids []uint,
) (map[uint]models.Master, error) {

	out := make(map[uint]models.Master, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	var masters []models.Master
	if err := r.db.WithContext(ctx).
		Where("id IN ?", ids).
		Find(&masters).Error; err != nil {
		return nil, err
	}
	for _, m := range masters {
		out[m.ID] = m
	}
	return out, nil
}

func (r *ProfileGormRepository) ListMasterCustomers(
	ctx context.Context,
	masterID uint,
) ([]models.Customer, error) {

	var customers []models.Customer
	if err := r.db.WithContext(ctx).
		Joins("JOIN customer_masters ON customer_masters.customer_id = customers.id").
		Where("customer_masters.master_id = ?", masterID).
		Preload("User").
		Order("customers.id ASC").
		Find(&customers).Error; err != nil {
		return nil, err
	}
	return customers, nil
}

// --------------------------------------------------
// Customer
// --------------------------------------------------

func (r *ProfileGormRepository) CreateCustomer(
	ctx context.Context,
	user *models.User,
	customer *models.Customer,
) error {

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(user).Error; err != nil {
			return err
		}

		customer.UserID = user.ID
		if err := tx.Omit(clause.Associations).Create(customer).Error; err != nil {
			return err
		}
		customer.User = *user
		return nil
	})
}

func (r *ProfileGormRepository) GetCustomer(
	ctx context.Context,
	id uint,
) (*models.Customer, error) {

	var customer models.Customer
	if err := withRole(r.db.WithContext(ctx), "customers", models.RoleCustomer).
		Preload("User").
		First(&customer, id).Error; err != nil {
		return nil, err
	}
	return &customer, nil
}

func (r *ProfileGormRepository) GetCustomerByUserID(
	ctx context.Context,
	userID uint,
) (*models.Customer, error) {

	var customer models.Customer
	if err := withRole(r.db.WithContext(ctx), "customers", models.RoleCustomer).
		Preload("User").
		Where("customers.user_id = ?", userID).
		First(&customer).Error; err != nil {
		return nil, err
	}
	return &customer, nil
}

func (r *ProfileGormRepository) ListCustomers(
	ctx context.Context,
	filter domain.ListFilter,
) ([]models.Customer, int64, error) {

	filter = filter.Normalize()

	base := func() *gorm.DB {
		q := r.db.WithContext(ctx).
			Model(&models.Customer{}).
			Joins("JOIN users ON users.id = customers.user_id").
			Where("users.role = ?", models.RoleCustomer)
		if filter.Username != "" {
			q = q.Where(usernameContains, containsPattern(filter.Username))
		}
		return q
	}

	var total int64
	if err := base().Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var customers []models.Customer
	if err := base().
		Preload("User").
		Order("customers.id ASC").
		Limit(filter.PageSize).
		Offset(filter.Offset()).
		Find(&customers).Error; err != nil {
		return nil, 0, err
	}
	return customers, total, nil
}

func (r *ProfileGormRepository) UpdateCustomer(
	ctx context.Context,
	customer *models.Customer,
	serviceIDs []uint,
	masterIDs []uint,
) error {

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Save(&customer.User).Error; err != nil {
			return err
		}
		if err := tx.Omit(clause.Associations).Save(customer).Error; err != nil {
			return err
		}

		if err := tx.Where("customer_id = ?", customer.ID).Delete(&models.CustomerService{}).Error; err != nil {
			return err
		}
		if len(serviceIDs) > 0 {
			rows := make([]models.CustomerService, 0, len(serviceIDs))
			for _, id := range serviceIDs {
				rows = append(rows, models.CustomerService{CustomerID: customer.ID, ServiceID: id})
			}
			if err := tx.Omit(clause.Associations).Create(&rows).Error; err != nil {
				return err
			}
		}

		if err := tx.Where("customer_id = ?", customer.ID).Delete(&models.CustomerMaster{}).Error; err != nil {
			return err
		}
		if len(masterIDs) > 0 {
			rows := make([]models.CustomerMaster, 0, len(masterIDs))
			for _, id := range masterIDs {
				rows = append(rows, models.CustomerMaster{CustomerID: customer.ID, MasterID: id})
			}
			if err := tx.Omit(clause.Associations).Create(&rows).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *ProfileGormRepository) DeleteCustomer(
	ctx context.Context,
	id uint,
) error {

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var customer models.Customer
		if err := tx.First(&customer, id).Error; err != nil {
			return err
		}

		for _, dep := range []any{&models.CustomerService{}, &models.CustomerMaster{}} {
			if err := tx.Where("customer_id = ?", customer.ID).Delete(dep).Error; err != nil {
				return err
			}
		}

		if err := tx.Delete(&models.Customer{}, customer.ID).Error; err != nil {
			return err
		}
		return tx.Delete(&models.User{}, customer.UserID).Error
	})
}

func (r *ProfileGormRepository) ListCustomerServices(
	ctx context.Context,
	customerID uint,
) ([]models.Service, error) {

	var services []models.Service
	if err := r.db.WithContext(ctx).
		Joins("JOIN customer_services ON customer_services.service_id = services.id").
		Where("customer_services.customer_id = ?", customerID).
		Order("services.name ASC").
		Find(&services).Error; err != nil {
		return nil, err
	}
	return services, nil
}

func (r *ProfileGormRepository) ListCustomerMasters(
	ctx context.Context,
	customerID uint,
) ([]models.Master, error) {

	var masters []models.Master
	if err := r.db.WithContext(ctx).
		Joins("JOIN customer_masters ON customer_masters.master_id = masters.id").
		Where("customer_masters.customer_id = ?", customerID).
		Preload("User").
		Order("masters.id ASC").
		Find(&masters).Error; err != nil {
		return nil, err
	}
	return masters, nil
}

func insertPrices(tx *gorm.DB, masterID uint, prices []models.PriceList) error {
	if len(prices) == 0 {
		return nil
	}
	for i := range prices {
		prices[i].ID = 0
		prices[i].MasterID = masterID
	}
	return tx.Omit(clause.Associations).Create(&prices).Error
}

// Compile-time check
var _ domain.Repository = (*ProfileGormRepository)(nil)
