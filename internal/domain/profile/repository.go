package profile

import (
	"context"

	"github.com/BruksfildServices01/nail-scheduler/internal/models"
)

type Repository interface {
	// -------- Catalogue --------
	ServicesByID(
		ctx context.Context,
		ids []uint,
	) (map[uint]models.Service, error)

	// -------- Master --------
	// CreateMaster inserts the user, the master row and its price list in
	// one transaction, filling in the generated ids.
	CreateMaster(
		ctx context.Context,
		user *models.User,
		master *models.Master,
		prices []models.PriceList,
	) error

	GetMaster(
		ctx context.Context,
		id uint,
	) (*models.Master, error)

	GetMasterByUserID(
		ctx context.Context,
		userID uint,
	) (*models.Master, error)

	ListMasters(
		ctx context.Context,
		filter ListFilter,
	) ([]models.Master, int64, error)

	// UpdateMaster saves the user and master rows; when prices is non-nil the
	// stored price list is replaced by it, all in one transaction.
	UpdateMaster(
		ctx context.Context,
		master *models.Master,
		prices []models.PriceList,
	) error

	DeleteMaster(
		ctx context.Context,
		id uint,
	) error

	MastersByID(
		ctx context.Context,
		ids []uint,
	) (map[uint]models.Master, error)

	ListMasterCustomers(
		ctx context.Context,
		masterID uint,
	) ([]models.Customer, error)

	// -------- Customer --------
	CreateCustomer(
		ctx context.Context,
		user *models.User,
		customer *models.Customer,
	) error

	GetCustomer(
		ctx context.Context,
		id uint,
	) (*models.Customer, error)

	GetCustomerByUserID(
		ctx context.Context,
		userID uint,
	) (*models.Customer, error)

	ListCustomers(
		ctx context.Context,
		filter ListFilter,
	) ([]models.Customer, int64, error)

	// UpdateCustomer saves the user row and replaces both association sets.
	UpdateCustomer(
		ctx context.Context,
		customer *models.Customer,
		serviceIDs []uint,
		masterIDs []uint,
	) error

	DeleteCustomer(
		ctx context.Context,
		id uint,
	) error

	ListCustomerServices(
		ctx context.Context,
		customerID uint,
	) ([]models.Service, error)

	ListCustomerMasters(
		ctx context.Context,
		customerID uint,
	) ([]models.Master, error)
}
