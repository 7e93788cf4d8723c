package profile

import (
	"context"

	domainEvent "github.com/BruksfildServices01/nail-scheduler/internal/domain/event"
	domain "github.com/BruksfildServices01/nail-scheduler/internal/domain/profile"
	"github.com/BruksfildServices01/nail-scheduler/internal/httperr"
	"github.com/BruksfildServices01/nail-scheduler/internal/models"
)

// Page is one page of a filtered list.
type Page[T any] struct {
	Items    []T
	Total    int64
	Page     int
	PageSize int
}

func (p Page[T]) NumPages() int {
	if p.PageSize <= 0 {
		return 1
	}
	n := int((p.Total + int64(p.PageSize) - 1) / int64(p.PageSize))
	if n < 1 {
		return 1
	}
	return n
}

func (p Page[T]) HasPrev() bool { return p.Page > 1 }
func (p Page[T]) HasNext() bool { return p.Page < p.NumPages() }
func (p Page[T]) PrevPage() int { return p.Page - 1 }
func (p Page[T]) NextPage() int { return p.Page + 1 }

type ListMasters struct {
	repo domain.Repository
}

func NewListMasters(repo domain.Repository) *ListMasters {
	return &ListMasters{repo: repo}
}

func (uc *ListMasters) Execute(ctx context.Context, filter domain.ListFilter) (Page[models.Master], error) {
	filter = filter.Normalize()
	items, total, err := uc.repo.ListMasters(ctx, filter)
	if err != nil {
		return Page[models.Master]{}, err
	}
	return Page[models.Master]{Items: items, Total: total, Page: filter.Page, PageSize: filter.PageSize}, nil
}

type ListCustomers struct {
	repo domain.Repository
}

func NewListCustomers(repo domain.Repository) *ListCustomers {
	return &ListCustomers{repo: repo}
}

func (uc *ListCustomers) Execute(ctx context.Context, filter domain.ListFilter) (Page[models.Customer], error) {
	filter = filter.Normalize()
	items, total, err := uc.repo.ListCustomers(ctx, filter)
	if err != nil {
		return Page[models.Customer]{}, err
	}
	return Page[models.Customer]{Items: items, Total: total, Page: filter.Page, PageSize: filter.PageSize}, nil
}

// MasterProfile is everything the master detail page shows.
type MasterProfile struct {
	Master    *models.Master
	Customers []models.Customer
	Events    []models.Event
}

type GetMasterProfile struct {
	repo   domain.Repository
	events domainEvent.Repository
}

func NewGetMasterProfile(repo domain.Repository, events domainEvent.Repository) *GetMasterProfile {
	return &GetMasterProfile{repo: repo, events: events}
}

func (uc *GetMasterProfile) Execute(ctx context.Context, masterID uint) (*MasterProfile, error) {
	master, err := uc.repo.GetMaster(ctx, masterID)
	if err != nil {
		if httperr.IsNotFound(err) {
			return nil, httperr.ErrBusiness("master_not_found")
		}
		return nil, err
	}

	customers, err := uc.repo.ListMasterCustomers(ctx, master.ID)
	if err != nil {
		return nil, err
	}

	events, err := uc.events.ListEvents(ctx, master.ID)
	if err != nil {
		return nil, err
	}

	return &MasterProfile{Master: master, Customers: customers, Events: events}, nil
}

type CustomerProfile struct {
	Customer *models.Customer
	Services []models.Service
	Masters  []models.Master
}

type GetCustomerProfile struct {
	repo domain.Repository
}

func NewGetCustomerProfile(repo domain.Repository) *GetCustomerProfile {
	return &GetCustomerProfile{repo: repo}
}

func (uc *GetCustomerProfile) Execute(ctx context.Context, customerID uint) (*CustomerProfile, error) {
	customer, err := uc.repo.GetCustomer(ctx, customerID)
	if err != nil {
		if httperr.IsNotFound(err) {
			return nil, httperr.ErrBusiness("customer_not_found")
		}
		return nil, err
	}

	services, err := uc.repo.ListCustomerServices(ctx, customer.ID)
	if err != nil {
		return nil, err
	}
	masters, err := uc.repo.ListCustomerMasters(ctx, customer.ID)
	if err != nil {
		return nil, err
	}

	return &CustomerProfile{Customer: customer, Services: services, Masters: masters}, nil
}
