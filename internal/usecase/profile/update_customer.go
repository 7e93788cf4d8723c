package profile

import (
	"context"
	"strings"

	"github.com/BruksfildServices01/nail-scheduler/internal/audit"
	domain "github.com/BruksfildServices01/nail-scheduler/internal/domain/profile"
	"github.com/BruksfildServices01/nail-scheduler/internal/httperr"
	"github.com/BruksfildServices01/nail-scheduler/internal/models"
)

type UpdateCustomerInput struct {
	Actor      domain.Actor
	CustomerID uint

	FirstName string
	LastName  string
	Email     string

	ServiceIDs []uint
	MasterIDs  []uint
}

type UpdateCustomer struct {
	repo  domain.Repository
	audit audit.Recorder
}

func NewUpdateCustomer(
	repo domain.Repository,
	audit audit.Recorder,
) *UpdateCustomer {
	return &UpdateCustomer{
		repo:  repo,
		audit: audit,
	}
}

func (uc *UpdateCustomer) Execute(
	ctx context.Context,
	in UpdateCustomerInput,
) (*models.Customer, error) {

	customer, err := uc.repo.GetCustomer(ctx, in.CustomerID)
	if err != nil {
		if httperr.IsNotFound(err) {
			return nil, httperr.ErrBusiness("customer_not_found")
		}
		return nil, err
	}

	if err := domain.CanManage(in.Actor, customer.UserID); err != nil {
		return nil, err
	}

	serviceIDs := dedupe(in.ServiceIDs)
	services, err := uc.repo.ServicesByID(ctx, serviceIDs)
	if err != nil {
		return nil, err
	}
	if len(services) != len(serviceIDs) {
		return nil, httperr.ErrBusiness("service_not_found")
	}

	masterIDs := dedupe(in.MasterIDs)
	masters, err := uc.repo.MastersByID(ctx, masterIDs)
	if err != nil {
		return nil, err
	}
	if len(masters) != len(masterIDs) {
		return nil, httperr.ErrBusiness("master_not_found")
	}

	customer.User.FirstName = strings.TrimSpace(in.FirstName)
	customer.User.LastName = strings.TrimSpace(in.LastName)
	customer.User.Email = strings.ToLower(strings.TrimSpace(in.Email))

	if err := uc.repo.UpdateCustomer(ctx, customer, serviceIDs, masterIDs); err != nil {
		return nil, err
	}

	uc.audit.Dispatch(audit.Event{
		UserID:   &in.Actor.UserID,
		Action:   "customer_updated",
		Entity:   "customer",
		EntityID: &customer.ID,
	})

	return customer, nil
}

func dedupe(ids []uint) []uint {
	seen := make(map[uint]bool, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if id == 0 || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
