package profile

import (
	"context"

	"github.com/BruksfildServices01/nail-scheduler/internal/audit"
	domain "github.com/BruksfildServices01/nail-scheduler/internal/domain/profile"
	"github.com/BruksfildServices01/nail-scheduler/internal/httperr"
)

type DeleteMaster struct {
	repo  domain.Repository
	audit audit.Recorder
}

func NewDeleteMaster(
	repo domain.Repository,
	audit audit.Recorder,
) *DeleteMaster {
	return &DeleteMaster{
		repo:  repo,
		audit: audit,
	}
}

// Execute removes the master together with its user, price list, events and
// customer assignments.
func (uc *DeleteMaster) Execute(
	ctx context.Context,
	actor domain.Actor,
	masterID uint,
) error {

	master, err := uc.repo.GetMaster(ctx, masterID)
	if err != nil {
		if httperr.IsNotFound(err) {
			return httperr.ErrBusiness("master_not_found")
		}
		return err
	}

	if err := domain.CanManage(actor, master.UserID); err != nil {
		return err
	}

	if err := uc.repo.DeleteMaster(ctx, master.ID); err != nil {
		return err
	}

	uc.audit.Dispatch(audit.Event{
		UserID:   &actor.UserID,
		Action:   "master_deleted",
		Entity:   "master",
		EntityID: &masterID,
		Metadata: map[string]any{"username": master.User.Username},
	})
	return nil
}

type DeleteCustomer struct {
	repo  domain.Repository
	audit audit.Recorder
}

func NewDeleteCustomer(
	repo domain.Repository,
	audit audit.Recorder,
) *DeleteCustomer {
	return &DeleteCustomer{
		repo:  repo,
		audit: audit,
	}
}

func (uc *DeleteCustomer) Execute(
	ctx context.Context,
	actor domain.Actor,
	customerID uint,
) error {

	customer, err := uc.repo.GetCustomer(ctx, customerID)
	if err != nil {
		if httperr.IsNotFound(err) {
			return httperr.ErrBusiness("customer_not_found")
		}
		return err
	}

	if err := domain.CanManage(actor, customer.UserID); err != nil {
		return err
	}

	if err := uc.repo.DeleteCustomer(ctx, customer.ID); err != nil {
		return err
	}

	uc.audit.Dispatch(audit.Event{
		UserID:   &actor.UserID,
		Action:   "customer_deleted",
		Entity:   "customer",
		EntityID: &customerID,
		Metadata: map[string]any{"username": customer.User.Username},
	})
	return nil
}
