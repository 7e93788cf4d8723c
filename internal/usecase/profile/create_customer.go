package profile

import (
	"context"

	"github.com/BruksfildServices01/nail-scheduler/internal/audit"
	domain "github.com/BruksfildServices01/nail-scheduler/internal/domain/profile"
	"github.com/BruksfildServices01/nail-scheduler/internal/httperr"
	"github.com/BruksfildServices01/nail-scheduler/internal/models"
)

type CreateCustomerInput struct {
	Username  string
	Password  string
	FirstName string
	LastName  string
	Email     string
}

type CreateCustomer struct {
	repo  domain.Repository
	audit audit.Recorder
}

func NewCreateCustomer(
	repo domain.Repository,
	audit audit.Recorder,
) *CreateCustomer {
	return &CreateCustomer{
		repo:  repo,
		audit: audit,
	}
}

func (uc *CreateCustomer) Execute(
	ctx context.Context,
	in CreateCustomerInput,
) (*models.Customer, error) {

	user, err := domain.NewUser(in.Username, in.Password, in.FirstName, in.LastName, in.Email, models.RoleCustomer)
	if err != nil {
		return nil, err
	}

	customer := &models.Customer{}
	if err := uc.repo.CreateCustomer(ctx, user, customer); err != nil {
		if httperr.IsUniqueViolation(err) {
			return nil, httperr.ErrBusiness("username_taken")
		}
		return nil, err
	}

	uc.audit.Dispatch(audit.Event{
		UserID:   &user.ID,
		Action:   "customer_created",
		Entity:   "customer",
		EntityID: &customer.ID,
	})

	return customer, nil
}
