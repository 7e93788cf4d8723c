package profile

import (
	"context"
	"strings"

	"github.com/BruksfildServices01/nail-scheduler/internal/audit"
	domain "github.com/BruksfildServices01/nail-scheduler/internal/domain/profile"
	"github.com/BruksfildServices01/nail-scheduler/internal/httperr"
	"github.com/BruksfildServices01/nail-scheduler/internal/models"
)

// ======================================================
// INPUT
// ======================================================

type CreateMasterInput struct {
	Username  string
	Password  string
	FirstName string
	LastName  string
	Email     string
	About     string

	Prices []domain.PriceInput
}

// ======================================================
// USE CASE
// ======================================================

type CreateMaster struct {
	repo  domain.Repository
	audit audit.Recorder
}

func NewCreateMaster(
	repo domain.Repository,
	audit audit.Recorder,
) *CreateMaster {
	return &CreateMaster{
		repo:  repo,
		audit: audit,
	}
}

// ======================================================
// EXECUTE
// ======================================================

// Execute creates the user, the master profile and its price list together;
// either all of them exist afterwards or none does.
func (uc *CreateMaster) Execute(
	ctx context.Context,
	in CreateMasterInput,
) (*models.Master, error) {

	user, err := domain.NewUser(in.Username, in.Password, in.FirstName, in.LastName, in.Email, models.RoleMaster)
	if err != nil {
		return nil, err
	}

	prices, err := resolvePrices(ctx, uc.repo, 0, in.Prices)
	if err != nil {
		return nil, err
	}

	master := &models.Master{About: strings.TrimSpace(in.About)}

	if err := uc.repo.CreateMaster(ctx, user, master, prices); err != nil {
		if httperr.IsUniqueViolation(err) {
			return nil, httperr.ErrBusiness("username_taken")
		}
		return nil, err
	}

	uc.audit.Dispatch(audit.Event{
		UserID:   &user.ID,
		Action:   "master_created",
		Entity:   "master",
		EntityID: &master.ID,
		Metadata: map[string]any{"prices": len(prices)},
	})

	return master, nil
}

func resolvePrices(
	ctx context.Context,
	repo domain.Repository,
	masterID uint,
	inputs []domain.PriceInput,
) ([]models.PriceList, error) {

	ids := make([]uint, 0, len(inputs))
	for _, in := range inputs {
		ids = append(ids, in.ServiceID)
	}

	catalogue, err := repo.ServicesByID(ctx, ids)
	if err != nil {
		return nil, err
	}
	return domain.BuildPriceList(masterID, inputs, catalogue)
}
