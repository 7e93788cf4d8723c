package profile

import (
	"context"
	"io"
	"strings"

	"github.com/BruksfildServices01/nail-scheduler/internal/audit"
	domain "github.com/BruksfildServices01/nail-scheduler/internal/domain/profile"
	"github.com/BruksfildServices01/nail-scheduler/internal/httperr"
	"github.com/BruksfildServices01/nail-scheduler/internal/media"
	"github.com/BruksfildServices01/nail-scheduler/internal/models"
)

type UpdateMasterInput struct {
	Actor    domain.Actor
	MasterID uint

	FirstName string
	LastName  string
	Email     string
	About     string

	// Avatar, when set, replaces the profile picture.
	Avatar io.Reader

	// Prices replaces the whole price list when ReplacePrices is true.
	Prices        []domain.PriceInput
	ReplacePrices bool
}

type UpdateMaster struct {
	repo    domain.Repository
	storage media.Storage
	audit   audit.Recorder
}

func NewUpdateMaster(
	repo domain.Repository,
	storage media.Storage,
	audit audit.Recorder,
) *UpdateMaster {
	return &UpdateMaster{
		repo:    repo,
		storage: storage,
		audit:   audit,
	}
}

func (uc *UpdateMaster) Execute(
	ctx context.Context,
	in UpdateMasterInput,
) (*models.Master, error) {

	master, err := uc.repo.GetMaster(ctx, in.MasterID)
	if err != nil {
		if httperr.IsNotFound(err) {
			return nil, httperr.ErrBusiness("master_not_found")
		}
		return nil, err
	}

	if err := domain.CanManage(in.Actor, master.UserID); err != nil {
		return nil, err
	}
	if err := domain.CheckRole(&master.User, models.RoleMaster); err != nil {
		return nil, err
	}

	var prices []models.PriceList
	if in.ReplacePrices {
		prices, err = resolvePrices(ctx, uc.repo, master.ID, in.Prices)
		if err != nil {
			return nil, err
		}
	}

	if in.Avatar != nil {
		data, err := media.ProcessAvatar(in.Avatar)
		if err != nil {
			return nil, httperr.ErrBusiness("invalid_avatar")
		}
		url, err := uc.storage.Put(ctx, media.AvatarKey(master.ID), data, media.AvatarMIME)
		if err != nil {
			return nil, err
		}
		master.AvatarURL = url
	}

	master.User.FirstName = strings.TrimSpace(in.FirstName)
	master.User.LastName = strings.TrimSpace(in.LastName)
	master.User.Email = strings.ToLower(strings.TrimSpace(in.Email))
	master.About = strings.TrimSpace(in.About)

	if err := uc.repo.UpdateMaster(ctx, master, prices); err != nil {
		if httperr.IsUniqueViolation(err) {
			return nil, httperr.ErrBusiness("duplicate_price")
		}
		return nil, err
	}

	uc.audit.Dispatch(audit.Event{
		UserID:   &in.Actor.UserID,
		Action:   "master_updated",
		Entity:   "master",
		EntityID: &master.ID,
		Metadata: map[string]any{"prices_replaced": in.ReplacePrices, "avatar": in.Avatar != nil},
	})

	return master, nil
}
