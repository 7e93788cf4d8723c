package event

import (
	"context"

	"github.com/BruksfildServices01/nail-scheduler/internal/audit"
	domain "github.com/BruksfildServices01/nail-scheduler/internal/domain/event"
	"github.com/BruksfildServices01/nail-scheduler/internal/httperr"
	"github.com/BruksfildServices01/nail-scheduler/internal/models"
	"github.com/BruksfildServices01/nail-scheduler/internal/timezone"
)

type UpdateEventInput struct {
	UserID  uint
	EventID uint

	Title string
	Start string
	End   string
}

type UpdateEvent struct {
	repo     domain.Repository
	audit    audit.Recorder
	timezone string
}

func NewUpdateEvent(
	repo domain.Repository,
	audit audit.Recorder,
	tz string,
) *UpdateEvent {
	return &UpdateEvent{
		repo:     repo,
		audit:    audit,
		timezone: tz,
	}
}

func (uc *UpdateEvent) Execute(
	ctx context.Context,
	in UpdateEventInput,
) (*models.Event, error) {

	ev, err := loadOwnedEvent(ctx, uc.repo, in.UserID, in.EventID)
	if err != nil {
		return nil, err
	}

	start, err := timezone.ParseIn(uc.timezone, in.Start)
	if err != nil {
		return nil, httperr.ErrBusiness("invalid_start")
	}
	end, err := timezone.ParseIn(uc.timezone, in.End)
	if err != nil {
		return nil, httperr.ErrBusiness("invalid_end")
	}

	if err := domain.Reschedule(ev, in.Title, start, end); err != nil {
		return nil, err
	}

	if err := uc.repo.UpdateEvent(ctx, ev); err != nil {
		return nil, err
	}

	uc.audit.Dispatch(audit.Event{
		UserID:   &in.UserID,
		Action:   "event_updated",
		Entity:   "event",
		EntityID: &ev.ID,
	})

	return ev, nil
}

// loadOwnedEvent resolves the acting master and the event, and checks that
// one owns the other.
func loadOwnedEvent(
	ctx context.Context,
	repo domain.Repository,
	userID uint,
	eventID uint,
) (*models.Event, error) {

	master, err := repo.GetMasterByUserID(ctx, userID)
	if err != nil {
		if httperr.IsNotFound(err) {
			return nil, httperr.ErrBusiness("not_master")
		}
		return nil, err
	}

	ev, err := repo.GetEvent(ctx, eventID)
	if err != nil {
		if httperr.IsNotFound(err) {
			return nil, httperr.ErrBusiness("event_not_found")
		}
		return nil, err
	}

	if err := domain.CanModify(ev, master.ID); err != nil {
		return nil, err
	}
	return ev, nil
}
