package event

import (
	"context"

	"github.com/BruksfildServices01/nail-scheduler/internal/audit"
	domain "github.com/BruksfildServices01/nail-scheduler/internal/domain/event"
	"github.com/BruksfildServices01/nail-scheduler/internal/httperr"
	"github.com/BruksfildServices01/nail-scheduler/internal/models"
	"github.com/BruksfildServices01/nail-scheduler/internal/timezone"
)

// ======================================================
// INPUT
// ======================================================

type CreateEventInput struct {
	UserID uint

	Title string
	Start string
	End   string
}

// ======================================================
// USE CASE
// ======================================================

type CreateEvent struct {
	repo     domain.Repository
	audit    audit.Recorder
	timezone string
}

func NewCreateEvent(
	repo domain.Repository,
	audit audit.Recorder,
	tz string,
) *CreateEvent {
	return &CreateEvent{
		repo:     repo,
		audit:    audit,
		timezone: tz,
	}
}

// ======================================================
// EXECUTE
// ======================================================

func (uc *CreateEvent) Execute(
	ctx context.Context,
	in CreateEventInput,
) (*models.Event, error) {

	master, err := uc.repo.GetMasterByUserID(ctx, in.UserID)
	if err != nil {
		if httperr.IsNotFound(err) {
			return nil, httperr.ErrBusiness("not_master")
		}
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

	ev, err := domain.New(master.ID, in.Title, start, end)
	if err != nil {
		return nil, err
	}

	if err := uc.repo.CreateEvent(ctx, ev); err != nil {
		return nil, err
	}

	uc.audit.Dispatch(audit.Event{
		UserID:   &in.UserID,
		Action:   "event_created",
		Entity:   "event",
		EntityID: &ev.ID,
		Metadata: map[string]any{
			"master_id": master.ID,
			"start":     ev.StartAt,
			"end":       ev.EndAt,
		},
	})

	return ev, nil
}
