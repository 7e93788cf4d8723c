package event

import (
	"context"

	"github.com/BruksfildServices01/nail-scheduler/internal/audit"
	domain "github.com/BruksfildServices01/nail-scheduler/internal/domain/event"
	"github.com/BruksfildServices01/nail-scheduler/internal/models"
)

type RemoveEvent struct {
	repo  domain.Repository
	audit audit.Recorder
}

func NewRemoveEvent(
	repo domain.Repository,
	audit audit.Recorder,
) *RemoveEvent {
	return &RemoveEvent{
		repo:  repo,
		audit: audit,
	}
}

func (uc *RemoveEvent) Execute(
	ctx context.Context,
	userID uint,
	eventID uint,
) (*models.Event, error) {

	ev, err := loadOwnedEvent(ctx, uc.repo, userID, eventID)
	if err != nil {
		return nil, err
	}

	if err := uc.repo.DeleteEvent(ctx, ev.ID); err != nil {
		return nil, err
	}

	uc.audit.Dispatch(audit.Event{
		UserID:   &userID,
		Action:   "event_removed",
		Entity:   "event",
		EntityID: &ev.ID,
	})

	return ev, nil
}
