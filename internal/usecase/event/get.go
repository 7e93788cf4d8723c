package event

import (
	"context"

	domain "github.com/BruksfildServices01/nail-scheduler/internal/domain/event"
	"github.com/BruksfildServices01/nail-scheduler/internal/models"
)

// GetOwnedEvent loads an event for editing by the master who owns it.
type GetOwnedEvent struct {
	repo domain.Repository
}

func NewGetOwnedEvent(repo domain.Repository) *GetOwnedEvent {
	return &GetOwnedEvent{repo: repo}
}

func (uc *GetOwnedEvent) Execute(
	ctx context.Context,
	userID uint,
	eventID uint,
) (*models.Event, error) {
	return loadOwnedEvent(ctx, uc.repo, userID, eventID)
}
