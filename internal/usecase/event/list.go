package event

import (
	"context"

	domain "github.com/BruksfildServices01/nail-scheduler/internal/domain/event"
	"github.com/BruksfildServices01/nail-scheduler/internal/dto"
)

type ListEvents struct {
	repo     domain.Repository
	timezone string
}

func NewListEvents(
	repo domain.Repository,
	tz string,
) *ListEvents {
	return &ListEvents{
		repo:     repo,
		timezone: tz,
	}
}

// Execute lists one master's events, or everyone's when masterID is 0.
func (uc *ListEvents) Execute(
	ctx context.Context,
	masterID uint,
) ([]dto.EventDTO, error) {

	events, err := uc.repo.ListEvents(ctx, masterID)
	if err != nil {
		return nil, err
	}

	out := make([]dto.EventDTO, 0, len(events))
	for _, ev := range events {
		out = append(out, dto.NewEventDTO(ev, uc.timezone))
	}
	return out, nil
}
