package dto

import (
	"github.com/BruksfildServices01/nail-scheduler/internal/models"
	"github.com/BruksfildServices01/nail-scheduler/internal/timezone"
)

// EventDTO is the calendar feed shape.
type EventDTO struct {
	ID       uint   `json:"id"`
	Title    string `json:"title"`
	Start    string `json:"start"`
	End      string `json:"end"`
	MasterID uint   `json:"master_id"`
}

func NewEventDTO(ev models.Event, tz string) EventDTO {
	return EventDTO{
		ID:       ev.ID,
		Title:    ev.Title,
		Start:    timezone.Format(ev.StartAt, tz),
		End:      timezone.Format(ev.EndAt, tz),
		MasterID: ev.MasterID,
	}
}
