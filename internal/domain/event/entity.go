package event

import (
	"strings"
	"time"

	"github.com/BruksfildServices01/nail-scheduler/internal/httperr"
	"github.com/BruksfildServices01/nail-scheduler/internal/models"
)

const MaxTitleLength = 255

// ===============================
// Validations
// ===============================

// Validate checks the fields every event must satisfy. Overlaps with other
// events of the same master are allowed.
func Validate(title string, start, end time.Time) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return httperr.ErrBusiness("missing_title")
	}
	if len(title) > MaxTitleLength {
		return httperr.ErrBusiness("title_too_long")
	}
	if !start.Before(end) {
		return httperr.ErrBusiness("invalid_time_range")
	}
	return nil
}

// ===============================
// Domain Actions
// ===============================

func New(masterID uint, title string, start, end time.Time) (*models.Event, error) {
	if err := Validate(title, start, end); err != nil {
		return nil, err
	}
	return &models.Event{
		Title:    strings.TrimSpace(title),
		StartAt:  start,
		EndAt:    end,
		MasterID: masterID,
	}, nil
}

func Reschedule(ev *models.Event, title string, start, end time.Time) error {
	if err := Validate(title, start, end); err != nil {
		return err
	}
	ev.Title = strings.TrimSpace(title)
	ev.StartAt = start
	ev.EndAt = end
	return nil
}

// CanModify only lets the owning master touch an event.
func CanModify(ev *models.Event, masterID uint) error {
	if ev.MasterID != masterID {
		return httperr.ErrBusiness("not_owner")
	}
	return nil
}
