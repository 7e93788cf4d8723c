package event

import (
	"context"

	"github.com/BruksfildServices01/nail-scheduler/internal/models"
)

type Repository interface {
	// -------- Master --------
	GetMasterByUserID(
		ctx context.Context,
		userID uint,
	) (*models.Master, error)

	// -------- Event --------
	CreateEvent(
		ctx context.Context,
		ev *models.Event,
	) error

	GetEvent(
		ctx context.Context,
		eventID uint,
	) (*models.Event, error)

	UpdateEvent(
		ctx context.Context,
		ev *models.Event,
	) error

	DeleteEvent(
		ctx context.Context,
		eventID uint,
	) error

	// ListEvents returns events ordered by start; masterID 0 means all masters.
	ListEvents(
		ctx context.Context,
		masterID uint,
	) ([]models.Event, error)
}
