package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	domain "github.com/BruksfildServices01/nail-scheduler/internal/domain/event"
	"github.com/BruksfildServices01/nail-scheduler/internal/models"
)

type EventGormRepository struct {
	db *gorm.DB
}

func NewEventGormRepository(db *gorm.DB) *EventGormRepository {
	return &EventGormRepository{db: db}
}

// --------------------------------------------------
// Master
// --------------------------------------------------

func (r *EventGormRepository) GetMasterByUserID(
	ctx context.Context,
	userID uint,
) (*models.Master, error) {

	var master models.Master
	if err := withRole(r.db.WithContext(ctx), "masters", models.RoleMaster).
		Where("masters.user_id = ?", userID).
		First(&master).Error; err != nil {
		return nil, err
	}
	return &master, nil
}

// --------------------------------------------------
// Event
// --------------------------------------------------

func (r *EventGormRepository) CreateEvent(
	ctx context.Context,
	ev *models.Event,
) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(ev).Error
}

func (r *EventGormRepository) GetEvent(
	ctx context.Context,
	eventID uint,
) (*models.Event, error) {

	var ev models.Event
	if err := r.db.WithContext(ctx).First(&ev, eventID).Error; err != nil {
		return nil, err
	}
	return &ev, nil
}

func (r *EventGormRepository) UpdateEvent(
	ctx context.Context,
	ev *models.Event,
) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(ev).Error
}

func (r *EventGormRepository) DeleteEvent(
	ctx context.Context,
	eventID uint,
) error {
	return r.db.WithContext(ctx).Delete(&models.Event{}, eventID).Error
}

func (r *EventGormRepository) ListEvents(
	ctx context.Context,
	masterID uint,
) ([]models.Event, error) {

	q := r.db.WithContext(ctx)
	if masterID != 0 {
		q = q.Where("master_id = ?", masterID)
	}

	var events []models.Event
	if err := q.
		Order("start_at ASC, id ASC").
		Find(&events).Error; err != nil {
		return nil, err
	}
	return events, nil
}

// Compile-time check
var _ domain.Repository = (*EventGormRepository)(nil)
