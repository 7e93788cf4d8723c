package models

import "time"

// PriceList is a master's own price (and optionally duration) for a service.
// One row per (master, service).
type PriceList struct {
	ID uint `gorm:"primaryKey" json:"id"`

	MasterID uint   `gorm:"not null;uniqueIndex:idx_price_master_service" json:"master_id"`
	Master   Master `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`

	ServiceID uint    `gorm:"not null;uniqueIndex:idx_price_master_service" json:"service_id"`
	Service   Service `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"service"`

	Price       float64 `gorm:"type:decimal(10,2);not null" json:"price"`
	DurationMin *int    `json:"duration_min"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// EffectiveDuration falls back to the service default when the master did
// not set one.
func (p PriceList) EffectiveDuration() int {
	if p.DurationMin != nil {
		return *p.DurationMin
	}
	return p.Service.DurationMin
}
