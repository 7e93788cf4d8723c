package models

import "time"

type Customer struct {
	ID     uint `gorm:"primaryKey" json:"id"`
	UserID uint `gorm:"uniqueIndex;not null" json:"user_id"`
	User   User `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"user"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CustomerService records a service a customer picked.
type CustomerService struct {
	CustomerID uint     `gorm:"primaryKey" json:"customer_id"`
	Customer   Customer `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	ServiceID  uint     `gorm:"primaryKey" json:"service_id"`
	Service    Service  `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"service"`
}

// CustomerMaster is the single customer<->master assignment relation. It is
// read from both sides: a customer's masters and a master's customers.
type CustomerMaster struct {
	CustomerID uint     `gorm:"primaryKey" json:"customer_id"`
	Customer   Customer `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"customer"`
	MasterID   uint     `gorm:"primaryKey" json:"master_id"`
	Master     Master   `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"master"`
}
