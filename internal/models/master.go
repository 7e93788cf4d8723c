package models

import "time"

type Master struct {
	ID     uint `gorm:"primaryKey" json:"id"`
	UserID uint `gorm:"uniqueIndex;not null" json:"user_id"`
	User   User `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"user"`

	About     string `gorm:"type:text" json:"about"`
	AvatarURL string `gorm:"size:512" json:"avatar_url"`

	PriceList []PriceList `gorm:"foreignKey:MasterID" json:"price_list,omitempty"`
	Events    []Event     `gorm:"foreignKey:MasterID" json:"events,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
