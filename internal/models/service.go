package models

import (
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
)

type Service struct {
	ID          uint    `gorm:"primaryKey" json:"id"`
	Name        string  `gorm:"size:255;uniqueIndex;not null" json:"name"`
	Price       float64 `gorm:"type:decimal(10,2);not null" json:"price"`
	DurationMin int     `gorm:"not null;default:0" json:"duration_min"`

	// SearchName is Name folded in Go so search does not depend on the
	// driver's LOWER(), which is ASCII-only on SQLite.
	SearchName string `gorm:"size:255;index;not null;default:''" json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (s *Service) BeforeSave(*gorm.DB) error {
	s.SearchName = strings.ToLower(s.Name)
	return nil
}

// FormatDuration renders minutes as H:MM.
func FormatDuration(minutes int) string {
	if minutes < 0 {
		minutes = 0
	}
	return fmt.Sprintf("%d:%02d", minutes/60, minutes%60)
}
