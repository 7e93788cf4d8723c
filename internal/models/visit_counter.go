package models

// VisitCounter backs the dashboard visit count when Redis is not configured.
type VisitCounter struct {
	UserID uint  `gorm:"primaryKey"`
	Visits int64 `gorm:"not null;default:0"`
}
