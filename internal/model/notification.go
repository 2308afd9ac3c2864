package model

import "time"

// Notification types
const (
	NotificationTypeLowStock  = "low_stock"
	NotificationTypeLowMargin = "low_margin"
	NotificationTypeZeroStock = "zero_stock"
	NotificationTypeSync      = "sync"
)

// Notification is de-duplicated per (user_id, type, title) within a rolling
// 24h window before insertion.
type Notification struct {
	ID        int64     `gorm:"primary_key;AUTO_INCREMENT" json:"id"`
	UserID    int64     `gorm:"index;not null" json:"user_id"`
	Type      string    `gorm:"size:30;index" json:"type"`
	Title     string    `gorm:"size:255" json:"title"`
	Message   string    `gorm:"type:text" json:"message"`
	IsRead    bool      `gorm:"default:false" json:"is_read"`
	CreatedAt time.Time `json:"created_at"`
}

func (Notification) TableName() string {
	return "notifications"
}
