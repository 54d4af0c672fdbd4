package models

import (
	"time"
)

// NotificationLevel indicates notification urgency.
type NotificationLevel string

const (
	NotifyInfo    NotificationLevel = "info"
	NotifyAction  NotificationLevel = "action"
	NotifyWarning NotificationLevel = "warning"
)

// Notification is a persisted message for a user, also pushed live to any
// connected websocket clients.
type Notification struct {
	ID        string            `gorm:"primaryKey;type:text" json:"id"`
	UserID    string            `gorm:"index;not null" json:"user_id"`
	Level     NotificationLevel `json:"level"`
	Title     string            `json:"title"`
	Body      string            `json:"body"`
	Read      bool              `gorm:"index" json:"read"`
	CreatedAt time.Time         `json:"created_at"`
}
