package entity

import "time"

type Session struct {
	ID         string    `gorm:"primaryKey;size:36"`
	UserID     uint      `gorm:"not null;index"`
	CreatedAt  time.Time `gorm:"not null"`
	ExpiresAt  time.Time `gorm:"not null;index"`
	LastSeenAt time.Time `gorm:"not null"`
}

func (Session) TableName() string {
	return "sessions"
}
