package entity

import "time"

type EmailConfig struct {
	ID            uint      `gorm:"primaryKey"`
	SMTPServer    string    `gorm:"column:smtp_server;size:255;not null"`
	SMTPPort      int       `gorm:"column:smtp_port;not null"`
	EmailUser     string    `gorm:"size:255;not null"`
	EmailPassword string    `gorm:"size:255;not null"`
	FromName      string    `gorm:"size:255"`
	UseTLS        bool      `gorm:"column:use_tls;not null"`
	IsActive      bool      `gorm:"not null;default:false"`
	UpdatedAt     time.Time `gorm:"not null"`
}

func (EmailConfig) TableName() string {
	return "email_configs"
}
