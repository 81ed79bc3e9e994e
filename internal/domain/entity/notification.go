package entity

import "time"

const (
	NotificationNewTicket  = "new_ticket"
	NotificationReply      = "reply"
	NotificationClosed     = "closed"
	NotificationAssignment = "assignment"
)

// Notification targets exactly one user. Fan-out writes one row per recipient.
type Notification struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Title     string    `gorm:"size:200;not null" json:"title"`
	Message   string    `gorm:"type:text;not null" json:"message"`
	Type      string    `gorm:"size:50;not null" json:"type"`
	UserID    uint      `gorm:"not null;index:idx_notifications_user_read,priority:1" json:"user_id"`
	TicketID  *uint     `gorm:"index" json:"ticket_id"`
	IsRead    bool      `gorm:"not null;default:false;index:idx_notifications_user_read,priority:2" json:"is_read"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
}

func (Notification) TableName() string {
	return "notifications"
}
