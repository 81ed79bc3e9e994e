package entity

import "time"

const (
	StatusOpen       = "aberto"
	StatusInProgress = "em_andamento"
	StatusClosed     = "finalizado"
)

const (
	PriorityLow    = "baixa"
	PriorityMedium = "media"
	PriorityHigh   = "alta"
)

type Ticket struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	Title       string     `gorm:"size:200;not null" json:"title"`
	Description string     `gorm:"type:text;not null" json:"description"`
	Status      string     `gorm:"size:20;not null;default:aberto;index" json:"status"`
	Priority    string     `gorm:"size:20;not null;default:media" json:"priority"`
	RequesterID uint       `gorm:"not null;index" json:"requester_id"`
	AssigneeID  *uint      `gorm:"index" json:"assignee_id"`
	CompanyID   *uint      `json:"company_id"`
	CreatedAt   time.Time  `gorm:"not null" json:"created_at"`
	UpdatedAt   time.Time  `gorm:"not null" json:"updated_at"`
	ClosedAt    *time.Time `json:"closed_at"`
}

func (Ticket) TableName() string {
	return "tickets"
}

type TicketReply struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	TicketID  uint      `gorm:"not null;index" json:"ticket_id"`
	AuthorID  uint      `gorm:"not null" json:"author_id"`
	Body      string    `gorm:"type:text;not null" json:"body"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
}

func (TicketReply) TableName() string {
	return "ticket_replies"
}

func ValidPriority(p string) bool {
	return p == PriorityLow || p == PriorityMedium || p == PriorityHigh
}

func ValidStatus(s string) bool {
	return s == StatusOpen || s == StatusInProgress || s == StatusClosed
}
