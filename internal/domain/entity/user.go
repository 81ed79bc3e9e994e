package entity

import "time"

const (
	RoleClient     = "cliente"
	RoleTechnician = "tecnico"
	RoleAdmin      = "administrador"
)

// StaffRoles receive ticket alerts and may act on any ticket.
var StaffRoles = []string{RoleTechnician, RoleAdmin}

type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Name         string    `gorm:"size:100;not null" json:"name"`
	Email        string    `gorm:"size:120;not null;uniqueIndex" json:"email"`
	Phone        string    `gorm:"size:20" json:"phone"`
	PasswordHash string    `gorm:"size:255;not null" json:"-"`
	Role         string    `gorm:"size:20;not null" json:"role"`
	CompanyID    *uint     `json:"company_id"`
	Active       bool      `gorm:"not null" json:"active"`
	CreatedAt    time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt    time.Time `gorm:"not null" json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}

func (u User) IsStaff() bool {
	return u.Role == RoleTechnician || u.Role == RoleAdmin
}

func ValidRole(role string) bool {
	return role == RoleClient || role == RoleTechnician || role == RoleAdmin
}
