package models

const (
	RoleStudent = "student"
	RoleVendor  = "vendor"
	RoleAdmin   = "admin"
)

type User struct {
	Base
	FullName string  `gorm:"size:255;not null" json:"full_name"`
	Email    string  `gorm:"size:255;not null;unique" json:"email"`
	Password string  `gorm:"not null" json:"-"`
	Role     string  `gorm:"size:20;not null" json:"role"`
	Phone    *string `gorm:"size:20" json:"phone,omitempty"`
	IsActive bool    `gorm:"not null" json:"is_active"`
}
