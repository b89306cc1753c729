package domain

import (
	"time"
)

const (
	RoleCustomer = "customer"
	RoleAdmin    = "admin"

	UserStatusActive   = "active"
	UserStatusDisabled = "disabled"
)

// SysUser is a storefront account, customer or administrator.
type SysUser struct {
	ID        int64     `json:"id,string" form:"id"`
	FirstName string    `json:"firstName" form:"first_name"`
	LastName  string    `json:"lastName" form:"last_name"`
	Email     string    `gorm:"uniqueIndex;size:255" json:"email" form:"email"`
	Password  string    `json:"-" form:"-"`
	Role      string    `gorm:"size:16" json:"role" form:"role"`
	Status    string    `gorm:"size:16;index" json:"status" form:"status"`
	LastLogin time.Time `json:"last_login" form:"last_login"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName Specify table name
func (SysUser) TableName() string {
	return "sys_user"
}

// SysSession server side session record keyed by an opaque id
type SysSession struct {
	ID        string    `gorm:"primaryKey;size:64" json:"id"`
	Data      string    `gorm:"type:text" json:"-"`
	ExpiresAt time.Time `gorm:"index" json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName Specify table name
func (SysSession) TableName() string {
	return "sys_session"
}
