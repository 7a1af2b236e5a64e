package domain

import "time"

// SysAdmin is an admin account. Password holds the bcrypt hash and is never serialized.
type SysAdmin struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Username  string    `gorm:"size:64;not null;uniqueIndex" json:"username"`
	Email     string    `gorm:"size:255" json:"email"`
	Password  string    `gorm:"size:128;not null" json:"-"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// TableName Specify table name
func (SysAdmin) TableName() string {
	return "admin"
}
