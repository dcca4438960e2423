package model

import "time"

// User owns at most one Cart. Accounts are issued by the auth service; the
// store only reads them to authorise cart calls.
type User struct {
	ID        uint   `gorm:"primaryKey"`
	Username  string `gorm:"type:varchar(150);uniqueIndex;not null"`
	Password  string `gorm:"type:varchar(255);not null"`
	IsActive  bool   `gorm:"not null;default:true"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName 指定表名
func (User) TableName() string {
	return "users"
}
