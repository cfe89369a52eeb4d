package model

import "time"

// Operator is an account allowed to drive the control API.
type Operator struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Username     string    `gorm:"uniqueIndex;size:64" json:"username"`
	PasswordHash string    `json:"-"`
	ReadOnly     bool      `json:"readOnly"`
	CreatedAt    time.Time `json:"createdAt"`
}
