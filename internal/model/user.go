package model

// User is an identity record created on the first login with an unseen email.
type User struct {
	ID       int64  `gorm:"primaryKey"`
	Username string `gorm:"uniqueIndex;size:50;not null"`
	Email    string `gorm:"uniqueIndex;size:120;not null"`
}
