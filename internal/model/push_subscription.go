package model

import "time"

// PushSubscription holds the information for a browser push subscription.
type PushSubscription struct {
	Endpoint  string    `gorm:"primaryKey"`
	P256DH    string    `gorm:"column:p256dh;not null"`
	Auth      string    `gorm:"not null"`
	CreatedAt time.Time `gorm:"not null"`

	// Associations
	Desks []DeskSubscription `gorm:"foreignKey:Endpoint;references:Endpoint;constraint:OnDelete:CASCADE"`
}

// DeskSubscription maps a push subscription to a desk it wants freed-desk
// notifications for. Desks are not persisted, so this is a plain join row.
type DeskSubscription struct {
	Endpoint string `gorm:"primaryKey"`
	DeskID   int64  `gorm:"primaryKey;index"`
}
