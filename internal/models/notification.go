package models

import "time"

type UserNotification struct {
	ID        uint        `gorm:"primaryKey" json:"id"`
	UserID    uint        `gorm:"not null;index" json:"user_id"`
	JobID     *uint       `gorm:"index" json:"job_id,omitempty"`
	Job       *JobListing `gorm:"foreignKey:JobID;constraint:OnDelete:CASCADE" json:"-"`
	Message   string      `gorm:"type:text;not null" json:"message"`
	IsRead    bool        `gorm:"not null" json:"is_read"`
	CreatedAt time.Time   `json:"created_at"`
}

func (UserNotification) TableName() string {
	return "user_notifications"
}

type Wishlist struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	UserID    uint       `gorm:"not null;uniqueIndex:idx_wishlist_user_job" json:"user_id"`
	JobID     uint       `gorm:"not null;uniqueIndex:idx_wishlist_user_job" json:"job_id"`
	Job       JobListing `gorm:"foreignKey:JobID;constraint:OnDelete:CASCADE" json:"job"`
	CreatedAt time.Time  `json:"created_at"`
}

func (Wishlist) TableName() string {
	return "wishlists"
}
