package models

import (
	"strings"
	"time"
)

type Role string

const (
	RoleAdmin      Role = "Admin"
	RoleJobSeeker  Role = "Job Seeker"
	RoleEmployer   Role = "Employer"
	RoleAttachment Role = "Attachment"
)

var AllRoles = []Role{RoleAdmin, RoleJobSeeker, RoleEmployer, RoleAttachment}

type User struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	Email      string    `gorm:"size:255;uniqueIndex;not null" json:"email"`
	Role       Role      `gorm:"size:20;not null" json:"role"`
	IsActive   bool      `gorm:"not null" json:"is_active"`
	CompanyID  *uint     `gorm:"index" json:"company_id,omitempty"`
	Company    *Company  `gorm:"foreignKey:CompanyID;constraint:OnDelete:SET NULL" json:"company,omitempty"`
	DateJoined time.Time `gorm:"autoCreateTime" json:"date_joined"`

	Profile                *Profile                `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"profile,omitempty"`
	NotificationPreference *NotificationPreference `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"notification_preference,omitempty"`
}

func (User) TableName() string {
	return "users"
}

// DisplayName falls back to the local part of the email.
func (u *User) DisplayName() string {
	if u.Profile != nil && u.Profile.FullName != nil && strings.TrimSpace(*u.Profile.FullName) != "" {
		return strings.TrimSpace(*u.Profile.FullName)
	}
	name, _, _ := strings.Cut(u.Email, "@")
	return name
}

type Profile struct {
	ID                  uint          `gorm:"primaryKey" json:"id"`
	UserID              uint          `gorm:"uniqueIndex;not null" json:"user_id"`
	FullName            *string       `gorm:"size:255" json:"full_name,omitempty"`
	PhonePrimary        *string       `gorm:"size:20" json:"phone_primary,omitempty"`
	City                *string       `gorm:"size:100" json:"city,omitempty"`
	Country             *string       `gorm:"size:100" json:"country,omitempty"`
	PreferredCategories []JobCategory `gorm:"many2many:profile_preferred_categories;constraint:OnDelete:CASCADE" json:"preferred_categories"`
	UpdatedAt           time.Time     `json:"updated_at"`
}

func (Profile) TableName() string {
	return "profiles"
}

type NotificationPreference struct {
	ID              uint `gorm:"primaryKey" json:"id"`
	UserID          uint `gorm:"uniqueIndex;not null" json:"user_id"`
	EmailEnabled    bool `gorm:"not null" json:"email_enabled"`
	WhatsappEnabled bool `gorm:"not null" json:"whatsapp_enabled"`
}

func (NotificationPreference) TableName() string {
	return "notification_preferences"
}
