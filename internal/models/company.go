package models

import "time"

type Company struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	Name           string    `gorm:"size:255;uniqueIndex;not null" json:"name"`
	Description    string    `gorm:"type:text" json:"description,omitempty"`
	Website        string    `gorm:"type:text" json:"website,omitempty"`
	Location       string    `gorm:"size:255" json:"location,omitempty"`
	PrimaryPhone   string    `gorm:"size:20" json:"primary_phone,omitempty"`
	SecondaryPhone string    `gorm:"size:20" json:"secondary_phone,omitempty"`
	PrimaryEmail   string    `gorm:"size:255" json:"primary_email,omitempty"`
	SecondaryEmail string    `gorm:"size:255" json:"secondary_email,omitempty"`
	FoundedIn      *int      `json:"founded_in,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

func (Company) TableName() string {
	return "companies"
}
