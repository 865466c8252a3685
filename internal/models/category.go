package models

import (
	"time"

	"gorm.io/datatypes"
)

type CategoryType string

const (
	CategoryWhiteCollar CategoryType = "white_collar"
	CategoryBlueCollar  CategoryType = "blue_collar"
	CategoryMixed       CategoryType = "mixed"
)

// JobCategory is an entry of the controlled taxonomy. Keywords drive the
// substring expansion in search and are passed to the oracle as vocabulary.
type JobCategory struct {
	ID           uint                        `gorm:"primaryKey" json:"id"`
	Name         string                      `gorm:"size:100;uniqueIndex;not null" json:"name"`
	Keywords     datatypes.JSONSlice[string] `json:"keywords"`
	CategoryType CategoryType                `gorm:"size:20;not null" json:"category_type"`
	CreatedAt    time.Time                   `json:"created_at"`
}

func (JobCategory) TableName() string {
	return "job_categories"
}
