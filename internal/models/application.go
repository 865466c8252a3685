package models

import "time"

type ApplicationStatus string

const (
	StatusUnderReview  ApplicationStatus = "Under Review"
	StatusShortlisted  ApplicationStatus = "Shortlisted"
	StatusInterviewing ApplicationStatus = "Interviewing"
	StatusRejected     ApplicationStatus = "Rejected"
	StatusOffer        ApplicationStatus = "Offer"
)

var AllApplicationStatuses = []ApplicationStatus{
	StatusUnderReview, StatusShortlisted, StatusInterviewing, StatusRejected, StatusOffer,
}

func (s ApplicationStatus) Valid() bool {
	for _, known := range AllApplicationStatuses {
		if s == known {
			return true
		}
	}
	return false
}

type Application struct {
	ID     uint       `gorm:"primaryKey" json:"id"`
	UserID uint       `gorm:"not null;index" json:"user_id"`
	User   User       `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"user"`
	JobID  uint       `gorm:"not null;index" json:"job_id"`
	Job    JobListing `gorm:"foreignKey:JobID;constraint:OnDelete:CASCADE" json:"-"`

	Status ApplicationStatus `gorm:"size:50;not null;index" json:"status"`

	CVDocumentID          *uint         `gorm:"index" json:"cv_document_id,omitempty"`
	CVDocument            *UserDocument `gorm:"foreignKey:CVDocumentID;constraint:OnDelete:SET NULL" json:"cv_document,omitempty"`
	CoverLetterDocumentID *uint         `gorm:"index" json:"cover_letter_document_id,omitempty"`
	CoverLetterDocument   *UserDocument `gorm:"foreignKey:CoverLetterDocumentID;constraint:OnDelete:SET NULL" json:"cover_letter_document,omitempty"`
	CoverLetterText       string        `gorm:"type:text" json:"cover_letter_text,omitempty"`

	AppliedAt time.Time `gorm:"autoCreateTime" json:"applied_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Application) TableName() string {
	return "applications"
}

// CVScore is the AI score of the attached CV, nil when absent or unscored.
func (a *Application) CVScore() *int {
	if a.CVDocument == nil {
		return nil
	}
	return a.CVDocument.AIScore
}

func (a *Application) CoverLetterScore() *int {
	if a.CoverLetterDocument == nil {
		return nil
	}
	return a.CoverLetterDocument.AIScore
}
