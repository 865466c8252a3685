package models

import (
	"time"

	"gorm.io/datatypes"
)

type DocumentType string

const (
	DocumentCV          DocumentType = "CV"
	DocumentCoverLetter DocumentType = "Cover Letter"
	DocumentCertificate DocumentType = "Certificate"
	DocumentOther       DocumentType = "Other"
)

// UserDocument is an uploaded or generated applicant file. ExtractedContent
// holds either the plain text or an inline "Error extracting text: ..." note.
type UserDocument struct {
	ID               uint         `gorm:"primaryKey" json:"id"`
	UserID           uint         `gorm:"not null;index" json:"user_id"`
	User             *User        `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	DocumentType     DocumentType `gorm:"size:50;not null;index" json:"document_type"`
	FileName         string       `gorm:"size:255;not null" json:"file_name"`
	OriginalFileName string       `gorm:"size:255" json:"original_file_name"`
	FilePath         string       `gorm:"size:500;not null" json:"-"`
	ExtractedContent string       `gorm:"type:text" json:"extracted_content,omitempty"`
	AIScore          *int         `json:"ai_score"`
	UploadedAt       time.Time    `gorm:"autoCreateTime" json:"uploaded_at"`

	CVAnalysis          *CVAnalysis          `gorm:"foreignKey:UserDocumentID;constraint:OnDelete:CASCADE" json:"cv_analysis,omitempty"`
	CoverLetterAnalysis *CoverLetterAnalysis `gorm:"foreignKey:UserDocumentID;constraint:OnDelete:CASCADE" json:"cover_letter_analysis,omitempty"`
}

func (UserDocument) TableName() string {
	return "user_documents"
}

const (
	MaxCVProfessionalism = 20
	MaxCVRelevance       = 40
	MaxCVExperience      = 30
	MaxCVEducation       = 10

	MaxCLProfessionalism = 20
	MaxCLContent         = 40
	MaxCLTone            = 20
	MaxCLImpact          = 20
)

type CVAnalysis struct {
	ID                     uint                        `gorm:"primaryKey" json:"id"`
	UserDocumentID         uint                        `gorm:"uniqueIndex;not null" json:"user_document_id"`
	TotalScore             int                         `json:"total_score"`
	ProfessionalismScore   int                         `json:"professionalism_score"`
	RelevanceScore         int                         `json:"relevance_score"`
	ExperienceScore        int                         `json:"experience_score"`
	EducationScore         int                         `json:"education_score"`
	MissingSections        datatypes.JSONSlice[string] `json:"missing_sections"`
	ImprovementSuggestions datatypes.JSONSlice[string] `json:"improvement_suggestions"`
	RawResponse            datatypes.JSON              `json:"-"`
	CreatedAt              time.Time                   `json:"created_at"`
}

func (CVAnalysis) TableName() string {
	return "cv_analyses"
}

type CoverLetterAnalysis struct {
	ID                     uint                        `gorm:"primaryKey" json:"id"`
	UserDocumentID         uint                        `gorm:"uniqueIndex;not null" json:"user_document_id"`
	TotalScore             int                         `json:"total_score"`
	ProfessionalismScore   int                         `json:"professionalism_score"`
	ContentScore           int                         `json:"content_score"`
	ToneScore              int                         `json:"tone_score"`
	ImpactScore            int                         `json:"impact_score"`
	MissingElements        datatypes.JSONSlice[string] `json:"missing_elements"`
	ImprovementSuggestions datatypes.JSONSlice[string] `json:"improvement_suggestions"`
	RawResponse            datatypes.JSON              `json:"-"`
	CreatedAt              time.Time                   `json:"created_at"`
}

func (CoverLetterAnalysis) TableName() string {
	return "cover_letter_analyses"
}
