package models

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"gorm.io/gorm"
)

type JobTerms string

const (
	TermsFullTime   JobTerms = "Full Time"
	TermsPartTime   JobTerms = "Part Time"
	TermsContract   JobTerms = "Contract"
	TermsFreelance  JobTerms = "Freelance"
	TermsInternship JobTerms = "Internship"
	TermsAttachment JobTerms = "Attachment"
	TermsNone       JobTerms = "None"
)

var AllJobTerms = []JobTerms{
	TermsFullTime, TermsPartTime, TermsContract, TermsFreelance,
	TermsInternship, TermsAttachment, TermsNone,
}

type EducationLevel string

const (
	EducationPrimary    EducationLevel = "Primary"
	EducationSecondary  EducationLevel = "Secondary"
	EducationCollege    EducationLevel = "College"
	EducationUniversity EducationLevel = "University"
	EducationNone       EducationLevel = "None"
)

var AllEducationLevels = []EducationLevel{
	EducationPrimary, EducationSecondary, EducationCollege, EducationUniversity, EducationNone,
}

type ApplicationMethod string

const (
	MethodEmail      ApplicationMethod = "email"
	MethodWebsite    ApplicationMethod = "website"
	MethodGoogleForm ApplicationMethod = "google_form"
	MethodOther      ApplicationMethod = "other"
)

var AllApplicationMethods = []ApplicationMethod{MethodEmail, MethodWebsite, MethodGoogleForm, MethodOther}

const maxRequirementLength = 255

type JobListing struct {
	ID         uint        `gorm:"primaryKey" json:"id"`
	Title      string      `gorm:"size:255;not null" json:"title"`
	CategoryID uint        `gorm:"not null;index" json:"category_id"`
	Category   JobCategory `gorm:"foreignKey:CategoryID;constraint:OnDelete:CASCADE" json:"category"`

	// CompanyName is the legacy free-text company; Company is the structured record.
	CompanyName string   `gorm:"size:255" json:"company_name"`
	CompanyID   *uint    `gorm:"index" json:"company_id,omitempty"`
	Company     *Company `gorm:"foreignKey:CompanyID;constraint:OnDelete:SET NULL" json:"company,omitempty"`

	Description             string            `gorm:"type:text;not null" json:"description"`
	Location                string            `gorm:"size:255" json:"location"`
	URL                     string            `gorm:"type:text" json:"url,omitempty"`
	Terms                   JobTerms          `gorm:"size:20;not null" json:"terms"`
	EducationLevelRequired  EducationLevel    `gorm:"size:50;not null" json:"education_level_required"`
	ExperienceRequiredYears *int              `json:"experience_required_years,omitempty"`
	ApplicationMethod       ApplicationMethod `gorm:"size:20;not null" json:"application_method"`
	EmployerEmail           string            `gorm:"size:255" json:"employer_email,omitempty"`
	ApplicationURL          string            `gorm:"type:text" json:"application_url,omitempty"`
	ApplicationInstructions string            `gorm:"type:text" json:"application_instructions,omitempty"`
	ExpiryDate              *time.Time        `json:"expiry_date,omitempty"`
	IsActive                bool              `gorm:"not null;index" json:"is_active"`
	PostedAt                time.Time         `gorm:"autoCreateTime" json:"posted_at"`
	NotifiedAt              *time.Time        `json:"-"`

	Requirements []JobRequirement `gorm:"foreignKey:JobID;constraint:OnDelete:CASCADE" json:"requirements,omitempty"`
}

func (JobListing) TableName() string {
	return "job_listings"
}

// DisplayCompany prefers the structured company over the legacy name.
func (j *JobListing) DisplayCompany() string {
	if j.Company != nil && j.Company.Name != "" {
		return j.Company.Name
	}
	return j.CompanyName
}

// ApplicationTarget is where an applicant should send their materials.
func (j *JobListing) ApplicationTarget() string {
	switch {
	case j.ApplicationMethod == MethodEmail && j.EmployerEmail != "":
		return j.EmployerEmail
	case j.ApplicationURL != "":
		return j.ApplicationURL
	case j.URL != "":
		return j.URL
	case j.EmployerEmail != "":
		return j.EmployerEmail
	}
	return "the specified application page"
}

type JobRequirement struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	JobID       uint   `gorm:"not null;index" json:"job_id"`
	Description string `gorm:"size:255;not null" json:"description"`
	IsMandatory bool   `gorm:"not null" json:"is_mandatory"`
}

func (JobRequirement) TableName() string {
	return "job_requirements"
}

func (r *JobRequirement) BeforeCreate(tx *gorm.DB) error {
	desc := strings.TrimSpace(r.Description)
	if desc == "" {
		return fmt.Errorf("requirement description is empty")
	}
	if utf8.RuneCountInString(desc) > maxRequirementLength {
		return fmt.Errorf("requirement description exceeds %d characters", maxRequirementLength)
	}
	r.Description = desc
	return nil
}
