package models

import "time"

type CreateListingRequest struct {
	Title                   string             `json:"title"`
	CategoryID              uint               `json:"category_id"`
	CompanyName             string             `json:"company_name"`
	CompanyID               *uint              `json:"company_id"`
	Description             string             `json:"description"`
	Location                string             `json:"location"`
	URL                     string             `json:"url"`
	Terms                   JobTerms           `json:"terms"`
	EducationLevelRequired  EducationLevel     `json:"education_level_required"`
	ExperienceRequiredYears *int               `json:"experience_required_years"`
	ApplicationMethod       ApplicationMethod  `json:"application_method"`
	EmployerEmail           string             `json:"employer_email"`
	ApplicationURL          string             `json:"application_url"`
	ApplicationInstructions string             `json:"application_instructions"`
	ExpiryDate              *time.Time         `json:"expiry_date"`
	Requirements            []RequirementInput `json:"requirements"`
}

type RequirementInput struct {
	Description string `json:"description"`
	IsMandatory *bool  `json:"is_mandatory"`
}

type ExtractRequest struct {
	Text string `json:"text"`
}

// ConfirmExtractionRequest carries the human company decision. CompanyChoice
// is "existing" (with CompanyID) or "new".
type ConfirmExtractionRequest struct {
	CompanyChoice string `json:"company_choice"`
	CompanyID     *uint  `json:"company_id"`
}

// ApplyRequest attaches an uploaded cover letter or asks for a generated one.
type ApplyRequest struct {
	CVDocumentID          *uint  `json:"cv_document_id"`
	CoverLetterDocumentID *uint  `json:"cover_letter_document_id"`
	CoverLetterText       string `json:"cover_letter_text"`
	GenerateCoverLetter   bool   `json:"generate_cover_letter"`
	Format                string `json:"format"`
}

type WishlistToggleResponse struct {
	JobID uint `json:"job_id"`
	Saved bool `json:"saved"`
}

type StatusUpdateRequest struct {
	Status ApplicationStatus `json:"status"`
}

type BulkStatusRequest struct {
	ApplicationIDs []uint            `json:"application_ids"`
	Status         ApplicationStatus `json:"status"`
}

type ActiveToggleRequest struct {
	IsActive *bool `json:"is_active"`
}

type SearchResponse struct {
	Query      string       `json:"query"`
	CategoryID *uint        `json:"category_id,omitempty"`
	Count      int          `json:"count"`
	Jobs       []JobListing `json:"jobs"`
}

type DocumentUploadResponse struct {
	Document UserDocument `json:"document"`
	Scored   bool         `json:"scored"`
	Warnings []string     `json:"warnings,omitempty"`
}

type ApplyResponse struct {
	Application Application `json:"application"`
	Warnings    []string    `json:"warnings,omitempty"`
}

type StatusCount struct {
	Status     ApplicationStatus `json:"status"`
	Count      int               `json:"count"`
	Percentage float64           `json:"percentage"`
}

type ApplicationStats struct {
	Total                   int           `json:"total"`
	ByStatus                []StatusCount `json:"by_status"`
	AverageCVScore          *float64      `json:"average_cv_score"`
	AverageCoverLetterScore *float64      `json:"average_cover_letter_score"`
}

type ApplicantRankingResponse struct {
	JobID        uint             `json:"job_id"`
	Stats        ApplicationStats `json:"stats"`
	Applications []Application    `json:"applications"`
}

type BulkStatusResponse struct {
	Updated int               `json:"updated"`
	Status  ApplicationStatus `json:"status"`
}

type ChatRequest struct {
	Message string `json:"message"`
}

type ChatResponse struct {
	Response string `json:"response"`
}

type ChatHistoryResponse struct {
	History []ChatMessage `json:"history"`
}

type PreferencesRequest struct {
	CategoryIDs []uint `json:"category_ids"`
}

// NotificationToggleRequest flips the channel when Enabled is omitted.
type NotificationToggleRequest struct {
	Type    string `json:"type"`
	Enabled *bool  `json:"enabled"`
}
